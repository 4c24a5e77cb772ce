// Package repository persists access grants, groups and memberships for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
)

// grantTable maps a target type to its table and target column.
func grantTable(targetType accessDomain.TargetType) (table, column string, err error) {
	switch targetType {
	case accessDomain.TargetUser:
		return "access_grants", "user_id", nil
	case accessDomain.TargetGroup:
		return "group_access_grants", "group_id", nil
	default:
		return "", "", accessDomain.ErrInvalidTargetType
	}
}

// snapshotRow accumulates the rows of the access snapshot query.
type snapshotRow struct {
	source sql.NullString
	level  sql.NullString
}

func buildSnapshot(itemID, ownerID uuid.UUID, rows []snapshotRow) *accessDomain.AccessSnapshot {
	snapshot := &accessDomain.AccessSnapshot{
		ItemID:      itemID,
		OwnerID:     ownerID,
		DirectLevel: accessDomain.LevelNone,
	}
	for _, row := range rows {
		if !row.source.Valid || !row.level.Valid {
			continue
		}
		level := accessDomain.Level(row.level.String)
		if row.source.String == string(accessDomain.TargetUser) {
			snapshot.DirectLevel = level
		} else {
			snapshot.GroupLevels = append(snapshot.GroupLevels, level)
		}
	}
	return snapshot
}

// PostgreSQLGrantRepository implements grant persistence for PostgreSQL.
type PostgreSQLGrantRepository struct {
	db *sql.DB
}

// GetAccessSnapshot reads the item owner, the principal's direct grant and every group grant
// reaching the principal in one statement. Returns ErrNotFound when the item does not exist.
func (p *PostgreSQLGrantRepository) GetAccessSnapshot(
	ctx context.Context,
	itemID, principalID uuid.UUID,
) (*accessDomain.AccessSnapshot, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT i.owner_id, a.source, a.level 
			  FROM vault_items i 
			  LEFT JOIN (
				  SELECT 'user' AS source, g.level 
				  FROM access_grants g 
				  WHERE g.item_id = $1 AND g.user_id = $2 
				  UNION ALL 
				  SELECT 'group' AS source, gg.level 
				  FROM group_access_grants gg 
				  JOIN group_memberships m ON m.group_id = gg.group_id 
				  WHERE gg.item_id = $1 AND m.user_id = $2
			  ) a ON TRUE 
			  WHERE i.id = $1`

	rows, err := querier.QueryContext(ctx, query, itemID, principalID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get access snapshot")
	}
	defer rows.Close() //nolint:errcheck

	var ownerID uuid.UUID
	var found bool
	var collected []snapshotRow
	for rows.Next() {
		var row snapshotRow
		if err := rows.Scan(&ownerID, &row.source, &row.level); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access snapshot")
		}
		found = true
		collected = append(collected, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access snapshot")
	}

	if !found {
		return nil, apperrors.ErrNotFound
	}

	return buildSnapshot(itemID, ownerID, collected), nil
}

// Upsert creates the grant or replaces the level of an existing one.
func (p *PostgreSQLGrantRepository) Upsert(ctx context.Context, grant *accessDomain.Grant) error {
	querier := database.GetTx(ctx, p.db)

	table, column, err := grantTable(grant.TargetType)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (item_id, ` + column + `, level, created_at, updated_at) 
			  VALUES ($1, $2, $3, $4, $5) 
			  ON CONFLICT (item_id, ` + column + `) 
			  DO UPDATE SET level = EXCLUDED.level, updated_at = EXCLUDED.updated_at`

	_, err = querier.ExecContext(
		ctx,
		query,
		grant.ItemID,
		grant.TargetID,
		grant.Level,
		grant.CreatedAt,
		grant.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert access grant")
	}

	return nil
}

// Get retrieves the grant of one target on an item.
func (p *PostgreSQLGrantRepository) Get(
	ctx context.Context,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) (*accessDomain.Grant, error) {
	querier := database.GetTx(ctx, p.db)

	table, column, err := grantTable(targetType)
	if err != nil {
		return nil, err
	}

	query := `SELECT item_id, ` + column + `, level, created_at, updated_at 
			  FROM ` + table + ` 
			  WHERE item_id = $1 AND ` + column + ` = $2`

	grant := accessDomain.Grant{TargetType: targetType}
	err = querier.QueryRowContext(ctx, query, itemID, targetID).Scan(
		&grant.ItemID,
		&grant.TargetID,
		&grant.Level,
		&grant.CreatedAt,
		&grant.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get access grant")
	}

	return &grant, nil
}

// Delete removes the grant of one target on an item.
func (p *PostgreSQLGrantRepository) Delete(
	ctx context.Context,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) error {
	querier := database.GetTx(ctx, p.db)

	table, column, err := grantTable(targetType)
	if err != nil {
		return err
	}

	query := `DELETE FROM ` + table + ` WHERE item_id = $1 AND ` + column + ` = $2`

	if _, err := querier.ExecContext(ctx, query, itemID, targetID); err != nil {
		return apperrors.Wrap(err, "failed to delete access grant")
	}

	return nil
}

// ListByItem returns user and group grants on an item, oldest first.
func (p *PostgreSQLGrantRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*accessDomain.Grant, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT 'user' AS target_type, item_id, user_id, level, created_at, updated_at 
			  FROM access_grants WHERE item_id = $1 
			  UNION ALL 
			  SELECT 'group' AS target_type, item_id, group_id, level, created_at, updated_at 
			  FROM group_access_grants WHERE item_id = $1 
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access grants")
	}
	defer rows.Close() //nolint:errcheck

	grants := make([]*accessDomain.Grant, 0)
	for rows.Next() {
		var grant accessDomain.Grant
		err := rows.Scan(
			&grant.TargetType,
			&grant.ItemID,
			&grant.TargetID,
			&grant.Level,
			&grant.CreatedAt,
			&grant.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access grant")
		}
		grants = append(grants, &grant)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access grants")
	}

	return grants, nil
}

// DeleteByItem removes every grant on an item.
func (p *PostgreSQLGrantRepository) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM access_grants WHERE item_id = $1`, itemID); err != nil {
		return apperrors.Wrap(err, "failed to delete access grants")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM group_access_grants WHERE item_id = $1`, itemID); err != nil {
		return apperrors.Wrap(err, "failed to delete group access grants")
	}

	return nil
}

// ListItemIDsByGroup returns the items a group holds a grant on.
func (p *PostgreSQLGrantRepository) ListItemIDsByGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT item_id FROM group_access_grants WHERE group_id = $1 ORDER BY item_id`

	rows, err := querier.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list group items")
	}
	defer rows.Close() //nolint:errcheck

	itemIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var itemID uuid.UUID
		if err := rows.Scan(&itemID); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group item")
		}
		itemIDs = append(itemIDs, itemID)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate group items")
	}

	return itemIDs, nil
}

// NewPostgreSQLGrantRepository creates a new PostgreSQL grant repository instance.
func NewPostgreSQLGrantRepository(db *sql.DB) *PostgreSQLGrantRepository {
	return &PostgreSQLGrantRepository{db: db}
}
