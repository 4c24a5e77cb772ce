package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
)

// MySQLGrantRepository implements grant persistence for MySQL. UUIDs are stored as BINARY(16).
type MySQLGrantRepository struct {
	db *sql.DB
}

// GetAccessSnapshot reads the item owner, the principal's direct grant and every group grant
// reaching the principal in one statement. Returns ErrNotFound when the item does not exist.
func (m *MySQLGrantRepository) GetAccessSnapshot(
	ctx context.Context,
	itemID, principalID uuid.UUID,
) (*accessDomain.AccessSnapshot, error) {
	querier := database.GetTx(ctx, m.db)

	item, err := itemID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal item id")
	}
	principal, err := principalID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal principal id")
	}

	query := `SELECT i.owner_id, a.source, a.level 
			  FROM vault_items i 
			  LEFT JOIN (
				  SELECT 'user' AS source, g.level 
				  FROM access_grants g 
				  WHERE g.item_id = ? AND g.user_id = ? 
				  UNION ALL 
				  SELECT 'group' AS source, gg.level 
				  FROM group_access_grants gg 
				  JOIN group_memberships m ON m.group_id = gg.group_id 
				  WHERE gg.item_id = ? AND m.user_id = ?
			  ) a ON TRUE 
			  WHERE i.id = ?`

	rows, err := querier.QueryContext(ctx, query, item, principal, item, principal, item)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get access snapshot")
	}
	defer rows.Close() //nolint:errcheck

	var ownerID []byte
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

	var owner uuid.UUID
	if err := owner.UnmarshalBinary(ownerID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}

	return buildSnapshot(itemID, owner, collected), nil
}

// Upsert creates the grant or replaces the level of an existing one.
func (m *MySQLGrantRepository) Upsert(ctx context.Context, grant *accessDomain.Grant) error {
	querier := database.GetTx(ctx, m.db)

	table, column, err := grantTable(grant.TargetType)
	if err != nil {
		return err
	}

	itemID, err := grant.ItemID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}
	targetID, err := grant.TargetID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal target id")
	}

	query := `INSERT INTO ` + table + ` (item_id, ` + column + `, level, created_at, updated_at) 
			  VALUES (?, ?, ?, ?, ?) 
			  ON DUPLICATE KEY UPDATE level = VALUES(level), updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(ctx, query, itemID, targetID, grant.Level, grant.CreatedAt, grant.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert access grant")
	}

	return nil
}

// Get retrieves the grant of one target on an item.
func (m *MySQLGrantRepository) Get(
	ctx context.Context,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) (*accessDomain.Grant, error) {
	querier := database.GetTx(ctx, m.db)

	table, column, err := grantTable(targetType)
	if err != nil {
		return nil, err
	}

	item, err := itemID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal item id")
	}
	target, err := targetID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal target id")
	}

	query := `SELECT level, created_at, updated_at 
			  FROM ` + table + ` 
			  WHERE item_id = ? AND ` + column + ` = ?`

	grant := accessDomain.Grant{ItemID: itemID, TargetType: targetType, TargetID: targetID}
	err = querier.QueryRowContext(ctx, query, item, target).Scan(
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
func (m *MySQLGrantRepository) Delete(
	ctx context.Context,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) error {
	querier := database.GetTx(ctx, m.db)

	table, column, err := grantTable(targetType)
	if err != nil {
		return err
	}

	item, err := itemID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}
	target, err := targetID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal target id")
	}

	query := `DELETE FROM ` + table + ` WHERE item_id = ? AND ` + column + ` = ?`

	if _, err := querier.ExecContext(ctx, query, item, target); err != nil {
		return apperrors.Wrap(err, "failed to delete access grant")
	}

	return nil
}

// ListByItem returns user and group grants on an item, oldest first.
func (m *MySQLGrantRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*accessDomain.Grant, error) {
	querier := database.GetTx(ctx, m.db)

	item, err := itemID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal item id")
	}

	query := `SELECT 'user' AS target_type, user_id, level, created_at, updated_at 
			  FROM access_grants WHERE item_id = ? 
			  UNION ALL 
			  SELECT 'group' AS target_type, group_id, level, created_at, updated_at 
			  FROM group_access_grants WHERE item_id = ? 
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, item, item)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list access grants")
	}
	defer rows.Close() //nolint:errcheck

	grants := make([]*accessDomain.Grant, 0)
	for rows.Next() {
		grant := accessDomain.Grant{ItemID: itemID}
		var targetID []byte

		err := rows.Scan(&grant.TargetType, &targetID, &grant.Level, &grant.CreatedAt, &grant.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan access grant")
		}

		if err := grant.TargetID.UnmarshalBinary(targetID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal target id")
		}

		grants = append(grants, &grant)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate access grants")
	}

	return grants, nil
}

// DeleteByItem removes every grant on an item.
func (m *MySQLGrantRepository) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	item, err := itemID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM access_grants WHERE item_id = ?`, item); err != nil {
		return apperrors.Wrap(err, "failed to delete access grants")
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM group_access_grants WHERE item_id = ?`, item); err != nil {
		return apperrors.Wrap(err, "failed to delete group access grants")
	}

	return nil
}

// ListItemIDsByGroup returns the items a group holds a grant on.
func (m *MySQLGrantRepository) ListItemIDsByGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, m.db)

	group, err := groupID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal group id")
	}

	rows, err := querier.QueryContext(
		ctx,
		`SELECT item_id FROM group_access_grants WHERE group_id = ? ORDER BY item_id`,
		group,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list group items")
	}
	defer rows.Close() //nolint:errcheck

	itemIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group item")
		}

		var itemID uuid.UUID
		if err := itemID.UnmarshalBinary(raw); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal item id")
		}
		itemIDs = append(itemIDs, itemID)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate group items")
	}

	return itemIDs, nil
}

// NewMySQLGrantRepository creates a new MySQL grant repository instance.
func NewMySQLGrantRepository(db *sql.DB) *MySQLGrantRepository {
	return &MySQLGrantRepository{db: db}
}
