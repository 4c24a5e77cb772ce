package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
)

// PostgreSQLGroupRepository implements group and membership persistence for PostgreSQL.
type PostgreSQLGroupRepository struct {
	db *sql.DB
}

// Create inserts a new group.
func (p *PostgreSQLGroupRepository) Create(ctx context.Context, group *accessDomain.Group) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO groups (id, name, created_by, created_at) VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(ctx, query, group.ID, group.Name, group.CreatedBy, group.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create group")
	}

	return nil
}

// Get retrieves a group by id.
func (p *PostgreSQLGroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error) {
	return p.get(ctx, groupID, false)
}

// GetForUpdate retrieves a group and locks its row until the transaction ends, serializing
// roster changes on the group.
func (p *PostgreSQLGroupRepository) GetForUpdate(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error) {
	return p.get(ctx, groupID, true)
}

func (p *PostgreSQLGroupRepository) get(
	ctx context.Context,
	groupID uuid.UUID,
	forUpdate bool,
) (*accessDomain.Group, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, created_by, created_at FROM groups WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var group accessDomain.Group
	err := querier.QueryRowContext(ctx, query, groupID).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group")
	}

	return &group, nil
}

// AddMember inserts a membership. A duplicate returns ErrMemberAlreadyExists.
func (p *PostgreSQLGroupRepository) AddMember(ctx context.Context, membership *accessDomain.Membership) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO group_memberships (group_id, user_id, is_admin, created_at) VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.GroupID,
		membership.UserID,
		membership.IsAdmin,
		membership.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return accessDomain.ErrMemberAlreadyExists
		}
		return apperrors.Wrap(err, "failed to add group member")
	}

	return nil
}

// GetMember retrieves one membership.
func (p *PostgreSQLGroupRepository) GetMember(
	ctx context.Context,
	groupID, userID uuid.UUID,
) (*accessDomain.Membership, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT group_id, user_id, is_admin, created_at 
			  FROM group_memberships 
			  WHERE group_id = $1 AND user_id = $2`

	var membership accessDomain.Membership
	err := querier.QueryRowContext(ctx, query, groupID, userID).Scan(
		&membership.GroupID,
		&membership.UserID,
		&membership.IsAdmin,
		&membership.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group member")
	}

	return &membership, nil
}

// RemoveMember deletes a membership.
func (p *PostgreSQLGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM group_memberships WHERE group_id = $1 AND user_id = $2`

	if _, err := querier.ExecContext(ctx, query, groupID, userID); err != nil {
		return apperrors.Wrap(err, "failed to remove group member")
	}

	return nil
}

// ListMembers returns the members of a group in join order.
func (p *PostgreSQLGroupRepository) ListMembers(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*accessDomain.Membership, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT group_id, user_id, is_admin, created_at 
			  FROM group_memberships 
			  WHERE group_id = $1 
			  ORDER BY created_at ASC, user_id ASC`

	rows, err := querier.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list group members")
	}
	defer rows.Close() //nolint:errcheck

	members := make([]*accessDomain.Membership, 0)
	for rows.Next() {
		var membership accessDomain.Membership
		err := rows.Scan(&membership.GroupID, &membership.UserID, &membership.IsAdmin, &membership.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group member")
		}
		members = append(members, &membership)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate group members")
	}

	return members, nil
}

// CountAdmins returns the number of admin members of a group.
func (p *PostgreSQLGroupRepository) CountAdmins(ctx context.Context, groupID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM group_memberships WHERE group_id = $1 AND is_admin = TRUE`

	var count int
	if err := querier.QueryRowContext(ctx, query, groupID).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count group admins")
	}

	return count, nil
}

// NewPostgreSQLGroupRepository creates a new PostgreSQL group repository instance.
func NewPostgreSQLGroupRepository(db *sql.DB) *PostgreSQLGroupRepository {
	return &PostgreSQLGroupRepository{db: db}
}
