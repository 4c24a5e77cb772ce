package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
)

// MySQLGroupRepository implements group and membership persistence for MySQL.
type MySQLGroupRepository struct {
	db *sql.DB
}

// Create inserts a new group.
func (m *MySQLGroupRepository) Create(ctx context.Context, group *accessDomain.Group) error {
	querier := database.GetTx(ctx, m.db)

	id, err := group.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}
	createdBy, err := group.CreatedBy.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal created by")
	}

	query := "INSERT INTO `groups` (id, name, created_by, created_at) VALUES (?, ?, ?, ?)"

	if _, err := querier.ExecContext(ctx, query, id, group.Name, createdBy, group.CreatedAt); err != nil {
		return apperrors.Wrap(err, "failed to create group")
	}

	return nil
}

// Get retrieves a group by id.
func (m *MySQLGroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error) {
	return m.get(ctx, groupID, false)
}

// GetForUpdate retrieves a group and locks its row until the transaction ends.
func (m *MySQLGroupRepository) GetForUpdate(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error) {
	return m.get(ctx, groupID, true)
}

func (m *MySQLGroupRepository) get(
	ctx context.Context,
	groupID uuid.UUID,
	forUpdate bool,
) (*accessDomain.Group, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := groupID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal group id")
	}

	query := "SELECT name, created_by, created_at FROM `groups` WHERE id = ?"
	if forUpdate {
		query += " FOR UPDATE"
	}

	group := accessDomain.Group{ID: groupID}
	var createdBy []byte

	err = querier.QueryRowContext(ctx, query, id).Scan(&group.Name, &createdBy, &group.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group")
	}

	if err := group.CreatedBy.UnmarshalBinary(createdBy); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal created by")
	}

	return &group, nil
}

// AddMember inserts a membership. A duplicate returns ErrMemberAlreadyExists.
func (m *MySQLGroupRepository) AddMember(ctx context.Context, membership *accessDomain.Membership) error {
	querier := database.GetTx(ctx, m.db)

	groupID, err := membership.GroupID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}
	userID, err := membership.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO group_memberships (group_id, user_id, is_admin, created_at) VALUES (?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, groupID, userID, membership.IsAdmin, membership.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return accessDomain.ErrMemberAlreadyExists
		}
		return apperrors.Wrap(err, "failed to add group member")
	}

	return nil
}

// GetMember retrieves one membership.
func (m *MySQLGroupRepository) GetMember(
	ctx context.Context,
	groupID, userID uuid.UUID,
) (*accessDomain.Membership, error) {
	querier := database.GetTx(ctx, m.db)

	group, err := groupID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal group id")
	}
	user, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT is_admin, created_at FROM group_memberships WHERE group_id = ? AND user_id = ?`

	membership := accessDomain.Membership{GroupID: groupID, UserID: userID}
	err = querier.QueryRowContext(ctx, query, group, user).Scan(&membership.IsAdmin, &membership.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get group member")
	}

	return &membership, nil
}

// RemoveMember deletes a membership.
func (m *MySQLGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	group, err := groupID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal group id")
	}
	user, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `DELETE FROM group_memberships WHERE group_id = ? AND user_id = ?`

	if _, err := querier.ExecContext(ctx, query, group, user); err != nil {
		return apperrors.Wrap(err, "failed to remove group member")
	}

	return nil
}

// ListMembers returns the members of a group in join order.
func (m *MySQLGroupRepository) ListMembers(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*accessDomain.Membership, error) {
	querier := database.GetTx(ctx, m.db)

	group, err := groupID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal group id")
	}

	query := `SELECT user_id, is_admin, created_at 
			  FROM group_memberships 
			  WHERE group_id = ? 
			  ORDER BY created_at ASC, user_id ASC`

	rows, err := querier.QueryContext(ctx, query, group)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list group members")
	}
	defer rows.Close() //nolint:errcheck

	members := make([]*accessDomain.Membership, 0)
	for rows.Next() {
		membership := accessDomain.Membership{GroupID: groupID}
		var userID []byte

		if err := rows.Scan(&userID, &membership.IsAdmin, &membership.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan group member")
		}
		if err := membership.UserID.UnmarshalBinary(userID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user id")
		}

		members = append(members, &membership)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate group members")
	}

	return members, nil
}

// CountAdmins returns the number of admin members of a group.
func (m *MySQLGroupRepository) CountAdmins(ctx context.Context, groupID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, m.db)

	group, err := groupID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal group id")
	}

	query := `SELECT COUNT(*) FROM group_memberships WHERE group_id = ? AND is_admin = TRUE`

	var count int
	if err := querier.QueryRowContext(ctx, query, group).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count group admins")
	}

	return count, nil
}

// NewMySQLGroupRepository creates a new MySQL group repository instance.
func NewMySQLGroupRepository(db *sql.DB) *MySQLGroupRepository {
	return &MySQLGroupRepository{db: db}
}
