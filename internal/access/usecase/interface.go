// Package usecase implements group management. Roster changes are recorded in the history of
// every item the group holds a grant on.
package usecase

import (
	"context"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
)

// GroupRepository defines persistence operations for groups and memberships.
type GroupRepository interface {
	Create(ctx context.Context, group *accessDomain.Group) error

	// Get returns ErrNotFound when the group does not exist.
	Get(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error)

	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error)

	// AddMember returns ErrMemberAlreadyExists on a duplicate (group, user).
	AddMember(ctx context.Context, membership *accessDomain.Membership) error

	GetMember(ctx context.Context, groupID, userID uuid.UUID) (*accessDomain.Membership, error)
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]*accessDomain.Membership, error)
	CountAdmins(ctx context.Context, groupID uuid.UUID) (int, error)
}

// GroupGrantRepository lists the items a group can reach.
type GroupGrantRepository interface {
	ListItemIDsByGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
}

// GroupUseCase manages groups and their rosters.
type GroupUseCase interface {
	// Create makes a group with the caller as its first admin member.
	Create(ctx context.Context, principal authDomain.Principal, name string) (*accessDomain.Group, error)

	// AddMember requires the caller to be a group admin.
	AddMember(
		ctx context.Context,
		principal authDomain.Principal,
		groupID, userID uuid.UUID,
		isAdmin bool,
	) (*accessDomain.Membership, error)

	// RemoveMember is allowed for group admins and for members removing themselves. The last
	// admin cannot be removed.
	RemoveMember(ctx context.Context, principal authDomain.Principal, groupID, userID uuid.UUID) error

	// ListMembers is allowed for any member of the group.
	ListMembers(
		ctx context.Context,
		principal authDomain.Principal,
		groupID uuid.UUID,
	) ([]*accessDomain.Membership, error)
}
