package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	apperrors "github.com/allisson/teamvault/internal/errors"
)

// GroupRepository stores groups and memberships.
type GroupRepository struct {
	store *Store
}

// Create inserts a new group.
func (r *GroupRepository) Create(ctx context.Context, group *accessDomain.Group) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.state.groups[group.ID]; ok {
		return apperrors.Wrap(apperrors.ErrConflict, "group already exists")
	}
	r.store.state.groups[group.ID] = *group
	return nil
}

// Get retrieves a group by id.
func (r *GroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error) {
	defer r.store.lock(ctx)()

	group, ok := r.store.state.groups[groupID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &group, nil
}

// GetForUpdate is Get; the transaction already holds the store lock.
func (r *GroupRepository) GetForUpdate(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error) {
	return r.Get(ctx, groupID)
}

// AddMember inserts a membership. A duplicate returns ErrMemberAlreadyExists.
func (r *GroupRepository) AddMember(ctx context.Context, membership *accessDomain.Membership) error {
	defer r.store.lock(ctx)()

	key := memberKey{groupID: membership.GroupID, userID: membership.UserID}
	if _, ok := r.store.state.members[key]; ok {
		return accessDomain.ErrMemberAlreadyExists
	}
	r.store.state.members[key] = *membership
	return nil
}

// GetMember retrieves one membership.
func (r *GroupRepository) GetMember(
	ctx context.Context,
	groupID, userID uuid.UUID,
) (*accessDomain.Membership, error) {
	defer r.store.lock(ctx)()

	membership, ok := r.store.state.members[memberKey{groupID: groupID, userID: userID}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &membership, nil
}

// RemoveMember deletes one membership.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	defer r.store.lock(ctx)()

	key := memberKey{groupID: groupID, userID: userID}
	if _, ok := r.store.state.members[key]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.store.state.members, key)
	return nil
}

// ListMembers returns the roster, oldest membership first.
func (r *GroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]*accessDomain.Membership, error) {
	defer r.store.lock(ctx)()

	members := make([]*accessDomain.Membership, 0)
	for key, membership := range r.store.state.members {
		if key.groupID == groupID {
			m := membership
			members = append(members, &m)
		}
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].UserID.String() < members[j].UserID.String()
		}
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})

	return members, nil
}

// CountAdmins returns the number of admin members.
func (r *GroupRepository) CountAdmins(ctx context.Context, groupID uuid.UUID) (int, error) {
	defer r.store.lock(ctx)()

	count := 0
	for key, membership := range r.store.state.members {
		if key.groupID == groupID && membership.IsAdmin {
			count++
		}
	}
	return count, nil
}
