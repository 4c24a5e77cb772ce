package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	apperrors "github.com/allisson/teamvault/internal/errors"
)

// GrantRepository stores user and group grants.
type GrantRepository struct {
	store *Store
}

func (r *GrantRepository) table(targetType accessDomain.TargetType) (map[grantKey]accessDomain.Grant, error) {
	switch targetType {
	case accessDomain.TargetUser:
		return r.store.state.userGrants, nil
	case accessDomain.TargetGroup:
		return r.store.state.groupGrants, nil
	default:
		return nil, accessDomain.ErrInvalidTargetType
	}
}

// GetAccessSnapshot reads the owner, the direct grant and the group grants reaching
// principalID under one lock.
func (r *GrantRepository) GetAccessSnapshot(
	ctx context.Context,
	itemID, principalID uuid.UUID,
) (*accessDomain.AccessSnapshot, error) {
	defer r.store.lock(ctx)()

	st := &r.store.state
	item, ok := st.items[itemID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	snapshot := &accessDomain.AccessSnapshot{
		ItemID:      itemID,
		OwnerID:     item.OwnerID,
		DirectLevel: accessDomain.LevelNone,
	}
	if grant, ok := st.userGrants[grantKey{itemID: itemID, targetID: principalID}]; ok {
		snapshot.DirectLevel = grant.Level
	}
	for key, grant := range st.groupGrants {
		if key.itemID != itemID {
			continue
		}
		if _, member := st.members[memberKey{groupID: key.targetID, userID: principalID}]; member {
			snapshot.GroupLevels = append(snapshot.GroupLevels, grant.Level)
		}
	}

	return snapshot, nil
}

// Upsert creates the grant or replaces its level.
func (r *GrantRepository) Upsert(ctx context.Context, grant *accessDomain.Grant) error {
	defer r.store.lock(ctx)()

	table, err := r.table(grant.TargetType)
	if err != nil {
		return err
	}

	key := grantKey{itemID: grant.ItemID, targetID: grant.TargetID}
	stored := *grant
	if existing, ok := table[key]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	table[key] = stored
	return nil
}

// Get retrieves the grant of one target on an item.
func (r *GrantRepository) Get(
	ctx context.Context,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) (*accessDomain.Grant, error) {
	defer r.store.lock(ctx)()

	table, err := r.table(targetType)
	if err != nil {
		return nil, err
	}

	grant, ok := table[grantKey{itemID: itemID, targetID: targetID}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &grant, nil
}

// Delete removes the grant of one target on an item.
func (r *GrantRepository) Delete(
	ctx context.Context,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) error {
	defer r.store.lock(ctx)()

	table, err := r.table(targetType)
	if err != nil {
		return err
	}

	delete(table, grantKey{itemID: itemID, targetID: targetID})
	return nil
}

// ListByItem returns user and group grants on an item, oldest first.
func (r *GrantRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*accessDomain.Grant, error) {
	defer r.store.lock(ctx)()

	grants := make([]*accessDomain.Grant, 0)
	for _, table := range []map[grantKey]accessDomain.Grant{r.store.state.userGrants, r.store.state.groupGrants} {
		for key, grant := range table {
			if key.itemID == itemID {
				g := grant
				grants = append(grants, &g)
			}
		}
	}

	sort.Slice(grants, func(i, j int) bool {
		if grants[i].CreatedAt.Equal(grants[j].CreatedAt) {
			return grants[i].TargetID.String() < grants[j].TargetID.String()
		}
		return grants[i].CreatedAt.Before(grants[j].CreatedAt)
	})

	return grants, nil
}

// DeleteByItem removes every grant on an item.
func (r *GrantRepository) DeleteByItem(ctx context.Context, itemID uuid.UUID) error {
	defer r.store.lock(ctx)()

	for _, table := range []map[grantKey]accessDomain.Grant{r.store.state.userGrants, r.store.state.groupGrants} {
		for key := range table {
			if key.itemID == itemID {
				delete(table, key)
			}
		}
	}
	return nil
}

// ListItemIDsByGroup returns the items the group holds a grant on.
func (r *GrantRepository) ListItemIDsByGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	defer r.store.lock(ctx)()

	ids := make([]uuid.UUID, 0)
	for key := range r.store.state.groupGrants {
		if key.targetID == groupID {
			ids = append(ids, key.itemID)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}
