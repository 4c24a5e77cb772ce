package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	apperrors "github.com/allisson/teamvault/internal/errors"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

// ItemRepository stores vault items.
type ItemRepository struct {
	store *Store
}

func copyItem(item vaultDomain.VaultItem) *vaultDomain.VaultItem {
	if item.FolderRef != nil {
		folder := *item.FolderRef
		item.FolderRef = &folder
	}
	return &item
}

// Create inserts a new item.
func (r *ItemRepository) Create(ctx context.Context, item *vaultDomain.VaultItem) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.state.items[item.ID]; ok {
		return apperrors.Wrap(apperrors.ErrConflict, "vault item already exists")
	}
	r.store.state.items[item.ID] = *copyItem(*item)
	return nil
}

// Get retrieves an item by id.
func (r *ItemRepository) Get(ctx context.Context, itemID uuid.UUID) (*vaultDomain.VaultItem, error) {
	defer r.store.lock(ctx)()

	item, ok := r.store.state.items[itemID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return copyItem(item), nil
}

// GetForUpdate is Get; the transaction already holds the store lock.
func (r *ItemRepository) GetForUpdate(ctx context.Context, itemID uuid.UUID) (*vaultDomain.VaultItem, error) {
	return r.Get(ctx, itemID)
}

// Update replaces a stored item.
func (r *ItemRepository) Update(ctx context.Context, item *vaultDomain.VaultItem) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.state.items[item.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.store.state.items[item.ID] = *copyItem(*item)
	return nil
}

// Delete removes an item.
func (r *ItemRepository) Delete(ctx context.Context, itemID uuid.UUID) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.state.items[itemID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.store.state.items, itemID)
	return nil
}

// ListAccessible returns items the principal owns or reaches through a grant, newest first.
func (r *ItemRepository) ListAccessible(
	ctx context.Context,
	principalID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.VaultItem, error) {
	defer r.store.lock(ctx)()

	st := &r.store.state
	items := make([]*vaultDomain.VaultItem, 0)
	for _, item := range st.items {
		if item.OwnerID == principalID || st.reachable(item.ID, principalID) {
			items = append(items, copyItem(item))
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID.String() > items[j].ID.String()
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	start, end := paginate(len(items), offset, limit)
	return items[start:end], nil
}

// reachable reports whether principalID holds a direct or group grant on itemID.
func (s *state) reachable(itemID, principalID uuid.UUID) bool {
	if _, ok := s.userGrants[grantKey{itemID: itemID, targetID: principalID}]; ok {
		return true
	}
	for key := range s.groupGrants {
		if key.itemID != itemID {
			continue
		}
		if _, ok := s.members[memberKey{groupID: key.targetID, userID: principalID}]; ok {
			return true
		}
	}
	return false
}
