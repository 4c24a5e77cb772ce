package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	historyDomain "github.com/allisson/teamvault/internal/history/domain"
)

// HistoryRepository stores history entries in insertion order.
type HistoryRepository struct {
	store *Store
}

func copyEntry(entry historyDomain.HistoryEntry) *historyDomain.HistoryEntry {
	entry.Changes = slices.Clone(entry.Changes)
	entry.Signature = slices.Clone(entry.Signature)
	return &entry
}

// Create appends an entry.
func (r *HistoryRepository) Create(ctx context.Context, entry *historyDomain.HistoryEntry) error {
	defer r.store.lock(ctx)()

	r.store.state.history = append(r.store.state.history, *copyEntry(*entry))
	return nil
}

// ListByItem returns an item's entries oldest first.
func (r *HistoryRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*historyDomain.HistoryEntry, error) {
	defer r.store.lock(ctx)()

	entries := make([]*historyDomain.HistoryEntry, 0)
	for _, entry := range r.store.state.history {
		if entry.ItemID == itemID {
			entries = append(entries, copyEntry(entry))
		}
	}
	return entries, nil
}

// List returns a window over all entries oldest first.
func (r *HistoryRepository) List(ctx context.Context, offset, limit int) ([]*historyDomain.HistoryEntry, error) {
	defer r.store.lock(ctx)()

	history := r.store.state.history
	start, end := paginate(len(history), offset, limit)

	entries := make([]*historyDomain.HistoryEntry, 0, end-start)
	for _, entry := range history[start:end] {
		entries = append(entries, copyEntry(entry))
	}
	return entries, nil
}
