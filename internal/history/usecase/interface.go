// Package usecase records signed history entries and exposes them for reading and verification.
package usecase

import (
	"context"

	"github.com/google/uuid"

	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	outboxDomain "github.com/allisson/teamvault/internal/outbox/domain"
)

// HistoryRepository defines the interface for history entry persistence.
type HistoryRepository interface {
	Create(ctx context.Context, entry *historyDomain.HistoryEntry) error
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*historyDomain.HistoryEntry, error)
	List(ctx context.Context, offset, limit int) ([]*historyDomain.HistoryEntry, error)
}

// OutboxEventRepository is the write side of the outbox used to announce new entries.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// AuditLog appends history entries. Record must run inside the caller's transaction so the entry
// commits or rolls back together with the mutation it describes.
type AuditLog interface {
	Record(
		ctx context.Context,
		itemID uuid.UUID,
		action historyDomain.Action,
		performedBy uuid.UUID,
		changes []historyDomain.Change,
	) (*historyDomain.HistoryEntry, error)

	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*historyDomain.HistoryEntry, error)

	// Verify checks entry signatures, for one item or for every entry when itemID is uuid.Nil.
	Verify(ctx context.Context, itemID uuid.UUID) (*VerifyReport, error)
}

// VerifyReport summarizes a signature verification run.
type VerifyReport struct {
	Total   int
	Valid   int
	Invalid []uuid.UUID
}
