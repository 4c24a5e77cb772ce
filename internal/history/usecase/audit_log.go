package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/teamvault/internal/errors"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	historyService "github.com/allisson/teamvault/internal/history/service"
	outboxDomain "github.com/allisson/teamvault/internal/outbox/domain"
)

const verifyBatchSize = 500

type auditLog struct {
	historyRepo HistoryRepository
	outboxRepo  OutboxEventRepository
	signer      historyService.Signer
}

// eventPayload is the outbox representation of an entry. The signature stays in the database.
type eventPayload struct {
	ID          uuid.UUID              `json:"id"`
	ItemID      uuid.UUID              `json:"item_id"`
	Action      historyDomain.Action   `json:"action"`
	PerformedBy uuid.UUID              `json:"performed_by"`
	Changes     []historyDomain.Change `json:"changes"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Record signs and stores a new entry and enqueues its outbox event. Any error must abort the
// surrounding transaction.
func (a *auditLog) Record(
	ctx context.Context,
	itemID uuid.UUID,
	action historyDomain.Action,
	performedBy uuid.UUID,
	changes []historyDomain.Change,
) (*historyDomain.HistoryEntry, error) {
	if action == historyDomain.ActionUpdated && len(changes) == 0 {
		return nil, historyDomain.ErrEmptyChanges
	}
	if changes == nil {
		changes = []historyDomain.Change{}
	}

	entry := &historyDomain.HistoryEntry{
		ID:          uuid.Must(uuid.NewV7()),
		ItemID:      itemID,
		Action:      action,
		PerformedBy: performedBy,
		Changes:     changes,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	signature, err := a.signer.Sign(entry)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign history entry")
	}
	entry.Signature = signature

	if err := a.historyRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(eventPayload{
		ID:          entry.ID,
		ItemID:      entry.ItemID,
		Action:      entry.Action,
		PerformedBy: entry.PerformedBy,
		Changes:     entry.Changes,
		CreatedAt:   entry.CreatedAt,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal history event")
	}

	event := outboxDomain.NewPendingEvent(outboxDomain.EventTypePrefixHistory+string(action), string(payload))
	if err := a.outboxRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListByItem returns an item's history oldest first.
func (a *auditLog) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*historyDomain.HistoryEntry, error) {
	return a.historyRepo.ListByItem(ctx, itemID)
}

// Verify recomputes signatures and reports the entries that do not match.
func (a *auditLog) Verify(ctx context.Context, itemID uuid.UUID) (*VerifyReport, error) {
	report := &VerifyReport{Invalid: make([]uuid.UUID, 0)}

	check := func(entries []*historyDomain.HistoryEntry) error {
		for _, entry := range entries {
			ok, err := a.signer.Verify(entry)
			if err != nil {
				return apperrors.Wrap(err, "failed to verify history entry")
			}

			report.Total++
			if ok {
				report.Valid++
			} else {
				report.Invalid = append(report.Invalid, entry.ID)
			}
		}
		return nil
	}

	if itemID != uuid.Nil {
		entries, err := a.historyRepo.ListByItem(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if err := check(entries); err != nil {
			return nil, err
		}
		return report, nil
	}

	for offset := 0; ; offset += verifyBatchSize {
		entries, err := a.historyRepo.List(ctx, offset, verifyBatchSize)
		if err != nil {
			return nil, err
		}
		if err := check(entries); err != nil {
			return nil, err
		}
		if len(entries) < verifyBatchSize {
			break
		}
	}

	return report, nil
}

// NewAuditLog creates an AuditLog.
func NewAuditLog(
	historyRepo HistoryRepository,
	outboxRepo OutboxEventRepository,
	signer historyService.Signer,
) AuditLog {
	return &auditLog{
		historyRepo: historyRepo,
		outboxRepo:  outboxRepo,
		signer:      signer,
	}
}
