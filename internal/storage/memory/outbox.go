package memory

import (
	"context"
	"time"

	apperrors "github.com/allisson/teamvault/internal/errors"
	outboxDomain "github.com/allisson/teamvault/internal/outbox/domain"
)

// OutboxRepository stores outbox events in insertion order.
type OutboxRepository struct {
	store *Store
}

// Create appends a pending event.
func (r *OutboxRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	defer r.store.lock(ctx)()

	r.store.state.outbox = append(r.store.state.outbox, *event)
	return nil
}

// GetPendingEvents returns up to limit pending events, oldest first.
func (r *OutboxRepository) GetPendingEvents(ctx context.Context, limit int) ([]*outboxDomain.OutboxEvent, error) {
	defer r.store.lock(ctx)()

	events := make([]*outboxDomain.OutboxEvent, 0)
	for _, event := range r.store.state.outbox {
		if len(events) == limit {
			break
		}
		if event.Status == outboxDomain.OutboxEventStatusPending {
			e := event
			events = append(events, &e)
		}
	}
	return events, nil
}

// Update stores the status, retries and error of an event.
func (r *OutboxRepository) Update(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	defer r.store.lock(ctx)()

	for i := range r.store.state.outbox {
		if r.store.state.outbox[i].ID == event.ID {
			event.UpdatedAt = time.Now().UTC()
			r.store.state.outbox[i] = *event
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// Events returns a copy of every stored event.
func (r *OutboxRepository) Events(ctx context.Context) []*outboxDomain.OutboxEvent {
	defer r.store.lock(ctx)()

	events := make([]*outboxDomain.OutboxEvent, 0, len(r.store.state.outbox))
	for _, event := range r.store.state.outbox {
		e := event
		events = append(events, &e)
	}
	return events
}
