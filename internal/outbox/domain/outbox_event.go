// Package domain defines the transactional outbox entities.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event.
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// EventTypePrefixHistory prefixes the event type of every history entry event
// ("history.created", "history.access_granted", ...).
const EventTypePrefixHistory = "history."

// OutboxEvent is a message written in the same transaction as the change it describes and
// delivered later by the outbox worker.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPendingEvent builds a pending event with a fresh id.
func NewPendingEvent(eventType, payload string) *OutboxEvent {
	now := time.Now().UTC()
	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   payload,
		Status:    OutboxEventStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkProcessed records a successful delivery.
func (e *OutboxEvent) MarkProcessed(at time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &at
	e.LastError = nil
}

// MarkAttemptFailed counts a failed delivery. The event stays pending until maxRetries attempts
// have failed, then it is marked failed and no longer polled.
func (e *OutboxEvent) MarkAttemptFailed(cause error, maxRetries int) {
	e.Retries++
	msg := cause.Error()
	e.LastError = &msg
	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
}
