// Package repository provides data persistence implementations for outbox events.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
	"github.com/allisson/teamvault/internal/outbox/domain"
)

const outboxColumns = "id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at"

// dialect captures what differs between the PostgreSQL and MySQL outbox tables: placeholder
// syntax and how ids are stored (native UUID vs BINARY(16)).
type dialect struct {
	placeholder func(n int) string
	encodeID    func(id uuid.UUID) (any, error)
	scanID      func(id *uuid.UUID) any
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	encodeID:    func(id uuid.UUID) (any, error) { return id, nil },
	scanID:      func(id *uuid.UUID) any { return id },
}

var mysqlDialect = dialect{
	placeholder: func(int) string { return "?" },
	encodeID: func(id uuid.UUID) (any, error) {
		return id.MarshalBinary()
	},
	scanID: func(id *uuid.UUID) any { return binaryUUID{id} },
}

// binaryUUID scans a BINARY(16) column into a uuid.UUID.
type binaryUUID struct {
	id *uuid.UUID
}

func (b binaryUUID) Scan(src any) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unexpected id column type %T", src)
	}
	return b.id.UnmarshalBinary(raw)
}

// params renders "p1, p2, ..., pn" for the dialect, starting at from.
func (d dialect) params(from, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = d.placeholder(from + i)
	}
	return strings.Join(out, ", ")
}

type sqlOutboxRepository struct {
	db      *sql.DB
	dialect dialect
}

func (r *sqlOutboxRepository) create(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := r.dialect.encodeID(event.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode outbox event id")
	}

	query := "INSERT INTO outbox_events (" + outboxColumns + ") VALUES (" + r.dialect.params(1, 9) + ")"
	_, err = database.GetTx(ctx, r.db).ExecContext(ctx, query,
		id, event.EventType, event.Payload, event.Status, event.Retries,
		event.LastError, event.ProcessedAt, event.CreatedAt, event.UpdatedAt,
	)
	return apperrors.Wrap(err, "failed to create outbox event")
}

// pending locks up to limit pending rows, oldest first, skipping rows another worker holds.
func (r *sqlOutboxRepository) pending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query := "SELECT " + outboxColumns + " FROM outbox_events WHERE status = " + r.dialect.placeholder(1) +
		" ORDER BY created_at ASC LIMIT " + r.dialect.placeholder(2) + " FOR UPDATE SKIP LOCKED"

	rows, err := database.GetTx(ctx, r.db).QueryContext(ctx, query, domain.OutboxEventStatusPending, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox events")
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.OutboxEvent
	for rows.Next() {
		e := &domain.OutboxEvent{}
		if err := rows.Scan(
			r.dialect.scanID(&e.ID), &e.EventType, &e.Payload, &e.Status, &e.Retries,
			&e.LastError, &e.ProcessedAt, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox event")
		}
		events = append(events, e)
	}
	return events, apperrors.Wrap(rows.Err(), "failed to iterate outbox events")
}

func (r *sqlOutboxRepository) update(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := r.dialect.encodeID(event.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode outbox event id")
	}
	event.UpdatedAt = time.Now().UTC()

	p := r.dialect.placeholder
	query := fmt.Sprintf(
		"UPDATE outbox_events SET status = %s, retries = %s, last_error = %s, processed_at = %s, updated_at = %s WHERE id = %s",
		p(1), p(2), p(3), p(4), p(5), p(6),
	)
	_, err = database.GetTx(ctx, r.db).ExecContext(ctx, query,
		event.Status, event.Retries, event.LastError, event.ProcessedAt, event.UpdatedAt, id,
	)
	return apperrors.Wrap(err, "failed to update outbox event")
}

// PostgreSQLOutboxEventRepository handles outbox event persistence for PostgreSQL.
type PostgreSQLOutboxEventRepository struct {
	sqlOutboxRepository
}

// NewPostgreSQLOutboxEventRepository creates a new PostgreSQLOutboxEventRepository.
func NewPostgreSQLOutboxEventRepository(db *sql.DB) *PostgreSQLOutboxEventRepository {
	return &PostgreSQLOutboxEventRepository{sqlOutboxRepository{db: db, dialect: postgresDialect}}
}

// Create inserts a new outbox event.
func (r *PostgreSQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	return r.create(ctx, event)
}

// GetPendingEvents locks and returns up to limit pending events, oldest first.
func (r *PostgreSQLOutboxEventRepository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return r.pending(ctx, limit)
}

// Update persists the delivery state of an outbox event.
func (r *PostgreSQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	return r.update(ctx, event)
}

// MySQLOutboxEventRepository handles outbox event persistence for MySQL.
type MySQLOutboxEventRepository struct {
	sqlOutboxRepository
}

// NewMySQLOutboxEventRepository creates a new MySQLOutboxEventRepository.
func NewMySQLOutboxEventRepository(db *sql.DB) *MySQLOutboxEventRepository {
	return &MySQLOutboxEventRepository{sqlOutboxRepository{db: db, dialect: mysqlDialect}}
}

// Create inserts a new outbox event.
func (r *MySQLOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	return r.create(ctx, event)
}

// GetPendingEvents locks and returns up to limit pending events, oldest first.
func (r *MySQLOutboxEventRepository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return r.pending(ctx, limit)
}

// Update persists the delivery state of an outbox event.
func (r *MySQLOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	return r.update(ctx, event)
}
