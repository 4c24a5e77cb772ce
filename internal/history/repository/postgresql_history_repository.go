// Package repository persists history entries. Entries are insert-only.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
)

// PostgreSQLHistoryRepository implements HistoryEntry persistence for PostgreSQL.
type PostgreSQLHistoryRepository struct {
	db *sql.DB
}

// Create inserts a new history entry.
func (p *PostgreSQLHistoryRepository) Create(ctx context.Context, entry *historyDomain.HistoryEntry) error {
	querier := database.GetTx(ctx, p.db)

	changes, err := marshalChanges(entry.Changes)
	if err != nil {
		return err
	}

	query := `INSERT INTO history_entries (id, item_id, action, performed_by, changes, signature, created_at) 
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.ItemID,
		entry.Action,
		entry.PerformedBy,
		changes,
		entry.Signature,
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create history entry")
	}

	return nil
}

// ListByItem returns the entries of an item oldest first.
func (p *PostgreSQLHistoryRepository) ListByItem(
	ctx context.Context,
	itemID uuid.UUID,
) ([]*historyDomain.HistoryEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, item_id, action, performed_by, changes, signature, created_at 
			  FROM history_entries 
			  WHERE item_id = $1 
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list history entries")
	}

	return p.scanEntries(rows)
}

// List returns entries across all items oldest first, for signature verification.
func (p *PostgreSQLHistoryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*historyDomain.HistoryEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, item_id, action, performed_by, changes, signature, created_at 
			  FROM history_entries 
			  ORDER BY created_at ASC, id ASC 
			  LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list history entries")
	}

	return p.scanEntries(rows)
}

func (p *PostgreSQLHistoryRepository) scanEntries(rows *sql.Rows) ([]*historyDomain.HistoryEntry, error) {
	defer rows.Close() //nolint:errcheck

	entries := make([]*historyDomain.HistoryEntry, 0)
	for rows.Next() {
		var entry historyDomain.HistoryEntry
		var changes string

		err := rows.Scan(
			&entry.ID,
			&entry.ItemID,
			&entry.Action,
			&entry.PerformedBy,
			&changes,
			&entry.Signature,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan history entry")
		}

		if entry.Changes, err = unmarshalChanges(changes); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate history entries")
	}

	return entries, nil
}

// NewPostgreSQLHistoryRepository creates a new PostgreSQL HistoryEntry repository instance.
func NewPostgreSQLHistoryRepository(db *sql.DB) *PostgreSQLHistoryRepository {
	return &PostgreSQLHistoryRepository{db: db}
}

func marshalChanges(changes []historyDomain.Change) (string, error) {
	if changes == nil {
		changes = []historyDomain.Change{}
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal history changes")
	}
	return string(data), nil
}

func unmarshalChanges(data string) ([]historyDomain.Change, error) {
	var changes []historyDomain.Change
	if err := json.Unmarshal([]byte(data), &changes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal history changes")
	}
	return changes, nil
}
