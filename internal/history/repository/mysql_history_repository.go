package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
)

// MySQLHistoryRepository implements HistoryEntry persistence for MySQL.
type MySQLHistoryRepository struct {
	db *sql.DB
}

// Create inserts a new history entry.
func (m *MySQLHistoryRepository) Create(ctx context.Context, entry *historyDomain.HistoryEntry) error {
	querier := database.GetTx(ctx, m.db)

	changes, err := marshalChanges(entry.Changes)
	if err != nil {
		return err
	}

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal history entry id")
	}

	itemID, err := entry.ItemID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}

	performedBy, err := entry.PerformedBy.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal performed by")
	}

	query := `INSERT INTO history_entries (id, item_id, action, performed_by, changes, signature, created_at) 
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		itemID,
		entry.Action,
		performedBy,
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
func (m *MySQLHistoryRepository) ListByItem(
	ctx context.Context,
	itemID uuid.UUID,
) ([]*historyDomain.HistoryEntry, error) {
	querier := database.GetTx(ctx, m.db)

	itemIDBytes, err := itemID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal item id")
	}

	query := `SELECT id, item_id, action, performed_by, changes, signature, created_at 
			  FROM history_entries 
			  WHERE item_id = ? 
			  ORDER BY created_at ASC, id ASC`

	rows, err := querier.QueryContext(ctx, query, itemIDBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list history entries")
	}

	return m.scanEntries(rows)
}

// List returns entries across all items oldest first, for signature verification.
func (m *MySQLHistoryRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*historyDomain.HistoryEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, item_id, action, performed_by, changes, signature, created_at 
			  FROM history_entries 
			  ORDER BY created_at ASC, id ASC 
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list history entries")
	}

	return m.scanEntries(rows)
}

func (m *MySQLHistoryRepository) scanEntries(rows *sql.Rows) ([]*historyDomain.HistoryEntry, error) {
	defer rows.Close() //nolint:errcheck

	entries := make([]*historyDomain.HistoryEntry, 0)
	for rows.Next() {
		var entry historyDomain.HistoryEntry
		var id, itemID, performedBy []byte
		var changes string

		err := rows.Scan(
			&id,
			&itemID,
			&entry.Action,
			&performedBy,
			&changes,
			&entry.Signature,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan history entry")
		}

		if err := entry.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal history entry id")
		}
		if err := entry.ItemID.UnmarshalBinary(itemID); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal item id")
		}
		if err := entry.PerformedBy.UnmarshalBinary(performedBy); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal performed by")
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

// NewMySQLHistoryRepository creates a new MySQL HistoryEntry repository instance.
func NewMySQLHistoryRepository(db *sql.DB) *MySQLHistoryRepository {
	return &MySQLHistoryRepository{db: db}
}
