package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

const mysqlItemColumns = `id, login_kind, username, password, totp_secret, website_url, notes, 
			  linked_account_ref, owner_id, folder_id, created_at, updated_at`

func mysqlFolderValue(folder *uuid.UUID) ([]byte, error) {
	if folder == nil {
		return nil, nil
	}
	return folder.MarshalBinary()
}

// MySQLVaultItemRepository implements vault item persistence for MySQL. UUIDs are stored as
// BINARY(16).
type MySQLVaultItemRepository struct {
	db *sql.DB
}

// Create inserts a new item.
func (m *MySQLVaultItemRepository) Create(ctx context.Context, item *vaultDomain.VaultItem) error {
	querier := database.GetTx(ctx, m.db)

	id, err := item.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}
	ownerID, err := item.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner id")
	}
	folder, err := mysqlFolderValue(item.FolderRef)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal folder id")
	}

	query := `INSERT INTO vault_items (` + mysqlItemColumns + `) 
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		item.LoginKind,
		item.Username,
		item.Password,
		item.TOTPSecret,
		item.WebsiteURL,
		item.Notes,
		item.LinkedAccountRef,
		ownerID,
		folder,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create vault item")
	}

	return nil
}

// Get retrieves an item by id. Returns ErrNotFound when it does not exist.
func (m *MySQLVaultItemRepository) Get(ctx context.Context, itemID uuid.UUID) (*vaultDomain.VaultItem, error) {
	return m.get(ctx, itemID, false)
}

// GetForUpdate retrieves an item and locks its row until the transaction ends.
func (m *MySQLVaultItemRepository) GetForUpdate(
	ctx context.Context,
	itemID uuid.UUID,
) (*vaultDomain.VaultItem, error) {
	return m.get(ctx, itemID, true)
}

func (m *MySQLVaultItemRepository) get(
	ctx context.Context,
	itemID uuid.UUID,
	forUpdate bool,
) (*vaultDomain.VaultItem, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := itemID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal item id")
	}

	query := `SELECT ` + mysqlItemColumns + ` FROM vault_items WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	item, err := scanMySQLItem(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get vault item")
	}

	return item, nil
}

// Update writes every mutable column of an item.
func (m *MySQLVaultItemRepository) Update(ctx context.Context, item *vaultDomain.VaultItem) error {
	querier := database.GetTx(ctx, m.db)

	id, err := item.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}
	folder, err := mysqlFolderValue(item.FolderRef)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal folder id")
	}

	query := `UPDATE vault_items SET login_kind = ?, username = ?, password = ?, totp_secret = ?, 
			  website_url = ?, notes = ?, linked_account_ref = ?, folder_id = ?, updated_at = ? 
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		item.LoginKind,
		item.Username,
		item.Password,
		item.TOTPSecret,
		item.WebsiteURL,
		item.Notes,
		item.LinkedAccountRef,
		folder,
		item.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update vault item")
	}

	return checkAffected(result)
}

// Delete removes an item.
func (m *MySQLVaultItemRepository) Delete(ctx context.Context, itemID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := itemID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal item id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM vault_items WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete vault item")
	}

	return checkAffected(result)
}

// ListAccessible returns the items a principal owns or reaches through a direct or group grant,
// newest first.
func (m *MySQLVaultItemRepository) ListAccessible(
	ctx context.Context,
	principalID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.VaultItem, error) {
	querier := database.GetTx(ctx, m.db)

	principal, err := principalID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal principal id")
	}

	query := `SELECT ` + mysqlItemColumns + ` 
			  FROM vault_items 
			  WHERE owner_id = ? 
			  OR id IN (SELECT item_id FROM access_grants WHERE user_id = ?) 
			  OR id IN (
				  SELECT gg.item_id FROM group_access_grants gg 
				  JOIN group_memberships gm ON gm.group_id = gg.group_id 
				  WHERE gm.user_id = ?
			  ) 
			  ORDER BY created_at DESC, id DESC 
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, principal, principal, principal, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list vault items")
	}
	defer rows.Close() //nolint:errcheck

	items := make([]*vaultDomain.VaultItem, 0)
	for rows.Next() {
		item, err := scanMySQLItem(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan vault item")
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate vault items")
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLItem(row rowScanner) (*vaultDomain.VaultItem, error) {
	var item vaultDomain.VaultItem
	var id, ownerID, folder []byte

	err := row.Scan(
		&id,
		&item.LoginKind,
		&item.Username,
		&item.Password,
		&item.TOTPSecret,
		&item.WebsiteURL,
		&item.Notes,
		&item.LinkedAccountRef,
		&ownerID,
		&folder,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := item.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal item id")
	}
	if err := item.OwnerID.UnmarshalBinary(ownerID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}
	if folder != nil {
		var ref uuid.UUID
		if err := ref.UnmarshalBinary(folder); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal folder id")
		}
		item.FolderRef = &ref
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()

	return &item, nil
}

// NewMySQLVaultItemRepository creates a new MySQL vault item repository.
func NewMySQLVaultItemRepository(db *sql.DB) *MySQLVaultItemRepository {
	return &MySQLVaultItemRepository{db: db}
}
