// Package repository persists vault items for PostgreSQL and MySQL. Secret columns receive
// ciphertext only; encryption happens in the use case.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

func folderValue(folder *uuid.UUID) uuid.NullUUID {
	if folder == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *folder, Valid: true}
}

func folderRef(folder uuid.NullUUID) *uuid.UUID {
	if !folder.Valid {
		return nil
	}
	ref := folder.UUID
	return &ref
}

// PostgreSQLVaultItemRepository implements vault item persistence for PostgreSQL.
type PostgreSQLVaultItemRepository struct {
	db *sql.DB
}

// Create inserts a new item.
func (p *PostgreSQLVaultItemRepository) Create(ctx context.Context, item *vaultDomain.VaultItem) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vault_items (id, login_kind, username, password, totp_secret, website_url, 
			  notes, linked_account_ref, owner_id, folder_id, created_at, updated_at) 
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		item.ID,
		item.LoginKind,
		item.Username,
		item.Password,
		item.TOTPSecret,
		item.WebsiteURL,
		item.Notes,
		item.LinkedAccountRef,
		item.OwnerID,
		folderValue(item.FolderRef),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create vault item")
	}

	return nil
}

// Get retrieves an item by id. Returns ErrNotFound when it does not exist.
func (p *PostgreSQLVaultItemRepository) Get(ctx context.Context, itemID uuid.UUID) (*vaultDomain.VaultItem, error) {
	return p.get(ctx, itemID, false)
}

// GetForUpdate retrieves an item and locks its row until the transaction ends.
func (p *PostgreSQLVaultItemRepository) GetForUpdate(
	ctx context.Context,
	itemID uuid.UUID,
) (*vaultDomain.VaultItem, error) {
	return p.get(ctx, itemID, true)
}

func (p *PostgreSQLVaultItemRepository) get(
	ctx context.Context,
	itemID uuid.UUID,
	forUpdate bool,
) (*vaultDomain.VaultItem, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, login_kind, username, password, totp_secret, website_url, notes, 
			  linked_account_ref, owner_id, folder_id, created_at, updated_at 
			  FROM vault_items WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var item vaultDomain.VaultItem
	var folder uuid.NullUUID

	err := querier.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID,
		&item.LoginKind,
		&item.Username,
		&item.Password,
		&item.TOTPSecret,
		&item.WebsiteURL,
		&item.Notes,
		&item.LinkedAccountRef,
		&item.OwnerID,
		&folder,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get vault item")
	}

	item.FolderRef = folderRef(folder)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()

	return &item, nil
}

// Update writes every mutable column of an item. Owner and creation time never change.
func (p *PostgreSQLVaultItemRepository) Update(ctx context.Context, item *vaultDomain.VaultItem) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE vault_items SET login_kind = $1, username = $2, password = $3, totp_secret = $4, 
			  website_url = $5, notes = $6, linked_account_ref = $7, folder_id = $8, updated_at = $9 
			  WHERE id = $10`

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
		folderValue(item.FolderRef),
		item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update vault item")
	}

	return checkAffected(result)
}

// Delete removes an item. Grants are removed by the caller in the same transaction.
func (p *PostgreSQLVaultItemRepository) Delete(ctx context.Context, itemID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM vault_items WHERE id = $1`, itemID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete vault item")
	}

	return checkAffected(result)
}

// ListAccessible returns the items a principal owns or reaches through a direct or group grant,
// newest first.
func (p *PostgreSQLVaultItemRepository) ListAccessible(
	ctx context.Context,
	principalID uuid.UUID,
	offset, limit int,
) ([]*vaultDomain.VaultItem, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, login_kind, username, password, totp_secret, website_url, notes, 
			  linked_account_ref, owner_id, folder_id, created_at, updated_at 
			  FROM vault_items 
			  WHERE owner_id = $1 
			  OR id IN (SELECT item_id FROM access_grants WHERE user_id = $1) 
			  OR id IN (
				  SELECT gg.item_id FROM group_access_grants gg 
				  JOIN group_memberships m ON m.group_id = gg.group_id 
				  WHERE m.user_id = $1
			  ) 
			  ORDER BY created_at DESC, id DESC 
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, principalID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list vault items")
	}
	defer rows.Close() //nolint:errcheck

	items := make([]*vaultDomain.VaultItem, 0)
	for rows.Next() {
		var item vaultDomain.VaultItem
		var folder uuid.NullUUID

		err := rows.Scan(
			&item.ID,
			&item.LoginKind,
			&item.Username,
			&item.Password,
			&item.TOTPSecret,
			&item.WebsiteURL,
			&item.Notes,
			&item.LinkedAccountRef,
			&item.OwnerID,
			&folder,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan vault item")
		}

		item.FolderRef = folderRef(folder)
		item.CreatedAt = item.CreatedAt.UTC()
		item.UpdatedAt = item.UpdatedAt.UTC()
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate vault items")
	}

	return items, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// NewPostgreSQLVaultItemRepository creates a new PostgreSQL vault item repository.
func NewPostgreSQLVaultItemRepository(db *sql.DB) *PostgreSQLVaultItemRepository {
	return &PostgreSQLVaultItemRepository{db: db}
}
