// Package usecase orchestrates vault item operations: it authorizes every call against a single
// access snapshot, moves secrets through the cipher, derives TOTP codes and records history in
// the same transaction as each mutation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	totpDomain "github.com/allisson/teamvault/internal/totp/domain"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

// VaultItemRepository defines the interface for vault item persistence.
type VaultItemRepository interface {
	Create(ctx context.Context, item *vaultDomain.VaultItem) error
	Get(ctx context.Context, itemID uuid.UUID) (*vaultDomain.VaultItem, error)
	GetForUpdate(ctx context.Context, itemID uuid.UUID) (*vaultDomain.VaultItem, error)
	Update(ctx context.Context, item *vaultDomain.VaultItem) error
	Delete(ctx context.Context, itemID uuid.UUID) error
	ListAccessible(ctx context.Context, principalID uuid.UUID, offset, limit int) ([]*vaultDomain.VaultItem, error)
}

// GrantRepository defines the interface for user and group grant persistence.
type GrantRepository interface {
	// GetAccessSnapshot returns ErrNotFound when the item does not exist.
	GetAccessSnapshot(ctx context.Context, itemID, principalID uuid.UUID) (*accessDomain.AccessSnapshot, error)
	Upsert(ctx context.Context, grant *accessDomain.Grant) error
	Get(
		ctx context.Context,
		itemID uuid.UUID,
		targetType accessDomain.TargetType,
		targetID uuid.UUID,
	) (*accessDomain.Grant, error)
	Delete(ctx context.Context, itemID uuid.UUID, targetType accessDomain.TargetType, targetID uuid.UUID) error
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*accessDomain.Grant, error)
	DeleteByItem(ctx context.Context, itemID uuid.UUID) error
}

// GroupRepository resolves grant targets of type group.
type GroupRepository interface {
	Get(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error)
}

// VaultItemUseCase defines the operations exposed to the API layer. Missing items fail with
// ErrItemNotFound and insufficient levels with ErrItemAccessDenied.
type VaultItemUseCase interface {
	// Create stores a new item owned by the caller. Secrets are redacted in the result unless
	// input.Reveal is set.
	Create(
		ctx context.Context,
		principal authDomain.Principal,
		input *vaultDomain.CreateItemInput,
	) (*vaultDomain.ItemView, error)

	// Get returns the decrypted item to callers with Read or higher.
	Get(ctx context.Context, principal authDomain.Principal, itemID uuid.UUID) (*vaultDomain.ItemView, error)

	// List returns the items the caller can see, secrets redacted.
	List(
		ctx context.Context,
		principal authDomain.Principal,
		offset, limit int,
	) ([]*vaultDomain.ItemView, error)

	// Update changes only the supplied fields. Requires Edit or higher.
	Update(
		ctx context.Context,
		principal authDomain.Principal,
		itemID uuid.UUID,
		input *vaultDomain.UpdateItemInput,
	) (*vaultDomain.ItemView, error)

	// Delete removes the item and its grants. Owner only.
	Delete(ctx context.Context, principal authDomain.Principal, itemID uuid.UUID) error

	// CurrentTOTP returns the zero Code when the item has no usable seed.
	CurrentTOTP(
		ctx context.Context,
		principal authDomain.Principal,
		itemID uuid.UUID,
	) (*totpDomain.Code, error)

	// GrantAccess creates or replaces a user or group grant. Owner only.
	GrantAccess(
		ctx context.Context,
		principal authDomain.Principal,
		itemID uuid.UUID,
		input *vaultDomain.GrantAccessInput,
	) (*accessDomain.Grant, error)

	// RevokeAccess removes a grant. Owner only.
	RevokeAccess(
		ctx context.Context,
		principal authDomain.Principal,
		itemID uuid.UUID,
		targetType accessDomain.TargetType,
		targetID uuid.UUID,
	) error

	// ListAccess returns every grant on the item. Owner only.
	ListAccess(
		ctx context.Context,
		principal authDomain.Principal,
		itemID uuid.UUID,
	) ([]*accessDomain.Grant, error)

	// ListHistory returns the item's history oldest first. Requires Read or higher.
	ListHistory(
		ctx context.Context,
		principal authDomain.Principal,
		itemID uuid.UUID,
	) ([]*historyDomain.HistoryEntry, error)
}
