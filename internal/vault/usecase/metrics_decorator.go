package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	"github.com/allisson/teamvault/internal/metrics"
	totpDomain "github.com/allisson/teamvault/internal/totp/domain"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

// vaultItemUseCaseWithMetrics decorates VaultItemUseCase with metrics instrumentation.
type vaultItemUseCaseWithMetrics struct {
	next    VaultItemUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultItemUseCaseWithMetrics wraps a VaultItemUseCase with metrics recording.
func NewVaultItemUseCaseWithMetrics(useCase VaultItemUseCase, m metrics.BusinessMetrics) VaultItemUseCase {
	return &vaultItemUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *vaultItemUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.Status(err)
	v.metrics.RecordOperation(ctx, "items", operation, status)
	v.metrics.RecordDuration(ctx, "items", operation, time.Since(start), status)
}

// Create records metrics for item creation.
func (v *vaultItemUseCaseWithMetrics) Create(
	ctx context.Context,
	principal authDomain.Principal,
	input *vaultDomain.CreateItemInput,
) (*vaultDomain.ItemView, error) {
	start := time.Now()
	view, err := v.next.Create(ctx, principal, input)
	v.record(ctx, "item_create", start, err)
	return view, err
}

// Get records metrics for item reads.
func (v *vaultItemUseCaseWithMetrics) Get(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) (*vaultDomain.ItemView, error) {
	start := time.Now()
	view, err := v.next.Get(ctx, principal, itemID)
	v.record(ctx, "item_get", start, err)
	return view, err
}

// List records metrics for item listing.
func (v *vaultItemUseCaseWithMetrics) List(
	ctx context.Context,
	principal authDomain.Principal,
	offset, limit int,
) ([]*vaultDomain.ItemView, error) {
	start := time.Now()
	views, err := v.next.List(ctx, principal, offset, limit)
	v.record(ctx, "item_list", start, err)
	return views, err
}

// Update records metrics for item updates.
func (v *vaultItemUseCaseWithMetrics) Update(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	input *vaultDomain.UpdateItemInput,
) (*vaultDomain.ItemView, error) {
	start := time.Now()
	view, err := v.next.Update(ctx, principal, itemID, input)
	v.record(ctx, "item_update", start, err)
	return view, err
}

// Delete records metrics for item deletion.
func (v *vaultItemUseCaseWithMetrics) Delete(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) error {
	start := time.Now()
	err := v.next.Delete(ctx, principal, itemID)
	v.record(ctx, "item_delete", start, err)
	return err
}

// CurrentTOTP records metrics for code generation.
func (v *vaultItemUseCaseWithMetrics) CurrentTOTP(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) (*totpDomain.Code, error) {
	start := time.Now()
	code, err := v.next.CurrentTOTP(ctx, principal, itemID)
	v.record(ctx, "item_totp", start, err)
	return code, err
}

// GrantAccess records metrics for grants.
func (v *vaultItemUseCaseWithMetrics) GrantAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	input *vaultDomain.GrantAccessInput,
) (*accessDomain.Grant, error) {
	start := time.Now()
	grant, err := v.next.GrantAccess(ctx, principal, itemID, input)
	v.record(ctx, "access_grant", start, err)
	return grant, err
}

// RevokeAccess records metrics for revocations.
func (v *vaultItemUseCaseWithMetrics) RevokeAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) error {
	start := time.Now()
	err := v.next.RevokeAccess(ctx, principal, itemID, targetType, targetID)
	v.record(ctx, "access_revoke", start, err)
	return err
}

// ListAccess records metrics for grant listing.
func (v *vaultItemUseCaseWithMetrics) ListAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) ([]*accessDomain.Grant, error) {
	start := time.Now()
	grants, err := v.next.ListAccess(ctx, principal, itemID)
	v.record(ctx, "access_list", start, err)
	return grants, err
}

// ListHistory records metrics for history reads.
func (v *vaultItemUseCaseWithMetrics) ListHistory(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) ([]*historyDomain.HistoryEntry, error) {
	start := time.Now()
	entries, err := v.next.ListHistory(ctx, principal, itemID)
	v.record(ctx, "history_list", start, err)
	return entries, err
}
