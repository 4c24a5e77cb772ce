// Package mocks provides mock implementations of the vault item use case for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	totpDomain "github.com/allisson/teamvault/internal/totp/domain"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

// MockVaultItemUseCase is a mock implementation of VaultItemUseCase for testing.
type MockVaultItemUseCase struct {
	mock.Mock
}

func view(args mock.Arguments) (*vaultDomain.ItemView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vaultDomain.ItemView), args.Error(1)
}

// Create mocks the Create method of VaultItemUseCase.
func (m *MockVaultItemUseCase) Create(
	ctx context.Context,
	principal authDomain.Principal,
	input *vaultDomain.CreateItemInput,
) (*vaultDomain.ItemView, error) {
	return view(m.Called(ctx, principal, input))
}

// Get mocks the Get method of VaultItemUseCase.
func (m *MockVaultItemUseCase) Get(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) (*vaultDomain.ItemView, error) {
	return view(m.Called(ctx, principal, itemID))
}

// List mocks the List method of VaultItemUseCase.
func (m *MockVaultItemUseCase) List(
	ctx context.Context,
	principal authDomain.Principal,
	offset, limit int,
) ([]*vaultDomain.ItemView, error) {
	args := m.Called(ctx, principal, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vaultDomain.ItemView), args.Error(1)
}

// Update mocks the Update method of VaultItemUseCase.
func (m *MockVaultItemUseCase) Update(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	input *vaultDomain.UpdateItemInput,
) (*vaultDomain.ItemView, error) {
	return view(m.Called(ctx, principal, itemID, input))
}

// Delete mocks the Delete method of VaultItemUseCase.
func (m *MockVaultItemUseCase) Delete(ctx context.Context, principal authDomain.Principal, itemID uuid.UUID) error {
	args := m.Called(ctx, principal, itemID)
	return args.Error(0)
}

// CurrentTOTP mocks the CurrentTOTP method of VaultItemUseCase.
func (m *MockVaultItemUseCase) CurrentTOTP(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) (*totpDomain.Code, error) {
	args := m.Called(ctx, principal, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*totpDomain.Code), args.Error(1)
}

// GrantAccess mocks the GrantAccess method of VaultItemUseCase.
func (m *MockVaultItemUseCase) GrantAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	input *vaultDomain.GrantAccessInput,
) (*accessDomain.Grant, error) {
	args := m.Called(ctx, principal, itemID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Grant), args.Error(1)
}

// RevokeAccess mocks the RevokeAccess method of VaultItemUseCase.
func (m *MockVaultItemUseCase) RevokeAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
	targetType accessDomain.TargetType,
	targetID uuid.UUID,
) error {
	args := m.Called(ctx, principal, itemID, targetType, targetID)
	return args.Error(0)
}

// ListAccess mocks the ListAccess method of VaultItemUseCase.
func (m *MockVaultItemUseCase) ListAccess(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) ([]*accessDomain.Grant, error) {
	args := m.Called(ctx, principal, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.Grant), args.Error(1)
}

// ListHistory mocks the ListHistory method of VaultItemUseCase.
func (m *MockVaultItemUseCase) ListHistory(
	ctx context.Context,
	principal authDomain.Principal,
	itemID uuid.UUID,
) ([]*historyDomain.HistoryEntry, error) {
	args := m.Called(ctx, principal, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*historyDomain.HistoryEntry), args.Error(1)
}
