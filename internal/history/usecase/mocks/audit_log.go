// Package mocks provides mock implementations of the history use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	historyUseCase "github.com/allisson/teamvault/internal/history/usecase"
)

// MockAuditLog is a mock implementation of AuditLog for testing.
type MockAuditLog struct {
	mock.Mock
}

// Record mocks the Record method of AuditLog.
func (m *MockAuditLog) Record(
	ctx context.Context,
	itemID uuid.UUID,
	action historyDomain.Action,
	performedBy uuid.UUID,
	changes []historyDomain.Change,
) (*historyDomain.HistoryEntry, error) {
	args := m.Called(ctx, itemID, action, performedBy, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*historyDomain.HistoryEntry), args.Error(1)
}

// ListByItem mocks the ListByItem method of AuditLog.
func (m *MockAuditLog) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*historyDomain.HistoryEntry, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*historyDomain.HistoryEntry), args.Error(1)
}

// Verify mocks the Verify method of AuditLog.
func (m *MockAuditLog) Verify(ctx context.Context, itemID uuid.UUID) (*historyUseCase.VerifyReport, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*historyUseCase.VerifyReport), args.Error(1)
}
