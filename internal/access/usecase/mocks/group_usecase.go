// Package mocks provides mock implementations of the access use cases for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
)

// MockGroupUseCase is a mock implementation of GroupUseCase for testing.
type MockGroupUseCase struct {
	mock.Mock
}

// Create mocks the Create method of GroupUseCase.
func (m *MockGroupUseCase) Create(
	ctx context.Context,
	principal authDomain.Principal,
	name string,
) (*accessDomain.Group, error) {
	args := m.Called(ctx, principal, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Group), args.Error(1)
}

// AddMember mocks the AddMember method of GroupUseCase.
func (m *MockGroupUseCase) AddMember(
	ctx context.Context,
	principal authDomain.Principal,
	groupID, userID uuid.UUID,
	isAdmin bool,
) (*accessDomain.Membership, error) {
	args := m.Called(ctx, principal, groupID, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Membership), args.Error(1)
}

// RemoveMember mocks the RemoveMember method of GroupUseCase.
func (m *MockGroupUseCase) RemoveMember(
	ctx context.Context,
	principal authDomain.Principal,
	groupID, userID uuid.UUID,
) error {
	args := m.Called(ctx, principal, groupID, userID)
	return args.Error(0)
}

// ListMembers mocks the ListMembers method of GroupUseCase.
func (m *MockGroupUseCase) ListMembers(
	ctx context.Context,
	principal authDomain.Principal,
	groupID uuid.UUID,
) ([]*accessDomain.Membership, error) {
	args := m.Called(ctx, principal, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.Membership), args.Error(1)
}
