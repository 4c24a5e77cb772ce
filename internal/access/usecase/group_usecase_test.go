package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	apperrors "github.com/allisson/teamvault/internal/errors"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	historyMocks "github.com/allisson/teamvault/internal/history/usecase/mocks"
)

type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type mockGroupRepository struct {
	mock.Mock
}

func (m *mockGroupRepository) Create(ctx context.Context, group *accessDomain.Group) error {
	return m.Called(ctx, group).Error(0)
}

func (m *mockGroupRepository) Get(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) GetForUpdate(ctx context.Context, groupID uuid.UUID) (*accessDomain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Group), args.Error(1)
}

func (m *mockGroupRepository) AddMember(ctx context.Context, membership *accessDomain.Membership) error {
	return m.Called(ctx, membership).Error(0)
}

func (m *mockGroupRepository) GetMember(
	ctx context.Context,
	groupID, userID uuid.UUID,
) (*accessDomain.Membership, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accessDomain.Membership), args.Error(1)
}

func (m *mockGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return m.Called(ctx, groupID, userID).Error(0)
}

func (m *mockGroupRepository) ListMembers(
	ctx context.Context,
	groupID uuid.UUID,
) ([]*accessDomain.Membership, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*accessDomain.Membership), args.Error(1)
}

func (m *mockGroupRepository) CountAdmins(ctx context.Context, groupID uuid.UUID) (int, error) {
	args := m.Called(ctx, groupID)
	return args.Int(0), args.Error(1)
}

type mockGroupGrantRepository struct {
	mock.Mock
}

func (m *mockGroupGrantRepository) ListItemIDsByGroup(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type groupFixture struct {
	txManager *mockTxManager
	groupRepo *mockGroupRepository
	grantRepo *mockGroupGrantRepository
	auditLog  *historyMocks.MockAuditLog
	useCase   GroupUseCase
}

func newGroupFixture() *groupFixture {
	f := &groupFixture{
		txManager: &mockTxManager{},
		groupRepo: &mockGroupRepository{},
		grantRepo: &mockGroupGrantRepository{},
		auditLog:  &historyMocks.MockAuditLog{},
	}
	f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
	f.useCase = NewGroupUseCase(f.txManager, f.groupRepo, f.grantRepo, f.auditLog)
	return f
}

func principal() authDomain.Principal {
	return authDomain.Principal{ID: uuid.Must(uuid.NewV7())}
}

func TestGroupUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CreatorIsAdmin", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()

		f.groupRepo.On("Create", ctx, mock.MatchedBy(func(g *accessDomain.Group) bool {
			return g.Name == "platform" && g.CreatedBy == caller.ID
		})).Return(nil).Once()
		f.groupRepo.On("AddMember", ctx, mock.MatchedBy(func(m *accessDomain.Membership) bool {
			return m.UserID == caller.ID && m.IsAdmin
		})).Return(nil).Once()

		group, err := f.useCase.Create(ctx, caller, "  platform ")
		require.NoError(t, err)
		assert.Equal(t, "platform", group.Name)
		f.groupRepo.AssertExpectations(t)
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		f := newGroupFixture()

		for _, name := range []string{"", "   ", strings.Repeat("g", 256)} {
			_, err := f.useCase.Create(ctx, principal(), name)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		}
		f.groupRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestGroupUseCase_AddMember(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_FansOutHistory", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()
		items := []uuid.UUID{uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())}

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).
			Return(&accessDomain.Membership{GroupID: groupID, UserID: caller.ID, IsAdmin: true}, nil)
		f.groupRepo.On("AddMember", ctx, mock.MatchedBy(func(m *accessDomain.Membership) bool {
			return m.GroupID == groupID && m.UserID == userID && !m.IsAdmin
		})).Return(nil).Once()
		f.grantRepo.On("ListItemIDsByGroup", ctx, groupID).Return(items, nil)

		expectedChanges := []historyDomain.Change{{
			Field:    accessDomain.MemberField(groupID),
			OldValue: "",
			NewValue: accessDomain.MemberValue(userID),
		}}
		for _, itemID := range items {
			f.auditLog.On("Record", ctx, itemID, historyDomain.ActionMemberAdded, caller.ID, expectedChanges).
				Return(&historyDomain.HistoryEntry{}, nil).Once()
		}

		membership, err := f.useCase.AddMember(ctx, caller, groupID, userID, false)
		require.NoError(t, err)
		assert.Equal(t, userID, membership.UserID)
		f.auditLog.AssertExpectations(t)
		f.groupRepo.AssertExpectations(t)
	})

	t.Run("Error_NotAdmin", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).
			Return(&accessDomain.Membership{GroupID: groupID, UserID: caller.ID}, nil)

		_, err := f.useCase.AddMember(ctx, caller, groupID, userID, false)
		assert.ErrorIs(t, err, accessDomain.ErrNotGroupAdmin)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.groupRepo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything)
	})

	t.Run("Error_NotMember", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).Return(nil, apperrors.ErrNotFound)

		_, err := f.useCase.AddMember(ctx, caller, groupID, userID, false)
		assert.ErrorIs(t, err, accessDomain.ErrNotGroupMember)
	})

	t.Run("Error_GroupNotFound", func(t *testing.T) {
		f := newGroupFixture()

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(nil, apperrors.ErrNotFound)

		_, err := f.useCase.AddMember(ctx, principal(), groupID, userID, false)
		assert.ErrorIs(t, err, accessDomain.ErrGroupNotFound)
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).
			Return(&accessDomain.Membership{IsAdmin: true}, nil)
		f.groupRepo.On("AddMember", ctx, mock.Anything).Return(accessDomain.ErrMemberAlreadyExists)

		_, err := f.useCase.AddMember(ctx, caller, groupID, userID, true)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		f.auditLog.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_HistoryFailureAborts", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()
		itemID := uuid.Must(uuid.NewV7())

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).Return(&accessDomain.Membership{IsAdmin: true}, nil)
		f.groupRepo.On("AddMember", ctx, mock.Anything).Return(nil)
		f.grantRepo.On("ListItemIDsByGroup", ctx, groupID).Return([]uuid.UUID{itemID}, nil)
		f.auditLog.On("Record", ctx, itemID, historyDomain.ActionMemberAdded, caller.ID, mock.Anything).
			Return(nil, errors.New("history unavailable"))

		_, err := f.useCase.AddMember(ctx, caller, groupID, userID, false)
		assert.EqualError(t, err, "history unavailable")
	})
}

func TestGroupUseCase_RemoveMember(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.Must(uuid.NewV7())

	t.Run("Success_AdminRemovesMember", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()
		userID := uuid.Must(uuid.NewV7())
		itemID := uuid.Must(uuid.NewV7())

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).Return(&accessDomain.Membership{IsAdmin: true}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, userID).Return(&accessDomain.Membership{UserID: userID}, nil)
		f.groupRepo.On("RemoveMember", ctx, groupID, userID).Return(nil).Once()
		f.grantRepo.On("ListItemIDsByGroup", ctx, groupID).Return([]uuid.UUID{itemID}, nil)
		f.auditLog.On("Record", ctx, itemID, historyDomain.ActionMemberRemoved, caller.ID, []historyDomain.Change{{
			Field:    accessDomain.MemberField(groupID),
			OldValue: accessDomain.MemberValue(userID),
			NewValue: "",
		}}).Return(&historyDomain.HistoryEntry{}, nil).Once()

		require.NoError(t, f.useCase.RemoveMember(ctx, caller, groupID, userID))
		f.groupRepo.AssertExpectations(t)
		f.auditLog.AssertExpectations(t)
	})

	t.Run("Success_MemberLeaves", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).Return(&accessDomain.Membership{UserID: caller.ID}, nil)
		f.groupRepo.On("RemoveMember", ctx, groupID, caller.ID).Return(nil).Once()
		f.grantRepo.On("ListItemIDsByGroup", ctx, groupID).Return([]uuid.UUID{}, nil)

		require.NoError(t, f.useCase.RemoveMember(ctx, caller, groupID, caller.ID))
		f.groupRepo.AssertExpectations(t)
	})

	t.Run("Error_NonAdminRemovesOther", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).Return(&accessDomain.Membership{UserID: caller.ID}, nil)

		err := f.useCase.RemoveMember(ctx, caller, groupID, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, accessDomain.ErrNotGroupAdmin)
	})

	t.Run("Error_LastAdmin", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).
			Return(&accessDomain.Membership{UserID: caller.ID, IsAdmin: true}, nil)
		f.groupRepo.On("CountAdmins", ctx, groupID).Return(1, nil)

		err := f.useCase.RemoveMember(ctx, caller, groupID, caller.ID)
		assert.ErrorIs(t, err, accessDomain.ErrLastAdmin)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		f.groupRepo.AssertNotCalled(t, "RemoveMember", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_MemberNotFound", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()
		userID := uuid.Must(uuid.NewV7())

		f.groupRepo.On("GetForUpdate", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).Return(&accessDomain.Membership{IsAdmin: true}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, userID).Return(nil, apperrors.ErrNotFound)

		err := f.useCase.RemoveMember(ctx, caller, groupID, userID)
		assert.ErrorIs(t, err, accessDomain.ErrMemberNotFound)
	})
}

func TestGroupUseCase_ListMembers(t *testing.T) {
	ctx := context.Background()
	groupID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()
		members := []*accessDomain.Membership{{GroupID: groupID, UserID: caller.ID, IsAdmin: true}}

		f.groupRepo.On("Get", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).Return(members[0], nil)
		f.groupRepo.On("ListMembers", ctx, groupID).Return(members, nil)

		result, err := f.useCase.ListMembers(ctx, caller, groupID)
		require.NoError(t, err)
		assert.Equal(t, members, result)
	})

	t.Run("Error_Outsider", func(t *testing.T) {
		f := newGroupFixture()
		caller := principal()

		f.groupRepo.On("Get", ctx, groupID).Return(&accessDomain.Group{ID: groupID}, nil)
		f.groupRepo.On("GetMember", ctx, groupID, caller.ID).Return(nil, apperrors.ErrNotFound)

		_, err := f.useCase.ListMembers(ctx, caller, groupID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("Error_GroupNotFound", func(t *testing.T) {
		f := newGroupFixture()

		f.groupRepo.On("Get", ctx, groupID).Return(nil, apperrors.ErrNotFound)

		_, err := f.useCase.ListMembers(ctx, principal(), groupID)
		assert.ErrorIs(t, err, accessDomain.ErrGroupNotFound)
	})
}
