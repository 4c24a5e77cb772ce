package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	"github.com/allisson/teamvault/internal/database"
	apperrors "github.com/allisson/teamvault/internal/errors"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
	historyUseCase "github.com/allisson/teamvault/internal/history/usecase"
)

const maxGroupNameLength = 255

type groupUseCase struct {
	txManager database.TxManager
	groupRepo GroupRepository
	grantRepo GroupGrantRepository
	auditLog  historyUseCase.AuditLog
}

// Create makes a group with the caller as its first admin member.
func (g *groupUseCase) Create(
	ctx context.Context,
	principal authDomain.Principal,
	name string,
) (*accessDomain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxGroupNameLength {
		return nil, accessDomain.ErrInvalidGroupName
	}

	now := time.Now().UTC()
	group := &accessDomain.Group{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		CreatedBy: principal.ID,
		CreatedAt: now,
	}

	err := g.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := g.groupRepo.Create(ctx, group); err != nil {
			return err
		}

		// The creator is the first admin
		return g.groupRepo.AddMember(ctx, &accessDomain.Membership{
			GroupID:   group.ID,
			UserID:    principal.ID,
			IsAdmin:   true,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

// AddMember adds userID to the group and records member_added on every item the group can
// reach.
func (g *groupUseCase) AddMember(
	ctx context.Context,
	principal authDomain.Principal,
	groupID, userID uuid.UUID,
	isAdmin bool,
) (*accessDomain.Membership, error) {
	membership := &accessDomain.Membership{
		GroupID:   groupID,
		UserID:    userID,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}

	err := g.txManager.WithTx(ctx, func(ctx context.Context) error {
		// Lock the group row so concurrent roster changes serialize
		if err := g.lockGroup(ctx, groupID); err != nil {
			return err
		}

		// Only admins add members
		caller, err := g.callerMembership(ctx, groupID, principal.ID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin {
			return accessDomain.ErrNotGroupAdmin
		}

		if err := g.groupRepo.AddMember(ctx, membership); err != nil {
			return err
		}

		// Fan the change out to the history of every item the group reaches

		return g.recordRosterChange(ctx, principal.ID, groupID, historyDomain.ActionMemberAdded, historyDomain.Change{
			Field:    accessDomain.MemberField(groupID),
			OldValue: "",
			NewValue: accessDomain.MemberValue(userID),
		})
	})
	if err != nil {
		return nil, err
	}

	return membership, nil
}

// RemoveMember removes userID from the group and records member_removed on every item the
// group can reach.
func (g *groupUseCase) RemoveMember(
	ctx context.Context,
	principal authDomain.Principal,
	groupID, userID uuid.UUID,
) error {
	return g.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := g.lockGroup(ctx, groupID); err != nil {
			return err
		}

		// Admins remove anyone; other members only themselves
		caller, err := g.callerMembership(ctx, groupID, principal.ID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin && principal.ID != userID {
			return accessDomain.ErrNotGroupAdmin
		}

		target, err := g.groupRepo.GetMember(ctx, groupID, userID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return accessDomain.ErrMemberNotFound
			}
			return err
		}

		// A group always keeps at least one admin
		if target.IsAdmin {
			admins, err := g.groupRepo.CountAdmins(ctx, groupID)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return accessDomain.ErrLastAdmin
			}
		}

		if err := g.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
			return err
		}

		return g.recordRosterChange(ctx, principal.ID, groupID, historyDomain.ActionMemberRemoved, historyDomain.Change{
			Field:    accessDomain.MemberField(groupID),
			OldValue: accessDomain.MemberValue(userID),
			NewValue: "",
		})
	})
}

// ListMembers returns the roster to any member of the group.
func (g *groupUseCase) ListMembers(
	ctx context.Context,
	principal authDomain.Principal,
	groupID uuid.UUID,
) ([]*accessDomain.Membership, error) {
	if _, err := g.groupRepo.Get(ctx, groupID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, accessDomain.ErrGroupNotFound
		}
		return nil, err
	}

	if _, err := g.callerMembership(ctx, groupID, principal.ID); err != nil {
		return nil, err
	}

	return g.groupRepo.ListMembers(ctx, groupID)
}

func (g *groupUseCase) lockGroup(ctx context.Context, groupID uuid.UUID) error {
	if _, err := g.groupRepo.GetForUpdate(ctx, groupID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return accessDomain.ErrGroupNotFound
		}
		return err
	}
	return nil
}

func (g *groupUseCase) callerMembership(
	ctx context.Context,
	groupID, principalID uuid.UUID,
) (*accessDomain.Membership, error) {
	membership, err := g.groupRepo.GetMember(ctx, groupID, principalID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, accessDomain.ErrNotGroupMember
		}
		return nil, err
	}
	return membership, nil
}

// recordRosterChange writes one history entry per item the group holds a grant on.
func (g *groupUseCase) recordRosterChange(
	ctx context.Context,
	performedBy, groupID uuid.UUID,
	action historyDomain.Action,
	change historyDomain.Change,
) error {
	itemIDs, err := g.grantRepo.ListItemIDsByGroup(ctx, groupID)
	if err != nil {
		return err
	}

	for _, itemID := range itemIDs {
		if _, err := g.auditLog.Record(ctx, itemID, action, performedBy, []historyDomain.Change{change}); err != nil {
			return err
		}
	}

	return nil
}

// NewGroupUseCase creates a GroupUseCase.
func NewGroupUseCase(
	txManager database.TxManager,
	groupRepo GroupRepository,
	grantRepo GroupGrantRepository,
	auditLog historyUseCase.AuditLog,
) GroupUseCase {
	return &groupUseCase{
		txManager: txManager,
		groupRepo: groupRepo,
		grantRepo: grantRepo,
		auditLog:  auditLog,
	}
}
