package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	"github.com/allisson/teamvault/internal/metrics"
)

// groupUseCaseWithMetrics decorates GroupUseCase with metrics instrumentation.
type groupUseCaseWithMetrics struct {
	next    GroupUseCase
	metrics metrics.BusinessMetrics
}

// NewGroupUseCaseWithMetrics wraps a GroupUseCase with metrics recording.
func NewGroupUseCaseWithMetrics(useCase GroupUseCase, m metrics.BusinessMetrics) GroupUseCase {
	return &groupUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (g *groupUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.Status(err)
	g.metrics.RecordOperation(ctx, "groups", operation, status)
	g.metrics.RecordDuration(ctx, "groups", operation, time.Since(start), status)
}

// Create records metrics for group creation.
func (g *groupUseCaseWithMetrics) Create(
	ctx context.Context,
	principal authDomain.Principal,
	name string,
) (*accessDomain.Group, error) {
	start := time.Now()
	group, err := g.next.Create(ctx, principal, name)
	g.record(ctx, "group_create", start, err)
	return group, err
}

// AddMember records metrics for member additions.
func (g *groupUseCaseWithMetrics) AddMember(
	ctx context.Context,
	principal authDomain.Principal,
	groupID, userID uuid.UUID,
	isAdmin bool,
) (*accessDomain.Membership, error) {
	start := time.Now()
	membership, err := g.next.AddMember(ctx, principal, groupID, userID, isAdmin)
	g.record(ctx, "member_add", start, err)
	return membership, err
}

// RemoveMember records metrics for member removals.
func (g *groupUseCaseWithMetrics) RemoveMember(
	ctx context.Context,
	principal authDomain.Principal,
	groupID, userID uuid.UUID,
) error {
	start := time.Now()
	err := g.next.RemoveMember(ctx, principal, groupID, userID)
	g.record(ctx, "member_remove", start, err)
	return err
}

// ListMembers records metrics for roster reads.
func (g *groupUseCaseWithMetrics) ListMembers(
	ctx context.Context,
	principal authDomain.Principal,
	groupID uuid.UUID,
) ([]*accessDomain.Membership, error) {
	start := time.Now()
	members, err := g.next.ListMembers(ctx, principal, groupID)
	g.record(ctx, "member_list", start, err)
	return members, err
}
