// Package service computes effective access levels from access snapshots.
package service

import (
	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
)

// Resolver turns an AccessSnapshot into an effective level. It holds no state and never reads
// from storage, so one call sees exactly one snapshot.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// EffectiveLevel returns Owner when principalID owns the item, otherwise the highest level
// across the direct grant and every group grant, otherwise None. A weaker path never lowers a
// stronger one.
func (r *Resolver) EffectiveLevel(principalID uuid.UUID, snapshot *accessDomain.AccessSnapshot) accessDomain.Level {
	if snapshot == nil {
		return accessDomain.LevelNone
	}

	if principalID != uuid.Nil && principalID == snapshot.OwnerID {
		return accessDomain.LevelOwner
	}

	level := grantedOnly(snapshot.DirectLevel)
	for _, groupLevel := range snapshot.GroupLevels {
		level = accessDomain.MaxLevel(level, grantedOnly(groupLevel))
	}

	return level
}

// CanView reports whether level allows reading the item, its TOTP code and its history.
func CanView(level accessDomain.Level) bool {
	return level.AtLeast(accessDomain.LevelRead)
}

// CanEdit reports whether level allows changing the item.
func CanEdit(level accessDomain.Level) bool {
	return level.AtLeast(accessDomain.LevelEdit)
}

// IsOwner reports whether level allows deleting the item and managing its grants.
func IsOwner(level accessDomain.Level) bool {
	return level == accessDomain.LevelOwner
}

// grantedOnly drops levels a stored grant can never legitimately carry.
func grantedOnly(level accessDomain.Level) accessDomain.Level {
	if level.IsGrantable() {
		return level
	}
	return accessDomain.LevelNone
}
