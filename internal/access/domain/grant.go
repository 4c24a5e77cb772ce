package domain

import (
	"time"

	"github.com/google/uuid"
)

// TargetType says whether a grant names a user or a group.
type TargetType string

const (
	TargetUser  TargetType = "user"
	TargetGroup TargetType = "group"
)

// ParseTargetType validates a grant target type.
func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(s) {
	case TargetUser, TargetGroup:
		return TargetType(s), nil
	default:
		return "", ErrInvalidTargetType
	}
}

// Grant is a direct (TargetUser) or group (TargetGroup) permission on an item. At most one
// grant exists per (item, target); granting again replaces the level.
type Grant struct {
	ItemID     uuid.UUID
	TargetType TargetType
	TargetID   uuid.UUID
	Level      Level
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
