package domain

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named set of users that can hold grants on items.
type Group struct {
	ID        uuid.UUID
	Name      string
	CreatedBy uuid.UUID
	CreatedAt time.Time
}

// Membership places a user in a group. IsAdmin lets the member change the roster; it has no
// bearing on item access.
type Membership struct {
	GroupID   uuid.UUID
	UserID    uuid.UUID
	IsAdmin   bool
	CreatedAt time.Time
}
