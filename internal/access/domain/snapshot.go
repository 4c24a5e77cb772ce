package domain

import (
	"github.com/google/uuid"
)

// AccessSnapshot is everything needed to resolve one principal's level on one item, read in a
// single query so the answer reflects one consistent state.
type AccessSnapshot struct {
	ItemID      uuid.UUID
	OwnerID     uuid.UUID
	DirectLevel Level   // LevelNone when the principal has no direct grant
	GroupLevels []Level // one entry per group grant reaching the principal
}
