// Package domain defines the resolved caller identity that every vault operation receives.
package domain

import (
	"github.com/google/uuid"
)

// Principal is an already-authenticated caller. Token issuance and login live outside this
// service; only the verified subject and optional role reach the use cases.
type Principal struct {
	ID   uuid.UUID
	Role string
}
