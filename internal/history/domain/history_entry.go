// Package domain defines the append-only history ledger of vault item changes.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action names the kind of change a history entry records.
type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionAccessGranted Action = "access_granted"
	ActionAccessRevoked Action = "access_revoked"
	ActionMemberAdded   Action = "member_added"
	ActionMemberRemoved Action = "member_removed"
)

// RedactedMarker stands in for a secret value that is set. An absent secret is recorded as "".
const RedactedMarker = "<redacted>"

// Change is one field-level difference.
type Change struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// HistoryEntry is an immutable record of who changed what on an item. Entries outlive the item.
type HistoryEntry struct {
	ID          uuid.UUID
	ItemID      uuid.UUID
	Action      Action
	PerformedBy uuid.UUID
	Changes     []Change
	CreatedAt   time.Time
	Signature   []byte
}

// ItemState is the plaintext view of a vault item used to compute a diff. Secret fields are
// compared in plaintext and written to the ledger only as markers.
type ItemState struct {
	LoginKind        string
	Username         string
	Password         string
	TOTPSecret       string
	WebsiteURL       string
	Notes            string
	LinkedAccountRef string
	FolderRef        string
}
