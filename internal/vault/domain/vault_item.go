// Package domain defines vault items: stored credentials whose secret fields are kept only as
// ciphertext, with one immutable owner.
package domain

import (
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	historyDomain "github.com/allisson/teamvault/internal/history/domain"
)

// LoginKind is the closed set of credential shapes an item can take.
type LoginKind string

const (
	LoginKindEmailPassword LoginKind = "email_password"
	LoginKindOAuthLinked   LoginKind = "oauth_linked"
)

// ParseLoginKind validates a login kind.
func ParseLoginKind(s string) (LoginKind, error) {
	kind := LoginKind(s)
	switch kind {
	case LoginKindEmailPassword, LoginKindOAuthLinked:
		return kind, nil
	default:
		return "", ErrInvalidLoginKind
	}
}

// VaultItem is a stored credential as persisted. Username, Password and TOTPSecret hold
// ciphertext produced by the secret cipher; "" means the field is not set.
type VaultItem struct {
	ID               uuid.UUID
	LoginKind        LoginKind
	Username         string
	Password         string
	TOTPSecret       string
	WebsiteURL       string
	Notes            string
	LinkedAccountRef string
	OwnerID          uuid.UUID
	FolderRef        *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ItemFields is the plaintext, caller-editable content of an item.
type ItemFields struct {
	LoginKind        LoginKind
	Username         string
	Password         string
	TOTPSecret       string
	WebsiteURL       string
	Notes            string
	LinkedAccountRef string
	FolderRef        *uuid.UUID
}

// Validate enforces the per-kind required fields.
func (f ItemFields) Validate() error {
	switch f.LoginKind {
	case LoginKindEmailPassword:
		if f.Username == "" {
			return ErrUsernameRequired
		}
		if f.LinkedAccountRef != "" {
			return ErrLinkedAccountNotAllowed
		}
		return nil
	case LoginKindOAuthLinked:
		if f.LinkedAccountRef == "" {
			return ErrLinkedAccountRequired
		}
		return nil
	default:
		return ErrInvalidLoginKind
	}
}

// State converts f to the shape compared by the history differ.
func (f ItemFields) State() *historyDomain.ItemState {
	state := &historyDomain.ItemState{
		LoginKind:        string(f.LoginKind),
		Username:         f.Username,
		Password:         f.Password,
		TOTPSecret:       f.TOTPSecret,
		WebsiteURL:       f.WebsiteURL,
		Notes:            f.Notes,
		LinkedAccountRef: f.LinkedAccountRef,
	}
	if f.FolderRef != nil {
		state.FolderRef = f.FolderRef.String()
	}
	return state
}

// Redacted returns a copy of f with set secrets replaced by the redaction marker. The
// username stays visible.
func (f ItemFields) Redacted() ItemFields {
	f.Password = redact(f.Password)
	f.TOTPSecret = redact(f.TOTPSecret)
	return f
}

func redact(value string) string {
	if value == "" {
		return ""
	}
	return historyDomain.RedactedMarker
}

// CreateItemInput carries a new item. Reveal asks for plaintext secrets in the response.
type CreateItemInput struct {
	ItemFields
	Reveal bool
}

// UpdateItemInput carries a partial update. Nil fields are left untouched; ClearFolderRef
// removes the folder.
type UpdateItemInput struct {
	LoginKind        *LoginKind
	Username         *string
	Password         *string
	TOTPSecret       *string
	WebsiteURL       *string
	Notes            *string
	LinkedAccountRef *string
	FolderRef        *uuid.UUID
	ClearFolderRef   bool
}

// Apply returns current with the supplied fields replaced.
func (in *UpdateItemInput) Apply(current ItemFields) ItemFields {
	next := current
	if in.LoginKind != nil {
		next.LoginKind = *in.LoginKind
	}
	if in.Username != nil {
		next.Username = *in.Username
	}
	if in.Password != nil {
		next.Password = *in.Password
	}
	if in.TOTPSecret != nil {
		next.TOTPSecret = *in.TOTPSecret
	}
	if in.WebsiteURL != nil {
		next.WebsiteURL = *in.WebsiteURL
	}
	if in.Notes != nil {
		next.Notes = *in.Notes
	}
	if in.LinkedAccountRef != nil {
		next.LinkedAccountRef = *in.LinkedAccountRef
	}
	if in.ClearFolderRef {
		next.FolderRef = nil
	} else if in.FolderRef != nil {
		folder := *in.FolderRef
		next.FolderRef = &folder
	}
	return next
}

// GrantAccessInput names the target and level of a grant.
type GrantAccessInput struct {
	TargetType accessDomain.TargetType
	TargetID   uuid.UUID
	Level      accessDomain.Level
}

// ItemView is an item as returned to a caller: plaintext fields (redacted unless Revealed)
// and the caller's effective level.
type ItemView struct {
	ID             uuid.UUID
	Fields         ItemFields
	OwnerID        uuid.UUID
	EffectiveLevel accessDomain.Level
	Revealed       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
