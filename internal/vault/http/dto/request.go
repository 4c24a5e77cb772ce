// Package dto provides data transfer objects for the vault item HTTP API.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	accessDomain "github.com/allisson/teamvault/internal/access/domain"
	customValidation "github.com/allisson/teamvault/internal/validation"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
)

const maxNotesLength = 10000

var loginKinds = []any{
	string(vaultDomain.LoginKindEmailPassword),
	string(vaultDomain.LoginKindOAuthLinked),
}

// CreateItemRequest contains the fields of a new vault item. Secrets arrive in plaintext and
// are encrypted before they are stored.
type CreateItemRequest struct {
	LoginKind        string  `json:"login_kind"`
	Username         string  `json:"username"`
	Password         string  `json:"password"`
	TOTPSecret       string  `json:"totp_secret"`
	WebsiteURL       string  `json:"website_url"`
	Notes            string  `json:"notes"`
	LinkedAccountRef string  `json:"linked_account_ref"`
	FolderRef        *string `json:"folder_ref"`
}

// Validate checks the request shape. Login kind rules are enforced by the use case.
func (r *CreateItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.LoginKind, validation.Required, validation.In(loginKinds...)),
		validation.Field(&r.WebsiteURL, customValidation.WebsiteURL),
		validation.Field(&r.Notes, validation.Length(0, maxNotesLength)),
		validation.Field(&r.LinkedAccountRef, customValidation.NoWhitespace),
		validation.Field(&r.FolderRef, customValidation.UUID),
	)
}

// ToInput converts a validated request into a use case input.
func (r *CreateItemRequest) ToInput(reveal bool) *vaultDomain.CreateItemInput {
	return &vaultDomain.CreateItemInput{
		ItemFields: vaultDomain.ItemFields{
			LoginKind:        vaultDomain.LoginKind(r.LoginKind),
			Username:         r.Username,
			Password:         r.Password,
			TOTPSecret:       r.TOTPSecret,
			WebsiteURL:       r.WebsiteURL,
			Notes:            r.Notes,
			LinkedAccountRef: r.LinkedAccountRef,
			FolderRef:        parseFolder(r.FolderRef),
		},
		Reveal: reveal,
	}
}

// UpdateItemRequest carries a partial update; omitted fields keep their value. An empty
// folder_ref removes the item from its folder.
type UpdateItemRequest struct {
	LoginKind        *string `json:"login_kind"`
	Username         *string `json:"username"`
	Password         *string `json:"password"`
	TOTPSecret       *string `json:"totp_secret"`
	WebsiteURL       *string `json:"website_url"`
	Notes            *string `json:"notes"`
	LinkedAccountRef *string `json:"linked_account_ref"`
	FolderRef        *string `json:"folder_ref"`
}

// Validate checks the supplied fields.
func (r *UpdateItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.LoginKind, validation.NilOrNotEmpty, validation.In(loginKinds...)),
		validation.Field(&r.WebsiteURL, customValidation.WebsiteURL),
		validation.Field(&r.Notes, validation.Length(0, maxNotesLength)),
		validation.Field(&r.LinkedAccountRef, customValidation.NoWhitespace),
		validation.Field(&r.FolderRef, customValidation.UUID),
	)
}

// ToInput converts a validated request into a use case input.
func (r *UpdateItemRequest) ToInput() *vaultDomain.UpdateItemInput {
	input := &vaultDomain.UpdateItemInput{
		Username:         r.Username,
		Password:         r.Password,
		TOTPSecret:       r.TOTPSecret,
		WebsiteURL:       r.WebsiteURL,
		Notes:            r.Notes,
		LinkedAccountRef: r.LinkedAccountRef,
	}
	if r.LoginKind != nil {
		kind := vaultDomain.LoginKind(*r.LoginKind)
		input.LoginKind = &kind
	}
	if r.FolderRef != nil {
		if *r.FolderRef == "" {
			input.ClearFolderRef = true
		} else {
			input.FolderRef = parseFolder(r.FolderRef)
		}
	}
	return input
}

// GrantAccessRequest names the user or group to grant and the level.
type GrantAccessRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Level      string `json:"level"`
}

// Validate checks the grant target and level.
func (r *GrantAccessRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TargetType,
			validation.Required,
			validation.In(string(accessDomain.TargetUser), string(accessDomain.TargetGroup)),
		),
		validation.Field(&r.TargetID, validation.Required, customValidation.UUID),
		validation.Field(&r.Level,
			validation.Required,
			validation.In(string(accessDomain.LevelRead), string(accessDomain.LevelEdit)),
		),
	)
}

// ToInput converts a validated request into a use case input.
func (r *GrantAccessRequest) ToInput() *vaultDomain.GrantAccessInput {
	return &vaultDomain.GrantAccessInput{
		TargetType: accessDomain.TargetType(r.TargetType),
		TargetID:   uuid.MustParse(r.TargetID),
		Level:      accessDomain.Level(r.Level),
	}
}

func parseFolder(raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	folder := uuid.MustParse(*raw)
	return &folder
}
