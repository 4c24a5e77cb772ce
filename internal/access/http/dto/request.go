// Package dto provides data transfer objects for the group HTTP API.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/teamvault/internal/validation"
)

// CreateGroupRequest contains the name of a new group.
type CreateGroupRequest struct {
	Name string `json:"name"`
}

// Validate checks the group name.
func (r *CreateGroupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, customValidation.NotBlank, validation.RuneLength(1, 255)),
	)
}

// AddMemberRequest names the user to add and whether they administer the group.
type AddMemberRequest struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

// Validate checks the user id.
func (r *AddMemberRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.UUID),
	)
}

// UserUUID returns the parsed user id of a validated request.
func (r *AddMemberRequest) UserUUID() uuid.UUID {
	return uuid.MustParse(r.UserID)
}
