package domain

import (
	"github.com/allisson/teamvault/internal/errors"
)

// Access and group errors.
var (
	// ErrInvalidLevel indicates a grant level other than read or edit.
	ErrInvalidLevel = errors.Wrap(errors.ErrInvalidInput, "level must be read or edit")

	// ErrInvalidTargetType indicates a grant target other than user or group.
	ErrInvalidTargetType = errors.Wrap(errors.ErrInvalidInput, "target type must be user or group")

	// ErrGrantNotFound indicates no grant exists for the item and target.
	ErrGrantNotFound = errors.Wrap(errors.ErrNotFound, "access grant not found")

	// ErrGrantToOwner indicates a grant naming the item owner, whose access is implicit.
	ErrGrantToOwner = errors.Wrap(errors.ErrConflict, "owner access cannot be granted")

	// ErrGroupNotFound indicates the group does not exist.
	ErrGroupNotFound = errors.Wrap(errors.ErrNotFound, "group not found")

	// ErrMemberNotFound indicates the user is not a member of the group.
	ErrMemberNotFound = errors.Wrap(errors.ErrNotFound, "group member not found")

	// ErrMemberAlreadyExists indicates the user is already a member of the group.
	ErrMemberAlreadyExists = errors.Wrap(errors.ErrConflict, "user is already a group member")

	// ErrLastAdmin indicates the change would leave the group without an admin.
	ErrLastAdmin = errors.Wrap(errors.ErrConflict, "group must keep at least one admin")

	// ErrNotGroupAdmin indicates the caller may not change the group roster.
	ErrNotGroupAdmin = errors.Wrap(errors.ErrForbidden, "group admin required")

	// ErrNotGroupMember indicates the caller does not belong to the group.
	ErrNotGroupMember = errors.Wrap(errors.ErrForbidden, "group membership required")
)

// ErrInvalidGroupName indicates an empty or oversized group name.
var ErrInvalidGroupName = errors.Wrap(errors.ErrInvalidInput, "group name must be 1-255 characters")
