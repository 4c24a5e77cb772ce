package domain

import (
	"github.com/allisson/teamvault/internal/errors"
)

// Vault item error definitions.
var (
	// ErrItemNotFound indicates the item does not exist. Handlers report it exactly like
	// ErrItemAccessDenied so callers cannot enumerate item ids.
	ErrItemNotFound = errors.Wrap(errors.ErrNotFound, "vault item not found")

	// ErrItemAlreadyDeleted indicates a delete of an item whose retained history already holds a
	// deleted entry. Handlers report it like ErrItemNotFound.
	ErrItemAlreadyDeleted = errors.Wrap(errors.ErrConflict, "vault item already deleted")

	// ErrItemAccessDenied indicates the caller's effective level is too low for the operation.
	ErrItemAccessDenied = errors.Wrap(errors.ErrForbidden, "vault item access denied")

	// ErrInvalidLoginKind indicates a login kind other than email_password or oauth_linked.
	ErrInvalidLoginKind = errors.Wrap(errors.ErrInvalidInput, "login kind must be email_password or oauth_linked")

	// ErrUsernameRequired indicates an email_password item without a username.
	ErrUsernameRequired = errors.Wrap(errors.ErrInvalidInput, "username is required for email_password items")

	// ErrLinkedAccountRequired indicates an oauth_linked item without a linked account reference.
	ErrLinkedAccountRequired = errors.Wrap(
		errors.ErrInvalidInput,
		"linked_account_ref is required for oauth_linked items",
	)

	// ErrLinkedAccountNotAllowed indicates a linked account reference on an email_password item.
	ErrLinkedAccountNotAllowed = errors.Wrap(
		errors.ErrInvalidInput,
		"linked_account_ref is only allowed on oauth_linked items",
	)
)
