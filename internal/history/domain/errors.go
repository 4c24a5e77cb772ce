package domain

import (
	"github.com/allisson/teamvault/internal/errors"
)

// ErrEmptyChanges indicates an update entry with nothing to record.
var ErrEmptyChanges = errors.Wrap(errors.ErrInvalidInput, "history entry has no changes")
