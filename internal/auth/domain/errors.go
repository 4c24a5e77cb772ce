package domain

import (
	"github.com/allisson/teamvault/internal/errors"
)

// Authentication errors.
var (
	// ErrMissingToken indicates the request has no bearer token.
	ErrMissingToken = errors.Wrap(errors.ErrUnauthorized, "missing bearer token")

	// ErrInvalidToken indicates the bearer token failed verification or has no usable subject.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid bearer token")
)
