// Package service verifies bearer tokens and turns them into principals.
package service

import (
	"time"

	authDomain "github.com/allisson/teamvault/internal/auth/domain"
)

// TokenService verifies signed bearer tokens.
type TokenService interface {
	// Verify checks the signature, expiry and issuer of token and returns its principal.
	Verify(token string) (*authDomain.Principal, error)

	// Issue signs a token for principal valid for ttl. Used by tooling and tests; production
	// tokens come from the identity provider.
	Issue(principal authDomain.Principal, ttl time.Duration) (string, error)
}
