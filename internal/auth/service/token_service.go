package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	apperrors "github.com/allisson/teamvault/internal/errors"
)

// Claims is the token payload. The subject holds the principal id.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// tokenService implements TokenService with HS256 JWTs.
type tokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService. An empty issuer disables the "iss" check.
func NewTokenService(secret []byte, issuer string) TokenService {
	return &tokenService{secret: secret, issuer: issuer}
}

// Verify parses and validates token.
func (t *tokenService) Verify(token string) (*authDomain.Principal, error) {
	if token == "" {
		return nil, authDomain.ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, apperrors.Wrapf(authDomain.ErrInvalidToken, "%v", err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return nil, authDomain.ErrInvalidToken
	}

	return &authDomain.Principal{ID: id, Role: claims.Role}, nil
}

// Issue signs a token for principal.
func (t *tokenService) Issue(principal authDomain.Principal, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: principal.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}
