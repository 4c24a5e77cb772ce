package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	apperrors "github.com/allisson/teamvault/internal/errors"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService([]byte("secret"), "idp")
	principal := authDomain.Principal{ID: uuid.Must(uuid.NewV7()), Role: "member"}

	token, err := svc.Issue(principal, time.Minute)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, principal, *got)
}

func TestTokenService_Verify_Failures(t *testing.T) {
	svc := NewTokenService([]byte("secret"), "idp")
	principal := authDomain.Principal{ID: uuid.Must(uuid.NewV7())}

	expired, err := svc.Issue(principal, -time.Minute)
	require.NoError(t, err)

	otherSecret, err := NewTokenService([]byte("other"), "idp").Issue(principal, time.Minute)
	require.NoError(t, err)

	otherIssuer, err := NewTokenService([]byte("secret"), "evil").Issue(principal, time.Minute)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "idp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: principal.ID.String(), Issuer: "idp"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"wrong issuer", otherIssuer},
		{"non uuid subject", badSubject},
		{"no expiry", noExpiry},
		{"garbage", "not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Verify(tt.token)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
			assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		})
	}

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, authDomain.ErrMissingToken)
}

func TestTokenService_NoIssuerCheck(t *testing.T) {
	principal := authDomain.Principal{ID: uuid.Must(uuid.NewV7())}

	token, err := NewTokenService([]byte("secret"), "anyone").Issue(principal, time.Minute)
	require.NoError(t, err)

	got, err := NewTokenService([]byte("secret"), "").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, got.ID)
}
