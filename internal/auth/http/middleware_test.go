package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	authService "github.com/allisson/teamvault/internal/auth/service"
	"github.com/allisson/teamvault/internal/httputil"
)

func newAuthRouter(tokenService authService.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(AuthenticationMiddleware(tokenService, logger))
	router.GET("/whoami", func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": principal.ID.String(), "role": principal.Role})
	})
	return router
}

func TestAuthenticationMiddleware(t *testing.T) {
	tokenService := authService.NewTokenService([]byte("secret"), "")
	router := newAuthRouter(tokenService)
	principal := authDomain.Principal{ID: uuid.Must(uuid.NewV7()), Role: "admin"}

	token, err := tokenService.Issue(principal, time.Minute)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		for _, scheme := range []string{"Bearer ", "bearer ", "BEARER "} {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", scheme+token)
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"id":"`+principal.ID.String()+`","role":"admin"}`, w.Body.String())
		}
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer", "Bearer "},
		{"invalid token", "Bearer abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var response httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "unauthorized", response.Error)
		})
	}
}

func TestGetPrincipal_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	principal, ok := GetPrincipal(req.Context())
	assert.False(t, ok)
	assert.Nil(t, principal)

	principal, ok = GetPrincipal(WithPrincipal(req.Context(), nil))
	assert.False(t, ok)
	assert.Nil(t, principal)
}
