package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	authService "github.com/allisson/teamvault/internal/auth/service"
	"github.com/allisson/teamvault/internal/httputil"
)

// AuthenticationMiddleware resolves the principal from an "Authorization: Bearer <jwt>" header
// (scheme case-insensitive) and stores it in the request context. Requests without a valid token
// are rejected with 401.
func AuthenticationMiddleware(tokenService authService.TokenService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, authDomain.ErrMissingToken, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, authDomain.ErrInvalidToken, logger)
			c.Abort()
			return
		}

		principal, err := tokenService.Verify(strings.TrimSpace(authHeader[len(bearerPrefix):]))
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))

		logger.Debug("authentication successful", slog.String("principal_id", principal.ID.String()))

		c.Next()
	}
}
