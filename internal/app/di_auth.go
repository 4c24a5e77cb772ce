package app

import (
	"errors"

	authService "github.com/allisson/teamvault/internal/auth/service"
)

// ErrJWTSecretNotSet is returned when the server is started without JWT_SECRET.
var ErrJWTSecretNotSet = errors.New("JWT_SECRET is not set")

// TokenService returns the bearer token verifier.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		if c.config.JWTSecret == "" {
			err = ErrJWTSecretNotSet
			c.initErrors["tokenService"] = err
			return
		}
		c.tokenService = authService.NewTokenService([]byte(c.config.JWTSecret), c.config.JWTIssuer)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}
