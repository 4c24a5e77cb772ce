// Package http assembles the public API router and runs the API and metrics servers.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	accessHTTP "github.com/allisson/teamvault/internal/access/http"
	authHTTP "github.com/allisson/teamvault/internal/auth/http"
	authService "github.com/allisson/teamvault/internal/auth/service"
	"github.com/allisson/teamvault/internal/config"
	"github.com/allisson/teamvault/internal/metrics"
	vaultHTTP "github.com/allisson/teamvault/internal/vault/http"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable. *sql.DB and the memory store both
// satisfy it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the public API server.
type Server struct {
	db     Pinger
	server *http.Server
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a Server. SetupRouter must be called before Start.
func NewServer(db Pinger, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with the probes and every /v1 route. Routes under /v1
// require a bearer token; rate limiting applies per principal when enabled. ctx bounds the
// lifetime of the rate limiter's cleanup goroutine.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	tokenService authService.TokenService,
	itemHandler *vaultHTTP.ItemHandler,
	groupHandler *accessHTTP.GroupHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(authHTTP.AuthenticationMiddleware(tokenService, s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	items := v1.Group("/items")
	{
		items.POST("", itemHandler.CreateHandler)
		items.GET("", itemHandler.ListHandler)
		items.GET("/:id", itemHandler.GetHandler)
		items.PATCH("/:id", itemHandler.UpdateHandler)
		items.DELETE("/:id", itemHandler.DeleteHandler)
		items.GET("/:id/totp", itemHandler.TOTPHandler)
		items.GET("/:id/history", itemHandler.HistoryHandler)
		items.GET("/:id/access", itemHandler.ListAccessHandler)
		items.POST("/:id/access", itemHandler.GrantAccessHandler)
		items.DELETE("/:id/access/:target_type/:target_id", itemHandler.RevokeAccessHandler)
	}

	groups := v1.Group("/groups")
	{
		groups.POST("", groupHandler.CreateHandler)
		groups.GET("/:id/members", groupHandler.ListMembersHandler)
		groups.POST("/:id/members", groupHandler.AddMemberHandler)
		groups.DELETE("/:id/members/:user_id", groupHandler.RemoveMemberHandler)
	}

	s.router = router
}

// GetHandler returns the configured router, or nil before SetupRouter.
func (s *Server) GetHandler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
