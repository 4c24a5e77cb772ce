package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	accessHTTP "github.com/allisson/teamvault/internal/access/http"
	accessMocks "github.com/allisson/teamvault/internal/access/usecase/mocks"
	authDomain "github.com/allisson/teamvault/internal/auth/domain"
	authService "github.com/allisson/teamvault/internal/auth/service"
	"github.com/allisson/teamvault/internal/config"
	"github.com/allisson/teamvault/internal/metrics"
	vaultDomain "github.com/allisson/teamvault/internal/vault/domain"
	vaultHTTP "github.com/allisson/teamvault/internal/vault/http"
	vaultMocks "github.com/allisson/teamvault/internal/vault/usecase/mocks"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error {
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthHandler(t *testing.T) {
	server := NewServer(nil, "localhost", 0, discardLogger())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantCode   int
		wantStatus string
		wantDB     string
	}{
		{"no database", nil, http.StatusServiceUnavailable, "not_ready", "error"},
		{"ping fails", stubPinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "not_ready", "error"},
		{"ping succeeds", stubPinger{}, http.StatusOK, "ready", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer(tt.db, "localhost", 0, discardLogger())

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
			server.readinessHandler(c)

			assert.Equal(t, tt.wantCode, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.wantStatus, body["status"])
			components, ok := body["components"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.wantDB, components["database"])
		})
	}
}

func TestCustomLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string { return "req-1" })))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/v1/items/:id", func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/items/abc?reveal=true", nil))
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-Id"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "/v1/items/abc", line["path"])
	assert.Equal(t, "/v1/items/:id", line["route"])
	assert.EqualValues(t, http.StatusForbidden, line["status"])
	assert.NotContains(t, buf.String(), "reveal")
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.RecoveryWithWriter(io.Discard))
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type routerFixture struct {
	router  http.Handler
	items   *vaultMocks.MockVaultItemUseCase
	groups  *accessMocks.MockGroupUseCase
	tokens  authService.TokenService
	callerA authDomain.Principal
}

func newRouterFixture(t *testing.T, cfg *config.Config, provider *metrics.Provider) *routerFixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	items := &vaultMocks.MockVaultItemUseCase{}
	groups := &accessMocks.MockGroupUseCase{}
	t.Cleanup(func() {
		items.AssertExpectations(t)
		groups.AssertExpectations(t)
	})

	logger := discardLogger()
	tokens := authService.NewTokenService([]byte("router-test-secret"), "")
	server := NewServer(stubPinger{}, "localhost", 0, logger)
	server.SetupRouter(
		ctx,
		cfg,
		tokens,
		vaultHTTP.NewItemHandler(items, logger),
		accessHTTP.NewGroupHandler(groups, logger),
		provider,
	)

	return &routerFixture{
		router:  server.GetHandler(),
		items:   items,
		groups:  groups,
		tokens:  tokens,
		callerA: authDomain.Principal{ID: uuid.Must(uuid.NewV7())},
	}
}

func (f *routerFixture) do(t *testing.T, method, path string, principal *authDomain.Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if principal != nil {
		token, err := f.tokens.Issue(*principal, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestSetupRouter(t *testing.T) {
	cfg := &config.Config{
		MetricsNamespace:        "router_test",
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 100,
		RateLimitBurst:          100,
	}

	t.Run("probes do not require a token", func(t *testing.T) {
		f := newRouterFixture(t, cfg, nil)
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", nil).Code)
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/ready", nil).Code)
	})

	t.Run("v1 routes require a token", func(t *testing.T) {
		f := newRouterFixture(t, cfg, nil)
		for _, path := range []string{"/v1/items", "/v1/groups/" + uuid.NewString() + "/members"} {
			w := f.do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})

	t.Run("item routes reach the item handler", func(t *testing.T) {
		f := newRouterFixture(t, cfg, nil)
		itemID := uuid.Must(uuid.NewV7())
		f.items.On("List", mock.Anything, f.callerA, 0, 50).Return([]*vaultDomain.ItemView{}, nil).Once()
		f.items.On("Delete", mock.Anything, f.callerA, itemID).Return(nil).Once()

		w := f.do(t, http.MethodGet, "/v1/items", &f.callerA)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

		w = f.do(t, http.MethodDelete, "/v1/items/"+itemID.String(), &f.callerA)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("group routes reach the group handler", func(t *testing.T) {
		f := newRouterFixture(t, cfg, nil)
		groupID, userID := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
		f.groups.On("RemoveMember", mock.Anything, f.callerA, groupID, userID).Return(nil).Once()

		w := f.do(t, http.MethodDelete, "/v1/groups/"+groupID.String()+"/members/"+userID.String(), &f.callerA)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("metrics are recorded but not served", func(t *testing.T) {
		provider, err := metrics.NewProvider("router_test")
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, provider.Shutdown(context.Background()))
		}()

		f := newRouterFixture(t, cfg, provider)
		assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/metrics", nil).Code)

		f.do(t, http.MethodGet, "/health", nil)
		scrape := httptest.NewRecorder()
		provider.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Contains(t, scrape.Body.String(), `route="/health"`)
	})
}

func TestSetupRouter_RateLimit(t *testing.T) {
	cfg := &config.Config{
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 0.001,
		RateLimitBurst:          1,
	}
	f := newRouterFixture(t, cfg, nil)
	f.items.On("List", mock.Anything, f.callerA, 0, 50).Return([]*vaultDomain.ItemView{}, nil).Once()

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/items", &f.callerA).Code)
	w := f.do(t, http.MethodGet, "/v1/items", &f.callerA)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestServer_StartRequiresRouter(t *testing.T) {
	server := NewServer(nil, "localhost", 0, discardLogger())
	assert.Error(t, server.Start(context.Background()))
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := NewServer(nil, "127.0.0.1", 0, discardLogger())
	router := gin.New()
	router.GET("/health", server.healthHandler)
	server.router = router

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestMetricsServer(t *testing.T) {
	provider, err := metrics.NewProvider("metrics_server_test")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	t.Run("serves metrics", func(t *testing.T) {
		metricsServer := NewMetricsServer("localhost", 0, discardLogger(), provider)

		w := httptest.NewRecorder()
		metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("without provider", func(t *testing.T) {
		metricsServer := NewMetricsServer("localhost", 0, discardLogger(), nil)

		w := httptest.NewRecorder()
		metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
