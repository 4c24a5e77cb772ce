package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
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
	"github.com/allisson/teamvault/internal/config"
	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
	"github.com/allisson/teamvault/internal/metrics"
	outboxDomain "github.com/allisson/teamvault/internal/outbox/domain"
)

const testJWTSecret = "di-test-secret"

func memoryConfig() *config.Config {
	return &config.Config{
		ServerHost:       "localhost",
		ServerPort:       0,
		DBDriver:         "memory",
		LogLevel:         "error",
		CipherKey:        base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, cryptoDomain.KeySize)),
		CipherAlgorithm:  "aes-gcm",
		JWTSecret:        testJWTSecret,
		MetricsEnabled:   true,
		MetricsNamespace: "di_test",
		OutboxInterval:   time.Second,
		OutboxBatchSize:  10,
		OutboxMaxRetries: 3,
	}
}

func TestNewContainer(t *testing.T) {
	cfg := memoryConfig()
	container := NewContainer(cfg)

	assert.Same(t, cfg, container.Config())
	assert.Same(t, container.Logger(), container.Logger())
	assert.Same(t, container.MemoryStore(), container.MemoryStore())
}

func TestContainer_MemoryDriver(t *testing.T) {
	container := NewContainer(memoryConfig())

	txManager, err := container.TxManager()
	require.NoError(t, err)
	assert.Same(t, container.MemoryStore(), txManager)

	pinger, err := container.Pinger()
	require.NoError(t, err)
	assert.NoError(t, pinger.PingContext(context.Background()))

	_, err = container.DB()
	assert.Error(t, err)
}

func TestContainer_UnsupportedDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.DBDriver = "oracle"
	container := NewContainer(cfg)

	_, err := container.VaultItemRepository()
	assert.Error(t, err)

	// The failure is remembered.
	_, err = container.VaultItemRepository()
	assert.Error(t, err)
}

func TestContainer_CipherConfiguration(t *testing.T) {
	t.Run("missing cipher key", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.CipherKey = ""
		_, err := NewContainer(cfg).VaultItemUseCase()
		assert.ErrorIs(t, err, cryptoDomain.ErrCipherKeyNotSet)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.CipherAlgorithm = "rot13"
		_, err := NewContainer(cfg).SecretCipher()
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})

	t.Run("chacha20", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.CipherAlgorithm = "chacha20-poly1305"
		cipher, err := NewContainer(cfg).SecretCipher()
		require.NoError(t, err)

		sealed, err := cipher.Encrypt("p1")
		require.NoError(t, err)
		opened, err := cipher.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, "p1", opened)
	})
}

func TestContainer_TokenServiceRequiresSecret(t *testing.T) {
	cfg := memoryConfig()
	cfg.JWTSecret = ""
	container := NewContainer(cfg)

	_, err := container.TokenService()
	assert.ErrorIs(t, err, ErrJWTSecretNotSet)

	_, err = container.HTTPServer(context.Background())
	assert.ErrorIs(t, err, ErrJWTSecretNotSet)
}

func TestContainer_MetricsDisabled(t *testing.T) {
	cfg := memoryConfig()
	cfg.MetricsEnabled = false
	container := NewContainer(cfg)

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpBusinessMetrics{}, businessMetrics)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, metricsServer)
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
	tokens  authService.TokenService
}

func (a *apiClient) do(principal uuid.UUID, method, path string, body any) (int, map[string]any) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	token, err := a.tokens.Issue(authDomain.Principal{ID: principal}, time.Minute)
	require.NoError(a.t, err)

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w.Code, decoded
}

// TestContainer_SharedItemLifecycle drives the wired API over the memory driver: an owner shares
// an item with a group, a member reads it, and the history log verifies.
func TestContainer_SharedItemLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	container := NewContainer(memoryConfig())
	t.Cleanup(func() { assert.NoError(t, container.Shutdown(context.Background())) })

	server, err := container.HTTPServer(ctx)
	require.NoError(t, err)

	api := &apiClient{
		t:       t,
		handler: server.GetHandler(),
		tokens:  authService.NewTokenService([]byte(testJWTSecret), ""),
	}
	owner, member := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())

	code, item := api.do(owner, http.MethodPost, "/v1/items", map[string]any{
		"login_kind":  "email_password",
		"username":    "ops@example.com",
		"password":    "p1",
		"totp_secret": "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
		"website_url": "https://example.com",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "<redacted>", item["password"])
	itemPath := "/v1/items/" + item["id"].(string)

	code, _ = api.do(member, http.MethodGet, itemPath, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, group := api.do(owner, http.MethodPost, "/v1/groups", map[string]any{"name": "ops"})
	require.Equal(t, http.StatusCreated, code)
	groupID := group["id"].(string)

	code, _ = api.do(owner, http.MethodPost, itemPath+"/access", map[string]any{
		"target_type": "group",
		"target_id":   groupID,
		"level":       "read",
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(owner, http.MethodPost, "/v1/groups/"+groupID+"/members", map[string]any{
		"user_id": member.String(),
	})
	require.Equal(t, http.StatusCreated, code)

	code, view := api.do(member, http.MethodGet, itemPath, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "p1", view["password"])
	assert.Equal(t, "read", view["effective_level"])

	code, _ = api.do(member, http.MethodPatch, itemPath, map[string]any{"password": "p2"})
	assert.Equal(t, http.StatusForbidden, code)

	code, totp := api.do(member, http.MethodGet, itemPath+"/totp", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, totp["configured"])
	assert.Len(t, totp["code"], 6)

	code, history := api.do(owner, http.MethodGet, itemPath+"/history", nil)
	require.Equal(t, http.StatusOK, code)
	var actions []string
	for _, entry := range history["data"].([]any) {
		actions = append(actions, entry.(map[string]any)["action"].(string))
	}
	assert.Equal(t, []string{"created", "access_granted", "member_added"}, actions)
	assert.NotContains(t, mustJSON(t, history), `"p1"`)

	auditLog, err := container.AuditLog()
	require.NoError(t, err)
	report, err := auditLog.Verify(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 3, report.Valid)

	outbox, err := container.OutboxUseCase()
	require.NoError(t, err)
	require.NoError(t, outbox.ProcessEvents(ctx))
	events := container.MemoryStore().Outbox().Events(ctx)
	require.Len(t, events, 3)
	for _, event := range events {
		assert.Equal(t, outboxDomain.OutboxEventStatusProcessed, event.Status)
	}

	code, _ = api.do(owner, http.MethodDelete, itemPath, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = api.do(member, http.MethodGet, itemPath, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return string(payload)
}
