// Package app wires configuration, storage, services and servers into a lazily built container.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	accessHTTP "github.com/allisson/teamvault/internal/access/http"
	accessUseCase "github.com/allisson/teamvault/internal/access/usecase"
	authService "github.com/allisson/teamvault/internal/auth/service"
	"github.com/allisson/teamvault/internal/config"
	cryptoDomain "github.com/allisson/teamvault/internal/crypto/domain"
	cryptoService "github.com/allisson/teamvault/internal/crypto/service"
	"github.com/allisson/teamvault/internal/database"
	historyService "github.com/allisson/teamvault/internal/history/service"
	historyUseCase "github.com/allisson/teamvault/internal/history/usecase"
	"github.com/allisson/teamvault/internal/http"
	"github.com/allisson/teamvault/internal/metrics"
	outboxUseCase "github.com/allisson/teamvault/internal/outbox/usecase"
	"github.com/allisson/teamvault/internal/storage/memory"
	vaultHTTP "github.com/allisson/teamvault/internal/vault/http"
	vaultUseCase "github.com/allisson/teamvault/internal/vault/usecase"
)

// grantRepository is served by one implementation per driver to both the item and group use
// cases.
type grantRepository interface {
	vaultUseCase.GrantRepository
	accessUseCase.GroupGrantRepository
}

// Container holds all application dependencies. Components are created on first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	db          *sql.DB
	memoryStore *memory.Store
	txManager   database.TxManager

	// Crypto
	kmsService   cryptoService.KMSService
	cipherKey    *cryptoDomain.CipherKey
	secretCipher cryptoService.SecretCipher
	signer       historyService.Signer

	// Repositories
	itemRepo    vaultUseCase.VaultItemRepository
	grantRepo   grantRepository
	groupRepo   accessUseCase.GroupRepository
	historyRepo historyUseCase.HistoryRepository
	outboxRepo  outboxUseCase.OutboxEventRepository

	// Use cases
	auditLog         historyUseCase.AuditLog
	vaultItemUseCase vaultUseCase.VaultItemUseCase
	groupUseCase     accessUseCase.GroupUseCase
	outboxUseCase    *outboxUseCase.OutboxUseCase

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// HTTP
	tokenService  authService.TokenService
	itemHandler   *vaultHTTP.ItemHandler
	groupHandler  *accessHTTP.GroupHandler
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu                   sync.Mutex
	loggerInit           sync.Once
	dbInit               sync.Once
	memoryStoreInit      sync.Once
	txManagerInit        sync.Once
	kmsServiceInit       sync.Once
	cipherKeyInit        sync.Once
	secretCipherInit     sync.Once
	signerInit           sync.Once
	itemRepoInit         sync.Once
	grantRepoInit        sync.Once
	groupRepoInit        sync.Once
	historyRepoInit      sync.Once
	outboxRepoInit       sync.Once
	auditLogInit         sync.Once
	vaultItemUseCaseInit sync.Once
	groupUseCaseInit     sync.Once
	outboxUseCaseInit    sync.Once
	metricsProviderInit  sync.Once
	businessMetricsInit  sync.Once
	tokenServiceInit     sync.Once
	itemHandlerInit      sync.Once
	groupHandlerInit     sync.Once
	httpServerInit       sync.Once
	metricsServerInit    sync.Once
	initErrors           map[string]error
}

// NewContainer creates a container for cfg.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger configured from LOG_LEVEL.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the SQL connection. It fails for the memory driver.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// MemoryStore returns the process-local store backing the memory driver.
func (c *Container) MemoryStore() *memory.Store {
	c.memoryStoreInit.Do(func() {
		c.memoryStore = memory.NewStore()
	})
	return c.memoryStore
}

// TxManager returns the transaction manager for the configured driver.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// Pinger returns what the readiness probe checks: the memory store or the SQL connection.
func (c *Container) Pinger() (http.Pinger, error) {
	if c.isMemory() {
		return c.MemoryStore(), nil
	}
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Shutdown releases every initialized resource.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	if c.cipherKey != nil {
		c.cipherKey.Close()
	}

	return errors.Join(errs...)
}

func (c *Container) isMemory() bool {
	return c.config.DBDriver == database.DriverMemory
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initTxManager() (database.TxManager, error) {
	if c.isMemory() {
		return c.MemoryStore(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}
