package app

import (
	"fmt"

	accessHTTP "github.com/allisson/teamvault/internal/access/http"
	accessRepository "github.com/allisson/teamvault/internal/access/repository"
	accessService "github.com/allisson/teamvault/internal/access/service"
	accessUseCase "github.com/allisson/teamvault/internal/access/usecase"
	"github.com/allisson/teamvault/internal/database"
	historyRepository "github.com/allisson/teamvault/internal/history/repository"
	historyService "github.com/allisson/teamvault/internal/history/service"
	historyUseCase "github.com/allisson/teamvault/internal/history/usecase"
	outboxRepository "github.com/allisson/teamvault/internal/outbox/repository"
	outboxUseCase "github.com/allisson/teamvault/internal/outbox/usecase"
	totpService "github.com/allisson/teamvault/internal/totp/service"
	vaultHTTP "github.com/allisson/teamvault/internal/vault/http"
	vaultRepository "github.com/allisson/teamvault/internal/vault/repository"
	vaultUseCase "github.com/allisson/teamvault/internal/vault/usecase"
)

// VaultItemRepository returns the item repository for the configured driver.
func (c *Container) VaultItemRepository() (vaultUseCase.VaultItemRepository, error) {
	var err error
	c.itemRepoInit.Do(func() {
		c.itemRepo, err = c.initVaultItemRepository()
		if err != nil {
			c.initErrors["itemRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["itemRepo"]; exists {
		return nil, storedErr
	}
	return c.itemRepo, nil
}

// GrantRepository returns the user and group grant repository for the configured driver.
func (c *Container) GrantRepository() (vaultUseCase.GrantRepository, error) {
	repo, err := c.grantRepository()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (c *Container) grantRepository() (grantRepository, error) {
	var err error
	c.grantRepoInit.Do(func() {
		c.grantRepo, err = c.initGrantRepository()
		if err != nil {
			c.initErrors["grantRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["grantRepo"]; exists {
		return nil, storedErr
	}
	return c.grantRepo, nil
}

// GroupRepository returns the group repository for the configured driver.
func (c *Container) GroupRepository() (accessUseCase.GroupRepository, error) {
	var err error
	c.groupRepoInit.Do(func() {
		c.groupRepo, err = c.initGroupRepository()
		if err != nil {
			c.initErrors["groupRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["groupRepo"]; exists {
		return nil, storedErr
	}
	return c.groupRepo, nil
}

// HistoryRepository returns the history repository for the configured driver.
func (c *Container) HistoryRepository() (historyUseCase.HistoryRepository, error) {
	var err error
	c.historyRepoInit.Do(func() {
		c.historyRepo, err = c.initHistoryRepository()
		if err != nil {
			c.initErrors["historyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["historyRepo"]; exists {
		return nil, storedErr
	}
	return c.historyRepo, nil
}

// OutboxRepository returns the outbox event repository for the configured driver.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// AuditLog returns the signed history log.
func (c *Container) AuditLog() (historyUseCase.AuditLog, error) {
	var err error
	c.auditLogInit.Do(func() {
		c.auditLog, err = c.initAuditLog()
		if err != nil {
			c.initErrors["auditLog"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLog"]; exists {
		return nil, storedErr
	}
	return c.auditLog, nil
}

// VaultItemUseCase returns the item use case wrapped with business metrics.
func (c *Container) VaultItemUseCase() (vaultUseCase.VaultItemUseCase, error) {
	var err error
	c.vaultItemUseCaseInit.Do(func() {
		c.vaultItemUseCase, err = c.initVaultItemUseCase()
		if err != nil {
			c.initErrors["vaultItemUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultItemUseCase"]; exists {
		return nil, storedErr
	}
	return c.vaultItemUseCase, nil
}

// GroupUseCase returns the group use case wrapped with business metrics.
func (c *Container) GroupUseCase() (accessUseCase.GroupUseCase, error) {
	var err error
	c.groupUseCaseInit.Do(func() {
		c.groupUseCase, err = c.initGroupUseCase()
		if err != nil {
			c.initErrors["groupUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["groupUseCase"]; exists {
		return nil, storedErr
	}
	return c.groupUseCase, nil
}

// ItemHandler returns the HTTP handler for /v1/items.
func (c *Container) ItemHandler() (*vaultHTTP.ItemHandler, error) {
	var err error
	c.itemHandlerInit.Do(func() {
		var useCase vaultUseCase.VaultItemUseCase
		useCase, err = c.VaultItemUseCase()
		if err != nil {
			c.initErrors["itemHandler"] = err
			return
		}
		c.itemHandler = vaultHTTP.NewItemHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["itemHandler"]; exists {
		return nil, storedErr
	}
	return c.itemHandler, nil
}

// GroupHandler returns the HTTP handler for /v1/groups.
func (c *Container) GroupHandler() (*accessHTTP.GroupHandler, error) {
	var err error
	c.groupHandlerInit.Do(func() {
		var useCase accessUseCase.GroupUseCase
		useCase, err = c.GroupUseCase()
		if err != nil {
			c.initErrors["groupHandler"] = err
			return
		}
		c.groupHandler = accessHTTP.NewGroupHandler(useCase, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["groupHandler"]; exists {
		return nil, storedErr
	}
	return c.groupHandler, nil
}

func (c *Container) initVaultItemRepository() (vaultUseCase.VaultItemRepository, error) {
	if c.isMemory() {
		return c.MemoryStore().Items(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for item repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return vaultRepository.NewPostgreSQLVaultItemRepository(db), nil
	case database.DriverMySQL:
		return vaultRepository.NewMySQLVaultItemRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initGrantRepository() (grantRepository, error) {
	if c.isMemory() {
		return c.MemoryStore().Grants(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for grant repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return accessRepository.NewPostgreSQLGrantRepository(db), nil
	case database.DriverMySQL:
		return accessRepository.NewMySQLGrantRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initGroupRepository() (accessUseCase.GroupRepository, error) {
	if c.isMemory() {
		return c.MemoryStore().Groups(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for group repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return accessRepository.NewPostgreSQLGroupRepository(db), nil
	case database.DriverMySQL:
		return accessRepository.NewMySQLGroupRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initHistoryRepository() (historyUseCase.HistoryRepository, error) {
	if c.isMemory() {
		return c.MemoryStore().History(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for history repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return historyRepository.NewPostgreSQLHistoryRepository(db), nil
	case database.DriverMySQL:
		return historyRepository.NewMySQLHistoryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initOutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	if c.isMemory() {
		return c.MemoryStore().Outbox(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverPostgres:
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	case database.DriverMySQL:
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditLog() (historyUseCase.AuditLog, error) {
	historyRepo, err := c.HistoryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get history repository for audit log: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for audit log: %w", err)
	}

	signer, err := c.HistorySigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get history signer for audit log: %w", err)
	}

	return historyUseCase.NewAuditLog(historyRepo, outboxRepo, signer), nil
}

func (c *Container) initVaultItemUseCase() (vaultUseCase.VaultItemUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for item use case: %w", err)
	}

	itemRepo, err := c.VaultItemRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get item repository for item use case: %w", err)
	}

	grantRepo, err := c.grantRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get grant repository for item use case: %w", err)
	}

	groupRepo, err := c.GroupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group repository for item use case: %w", err)
	}

	cipher, err := c.SecretCipher()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret cipher for item use case: %w", err)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for item use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for item use case: %w", err)
	}

	useCase := vaultUseCase.NewVaultItemUseCase(vaultUseCase.Dependencies{
		TxManager: txManager,
		ItemRepo:  itemRepo,
		GrantRepo: grantRepo,
		GroupRepo: groupRepo,
		Cipher:    cipher,
		TOTP:      totpService.NewEngine(nil),
		Differ:    historyService.NewDiffer(c.config.HistoryRedactUsername),
		Resolver:  accessService.NewResolver(),
		AuditLog:  auditLog,
		Logger:    c.Logger(),
	})

	return vaultUseCase.NewVaultItemUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initGroupUseCase() (accessUseCase.GroupUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for group use case: %w", err)
	}

	groupRepo, err := c.GroupRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get group repository for group use case: %w", err)
	}

	grantRepo, err := c.grantRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get grant repository for group use case: %w", err)
	}

	auditLog, err := c.AuditLog()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log for group use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for group use case: %w", err)
	}

	useCase := accessUseCase.NewGroupUseCase(txManager, groupRepo, grantRepo, auditLog)
	return accessUseCase.NewGroupUseCaseWithMetrics(useCase, businessMetrics), nil
}
