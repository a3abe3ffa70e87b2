package container

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/garyjia/tkdn-compliance/internal/application/dispatcher"
	"github.com/garyjia/tkdn-compliance/internal/application/policy"
	"github.com/garyjia/tkdn-compliance/internal/application/port"
	"github.com/garyjia/tkdn-compliance/internal/application/projection"
	"github.com/garyjia/tkdn-compliance/internal/application/service"
	"github.com/garyjia/tkdn-compliance/internal/application/workflow"
	"github.com/garyjia/tkdn-compliance/internal/domain/compliance"
	"github.com/garyjia/tkdn-compliance/internal/infrastructure/persistence/repository"
	"github.com/garyjia/tkdn-compliance/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/tkdn-compliance/internal/infrastructure/report"
	"github.com/garyjia/tkdn-compliance/internal/infrastructure/storage"
	"github.com/garyjia/tkdn-compliance/migrations"
	"github.com/garyjia/tkdn-compliance/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// StorageBundle holds storage-related components.
type StorageBundle struct {
	Reports  port.ReportStore
	Renderer port.ReportRenderer
}

// AccessBundle holds the access policy and the listing projection it scopes.
type AccessBundle struct {
	Authorizer *policy.Authorizer
	Cache      *projection.ListingCache
}

// ProvideDatabase opens the store and applies pending migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	var source fs.FS = migrations.FS
	if cfg.MigrationsDir != "" {
		source = os.DirFS(cfg.MigrationsDir)
	}
	if err := database.NewMigrator(db, logger).Run(source); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(sqlDB *sql.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Submission: repository.NewSubmissionRepository(sqlDB, logger),
		Item:       repository.NewItemRepository(sqlDB, logger),
		Document:   repository.NewDocumentRepository(sqlDB, logger),
		History:    repository.NewHistoryRepository(sqlDB, logger),
	}, nil
}

// ProvideStorage creates report storage and the workbook renderer.
func ProvideStorage(cfg *StorageConfig, logger *zap.Logger) (*StorageBundle, error) {
	if cfg == nil || cfg.ReportDir == "" {
		return nil, fmt.Errorf("storage config is required")
	}
	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	return &StorageBundle{
		Reports:  storage.NewLocalFileStorage(cfg.ReportDir, logger),
		Renderer: report.NewExcelRenderer(logger),
	}, nil
}

// ProvideAccess builds the casbin-backed authorizer and the listing cache.
func ProvideAccess(accessCfg *AccessConfig, cacheCfg *CacheConfig, logger *zap.Logger) (*AccessBundle, error) {
	var rules string
	if accessCfg != nil && accessCfg.PolicyFile != "" {
		content, err := os.ReadFile(accessCfg.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read access policy: %w", err)
		}
		rules = string(content)
		logger.Info("Loaded access policy", zap.String("file", accessCfg.PolicyFile))
	}

	authorizer, err := policy.New(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build access policy: %w", err)
	}

	var ttl = DefaultConfig().Cache.ListingTTL
	if cacheCfg != nil {
		ttl = cacheCfg.ListingTTL
	}

	return &AccessBundle{
		Authorizer: authorizer,
		Cache:      projection.NewListingCache(ttl),
	}, nil
}

// ProvideDispatcher creates the event dispatcher and registers the metric and notification subscribers.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(&zapLoggerAdapter{logger: logger}))
	registerSubscribers(disp, logger)

	return disp, nil
}

// WorkflowDeps holds dependencies for creating the workflow engine.
type WorkflowDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Dispatcher dispatcher.Dispatcher

	// SynchronousEvents waits for subscribers before a command returns
	SynchronousEvents bool
}

// ProvideWorkflowEngine creates the transactional workflow engine.
func ProvideWorkflowEngine(deps *WorkflowDeps) (workflow.Engine, error) {
	if deps == nil || deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}

	var opts []workflow.EngineOption
	if deps.Dispatcher != nil {
		opts = append(opts, workflow.WithDispatcher(deps.Dispatcher))
	}
	if deps.SynchronousEvents {
		opts = append(opts, workflow.WithSynchronousEvents())
	}

	return workflow.NewEngine(
		deps.Repos.Submission,
		deps.Repos.Item,
		deps.Repos.Document,
		deps.Repos.History,
		deps.TxManager,
		opts...,
	), nil
}

// ServiceDeps holds dependencies for creating application services.
type ServiceDeps struct {
	Repos   *RepositoryBundle
	Engine  workflow.Engine
	Access  *AccessBundle
	Storage *StorageBundle
	Logger  *zap.Logger
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Repos == nil || deps.Engine == nil || deps.Access == nil || deps.Storage == nil {
		return nil, fmt.Errorf("service dependencies are incomplete")
	}

	logger := &zapLoggerAdapter{logger: deps.Logger}
	stores := service.Stores{
		Submissions: deps.Repos.Submission,
		Items:       deps.Repos.Item,
		Documents:   deps.Repos.Document,
		History:     deps.Repos.History,
	}
	access, cache := deps.Access.Authorizer, deps.Access.Cache

	return &ServiceBundle{
		Submission:    service.NewSubmissionService(stores, deps.Engine, compliance.NewEvaluator(nil), access, cache, logger),
		Review:        service.NewReviewService(stores, deps.Engine, access, cache, logger),
		Justification: service.NewJustificationService(stores, deps.Engine, access, cache, logger),
		Report:        service.NewReportService(stores, deps.Storage.Renderer, deps.Storage.Reports, access, logger),
	}, nil
}
