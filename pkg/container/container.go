package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"backoffice-backend/internal/config"
	ccaRepo "backoffice-backend/internal/domains/cca/repository"
	desvioRepo "backoffice-backend/internal/domains/desvio/repository"
	funcionarioRepo "backoffice-backend/internal/domains/funcionario/repository"
	importHandler "backoffice-backend/internal/domains/importacao/handler"
	importJob "backoffice-backend/internal/domains/importacao/job"
	importModel "backoffice-backend/internal/domains/importacao/model"
	importRepo "backoffice-backend/internal/domains/importacao/repository"
	importService "backoffice-backend/internal/domains/importacao/service"
	riscoHandler "backoffice-backend/internal/domains/risco/handler"
	infraCache "backoffice-backend/internal/infrastructure/cache"
	"backoffice-backend/internal/infrastructure/database"
	"backoffice-backend/internal/infrastructure/storage"
	"backoffice-backend/pkg/cache"
	"backoffice-backend/pkg/jwt"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the dependency graph shared by cmd/api and cmd/worker
type Container struct {
	// INFRASTRUCTURE
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	Storage     *storage.MinIOStorage // nil when MinIO is disabled or unreachable
	AsynqClient *asynq.Client
	JWTManager  *jwt.Manager

	// REPOSITORIES
	CCARepo         ccaRepo.Repository
	FuncionarioRepo funcionarioRepo.Repository
	DesvioRepo      desvioRepo.Repository
	ImportLogRepo   importRepo.ImportLogRepository
	SessionStore    importRepo.SessionStore

	// SERVICES
	ImportService importService.ServiceInterface

	// HANDLERS
	ImportHandler *importHandler.ImportHandler
	RiscoHandler  *riscoHandler.RiscoHandler

	// JOBS
	ImportWriteHandler *importJob.ImportWriteHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer builds config -> infrastructure -> repositories -> services -> handlers
func NewContainer() (*Container, error) {
	log.Info().Msg("Initializing DI container")

	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Str("environment", cfg.App.Environment).Msg("DI container initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION
// ========================================

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	// sessions live in redis, so it is required
	c.Redis = infraCache.NewRedisClient(cfg.Redis)
	if err := c.Redis.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = infraCache.NewRedisCache(c.Redis)

	if cfg.MinIO.Enabled {
		st, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			log.Warn().Err(err).Msg("MinIO unavailable, uploaded files will not be archived")
		} else {
			c.Storage = st
		}
	}

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.CCARepo = ccaRepo.NewPostgresRepository(pool)
	c.FuncionarioRepo = funcionarioRepo.NewPostgresRepository(pool)
	c.DesvioRepo = desvioRepo.NewPostgresRepository(pool)
	c.ImportLogRepo = importRepo.NewPostgresRepository(pool)
	c.SessionStore = importRepo.NewSessionStore(c.Cache, c.Config.Import.SessionTTL)
}

func (c *Container) initServices() {
	targets := map[importModel.ImportType]importService.Target{
		importModel.ImportTypeFuncionarios: funcionarioRepo.NewImportWriter(c.FuncionarioRepo),
		importModel.ImportTypeDesvios:      desvioRepo.NewImportWriter(c.DesvioRepo),
	}

	// a nil *MinIOStorage must not become a non-nil interface
	var archive importService.FileArchive
	if c.Storage != nil {
		archive = c.Storage
	}

	c.ImportService = importService.NewImportService(
		targets,
		ccaRepo.NewReferenceProvider(c.CCARepo),
		c.SessionStore,
		c.ImportLogRepo,
		archive,
		c.AsynqClient,
		c.Config.Import.MaxRows,
	)
}

func (c *Container) initHandlers() {
	c.ImportHandler = importHandler.NewImportHandler(
		c.ImportService,
		c.Config.Import.MaxFileSize,
		c.Config.Import.AsyncDefault,
	)
	c.RiscoHandler = riscoHandler.NewRiscoHandler()
	c.ImportWriteHandler = importJob.NewImportWriteHandler(c.ImportService)
}

// Cleanup releases connections; safe on a partially built container
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
