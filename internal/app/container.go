// Package app wires infrastructure and application services together.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/gala/internal/planning/application/commands"
	"github.com/felixgeelhaar/gala/internal/planning/application/queries"
	"github.com/felixgeelhaar/gala/internal/planning/application/services"
	"github.com/felixgeelhaar/gala/internal/planning/domain"
	planningcache "github.com/felixgeelhaar/gala/internal/planning/infrastructure/cache"
	"github.com/felixgeelhaar/gala/internal/planning/infrastructure/persistence"
	"github.com/felixgeelhaar/gala/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gala/pkg/config"
)

// Container holds the wired application.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	PlanEvent     *commands.PlanEventHandler
	GetPlan       *queries.GetPlanHandler
	ListPlans     *queries.ListPlansHandler
	ListConflicts *queries.ListConflictsHandler

	repo      domain.PlanRepository
	publisher eventbus.Publisher

	sqliteDB    *sql.DB
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
}

// New builds the container: PostgreSQL when DATABASE_URL is set, SQLite
// otherwise; Redis caching only when configured; domain events go to the
// in-process bus unless a RabbitMQ broker is configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{Config: cfg, Logger: logger}

	if err := c.setupRepository(ctx, cfg); err != nil {
		return nil, err
	}

	planCache, err := c.setupCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := c.setupPublisher(cfg); err != nil {
		return nil, err
	}

	pipeline := services.NewPipeline(
		services.NewGraphBuilder(logger),
		services.NewIntegrityValidator(logger),
		services.NewSchedulerEngine(services.SchedulerConfig{
			BufferRatio: cfg.BufferRatio,
			LeadWindow:  cfg.LeadWindow,
		}, logger),
		services.NewConflictDetector(services.DetectorConfig{
			Workers:         cfg.DetectorWorkers,
			CriticalWindow:  cfg.CriticalWindow,
			DefaultCapacity: cfg.DefaultCapacity,
		}, logger),
		services.NewVendorAssigner(services.AssignerConfig{
			MinFitness:          cfg.MinFitness,
			LowFitnessThreshold: cfg.LowFitnessThreshold,
		}, logger),
		services.NewResultAssembler(logger),
		logger,
	)

	c.PlanEvent = commands.NewPlanEventHandler(pipeline, c.repo, planCache, c.publisher, logger)
	c.GetPlan = queries.NewGetPlanHandler(c.repo, logger)
	c.ListPlans = queries.NewListPlansHandler(c.repo, logger)
	c.ListConflicts = queries.NewListConflictsHandler(c.GetPlan, logger)

	return c, nil
}

func (c *Container) setupRepository(ctx context.Context, cfg *config.Config) error {
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		repo := persistence.NewPostgresPlanRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return err
		}
		c.pgPool = pool
		c.repo = repo
		c.Logger.Info("using PostgreSQL plan store")
		return nil
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening SQLite database %q: %w", cfg.DatabasePath, err)
	}
	repo := persistence.NewSQLitePlanRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return err
	}
	c.sqliteDB = db
	c.repo = repo
	c.Logger.Info("using SQLite plan store", "path", cfg.DatabasePath)
	return nil
}

func (c *Container) setupCache(ctx context.Context, cfg *config.Config) (domain.PlanCache, error) {
	if cfg.RedisURL == "" {
		return planningcache.NewNoopPlanCache(), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		// Cache is optional; run uncached rather than refuse to start.
		c.Logger.Warn("redis unreachable; caching disabled", "error", err)
		_ = client.Close()
		return planningcache.NewNoopPlanCache(), nil
	}
	c.redisClient = client
	c.Logger.Info("plan result caching enabled")
	return planningcache.NewRedisPlanCache(client, cfg.CacheTTL, c.Logger), nil
}

func (c *Container) setupPublisher(cfg *config.Config) error {
	if cfg.RabbitMQURL == "" {
		c.publisher = eventbus.NewInProcessEventBus(c.Logger)
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
	if err != nil {
		return fmt.Errorf("connecting to RabbitMQ: %w", err)
	}
	c.publisher = publisher
	return nil
}

// Repository exposes the plan store, mainly for maintenance commands.
func (c *Container) Repository() domain.PlanRepository { return c.repo }

// Close releases all held connections.
func (c *Container) Close() error {
	var firstErr error
	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.pgPool != nil {
		c.pgPool.Close()
	}
	if c.sqliteDB != nil {
		if err := c.sqliteDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
