// Package app wires configuration, stores, buses, and handlers into one
// container shared by the CLI commands.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/commands"
	"github.com/jjohnson-47/nowqueue/internal/planning/application/queries"
	"github.com/jjohnson-47/nowqueue/internal/planning/application/services"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
	"github.com/jjohnson-47/nowqueue/internal/planning/infrastructure/cache"
	"github.com/jjohnson-47/nowqueue/internal/planning/infrastructure/persistence"
	"github.com/jjohnson-47/nowqueue/internal/shared/infrastructure/eventbus"
	"github.com/jjohnson-47/nowqueue/pkg/config"
	"github.com/jjohnson-47/nowqueue/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	Repo      task.Repository
	Publisher eventbus.Publisher
	Redis     *redis.Client

	Scoring  *services.ScoringEngine
	Selector *services.QueueSelector
	Holder   *commands.QueueHolder

	RefreshQueue   *commands.RefreshQueueHandler
	CreateTask     *commands.CreateTaskHandler
	TransitionTask *commands.TransitionTaskHandler
	ReopenTask     *commands.ReopenTaskHandler
	Dependencies   *commands.DependencyHandler
	ExplainTask    *queries.ExplainTaskHandler
	GraphHealth    *queries.GraphHealthHandler
	ListTasks      *queries.ListTasksHandler

	closers []func() error
}

// NewContainer builds the full dependency graph from configuration.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = observability.LoggerFromEnv()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Holder:  commands.NewQueueHolder(),
	}

	if err := c.initStore(ctx, cfg); err != nil {
		return nil, err
	}
	if err := c.initPublisher(cfg); err != nil {
		_ = c.Close()
		return nil, err
	}
	queueCache := c.initCache(ctx, cfg)
	if err := c.initEngine(cfg); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.RefreshQueue = commands.NewRefreshQueueHandler(
		c.Repo, c.Scoring, c.Selector, c.Holder, c.Publisher, queueCache,
		commands.RefreshDefaults{
			TimeboxMinutes: cfg.DefaultTimeboxMinutes,
			K:              cfg.DefaultK,
			MinK:           cfg.MinK,
			MinCourses:     cfg.MinCourses,
		},
		logger, c.Metrics,
	)
	c.CreateTask = commands.NewCreateTaskHandler(c.Repo, logger)
	c.TransitionTask = commands.NewTransitionTaskHandler(c.Repo, logger)
	c.ReopenTask = commands.NewReopenTaskHandler(c.Repo, logger)
	c.Dependencies = commands.NewDependencyHandler(c.Repo, logger)
	c.ExplainTask = queries.NewExplainTaskHandler(c.Repo, c.Scoring, logger)
	c.GraphHealth = queries.NewGraphHealthHandler(c.Repo, logger)
	c.ListTasks = queries.NewListTasksHandler(c.Repo, logger)

	return c, nil
}

func (c *Container) initStore(ctx context.Context, cfg *config.Config) error {
	var store task.Repository

	if cfg.DatabaseURL != "" {
		repo, err := persistence.NewPostgresTaskRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		c.closers = append(c.closers, repo.Close)
		store = repo
		c.Logger.Info("using postgres task store")
	} else {
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		repo, err := persistence.NewSQLiteTaskRepository(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to initialize sqlite store: %w", err)
		}
		c.closers = append(c.closers, repo.Close)
		store = repo
		c.Logger.Info("using sqlite task store", "path", cfg.SQLitePath)
	}

	c.Repo = persistence.NewResilientTaskRepository(store, c.Logger)
	return nil
}

func (c *Container) initPublisher(cfg *config.Config) error {
	if cfg.RabbitMQURL == "" {
		c.Publisher = eventbus.NewInProcessBus(c.Logger)
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
	if err != nil {
		if cfg.IsDevelopment() {
			c.Logger.Warn("RabbitMQ unavailable, using in-process bus", "error", err)
			c.Publisher = eventbus.NewInProcessBus(c.Logger)
			return nil
		}
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	c.closers = append(c.closers, publisher.Close)
	c.Publisher = publisher
	return nil
}

// initCache returns the Redis queue cache, or nil when Redis is not
// configured or (in development) unreachable. Refreshes work without it.
func (c *Container) initCache(ctx context.Context, cfg *config.Config) commands.QueueCache {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, queue cache disabled", "error", err)
		return nil
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("Redis unreachable, queue cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	c.Redis = client
	c.closers = append(c.closers, client.Close)
	return cache.NewRedisQueueCache(client, 0)
}

func (c *Container) initEngine(cfg *config.Config) error {
	profile := config.DefaultWeightProfile()
	if cfg.WeightProfilePath != "" {
		loaded, err := config.LoadWeightProfile(cfg.WeightProfilePath)
		if err != nil {
			return fmt.Errorf("failed to load weight profile: %w", err)
		}
		profile = loaded
	}
	if !profile.HasPhase(cfg.Phase) {
		c.Logger.Warn("configured phase has no weight-table row, category weights are zero",
			"phase", cfg.Phase,
		)
	}

	c.Scoring = services.NewScoringEngine(services.ScoringConfig{
		UrgencyMax:           cfg.UrgencyMax,
		UrgencyHalfLifeHours: cfg.UrgencyHalfLifeHours,
		ImpactMax:            cfg.ImpactMax,
		ImpactSaturation:     cfg.ImpactSaturation,
		AnchorBonus:          cfg.AnchorBonus,
		ChainHeadBonus:       cfg.ChainHeadBonus,
		Phase:                cfg.Phase,
		WeightTable:          profile.Phases,
	})
	c.Selector = services.NewQueueSelector(
		services.NewExactSolver(),
		services.NewGreedySolver(),
		cfg.ExactSolverEnabled,
		cfg.SolverTimeout,
		c.Logger,
		c.Metrics,
	)
	return nil
}

// Close releases all resources in reverse acquisition order.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
