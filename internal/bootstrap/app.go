// Package bootstrap wires configuration, logging, storage, and services
// into a runnable application.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/database"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/events"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/fetch"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/importer"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/loader"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/matching"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/repository"
)

const redisPingTimeout = 3 * time.Second

// App holds the wired application. Construction is phased: config, logger,
// database, redis, then repositories and services, so a failure names the
// phase that broke.
type App struct {
	Config      *config.Config
	Logger      logger.Logger
	DB          *database.DB
	Redis       *redis.Client
	Publisher   *events.Publisher
	Projects    *repository.ProjectRepository
	Funders     *repository.FunderRepository
	Researchers *repository.ResearcherRepository
	Matches     *repository.MatchRepository
	Loader      *loader.Loader
	Importer    *importer.Importer
	Matcher     *matching.Service
}

// New builds the application from the config at path.
func New(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap config: %w", err)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("bootstrap logger: %w", err)
	}

	db, err := database.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	// Events are advisory: an unreachable Redis degrades to no events
	// rather than blocking ingestion.
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			log.Warn("Redis unreachable, events disabled", logger.Error(pingErr))
			client.Close()
		} else {
			app.Redis = client
			app.Publisher = events.NewPublisher(client, log, true)
		}
		cancel()
	}

	app.Projects = repository.NewProjectRepository(db.DB(), log, cfg.Ingest.CollisionPolicy)
	app.Funders = repository.NewFunderRepository(db.DB(), log)
	app.Researchers = repository.NewResearcherRepository(db.DB(), log)
	app.Matches = repository.NewMatchRepository(db.DB(), log)

	app.Loader = loader.New(app.Projects, log)
	app.Importer = importer.New(app.Loader, log, cfg.Ingest.DataDir)
	app.Matcher = matching.NewService(app.Funders, app.Researchers, app.Matches, log)

	log.Info("Application bootstrapped",
		logger.String("collision_policy", cfg.Ingest.CollisionPolicy),
		logger.Bool("events", app.Publisher != nil),
	)
	return app, nil
}

// NewFetchClient builds an HTTP fetcher for one configured source.
func (a *App) NewFetchClient(src config.SourceConfig) *fetch.Client {
	return fetch.NewClient(a.Logger, a.Config.Ingest.FetchTimeout, src.Retries, src.RetryDelay)
}

// Close releases held connections. Safe to call on a partially built app.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Redis close failed", logger.Error(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn("Database close failed", logger.Error(err))
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
