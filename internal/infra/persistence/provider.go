// Package persistence selects the storage backend configured by storage.driver.
package persistence

import (
	"context"
	"log/slog"
	"time"

	"brightsteps/config"
	"brightsteps/internal/domain/repository"
	"brightsteps/internal/errors"
	"brightsteps/internal/infra/metrics"
	"brightsteps/internal/infra/persistence/catalog"
	"brightsteps/internal/infra/persistence/memory"
	"brightsteps/internal/infra/persistence/mongodb"
	"brightsteps/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Repositories is the set of repositories provided to the application
type Repositories struct {
	fx.Out

	Users      repository.UserRepository
	Activities repository.ActivityRepository
	Packs      repository.PackRepository
}

// ProviderParams holds dependencies for the repositories, injected by Fx
type ProviderParams struct {
	fx.In

	Lc      fx.Lifecycle
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

// NewRepositories creates the repositories for the configured driver
func NewRepositories(params ProviderParams) (Repositories, error) {
	cfg := params.Config
	logger := params.Logger

	switch cfg.Storage.Driver {
	case config.StorageDriverMongo:
		db, err := mongodb.New(mongodb.Params{Lifecycle: params.Lc, Config: cfg, Logger: logger})
		if err != nil {
			return Repositories{}, err
		}
		logger.Info("Using MongoDB storage")

		return Repositories{
			Users:      mongodb.NewUserRepository(db),
			Activities: mongodb.NewActivityRepository(db),
			Packs:      mongodb.NewPackRepository(db),
		}, nil

	case config.StorageDriverPostgres:
		db, err := postgres.New(postgres.Params{Lifecycle: params.Lc, Config: cfg, Logger: logger, Metrics: params.Metrics})
		if err != nil {
			return Repositories{}, err
		}
		logger.Info("Using PostgreSQL storage")

		return Repositories{
			Users:      postgres.NewUserRepository(db),
			Activities: postgres.NewActivityRepository(db),
			Packs:      postgres.NewPackRepository(db),
		}, nil

	case config.StorageDriverMemory, "":
		store := memory.NewStore()
		if cfg.Storage.CatalogFile != "" {
			if err := preload(store, cfg.Storage.CatalogFile); err != nil {
				return Repositories{}, err
			}
		}
		logger.Info("Using in-memory storage", slog.String("catalog", cfg.Storage.CatalogFile))

		return Repositories{
			Users:      store.Users(),
			Activities: store.Activities(),
			Packs:      store.Packs(),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

func preload(store *memory.Store, path string) error {
	cat, err := catalog.Load(path, time.Now())
	if err != nil {
		return err
	}

	return catalog.Seed(context.Background(), cat, store.Packs(), store.Activities())
}
