package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"brightsteps/config"
	"brightsteps/internal/domain/repository"
	logs "brightsteps/internal/infra/log"
	"brightsteps/internal/infra/persistence"
	"brightsteps/internal/infra/persistence/catalog"

	"go.uber.org/fx"
)

// Usage:
//
//	seed -file ./config/catalog.yaml
//
// Storage settings come from the regular config, so the same binary seeds Mongo or Postgres.

type seedParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Config     *config.Config
	Logger     *slog.Logger
	Packs      repository.PackRepository
	Activities repository.ActivityRepository
}

func main() {
	catalogFile := flag.String("file", "./config/catalog.yaml", "Catalog YAML file to load")
	flag.Parse()

	fx.New(
		fx.Provide(
			config.New,
			logs.New,
			persistence.NewRepositories,
		),
		fx.Supply(catalogPath(*catalogFile)),
		fx.Invoke(seed),
	).Run()
}

type catalogPath string

func seed(params seedParams, path catalogPath) {
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if params.Config.Storage.Driver == config.StorageDriverMemory {
				params.Logger.Warn("Seeding the memory driver has no lasting effect")
			}

			cat, err := catalog.Load(string(path), time.Now())
			if err != nil {
				return err
			}

			if err := catalog.Seed(ctx, cat, params.Packs, params.Activities); err != nil {
				return err
			}

			params.Logger.Info("Catalog seeded",
				slog.String("file", string(path)),
				slog.Int("packs", len(cat.Packs)),
				slog.Int("activities", len(cat.Activities)),
			)

			return params.Shutdown()
		},
	})
}
