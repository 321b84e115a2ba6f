package bootstrap

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"safetyops/internal/bootstrap/config"
	"safetyops/internal/bootstrap/database"
	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/exposure"
	cacheinfra "safetyops/internal/infrastructure/cache"
	sqliterepo "safetyops/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "safetyops/internal/infrastructure/persistence/sqlite/uow"
	"safetyops/internal/infrastructure/spreadsheet"
	"safetyops/internal/ports"
	"safetyops/internal/usecase/ingest"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewStateRepository,
			fx.As(new(ports.StateRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(
		fx.Annotate(
			spreadsheet.NewExcelReader,
			fx.As(new(ports.WorkbookReader)),
		),
	),
	fx.Provide(provideSiteLookup),
	fx.Provide(provideIngestOptions),
	fx.Provide(ingest.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideSiteLookup(ctx context.Context, cfg config.Config) (exposure.Lookup, error) {
	catalog, err := LoadCatalog(ctx, cfg.Safety.SiteDefaultsFile)
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

func provideIngestOptions(cfg config.Config) ingest.Options {
	return ingest.Options{
		Sheet:           cfg.Import.Sheet,
		SeverityDaysCap: cfg.Safety.SeverityDaysCap,
	}
}
