package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"gorm.io/gorm"

	"safetyops/internal/bootstrap/config"
	"safetyops/internal/bootstrap/database"
	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/exposure"
	"safetyops/internal/errs"
	"safetyops/internal/infrastructure/persistence/schema"
	"safetyops/internal/infrastructure/persistence/sqlite/model"
)

type App struct {
	Config config.Config
	DB     *gorm.DB
}

func New(ctx context.Context, configFile string) (*App, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.app")
	logging.Info(logCtx, "loading application config", slog.String("config_file", configFile))

	cfg, err := config.Load(logCtx, configFile)
	if err != nil {
		return nil, errs.Wrap(err, "load config")
	}

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, errs.Wrap(err, "open database")
	}

	logging.Info(logCtx, "application bootstrap completed", slog.String("database_driver", cfg.Database.Driver))

	return &App{
		Config: cfg,
		DB:     db,
	}, nil
}

// Models lists every table the state store owns.
func Models() []any {
	return []any{
		&schema.StateSlot{},
		&model.Incident{},
		&model.IncidentChange{},
		&model.ExposureHour{},
		&model.GlobalKm{},
		&model.MappingRule{},
		&model.KVEntry{},
	}
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.app")
	logging.Info(logCtx, "start schema migration")

	if err := a.DB.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed")
	return nil
}

func (a *App) Close(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	sqlDB, err := a.DB.DB()
	if err != nil {
		return errs.Wrap(err, "get sql db")
	}

	if err := sqlDB.Close(); err != nil {
		return errs.Wrap(err, "close sql db")
	}

	logging.Info(logging.WithComponent(ctx, "bootstrap.app"), "database connection closed")
	return nil
}

// LoadCatalog reads the site-defaults TOML file, or returns the built-in
// catalog when path is empty.
func LoadCatalog(ctx context.Context, path string) (exposure.Catalog, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.catalog")
	if path == "" {
		logging.Debug(logCtx, "using built-in site catalog")
		return exposure.DefaultCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return exposure.Catalog{}, errs.Wrapf(err, "read site catalog %q", path)
	}
	catalog, err := exposure.ParseCatalog(raw)
	if err != nil {
		return exposure.Catalog{}, errs.Wrapf(err, "parse site catalog %q", path)
	}

	logging.Info(logCtx, "site catalog loaded",
		slog.String("path", path),
		slog.Int("patterns", len(catalog.Patterns)),
		slog.Int("exact", len(catalog.Exact)),
	)
	return catalog, nil
}
