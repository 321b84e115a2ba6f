package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"safetyops/internal/bootstrap"
	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/errs"
	"safetyops/internal/usecase/ingest"
)

func withApp(run func(cmd *cobra.Command, app *bootstrap.App, svc *ingest.Service) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
		)

		var app *bootstrap.App
		var svc *ingest.Service
		fxApp := fx.New(
			bootstrap.Module,
			fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return configFile(cmd) },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&app, &svc),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		logger, err := configuredLogger(cmd, app)
		if err != nil {
			return errs.Wrap(err, "configure logger")
		}
		ctx = logging.WithLogger(ctx, logger)
		cmd.SetContext(ctx)

		if err := app.InitSchema(ctx); err != nil {
			return errs.Wrap(err, "initialize schema")
		}

		if err := run(cmd, app, svc); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}

// configFile drops the default path when it was not given explicitly so a
// missing default file falls back to defaults and env.
func configFile(cmd *cobra.Command) string {
	if flag := cmd.Flags().Lookup("config"); flag != nil && !flag.Changed {
		return ""
	}
	return cfgFile
}

func configuredLogger(cmd *cobra.Command, app *bootstrap.App) (*slog.Logger, error) {
	level, err := logging.ParseLevel(app.Config.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(level, app.Config.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return logger.With(slog.String("app", app.Config.App.Name)), nil
}
