package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"safetyops/internal/bootstrap"
	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/errs"
	"safetyops/internal/format"
	"safetyops/internal/usecase/ingest"
)

var exposureCmd = &cobra.Command{
	Use:   "exposure",
	Short: "Manage exposure hours and fleet kilometers",
}

var exposureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exposure records",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		view, err := svc.ListExposure(ctx)
		if err != nil {
			return errs.Wrap(err, "list exposure")
		}
		return writeOutput(cmd, view, func(mode format.Mode) string {
			return format.Exposure(view.Hours, view.GlobalKm, mode)
		})
	}),
}

var exposureSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set manual hours for a site and period",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		site, _ := cmd.Flags().GetString("site")
		period, _ := cmd.Flags().GetString("period")
		hours, _ := cmd.Flags().GetFloat64("hours")

		rec, err := svc.SetExposure(ctx, site, period, hours)
		if err != nil {
			return errs.Wrap(err, "set exposure")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "exposure set: %s %s %s hours (%s)\n", rec.Site, rec.Period, format.Number(rec.Hours), rec.Source)
		return errs.Wrap(err, "write exposure output")
	}),
}

var exposureAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Backfill exposure for periods that have incidents",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		created, err := svc.RunAutoExposure(ctx)
		if err != nil {
			return errs.Wrap(err, "auto exposure")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "exposure records created: %d\n", created)
		return errs.Wrap(err, "write exposure output")
	}),
}

var exposureKmCmd = &cobra.Command{
	Use:   "km",
	Short: "Set fleet kilometers for a year",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		year, _ := cmd.Flags().GetInt("year")
		km, _ := cmd.Flags().GetFloat64("km")

		if err := svc.SetGlobalKm(ctx, year, km); err != nil {
			return errs.Wrap(err, "set global km")
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "fleet km set: %d %s\n", year, format.Number(km))
		return errs.Wrap(err, "write exposure output")
	}),
}

func init() {
	rootCmd.AddCommand(exposureCmd)
	exposureCmd.AddCommand(exposureListCmd)
	exposureCmd.AddCommand(exposureSetCmd)
	exposureCmd.AddCommand(exposureAutoCmd)
	exposureCmd.AddCommand(exposureKmCmd)

	addFormatFlag(exposureListCmd)

	exposureSetCmd.Flags().String("site", "", "Site name")
	exposureSetCmd.Flags().String("period", "", "Period (YYYY-MM)")
	exposureSetCmd.Flags().Float64("hours", 0, "Worked hours")
	_ = exposureSetCmd.MarkFlagRequired("site")
	_ = exposureSetCmd.MarkFlagRequired("period")
	_ = exposureSetCmd.MarkFlagRequired("hours")

	exposureKmCmd.Flags().Int("year", 0, "Year")
	exposureKmCmd.Flags().Float64("km", 0, "Fleet kilometers")
	_ = exposureKmCmd.MarkFlagRequired("year")
	_ = exposureKmCmd.MarkFlagRequired("km")
}
