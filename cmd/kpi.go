package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"safetyops/internal/bootstrap"
	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/kpi"
	"safetyops/internal/errs"
	"safetyops/internal/format"
	"safetyops/internal/usecase/ingest"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Compute safety indicators",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		year, _ := cmd.Flags().GetInt("year")
		site, _ := cmd.Flags().GetString("site")

		metrics, err := svc.ComputeMetrics(ctx, kpi.Filter{Year: year, Site: site})
		if err != nil {
			return errs.Wrap(err, "compute metrics")
		}
		return writeOutput(cmd, metrics, func(mode format.Mode) string {
			return format.Metrics(metrics, mode)
		})
	}),
}

func init() {
	rootCmd.AddCommand(kpiCmd)

	kpiCmd.Flags().Int("year", 0, "Only incidents and exposure of this year")
	kpiCmd.Flags().String("site", "", "Only this site")
	addFormatFlag(kpiCmd)
}
