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

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last saved import",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		summary, found, err := svc.LastImportStatus(ctx)
		if err != nil {
			return errs.Wrap(err, "read import status")
		}
		if !found {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "no import recorded yet")
			return errs.Wrap(err, "write status output")
		}
		return writeOutput(cmd, summary, func(mode format.Mode) string {
			return summaryTable(summary, mode)
		})
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
	addFormatFlag(statusCmd)
}
