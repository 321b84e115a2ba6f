package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"safetyops/internal/bootstrap"
	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/errs"
	"safetyops/internal/usecase/ingest"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Exchange incident-type mapping rules",
}

var rulesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write mapping rules as YAML",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		out, _ := cmd.Flags().GetString("out")
		raw, err := svc.ExportRules(ctx)
		if err != nil {
			return errs.Wrap(err, "export rules")
		}
		if out == "" {
			_, err := cmd.OutOrStdout().Write(raw)
			return errs.Wrap(err, "write rules output")
		}
		if err := os.WriteFile(out, raw, 0o644); err != nil {
			return errs.Wrapf(err, "write rules file %q", out)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "rules written: %s\n", out)
		return errs.Wrap(err, "write rules output")
	}),
}

var rulesImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge mapping rules from a YAML file",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		path, _ := cmd.Flags().GetString("file")
		raw, err := os.ReadFile(path)
		if err != nil {
			return errs.User(err, "cannot read rules file "+path)
		}
		n, err := svc.ImportRules(ctx, raw)
		if err != nil {
			return errs.Wrap(err, "import rules")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "rules imported: %d\n", n)
		return errs.Wrap(err, "write rules output")
	}),
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesExportCmd)
	rulesCmd.AddCommand(rulesImportCmd)

	rulesExportCmd.Flags().String("out", "", "Output file (stdout when empty)")

	rulesImportCmd.Flags().String("file", "", "YAML rules file")
	_ = rulesImportCmd.MarkFlagRequired("file")
}
