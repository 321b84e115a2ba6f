package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"safetyops/internal/bootstrap"
	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/errs"
	"safetyops/internal/format"
	"safetyops/internal/usecase/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an incident workbook export",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		path, _ := cmd.Flags().GetString("file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		data, err := os.ReadFile(path)
		if err != nil {
			return errs.User(err, "cannot read workbook "+path)
		}

		summary, err := svc.ImportWorkbook(ctx, ingest.ImportInput{
			Data:     data,
			FileName: filepath.Base(path),
			DryRun:   dryRun,
		})
		if err != nil {
			return errs.Wrap(err, "import workbook")
		}
		return writeOutput(cmd, summary, func(mode format.Mode) string {
			return summaryTable(summary, mode)
		})
	}),
}

func summaryTable(s ingest.ImportSummary, mode format.Mode) string {
	t := format.NewTable(mode)
	title := "Import " + s.FileName
	if s.DryRun {
		title += " (dry run)"
	}
	t.SetTitle(title)
	t.Header("Measure", "Value")
	t.Columns(format.ColumnConfig{Number: 2, MaxWidth: 80})
	t.Row("Batch", s.BatchID)
	t.Row("Sheet", s.Sheet)
	t.Row("Rows", s.Rows)
	t.Row("Inserted", s.Inserted)
	t.Row("Updated", s.Updated)
	t.Row("Unchanged", s.Unchanged)
	t.Row("Locked", s.Locked)
	t.Row("Exposure created", s.ExposureCreated)
	t.Row("Exposure auto", s.ExposureAuto)
	t.Row("Rules learned", s.RulesLearned)
	t.Row("Imported at", s.ImportedAt.Format("2006-01-02 15:04:05"))
	if len(s.Warnings) > 0 {
		t.Row("Warnings", strings.Join(s.Warnings, "\n"))
	}
	return t.String()
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("file", "", "Path to the .xlsx export")
	importCmd.Flags().Bool("dry-run", false, "Parse and reconcile without saving")
	addFormatFlag(importCmd)
	_ = importCmd.MarkFlagRequired("file")
}
