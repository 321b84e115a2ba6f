package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"safetyops/internal/errs"
	"safetyops/internal/format"
)

// writeOutput prints value as JSON for --format json, otherwise the table
// rendered by render in the requested mode.
func writeOutput(cmd *cobra.Command, value any, render func(format.Mode) string) error {
	raw, _ := cmd.Flags().GetString("format")
	if strings.EqualFold(strings.TrimSpace(raw), "json") {
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return errs.Wrap(err, "encode json output")
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return errs.Wrap(err, "write output")
	}

	mode, err := format.ParseMode(raw)
	if err != nil {
		return errs.User(err, "--format must be table, markdown or json")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), render(mode))
	return errs.Wrap(err, "write output")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "table", "Output format (table|markdown|json)")
}
