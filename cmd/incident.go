package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"safetyops/internal/bootstrap"
	"safetyops/internal/bootstrap/logging"
	"safetyops/internal/domain/reconcile"
	"safetyops/internal/domain/safety"
	"safetyops/internal/errs"
	"safetyops/internal/format"
	"safetyops/internal/ports"
	"safetyops/internal/usecase/ingest"
)

var incidentCmd = &cobra.Command{
	Use:   "incident",
	Short: "Inspect and correct stored incidents",
}

var incidentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents, newest first",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		unverified, _ := cmd.Flags().GetBool("unverified")
		site, _ := cmd.Flags().GetString("site")

		items, err := svc.ListIncidents(ctx, ports.IncidentFilter{Site: site, UnverifiedOnly: unverified})
		if err != nil {
			return errs.Wrap(err, "list incidents")
		}
		return writeOutput(cmd, items, func(mode format.Mode) string {
			return format.Incidents(items, mode)
		})
	}),
}

var incidentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one incident and its change log",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetString("id")
		inc, err := svc.GetIncident(ctx, id)
		if err != nil {
			return errs.Wrap(err, "show incident")
		}
		return writeOutput(cmd, inc, func(mode format.Mode) string {
			return format.Incident(inc, mode)
		})
	}),
}

var incidentEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Correct an incident by hand; the record becomes verified",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *ingest.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetString("id")
		patch := patchFromFlags(cmd)

		inc, err := svc.EditIncident(ctx, id, patch)
		if err != nil {
			logging.Error(ctx, "edit incident failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "edit incident")
		}
		return writeOutput(cmd, inc, func(mode format.Mode) string {
			return format.Incident(inc, mode)
		})
	}),
}

// patchFromFlags sets only the fields whose flags were given.
func patchFromFlags(cmd *cobra.Command) reconcile.Patch {
	var p reconcile.Patch
	flags := cmd.Flags()

	boolFlag := func(name string) *bool {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}
	intFlag := func(name string) *int {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetInt(name)
		return &v
	}
	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	p.Recordable = boolFlag("recordable")
	p.LostTime = boolFlag("lti")
	p.TransitLaboral = boolFlag("transit")
	p.InItinere = boolFlag("in-itinere")
	p.Fatality = boolFlag("fatality")
	p.JobTransfer = boolFlag("job-transfer")
	p.Tier1 = boolFlag("pse-tier1")
	p.Tier2 = boolFlag("pse-tier2")
	p.ClientComm = boolFlag("client-communication")
	p.DaysAway = intFlag("days-away")
	p.DaysRestricted = intFlag("days-restricted")
	p.EventDate = stringFlag("event-date")
	p.Year = intFlag("year")
	p.Month = intFlag("month")
	p.Name = stringFlag("name")
	p.Description = stringFlag("description")
	p.Site = stringFlag("site")
	p.Type = stringFlag("type")
	p.Location = stringFlag("location")
	if flags.Changed("body-zones") {
		zones, _ := flags.GetStringSlice("body-zones")
		p.BodyZones = make([]safety.BodyZone, 0, len(zones))
		for _, z := range zones {
			p.BodyZones = append(p.BodyZones, safety.BodyZone(z))
		}
	}
	return p
}

func init() {
	rootCmd.AddCommand(incidentCmd)
	incidentCmd.AddCommand(incidentListCmd)
	incidentCmd.AddCommand(incidentShowCmd)
	incidentCmd.AddCommand(incidentEditCmd)

	incidentListCmd.Flags().Bool("unverified", false, "Only records that need review")
	incidentListCmd.Flags().String("site", "", "Only this site")
	addFormatFlag(incidentListCmd)

	incidentShowCmd.Flags().String("id", "", "Incident identifier")
	addFormatFlag(incidentShowCmd)
	_ = incidentShowCmd.MarkFlagRequired("id")

	incidentEditCmd.Flags().String("id", "", "Incident identifier")
	addEditFlags(incidentEditCmd)
	addFormatFlag(incidentEditCmd)
	_ = incidentEditCmd.MarkFlagRequired("id")
}

// addEditFlags declares the patch flags read by patchFromFlags.
func addEditFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("recordable", false, "Recordable flag")
	f.Bool("lti", false, "Lost-time flag")
	f.Bool("transit", false, "Work-related transit flag")
	f.Bool("in-itinere", false, "Commuting flag")
	f.Bool("fatality", false, "Fatality flag")
	f.Bool("job-transfer", false, "Restricted work or job transfer flag")
	f.Int("days-away", 0, "Days away from work")
	f.Int("days-restricted", 0, "Days of restricted work")
	f.Bool("pse-tier1", false, "Process safety Tier 1 flag")
	f.Bool("pse-tier2", false, "Process safety Tier 2 flag")
	f.Bool("client-communication", false, "Client communication flag")
	f.String("event-date", "", "Event date (YYYY-MM-DD or DD/MM/YYYY); month and year follow it")
	f.Int("year", 0, "Reporting year")
	f.Int("month", 0, "Reporting month")
	f.String("name", "", "Name")
	f.String("description", "", "Description")
	f.String("site", "", "Site")
	f.String("type", "", "Incident type")
	f.String("location", "", "Injury location")
	f.StringSlice("body-zones", nil, "Body zones, replacing the detected ones")
}
