package cmd

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"safetyops/internal/domain/safety"
	"safetyops/internal/format"
	"safetyops/internal/usecase/ingest"
)

func TestPatchFromFlagsOnlySetsChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "edit"}
	addEditFlags(cmd)
	if err := cmd.ParseFlags([]string{"--recordable=false", "--days-away", "4", "--pse-tier1", "--body-zones", "hand_right,head"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	p := patchFromFlags(cmd)
	if p.Recordable == nil || *p.Recordable {
		t.Fatalf("Recordable = %v, want explicit false", p.Recordable)
	}
	if p.DaysAway == nil || *p.DaysAway != 4 {
		t.Fatalf("DaysAway = %v, want 4", p.DaysAway)
	}
	if p.Tier1 == nil || !*p.Tier1 {
		t.Fatalf("Tier1 = %v, want true", p.Tier1)
	}
	if diff := cmp.Diff([]safety.BodyZone{"hand_right", "head"}, p.BodyZones); diff != "" {
		t.Fatalf("BodyZones mismatch (-want +got):\n%s", diff)
	}
	if p.LostTime != nil || p.EventDate != nil || p.Description != nil || p.Tier2 != nil || p.Site != nil {
		t.Fatalf("unset flags leaked into patch: %+v", p)
	}
}

func TestSummaryTableListsWarnings(t *testing.T) {
	out := summaryTable(ingest.ImportSummary{
		FileName: "export.xlsx",
		Inserted: 2,
		DryRun:   true,
		Warnings: []string{`missing column "year"`},
	}, format.ASCII)

	for _, want := range []string{"export.xlsx (dry run)", "Inserted", `missing column "year"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("summaryTable() missing %q:\n%s", want, out)
		}
	}
}
