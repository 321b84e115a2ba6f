package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"safetyops/internal/domain/safety"
)

var (
	t0 = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(24 * time.Hour)
)

func baseIncident() safety.Incident {
	return safety.Incident{
		IncidentID:  "INC-1",
		Name:        "Corte en mano",
		Description: "Corte con cuchilla",
		Site:        "Obra Norte",
		Type:        "Tratamiento medico",
		Location:    "Mano derecha",
		RawPayload:  map[string]string{"ID": "INC-1"},
		EventDate:   "2025-03-10",
		Year:        2025,
		Month:       3,
		Flags:       safety.Flags{Recordable: true},
		BodyZones:   []safety.BodyZone{"hand_right"},
		IsVerified:  true,
	}
}

func fieldsOf(entries []safety.ChangeLogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Field)
	}
	return out
}

func TestUpsertInsertSeedsChangeLog(t *testing.T) {
	got, sum := UpsertFromImport(nil, []safety.Incident{baseIncident()}, t0)
	if sum.Inserted != 1 || len(got) != 1 {
		t.Fatalf("summary = %+v, len = %d", sum, len(got))
	}
	want := []safety.ChangeLogEntry{{Date: t0, Field: safety.FieldCreated, NewValue: "INC-1", Actor: safety.ActorImport}}
	if diff := cmp.Diff(want, got[0].ChangeLog); diff != "" {
		t.Fatalf("change log mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertVerifiedLockKeepsDerivedFields(t *testing.T) {
	existing, _ := UpsertFromImport(nil, []safety.Incident{baseIncident()}, t0)

	reimport := baseIncident()
	reimport.IsVerified = false
	reimport.EventDate = "2025-03-15"
	reimport.Month = 3
	reimport.Flags = safety.Flags{Recordable: true, LostTime: true}
	reimport.DaysAway = 4
	reimport.Description = "Corte profundo con cuchilla"
	reimport.Site = "Obra Sur"
	reimport.Type = "Accidente con baja"
	reimport.RawPayload = map[string]string{"ID": "INC-1", "extra": "x"}

	got, sum := UpsertFromImport(existing, []safety.Incident{reimport}, t1)
	inc := got[0]

	if inc.EventDate != "2025-03-10" || inc.Flags.LostTime || inc.DaysAway != 0 {
		t.Fatalf("derived fields overwritten: %+v", inc)
	}
	if !inc.IsVerified {
		t.Fatalf("verified flag dropped")
	}
	if inc.Description != reimport.Description || inc.Site != "Obra Sur" || inc.Type != reimport.Type {
		t.Fatalf("source fields not refreshed: %+v", inc)
	}
	if inc.RawPayload["extra"] != "x" {
		t.Fatalf("raw payload not refreshed")
	}
	if sum.Updated != 1 || sum.Locked != 1 {
		t.Fatalf("summary = %+v", sum)
	}

	newEntries := inc.ChangeLog[1:]
	if diff := cmp.Diff([]string{"description", "type", "site"}, fieldsOf(newEntries)); diff != "" {
		t.Fatalf("logged fields mismatch (-want +got):\n%s", diff)
	}
	for _, e := range newEntries {
		if e.Actor != safety.ActorImport || !e.Date.Equal(t1) {
			t.Fatalf("entry = %+v", e)
		}
	}
	if existing[0].Site != "Obra Norte" || len(existing[0].ChangeLog) != 1 {
		t.Fatalf("previous snapshot mutated: %+v", existing[0])
	}
}

func TestUpsertUnverifiedRefreshesDerivedFields(t *testing.T) {
	first := baseIncident()
	first.IsVerified = false
	existing, _ := UpsertFromImport(nil, []safety.Incident{first}, t0)

	reimport := first
	reimport.EventDate = "2025-03-15"
	reimport.Flags = safety.Flags{Recordable: true, LostTime: true}
	reimport.DaysAway = 2
	reimport.IsVerified = true

	got, sum := UpsertFromImport(existing, []safety.Incident{reimport}, t1)
	inc := got[0]
	if inc.EventDate != "2025-03-15" || !inc.Flags.LostTime || inc.DaysAway != 2 {
		t.Fatalf("derived fields not refreshed: %+v", inc)
	}
	if !inc.IsVerified {
		t.Fatalf("auto-classified import should verify the record")
	}
	if sum.Locked != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if diff := cmp.Diff([]string{"event_date", "lost_time", "days_away"}, fieldsOf(inc.ChangeLog[1:])); diff != "" {
		t.Fatalf("logged fields mismatch (-want +got):\n%s", diff)
	}
	entry := inc.ChangeLog[1]
	if entry.OldValue != "2025-03-10" || entry.NewValue != "2025-03-15" {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestUpsertIdenticalImportIsUnchanged(t *testing.T) {
	existing, _ := UpsertFromImport(nil, []safety.Incident{baseIncident()}, t0)
	got, sum := UpsertFromImport(existing, []safety.Incident{baseIncident()}, t1)
	if sum.Unchanged != 1 || sum.Updated != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if diff := cmp.Diff(existing, got); diff != "" {
		t.Fatalf("collection changed (-want +got):\n%s", diff)
	}
}

func TestUpsertKeepsRecordsMissingFromImport(t *testing.T) {
	a := baseIncident()
	b := baseIncident()
	b.IncidentID = "INC-2"
	existing, _ := UpsertFromImport(nil, []safety.Incident{a, b}, t0)

	c := baseIncident()
	c.IncidentID = "INC-3"
	got, sum := UpsertFromImport(existing, []safety.Incident{c}, t1)
	if len(got) != 3 || sum.Inserted != 1 {
		t.Fatalf("len = %d, summary = %+v", len(got), sum)
	}
	ids := []string{got[0].IncidentID, got[1].IncidentID, got[2].IncidentID}
	if diff := cmp.Diff([]string{"INC-1", "INC-2", "INC-3"}, ids); diff != "" {
		t.Fatalf("order mismatch:\n%s", diff)
	}
}

func TestApplyManualEdit(t *testing.T) {
	first := baseIncident()
	first.IsVerified = false
	existing, _ := UpsertFromImport(nil, []safety.Incident{first}, t0)

	yes := true
	days := 5
	got, err := ApplyManualEdit(existing, "INC-1", Patch{LostTime: &yes, DaysAway: &days}, t1)
	if err != nil {
		t.Fatalf("ApplyManualEdit() error = %v", err)
	}
	inc := got[0]
	if !inc.IsVerified || !inc.Flags.LostTime || inc.DaysAway != 5 || !inc.UpdatedAt.Equal(t1) {
		t.Fatalf("incident = %+v", inc)
	}
	want := []safety.ChangeLogEntry{
		{Date: t1, Field: "lost_time", OldValue: "false", NewValue: "true", Actor: safety.ActorManual},
		{Date: t1, Field: "days_away", OldValue: "0", NewValue: "5", Actor: safety.ActorManual},
	}
	if diff := cmp.Diff(want, inc.ChangeLog[1:]); diff != "" {
		t.Fatalf("change log mismatch (-want +got):\n%s", diff)
	}
	if existing[0].IsVerified {
		t.Fatalf("previous snapshot mutated")
	}

	// A later import cannot undo the manual edit.
	after, _ := UpsertFromImport(got, []safety.Incident{first}, t1.Add(time.Hour))
	if !after[0].Flags.LostTime || after[0].DaysAway != 5 {
		t.Fatalf("import overwrote manual edit: %+v", after[0])
	}
}

func TestApplyManualEditNoFieldChangeStillVerifies(t *testing.T) {
	first := baseIncident()
	first.IsVerified = false
	existing, _ := UpsertFromImport(nil, []safety.Incident{first}, t0)

	got, err := ApplyManualEdit(existing, "INC-1", Patch{}, t1)
	if err != nil {
		t.Fatalf("ApplyManualEdit() error = %v", err)
	}
	if !got[0].IsVerified || len(got[0].ChangeLog) != 1 {
		t.Fatalf("incident = %+v", got[0])
	}
}

func TestApplyManualEditTransitExclusivity(t *testing.T) {
	first := baseIncident()
	first.Flags.InItinere = true
	existing, _ := UpsertFromImport(nil, []safety.Incident{first}, t0)

	yes := true
	got, err := ApplyManualEdit(existing, "INC-1", Patch{TransitLaboral: &yes}, t1)
	if err != nil {
		t.Fatalf("ApplyManualEdit() error = %v", err)
	}
	if !got[0].Flags.TransitLaboral || got[0].Flags.InItinere {
		t.Fatalf("flags = %+v", got[0].Flags)
	}
}

func TestApplyManualEditUnknownID(t *testing.T) {
	_, err := ApplyManualEdit(nil, "missing", Patch{}, t1)
	if !errors.Is(err, safety.ErrIncidentNotFound) {
		t.Fatalf("err = %v, want ErrIncidentNotFound", err)
	}
}

func TestApplyManualEditNormalizesEventDate(t *testing.T) {
	existing, _ := UpsertFromImport(nil, []safety.Incident{baseIncident()}, t0)

	tests := []struct {
		name      string
		patch     Patch
		wantDate  string
		wantYear  int
		wantMonth int
	}{
		{name: "iso moves year and month", patch: Patch{EventDate: ptr("2024-12-01")}, wantDate: "2024-12-01", wantYear: 2024, wantMonth: 12},
		{name: "day first is normalized", patch: Patch{EventDate: ptr("05/02/2025")}, wantDate: "2025-02-05", wantYear: 2025, wantMonth: 2},
		{name: "explicit year is kept", patch: Patch{EventDate: ptr("2024-12-01"), Year: ptrInt(2025)}, wantDate: "2024-12-01", wantYear: 2025, wantMonth: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyManualEdit(existing, "INC-1", tt.patch, t1)
			if err != nil {
				t.Fatalf("ApplyManualEdit() error = %v", err)
			}
			inc := got[0]
			if inc.EventDate != tt.wantDate || inc.Year != tt.wantYear || inc.Month != tt.wantMonth {
				t.Fatalf("ApplyManualEdit() date=%q year=%d month=%d, want %q %d %d",
					inc.EventDate, inc.Year, inc.Month, tt.wantDate, tt.wantYear, tt.wantMonth)
			}
			if inc.Period() != tt.wantDate[:7] {
				t.Fatalf("Period() = %q, want %q", inc.Period(), tt.wantDate[:7])
			}
		})
	}

	for _, bad := range []string{"ayer", "31/02/2025", ""} {
		if _, err := ApplyManualEdit(existing, "INC-1", Patch{EventDate: ptr(bad)}, t1); !errors.Is(err, safety.ErrInvalidDate) {
			t.Fatalf("ApplyManualEdit(%q) error = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func ptr(s string) *string { return &s }

func ptrInt(v int) *int { return &v }
