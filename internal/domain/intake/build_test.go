package intake

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"safetyops/internal/domain/safety"
)

func sampleSheet() Sheet {
	return Sheet{
		Name: "query",
		Header: []string{
			"ID", "Nombre", "Sitio", "Fecha de Carga", "Tipo de Incidente",
			"Ubicación de la Lesión", "Riesgo Potencial", "Fecha del Evento", "Año",
			"Descripción", "Días Perdidos",
		},
		Rows: [][]string{
			{"INC-1", "Caida en rampa", "Obra Norte", "45658", "Accidente con tiempo perdido", "Hombro (izquierda)", "Alto", "", "2.025", "Resbaló al bajar", "5"},
			{"", "Sin id", "Obra Norte", "45658", "Primeros auxilios", "", "Bajo", "", "", "", ""},
			{"INC-1", "Repetido", "Obra Norte", "45658", "Primeros auxilios", "", "Bajo", "", "", "", ""},
			{"INC-2", "Observación", "Taller", "15/03/2025", "Observación  de\nseguridad", "XYZ", "Medio", "2025-02-10T08:00", "", "", ""},
			{"", "", "", "", "", "", "", "", "", "", ""},
			{"INC-3", "Otro", "Taller", "", "Incidente sin clasificar", "Rodilla derecha", "Bajo", "01/04/2025", "", "", ""},
		},
	}
}

func TestBuild(t *testing.T) {
	rules := []safety.MappingRule{{
		Type:   "observación de seguridad",
		Flags:  safety.Flags{Recordable: true},
		Source: safety.RuleManual,
	}}

	res, err := Build(sampleSheet(), rules)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantWarnings := []string{
		"row 3: missing incident id, skipped",
		`row 4: duplicate incident id "INC-1", keeping row 2`,
	}
	if diff := cmp.Diff(wantWarnings, res.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if len(res.Incidents) != 3 {
		t.Fatalf("incidents = %d, want 3", len(res.Incidents))
	}

	first := res.Incidents[0]
	if first.IncidentID != "INC-1" || first.Name != "Caida en rampa" || first.Site != "Obra Norte" {
		t.Fatalf("first incident = %+v", first)
	}
	if first.EventDate != "2025-01-01" || first.Year != 2025 || first.Month != 1 {
		t.Fatalf("first incident dates = %q %d %d", first.EventDate, first.Year, first.Month)
	}
	if !first.IsVerified || !first.Flags.Recordable || !first.Flags.LostTime {
		t.Fatalf("first incident classification = %+v verified=%v", first.Flags, first.IsVerified)
	}
	if first.DaysAway != 5 {
		t.Fatalf("first incident days away = %d", first.DaysAway)
	}
	if diff := cmp.Diff([]safety.BodyZone{"shoulder_left"}, first.BodyZones); diff != "" {
		t.Fatalf("body zones mismatch (-want +got):\n%s", diff)
	}
	if first.RawPayload["Año"] != "2.025" || first.RawPayload["Descripción"] != "Resbaló al bajar" {
		t.Fatalf("raw payload = %v", first.RawPayload)
	}

	second := res.Incidents[1]
	if second.IsVerified {
		t.Fatalf("rule hint must not verify the record")
	}
	if !second.Flags.Recordable {
		t.Fatalf("rule hint not applied: %+v", second.Flags)
	}
	if second.EventDate != "2025-02-10" || second.Year != 2025 || second.Month != 2 {
		t.Fatalf("second incident dates = %q %d %d", second.EventDate, second.Year, second.Month)
	}
	if diff := cmp.Diff([]safety.BodyZone{safety.ZoneUnknown}, second.BodyZones); diff != "" {
		t.Fatalf("body zones mismatch (-want +got):\n%s", diff)
	}

	third := res.Incidents[2]
	if third.IsVerified || third.Flags != (safety.Flags{}) {
		t.Fatalf("third incident = %+v verified=%v", third.Flags, third.IsVerified)
	}

	wantRules := []safety.MappingRule{
		{Type: "OBSERVACION DE SEGURIDAD", Flags: safety.Flags{Recordable: true}, Source: safety.RuleManual},
		{Type: "ACCIDENTE CON TIEMPO PERDIDO", Flags: safety.Flags{Recordable: true, LostTime: true}, Source: safety.RuleAuto},
		{Type: "INCIDENTE SIN CLASIFICAR", Source: safety.RuleAuto},
	}
	if diff := cmp.Diff(wantRules, res.Rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildMissingColumnsWarn(t *testing.T) {
	sheet := Sheet{
		Header: []string{"ID", "Tipo"},
		Rows:   [][]string{{"A", "primeros auxilios"}},
	}

	res, err := Build(sheet, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	wantWarnings := []string{
		`missing column "name"`,
		`missing column "site"`,
		`missing column "load_date"`,
		`missing column "location"`,
		`missing column "potential_risk"`,
		"row 2: no event or load date",
	}
	if diff := cmp.Diff(wantWarnings, res.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if len(res.Incidents) != 1 || !res.Incidents[0].IsVerified || res.Incidents[0].Flags.Recordable {
		t.Fatalf("incidents = %+v", res.Incidents)
	}
}

func TestBuildEmptySheet(t *testing.T) {
	_, err := Build(Sheet{Header: []string{"ID"}}, nil)
	if !errors.Is(err, safety.ErrEmptyWorkbook) {
		t.Fatalf("Build() error = %v, want ErrEmptyWorkbook", err)
	}
}

func TestBuildOptionalFlagColumns(t *testing.T) {
	sheet := Sheet{
		Header: []string{"ID", "Tipo", "Fatalidad", "Nivel PSE", "Comunicación al Cliente", "Días Restringidos"},
		Rows: [][]string{
			{"A", "Accidente industrial", "Sí", "Tier 1", "x", "3"},
			{"B", "Accidente industrial", "no", "2", "", "-4"},
		},
	}

	res, err := Build(sheet, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	a, b := res.Incidents[0], res.Incidents[1]
	if !a.Flags.Fatality || !a.Flags.ProcessSafetyTier1 || !a.Flags.ClientCommunication || a.DaysRestricted != 3 {
		t.Fatalf("A = %+v restricted=%d", a.Flags, a.DaysRestricted)
	}
	if b.Flags.Fatality || !b.Flags.ProcessSafetyTier2 || b.DaysRestricted != 0 {
		t.Fatalf("B = %+v restricted=%d", b.Flags, b.DaysRestricted)
	}
	if len(res.Rules) != 1 {
		t.Fatalf("rules = %+v", res.Rules)
	}
}

func TestMergeRules(t *testing.T) {
	current := []safety.MappingRule{
		{Type: "Caída", Source: safety.RuleAuto},
		{Type: "Golpe", Source: safety.RuleAuto},
	}
	incoming := []safety.MappingRule{
		{Type: "CAIDA", Flags: safety.Flags{Recordable: true}, Source: safety.RuleManual},
		{Type: "corte", Source: safety.RuleManual},
		{Type: "  ", Source: safety.RuleManual},
	}

	got := MergeRules(current, incoming)
	want := []safety.MappingRule{
		{Type: "CAIDA", Flags: safety.Flags{Recordable: true}, Source: safety.RuleManual},
		{Type: "GOLPE", Source: safety.RuleAuto},
		{Type: "CORTE", Source: safety.RuleManual},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MergeRules() mismatch (-want +got):\n%s", diff)
	}
}
