package exposure

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"safetyops/internal/domain/safety"
)

func testCatalog() Catalog {
	return Catalog{
		Patterns: []PatternRule{
			{Pattern: regexp.MustCompile(`^Obra`), Hours: 8000},
		},
		Exact: []ExactRule{
			{Site: "Oficina Central", Hours: 3200},
			{Site: "OBRA NORTE", Hours: 1},
		},
	}
}

func TestCatalogLookup(t *testing.T) {
	c := testCatalog()
	tests := []struct {
		site string
		want float64
	}{
		{site: "Obra Norte", want: 8000},
		{site: "OBRA NORTE", want: 1},
		{site: "  oficina céntral ", want: 3200},
		{site: "Otro Sitio", want: 0},
		{site: "", want: 0},
	}
	for _, tt := range tests {
		if got := c.Lookup(tt.site); got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.site, got, tt.want)
		}
	}
}

func TestDefaultCatalogEntries(t *testing.T) {
	c := DefaultCatalog()
	for _, p := range c.Patterns {
		if p.Hours <= 0 {
			t.Errorf("pattern %s has no hours", p.Pattern)
		}
	}
	for _, e := range c.Exact {
		if got := c.Lookup(e.Site); got != e.Hours {
			t.Errorf("Lookup(%q) = %v, want %v", e.Site, got, e.Hours)
		}
	}
}

func TestParseCatalog(t *testing.T) {
	raw := []byte(`
[[pattern]]
regex = "(?i)^planta"
hours = 10000

[[exact]]
site = "Depósito Sur"
hours = 900
`)
	c, err := ParseCatalog(raw)
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if got := c.Lookup("PLANTA 2"); got != 10000 {
		t.Fatalf("Lookup(PLANTA 2) = %v", got)
	}
	if got := c.Lookup("deposito sur"); got != 900 {
		t.Fatalf("Lookup(deposito sur) = %v", got)
	}

	if _, err := ParseCatalog([]byte("[[pattern]]\nregex = \"(\"\nhours = 1\n")); err == nil {
		t.Fatalf("ParseCatalog() accepted an invalid regex")
	}
	if _, err := ParseCatalog([]byte("[[exact]]\nsite = \"\"\nhours = 1\n")); err == nil {
		t.Fatalf("ParseCatalog() accepted an empty site")
	}
}

func incident(id string, site string, date string) safety.Incident {
	return safety.Incident{IncidentID: id, Site: site, EventDate: date}
}

func TestGenerateAutoRecords(t *testing.T) {
	incidents := []safety.Incident{
		incident("1", "Obra Norte", "2025-03-04"),
		incident("2", "Obra Norte", "2025-03-20"),
		incident("3", "Sitio Nuevo", "2025-03-01"),
		incident("4", "Oficina Central", "2025-04-02"),
		incident("5", "Oficina Central", ""),
		incident("6", "", "2025-04-02"),
	}
	existing := []safety.ExposureHour{
		{ID: "manual:OFICINA CENTRAL:2025-04", Site: "OFICINA CENTRAL", Period: "2025-04", Hours: 150, Source: safety.SourceManual},
	}

	got := GenerateAutoRecords(incidents, existing, testCatalog())
	want := []safety.ExposureHour{
		existing[0],
		{ID: "auto:OBRA NORTE:2025-03", Site: "OBRA NORTE", Period: "2025-03", Hours: 8000, Source: safety.SourceAuto},
		{ID: "pending:SITIO NUEVO:2025-03", Site: "SITIO NUEVO", Period: "2025-03", Source: safety.SourcePending},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("GenerateAutoRecords() mismatch (-want +got):\n%s", diff)
	}
	if len(existing) != 1 || existing[0].Hours != 150 {
		t.Fatalf("input collection was mutated: %+v", existing)
	}
}

func TestGenerateAutoRecordsIsIdempotent(t *testing.T) {
	incidents := []safety.Incident{
		incident("1", "Obra Norte", "2025-03-04"),
		incident("2", "Sin Catalogo", "2025-05-04"),
		incident("3", "Oficina Central", "2025-06-10"),
	}
	once := GenerateAutoRecords(incidents, nil, testCatalog())
	twice := GenerateAutoRecords(incidents, once, testCatalog())
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second pass changed the collection (-once +twice):\n%s", diff)
	}
}

func TestGenerateAutoRecordsUpgradesPlaceholder(t *testing.T) {
	existing := []safety.ExposureHour{
		{ID: "pending:OBRA SUR:2025-01", Site: "OBRA SUR", Period: "2025-01", Source: safety.SourcePending},
	}
	got := GenerateAutoRecords([]safety.Incident{incident("1", "Obra Sur", "2025-01-09")}, existing, testCatalog())
	if len(got) != 1 || got[0].Source != safety.SourceAuto || got[0].Hours != 8000 {
		t.Fatalf("placeholder not replaced: %+v", got)
	}
}

func TestSetManualDowngradesAuto(t *testing.T) {
	existing := []safety.ExposureHour{
		{ID: "auto:OBRA NORTE:2025-03", Site: "OBRA NORTE", Period: "2025-03", Hours: 8000, Source: safety.SourceAuto},
	}
	got, err := SetManual(existing, "obra norte", "2025-03", 7300)
	if err != nil {
		t.Fatalf("SetManual() error = %v", err)
	}
	want := []safety.ExposureHour{
		{ID: "manual:OBRA NORTE:2025-03", Site: "OBRA NORTE", Period: "2025-03", Hours: 7300, Source: safety.SourceManual},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SetManual() mismatch (-want +got):\n%s", diff)
	}

	again := GenerateAutoRecords([]safety.Incident{incident("1", "Obra Norte", "2025-03-01")}, got, testCatalog())
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("auto pass overwrote manual hours:\n%s", diff)
	}
}

func TestSetManualValidation(t *testing.T) {
	if _, err := SetManual(nil, " ", "2025-01", 1); !errors.Is(err, safety.ErrSiteRequired) {
		t.Fatalf("err = %v, want ErrSiteRequired", err)
	}
	if _, err := SetManual(nil, "A", "2025-13", 1); !errors.Is(err, safety.ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
	if _, err := SetManual(nil, "A", "2025-01", -1); !errors.Is(err, safety.ErrInvalidHours) {
		t.Fatalf("err = %v, want ErrInvalidHours", err)
	}
}

func TestSetGlobalKm(t *testing.T) {
	got, err := SetGlobalKm([]safety.GlobalKmRecord{{Year: 2024, Km: 10}}, 2024, 25)
	if err != nil {
		t.Fatalf("SetGlobalKm() error = %v", err)
	}
	got, err = SetGlobalKm(got, 2025, 30)
	if err != nil {
		t.Fatalf("SetGlobalKm() error = %v", err)
	}
	want := []safety.GlobalKmRecord{{Year: 2024, Km: 25}, {Year: 2025, Km: 30}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SetGlobalKm() mismatch (-want +got):\n%s", diff)
	}
	if _, err := SetGlobalKm(nil, 1800, 1); !errors.Is(err, safety.ErrInvalidYear) {
		t.Fatalf("err = %v, want ErrInvalidYear", err)
	}
}
