package risk

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"safetyops/internal/domain/safety"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		incidents []safety.Incident
		want      string
	}{
		{
			name:      "falls",
			incidents: []safety.Incident{{Description: "Trabajador resbaló en escalera"}},
			want:      "falls",
		},
		{
			name:      "vehicles with accents",
			incidents: []safety.Incident{{Description: "Colisión de camioneta en ruta"}},
			want:      "vehicles",
		},
		{
			name: "dominant across incidents",
			incidents: []safety.Incident{
				{Description: "Corte en mano con cuchillo"},
				{Description: "Sobreesfuerzo al levantar carga"},
				{Name: "Lumbago por postura"},
			},
			want: "manual_handling",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.incidents)
			if !ok {
				t.Fatalf("Classify() found no category")
			}
			if got.Name != tt.want {
				t.Fatalf("Classify() = %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestAdviseFallsBackToDefaults(t *testing.T) {
	got := Advise([]safety.Incident{{Description: "sin detalle"}})
	if diff := cmp.Diff(DefaultControls, got); diff != "" {
		t.Fatalf("Advise() mismatch (-want +got):\n%s", diff)
	}
	got[0] = "mutated"
	if DefaultControls[0] == "mutated" {
		t.Fatalf("Advise() returned the shared slice")
	}
}

func TestAdviseReturnsCategoryControls(t *testing.T) {
	got := Advise([]safety.Incident{{Type: "Quemadura por arco eléctrico"}})
	want := Categories[7].Controls
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Advise() mismatch (-want +got):\n%s", diff)
	}
}
