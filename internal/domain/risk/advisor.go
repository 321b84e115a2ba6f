// Package risk maps incident narratives to a risk category and the controls
// recommended for it.
package risk

import (
	"regexp"
	"strings"

	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// Category is a risk family with its recommended controls.
type Category struct {
	Name     string
	Keywords *regexp.Regexp
	Controls []string
}

func keywords(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)`)
}

// Categories is ordered; ties on score resolve to the earlier entry.
var Categories = []Category{
	{
		Name:     "falls",
		Keywords: keywords("CAIDA", "CAE", "RESBAL", "TROPIEZ", "ALTURA", "ESCALERA", "ANDAMIO", "FALL", "SLIP", "TRIP"),
		Controls: []string{
			"Inspect walking surfaces and keep access routes clear",
			"Enforce fall-arrest equipment above 1.8 m",
			"Audit ladders and scaffolds before each shift",
		},
	},
	{
		Name:     "vehicles",
		Keywords: keywords("VEHICUL", "CAMION", "CAMIONETA", "CHOQUE", "COLISION", "VOLCAMIENTO", "ATROPELL", "CONDUC", "TRANSITO", "VEHICLE", "TRUCK", "CRASH", "COLLISION"),
		Controls: []string{
			"Refresh defensive driving training",
			"Review journey management and fatigue limits",
			"Check vehicle telemetry for speeding events",
		},
	},
	{
		Name:     "machinery",
		Keywords: keywords("ATRAP", "APRISION", "MAQUIN", "EQUIPO", "HERRAMIENTA", "AMOLADORA", "PRENSA", "ENGRAN", "MACHINE", "TOOL", "CAUGHT", "PINCH"),
		Controls: []string{
			"Verify guarding on rotating equipment",
			"Reinforce lockout-tagout before maintenance",
			"Inspect hand and power tools",
		},
	},
	{
		Name:     "cuts",
		Keywords: keywords("CORTE", "CORTANTE", "LACERA", "CUCHILL", "VIDRIO", "FILO", "CUT", "LACERATION", "SHARP"),
		Controls: []string{
			"Issue cut-resistant gloves for the task",
			"Replace worn blades and store sharps safely",
		},
	},
	{
		Name:     "manual_handling",
		Keywords: keywords("SOBREESFUERZO", "ESFUERZO", "CARGA", "LEVANT", "LUMBAGO", "POSTURA", "LIFT", "STRAIN", "OVEREXERTION"),
		Controls: []string{
			"Run manual handling training with load limits",
			"Provide mechanical aids for heavy loads",
			"Rotate repetitive tasks",
		},
	},
	{
		Name:     "struck_by",
		Keywords: keywords("GOLPE", "GOLPEA", "IMPACTO", "CAIDA DE OBJETO", "PROYECCION", "STRUCK", "IMPACT", "HIT"),
		Controls: []string{
			"Secure materials stored at height",
			"Mark exclusion zones around lifting operations",
		},
	},
	{
		Name:     "chemical",
		Keywords: keywords("QUIMIC", "DERRAME", "SALPICADURA", "GAS", "VAPOR", "INHALA", "INTOXICA", "CHEMICAL", "SPILL", "FUME"),
		Controls: []string{
			"Update safety data sheets at point of use",
			"Check respiratory protection and ventilation",
			"Stock spill kits near storage areas",
		},
	},
	{
		Name:     "burns_electrical",
		Keywords: keywords("QUEMADURA", "ELECTRIC", "DESCARGA", "ARCO", "FUEGO", "INCENDIO", "BURN", "SHOCK", "FIRE"),
		Controls: []string{
			"Verify electrical isolation and permits",
			"Inspect hot-work controls and fire watch",
		},
	},
}

// DefaultControls is returned when no category matches.
var DefaultControls = []string{
	"Conduct a site safety walk with supervisors",
	"Review incident investigations for common causes",
}

// Classify scores each category by keyword hits across the incidents and
// returns the best one. ok is false when nothing matched.
func Classify(incidents []safety.Incident) (Category, bool) {
	scores := make([]int, len(Categories))
	for _, inc := range incidents {
		text := narrative(inc)
		for i, c := range Categories {
			scores[i] += len(c.Keywords.FindAllStringIndex(text, -1))
		}
	}
	best := -1
	for i, s := range scores {
		if s > 0 && (best < 0 || s > scores[best]) {
			best = i
		}
	}
	if best < 0 {
		return Category{}, false
	}
	return Categories[best], true
}

// Advise returns the controls for the dominant risk category of incidents.
// It satisfies kpi.Advisor.
func Advise(incidents []safety.Incident) []string {
	c, ok := Classify(incidents)
	if !ok {
		return append([]string(nil), DefaultControls...)
	}
	return append([]string(nil), c.Controls...)
}

func narrative(inc safety.Incident) string {
	return normalize.Label(strings.Join([]string{inc.Name, inc.Description, inc.Type, inc.PotentialRisk}, " "))
}
