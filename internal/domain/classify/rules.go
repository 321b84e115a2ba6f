// Package classify assigns safety flags from a free-text incident type using
// an ordered, first-match-wins rule table.
package classify

import (
	"regexp"

	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// Category names a classifier rule.
type Category string

const (
	CategoryNone               Category = ""
	CategoryFirstAid           Category = "first_aid"
	CategoryOperative          Category = "operative_accident"
	CategoryIndustrial         Category = "industrial_accident"
	CategoryInItinere          Category = "in_itinere"
	CategoryMedicalTreatment   Category = "medical_treatment"
	CategoryQuality            Category = "quality_accident"
	CategoryTransit            Category = "vehicular_transit"
	CategoryLostTime           Category = "lost_time"
	CategoryEnvironmental      Category = "environmental"
	CategoryRestrictedTransfer Category = "restricted_transfer"
)

// Rule pairs a predicate over the normalized label with the flag effect it
// applies when it is the first rule to match.
type Rule struct {
	Category Category
	Match    func(label string) bool
	Apply    func(f *safety.Flags)
}

func phrases(exprs ...string) func(string) bool {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(`\b` + e + `\b`)
	}
	return func(label string) bool {
		for _, re := range res {
			if re.MatchString(label) {
				return true
			}
		}
		return false
	}
}

func verifiedOnly(*safety.Flags) {}

// Rules is evaluated top to bottom. The order is load-bearing: an ambiguous
// label resolves to the first category that matches, and downstream rates
// depend on that.
var Rules = []Rule{
	{
		Category: CategoryFirstAid,
		Match:    phrases(`PRIMEROS? AUXILIOS?`, `FIRST AID`, `BOTIQUIN`),
		Apply:    func(f *safety.Flags) { f.Recordable = false },
	},
	{
		Category: CategoryOperative,
		Match:    phrases(`ACCIDENTE OPERATIVO`, `INCIDENTE OPERATIVO`, `OPERATIONAL ACCIDENT`),
		Apply:    verifiedOnly,
	},
	{
		Category: CategoryIndustrial,
		Match:    phrases(`ACCIDENTE INDUSTRIAL`, `INCIDENTE INDUSTRIAL`, `INDUSTRIAL ACCIDENT`),
		Apply:    verifiedOnly,
	},
	{
		Category: CategoryInItinere,
		Match:    phrases(`IN[ -]?ITINERE`, `ITINERE`, `COMMUTING`),
		Apply: func(f *safety.Flags) {
			f.InItinere = true
			f.TransitLaboral = false
		},
	},
	{
		Category: CategoryMedicalTreatment,
		Match:    phrases(`TRATAMIENTO MEDICO`, `ATENCION MEDICA`, `MEDICAL TREATMENT`, `EVACUACION`, `EVACUATION`, `MTC`),
		Apply:    func(f *safety.Flags) { f.Recordable = true },
	},
	{
		Category: CategoryQuality,
		Match:    phrases(`CALIDAD`, `QUALITY`),
		Apply:    verifiedOnly,
	},
	{
		Category: CategoryTransit,
		Match:    phrases(`VEHICULAR`, `TRANSITO`, `VIAL`, `TRANSIT`, `VEHICLE`, `CHOQUE`),
		Apply: func(f *safety.Flags) {
			f.TransitLaboral = true
			f.InItinere = false
		},
	},
	{
		Category: CategoryLostTime,
		Match:    phrases(`PERDIDA DE TIEMPO`, `TIEMPO PERDIDO`, `CON BAJA`, `DIAS PERDIDOS`, `LOST TIME`, `LTI`),
		Apply: func(f *safety.Flags) {
			f.Recordable = true
			f.LostTime = true
		},
	},
	{
		Category: CategoryEnvironmental,
		Match:    phrases(`AMBIENTAL`, `MEDIO AMBIENTE`, `DERRAME`, `ENVIRONMENTAL`, `SPILL`),
		Apply:    verifiedOnly,
	},
	{
		Category: CategoryRestrictedTransfer,
		Match:    phrases(`TRABAJO RESTRINGIDO`, `RESTRINGID[OA]`, `RESTRICCION`, `TRANSFERID[OA]`, `TRANSFERENCIA`, `RESTRICTED`, `TRANSFERRED`, `DART`),
		Apply: func(f *safety.Flags) {
			f.Recordable = true
			f.JobTransfer = true
		},
	},
}

// Result is the outcome of classifying one label.
type Result struct {
	Category Category
	Flags    safety.Flags
	Verified bool
}

// Classify applies the first matching rule of the package table to base.
func Classify(incidentType string, base safety.Flags) Result {
	return ClassifyWith(Rules, incidentType, base)
}

// ClassifyWith normalizes the label and applies the first matching rule.
// With no match the flags are returned untouched and Verified is false so
// the record surfaces for review.
func ClassifyWith(rules []Rule, incidentType string, base safety.Flags) Result {
	label := normalize.Label(incidentType)
	if label == "" {
		return Result{Flags: base}
	}
	for _, rule := range rules {
		if !rule.Match(label) {
			continue
		}
		flags := base
		rule.Apply(&flags)
		return Result{Category: rule.Category, Flags: flags, Verified: true}
	}
	return Result{Flags: base}
}
