package kpi

import (
	"strconv"

	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// Filter narrows the collections before Compute. Zero values match all.
type Filter struct {
	Year int
	Site string
}

// Apply returns filtered copies of the incident, exposure and km collections.
func (f Filter) Apply(incidents []safety.Incident, exposure []safety.ExposureHour, km []safety.GlobalKmRecord) ([]safety.Incident, []safety.ExposureHour, []safety.GlobalKmRecord) {
	site := normalize.Canonical(f.Site)
	year := ""
	if f.Year > 0 {
		year = strconv.Itoa(f.Year)
	}

	outInc := make([]safety.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if site != "" && normalize.Canonical(inc.Site) != site {
			continue
		}
		if year != "" && incidentYear(inc) != f.Year {
			continue
		}
		outInc = append(outInc, inc)
	}

	outExp := make([]safety.ExposureHour, 0, len(exposure))
	for _, e := range exposure {
		if site != "" && normalize.Canonical(e.Site) != site {
			continue
		}
		if year != "" && (len(e.Period) < 4 || e.Period[:4] != year) {
			continue
		}
		outExp = append(outExp, e)
	}

	// Fleet km is a global denominator; only the year applies.
	outKm := make([]safety.GlobalKmRecord, 0, len(km))
	for _, k := range km {
		if f.Year > 0 && k.Year != f.Year {
			continue
		}
		outKm = append(outKm, k)
	}
	return outInc, outExp, outKm
}

func incidentYear(inc safety.Incident) int {
	if inc.Year > 0 {
		return inc.Year
	}
	if p := inc.Period(); p != "" {
		y, _ := strconv.Atoi(p[:4])
		return y
	}
	return 0
}
