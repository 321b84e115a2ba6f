package exposure

import (
	"fmt"
	"math"

	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// Lookup resolves default hours for a site name.
type Lookup interface {
	Lookup(site string) float64
}

type recordKey struct {
	site   string
	period string
}

func keyOf(site string, period string) recordKey {
	return recordKey{site: normalize.Canonical(site), period: period}
}

// GenerateAutoRecords returns a new exposure collection where every
// (site, period) touched by an incident has a record. Records with hours > 0
// are never overwritten; otherwise a non-zero default yields an auto record,
// and a missing key yields a zero pending placeholder. Applying it to its own
// output is a no-op.
func GenerateAutoRecords(incidents []safety.Incident, existing []safety.ExposureHour, lookup Lookup) []safety.ExposureHour {
	out := append([]safety.ExposureHour(nil), existing...)
	index := make(map[recordKey]int, len(out))
	for i, rec := range out {
		index[keyOf(rec.Site, rec.Period)] = i
	}

	for _, inc := range incidents {
		period := inc.Period()
		site := normalize.Canonical(inc.Site)
		if period == "" || site == "" {
			continue
		}
		key := keyOf(site, period)

		idx, found := index[key]
		if found && out[idx].Hours > 0 {
			continue
		}

		hours := 0.0
		if lookup != nil {
			hours = lookup.Lookup(inc.Site)
		}
		switch {
		case hours > 0:
			rec := safety.ExposureHour{
				ID:     safety.ExposureID(safety.SourceAuto, site, period),
				Site:   site,
				Period: period,
				Hours:  hours,
				Source: safety.SourceAuto,
			}
			if found {
				out[idx] = rec
			} else {
				index[key] = len(out)
				out = append(out, rec)
			}
		case !found:
			index[key] = len(out)
			out = append(out, safety.ExposureHour{
				ID:     safety.ExposureID(safety.SourcePending, site, period),
				Site:   site,
				Period: period,
				Source: safety.SourcePending,
			})
		}
	}
	return out
}

// SetManual records a human-entered hours value for (site, period). An
// existing record for the key is replaced and its provenance becomes manual.
func SetManual(existing []safety.ExposureHour, site string, period string, hours float64) ([]safety.ExposureHour, error) {
	canon := normalize.Canonical(site)
	if canon == "" {
		return nil, safety.ErrSiteRequired
	}
	if !safety.ValidPeriod(period) {
		return nil, fmt.Errorf("%w: %q", safety.ErrInvalidPeriod, period)
	}
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return nil, fmt.Errorf("%w: %v", safety.ErrInvalidHours, hours)
	}

	rec := safety.ExposureHour{
		ID:     safety.ExposureID(safety.SourceManual, canon, period),
		Site:   canon,
		Period: period,
		Hours:  hours,
		Source: safety.SourceManual,
	}

	out := append([]safety.ExposureHour(nil), existing...)
	key := keyOf(canon, period)
	for i, cur := range out {
		if keyOf(cur.Site, cur.Period) == key {
			out[i] = rec
			return out, nil
		}
	}
	return append(out, rec), nil
}

// SetGlobalKm upserts the fleet kilometers of a year.
func SetGlobalKm(existing []safety.GlobalKmRecord, year int, km float64) ([]safety.GlobalKmRecord, error) {
	if year < 1990 || year > 2100 {
		return nil, fmt.Errorf("%w: %d", safety.ErrInvalidYear, year)
	}
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return nil, fmt.Errorf("km must be zero or positive: %v", km)
	}

	out := append([]safety.GlobalKmRecord(nil), existing...)
	for i, cur := range out {
		if cur.Year == year {
			out[i].Km = km
			return out, nil
		}
	}
	return append(out, safety.GlobalKmRecord{Year: year, Km: km}), nil
}
