package kpi

import (
	"sort"
	"time"

	"safetyops/internal/domain/normalize"
	"safetyops/internal/domain/safety"
)

// Advisor maps a site's incidents to recommended controls.
type Advisor func(incidents []safety.Incident) []string

// Input is everything Compute reads.
type Input struct {
	Incidents []safety.Incident
	Exposure  []safety.ExposureHour
	GlobalKm  []safety.GlobalKmRecord
	Settings  safety.Settings
	Now       time.Time
	Advisor   Advisor
}

// Counts are the eligible-population tallies behind the rates. In-itinere
// incidents are excluded from every count except InItinere.
type Counts struct {
	Total      int `json:"total"`
	Recordable int `json:"recordable"`
	LostTime   int `json:"lost_time"`
	DART       int `json:"dart"`
	Fatalities int `json:"fatalities"`
	Tier1      int `json:"tier1"`
	Tier2      int `json:"tier2"`
	Transit    int `json:"transit"`
	InItinere  int `json:"in_itinere"`
	Unverified int `json:"unverified"`
	DaysLost   int `json:"days_lost"`
}

// Rates are computed over exposure hours, except IFAT over fleet km.
type Rates struct {
	TRIR     float64 `json:"trir"`
	LTIF     float64 `json:"ltif"`
	DART     float64 `json:"dart"`
	Severity float64 `json:"severity"`
	FAR      float64 `json:"far"`
	Tier1    float64 `json:"tier1"`
	Tier2    float64 `json:"tier2"`
	IFAT     float64 `json:"ifat"`
}

// Regulatory is an approximation built from exposure hours, not payroll.
// AverageHeadcount = hours / (200 * active months).
type Regulatory struct {
	ActiveMonths     int     `json:"active_months"`
	AverageHeadcount float64 `json:"average_headcount"`
	IncidenceRate    float64 `json:"incidence_rate"`
}

// Metrics is the full indicator set handed to presentation and export.
type Metrics struct {
	Counts     Counts     `json:"counts"`
	TotalHours float64    `json:"total_hours"`
	TotalKm    float64    `json:"total_km"`
	Rates      Rates      `json:"rates"`
	Regulatory Regulatory `json:"regulatory"`
	Forecast   Forecast   `json:"forecast"`

	Top5Sites        []SiteCount       `json:"top5Sites"`
	DaysSinceList    []DaysSince       `json:"daysSinceList"`
	TrendAlerts      []TrendAlert      `json:"trendAlerts"`
	SiteEvolutions   []SiteEvolution   `json:"siteEvolutions"`
	SuggestedActions []SuggestedAction `json:"suggestedActions"`
}

// SiteCount is an incident count for one site.
type SiteCount struct {
	Site  string `json:"site"`
	Count int    `json:"count"`
}

// DaysSince is the time since the last incident of a site.
type DaysSince struct {
	Site         string `json:"site"`
	LastIncident string `json:"last_incident"`
	Days         int    `json:"days"`
}

// SuggestedAction lists recommended controls for a site.
type SuggestedAction struct {
	Site    string   `json:"site"`
	Reason  string   `json:"reason"`
	Actions []string `json:"actions"`
}

// Compute derives all indicators. It never fails: empty input yields zeros.
func Compute(in Input) Metrics {
	settings := in.Settings
	if settings.SeverityDaysCap <= 0 {
		settings.SeverityDaysCap = safety.DefaultSettings().SeverityDaysCap
	}

	var m Metrics
	m.Counts = count(in.Incidents, settings.SeverityDaysCap)
	m.TotalHours = totalHours(in.Exposure)
	for _, k := range in.GlobalKm {
		m.TotalKm += k.Km
	}

	h := m.TotalHours
	m.Rates = Rates{
		TRIR:     Rate(float64(m.Counts.Recordable), FactorTRIR, h),
		LTIF:     Rate(float64(m.Counts.LostTime), FactorLTIF, h),
		DART:     Rate(float64(m.Counts.DART), FactorDART, h),
		Severity: Rate(float64(m.Counts.DaysLost), FactorSeverity, h),
		FAR:      Rate(float64(m.Counts.Fatalities), FactorFAR, h),
		Tier1:    Rate(float64(m.Counts.Tier1), FactorPSE, h),
		Tier2:    Rate(float64(m.Counts.Tier2), FactorPSE, h),
		IFAT:     Rate(float64(m.Counts.Transit), FactorIFAT, m.TotalKm),
	}
	m.Regulatory = regulatory(in.Exposure, m.TotalHours, m.Counts.LostTime)
	m.Forecast = forecast(in.Incidents, in.Exposure, in.Now)

	bySite := siteCounts(in.Incidents)
	m.Top5Sites = topSites(bySite, 5)
	m.DaysSinceList = daysSince(in.Incidents, in.Now)
	m.TrendAlerts = trendAlerts(in.Incidents)
	m.SiteEvolutions = siteEvolutions(in.Incidents)
	m.SuggestedActions = suggestActions(in.Incidents, m.TrendAlerts, m.SiteEvolutions, bySite, in.Advisor)
	return m
}

func eligible(inc safety.Incident) bool {
	return !inc.Flags.InItinere
}

func isDART(inc safety.Incident) bool {
	return inc.Flags.LostTime || inc.Flags.JobTransfer || inc.DaysAway > 0 || inc.DaysRestricted > 0
}

func count(incidents []safety.Incident, daysCap int) Counts {
	var c Counts
	for _, inc := range incidents {
		c.Total++
		if !inc.IsVerified {
			c.Unverified++
		}
		if !eligible(inc) {
			c.InItinere++
			continue
		}
		if inc.Flags.Recordable {
			c.Recordable++
		}
		if inc.Flags.LostTime {
			c.LostTime++
		}
		if isDART(inc) {
			c.DART++
		}
		if inc.Flags.Fatality {
			c.Fatalities++
		}
		if inc.Flags.ProcessSafetyTier1 {
			c.Tier1++
		}
		if inc.Flags.ProcessSafetyTier2 {
			c.Tier2++
		}
		if inc.Flags.TransitLaboral {
			c.Transit++
		}
		days := max(inc.DaysAway, 0) + max(inc.DaysRestricted, 0)
		c.DaysLost += min(days, daysCap)
	}
	return c
}

func totalHours(exposure []safety.ExposureHour) float64 {
	total := 0.0
	for _, e := range exposure {
		if e.Hours > 0 {
			total += e.Hours
		}
	}
	return total
}

func regulatory(exposure []safety.ExposureHour, hours float64, lostTime int) Regulatory {
	months := make(map[string]struct{})
	for _, e := range exposure {
		if e.Hours > 0 && safety.ValidPeriod(e.Period) {
			months[e.Period] = struct{}{}
		}
	}
	r := Regulatory{ActiveMonths: len(months)}
	if r.ActiveMonths == 0 {
		return r
	}
	r.AverageHeadcount = round2(hours / float64(headcountHoursPerMonth*r.ActiveMonths))
	r.IncidenceRate = Rate(float64(lostTime), FactorIncidence, r.AverageHeadcount)
	return r
}

func siteKey(site string) string {
	key := normalize.Canonical(site)
	if key == "" {
		return "SIN SITIO"
	}
	return key
}

func siteCounts(incidents []safety.Incident) map[string]int {
	out := make(map[string]int)
	for _, inc := range incidents {
		out[siteKey(inc.Site)]++
	}
	return out
}

func topSites(bySite map[string]int, n int) []SiteCount {
	out := make([]SiteCount, 0, len(bySite))
	for site, c := range bySite {
		out = append(out, SiteCount{Site: site, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Site < out[j].Site
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func daysSince(incidents []safety.Incident, now time.Time) []DaysSince {
	last := make(map[string]string)
	for _, inc := range incidents {
		if len(inc.EventDate) != 10 {
			continue
		}
		key := siteKey(inc.Site)
		if inc.EventDate > last[key] {
			last[key] = inc.EventDate
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	out := make([]DaysSince, 0, len(last))
	for site, date := range last {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		days := int(today.Sub(d).Hours() / 24)
		if days < 0 {
			days = 0
		}
		out = append(out, DaysSince{Site: site, LastIncident: date, Days: days})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Days != out[j].Days {
			return out[i].Days < out[j].Days
		}
		return out[i].Site < out[j].Site
	})
	return out
}
