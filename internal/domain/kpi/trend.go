package kpi

import (
	"math"
	"sort"
	"strconv"
	"time"

	"safetyops/internal/domain/safety"
)

// Forecast projects the latest year to twelve months when it is the current
// calendar year. A prior year is treated as complete (multiplier 1).
type Forecast struct {
	LatestPeriod         string  `json:"latest_period"`
	Year                 int     `json:"year"`
	Multiplier           float64 `json:"multiplier"`
	Recordables          int     `json:"recordables"`
	LostTime             int     `json:"lost_time"`
	Hours                float64 `json:"hours"`
	ProjectedRecordables int     `json:"projected_recordables"`
	ProjectedLostTime    int     `json:"projected_lost_time"`
	ProjectedHours       float64 `json:"projected_hours"`
	TRIR                 float64 `json:"trir"`
	LTIF                 float64 `json:"ltif"`
}

// Evolution statuses.
const (
	EvolutionImproving     = "improving"
	EvolutionStable        = "stable"
	EvolutionDeteriorating = "deteriorating"

	evolutionThreshold = 20.0
	trendWindow        = 3
)

// TrendAlert flags a site whose counts over the last three periods are
// strictly increasing.
type TrendAlert struct {
	Site    string   `json:"site"`
	Periods []string `json:"periods"`
	Counts  []int    `json:"counts"`
}

// SiteEvolution compares the trailing three periods with the three before.
type SiteEvolution struct {
	Site         string  `json:"site"`
	CurrentAvg   float64 `json:"current_avg"`
	PreviousAvg  float64 `json:"previous_avg"`
	VariationPct float64 `json:"variation_pct"`
	Status       string  `json:"status"`
}

func forecast(incidents []safety.Incident, exposure []safety.ExposureHour, now time.Time) Forecast {
	latest := ""
	for _, inc := range incidents {
		if p := inc.Period(); p > latest {
			latest = p
		}
	}
	for _, e := range exposure {
		if safety.ValidPeriod(e.Period) && e.Period > latest {
			latest = e.Period
		}
	}
	if latest == "" {
		return Forecast{}
	}

	year, _ := strconv.Atoi(latest[:4])
	month, _ := strconv.Atoi(latest[5:7])
	f := Forecast{LatestPeriod: latest, Year: year, Multiplier: 1}
	if year == now.Year() && month > 0 {
		f.Multiplier = 12 / float64(month)
	}

	prefix := latest[:4]
	for _, inc := range incidents {
		p := inc.Period()
		if p == "" || p[:4] != prefix || !eligible(inc) {
			continue
		}
		if inc.Flags.Recordable {
			f.Recordables++
		}
		if inc.Flags.LostTime {
			f.LostTime++
		}
	}
	for _, e := range exposure {
		if safety.ValidPeriod(e.Period) && e.Period[:4] == prefix && e.Hours > 0 {
			f.Hours += e.Hours
		}
	}

	f.ProjectedRecordables = int(math.Round(float64(f.Recordables) * f.Multiplier))
	f.ProjectedLostTime = int(math.Round(float64(f.LostTime) * f.Multiplier))
	f.ProjectedHours = round2(f.Hours * f.Multiplier)
	f.TRIR = Rate(float64(f.ProjectedRecordables), FactorTRIR, f.ProjectedHours)
	f.LTIF = Rate(float64(f.ProjectedLostTime), FactorLTIF, f.ProjectedHours)
	return f
}

// periodCounts returns the sorted distinct incident periods and per-site
// counts keyed by period.
func periodCounts(incidents []safety.Incident) ([]string, map[string]map[string]int) {
	seen := make(map[string]struct{})
	bySite := make(map[string]map[string]int)
	for _, inc := range incidents {
		p := inc.Period()
		if p == "" {
			continue
		}
		seen[p] = struct{}{}
		site := siteKey(inc.Site)
		if bySite[site] == nil {
			bySite[site] = make(map[string]int)
		}
		bySite[site][p]++
	}
	periods := make([]string, 0, len(seen))
	for p := range seen {
		periods = append(periods, p)
	}
	sort.Strings(periods)
	return periods, bySite
}

func sortedSites(bySite map[string]map[string]int) []string {
	sites := make([]string, 0, len(bySite))
	for s := range bySite {
		sites = append(sites, s)
	}
	sort.Strings(sites)
	return sites
}

func trendAlerts(incidents []safety.Incident) []TrendAlert {
	periods, bySite := periodCounts(incidents)
	if len(periods) < trendWindow {
		return []TrendAlert{}
	}
	window := periods[len(periods)-trendWindow:]

	out := []TrendAlert{}
	for _, site := range sortedSites(bySite) {
		counts := make([]int, len(window))
		for i, p := range window {
			counts[i] = bySite[site][p]
		}
		if StrictlyIncreasing(counts) {
			out = append(out, TrendAlert{
				Site:    site,
				Periods: append([]string(nil), window...),
				Counts:  counts,
			})
		}
	}
	return out
}

// StrictlyIncreasing reports c[0] < c[1] < ... with a non-zero last value.
func StrictlyIncreasing(counts []int) bool {
	if len(counts) == 0 || counts[len(counts)-1] == 0 {
		return false
	}
	for i := 1; i < len(counts); i++ {
		if counts[i] <= counts[i-1] {
			return false
		}
	}
	return true
}

func siteEvolutions(incidents []safety.Incident) []SiteEvolution {
	periods, bySite := periodCounts(incidents)
	if len(periods) == 0 {
		return []SiteEvolution{}
	}
	curStart := max(len(periods)-trendWindow, 0)
	prevStart := max(curStart-trendWindow, 0)
	current := periods[curStart:]
	previous := periods[prevStart:curStart]

	out := []SiteEvolution{}
	for _, site := range sortedSites(bySite) {
		cur := windowAvg(bySite[site], current)
		prev := windowAvg(bySite[site], previous)
		if cur == 0 && prev == 0 {
			continue
		}
		variation := EvolutionVariation(prev, cur)
		out = append(out, SiteEvolution{
			Site:         site,
			CurrentAvg:   round2(cur),
			PreviousAvg:  round2(prev),
			VariationPct: variation,
			Status:       EvolutionStatus(variation),
		})
	}
	return out
}

// windowAvg divides by the full window length, so periods missing from a
// short history count as zero.
func windowAvg(counts map[string]int, window []string) float64 {
	sum := 0
	for _, p := range window {
		sum += counts[p]
	}
	return float64(sum) / trendWindow
}

// EvolutionVariation is the percent change from prev to cur. A zero prior
// average with a non-zero current one counts as +100%.
func EvolutionVariation(prev float64, cur float64) float64 {
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return round2((cur - prev) / prev * 100)
}

// EvolutionStatus classifies a variation with a ±20% band.
func EvolutionStatus(variation float64) string {
	switch {
	case variation <= -evolutionThreshold:
		return EvolutionImproving
	case variation >= evolutionThreshold:
		return EvolutionDeteriorating
	default:
		return EvolutionStable
	}
}

func suggestActions(
	incidents []safety.Incident,
	alerts []TrendAlert,
	evolutions []SiteEvolution,
	bySite map[string]int,
	advisor Advisor,
) []SuggestedAction {
	type candidate struct {
		site   string
		reason string
	}
	var picks []candidate
	seen := make(map[string]bool)
	for _, e := range evolutions {
		if e.Status == EvolutionDeteriorating && !seen[e.Site] {
			seen[e.Site] = true
			picks = append(picks, candidate{site: e.Site, reason: "deteriorating"})
		}
	}
	for _, a := range alerts {
		if !seen[a.Site] {
			seen[a.Site] = true
			picks = append(picks, candidate{site: a.Site, reason: "trend_alert"})
		}
	}
	if len(picks) == 0 {
		for _, s := range topSites(bySite, 2) {
			picks = append(picks, candidate{site: s.Site, reason: "top_incidents"})
		}
	}

	out := make([]SuggestedAction, 0, len(picks))
	for _, c := range picks {
		var siteIncidents []safety.Incident
		for _, inc := range incidents {
			if siteKey(inc.Site) == c.site {
				siteIncidents = append(siteIncidents, inc)
			}
		}
		actions := []string{}
		if advisor != nil {
			if got := advisor(siteIncidents); got != nil {
				actions = got
			}
		}
		out = append(out, SuggestedAction{Site: c.site, Reason: c.reason, Actions: actions})
	}
	return out
}
