package format

import (
	"fmt"
	"strings"

	"safetyops/internal/domain/kpi"
	"safetyops/internal/domain/safety"
)

// Metrics renders the rate summary followed by the site sections that have
// data.
func Metrics(m kpi.Metrics, mode Mode) string {
	var b strings.Builder

	rates := NewTable(mode)
	rates.SetTitle("Indicators")
	rates.Header("Indicator", "Value", "Basis")
	rates.Row("TRIR", Rate(m.Rates.TRIR), fmt.Sprintf("%d recordable", m.Counts.Recordable))
	rates.Row("LTIF", Rate(m.Rates.LTIF), fmt.Sprintf("%d lost time", m.Counts.LostTime))
	rates.Row("DART", Rate(m.Rates.DART), fmt.Sprintf("%d dart", m.Counts.DART))
	rates.Row("Severity", Rate(m.Rates.Severity), fmt.Sprintf("%d days", m.Counts.DaysLost))
	rates.Row("FAR", Rate(m.Rates.FAR), fmt.Sprintf("%d fatalities", m.Counts.Fatalities))
	rates.Row("PSE Tier 1", Rate(m.Rates.Tier1), fmt.Sprintf("%d events", m.Counts.Tier1))
	rates.Row("PSE Tier 2", Rate(m.Rates.Tier2), fmt.Sprintf("%d events", m.Counts.Tier2))
	rates.Row("IFAT", Rate(m.Rates.IFAT), fmt.Sprintf("%d transit / %s km", m.Counts.Transit, Number(m.TotalKm)))
	rates.Row("Incidence rate", Rate(m.Regulatory.IncidenceRate), fmt.Sprintf("headcount %s", Rate(m.Regulatory.AverageHeadcount)))
	rates.Footer("Hours", Number(m.TotalHours), fmt.Sprintf("%d incidents, %d unverified", m.Counts.Total, m.Counts.Unverified))
	rates.Columns(ColumnConfig{Number: 2, Align: AlignRight})
	b.WriteString(rates.String())
	b.WriteString("\n")

	if f := m.Forecast; f.LatestPeriod != "" {
		fc := NewTable(mode)
		fc.SetTitle(fmt.Sprintf("Forecast %d (x%s from %s)", f.Year, Rate(f.Multiplier), f.LatestPeriod))
		fc.Header("Measure", "To date", "Projected")
		fc.Row("Recordables", f.Recordables, f.ProjectedRecordables)
		fc.Row("Lost time", f.LostTime, f.ProjectedLostTime)
		fc.Row("Hours", Number(f.Hours), Number(f.ProjectedHours))
		fc.Footer("TRIR / LTIF", "", Rate(f.TRIR)+" / "+Rate(f.LTIF))
		b.WriteString("\n")
		b.WriteString(fc.String())
		b.WriteString("\n")
	}

	if len(m.Top5Sites) > 0 {
		top := NewTable(mode)
		top.SetTitle("Top sites")
		top.Header("Site", "Incidents")
		for _, s := range m.Top5Sites {
			top.Row(s.Site, s.Count)
		}
		b.WriteString("\n")
		b.WriteString(top.String())
		b.WriteString("\n")
	}

	if len(m.DaysSinceList) > 0 {
		ds := NewTable(mode)
		ds.SetTitle("Days since last incident")
		ds.Header("Site", "Last incident", "Days")
		for _, d := range m.DaysSinceList {
			ds.Row(d.Site, d.LastIncident, d.Days)
		}
		b.WriteString("\n")
		b.WriteString(ds.String())
		b.WriteString("\n")
	}

	if len(m.TrendAlerts) > 0 {
		ta := NewTable(mode)
		ta.SetTitle("Rising trends")
		ta.Header("Site", "Periods", "Counts")
		for _, a := range m.TrendAlerts {
			counts := make([]string, len(a.Counts))
			for i, c := range a.Counts {
				counts[i] = fmt.Sprint(c)
			}
			ta.Row(a.Site, strings.Join(a.Periods, ", "), strings.Join(counts, " → "))
		}
		b.WriteString("\n")
		b.WriteString(ta.String())
		b.WriteString("\n")
	}

	if len(m.SiteEvolutions) > 0 {
		ev := NewTable(mode)
		ev.SetTitle("Site evolution")
		ev.Header("Site", "Previous avg", "Current avg", "Variation %", "Status")
		for _, e := range m.SiteEvolutions {
			ev.Row(e.Site, Rate(e.PreviousAvg), Rate(e.CurrentAvg), Rate(e.VariationPct), e.Status)
		}
		b.WriteString("\n")
		b.WriteString(ev.String())
		b.WriteString("\n")
	}

	if len(m.SuggestedActions) > 0 {
		sa := NewTable(mode)
		sa.SetTitle("Suggested actions")
		sa.Header("Site", "Reason", "Controls")
		sa.Columns(ColumnConfig{Number: 3, MaxWidth: 80})
		for _, a := range m.SuggestedActions {
			sa.Row(a.Site, a.Reason, strings.Join(a.Actions, "; "))
		}
		b.WriteString("\n")
		b.WriteString(sa.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Incidents renders one row per incident.
func Incidents(items []safety.Incident, mode Mode) string {
	t := NewTable(mode)
	t.Header("ID", "Date", "Site", "Type", "Rec", "LTI", "Verified")
	t.Columns(ColumnConfig{Number: 4, MaxWidth: 40})
	for _, inc := range items {
		t.Row(inc.IncidentID, inc.EventDate, inc.Site, Truncate(inc.Type, 40),
			BoolMark(inc.Flags.Recordable), BoolMark(inc.Flags.LostTime), BoolMark(inc.IsVerified))
	}
	t.Footer("", "", "", fmt.Sprintf("%d incidents", len(items)), "", "", "")
	return t.String()
}

// Incident renders the fields of one incident and its change log.
func Incident(inc safety.Incident, mode Mode) string {
	t := NewTable(mode)
	t.SetTitle(inc.IncidentID)
	t.Header("Field", "Value")
	t.Columns(ColumnConfig{Number: 2, MaxWidth: 80})
	t.Row("Name", inc.Name)
	t.Row("Site", inc.Site)
	t.Row("Type", inc.Type)
	t.Row("Event date", inc.EventDate)
	t.Row("Location", inc.Location)
	t.Row("Body zones", joinZones(inc.BodyZones))
	t.Row("Potential risk", inc.PotentialRisk)
	t.Row("Description", inc.Description)
	t.Row("Days away / restricted", fmt.Sprintf("%d / %d", inc.DaysAway, inc.DaysRestricted))
	t.Row("Flags", flagList(inc.Flags))
	t.Row("Verified", BoolMark(inc.IsVerified))

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	if len(inc.ChangeLog) == 0 {
		return b.String()
	}

	log := NewTable(mode)
	log.SetTitle("Change log")
	log.Header("Date", "Field", "Old", "New", "Actor")
	for _, e := range inc.ChangeLog {
		log.Row(e.Date.Format("2006-01-02 15:04"), e.Field, Truncate(e.OldValue, 30), Truncate(e.NewValue, 30), string(e.Actor))
	}
	b.WriteString("\n")
	b.WriteString(log.String())
	b.WriteString("\n")
	return b.String()
}

// Exposure renders hours records and fleet km.
func Exposure(hours []safety.ExposureHour, km []safety.GlobalKmRecord, mode Mode) string {
	var b strings.Builder

	t := NewTable(mode)
	t.SetTitle("Exposure hours")
	t.Header("Site", "Period", "Hours", "Source")
	t.Columns(ColumnConfig{Number: 3, Align: AlignRight})
	total := 0.0
	for _, e := range hours {
		t.Row(e.Site, e.Period, Number(e.Hours), string(e.Source))
		total += e.Hours
	}
	t.Footer("", "", Number(total), "")
	b.WriteString(t.String())
	b.WriteString("\n")

	if len(km) > 0 {
		k := NewTable(mode)
		k.SetTitle("Fleet km")
		k.Header("Year", "Km")
		k.Columns(ColumnConfig{Number: 2, Align: AlignRight})
		for _, r := range km {
			k.Row(r.Year, Number(r.Km))
		}
		b.WriteString("\n")
		b.WriteString(k.String())
		b.WriteString("\n")
	}
	return b.String()
}

func joinZones(zones []safety.BodyZone) string {
	out := make([]string, len(zones))
	for i, z := range zones {
		out[i] = string(z)
	}
	return strings.Join(out, ", ")
}

func flagList(f safety.Flags) string {
	var out []string
	add := func(on bool, name string) {
		if on {
			out = append(out, name)
		}
	}
	add(f.Recordable, "recordable")
	add(f.LostTime, "lost_time")
	add(f.TransitLaboral, "transit")
	add(f.InItinere, "in_itinere")
	add(f.Fatality, "fatality")
	add(f.JobTransfer, "job_transfer")
	add(f.ProcessSafetyTier1, "pse_tier1")
	add(f.ProcessSafetyTier2, "pse_tier2")
	add(f.ClientCommunication, "client_communication")
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}
