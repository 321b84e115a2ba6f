package reconcile

import (
	"fmt"

	"safetyops/internal/domain/safety"
)

// fieldClass decides how a field is treated on re-import.
type fieldClass int

const (
	// sourceField is always refreshed from the import.
	sourceField fieldClass = iota
	// derivedField is refreshed only while the record is unverified.
	derivedField
)

type field struct {
	name  string
	class fieldClass
	// audited fields produce change-log entries on import.
	audited bool
	get     func(*safety.Incident) any
	copy    func(dst *safety.Incident, src *safety.Incident)
}

// fields is the protection policy. Order is the order of change-log entries.
var fields = []field{
	{name: "name", class: sourceField, audited: true,
		get:  func(i *safety.Incident) any { return i.Name },
		copy: func(d, s *safety.Incident) { d.Name = s.Name }},
	{name: "description", class: sourceField, audited: true,
		get:  func(i *safety.Incident) any { return i.Description },
		copy: func(d, s *safety.Incident) { d.Description = s.Description }},
	{name: "type", class: sourceField, audited: true,
		get:  func(i *safety.Incident) any { return i.Type },
		copy: func(d, s *safety.Incident) { d.Type = s.Type }},
	{name: "site", class: sourceField, audited: true,
		get:  func(i *safety.Incident) any { return i.Site },
		copy: func(d, s *safety.Incident) { d.Site = s.Site }},
	{name: "event_date", class: derivedField, audited: true,
		get:  func(i *safety.Incident) any { return i.EventDate },
		copy: func(d, s *safety.Incident) { d.EventDate = s.EventDate }},
	{name: "recordable", class: derivedField, audited: true,
		get:  func(i *safety.Incident) any { return i.Flags.Recordable },
		copy: func(d, s *safety.Incident) { d.Flags.Recordable = s.Flags.Recordable }},
	{name: "lost_time", class: derivedField, audited: true,
		get:  func(i *safety.Incident) any { return i.Flags.LostTime },
		copy: func(d, s *safety.Incident) { d.Flags.LostTime = s.Flags.LostTime }},
	{name: "days_away", class: derivedField, audited: true,
		get:  func(i *safety.Incident) any { return i.DaysAway },
		copy: func(d, s *safety.Incident) { d.DaysAway = s.DaysAway }},
	{name: "transit_laboral", class: derivedField, audited: true,
		get:  func(i *safety.Incident) any { return i.Flags.TransitLaboral },
		copy: func(d, s *safety.Incident) { d.Flags.TransitLaboral = s.Flags.TransitLaboral }},
	{name: "location", class: sourceField, audited: true,
		get:  func(i *safety.Incident) any { return i.Location },
		copy: func(d, s *safety.Incident) { d.Location = s.Location }},

	{name: "potential_risk", class: sourceField,
		get:  func(i *safety.Incident) any { return i.PotentialRisk },
		copy: func(d, s *safety.Incident) { d.PotentialRisk = s.PotentialRisk }},
	{name: "raw_payload", class: sourceField,
		get:  func(i *safety.Incident) any { return i.RawPayload },
		copy: func(d, s *safety.Incident) { d.RawPayload = s.Clone().RawPayload }},
	{name: "year", class: derivedField,
		get:  func(i *safety.Incident) any { return i.Year },
		copy: func(d, s *safety.Incident) { d.Year = s.Year }},
	{name: "month", class: derivedField,
		get:  func(i *safety.Incident) any { return i.Month },
		copy: func(d, s *safety.Incident) { d.Month = s.Month }},
	{name: "in_itinere", class: derivedField,
		get:  func(i *safety.Incident) any { return i.Flags.InItinere },
		copy: func(d, s *safety.Incident) { d.Flags.InItinere = s.Flags.InItinere }},
	{name: "fatality", class: derivedField,
		get:  func(i *safety.Incident) any { return i.Flags.Fatality },
		copy: func(d, s *safety.Incident) { d.Flags.Fatality = s.Flags.Fatality }},
	{name: "job_transfer", class: derivedField,
		get:  func(i *safety.Incident) any { return i.Flags.JobTransfer },
		copy: func(d, s *safety.Incident) { d.Flags.JobTransfer = s.Flags.JobTransfer }},
	{name: "pse_tier1", class: derivedField,
		get:  func(i *safety.Incident) any { return i.Flags.ProcessSafetyTier1 },
		copy: func(d, s *safety.Incident) { d.Flags.ProcessSafetyTier1 = s.Flags.ProcessSafetyTier1 }},
	{name: "pse_tier2", class: derivedField,
		get:  func(i *safety.Incident) any { return i.Flags.ProcessSafetyTier2 },
		copy: func(d, s *safety.Incident) { d.Flags.ProcessSafetyTier2 = s.Flags.ProcessSafetyTier2 }},
	{name: "client_communication", class: derivedField,
		get:  func(i *safety.Incident) any { return i.Flags.ClientCommunication },
		copy: func(d, s *safety.Incident) { d.Flags.ClientCommunication = s.Flags.ClientCommunication }},
	{name: "days_restricted", class: derivedField,
		get:  func(i *safety.Incident) any { return i.DaysRestricted },
		copy: func(d, s *safety.Incident) { d.DaysRestricted = s.DaysRestricted }},
	{name: "body_zones", class: derivedField,
		get:  func(i *safety.Incident) any { return i.BodyZones },
		copy: func(d, s *safety.Incident) { d.BodyZones = s.Clone().BodyZones }},
}

func render(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []safety.BodyZone:
		out := make([]string, len(val))
		for i, z := range val {
			out[i] = string(z)
		}
		return fmt.Sprint(out)
	default:
		return fmt.Sprint(val)
	}
}
