package safety

import "time"

// BodyZone is an anatomical zone label such as "shoulder_left" or "head".
type BodyZone string

// ZoneUnknown is the only zone assigned when a location matches no catalog rule.
const ZoneUnknown BodyZone = "unknown"

// Flags is the boolean safety classification of an incident.
type Flags struct {
	Recordable          bool `json:"recordable" yaml:"recordable"`
	LostTime            bool `json:"lost_time" yaml:"lost_time"`
	TransitLaboral      bool `json:"transit_laboral" yaml:"transit_laboral"`
	InItinere           bool `json:"in_itinere" yaml:"in_itinere"`
	Fatality            bool `json:"fatality" yaml:"fatality"`
	JobTransfer         bool `json:"job_transfer" yaml:"job_transfer"`
	ProcessSafetyTier1  bool `json:"pse_tier1" yaml:"pse_tier1"`
	ProcessSafetyTier2  bool `json:"pse_tier2" yaml:"pse_tier2"`
	ClientCommunication bool `json:"client_communication" yaml:"client_communication"`
}

// Incident is one workplace-safety incident keyed by IncidentID.
//
// Name, Description, Site, Type, Location, PotentialRisk and RawPayload are
// source fields owned by the spreadsheet export. EventDate, Year, Month,
// Flags, DaysAway, DaysRestricted and BodyZones are derived. Once IsVerified
// is true, only a manual edit may change derived fields.
type Incident struct {
	IncidentID    string
	Name          string
	Description   string
	Site          string
	Type          string
	Location      string
	PotentialRisk string
	RawPayload    map[string]string

	// EventDate is "YYYY-MM-DD" or empty when no date could be resolved.
	EventDate      string
	Year           int
	Month          int
	Flags          Flags
	DaysAway       int
	DaysRestricted int
	BodyZones      []BodyZone

	IsVerified bool
	UpdatedAt  time.Time
	ChangeLog  []ChangeLogEntry
}

// Actor attributes a change-log entry.
type Actor string

const (
	ActorImport Actor = "system/import"
	ActorManual Actor = "user/manual"
)

// FieldCreated is the change-log field used for the seed entry of a new record.
const FieldCreated = "record_created"

// ChangeLogEntry is one append-only audit entry.
type ChangeLogEntry struct {
	Date     time.Time `json:"date"`
	Field    string    `json:"field"`
	OldValue string    `json:"old_value"`
	NewValue string    `json:"new_value"`
	Actor    Actor     `json:"actor"`
}

// Period returns the "YYYY-MM" period of the event date, or "" when the
// date does not resolve to a valid year-month.
func (i Incident) Period() string {
	if len(i.EventDate) < 7 {
		return ""
	}
	p := i.EventDate[:7]
	if _, err := time.Parse("2006-01", p); err != nil {
		return ""
	}
	return p
}

// Clone returns a deep copy so callers can produce new snapshots without
// touching the previous one.
func (i Incident) Clone() Incident {
	out := i
	if i.RawPayload != nil {
		out.RawPayload = make(map[string]string, len(i.RawPayload))
		for k, v := range i.RawPayload {
			out.RawPayload[k] = v
		}
	}
	if i.BodyZones != nil {
		out.BodyZones = append([]BodyZone(nil), i.BodyZones...)
	}
	if i.ChangeLog != nil {
		out.ChangeLog = append([]ChangeLogEntry(nil), i.ChangeLog...)
	}
	return out
}

// CloneIncidents deep-copies a collection.
func CloneIncidents(in []Incident) []Incident {
	if in == nil {
		return nil
	}
	out := make([]Incident, len(in))
	for idx, item := range in {
		out[idx] = item.Clone()
	}
	return out
}
