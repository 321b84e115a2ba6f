package safety

// StateVersion identifies the layout of the persisted storage slot.
const StateVersion = 1

// RuleSource tells whether a mapping rule was discovered on import or
// curated by a human.
type RuleSource string

const (
	RuleAuto   RuleSource = "auto"
	RuleManual RuleSource = "manual"
)

// MappingRule maps a normalized incident-type label to a default flag set.
// It is a fallback hint used when the ordered classifier does not match.
type MappingRule struct {
	Type   string     `yaml:"type"`
	Flags  Flags      `yaml:"flags"`
	Source RuleSource `yaml:"source"`
}

// Settings tunes the KPI engine.
type Settings struct {
	// SeverityDaysCap caps per-incident lost days before the severity sum.
	SeverityDaysCap int `json:"severity_days_cap"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{SeverityDaysCap: 180}
}

// State is the whole persisted bag. Meta carries report and sync scheduling
// metadata that this module stores but never interprets.
type State struct {
	Version       int
	Incidents     []Incident
	ExposureHours []ExposureHour
	GlobalKm      []GlobalKmRecord
	Settings      Settings
	MappingRules  []MappingRule
	Meta          map[string]string
}
