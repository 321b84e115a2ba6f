package model

// IncidentChange is one append-only change-log entry. Seq orders entries
// within an incident starting at 0.
type IncidentChange struct {
	IncidentID string `gorm:"column:incident_id;type:text;primaryKey"`
	Seq        int    `gorm:"column:seq;primaryKey;autoIncrement:false"`
	Date       string `gorm:"column:date;type:text;not null"`
	Field      string `gorm:"column:field;type:text;not null"`
	OldValue   string `gorm:"column:old_value;type:text;not null"`
	NewValue   string `gorm:"column:new_value;type:text;not null"`
	Actor      string `gorm:"column:actor;type:text;not null"`
}

func (IncidentChange) TableName() string {
	return "incident_changes"
}
