package model

import "gorm.io/datatypes"

type Incident struct {
	IncidentID    string                                `gorm:"column:incident_id;type:text;primaryKey"`
	Name          string                                `gorm:"column:name;type:text;not null"`
	Description   string                                `gorm:"column:description;type:text;not null"`
	Site          string                                `gorm:"column:site;type:text;not null;index"`
	Type          string                                `gorm:"column:type;type:text;not null"`
	Location      string                                `gorm:"column:location;type:text;not null"`
	PotentialRisk string                                `gorm:"column:potential_risk;type:text;not null"`
	RawPayload    datatypes.JSONType[map[string]string] `gorm:"column:raw_payload;type:text"`

	EventDate           string                      `gorm:"column:event_date;type:text;not null;index"`
	Year                int                         `gorm:"column:year;not null;default:0"`
	Month               int                         `gorm:"column:month;not null;default:0"`
	Recordable          bool                        `gorm:"column:recordable;not null;default:0"`
	LostTime            bool                        `gorm:"column:lost_time;not null;default:0"`
	TransitLaboral      bool                        `gorm:"column:transit_laboral;not null;default:0"`
	InItinere           bool                        `gorm:"column:in_itinere;not null;default:0"`
	Fatality            bool                        `gorm:"column:fatality;not null;default:0"`
	JobTransfer         bool                        `gorm:"column:job_transfer;not null;default:0"`
	ProcessSafetyTier1  bool                        `gorm:"column:pse_tier1;not null;default:0"`
	ProcessSafetyTier2  bool                        `gorm:"column:pse_tier2;not null;default:0"`
	ClientCommunication bool                        `gorm:"column:client_communication;not null;default:0"`
	DaysAway            int                         `gorm:"column:days_away;not null;default:0"`
	DaysRestricted      int                         `gorm:"column:days_restricted;not null;default:0"`
	BodyZones           datatypes.JSONSlice[string] `gorm:"column:body_zones;type:text"`

	IsVerified bool   `gorm:"column:is_verified;not null;default:0;index"`
	UpdatedAt  string `gorm:"column:updated_at;type:text;not null"`
}

func (Incident) TableName() string {
	return "incidents"
}
