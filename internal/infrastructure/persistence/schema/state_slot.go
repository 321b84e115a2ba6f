package schema

import (
	"time"

	"gorm.io/datatypes"

	"safetyops/internal/domain/safety"
)

// StateSlotKey is the key of the single storage slot.
const StateSlotKey = "safety-kpi-state"

// StateSlot holds the slot-level parts of the persisted state: its layout
// version, KPI settings and the opaque scheduling metadata.
type StateSlot struct {
	ID        uint                                  `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string                                `gorm:"column:key;type:text;uniqueIndex;not null"`
	Version   int                                   `gorm:"column:state_version;not null"`
	Settings  datatypes.JSONType[safety.Settings]   `gorm:"column:settings;type:text;not null"`
	Meta      datatypes.JSONType[map[string]string] `gorm:"column:meta;type:text;not null"`
	CreatedAt time.Time                             `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time                             `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (StateSlot) TableName() string {
	return "state_slot"
}
