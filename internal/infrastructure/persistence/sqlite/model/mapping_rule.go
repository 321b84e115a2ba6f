package model

import (
	"gorm.io/datatypes"

	"safetyops/internal/domain/safety"
)

type MappingRule struct {
	Type     string                           `gorm:"column:type;type:text;primaryKey"`
	Flags    datatypes.JSONType[safety.Flags] `gorm:"column:flags;type:text;not null"`
	Source   string                           `gorm:"column:source;type:text;not null"`
	Position int                              `gorm:"column:position;not null;default:0"`
}

func (MappingRule) TableName() string {
	return "mapping_rules"
}
