package model

type ExposureHour struct {
	Site       string  `gorm:"column:site;type:text;primaryKey"`
	Period     string  `gorm:"column:period;type:text;primaryKey"`
	ExposureID string  `gorm:"column:exposure_id;type:text;not null"`
	Hours      float64 `gorm:"column:hours;not null;default:0"`
	Source     string  `gorm:"column:source;type:text;not null"`
}

func (ExposureHour) TableName() string {
	return "exposure_hours"
}

type GlobalKm struct {
	Year int     `gorm:"column:year;primaryKey;autoIncrement:false"`
	Km   float64 `gorm:"column:km;not null;default:0"`
}

func (GlobalKm) TableName() string {
	return "global_km"
}
