package model

// KVEntry backs the key-value cache. ExpiresAt is empty for entries that
// never expire.
type KVEntry struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
	ExpiresAt string `gorm:"column:expires_at;type:text;not null;default:''"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
