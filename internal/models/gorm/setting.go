package gorm

import "time"

// Setting is a single airline_settings override row. Values are stored as
// strings and parsed by the maintenance config service.
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string {
	return "airline_settings"
}
