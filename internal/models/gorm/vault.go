package gorm

import "time"

// Vault is the airline-wide funds balance. A single row (id = 1) is mutated
// only through atomic SQL increments, never read-modify-write.
type Vault struct {
	ID        int       `gorm:"column:id;primaryKey"`
	Balance   float64   `gorm:"column:balance;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Vault) TableName() string {
	return "airline_vault"
}
