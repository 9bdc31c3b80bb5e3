package entities

import "time"

type ApiKey struct {
	ID        string    `db:"id"`
	ApiKey    string    `db:"api_key"`
	Label     string    `db:"label"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

type ApiKeyStatus struct {
	ApiKey   string `db:"api_key"`
	IsActive bool   `db:"is_active"`
}
