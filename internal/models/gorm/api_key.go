package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApiKey authenticates an ACARS tracking client. Minted by the operator tool,
// read through the sqlx keys repository on every request.
type ApiKey struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid"`
	ApiKey    string    `gorm:"column:api_key;uniqueIndex"`
	Label     string    `gorm:"column:label"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ApiKey) TableName() string {
	return "acars_api_keys"
}

func (k *ApiKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}
