package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Pilot struct {
	ID              string    `gorm:"column:id;primaryKey;type:uuid"`
	PilotCode       string    `gorm:"column:pilot_code;uniqueIndex"`
	FirstName       string    `gorm:"column:first_name"`
	LastName        string    `gorm:"column:last_name"`
	CustomCallsign  *string   `gorm:"column:custom_callsign"`
	Balance         float64   `gorm:"column:balance;default:0"`
	TotalHours      float64   `gorm:"column:total_hours;default:0"`
	CurrentLocation string    `gorm:"column:current_location"`
	IsAdmin         bool      `gorm:"column:is_admin;default:false"`
	IsActive        bool      `gorm:"column:is_active;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Pilot) TableName() string {
	return "pilots"
}

func (p *Pilot) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// DisplayName is the name shown on reports, falling back to the pilot code.
func (p *Pilot) DisplayName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" {
		return p.PilotCode
	}
	return name
}
