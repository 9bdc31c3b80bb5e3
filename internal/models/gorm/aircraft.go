package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"levant-va/operations/internal/constants"
)

type Aircraft struct {
	ID              string                   `gorm:"column:id;primaryKey;type:uuid"`
	Registration    string                   `gorm:"column:registration;uniqueIndex"`
	AircraftType    string                   `gorm:"column:aircraft_type;index"`
	Name            *string                  `gorm:"column:name"`
	Livery          *string                  `gorm:"column:livery"`
	HomeLocation    string                   `gorm:"column:home_location"`
	CurrentLocation string                   `gorm:"column:current_location;index"`
	Condition       float64                  `gorm:"column:condition;default:100"`
	Status          constants.AircraftStatus `gorm:"column:status;default:Available"`
	TotalHours      float64                  `gorm:"column:total_hours;default:0"`
	FlightCount     int                      `gorm:"column:flight_count;default:0"`
	LastService     *time.Time               `gorm:"column:last_service"`
	GroundedReason  *string                  `gorm:"column:grounded_reason"`
	IsActive        bool                     `gorm:"column:is_active;default:true"`
	// Version guards condition/status against concurrent settlements.
	Version   int64     `gorm:"column:version;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Aircraft) TableName() string {
	return "fleet_aircraft"
}

func (a *Aircraft) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
