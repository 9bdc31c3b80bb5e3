package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"levant-va/operations/internal/constants"
)

type FlightSession struct {
	ID                   string                  `gorm:"column:id;primaryKey;type:uuid"`
	BidID                string                  `gorm:"column:bid_id;type:uuid;index"`
	PilotID              string                  `gorm:"column:pilot_id;type:uuid;index"`
	AircraftRegistration string                  `gorm:"column:aircraft_registration"`
	Callsign             string                  `gorm:"column:callsign"`
	DepartureICAO        string                  `gorm:"column:departure_icao"`
	ArrivalICAO          string                  `gorm:"column:arrival_icao"`
	AircraftType         string                  `gorm:"column:aircraft_type"`
	Status               constants.SessionStatus `gorm:"column:status;default:booked;index"`
	StartedAt            time.Time               `gorm:"column:started_at"`
	LastTelemetryAt      *time.Time              `gorm:"column:last_telemetry_at"`
	CompletedAt          *time.Time              `gorm:"column:completed_at"`
	LandingRate          *float64                `gorm:"column:landing_rate"`
	LastLatitude         *float64                `gorm:"column:last_latitude"`
	LastLongitude        *float64                `gorm:"column:last_longitude"`
	LastAltitudeFt       *int                    `gorm:"column:last_altitude_ft"`
	LastPhase            *string                 `gorm:"column:last_phase"`
	CreatedAt            time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (FlightSession) TableName() string {
	return "flight_sessions"
}

func (s *FlightSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
