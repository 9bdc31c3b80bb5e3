package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"levant-va/operations/internal/constants"
)

type Bid struct {
	ID            string              `gorm:"column:id;primaryKey;type:uuid"`
	PilotID       string              `gorm:"column:pilot_id;type:uuid;index"`
	FlightNumber  string              `gorm:"column:flight_number"`
	Callsign      string              `gorm:"column:callsign"`
	DepartureICAO string              `gorm:"column:departure_icao"`
	ArrivalICAO   string              `gorm:"column:arrival_icao"`
	DepartureName string              `gorm:"column:departure_name"`
	ArrivalName   string              `gorm:"column:arrival_name"`
	AircraftType  string              `gorm:"column:aircraft_type"`
	Route         string              `gorm:"column:route"`
	Pax           int                 `gorm:"column:pax;default:0"`
	CargoKg       int                 `gorm:"column:cargo_kg;default:0"`
	PlannedFuelKg int                 `gorm:"column:planned_fuel_kg;default:0"`
	DistanceNm    int                 `gorm:"column:distance_nm;default:0"`
	Status        constants.BidStatus `gorm:"column:status;default:active;index"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	ExpiresAt     time.Time           `gorm:"column:expires_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Pilot Pilot `gorm:"foreignKey:PilotID"`
}

func (Bid) TableName() string {
	return "bids"
}

func (b *Bid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// ExpiredAt reports whether the bid TTL has elapsed at now. Expiration is a
// pure function of (now, expires_at); the sweep only refreshes list views.
func (b *Bid) ExpiredAt(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}
