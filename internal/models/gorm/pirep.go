package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"levant-va/operations/internal/constants"
)

type Pirep struct {
	ID        string  `gorm:"column:id;primaryKey;type:uuid"`
	SessionID *string `gorm:"column:session_id;type:uuid"`
	// BidID is nil for manual submissions, which bypass the bid pipeline.
	BidID         *string `gorm:"column:bid_id;type:uuid"`
	PilotID       string  `gorm:"column:pilot_id;type:uuid;index"`
	PilotName     string  `gorm:"column:pilot_name"`
	FlightNumber  string  `gorm:"column:flight_number"`
	Callsign      string  `gorm:"column:callsign"`
	DepartureICAO string  `gorm:"column:departure_icao;index"`
	ArrivalICAO   string  `gorm:"column:arrival_icao;index"`
	AircraftType  string  `gorm:"column:aircraft_type"`
	// Registration of the fleet aircraft flown; nil when none was booked.
	AircraftRegistration *string `gorm:"column:aircraft_registration"`
	FlightTimeSeconds    int     `gorm:"column:flight_time_seconds;default:0"`
	// LandingRate is fpm, signed; nil means the sensor reported nothing.
	LandingRate *float64 `gorm:"column:landing_rate"`
	FuelUsedKg  int      `gorm:"column:fuel_used_kg;default:0"`
	DistanceNm  int      `gorm:"column:distance_nm;default:0"`
	Pax         int      `gorm:"column:pax;default:0"`
	CargoKg     int      `gorm:"column:cargo_kg;default:0"`

	TrackerLink *string `gorm:"column:tracker_link"`
	ProofImage  *string `gorm:"column:proof_image"`
	Comments    *string `gorm:"column:comments"`

	Channel     constants.SubmissionChannel `gorm:"column:channel;default:automatic"`
	Approval    constants.ApprovalStatus    `gorm:"column:approval;default:pending;index"`
	IsDuplicate bool                        `gorm:"column:is_duplicate;default:false"`

	RevenuePassenger   float64 `gorm:"column:revenue_passenger;default:0"`
	RevenueCargo       float64 `gorm:"column:revenue_cargo;default:0"`
	ExpenseFuel        float64 `gorm:"column:expense_fuel;default:0"`
	ExpenseAirport     float64 `gorm:"column:expense_airport;default:0"`
	ExpensePilot       float64 `gorm:"column:expense_pilot;default:0"`
	ExpenseMaintenance float64 `gorm:"column:expense_maintenance;default:0"`
	NetProfit          float64 `gorm:"column:net_profit;default:0"`

	SubmittedAt time.Time  `gorm:"column:submitted_at;index"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	ReviewedBy  *string    `gorm:"column:reviewed_by;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Pirep) TableName() string {
	return "pireps"
}

func (p *Pirep) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = time.Now().UTC()
	}
	return nil
}

// FlightHours converts the recorded flight time to fractional hours.
func (p *Pirep) FlightHours() float64 {
	return float64(p.FlightTimeSeconds) / 3600.0
}
