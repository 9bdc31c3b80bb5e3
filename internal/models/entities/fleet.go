package entities

import "time"

// FleetRow is the sqlx read model behind the maintenance list view.
type FleetRow struct {
	Registration    string     `db:"registration"`
	AircraftType    string     `db:"aircraft_type"`
	Name            *string    `db:"name"`
	CurrentLocation string     `db:"current_location"`
	Condition       float64    `db:"condition"`
	Status          string     `db:"status"`
	TotalHours      float64    `db:"total_hours"`
	FlightCount     int        `db:"flight_count"`
	LastService     *time.Time `db:"last_service"`
	GroundedReason  *string    `db:"grounded_reason"`
}
