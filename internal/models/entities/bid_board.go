package entities

import "time"

// BidBoardRow is the sqlx read model for the dispatch bid board.
type BidBoardRow struct {
	ID            string    `db:"id"`
	Callsign      string    `db:"callsign"`
	FlightNumber  string    `db:"flight_number"`
	DepartureICAO string    `db:"departure_icao"`
	ArrivalICAO   string    `db:"arrival_icao"`
	AircraftType  string    `db:"aircraft_type"`
	Status        string    `db:"status"`
	ExpiresAt     time.Time `db:"expires_at"`
	PilotCode     string    `db:"pilot_code"`
}
