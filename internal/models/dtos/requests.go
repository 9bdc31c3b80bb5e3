package dtos

// CreateBidRequest carries a dispatch flight spec, typically imported from an
// external planning service. Core treats it as opaque planning data.
type CreateBidRequest struct {
	FlightNumber  string `json:"flight_number"`
	Callsign      string `json:"callsign"`
	DepartureICAO string `json:"departure_icao"`
	ArrivalICAO   string `json:"arrival_icao"`
	DepartureName string `json:"departure_name"`
	ArrivalName   string `json:"arrival_name"`
	AircraftType  string `json:"aircraft_type"`
	Route         string `json:"route"`
	Pax           int    `json:"pax"`
	CargoKg       int    `json:"cargo_kg"`
	PlannedFuelKg int    `json:"planned_fuel_kg"`
	DistanceNm    int    `json:"distance_nm"`
	// Replace cancels an existing active bid instead of failing with DuplicateBid.
	Replace bool `json:"replace"`
}

// StartSessionRequest consumes a bid and opens a flight session.
type StartSessionRequest struct {
	BidID        string `json:"bid_id"`
	AcarsVersion string `json:"acars_version"`
}

// TelemetrySample is one periodic ACARS position report.
type TelemetrySample struct {
	SessionID  string   `json:"session_id"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	AltitudeFt *int     `json:"altitude_ft"`
	Phase      *string  `json:"phase"`
}

// LandingReport closes a session and triggers report creation.
type LandingReport struct {
	SessionID         string   `json:"session_id"`
	LandingRate       *float64 `json:"landing_rate"`
	FlightTimeSeconds int      `json:"flight_time_seconds"`
	FuelUsedKg        int      `json:"fuel_used_kg"`
	DistanceNm        int      `json:"distance_nm"`
	Pax               int      `json:"pax"`
	CargoKg           int      `json:"cargo_kg"`
}

// ManualPirepRequest files a report outside the telemetry pipeline. Exactly
// one proof artifact (tracker link or image reference) is required.
type ManualPirepRequest struct {
	FlightNumber      string   `json:"flight_number"`
	Callsign          string   `json:"callsign"`
	DepartureICAO     string   `json:"departure_icao"`
	ArrivalICAO       string   `json:"arrival_icao"`
	AircraftType      string   `json:"aircraft_type"`
	FlightTimeSeconds int      `json:"flight_time_seconds"`
	LandingRate       *float64 `json:"landing_rate"`
	TrackerLink       string   `json:"tracker_link"`
	ProofImage        string   `json:"proof_image"`
	Comments          string   `json:"comments"`
}

// ReviewRequest is a human decision on a Pending report.
type ReviewRequest struct {
	Decision string `json:"decision"` // "approved" or "rejected"
	Remarks  string `json:"remarks"`
}

// RepairRequest is an operator-triggered maintenance action.
type RepairRequest struct {
	Registration string `json:"registration"`
	RepairType   string `json:"repair_type"` // MINIMUM or FULL
}

// CreateAircraftRequest registers a new fleet aircraft.
type CreateAircraftRequest struct {
	Registration    string `json:"registration"`
	AircraftType    string `json:"aircraft_type"`
	Name            string `json:"name"`
	Livery          string `json:"livery"`
	CurrentLocation string `json:"current_location"`
}

// UpdateAircraftRequest mutates fleet administration fields.
type UpdateAircraftRequest struct {
	Registration    string  `json:"registration"`
	AircraftType    *string `json:"aircraft_type"`
	Name            *string `json:"name"`
	Livery          *string `json:"livery"`
	CurrentLocation *string `json:"current_location"`
	IsActive        *bool   `json:"is_active"`
}

// SetSettingRequest hot-reloads one maintenance config override.
type SetSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
