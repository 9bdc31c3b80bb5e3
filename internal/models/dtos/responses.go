package dtos

import "time"

// APIResponse is the standard JSON envelope for every endpoint.
type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ResponseTime string `json:"response_time,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// BidResponse is the dispatch-facing view of a reservation.
type BidResponse struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Callsign      string    `json:"callsign"`
	DepartureICAO string    `json:"departure_icao"`
	ArrivalICAO   string    `json:"arrival_icao"`
	AircraftType  string    `json:"aircraft_type"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expires_at"`
	Replaced      bool      `json:"replaced,omitempty"`
}

// SessionResponse reflects the flight session state machine.
type SessionResponse struct {
	ID                   string  `json:"id"`
	Status               string  `json:"status"`
	AircraftRegistration string  `json:"aircraft_registration,omitempty"`
	DepartureICAO        string  `json:"departure_icao"`
	ArrivalICAO          string  `json:"arrival_icao"`
	Message              string  `json:"message,omitempty"`
	PirepID              *string `json:"pirep_id,omitempty"`
}

// PirepOutcome is returned to the pilot-facing UI and the review queue.
type PirepOutcome struct {
	PirepID     string `json:"pirep_id"`
	Status      string `json:"status"`
	IsDuplicate bool   `json:"is_duplicate"`
	Message     string `json:"message"`
}

// FleetItem is the maintenance-UI view of one aircraft.
type FleetItem struct {
	Registration    string     `json:"registration"`
	AircraftType    string     `json:"aircraft_type"`
	Name            string     `json:"name,omitempty"`
	CurrentLocation string     `json:"current_location"`
	Condition       float64    `json:"condition"`
	Status          string     `json:"status"`
	TotalHours      float64    `json:"total_hours"`
	FlightCount     int        `json:"flight_count"`
	LastService     *time.Time `json:"last_service,omitempty"`
	GroundedReason  string     `json:"grounded_reason,omitempty"`
	RepairCost      float64    `json:"repairCost"`
	IsGrounded      bool       `json:"isGrounded"`
}

// MaintenanceOverview is the fleet page header block.
type MaintenanceOverview struct {
	Fleet                []FleetItem `json:"fleet"`
	AirlineFunds         float64     `json:"airlineFunds"`
	RepairRatePerPercent float64     `json:"repairRatePerPercent"`
	GroundedThreshold    float64     `json:"groundedThreshold"`
}

// RepairResult describes a completed repair action.
type RepairResult struct {
	Registration  string  `json:"registration"`
	RepairType    string  `json:"repair_type"`
	ConditionFrom float64 `json:"condition_from"`
	ConditionTo   float64 `json:"condition_to"`
	Cost          float64 `json:"cost"`
	VaultBalance  float64 `json:"vault_balance"`
	Message       string  `json:"message"`
}

// SettlementResult summarizes the ledger effects of one approved report.
type SettlementResult struct {
	PirepID          string  `json:"pirep_id"`
	ConditionDelta   float64 `json:"condition_delta"`
	AircraftGrounded bool    `json:"aircraft_grounded"`
	Revenue          float64 `json:"revenue"`
	Expense          float64 `json:"expense"`
	NetProfit        float64 `json:"net_profit"`
	PilotBalance     float64 `json:"pilot_balance"`
	VaultBalance     float64 `json:"vault_balance"`
}
