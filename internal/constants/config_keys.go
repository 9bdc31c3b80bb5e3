package constants

// Keys for airline_settings overrides. Anything not present in the table
// falls back to the env default.
const (
	CfgGroundedThreshold  = "grounded_threshold"
	CfgHysteresisMargin   = "hysteresis_margin"
	CfgRepairRatePerPct   = "repair_rate_per_percent"
	CfgAutoRejectLanding  = "auto_reject_landing_rate"
	CfgBidTTLHours        = "bid_ttl_hours"
	CfgSessionIdleMinutes = "session_idle_minutes"
	CfgFarePerPax         = "fare_per_pax"
	CfgCargoRatePerKg     = "cargo_rate_per_kg"
	CfgFuelPricePerKg     = "fuel_price_per_kg"
	CfgAirportFee         = "airport_fee"
	CfgPilotWagePerHour   = "pilot_wage_per_hour"
	CfgBaseDecayPerFlight = "base_decay_per_flight"
)

// CachePrefix values keep cache keys namespaced per concern.
const (
	CachePrefixSettings     = "settings:"
	CachePrefixFleetListing = "fleet:listing:"
)
