package constants

// Raw read-side queries executed through sqlx. The transactional core goes
// through GORM; these back the dispatch and maintenance list views.
const (
	GetFleetListing = `
	SELECT registration, aircraft_type, name, current_location, condition,
	       status, total_hours, flight_count, last_service, grounded_reason
	FROM fleet_aircraft
	WHERE is_active = TRUE
	ORDER BY registration ASC
	`

	GetActiveBidBoard = `
	SELECT b.id, b.callsign, b.flight_number, b.departure_icao, b.arrival_icao,
	       b.aircraft_type, b.status, b.expires_at, p.pilot_code
	FROM bids b
	JOIN pilots p ON p.id = b.pilot_id
	WHERE b.status = 'active'
	ORDER BY b.created_at DESC
	`

	GetVaultBalance = `
	SELECT balance FROM airline_vault WHERE id = 1
	`

	GetApiKeyStatus = `
	SELECT api_key, is_active FROM acars_api_keys WHERE api_key = $1
	`

	InsertApiKey = `
	INSERT INTO acars_api_keys (api_key, label, is_active)
	VALUES ($1, $2, TRUE)
	RETURNING id, created_at
	`
)
