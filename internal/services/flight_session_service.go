package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"levant-va/operations/internal/config"
	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/db/repositories"
	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/models/dtos"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// FlightSessionService drives the session state machine fed by the ACARS
// client: booked -> in_flight -> completed -> reported, with abandoned as the
// idle-timeout exit. It consumes bids, books fleet aircraft and hands the
// landing report to adjudication.
type FlightSessionService struct {
	sessions     *repositories.SessionRepository
	fleet        *repositories.FleetRepository
	pilots       *repositories.PilotRepository
	bidService   *BidService
	adjudication *AdjudicationService
	cfgSvc       *config.MaintenanceConfigService
}

func NewFlightSessionService(
	sessions *repositories.SessionRepository,
	fleet *repositories.FleetRepository,
	pilots *repositories.PilotRepository,
	bidService *BidService,
	adjudication *AdjudicationService,
	cfgSvc *config.MaintenanceConfigService,
) *FlightSessionService {
	return &FlightSessionService{
		sessions:     sessions,
		fleet:        fleet,
		pilots:       pilots,
		bidService:   bidService,
		adjudication: adjudication,
		cfgSvc:       cfgSvc,
	}
}

// StartSession consumes the bid and opens a session in Booked. A fleet
// aircraft of the bid's type at the departure station is reserved when one is
// bookable; the flight proceeds without a fleet assignment otherwise.
func (s *FlightSessionService) StartSession(ctx context.Context, pilotID string, req *dtos.StartSessionRequest) (*dtos.SessionResponse, error) {
	bid, err := s.bidService.Consume(ctx, req.BidID)
	if err != nil {
		return nil, err
	}
	if bid.PilotID != pilotID {
		// Undo the claim: the bid belongs to someone else.
		if _, txErr := s.bidService.bids.Transition(ctx, bid.ID, constants.BidConsumed, constants.BidActive); txErr != nil {
			logging.Error("Failed to release wrongly consumed bid", "bid_id", bid.ID, "error", txErr)
		}
		return nil, pipeline.ErrNotFound
	}

	registration := s.bookAircraft(ctx, bid)

	session := &gormModels.FlightSession{
		BidID:                bid.ID,
		PilotID:              pilotID,
		AircraftRegistration: registration,
		Callsign:             bid.Callsign,
		DepartureICAO:        bid.DepartureICAO,
		ArrivalICAO:          bid.ArrivalICAO,
		AircraftType:         bid.AircraftType,
		Status:               constants.SessionBooked,
		StartedAt:            time.Now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	logging.Info("Flight session started",
		"session_id", session.ID,
		"bid_id", bid.ID,
		"pilot_id", pilotID,
		"aircraft", registration,
		"acars_version", req.AcarsVersion,
	)

	msg := "Session opened. Awaiting telemetry."
	if registration == "" {
		msg = "Session opened without a fleet aircraft; none available at departure."
	}
	return &dtos.SessionResponse{
		ID:                   session.ID,
		Status:               session.Status.String(),
		AircraftRegistration: registration,
		DepartureICAO:        session.DepartureICAO,
		ArrivalICAO:          session.ArrivalICAO,
		Message:              msg,
	}, nil
}

// bookAircraft walks bookable candidates at the departure station and claims
// the first whose Available -> Booked flip wins. Empty when none can be had.
func (s *FlightSessionService) bookAircraft(ctx context.Context, bid *gormModels.Bid) string {
	cfg := s.cfgSvc.Current(ctx)
	candidates, err := s.fleet.FindAvailable(ctx, bid.DepartureICAO, bid.AircraftType, cfg.GroundedThreshold)
	if err != nil {
		logging.Error("Fleet lookup failed", "departure", bid.DepartureICAO, "error", err)
		return ""
	}

	for _, candidate := range candidates {
		err := s.fleet.SetStatus(s.sessions.DB(ctx), candidate.Registration, constants.AircraftAvailable, constants.AircraftBooked)
		if err == nil {
			return candidate.Registration
		}
		if !errors.Is(err, pipeline.ErrInvalidTransition) {
			logging.Error("Aircraft booking failed", "registration", candidate.Registration, "error", err)
			return ""
		}
		// Lost to a concurrent booking; try the next candidate.
	}
	return ""
}

// OnTelemetry ingests one position sample. The first sample moves the session
// to InFlight; later samples only refresh the heartbeat. Samples for unknown
// or terminal sessions are dropped without error so the ACARS client never
// retries them.
func (s *FlightSessionService) OnTelemetry(ctx context.Context, sample *dtos.TelemetrySample) (dropped bool, err error) {
	session, err := s.sessions.FindByID(ctx, sample.SessionID)
	if errors.Is(err, pipeline.ErrNotFound) {
		logging.Warn("Telemetry for unknown session dropped", "session_id", sample.SessionID)
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if session.Status.Terminal() || session.Status == constants.SessionCompleted {
		logging.Warn("Telemetry for closed session dropped",
			"session_id", sample.SessionID, "status", session.Status)
		return true, nil
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{"last_telemetry_at": now}
	if sample.Latitude != nil {
		updates["last_latitude"] = *sample.Latitude
	}
	if sample.Longitude != nil {
		updates["last_longitude"] = *sample.Longitude
	}
	if sample.AltitudeFt != nil {
		updates["last_altitude_ft"] = *sample.AltitudeFt
	}
	if sample.Phase != nil {
		updates["last_phase"] = *sample.Phase
	}

	if session.Status == constants.SessionBooked {
		ok, err := s.sessions.Transition(ctx, session.ID, constants.SessionBooked, constants.SessionInFlight, updates)
		if err != nil {
			return false, err
		}
		if ok {
			if session.AircraftRegistration != "" {
				if err := s.fleet.SetStatus(s.sessions.DB(ctx), session.AircraftRegistration, constants.AircraftBooked, constants.AircraftInFlight); err != nil {
					logging.Warn("Aircraft InFlight flip skipped",
						"registration", session.AircraftRegistration, "error", err)
				}
			}
			return false, nil
		}
		// Another sample won the transition; fall through to a plain touch.
	}

	return false, s.sessions.Touch(ctx, session.ID, updates)
}

// OnLandingDetected closes the session and files the automatic report. The
// session moves InFlight -> Completed exactly once; a duplicate landing event
// fails with ErrInvalidTransition. Adjudication and the Completed -> Reported
// flip follow.
func (s *FlightSessionService) OnLandingDetected(ctx context.Context, report *dtos.LandingReport) (*dtos.SessionResponse, error) {
	session, err := s.sessions.FindByID(ctx, report.SessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"completed_at": now,
		"landing_rate": report.LandingRate,
	}
	ok, err := s.sessions.Transition(ctx, session.ID, constants.SessionInFlight, constants.SessionCompleted, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: session is %s, landing requires in_flight", pipeline.ErrInvalidTransition, session.Status)
	}

	pirep, err := s.buildAutomaticPirep(ctx, session, report)
	if err != nil {
		return nil, err
	}

	outcome, err := s.adjudication.Adjudicate(ctx, pirep)
	if err != nil {
		// Session stays Completed; the report can be refiled by staff.
		return nil, err
	}

	if _, err := s.sessions.Transition(ctx, session.ID, constants.SessionCompleted, constants.SessionReported, nil); err != nil {
		logging.Error("Session Reported flip failed", "session_id", session.ID, "error", err)
	}

	return &dtos.SessionResponse{
		ID:                   session.ID,
		Status:               constants.SessionReported.String(),
		AircraftRegistration: session.AircraftRegistration,
		DepartureICAO:        session.DepartureICAO,
		ArrivalICAO:          session.ArrivalICAO,
		Message:              outcome.Message,
		PirepID:              &outcome.PirepID,
	}, nil
}

// buildAutomaticPirep merges the landing report with the session and the
// consumed bid's planning data. Report figures win over planned ones.
func (s *FlightSessionService) buildAutomaticPirep(ctx context.Context, session *gormModels.FlightSession, report *dtos.LandingReport) (*gormModels.Pirep, error) {
	pilot, err := s.pilots.FindByID(ctx, session.PilotID)
	if err != nil {
		return nil, err
	}

	bid, err := s.bidService.bids.FindByID(ctx, session.BidID)
	if err != nil {
		return nil, err
	}

	pax := report.Pax
	if pax == 0 {
		pax = bid.Pax
	}
	cargo := report.CargoKg
	if cargo == 0 {
		cargo = bid.CargoKg
	}
	fuel := report.FuelUsedKg
	if fuel == 0 {
		fuel = bid.PlannedFuelKg
	}
	distance := report.DistanceNm
	if distance == 0 {
		distance = bid.DistanceNm
	}

	pirep := &gormModels.Pirep{
		SessionID:         &session.ID,
		BidID:             &session.BidID,
		PilotID:           session.PilotID,
		PilotName:         pilot.DisplayName(),
		FlightNumber:      bid.FlightNumber,
		Callsign:          session.Callsign,
		DepartureICAO:     session.DepartureICAO,
		ArrivalICAO:       session.ArrivalICAO,
		AircraftType:      session.AircraftType,
		FlightTimeSeconds: report.FlightTimeSeconds,
		LandingRate:       report.LandingRate,
		FuelUsedKg:        fuel,
		DistanceNm:        distance,
		Pax:               pax,
		CargoKg:           cargo,
		Channel:           constants.ChannelAutomatic,
	}
	if session.AircraftRegistration != "" {
		registration := session.AircraftRegistration
		pirep.AircraftRegistration = &registration
	}
	return pirep, nil
}

// OnManualSubmit files a report outside the telemetry pipeline. No bid or
// session is involved and no fleet aircraft is touched; the report always
// lands in the human review queue.
func (s *FlightSessionService) OnManualSubmit(ctx context.Context, pilotID string, req *dtos.ManualPirepRequest) (*dtos.PirepOutcome, error) {
	pilot, err := s.pilots.FindByID(ctx, pilotID)
	if err != nil {
		return nil, err
	}

	pirep := &gormModels.Pirep{
		PilotID:           pilotID,
		PilotName:         pilot.DisplayName(),
		FlightNumber:      req.FlightNumber,
		Callsign:          req.Callsign,
		DepartureICAO:     req.DepartureICAO,
		ArrivalICAO:       req.ArrivalICAO,
		AircraftType:      req.AircraftType,
		FlightTimeSeconds: req.FlightTimeSeconds,
		LandingRate:       req.LandingRate,
		Channel:           constants.ChannelManual,
	}
	if req.TrackerLink != "" {
		link := req.TrackerLink
		pirep.TrackerLink = &link
	}
	if req.ProofImage != "" {
		image := req.ProofImage
		pirep.ProofImage = &image
	}
	if req.Comments != "" {
		comments := req.Comments
		pirep.Comments = &comments
	}

	return s.adjudication.Adjudicate(ctx, pirep)
}

// AbandonIdle sweeps sessions with no telemetry inside the idle window,
// releasing any booked aircraft back to Available.
func (s *FlightSessionService) AbandonIdle(ctx context.Context) (int, error) {
	cfg := s.cfgSvc.Current(ctx)
	cutoff := time.Now().UTC().Add(-cfg.SessionIdleWindow)

	idle, err := s.sessions.ListIdle(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for _, session := range idle {
		ok, err := s.sessions.Transition(ctx, session.ID, session.Status, constants.SessionAbandoned, nil)
		if err != nil {
			logging.Error("Abandon transition failed", "session_id", session.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		abandoned++

		if session.AircraftRegistration != "" {
			from := constants.AircraftBooked
			if session.Status == constants.SessionInFlight {
				from = constants.AircraftInFlight
			}
			if err := s.fleet.SetStatus(s.sessions.DB(ctx), session.AircraftRegistration, from, constants.AircraftAvailable); err != nil {
				logging.Warn("Aircraft release skipped",
					"registration", session.AircraftRegistration, "error", err)
			}
		}
		logging.Info("Idle session abandoned", "session_id", session.ID, "pilot_id", session.PilotID)
	}
	return abandoned, nil
}
