package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"levant-va/operations/internal/config"
	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/db/repositories"
	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/metrics"
	"levant-va/operations/internal/models/dtos"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// BidService owns the bid lifecycle: creation with the single-active-bid
// guarantee, lazy expiry on every read, and the consume handshake the flight
// session state machine relies on.
type BidService struct {
	bids    *repositories.BidRepository
	pilots  *repositories.PilotRepository
	cfgSvc  *config.MaintenanceConfigService
	metrics *metrics.MetricsRegistry
}

func NewBidService(
	bids *repositories.BidRepository,
	pilots *repositories.PilotRepository,
	cfgSvc *config.MaintenanceConfigService,
	metricsReg *metrics.MetricsRegistry,
) *BidService {
	return &BidService{bids: bids, pilots: pilots, cfgSvc: cfgSvc, metrics: metricsReg}
}

// CreateBid validates the flight spec, screens the aircraft type against
// fleet rules and reserves the route for the pilot. A second active bid is
// rejected with ErrDuplicateBid unless req.Replace cancels the first.
func (s *BidService) CreateBid(ctx context.Context, pilotID string, req *dtos.CreateBidRequest) (*dtos.BidResponse, error) {
	departure := strings.ToUpper(strings.TrimSpace(req.DepartureICAO))
	arrival := strings.ToUpper(strings.TrimSpace(req.ArrivalICAO))

	if !ValidStationCode(departure) || !ValidStationCode(arrival) {
		return nil, pipeline.Validationf("departure and arrival must be 4-character ICAO codes")
	}
	if departure == arrival {
		return nil, pipeline.Validationf("departure and arrival cannot be the same station")
	}
	if strings.TrimSpace(req.AircraftType) == "" {
		return nil, pipeline.Validationf("aircraft type is required")
	}
	if IsRestrictedWideBody(req.AircraftType) {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrFleetViolation, constants.MsgFleetViolationA380)
	}
	if IsVFRExcluded(req.AircraftType) {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrFleetViolation, constants.MsgFleetViolationVFR)
	}

	pilot, err := s.pilots.FindByID(ctx, pilotID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	replaced, err := s.resolveExisting(ctx, pilotID, req.Replace, now)
	if err != nil {
		return nil, err
	}

	callsign := strings.TrimSpace(req.Callsign)
	if callsign == "" {
		if pilot.CustomCallsign != nil && *pilot.CustomCallsign != "" {
			callsign = *pilot.CustomCallsign
		} else {
			callsign = pilot.PilotCode
		}
	}

	cfg := s.cfgSvc.Current(ctx)
	bid := &gormModels.Bid{
		PilotID:       pilotID,
		FlightNumber:  strings.ToUpper(strings.TrimSpace(req.FlightNumber)),
		Callsign:      callsign,
		DepartureICAO: departure,
		ArrivalICAO:   arrival,
		DepartureName: req.DepartureName,
		ArrivalName:   req.ArrivalName,
		AircraftType:  strings.ToUpper(strings.TrimSpace(req.AircraftType)),
		Route:         req.Route,
		Pax:           req.Pax,
		CargoKg:       req.CargoKg,
		PlannedFuelKg: req.PlannedFuelKg,
		DistanceNm:    req.DistanceNm,
		Status:        constants.BidActive,
		ExpiresAt:     now.Add(cfg.BidTTL),
	}

	if err := s.bids.Create(ctx, bid); err != nil {
		return nil, err
	}

	s.metrics.BidsCreatedTotal.Inc()
	logging.Info("Bid created",
		"bid_id", bid.ID,
		"pilot_id", pilotID,
		"route", departure+"-"+arrival,
		"aircraft_type", bid.AircraftType,
		"expires_at", bid.ExpiresAt,
	)

	return &dtos.BidResponse{
		ID:            bid.ID,
		FlightNumber:  bid.FlightNumber,
		Callsign:      bid.Callsign,
		DepartureICAO: bid.DepartureICAO,
		ArrivalICAO:   bid.ArrivalICAO,
		AircraftType:  bid.AircraftType,
		Status:        bid.Status.String(),
		ExpiresAt:     bid.ExpiresAt,
		Replaced:      replaced,
	}, nil
}

// resolveExisting handles a pre-existing active bid: lazily expires it when
// past TTL, cancels it when replace is set, otherwise fails fast. The partial
// unique index remains the authority if a concurrent create slips through.
func (s *BidService) resolveExisting(ctx context.Context, pilotID string, replace bool, now time.Time) (bool, error) {
	existing, err := s.bids.FindActiveByPilot(ctx, pilotID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if existing.ExpiredAt(now) {
		if _, err := s.bids.Transition(ctx, existing.ID, constants.BidActive, constants.BidExpired); err != nil {
			return false, err
		}
		s.metrics.BidsExpiredTotal.Inc()
		return false, nil
	}

	if !replace {
		return false, pipeline.ErrDuplicateBid
	}
	ok, err := s.bids.Transition(ctx, existing.ID, constants.BidActive, constants.BidCancelled)
	if err != nil {
		return false, err
	}
	if !ok {
		// Lost the race to a concurrent consume; the new create will hit
		// the unique index only if yet another bid was opened meanwhile.
		return false, nil
	}
	logging.Info("Bid replaced", "bid_id", existing.ID, "pilot_id", pilotID)
	return true, nil
}

// ActiveBid returns the pilot's current active bid, expiring it lazily when
// the TTL elapsed. nil means the pilot holds no reservation.
func (s *BidService) ActiveBid(ctx context.Context, pilotID string) (*gormModels.Bid, error) {
	bid, err := s.bids.FindActiveByPilot(ctx, pilotID)
	if err != nil || bid == nil {
		return nil, err
	}
	if bid.ExpiredAt(time.Now().UTC()) {
		if _, err := s.bids.Transition(ctx, bid.ID, constants.BidActive, constants.BidExpired); err != nil {
			return nil, err
		}
		s.metrics.BidsExpiredTotal.Inc()
		return nil, nil
	}
	return bid, nil
}

// CancelBid cancels the pilot's own active bid. Cancelling an already
// cancelled bid is a no-op; consumed and expired bids cannot be cancelled.
func (s *BidService) CancelBid(ctx context.Context, pilotID, bidID string, isAdmin bool) error {
	bid, err := s.bids.FindByID(ctx, bidID)
	if err != nil {
		return err
	}
	if bid.PilotID != pilotID && !isAdmin {
		return pipeline.ErrNotFound
	}

	switch bid.Status {
	case constants.BidCancelled:
		return nil // idempotent
	case constants.BidConsumed:
		return fmt.Errorf("%w: bid already consumed by a flight session", pipeline.ErrInvalidTransition)
	case constants.BidExpired:
		return pipeline.ErrExpired
	}

	if bid.ExpiredAt(time.Now().UTC()) {
		if _, err := s.bids.Transition(ctx, bidID, constants.BidActive, constants.BidExpired); err != nil {
			return err
		}
		s.metrics.BidsExpiredTotal.Inc()
		return pipeline.ErrExpired
	}

	ok, err := s.bids.Transition(ctx, bidID, constants.BidActive, constants.BidCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return pipeline.ErrInvalidTransition
	}
	logging.Info("Bid cancelled", "bid_id", bidID, "pilot_id", pilotID)
	return nil
}

// Consume atomically claims an active bid for a flight session. Exactly one
// caller wins; the TTL is re-checked at consume time so an expired bid can
// never start a flight.
func (s *BidService) Consume(ctx context.Context, bidID string) (*gormModels.Bid, error) {
	bid, err := s.bids.FindByID(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if bid.Status == constants.BidActive && bid.ExpiredAt(time.Now().UTC()) {
		if _, err := s.bids.Transition(ctx, bidID, constants.BidActive, constants.BidExpired); err != nil {
			return nil, err
		}
		s.metrics.BidsExpiredTotal.Inc()
		return nil, pipeline.ErrExpired
	}

	ok, err := s.bids.Transition(ctx, bidID, constants.BidActive, constants.BidConsumed)
	if err != nil {
		return nil, err
	}
	if ok {
		bid.Status = constants.BidConsumed
		return bid, nil
	}

	// Lost the conditional update; report why.
	current, err := s.bids.FindByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	switch current.Status {
	case constants.BidConsumed:
		return nil, pipeline.ErrAlreadyConsumed
	case constants.BidExpired:
		return nil, pipeline.ErrExpired
	default:
		return nil, pipeline.ErrInvalidTransition
	}
}

// ReapExpired sweeps active bids past TTL. Run periodically; correctness
// never depends on it because every read path re-checks expiry.
func (s *BidService) ReapExpired(ctx context.Context) (int64, error) {
	reaped, err := s.bids.ExpireDue(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if reaped > 0 {
		s.metrics.BidsExpiredTotal.Add(float64(reaped))
		logging.Info("Expired bids reaped", "count", reaped)
	}
	return reaped, nil
}
