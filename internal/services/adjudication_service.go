package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/config"
	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/db/repositories"
	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/metrics"
	"levant-va/operations/internal/models/dtos"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// AdjudicationService grades incoming reports. Automatic reports are graded
// against the landing-rate threshold; manual reports always queue for human
// review regardless of their data. Approval dispatches a settle event; the
// report stays Pending until the settlement transaction commits the flip.
type AdjudicationService struct {
	pireps     *repositories.PirepRepository
	fleet      *repositories.FleetRepository
	cfgSvc     *config.MaintenanceConfigService
	dispatcher SettleDispatcher
	metrics    *metrics.MetricsRegistry
}

func NewAdjudicationService(
	pireps *repositories.PirepRepository,
	fleet *repositories.FleetRepository,
	cfgSvc *config.MaintenanceConfigService,
	dispatcher SettleDispatcher,
	metricsReg *metrics.MetricsRegistry,
) *AdjudicationService {
	return &AdjudicationService{
		pireps:     pireps,
		fleet:      fleet,
		cfgSvc:     cfgSvc,
		dispatcher: dispatcher,
		metrics:    metricsReg,
	}
}

// Adjudicate validates, persists and grades one report. The pirep must not
// be persisted yet; structural failures reject the submission before any row
// is written. Duplicate same-day reports are flagged, never blocked.
func (s *AdjudicationService) Adjudicate(ctx context.Context, pirep *gormModels.Pirep) (*dtos.PirepOutcome, error) {
	if err := s.validate(pirep); err != nil {
		return nil, err
	}

	pirep.DepartureICAO = strings.ToUpper(pirep.DepartureICAO)
	pirep.ArrivalICAO = strings.ToUpper(pirep.ArrivalICAO)
	pirep.Approval = constants.PirepPending

	duplicate, err := s.flagDuplicate(ctx, pirep)
	if err != nil {
		return nil, err
	}
	pirep.IsDuplicate = duplicate

	if err := s.pireps.Create(ctx, pirep); err != nil {
		return nil, err
	}

	outcome, err := s.grade(ctx, pirep)
	if err != nil {
		return nil, err
	}
	if duplicate {
		outcome.Message = constants.MsgDuplicateWarning + " " + outcome.Message
	}

	logging.Info("Report adjudicated",
		"pirep_id", pirep.ID,
		"pilot_id", pirep.PilotID,
		"channel", pirep.Channel,
		"outcome", outcome.Status,
		"is_duplicate", duplicate,
	)
	return outcome, nil
}

func (s *AdjudicationService) validate(pirep *gormModels.Pirep) error {
	if !ValidStationCode(pirep.DepartureICAO) || !ValidStationCode(pirep.ArrivalICAO) {
		return pipeline.Validationf("departure and arrival must be 4-character ICAO codes")
	}
	if strings.TrimSpace(pirep.AircraftType) == "" {
		return pipeline.Validationf("aircraft type is required")
	}
	if pirep.FlightTimeSeconds <= 0 {
		return pipeline.Validationf("flight time must be positive")
	}
	if IsRestrictedWideBody(pirep.AircraftType) {
		return fmt.Errorf("%w: %s", pipeline.ErrFleetViolation, constants.MsgFleetViolationA380)
	}

	if pirep.Channel == constants.ChannelManual {
		hasLink := pirep.TrackerLink != nil && strings.TrimSpace(*pirep.TrackerLink) != ""
		hasImage := pirep.ProofImage != nil && strings.TrimSpace(*pirep.ProofImage) != ""
		if !hasLink && !hasImage {
			return fmt.Errorf("%w: %s", pipeline.ErrMissingProof, constants.MsgProofRequired)
		}
		if hasLink && !ValidTrackerLink(*pirep.TrackerLink) {
			return pipeline.Validationf("%s", constants.MsgTrackerLinkFormat)
		}
	}
	return nil
}

// flagDuplicate checks for an Approved or Pending report on the same station
// pair by the same pilot within the same UTC calendar day.
func (s *AdjudicationService) flagDuplicate(ctx context.Context, pirep *gormModels.Pirep) (bool, error) {
	submittedAt := pirep.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	dayStart := submittedAt.Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)
	return s.pireps.HasSameDayReport(ctx, pirep.PilotID, pirep.DepartureICAO, pirep.ArrivalICAO, dayStart, dayEnd)
}

// grade applies the channel-aware decision. The manual channel overrides any
// landing data: humans approve what humans filed.
func (s *AdjudicationService) grade(ctx context.Context, pirep *gormModels.Pirep) (*dtos.PirepOutcome, error) {
	cfg := s.cfgSvc.Current(ctx)
	channel := string(pirep.Channel)

	if pirep.Channel == constants.ChannelManual {
		s.metrics.PirepsAdjudicatedTotal.WithLabelValues("pending", channel).Inc()
		return s.outcome(pirep, constants.PirepPending, constants.MsgManualSubmitted), nil
	}

	// No landing data or a zeroed sensor reading cannot be trusted for an
	// automatic decision; hold for human review.
	if pirep.LandingRate == nil || *pirep.LandingRate == 0 {
		s.metrics.PirepsAdjudicatedTotal.WithLabelValues("pending", channel).Inc()
		return s.outcome(pirep, constants.PirepPending, constants.MsgHeldNoLandingData), nil
	}

	if *pirep.LandingRate <= cfg.AutoRejectLanding {
		if err := s.pireps.Decide(s.pireps.DB(ctx), pirep.ID, constants.PirepRejected, nil); err != nil {
			return nil, err
		}
		s.releaseAircraft(ctx, pirep.AircraftRegistration)
		s.metrics.PirepsAdjudicatedTotal.WithLabelValues("rejected", channel).Inc()
		return s.outcome(pirep, constants.PirepRejected, constants.MsgAutoRejected), nil
	}

	if err := s.dispatcher.Dispatch(ctx, &common.SettleEvent{PirepID: pirep.ID}); err != nil {
		// Report stays Pending; the review queue or a re-dispatch recovers it.
		logging.Error("Failed to dispatch settle event", "pirep_id", pirep.ID, "error", err)
		return nil, fmt.Errorf("failed to queue settlement: %w", err)
	}
	s.metrics.PirepsAdjudicatedTotal.WithLabelValues("approved", channel).Inc()
	return s.outcome(pirep, constants.PirepApproved, constants.MsgAutoApproved), nil
}

func (s *AdjudicationService) outcome(pirep *gormModels.Pirep, status constants.ApprovalStatus, msg string) *dtos.PirepOutcome {
	return &dtos.PirepOutcome{
		PirepID:     pirep.ID,
		Status:      status.String(),
		IsDuplicate: pirep.IsDuplicate,
		Message:     msg,
	}
}

// Review applies a human decision to a Pending report. Approval dispatches a
// settle event carrying the reviewer; rejection flips the report immediately.
// A terminal report fails with ErrInvalidTransition either way.
func (s *AdjudicationService) Review(ctx context.Context, reviewerID, pirepID string, req *dtos.ReviewRequest) (*dtos.PirepOutcome, error) {
	pirep, err := s.pireps.FindByID(ctx, pirepID)
	if err != nil {
		return nil, err
	}
	if pirep.Approval != constants.PirepPending {
		return nil, fmt.Errorf("%w: report already %s", pipeline.ErrInvalidTransition, pirep.Approval)
	}
	channel := string(pirep.Channel)

	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case "approved":
		event := &common.SettleEvent{PirepID: pirepID, ApprovedBy: reviewerID}
		if err := s.dispatcher.Dispatch(ctx, event); err != nil {
			return nil, fmt.Errorf("failed to queue settlement: %w", err)
		}
		s.metrics.PirepsAdjudicatedTotal.WithLabelValues("approved", channel).Inc()
		logging.Info("Report approved by reviewer", "pirep_id", pirepID, "reviewer_id", reviewerID)
		return s.outcome(pirep, constants.PirepApproved, "PIREP approved. Settlement has been queued."), nil

	case "rejected":
		updates := map[string]interface{}{"reviewed_by": reviewerID}
		if remarks := strings.TrimSpace(req.Remarks); remarks != "" {
			updates["comments"] = remarks
		}
		if err := s.pireps.Decide(s.pireps.DB(ctx), pirepID, constants.PirepRejected, updates); err != nil {
			return nil, err
		}
		s.releaseAircraft(ctx, pirep.AircraftRegistration)
		s.metrics.PirepsAdjudicatedTotal.WithLabelValues("rejected", channel).Inc()
		logging.Info("Report rejected by reviewer", "pirep_id", pirepID, "reviewer_id", reviewerID)
		return s.outcome(pirep, constants.PirepRejected, "PIREP rejected by staff."), nil

	default:
		return nil, pipeline.Validationf("decision must be approved or rejected")
	}
}

// releaseAircraft hands a rejected report's airframe back to the fleet.
// Approval releases through the settlement transaction; rejection has no
// ledger effects, so the InFlight -> Available flip happens here. A held
// report keeps its airframe InFlight until review resolves it, so a later
// approval can never release an aircraft another session has since booked.
func (s *AdjudicationService) releaseAircraft(ctx context.Context, registration *string) {
	if registration == nil || *registration == "" {
		return
	}
	err := s.fleet.SetStatus(s.pireps.DB(ctx), *registration, constants.AircraftInFlight, constants.AircraftAvailable)
	if err != nil && !errors.Is(err, pipeline.ErrInvalidTransition) {
		logging.Error("Aircraft release failed", "registration", *registration, "error", err)
	}
}

// PendingQueue lists reports awaiting human review, oldest first.
func (s *AdjudicationService) PendingQueue(ctx context.Context) ([]gormModels.Pirep, error) {
	return s.pireps.ListPending(ctx)
}
