package services

import (
	"context"
	"errors"
	"testing"

	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/models/dtos"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

func rate(v float64) *float64 { return &v }

func autoPirep(pilot *gormModels.Pilot, landingRate *float64) *gormModels.Pirep {
	return &gormModels.Pirep{
		PilotID:           pilot.ID,
		PilotName:         pilot.DisplayName(),
		FlightNumber:      "LV201",
		DepartureICAO:     "OLBA",
		ArrivalICAO:       "OJAI",
		AircraftType:      "B738",
		FlightTimeSeconds: 3600,
		LandingRate:       landingRate,
		Pax:               150,
		CargoKg:           2000,
		FuelUsedKg:        5000,
		Channel:           constants.ChannelAutomatic,
	}
}

// The rejection threshold is strict: a landing exactly at the configured
// rate rejects, one fpm softer approves.
func TestAdjudicate_GradingBoundary(t *testing.T) {
	cases := []struct {
		name        string
		landingRate float64
		want        constants.ApprovalStatus
	}{
		{"softer than threshold approves", -699, constants.PirepApproved},
		{"exactly threshold rejects", -700, constants.PirepRejected},
		{"harder than threshold rejects", -701, constants.PirepRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := setupEnv(t)
			ctx := context.Background()
			pilot := env.createPilot(t, "LV001")

			outcome, err := env.adjudication.Adjudicate(ctx, autoPirep(pilot, rate(tc.landingRate)))
			if err != nil {
				t.Fatalf("Adjudicate failed: %v", err)
			}
			if outcome.Status != tc.want.String() {
				t.Errorf("Expected %s, got %s", tc.want, outcome.Status)
			}

			stored, err := env.pirepRepo.FindByID(ctx, outcome.PirepID)
			if err != nil {
				t.Fatalf("Failed to load report: %v", err)
			}
			if stored.Approval != tc.want {
				t.Errorf("Stored approval %s, want %s", stored.Approval, tc.want)
			}
		})
	}
}

func TestAdjudicate_NoLandingDataHeldPending(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	for name, landingRate := range map[string]*float64{"nil": nil, "zero": rate(0)} {
		outcome, err := env.adjudication.Adjudicate(ctx, autoPirep(pilot, landingRate))
		if err != nil {
			t.Fatalf("%s: Adjudicate failed: %v", name, err)
		}
		if outcome.Status != constants.PirepPending.String() {
			t.Errorf("%s: expected pending hold, got %s", name, outcome.Status)
		}
	}
}

// Manual submissions never auto-decide, even with a landing rate past the
// rejection threshold.
func TestAdjudicate_ManualChannelOverride(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	pirep := autoPirep(pilot, rate(-900))
	pirep.Channel = constants.ChannelManual
	link := "https://tracker.ivao.aero/flights/12345"
	pirep.TrackerLink = &link

	outcome, err := env.adjudication.Adjudicate(ctx, pirep)
	if err != nil {
		t.Fatalf("Adjudicate failed: %v", err)
	}
	if outcome.Status != constants.PirepPending.String() {
		t.Errorf("Manual report must stay pending, got %s", outcome.Status)
	}
}

func TestAdjudicate_ManualProofRequired(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	pirep := autoPirep(pilot, rate(-300))
	pirep.Channel = constants.ChannelManual

	if _, err := env.adjudication.Adjudicate(ctx, pirep); !errors.Is(err, pipeline.ErrMissingProof) {
		t.Errorf("Expected ErrMissingProof, got %v", err)
	}

	badLink := "https://example.com/flight/1"
	pirep.TrackerLink = &badLink
	if _, err := env.adjudication.Adjudicate(ctx, pirep); !pipeline.IsValidation(err) {
		t.Errorf("Expected validation error for foreign tracker domain, got %v", err)
	}

	image := "uploads/landing.png"
	pirep.TrackerLink = nil
	pirep.ProofImage = &image
	if _, err := env.adjudication.Adjudicate(ctx, pirep); err != nil {
		t.Errorf("Screenshot alone should satisfy proof, got %v", err)
	}
}

func TestAdjudicate_RestrictedTypeRejectedBeforePersist(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	pirep := autoPirep(pilot, rate(-200))
	pirep.AircraftType = "A388"

	if _, err := env.adjudication.Adjudicate(ctx, pirep); !errors.Is(err, pipeline.ErrFleetViolation) {
		t.Fatalf("Expected ErrFleetViolation, got %v", err)
	}

	var count int64
	env.db.Model(&gormModels.Pirep{}).Count(&count)
	if count != 0 {
		t.Errorf("Rejected submission must not persist a row, found %d", count)
	}
}

// Same pilot, same station pair, same calendar day: flagged but not blocked.
func TestAdjudicate_SameDayDuplicateFlagged(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	first, err := env.adjudication.Adjudicate(ctx, autoPirep(pilot, rate(-150)))
	if err != nil {
		t.Fatalf("First report failed: %v", err)
	}
	if first.IsDuplicate {
		t.Errorf("First report of the day must not be flagged")
	}

	second := autoPirep(pilot, rate(-180))
	second.Channel = constants.ChannelManual
	link := "https://tracker.ivao.aero/flights/777"
	second.TrackerLink = &link

	outcome, err := env.adjudication.Adjudicate(ctx, second)
	if err != nil {
		t.Fatalf("Duplicate submission must not be blocked: %v", err)
	}
	if !outcome.IsDuplicate {
		t.Errorf("Second same-day report on the route must be flagged")
	}
	if outcome.Status != constants.PirepPending.String() {
		t.Errorf("Flagged manual report still goes to review, got %s", outcome.Status)
	}

	// A different route the same day is clean.
	third := autoPirep(pilot, rate(-150))
	third.ArrivalICAO = "OMDB"
	cleanOutcome, err := env.adjudication.Adjudicate(ctx, third)
	if err != nil {
		t.Fatalf("Third report failed: %v", err)
	}
	if cleanOutcome.IsDuplicate {
		t.Errorf("Different route must not be flagged")
	}
}

func TestReview_DecidesPendingExactlyOnce(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")
	reviewer := env.createPilot(t, "LV099")

	outcome, err := env.adjudication.Adjudicate(ctx, autoPirep(pilot, nil))
	if err != nil {
		t.Fatalf("Adjudicate failed: %v", err)
	}

	rejected, err := env.adjudication.Review(ctx, reviewer.ID, outcome.PirepID, &dtos.ReviewRequest{
		Decision: "rejected",
		Remarks:  "No landing data and no proof",
	})
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if rejected.Status != constants.PirepRejected.String() {
		t.Errorf("Expected rejected, got %s", rejected.Status)
	}

	stored, _ := env.pirepRepo.FindByID(ctx, outcome.PirepID)
	if stored.ReviewedBy == nil || *stored.ReviewedBy != reviewer.ID {
		t.Errorf("Reviewer must be recorded on the report")
	}

	// A second decision on a terminal report fails.
	_, err = env.adjudication.Review(ctx, reviewer.ID, outcome.PirepID, &dtos.ReviewRequest{Decision: "approved"})
	if !errors.Is(err, pipeline.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on re-review, got %v", err)
	}
}

// A held automatic report keeps its airframe InFlight until review; a
// rejection must hand it back since no settlement will.
func TestReview_RejectionReleasesHeldAircraft(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")
	reviewer := env.createPilot(t, "LV099")

	aircraft := env.createAircraft(t, "LV-ABA", "B738", "OLBA", 95)
	env.db.Model(&gormModels.Aircraft{}).Where("registration = ?", aircraft.Registration).
		Update("status", constants.AircraftInFlight)

	pirep := autoPirep(pilot, nil)
	pirep.AircraftRegistration = &aircraft.Registration
	outcome, err := env.adjudication.Adjudicate(ctx, pirep)
	if err != nil {
		t.Fatalf("Adjudicate failed: %v", err)
	}
	if outcome.Status != constants.PirepPending.String() {
		t.Fatalf("Report without landing data must hold, got %s", outcome.Status)
	}

	if _, err := env.adjudication.Review(ctx, reviewer.ID, outcome.PirepID, &dtos.ReviewRequest{
		Decision: "rejected",
		Remarks:  "No landing data",
	}); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	updated, _ := env.fleetRepo.FindByRegistration(ctx, aircraft.Registration)
	if updated.Status != constants.AircraftAvailable {
		t.Errorf("Aircraft status = %s, want Available after rejection", updated.Status)
	}
}

func TestReview_ApprovalSettles(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")
	reviewer := env.createPilot(t, "LV099")

	outcome, err := env.adjudication.Adjudicate(ctx, autoPirep(pilot, nil))
	if err != nil {
		t.Fatalf("Adjudicate failed: %v", err)
	}

	approved, err := env.adjudication.Review(ctx, reviewer.ID, outcome.PirepID, &dtos.ReviewRequest{Decision: "approved"})
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if approved.Status != constants.PirepApproved.String() {
		t.Errorf("Expected approved, got %s", approved.Status)
	}

	stored, _ := env.pirepRepo.FindByID(ctx, outcome.PirepID)
	if stored.Approval != constants.PirepApproved {
		t.Errorf("Report must be settled approved, got %s", stored.Approval)
	}
	if stored.NetProfit == 0 {
		t.Errorf("Settlement must record economics on the report")
	}
	if stored.ReviewedBy == nil || *stored.ReviewedBy != reviewer.ID {
		t.Errorf("Reviewer must be recorded by settlement")
	}
}
