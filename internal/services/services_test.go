package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/config"
	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/db/repositories"
	"levant-va/operations/internal/metrics"
	"levant-va/operations/internal/models/dtos"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// Prometheus collectors register globally; build the registry once per test
// binary.
var (
	testMetricsOnce sync.Once
	testMetrics     *metrics.MetricsRegistry
)

func metricsForTest() *metrics.MetricsRegistry {
	testMetricsOnce.Do(func() {
		testMetrics = metrics.NewMetricsRegistry()
	})
	return testMetrics
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&gormModels.Pilot{},
		&gormModels.Aircraft{},
		&gormModels.Bid{},
		&gormModels.FlightSession{},
		&gormModels.Pirep{},
		&gormModels.Vault{},
		&gormModels.Setting{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := repositories.EnsureActiveIndex(db); err != nil {
		t.Fatalf("Failed to create bid index: %v", err)
	}
	if err := db.Create(&gormModels.Vault{ID: 1, Balance: 0}).Error; err != nil {
		t.Fatalf("Failed to seed vault: %v", err)
	}
	return db
}

// testEnv wires the full service stack over sqlite with the inline settle
// dispatcher, so approvals settle synchronously inside tests.
type testEnv struct {
	db *gorm.DB

	fleetRepo   *repositories.FleetRepository
	bidRepo     *repositories.BidRepository
	sessionRepo *repositories.SessionRepository
	pirepRepo   *repositories.PirepRepository
	pilotRepo   *repositories.PilotRepository
	vaultRepo   *repositories.VaultRepository

	cfgSvc       *config.MaintenanceConfigService
	bids         *BidService
	sessions     *FlightSessionService
	adjudication *AdjudicationService
	ledger       *LedgerService
	fleet        *FleetService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	reg := metricsForTest()

	env := &testEnv{
		db:          db,
		fleetRepo:   repositories.NewFleetRepository(db),
		bidRepo:     repositories.NewBidRepository(db),
		sessionRepo: repositories.NewSessionRepository(db),
		pirepRepo:   repositories.NewPirepRepository(db),
		pilotRepo:   repositories.NewPilotRepository(db),
		vaultRepo:   repositories.NewVaultRepository(db),
	}

	cache := common.NewCacheService(300, 600)
	env.cfgSvc = config.NewMaintenanceConfigService(db, cache)

	env.bids = NewBidService(env.bidRepo, env.pilotRepo, env.cfgSvc, reg)
	env.ledger = NewLedgerService(db, env.fleetRepo, env.pilotRepo, env.vaultRepo, env.pirepRepo, env.cfgSvc, reg)
	dispatcher := NewInlineSettleDispatcher(env.ledger)
	env.adjudication = NewAdjudicationService(env.pirepRepo, env.fleetRepo, env.cfgSvc, dispatcher, reg)
	env.sessions = NewFlightSessionService(env.sessionRepo, env.fleetRepo, env.pilotRepo, env.bids, env.adjudication, env.cfgSvc)
	env.fleet = NewFleetService(env.fleetRepo, nil, env.vaultRepo, env.cfgSvc)
	return env
}

func (e *testEnv) createPilot(t *testing.T, code string) *gormModels.Pilot {
	t.Helper()
	pilot := &gormModels.Pilot{
		PilotCode:       code,
		FirstName:       "Test",
		LastName:        "Pilot",
		CurrentLocation: "OLBA",
	}
	if err := e.pilotRepo.Create(context.Background(), pilot); err != nil {
		t.Fatalf("Failed to create pilot: %v", err)
	}
	return pilot
}

func (e *testEnv) createAircraft(t *testing.T, registration, aircraftType, location string, condition float64) *gormModels.Aircraft {
	t.Helper()
	aircraft := &gormModels.Aircraft{
		Registration:    registration,
		AircraftType:    aircraftType,
		HomeLocation:    location,
		CurrentLocation: location,
		Condition:       condition,
		Status:          constants.AircraftAvailable,
		IsActive:        true,
	}
	if err := e.fleetRepo.Create(context.Background(), aircraft); err != nil {
		t.Fatalf("Failed to create aircraft: %v", err)
	}
	return aircraft
}

func (e *testEnv) seedVault(t *testing.T, amount float64) {
	t.Helper()
	if err := e.vaultRepo.Credit(e.db, amount); err != nil {
		t.Fatalf("Failed to seed vault: %v", err)
	}
}

func bidRequest() *dtos.CreateBidRequest {
	return &dtos.CreateBidRequest{
		FlightNumber:  "LV201",
		DepartureICAO: "OLBA",
		ArrivalICAO:   "OJAI",
		AircraftType:  "B738",
		Pax:           150,
		CargoKg:       2000,
		PlannedFuelKg: 5000,
		DistanceNm:    120,
	}
}

func TestCreateBid_SingleActivePerPilot(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	first, err := env.bids.CreateBid(ctx, pilot.ID, bidRequest())
	if err != nil {
		t.Fatalf("First bid failed: %v", err)
	}
	if first.Status != "active" {
		t.Errorf("Expected active status, got %s", first.Status)
	}

	_, err = env.bids.CreateBid(ctx, pilot.ID, bidRequest())
	if !errors.Is(err, pipeline.ErrDuplicateBid) {
		t.Errorf("Expected ErrDuplicateBid, got %v", err)
	}
}

func TestCreateBid_ReplaceCancelsExisting(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	first, err := env.bids.CreateBid(ctx, pilot.ID, bidRequest())
	if err != nil {
		t.Fatalf("First bid failed: %v", err)
	}

	req := bidRequest()
	req.ArrivalICAO = "OMDB"
	req.Replace = true
	second, err := env.bids.CreateBid(ctx, pilot.ID, req)
	if err != nil {
		t.Fatalf("Replacement bid failed: %v", err)
	}
	if !second.Replaced {
		t.Errorf("Expected replaced flag on response")
	}

	old, err := env.bidRepo.FindByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("Failed to reload first bid: %v", err)
	}
	if old.Status != constants.BidCancelled {
		t.Errorf("Expected first bid cancelled, got %s", old.Status)
	}
}

func TestCreateBid_RestrictedAircraft(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	for _, aircraftType := range []string{"A388", "A380", "Airbus A-380", "a 380"} {
		req := bidRequest()
		req.AircraftType = aircraftType
		_, err := env.bids.CreateBid(ctx, pilot.ID, req)
		if !errors.Is(err, pipeline.ErrFleetViolation) {
			t.Errorf("Type %q: expected ErrFleetViolation, got %v", aircraftType, err)
		}
	}
}

func TestCreateBid_InvalidStations(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	req := bidRequest()
	req.DepartureICAO = "OL"
	if _, err := env.bids.CreateBid(ctx, pilot.ID, req); !pipeline.IsValidation(err) {
		t.Errorf("Expected validation error for short ICAO, got %v", err)
	}

	req = bidRequest()
	req.ArrivalICAO = req.DepartureICAO
	if _, err := env.bids.CreateBid(ctx, pilot.ID, req); !pipeline.IsValidation(err) {
		t.Errorf("Expected validation error for same stations, got %v", err)
	}
}

func TestConsumeBid_ExactlyOnce(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	created, err := env.bids.CreateBid(ctx, pilot.ID, bidRequest())
	if err != nil {
		t.Fatalf("Bid create failed: %v", err)
	}

	if _, err := env.bids.Consume(ctx, created.ID); err != nil {
		t.Fatalf("First consume failed: %v", err)
	}
	if _, err := env.bids.Consume(ctx, created.ID); !errors.Is(err, pipeline.ErrAlreadyConsumed) {
		t.Errorf("Expected ErrAlreadyConsumed, got %v", err)
	}
}

func TestConsumeBid_ExpiredAtBoundary(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	created, err := env.bids.CreateBid(ctx, pilot.ID, bidRequest())
	if err != nil {
		t.Fatalf("Bid create failed: %v", err)
	}

	// Push expires_at into the past; now == expires_at counts as expired.
	past := time.Now().UTC().Add(-time.Second)
	if err := env.db.Model(&gormModels.Bid{}).Where("id = ?", created.ID).
		Update("expires_at", past).Error; err != nil {
		t.Fatalf("Failed to backdate bid: %v", err)
	}

	if _, err := env.bids.Consume(ctx, created.ID); !errors.Is(err, pipeline.ErrExpired) {
		t.Errorf("Expected ErrExpired, got %v", err)
	}

	stored, _ := env.bidRepo.FindByID(ctx, created.ID)
	if stored.Status != constants.BidExpired {
		t.Errorf("Expected expired status after lazy reap, got %s", stored.Status)
	}
}

func TestExpiredBoundary_IsPureFunctionOfTime(t *testing.T) {
	now := time.Now().UTC()
	bid := &gormModels.Bid{ExpiresAt: now}

	if !bid.ExpiredAt(now) {
		t.Errorf("Bid at exact TTL instant should be expired")
	}
	if bid.ExpiredAt(now.Add(-time.Millisecond)) {
		t.Errorf("Bid before TTL should not be expired")
	}
}

func TestCancelBid_Semantics(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")
	other := env.createPilot(t, "LV002")

	created, err := env.bids.CreateBid(ctx, pilot.ID, bidRequest())
	if err != nil {
		t.Fatalf("Bid create failed: %v", err)
	}

	// Another pilot cannot cancel it.
	if err := env.bids.CancelBid(ctx, other.ID, created.ID, false); !errors.Is(err, pipeline.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign cancel, got %v", err)
	}

	if err := env.bids.CancelBid(ctx, pilot.ID, created.ID, false); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	// Idempotent on a cancelled bid.
	if err := env.bids.CancelBid(ctx, pilot.ID, created.ID, false); err != nil {
		t.Errorf("Second cancel should be a no-op, got %v", err)
	}

	// Consumed bids cannot be cancelled.
	second, _ := env.bids.CreateBid(ctx, pilot.ID, bidRequest())
	if _, err := env.bids.Consume(ctx, second.ID); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if err := env.bids.CancelBid(ctx, pilot.ID, second.ID, false); !errors.Is(err, pipeline.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition for consumed cancel, got %v", err)
	}
}

func TestReapExpired_SweepsOnlyDueBids(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilotA := env.createPilot(t, "LV001")
	pilotB := env.createPilot(t, "LV002")

	stale, err := env.bids.CreateBid(ctx, pilotA.ID, bidRequest())
	if err != nil {
		t.Fatalf("Bid create failed: %v", err)
	}
	fresh, err := env.bids.CreateBid(ctx, pilotB.ID, bidRequest())
	if err != nil {
		t.Fatalf("Bid create failed: %v", err)
	}

	env.db.Model(&gormModels.Bid{}).Where("id = ?", stale.ID).
		Update("expires_at", time.Now().UTC().Add(-time.Hour))

	reaped, err := env.bids.ReapExpired(ctx)
	if err != nil {
		t.Fatalf("Reap failed: %v", err)
	}
	if reaped != 1 {
		t.Errorf("Expected 1 reaped bid, got %d", reaped)
	}

	freshStored, _ := env.bidRepo.FindByID(ctx, fresh.ID)
	if freshStored.Status != constants.BidActive {
		t.Errorf("Fresh bid should stay active, got %s", freshStored.Status)
	}
}
