package workers

import (
	"context"
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
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/services"
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

type fakeSettleQueue struct {
	enqueued []*common.SettleEvent
}

func (q *fakeSettleQueue) EnsureGroup(ctx context.Context) error { return nil }

func (q *fakeSettleQueue) Enqueue(ctx context.Context, event *common.SettleEvent) error {
	q.enqueued = append(q.enqueued, event)
	return nil
}

func (q *fakeSettleQueue) Dequeue(ctx context.Context, consumerName string, blockTime time.Duration) (*common.SettleEvent, string, error) {
	return nil, "", nil
}

func (q *fakeSettleQueue) Ack(ctx context.Context, messageID string) error { return nil }

func (q *fakeSettleQueue) ClaimStale(ctx context.Context, consumerName string, minIdle time.Duration) ([]*common.SettleEvent, []string, error) {
	return nil, nil, nil
}

type workerEnv struct {
	db        *gorm.DB
	pirepRepo *repositories.PirepRepository
	ledger    *services.LedgerService
}

func setupWorkerEnv(t *testing.T) *workerEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&gormModels.Pilot{},
		&gormModels.Aircraft{},
		&gormModels.Pirep{},
		&gormModels.Vault{},
		&gormModels.Setting{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := db.Create(&gormModels.Vault{ID: 1, Balance: 0}).Error; err != nil {
		t.Fatalf("Failed to seed vault: %v", err)
	}

	cfgSvc := config.NewMaintenanceConfigService(db, common.NewCacheService(300, 600))
	pirepRepo := repositories.NewPirepRepository(db)
	ledger := services.NewLedgerService(
		db,
		repositories.NewFleetRepository(db),
		repositories.NewPilotRepository(db),
		repositories.NewVaultRepository(db),
		pirepRepo,
		cfgSvc,
		metricsForTest(),
	)
	return &workerEnv{db: db, pirepRepo: pirepRepo, ledger: ledger}
}

func (e *workerEnv) createPendingPirep(t *testing.T) *gormModels.Pirep {
	t.Helper()
	pilot := &gormModels.Pilot{
		PilotCode:       "LV001",
		FirstName:       "Test",
		LastName:        "Pilot",
		CurrentLocation: "OLBA",
	}
	if err := e.db.Create(pilot).Error; err != nil {
		t.Fatalf("Failed to create pilot: %v", err)
	}

	landingRate := -200.0
	pirep := &gormModels.Pirep{
		PilotID:           pilot.ID,
		PilotName:         pilot.DisplayName(),
		FlightNumber:      "LV201",
		DepartureICAO:     "OLBA",
		ArrivalICAO:       "OJAI",
		AircraftType:      "B738",
		FlightTimeSeconds: 3600,
		LandingRate:       &landingRate,
		Pax:               150,
		CargoKg:           2000,
		FuelUsedKg:        5000,
		Channel:           constants.ChannelAutomatic,
		Approval:          constants.PirepPending,
	}
	if err := e.pirepRepo.Create(context.Background(), pirep); err != nil {
		t.Fatalf("Failed to create pirep: %v", err)
	}
	return pirep
}

func TestHandle_SettlesCleanEvent(t *testing.T) {
	env := setupWorkerEnv(t)
	ctx := context.Background()
	pirep := env.createPendingPirep(t)

	queue := &fakeSettleQueue{}
	worker := NewSettleWorker("test", queue, env.ledger)

	if !worker.handle(ctx, "consumer-0", &common.SettleEvent{PirepID: pirep.ID}) {
		t.Fatalf("Clean event must settle")
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("Successful settlement must not re-enqueue, got %d events", len(queue.enqueued))
	}

	stored, _ := env.pirepRepo.FindByID(ctx, pirep.ID)
	if stored.Approval != constants.PirepApproved {
		t.Errorf("Report approval = %s, want approved", stored.Approval)
	}
}

// A failing event goes back on the stream with its attempt counter bumped
// instead of being dropped with the original ack.
func TestHandle_FailedEventRequeued(t *testing.T) {
	env := setupWorkerEnv(t)
	ctx := context.Background()

	queue := &fakeSettleQueue{}
	worker := NewSettleWorker("test", queue, env.ledger)

	event := &common.SettleEvent{PirepID: "00000000-0000-0000-0000-000000000000"}
	if worker.handle(ctx, "consumer-0", event) {
		t.Fatalf("Unknown report must fail settlement")
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("Failed event must be re-enqueued, got %d events", len(queue.enqueued))
	}
	if queue.enqueued[0].Attempts != 1 {
		t.Errorf("Re-enqueued attempts = %d, want 1", queue.enqueued[0].Attempts)
	}
}

// After maxRedeliveries the event is given up on; the report stays pending
// and nothing new lands on the stream.
func TestHandle_RedeliveryCapStopsRequeue(t *testing.T) {
	env := setupWorkerEnv(t)
	ctx := context.Background()

	queue := &fakeSettleQueue{}
	worker := NewSettleWorker("test", queue, env.ledger)

	event := &common.SettleEvent{
		PirepID:  "00000000-0000-0000-0000-000000000000",
		Attempts: maxRedeliveries - 1,
	}
	if worker.handle(ctx, "consumer-0", event) {
		t.Fatalf("Unknown report must fail settlement")
	}
	if len(queue.enqueued) != 0 {
		t.Errorf("Exhausted event must not be re-enqueued, got %d events", len(queue.enqueued))
	}
}
