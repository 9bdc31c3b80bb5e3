package api

import (
	"os"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/config"
	"levant-va/operations/internal/db"
	"levant-va/operations/internal/db/repositories"
	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/metrics"
	"levant-va/operations/internal/services"
)

type Repositories struct {
	Fleet     *repositories.FleetRepository
	FleetView *repositories.FleetViewRepository
	Bids      *repositories.BidRepository
	BidBoard  *repositories.BidBoardRepository
	Sessions  *repositories.SessionRepository
	Pireps    *repositories.PirepRepository
	Pilots    *repositories.PilotRepository
	Vault     *repositories.VaultRepository
	Keys      *repositories.KeysRepository
}

type Services struct {
	Cache        common.CacheInterface
	SettleQueue  *common.SettleQueueService
	Config       *config.MaintenanceConfigService
	Fleet        *services.FleetService
	Bids         *services.BidService
	Sessions     *services.FlightSessionService
	Adjudication *services.AdjudicationService
	Ledger       *services.LedgerService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

// InitDependencies wires repositories and services. The settle dispatcher is
// the Redis queue by default; SETTLE_MODE=inline bypasses the queue for
// single-process deployments without Redis.
func InitDependencies(metricsReg *metrics.MetricsRegistry) (*Dependencies, error) {
	repos := &Repositories{
		Fleet:     repositories.NewFleetRepository(db.PgDB),
		FleetView: repositories.NewFleetViewRepository(db.DB),
		Bids:      repositories.NewBidRepository(db.PgDB),
		BidBoard:  repositories.NewBidBoardRepository(db.DB),
		Sessions:  repositories.NewSessionRepository(db.PgDB),
		Pireps:    repositories.NewPirepRepository(db.PgDB),
		Pilots:    repositories.NewPilotRepository(db.PgDB),
		Vault:     repositories.NewVaultRepository(db.PgDB),
		Keys:      repositories.NewKeysRepository(db.DB),
	}

	var cache common.CacheInterface
	var redisClient = common.NewRedisClient()
	if os.Getenv("CACHE_BACKEND") == "memory" {
		cache = common.NewCacheService(300, 600)
	} else {
		cache = common.NewRedisCacheService(redisClient)
	}

	cfgSvc := config.NewMaintenanceConfigService(db.PgDB, cache)

	fleetSvc := services.NewFleetService(repos.Fleet, repos.FleetView, repos.Vault, cfgSvc)
	bidSvc := services.NewBidService(repos.Bids, repos.Pilots, cfgSvc, metricsReg)
	ledgerSvc := services.NewLedgerService(db.PgDB, repos.Fleet, repos.Pilots, repos.Vault, repos.Pireps, cfgSvc, metricsReg)

	var settleQueue *common.SettleQueueService
	var dispatcher services.SettleDispatcher
	if os.Getenv("SETTLE_MODE") != "inline" {
		settleQueue = common.NewSettleQueueService(redisClient)
		dispatcher = services.NewQueueSettleDispatcher(settleQueue)
	} else {
		dispatcher = services.NewInlineSettleDispatcher(ledgerSvc)
		logging.Info("Settle dispatcher running inline")
	}

	adjudicationSvc := services.NewAdjudicationService(repos.Pireps, repos.Fleet, cfgSvc, dispatcher, metricsReg)
	sessionSvc := services.NewFlightSessionService(repos.Sessions, repos.Fleet, repos.Pilots, bidSvc, adjudicationSvc, cfgSvc)

	return &Dependencies{
		Repo: repos,
		Services: &Services{
			Cache:        cache,
			SettleQueue:  settleQueue,
			Config:       cfgSvc,
			Fleet:        fleetSvc,
			Bids:         bidSvc,
			Sessions:     sessionSvc,
			Adjudication: adjudicationSvc,
			Ledger:       ledgerSvc,
		},
	}, nil
}
