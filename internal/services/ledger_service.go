package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"levant-va/operations/internal/config"
	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/db/repositories"
	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/metrics"
	"levant-va/operations/internal/models/dtos"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// Wear from landings harder than this (fpm, absolute) adds a severity
// penalty on top of the per-flight base decay.
const severityOnsetFpm = 300.0

// severityStepFpm is the landing-rate band per half-point of extra wear.
const severityStepFpm = 100.0

// maxConditionLoss caps the wear one flight can inflict.
const maxConditionLoss = 6.0

// LedgerService applies the economic consequences of an approved report.
// Settlement is a single database transaction: aircraft condition, pilot
// balance, vault balance and the approval flip commit together or not at all.
type LedgerService struct {
	db      *gorm.DB
	fleet   *repositories.FleetRepository
	pilots  *repositories.PilotRepository
	vault   *repositories.VaultRepository
	pireps  *repositories.PirepRepository
	cfgSvc  *config.MaintenanceConfigService
	metrics *metrics.MetricsRegistry
}

func NewLedgerService(
	db *gorm.DB,
	fleet *repositories.FleetRepository,
	pilots *repositories.PilotRepository,
	vault *repositories.VaultRepository,
	pireps *repositories.PirepRepository,
	cfgSvc *config.MaintenanceConfigService,
	metricsReg *metrics.MetricsRegistry,
) *LedgerService {
	return &LedgerService{
		db:      db,
		fleet:   fleet,
		pilots:  pilots,
		vault:   vault,
		pireps:  pireps,
		cfgSvc:  cfgSvc,
		metrics: metricsReg,
	}
}

// conditionDelta computes the (negative) wear for one flight. Landings
// harder than severityOnsetFpm add half a point per severityStepFpm band.
func conditionDelta(cfg config.MaintenanceConfig, landingRate *float64) float64 {
	loss := cfg.BaseDecayPerFlight
	if landingRate != nil {
		hardness := math.Abs(*landingRate)
		if hardness > severityOnsetFpm {
			loss += ((hardness - severityOnsetFpm) / severityStepFpm) * 0.5
		}
	}
	if loss > maxConditionLoss {
		loss = maxConditionLoss
	}
	return -loss
}

// Settle runs the settlement transaction for an approved report. The report
// must still be Pending: the Approved flip is part of the transaction, so a
// duplicate settle event finds a decided report and no-ops. approvedBy is
// empty for automatic approvals.
func (s *LedgerService) Settle(ctx context.Context, pirepID, approvedBy string) (*dtos.SettlementResult, error) {
	start := time.Now()
	cfg := s.cfgSvc.Current(ctx)

	var result dtos.SettlementResult
	var pilotID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pirep gormModels.Pirep
		if err := tx.Where("id = ?", pirepID).First(&pirep).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pipeline.ErrNotFound
			}
			return err
		}
		if pirep.Approval != constants.PirepPending {
			return pipeline.ErrInvalidTransition
		}
		pilotID = pirep.PilotID

		hours := pirep.FlightHours()
		delta := conditionDelta(cfg, pirep.LandingRate)

		revenuePax := float64(pirep.Pax) * cfg.FarePerPax
		revenueCargo := float64(pirep.CargoKg) * cfg.CargoRatePerKg
		expenseFuel := float64(pirep.FuelUsedKg) * cfg.FuelPricePerKg
		expensePilot := hours * cfg.PilotWagePerHour

		expenseMaintenance := 0.0
		grounded := false
		if pirep.AircraftRegistration != nil {
			releaseTo := constants.AircraftAvailable
			extra := map[string]interface{}{
				"total_hours":      gorm.Expr("total_hours + ?", hours),
				"flight_count":     gorm.Expr("flight_count + ?", 1),
				"current_location": pirep.ArrivalICAO,
			}
			aircraft, err := s.fleet.ApplyConditionDelta(tx, cfg, *pirep.AircraftRegistration, delta, extra, &releaseTo)
			if err != nil {
				return err
			}
			grounded = aircraft.Status == constants.AircraftGrounded
			expenseMaintenance = math.Abs(delta) * cfg.RepairRatePerPercent
		}

		revenue := revenuePax + revenueCargo
		expense := expenseFuel + cfg.AirportFee + expensePilot + expenseMaintenance
		net := revenue - expense

		if err := s.pilots.Credit(tx, pirep.PilotID, net, hours, pirep.ArrivalICAO); err != nil {
			return err
		}
		if err := s.vault.Credit(tx, net); err != nil {
			return err
		}

		decideUpdates := map[string]interface{}{
			"revenue_passenger":   revenuePax,
			"revenue_cargo":       revenueCargo,
			"expense_fuel":        expenseFuel,
			"expense_airport":     cfg.AirportFee,
			"expense_pilot":       expensePilot,
			"expense_maintenance": expenseMaintenance,
			"net_profit":          net,
		}
		if approvedBy != "" {
			decideUpdates["reviewed_by"] = approvedBy
		}
		if err := s.pireps.Decide(tx, pirepID, constants.PirepApproved, decideUpdates); err != nil {
			return err
		}

		result = dtos.SettlementResult{
			PirepID:          pirepID,
			ConditionDelta:   delta,
			AircraftGrounded: grounded,
			Revenue:          revenue,
			Expense:          expense,
			NetProfit:        net,
		}
		return nil
	})

	s.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidTransition) {
			// Already settled; a redelivered event is acked without effects.
			s.metrics.SettlementsTotal.WithLabelValues("duplicate").Inc()
			logging.Warn("Settle event for already-decided report", "pirep_id", pirepID)
			return nil, err
		}
		s.metrics.SettlementsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("settlement for pirep %s failed: %w", pirepID, err)
	}
	s.metrics.SettlementsTotal.WithLabelValues("settled").Inc()

	s.refreshGauges(ctx, &result)
	if pilot, perr := s.pilots.FindByID(ctx, pilotID); perr == nil {
		result.PilotBalance = pilot.Balance
	}
	logging.Info("Settlement committed",
		"pirep_id", pirepID,
		"net_profit", result.NetProfit,
		"condition_delta", result.ConditionDelta,
		"aircraft_grounded", result.AircraftGrounded,
	)
	return &result, nil
}

// Repair restores aircraft condition at the configured rate per percent,
// debited from the vault. MINIMUM targets the grounding threshold plus the
// hysteresis margin, the cheapest repair that returns a grounded aircraft to
// service; FULL targets 100.
func (s *LedgerService) Repair(ctx context.Context, registration string, tier constants.RepairTier) (*dtos.RepairResult, error) {
	cfg := s.cfgSvc.Current(ctx)

	aircraft, err := s.fleet.FindByRegistration(ctx, registration)
	if err != nil {
		return nil, err
	}

	var target float64
	switch tier {
	case constants.RepairMinimum:
		target = cfg.GroundedThreshold + cfg.HysteresisMargin
	case constants.RepairFull:
		target = 100
	default:
		return nil, pipeline.Validationf("repair type must be MINIMUM or FULL")
	}

	if aircraft.Condition >= target {
		return nil, pipeline.Validationf("aircraft %s condition %.1f already meets the %s target", registration, aircraft.Condition, tier)
	}

	delta := target - aircraft.Condition
	cost := delta * cfg.RepairRatePerPercent

	var repaired *gormModels.Aircraft
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.vault.DebitIfSufficient(tx, cost); err != nil {
			return err
		}
		now := time.Now().UTC()
		extra := map[string]interface{}{"last_service": now}
		var txErr error
		repaired, txErr = s.fleet.ApplyConditionDelta(tx, cfg, registration, delta, extra, nil)
		return txErr
	})
	if err != nil {
		s.metrics.RepairsTotal.WithLabelValues(string(tier), "failed").Inc()
		return nil, err
	}
	s.metrics.RepairsTotal.WithLabelValues(string(tier), "completed").Inc()

	balance, balErr := s.vault.Balance(ctx)
	if balErr == nil {
		s.metrics.VaultBalance.Set(balance)
	}

	logging.Info("Aircraft repaired",
		"registration", registration,
		"tier", tier,
		"condition_from", aircraft.Condition,
		"condition_to", repaired.Condition,
		"cost", cost,
	)

	return &dtos.RepairResult{
		Registration:  registration,
		RepairType:    string(tier),
		ConditionFrom: aircraft.Condition,
		ConditionTo:   repaired.Condition,
		Cost:          cost,
		VaultBalance:  balance,
		Message:       fmt.Sprintf("Repair completed. Aircraft now %s.", repaired.Status),
	}, nil
}

// refreshGauges updates the vault and grounded-fleet gauges after a commit.
// Best effort; gauges converge on the next settlement either way.
func (s *LedgerService) refreshGauges(ctx context.Context, result *dtos.SettlementResult) {
	if balance, err := s.vault.Balance(ctx); err == nil {
		result.VaultBalance = balance
		s.metrics.VaultBalance.Set(balance)
	}

	var grounded int64
	if err := s.db.WithContext(ctx).Model(&gormModels.Aircraft{}).
		Where("status = ?", constants.AircraftGrounded).
		Count(&grounded).Error; err == nil {
		s.metrics.AircraftGrounded.Set(float64(grounded))
	}
}
