package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"levant-va/operations/internal/constants"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

func (e *testEnv) createPendingPirep(t *testing.T, pilot *gormModels.Pilot, registration *string, landingRate *float64) *gormModels.Pirep {
	t.Helper()
	pirep := autoPirep(pilot, landingRate)
	pirep.AircraftRegistration = registration
	if err := e.pirepRepo.Create(context.Background(), pirep); err != nil {
		t.Fatalf("Failed to create pirep: %v", err)
	}
	return pirep
}

func TestSettle_AppliesAllLedgerEffects(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")
	aircraft := env.createAircraft(t, "LV-ABA", "B738", "OLBA", 100)

	pirep := env.createPendingPirep(t, pilot, &aircraft.Registration, rate(-250))

	result, err := env.ledger.Settle(ctx, pirep.ID, "")
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	// Revenue: 150 pax * 110 + 2000 kg * 0.35 = 17200.
	if math.Abs(result.Revenue-17200) > 0.01 {
		t.Errorf("Revenue = %.2f, want 17200", result.Revenue)
	}
	// Expense: 5000 kg fuel * 0.62 + 400 airport + 1h * 45 wage
	// + 0.8 wear * 100 maintenance accrual = 3625.
	if math.Abs(result.Expense-3625) > 0.01 {
		t.Errorf("Expense = %.2f, want 3625", result.Expense)
	}
	net := result.Revenue - result.Expense
	if math.Abs(result.NetProfit-net) > 0.01 {
		t.Errorf("NetProfit = %.2f, want %.2f", result.NetProfit, net)
	}

	updatedPilot, _ := env.pilotRepo.FindByID(ctx, pilot.ID)
	if math.Abs(updatedPilot.Balance-net) > 0.01 {
		t.Errorf("Pilot balance = %.2f, want %.2f", updatedPilot.Balance, net)
	}
	if math.Abs(updatedPilot.TotalHours-1) > 0.001 {
		t.Errorf("Pilot hours = %.3f, want 1", updatedPilot.TotalHours)
	}
	if updatedPilot.CurrentLocation != "OJAI" {
		t.Errorf("Pilot location = %s, want OJAI", updatedPilot.CurrentLocation)
	}

	balance, _ := env.vaultRepo.Balance(ctx)
	if math.Abs(balance-net) > 0.01 {
		t.Errorf("Vault balance = %.2f, want %.2f", balance, net)
	}

	updatedAircraft, _ := env.fleetRepo.FindByRegistration(ctx, aircraft.Registration)
	if math.Abs(updatedAircraft.Condition-99.2) > 0.01 {
		t.Errorf("Condition = %.2f, want 99.2", updatedAircraft.Condition)
	}
	if updatedAircraft.CurrentLocation != "OJAI" {
		t.Errorf("Aircraft location = %s, want OJAI", updatedAircraft.CurrentLocation)
	}
	if updatedAircraft.Status != constants.AircraftAvailable {
		t.Errorf("Aircraft status = %s, want Available", updatedAircraft.Status)
	}
	if updatedAircraft.FlightCount != 1 {
		t.Errorf("Flight count = %d, want 1", updatedAircraft.FlightCount)
	}

	stored, _ := env.pirepRepo.FindByID(ctx, pirep.ID)
	if stored.Approval != constants.PirepApproved {
		t.Errorf("Report approval = %s, want approved", stored.Approval)
	}
}

func TestSettle_HardLandingAddsSeverityWear(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")
	aircraft := env.createAircraft(t, "LV-ABB", "B738", "OLBA", 100)

	// 500 fpm: base 0.8 + (500-300)/100 * 0.5 = 1.8 total wear.
	pirep := env.createPendingPirep(t, pilot, &aircraft.Registration, rate(-500))

	result, err := env.ledger.Settle(ctx, pirep.ID, "")
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if math.Abs(result.ConditionDelta-(-1.8)) > 0.01 {
		t.Errorf("ConditionDelta = %.2f, want -1.8", result.ConditionDelta)
	}

	updated, _ := env.fleetRepo.FindByRegistration(ctx, aircraft.Registration)
	if math.Abs(updated.Condition-98.2) > 0.01 {
		t.Errorf("Condition = %.2f, want 98.2", updated.Condition)
	}
}

// If any step of the settlement fails, nothing sticks: condition, balances
// and the approval flip all roll back together.
func TestSettle_AtomicRollbackOnFailure(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")
	aircraft := env.createAircraft(t, "LV-ABC", "B738", "OLBA", 90)
	env.seedVault(t, 10000)

	pirep := env.createPendingPirep(t, pilot, &aircraft.Registration, rate(-250))

	// Force the pilot-credit step to fail after the condition update.
	if err := env.db.Delete(&gormModels.Pilot{}, "id = ?", pilot.ID).Error; err != nil {
		t.Fatalf("Failed to delete pilot: %v", err)
	}

	_, err := env.ledger.Settle(ctx, pirep.ID, "")
	if err == nil {
		t.Fatalf("Settle must fail when the pilot credit cannot apply")
	}

	updatedAircraft, _ := env.fleetRepo.FindByRegistration(ctx, aircraft.Registration)
	if updatedAircraft.Condition != 90 {
		t.Errorf("Condition changed despite rollback: %.2f", updatedAircraft.Condition)
	}
	if updatedAircraft.FlightCount != 0 {
		t.Errorf("Flight count changed despite rollback: %d", updatedAircraft.FlightCount)
	}

	balance, _ := env.vaultRepo.Balance(ctx)
	if balance != 10000 {
		t.Errorf("Vault changed despite rollback: %.2f", balance)
	}

	stored, _ := env.pirepRepo.FindByID(ctx, pirep.ID)
	if stored.Approval != constants.PirepPending {
		t.Errorf("Report must stay pending after rollback, got %s", stored.Approval)
	}
}

func TestSettle_DuplicateEventNoOps(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")

	pirep := env.createPendingPirep(t, pilot, nil, rate(-200))

	if _, err := env.ledger.Settle(ctx, pirep.ID, ""); err != nil {
		t.Fatalf("First settle failed: %v", err)
	}
	balanceAfterFirst, _ := env.vaultRepo.Balance(ctx)

	if _, err := env.ledger.Settle(ctx, pirep.ID, ""); !errors.Is(err, pipeline.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition on redelivery, got %v", err)
	}

	balanceAfterSecond, _ := env.vaultRepo.Balance(ctx)
	if balanceAfterFirst != balanceAfterSecond {
		t.Errorf("Redelivered event must not move money: %.2f -> %.2f", balanceAfterFirst, balanceAfterSecond)
	}
}

// Condition below the threshold grounds the aircraft during settlement,
// regardless of the usual release to Available.
func TestSettle_WearGroundsAircraft(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	pilot := env.createPilot(t, "LV001")
	aircraft := env.createAircraft(t, "LV-ABD", "B738", "OLBA", 20.5)

	pirep := env.createPendingPirep(t, pilot, &aircraft.Registration, rate(-250))

	result, err := env.ledger.Settle(ctx, pirep.ID, "")
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !result.AircraftGrounded {
		t.Errorf("Result must report the grounding")
	}

	updated, _ := env.fleetRepo.FindByRegistration(ctx, aircraft.Registration)
	if updated.Status != constants.AircraftGrounded {
		t.Errorf("Status = %s, want Grounded", updated.Status)
	}
	if updated.Condition >= 20 {
		t.Errorf("Condition = %.2f, expected below threshold", updated.Condition)
	}
	if updated.GroundedReason == nil {
		t.Errorf("Grounded aircraft must carry a reason")
	}
}

func TestRepair_MinimumClearsGrounding(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.seedVault(t, 100000)

	aircraft := env.createAircraft(t, "LV-ABE", "B738", "OLBA", 15)
	env.db.Model(&gormModels.Aircraft{}).Where("registration = ?", aircraft.Registration).
		Updates(map[string]interface{}{"status": constants.AircraftGrounded, "grounded_reason": "condition below grounding threshold"})

	result, err := env.ledger.Repair(ctx, aircraft.Registration, constants.RepairMinimum)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	// MINIMUM targets threshold 20 + margin 5 = 25; 10 points at 100/percent.
	if math.Abs(result.ConditionTo-25) > 0.01 {
		t.Errorf("ConditionTo = %.2f, want 25", result.ConditionTo)
	}
	if math.Abs(result.Cost-1000) > 0.01 {
		t.Errorf("Cost = %.2f, want 1000", result.Cost)
	}

	updated, _ := env.fleetRepo.FindByRegistration(ctx, aircraft.Registration)
	if updated.Status != constants.AircraftAvailable {
		t.Errorf("Status = %s, want Available after minimum repair", updated.Status)
	}
	if updated.GroundedReason != nil {
		t.Errorf("Grounded reason must clear on release")
	}

	balance, _ := env.vaultRepo.Balance(ctx)
	if math.Abs(balance-99000) > 0.01 {
		t.Errorf("Vault = %.2f, want 99000", balance)
	}
}

func TestRepair_FullRestoresCondition(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.seedVault(t, 100000)

	aircraft := env.createAircraft(t, "LV-ABF", "B738", "OLBA", 60)

	result, err := env.ledger.Repair(ctx, aircraft.Registration, constants.RepairFull)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if math.Abs(result.ConditionTo-100) > 0.01 {
		t.Errorf("ConditionTo = %.2f, want 100", result.ConditionTo)
	}
	if math.Abs(result.Cost-4000) > 0.01 {
		t.Errorf("Cost = %.2f, want 4000", result.Cost)
	}

	updated, _ := env.fleetRepo.FindByRegistration(ctx, aircraft.Registration)
	if updated.LastService == nil {
		t.Errorf("Repair must stamp last_service")
	}
}

// An unaffordable repair leaves both the vault and the airframe untouched.
func TestRepair_InsufficientFunds(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.seedVault(t, 500)

	aircraft := env.createAircraft(t, "LV-ABG", "B738", "OLBA", 15)

	_, err := env.ledger.Repair(ctx, aircraft.Registration, constants.RepairFull)
	if !errors.Is(err, pipeline.ErrInsufficientFunds) {
		t.Fatalf("Expected ErrInsufficientFunds, got %v", err)
	}

	balance, _ := env.vaultRepo.Balance(ctx)
	if balance != 500 {
		t.Errorf("Vault changed on failed repair: %.2f", balance)
	}
	updated, _ := env.fleetRepo.FindByRegistration(ctx, aircraft.Registration)
	if updated.Condition != 15 {
		t.Errorf("Condition changed on failed repair: %.2f", updated.Condition)
	}
}

func TestRepair_AboveTargetRejected(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.seedVault(t, 100000)

	aircraft := env.createAircraft(t, "LV-ABH", "B738", "OLBA", 80)

	if _, err := env.ledger.Repair(ctx, aircraft.Registration, constants.RepairMinimum); !pipeline.IsValidation(err) {
		t.Errorf("Expected validation error repairing above target, got %v", err)
	}
}
