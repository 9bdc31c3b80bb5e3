package services

import (
	"context"
	"fmt"
	"strings"

	"levant-va/operations/internal/config"
	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/db/repositories"
	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/models/dtos"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// DefaultFleetLocation is where new aircraft spawn when no station is given.
const DefaultFleetLocation = "OJAI"

// FleetService handles fleet administration and the maintenance overview.
// Condition mechanics live in the ledger; this service owns identity and
// the operator-facing views.
type FleetService struct {
	fleet     *repositories.FleetRepository
	fleetView *repositories.FleetViewRepository
	vault     *repositories.VaultRepository
	cfgSvc    *config.MaintenanceConfigService
}

func NewFleetService(
	fleet *repositories.FleetRepository,
	fleetView *repositories.FleetViewRepository,
	vault *repositories.VaultRepository,
	cfgSvc *config.MaintenanceConfigService,
) *FleetService {
	return &FleetService{fleet: fleet, fleetView: fleetView, vault: vault, cfgSvc: cfgSvc}
}

// CreateAircraft registers a new airframe at full condition. Restricted
// types never enter the fleet.
func (s *FleetService) CreateAircraft(ctx context.Context, req *dtos.CreateAircraftRequest) (*gormModels.Aircraft, error) {
	registration := strings.ToUpper(strings.TrimSpace(req.Registration))
	if registration == "" {
		return nil, pipeline.Validationf("registration is required")
	}
	aircraftType := strings.ToUpper(strings.TrimSpace(req.AircraftType))
	if aircraftType == "" {
		return nil, pipeline.Validationf("aircraft type is required")
	}
	if IsRestrictedWideBody(aircraftType) {
		return nil, fmt.Errorf("%w: %s", pipeline.ErrFleetViolation, constants.MsgFleetViolationA380)
	}

	location := strings.ToUpper(strings.TrimSpace(req.CurrentLocation))
	if location == "" {
		location = DefaultFleetLocation
	}
	if !ValidStationCode(location) {
		return nil, pipeline.Validationf("current location must be a 4-character ICAO code")
	}

	aircraft := &gormModels.Aircraft{
		Registration:    registration,
		AircraftType:    aircraftType,
		HomeLocation:    location,
		CurrentLocation: location,
		Condition:       100,
		Status:          constants.AircraftAvailable,
		IsActive:        true,
	}
	if req.Name != "" {
		aircraft.Name = &req.Name
	}
	if req.Livery != "" {
		aircraft.Livery = &req.Livery
	}

	if err := s.fleet.Create(ctx, aircraft); err != nil {
		return nil, err
	}
	logging.Info("Aircraft registered", "registration", registration, "type", aircraftType, "location", location)
	return aircraft, nil
}

// UpdateAircraft mutates administrative fields. Condition and status never
// change here; those belong to settlement and repair.
func (s *FleetService) UpdateAircraft(ctx context.Context, req *dtos.UpdateAircraftRequest) (*gormModels.Aircraft, error) {
	registration := strings.ToUpper(strings.TrimSpace(req.Registration))
	updates := map[string]interface{}{}

	if req.AircraftType != nil {
		aircraftType := strings.ToUpper(strings.TrimSpace(*req.AircraftType))
		if IsRestrictedWideBody(aircraftType) {
			return nil, fmt.Errorf("%w: %s", pipeline.ErrFleetViolation, constants.MsgFleetViolationA380)
		}
		updates["aircraft_type"] = aircraftType
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Livery != nil {
		updates["livery"] = *req.Livery
	}
	if req.CurrentLocation != nil {
		location := strings.ToUpper(strings.TrimSpace(*req.CurrentLocation))
		if !ValidStationCode(location) {
			return nil, pipeline.Validationf("current location must be a 4-character ICAO code")
		}
		updates["current_location"] = location
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, pipeline.Validationf("no fields to update")
	}

	return s.fleet.Updates(ctx, registration, updates)
}

// Overview builds the maintenance page: per-aircraft condition with full
// repair cost, plus the vault balance and the active thresholds.
func (s *FleetService) Overview(ctx context.Context) (*dtos.MaintenanceOverview, error) {
	cfg := s.cfgSvc.Current(ctx)

	rows, err := s.fleetView.Listing(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]dtos.FleetItem, 0, len(rows))
	for _, row := range rows {
		item := dtos.FleetItem{
			Registration:    row.Registration,
			AircraftType:    row.AircraftType,
			CurrentLocation: row.CurrentLocation,
			Condition:       row.Condition,
			Status:          row.Status,
			TotalHours:      row.TotalHours,
			FlightCount:     row.FlightCount,
			LastService:     row.LastService,
			RepairCost:      (100 - row.Condition) * cfg.RepairRatePerPercent,
			IsGrounded:      row.Status == constants.AircraftGrounded.String(),
		}
		if row.Name != nil {
			item.Name = *row.Name
		}
		if row.GroundedReason != nil {
			item.GroundedReason = *row.GroundedReason
		}
		items = append(items, item)
	}

	balance, err := s.vault.Balance(ctx)
	if err != nil {
		return nil, err
	}

	return &dtos.MaintenanceOverview{
		Fleet:                items,
		AirlineFunds:         balance,
		RepairRatePerPercent: cfg.RepairRatePerPercent,
		GroundedThreshold:    cfg.GroundedThreshold,
	}, nil
}

// Aircraft returns one airframe by registration.
func (s *FleetService) Aircraft(ctx context.Context, registration string) (*gormModels.Aircraft, error) {
	return s.fleet.FindByRegistration(ctx, strings.ToUpper(strings.TrimSpace(registration)))
}
