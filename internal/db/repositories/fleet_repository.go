package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"levant-va/operations/internal/config"
	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/models/entities"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// maxCasRetries bounds the internal retry on optimistic-concurrency conflicts
// before ErrConcurrentModification surfaces to the caller.
const maxCasRetries = 3

// FleetRepository owns aircraft identity, condition and status. Condition
// updates are compare-and-swap on a version column so two concurrent
// settlements can never both apply against the same read.
type FleetRepository struct {
	db *gorm.DB
}

func NewFleetRepository(db *gorm.DB) *FleetRepository {
	return &FleetRepository{db: db}
}

func (r *FleetRepository) FindByRegistration(ctx context.Context, registration string) (*gormModels.Aircraft, error) {
	var aircraft gormModels.Aircraft
	err := r.db.WithContext(ctx).Where("registration = ?", registration).First(&aircraft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &aircraft, nil
}

// FindAvailable returns bookable aircraft at a station: Available status,
// matching type, condition at or above the grounding threshold.
func (r *FleetRepository) FindAvailable(ctx context.Context, location, aircraftType string, threshold float64) ([]gormModels.Aircraft, error) {
	var aircraft []gormModels.Aircraft
	err := r.db.WithContext(ctx).
		Where("current_location = ? AND aircraft_type = ? AND status = ? AND condition >= ? AND is_active = ?",
			location, aircraftType, constants.AircraftAvailable, threshold, true).
		Order("condition DESC").
		Find(&aircraft).Error
	if err != nil {
		return nil, err
	}
	return aircraft, nil
}

func (r *FleetRepository) Create(ctx context.Context, aircraft *gormModels.Aircraft) error {
	err := r.db.WithContext(ctx).Create(aircraft).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pipeline.Validationf("aircraft with registration %s already exists", aircraft.Registration)
	}
	return err
}

func (r *FleetRepository) Updates(ctx context.Context, registration string, updates map[string]interface{}) (*gormModels.Aircraft, error) {
	res := r.db.WithContext(ctx).Model(&gormModels.Aircraft{}).
		Where("registration = ?", registration).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, pipeline.ErrNotFound
	}
	return r.FindByRegistration(ctx, registration)
}

// SetStatus moves an aircraft between operational states guarded by its
// current status, e.g. Available -> Booked when a session starts.
func (r *FleetRepository) SetStatus(db *gorm.DB, registration string, from, to constants.AircraftStatus) error {
	res := db.Model(&gormModels.Aircraft{}).
		Where("registration = ? AND status = ?", registration, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pipeline.ErrInvalidTransition
	}
	return nil
}

// ApplyConditionDelta atomically adjusts condition (clamped to [0,100]) and
// recomputes status. The update is a CAS on the version column with a small
// bounded retry. extra fields (hours, flight count, location) join the same
// write; releaseTo, when non-nil, is the status applied unless the aircraft
// grounds (grounding always wins). Clearing a grounded aircraft requires the
// post-update condition to pass threshold plus the hysteresis margin.
func (r *FleetRepository) ApplyConditionDelta(
	db *gorm.DB,
	cfg config.MaintenanceConfig,
	registration string,
	delta float64,
	extra map[string]interface{},
	releaseTo *constants.AircraftStatus,
) (*gormModels.Aircraft, error) {
	for attempt := 0; attempt < maxCasRetries; attempt++ {
		var aircraft gormModels.Aircraft
		err := db.Where("registration = ?", registration).First(&aircraft).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pipeline.ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		newCondition := aircraft.Condition + delta
		if newCondition < 0 {
			newCondition = 0
		}
		if newCondition > 100 {
			newCondition = 100
		}

		newStatus, groundedReason := nextStatus(aircraft, newCondition, cfg, releaseTo)

		updates := map[string]interface{}{
			"condition":       newCondition,
			"status":          newStatus,
			"grounded_reason": groundedReason,
			"version":         aircraft.Version + 1,
			"updated_at":      time.Now().UTC(),
		}
		for k, v := range extra {
			updates[k] = v
		}

		res := db.Model(&gormModels.Aircraft{}).
			Where("registration = ? AND version = ?", registration, aircraft.Version).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			var updated gormModels.Aircraft
			if err := db.Where("registration = ?", registration).First(&updated).Error; err != nil {
				return nil, err
			}
			return &updated, nil
		}
		// Stale read; another writer advanced the version. Retry.
	}
	return nil, pipeline.ErrConcurrentModification
}

// nextStatus enforces the grounding invariant: Grounded iff condition below
// threshold, with hysteresis on the way back up.
func nextStatus(
	aircraft gormModels.Aircraft,
	newCondition float64,
	cfg config.MaintenanceConfig,
	releaseTo *constants.AircraftStatus,
) (constants.AircraftStatus, *string) {
	if newCondition < cfg.GroundedThreshold {
		reason := "condition below grounding threshold"
		return constants.AircraftGrounded, &reason
	}

	if aircraft.Status == constants.AircraftGrounded {
		if newCondition >= cfg.GroundedThreshold+cfg.HysteresisMargin {
			return constants.AircraftAvailable, nil
		}
		reason := aircraft.GroundedReason
		return constants.AircraftGrounded, reason
	}

	if releaseTo != nil {
		return *releaseTo, nil
	}
	return aircraft.Status, nil
}

// FleetViewRepository serves the maintenance list view through sqlx.
type FleetViewRepository struct {
	db *sqlx.DB
}

func NewFleetViewRepository(db *sqlx.DB) *FleetViewRepository {
	return &FleetViewRepository{db: db}
}

func (r *FleetViewRepository) Listing(ctx context.Context) ([]entities.FleetRow, error) {
	var rows []entities.FleetRow
	if err := r.db.SelectContext(ctx, &rows, constants.GetFleetListing); err != nil {
		return nil, err
	}
	return rows, nil
}
