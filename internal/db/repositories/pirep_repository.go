package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"levant-va/operations/internal/constants"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// PirepRepository owns report persistence. Approval flips are conditional on
// the current Pending status so a report transitions exactly once.
type PirepRepository struct {
	db *gorm.DB
}

func NewPirepRepository(db *gorm.DB) *PirepRepository {
	return &PirepRepository{db: db}
}

// DB returns a context-bound handle for decisions outside a settlement
// transaction.
func (r *PirepRepository) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *PirepRepository) Create(ctx context.Context, pirep *gormModels.Pirep) error {
	return r.db.WithContext(ctx).Create(pirep).Error
}

func (r *PirepRepository) FindByID(ctx context.Context, pirepID string) (*gormModels.Pirep, error) {
	var pirep gormModels.Pirep
	err := r.db.WithContext(ctx).Where("id = ?", pirepID).First(&pirep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pirep, nil
}

// HasSameDayReport reports whether the pilot already filed an Approved or
// Pending report for the same station pair within [dayStart, dayEnd). Used
// for the non-blocking duplicate flag.
func (r *PirepRepository) HasSameDayReport(ctx context.Context, pilotID, departure, arrival string, dayStart, dayEnd time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&gormModels.Pirep{}).
		Where("pilot_id = ? AND departure_icao = ? AND arrival_icao = ?", pilotID, departure, arrival).
		Where("approval IN ?", []constants.ApprovalStatus{constants.PirepPending, constants.PirepApproved}).
		Where("submitted_at >= ? AND submitted_at < ?", dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Decide flips a Pending report to a terminal status. db may be a
// transaction handle; settlement passes its own so the flip commits with the
// ledger effects. Returns ErrInvalidTransition when the report was already
// decided.
func (r *PirepRepository) Decide(db *gorm.DB, pirepID string, to constants.ApprovalStatus, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	now := time.Now().UTC()
	updates["approval"] = to
	updates["decided_at"] = now
	updates["updated_at"] = now

	res := db.Model(&gormModels.Pirep{}).
		Where("id = ? AND approval = ?", pirepID, constants.PirepPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var existing gormModels.Pirep
		if err := db.Where("id = ?", pirepID).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			return pipeline.ErrNotFound
		}
		return pipeline.ErrInvalidTransition
	}
	return nil
}

func (r *PirepRepository) ListPending(ctx context.Context) ([]gormModels.Pirep, error) {
	var pireps []gormModels.Pirep
	err := r.db.WithContext(ctx).
		Where("approval = ?", constants.PirepPending).
		Order("submitted_at ASC").
		Find(&pireps).Error
	return pireps, err
}
