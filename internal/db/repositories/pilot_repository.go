package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

type PilotRepository struct {
	db *gorm.DB
}

func NewPilotRepository(db *gorm.DB) *PilotRepository {
	return &PilotRepository{db: db}
}

func (r *PilotRepository) FindByID(ctx context.Context, pilotID string) (*gormModels.Pilot, error) {
	var pilot gormModels.Pilot
	err := r.db.WithContext(ctx).Where("id = ?", pilotID).First(&pilot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pilot, nil
}

func (r *PilotRepository) Create(ctx context.Context, pilot *gormModels.Pilot) error {
	return r.db.WithContext(ctx).Create(pilot).Error
}

// Credit applies balance and hours as atomic SQL increments, never
// read-modify-write. db may be a settlement transaction handle.
func (r *PilotRepository) Credit(db *gorm.DB, pilotID string, amount, hours float64, location string) error {
	updates := map[string]interface{}{
		"balance":     gorm.Expr("balance + ?", amount),
		"total_hours": gorm.Expr("total_hours + ?", hours),
	}
	if location != "" {
		updates["current_location"] = location
	}

	res := db.Model(&gormModels.Pilot{}).
		Where("id = ?", pilotID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pipeline.ErrNotFound
	}
	return nil
}
