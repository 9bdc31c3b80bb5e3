package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"levant-va/operations/internal/constants"
	"levant-va/operations/internal/models/entities"
	gormModels "levant-va/operations/internal/models/gorm"
	"levant-va/operations/internal/pipeline"
)

// BidRepository owns the bid lifecycle. Status transitions are single
// conditional UPDATE statements so per-pilot ordering holds without locks,
// and a partial unique index keeps at most one active bid per pilot.
type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

// EnsureActiveIndex creates the partial unique index enforcing the
// single-active-bid invariant. Supported by both Postgres and SQLite.
func EnsureActiveIndex(db *gorm.DB) error {
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_one_active_per_pilot
		 ON bids (pilot_id) WHERE status = 'active'`,
	).Error
}

func (r *BidRepository) Create(ctx context.Context, bid *gormModels.Bid) error {
	err := r.db.WithContext(ctx).Create(bid).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pipeline.ErrDuplicateBid
	}
	return err
}

func (r *BidRepository) FindByID(ctx context.Context, bidID string) (*gormModels.Bid, error) {
	var bid gormModels.Bid
	err := r.db.WithContext(ctx).Where("id = ?", bidID).First(&bid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *BidRepository) FindActiveByPilot(ctx context.Context, pilotID string) (*gormModels.Bid, error) {
	var bid gormModels.Bid
	err := r.db.WithContext(ctx).
		Where("pilot_id = ? AND status = ?", pilotID, constants.BidActive).
		First(&bid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// Transition moves a bid from one status to another in a single conditional
// statement. RowsAffected == 0 means another writer got there first.
func (r *BidRepository) Transition(ctx context.Context, bidID string, from, to constants.BidStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&gormModels.Bid{}).
		Where("id = ? AND status = ?", bidID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ExpireDue sweeps all active bids past their TTL. Freshness only; every
// read and consume re-checks expiry lazily.
func (r *BidRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&gormModels.Bid{}).
		Where("status = ? AND expires_at <= ?", constants.BidActive, now).
		Updates(map[string]interface{}{
			"status":     constants.BidExpired,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// BidBoardRepository serves the dispatch bid board through sqlx.
type BidBoardRepository struct {
	db *sqlx.DB
}

func NewBidBoardRepository(db *sqlx.DB) *BidBoardRepository {
	return &BidBoardRepository{db: db}
}

func (r *BidBoardRepository) ActiveBoard(ctx context.Context) ([]entities.BidBoardRow, error) {
	var rows []entities.BidBoardRow
	if err := r.db.SelectContext(ctx, &rows, constants.GetActiveBidBoard); err != nil {
		return nil, err
	}
	return rows, nil
}
