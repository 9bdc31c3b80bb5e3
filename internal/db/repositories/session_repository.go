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

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// DB returns a context-bound handle for fleet status flips that ride along
// with session updates.
func (r *SessionRepository) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *SessionRepository) Create(ctx context.Context, session *gormModels.FlightSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *SessionRepository) FindByID(ctx context.Context, sessionID string) (*gormModels.FlightSession, error) {
	var session gormModels.FlightSession
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pipeline.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Transition moves a session between states in one conditional statement;
// RowsAffected == 0 means the session was not in the expected state. Moves
// absent from the legality table never reach the database.
func (r *SessionRepository) Transition(ctx context.Context, sessionID string, from, to constants.SessionStatus, updates map[string]interface{}) (bool, error) {
	if !constants.CanTransition(from, to) {
		return false, pipeline.ErrInvalidTransition
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&gormModels.FlightSession{}).
		Where("id = ? AND status = ?", sessionID, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Touch records a telemetry sample without changing state.
func (r *SessionRepository) Touch(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&gormModels.FlightSession{}).
		Where("id = ?", sessionID).
		Updates(updates).Error
}

// ListIdle returns non-terminal sessions with no telemetry since cutoff.
func (r *SessionRepository) ListIdle(ctx context.Context, cutoff time.Time) ([]gormModels.FlightSession, error) {
	var sessions []gormModels.FlightSession
	err := r.db.WithContext(ctx).
		Where("status IN ?", []constants.SessionStatus{constants.SessionBooked, constants.SessionInFlight}).
		Where("COALESCE(last_telemetry_at, started_at) <= ?", cutoff).
		Find(&sessions).Error
	return sessions, err
}
