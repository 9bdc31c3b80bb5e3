package jobs

import (
	"context"
	"time"

	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/services"
)

// SessionSweeperJob abandons sessions whose telemetry heartbeat went silent
// past the idle window and releases their booked aircraft.
type SessionSweeperJob struct {
	sessionService *services.FlightSessionService
}

func NewSessionSweeperJob(sessionService *services.FlightSessionService) *SessionSweeperJob {
	return &SessionSweeperJob{sessionService: sessionService}
}

// RunScheduled sweeps on the given interval until ctx is done.
func (j *SessionSweeperJob) RunScheduled(ctx context.Context, interval time.Duration) {
	logging.Info("Session sweeper started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("Session sweeper shutting down")
			return
		case <-ticker.C:
			abandoned, err := j.sessionService.AbandonIdle(ctx)
			if err != nil {
				logging.Error("Session sweep failed", "error", err)
				continue
			}
			if abandoned > 0 {
				logging.Info("Idle sessions abandoned", "count", abandoned)
			}
		}
	}
}
