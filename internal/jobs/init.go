package jobs

import (
	"context"
	"time"

	"levant-va/operations/internal/services"
)

// InitializeJobs starts the periodic sweeps in the background.
func InitializeJobs(
	ctx context.Context,
	bidService *services.BidService,
	sessionService *services.FlightSessionService,
) {
	bidReaper := NewBidReaperJob(bidService)
	go bidReaper.RunScheduled(ctx, 5*time.Minute)

	sessionSweeper := NewSessionSweeperJob(sessionService)
	go sessionSweeper.RunScheduled(ctx, 10*time.Minute)
}
