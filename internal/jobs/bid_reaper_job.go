package jobs

import (
	"context"
	"time"

	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/services"
)

// BidReaperJob sweeps active bids past their TTL into expired. Freshness
// only: reads and consumes re-check expiry themselves, so the system is
// correct even if this job never runs.
type BidReaperJob struct {
	bidService *services.BidService
}

func NewBidReaperJob(bidService *services.BidService) *BidReaperJob {
	return &BidReaperJob{bidService: bidService}
}

// RunScheduled sweeps on the given interval until ctx is done.
func (j *BidReaperJob) RunScheduled(ctx context.Context, interval time.Duration) {
	logging.Info("Bid reaper started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info("Bid reaper shutting down")
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *BidReaperJob) runOnce(ctx context.Context) {
	if _, err := j.bidService.ReapExpired(ctx); err != nil {
		logging.Error("Bid reap sweep failed", "error", err)
	}
}
