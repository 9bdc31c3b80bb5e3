package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/logging"
	"levant-va/operations/internal/pipeline"
	"levant-va/operations/internal/services"
)

const (
	dequeueBlock   = 5 * time.Second
	errorBackoff   = 1 * time.Second
	staleInterval  = 1 * time.Minute
	staleMinIdle   = 2 * time.Minute
	settleAttempts = 2

	// maxRedeliveries bounds how often a failing event is re-enqueued before
	// the report is left Pending for the review queue.
	maxRedeliveries = 3
)

// settleQueue is the slice of SettleQueueService the worker depends on.
type settleQueue interface {
	EnsureGroup(ctx context.Context) error
	Enqueue(ctx context.Context, event *common.SettleEvent) error
	Dequeue(ctx context.Context, consumerName string, blockTime time.Duration) (*common.SettleEvent, string, error)
	Ack(ctx context.Context, messageID string) error
	ClaimStale(ctx context.Context, consumerName string, minIdle time.Duration) ([]*common.SettleEvent, []string, error)
}

// SettleWorker drains the settle stream and runs the settlement transaction
// for each approved report. Settlement is idempotent (the Pending check sits
// inside the transaction), so redelivered messages are safe to process.
type SettleWorker struct {
	workerID string
	queue    settleQueue
	ledger   *services.LedgerService
}

func NewSettleWorker(workerID string, queue settleQueue, ledger *services.LedgerService) *SettleWorker {
	return &SettleWorker{workerID: workerID, queue: queue, ledger: ledger}
}

// Start runs numWorkers consumers plus a stale-claim loop until ctx is done.
func (w *SettleWorker) Start(ctx context.Context, numWorkers int) error {
	if err := w.queue.EnsureGroup(ctx); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}
	logging.Info("Settle workers starting", "worker_id", w.workerID, "count", numWorkers)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		consumerName := fmt.Sprintf("%s-consumer-%d", w.workerID, i)
		g.Go(func() error {
			w.consume(ctx, consumerName)
			return nil
		})
	}
	g.Go(func() error {
		w.claimStale(ctx)
		return nil
	})
	return g.Wait()
}

func (w *SettleWorker) consume(ctx context.Context, consumerName string) {
	processed := 0
	failed := 0

	for {
		select {
		case <-ctx.Done():
			logging.Info("Settle consumer shutting down",
				"consumer", consumerName, "processed", processed, "failed", failed)
			return
		default:
			event, messageID, err := w.queue.Dequeue(ctx, consumerName, dequeueBlock)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				logging.Error("Settle dequeue failed", "consumer", consumerName, "error", err)
				time.Sleep(errorBackoff)
				continue
			}
			if event == nil {
				continue
			}

			if w.handle(ctx, consumerName, event) {
				processed++
			} else {
				failed++
			}

			if err := w.queue.Ack(ctx, messageID); err != nil {
				logging.Error("Settle ack failed",
					"consumer", consumerName, "message_id", messageID, "error", err)
			}
		}
	}
}

// handle settles one event. A failed event is re-enqueued with its attempt
// counter bumped, so the original message can be acked without losing the
// settlement; past maxRedeliveries the report stays Pending for the review
// queue to pick up.
func (w *SettleWorker) handle(ctx context.Context, consumerName string, event *common.SettleEvent) bool {
	if w.settle(ctx, consumerName, event) {
		return true
	}

	if event.Attempts+1 >= maxRedeliveries {
		logging.Error("Settlement abandoned after repeated failures; report stays pending for review",
			"pirep_id", event.PirepID, "attempts", event.Attempts+1)
		return false
	}
	event.Attempts++
	if err := w.queue.Enqueue(ctx, event); err != nil {
		logging.Error("Settle re-enqueue failed",
			"pirep_id", event.PirepID, "attempts", event.Attempts, "error", err)
	}
	return false
}

// settle runs the ledger transaction with a single retry for transient
// failures. Duplicate events (already-decided reports) count as done.
func (w *SettleWorker) settle(ctx context.Context, consumerName string, event *common.SettleEvent) bool {
	var err error
	for attempt := 0; attempt < settleAttempts; attempt++ {
		_, err = w.ledger.Settle(ctx, event.PirepID, event.ApprovedBy)
		if err == nil {
			return true
		}
		if errors.Is(err, pipeline.ErrInvalidTransition) {
			// Redelivered event for a decided report; nothing left to do.
			return true
		}
		if !errors.Is(err, pipeline.ErrConcurrentModification) {
			break
		}
	}
	logging.Error("Settlement attempt failed",
		"consumer", consumerName, "pirep_id", event.PirepID, "error", err)
	return false
}

// claimStale periodically adopts messages stuck in another consumer's
// pending list, e.g. after a worker crash mid-settlement.
func (w *SettleWorker) claimStale(ctx context.Context) {
	ticker := time.NewTicker(staleInterval)
	defer ticker.Stop()

	consumerName := w.workerID + "-reclaimer"
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			events, ids, err := w.queue.ClaimStale(ctx, consumerName, staleMinIdle)
			if err != nil {
				logging.Error("Stale claim failed", "error", err)
				continue
			}
			for i, event := range events {
				w.handle(ctx, consumerName, event)
				if err := w.queue.Ack(ctx, ids[i]); err != nil {
					logging.Error("Stale ack failed", "message_id", ids[i], "error", err)
				}
			}
		}
	}
}
