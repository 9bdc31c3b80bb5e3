package services

import (
	"context"

	"levant-va/operations/internal/common"
)

// SettleDispatcher hands an approved report to the Economics Ledger. The
// production implementation enqueues onto the Redis settle stream consumed
// by the worker pool; InlineSettleDispatcher settles synchronously for
// single-process deployments.
type SettleDispatcher interface {
	Dispatch(ctx context.Context, event *common.SettleEvent) error
}

// QueueSettleDispatcher publishes settle events to the Redis stream.
type QueueSettleDispatcher struct {
	queue *common.SettleQueueService
}

func NewQueueSettleDispatcher(queue *common.SettleQueueService) *QueueSettleDispatcher {
	return &QueueSettleDispatcher{queue: queue}
}

func (d *QueueSettleDispatcher) Dispatch(ctx context.Context, event *common.SettleEvent) error {
	return d.queue.Enqueue(ctx, event)
}

// InlineSettleDispatcher invokes the ledger in the request goroutine.
type InlineSettleDispatcher struct {
	ledger *LedgerService
}

func NewInlineSettleDispatcher(ledger *LedgerService) *InlineSettleDispatcher {
	return &InlineSettleDispatcher{ledger: ledger}
}

func (d *InlineSettleDispatcher) Dispatch(ctx context.Context, event *common.SettleEvent) error {
	_, err := d.ledger.Settle(ctx, event.PirepID, event.ApprovedBy)
	return err
}
