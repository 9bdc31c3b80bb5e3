package workers

import (
	"context"

	"levant-va/operations/internal/common"
	"levant-va/operations/internal/services"
)

type WorkersContainer struct {
	SettleWorker *SettleWorker
}

// InitWorkers starts the background consumers.
func InitWorkers(
	ctx context.Context,
	settleQueue *common.SettleQueueService,
	ledger *services.LedgerService,
) *WorkersContainer {
	settleWorker := NewSettleWorker("settle", settleQueue, ledger)

	go settleWorker.Start(ctx, 3)

	return &WorkersContainer{
		SettleWorker: settleWorker,
	}
}
