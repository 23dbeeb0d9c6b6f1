package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/checks"
	"github.com/wrlc/alma-item-checks/internal/queue"
)

// CheckWorker is a single goroutine that pulls webhook events off the item
// queue and runs them through the check engine.
type CheckWorker struct {
	id     int
	q      *queue.ItemQueue
	engine *checks.Engine
	logger *zap.Logger
}

func NewCheckWorker(id int, q *queue.ItemQueue, engine *checks.Engine, logger *zap.Logger) *CheckWorker {
	return &CheckWorker{id: id, q: q, engine: engine, logger: logger}
}

// Run blocks until ctx is cancelled, processing one event per iteration.
func (w *CheckWorker) Run(ctx context.Context) {
	w.logger.Info("check worker started", zap.Int("id", w.id))
	for {
		task, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("check worker stopping", zap.Int("id", w.id))
			return
		}

		log := w.logger.With(
			zap.String("event_id", task.EventID),
			zap.String("barcode", task.Item.ItemData.Barcode))

		if err := w.engine.Process(ctx, task.Item); err != nil {
			// Webhook events are not durable; Alma will fire again on the
			// next item update, so a failed event is logged and dropped.
			log.Error("item processing failed", zap.Error(err))
			continue
		}
		log.Debug("item processed")
	}
}
