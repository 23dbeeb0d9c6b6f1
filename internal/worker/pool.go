package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/checks"
	"github.com/wrlc/alma-item-checks/internal/config"
	"github.com/wrlc/alma-item-checks/internal/queue"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean.
type MetricHooks struct {
	OnSent   func(check string, latency time.Duration)
	OnFailed func(check string)
}

// Pool manages the lifecycle of both worker kinds. Check workers feed the
// engine from the item queue; notify workers drain the notify queue. Both
// kinds share one context so shutdown stops everything together.
type Pool struct {
	checkWorkers  []*CheckWorker
	notifyWorkers []*NotifyWorker
	wg            sync.WaitGroup
}

func NewPool(
	cfg *config.Config,
	itemQ *queue.ItemQueue,
	notifyQ *queue.NotifyQueue,
	engine *checks.Engine,
	deps NotifyWorkerDeps,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	checkWorkers := make([]*CheckWorker, cfg.CheckWorkers)
	for i := range checkWorkers {
		checkWorkers[i] = NewCheckWorker(i, itemQ, engine,
			logger.With(zap.Int("worker_id", i)))
	}

	notifyWorkers := make([]*NotifyWorker, cfg.NotifyWorkers)
	for i := range notifyWorkers {
		notifyWorkers[i] = NewNotifyWorker(i, notifyQ, deps,
			logger.With(zap.Int("worker_id", i)),
			hooks.OnSent,
			hooks.OnFailed)
	}

	return &Pool{checkWorkers: checkWorkers, notifyWorkers: notifyWorkers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.checkWorkers {
		p.wg.Add(1)
		go func(w *CheckWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	for _, w := range p.notifyWorkers {
		p.wg.Add(1)
		go func(w *NotifyWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight work finishes.
func (p *Pool) Wait() {
	p.wg.Wait()
}
