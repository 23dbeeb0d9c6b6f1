package main

import (
	"context"
	"time"

	"github.com/wrlc/alma-item-checks/internal/metrics"
	"github.com/wrlc/alma-item-checks/internal/queue"
)

// watchQueueDepths samples the in-process queues once per second and pushes
// the depths into the Prometheus gauges.
func watchQueueDepths(ctx context.Context, itemQ *queue.ItemQueue, notifyQ *queue.NotifyQueue, m *metrics.Metrics) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ItemQueueDepth.Set(float64(itemQ.Depth()))
			high, normal, low := notifyQ.Depths()
			m.QueueDepthHigh.Set(float64(high))
			m.QueueDepthNormal.Set(float64(normal))
			m.QueueDepthLow.Set(float64(low))
		}
	}
}
