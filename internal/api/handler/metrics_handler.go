package handler

import (
	"net/http"

	"github.com/wrlc/alma-item-checks/internal/queue"
)

// MetricsHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type MetricsHandler struct {
	items  *queue.ItemQueue
	notify *queue.NotifyQueue
}

func NewMetricsHandler(items *queue.ItemQueue, notify *queue.NotifyQueue) *MetricsHandler {
	return &MetricsHandler{items: items, notify: notify}
}

// GetMetrics handles GET /api/v1/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	high, normal, low := h.notify.Depths()
	respondJSON(w, http.StatusOK, map[string]any{
		"item_queue_depth": h.items.Depth(),
		"notify_queue_depth": map[string]int{
			"high":   high,
			"normal": normal,
			"low":    low,
			"total":  high + normal + low,
		},
	})
}
