package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/api/handler"
	apimw "github.com/wrlc/alma-item-checks/internal/api/middleware"
	"github.com/wrlc/alma-item-checks/internal/config"
	"github.com/wrlc/alma-item-checks/internal/metrics"
	"github.com/wrlc/alma-item-checks/internal/queue"
	"github.com/wrlc/alma-item-checks/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	cfg *config.Config,
	checkSvc *service.CheckService,
	userSvc *service.UserService,
	notifSvc *service.NotificationService,
	itemQ *queue.ItemQueue,
	notifyQ *queue.NotifyQueue,
	m *metrics.Metrics,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	wh := handler.NewWebhookHandler(cfg.WebhookSecret, itemQ, logger, m.ItemsReceived.Inc)
	ch := handler.NewCheckHandler(checkSvc, logger)
	uh := handler.NewUserHandler(userSvc, logger)
	nh := handler.NewNotificationHandler(notifSvc, logger)
	mh := handler.NewMetricsHandler(itemQ, notifyQ)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Alma posts item-update events here; GET serves the subscription
	// challenge handshake.
	r.Get("/webhooks/alma", wh.Challenge)
	r.Post("/webhooks/alma", wh.Receive)

	r.Route("/api/v1", func(r chi.Router) {
		// Checks
		r.Post("/checks", ch.Create)
		r.Get("/checks", ch.List)
		r.Get("/checks/{id}", ch.GetByID)
		r.Patch("/checks/{id}", ch.Update)
		r.Delete("/checks/{id}", ch.Delete)
		r.Get("/checks/{id}/subscriptions", uh.ListSubscriptions)

		// Users
		r.Post("/users", uh.Create)
		r.Get("/users", uh.List)
		r.Get("/users/{id}", uh.GetByID)
		r.Patch("/users/{id}", uh.Update)
		r.Delete("/users/{id}", uh.Delete)

		// Subscriptions
		r.Post("/subscriptions", uh.Subscribe)
		r.Delete("/subscriptions/{id}", uh.Unsubscribe)

		// Notifications (read + cancel; the pipeline creates them)
		r.Get("/notifications", nh.List)
		r.Get("/notifications/{id}", nh.GetByID)
		r.Delete("/notifications/{id}", nh.Cancel)

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
