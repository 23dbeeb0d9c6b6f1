package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/alma"
	"github.com/wrlc/alma-item-checks/internal/api"
	"github.com/wrlc/alma-item-checks/internal/checks"
	"github.com/wrlc/alma-item-checks/internal/config"
	"github.com/wrlc/alma-item-checks/internal/db"
	"github.com/wrlc/alma-item-checks/internal/metrics"
	"github.com/wrlc/alma-item-checks/internal/notifier"
	"github.com/wrlc/alma-item-checks/internal/queue"
	"github.com/wrlc/alma-item-checks/internal/ratelimiter"
	"github.com/wrlc/alma-item-checks/internal/repository"
	"github.com/wrlc/alma-item-checks/internal/scheduler"
	"github.com/wrlc/alma-item-checks/internal/sender"
	"github.com/wrlc/alma-item-checks/internal/service"
	"github.com/wrlc/alma-item-checks/internal/storage"
	"github.com/wrlc/alma-item-checks/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	itemQ := queue.NewItemQueue()
	notifyQ := queue.NewNotifyQueue()

	checkRepo := repository.NewPgCheckRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)
	notifRepo := repository.NewPgNotificationRepository(pool)

	limiter := ratelimiter.New(cfg.AlmaRateLimit, cfg.SenderRateLimit)
	almaClient := alma.NewThrottled(alma.NewClient(cfg.AlmaBaseURL, cfg.AlmaTimeout), limiter)

	store, err := storage.NewTOSStore(cfg.TOSEndpoint, cfg.TOSRegion, cfg.TOSAccessKey, cfg.TOSSecretKey)
	if err != nil {
		logger.Fatal("failed to create object store", zap.Error(err))
	}
	defer store.Close()

	publisher, err := sender.NewAMQPPublisher(cfg.AMQPURL, cfg.SenderQueue)
	if err != nil {
		logger.Fatal("failed to connect to sender queue", zap.Error(err))
	}
	defer publisher.Close() //nolint:errcheck

	renderer, err := notifier.NewRenderer()
	if err != nil {
		logger.Fatal("failed to load email template", zap.Error(err))
	}

	// ---- services ----
	notifSvc := service.NewNotificationService(notifRepo, notifyQ, logger)
	checkSvc := service.NewCheckService(checkRepo, logger)
	userSvc := service.NewUserService(userRepo, checkRepo, logger)

	// ---- check engine ----
	gate := checks.NewSharedGate(almaClient, logger)
	rules := []checks.Rule{
		checks.NewNoXRule(almaClient, logger),
		checks.NewNoRowTrayRule(logger),
		checks.NewWithdrawnRule(),
	}
	engine := checks.NewEngine(checkRepo, notifSvc, gate, rules, m, logger)

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	onSent, onFailed := m.WorkerHooks()
	workerPool := worker.NewPool(cfg, itemQ, notifyQ, engine, worker.NotifyWorkerDeps{
		Notifications: notifRepo,
		Users:         userRepo,
		Checks:        checkRepo,
		Renderer:      renderer,
		Store:         store,
		Publisher:     publisher,
		Limiter:       limiter,
		SenderBucket:  cfg.SenderBucket,
		DisableEmail:  cfg.DisableEmail,
		Backoff:       cfg.RetryBackoff,
	}, logger, worker.MetricHooks{
		OnSent:   onSent,
		OnFailed: onFailed,
	})
	workerPool.Start(workerCtx)

	retryW := worker.NewRetryWorker(notifRepo, notifyQ, cfg.RetryInterval, logger)
	go retryW.Run(workerCtx)

	sched := scheduler.New(checkRepo, notifSvc, almaClient, store, cfg.ReportBucket, cfg.ScheduleReload, logger)
	go sched.Run(workerCtx)

	// Keep the queue depth gauges current.
	go watchQueueDepths(workerCtx, itemQ, notifyQ, m)

	// ---- HTTP server ----
	router := api.NewRouter(cfg, checkSvc, userSvc, notifSvc, itemQ, notifyQ, m, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests (and with them, new webhook events).
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal all workers and the scheduler to stop.
	cancelWorkers()

	// 3. Wait for in-flight workers to finish their current task.
	workerPool.Wait()

	logger.Info("server stopped cleanly")
}
