package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/alma"
	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/notifier"
	"github.com/wrlc/alma-item-checks/internal/queue"
	"github.com/wrlc/alma-item-checks/internal/ratelimiter"
	"github.com/wrlc/alma-item-checks/internal/repository"
	"github.com/wrlc/alma-item-checks/internal/sender"
	"github.com/wrlc/alma-item-checks/internal/storage"
)

// NotifyWorker delivers one notification at a time: it resolves the
// recipients, renders the email, uploads the payload to the sender bucket
// and publishes a reference for the external email-sending service.
type NotifyWorker struct {
	id           int
	q            *queue.NotifyQueue
	notifs       repository.NotificationRepository
	users        repository.UserRepository
	checks       repository.CheckRepository
	renderer     *notifier.Renderer
	store        storage.BlobStore
	publisher    sender.Publisher
	limiter      *ratelimiter.Limiters
	senderBucket string
	disableEmail bool
	backoff      []time.Duration
	logger       *zap.Logger

	// Hooks for metrics — injected by the pool so the worker stays metrics-agnostic.
	onSent   func(check string, latency time.Duration)
	onFailed func(check string)
}

type NotifyWorkerDeps struct {
	Notifications repository.NotificationRepository
	Users         repository.UserRepository
	Checks        repository.CheckRepository
	Renderer      *notifier.Renderer
	Store         storage.BlobStore
	Publisher     sender.Publisher
	Limiter       *ratelimiter.Limiters
	SenderBucket  string
	DisableEmail  bool
	Backoff       []time.Duration
}

// NewNotifyWorker constructs a worker. onSent and onFailed are optional (nil = no-op).
func NewNotifyWorker(
	id int,
	q *queue.NotifyQueue,
	deps NotifyWorkerDeps,
	logger *zap.Logger,
	onSent func(string, time.Duration),
	onFailed func(string),
) *NotifyWorker {
	if onSent == nil {
		onSent = func(string, time.Duration) {}
	}
	if onFailed == nil {
		onFailed = func(string) {}
	}
	return &NotifyWorker{
		id:           id,
		q:            q,
		notifs:       deps.Notifications,
		users:        deps.Users,
		checks:       deps.Checks,
		renderer:     deps.Renderer,
		store:        deps.Store,
		publisher:    deps.Publisher,
		limiter:      deps.Limiter,
		senderBucket: deps.SenderBucket,
		disableEmail: deps.DisableEmail,
		backoff:      deps.Backoff,
		logger:       logger,
		onSent:       onSent,
		onFailed:     onFailed,
	}
}

// Run blocks until ctx is cancelled, processing one notification per iteration.
func (w *NotifyWorker) Run(ctx context.Context) {
	w.logger.Info("notify worker started", zap.Int("id", w.id))
	for {
		task, ok := w.q.Dequeue(ctx)
		if !ok {
			w.logger.Info("notify worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, task)
	}
}

func (w *NotifyWorker) process(ctx context.Context, task queue.NotifyTask) {
	start := time.Now()
	log := w.logger.With(zap.String("notification_id", task.NotificationID))

	n, err := w.notifs.GetByID(ctx, task.NotificationID)
	if err != nil {
		log.Error("failed to fetch notification", zap.Error(err))
		return
	}
	log = log.With(zap.String("job_id", n.JobID), zap.String("check", n.CheckName))

	// A cancellation between enqueue and processing time is valid; skip silently.
	if n.Status == domain.StatusCancelled {
		log.Debug("notification was cancelled before processing")
		return
	}

	if err := w.notifs.UpdateStatus(ctx, n.ID, domain.StatusProcessing); err != nil {
		log.Error("failed to mark as processing", zap.Error(err))
		return
	}

	check, err := w.checks.GetByID(ctx, n.CheckID)
	if err != nil {
		w.handleFailure(ctx, n, fmt.Errorf("load check %d: %w", n.CheckID, err))
		return
	}

	recipients, err := w.users.ListRecipientsByCheck(ctx, n.CheckID)
	if err != nil {
		w.handleFailure(ctx, n, fmt.Errorf("list recipients: %w", err))
		return
	}
	if len(recipients) == 0 {
		if err := w.notifs.MarkSkipped(ctx, n.ID, "no active subscribers"); err != nil {
			log.Error("failed to mark as skipped", zap.Error(err))
		}
		log.Info("no subscribers, notification skipped")
		return
	}

	reportTable, err := w.reportTable(ctx, n, check)
	if err != nil {
		w.handleFailure(ctx, n, err)
		return
	}

	addendum := ""
	if n.BodyAddendum != nil {
		addendum = *n.BodyAddendum
	}
	if addendum == "" && reportTable == "" {
		if err := w.notifs.MarkSkipped(ctx, n.ID, "nothing to send"); err != nil {
			log.Error("failed to mark as skipped", zap.Error(err))
		}
		log.Info("no addendum or report data, notification skipped")
		return
	}

	body, err := w.renderer.Render(check, addendum, reportTable, n.JobID)
	if err != nil {
		w.handleFailure(ctx, n, err)
		return
	}

	email := notifier.Email{
		Subject: check.EmailSubject,
		HTML:    body,
	}
	for _, u := range recipients {
		email.To = append(email.To, u.Email)
	}

	if w.disableEmail {
		log.Info("email sending disabled, marking sent without delivery")
		if err := w.notifs.MarkSent(ctx, n.ID, "", time.Now().UTC()); err != nil {
			log.Error("failed to mark as sent", zap.Error(err))
		}
		return
	}

	blobName, err := w.handoff(ctx, n, email)
	if err != nil {
		w.handleFailure(ctx, n, err)
		return
	}

	elapsed := time.Since(start)
	if err := w.notifs.MarkSent(ctx, n.ID, blobName, time.Now().UTC()); err != nil {
		log.Error("failed to mark as sent", zap.Error(err))
		return
	}

	// The report rows are embedded in the delivered email; the staging blob
	// is spent. Cleanup is best-effort, a leftover blob only costs storage.
	if n.ReportContainer != nil && n.ReportBlob != nil {
		if err := w.store.Delete(ctx, *n.ReportContainer, *n.ReportBlob); err != nil {
			log.Warn("could not delete report blob",
				zap.String("blob", *n.ReportBlob), zap.Error(err))
		}
	}

	w.onSent(n.CheckName, elapsed)
	log.Info("notification handed to sender",
		zap.String("blob", blobName),
		zap.Int("recipients", len(email.To)),
		zap.Duration("latency", elapsed))
}

// reportTable downloads the report rows blob, if the notification references
// one, and renders it as an HTML table for the email body.
func (w *NotifyWorker) reportTable(ctx context.Context, n *domain.Notification, check *domain.Check) (string, error) {
	if n.ReportContainer == nil || n.ReportBlob == nil {
		return "", nil
	}

	data, err := w.store.Download(ctx, *n.ReportContainer, *n.ReportBlob)
	if err != nil {
		return "", fmt.Errorf("download report blob %s/%s: %w", *n.ReportContainer, *n.ReportBlob, err)
	}

	var report alma.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return "", fmt.Errorf("decode report blob %s: %w", *n.ReportBlob, err)
	}
	return notifier.ReportTable(check.EmailSubject, &report), nil
}

// handoff uploads the rendered email to the sender bucket and publishes the
// blob reference for the external sender. Both steps count against the
// sender rate limit.
func (w *NotifyWorker) handoff(ctx context.Context, n *domain.Notification, email notifier.Email) (string, error) {
	payload, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}

	if err := w.limiter.Wait(ctx, ratelimiter.ResourceSender); err != nil {
		return "", err
	}

	blobName := fmt.Sprintf("%s-%s.json", n.JobID, uuid.New().String())
	if err := w.store.Upload(ctx, w.senderBucket, blobName, payload, "application/json"); err != nil {
		return "", fmt.Errorf("upload email blob: %w", err)
	}

	ref := sender.SendRef{JobID: n.JobID, Container: w.senderBucket, Blob: blobName}
	if err := w.publisher.Publish(ctx, ref); err != nil {
		return "", fmt.Errorf("publish send reference: %w", err)
	}
	return blobName, nil
}

// handleFailure either schedules a retry (if retries remain) or marks the
// notification as permanently failed.
//
// Retry schedule uses exponential backoff:
//
//	attempt 0 → backoff[0]  (default 5 s)
//	attempt 1 → backoff[1]  (default 30 s)
//	attempt 2 → backoff[2]  (default 120 s)
//	attempt N ≥ len(backoff) → last backoff entry (clamped)
func (w *NotifyWorker) handleFailure(ctx context.Context, n *domain.Notification, cause error) {
	w.logger.Warn("notification delivery failed",
		zap.String("notification_id", n.ID),
		zap.Int("retry_count", n.RetryCount),
		zap.Error(cause))

	if n.RetryCount >= n.MaxRetries {
		if err := w.notifs.MarkFailed(ctx, n.ID, cause.Error()); err != nil {
			w.logger.Error("failed to mark notification as failed",
				zap.String("id", n.ID), zap.Error(err))
		}
		w.onFailed(n.CheckName)
		return
	}

	idx := n.RetryCount
	if idx >= len(w.backoff) {
		idx = len(w.backoff) - 1
	}
	nextRetry := time.Now().UTC().Add(w.backoff[idx])

	if err := w.notifs.ScheduleRetry(ctx, n.ID, n.RetryCount+1, nextRetry, cause.Error()); err != nil {
		w.logger.Error("failed to schedule retry",
			zap.String("id", n.ID), zap.Error(err))
	}
}
