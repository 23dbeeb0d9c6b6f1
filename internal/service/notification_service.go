package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/queue"
	"github.com/wrlc/alma-item-checks/internal/repository"
)

const defaultMaxRetries = 3

// NotificationService creates notification records and places them on the
// notify queue. It is the single write path between the check engine (and
// the report scheduler) and the delivery pipeline.
type NotificationService struct {
	repo   repository.NotificationRepository
	queue  *queue.NotifyQueue
	logger *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, q *queue.NotifyQueue, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, queue: q, logger: logger}
}

// RecordIssue persists a notification for an item a check flagged or fixed
// and enqueues it for delivery. Flagged issues need a human, so they ride
// the high-priority tier; fixed ones are informational and go out normal.
func (s *NotificationService) RecordIssue(ctx context.Context, check *domain.Check, item *domain.Item, outcome domain.Outcome, addendum string) (*domain.Notification, error) {
	n := s.newNotification(check, outcome)
	barcode := item.ItemData.Barcode
	n.Barcode = &barcode
	if item.BibData.Title != "" {
		title := item.BibData.Title
		n.Title = &title
	}
	if addendum != "" {
		n.BodyAddendum = &addendum
	}
	return n, s.store(ctx, n)
}

// RecordReport persists a notification referencing an uploaded report blob
// and enqueues it for delivery on the low-priority tier.
func (s *NotificationService) RecordReport(ctx context.Context, check *domain.Check, jobID, container, blob string) (*domain.Notification, error) {
	n := s.newNotification(check, domain.OutcomeReport)
	n.JobID = jobID
	n.ReportContainer = &container
	n.ReportBlob = &blob
	return n, s.store(ctx, n)
}

func (s *NotificationService) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *NotificationService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Notification, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

// Cancel stops delivery of a pending or queued notification. A worker that
// has already picked it up (processing) or finished (sent) cannot be undone.
func (s *NotificationService) Cancel(ctx context.Context, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch n.Status {
	case domain.StatusCancelled:
		return domain.ErrAlreadyCancelled
	case domain.StatusProcessing, domain.StatusSent, domain.StatusSkipped:
		return domain.ErrNotCancellable
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}
	s.logger.Info("notification cancelled", zap.String("notification_id", id))
	return nil
}

func (s *NotificationService) newNotification(check *domain.Check, outcome domain.Outcome) *domain.Notification {
	now := time.Now().UTC()
	return &domain.Notification{
		ID:         uuid.New().String(),
		JobID:      NewJobID(check.Name, now),
		CheckID:    check.ID,
		CheckName:  check.Name,
		Outcome:    outcome,
		Priority:   priorityFor(outcome),
		Status:     domain.StatusPending,
		MaxRetries: defaultMaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// store persists the notification and enqueues it. A full queue is not
// fatal: the record stays pending and the retry worker picks it up later.
func (s *NotificationService) store(ctx context.Context, n *domain.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	err := s.queue.Enqueue(queue.NotifyTask{NotificationID: n.ID, Priority: n.Priority})
	if errors.Is(err, domain.ErrQueueFull) {
		s.logger.Warn("notify queue full, notification left pending",
			zap.String("notification_id", n.ID),
			zap.String("priority", string(n.Priority)))
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, n.ID, domain.StatusQueued); err != nil {
		return err
	}
	n.Status = domain.StatusQueued
	return nil
}

// priorityFor maps an outcome to its queue tier. Unfixed issues need a
// human to act, so they jump the line.
func priorityFor(outcome domain.Outcome) domain.Priority {
	switch outcome {
	case domain.OutcomeFlagged:
		return domain.PriorityHigh
	case domain.OutcomeFixed:
		return domain.PriorityNormal
	default:
		return domain.PriorityLow
	}
}

// NewJobID builds the job identifier embedded in blob names and email
// subjects: job_<check>_<timestamp>_<short-uuid>.
func NewJobID(checkName string, t time.Time) string {
	return fmt.Sprintf("job_%s_%s_%s", checkName, t.Format("20060102150405"), uuid.New().String()[:8])
}
