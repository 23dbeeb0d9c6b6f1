package repository

import (
	"context"
	"time"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// NotificationRepository defines all persistence operations for notifications.
// The pgx implementation is in pg_notification_repo.go.
// Tests use a hand-written mock (mock_notification_repo.go).
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Notification, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	MarkSent(ctx context.Context, id, emailBlob string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id, errMsg string) error
	MarkSkipped(ctx context.Context, id, reason string) error
	ScheduleRetry(ctx context.Context, id string, retryCount int, nextRetry time.Time, errMsg string) error
	Cancel(ctx context.Context, id string) error
	FindDueRetries(ctx context.Context) ([]*domain.Notification, error)
}
