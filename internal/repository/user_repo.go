package repository

import (
	"context"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// UserRepository defines persistence operations for recipients and their
// check subscriptions. Subscriptions live here rather than in their own
// repository because every query about them is really a question about
// which users to notify.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, page, limit int) ([]*domain.User, int, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error

	Subscribe(ctx context.Context, userID, checkID int64) (*domain.Subscription, error)
	Unsubscribe(ctx context.Context, subscriptionID int64) error
	ListSubscriptionsByCheck(ctx context.Context, checkID int64) ([]*domain.Subscription, error)

	// ListRecipientsByCheck returns the active users subscribed to a check.
	ListRecipientsByCheck(ctx context.Context, checkID int64) ([]*domain.User, error)
}
