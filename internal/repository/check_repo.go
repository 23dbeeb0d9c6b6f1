package repository

import (
	"context"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// CheckRepository defines persistence operations for check definitions.
// The pgx implementation is in pg_check_repo.go; tests use a hand-written
// mock (mock_check_repo.go).
type CheckRepository interface {
	Create(ctx context.Context, c *domain.Check) error
	GetByID(ctx context.Context, id int64) (*domain.Check, error)
	GetByName(ctx context.Context, name string) (*domain.Check, error)
	List(ctx context.Context, page, limit int) ([]*domain.Check, int, error)
	Update(ctx context.Context, c *domain.Check) error
	Delete(ctx context.Context, id int64) error

	// ListScheduled returns enabled checks carrying a cron schedule.
	ListScheduled(ctx context.Context) ([]*domain.Check, error)
}
