package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/repository"
)

// UserService handles recipient CRUD and check subscriptions.
type UserService struct {
	users  repository.UserRepository
	checks repository.CheckRepository
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, checks repository.CheckRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, checks: checks, logger: logger}
}

func (s *UserService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:     req.Email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, page, limit int) ([]*domain.User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, page, limit)
}

func (s *UserService) Update(ctx context.Context, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// Subscribe links a user to a check so its notifications reach them.
// Both sides must exist; the check lookup gives a clean not-found rather
// than leaking a foreign-key violation.
func (s *UserService) Subscribe(ctx context.Context, req *domain.CreateSubscriptionRequest) (*domain.Subscription, error) {
	if _, err := s.checks.GetByID(ctx, req.CheckID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	sub, err := s.users.Subscribe(ctx, req.UserID, req.CheckID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("subscription created",
		zap.Int64("user_id", req.UserID),
		zap.Int64("check_id", req.CheckID))
	return sub, nil
}

func (s *UserService) Unsubscribe(ctx context.Context, subscriptionID int64) error {
	return s.users.Unsubscribe(ctx, subscriptionID)
}

func (s *UserService) ListSubscriptionsByCheck(ctx context.Context, checkID int64) ([]*domain.Subscription, error) {
	if _, err := s.checks.GetByID(ctx, checkID); err != nil {
		return nil, err
	}
	return s.users.ListSubscriptionsByCheck(ctx, checkID)
}
