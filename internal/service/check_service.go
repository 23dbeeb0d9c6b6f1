package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/repository"
)

// cronParser accepts the standard five-field cron syntax plus descriptors
// like @daily, matching what the scheduler itself runs with.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// CheckService handles check definition CRUD. Rule code is compiled into
// the engine; this service only manages the tunable rows behind it.
type CheckService struct {
	repo   repository.CheckRepository
	logger *zap.Logger
}

func NewCheckService(repo repository.CheckRepository, logger *zap.Logger) *CheckService {
	return &CheckService{repo: repo, logger: logger}
}

func (s *CheckService) Create(ctx context.Context, req *domain.CreateCheckRequest) (*domain.Check, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := validateSchedule(req.Schedule); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	check := &domain.Check{
		Name:         req.Name,
		APIKey:       req.APIKey,
		ReportPath:   req.ReportPath,
		EmailSubject: req.EmailSubject,
		EmailBody:    req.EmailBody,
		Schedule:     req.Schedule,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Enabled != nil {
		check.Enabled = *req.Enabled
	}

	if err := s.repo.Create(ctx, check); err != nil {
		return nil, err
	}
	s.logger.Info("check created",
		zap.Int64("check_id", check.ID),
		zap.String("name", check.Name))
	return check, nil
}

func (s *CheckService) GetByID(ctx context.Context, id int64) (*domain.Check, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CheckService) List(ctx context.Context, page, limit int) ([]*domain.Check, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}

func (s *CheckService) Update(ctx context.Context, id int64, req *domain.UpdateCheckRequest) (*domain.Check, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := validateSchedule(req.Schedule); err != nil {
		return nil, err
	}

	check, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.APIKey != nil {
		check.APIKey = req.APIKey
	}
	if req.ReportPath != nil {
		check.ReportPath = req.ReportPath
	}
	if req.EmailSubject != nil {
		check.EmailSubject = *req.EmailSubject
	}
	if req.EmailBody != nil {
		check.EmailBody = *req.EmailBody
	}
	if req.Schedule != nil {
		check.Schedule = req.Schedule
	}
	if req.Enabled != nil {
		check.Enabled = *req.Enabled
	}

	if err := s.repo.Update(ctx, check); err != nil {
		return nil, err
	}
	return check, nil
}

func (s *CheckService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("check deleted", zap.Int64("check_id", id))
	return nil
}

// validateSchedule rejects cron expressions the scheduler could not run.
// An empty or nil schedule is valid: the check is webhook-only.
func validateSchedule(schedule *string) error {
	if schedule == nil || *schedule == "" {
		return nil
	}
	if _, err := cronParser.Parse(*schedule); err != nil {
		return domain.ErrInvalidSchedule
	}
	return nil
}
