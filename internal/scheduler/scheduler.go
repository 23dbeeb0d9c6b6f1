package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/alma"
	"github.com/wrlc/alma-item-checks/internal/repository"
	"github.com/wrlc/alma-item-checks/internal/service"
	"github.com/wrlc/alma-item-checks/internal/storage"
)

// ReportRunner is the slice of the Alma client the scheduler needs.
type ReportRunner interface {
	RunReport(ctx context.Context, apiKey, path string) (*alma.Report, error)
}

// Scheduler runs the cron-driven report checks. Each enabled check row with
// a schedule gets a cron entry; firing it runs the check's analytics report
// and, when the report returns rows, records a notification pointing at the
// uploaded row data.
//
// Schedules live in the database so operators can retune them without a
// deploy. The scheduler re-reads the checks table on a fixed interval and
// rebuilds its cron entries when anything changed.
type Scheduler struct {
	checks       repository.CheckRepository
	notifs       *service.NotificationService
	reports      ReportRunner
	store        storage.BlobStore
	reportBucket string
	reload       time.Duration
	logger       *zap.Logger

	cron    *cron.Cron
	entries map[string]string // check name -> schedule currently registered
}

func New(
	checks repository.CheckRepository,
	notifs *service.NotificationService,
	reports ReportRunner,
	store storage.BlobStore,
	reportBucket string,
	reload time.Duration,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		checks:       checks,
		notifs:       notifs,
		reports:      reports,
		store:        store,
		reportBucket: reportBucket,
		reload:       reload,
		logger:       logger,
		entries:      map[string]string{},
	}
}

// Run loads the schedules, starts cron, and reloads on the configured
// interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.rebuild(ctx)

	ticker := time.NewTicker(s.reload)
	defer ticker.Stop()

	s.logger.Info("scheduler started", zap.Duration("reload_interval", s.reload))

	for {
		select {
		case <-ctx.Done():
			if s.cron != nil {
				// Stop returns a context that completes when running jobs finish.
				<-s.cron.Stop().Done()
			}
			s.logger.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.rebuild(ctx)
		}
	}
}

// rebuild replaces the cron instance when the set of scheduled checks in
// the database no longer matches what is registered. Replacing wholesale is
// simpler than diffing entry IDs and the set is tiny.
func (s *Scheduler) rebuild(ctx context.Context) {
	scheduled, err := s.checks.ListScheduled(ctx)
	if err != nil {
		s.logger.Error("load scheduled checks failed", zap.Error(err))
		return
	}

	desired := map[string]string{}
	for _, check := range scheduled {
		desired[check.Name] = *check.Schedule
	}
	if !changed(s.entries, desired) {
		return
	}

	next := cron.New()
	for _, check := range scheduled {
		name := check.Name
		if _, err := next.AddFunc(*check.Schedule, func() { s.runReportCheck(ctx, name) }); err != nil {
			s.logger.Error("invalid schedule, check not registered",
				zap.String("check", name),
				zap.String("schedule", *check.Schedule),
				zap.Error(err))
			delete(desired, name)
			continue
		}
		s.logger.Info("scheduled check registered",
			zap.String("check", name),
			zap.String("schedule", *check.Schedule))
	}

	if s.cron != nil {
		s.cron.Stop()
	}
	next.Start()
	s.cron = next
	s.entries = desired
}

// runReportCheck executes one scheduled check: run its analytics report,
// upload the rows, and record a notification referencing the blob. The
// check row is re-read at fire time so a key or path change takes effect
// without waiting for a reload.
func (s *Scheduler) runReportCheck(ctx context.Context, name string) {
	log := s.logger.With(zap.String("check", name))

	check, err := s.checks.GetByName(ctx, name)
	if err != nil {
		log.Error("load check failed", zap.Error(err))
		return
	}
	if !check.Enabled {
		return
	}
	if check.APIKey == nil || check.ReportPath == nil {
		log.Error("check has no API key or report path, cannot run")
		return
	}

	jobID := service.NewJobID(check.Name, time.Now().UTC())
	log = log.With(zap.String("job_id", jobID))

	report, err := s.reports.RunReport(ctx, *check.APIKey, *check.ReportPath)
	if err != nil {
		log.Error("analytics report failed", zap.Error(err))
		return
	}
	if len(report.Rows) == 0 {
		log.Info("report ran clean, nothing to notify")
		return
	}

	blobName, err := s.uploadReport(ctx, jobID, report)
	if err != nil {
		log.Error("report upload failed", zap.Error(err))
		return
	}

	if _, err := s.notifs.RecordReport(ctx, check, jobID, s.reportBucket, blobName); err != nil {
		log.Error("record report notification failed", zap.Error(err))
		return
	}
	log.Info("report notification recorded",
		zap.Int("rows", len(report.Rows)),
		zap.String("blob", blobName))
}

func (s *Scheduler) uploadReport(ctx context.Context, jobID string, report *alma.Report) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	blobName := jobID + ".json"
	if err := s.store.Upload(ctx, s.reportBucket, blobName, data, "application/json"); err != nil {
		return "", err
	}
	return blobName, nil
}

func changed(current, desired map[string]string) bool {
	if len(current) != len(desired) {
		return true
	}
	for name, schedule := range desired {
		if current[name] != schedule {
			return true
		}
	}
	return false
}
