package checks

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/repository"
	"github.com/wrlc/alma-item-checks/internal/service"
)

// gateCheckName is the check row carrying the API key the shared gate uses
// to confirm an item is still active.
const gateCheckName = "ScfShared"

// EngineMetrics is the slice of the metrics registry the engine reports to.
type EngineMetrics interface {
	CheckEvaluated(check string, outcome domain.Outcome)
	FixApplied(check string)
}

// Engine runs every enabled rule against an incoming item. Rules are
// independent: one item can produce several notifications, and a rule
// error never stops the rules after it.
type Engine struct {
	checks  repository.CheckRepository
	notifs  *service.NotificationService
	gate    *SharedGate
	rules   []Rule
	metrics EngineMetrics
	logger  *zap.Logger
}

func NewEngine(
	checks repository.CheckRepository,
	notifs *service.NotificationService,
	gate *SharedGate,
	rules []Rule,
	metrics EngineMetrics,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		checks:  checks,
		notifs:  notifs,
		gate:    gate,
		rules:   rules,
		metrics: metrics,
		logger:  logger,
	}
}

// Process gates the item and evaluates each rule in order, recording a
// notification for every issue found. The returned error covers only the
// gate; per-rule failures are logged and counted but do not propagate,
// because webhook events are not durable and a retry would re-run rules
// that already succeeded.
func (e *Engine) Process(ctx context.Context, item *domain.Item) error {
	gateCheck, err := e.checks.GetByName(ctx, gateCheckName)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("gate check %q is not configured", gateCheckName)
	}
	if err != nil {
		return err
	}
	if !gateCheck.Enabled {
		e.logger.Debug("gate check disabled, skipping item",
			zap.String("barcode", item.ItemData.Barcode))
		return nil
	}

	fresh, err := e.gate.Filter(ctx, gateCheck, item)
	if err != nil {
		return err
	}
	if fresh == nil {
		return nil
	}

	for _, rule := range e.rules {
		e.runRule(ctx, rule, fresh)
	}
	return nil
}

func (e *Engine) runRule(ctx context.Context, rule Rule, item *domain.Item) {
	log := e.logger.With(
		zap.String("check", rule.Name()),
		zap.String("barcode", item.ItemData.Barcode))

	check, err := e.checks.GetByName(ctx, rule.Name())
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn("check row missing, rule skipped")
		return
	}
	if err != nil {
		log.Error("load check failed", zap.Error(err))
		return
	}
	if !check.Enabled {
		return
	}

	result, err := rule.Evaluate(ctx, check, item)
	if err != nil {
		log.Error("rule evaluation failed", zap.Error(err))
		return
	}
	if result == nil {
		return
	}

	e.metrics.CheckEvaluated(check.Name, result.Outcome)
	if result.Outcome == domain.OutcomeFixed {
		e.metrics.FixApplied(check.Name)
	}

	if _, err := e.notifs.RecordIssue(ctx, check, item, result.Outcome, result.Addendum); err != nil {
		log.Error("record notification failed", zap.Error(err))
		return
	}
	log.Info("issue recorded", zap.String("outcome", string(result.Outcome)))
}
