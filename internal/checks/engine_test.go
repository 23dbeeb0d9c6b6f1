package checks_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/checks"
	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/queue"
	"github.com/wrlc/alma-item-checks/internal/repository"
	"github.com/wrlc/alma-item-checks/internal/service"
)

type countingMetrics struct {
	evaluated map[string]domain.Outcome
	fixes     int
}

func (c *countingMetrics) CheckEvaluated(check string, outcome domain.Outcome) {
	if c.evaluated == nil {
		c.evaluated = map[string]domain.Outcome{}
	}
	c.evaluated[check] = outcome
}

func (c *countingMetrics) FixApplied(string) { c.fixes++ }

type engineFixture struct {
	engine    *checks.Engine
	checkRepo *repository.MockCheckRepository
	notifRepo *repository.MockNotificationRepository
	api       *fakeAlma
	metrics   *countingMetrics
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		checkRepo: repository.NewMockCheckRepository(),
		notifRepo: repository.NewMockNotificationRepository(),
		api:       &fakeAlma{},
		metrics:   &countingMetrics{},
	}

	ctx := context.Background()
	for _, name := range []string{"ScfShared", "ScfNoX", "SCFNoRowTray", "SCFWithdrawn"} {
		check := &domain.Check{Name: name, APIKey: apiKey(), EmailSubject: name, Enabled: true}
		if err := f.checkRepo.Create(ctx, check); err != nil {
			t.Fatal(err)
		}
	}

	notifSvc := service.NewNotificationService(f.notifRepo, queue.NewNotifyQueue(), zap.NewNop())
	gate := checks.NewSharedGate(f.api, zap.NewNop())
	rules := []checks.Rule{
		checks.NewNoXRule(f.api, zap.NewNop()),
		checks.NewNoRowTrayRule(zap.NewNop()),
		checks.NewWithdrawnRule(),
	}
	f.engine = checks.NewEngine(f.checkRepo, notifSvc, gate, rules, f.metrics, zap.NewNop())
	return f
}

func TestEngine_CleanItemProducesNothing(t *testing.T) {
	f := newEngineFixture(t)
	f.api.item = sharedItem()

	if err := f.engine.Process(context.Background(), sharedItem()); err != nil {
		t.Fatal(err)
	}
	if len(f.notifRepo.All()) != 0 {
		t.Fatalf("clean item should produce no notifications, got %d", len(f.notifRepo.All()))
	}
}

// TestEngine_OneItemSeveralIssues verifies that rules are independent: a
// barcode missing its X that is also marked withdrawn yields a fix and a
// flag from the same event.
func TestEngine_OneItemSeveralIssues(t *testing.T) {
	f := newEngineFixture(t)

	fresh := sharedItem()
	fresh.ItemData.Barcode = "31234567"
	fresh.ItemData.AlternativeCallNumber = "WD"
	fresh.ItemData.InternalNote1 = "WD" // suppresses the row/tray flag
	f.api.item = fresh

	if err := f.engine.Process(context.Background(), sharedItem()); err != nil {
		t.Fatal(err)
	}

	all := f.notifRepo.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(all))
	}

	byOutcome := map[domain.Outcome]bool{}
	for _, n := range all {
		byOutcome[n.Outcome] = true
	}
	if !byOutcome[domain.OutcomeFixed] || !byOutcome[domain.OutcomeFlagged] {
		t.Fatalf("expected one fixed and one flagged, got %+v", byOutcome)
	}

	if f.api.updated == nil || f.api.updated.ItemData.Barcode != "31234567X" {
		t.Fatal("barcode fix should be written back to Alma")
	}
	if f.metrics.fixes != 1 {
		t.Fatalf("expected 1 fix counted, got %d", f.metrics.fixes)
	}
}

func TestEngine_GatedItemNeverReachesRules(t *testing.T) {
	f := newEngineFixture(t)
	f.api.item = sharedItem()

	gated := sharedItem()
	gated.ItemData.Provenance.Desc = "Property of Nowhere"
	gated.ItemData.Barcode = "31234567" // would be fixed if the gate let it through

	if err := f.engine.Process(context.Background(), gated); err != nil {
		t.Fatal(err)
	}
	if len(f.notifRepo.All()) != 0 || f.api.updated != nil {
		t.Fatal("gated item must not trigger rules or fixes")
	}
}

func TestEngine_DisabledRuleSkipped(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	withdrawn, err := f.checkRepo.GetByName(ctx, "SCFWithdrawn")
	if err != nil {
		t.Fatal(err)
	}
	withdrawn.Enabled = false
	if err := f.checkRepo.Update(ctx, withdrawn); err != nil {
		t.Fatal(err)
	}

	fresh := sharedItem()
	fresh.ItemData.AlternativeCallNumber = "WD"
	fresh.ItemData.InternalNote1 = "WD"
	f.api.item = fresh

	if err := f.engine.Process(ctx, sharedItem()); err != nil {
		t.Fatal(err)
	}
	for _, n := range f.notifRepo.All() {
		if n.CheckName == "SCFWithdrawn" {
			t.Fatal("disabled check must not record notifications")
		}
	}
}

func TestEngine_MissingGateCheckErrors(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	gate, err := f.checkRepo.GetByName(ctx, "ScfShared")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.checkRepo.Delete(ctx, gate.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.engine.Process(ctx, sharedItem()); err == nil {
		t.Fatal("expected error when gate check row is missing")
	}
}
