package checks_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/alma"
	"github.com/wrlc/alma-item-checks/internal/checks"
	"github.com/wrlc/alma-item-checks/internal/domain"
)

// fakeAlma is a hand-written AlmaAPI stub for rule tests.
type fakeAlma struct {
	item      *domain.Item
	getErr    error
	updated   *domain.Item
	updateErr error
}

func (f *fakeAlma) GetItemByBarcode(_ context.Context, _, _ string) (*domain.Item, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.item, nil
}

func (f *fakeAlma) UpdateItem(_ context.Context, _ string, item *domain.Item) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	clone := *item
	f.updated = &clone
	return nil
}

func apiKey() *string {
	k := "l8xx-test-key"
	return &k
}

func sharedItem() *domain.Item {
	it := &domain.Item{}
	it.BibData.Title = "The Power Broker"
	it.BibData.Author = "Caro, Robert A."
	it.ItemData.Barcode = "31234567X"
	it.ItemData.AlternativeCallNumber = "R10M07S03"
	it.ItemData.Location.Value = "scf"
	it.ItemData.Provenance.Desc = "Property of Georgetown University"
	return it
}

func gateCheck() *domain.Check {
	return &domain.Check{ID: 1, Name: "ScfShared", APIKey: apiKey(), EmailSubject: "SCF Shared", Enabled: true}
}

func TestSharedGate_PassReturnsRefreshedItem(t *testing.T) {
	stale := sharedItem()
	fresh := sharedItem()
	fresh.ItemData.AlternativeCallNumber = "R11M01S01"

	api := &fakeAlma{item: fresh}
	gate := checks.NewSharedGate(api, zap.NewNop())

	got, err := gate.Filter(context.Background(), gateCheck(), stale)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ItemData.AlternativeCallNumber != "R11M01S01" {
		t.Fatalf("expected refreshed item, got %+v", got)
	}
}

func TestSharedGate_Skips(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Item)
	}{
		{"discard temp location", func(it *domain.Item) {
			it.HoldingData.TempLocation.Value = "SCF Discard Shelf"
		}},
		{"discard location", func(it *domain.Item) {
			it.ItemData.Location.Value = "wrlc discard"
		}},
		{"unknown provenance", func(it *domain.Item) {
			it.ItemData.Provenance.Desc = "Property of Somewhere Else"
		}},
		{"empty provenance", func(it *domain.Item) {
			it.ItemData.Provenance.Desc = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := sharedItem()
			tt.mutate(it)

			api := &fakeAlma{item: sharedItem()}
			gate := checks.NewSharedGate(api, zap.NewNop())

			got, err := gate.Filter(context.Background(), gateCheck(), it)
			if err != nil {
				t.Fatal(err)
			}
			if got != nil {
				t.Fatal("expected item to be skipped")
			}
		})
	}
}

func TestSharedGate_InactiveItemSkipped(t *testing.T) {
	api := &fakeAlma{getErr: alma.ErrItemNotFound}
	gate := checks.NewSharedGate(api, zap.NewNop())

	got, err := gate.Filter(context.Background(), gateCheck(), sharedItem())
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatal("expected inactive item to be skipped")
	}
}

func TestSharedGate_AlmaErrorPropagates(t *testing.T) {
	api := &fakeAlma{getErr: errors.New("gateway timeout")}
	gate := checks.NewSharedGate(api, zap.NewNop())

	if _, err := gate.Filter(context.Background(), gateCheck(), sharedItem()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNoXRule_BarcodeEndingInXPasses(t *testing.T) {
	rule := checks.NewNoXRule(&fakeAlma{}, zap.NewNop())
	check := &domain.Check{Name: "ScfNoX", APIKey: apiKey(), EmailSubject: "No X"}

	result, err := rule.Evaluate(context.Background(), check, sharedItem())
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected no issue, got %+v", result)
	}
}

func TestNoXRule_AppendsXAndReportsFixed(t *testing.T) {
	it := sharedItem()
	it.ItemData.Barcode = "31234567"

	api := &fakeAlma{}
	rule := checks.NewNoXRule(api, zap.NewNop())
	check := &domain.Check{Name: "ScfNoX", APIKey: apiKey(), EmailSubject: "No X"}

	result, err := rule.Evaluate(context.Background(), check, it)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || result.Outcome != domain.OutcomeFixed {
		t.Fatalf("expected fixed outcome, got %+v", result)
	}
	if api.updated == nil || api.updated.ItemData.Barcode != "31234567X" {
		t.Fatalf("expected item written back with X, got %+v", api.updated)
	}
	if it.ItemData.Barcode != "31234567X" {
		t.Fatalf("expected in-memory item updated, got %s", it.ItemData.Barcode)
	}
	if !strings.Contains(result.Addendum, "31234567X") {
		t.Fatal("addendum should contain the fixed barcode")
	}
}

func TestNoXRule_UpdateFailureLeavesItemUntouched(t *testing.T) {
	it := sharedItem()
	it.ItemData.Barcode = "31234567"

	api := &fakeAlma{updateErr: errors.New("alma 500")}
	rule := checks.NewNoXRule(api, zap.NewNop())
	check := &domain.Check{Name: "ScfNoX", APIKey: apiKey(), EmailSubject: "No X"}

	if _, err := rule.Evaluate(context.Background(), check, it); err == nil {
		t.Fatal("expected error")
	}
	if it.ItemData.Barcode != "31234567" {
		t.Fatalf("item should not be mutated on failure, got %s", it.ItemData.Barcode)
	}
}

func TestNoRowTrayRule(t *testing.T) {
	check := &domain.Check{Name: "SCFNoRowTray", EmailSubject: "No Row/Tray"}
	rule := checks.NewNoRowTrayRule(zap.NewNop())

	tests := []struct {
		name    string
		mutate  func(*domain.Item)
		flagged bool
	}{
		{"well formed call number", func(it *domain.Item) {}, false},
		{"missing call number", func(it *domain.Item) {
			it.ItemData.AlternativeCallNumber = ""
		}, true},
		{"malformed call number", func(it *domain.Item) {
			it.ItemData.AlternativeCallNumber = "shelf 12"
		}, true},
		{"malformed internal note", func(it *domain.Item) {
			it.ItemData.InternalNote1 = "misc note"
		}, true},
		{"skip location exempt", func(it *domain.Item) {
			it.ItemData.AlternativeCallNumber = "WRLC Gemtrac Drawer 4"
		}, false},
		{"excluded note suppresses", func(it *domain.Item) {
			it.ItemData.AlternativeCallNumber = ""
			it.ItemData.InternalNote1 = "At WRLC waiting to be processed"
		}, false},
		{"wd note suppresses", func(it *domain.Item) {
			it.ItemData.AlternativeCallNumber = "nonsense"
			it.ItemData.InternalNote1 = "WD"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := sharedItem()
			tt.mutate(it)

			result, err := rule.Evaluate(context.Background(), check, it)
			if err != nil {
				t.Fatal(err)
			}
			if tt.flagged && (result == nil || result.Outcome != domain.OutcomeFlagged) {
				t.Fatalf("expected flagged, got %+v", result)
			}
			if !tt.flagged && result != nil {
				t.Fatalf("expected pass, got %+v", result)
			}
		})
	}
}

func TestWithdrawnRule(t *testing.T) {
	check := &domain.Check{Name: "SCFWithdrawn", EmailSubject: "Withdrawn"}
	rule := checks.NewWithdrawnRule()

	it := sharedItem()
	result, err := rule.Evaluate(context.Background(), check, it)
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Fatalf("expected pass for non-WD item, got %+v", result)
	}

	it.ItemData.AlternativeCallNumber = "WD"
	result, err = rule.Evaluate(context.Background(), check, it)
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || result.Outcome != domain.OutcomeFlagged {
		t.Fatalf("expected flagged for WD item, got %+v", result)
	}
	if !strings.Contains(result.Addendum, "The Power Broker") {
		t.Fatal("addendum should contain the item title")
	}
}
