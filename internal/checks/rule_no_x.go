package checks

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// NoXRule enforces the facility barcode convention: every barcode must end
// in "X". A violating item is fixed in place — the rule appends the X and
// writes the record back to Alma — then reported as fixed.
type NoXRule struct {
	alma   AlmaAPI
	logger *zap.Logger
}

func NewNoXRule(api AlmaAPI, logger *zap.Logger) *NoXRule {
	return &NoXRule{alma: api, logger: logger}
}

func (r *NoXRule) Name() string { return "ScfNoX" }

func (r *NoXRule) Evaluate(ctx context.Context, check *domain.Check, item *domain.Item) (*Result, error) {
	if strings.HasSuffix(item.ItemData.Barcode, "X") {
		return nil, nil
	}
	if check.APIKey == nil || *check.APIKey == "" {
		return nil, fmt.Errorf("check %q has no API key", check.Name)
	}

	// Mutate a copy so a failed write does not leave a half-fixed item
	// for the rules that run after this one.
	fixed := *item
	fixed.ItemData.Barcode += "X"
	if err := r.alma.UpdateItem(ctx, *check.APIKey, &fixed); err != nil {
		return nil, fmt.Errorf("append X to barcode %s: %w", item.ItemData.Barcode, err)
	}
	*item = fixed

	r.logger.Info("barcode fixed",
		zap.String("check", check.Name),
		zap.String("barcode", fixed.ItemData.Barcode))

	return &Result{
		Outcome: domain.OutcomeFixed,
		Addendum: addendumTable(check.EmailSubject,
			[]string{"Title", "Author", "Barcode"},
			[]string{item.BibData.Title, item.BibData.Author, item.ItemData.Barcode}),
	}, nil
}

var _ Rule = (*NoXRule)(nil)
