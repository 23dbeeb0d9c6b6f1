package checks

import (
	"context"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// WithdrawnRule flags items whose alternative call number has been set to
// "WD", the facility's withdrawn marker. Staff confirm the withdrawal and
// retire the record by hand, so the rule only notifies.
type WithdrawnRule struct{}

func NewWithdrawnRule() *WithdrawnRule { return &WithdrawnRule{} }

func (r *WithdrawnRule) Name() string { return "SCFWithdrawn" }

func (r *WithdrawnRule) Evaluate(_ context.Context, check *domain.Check, item *domain.Item) (*Result, error) {
	if item.ItemData.AlternativeCallNumber != "WD" {
		return nil, nil
	}

	return &Result{
		Outcome: domain.OutcomeFlagged,
		Addendum: addendumTable(check.EmailSubject,
			[]string{"Title", "Author", "Barcode", "Item Call Number", "Internal Note 1"},
			[]string{
				item.BibData.Title,
				item.BibData.Author,
				item.ItemData.Barcode,
				item.ItemData.AlternativeCallNumber,
				item.ItemData.InternalNote1,
			}),
	}, nil
}

var _ Rule = (*WithdrawnRule)(nil)
