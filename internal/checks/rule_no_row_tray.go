package checks

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// NoRowTrayRule flags items whose row/tray placement data is missing or
// malformed. Placement lives in the alternative call number (and sometimes
// internal note 1) and must look like "R<row>M<module>S<shelf>".
//
// There is no automated fix: a person has to walk to the shelf.
type NoRowTrayRule struct {
	logger *zap.Logger
}

func NewNoRowTrayRule(logger *zap.Logger) *NoRowTrayRule {
	return &NoRowTrayRule{logger: logger}
}

func (r *NoRowTrayRule) Name() string { return "SCFNoRowTray" }

func (r *NoRowTrayRule) Evaluate(_ context.Context, check *domain.Check, item *domain.Item) (*Result, error) {
	if !r.missingRowTray(item) && !r.malformedRowTray(item) {
		return nil, nil
	}
	// Items mid-workflow carry a marker note; those are not errors yet.
	if excludedNotes[item.ItemData.InternalNote1] {
		r.logger.Debug("internal note 1 excluded, skipping",
			zap.String("barcode", item.ItemData.Barcode),
			zap.String("note", item.ItemData.InternalNote1))
		return nil, nil
	}

	return &Result{
		Outcome: domain.OutcomeFlagged,
		Addendum: addendumTable(check.EmailSubject,
			[]string{"Title", "Author", "Barcode", "Item Call Number", "Internal Note 1"},
			[]string{
				orNone(item.BibData.Title),
				orNone(item.BibData.Author),
				orNone(item.ItemData.Barcode),
				orNone(item.ItemData.AlternativeCallNumber),
				orNone(item.ItemData.InternalNote1),
			}),
	}, nil
}

func (r *NoRowTrayRule) missingRowTray(item *domain.Item) bool {
	return item.ItemData.AlternativeCallNumber == ""
}

// malformedRowTray reports whether any populated placement field fails the
// row/module/shelf pattern. Fields naming a cabinet or drawer unit are
// exempt: those units have no rows or trays.
func (r *NoRowTrayRule) malformedRowTray(item *domain.Item) bool {
	fields := []string{
		item.ItemData.AlternativeCallNumber,
		item.ItemData.InternalNote1,
	}
	for _, value := range fields {
		if value == "" {
			continue
		}
		if inSkipLocation(value) {
			continue
		}
		if !rowTrayPattern.MatchString(value) {
			return true
		}
	}
	return false
}

func inSkipLocation(value string) bool {
	for _, loc := range skipLocations {
		if strings.Contains(value, loc) {
			return true
		}
	}
	return false
}

var _ Rule = (*NoRowTrayRule)(nil)
