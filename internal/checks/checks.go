package checks

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// AlmaAPI is the slice of the Alma client the check rules need.
type AlmaAPI interface {
	GetItemByBarcode(ctx context.Context, apiKey, barcode string) (*domain.Item, error)
	UpdateItem(ctx context.Context, apiKey string, item *domain.Item) error
}

// Result is what a rule found for an item. A nil Result means no issue.
type Result struct {
	Outcome  domain.Outcome
	Addendum string // pre-rendered HTML fragment embedded in the email body
}

// Rule evaluates one item against one check. The check row carries the
// rule's tunable configuration (API key, email subject).
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, check *domain.Check, item *domain.Item) (*Result, error)
}

// checkedProvenance lists the partner ownership statements whose items are
// subject to the off-site facility checks. Items stamped with anything else
// pass through untouched.
var checkedProvenance = map[string]bool{
	"Property of American University":                                true,
	"Property of American University Law School":                     true,
	"Property of Catholic University of America":                     true,
	"Property of Gallaudet University":                               true,
	"Property of George Mason University":                            true,
	"Property of George Washington Himmelfarb":                       true,
	"Property of George Washington University":                       true,
	"Property of George Washington University School of Law":         true,
	"Property of Georgetown University":                              true,
	"Property of Georgetown University School of Law":                true,
	"Property of Howard University":                                  true,
	"Property of Marymount University":                               true,
	"Property of National Security Archive":                          true,
	"Property of University of the District of Columbia":             true,
	"Property of University of the District of Columbia Jazz Archives": true,
}

// excludedNotes are internal-note-1 values that mark an item as mid-workflow;
// the row/tray check must not flag those.
var excludedNotes = map[string]bool{
	"At WRLC waiting to be processed": true,
	"DO NOT DELETE":                   true,
	"WD":                              true,
}

// skipLocations are call-number substrings naming storage units that never
// carry row/tray data.
var skipLocations = []string{
	"WRLC Gemtrac Drawer",
	"WRLC Microfilm Cabinet",
	"WRLC Microfiche Cabinet",
	"Low Temperature Media Preservation Unit  # 1 @ SCF",
}

// rowTrayPattern is the shape a row/module/shelf call number must have,
// e.g. "R10M07S03".
var rowTrayPattern = regexp.MustCompile(`^R.*M.*S`)

// addendumTable renders the single-item HTML table embedded in issue emails.
// Values come from catalog records, so everything is escaped.
func addendumTable(caption string, headers, values []string) string {
	var b strings.Builder
	b.WriteString("<table>\n<caption>")
	b.WriteString(html.EscapeString(caption))
	b.WriteString("</caption>\n<thead>\n<tr>")
	for _, h := range headers {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n<tr>")
	for _, v := range values {
		b.WriteString("<td>")
		b.WriteString(html.EscapeString(v))
		b.WriteString("</td>")
	}
	b.WriteString("</tr>\n</tbody>\n</table>")
	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
