package notifier

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/wrlc/alma-item-checks/internal/alma"
	"github.com/wrlc/alma-item-checks/internal/domain"
)

//go:embed template/email.html.tmpl
var templateFS embed.FS

// Renderer turns a check's configured subject/body plus per-notification
// fragments into the HTML email document.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "template/email.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

type templateContext struct {
	Caption     string
	Body        string
	Addendum    template.HTML
	ReportTable template.HTML
	JobID       string
}

// Render builds the email body. addendum and reportTable are already-escaped
// HTML fragments produced by this codebase, never raw catalog data.
func (r *Renderer) Render(check *domain.Check, addendum, reportTable, jobID string) (string, error) {
	var b strings.Builder
	err := r.tmpl.Execute(&b, templateContext{
		Caption:     check.EmailSubject,
		Body:        check.EmailBody,
		Addendum:    template.HTML(addendum),
		ReportTable: template.HTML(reportTable),
		JobID:       jobID,
	})
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return b.String(), nil
}

// ReportTable renders analytics report rows as a bordered HTML table.
// Column "0" is an artifact of the analytics export (a constant zero for
// every row) and is dropped when it carries no information.
func ReportTable(caption string, report *alma.Report) string {
	if report == nil || len(report.Rows) == 0 {
		return "<i>Report generated, but contained no displayable data.</i><br>"
	}

	columns := report.Columns
	if len(columns) == 0 {
		seen := map[string]bool{}
		for _, row := range report.Rows {
			for col := range row {
				if !seen[col] {
					seen[col] = true
					columns = append(columns, col)
				}
			}
		}
	}
	columns = dropZeroColumn(columns, report.Rows)

	var b strings.Builder
	b.WriteString(`<table border="1" style="border-collapse: collapse; border: 1px solid black;">` + "\n")
	b.WriteString("<caption>")
	b.WriteString(html.EscapeString(caption))
	b.WriteString("</caption>\n<thead>\n<tr>")
	for _, col := range columns {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(col))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range report.Rows {
		b.WriteString("<tr>")
		for _, col := range columns {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(row[col]))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}

func dropZeroColumn(columns []string, rows []map[string]string) []string {
	for i, col := range columns {
		if col != "0" {
			continue
		}
		allZero := true
		for _, row := range rows {
			if row[col] != "0" {
				allZero = false
				break
			}
		}
		if allZero {
			return append(append([]string{}, columns[:i]...), columns[i+1:]...)
		}
	}
	return columns
}
