package notifier_test

import (
	"strings"
	"testing"

	"github.com/wrlc/alma-item-checks/internal/alma"
	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/notifier"
)

func TestRender_IncludesAllFragments(t *testing.T) {
	r, err := notifier.NewRenderer()
	if err != nil {
		t.Fatal(err)
	}

	check := &domain.Check{
		EmailSubject: "SCF No Row/Tray",
		EmailBody:    "The following item is missing row/tray data:",
	}
	body, err := r.Render(check, "<table><tr><td>31234X</td></tr></table>", "", "job_SCFNoRowTray_20260829120000_ab12cd34")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"SCF No Row/Tray",
		"The following item is missing row/tray data:",
		"<table><tr><td>31234X</td></tr></table>",
		"job_SCFNoRowTray_20260829120000_ab12cd34",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered body missing %q", want)
		}
	}
}

func TestRender_EscapesBodyText(t *testing.T) {
	r, err := notifier.NewRenderer()
	if err != nil {
		t.Fatal(err)
	}

	check := &domain.Check{EmailSubject: "s", EmailBody: "a < b & c"}
	body, err := r.Render(check, "", "", "job")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body, "a < b & c") {
		t.Fatal("plain-text body should be HTML escaped")
	}
	if !strings.Contains(body, "a &lt; b &amp; c") {
		t.Fatalf("expected escaped body, got: %s", body)
	}
}

func TestReportTable_RendersRows(t *testing.T) {
	report := &alma.Report{
		Columns: []string{"Barcode", "Title"},
		Rows: []map[string]string{
			{"Barcode": "31234X", "Title": "Moby-Dick"},
			{"Barcode": "35678X", "Title": "Middlemarch"},
		},
	}

	table := notifier.ReportTable("Duplicates", report)
	for _, want := range []string{"<caption>Duplicates</caption>", "31234X", "Middlemarch", "<th>Barcode</th>"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestReportTable_EmptyReport(t *testing.T) {
	table := notifier.ReportTable("Duplicates", &alma.Report{})
	if !strings.Contains(table, "no displayable data") {
		t.Fatalf("unexpected empty-report rendering: %s", table)
	}
}

func TestReportTable_DropsConstantZeroColumn(t *testing.T) {
	report := &alma.Report{
		Columns: []string{"0", "Barcode"},
		Rows: []map[string]string{
			{"0": "0", "Barcode": "31234X"},
			{"0": "0", "Barcode": "35678X"},
		},
	}

	table := notifier.ReportTable("Duplicates", report)
	if strings.Contains(table, "<th>0</th>") {
		t.Fatal("constant zero column should be dropped")
	}
	if !strings.Contains(table, "<th>Barcode</th>") {
		t.Fatal("real columns must survive")
	}
}

func TestReportTable_KeepsMeaningfulZeroColumn(t *testing.T) {
	report := &alma.Report{
		Columns: []string{"0", "Barcode"},
		Rows: []map[string]string{
			{"0": "7", "Barcode": "31234X"},
		},
	}

	table := notifier.ReportTable("Duplicates", report)
	if !strings.Contains(table, "<th>0</th>") {
		t.Fatal("zero column with real values should be kept")
	}
}

func TestReportTable_EscapesCellValues(t *testing.T) {
	report := &alma.Report{
		Columns: []string{"Title"},
		Rows:    []map[string]string{{"Title": "<script>alert(1)</script>"}},
	}

	table := notifier.ReportTable("x", report)
	if strings.Contains(table, "<script>") {
		t.Fatal("cell values must be escaped")
	}
}
