package alma_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wrlc/alma-item-checks/internal/alma"
	"github.com/wrlc/alma-item-checks/internal/domain"
)

func TestGetItemByBarcode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "apikey l8xx-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.URL.Query().Get("item_barcode"); got != "31234X" {
			t.Errorf("unexpected barcode %q", got)
		}

		item := domain.Item{}
		item.ItemData.Barcode = "31234X"
		item.BibData.Title = "Beloved"
		_ = json.NewEncoder(w).Encode(item)
	}))
	defer srv.Close()

	c := alma.NewClient(srv.URL, time.Second)
	item, err := c.GetItemByBarcode(context.Background(), "l8xx-test", "31234X")
	if err != nil {
		t.Fatal(err)
	}
	if item.BibData.Title != "Beloved" {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestGetItemByBarcode_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Alma answers unknown barcodes with a 400-level error payload.
		http.Error(w, `{"errorList":{}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := alma.NewClient(srv.URL, time.Second)
	_, err := c.GetItemByBarcode(context.Background(), "k", "nope")
	if !errors.Is(err, alma.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestUpdateItem_SendsRecordBack(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		var item domain.Item
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			t.Errorf("bad body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	item := &domain.Item{}
	item.BibData.MMSID = "991234"
	item.HoldingData.HoldingID = "221234"
	item.ItemData.PID = "231234"

	c := alma.NewClient(srv.URL, time.Second)
	if err := c.UpdateItem(context.Background(), "k", item); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/bibs/991234/holdings/221234/items/231234" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestUpdateItem_ServerErrorSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := alma.NewClient(srv.URL, time.Second)
	if err := c.UpdateItem(context.Background(), "k", &domain.Item{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunReport_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("path"); got != "/shared/SCF/duplicates" {
			t.Errorf("unexpected report path %q", got)
		}
		_, _ = w.Write([]byte(`{
			"query_result": {
				"result_xml": {
					"rowset": {
						"columns": ["Barcode", "Count"],
						"rows": [
							{"Barcode": "31234X", "Count": "2"},
							{"Barcode": "35678X", "Count": "3"}
						]
					}
				}
			}
		}`))
	}))
	defer srv.Close()

	c := alma.NewClient(srv.URL, time.Second)
	report, err := c.RunReport(context.Background(), "k", "/shared/SCF/duplicates")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Rows) != 2 || report.Rows[0]["Barcode"] != "31234X" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Columns) != 2 {
		t.Fatalf("unexpected columns: %v", report.Columns)
	}
}
