package alma

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// ErrItemNotFound is returned when a barcode lookup matches no active item.
var ErrItemNotFound = errors.New("alma: item not found")

// Client is a thin wrapper over the Alma REST API. Each call carries its own
// API key because keys are scoped per check (an SCF key cannot touch IZ
// records and vice versa).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client against the given Alma gateway, e.g.
// "https://api-na.hosted.exlibrisgroup.com/almaws/v1".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetItemByBarcode retrieves the current item record for a barcode.
// Returns ErrItemNotFound when the barcode matches no active item, which
// callers treat as "skip processing" rather than a failure.
func (c *Client) GetItemByBarcode(ctx context.Context, apiKey, barcode string) (*domain.Item, error) {
	u := fmt.Sprintf("%s/items?item_barcode=%s&format=json", c.baseURL, url.QueryEscape(barcode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get item by barcode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		// Alma answers barcode misses with a 400-level error payload.
		return nil, ErrItemNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("get item by barcode", resp)
	}

	var item domain.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return &item, nil
}

// UpdateItem writes an item record back to Alma. Used by auto-fix rules.
func (c *Client) UpdateItem(ctx context.Context, apiKey string, item *domain.Item) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	u := fmt.Sprintf("%s/bibs/%s/holdings/%s/items/%s?format=json",
		c.baseURL,
		url.PathEscape(item.BibData.MMSID),
		url.PathEscape(item.HoldingData.HoldingID),
		url.PathEscape(item.ItemData.PID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError("update item", resp)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) setHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "apikey "+apiKey)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, bytes.TrimSpace(snippet))
}
