package alma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Report holds the rows of an Alma Analytics report run.
type Report struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// analyticsResponse mirrors the JSON envelope Alma wraps report results in.
type analyticsResponse struct {
	QueryResult struct {
		ResultXML struct {
			RowSet struct {
				Columns []string            `json:"columns"`
				Rows    []map[string]string `json:"rows"`
			} `json:"rowset"`
		} `json:"result_xml"`
	} `json:"query_result"`
}

// RunReport executes the analytics report at the given path and returns its
// rows. An empty Rows slice means the report ran clean.
func (c *Client) RunReport(ctx context.Context, apiKey, path string) (*Report, error) {
	u := fmt.Sprintf("%s/analytics/reports?path=%s&limit=1000&format=json",
		c.baseURL, url.QueryEscape(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("run report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("run report", resp)
	}

	var parsed analyticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	return &Report{
		Columns: parsed.QueryResult.ResultXML.RowSet.Columns,
		Rows:    parsed.QueryResult.ResultXML.RowSet.Rows,
	}, nil
}
