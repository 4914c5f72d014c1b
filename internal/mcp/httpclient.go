package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meltforce/trainingload/internal/load"
)

// HTTPClient implements Backend by calling the trainingload REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the server runs elsewhere (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies Backend.
var _ Backend = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) post(ctx context.Context, path string, params url.Values, drills []load.DrillEntry) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	if drills == nil {
		drills = []load.DrillEntry{}
	}
	payload, err := json.Marshal(map[string]any{"drills": drills})
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode drills: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(body))
	}

	return body, nil
}

func (c *HTTPClient) Summarize(ctx context.Context, drills []load.DrillEntry) (*Result, error) {
	body, err := c.post(ctx, "/api/v1/summary", nil, drills)
	if err != nil {
		return nil, err
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("httpclient: decode summary: %w", err)
	}
	return &res, nil
}

func (c *HTTPClient) RenderPNG(ctx context.Context, drills []load.DrillEntry, lang string) ([]byte, error) {
	var params url.Values
	if lang != "" {
		params = url.Values{"lang": {lang}}
	}
	return c.post(ctx, "/api/v1/summary/image", params, drills)
}
