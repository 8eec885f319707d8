package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/regionpulse/regionpulse/pkg/region"
)

// Client talks to the raw enrollment data source over HTTP, with an
// optional response cache in front of it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *ResponseCache

	// onRequest feeds the upstream request metrics; may be nil. Cache hits
	// never reach it, only real HTTP round trips.
	onRequest func(target, outcome string)
}

// NewClient creates a data source client. cache may be nil to disable
// caching.
func NewClient(baseURL string, timeout time.Duration, cache *ResponseCache) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      cache,
	}
}

// Instrument registers a per-request outcome callback.
func (c *Client) Instrument(onRequest func(target, outcome string)) {
	c.onRequest = onRequest
}

func (c *Client) observe(target string, err error) {
	if c.onRequest == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.onRequest(target, outcome)
}

// FetchRecords retrieves normalized enrollment records matching opts.
func (c *Client) FetchRecords(ctx context.Context, opts FetchOptions) ([]region.Record, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.State != "" {
		q.Set("state", opts.State)
	}
	if !opts.From.IsZero() {
		q.Set("from", opts.From.Format("2006-01-02"))
	}
	if !opts.To.IsZero() {
		q.Set("to", opts.To.Format("2006-01-02"))
	}

	endpoint := c.baseURL + "/records?" + q.Encode()
	var records []region.Record
	if err := c.getJSON(ctx, "records", endpoint, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchCoverage retrieves the per-region coverage percentages used by the
// intervention scorer.
func (c *Client) FetchCoverage(ctx context.Context) (map[string]float64, error) {
	coverage := make(map[string]float64)
	if err := c.getJSON(ctx, "coverage", c.baseURL+"/coverage", &coverage); err != nil {
		return nil, err
	}
	return coverage, nil
}

// getJSON performs a cached GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, target, endpoint string, out interface{}) error {
	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, endpoint); ok {
			return json.Unmarshal(body, out)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(target, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe(target, ErrUnavailable)
		return fmt.Errorf("%w: data source returned %s", ErrUnavailable, resp.Status)
	}
	c.observe(target, nil)

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	if c.cache != nil {
		c.cache.Set(ctx, endpoint, body)
	}
	return json.Unmarshal(body, out)
}
