package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ForecastClient talks to the forecast provider over HTTP.
type ForecastClient struct {
	httpClient *http.Client
	baseURL    string

	onRequest func(target, outcome string)
}

// NewForecastClient creates a forecast provider client.
func NewForecastClient(baseURL string, timeout time.Duration) *ForecastClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ForecastClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Instrument registers a per-request outcome callback.
func (c *ForecastClient) Instrument(onRequest func(target, outcome string)) {
	c.onRequest = onRequest
}

func (c *ForecastClient) observe(outcome string) {
	if c.onRequest != nil {
		c.onRequest("forecast", outcome)
	}
}

// Forecast fetches the provider's forecast for one state. A provider 404
// maps to ErrModelNotFound so callers can distinguish "no trained model"
// from transport failure.
func (c *ForecastClient) Forecast(ctx context.Context, state string, horizon int) (*Forecast, error) {
	endpoint := fmt.Sprintf("%s/forecast/%s?horizon=%s",
		c.baseURL, url.PathEscape(state), strconv.Itoa(horizon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("error")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		c.observe("success")
	case http.StatusNotFound:
		c.observe("success")
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, state)
	default:
		c.observe("error")
		return nil, fmt.Errorf("%w: forecast provider returned %s", ErrUnavailable, resp.Status)
	}

	var forecast Forecast
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("%w: failed to decode forecast: %v", ErrUnavailable, err)
	}
	return &forecast, nil
}
