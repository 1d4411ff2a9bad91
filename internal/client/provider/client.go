package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, apiKey string, retries int, retryDelay time.Duration) *Client {
	host = strings.TrimRight(host, "/")
	if retries < 0 {
		retries = 0
	}
	return &Client{
		host:       host,
		apiKey:     apiKey,
		httpClient: httpClient,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// get retries transient failures (429, timeout, connection reset) up to the
// configured count with a fixed delay. Other errors propagate immediately.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		body, err := c.doRequest(ctx, path, query)
		if err == nil {
			return body, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	return false
}

func decodeData(body []byte, out any) error {
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

func (c *Client) GetOHLC(ctx context.Context, symbol string) ([]OHLCTick, []byte, error) {
	if symbol == "" {
		return nil, nil, fmt.Errorf("symbol is required")
	}
	body, err := c.get(ctx, "/api/stock/"+symbol+"/ohlc/5m", nil)
	if err != nil {
		return nil, nil, err
	}
	var items []OHLCTick
	if err := decodeData(body, &items); err != nil {
		return nil, body, err
	}
	return items, body, nil
}

func (c *Client) GetSpotExposures(ctx context.Context, symbol string) ([]SpotExposureTick, []byte, error) {
	if symbol == "" {
		return nil, nil, fmt.Errorf("symbol is required")
	}
	body, err := c.get(ctx, "/api/stock/"+symbol+"/spot-exposures", nil)
	if err != nil {
		return nil, nil, err
	}
	var items []SpotExposureTick
	if err := decodeData(body, &items); err != nil {
		return nil, body, err
	}
	return items, body, nil
}

func (c *Client) GetNetPremTicks(ctx context.Context, symbol string) ([]NetPremTick, []byte, error) {
	if symbol == "" {
		return nil, nil, fmt.Errorf("symbol is required")
	}
	body, err := c.get(ctx, "/api/stock/"+symbol+"/net-prem-ticks", nil)
	if err != nil {
		return nil, nil, err
	}
	var items []NetPremTick
	if err := decodeData(body, &items); err != nil {
		return nil, body, err
	}
	return items, body, nil
}

func (c *Client) GetOptionsVolume(ctx context.Context, symbol string) ([]OptionsVolumeTick, []byte, error) {
	if symbol == "" {
		return nil, nil, fmt.Errorf("symbol is required")
	}
	body, err := c.get(ctx, "/api/stock/"+symbol+"/options-volume", nil)
	if err != nil {
		return nil, nil, err
	}
	var items []OptionsVolumeTick
	if err := decodeData(body, &items); err != nil {
		return nil, body, err
	}
	return items, body, nil
}

func (c *Client) GetDarkPoolTrades(ctx context.Context, symbol string, day time.Time) ([]DarkPoolTrade, []byte, error) {
	if symbol == "" {
		return nil, nil, fmt.Errorf("symbol is required")
	}
	query := url.Values{}
	if !day.IsZero() {
		query.Set("date", day.Format("2006-01-02"))
	}
	body, err := c.get(ctx, "/api/darkpool/"+symbol, query)
	if err != nil {
		return nil, nil, err
	}
	var items []DarkPoolTrade
	if err := decodeData(body, &items); err != nil {
		return nil, body, err
	}
	return items, body, nil
}
