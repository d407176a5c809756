package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxRetries = 3

type Client struct {
	host       string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://gamma-api.polymarket.com"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(4), 8),
	}
}

// SetRateLimit replaces the default outbound limiter. Zero or negative
// values disable limiting.
func (c *Client) SetRateLimit(perSec float64, burst int) {
	if perSec <= 0 {
		c.limiter = nil
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
}

// ListParams are Gamma list-endpoint query parameters. Nil pointers are
// omitted from the query.
type ListParams struct {
	Active    *bool
	Closed    *bool
	Archived  *bool
	Limit     int
	Offset    int
	Order     string
	Ascending *bool
}

func (p ListParams) values() url.Values {
	query := url.Values{}
	if p.Active != nil {
		query.Set("active", strconv.FormatBool(*p.Active))
	}
	if p.Closed != nil {
		query.Set("closed", strconv.FormatBool(*p.Closed))
	}
	if p.Archived != nil {
		query.Set("archived", strconv.FormatBool(*p.Archived))
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		query.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Order != "" {
		query.Set("order", p.Order)
	}
	if p.Ascending != nil {
		query.Set("ascending", strconv.FormatBool(*p.Ascending))
	}
	return query
}

func (c *Client) ListMarkets(ctx context.Context, params ListParams) ([]RawMarket, error) {
	body, err := c.doRequest(ctx, "/markets", params.values())
	if err != nil {
		return nil, err
	}
	var markets []RawMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("failed to decode markets: %w", err)
	}
	return markets, nil
}

func (c *Client) ListEvents(ctx context.Context, params ListParams) ([]RawEvent, error) {
	body, err := c.doRequest(ctx, "/events", params.values())
	if err != nil {
		return nil, err
	}
	var events []RawEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

func (c *Client) GetMarketByID(ctx context.Context, marketID string) (*RawMarket, error) {
	if marketID == "" {
		return nil, fmt.Errorf("market id is required")
	}
	body, err := c.doRequest(ctx, "/markets/"+url.PathEscape(marketID), nil)
	if err != nil {
		return nil, err
	}
	var market RawMarket
	if err := json.Unmarshal(body, &market); err != nil {
		return nil, fmt.Errorf("failed to decode market: %w", err)
	}
	return &market, nil
}

// doRequest issues a GET and retries 429/5xx responses with capped backoff.
// Gamma GETs are idempotent so retrying is safe.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		body, retryable, err := c.doOnce(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, false, nil
}
