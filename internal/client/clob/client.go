// Package clob talks to the trading venue: public quotes over plain GETs,
// account and order endpoints over HMAC-signed requests, live prices over a
// reconnecting websocket stream.
package clob

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Credentials authenticate account endpoints. Empty credentials leave
// requests unsigned, which the venue rejects for anything non-public.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
	Address    string
}

func (c Credentials) configured() bool {
	return strings.TrimSpace(c.APIKey) != "" && strings.TrimSpace(c.APISecret) != ""
}

type Client struct {
	host       string
	httpClient *http.Client
	creds      Credentials
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string, creds Credentials) *Client {
	if host == "" {
		host = "https://clob.polymarket.com"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
		creds:      creds,
	}
}

// GetPrice quotes one side of a token's book.
func (c *Client) GetPrice(ctx context.Context, tokenID, side string) (Decimal, error) {
	if tokenID == "" {
		return Decimal{}, fmt.Errorf("token_id is required")
	}
	query := url.Values{}
	query.Set("token_id", tokenID)
	if side != "" {
		query.Set("side", strings.ToUpper(side))
	}
	body, err := c.doRequest(ctx, "/price", query)
	if err != nil {
		return Decimal{}, err
	}
	return parsePrice(body)
}

// GetBalanceAllowance reports the account's collateral in dollars.
func (c *Client) GetBalanceAllowance(ctx context.Context) (Balance, error) {
	query := url.Values{}
	query.Set("asset_type", "COLLATERAL")
	body, err := c.doSigned(ctx, http.MethodGet, "/balance-allowance", query, nil)
	if err != nil {
		return Balance{}, err
	}
	return parseBalance(body)
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("client is nil")
	}
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
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

// doSigned sends an authenticated request. The signature covers
// ts\nMETHOD\npath\nbody with the path including the encoded query.
func (c *Client) doSigned(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if !c.creds.configured() {
		return nil, fmt.Errorf("api credentials are not configured")
	}

	canonicalPath := path
	if len(query) > 0 {
		canonicalPath += "?" + query.Encode()
	}
	var body io.Reader
	bodyRaw := []byte{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		bodyRaw = raw
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+canonicalPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ts := strconv.FormatInt(time.Now().UTC().Unix(), 10)
	toSign := ts + "\n" + strings.ToUpper(method) + "\n" + canonicalPath + "\n" + string(bodyRaw)
	mac := hmac.New(sha256.New, []byte(c.creds.APISecret))
	_, _ = mac.Write([]byte(toSign))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("X-API-Key", c.creds.APIKey)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", sig)
	if v := strings.TrimSpace(c.creds.Passphrase); v != "" {
		req.Header.Set("X-Passphrase", v)
	}
	if v := strings.TrimSpace(c.creds.Address); v != "" {
		req.Header.Set("X-Address", v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
