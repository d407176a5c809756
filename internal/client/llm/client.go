// Package llm is a minimal client for OpenAI-compatible chat-completion
// endpoints. It sends one user message and returns the first choice's text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

type Client struct {
	host        string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	limiter     *rate.Limiter
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, apiKey, model string, temperature float64) *Client {
	if host == "" {
		host = "https://api.openai.com/v1"
	}
	host = strings.TrimRight(host, "/")
	if model == "" {
		model = "gpt-4o"
	}
	return &Client{
		host:        host,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		httpClient:  httpClient,
		// Completion APIs meter requests per minute; a client-side ceiling
		// keeps a busy cycle from tripping 429s. Completions are not
		// idempotent, so there is no retry here.
		limiter: rate.NewLimiter(rate.Limit(2), 4),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends prompt as a single user message and returns the completion
// text. Anything other than one non-empty choice is an error; callers decide
// how to degrade.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.httpClient == nil {
		return "", fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is required")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	raw, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion")
	}
	return content, nil
}

// Model reports the configured model name, for logging.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
