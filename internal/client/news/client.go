// Package news is a client for NewsAPI-compatible headline feeds, used to
// give forecasts recent context for a market's topic.
package news

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

	"github.com/bchung1201/PolyMaster/internal/category"
)

const (
	defaultPageSize = 10
	maxRetries      = 3
)

// validCategories is the upstream top-headlines taxonomy. Anything outside
// it falls back to "general".
var validCategories = map[string]struct{}{
	"business":      {},
	"entertainment": {},
	"general":       {},
	"health":        {},
	"science":       {},
	"sports":        {},
	"technology":    {},
}

// marketToNews bridges the market taxonomy onto the headline taxonomy.
var marketToNews = map[category.Tag]string{
	category.Politics:      "general",
	category.Sports:        "sports",
	category.Crypto:        "business",
	category.Tech:          "technology",
	category.Entertainment: "entertainment",
	category.Economy:       "business",
	category.Climate:       "science",
	category.Health:        "health",
}

// CategoryFor maps a market category to the closest headline category.
func CategoryFor(tag category.Tag) string {
	if c, ok := marketToNews[tag]; ok {
		return c
	}
	return "general"
}

type Article struct {
	Source      string
	Title       string
	Description string
	URL         string
	PublishedAt *time.Time
}

type Client struct {
	host       string
	apiKey     string
	pageSize   int
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

func NewClient(httpClient *http.Client, host, apiKey string, pageSize int) *Client {
	if host == "" {
		host = "https://newsapi.org/v2"
	}
	host = strings.TrimRight(host, "/")
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		host:       host,
		apiKey:     apiKey,
		pageSize:   pageSize,
		httpClient: httpClient,
		// Headline feeds meter aggressively on free tiers; stay well under.
		limiter: rate.NewLimiter(rate.Limit(1), 2),
	}
}

// TopHeadlines fetches current US headlines for one category. Unknown
// categories are queried as "general" rather than rejected.
func (c *Client) TopHeadlines(ctx context.Context, newsCategory string) ([]Article, error) {
	newsCategory = strings.ToLower(strings.TrimSpace(newsCategory))
	if _, ok := validCategories[newsCategory]; !ok {
		newsCategory = "general"
	}
	query := url.Values{}
	query.Set("category", newsCategory)
	query.Set("language", "en")
	query.Set("country", "us")
	query.Set("pageSize", strconv.Itoa(c.pageSize))
	return c.fetchArticles(ctx, "/top-headlines", query)
}

// Everything searches all indexed articles for a free-text query, newest
// first.
func (c *Client) Everything(ctx context.Context, q string) ([]Article, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("query is required")
	}
	query := url.Values{}
	query.Set("q", q)
	query.Set("language", "en")
	query.Set("sortBy", "publishedAt")
	query.Set("pageSize", strconv.Itoa(c.pageSize))
	return c.fetchArticles(ctx, "/everything", query)
}

type rawArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

type articlesResponse struct {
	Status   string       `json:"status"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Articles []rawArticle `json:"articles"`
}

func (c *Client) fetchArticles(ctx context.Context, path string, query url.Values) ([]Article, error) {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}
	var parsed articlesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Status == "error" {
		return nil, fmt.Errorf("news error (%s): %s", parsed.Code, parsed.Message)
	}

	articles := make([]Article, 0, len(parsed.Articles))
	for _, raw := range parsed.Articles {
		if strings.TrimSpace(raw.Title) == "" {
			continue
		}
		a := Article{
			Source:      raw.Source.Name,
			Title:       raw.Title,
			Description: raw.Description,
			URL:         raw.URL,
		}
		if ts, err := time.Parse(time.RFC3339, raw.PublishedAt); err == nil {
			utc := ts.UTC()
			a.PublishedAt = &utc
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// doRequest issues a GET and retries 429/5xx responses with capped backoff;
// headline GETs are idempotent so retrying is safe.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("client is nil")
	}
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
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
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
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
