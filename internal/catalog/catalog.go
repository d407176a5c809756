package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bchung1201/PolyMaster/internal/client/gamma"
)

// ErrNotFound is returned by GetMarket when the id does not exist upstream.
var ErrNotFound = errors.New("market not found")

const defaultTTL = 60 * time.Second

// Fetcher is the slice of the Gamma client the catalog consumes.
type Fetcher interface {
	ListMarkets(ctx context.Context, params gamma.ListParams) ([]gamma.RawMarket, error)
	ListEvents(ctx context.Context, params gamma.ListParams) ([]gamma.RawEvent, error)
	GetMarketByID(ctx context.Context, marketID string) (*gamma.RawMarket, error)
}

// Catalog caches normalized market and event snapshots with a short TTL.
// List calls fail soft (empty slice, nil error) so a flaky feed degrades the
// pipeline instead of breaking it; GetMarket fails loud so callers can tell
// "no such market" from "feed is down". Concurrent misses for one key
// coalesce to a single upstream fetch.
type Catalog struct {
	Fetcher   Fetcher
	Logger    *zap.Logger
	MarketTTL time.Duration
	EventTTL  time.Duration
	PageLimit int
	Now       func() time.Time

	mu        sync.RWMutex
	markets   []Market
	marketsAt time.Time
	events    []Event
	eventsAt  time.Time

	group singleflight.Group
}

func (c *Catalog) ListMarkets(ctx context.Context) ([]Market, error) {
	if c == nil || c.Fetcher == nil {
		return []Market{}, nil
	}
	c.mu.RLock()
	if c.fresh(c.marketsAt, c.marketTTL()) {
		out := c.markets
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("markets", func() (any, error) {
		return c.refreshMarkets(ctx)
	})
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("market list refresh failed", zap.Error(err))
		}
		return []Market{}, nil
	}
	return v.([]Market), nil
}

func (c *Catalog) ListEvents(ctx context.Context) ([]Event, error) {
	if c == nil || c.Fetcher == nil {
		return []Event{}, nil
	}
	c.mu.RLock()
	if c.fresh(c.eventsAt, c.eventTTL()) {
		out := c.events
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("events", func() (any, error) {
		return c.refreshEvents(ctx)
	})
	if err != nil {
		if c.Logger != nil {
			c.Logger.Warn("event list refresh failed", zap.Error(err))
		}
		return []Event{}, nil
	}
	return v.([]Event), nil
}

func (c *Catalog) GetMarket(ctx context.Context, id string) (Market, error) {
	if c == nil || c.Fetcher == nil {
		return Market{}, ErrNotFound
	}
	if id == "" {
		return Market{}, ErrNotFound
	}

	c.mu.RLock()
	if c.fresh(c.marketsAt, c.marketTTL()) {
		for _, m := range c.markets {
			if m.ID == id {
				c.mu.RUnlock()
				return m, nil
			}
		}
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("market:"+id, func() (any, error) {
		raw, err := c.Fetcher.GetMarketByID(ctx, id)
		if err != nil {
			var apiErr *gamma.APIError
			if errors.As(err, &apiErr) && apiErr.Status == 404 {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("fetch market %s: %w", id, err)
		}
		if raw == nil {
			return nil, ErrNotFound
		}
		market, ok := normalizeMarket(*raw)
		if !ok {
			return nil, ErrNotFound
		}
		return market, nil
	})
	if err != nil {
		return Market{}, err
	}
	return v.(Market), nil
}

// Invalidate drops both snapshots so the next call refetches.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.marketsAt = time.Time{}
	c.eventsAt = time.Time{}
	c.mu.Unlock()
}

func (c *Catalog) refreshMarkets(ctx context.Context) ([]Market, error) {
	active, closed := true, false
	raw, err := c.Fetcher.ListMarkets(ctx, gamma.ListParams{
		Active: &active,
		Closed: &closed,
		Limit:  c.pageLimit(),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	markets := make([]Market, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		market, ok := normalizeMarket(r)
		if !ok {
			dropped++
			continue
		}
		markets = append(markets, market)
	}
	if dropped > 0 && c.Logger != nil {
		c.Logger.Warn("dropped malformed market records", zap.Int("count", dropped))
	}
	c.mu.Lock()
	c.markets = markets
	c.marketsAt = c.now()
	c.mu.Unlock()
	return markets, nil
}

func (c *Catalog) refreshEvents(ctx context.Context) ([]Event, error) {
	active, closed := true, false
	raw, err := c.Fetcher.ListEvents(ctx, gamma.ListParams{
		Active: &active,
		Closed: &closed,
		Limit:  c.pageLimit(),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	events := make([]Event, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		event, ok := normalizeEvent(r)
		if !ok {
			dropped++
			continue
		}
		events = append(events, event)
	}
	if dropped > 0 && c.Logger != nil {
		c.Logger.Warn("dropped malformed event records", zap.Int("count", dropped))
	}
	c.mu.Lock()
	c.events = events
	c.eventsAt = c.now()
	c.mu.Unlock()
	return events, nil
}

func (c *Catalog) fresh(fetchedAt time.Time, ttl time.Duration) bool {
	if fetchedAt.IsZero() {
		return false
	}
	return c.now().Sub(fetchedAt) < ttl
}

func (c *Catalog) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Catalog) marketTTL() time.Duration {
	if c.MarketTTL > 0 {
		return c.MarketTTL
	}
	return defaultTTL
}

func (c *Catalog) eventTTL() time.Duration {
	if c.EventTTL > 0 {
		return c.EventTTL
	}
	return defaultTTL
}

func (c *Catalog) pageLimit() int {
	if c.PageLimit > 0 {
		return c.PageLimit
	}
	return 100
}
