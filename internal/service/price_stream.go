package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/catalog"
	"github.com/bchung1201/PolyMaster/internal/client/clob"
)

const defaultMaxStreamAssets = 100

// Quote is one live price observation from the market stream.
type Quote struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type marketLister interface {
	ListMarkets(ctx context.Context) ([]catalog.Market, error)
}

// PriceStreamService keeps an in-process cache of live token prices fed by
// the venue's market WebSocket. Subscriptions follow the catalog: the asset
// list is re-derived from tradeable markets on the stream's refresh cadence.
type PriceStreamService struct {
	Catalog         marketLister
	WSURL           string
	MaxAssets       int
	RefreshInterval time.Duration
	Logger          *zap.Logger

	mu     sync.RWMutex
	quotes map[string]Quote
}

// Run blocks until ctx is canceled, reconnecting with backoff on stream
// failures.
func (s *PriceStreamService) Run(ctx context.Context) error {
	if s == nil || s.Catalog == nil {
		return nil
	}
	stream := clob.NewMarketStream(clob.MarketStreamOptions{
		URL:             s.WSURL,
		AssetIDProvider: s.assetIDs,
		RefreshInterval: s.RefreshInterval,
		Logger:          s.Logger,
	})
	return stream.Run(ctx, s.onMessage)
}

// assetIDs lists the settlement tokens of currently tradeable markets,
// capped so one subscription stays within venue limits.
func (s *PriceStreamService) assetIDs(ctx context.Context) ([]string, error) {
	markets, err := s.Catalog.ListMarkets(ctx)
	if err != nil {
		return nil, err
	}
	max := s.maxAssets()
	ids := make([]string, 0, max)
	for _, m := range markets {
		if !m.Active || !m.Tradeable() {
			continue
		}
		for _, id := range m.ClobTokenIDs {
			if id == "" {
				continue
			}
			ids = append(ids, id)
			if len(ids) >= max {
				return ids, nil
			}
		}
	}
	return ids, nil
}

func (s *PriceStreamService) onMessage(_ clob.Envelope, raw []byte) {
	updates := clob.ExtractPriceUpdates(raw)
	if len(updates) == 0 {
		return
	}
	now := time.Now().UTC()
	s.mu.Lock()
	if s.quotes == nil {
		s.quotes = make(map[string]Quote)
	}
	for _, u := range updates {
		s.quotes[u.AssetID] = Quote{Price: u.Price, UpdatedAt: now}
	}
	s.mu.Unlock()
}

// Quote returns the cached live price for a token, if the stream has seen
// one.
func (s *PriceStreamService) Quote(tokenID string) (Quote, bool) {
	if s == nil {
		return Quote{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[tokenID]
	return q, ok
}

// Snapshot copies the whole cache for API consumers.
func (s *PriceStreamService) Snapshot() map[string]Quote {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Quote, len(s.quotes))
	for id, q := range s.quotes {
		out[id] = q
	}
	return out
}

func (s *PriceStreamService) maxAssets() int {
	if s.MaxAssets > 0 {
		return s.MaxAssets
	}
	return defaultMaxStreamAssets
}
