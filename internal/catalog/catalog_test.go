package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bchung1201/PolyMaster/internal/client/gamma"
)

type stubFetcher struct {
	mu          sync.Mutex
	listCalls   atomic.Int64
	eventCalls  atomic.Int64
	getCalls    atomic.Int64
	listDelay   time.Duration
	markets     []gamma.RawMarket
	events      []gamma.RawEvent
	market      *gamma.RawMarket
	listErr     error
	eventErr    error
	getErr      error
}

func (f *stubFetcher) ListMarkets(ctx context.Context, params gamma.ListParams) ([]gamma.RawMarket, error) {
	f.listCalls.Add(1)
	if f.listDelay > 0 {
		time.Sleep(f.listDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.markets, nil
}

func (f *stubFetcher) ListEvents(ctx context.Context, params gamma.ListParams) ([]gamma.RawEvent, error) {
	f.eventCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	return f.events, nil
}

func (f *stubFetcher) GetMarketByID(ctx context.Context, marketID string) (*gamma.RawMarket, error) {
	f.getCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.market, nil
}

func rawMarket(t *testing.T, id, question string) gamma.RawMarket {
	t.Helper()
	return gamma.RawMarket{
		ID:            id,
		Question:      question,
		Outcomes:      json.RawMessage(`["Yes","No"]`),
		OutcomePrices: json.RawMessage(`["0.55","0.45"]`),
		ClobTokenIDs:  json.RawMessage(`["tok-yes","tok-no"]`),
	}
}

func TestListMarketsUsesCacheWithinTTL(t *testing.T) {
	fetcher := &stubFetcher{markets: []gamma.RawMarket{rawMarket(t, "1", "q1")}}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cat := &Catalog{
		Fetcher:   fetcher,
		MarketTTL: 60 * time.Second,
		Now:       func() time.Time { return now },
	}

	for i := 0; i < 3; i++ {
		markets, err := cat.ListMarkets(context.Background())
		if err != nil {
			t.Fatalf("err=%v want=nil", err)
		}
		if len(markets) != 1 {
			t.Fatalf("markets=%d want=1", len(markets))
		}
	}
	if got := fetcher.listCalls.Load(); got != 1 {
		t.Fatalf("upstream calls=%d want=1", got)
	}

	now = now.Add(61 * time.Second)
	if _, err := cat.ListMarkets(context.Background()); err != nil {
		t.Fatalf("err=%v want=nil", err)
	}
	if got := fetcher.listCalls.Load(); got != 2 {
		t.Fatalf("upstream calls after expiry=%d want=2", got)
	}
}

func TestListMarketsFailSoft(t *testing.T) {
	fetcher := &stubFetcher{listErr: errors.New("gamma down")}
	cat := &Catalog{Fetcher: fetcher}

	markets, err := cat.ListMarkets(context.Background())
	if err != nil {
		t.Fatalf("err=%v want=nil", err)
	}
	if markets == nil || len(markets) != 0 {
		t.Fatalf("markets=%v want empty slice", markets)
	}
}

func TestListEventsFailSoft(t *testing.T) {
	fetcher := &stubFetcher{eventErr: errors.New("gamma down")}
	cat := &Catalog{Fetcher: fetcher}

	events, err := cat.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("err=%v want=nil", err)
	}
	if len(events) != 0 {
		t.Fatalf("events=%d want=0", len(events))
	}
}

func TestGetMarketNotFound(t *testing.T) {
	fetcher := &stubFetcher{getErr: &gamma.APIError{Status: 404, Body: "not found"}}
	cat := &Catalog{Fetcher: fetcher}

	_, err := cat.GetMarket(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestGetMarketFailLoud(t *testing.T) {
	fetcher := &stubFetcher{getErr: errors.New("timeout")}
	cat := &Catalog{Fetcher: fetcher}

	_, err := cat.GetMarket(context.Background(), "1")
	if err == nil {
		t.Fatal("err=nil want transport error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v must not be ErrNotFound", err)
	}
}

func TestGetMarketServedFromFreshList(t *testing.T) {
	fetcher := &stubFetcher{markets: []gamma.RawMarket{rawMarket(t, "42", "cached?")}}
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cat := &Catalog{Fetcher: fetcher, Now: func() time.Time { return now }}

	if _, err := cat.ListMarkets(context.Background()); err != nil {
		t.Fatalf("err=%v want=nil", err)
	}
	market, err := cat.GetMarket(context.Background(), "42")
	if err != nil {
		t.Fatalf("err=%v want=nil", err)
	}
	if market.Question != "cached?" {
		t.Fatalf("question=%q want=%q", market.Question, "cached?")
	}
	if got := fetcher.getCalls.Load(); got != 0 {
		t.Fatalf("by-id calls=%d want=0", got)
	}
}

func TestListMarketsCoalescesConcurrentMisses(t *testing.T) {
	fetcher := &stubFetcher{
		markets:   []gamma.RawMarket{rawMarket(t, "1", "q1")},
		listDelay: 50 * time.Millisecond,
	}
	cat := &Catalog{Fetcher: fetcher}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cat.ListMarkets(context.Background())
		}()
	}
	wg.Wait()

	if got := fetcher.listCalls.Load(); got != 1 {
		t.Fatalf("upstream calls=%d want=1", got)
	}
}

func TestNormalizeMarketStringifiedArrays(t *testing.T) {
	raw := gamma.RawMarket{
		ID:            "7",
		Question:      "Will it settle?",
		Outcomes:      json.RawMessage(`"[\"Yes\", \"No\"]"`),
		OutcomePrices: json.RawMessage(`"[\"0.61\", \"0.39\"]"`),
		ClobTokenIDs:  json.RawMessage(`"[\"a\", \"b\"]"`),
		Volume:        json.RawMessage(`"12345.5"`),
	}
	market, ok := normalizeMarket(raw)
	if !ok {
		t.Fatal("ok=false want=true")
	}
	if len(market.Outcomes) != 2 || market.Outcomes[0] != "Yes" {
		t.Fatalf("outcomes=%v want [Yes No]", market.Outcomes)
	}
	if market.YesPrice() != 0.61 {
		t.Fatalf("yes price=%v want=0.61", market.YesPrice())
	}
	if market.NoPrice() != 0.39 {
		t.Fatalf("no price=%v want=0.39", market.NoPrice())
	}
	if market.Volume != 12345.5 {
		t.Fatalf("volume=%v want=12345.5", market.Volume)
	}
	if !market.Tradeable() {
		t.Fatal("tradeable=false want=true")
	}
}

func TestNormalizeMarketDefaults(t *testing.T) {
	market, ok := normalizeMarket(gamma.RawMarket{ID: "1", Question: "q"})
	if !ok {
		t.Fatal("ok=false want=true")
	}
	if !market.Active || !market.Funded {
		t.Fatalf("active=%v funded=%v want both true", market.Active, market.Funded)
	}
	if market.HasRewardsMinSize {
		t.Fatal("HasRewardsMinSize=true want=false")
	}
	if market.Tradeable() {
		t.Fatal("tradeable=true want=false for market without token ids")
	}
	if market.NoPrice() != 1 {
		t.Fatalf("no price=%v want=1 when prices absent", market.NoPrice())
	}
}

func TestNormalizeMarketRejectsMissingIdentity(t *testing.T) {
	if _, ok := normalizeMarket(gamma.RawMarket{Question: "q"}); ok {
		t.Fatal("ok=true want=false for missing id")
	}
	if _, ok := normalizeMarket(gamma.RawMarket{ID: "1"}); ok {
		t.Fatal("ok=true want=false for missing question")
	}
}

func TestNormalizeEventInlinesMarkets(t *testing.T) {
	raw := gamma.RawEvent{
		ID:      "e1",
		Title:   "Election night",
		Volume:  json.RawMessage(`"50000"`),
		Markets: []gamma.RawMarket{rawMarket(t, "m1", "q1"), {ID: "", Question: "dropped"}},
	}
	event, ok := normalizeEvent(raw)
	if !ok {
		t.Fatal("ok=false want=true")
	}
	if event.Volume != 50000 {
		t.Fatalf("volume=%v want=50000", event.Volume)
	}
	if len(event.Markets) != 1 || len(event.MarketIDs) != 1 {
		t.Fatalf("markets=%d ids=%d want=1/1", len(event.Markets), len(event.MarketIDs))
	}
}
