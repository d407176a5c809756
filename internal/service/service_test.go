package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bchung1201/PolyMaster/internal/catalog"
	"github.com/bchung1201/PolyMaster/internal/category"
	"github.com/bchung1201/PolyMaster/internal/client/clob"
	"github.com/bchung1201/PolyMaster/internal/client/news"
	"github.com/bchung1201/PolyMaster/internal/trading"
)

type stubFetcher struct {
	bySection map[string][]news.Article
	errFor    map[string]error
	calls     []string
}

func (s *stubFetcher) TopHeadlines(_ context.Context, section string) ([]news.Article, error) {
	s.calls = append(s.calls, section)
	if err, ok := s.errFor[section]; ok {
		return nil, err
	}
	return s.bySection[section], nil
}

func TestNewsRefreshFansOutSharedSections(t *testing.T) {
	fetcher := &stubFetcher{bySection: map[string][]news.Article{
		"business": {{Title: "Markets rally", URL: "https://example.com/1"}},
	}}
	s := &NewsService{Client: fetcher}

	s.Refresh(context.Background())

	// Crypto and economy share the business section: one fetch, two snapshots.
	businessCalls := 0
	for _, c := range fetcher.calls {
		if c == "business" {
			businessCalls++
		}
	}
	if businessCalls != 1 {
		t.Fatalf("business fetched %d times want 1", businessCalls)
	}
	for _, tag := range []category.Tag{category.Crypto, category.Economy} {
		got := s.Headlines(tag)
		if len(got) != 1 || got[0] != "Markets rally" {
			t.Fatalf("headlines(%s)=%v want the shared business headline", tag, got)
		}
	}
}

func TestNewsRefreshFailureClearsSnapshot(t *testing.T) {
	fetcher := &stubFetcher{bySection: map[string][]news.Article{
		"general": {{Title: "Old headline", URL: "https://example.com/old"}},
	}}
	s := &NewsService{Client: fetcher}
	s.Refresh(context.Background())
	if len(s.Headlines(category.Politics)) != 1 {
		t.Fatal("expected a politics snapshot after first refresh")
	}

	fetcher.errFor = map[string]error{"general": errors.New("quota exceeded")}
	s.Refresh(context.Background())
	if got := s.Headlines(category.Politics); got != nil {
		t.Fatalf("headlines=%v want no stale context after a failed refresh", got)
	}
}

func TestNewsArticlesCopies(t *testing.T) {
	fetcher := &stubFetcher{bySection: map[string][]news.Article{
		"sports": {{Title: "Finals tonight", URL: "https://example.com/f"}},
	}}
	s := &NewsService{Client: fetcher}
	s.Refresh(context.Background())

	got := s.Articles(category.Sports)
	if len(got) != 1 {
		t.Fatalf("articles=%d want 1", len(got))
	}
	got[0].Title = "mutated"
	if s.Articles(category.Sports)[0].Title != "Finals tonight" {
		t.Fatal("Articles must return a copy")
	}
}

type stubRunner struct {
	res   trading.CycleResult
	err   error
	calls int
}

func (s *stubRunner) RunCycle(context.Context, trading.CycleOptions) (trading.CycleResult, error) {
	s.calls++
	return s.res, s.err
}

func TestAutoTraderDisabled(t *testing.T) {
	runner := &stubRunner{}
	s := &AutoTraderService{Orchestrator: runner, Enabled: false}
	s.RunOnce(context.Background())
	if runner.calls != 0 {
		t.Fatalf("calls=%d want 0 when disabled", runner.calls)
	}
}

func TestAutoTraderRunsCycle(t *testing.T) {
	runner := &stubRunner{res: trading.CycleResult{Outcome: trading.OutcomeNoOpportunity}}
	s := &AutoTraderService{Orchestrator: runner, Enabled: true}
	s.RunOnce(context.Background())
	s.RunOnce(context.Background())
	if runner.calls != 2 {
		t.Fatalf("calls=%d want 2", runner.calls)
	}
}

func TestAutoTraderAbsorbsFailures(t *testing.T) {
	runner := &stubRunner{err: errors.New("gamma down")}
	s := &AutoTraderService{Orchestrator: runner, Enabled: true}
	s.RunOnce(context.Background())
	if runner.calls != 1 {
		t.Fatalf("calls=%d want 1", runner.calls)
	}
}

type stubLister struct {
	markets []catalog.Market
}

func (s stubLister) ListMarkets(context.Context) ([]catalog.Market, error) {
	return s.markets, nil
}

func TestPriceStreamAssetIDs(t *testing.T) {
	end := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	tradeable := catalog.Market{
		ID:            "m1",
		Question:      "q",
		EndTime:       &end,
		Active:        true,
		Outcomes:      []string{"Yes", "No"},
		OutcomePrices: []float64{0.5, 0.5},
		ClobTokenIDs:  []string{"tok-yes", "tok-no"},
	}
	inactive := tradeable
	inactive.ID = "m2"
	inactive.Active = false
	broken := catalog.Market{ID: "m3", Active: true}

	s := &PriceStreamService{
		Catalog:   stubLister{markets: []catalog.Market{tradeable, inactive, broken}},
		MaxAssets: 10,
	}
	ids, err := s.assetIDs(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(ids) != 2 || ids[0] != "tok-yes" || ids[1] != "tok-no" {
		t.Fatalf("ids=%v want only the tradeable market's tokens", ids)
	}

	s.MaxAssets = 1
	ids, err = s.assetIDs(context.Background())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("ids=%v want cap applied", ids)
	}
}

func TestPriceStreamCachesUpdates(t *testing.T) {
	s := &PriceStreamService{}
	raw := []byte(`{"event_type":"last_trade_price","asset_id":"tok-yes","price":"0.62"}`)
	s.onMessage(clob.Envelope{}, raw)

	q, ok := s.Quote("tok-yes")
	if !ok {
		t.Fatal("expected a cached quote")
	}
	if q.Price.String() != "0.62" {
		t.Fatalf("price=%s want 0.62", q.Price)
	}
	if q.UpdatedAt.IsZero() {
		t.Fatal("updated_at not set")
	}
	if _, ok := s.Quote("unknown"); ok {
		t.Fatal("unknown token should miss")
	}

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot=%v want one entry", snap)
	}
}
