package trading

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/bchung1201/PolyMaster/internal/catalog"
	"github.com/bchung1201/PolyMaster/internal/category"
	"github.com/bchung1201/PolyMaster/internal/edge"
	"github.com/bchung1201/PolyMaster/internal/forecast"
	"github.com/bchung1201/PolyMaster/internal/models"
	"github.com/bchung1201/PolyMaster/internal/repository"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// market builds an active, funded market ending in 20 days with aligned
// outcomes, prices and settlement tokens.
func market(id, question string, yes float64) catalog.Market {
	end := testNow.Add(20 * 24 * time.Hour)
	return catalog.Market{
		ID:            id,
		Question:      question,
		EndTime:       &end,
		Active:        true,
		Funded:        true,
		Volume:        50000,
		Outcomes:      []string{"Yes", "No"},
		OutcomePrices: []float64{yes, 1 - yes},
		ClobTokenIDs:  []string{id + "-yes", id + "-no"},
	}
}

func event(id string, volume float64, featured bool, marketIDs ...string) catalog.Event {
	return catalog.Event{ID: id, Volume: volume, Featured: featured, MarketIDs: marketIDs}
}

type stubCatalog struct {
	markets    []catalog.Market
	events     []catalog.Event
	marketsErr error
	eventsErr  error
}

func (s *stubCatalog) ListMarkets(context.Context) ([]catalog.Market, error) {
	return s.markets, s.marketsErr
}

func (s *stubCatalog) ListEvents(context.Context) ([]catalog.Event, error) {
	return s.events, s.eventsErr
}

type stubProvider struct {
	byMarket map[string]forecast.Forecast
	errFor   map[string]error
	reqs     []forecast.Request
}

func (s *stubProvider) Forecast(_ context.Context, req forecast.Request) (forecast.Forecast, error) {
	s.reqs = append(s.reqs, req)
	if err, ok := s.errFor[req.MarketID]; ok {
		return forecast.Forecast{}, err
	}
	if f, ok := s.byMarket[req.MarketID]; ok {
		return f, nil
	}
	return forecast.Forecast{Probability: 0.5, Confidence: edge.Low, Fallback: true}, nil
}

type stubGateway struct {
	balance    float64
	balanceErr error
	price      float64
	priceErr   error
	result     OrderResult
	submitErr  error

	balanceCalls int
	priceCalls   int
	submitCalls  int
	lastOrder    OrderRequest
}

func (s *stubGateway) Balance(context.Context) (float64, error) {
	s.balanceCalls++
	return s.balance, s.balanceErr
}

func (s *stubGateway) Price(_ context.Context, _, _ string) (float64, error) {
	s.priceCalls++
	return s.price, s.priceErr
}

func (s *stubGateway) Submit(_ context.Context, order OrderRequest) (OrderResult, error) {
	s.submitCalls++
	s.lastOrder = order
	return s.result, s.submitErr
}

type stubHeadlines struct {
	byTag map[category.Tag][]string
}

func (s stubHeadlines) Headlines(tag category.Tag) []string {
	return s.byTag[tag]
}

type stubRepo struct {
	err       error
	cycles    []models.CycleRecord
	decisions []models.TradeDecisionRecord
	forecasts []models.ForecastRecord
}

func (r *stubRepo) InsertCycle(_ context.Context, item *models.CycleRecord) error {
	if r.err != nil {
		return r.err
	}
	r.cycles = append(r.cycles, *item)
	return nil
}

func (r *stubRepo) GetCycleByCycleID(context.Context, string) (*models.CycleRecord, error) {
	return nil, r.err
}

func (r *stubRepo) ListCycles(context.Context, repository.ListCyclesParams) ([]models.CycleRecord, error) {
	return nil, r.err
}

func (r *stubRepo) CountCycles(context.Context, repository.ListCyclesParams) (int64, error) {
	return 0, r.err
}

func (r *stubRepo) InsertDecision(_ context.Context, item *models.TradeDecisionRecord) error {
	if r.err != nil {
		return r.err
	}
	r.decisions = append(r.decisions, *item)
	return nil
}

func (r *stubRepo) ListDecisions(context.Context, repository.ListDecisionsParams) ([]models.TradeDecisionRecord, error) {
	return nil, r.err
}

func (r *stubRepo) CountDecisions(context.Context, repository.ListDecisionsParams) (int64, error) {
	return 0, r.err
}

func (r *stubRepo) InsertForecast(_ context.Context, item *models.ForecastRecord) error {
	if r.err != nil {
		return r.err
	}
	r.forecasts = append(r.forecasts, *item)
	return nil
}

func (r *stubRepo) ListForecasts(context.Context, repository.ListForecastsParams) ([]models.ForecastRecord, error) {
	return nil, r.err
}

func (r *stubRepo) CountForecasts(context.Context, repository.ListForecastsParams) (int64, error) {
	return 0, r.err
}

func (r *stubRepo) UpsertNewsArticles(context.Context, []models.NewsArticleRecord) error {
	return r.err
}

func (r *stubRepo) ListNewsArticles(context.Context, repository.ListNewsParams) ([]models.NewsArticleRecord, error) {
	return nil, r.err
}

func (r *stubRepo) DeleteStaleNewsArticles(context.Context, time.Time) (int64, error) {
	return 0, r.err
}

func newOrchestrator(cat *stubCatalog, prov forecast.Provider, gw Gateway) *Orchestrator {
	return &Orchestrator{
		Catalog:   cat,
		Forecasts: prov,
		Gateway:   gw,
		DryRun:    true,
		Now:       func() time.Time { return testNow },
	}
}

func TestRunCycleFindsOpportunity(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{
			market("A", "Will the incumbent win the election?", 0.55),
			func() catalog.Market {
				m := market("B", "Will the senate confirm the nominee?", 0.5)
				m.Active = false
				return m
			}(),
			market("C", "Will bitcoin hit 100k?", 0.5),
		},
		events: []catalog.Event{event("ev1", 50000, false, "A", "C")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.8, Confidence: edge.High, Rationale: "strong polling lead."},
		"C": {Probability: 0.51, Confidence: edge.Low},
	}}
	o := newOrchestrator(cat, prov, nil)
	o.Headlines = stubHeadlines{byTag: map[category.Tag][]string{
		category.Politics: {"Polls tighten in final week."},
	}}

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Outcome != OutcomeDecision {
		t.Fatalf("outcome=%q want=%q", res.Outcome, OutcomeDecision)
	}
	if res.MarketsSeen != 3 || res.EventsSeen != 1 || res.Candidates != 2 {
		t.Fatalf("counters=%+v want markets=3 events=1 candidates=2", res)
	}
	if res.ForecastsAttempted != 1 {
		t.Fatalf("forecasts_attempted=%d want=1 (stop at first over threshold)", res.ForecastsAttempted)
	}

	d := res.Decision
	if d == nil {
		t.Fatal("expected a decision")
	}
	if d.MarketID != "A" || d.Side != SideBuyYes || d.TokenID != "A-yes" {
		t.Fatalf("decision=%+v want market=A side=BUY_YES token=A-yes", d)
	}
	if !almostEqual(d.MarketPrice, 0.55) || !almostEqual(d.AbsoluteEdge, 0.25) {
		t.Fatalf("price=%v edge=%v want price=0.55 edge=0.25", d.MarketPrice, d.AbsoluteEdge)
	}
	if !almostEqual(d.RelativeEdge, 0.25/0.55*100) || !almostEqual(d.KellySize, 0.5) {
		t.Fatalf("relative=%v kelly=%v", d.RelativeEdge, d.KellySize)
	}
	if d.Confidence != edge.High {
		t.Fatalf("confidence=%q want=HIGH", d.Confidence)
	}
	if !almostEqual(d.SizeUSD, 0.5) {
		t.Fatalf("size_usd=%v want=0.5 (kelly x base order)", d.SizeUSD)
	}
	if !d.DryRun || d.Submitted {
		t.Fatalf("dry_run=%v submitted=%v want dry-run unsubmitted", d.DryRun, d.Submitted)
	}

	if len(prov.reqs) != 1 || prov.reqs[0].Question != "Will the incumbent win the election?" {
		t.Fatalf("reqs=%+v want one forecast for market A", prov.reqs)
	}
	if !almostEqual(prov.reqs[0].YesPrice, 0.55) {
		t.Fatalf("yes_price=%v want=0.55", prov.reqs[0].YesPrice)
	}
	if len(prov.reqs[0].Headlines) != 1 || prov.reqs[0].Headlines[0] != "Polls tighten in final week." {
		t.Fatalf("headlines=%v want politics headlines attached", prov.reqs[0].Headlines)
	}
}

func TestRunCycleFirstOverThresholdWins(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{
			market("X", "Will the senate vote pass?", 0.5),
			market("Y", "Will the president resign?", 0.5),
		},
		events: []catalog.Event{event("ev1", 0, true, "X", "Y")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"X": {Probability: 0.53, Confidence: edge.Low},
		"Y": {Probability: 0.8, Confidence: edge.High},
	}}
	o := newOrchestrator(cat, prov, nil)

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Decision == nil || res.Decision.MarketID != "X" {
		t.Fatalf("decision=%+v want first-over-threshold market X, not best-edge Y", res.Decision)
	}
	if len(prov.reqs) != 1 || prov.reqs[0].MarketID != "X" {
		t.Fatalf("reqs=%+v want pipeline to stop after X", prov.reqs)
	}
}

func TestRunCycleBuysNoSide(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{market("A", "Will the incumbent win the election?", 0.5)},
		events:  []catalog.Event{event("ev1", 50000, false, "A")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.3, Confidence: edge.High},
	}}
	o := newOrchestrator(cat, prov, nil)

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	d := res.Decision
	if d == nil || d.Side != SideBuyNo || d.TokenID != "A-no" {
		t.Fatalf("decision=%+v want BUY_NO of A-no", d)
	}
	if !almostEqual(d.MarketPrice, 0.5) || !almostEqual(d.AbsoluteEdge, 0.2) {
		t.Fatalf("price=%v edge=%v want NO quote 0.5 and edge 0.2", d.MarketPrice, d.AbsoluteEdge)
	}
}

func TestRunCycleDryRunNeverTouchesGateway(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{market("A", "Will the incumbent win the election?", 0.55)},
		events:  []catalog.Event{event("ev1", 50000, false, "A")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.8, Confidence: edge.High},
	}}
	gw := &stubGateway{balance: 100, price: 0.55, result: OrderResult{OrderID: "ord-1"}}
	o := newOrchestrator(cat, prov, gw)

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Decision == nil || res.Decision.Submitted {
		t.Fatalf("decision=%+v want unsubmitted dry-run decision", res.Decision)
	}
	if gw.balanceCalls != 0 || gw.priceCalls != 0 || gw.submitCalls != 0 {
		t.Fatalf("gateway calls=%d/%d/%d want none in dry run",
			gw.balanceCalls, gw.priceCalls, gw.submitCalls)
	}
}

func TestRunCycleLiveSubmits(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{market("A", "Will the incumbent win the election?", 0.55)},
		events:  []catalog.Event{event("ev1", 50000, false, "A")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.8, Confidence: edge.High},
	}}
	gw := &stubGateway{balance: 100, price: 0.56, result: OrderResult{OrderID: "ord-1", Status: "live"}}
	o := newOrchestrator(cat, prov, gw)
	o.DryRun = false

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	d := res.Decision
	if d == nil || !d.Submitted {
		t.Fatalf("decision=%+v want submitted", d)
	}
	if d.OrderID != "ord-1" || d.OrderStatus != "live" {
		t.Fatalf("order=%q status=%q", d.OrderID, d.OrderStatus)
	}
	if !almostEqual(d.MarketPrice, 0.56) {
		t.Fatalf("price=%v want fresh venue price 0.56", d.MarketPrice)
	}
	if gw.lastOrder.TokenID != "A-yes" || gw.lastOrder.Side != "BUY" {
		t.Fatalf("order=%+v want BUY of A-yes", gw.lastOrder)
	}
	if !almostEqual(gw.lastOrder.Price, 0.56) || !almostEqual(gw.lastOrder.SizeUSD, 0.5) {
		t.Fatalf("order=%+v want price=0.56 size=0.5", gw.lastOrder)
	}
}

func TestRunCycleInsufficientBalance(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{market("A", "Will the incumbent win the election?", 0.55)},
		events:  []catalog.Event{event("ev1", 50000, false, "A")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.8, Confidence: edge.High},
	}}
	gw := &stubGateway{balance: 0.1}
	o := newOrchestrator(cat, prov, gw)
	o.DryRun = false

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v want nil (decision failure is not a cycle failure)", err)
	}
	if res.Outcome != OutcomeDecision {
		t.Fatalf("outcome=%q want=%q", res.Outcome, OutcomeDecision)
	}
	d := res.Decision
	if d == nil || d.Submitted {
		t.Fatalf("decision=%+v want unsubmitted", d)
	}
	if !strings.Contains(d.FailureReason, ErrInsufficientBalance.Error()) {
		t.Fatalf("failure=%q want insufficient balance", d.FailureReason)
	}
	if gw.priceCalls != 0 || gw.submitCalls != 0 {
		t.Fatalf("price=%d submit=%d want no calls past the balance check",
			gw.priceCalls, gw.submitCalls)
	}
}

func TestRunCyclePartialFailures(t *testing.T) {
	broken := catalog.Market{ID: "bad", Question: "Will the senate confirm the nominee?", Active: true}
	cat := &stubCatalog{
		markets: []catalog.Market{
			broken,
			market("M1", "Will the senate vote pass?", 0.5),
			market("M2", "Will the president resign?", 0.5),
		},
		events: []catalog.Event{event("ev1", 50000, false, "M1", "M2")},
	}
	prov := &stubProvider{
		byMarket: map[string]forecast.Forecast{
			"M2": {Probability: 0.8, Confidence: edge.High},
		},
		errFor: map[string]error{"M1": errors.New("model overloaded")},
	}
	o := newOrchestrator(cat, prov, nil)

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.MalformedSkipped != 1 {
		t.Fatalf("malformed_skipped=%d want=1", res.MalformedSkipped)
	}
	if res.ForecastsAttempted != 2 || res.ForecastFailures != 1 {
		t.Fatalf("attempted=%d failures=%d want 2/1",
			res.ForecastsAttempted, res.ForecastFailures)
	}
	if res.Decision == nil || res.Decision.MarketID != "M2" {
		t.Fatalf("decision=%+v want M2 after M1 forecast failure", res.Decision)
	}
}

func TestRunCycleFallbackNeverTrades(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{market("A", "Will the vote happen this year?", 0.5)},
		events:  []catalog.Event{event("ev1", 50000, false, "A")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.9, Confidence: edge.Low, Fallback: true},
	}}
	o := newOrchestrator(cat, prov, nil)

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Outcome != OutcomeNoOpportunity || res.Decision != nil {
		t.Fatalf("res=%+v want no opportunity from a fallback forecast", res)
	}
	if res.ForecastsAttempted != 1 || res.ForecastFailures != 1 {
		t.Fatalf("attempted=%d failures=%d want 1/1",
			res.ForecastsAttempted, res.ForecastFailures)
	}
}

func TestRunCycleQualityGate(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{
			market("G1", "Will the mayor win reelection?", 0.5),
			market("G2", "Will the governor veto the bill?", 0.5),
			market("G3", "Will congress pass the budget?", 0.5),
		},
		events: []catalog.Event{
			event("small", 500, false, "G1"),
			// G2 has no enclosing event.
			event("featured", 0, true, "G3"),
		},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"G3": {Probability: 0.5, Confidence: edge.Low},
	}}
	o := newOrchestrator(cat, prov, nil)

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Candidates != 1 {
		t.Fatalf("candidates=%d want only the featured-event market", res.Candidates)
	}
	if len(prov.reqs) != 1 || prov.reqs[0].MarketID != "G3" {
		t.Fatalf("reqs=%+v want forecast only for G3", prov.reqs)
	}
	if res.Outcome != OutcomeNoOpportunity {
		t.Fatalf("outcome=%q want=%q", res.Outcome, OutcomeNoOpportunity)
	}
}

func TestRunCycleIngestFailure(t *testing.T) {
	cat := &stubCatalog{marketsErr: errors.New("gamma down")}
	o := newOrchestrator(cat, &stubProvider{}, nil)

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err == nil || !strings.Contains(err.Error(), "list markets") {
		t.Fatalf("err=%v want wrapped ingestion failure", err)
	}
	if res.Outcome != OutcomeFailed || res.Error == "" {
		t.Fatalf("res=%+v want failed outcome with error", res)
	}
}

func TestRunCycleMinEdgeOverride(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{market("A", "Will the incumbent win the election?", 0.5)},
		events:  []catalog.Event{event("ev1", 50000, false, "A")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.55, Confidence: edge.Low},
	}}
	o := newOrchestrator(cat, prov, nil)

	// Edge 0.05 clears the default threshold but not an override of 0.1.
	res, err := o.RunCycle(context.Background(), CycleOptions{MinEdge: 0.1})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Outcome != OutcomeNoOpportunity {
		t.Fatalf("outcome=%q want no opportunity under min_edge=0.1", res.Outcome)
	}
	if !almostEqual(res.MinEdge, 0.1) {
		t.Fatalf("min_edge=%v want=0.1", res.MinEdge)
	}

	res, err = o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Outcome != OutcomeDecision {
		t.Fatalf("outcome=%q want decision under the default threshold", res.Outcome)
	}
}

func TestRunCycleDryRunOverrideRestored(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{market("A", "Will the incumbent win the election?", 0.55)},
		events:  []catalog.Event{event("ev1", 50000, false, "A")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.8, Confidence: edge.High},
	}}
	gw := &stubGateway{balance: 100, price: 0.55, result: OrderResult{OrderID: "ord-1", Status: "live"}}
	o := newOrchestrator(cat, prov, gw)

	live := false
	res, err := o.RunCycle(context.Background(), CycleOptions{DryRun: &live})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.DryRun {
		t.Fatal("cycle should have run live under the override")
	}
	if gw.submitCalls != 1 {
		t.Fatalf("submit_calls=%d want=1", gw.submitCalls)
	}
	if !o.currentDryRun() {
		t.Fatal("configured dry-run mode must be restored after the cycle")
	}
}

func TestRunCyclePersistsRecords(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{
			market("F1", "Will the senate vote pass?", 0.5),
			market("D1", "Will the president resign?", 0.5),
		},
		events: []catalog.Event{event("ev1", 50000, false, "F1", "D1")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"F1": {Probability: 0.5, Confidence: edge.Low, Fallback: true},
		"D1": {Probability: 0.8, Confidence: edge.High},
	}}
	repo := &stubRepo{}
	o := newOrchestrator(cat, prov, nil)
	o.Repo = repo
	o.ModelName = "gpt-4o"

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(repo.cycles) != 1 {
		t.Fatalf("cycles=%d want=1", len(repo.cycles))
	}
	cycle := repo.cycles[0]
	if cycle.CycleID != res.CycleID || cycle.Outcome != OutcomeDecision {
		t.Fatalf("cycle=%+v want id=%s outcome=decision", cycle, res.CycleID)
	}
	if cycle.ForecastsAttempted != 2 || cycle.ForecastFailures != 1 {
		t.Fatalf("cycle=%+v want attempted=2 failures=1", cycle)
	}
	if len(repo.decisions) != 1 || repo.decisions[0].DecisionID != res.Decision.DecisionID {
		t.Fatalf("decisions=%+v want the cycle's decision", repo.decisions)
	}
	if repo.decisions[0].CycleID != res.CycleID {
		t.Fatalf("decision cycle_id=%q want=%q", repo.decisions[0].CycleID, res.CycleID)
	}
	if len(repo.forecasts) != 2 {
		t.Fatalf("forecasts=%d want=2 (fallback included)", len(repo.forecasts))
	}
	if !repo.forecasts[0].Fallback || repo.forecasts[1].Fallback {
		t.Fatalf("forecasts=%+v want fallback then real", repo.forecasts)
	}
	if repo.forecasts[1].Model != "gpt-4o" {
		t.Fatalf("model=%q want=gpt-4o", repo.forecasts[1].Model)
	}
	if repo.forecasts[0].CycleID == nil || *repo.forecasts[0].CycleID != res.CycleID {
		t.Fatalf("forecast cycle_id=%v want=%q", repo.forecasts[0].CycleID, res.CycleID)
	}
}

func TestRunCycleAbsorbsRepositoryFailures(t *testing.T) {
	cat := &stubCatalog{
		markets: []catalog.Market{market("A", "Will the incumbent win the election?", 0.55)},
		events:  []catalog.Event{event("ev1", 50000, false, "A")},
	}
	prov := &stubProvider{byMarket: map[string]forecast.Forecast{
		"A": {Probability: 0.8, Confidence: edge.High},
	}}
	o := newOrchestrator(cat, prov, nil)
	o.Repo = &stubRepo{err: errors.New("db down")}

	res, err := o.RunCycle(context.Background(), CycleOptions{})
	if err != nil {
		t.Fatalf("err=%v want persistence failures absorbed", err)
	}
	if res.Outcome != OutcomeDecision {
		t.Fatalf("outcome=%q want=%q", res.Outcome, OutcomeDecision)
	}
}

func TestValidateDecision(t *testing.T) {
	valid := &TradeDecision{TokenID: "tok", MarketPrice: 0.5, SizeUSD: 1}
	if err := validateDecision(valid); err != nil {
		t.Fatalf("err=%v want nil", err)
	}
	cases := []struct {
		name string
		d    *TradeDecision
	}{
		{"zero size", &TradeDecision{TokenID: "tok", MarketPrice: 0.5}},
		{"zero price", &TradeDecision{TokenID: "tok", SizeUSD: 1}},
		{"price at one", &TradeDecision{TokenID: "tok", MarketPrice: 1, SizeUSD: 1}},
		{"missing token", &TradeDecision{MarketPrice: 0.5, SizeUSD: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateDecision(tc.d)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err=%v want ErrValidation", err)
			}
		})
	}
}
