// Package trading runs the decision pipeline: ingest the market catalog,
// filter to high-quality candidates, forecast each one, compute edge and
// either report the first opportunity (dry run) or submit one order through
// the gateway.
package trading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/bchung1201/PolyMaster/internal/catalog"
	"github.com/bchung1201/PolyMaster/internal/category"
	"github.com/bchung1201/PolyMaster/internal/edge"
	"github.com/bchung1201/PolyMaster/internal/forecast"
	"github.com/bchung1201/PolyMaster/internal/models"
	"github.com/bchung1201/PolyMaster/internal/repository"
	"github.com/bchung1201/PolyMaster/internal/risk"
	"github.com/bchung1201/PolyMaster/internal/scoring"
)

const (
	defaultMinEdge       = 0.02
	defaultBaseOrderUSD  = 1.0
	defaultMinVolume     = 10000
	defaultSubmitTimeout = 30 * time.Second
)

// CatalogSource is the slice of the market catalog the pipeline reads. Each
// cycle reads it exactly once; nothing re-queries mid-pipeline.
type CatalogSource interface {
	ListMarkets(ctx context.Context) ([]catalog.Market, error)
	ListEvents(ctx context.Context) ([]catalog.Event, error)
}

// HeadlineSource supplies recent headlines for a market category, used as
// forecast context. Implementations must be safe for concurrent use.
type HeadlineSource interface {
	Headlines(tag category.Tag) []string
}

// Orchestrator wires the pipeline stages together. Construct with a struct
// literal; zero-value knobs fall back to the package defaults.
type Orchestrator struct {
	Catalog   CatalogSource
	Forecasts forecast.Provider
	Gateway   Gateway
	Repo      repository.Repository
	Risk      risk.Policy
	Headlines HeadlineSource
	Logger    *zap.Logger

	MinEdge       float64
	BaseOrderUSD  float64
	MinVolume     float64
	DryRun        bool
	ModelName     string
	SubmitTimeout time.Duration
	Now           func() time.Time

	mu sync.Mutex
}

// RunCycle executes one full decision cycle. A cycle that finds nothing over
// the edge threshold returns outcome no_opportunity with a nil error; only a
// total ingestion failure returns an error. A DryRun override in opts is
// restored in a defer regardless of outcome.
func (o *Orchestrator) RunCycle(ctx context.Context, opts CycleOptions) (CycleResult, error) {
	restore := o.overrideDryRun(opts.DryRun)
	defer restore()

	res := CycleResult{
		CycleID:   uuid.NewString(),
		Outcome:   OutcomeNoOpportunity,
		DryRun:    o.currentDryRun(),
		MinEdge:   o.minEdge(opts.MinEdge),
		StartedAt: o.now(),
	}
	log := o.logger().With(
		zap.String("cycle_id", res.CycleID),
		zap.Bool("dry_run", res.DryRun))
	log.Info("decision cycle started", zap.Float64("min_edge", res.MinEdge))

	var forecasts []models.ForecastRecord
	err := o.runPipeline(ctx, log, &res, &forecasts)
	res.FinishedAt = o.now()
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		log.Error("decision cycle failed", zap.Error(err))
	} else {
		log.Info("decision cycle finished",
			zap.String("outcome", res.Outcome),
			zap.Int("markets_seen", res.MarketsSeen),
			zap.Int("candidates", res.Candidates),
			zap.Int("forecasts_attempted", res.ForecastsAttempted),
			zap.Int("forecast_failures", res.ForecastFailures))
	}
	o.persist(ctx, log, res, forecasts)
	return res, err
}

func (o *Orchestrator) runPipeline(ctx context.Context, log *zap.Logger, res *CycleResult, forecasts *[]models.ForecastRecord) error {
	if o.Catalog == nil {
		return errors.New("no catalog configured")
	}
	if o.Forecasts == nil {
		return errors.New("no forecast provider configured")
	}

	// INGEST: one catalog read per cycle.
	markets, err := o.Catalog.ListMarkets(ctx)
	if err != nil {
		return fmt.Errorf("list markets: %w", err)
	}
	events, err := o.Catalog.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	res.MarketsSeen = len(markets)
	res.EventsSeen = len(events)

	// Active markets missing prices or token ids cannot be traded against;
	// skip and count them. Inactive ones are dropped by the filter.
	usable := make([]catalog.Market, 0, len(markets))
	for _, m := range markets {
		if m.Active && !m.Tradeable() {
			res.MalformedSkipped++
			continue
		}
		usable = append(usable, m)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// FILTER: score, rank, cap, then the high-quality event gate.
	scored := scoring.FilterForTrading(usable, o.now())
	candidates := o.gateCandidates(scored, events)
	res.Candidates = len(candidates)
	log.Info("candidates selected",
		zap.Int("scored", len(scored)),
		zap.Int("candidates", len(candidates)),
		zap.Int("malformed_skipped", res.MalformedSkipped))
	if err := ctx.Err(); err != nil {
		return err
	}

	// FORECAST + DECIDE: walk candidates in filtered order and stop at the
	// first whose absolute edge clears the threshold. The filtered order
	// encodes category diversity, so first-over-threshold is deliberate.
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		m := cand.Market
		res.ForecastsAttempted++
		started := time.Now()
		f, err := o.Forecasts.Forecast(ctx, forecast.Request{
			MarketID:    m.ID,
			Question:    m.Question,
			Description: m.Description,
			YesPrice:    m.YesPrice(),
			NoPrice:     m.NoPrice(),
			Headlines:   o.headlinesFor(cand.Category),
		})
		latency := time.Since(started)
		if err != nil {
			res.ForecastFailures++
			log.Warn("forecast failed, dropping candidate",
				zap.String("market_id", m.ID), zap.Error(err))
			continue
		}
		*forecasts = append(*forecasts, o.forecastRecord(res.CycleID, m, f, latency))
		if f.Fallback {
			// A default answer is not a view; never trade on it.
			res.ForecastFailures++
			log.Warn("fallback forecast, dropping candidate",
				zap.String("market_id", m.ID))
			continue
		}

		er := edge.Compute(f.Probability, m.YesPrice())
		if er.AbsoluteEdge <= res.MinEdge {
			continue
		}

		d := o.buildDecision(cand, f, er, res.DryRun)
		if res.DryRun {
			log.Info("dry run decision",
				zap.String("market_id", d.MarketID),
				zap.String("side", string(d.Side)),
				zap.Float64("absolute_edge", d.AbsoluteEdge),
				zap.Float64("size_usd", d.SizeUSD))
		} else {
			o.submit(ctx, log, d)
		}
		res.Decision = d
		res.Outcome = OutcomeDecision
		return nil
	}
	return nil
}

// gateCandidates keeps only markets whose enclosing event has volume over
// the configured floor or is featured. A market with no enclosing event
// fails the gate. The gate bounds forecast spend.
func (o *Orchestrator) gateCandidates(scored []scoring.ScoredMarket, events []catalog.Event) []scoring.ScoredMarket {
	eventByMarket := make(map[string]catalog.Event)
	for _, ev := range events {
		for _, id := range ev.MarketIDs {
			if id == "" {
				continue
			}
			eventByMarket[id] = ev
		}
	}
	minVolume := o.minVolume()
	kept := make([]scoring.ScoredMarket, 0, len(scored))
	for _, sm := range scored {
		ev, ok := eventByMarket[sm.Market.ID]
		if !ok {
			continue
		}
		if ev.Volume > minVolume || ev.Featured {
			kept = append(kept, sm)
		}
	}
	return kept
}

// buildDecision picks the side and token for the edge found and sizes the
// order through the risk policy. BUY_YES buys the first settlement token,
// BUY_NO the second; the target price is the chosen side's quote.
func (o *Orchestrator) buildDecision(cand scoring.ScoredMarket, f forecast.Forecast, er edge.Result, dryRun bool) *TradeDecision {
	m := cand.Market
	side, tokenIdx, price := SideBuyYes, 0, m.YesPrice()
	if f.Probability <= m.YesPrice() {
		side, tokenIdx, price = SideBuyNo, 1, m.NoPrice()
	}
	tokenID := ""
	if len(m.ClobTokenIDs) > tokenIdx {
		tokenID = m.ClobTokenIDs[tokenIdx]
	}
	size, warnings := o.Risk.Size(er.KellySize, o.baseOrder())
	return &TradeDecision{
		DecisionID:   uuid.NewString(),
		MarketID:     m.ID,
		Question:     m.Question,
		Category:     string(cand.Category),
		Side:         side,
		TokenID:      tokenID,
		MarketPrice:  price,
		Probability:  f.Probability,
		AbsoluteEdge: er.AbsoluteEdge,
		RelativeEdge: er.RelativeEdge,
		KellySize:    er.KellySize,
		Confidence:   er.Confidence,
		SizeUSD:      size,
		Warnings:     warnings,
		Rationale:    f.Rationale,
		DryRun:       dryRun,
	}
}

// submit runs the live order path: validate, check balance, refresh the
// side price, place the order. Failures are terminal for the decision and
// recorded on it; they never fail the cycle and are never retried.
func (o *Orchestrator) submit(ctx context.Context, log *zap.Logger, d *TradeDecision) {
	if o.Gateway == nil {
		d.FailureReason = "no order gateway configured"
		log.Error("order submit skipped", zap.String("reason", d.FailureReason))
		return
	}
	if err := validateDecision(d); err != nil {
		d.FailureReason = err.Error()
		log.Error("order validation failed",
			zap.String("market_id", d.MarketID), zap.Error(err))
		return
	}
	balance, err := o.Gateway.Balance(ctx)
	if err != nil {
		d.FailureReason = fmt.Errorf("balance check: %w", err).Error()
		log.Error("balance check failed", zap.Error(err))
		return
	}
	if balance < d.SizeUSD {
		err := fmt.Errorf("%w: balance %.2f below order %.2f",
			ErrInsufficientBalance, balance, d.SizeUSD)
		d.FailureReason = err.Error()
		log.Error("insufficient balance",
			zap.Float64("balance", balance),
			zap.Float64("size_usd", d.SizeUSD))
		return
	}
	fresh, err := o.Gateway.Price(ctx, d.TokenID, "BUY")
	if err != nil {
		d.FailureReason = fmt.Errorf("fresh price: %w", err).Error()
		log.Error("fresh price fetch failed",
			zap.String("token_id", d.TokenID), zap.Error(err))
		return
	}
	if fresh <= 0 || fresh >= 1 {
		err := fmt.Errorf("%w: fresh price %.4f outside (0,1)", ErrValidation, fresh)
		d.FailureReason = err.Error()
		log.Error("fresh price unusable", zap.Float64("price", fresh))
		return
	}
	d.MarketPrice = fresh

	// A dispatched order is never canceled mid-flight: detach from the
	// cycle's cancellation and keep only a deadline.
	subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.submitTimeout())
	defer cancel()
	result, err := o.Gateway.Submit(subCtx, OrderRequest{
		TokenID: d.TokenID,
		Side:    "BUY",
		Price:   d.MarketPrice,
		SizeUSD: d.SizeUSD,
	})
	if err != nil {
		d.FailureReason = err.Error()
		log.Error("order submit failed",
			zap.String("market_id", d.MarketID), zap.Error(err))
		return
	}
	d.Submitted = true
	d.OrderID = result.OrderID
	d.OrderStatus = result.Status
	log.Info("order submitted",
		zap.String("order_id", d.OrderID),
		zap.String("status", d.OrderStatus),
		zap.Float64("size_usd", d.SizeUSD))
}

func validateDecision(d *TradeDecision) error {
	if d.SizeUSD <= 0 {
		return fmt.Errorf("%w: size %.2f must be positive", ErrValidation, d.SizeUSD)
	}
	if d.MarketPrice <= 0 || d.MarketPrice >= 1 {
		return fmt.Errorf("%w: price %.4f outside (0,1)", ErrValidation, d.MarketPrice)
	}
	if strings.TrimSpace(d.TokenID) == "" {
		return fmt.Errorf("%w: missing token id", ErrValidation)
	}
	return nil
}

func (o *Orchestrator) forecastRecord(cycleID string, m catalog.Market, f forecast.Forecast, latency time.Duration) models.ForecastRecord {
	id := cycleID
	return models.ForecastRecord{
		CycleID:     &id,
		MarketID:    m.ID,
		Question:    m.Question,
		Probability: decimal.NewFromFloat(f.Probability),
		Confidence:  string(f.Confidence),
		Fallback:    f.Fallback,
		Model:       o.ModelName,
		LatencyMS:   latency.Milliseconds(),
		Rationale:   f.Rationale,
		Raw:         f.Raw,
	}
}

// persist is observability, not control flow: failures are logged and
// absorbed, and a shutdown in progress must not lose the records.
func (o *Orchestrator) persist(ctx context.Context, log *zap.Logger, res CycleResult, forecasts []models.ForecastRecord) {
	if o.Repo == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	rec := models.CycleRecord{
		CycleID:            res.CycleID,
		Outcome:            res.Outcome,
		DryRun:             res.DryRun,
		MinEdge:            res.MinEdge,
		MarketsSeen:        res.MarketsSeen,
		EventsSeen:         res.EventsSeen,
		MalformedSkipped:   res.MalformedSkipped,
		Candidates:         res.Candidates,
		ForecastsAttempted: res.ForecastsAttempted,
		ForecastFailures:   res.ForecastFailures,
		FailureReason:      res.Error,
		StartedAt:          res.StartedAt,
		FinishedAt:         res.FinishedAt,
	}
	if err := o.Repo.InsertCycle(pctx, &rec); err != nil {
		log.Warn("persist cycle failed", zap.Error(err))
	}
	if res.Decision != nil {
		if err := o.Repo.InsertDecision(pctx, decisionRecord(res.CycleID, res.Decision)); err != nil {
			log.Warn("persist decision failed", zap.Error(err))
		}
	}
	for i := range forecasts {
		if err := o.Repo.InsertForecast(pctx, &forecasts[i]); err != nil {
			log.Warn("persist forecast failed",
				zap.String("market_id", forecasts[i].MarketID), zap.Error(err))
		}
	}
}

func decisionRecord(cycleID string, d *TradeDecision) *models.TradeDecisionRecord {
	var warnings datatypes.JSON
	if len(d.Warnings) > 0 {
		if b, err := json.Marshal(d.Warnings); err == nil {
			warnings = datatypes.JSON(b)
		}
	}
	return &models.TradeDecisionRecord{
		DecisionID:    d.DecisionID,
		CycleID:       cycleID,
		MarketID:      d.MarketID,
		Question:      d.Question,
		Category:      d.Category,
		Side:          string(d.Side),
		TokenID:       d.TokenID,
		MarketPrice:   decimal.NewFromFloat(d.MarketPrice),
		Probability:   decimal.NewFromFloat(d.Probability),
		AbsoluteEdge:  decimal.NewFromFloat(d.AbsoluteEdge),
		RelativeEdge:  decimal.NewFromFloat(d.RelativeEdge),
		KellySize:     decimal.NewFromFloat(d.KellySize),
		SizeUSD:       decimal.NewFromFloat(d.SizeUSD),
		Confidence:    string(d.Confidence),
		Warnings:      warnings,
		Rationale:     d.Rationale,
		DryRun:        d.DryRun,
		Submitted:     d.Submitted,
		OrderID:       d.OrderID,
		OrderStatus:   d.OrderStatus,
		FailureReason: d.FailureReason,
	}
}

// overrideDryRun swaps the run-mode flag for the duration of one cycle and
// returns the restore func. With a nil override it is a no-op.
func (o *Orchestrator) overrideDryRun(override *bool) func() {
	if override == nil {
		return func() {}
	}
	o.mu.Lock()
	prev := o.DryRun
	o.DryRun = *override
	o.mu.Unlock()
	return func() {
		o.mu.Lock()
		o.DryRun = prev
		o.mu.Unlock()
	}
}

func (o *Orchestrator) currentDryRun() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.DryRun
}

func (o *Orchestrator) minEdge(override float64) float64 {
	if override > 0 {
		return override
	}
	if o.MinEdge > 0 {
		return o.MinEdge
	}
	return defaultMinEdge
}

func (o *Orchestrator) baseOrder() float64 {
	if o.BaseOrderUSD > 0 {
		return o.BaseOrderUSD
	}
	return defaultBaseOrderUSD
}

func (o *Orchestrator) minVolume() float64 {
	if o.MinVolume > 0 {
		return o.MinVolume
	}
	return defaultMinVolume
}

func (o *Orchestrator) submitTimeout() time.Duration {
	if o.SubmitTimeout > 0 {
		return o.SubmitTimeout
	}
	return defaultSubmitTimeout
}

func (o *Orchestrator) headlinesFor(tag category.Tag) []string {
	if o.Headlines == nil {
		return nil
	}
	return o.Headlines.Headlines(tag)
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}
