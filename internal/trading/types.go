package trading

import (
	"context"
	"time"

	"github.com/bchung1201/PolyMaster/internal/edge"
)

// Side is the market-level direction of a decision. Both sides are venue
// buys; they differ only in which outcome token is purchased.
type Side string

const (
	SideBuyYes Side = "BUY_YES"
	SideBuyNo  Side = "BUY_NO"
)

// Cycle outcomes. A cycle that completes without finding a candidate over
// the edge threshold is no_opportunity, not failed.
const (
	OutcomeDecision      = "decision"
	OutcomeNoOpportunity = "no_opportunity"
	OutcomeFailed        = "failed"
)

// OrderRequest is what the orchestrator hands the gateway. Side carries the
// venue side (BUY or SELL), never the market-level BUY_YES/BUY_NO.
type OrderRequest struct {
	TokenID string
	Side    string
	Price   float64
	SizeUSD float64
}

type OrderResult struct {
	OrderID string
	Status  string
}

// Gateway submits orders to the venue. Implementations must return the
// package sentinels for balance and rejection failures.
type Gateway interface {
	Balance(ctx context.Context) (float64, error)
	Price(ctx context.Context, tokenID, side string) (float64, error)
	Submit(ctx context.Context, order OrderRequest) (OrderResult, error)
}

// CycleOptions carries per-run overrides. A nil DryRun keeps the configured
// mode; MinEdge <= 0 keeps the configured threshold.
type CycleOptions struct {
	DryRun  *bool   `json:"dry_run,omitempty"`
	MinEdge float64 `json:"min_edge,omitempty"`
}

// TradeDecision is the single decision a cycle may produce.
type TradeDecision struct {
	DecisionID string `json:"decision_id"`
	MarketID   string `json:"market_id"`
	Question   string `json:"question"`
	Category   string `json:"category"`
	Side       Side   `json:"side"`
	TokenID    string `json:"token_id"`

	MarketPrice  float64         `json:"market_price"`
	Probability  float64         `json:"probability"`
	AbsoluteEdge float64         `json:"absolute_edge"`
	RelativeEdge float64         `json:"relative_edge"`
	KellySize    float64         `json:"kelly_size"`
	Confidence   edge.Confidence `json:"confidence"`
	SizeUSD      float64         `json:"size_usd"`

	Warnings  []string `json:"warnings,omitempty"`
	Rationale string   `json:"rationale,omitempty"`

	DryRun        bool   `json:"dry_run"`
	Submitted     bool   `json:"submitted"`
	OrderID       string `json:"order_id,omitempty"`
	OrderStatus   string `json:"order_status,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// CycleResult reports one full run of the decision pipeline.
type CycleResult struct {
	CycleID string  `json:"cycle_id"`
	Outcome string  `json:"outcome"`
	DryRun  bool    `json:"dry_run"`
	MinEdge float64 `json:"min_edge"`

	MarketsSeen        int `json:"markets_seen"`
	EventsSeen         int `json:"events_seen"`
	MalformedSkipped   int `json:"malformed_skipped"`
	Candidates         int `json:"candidates"`
	ForecastsAttempted int `json:"forecasts_attempted"`
	ForecastFailures   int `json:"forecast_failures"`

	Decision *TradeDecision `json:"decision,omitempty"`
	Error    string         `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
