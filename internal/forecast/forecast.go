// Package forecast produces probability estimates for market questions. The
// production provider prompts an LLM and parses its free-text answer; bad
// answers and transport failures degrade to a documented fallback instead of
// propagating.
package forecast

import (
	"context"

	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/edge"
)

const defaultProbability = 0.5

// Request carries everything a provider may want to condition on. Headlines
// are optional recent context for the market's category.
type Request struct {
	MarketID    string
	Question    string
	Description string
	YesPrice    float64
	NoPrice     float64
	Headlines   []string
}

// Forecast is one probability estimate. Fallback marks estimates that did
// not come from a real model answer; consumers deciding trades must not act
// on those.
type Forecast struct {
	Probability float64
	Confidence  edge.Confidence
	Rationale   string
	Raw         string
	Fallback    bool
}

type Provider interface {
	Forecast(ctx context.Context, req Request) (Forecast, error)
}

// Guarded wraps a Provider so that errors become fallback forecasts: one bad
// upstream call must never abort a whole decision cycle. The zero value is
// usable once Provider is set.
type Guarded struct {
	Provider Provider
	Default  float64
	Logger   *zap.Logger
}

func (g *Guarded) Forecast(ctx context.Context, req Request) (Forecast, error) {
	f, err := g.Provider.Forecast(ctx, req)
	if err != nil {
		g.logger().Warn("forecast failed, using fallback",
			zap.String("market_id", req.MarketID),
			zap.Error(err))
		return g.fallback(err), nil
	}
	return f, nil
}

func (g *Guarded) fallback(err error) Forecast {
	return Forecast{
		Probability: edge.NormalizeProbability(g.defaultProbability()),
		Confidence:  edge.Low,
		Rationale:   "forecast unavailable: " + err.Error(),
		Fallback:    true,
	}
}

func (g *Guarded) defaultProbability() float64 {
	if g.Default > 0 {
		return g.Default
	}
	return defaultProbability
}

func (g *Guarded) logger() *zap.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return zap.NewNop()
}
