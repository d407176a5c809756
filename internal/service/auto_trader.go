package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/trading"
)

type cycleRunner interface {
	RunCycle(ctx context.Context, opts trading.CycleOptions) (trading.CycleResult, error)
}

// AutoTraderService runs decision cycles on the scheduler's cadence in the
// orchestrator's configured run mode. Disabled instances are inert so the
// wiring can stay unconditional.
type AutoTraderService struct {
	Orchestrator cycleRunner
	Logger       *zap.Logger
	Enabled      bool
}

// RunOnce executes one scheduled cycle. Failures are logged, never
// propagated; the next tick gets a fresh attempt.
func (s *AutoTraderService) RunOnce(ctx context.Context) {
	if s == nil || s.Orchestrator == nil || !s.Enabled {
		return
	}
	res, err := s.Orchestrator.RunCycle(ctx, trading.CycleOptions{})
	log := s.logger().With(zap.String("cycle_id", res.CycleID))
	if err != nil {
		log.Warn("scheduled cycle failed", zap.Error(err))
		return
	}
	if res.Outcome == trading.OutcomeDecision && res.Decision != nil {
		log.Info("scheduled cycle found opportunity",
			zap.String("market_id", res.Decision.MarketID),
			zap.String("side", string(res.Decision.Side)),
			zap.Float64("size_usd", res.Decision.SizeUSD),
			zap.Bool("submitted", res.Decision.Submitted))
		return
	}
	log.Info("scheduled cycle finished",
		zap.String("outcome", res.Outcome),
		zap.Int("candidates", res.Candidates),
		zap.Int("forecasts_attempted", res.ForecastsAttempted))
}

func (s *AutoTraderService) logger() *zap.Logger {
	if s != nil && s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
