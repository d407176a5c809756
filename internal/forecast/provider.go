package forecast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/edge"
)

const defaultTimeout = 8 * time.Second

// Completer is the slice of the chat client this package needs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMProvider asks a chat model for a probability estimate. Transport and
// API failures are returned as errors; answers the parser cannot use come
// back as fallback forecasts with a nil error.
type LLMProvider struct {
	Client  Completer
	Logger  *zap.Logger
	Default float64       // probability when the answer is unusable, 0 means 0.5
	Timeout time.Duration // per-call bound, 0 means 8s
}

func (p *LLMProvider) Forecast(ctx context.Context, req Request) (Forecast, error) {
	if p == nil || p.Client == nil {
		return Forecast{}, fmt.Errorf("no completion client configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	text, err := p.Client.Complete(callCtx, p.buildPrompt(req))
	if err != nil {
		return Forecast{}, fmt.Errorf("completion: %w", err)
	}

	probability, confidence, matched := extractProbability(text, p.defaultProbability())
	if explicit, ok := extractConfidence(text); ok {
		confidence = explicit
	}
	if !matched {
		p.logger().Warn("no probability in model answer, using fallback",
			zap.String("market_id", req.MarketID),
			zap.Int("answer_len", len(text)))
		confidence = edge.Low
	}

	return Forecast{
		Probability: probability,
		Confidence:  confidence,
		Rationale:   extractRationale(text),
		Raw:         text,
		Fallback:    !matched,
	}, nil
}

// buildPrompt structures the request so the answer carries a machine-findable
// conclusion sentence. The ANALYSIS/CONCLUSION/CONFIDENCE layout matches what
// the parser looks for.
func (p *LLMProvider) buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a professional superforecaster evaluating a prediction market.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", req.Question)
	if req.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.Description)
	}
	fmt.Fprintf(&b, "Current market prices: YES = %.3f, NO = %.3f\n", req.YesPrice, req.NoPrice)
	if len(req.Headlines) > 0 {
		b.WriteString("\nRecent headlines:\n")
		for _, h := range req.Headlines {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}
	b.WriteString(`
Weigh base rates, the current evidence and the time remaining, then answer in
exactly this structure:

ANALYSIS: your reasoning, a short paragraph.
CONCLUSION: I believe this question has a likelihood of [PROBABILITY] for outcome of YES.
CONFIDENCE: [HIGH, MEDIUM or LOW]
CATALYSTS: upcoming events that could move the probability.

Rules:
- [PROBABILITY] must be a decimal between 0 and 1, such as 0.65, never a percentage.
- Commit to a number; only answer near 0.5 when the evidence is genuinely balanced.
`)
	return b.String()
}

func (p *LLMProvider) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return defaultTimeout
}

func (p *LLMProvider) defaultProbability() float64 {
	if p.Default > 0 {
		return p.Default
	}
	return defaultProbability
}

func (p *LLMProvider) logger() *zap.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return zap.NewNop()
}
