// Package edge turns a model probability and a quoted market price into a
// trading signal.
package edge

import "math"

// Confidence buckets the strength of a signal by absolute edge.
type Confidence string

const (
	High   Confidence = "HIGH"
	Medium Confidence = "MEDIUM"
	Low    Confidence = "LOW"
)

// Result is one computed signal. KellySize is a simplified monotonic proxy
// (2 x absolute edge), not a bankroll-aware Kelly fraction; downstream sizing
// depends on this exact form, so it must not be "corrected".
type Result struct {
	AbsoluteEdge float64
	RelativeEdge float64
	KellySize    float64
	Confidence   Confidence
}

// NormalizeProbability coerces a forecast probability into [0.01, 0.99].
// Values above 2 are taken to be percentages (65 means 0.65) and divided by
// 100 first; values between 1 and 2 are treated as out-of-range probabilities
// and clamped straight to 0.99. The percent detection is lossy: a forecaster
// genuinely meaning "150%" and one meaning 1.5 both end at 0.99.
func NormalizeProbability(p float64) float64 {
	if p > 2 {
		p /= 100
	}
	return math.Min(0.99, math.Max(0.01, p))
}

// Compute normalizes the probability and derives the signal. A non-positive
// price yields relative edge 0: a degenerate quote carries no relative-edge
// information.
func Compute(probability, price float64) Result {
	p := NormalizeProbability(probability)
	abs := math.Abs(p - price)

	var rel float64
	if price > 0 {
		rel = abs / price * 100
	}

	r := Result{
		AbsoluteEdge: abs,
		RelativeEdge: rel,
		KellySize:    abs * 2,
	}
	switch {
	case abs > 0.10:
		r.Confidence = High
	case abs > 0.05:
		r.Confidence = Medium
	default:
		r.Confidence = Low
	}
	return r
}
