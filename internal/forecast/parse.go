package forecast

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bchung1201/PolyMaster/internal/edge"
)

// Model output is free text. Extraction tries, in order: the prompted
// conclusion sentence ("... likelihood of 0.72 ..."), an explicit percentage,
// then the first bare decimal strictly inside (0,1). Nothing here ever fails;
// an unusable text yields the caller's fallback probability.
var (
	likelihoodRe = regexp.MustCompile(`(?i)likelihood of (\d*\.?\d+)`)
	percentRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	numberRe     = regexp.MustCompile(`\d*\.?\d+`)
	confidenceRe = regexp.MustCompile(`(?i)confidence:\s*(high|medium|low)`)
)

// extractProbability returns a normalized probability, a confidence graded
// by how specific the match was, and whether anything matched at all.
func extractProbability(text string, fallback float64) (float64, edge.Confidence, bool) {
	if m := likelihoodRe.FindStringSubmatch(text); m != nil {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			return edge.NormalizeProbability(p), edge.High, true
		}
	}
	if m := percentRe.FindStringSubmatch(text); m != nil {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			return edge.NormalizeProbability(p / 100), edge.Medium, true
		}
	}
	for _, candidate := range numberRe.FindAllString(text, -1) {
		p, err := strconv.ParseFloat(candidate, 64)
		if err != nil {
			continue
		}
		if p > 0 && p < 1 {
			return edge.NormalizeProbability(p), edge.Low, true
		}
	}
	return edge.NormalizeProbability(fallback), edge.Low, false
}

// extractConfidence honors an explicit "CONFIDENCE: HIGH|MEDIUM|LOW" line
// when the model emits one.
func extractConfidence(text string) (edge.Confidence, bool) {
	m := confidenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	switch strings.ToUpper(m[1]) {
	case "HIGH":
		return edge.High, true
	case "MEDIUM":
		return edge.Medium, true
	default:
		return edge.Low, true
	}
}

// extractRationale keeps the analysis section when the model followed the
// prompted ANALYSIS/CONCLUSION structure, otherwise the whole text.
func extractRationale(text string) string {
	rationale := text
	if _, after, ok := strings.Cut(rationale, "ANALYSIS:"); ok {
		rationale = after
	}
	if before, _, ok := strings.Cut(rationale, "CONCLUSION:"); ok {
		rationale = before
	}
	return strings.TrimSpace(rationale)
}
