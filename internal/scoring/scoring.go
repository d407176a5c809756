// Package scoring ranks catalog markets for trading. The factor weights and
// the 50-total / 8-per-category caps are policy constants carried over from
// the production selection algorithm; they are not tunables.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/bchung1201/PolyMaster/internal/catalog"
	"github.com/bchung1201/PolyMaster/internal/category"
)

const (
	// MaxMarkets bounds one filtering pass.
	MaxMarkets = 50
	// MaxPerCategory keeps the selection diverse across categories.
	MaxPerCategory = 8
)

type ScoredMarket struct {
	Market   catalog.Market
	Score    float64
	Category category.Tag
}

// Score sums five independent capped factors: spread quality (≤30), time to
// resolution (≤25), funded bonus (20), question richness (≤15) and the
// rewards minimum-size bonus (≤10).
func Score(m catalog.Market, now time.Time) float64 {
	var score float64

	if m.Spread > 0 {
		score += math.Max(0, 30-m.Spread*100)
	}

	score += timeScore(m, now)

	if m.Funded {
		score += 20
	}

	switch length := len(m.Question); {
	case length > 100:
		score += 15
	case length > 50:
		score += 10
	default:
		score += 5
	}

	if m.HasRewardsMinSize && m.RewardsMinSize > 0 {
		switch {
		case m.RewardsMinSize >= 100:
			score += 10
		case m.RewardsMinSize >= 50:
			score += 7
		default:
			score += 3
		}
	}

	return score
}

// timeScore favors markets resolving in 1-30 days. An unparseable end date
// earns the neutral 10; an already-resolved market earns nothing.
func timeScore(m catalog.Market, now time.Time) float64 {
	if m.EndTime == nil {
		return 10
	}
	days := int(m.EndTime.Sub(now).Hours() / 24)
	switch {
	case days <= 0:
		return 0
	case days <= 30:
		return 25
	case days <= 90:
		return 20
	case days <= 180:
		return 15
	default:
		return 5
	}
}

// FilterForTrading scores active markets, sorts descending (stable, so ties
// keep input order) and walks the ranking accepting at most MaxPerCategory
// per category until MaxMarkets are selected. Pure: no I/O, `now` injected.
func FilterForTrading(markets []catalog.Market, now time.Time) []ScoredMarket {
	scored := make([]ScoredMarket, 0, len(markets))
	for _, m := range markets {
		if !m.Active {
			continue
		}
		scored = append(scored, ScoredMarket{
			Market:   m,
			Score:    Score(m, now),
			Category: category.Detect(m.Question),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	counts := make(map[category.Tag]int, len(scored))
	selected := make([]ScoredMarket, 0, MaxMarkets)
	for _, sm := range scored {
		if counts[sm.Category] >= MaxPerCategory {
			continue
		}
		selected = append(selected, sm)
		counts[sm.Category]++
		if len(selected) >= MaxMarkets {
			break
		}
	}
	return selected
}
