package catalog

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/bchung1201/PolyMaster/internal/client/gamma"
)

// Market is the canonical market shape. Everything downstream of the catalog
// consumes this, never raw Gamma records.
type Market struct {
	ID                string
	Question          string
	Description       string
	End               string
	EndTime           *time.Time
	Active            bool
	Funded            bool
	RewardsMinSize    float64
	HasRewardsMinSize bool
	RewardsMaxSpread  float64
	Spread            float64
	Volume            float64
	Outcomes          []string
	OutcomePrices     []float64
	ClobTokenIDs      []string
}

// Tradeable reports whether the market carries enough structure to place an
// order against: aligned outcomes, prices and settlement token ids.
func (m Market) Tradeable() bool {
	if len(m.ClobTokenIDs) < 2 || len(m.OutcomePrices) < 2 {
		return false
	}
	return len(m.Outcomes) == len(m.OutcomePrices) && len(m.Outcomes) == len(m.ClobTokenIDs)
}

// YesPrice returns the quoted price of the first outcome, 0 when absent.
func (m Market) YesPrice() float64 {
	if len(m.OutcomePrices) == 0 {
		return 0
	}
	return m.OutcomePrices[0]
}

// NoPrice returns the quoted price of the second outcome, falling back to
// the YES complement when the feed omits it.
func (m Market) NoPrice() float64 {
	if len(m.OutcomePrices) > 1 {
		return m.OutcomePrices[1]
	}
	return 1 - m.YesPrice()
}

// Event groups related markets; it is used for discovery and the
// high-quality gate, never itself tradeable.
type Event struct {
	ID          string
	Title       string
	Slug        string
	Description string
	Volume      float64
	Featured    bool
	MarketIDs   []string
	Markets     []Market
}

// normalizeMarket coerces a raw Gamma record into the canonical shape.
// Records without an id or question are malformed and rejected.
func normalizeMarket(raw gamma.RawMarket) (Market, bool) {
	if raw.ID == "" || raw.Question == "" {
		return Market{}, false
	}
	m := Market{
		ID:               raw.ID,
		Question:         raw.Question,
		Description:      raw.Description,
		End:              raw.EndDate,
		Active:           boolOr(raw.Active, true),
		Funded:           boolOr(raw.Funded, true),
		RewardsMaxSpread: floatRaw(raw.RewardsMaxSpread),
		Spread:           floatRaw(raw.Spread),
		Volume:           floatRaw(raw.Volume),
		Outcomes:         stringListRaw(raw.Outcomes),
		OutcomePrices:    floatListRaw(raw.OutcomePrices),
		ClobTokenIDs:     stringListRaw(raw.ClobTokenIDs),
	}
	if len(raw.RewardsMinSize) > 0 {
		m.HasRewardsMinSize = true
		m.RewardsMinSize = floatRaw(raw.RewardsMinSize)
	}
	if raw.EndDate != "" {
		if ts, err := time.Parse(time.RFC3339, raw.EndDate); err == nil {
			utc := ts.UTC()
			m.EndTime = &utc
		}
	}
	return m, true
}

func normalizeEvent(raw gamma.RawEvent) (Event, bool) {
	if raw.ID == "" {
		return Event{}, false
	}
	e := Event{
		ID:          raw.ID,
		Title:       raw.Title,
		Slug:        raw.Slug,
		Description: raw.Description,
		Volume:      floatRaw(raw.Volume),
		Featured:    boolOr(raw.Featured, false),
	}
	for _, rawMarket := range raw.Markets {
		market, ok := normalizeMarket(rawMarket)
		if !ok {
			continue
		}
		e.Markets = append(e.Markets, market)
		e.MarketIDs = append(e.MarketIDs, market.ID)
	}
	return e, true
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// floatRaw reads a JSON number that may arrive as a number or a string.
func floatRaw(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

// stringListRaw reads a JSON array that may arrive as a real array or as a
// stringified array like `"[\"Yes\", \"No\"]"`.
func stringListRaw(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return list
		}
	}
	return nil
}

func floatListRaw(raw json.RawMessage) []float64 {
	items := anyListRaw(raw)
	if items == nil {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		out = append(out, floatRaw(item))
	}
	return out
}

func anyListRaw(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return items
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			return items
		}
	}
	return nil
}
