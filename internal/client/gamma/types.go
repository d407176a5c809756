package gamma

import (
	"encoding/json"
	"strconv"
)

// RawMarket is one Gamma /markets record. Gamma is loose with types: numeric
// fields may arrive as strings and array fields as stringified JSON, so
// anything that needs coercion stays raw until the catalog normalizes it.
type RawMarket struct {
	ID               string
	Question         string
	Description      string
	EndDate          string
	Active           *bool
	Funded           *bool
	Featured         *bool
	RewardsMinSize   json.RawMessage
	RewardsMaxSpread json.RawMessage
	Spread           json.RawMessage
	Volume           json.RawMessage
	Outcomes         json.RawMessage
	OutcomePrices    json.RawMessage
	ClobTokenIDs     json.RawMessage
}

func (m *RawMarket) UnmarshalJSON(b []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	m.ID = firstString(obj, "id")
	m.Question = firstString(obj, "question")
	m.Description = firstString(obj, "description")
	m.EndDate = firstString(obj, "endDate", "end_date", "end")
	m.Active = firstBool(obj, "active")
	m.Funded = firstBool(obj, "funded")
	m.Featured = firstBool(obj, "featured")
	m.RewardsMinSize = firstRaw(obj, "rewardsMinSize", "rewards_min_size")
	m.RewardsMaxSpread = firstRaw(obj, "rewardsMaxSpread", "rewards_max_spread")
	m.Spread = firstRaw(obj, "spread")
	m.Volume = firstRaw(obj, "volume", "volumeNum", "volume_num")
	m.Outcomes = firstRaw(obj, "outcomes")
	m.OutcomePrices = firstRaw(obj, "outcomePrices", "outcome_prices")
	m.ClobTokenIDs = firstRaw(obj, "clobTokenIds", "clob_token_ids")
	return nil
}

// RawEvent is one Gamma /events record. Gamma inlines constituent markets.
type RawEvent struct {
	ID          string
	Title       string
	Slug        string
	Description string
	Volume      json.RawMessage
	Featured    *bool
	Markets     []RawMarket
}

func (e *RawEvent) UnmarshalJSON(b []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	e.ID = firstString(obj, "id")
	e.Title = firstString(obj, "title", "question")
	e.Slug = firstString(obj, "slug")
	e.Description = firstString(obj, "description")
	e.Volume = firstRaw(obj, "volume", "volumeNum", "volume_num")
	e.Featured = firstBool(obj, "featured")
	if marketsRaw := firstRaw(obj, "markets"); len(marketsRaw) > 0 {
		_ = json.Unmarshal(marketsRaw, &e.Markets)
	}
	return nil
}

func firstRaw(m map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, key := range keys {
		if v, ok := m[key]; ok && string(v) != "null" {
			return v
		}
	}
	return nil
}

func firstString(m map[string]json.RawMessage, keys ...string) string {
	raw := firstRaw(m, keys...)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func firstBool(m map[string]json.RawMessage, keys ...string) *bool {
	raw := firstRaw(m, keys...)
	if len(raw) == 0 {
		return nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, err := strconv.ParseBool(s); err == nil {
			return &parsed
		}
	}
	return nil
}
