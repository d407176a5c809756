package clob

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// usdcBase converts between USDC base units (6 decimals) and dollars.
var usdcBase = decimal.NewFromInt(1_000_000)

// Decimal decodes venue numbers that arrive as strings or floats.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Decimal = decimal.Zero
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		val, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		d.Decimal = val
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		d.Decimal = decimal.NewFromFloat(f)
		return nil
	}
	return fmt.Errorf("invalid decimal: %s", string(b))
}

// Balance is a collateral snapshot, already converted to dollars.
type Balance struct {
	USDC      decimal.Decimal
	Allowance decimal.Decimal
}

// OrderResult is the venue's answer to an order submission.
type OrderResult struct {
	OrderID string
	Status  string
	Success bool
	Failure string
}

func parsePrice(body []byte) (Decimal, error) {
	var resp struct {
		Price Decimal `json:"price"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && !resp.Price.Decimal.IsZero() {
		return resp.Price, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Decimal{}, err
	}
	if priceRaw, ok := raw["price"]; ok {
		var d Decimal
		if err := json.Unmarshal(priceRaw, &d); err != nil {
			return Decimal{}, err
		}
		return d, nil
	}
	return Decimal{}, fmt.Errorf("price not found in response")
}

// parseBalance converts the base-unit balance response into dollars.
func parseBalance(body []byte) (Balance, error) {
	var resp struct {
		Balance   Decimal `json:"balance"`
		Allowance Decimal `json:"allowance"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Balance{}, fmt.Errorf("failed to decode balance: %w", err)
	}
	return Balance{
		USDC:      resp.Balance.Decimal.Div(usdcBase),
		Allowance: resp.Allowance.Decimal.Div(usdcBase),
	}, nil
}

func parseOrderResult(raw []byte) (*OrderResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty order response")
	}
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, err
	}
	if data, ok := root["data"].(map[string]any); ok {
		root = data
	}
	out := &OrderResult{
		OrderID: firstString(root, "orderID", "orderId", "order_id", "id"),
		Status:  strings.ToLower(strings.TrimSpace(firstString(root, "status", "state"))),
		Failure: firstString(root, "errorMsg", "error", "message", "failure_reason"),
	}
	out.Success = firstBool(root, "success")
	if !out.Success && out.Failure == "" && out.OrderID != "" {
		// Some responses omit the success flag; an order id means accepted.
		out.Success = true
	}
	return out, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			s := strings.TrimSpace(fmt.Sprintf("%v", v))
			if s != "" && s != "<nil>" {
				return s
			}
		}
	}
	return ""
}

func firstBool(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
				return b
			}
		}
	}
	return false
}
