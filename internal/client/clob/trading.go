package clob

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// SignedOrderRequest is the submission envelope. Owner is the API key that
// owns the order; the order itself carries the maker's signature.
type SignedOrderRequest struct {
	Order     map[string]any `json:"order"`
	Owner     string         `json:"owner,omitempty"`
	OrderType string         `json:"orderType,omitempty"`
}

// PostOrder submits a signed order. A 2xx with success=false still returns
// an OrderResult so callers can read the venue's failure reason.
func (c *Client) PostOrder(ctx context.Context, order map[string]any, orderType string) (*OrderResult, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("order is required")
	}
	orderType = strings.ToUpper(strings.TrimSpace(orderType))
	if orderType == "" {
		orderType = "GTC"
	}
	req := SignedOrderRequest{
		Order:     order,
		Owner:     c.creds.APIKey,
		OrderType: orderType,
	}
	body, err := c.doSigned(ctx, http.MethodPost, "/order", nil, req)
	if err != nil {
		return nil, err
	}
	return parseOrderResult(body)
}

// CancelOrder cancels one resting order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*OrderResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	body, err := c.doSigned(ctx, http.MethodDelete, "/order", nil, map[string]string{"orderID": orderID})
	if err != nil {
		return nil, err
	}
	return parseOrderResult(body)
}
