// Package gateway adapts venue clients to the trading pipeline's order
// interface.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bchung1201/PolyMaster/internal/client/clob"
	"github.com/bchung1201/PolyMaster/internal/trading"
)

// Clob implements trading.Gateway against the venue REST API with locally
// signed orders.
type Clob struct {
	Client *clob.Client
	Signer *clob.Signer
	Logger *zap.Logger
}

func (g *Clob) Balance(ctx context.Context) (float64, error) {
	if g == nil || g.Client == nil {
		return 0, errors.New("no venue client configured")
	}
	bal, err := g.Client.GetBalanceAllowance(ctx)
	if err != nil {
		return 0, fmt.Errorf("balance allowance: %w", err)
	}
	return bal.USDC.InexactFloat64(), nil
}

func (g *Clob) Price(ctx context.Context, tokenID, side string) (float64, error) {
	if g == nil || g.Client == nil {
		return 0, errors.New("no venue client configured")
	}
	p, err := g.Client.GetPrice(ctx, tokenID, side)
	if err != nil {
		return 0, fmt.Errorf("venue price: %w", err)
	}
	return p.InexactFloat64(), nil
}

// Submit builds, signs and posts one order. Venue refusals come back as the
// trading sentinels so the orchestrator can classify them.
func (g *Clob) Submit(ctx context.Context, order trading.OrderRequest) (trading.OrderResult, error) {
	if g == nil || g.Client == nil || g.Signer == nil {
		return trading.OrderResult{}, errors.New("venue client or signer not configured")
	}
	payload, err := g.Signer.BuildOrder(order.TokenID, order.Side, order.Price, order.SizeUSD)
	if err != nil {
		return trading.OrderResult{}, fmt.Errorf("%w: %v", trading.ErrValidation, err)
	}
	signed, err := g.Signer.SignOrder(payload)
	if err != nil {
		return trading.OrderResult{}, fmt.Errorf("sign order: %w", err)
	}
	g.logger().Info("submitting order",
		zap.String("token_id", order.TokenID),
		zap.String("side", order.Side),
		zap.Float64("price", order.Price),
		zap.Float64("size_usd", order.SizeUSD))
	res, err := g.Client.PostOrder(ctx, signed, "GTC")
	if err != nil {
		return trading.OrderResult{}, mapVenueError(err)
	}
	out := trading.OrderResult{OrderID: res.OrderID, Status: res.Status}
	if !res.Success {
		return out, rejection(res.Failure)
	}
	return out, nil
}

// mapVenueError classifies order-path errors: balance complaints map to
// ErrInsufficientBalance, other venue 4xx answers to ErrOrderRejected, and
// transport or 5xx failures stay wrapped untyped.
func mapVenueError(err error) error {
	var apiErr *clob.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("venue: %w", err)
	}
	if balanceComplaint(apiErr.Body) {
		return fmt.Errorf("%w: %s", trading.ErrInsufficientBalance, apiErr.Body)
	}
	if apiErr.Status >= 400 && apiErr.Status < 500 {
		return fmt.Errorf("%w: %s", trading.ErrOrderRejected, apiErr.Body)
	}
	return fmt.Errorf("venue: %w", err)
}

func rejection(failure string) error {
	if balanceComplaint(failure) {
		return fmt.Errorf("%w: %s", trading.ErrInsufficientBalance, failure)
	}
	if failure == "" {
		failure = "order not accepted"
	}
	return fmt.Errorf("%w: %s", trading.ErrOrderRejected, failure)
}

func balanceComplaint(text string) bool {
	t := strings.ToLower(text)
	return strings.Contains(t, "balance") || strings.Contains(t, "allowance")
}

func (g *Clob) logger() *zap.Logger {
	if g != nil && g.Logger != nil {
		return g.Logger
	}
	return zap.NewNop()
}
