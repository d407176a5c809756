package clob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

const DefaultMarketWSURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

type SubscribeRequest struct {
	Type      string   `json:"type"`
	AssetsIDs []string `json:"assets_ids,omitempty"`
}

type SubscriptionUpdate struct {
	AssetsIDs []string `json:"assets_ids"`
	Operation string   `json:"operation"`
}

// Envelope is the common header of every market-channel message.
type Envelope struct {
	EventType string `json:"event_type"`
	AssetID   string `json:"asset_id"`
	Market    string `json:"market"`
	Timestamp string `json:"timestamp"`
}

// AssetIDProvider supplies the token ids to stream; it is re-polled so the
// subscription follows the catalog.
type AssetIDProvider func(context.Context) ([]string, error)

type WSClient struct {
	url  string
	conn *websocket.Conn
}

func NewWSClient(url string) *WSClient {
	if strings.TrimSpace(url) == "" {
		url = DefaultMarketWSURL
	}
	return &WSClient{url: url}
}

func (c *WSClient) Connect(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("ws client is nil")
	}
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return err
	}
	// Book snapshots can be large; raise the read limit above the default.
	conn.SetReadLimit(2 << 20) // 2MB
	c.conn = conn
	return nil
}

func (c *WSClient) Close(status websocket.StatusCode, reason string) error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close(status, reason)
}

func (c *WSClient) Subscribe(ctx context.Context, assetIDs []string) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("ws not connected")
	}
	payload, err := json.Marshal(SubscribeRequest{Type: "market", AssetsIDs: assetIDs})
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *WSClient) UpdateSubscription(ctx context.Context, assetIDs []string, operation string) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("ws not connected")
	}
	op := strings.ToLower(strings.TrimSpace(operation))
	if op != "subscribe" && op != "unsubscribe" {
		return fmt.Errorf("invalid operation: %s", operation)
	}
	payload, err := json.Marshal(SubscriptionUpdate{AssetsIDs: assetIDs, Operation: op})
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *WSClient) Read(ctx context.Context) (Envelope, []byte, error) {
	if c == nil || c.conn == nil {
		return Envelope{}, nil, fmt.Errorf("ws not connected")
	}
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		return Envelope{}, nil, err
	}
	var env Envelope
	_ = json.Unmarshal(data, &env)
	return env, data, nil
}

func (c *WSClient) respondPong(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return fmt.Errorf("ws not connected")
	}
	return c.conn.Write(ctx, websocket.MessageText, []byte(`{"event_type":"pong"}`))
}

type MarketStreamOptions struct {
	URL               string
	AssetIDs          []string
	AssetIDProvider   AssetIDProvider
	RefreshInterval   time.Duration
	HeartbeatInterval time.Duration
	PingTimeout       time.Duration
	BackoffMin        time.Duration
	BackoffMax        time.Duration
	Logger            *zap.Logger
}

// MarketStream keeps one market-channel subscription alive across
// disconnects, re-subscribing to whatever the AssetIDProvider currently
// reports.
type MarketStream struct {
	opts MarketStreamOptions
}

func NewMarketStream(opts MarketStreamOptions) *MarketStream {
	if opts.URL == "" {
		opts.URL = DefaultMarketWSURL
	}
	if opts.HeartbeatInterval == 0 {
		opts.HeartbeatInterval = 20 * time.Second
	}
	if opts.PingTimeout == 0 {
		opts.PingTimeout = 5 * time.Second
	}
	if opts.BackoffMin == 0 {
		opts.BackoffMin = 1 * time.Second
	}
	if opts.BackoffMax == 0 {
		opts.BackoffMax = 30 * time.Second
	}
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = 30 * time.Second
	}
	return &MarketStream{opts: opts}
}

func (s *MarketStream) logger() *zap.Logger {
	if s.opts.Logger != nil {
		return s.opts.Logger
	}
	return zap.NewNop()
}

// Run blocks until ctx is done, reconnecting with jittered backoff on every
// failure. onMessage is called for each non-ping frame.
func (s *MarketStream) Run(ctx context.Context, onMessage func(Envelope, []byte)) error {
	if s == nil {
		return fmt.Errorf("stream is nil")
	}
	backoff := s.opts.BackoffMin
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		client := NewWSClient(s.opts.URL)
		if err := client.Connect(ctx); err != nil {
			s.logger().Warn("ws connect failed", zap.Error(err))
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}

		assetIDs := s.opts.AssetIDs
		if s.opts.AssetIDProvider != nil {
			if ids, err := s.opts.AssetIDProvider(ctx); err == nil {
				assetIDs = ids
			}
		}
		if len(assetIDs) == 0 {
			s.logger().Warn("ws subscribe skipped: no assets")
			_ = client.Close(websocket.StatusInternalError, "no assets to subscribe")
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		if err := client.Subscribe(ctx, assetIDs); err != nil {
			s.logger().Warn("ws subscribe failed", zap.Error(err))
			_ = client.Close(websocket.StatusInternalError, "subscribe failed")
			if err := sleepWithJitter(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff, s.opts.BackoffMax)
			continue
		}
		s.logger().Info("ws subscribed", zap.Int("assets", len(assetIDs)))
		backoff = s.opts.BackoffMin

		err := s.consume(ctx, client, onMessage, setFromSlice(assetIDs))
		_ = client.Close(websocket.StatusNormalClosure, "reconnect")
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		if err := sleepWithJitter(ctx, backoff); err != nil {
			return err
		}
		backoff = nextBackoff(backoff, s.opts.BackoffMax)
	}
}

func (s *MarketStream) consume(ctx context.Context, client *WSClient, onMessage func(Envelope, []byte), current map[string]struct{}) error {
	heartbeatErr := make(chan error, 1)
	heartbeatCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(s.opts.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatCtx.Done():
				heartbeatErr <- heartbeatCtx.Err()
				return
			case <-ticker.C:
				pingCtx, cancelPing := context.WithTimeout(heartbeatCtx, s.opts.PingTimeout)
				err := client.conn.Ping(pingCtx)
				cancelPing()
				if err != nil {
					heartbeatErr <- err
					return
				}
			}
		}
	}()

	var refreshErr chan error
	if s.opts.AssetIDProvider != nil && s.opts.RefreshInterval > 0 {
		refreshErr = make(chan error, 1)
		refreshCtx, cancelRefresh := context.WithCancel(ctx)
		defer cancelRefresh()
		go func() {
			ticker := time.NewTicker(s.opts.RefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-refreshCtx.Done():
					refreshErr <- refreshCtx.Err()
					return
				case <-ticker.C:
					ids, err := s.opts.AssetIDProvider(refreshCtx)
					if err != nil {
						continue
					}
					next := setFromSlice(ids)
					added, removed := diffSets(current, next)
					if len(added) > 0 {
						_ = client.UpdateSubscription(refreshCtx, added, "subscribe")
					}
					if len(removed) > 0 {
						_ = client.UpdateSubscription(refreshCtx, removed, "unsubscribe")
					}
					current = next
				}
			}
		}()
	}

	for {
		select {
		case err := <-heartbeatErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case err := <-refreshErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		default:
		}
		env, raw, err := client.Read(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger().Warn("ws read failed", zap.Error(err))
			}
			return err
		}
		if isPingPayload(env, raw) {
			_ = client.respondPong(ctx)
			continue
		}
		if onMessage != nil {
			onMessage(env, raw)
		}
	}
}

// PriceUpdate is one streamed quote for a token.
type PriceUpdate struct {
	AssetID string
	Price   decimal.Decimal
}

// ExtractPriceUpdates pulls usable prices out of a raw frame: trade prices
// and price changes directly, book snapshots as the best-bid/best-ask
// midpoint. Frames that carry no price yield an empty slice.
func ExtractPriceUpdates(raw []byte) []PriceUpdate {
	var batch []json.RawMessage
	if err := json.Unmarshal(raw, &batch); err != nil {
		batch = []json.RawMessage{raw}
	}
	var updates []PriceUpdate
	for _, item := range batch {
		if u, ok := extractPriceUpdate(item); ok {
			updates = append(updates, u)
		}
	}
	return updates
}

func extractPriceUpdate(raw []byte) (PriceUpdate, bool) {
	var msg struct {
		EventType string  `json:"event_type"`
		AssetID   string  `json:"asset_id"`
		Price     Decimal `json:"price"`
		Changes   []struct {
			Price Decimal `json:"price"`
		} `json:"changes"`
		Bids []struct {
			Price Decimal `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price Decimal `json:"price"`
		} `json:"asks"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return PriceUpdate{}, false
	}
	if msg.AssetID == "" {
		return PriceUpdate{}, false
	}
	switch msg.EventType {
	case "last_trade_price", "price_change":
		if !msg.Price.Decimal.IsZero() {
			return PriceUpdate{AssetID: msg.AssetID, Price: msg.Price.Decimal}, true
		}
		if len(msg.Changes) > 0 && !msg.Changes[0].Price.Decimal.IsZero() {
			return PriceUpdate{AssetID: msg.AssetID, Price: msg.Changes[0].Price.Decimal}, true
		}
	case "book":
		bestBid, bestAsk := decimal.Zero, decimal.Zero
		for _, b := range msg.Bids {
			if b.Price.Decimal.GreaterThan(bestBid) {
				bestBid = b.Price.Decimal
			}
		}
		for _, a := range msg.Asks {
			if !a.Price.Decimal.IsZero() && (bestAsk.IsZero() || a.Price.Decimal.LessThan(bestAsk)) {
				bestAsk = a.Price.Decimal
			}
		}
		if !bestBid.IsZero() && !bestAsk.IsZero() {
			mid := bestBid.Add(bestAsk).Div(decimal.NewFromInt(2))
			return PriceUpdate{AssetID: msg.AssetID, Price: mid}, true
		}
	}
	return PriceUpdate{}, false
}

func isPingPayload(env Envelope, raw []byte) bool {
	if strings.EqualFold(env.EventType, "ping") {
		return true
	}
	if len(raw) == 0 {
		return false
	}
	if strings.TrimSpace(string(raw)) == "ping" {
		return true
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && strings.EqualFold(probe.Type, "ping") {
		return true
	}
	return false
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func sleepWithJitter(ctx context.Context, base time.Duration) error {
	if base <= 0 {
		return nil
	}
	jitter := time.Duration(rand.Int63n(int64(base / 2)))
	timer := time.NewTimer(base + jitter)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func setFromSlice(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = struct{}{}
	}
	return out
}

func diffSets(current, next map[string]struct{}) ([]string, []string) {
	added := make([]string, 0)
	removed := make([]string, 0)
	for key := range next {
		if _, ok := current[key]; !ok {
			added = append(added, key)
		}
	}
	for key := range current {
		if _, ok := next[key]; !ok {
			removed = append(removed, key)
		}
	}
	return added, removed
}
