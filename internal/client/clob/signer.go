package clob

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

// Signer builds and signs orders with a local ECDSA key, so no private key
// ever leaves the process. The maker is the funder wallet when configured,
// otherwise the key's own address.
type Signer struct {
	key     *ecdsa.PrivateKey
	address string
	funder  string
}

func NewSigner(privateKeyHex, funder string) (*Signer, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if raw == "" {
		return nil, fmt.Errorf("private key is required")
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Signer{
		key:     key,
		address: strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex()),
		funder:  strings.ToLower(strings.TrimSpace(funder)),
	}, nil
}

func (s *Signer) Address() string {
	if s == nil {
		return ""
	}
	return s.address
}

func (s *Signer) maker() string {
	if s.funder != "" {
		return s.funder
	}
	return s.address
}

// BuildOrder lays out the unsigned order payload. Amounts are USDC base
// units: a BUY makes sizeUSD of collateral and takes sizeUSD/price shares,
// a SELL swaps the two.
func (s *Signer) BuildOrder(tokenID, side string, price, sizeUSD float64) (map[string]any, error) {
	if s == nil || s.key == nil {
		return nil, fmt.Errorf("signer is not configured")
	}
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, fmt.Errorf("token_id is required")
	}
	if price <= 0 || price >= 1 {
		return nil, fmt.Errorf("price must be inside (0, 1), got %v", price)
	}
	if sizeUSD <= 0 {
		return nil, fmt.Errorf("order size must be > 0, got %v", sizeUSD)
	}
	side = strings.ToUpper(strings.TrimSpace(side))
	if side != "BUY" && side != "SELL" {
		return nil, fmt.Errorf("invalid side: %s", side)
	}

	sizeDec := decimal.NewFromFloat(sizeUSD)
	shares := sizeDec.Div(decimal.NewFromFloat(price))
	makerAmount := sizeDec.Mul(usdcBase)
	takerAmount := shares.Mul(usdcBase)
	if side == "SELL" {
		makerAmount, takerAmount = takerAmount, makerAmount
	}

	now := time.Now().UTC()
	return map[string]any{
		"salt":          strconv.FormatInt(now.UnixNano(), 10),
		"maker":         s.maker(),
		"signer":        s.address,
		"taker":         zeroAddress,
		"tokenId":       tokenID,
		"makerAmount":   amountString(makerAmount),
		"takerAmount":   amountString(takerAmount),
		"expiration":    strconv.FormatInt(now.Add(24*time.Hour).Unix(), 10),
		"nonce":         "0",
		"feeRateBps":    "0",
		"side":          side,
		"signatureType": 0,
	}, nil
}

// SignOrder hashes the canonical JSON form of the payload and attaches the
// signature. The input map is not mutated.
func (s *Signer) SignOrder(order map[string]any) (map[string]any, error) {
	if s == nil || s.key == nil {
		return nil, fmt.Errorf("signer is not configured")
	}
	signed := make(map[string]any, len(order)+1)
	for k, v := range order {
		signed[k] = v
	}
	canonical, err := canonicalJSON(signed)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(crypto.Keccak256(canonical), s.key)
	if err != nil {
		return nil, err
	}
	signed["signature"] = "0x" + hex.EncodeToString(sig)
	return signed, nil
}

func amountString(v decimal.Decimal) string {
	if v.LessThan(decimal.Zero) {
		v = decimal.Zero
	}
	return v.Round(0).StringFixed(0)
}

// canonicalJSON marshals with sorted keys at every depth so the signing hash
// is stable across processes.
func canonicalJSON(v any) ([]byte, error) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]json.RawMessage, len(keys))
		for _, k := range keys {
			b, err := canonicalJSON(t[k])
			if err != nil {
				return nil, err
			}
			out[k] = b
		}
		return json.Marshal(out)
	case []any:
		arr := make([]json.RawMessage, 0, len(t))
		for _, item := range t {
			b, err := canonicalJSON(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, b)
		}
		return json.Marshal(arr)
	default:
		return json.Marshal(t)
	}
}
