package gateway

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bchung1201/PolyMaster/internal/client/clob"
	"github.com/bchung1201/PolyMaster/internal/trading"
)

func TestMapVenueError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "balance complaint",
			err:  &clob.APIError{Status: 400, Body: "not enough balance / allowance"},
			want: trading.ErrInsufficientBalance,
		},
		{
			name: "wrapped balance complaint",
			err:  fmt.Errorf("post order: %w", &clob.APIError{Status: 400, Body: "allowance too low"}),
			want: trading.ErrInsufficientBalance,
		},
		{
			name: "client rejection",
			err:  &clob.APIError{Status: 400, Body: "invalid order"},
			want: trading.ErrOrderRejected,
		},
		{
			name: "server failure stays untyped",
			err:  &clob.APIError{Status: 503, Body: "upstream unavailable"},
			want: nil,
		},
		{
			name: "transport failure stays untyped",
			err:  errors.New("dial tcp: connection refused"),
			want: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapVenueError(tc.err)
			if got == nil {
				t.Fatal("expected an error")
			}
			if tc.want != nil && !errors.Is(got, tc.want) {
				t.Fatalf("err=%v want sentinel %v", got, tc.want)
			}
			if tc.want == nil {
				if errors.Is(got, trading.ErrInsufficientBalance) || errors.Is(got, trading.ErrOrderRejected) {
					t.Fatalf("err=%v should not match a sentinel", got)
				}
			}
		})
	}
}

func TestRejection(t *testing.T) {
	if err := rejection("not enough balance for order"); !errors.Is(err, trading.ErrInsufficientBalance) {
		t.Fatalf("err=%v want insufficient balance", err)
	}
	if err := rejection("market closed"); !errors.Is(err, trading.ErrOrderRejected) {
		t.Fatalf("err=%v want rejection", err)
	}
	err := rejection("")
	if !errors.Is(err, trading.ErrOrderRejected) || !strings.Contains(err.Error(), "order not accepted") {
		t.Fatalf("err=%v want default rejection text", err)
	}
}
