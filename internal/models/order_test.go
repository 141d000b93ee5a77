package models

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestStatusAt(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tests := []struct {
		name   string
		status int64
		want   Status
	}{
		{"deadline in the future", now.Unix() + 10, StatusOpen},
		{"deadline just passed", now.Unix(), StatusExpired},
		{"deadline long past", now.Unix() - 3600, StatusExpired},
		{"canceled code", 1, StatusCanceled},
		{"completed code", 2, StatusCompleted},
		{"zero", 0, StatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{Status: tt.status}
			if got := o.StatusAt(now); got != tt.want {
				t.Errorf("StatusAt(%d) = %s, want %s", tt.status, got, tt.want)
			}
		})
	}
}

func TestStatusAtReDerives(t *testing.T) {
	// the same record flips from Open to Expired as the clock passes the
	// stored deadline
	o := Order{Status: 1700000010}
	if got := o.StatusAt(time.Unix(1700000000, 0)); got != StatusOpen {
		t.Fatalf("before deadline: got %s, want Open", got)
	}
	if got := o.StatusAt(time.Unix(1700000011, 0)); got != StatusExpired {
		t.Fatalf("after deadline: got %s, want Expired", got)
	}
}

func TestIsMarketOrder(t *testing.T) {
	order := func(dstMin int64) Order {
		return Order{Ask: Ask{DstMinAmount: big.NewInt(dstMin)}}
	}
	market := order(1)
	if !market.IsMarketOrder() {
		t.Error("sentinel 1 should be a market order")
	}
	limit := order(2)
	if limit.IsMarketOrder() {
		t.Error("dstMinAmount 2 should be a limit order")
	}
}

func TestNextBidAmount(t *testing.T) {
	tests := []struct {
		name      string
		srcAmount int64
		bidAmount int64
		filled    int64
		want      int64
	}{
		{"full chunk available", 2000, 1000, 0, 1000},
		{"final chunk capped to remainder", 2000, 1000, 1500, 500},
		{"fully filled", 2000, 1000, 2000, 0},
		{"chunk equals total", 1000, 1000, 0, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{
				Ask: Ask{
					SrcAmount:    big.NewInt(tt.srcAmount),
					SrcBidAmount: big.NewInt(tt.bidAmount),
				},
				Filled: Filled{SrcAmount: big.NewInt(tt.filled)},
			}
			if got := o.NextBidAmount(); got.Int64() != tt.want {
				t.Errorf("NextBidAmount() = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestTokenEqual(t *testing.T) {
	addr := common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")
	a := Token{Address: addr, Decimals: 18, Symbol: "WMATIC"}
	b := Token{Address: addr, Decimals: 18, Symbol: "wmatic"}
	if !a.Equal(b) {
		t.Error("tokens with the same address should be equal")
	}
	c := Token{Address: common.HexToAddress("0x01"), Decimals: 18}
	if a.Equal(c) {
		t.Error("tokens with different addresses should not be equal")
	}
}
