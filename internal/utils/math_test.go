package utils

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestConvertDecimals(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		from     int32
		to       int32
		rounding Rounding
		want     string
	}{
		{"scale up", "1", 6, 18, RoundExact, "1000000000000"},
		{"scale down exact", "1000000000000", 18, 6, RoundExact, "1"},
		{"scale down floor", "1500000000000000000", 18, 6, RoundDown, "1500000"},
		{"fractional floor", "15", 1, 0, RoundDown, "1"},
		{"fractional ceil", "15", 1, 0, RoundUp, "2"},
		{"same precision", "123", 8, 8, RoundExact, "123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			got := ConvertDecimals(amount, tt.from, tt.to, tt.rounding)
			if got.String() != tt.want {
				t.Errorf("ConvertDecimals(%s, %d, %d) = %s, want %s", tt.amount, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDivFloorCeil(t *testing.T) {
	tests := []struct {
		a, b  string
		floor string
		ceil  string
	}{
		{"100", "33", "3", "4"},
		{"99", "33", "3", "3"},
		{"1", "3", "0", "1"},
		{"2000000000000000000000", "7", "285714285714285714285", "285714285714285714286"},
	}
	for _, tt := range tests {
		a := decimal.RequireFromString(tt.a)
		b := decimal.RequireFromString(tt.b)
		if got := DivFloor(a, b); got.String() != tt.floor {
			t.Errorf("DivFloor(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.floor)
		}
		if got := DivCeil(a, b); got.String() != tt.ceil {
			t.Errorf("DivCeil(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.ceil)
		}
	}
}

func TestMinMaxBig(t *testing.T) {
	a := big.NewInt(5)
	b := big.NewInt(7)
	if got := MinBig(a, b); got.Cmp(a) != 0 {
		t.Errorf("MinBig = %s, want 5", got)
	}
	if got := MaxBig(a, b); got.Cmp(b) != 0 {
		t.Errorf("MaxBig = %s, want 7", got)
	}
	if got := MinBig(a, a); got.Cmp(a) != 0 {
		t.Errorf("MinBig(a, a) = %s, want 5", got)
	}
}

func TestPow10(t *testing.T) {
	if got := Pow10(18).String(); got != "1000000000000000000" {
		t.Errorf("Pow10(18) = %s", got)
	}
	if got := Pow10(0).String(); got != "1" {
		t.Errorf("Pow10(0) = %s", got)
	}
}
