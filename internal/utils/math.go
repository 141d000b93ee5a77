package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Rounding selects how a fractional arithmetic result is snapped to an
// integer. The mode is always chosen by the caller per use site: an output
// amount the contract must not overpay is floored, a count that must fully
// cover a total is ceiled.
type Rounding int

const (
	RoundExact Rounding = iota // keep the fractional part
	RoundDown
	RoundUp
)

// ConvertDecimals rescales amount between tokens of differing decimal
// precision by multiplying with 10^(toDecimals-fromDecimals). Arbitrary
// precision throughout; float substitution here causes off-by-one unit
// errors that revert on-chain.
func ConvertDecimals(amount decimal.Decimal, fromDecimals, toDecimals int32, rounding Rounding) decimal.Decimal {
	shifted := amount.Shift(toDecimals - fromDecimals)
	switch rounding {
	case RoundDown:
		return shifted.Floor()
	case RoundUp:
		return shifted.Ceil()
	default:
		return shifted
	}
}

// DivFloor returns floor(a/b) exactly, for non-negative a and positive b.
func DivFloor(a, b decimal.Decimal) decimal.Decimal {
	q, _ := a.QuoRem(b, 0)
	return q
}

// DivCeil returns ceil(a/b) exactly, for non-negative a and positive b.
func DivCeil(a, b decimal.Decimal) decimal.Decimal {
	q, r := a.QuoRem(b, 0)
	if !r.IsZero() {
		q = q.Add(decimal.New(1, 0))
	}
	return q
}

// MinBig returns the smaller of a or b.
func MinBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return a
	}
	return b
}

// MaxBig returns the larger of a or b.
func MaxBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) > 0 {
		return a
	}
	return b
}

// Pow10 returns 10^decimals as a decimal, the unit scale of a token.
func Pow10(decimals int32) decimal.Decimal {
	return decimal.New(1, decimals)
}
