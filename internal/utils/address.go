package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NativeTokenAddress is the sentinel address representing the chain's native
// currency. It is never directly tradable by the contract and must be
// resolved to the wrapped token before routing.
var NativeTokenAddress = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

// IsNativeAddress reports whether addr stands for the native currency,
// either the 0xEeee... sentinel or the zero address.
func IsNativeAddress(addr common.Address) bool {
	return addr == NativeTokenAddress || addr == (common.Address{})
}

// EqIgnoreCase compares two hex address strings case-insensitively.
func EqIgnoreCase(a, b string) bool {
	return strings.EqualFold(a, b)
}
