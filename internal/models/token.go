package models

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/orbs-network/twap-go/internal/utils"
)

// Token is an immutable ERC20 descriptor, identified by address.
type Token struct {
	Address  common.Address `json:"address" yaml:"address"`
	Decimals int32          `json:"decimals" yaml:"decimals"`
	Symbol   string         `json:"symbol" yaml:"symbol"`
}

// IsNative reports whether the token stands for the chain's native currency.
func (t Token) IsNative() bool {
	return utils.IsNativeAddress(t.Address)
}

// Equal compares tokens by address only.
func (t Token) Equal(other Token) bool {
	return t.Address == other.Address
}
