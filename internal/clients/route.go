package clients

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Route is a priced, executable swap quote produced by one of the aggregator
// drivers. Data carries the aggregator's opaque calldata; Path is populated
// only when the driver can express the route as an AMM token path. SrcUSD is
// the USD value of the quoted source amount.
type Route struct {
	DstAmount *big.Int
	Data      []byte
	Path      []common.Address
	SrcUSD    decimal.Decimal
}
