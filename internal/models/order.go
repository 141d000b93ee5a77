package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/orbs-network/twap-go/internal/utils"
)

// Status is the user-facing state of an order, derived from the raw on-chain
// record and the current time. It is never stored; see Order.StatusAt.
type Status string

const (
	StatusOpen      Status = "Open"
	StatusCanceled  Status = "Canceled"
	StatusCompleted Status = "Completed"
	StatusExpired   Status = "Expired"
)

// Terminal codes held by the on-chain status field once an order is
// finalized. Any larger value is the ask's deadline timestamp instead.
const (
	statusCodeCanceled  = 1
	statusCodeCompleted = 2
)

// DstMinSentinel is the reserved dstMinAmount value meaning "no limit
// imposed": a market order accepts any positive output.
var DstMinSentinel = big.NewInt(1)

// Ask holds the immutable order terms set at submission.
type Ask struct {
	Deadline     int64          `json:"deadline"`
	BidDelay     int64          `json:"bidDelay"`
	FillDelay    int64          `json:"fillDelay"`
	Exchange     common.Address `json:"exchange"`
	SrcToken     common.Address `json:"srcToken"`
	DstToken     common.Address `json:"dstToken"`
	SrcAmount    *big.Int       `json:"srcAmount"`
	SrcBidAmount *big.Int       `json:"srcBidAmount"`
	DstMinAmount *big.Int       `json:"dstMinAmount"`
}

// Bid is the currently winning (or most recent) bid; zero-valued before any
// taker has bid.
type Bid struct {
	Time      int64          `json:"time"`
	Taker     common.Address `json:"taker"`
	Exchange  common.Address `json:"exchange"`
	DstAmount *big.Int       `json:"dstAmount"`
	DstFee    *big.Int       `json:"dstFee"`
	Data      []byte         `json:"data"`
}

// Filled is the cumulative execution of an order. SrcAmount is monotonically
// non-decreasing and never exceeds Ask.SrcAmount.
type Filled struct {
	Time      int64    `json:"time"`
	SrcAmount *big.Int `json:"srcAmount"`
	DstAmount *big.Int `json:"dstAmount"`
	DstFee    *big.Int `json:"dstFee"`
}

// Order is the on-chain order record. This layer reads it and never writes
// it; all mutation happens in the contract.
//
// The raw Status field is overloaded: while the order is open it holds the
// ask's deadline timestamp, once finalized it holds a small terminal code.
// Use StatusAt to decode it; never treat the raw integer as canonical.
type Order struct {
	ID     uint64         `json:"id"`
	Status int64          `json:"status"`
	Time   int64          `json:"time"`
	Maker  common.Address `json:"maker"`
	Ask    Ask            `json:"ask"`
	Bid    Bid            `json:"bid"`
	Filled Filled         `json:"filled"`

	// Resolved token metadata, attached by GetAllOrdersWithTokens.
	SrcToken *Token `json:"srcToken,omitempty"`
	DstToken *Token `json:"dstToken,omitempty"`
}

// StatusAt derives the user-facing status against the given wall-clock time.
// Re-evaluate on every read: the answer changes as the deadline passes.
func (o *Order) StatusAt(now time.Time) Status {
	switch {
	case o.Status > now.Unix():
		return StatusOpen
	case o.Status == statusCodeCanceled:
		return StatusCanceled
	case o.Status == statusCodeCompleted:
		return StatusCompleted
	default:
		return StatusExpired
	}
}

// IsMarketOrder reports whether the order was submitted without a limit
// price (dstMinAmount at or below the sentinel).
func (o *Order) IsMarketOrder() bool {
	return o.Ask.DstMinAmount.Cmp(DstMinSentinel) <= 0
}

// NextBidAmount is the source input of the next bidding round:
// min(srcBidAmount, srcAmount - filled), so the final chunk is capped to
// exactly the remaining balance instead of overfilling.
func (o *Order) NextBidAmount() *big.Int {
	remaining := new(big.Int).Sub(o.Ask.SrcAmount, o.Filled.SrcAmount)
	return new(big.Int).Set(utils.MinBig(o.Ask.SrcBidAmount, remaining))
}
