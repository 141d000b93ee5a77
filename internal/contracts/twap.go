package contracts

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/orbs-network/twap-go/internal/models"
)

// twapABI is the v4+ contract surface consumed by this layer: submission
// takes a single ask tuple carrying auxiliary data.
const twapABI = `[
  {"name":"ask","type":"function","stateMutability":"nonpayable","inputs":[{"name":"_params","type":"tuple","components":[
    {"name":"exchange","type":"address"},
    {"name":"srcToken","type":"address"},
    {"name":"dstToken","type":"address"},
    {"name":"srcAmount","type":"uint256"},
    {"name":"srcBidAmount","type":"uint256"},
    {"name":"dstMinAmount","type":"uint256"},
    {"name":"deadline","type":"uint32"},
    {"name":"bidDelay","type":"uint32"},
    {"name":"fillDelay","type":"uint32"},
    {"name":"data","type":"bytes"}
  ]}],"outputs":[{"name":"id","type":"uint64"}]},
  {"name":"bid","type":"function","stateMutability":"nonpayable","inputs":[
    {"name":"id","type":"uint64"},
    {"name":"exchange","type":"address"},
    {"name":"dstFee","type":"uint256"},
    {"name":"data","type":"bytes"}
  ],"outputs":[]},
  {"name":"fill","type":"function","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint64"}],"outputs":[]},
  {"name":"cancel","type":"function","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint64"}],"outputs":[]},
  {"name":"prune","type":"function","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint64"}],"outputs":[]},
  {"name":"order","type":"function","stateMutability":"view","inputs":[{"name":"id","type":"uint64"}],"outputs":[` + orderTupleABI + `]},
  {"name":"MIN_BID_DELAY_SECONDS","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint32"}]},
  {"name":"OrderCreated","type":"event","anonymous":false,"inputs":[
    {"name":"id","type":"uint64","indexed":false},
    {"name":"maker","type":"address","indexed":true},
    {"name":"exchange","type":"address","indexed":true},
    {"name":"ask","type":"tuple","indexed":false,"components":[
      {"name":"exchange","type":"address"},
      {"name":"srcToken","type":"address"},
      {"name":"dstToken","type":"address"},
      {"name":"srcAmount","type":"uint256"},
      {"name":"srcBidAmount","type":"uint256"},
      {"name":"dstMinAmount","type":"uint256"},
      {"name":"deadline","type":"uint32"},
      {"name":"bidDelay","type":"uint32"},
      {"name":"fillDelay","type":"uint32"},
      {"name":"data","type":"bytes"}
    ]}
  ]}
]`

// twapLegacyABI is the pre-v4 submission surface: nine positional arguments
// and no auxiliary data parameter.
const twapLegacyABI = `[
  {"name":"ask","type":"function","stateMutability":"nonpayable","inputs":[
    {"name":"exchange","type":"address"},
    {"name":"srcToken","type":"address"},
    {"name":"dstToken","type":"address"},
    {"name":"srcAmount","type":"uint256"},
    {"name":"srcBidAmount","type":"uint256"},
    {"name":"dstMinAmount","type":"uint256"},
    {"name":"deadline","type":"uint32"},
    {"name":"bidDelay","type":"uint32"},
    {"name":"fillDelay","type":"uint32"}
  ],"outputs":[{"name":"id","type":"uint64"}]}
]`

// orderTupleABI is the on-chain order record shape, shared between the order
// view and the lens.
const orderTupleABI = `{"name":"","type":"tuple","components":[
  {"name":"id","type":"uint64"},
  {"name":"status","type":"uint32"},
  {"name":"time","type":"uint32"},
  {"name":"maker","type":"address"},
  {"name":"ask","type":"tuple","components":[
    {"name":"deadline","type":"uint32"},
    {"name":"bidDelay","type":"uint32"},
    {"name":"fillDelay","type":"uint32"},
    {"name":"exchange","type":"address"},
    {"name":"srcToken","type":"address"},
    {"name":"dstToken","type":"address"},
    {"name":"srcAmount","type":"uint256"},
    {"name":"srcBidAmount","type":"uint256"},
    {"name":"dstMinAmount","type":"uint256"}
  ]},
  {"name":"bid","type":"tuple","components":[
    {"name":"time","type":"uint32"},
    {"name":"taker","type":"address"},
    {"name":"exchange","type":"address"},
    {"name":"dstAmount","type":"uint256"},
    {"name":"dstFee","type":"uint256"},
    {"name":"data","type":"bytes"}
  ]},
  {"name":"filled","type":"tuple","components":[
    {"name":"time","type":"uint32"},
    {"name":"srcAmount","type":"uint256"},
    {"name":"dstAmount","type":"uint256"},
    {"name":"dstFee","type":"uint256"}
  ]}
]}`

// Raw structs mirroring the ABI tuples; abi.ConvertType maps the components
// onto these by field name.
type rawAsk struct {
	Deadline     uint32
	BidDelay     uint32
	FillDelay    uint32
	Exchange     common.Address
	SrcToken     common.Address
	DstToken     common.Address
	SrcAmount    *big.Int
	SrcBidAmount *big.Int
	DstMinAmount *big.Int
}

type rawBid struct {
	Time      uint32
	Taker     common.Address
	Exchange  common.Address
	DstAmount *big.Int
	DstFee    *big.Int
	Data      []byte
}

type rawFilled struct {
	Time      uint32
	SrcAmount *big.Int
	DstAmount *big.Int
	DstFee    *big.Int
}

type rawOrder struct {
	Id     uint64
	Status uint32
	Time   uint32
	Maker  common.Address
	Ask    rawAsk
	Bid    rawBid
	Filled rawFilled
}

// askTuple is the v4+ submission parameter shape.
type askTuple struct {
	Exchange     common.Address
	SrcToken     common.Address
	DstToken     common.Address
	SrcAmount    *big.Int
	SrcBidAmount *big.Int
	DstMinAmount *big.Int
	Deadline     uint32
	BidDelay     uint32
	FillDelay    uint32
	Data         []byte
}

// AskParams is the full set of submission parameters assembled by the order
// lifecycle client.
type AskParams struct {
	Exchange     common.Address
	SrcToken     common.Address
	DstToken     common.Address
	SrcAmount    *big.Int
	SrcBidAmount *big.Int
	DstMinAmount *big.Int
	Deadline     uint32
	BidDelay     uint32
	FillDelay    uint32
	Data         []byte
}

// TWAP is a bound TWAP contract instance. The backend is injected at
// construction so multiple configurations can coexist.
type TWAP struct {
	address  common.Address
	version  int
	abi      abi.ABI
	contract *bind.BoundContract
	legacy   *bind.BoundContract
}

// NewTWAP binds the TWAP contract at address for the given contract version.
func NewTWAP(address common.Address, version int, backend bind.ContractBackend) (*TWAP, error) {
	parsed, err := abi.JSON(strings.NewReader(twapABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse TWAP ABI: %w", err)
	}
	legacyParsed, err := abi.JSON(strings.NewReader(twapLegacyABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse legacy TWAP ABI: %w", err)
	}
	return &TWAP{
		address:  address,
		version:  version,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		legacy:   bind.NewBoundContract(address, legacyParsed, backend, backend, backend),
	}, nil
}

// Address returns the bound contract address.
func (t *TWAP) Address() common.Address { return t.address }

// Ask submits a new order. The parameter shape is version-gated: contracts
// beyond version 3 take a single tuple including auxiliary data, older
// versions take nine positional arguments and no data.
func (t *TWAP) Ask(opts *bind.TransactOpts, p AskParams) (*types.Transaction, error) {
	if t.version > 3 {
		data := p.Data
		if data == nil {
			data = []byte{}
		}
		return t.contract.Transact(opts, "ask", askTuple{
			Exchange:     p.Exchange,
			SrcToken:     p.SrcToken,
			DstToken:     p.DstToken,
			SrcAmount:    p.SrcAmount,
			SrcBidAmount: p.SrcBidAmount,
			DstMinAmount: p.DstMinAmount,
			Deadline:     p.Deadline,
			BidDelay:     p.BidDelay,
			FillDelay:    p.FillDelay,
			Data:         data,
		})
	}
	return t.legacy.Transact(opts, "ask",
		p.Exchange, p.SrcToken, p.DstToken,
		p.SrcAmount, p.SrcBidAmount, p.DstMinAmount,
		p.Deadline, p.BidDelay, p.FillDelay,
	)
}

// Bid submits a taker bid for an order's next chunk.
func (t *TWAP) Bid(opts *bind.TransactOpts, id uint64, exchange common.Address, dstFee *big.Int, data []byte) (*types.Transaction, error) {
	return t.contract.Transact(opts, "bid", id, exchange, dstFee, data)
}

// Fill executes the winning bid of an order.
func (t *TWAP) Fill(opts *bind.TransactOpts, id uint64) (*types.Transaction, error) {
	return t.contract.Transact(opts, "fill", id)
}

// Cancel cancels an order. Authorization and state checks are the
// contract's responsibility; none are duplicated here.
func (t *TWAP) Cancel(opts *bind.TransactOpts, id uint64) (*types.Transaction, error) {
	return t.contract.Transact(opts, "cancel", id)
}

// Prune finalizes a stale order.
func (t *TWAP) Prune(opts *bind.TransactOpts, id uint64) (*types.Transaction, error) {
	return t.contract.Transact(opts, "prune", id)
}

// Order reads and parses a single on-chain order record.
func (t *TWAP) Order(ctx context.Context, id uint64) (*models.Order, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "order", id); err != nil {
		return nil, fmt.Errorf("failed to read order %d: %w", id, err)
	}
	raw := *abi.ConvertType(out[0], new(rawOrder)).(*rawOrder)
	order := convertOrder(raw)
	return &order, nil
}

// MinBidDelaySeconds reads the contract's minimum bid delay constant.
func (t *TWAP) MinBidDelaySeconds(ctx context.Context) (int64, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, "MIN_BID_DELAY_SECONDS"); err != nil {
		return 0, fmt.Errorf("failed to read MIN_BID_DELAY_SECONDS: %w", err)
	}
	return int64(*abi.ConvertType(out[0], new(uint32)).(*uint32)), nil
}

// ParseOrderCreatedID extracts the newly assigned order id from a submission
// receipt's OrderCreated event.
func (t *TWAP) ParseOrderCreatedID(receipt *types.Receipt) (uint64, error) {
	event := t.abi.Events["OrderCreated"]
	for _, vLog := range receipt.Logs {
		if vLog.Address != t.address || len(vLog.Topics) == 0 || vLog.Topics[0] != event.ID {
			continue
		}
		values, err := t.abi.Unpack("OrderCreated", vLog.Data)
		if err != nil {
			return 0, fmt.Errorf("failed to unpack OrderCreated event: %w", err)
		}
		id, ok := values[0].(uint64)
		if !ok {
			return 0, fmt.Errorf("unexpected OrderCreated id type %T", values[0])
		}
		return id, nil
	}
	return 0, fmt.Errorf("no OrderCreated event in receipt %s", receipt.TxHash.Hex())
}

// convertOrder maps the raw ABI tuple onto the model type.
func convertOrder(r rawOrder) models.Order {
	return models.Order{
		ID:     r.Id,
		Status: int64(r.Status),
		Time:   int64(r.Time),
		Maker:  r.Maker,
		Ask: models.Ask{
			Deadline:     int64(r.Ask.Deadline),
			BidDelay:     int64(r.Ask.BidDelay),
			FillDelay:    int64(r.Ask.FillDelay),
			Exchange:     r.Ask.Exchange,
			SrcToken:     r.Ask.SrcToken,
			DstToken:     r.Ask.DstToken,
			SrcAmount:    r.Ask.SrcAmount,
			SrcBidAmount: r.Ask.SrcBidAmount,
			DstMinAmount: r.Ask.DstMinAmount,
		},
		Bid: models.Bid{
			Time:      int64(r.Bid.Time),
			Taker:     r.Bid.Taker,
			Exchange:  r.Bid.Exchange,
			DstAmount: r.Bid.DstAmount,
			DstFee:    r.Bid.DstFee,
			Data:      r.Bid.Data,
		},
		Filled: models.Filled{
			Time:      int64(r.Filled.Time),
			SrcAmount: r.Filled.SrcAmount,
			DstAmount: r.Filled.DstAmount,
			DstFee:    r.Filled.DstFee,
		},
	}
}
