package contracts

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/orbs-network/twap-go/internal/models"
)

const lensABI = `[
  {"name":"makerOrders","type":"function","stateMutability":"view","inputs":[
    {"name":"maker","type":"address"}
  ],"outputs":[{"name":"","type":"tuple[]","components":[
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
  ]}]}
]`

// Lens is the read-only periphery view returning all orders for a maker in
// one call.
type Lens struct {
	address  common.Address
	contract *bind.BoundContract
}

// NewLens binds the Lens contract at address.
func NewLens(address common.Address, backend bind.ContractBackend) (*Lens, error) {
	parsed, err := abi.JSON(strings.NewReader(lensABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse Lens ABI: %w", err)
	}
	return &Lens{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// MakerOrders reads and parses every order record belonging to maker.
func (l *Lens) MakerOrders(ctx context.Context, maker common.Address) ([]models.Order, error) {
	var out []interface{}
	if err := l.contract.Call(&bind.CallOpts{Context: ctx}, &out, "makerOrders", maker); err != nil {
		return nil, fmt.Errorf("failed to read maker orders: %w", err)
	}
	raws := *abi.ConvertType(out[0], new([]rawOrder)).(*[]rawOrder)
	orders := make([]models.Order, 0, len(raws))
	for _, r := range raws {
		orders = append(orders, convertOrder(r))
	}
	return orders, nil
}
