package exchanges

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/orbs-network/twap-go/internal/clients"
	"github.com/orbs-network/twap-go/internal/config"
	"github.com/orbs-network/twap-go/internal/models"
)

// Exchange is one family of on-chain exchange adapters. Every family knows
// how to price a chunk through its aggregator and how to shape the calldata
// the contract expects for bids and asks. One implementation is selected at
// configuration-load time; there is no per-call type dispatch.
type Exchange interface {
	Name() string

	// FindRoute prices srcAmount of srcToken into dstToken for the next
	// bidding round.
	FindRoute(ctx context.Context, srcToken, dstToken models.Token, srcAmount *big.Int) (*clients.Route, error)

	// EncodeBidData shapes the bid calldata for this exchange family.
	EncodeBidData(route *clients.Route) ([]byte, error)

	// EncodeAskData shapes the auxiliary ask data appended at submission for
	// contract versions beyond 3. Empty for most families.
	EncodeAskData(params []common.Address) ([]byte, error)
}

// New selects the exchange family for the configured exchange type. An
// unknown type is a configuration error, reported here and never retried.
func New(cfg *config.Config) (Exchange, error) {
	switch cfg.ExchangeType {
	case config.ExchangeUniswapV2:
		return &uniswapV2Exchange{cfg: cfg, client: clients.NewParaswapClient()}, nil
	case config.ExchangePangolinDaas:
		return &pangolinDaasExchange{uniswapV2Exchange{cfg: cfg, client: clients.NewParaswapClient()}}, nil
	case config.ExchangeParaswap:
		return &paraswapExchange{cfg: cfg, client: clients.NewParaswapClient()}, nil
	case config.ExchangeOdos:
		return &odosExchange{cfg: cfg, client: clients.NewOdosClient()}, nil
	case config.ExchangeOpenOcean:
		return &openOceanExchange{cfg: cfg, client: clients.NewOpenOceanClient()}, nil
	default:
		return nil, fmt.Errorf("unknown exchange type %q", cfg.ExchangeType)
	}
}

// mustType is a helper function to create an abi.Type from a string
func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("invalid type: %s: %v", t, err))
	}
	return typ
}

var (
	// AMM-path families: (bool useReferencePrice, address[] path)
	ammBidArgs = abi.Arguments{
		{Type: mustType("bool")},
		{Type: mustType("address[]")},
	}
	// Aggregator-quoted families: (uint256 dstAmount, bytes swapData)
	aggregatorBidArgs = abi.Arguments{
		{Type: mustType("uint256")},
		{Type: mustType("bytes")},
	}
	askDataArgs = abi.Arguments{
		{Type: mustType("address")},
	}
)

func encodeAMMBid(route *clients.Route) ([]byte, error) {
	if len(route.Path) == 0 {
		return nil, fmt.Errorf("route has no AMM path")
	}
	data, err := ammBidArgs.Pack(true, route.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bid data: %w", err)
	}
	return data, nil
}

func encodeAggregatorBid(route *clients.Route) ([]byte, error) {
	data, err := aggregatorBidArgs.Pack(route.DstAmount, route.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bid data: %w", err)
	}
	return data, nil
}
