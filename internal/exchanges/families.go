package exchanges

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/orbs-network/twap-go/internal/clients"
	"github.com/orbs-network/twap-go/internal/config"
	"github.com/orbs-network/twap-go/internal/models"
)

// uniswapV2Exchange covers constant-product AMM adapters. Routes are priced
// through Paraswap and executed on-chain along the returned token path, so
// the bid carries the path rather than opaque calldata.
type uniswapV2Exchange struct {
	cfg    *config.Config
	client *clients.ParaswapClient
}

func (e *uniswapV2Exchange) Name() string { return config.ExchangeUniswapV2 }

func (e *uniswapV2Exchange) FindRoute(ctx context.Context, srcToken, dstToken models.Token, srcAmount *big.Int) (*clients.Route, error) {
	return e.client.FindRoute(ctx, e.cfg.ChainID, srcToken, dstToken, srcAmount, e.cfg.ExchangeAddress, e.cfg.PathfinderKey, e.cfg.Partner)
}

func (e *uniswapV2Exchange) EncodeBidData(route *clients.Route) ([]byte, error) {
	return encodeAMMBid(route)
}

func (e *uniswapV2Exchange) EncodeAskData(params []common.Address) ([]byte, error) {
	return nil, nil
}

// pangolinDaasExchange behaves like a UniswapV2 adapter but the ask carries
// the DAAS partner address as auxiliary data.
type pangolinDaasExchange struct {
	uniswapV2Exchange
}

func (e *pangolinDaasExchange) Name() string { return config.ExchangePangolinDaas }

func (e *pangolinDaasExchange) EncodeAskData(params []common.Address) ([]byte, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("PangolinDaas ask data requires exactly one partner address, got %d", len(params))
	}
	data, err := askDataArgs.Pack(params[0])
	if err != nil {
		return nil, fmt.Errorf("failed to encode ask data: %w", err)
	}
	return data, nil
}

// paraswapExchange executes the aggregator's own calldata on-chain; the bid
// carries the quoted output amount plus the opaque swap data.
type paraswapExchange struct {
	cfg    *config.Config
	client *clients.ParaswapClient
}

func (e *paraswapExchange) Name() string { return config.ExchangeParaswap }

func (e *paraswapExchange) FindRoute(ctx context.Context, srcToken, dstToken models.Token, srcAmount *big.Int) (*clients.Route, error) {
	return e.client.FindRoute(ctx, e.cfg.ChainID, srcToken, dstToken, srcAmount, e.cfg.ExchangeAddress, e.cfg.PathfinderKey, e.cfg.Partner)
}

func (e *paraswapExchange) EncodeBidData(route *clients.Route) ([]byte, error) {
	return encodeAggregatorBid(route)
}

func (e *paraswapExchange) EncodeAskData(params []common.Address) ([]byte, error) {
	return nil, nil
}

type odosExchange struct {
	cfg    *config.Config
	client *clients.OdosClient
}

func (e *odosExchange) Name() string { return config.ExchangeOdos }

func (e *odosExchange) FindRoute(ctx context.Context, srcToken, dstToken models.Token, srcAmount *big.Int) (*clients.Route, error) {
	return e.client.FindRoute(ctx, e.cfg.ChainID, srcToken, dstToken, srcAmount, e.cfg.ExchangeAddress, e.cfg.PathfinderKey, e.cfg.Partner)
}

func (e *odosExchange) EncodeBidData(route *clients.Route) ([]byte, error) {
	return encodeAggregatorBid(route)
}

func (e *odosExchange) EncodeAskData(params []common.Address) ([]byte, error) {
	return nil, nil
}

type openOceanExchange struct {
	cfg    *config.Config
	client *clients.OpenOceanClient
}

func (e *openOceanExchange) Name() string { return config.ExchangeOpenOcean }

func (e *openOceanExchange) FindRoute(ctx context.Context, srcToken, dstToken models.Token, srcAmount *big.Int) (*clients.Route, error) {
	return e.client.FindRoute(ctx, e.cfg.ChainID, srcToken, dstToken, srcAmount, e.cfg.ExchangeAddress, e.cfg.PathfinderKey, e.cfg.Partner)
}

func (e *openOceanExchange) EncodeBidData(route *clients.Route) ([]byte, error) {
	return encodeAggregatorBid(route)
}

func (e *openOceanExchange) EncodeAskData(params []common.Address) ([]byte, error) {
	return nil, nil
}
