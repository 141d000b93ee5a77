package services

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/orbs-network/twap-go/internal/config"
	"github.com/orbs-network/twap-go/internal/models"
	"github.com/orbs-network/twap-go/internal/utils"
)

// divPrecision is the decimal precision carried through intermediate
// divisions before the final floor/ceil.
const divPrecision = 30

// OrderCalculator derives the concrete on-chain order parameters from raw
// user intent: chunk sizing, limit pricing and fill-delay accounting. The
// same arithmetic runs in the contract at settlement; any divergence here
// costs a rejected transaction or an unfavorable match.
type OrderCalculator struct {
	cfg *config.Config
}

// NewOrderCalculator creates a calculator over the deployment config.
func NewOrderCalculator(cfg *config.Config) *OrderCalculator {
	return &OrderCalculator{cfg: cfg}
}

// MaxPossibleChunks is the largest number of equal chunks such that each
// chunk is worth at least the configured minimum USD size, floored at 1.
func (c *OrderCalculator) MaxPossibleChunks(srcToken models.Token, srcAmount *big.Int, srcUSD decimal.Decimal) int64 {
	// raw units of one minimum-USD chunk: (10^decimals / srcUsd) * minChunkSizeUsd
	chunkUnit := utils.Pow10(srcToken.Decimals).DivRound(srcUSD, divPrecision).Mul(c.cfg.MinChunkSizeUSD)
	chunks := utils.DivFloor(decimal.NewFromBigInt(srcAmount, 0), chunkUnit)
	if chunks.LessThan(decimal.New(1, 0)) {
		return 1
	}
	return chunks.IntPart()
}

// SrcChunkAmount is the per-chunk source amount: floor(srcAmount/totalChunks).
func (c *OrderCalculator) SrcChunkAmount(srcAmount *big.Int, totalChunks int64) *big.Int {
	return new(big.Int).Quo(srcAmount, big.NewInt(totalChunks))
}

// TotalChunks is the chunk count covering srcAmount at the given chunk size:
// ceil(srcAmount/srcChunkAmount). Deriving size from count floors, deriving
// count from size ceils, so the whole amount is always coverable.
func (c *OrderCalculator) TotalChunks(srcAmount, srcChunkAmount *big.Int) int64 {
	q, r := new(big.Int).QuoRem(srcAmount, srcChunkAmount, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q.Int64()
}

// DstAmount is the expected destination amount for a (possibly partial)
// fill. Market orders use the live cross rate, limit orders the user's fixed
// rate; the result is decimal-converted to destination precision and floored.
func (c *OrderCalculator) DstAmount(srcToken, dstToken models.Token, srcAmount *big.Int, srcUSD, dstUSD, limitDstPriceFor1Src decimal.Decimal, isMarketOrder bool) *big.Int {
	src := decimal.NewFromBigInt(srcAmount, 0)
	var v decimal.Decimal
	if isMarketOrder {
		v = src.Mul(srcUSD).DivRound(dstUSD, divPrecision)
	} else {
		v = src.Mul(limitDstPriceFor1Src)
	}
	return utils.ConvertDecimals(v, srcToken.Decimals, dstToken.Decimals, utils.RoundDown).BigInt()
}

// DstMinAmountOut is the minimum acceptable destination amount per chunk.
// Market orders return the sentinel 1 ("accept any positive output"); limit
// orders return at least 1.
func (c *OrderCalculator) DstMinAmountOut(srcToken, dstToken models.Token, srcChunkAmount *big.Int, limitDstPriceFor1Src decimal.Decimal, isMarketOrder bool) *big.Int {
	if isMarketOrder {
		return new(big.Int).Set(models.DstMinSentinel)
	}
	chunk := decimal.NewFromBigInt(srcChunkAmount, 0)
	out := utils.ConvertDecimals(chunk.Mul(limitDstPriceFor1Src), srcToken.Decimals, dstToken.Decimals, utils.RoundDown).BigInt()
	return utils.MaxBig(big.NewInt(1), out)
}

// DstPriceFor1Src is the inverse of DstMinAmountOut. A stored minimum equal
// to the sentinel means no limit was set, so the effective price is the live
// market cross rate.
func (c *OrderCalculator) DstPriceFor1Src(srcToken, dstToken models.Token, srcUSD, dstUSD decimal.Decimal, srcChunkAmount, dstMinAmountOut *big.Int) decimal.Decimal {
	if dstMinAmountOut.Cmp(models.DstMinSentinel) == 0 {
		return srcUSD.DivRound(dstUSD, divPrecision)
	}
	chunk := utils.ConvertDecimals(decimal.NewFromBigInt(srcChunkAmount, 0), srcToken.Decimals, dstToken.Decimals, utils.RoundExact)
	return decimal.NewFromBigInt(dstMinAmountOut, 0).DivRound(chunk, divPrecision)
}

// PercentAboveMarket reports how far the limit price sits above the market
// cross rate, to 4 decimal places. Negative means below market.
func (c *OrderCalculator) PercentAboveMarket(srcUSD, dstUSD, limitDstPriceFor1Src decimal.Decimal) float64 {
	market := srcUSD.DivRound(dstUSD, divPrecision)
	return limitDstPriceFor1Src.DivRound(market, divPrecision).Sub(decimal.New(1, 0)).Round(4).InexactFloat64()
}

// OrderProgress is the filled fraction of an order in [0,1], to 4 decimal
// places.
func (c *OrderCalculator) OrderProgress(order *models.Order) float64 {
	filled := decimal.NewFromBigInt(order.Filled.SrcAmount, 0)
	total := decimal.NewFromBigInt(order.Ask.SrcAmount, 0)
	return filled.DivRound(total, divPrecision).Round(4).InexactFloat64()
}

// EstimatedDelayBetweenChunksMillis covers one full bidding round-trip plus
// block settlement: two bid-delay periods, in milliseconds.
func (c *OrderCalculator) EstimatedDelayBetweenChunksMillis() int64 {
	return c.cfg.BidDelaySeconds * 2000
}

// FillDelayUiMillis is the delay between chunks as shown to a user, never
// smaller than the protocol's own bidding overhead.
func (c *OrderCalculator) FillDelayUiMillis(totalChunks int64, maxDurationMillis int64) int64 {
	var perChunk int64
	if totalChunks > 1 {
		perChunk = maxDurationMillis / totalChunks
	}
	est := c.EstimatedDelayBetweenChunksMillis()
	if perChunk > est {
		return perChunk
	}
	return est
}

// FillDelayMillis is the value actually submitted on-chain. The contract
// independently adds the bidding-war overhead, so the UI value would
// double-count it; zero when the per-chunk duration is within that overhead.
func (c *OrderCalculator) FillDelayMillis(totalChunks int64, maxDurationMillis int64) int64 {
	return c.FillDelayUiMillis(totalChunks, maxDurationMillis) - c.EstimatedDelayBetweenChunksMillis()
}
