package services

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orbs-network/twap-go/internal/config"
	"github.com/orbs-network/twap-go/internal/models"
	"github.com/orbs-network/twap-go/internal/utils"
)

// OrderValidator gates proposed order parameters before submission. Every
// check mirrors an on-chain precondition so an invalid order never costs a
// transaction; outcomes are enum values, never errors.
type OrderValidator struct {
	cfg *config.Config
}

// NewOrderValidator creates a validator over the deployment config.
func NewOrderValidator(cfg *config.Config) *OrderValidator {
	return &OrderValidator{cfg: cfg}
}

// IsNativeToken reports whether token stands for the native currency.
func (v *OrderValidator) IsNativeToken(token models.Token) bool {
	return token.IsNative()
}

// IsWrappedToken reports whether token is the configured wrapped-native.
func (v *OrderValidator) IsWrappedToken(token models.Token) bool {
	return token.Address == v.cfg.WToken.Address
}

// IsValidChain reports whether chainID matches the deployment.
func (v *OrderValidator) IsValidChain(chainID int64) bool {
	return chainID == v.cfg.ChainID
}

// ValidateTokens classifies a token pair. The native currency is never
// directly tradable: as a source it is wrapped first, as a destination it is
// only reachable through unwrap semantics from the wrapped token.
func (v *OrderValidator) ValidateTokens(srcToken, dstToken models.Token) models.TokensValidation {
	if srcToken.Equal(dstToken) || (v.IsNativeToken(srcToken) && v.IsNativeToken(dstToken)) {
		return models.TokensInvalid
	}

	if v.IsNativeToken(srcToken) {
		if v.IsWrappedToken(dstToken) {
			return models.TokensWrapOnly
		}
		return models.TokensWrapAndOrder
	}

	if v.IsWrappedToken(srcToken) && v.IsNativeToken(dstToken) {
		return models.TokensUnwrapOnly
	}

	if v.IsNativeToken(dstToken) {
		return models.TokensDstTokenZero
	}

	return models.TokensValid
}

// ValidateOrderInputs runs the pre-submission pipeline, returning on the
// first failing check.
func (v *OrderValidator) ValidateOrderInputs(
	srcToken, dstToken models.Token,
	srcAmount, srcChunkAmount, dstMinChunkAmountOut *big.Int,
	deadline time.Time,
	fillDelaySeconds int64,
	srcUSD decimal.Decimal,
	now time.Time,
) models.OrderInputValidation {
	if v.ValidateTokens(srcToken, dstToken) == models.TokensInvalid {
		return models.OrderInputInvalidTokens
	}

	if srcAmount.Sign() <= 0 {
		return models.OrderInputInvalidSrcAmount
	}

	if srcChunkAmount.Sign() <= 0 || srcChunkAmount.Cmp(srcAmount) > 0 {
		return models.OrderInputInvalidSrcChunkAmount
	}

	if dstMinChunkAmountOut.Sign() <= 0 {
		return models.OrderInputInvalidDstMinChunkAmountOut
	}

	if !deadline.After(now) {
		return models.OrderInputInvalidDeadline
	}

	if fillDelaySeconds < 0 {
		return models.OrderInputInvalidFillDelaySeconds
	}

	if srcUSD.LessThanOrEqual(decimal.Zero) {
		return models.OrderInputInvalidSrcUsd
	}

	// chunk notional in raw units must reach the configured USD floor;
	// equality passes.
	chunkValue := decimal.NewFromBigInt(srcChunkAmount, 0).Mul(srcUSD)
	floor := v.cfg.MinChunkSizeUSD.Mul(utils.Pow10(srcToken.Decimals))
	if chunkValue.LessThan(floor) {
		return models.OrderInputInvalidSmallestSrcChunkUsd
	}

	return models.OrderInputValid
}
