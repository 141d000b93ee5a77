package services

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/orbs-network/twap-go/internal/config"
	"github.com/orbs-network/twap-go/internal/models"
	"github.com/orbs-network/twap-go/internal/utils"
)

func testValidator(t *testing.T) *OrderValidator {
	t.Helper()
	return NewOrderValidator(&config.Config{
		ChainID: 137,
		WToken: models.Token{
			Address:  common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"),
			Decimals: 18,
			Symbol:   "WMATIC",
		},
		NativeToken: models.Token{
			Address:  utils.NativeTokenAddress,
			Decimals: 18,
			Symbol:   "MATIC",
		},
		MinChunkSizeUSD: decimal.NewFromInt(10),
	})
}

func TestValidateTokens(t *testing.T) {
	v := testValidator(t)
	native := models.Token{Address: utils.NativeTokenAddress, Decimals: 18, Symbol: "MATIC"}
	wrapped := models.Token{Address: common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"), Decimals: 18, Symbol: "WMATIC"}
	zeroNative := models.Token{Address: common.Address{}, Decimals: 18, Symbol: "MATIC"}

	tests := []struct {
		name string
		src  models.Token
		dst  models.Token
		want models.TokensValidation
	}{
		{"same token", testUSDC, testUSDC, models.TokensInvalid},
		{"native to native", native, zeroNative, models.TokensInvalid},
		{"native to wrapped", native, wrapped, models.TokensWrapOnly},
		{"native to erc20", native, testUSDC, models.TokensWrapAndOrder},
		{"wrapped to native", wrapped, native, models.TokensUnwrapOnly},
		{"erc20 to native", testUSDC, native, models.TokensDstTokenZero},
		{"erc20 to erc20", testUSDC, testWETH, models.TokensValid},
		{"wrapped to erc20", wrapped, testUSDC, models.TokensValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ValidateTokens(tt.src, tt.dst); got != tt.want {
				t.Errorf("ValidateTokens = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidateOrderInputs(t *testing.T) {
	v := testValidator(t)
	now := time.Unix(1700000000, 0)

	type inputs struct {
		src, dst         models.Token
		srcAmount        *big.Int
		chunk            *big.Int
		dstMin           *big.Int
		deadline         time.Time
		fillDelaySeconds int64
		srcUSD           decimal.Decimal
	}
	valid := inputs{
		src:              testUSDC,
		dst:              testWETH,
		srcAmount:        big.NewInt(100_000_000),
		chunk:            big.NewInt(20_000_000),
		dstMin:           big.NewInt(1),
		deadline:         now.Add(time.Hour),
		fillDelaySeconds: 0,
		srcUSD:           decimal.NewFromInt(1),
	}

	tests := []struct {
		name   string
		mutate func(*inputs)
		want   models.OrderInputValidation
	}{
		{"valid", func(*inputs) {}, models.OrderInputValid},
		{"same tokens", func(in *inputs) { in.dst = in.src }, models.OrderInputInvalidTokens},
		{"zero src amount", func(in *inputs) { in.srcAmount = big.NewInt(0) }, models.OrderInputInvalidSrcAmount},
		{"zero chunk", func(in *inputs) { in.chunk = big.NewInt(0) }, models.OrderInputInvalidSrcChunkAmount},
		{"chunk exceeds total", func(in *inputs) { in.chunk = big.NewInt(200_000_000) }, models.OrderInputInvalidSrcChunkAmount},
		{"zero dst minimum", func(in *inputs) { in.dstMin = big.NewInt(0) }, models.OrderInputInvalidDstMinChunkAmountOut},
		{"deadline not in future", func(in *inputs) { in.deadline = now }, models.OrderInputInvalidDeadline},
		{"negative fill delay", func(in *inputs) { in.fillDelaySeconds = -1 }, models.OrderInputInvalidFillDelaySeconds},
		{"zero src usd", func(in *inputs) { in.srcUSD = decimal.Zero }, models.OrderInputInvalidSrcUsd},
		{"chunk below usd floor", func(in *inputs) { in.chunk = big.NewInt(5_000_000) }, models.OrderInputInvalidSmallestSrcChunkUsd},
		{"chunk exactly at usd floor", func(in *inputs) { in.chunk = big.NewInt(10_000_000) }, models.OrderInputValid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			got := v.ValidateOrderInputs(
				in.src, in.dst,
				in.srcAmount, in.chunk, in.dstMin,
				in.deadline, in.fillDelaySeconds, in.srcUSD, now,
			)
			if got != tt.want {
				t.Errorf("ValidateOrderInputs = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestChainAndTokenPredicates(t *testing.T) {
	v := testValidator(t)
	if !v.IsValidChain(137) {
		t.Error("configured chain should be valid")
	}
	if v.IsValidChain(1) {
		t.Error("foreign chain should be invalid")
	}
	if !v.IsNativeToken(models.Token{Address: utils.NativeTokenAddress}) {
		t.Error("sentinel address should be native")
	}
	if !v.IsNativeToken(models.Token{Address: common.Address{}}) {
		t.Error("zero address should be native")
	}
	if !v.IsWrappedToken(models.Token{Address: common.HexToAddress("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270")}) {
		t.Error("configured wToken should be wrapped")
	}
}
