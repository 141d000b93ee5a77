package services

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/orbs-network/twap-go/internal/clients"
	"github.com/orbs-network/twap-go/internal/config"
	"github.com/orbs-network/twap-go/internal/models"
	"github.com/orbs-network/twap-go/internal/utils"
)

// fakeExchange records pricing calls and returns a canned route.
type fakeExchange struct {
	calls   []*big.Int
	route   *clients.Route
	bidData []byte
}

func (f *fakeExchange) Name() string { return "FakeExchange" }

func (f *fakeExchange) FindRoute(ctx context.Context, srcToken, dstToken models.Token, srcAmount *big.Int) (*clients.Route, error) {
	f.calls = append(f.calls, new(big.Int).Set(srcAmount))
	return f.route, nil
}

func (f *fakeExchange) EncodeBidData(route *clients.Route) ([]byte, error) {
	return f.bidData, nil
}

func (f *fakeExchange) EncodeAskData(params []common.Address) ([]byte, error) {
	return nil, nil
}

func testTWAPService(t *testing.T, fake *fakeExchange) *TWAPService {
	t.Helper()
	cfg := &config.Config{
		ChainID:         137,
		ExchangeAddress: common.HexToAddress("0x26D0ec4Be402BCE03AAa8aAf0CF67e9428ba54eF"),
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
		BidDelaySeconds: 60,
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &TWAPService{
		cfg:        cfg,
		exchange:   fake,
		calculator: NewOrderCalculator(cfg),
		validator:  NewOrderValidator(cfg),
		logger:     logger,
	}
}

// biddableOrder uses the wrapped and native tokens so metadata resolves from
// config without a chain call.
func biddableOrder(svc *TWAPService, exchange common.Address) *models.Order {
	return &models.Order{
		ID: 1,
		Ask: models.Ask{
			Exchange:     exchange,
			SrcToken:     svc.cfg.WToken.Address,
			DstToken:     utils.NativeTokenAddress,
			SrcAmount:    big.NewInt(2000),
			SrcBidAmount: big.NewInt(1000),
			DstMinAmount: big.NewInt(1),
		},
		Filled: models.Filled{SrcAmount: big.NewInt(1500)},
	}
}

func TestFindRouteForNextBidMismatch(t *testing.T) {
	fake := &fakeExchange{}
	svc := testTWAPService(t, fake)

	order := biddableOrder(svc, common.HexToAddress("0x0000000000000000000000000000000000000bad"))
	_, err := svc.FindRouteForNextBid(context.Background(), order)
	if !errors.Is(err, ErrExchangeMismatch) {
		t.Fatalf("err = %v, want ErrExchangeMismatch", err)
	}
	if len(fake.calls) != 0 {
		t.Error("no pricing call should happen on exchange mismatch")
	}
}

func TestFindRouteForNextBidCapsToRemainder(t *testing.T) {
	fake := &fakeExchange{
		route:   &clients.Route{DstAmount: big.NewInt(400)},
		bidData: []byte{0x01},
	}
	svc := testTWAPService(t, fake)

	// 2000 total, 1000 per bid, 1500 filled: the final round requests 500
	order := biddableOrder(svc, svc.cfg.ExchangeAddress)
	bid, err := svc.FindRouteForNextBid(context.Background(), order)
	if err != nil {
		t.Fatalf("FindRouteForNextBid: %v", err)
	}

	if len(fake.calls) != 1 || fake.calls[0].Int64() != 500 {
		t.Errorf("priced amounts = %v, want [500]", fake.calls)
	}
	if bid.SrcAmount.Int64() != 500 {
		t.Errorf("SrcAmount = %s, want 500", bid.SrcAmount)
	}
	if bid.DstAmount.Int64() != 400 {
		t.Errorf("DstAmount = %s, want 400", bid.DstAmount)
	}
	if bid.SrcToken.Symbol != "WMATIC" || bid.DstToken.Symbol != "MATIC" {
		t.Errorf("resolved tokens %s/%s", bid.SrcToken.Symbol, bid.DstToken.Symbol)
	}
}

func TestFindRouteForNextBidUnsetExchange(t *testing.T) {
	fake := &fakeExchange{route: &clients.Route{DstAmount: big.NewInt(1)}}
	svc := testTWAPService(t, fake)

	// a zero recorded exchange predates per-order exchanges and always matches
	order := biddableOrder(svc, common.Address{})
	if _, err := svc.FindRouteForNextBid(context.Background(), order); err != nil {
		t.Fatalf("FindRouteForNextBid: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Errorf("pricing calls = %d, want 1", len(fake.calls))
	}
}

func TestGetTokenFromConfig(t *testing.T) {
	svc := testTWAPService(t, &fakeExchange{})

	token, err := svc.GetToken(context.Background(), utils.NativeTokenAddress)
	if err != nil {
		t.Fatal(err)
	}
	if token.Symbol != "MATIC" {
		t.Errorf("native token = %+v", token)
	}

	token, err = svc.GetToken(context.Background(), svc.cfg.WToken.Address)
	if err != nil {
		t.Fatal(err)
	}
	if token.Symbol != "WMATIC" {
		t.Errorf("wrapped token = %+v", token)
	}
}

func TestSubmitOrderRejectsInvalidInputs(t *testing.T) {
	svc := testTWAPService(t, &fakeExchange{})

	// zero source amount fails validation before any signing or network work
	_, err := svc.SubmitOrder(
		context.Background(),
		svc.cfg.WToken, testUSDC,
		big.NewInt(0), big.NewInt(0), big.NewInt(1),
		time.Now().Add(time.Hour), 0, decimal.NewFromInt(1), nil, nil,
	)
	if err == nil {
		t.Fatal("expected validation error")
	}
}
