package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/orbs-network/twap-go/internal/clients"
	"github.com/orbs-network/twap-go/internal/config"
	"github.com/orbs-network/twap-go/internal/contracts"
	"github.com/orbs-network/twap-go/internal/exchanges"
	"github.com/orbs-network/twap-go/internal/metrics"
	"github.com/orbs-network/twap-go/internal/models"
	"github.com/orbs-network/twap-go/internal/utils"
)

// tokenFanout bounds the concurrent token-metadata lookups issued for a
// batch of orders.
const tokenFanout = 8

var (
	// ErrExchangeMismatch is raised before any pricing call when an order's
	// recorded exchange disagrees with the configured exchange; a bid priced
	// against the wrong exchange could never be submitted.
	ErrExchangeMismatch = errors.New("mismatched exchange and config")

	// ErrNoTransactor is returned by submission-type calls when the service
	// was constructed read-only.
	ErrNoTransactor = errors.New("no transactor configured")
)

// GasOptions are optional per-call fee overrides for submission-type calls.
// The service never retries; the caller resubmits with adjusted fees.
type GasOptions struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// ChainBackend is the node surface the service consumes, implemented by
// ethclient.Client. Injected at construction so multiple configurations can
// coexist; there is no process-wide instance.
type ChainBackend interface {
	bind.ContractBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// BidRoute is a priced and encoded bid for one chunk: the resolved token
// pair, the chunk's input amount, the quoted output and the calldata shaped
// for the configured exchange family.
type BidRoute struct {
	SrcToken  models.Token
	DstToken  models.Token
	SrcAmount *big.Int
	DstAmount *big.Int
	BidData   []byte
	Route     *clients.Route
}

// TWAPService is the order lifecycle client: it validates and submits
// orders, reads them back through the lens, and prices bids through the
// configured exchange family. It holds no mutable state beyond the immutable
// config and caches nothing across calls.
type TWAPService struct {
	cfg           *config.Config
	backend       ChainBackend
	auth          *bind.TransactOpts
	maker         common.Address
	confirmations uint64

	twap     *contracts.TWAP
	lens     *contracts.Lens
	exchange exchanges.Exchange
	pricing  *clients.ParaswapClient

	calculator *OrderCalculator
	validator  *OrderValidator
	logger     *logrus.Logger
}

// NewTWAPService wires the service for one deployment. auth may be nil for a
// read-only client; submission-type calls then fail with ErrNoTransactor.
func NewTWAPService(cfg *config.Config, backend ChainBackend, auth *bind.TransactOpts, maker common.Address, confirmations uint64, logger *logrus.Logger) (*TWAPService, error) {
	twap, err := contracts.NewTWAP(cfg.TWAPAddress, cfg.TWAPVersion, backend)
	if err != nil {
		return nil, err
	}
	lens, err := contracts.NewLens(cfg.LensAddress, backend)
	if err != nil {
		return nil, err
	}
	exchange, err := exchanges.New(cfg)
	if err != nil {
		return nil, err
	}
	return &TWAPService{
		cfg:           cfg,
		backend:       backend,
		auth:          auth,
		maker:         maker,
		confirmations: confirmations,
		twap:          twap,
		lens:          lens,
		exchange:      exchange,
		pricing:       clients.NewParaswapClient(),
		calculator:    NewOrderCalculator(cfg),
		validator:     NewOrderValidator(cfg),
		logger:        logger,
	}, nil
}

// Calculator exposes the order math for callers assembling parameters.
func (t *TWAPService) Calculator() *OrderCalculator { return t.calculator }

// Validator exposes the pre-flight validation pipeline.
func (t *TWAPService) Validator() *OrderValidator { return t.validator }

// Maker returns the maker address this service acts for.
func (t *TWAPService) Maker() common.Address { return t.maker }

// SubmitOrder validates the proposed parameters, assembles the version-gated
// ask tuple and submits it, returning the order id assigned by the contract.
// Validation failures surface before any network call.
func (t *TWAPService) SubmitOrder(
	ctx context.Context,
	srcToken, dstToken models.Token,
	srcAmount, srcChunkAmount, dstMinChunkAmountOut *big.Int,
	deadline time.Time,
	fillDelaySeconds int64,
	srcUSD decimal.Decimal,
	askDataParams []common.Address,
	gas *GasOptions,
) (uint64, error) {
	validation := t.validator.ValidateOrderInputs(
		srcToken, dstToken,
		srcAmount, srcChunkAmount, dstMinChunkAmountOut,
		deadline, fillDelaySeconds, srcUSD, time.Now(),
	)
	if validation != models.OrderInputValid {
		return 0, fmt.Errorf("invalid order inputs: %s", validation)
	}

	var askData []byte
	if t.cfg.TWAPVersion > 3 {
		var err error
		askData, err = t.exchange.EncodeAskData(askDataParams)
		if err != nil {
			return 0, err
		}
	}

	opts, err := t.txOpts(ctx, gas)
	if err != nil {
		return 0, err
	}

	tx, err := t.twap.Ask(opts, contracts.AskParams{
		Exchange:     t.cfg.ExchangeAddress,
		SrcToken:     srcToken.Address,
		DstToken:     dstToken.Address,
		SrcAmount:    srcAmount,
		SrcBidAmount: srcChunkAmount,
		DstMinAmount: dstMinChunkAmountOut,
		Deadline:     uint32(deadline.Unix()),
		BidDelay:     uint32(t.cfg.BidDelaySeconds),
		FillDelay:    uint32(fillDelaySeconds),
		Data:         askData,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to submit order: %w", err)
	}

	receipt, err := t.waitMined(ctx, tx)
	if err != nil {
		return 0, err
	}

	id, err := t.twap.ParseOrderCreatedID(receipt)
	if err != nil {
		return 0, err
	}

	metrics.OrdersSubmitted.Inc()
	t.logger.WithFields(logrus.Fields{
		"id":       id,
		"maker":    t.maker.Hex(),
		"srcToken": srcToken.Symbol,
		"dstToken": dstToken.Symbol,
		"tx":       tx.Hash().Hex(),
	}).Info("order submitted")
	return id, nil
}

// GetOrder reads and parses a single order record.
func (t *TWAPService) GetOrder(ctx context.Context, id uint64) (*models.Order, error) {
	return t.twap.Order(ctx, id)
}

// GetAllOrders reads the maker's orders through the lens, scoped to the
// configured exchange so callers only see their own integration's orders.
func (t *TWAPService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := t.lens.MakerOrders(ctx, t.maker)
	if err != nil {
		return nil, err
	}
	filtered := orders[:0]
	for _, o := range orders {
		if o.Ask.Exchange == t.cfg.ExchangeAddress {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// GetAllOrdersWithTokens is GetAllOrders with resolved token metadata
// attached. Distinct token addresses are deduplicated across all orders and
// resolved with a bounded concurrent fan-out; each lookup is independent and
// idempotent, so no ordering is needed between them.
func (t *TWAPService) GetAllOrdersWithTokens(ctx context.Context) ([]models.Order, error) {
	orders, err := t.GetAllOrders(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[common.Address]struct{})
	addrs := make([]common.Address, 0, len(orders)*2)
	for _, o := range orders {
		for _, a := range []common.Address{o.Ask.SrcToken, o.Ask.DstToken} {
			if _, ok := seen[a]; !ok {
				seen[a] = struct{}{}
				addrs = append(addrs, a)
			}
		}
	}

	resolved := make([]models.Token, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(tokenFanout)
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			token, err := t.GetToken(gctx, addr)
			if err != nil {
				return err
			}
			resolved[i] = token
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byAddr := make(map[common.Address]*models.Token, len(resolved))
	for i := range resolved {
		byAddr[resolved[i].Address] = &resolved[i]
	}
	for i := range orders {
		orders[i].SrcToken = byAddr[orders[i].Ask.SrcToken]
		orders[i].DstToken = byAddr[orders[i].Ask.DstToken]
	}
	return orders, nil
}

// CancelOrder cancels an order. No local precondition checks: authorization
// and state are the contract's responsibility.
func (t *TWAPService) CancelOrder(ctx context.Context, id uint64, gas *GasOptions) error {
	opts, err := t.txOpts(ctx, gas)
	if err != nil {
		return err
	}
	tx, err := t.twap.Cancel(opts, id)
	if err != nil {
		return fmt.Errorf("failed to cancel order %d: %w", id, err)
	}
	if _, err := t.waitMined(ctx, tx); err != nil {
		return err
	}
	metrics.OrdersCanceled.Inc()
	t.logger.WithField("id", id).Info("order canceled")
	return nil
}

// GetToken resolves token metadata by address. The native sentinel and the
// wrapped token are answered from config without a chain call.
func (t *TWAPService) GetToken(ctx context.Context, address common.Address) (models.Token, error) {
	if utils.IsNativeAddress(address) {
		return t.cfg.NativeToken, nil
	}
	if address == t.cfg.WToken.Address {
		return t.cfg.WToken, nil
	}

	erc20, err := contracts.NewERC20(address, t.backend)
	if err != nil {
		return models.Token{}, err
	}

	var (
		decimals int32
		symbol   string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		decimals, err = erc20.Decimals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		symbol, err = erc20.Symbol(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Token{}, err
	}
	return models.Token{Address: address, Decimals: decimals, Symbol: symbol}, nil
}

// MakerBalance reads the maker's balance of token, native or erc20.
func (t *TWAPService) MakerBalance(ctx context.Context, token models.Token) (*big.Int, error) {
	if token.IsNative() {
		return t.backend.BalanceAt(ctx, t.maker, nil)
	}
	erc20, err := contracts.NewERC20(token.Address, t.backend)
	if err != nil {
		return nil, err
	}
	return erc20.BalanceOf(ctx, t.maker)
}

// WrapNativeToken deposits amount of native currency into the wrapped token.
func (t *TWAPService) WrapNativeToken(ctx context.Context, amount *big.Int, gas *GasOptions) error {
	opts, err := t.txOpts(ctx, gas)
	if err != nil {
		return err
	}
	opts.Value = amount
	wtoken, err := contracts.NewERC20(t.cfg.WToken.Address, t.backend)
	if err != nil {
		return err
	}
	tx, err := wtoken.Deposit(opts)
	if err != nil {
		return fmt.Errorf("failed to wrap native token: %w", err)
	}
	_, err = t.waitMined(ctx, tx)
	return err
}

// UnwrapNativeToken withdraws amount of wrapped token back to native.
func (t *TWAPService) UnwrapNativeToken(ctx context.Context, amount *big.Int, gas *GasOptions) error {
	opts, err := t.txOpts(ctx, gas)
	if err != nil {
		return err
	}
	wtoken, err := contracts.NewERC20(t.cfg.WToken.Address, t.backend)
	if err != nil {
		return err
	}
	tx, err := wtoken.Withdraw(opts, amount)
	if err != nil {
		return fmt.Errorf("failed to unwrap native token: %w", err)
	}
	_, err = t.waitMined(ctx, tx)
	return err
}

// HasAllowance reports whether the TWAP contract may move amount of
// srcToken on the maker's behalf. Native currency needs no allowance.
func (t *TWAPService) HasAllowance(ctx context.Context, srcToken models.Token, amount *big.Int) (bool, error) {
	if srcToken.IsNative() {
		return true, nil
	}
	erc20, err := contracts.NewERC20(srcToken.Address, t.backend)
	if err != nil {
		return false, err
	}
	allowance, err := erc20.Allowance(ctx, t.maker, t.cfg.TWAPAddress)
	if err != nil {
		return false, err
	}
	return allowance.Cmp(amount) >= 0, nil
}

// Approve grants the TWAP contract an allowance of amount over srcToken.
func (t *TWAPService) Approve(ctx context.Context, srcToken models.Token, amount *big.Int, gas *GasOptions) error {
	opts, err := t.txOpts(ctx, gas)
	if err != nil {
		return err
	}
	erc20, err := contracts.NewERC20(srcToken.Address, t.backend)
	if err != nil {
		return err
	}
	tx, err := erc20.Approve(opts, t.cfg.TWAPAddress, amount)
	if err != nil {
		return fmt.Errorf("failed to approve %s: %w", srcToken.Symbol, err)
	}
	_, err = t.waitMined(ctx, tx)
	return err
}

// PriceUSD quotes the USD price of one whole token through the Paraswap
// driver. Native currency is priced as the wrapped token.
func (t *TWAPService) PriceUSD(ctx context.Context, token models.Token) (decimal.Decimal, error) {
	if token.IsNative() {
		token = t.cfg.WToken
	}
	one := utils.Pow10(token.Decimals).BigInt()
	nativeRef := models.Token{Address: utils.NativeTokenAddress, Decimals: 18, Symbol: "NATIVE"}
	route, err := t.pricing.FindRoute(ctx, t.cfg.ChainID, token, nativeRef, one, t.cfg.ExchangeAddress, "", "")
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to price %s: %w", token.Symbol, err)
	}
	return route.SrcUSD, nil
}

// FindRoute prices srcAmount through the configured exchange family and
// encodes the family's bid calldata.
func (t *TWAPService) FindRoute(ctx context.Context, srcToken, dstToken models.Token, srcAmount *big.Int) (*BidRoute, error) {
	start := time.Now()
	route, err := t.exchange.FindRoute(ctx, srcToken, dstToken, srcAmount)
	metrics.RouteLookupDuration.WithLabelValues(t.exchange.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RouteLookups.WithLabelValues(t.exchange.Name(), "error").Inc()
		return nil, err
	}
	metrics.RouteLookups.WithLabelValues(t.exchange.Name(), "ok").Inc()

	bidData, err := t.exchange.EncodeBidData(route)
	if err != nil {
		return nil, err
	}
	return &BidRoute{
		SrcToken:  srcToken,
		DstToken:  dstToken,
		SrcAmount: srcAmount,
		DstAmount: route.DstAmount,
		BidData:   bidData,
		Route:     route,
	}, nil
}

// FindRouteForNextBid prices the next bidding round of an order. The
// recorded exchange must match the configured one (or be unset); the check
// runs before any pricing call. The input amount caps the final chunk to the
// remaining balance.
func (t *TWAPService) FindRouteForNextBid(ctx context.Context, order *models.Order) (*BidRoute, error) {
	if order.Ask.Exchange != (common.Address{}) && order.Ask.Exchange != t.cfg.ExchangeAddress {
		return nil, ErrExchangeMismatch
	}

	amount := order.NextBidAmount()

	var srcToken, dstToken models.Token
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		srcToken, err = t.GetToken(gctx, order.Ask.SrcToken)
		return err
	})
	g.Go(func() error {
		var err error
		dstToken, err = t.GetToken(gctx, order.Ask.DstToken)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return t.FindRoute(ctx, srcToken, dstToken, amount)
}

// txOpts clones the base transactor for one call, applying optional fee
// overrides.
func (t *TWAPService) txOpts(ctx context.Context, gas *GasOptions) (*bind.TransactOpts, error) {
	if t.auth == nil {
		return nil, ErrNoTransactor
	}
	opts := *t.auth
	opts.Context = ctx
	if gas != nil {
		opts.GasFeeCap = gas.MaxFeePerGas
		opts.GasTipCap = gas.MaxPriorityFeePerGas
	}
	return &opts, nil
}

// waitMined blocks until the transaction is mined and the configured number
// of confirmations has passed. Failures are surfaced, never retried.
func (t *TWAPService) waitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, t.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for tx %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("tx %s reverted", tx.Hash().Hex())
	}

	if t.confirmations > 1 {
		target := receipt.BlockNumber.Uint64() + t.confirmations - 1
		for {
			head, err := t.backend.BlockNumber(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed reading head block: %w", err)
			}
			if head >= target {
				break
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
	return receipt, nil
}
