package app

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"

	"github.com/orbs-network/twap-go/internal/config"
	"github.com/orbs-network/twap-go/internal/services"
)

// Container holds the daemon's wired services. Built once at startup from
// the loaded config; there is no global instance.
type Container struct {
	Config *config.AppConfig
	Client *ethclient.Client
	TWAP   *services.TWAPService
	Taker  *services.TakerService
	Logger *logrus.Logger
}

// NewContainer dials the node, verifies the chain id and wires the services.
// The maker key comes from MAKER_PRIVATE_KEY; without it the container is
// read-only and MAKER_ADDRESS names the maker whose orders are read.
func NewContainer(ctx context.Context, cfg *config.AppConfig, logger *logrus.Logger) (*Container, error) {
	client, err := ethclient.DialContext(ctx, cfg.Node.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial node %s: %w", cfg.Node.RPCURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	if chainID.Int64() != cfg.TWAP.ChainID {
		client.Close()
		return nil, fmt.Errorf("node chain id %d does not match configured %d", chainID.Int64(), cfg.TWAP.ChainID)
	}

	auth, maker, err := makerIdentity(chainID.Int64())
	if err != nil {
		client.Close()
		return nil, err
	}

	twap, err := services.NewTWAPService(&cfg.TWAP, client, auth, maker, cfg.Node.Confirmations, logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	taker := services.NewTakerService(twap, time.Duration(cfg.Taker.PollIntervalSeconds)*time.Second, logger)

	logger.WithFields(logrus.Fields{
		"chainId":  cfg.TWAP.ChainID,
		"exchange": cfg.TWAP.ExchangeType,
		"maker":    maker.Hex(),
		"readOnly": auth == nil,
	}).Info("container initialized")

	return &Container{
		Config: cfg,
		Client: client,
		TWAP:   twap,
		Taker:  taker,
		Logger: logger,
	}, nil
}

// makerIdentity resolves the transactor and maker address from the
// environment.
func makerIdentity(chainID int64) (*bind.TransactOpts, common.Address, error) {
	if hexKey := os.Getenv("MAKER_PRIVATE_KEY"); hexKey != "" {
		key, err := crypto.HexToECDSA(hexKey)
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("invalid MAKER_PRIVATE_KEY: %w", err)
		}
		auth, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetInt64(chainID))
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("failed to build transactor: %w", err)
		}
		return auth, crypto.PubkeyToAddress(key.PublicKey), nil
	}

	addr := os.Getenv("MAKER_ADDRESS")
	if addr == "" {
		return nil, common.Address{}, fmt.Errorf("neither MAKER_PRIVATE_KEY nor MAKER_ADDRESS is set")
	}
	if !common.IsHexAddress(addr) {
		return nil, common.Address{}, fmt.Errorf("invalid MAKER_ADDRESS %q", addr)
	}
	return nil, common.HexToAddress(addr), nil
}

// Close releases the node connection.
func (c *Container) Close() {
	c.Client.Close()
}
