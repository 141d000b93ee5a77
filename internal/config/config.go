package config

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/orbs-network/twap-go/internal/models"
)

// Exchange families understood by this layer. Selection happens once at
// configuration-load time; see the exchanges package.
const (
	ExchangeUniswapV2    = "UniswapV2Exchange"
	ExchangePangolinDaas = "PangolinDaasExchange"
	ExchangeParaswap     = "ParaswapExchange"
	ExchangeOdos         = "OdosExchange"
	ExchangeOpenOcean    = "OpenOceanExchange"
)

// Config is the immutable per-deployment record. It is constructed once at
// client initialization and never mutated afterwards.
type Config struct {
	ChainID         int64
	TWAPAddress     common.Address
	LensAddress     common.Address
	ExchangeAddress common.Address
	ExchangeType    string
	PathfinderKey   string
	Partner         string
	WToken          models.Token
	NativeToken     models.Token
	MinChunkSizeUSD decimal.Decimal
	BidDelaySeconds int64
	TWAPVersion     int
}

// NodeConfig describes the chain connectivity owned by the caller.
type NodeConfig struct {
	RPCURL        string
	Confirmations uint64
}

// ServerConfig is the daemon's HTTP listen address.
type ServerConfig struct {
	Host string
	Port int
}

// TakerConfig controls the bid-round pricing loop.
type TakerConfig struct {
	PollIntervalSeconds int
}

// AppConfig is everything the taker daemon needs at startup.
type AppConfig struct {
	TWAP   Config
	Node   NodeConfig
	Server ServerConfig
	Taker  TakerConfig
}

// fileToken is the YAML shape of a token entry.
type fileToken struct {
	Address  string `yaml:"address"`
	Decimals int32  `yaml:"decimals"`
	Symbol   string `yaml:"symbol"`
}

// fileConfig is the on-disk YAML shape; addresses and USD amounts are kept
// as strings and parsed during Load.
type fileConfig struct {
	TWAP struct {
		ChainID         int64     `yaml:"chainId"`
		TWAPAddress     string    `yaml:"twapAddress"`
		LensAddress     string    `yaml:"lensAddress"`
		ExchangeAddress string    `yaml:"exchangeAddress"`
		ExchangeType    string    `yaml:"exchangeType"`
		PathfinderKey   string    `yaml:"pathfinderKey"`
		Partner         string    `yaml:"partner"`
		WToken          fileToken `yaml:"wToken"`
		NativeToken     fileToken `yaml:"nativeToken"`
		MinChunkSizeUSD string    `yaml:"minChunkSizeUsd"`
		BidDelaySeconds int64     `yaml:"bidDelaySeconds"`
		TWAPVersion     int       `yaml:"twapVersion"`
	} `yaml:"twap"`
	Node struct {
		RPCURL        string `yaml:"rpcUrl"`
		Confirmations uint64 `yaml:"confirmations"`
	} `yaml:"node"`
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Taker struct {
		PollIntervalSeconds int `yaml:"pollIntervalSeconds"`
	} `yaml:"taker"`
}

// Load reads and validates an AppConfig from a YAML file.
func Load(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	minChunk, err := decimal.NewFromString(fc.TWAP.MinChunkSizeUSD)
	if err != nil {
		return nil, fmt.Errorf("invalid minChunkSizeUsd %q: %w", fc.TWAP.MinChunkSizeUSD, err)
	}

	cfg := &AppConfig{
		TWAP: Config{
			ChainID:         fc.TWAP.ChainID,
			TWAPAddress:     common.HexToAddress(fc.TWAP.TWAPAddress),
			LensAddress:     common.HexToAddress(fc.TWAP.LensAddress),
			ExchangeAddress: common.HexToAddress(fc.TWAP.ExchangeAddress),
			ExchangeType:    fc.TWAP.ExchangeType,
			PathfinderKey:   fc.TWAP.PathfinderKey,
			Partner:         fc.TWAP.Partner,
			WToken: models.Token{
				Address:  common.HexToAddress(fc.TWAP.WToken.Address),
				Decimals: fc.TWAP.WToken.Decimals,
				Symbol:   fc.TWAP.WToken.Symbol,
			},
			NativeToken: models.Token{
				Address:  common.HexToAddress(fc.TWAP.NativeToken.Address),
				Decimals: fc.TWAP.NativeToken.Decimals,
				Symbol:   fc.TWAP.NativeToken.Symbol,
			},
			MinChunkSizeUSD: minChunk,
			BidDelaySeconds: fc.TWAP.BidDelaySeconds,
			TWAPVersion:     fc.TWAP.TWAPVersion,
		},
		Node: NodeConfig{
			RPCURL:        fc.Node.RPCURL,
			Confirmations: fc.Node.Confirmations,
		},
		Server: ServerConfig{
			Host: fc.Server.Host,
			Port: fc.Server.Port,
		},
		Taker: TakerConfig{
			PollIntervalSeconds: fc.Taker.PollIntervalSeconds,
		},
	}

	if cfg.Taker.PollIntervalSeconds <= 0 {
		cfg.Taker.PollIntervalSeconds = 10
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if err := cfg.TWAP.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the deployment record for configuration errors. These are
// reported immediately at load, not deferred to the first network call.
func (c *Config) Validate() error {
	if c.ChainID <= 0 {
		return fmt.Errorf("invalid chainId: %d", c.ChainID)
	}
	if c.TWAPAddress == (common.Address{}) {
		return fmt.Errorf("twapAddress is not configured")
	}
	if c.LensAddress == (common.Address{}) {
		return fmt.Errorf("lensAddress is not configured")
	}
	if c.ExchangeAddress == (common.Address{}) {
		return fmt.Errorf("exchangeAddress is not configured")
	}
	switch c.ExchangeType {
	case ExchangeUniswapV2, ExchangePangolinDaas, ExchangeParaswap, ExchangeOdos, ExchangeOpenOcean:
	default:
		return fmt.Errorf("unknown exchange type %q", c.ExchangeType)
	}
	if c.WToken.Address == (common.Address{}) {
		return fmt.Errorf("wToken is not configured")
	}
	if c.MinChunkSizeUSD.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("minChunkSizeUsd must be positive, got %s", c.MinChunkSizeUSD)
	}
	if c.BidDelaySeconds <= 0 {
		return fmt.Errorf("bidDelaySeconds must be positive, got %d", c.BidDelaySeconds)
	}
	if c.TWAPVersion <= 0 {
		return fmt.Errorf("twapVersion must be positive, got %d", c.TWAPVersion)
	}
	return nil
}
