package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/orbs-network/twap-go/internal/models"
)

// OpenOceanClient OpenOcean aggregator API client
type OpenOceanClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenOceanClient creates a new OpenOcean client
func NewOpenOceanClient() *OpenOceanClient {
	return &OpenOceanClient{
		baseURL: "https://open-api.openocean.finance/v3",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// openOceanSwapResponse represents an OpenOcean swap_quote response, reduced
// to the fields this layer consumes. OpenOcean reports the source-side USD
// value as volume.
type openOceanSwapResponse struct {
	Code int `json:"code"`
	Data struct {
		OutAmount string  `json:"outAmount"`
		Data      string  `json:"data"`
		Volume    float64 `json:"volume"`
	} `json:"data"`
}

// FindRoute prices srcAmount of srcToken into dstToken through OpenOcean.
// The amount parameter of the API is in whole-token units, so the raw amount
// is descaled by the token's decimals before the call.
func (c *OpenOceanClient) FindRoute(ctx context.Context, chainID int64, srcToken, dstToken models.Token, srcAmount *big.Int, exchangeAddress common.Address, enabledDexIDs, partner string) (*Route, error) {
	amount := decimal.NewFromBigInt(srcAmount, -srcToken.Decimals)

	params := url.Values{}
	params.Add("inTokenAddress", srcToken.Address.Hex())
	params.Add("outTokenAddress", dstToken.Address.Hex())
	params.Add("amount", amount.String())
	params.Add("account", exchangeAddress.Hex())
	params.Add("slippage", "1")
	params.Add("gasPrice", "5")
	if enabledDexIDs != "" {
		params.Add("enabledDexIds", enabledDexIDs)
	}
	if partner != "" {
		params.Add("referrer", partner)
	}

	reqURL := fmt.Sprintf("%s/%d/swap_quote?%s", c.baseURL, chainID, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OpenOcean API error (status %d): %s", resp.StatusCode, string(body))
	}

	var swapResp openOceanSwapResponse
	if err := json.NewDecoder(resp.Body).Decode(&swapResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if swapResp.Code != 200 {
		return nil, fmt.Errorf("OpenOcean API error (code %d)", swapResp.Code)
	}

	dstAmount, ok := new(big.Int).SetString(swapResp.Data.OutAmount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid outAmount %q", swapResp.Data.OutAmount)
	}

	return &Route{
		DstAmount: dstAmount,
		Data:      common.FromHex(swapResp.Data.Data),
		SrcUSD:    decimal.NewFromFloat(swapResp.Data.Volume),
	}, nil
}
