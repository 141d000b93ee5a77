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

// ParaswapClient Paraswap API client
type ParaswapClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewParaswapClient creates a new Paraswap client
func NewParaswapClient() *ParaswapClient {
	return &ParaswapClient{
		baseURL: "https://apiv5.paraswap.io",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// paraswapSwapResponse represents a Paraswap /swap response, reduced to the
// fields this layer consumes.
type paraswapSwapResponse struct {
	PriceRoute struct {
		DestAmount string `json:"destAmount"`
		SrcUSD     string `json:"srcUSD"`
		BestRoute  []struct {
			Swaps []struct {
				SrcToken  string `json:"srcToken"`
				DestToken string `json:"destToken"`
			} `json:"swaps"`
		} `json:"bestRoute"`
	} `json:"priceRoute"`
	TxParams struct {
		Data string `json:"data"`
	} `json:"txParams"`
}

// FindRoute prices srcAmount of srcToken into dstToken and returns the
// executable route. includeDEXs is the driver selector key restricting which
// venues Paraswap may route through.
func (c *ParaswapClient) FindRoute(ctx context.Context, chainID int64, srcToken, dstToken models.Token, srcAmount *big.Int, exchangeAddress common.Address, includeDEXs, partner string) (*Route, error) {
	params := url.Values{}
	params.Add("network", fmt.Sprintf("%d", chainID))
	params.Add("srcToken", srcToken.Address.Hex())
	params.Add("srcDecimals", fmt.Sprintf("%d", srcToken.Decimals))
	params.Add("destToken", dstToken.Address.Hex())
	params.Add("destDecimals", fmt.Sprintf("%d", dstToken.Decimals))
	params.Add("amount", srcAmount.String())
	params.Add("side", "SELL")
	params.Add("userAddress", exchangeAddress.Hex())
	params.Add("ignoreChecks", "true")
	if includeDEXs != "" {
		params.Add("includeDEXS", includeDEXs)
	}
	if partner != "" {
		params.Add("partner", partner)
	}

	reqURL := fmt.Sprintf("%s/swap?%s", c.baseURL, params.Encode())

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
		return nil, fmt.Errorf("Paraswap API error (status %d): %s", resp.StatusCode, string(body))
	}

	var swapResp paraswapSwapResponse
	if err := json.NewDecoder(resp.Body).Decode(&swapResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	dstAmount, ok := new(big.Int).SetString(swapResp.PriceRoute.DestAmount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid destAmount %q", swapResp.PriceRoute.DestAmount)
	}
	srcUSD, err := decimal.NewFromString(swapResp.PriceRoute.SrcUSD)
	if err != nil {
		return nil, fmt.Errorf("invalid srcUSD %q: %w", swapResp.PriceRoute.SrcUSD, err)
	}

	return &Route{
		DstAmount: dstAmount,
		Data:      common.FromHex(swapResp.TxParams.Data),
		Path:      extractPath(&swapResp),
		SrcUSD:    srcUSD,
	}, nil
}

// extractPath flattens the best route's swap hops into an AMM token path.
// Empty when the route cannot be expressed as a single path.
func extractPath(resp *paraswapSwapResponse) []common.Address {
	if len(resp.PriceRoute.BestRoute) == 0 {
		return nil
	}
	swaps := resp.PriceRoute.BestRoute[0].Swaps
	if len(swaps) == 0 {
		return nil
	}
	path := make([]common.Address, 0, len(swaps)+1)
	path = append(path, common.HexToAddress(swaps[0].SrcToken))
	for _, s := range swaps {
		path = append(path, common.HexToAddress(s.DestToken))
	}
	return path
}
