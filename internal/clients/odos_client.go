package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/orbs-network/twap-go/internal/models"
)

// OdosClient Odos smart order routing API client
type OdosClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOdosClient creates a new Odos client
func NewOdosClient() *OdosClient {
	return &OdosClient{
		baseURL: "https://api.odos.xyz",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type odosQuoteRequest struct {
	ChainID     int64           `json:"chainId"`
	InputTokens []odosTokenAmt  `json:"inputTokens"`
	OutputToken []odosTokenProp `json:"outputTokens"`
	UserAddr    string          `json:"userAddr"`
	Whitelist   []string        `json:"sourceWhitelist,omitempty"`
	Referral    string          `json:"referralCode,omitempty"`
}

type odosTokenAmt struct {
	TokenAddress string `json:"tokenAddress"`
	Amount       string `json:"amount"`
}

type odosTokenProp struct {
	TokenAddress string  `json:"tokenAddress"`
	Proportion   float64 `json:"proportion"`
}

type odosQuoteResponse struct {
	PathID     string    `json:"pathId"`
	OutAmounts []string  `json:"outAmounts"`
	InValues   []float64 `json:"inValues"`
}

type odosAssembleRequest struct {
	UserAddr string `json:"userAddr"`
	PathID   string `json:"pathId"`
}

type odosAssembleResponse struct {
	Transaction struct {
		Data string `json:"data"`
	} `json:"transaction"`
}

// FindRoute prices srcAmount of srcToken into dstToken through the Odos
// pathfinder and assembles the executable calldata. Odos is a two-step API:
// quote returns a path id, assemble turns it into a transaction.
func (c *OdosClient) FindRoute(ctx context.Context, chainID int64, srcToken, dstToken models.Token, srcAmount *big.Int, exchangeAddress common.Address, whitelistKey, partner string) (*Route, error) {
	quoteReq := odosQuoteRequest{
		ChainID: chainID,
		InputTokens: []odosTokenAmt{
			{TokenAddress: srcToken.Address.Hex(), Amount: srcAmount.String()},
		},
		OutputToken: []odosTokenProp{
			{TokenAddress: dstToken.Address.Hex(), Proportion: 1},
		},
		UserAddr: exchangeAddress.Hex(),
		Referral: partner,
	}
	if whitelistKey != "" {
		quoteReq.Whitelist = []string{whitelistKey}
	}

	var quoteResp odosQuoteResponse
	if err := c.post(ctx, "/sor/quote/v2", quoteReq, &quoteResp); err != nil {
		return nil, err
	}
	if len(quoteResp.OutAmounts) == 0 {
		return nil, fmt.Errorf("Odos quote returned no output amounts")
	}

	dstAmount, ok := new(big.Int).SetString(quoteResp.OutAmounts[0], 10)
	if !ok {
		return nil, fmt.Errorf("invalid outAmount %q", quoteResp.OutAmounts[0])
	}
	srcUSD := decimal.Zero
	if len(quoteResp.InValues) > 0 {
		srcUSD = decimal.NewFromFloat(quoteResp.InValues[0])
	}

	var asmResp odosAssembleResponse
	asmReq := odosAssembleRequest{UserAddr: exchangeAddress.Hex(), PathID: quoteResp.PathID}
	if err := c.post(ctx, "/sor/assemble", asmReq, &asmResp); err != nil {
		return nil, err
	}

	return &Route{
		DstAmount: dstAmount,
		Data:      common.FromHex(asmResp.Transaction.Data),
		SrcUSD:    srcUSD,
	}, nil
}

func (c *OdosClient) post(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Odos API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
