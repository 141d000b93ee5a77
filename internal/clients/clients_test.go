package clients

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/orbs-network/twap-go/internal/models"
)

var (
	testUSDC = models.Token{Address: common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"), Decimals: 6, Symbol: "USDC"}
	testWETH = models.Token{Address: common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619"), Decimals: 18, Symbol: "WETH"}

	testExchange = common.HexToAddress("0x26D0ec4Be402BCE03AAa8aAf0CF67e9428ba54eF")
)

func testHTTPClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

func TestParaswapFindRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/swap" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("network") != "137" {
			t.Errorf("network = %s, want 137", q.Get("network"))
		}
		if q.Get("side") != "SELL" {
			t.Errorf("side = %s, want SELL", q.Get("side"))
		}
		if q.Get("amount") != "100000000" {
			t.Errorf("amount = %s, want 100000000", q.Get("amount"))
		}
		if q.Get("userAddress") != testExchange.Hex() {
			t.Errorf("userAddress = %s", q.Get("userAddress"))
		}
		if q.Get("includeDEXS") != "QuickSwap" {
			t.Errorf("includeDEXS = %s, want QuickSwap", q.Get("includeDEXS"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"priceRoute": {
				"destAmount": "50000000000000000",
				"srcUSD": "100.25",
				"bestRoute": [{"swaps": [
					{"srcToken": "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", "destToken": "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619"}
				]}]
			},
			"txParams": {"data": "0xdeadbeef"}
		}`))
	}))
	defer srv.Close()

	client := &ParaswapClient{baseURL: srv.URL, httpClient: testHTTPClient()}
	route, err := client.FindRoute(context.Background(), 137, testUSDC, testWETH, big.NewInt(100_000_000), testExchange, "QuickSwap", "orbs")
	if err != nil {
		t.Fatalf("FindRoute: %v", err)
	}

	if route.DstAmount.String() != "50000000000000000" {
		t.Errorf("DstAmount = %s", route.DstAmount)
	}
	if route.SrcUSD.String() != "100.25" {
		t.Errorf("SrcUSD = %s", route.SrcUSD)
	}
	if string(route.Data) != string(common.FromHex("0xdeadbeef")) {
		t.Errorf("Data = %x", route.Data)
	}
	if len(route.Path) != 2 || route.Path[0] != testUSDC.Address || route.Path[1] != testWETH.Address {
		t.Errorf("Path = %v", route.Path)
	}
}

func TestParaswapFindRouteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no routes"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := &ParaswapClient{baseURL: srv.URL, httpClient: testHTTPClient()}
	if _, err := client.FindRoute(context.Background(), 137, testUSDC, testWETH, big.NewInt(1), testExchange, "", ""); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestOdosFindRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/sor/quote/v2":
			var req odosQuoteRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode quote request: %v", err)
			}
			if req.ChainID != 137 {
				t.Errorf("chainId = %d, want 137", req.ChainID)
			}
			if len(req.InputTokens) != 1 || req.InputTokens[0].Amount != "100000000" {
				t.Errorf("inputTokens = %+v", req.InputTokens)
			}
			if len(req.OutputToken) != 1 || req.OutputToken[0].Proportion != 1 {
				t.Errorf("outputTokens = %+v", req.OutputToken)
			}
			w.Write([]byte(`{"pathId": "abc123", "outAmounts": ["50000000000000000"], "inValues": [100.25]}`))
		case "/sor/assemble":
			var req odosAssembleRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode assemble request: %v", err)
			}
			if req.PathID != "abc123" {
				t.Errorf("pathId = %s, want abc123", req.PathID)
			}
			w.Write([]byte(`{"transaction": {"data": "0xcafe"}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := &OdosClient{baseURL: srv.URL, httpClient: testHTTPClient()}
	route, err := client.FindRoute(context.Background(), 137, testUSDC, testWETH, big.NewInt(100_000_000), testExchange, "", "orbs")
	if err != nil {
		t.Fatalf("FindRoute: %v", err)
	}

	if route.DstAmount.String() != "50000000000000000" {
		t.Errorf("DstAmount = %s", route.DstAmount)
	}
	if route.SrcUSD.String() != "100.25" {
		t.Errorf("SrcUSD = %s", route.SrcUSD)
	}
	if string(route.Data) != string(common.FromHex("0xcafe")) {
		t.Errorf("Data = %x", route.Data)
	}
}

func TestOpenOceanFindRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/137/swap_quote" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		// raw amount descaled to whole-token units
		if got := r.URL.Query().Get("amount"); got != "100" {
			t.Errorf("amount = %s, want 100", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": 200, "data": {"outAmount": "50000000000000000", "data": "0xbeef", "volume": 100.25}}`))
	}))
	defer srv.Close()

	client := &OpenOceanClient{baseURL: srv.URL, httpClient: testHTTPClient()}
	route, err := client.FindRoute(context.Background(), 137, testUSDC, testWETH, big.NewInt(100_000_000), testExchange, "", "")
	if err != nil {
		t.Fatalf("FindRoute: %v", err)
	}

	if route.DstAmount.String() != "50000000000000000" {
		t.Errorf("DstAmount = %s", route.DstAmount)
	}
	if route.SrcUSD.String() != "100.25" {
		t.Errorf("SrcUSD = %s", route.SrcUSD)
	}
}

func TestOpenOceanFindRouteBadCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": 500, "data": {}}`))
	}))
	defer srv.Close()

	client := &OpenOceanClient{baseURL: srv.URL, httpClient: testHTTPClient()}
	if _, err := client.FindRoute(context.Background(), 137, testUSDC, testWETH, big.NewInt(1), testExchange, "", ""); err == nil {
		t.Fatal("expected error for non-200 payload code")
	}
}
