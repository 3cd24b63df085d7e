package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDexscreener_PairInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest/dex/tokens/mintA" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"pairs": [
				{
					"pairAddress": "pair1",
					"dexId": "raydium",
					"priceUsd": "0.0021",
					"liquidity": {"usd": 50000},
					"volume": {"h24": 12000}
				},
				{
					"pairAddress": "pair2",
					"dexId": "orca",
					"priceUsd": "0.0019",
					"liquidity": {"usd": 10000},
					"volume": {"h24": 3000}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewDexscreener(WithBaseURL(server.URL))

	info, err := client.PairInfo(context.Background(), "mintA")
	if err != nil {
		t.Fatalf("PairInfo failed: %v", err)
	}

	if len(info.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(info.Pairs))
	}

	// Price comes from the most liquid pair
	if info.Price != 0.0021 {
		t.Errorf("Expected price 0.0021, got %f", info.Price)
	}
	if info.LiquidityUSD != 60000 {
		t.Errorf("Expected summed liquidity 60000, got %f", info.LiquidityUSD)
	}
	if info.Volume24h != 15000 {
		t.Errorf("Expected summed volume 15000, got %f", info.Volume24h)
	}
}

func TestDexscreener_NoPairs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": []}`))
	}))
	defer server.Close()

	client := NewDexscreener(WithBaseURL(server.URL))

	_, err := client.PairInfo(context.Background(), "mintA")
	if err == nil {
		t.Fatal("Expected error when no pairs exist")
	}
}

func TestBirdeye_TokenPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-KEY"); got != "bkey" {
			t.Errorf("Expected api key header, got %q", got)
		}
		w.Write([]byte(`{
			"success": true,
			"data": {
				"value": 0.0042,
				"priceChange24h": -3.5,
				"v24hUSD": 98000,
				"updateUnixTime": 1730764800
			}
		}`))
	}))
	defer server.Close()

	client := NewBirdeye("bkey", WithBaseURL(server.URL))

	price, err := client.TokenPrice(context.Background(), "mintA")
	if err != nil {
		t.Fatalf("TokenPrice failed: %v", err)
	}

	if price.Value != 0.0042 {
		t.Errorf("Expected value 0.0042, got %f", price.Value)
	}
	if price.PriceChange24h != -3.5 {
		t.Errorf("Expected change -3.5, got %f", price.PriceChange24h)
	}
	if price.UpdatedAt != 1730764800 {
		t.Errorf("Expected timestamp carried, got %d", price.UpdatedAt)
	}
}

func TestSolanaTracker_TokenHolders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokens/mintA/holders" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"total": 4211,
			"accounts": [
				{"wallet": "whale1", "amount": 1000000, "percentage": 10.5},
				{"wallet": "whale2", "amount": 500000, "percentage": 5.25}
			]
		}`))
	}))
	defer server.Close()

	client := NewSolanaTracker("skey", WithBaseURL(server.URL))

	holders, err := client.TokenHolders(context.Background(), "mintA")
	if err != nil {
		t.Fatalf("TokenHolders failed: %v", err)
	}

	if holders.Total != 4211 {
		t.Errorf("Expected 4211 holders, got %d", holders.Total)
	}
	if len(holders.Top) != 2 {
		t.Fatalf("Expected 2 top holders, got %d", len(holders.Top))
	}
	if holders.Top[0].Share != 10.5 {
		t.Errorf("Expected share 10.5, got %f", holders.Top[0].Share)
	}
}
