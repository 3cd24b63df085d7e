package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const dexscreenerBaseURL = "https://api.dexscreener.com"

// Pair is one DEX trading pair for a token.
type Pair struct {
	PairAddress  string
	DexID        string
	PriceUSD     float64
	LiquidityUSD float64
	Volume24h    float64
}

// PairInfo aggregates liquidity and volume across all pairs of a token.
type PairInfo struct {
	Price        float64 // price of the most liquid pair
	LiquidityUSD float64 // summed across pairs
	Volume24h    float64 // summed across pairs
	Pairs        []Pair
}

// Dexscreener is a client for the Dexscreener pair API. No API key required.
type Dexscreener struct {
	rest *rest
}

// NewDexscreener creates a Dexscreener client.
func NewDexscreener(opts ...Option) *Dexscreener {
	return &Dexscreener{rest: newREST("dexscreener", dexscreenerBaseURL, nil, opts...)}
}

type dexscreenerResponse struct {
	Pairs []struct {
		PairAddress string `json:"pairAddress"`
		DexID       string `json:"dexId"`
		PriceUSD    string `json:"priceUsd"` // Dexscreener serves price as a string
		Liquidity   struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
		Volume struct {
			H24 float64 `json:"h24"`
		} `json:"volume"`
	} `json:"pairs"`
}

// PairInfo retrieves pair, liquidity, and volume data for a token mint.
func (d *Dexscreener) PairInfo(ctx context.Context, mint string) (*PairInfo, error) {
	path := fmt.Sprintf("/latest/dex/tokens/%s", mint)

	var resp dexscreenerResponse
	if err := d.rest.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.Pairs) == 0 {
		return nil, &Error{Provider: "dexscreener", Endpoint: path, Message: "no pairs found"}
	}

	info := &PairInfo{}
	var bestLiquidity float64
	for _, p := range resp.Pairs {
		price, err := strconv.ParseFloat(p.PriceUSD, 64)
		if err != nil {
			// Malformed price on one pair is not fatal to the listing.
			continue
		}

		info.LiquidityUSD += p.Liquidity.USD
		info.Volume24h += p.Volume.H24
		info.Pairs = append(info.Pairs, Pair{
			PairAddress:  p.PairAddress,
			DexID:        p.DexID,
			PriceUSD:     price,
			LiquidityUSD: p.Liquidity.USD,
			Volume24h:    p.Volume.H24,
		})

		if p.Liquidity.USD >= bestLiquidity {
			bestLiquidity = p.Liquidity.USD
			info.Price = price
		}
	}

	if len(info.Pairs) == 0 {
		return nil, &Error{Provider: "dexscreener", Endpoint: path, Message: "no parseable pairs"}
	}
	return info, nil
}

// TokenPrice quotes the mint from its most liquid pair. Dexscreener has no
// 24h change field, so PriceChange24h stays zero. Satisfies the same
// contract as Birdeye's TokenPrice, making this a keyless price fallback.
func (d *Dexscreener) TokenPrice(ctx context.Context, mint string) (*TokenPrice, error) {
	info, err := d.PairInfo(ctx, mint)
	if err != nil {
		return nil, err
	}
	return &TokenPrice{
		Value:     info.Price,
		Volume24h: info.Volume24h,
		UpdatedAt: time.Now().Unix(),
	}, nil
}
