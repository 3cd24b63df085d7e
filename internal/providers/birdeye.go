package providers

import (
	"context"
	"net/url"
)

const birdeyeBaseURL = "https://public-api.birdeye.so"

// TokenPrice is a spot price quote for a token.
type TokenPrice struct {
	Value          float64
	PriceChange24h float64 // percent
	Volume24h      float64 // USD
	UpdatedAt      int64   // Unix timestamp in seconds
}

// Birdeye is a client for the Birdeye price API.
type Birdeye struct {
	rest *rest
}

// NewBirdeye creates a Birdeye client authenticated with apiKey.
func NewBirdeye(apiKey string, opts ...Option) *Birdeye {
	headers := map[string]string{
		"X-API-KEY": apiKey,
		"x-chain":   "solana",
	}
	return &Birdeye{rest: newREST("birdeye", birdeyeBaseURL, headers, opts...)}
}

type birdeyePriceResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Value          float64 `json:"value"`
		PriceChange24h float64 `json:"priceChange24h"`
		Volume24hUSD   float64 `json:"v24hUSD"`
		UpdateUnixTime int64   `json:"updateUnixTime"`
	} `json:"data"`
}

// TokenPrice retrieves the current price for a token mint.
func (b *Birdeye) TokenPrice(ctx context.Context, mint string) (*TokenPrice, error) {
	query := url.Values{}
	query.Set("address", mint)

	var resp birdeyePriceResponse
	if err := b.rest.getJSON(ctx, "/defi/price", query, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, &Error{Provider: "birdeye", Endpoint: "/defi/price", Message: "unsuccessful response"}
	}

	return &TokenPrice{
		Value:          resp.Data.Value,
		PriceChange24h: resp.Data.PriceChange24h,
		Volume24h:      resp.Data.Volume24hUSD,
		UpdatedAt:      resp.Data.UpdateUnixTime,
	}, nil
}
