package providers

import (
	"context"
	"fmt"
)

const solanaTrackerBaseURL = "https://data.solanatracker.io"

// Holder is one token holder with its share of supply.
type Holder struct {
	Owner   string
	Balance float64
	Share   float64 // percent of supply
}

// TokenHolders is the holder listing for a token.
type TokenHolders struct {
	Total int64 // total distinct holders
	Top   []Holder
}

// SolanaTracker is a client for the SolanaTracker holders API.
type SolanaTracker struct {
	rest *rest
}

// NewSolanaTracker creates a SolanaTracker client authenticated with apiKey.
func NewSolanaTracker(apiKey string, opts ...Option) *SolanaTracker {
	return &SolanaTracker{
		rest: newREST("solanatracker", solanaTrackerBaseURL, map[string]string{"x-api-key": apiKey}, opts...),
	}
}

type solanaTrackerHoldersResponse struct {
	Total    int64 `json:"total"`
	Accounts []struct {
		Wallet     string  `json:"wallet"`
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
	} `json:"accounts"`
}

// TokenHolders retrieves the holder count and top holders for a token mint.
func (s *SolanaTracker) TokenHolders(ctx context.Context, mint string) (*TokenHolders, error) {
	path := fmt.Sprintf("/tokens/%s/holders", mint)

	var resp solanaTrackerHoldersResponse
	if err := s.rest.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	holders := &TokenHolders{Total: resp.Total}
	for _, a := range resp.Accounts {
		holders.Top = append(holders.Top, Holder{
			Owner:   a.Wallet,
			Balance: a.Amount,
			Share:   a.Percentage,
		})
	}
	return holders, nil
}
