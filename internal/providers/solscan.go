package providers

import (
	"context"
	"math"
	"net/url"
	"strconv"
)

const solscanBaseURL = "https://pro-api.solscan.io/v2.0"

// TokenTransfer is one SPL token movement inside a transaction, with the
// amount already adjusted for token decimals.
type TokenTransfer struct {
	Source      string
	Destination string
	Mint        string
	Amount      float64
}

// AccountTransaction is one transaction touching an account.
type AccountTransaction struct {
	TxHash    string
	BlockTime int64 // Unix timestamp in seconds
	Transfers []TokenTransfer
}

// Solscan is a client for the Solscan transaction-history API.
type Solscan struct {
	rest *rest
}

// NewSolscan creates a Solscan client authenticated with apiKey.
func NewSolscan(apiKey string, opts ...Option) *Solscan {
	return &Solscan{
		rest: newREST("solscan", solscanBaseURL, map[string]string{"token": apiKey}, opts...),
	}
}

// solscanTransferRaw mirrors the wire shape of a token transfer.
type solscanTransferRaw struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Mint        string  `json:"token_address"`
	Amount      float64 `json:"amount"`
	Decimals    int     `json:"token_decimals"`
}

// solscanTransactionRaw mirrors the wire shape of an account transaction.
type solscanTransactionRaw struct {
	TxHash    string               `json:"tx_hash"`
	BlockTime int64                `json:"block_time"`
	Transfers []solscanTransferRaw `json:"token_transfers"`
}

type solscanTransactionsResponse struct {
	Success bool                    `json:"success"`
	Data    []solscanTransactionRaw `json:"data"`
}

// AccountTransactions retrieves transactions for an address, newest first.
// before is an opaque pagination cursor (the oldest tx hash already seen);
// empty means start from the newest transaction.
func (s *Solscan) AccountTransactions(ctx context.Context, address string, limit int, before string) ([]AccountTransaction, error) {
	query := url.Values{}
	query.Set("address", address)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if before != "" {
		query.Set("before", before)
	}

	var resp solscanTransactionsResponse
	if err := s.rest.getJSON(ctx, "/account/transactions", query, &resp); err != nil {
		return nil, err
	}

	txs := make([]AccountTransaction, 0, len(resp.Data))
	for _, raw := range resp.Data {
		tx := AccountTransaction{
			TxHash:    raw.TxHash,
			BlockTime: raw.BlockTime,
		}
		for _, t := range raw.Transfers {
			tx.Transfers = append(tx.Transfers, TokenTransfer{
				Source:      t.Source,
				Destination: t.Destination,
				Mint:        t.Mint,
				Amount:      adjustDecimals(t.Amount, t.Decimals),
			})
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

type solscanTokenAccountRaw struct {
	TokenAddress string  `json:"token_address"`
	Amount       float64 `json:"amount"`
	Decimals     int     `json:"token_decimals"`
}

type solscanTokenAccountsResponse struct {
	Success bool                     `json:"success"`
	Data    []solscanTokenAccountRaw `json:"data"`
}

// AccountTokenBalance retrieves an owner's decimal-adjusted balance of mint.
// A missing token account reads as zero balance.
func (s *Solscan) AccountTokenBalance(ctx context.Context, owner, mint string) (float64, error) {
	query := url.Values{}
	query.Set("address", owner)

	var resp solscanTokenAccountsResponse
	if err := s.rest.getJSON(ctx, "/account/token-accounts", query, &resp); err != nil {
		return 0, err
	}

	for _, acct := range resp.Data {
		if acct.TokenAddress == mint {
			return adjustDecimals(acct.Amount, acct.Decimals), nil
		}
	}
	return 0, nil
}

// adjustDecimals converts a raw on-chain amount to a token amount.
// Amount normalization happens here and nowhere else.
func adjustDecimals(raw float64, decimals int) float64 {
	if decimals <= 0 {
		return raw
	}
	return raw / math.Pow10(decimals)
}
