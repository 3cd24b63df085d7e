// Package stats derives token statistics from the burn ledger and live
// provider data.
package stats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"soba-backend/internal/domain"
	"soba-backend/internal/providers"
	"soba-backend/internal/storage"
)

// PriceSource quotes the current token price. Implemented by providers.Birdeye.
type PriceSource interface {
	TokenPrice(ctx context.Context, mint string) (*providers.TokenPrice, error)
}

// HolderSource lists token holders. Implemented by providers.SolanaTracker.
type HolderSource interface {
	TokenHolders(ctx context.Context, mint string) (*providers.TokenHolders, error)
}

// BalanceSource reads an owner's token balance. Implemented by providers.Solscan.
type BalanceSource interface {
	AccountTokenBalance(ctx context.Context, owner, mint string) (float64, error)
}

// Aggregator combines ledger totals with live provider data into a
// TokenStats snapshot. It prefers degraded service over total failure:
// when a provider call fails, the last good snapshot is served with cache
// markers set.
type Aggregator struct {
	prices        PriceSource
	holders       HolderSource
	balances      BalanceSource
	store         storage.BurnStore
	mint          string
	burnWallet    string
	founderWallet string
	totalSupply   float64
	burnHour      int
	burnLoc       *time.Location
	logger        *log.Logger
	now           func() time.Time

	mu     sync.Mutex
	cached *domain.TokenStats // last good snapshot, Cached flag unset
}

// AggregatorOptions contains configuration for creating an Aggregator.
type AggregatorOptions struct {
	Prices        PriceSource
	Holders       HolderSource
	Balances      BalanceSource
	Store         storage.BurnStore
	Mint          string
	BurnWallet    string
	FounderWallet string
	TotalSupply   float64
	BurnHour      int            // Default: 12 (noon)
	BurnLocation  *time.Location // Default: UTC
	Logger        *log.Logger
	Now           func() time.Time // test hook, defaults to time.Now
}

// NewAggregator creates a new statistics aggregator.
func NewAggregator(opts AggregatorOptions) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	loc := opts.BurnLocation
	if loc == nil {
		loc = time.UTC
	}

	burnHour := opts.BurnHour
	if burnHour == 0 {
		burnHour = 12
	}

	return &Aggregator{
		prices:        opts.Prices,
		holders:       opts.Holders,
		balances:      opts.Balances,
		store:         opts.Store,
		mint:          opts.Mint,
		burnWallet:    opts.BurnWallet,
		founderWallet: opts.FounderWallet,
		totalSupply:   opts.TotalSupply,
		burnHour:      burnHour,
		burnLoc:       loc,
		logger:        logger,
		now:           now,
	}
}

// Snapshot computes a fresh TokenStats. On any provider failure it falls
// back to the last good snapshot with Cached=true; the error is returned
// only when no cache exists.
func (a *Aggregator) Snapshot(ctx context.Context) (*domain.TokenStats, error) {
	var (
		wg             sync.WaitGroup
		price          *providers.TokenPrice
		holders        *providers.TokenHolders
		founderBalance float64
		priceErr       error
		holdersErr     error
		founderErr     error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		price, priceErr = a.prices.TokenPrice(ctx, a.mint)
	}()
	go func() {
		defer wg.Done()
		holders, holdersErr = a.holders.TokenHolders(ctx, a.mint)
	}()
	go func() {
		defer wg.Done()
		founderBalance, founderErr = a.balances.AccountTokenBalance(ctx, a.founderWallet, a.mint)
	}()
	wg.Wait()

	for _, err := range []error{priceErr, holdersErr, founderErr} {
		if err != nil {
			return a.fallback(err)
		}
	}

	burned, err := a.store.SumAmounts(ctx)
	if err != nil {
		return a.fallback(fmt.Errorf("sum burn ledger: %w", err))
	}

	circulating := a.totalSupply - burned - founderBalance

	snapshot := &domain.TokenStats{
		Price:             price.Value,
		TotalSupply:       a.totalSupply,
		CirculatingSupply: circulating,
		BurnedTokens:      burned,
		FounderBalance:    founderBalance,
		Holders:           holders.Total,
		MarketCap:         circulating * price.Value,
		TotalValue:        a.totalSupply * price.Value,
		BurnedValue:       burned * price.Value,
		FounderValue:      founderBalance * price.Value,
		LastUpdated:       a.now().Unix(),
	}

	a.mu.Lock()
	copy := *snapshot
	a.cached = &copy
	a.mu.Unlock()

	return snapshot, nil
}

// fallback serves the last good snapshot, marked as cached. The original
// error propagates only when there is nothing to serve.
func (a *Aggregator) fallback(cause error) (*domain.TokenStats, error) {
	a.mu.Lock()
	cached := a.cached
	a.mu.Unlock()

	if cached == nil {
		return nil, fmt.Errorf("compute stats snapshot: %w", cause)
	}

	a.logger.Printf("Serving cached stats snapshot: %v", cause)

	copy := *cached
	copy.Cached = true
	copy.CacheAge = a.now().Unix() - cached.LastUpdated
	if copy.CacheAge < 1 {
		copy.CacheAge = 1
	}
	return &copy, nil
}

// BurnWalletBalance reads the burn wallet's pending (not yet burned) balance.
func (a *Aggregator) BurnWalletBalance(ctx context.Context) (float64, error) {
	return a.balances.AccountTokenBalance(ctx, a.burnWallet, a.mint)
}
