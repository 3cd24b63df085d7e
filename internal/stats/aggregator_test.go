package stats

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soba-backend/internal/domain"
	"soba-backend/internal/providers"
	"soba-backend/internal/storage/memory"
)

type fakePrices struct {
	price *providers.TokenPrice
	err   error
}

func (f *fakePrices) TokenPrice(context.Context, string) (*providers.TokenPrice, error) {
	return f.price, f.err
}

type fakeHolders struct {
	holders *providers.TokenHolders
	err     error
}

func (f *fakeHolders) TokenHolders(context.Context, string) (*providers.TokenHolders, error) {
	return f.holders, f.err
}

type fakeBalances struct {
	balances map[string]float64
	err      error
}

func (f *fakeBalances) AccountTokenBalance(_ context.Context, owner, _ string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[owner], nil
}

type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestAggregator(t *testing.T, prices *fakePrices, holders *fakeHolders, balances *fakeBalances, clock *testClock) (*Aggregator, *memory.BurnStore) {
	t.Helper()

	store := memory.NewBurnStore()
	agg := NewAggregator(AggregatorOptions{
		Prices:        prices,
		Holders:       holders,
		Balances:      balances,
		Store:         store,
		Mint:          "sobaMint111",
		BurnWallet:    "burnWallet111",
		FounderWallet: "founderWallet111",
		TotalSupply:   1_000_000_000,
		BurnHour:      12,
		Now:           clock.Now,
	})
	return agg, store
}

func TestAggregator_Snapshot(t *testing.T) {
	clock := &testClock{t: time.Unix(1730764800, 0)}
	prices := &fakePrices{price: &providers.TokenPrice{Value: 0.002, PriceChange24h: 1.5, Volume24h: 50000}}
	holders := &fakeHolders{holders: &providers.TokenHolders{Total: 4200}}
	balances := &fakeBalances{balances: map[string]float64{"founderWallet111": 50_000_000}}

	agg, store := newTestAggregator(t, prices, holders, balances, clock)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, &domain.BurnRecord{TxHash: "sig1", Amount: 10_000_000, Timestamp: 1000}))
	require.NoError(t, store.Insert(ctx, &domain.BurnRecord{TxHash: "sig2", Amount: 5_000_000, Timestamp: 2000}))

	snap, err := agg.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0.002, snap.Price)
	assert.Equal(t, 15_000_000.0, snap.BurnedTokens)
	assert.Equal(t, 50_000_000.0, snap.FounderBalance)
	assert.Equal(t, int64(4200), snap.Holders)
	assert.False(t, snap.Cached)
	assert.Equal(t, clock.t.Unix(), snap.LastUpdated)

	// Reconciliation invariant
	assert.InDelta(t, snap.TotalSupply, snap.CirculatingSupply+snap.BurnedTokens+snap.FounderBalance, 1e-6)

	assert.InDelta(t, snap.CirculatingSupply*snap.Price, snap.MarketCap, 1e-6)
	assert.InDelta(t, snap.BurnedTokens*snap.Price, snap.BurnedValue, 1e-6)
}

func TestAggregator_ReconciliationHoldsAcrossInputs(t *testing.T) {
	cases := []struct {
		burned  float64
		founder float64
	}{
		{0, 0},
		{123_456.789, 0},
		{0, 987_654.321},
		{300_000_000, 100_000_000},
	}

	for _, tc := range cases {
		clock := &testClock{t: time.Unix(1730764800, 0)}
		prices := &fakePrices{price: &providers.TokenPrice{Value: 0.01}}
		holders := &fakeHolders{holders: &providers.TokenHolders{Total: 1}}
		balances := &fakeBalances{balances: map[string]float64{"founderWallet111": tc.founder}}

		agg, store := newTestAggregator(t, prices, holders, balances, clock)
		ctx := context.Background()
		if tc.burned > 0 {
			require.NoError(t, store.Insert(ctx, &domain.BurnRecord{TxHash: "sig", Amount: tc.burned, Timestamp: 1}))
		}

		snap, err := agg.Snapshot(ctx)
		require.NoError(t, err)

		got := snap.CirculatingSupply + snap.BurnedTokens + snap.FounderBalance
		if math.Abs(got-snap.TotalSupply) > 1e-6 {
			t.Errorf("reconciliation broken for burned=%f founder=%f: %f != %f",
				tc.burned, tc.founder, got, snap.TotalSupply)
		}
	}
}

func TestAggregator_CacheFallback(t *testing.T) {
	clock := &testClock{t: time.Unix(1730764800, 0)}
	prices := &fakePrices{price: &providers.TokenPrice{Value: 0.002}}
	holders := &fakeHolders{holders: &providers.TokenHolders{Total: 100}}
	balances := &fakeBalances{balances: map[string]float64{}}

	agg, _ := newTestAggregator(t, prices, holders, balances, clock)
	ctx := context.Background()

	first, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, first.Cached)

	// Price provider starts failing; the cached snapshot is served instead.
	prices.err = &providers.Error{Provider: "birdeye", Endpoint: "/defi/price", Status: 503, Message: "down"}
	clock.Advance(45 * time.Second)

	snap, err := agg.Snapshot(ctx)
	require.NoError(t, err)

	assert.True(t, snap.Cached)
	assert.Equal(t, int64(45), snap.CacheAge)
	assert.Equal(t, first.Price, snap.Price)
	assert.Equal(t, first.LastUpdated, snap.LastUpdated)
}

func TestAggregator_NoCacheNoData(t *testing.T) {
	clock := &testClock{t: time.Unix(1730764800, 0)}
	prices := &fakePrices{err: &providers.Error{Provider: "birdeye", Endpoint: "/defi/price", Status: 503, Message: "down"}}
	holders := &fakeHolders{holders: &providers.TokenHolders{Total: 100}}
	balances := &fakeBalances{balances: map[string]float64{}}

	agg, _ := newTestAggregator(t, prices, holders, balances, clock)

	_, err := agg.Snapshot(context.Background())
	require.Error(t, err)

	var perr *providers.Error
	assert.True(t, errors.As(err, &perr), "provider error should be preserved in the chain")
}

func TestAggregator_CachedSnapshotIsolated(t *testing.T) {
	// Mutating a returned snapshot must not corrupt the cache.
	clock := &testClock{t: time.Unix(1730764800, 0)}
	prices := &fakePrices{price: &providers.TokenPrice{Value: 0.002}}
	holders := &fakeHolders{holders: &providers.TokenHolders{Total: 100}}
	balances := &fakeBalances{balances: map[string]float64{}}

	agg, _ := newTestAggregator(t, prices, holders, balances, clock)
	ctx := context.Background()

	first, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	first.Price = 999

	prices.err = errors.New("down")
	snap, err := agg.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.002, snap.Price)
}
