package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soba-backend/internal/domain"
	"soba-backend/internal/storage"
	"soba-backend/internal/storage/postgres"
)

func TestBurnStore_InsertAndListRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewBurnStore(pool)
	ctx := context.Background()

	burns := []*domain.BurnRecord{
		{TxHash: "sig1", Amount: 100, Timestamp: 1000, Sender: "burnWallet"},
		{TxHash: "sig2", Amount: 200, Timestamp: 3000, Sender: "burnWallet"},
		{TxHash: "sig3", Amount: 300, Timestamp: 2000, Sender: "burnWallet"},
	}
	for _, b := range burns {
		require.NoError(t, store.Insert(ctx, b))
	}

	result, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "sig2", result[0].TxHash)
	assert.Equal(t, "sig3", result[1].TxHash)
	assert.Equal(t, "sig1", result[2].TxHash)
	assert.Equal(t, 200.0, result[0].Amount)
	assert.NotZero(t, result[0].CreatedAt)
}

func TestBurnStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewBurnStore(pool)
	ctx := context.Background()

	burn := &domain.BurnRecord{TxHash: "sig1", Amount: 100, Timestamp: 1000, Sender: "w"}
	require.NoError(t, store.Insert(ctx, burn))

	err := store.Insert(ctx, burn)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	total, err := store.SumAmounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)
}

func TestBurnStore_FindLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewBurnStore(pool)
	ctx := context.Background()

	_, err := store.FindLatest(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Insert(ctx, &domain.BurnRecord{TxHash: "sig1", Amount: 10, Timestamp: 1000, Sender: "w"}))
	require.NoError(t, store.Insert(ctx, &domain.BurnRecord{TxHash: "sig2", Amount: 20, Timestamp: 2000, Sender: "w"}))

	latest, err := store.FindLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sig2", latest.TxHash)
	assert.Equal(t, int64(2000), latest.Timestamp)
}

func TestBurnStore_SumAmounts_Empty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewBurnStore(pool)

	total, err := store.SumAmounts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
}
