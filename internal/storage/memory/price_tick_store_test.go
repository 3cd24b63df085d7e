package memory

import (
	"context"
	"testing"

	"soba-backend/internal/domain"
)

func TestPriceTickStore_InsertBulkAndList(t *testing.T) {
	store := NewPriceTickStore()
	ctx := context.Background()

	ticks := []*domain.PriceTick{
		{Mint: "mintA", Price: 0.001, Timestamp: 1000},
		{Mint: "mintA", Price: 0.002, Timestamp: 2000},
		{Mint: "mintB", Price: 5.0, Timestamp: 1500},
	}

	if err := store.InsertBulk(ctx, ticks); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.ListRecent(ctx, "mintA", 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 ticks for mintA, got %d", len(result))
	}

	if result[0].Timestamp != 2000 {
		t.Errorf("Expected newest tick first, got timestamp %d", result[0].Timestamp)
	}
}

func TestPriceTickStore_EmptyBulk(t *testing.T) {
	store := NewPriceTickStore()

	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("Empty bulk insert should be a no-op, got %v", err)
	}
}
