package storage

import (
	"context"

	"soba-backend/internal/domain"
)

// DefaultListLimit caps ListRecent responses when the caller passes no limit
// or one above the cap.
const DefaultListLimit = 100

// BurnStore provides access to the append-only burn ledger.
type BurnStore interface {
	// Insert adds a new burn record. Returns ErrDuplicateKey if tx_hash exists.
	Insert(ctx context.Context, r *domain.BurnRecord) error

	// ListRecent retrieves records ordered by timestamp DESC, bounded by limit.
	// A limit <= 0 or above DefaultListLimit is clamped to DefaultListLimit.
	ListRecent(ctx context.Context, limit int) ([]*domain.BurnRecord, error)

	// FindLatest retrieves the most recent record. Returns ErrNotFound if the
	// ledger is empty.
	FindLatest(ctx context.Context) (*domain.BurnRecord, error)

	// SumAmounts returns the total burned amount across the ledger.
	SumAmounts(ctx context.Context) (float64, error)
}

// PriceTickStore provides access to price_ticks storage.
type PriceTickStore interface {
	// InsertBulk adds multiple ticks. Duplicate (mint, timestamp) pairs are
	// acceptable; analytics storage does not enforce uniqueness.
	InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error

	// ListRecent retrieves ticks for a mint ordered by timestamp DESC.
	ListRecent(ctx context.Context, mint string, limit int) ([]*domain.PriceTick, error)
}
