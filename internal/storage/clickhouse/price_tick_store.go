package clickhouse

import (
	"context"
	"fmt"

	"soba-backend/internal/domain"
	"soba-backend/internal/storage"
)

// PriceTickStore implements storage.PriceTickStore using ClickHouse.
// MergeTree does not enforce uniqueness; duplicate ticks are tolerated
// and the table uses (mint, timestamp) ordering for range scans.
type PriceTickStore struct {
	conn *Conn
}

// NewPriceTickStore creates a new PriceTickStore.
func NewPriceTickStore(conn *Conn) *PriceTickStore {
	return &PriceTickStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceTickStore = (*PriceTickStore)(nil)

// InsertBulk adds multiple ticks in one batch.
func (s *PriceTickStore) InsertBulk(ctx context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_ticks (mint, price, price_change_24h, volume_24h, timestamp)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range ticks {
		if t == nil || t.Mint == "" {
			return storage.ErrInvalidInput
		}
		err = batch.Append(t.Mint, t.Price, t.PriceChange24h, t.Volume24h, uint64(t.Timestamp))
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// ListRecent retrieves ticks for a mint ordered by timestamp DESC.
func (s *PriceTickStore) ListRecent(ctx context.Context, mint string, limit int) ([]*domain.PriceTick, error) {
	if limit <= 0 || limit > storage.DefaultListLimit {
		limit = storage.DefaultListLimit
	}

	query := `
		SELECT mint, price, price_change_24h, volume_24h, timestamp
		FROM price_ticks
		WHERE mint = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, mint, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent price ticks: %w", err)
	}
	defer rows.Close()

	var ticks []*domain.PriceTick
	for rows.Next() {
		var t domain.PriceTick
		var ts uint64

		if err := rows.Scan(&t.Mint, &t.Price, &t.PriceChange24h, &t.Volume24h, &ts); err != nil {
			return nil, fmt.Errorf("scan price tick row: %w", err)
		}
		t.Timestamp = int64(ts)
		ticks = append(ticks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price tick rows: %w", err)
	}

	return ticks, nil
}
