package memory

import (
	"context"
	"sort"
	"sync"

	"soba-backend/internal/domain"
	"soba-backend/internal/storage"
)

// PriceTickStore is an in-memory implementation of storage.PriceTickStore.
type PriceTickStore struct {
	mu   sync.RWMutex
	data []*domain.PriceTick
}

// NewPriceTickStore creates a new in-memory price tick store.
func NewPriceTickStore() *PriceTickStore {
	return &PriceTickStore{}
}

var _ storage.PriceTickStore = (*PriceTickStore)(nil)

// InsertBulk adds multiple ticks.
func (s *PriceTickStore) InsertBulk(_ context.Context, ticks []*domain.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range ticks {
		if t == nil || t.Mint == "" {
			return storage.ErrInvalidInput
		}
		copy := *t
		s.data = append(s.data, &copy)
	}
	return nil
}

// ListRecent retrieves ticks for a mint ordered by timestamp DESC.
func (s *PriceTickStore) ListRecent(_ context.Context, mint string, limit int) ([]*domain.PriceTick, error) {
	if limit <= 0 || limit > storage.DefaultListLimit {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceTick
	for _, t := range s.data {
		if t.Mint == mint {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp > result[j].Timestamp
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
