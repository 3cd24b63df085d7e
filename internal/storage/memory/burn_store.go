package memory

import (
	"context"
	"sort"
	"sync"

	"soba-backend/internal/domain"
	"soba-backend/internal/storage"
)

// BurnStore is an in-memory implementation of storage.BurnStore.
type BurnStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BurnRecord // keyed by tx hash
}

// NewBurnStore creates a new in-memory burn store.
func NewBurnStore() *BurnStore {
	return &BurnStore{
		data: make(map[string]*domain.BurnRecord),
	}
}

// Compile-time interface check.
var _ storage.BurnStore = (*BurnStore)(nil)

// Insert adds a new burn record. Returns ErrDuplicateKey if tx_hash exists.
func (s *BurnStore) Insert(_ context.Context, r *domain.BurnRecord) error {
	if r == nil || r.TxHash == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.TxHash]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *r
	s.data[r.TxHash] = &copy
	return nil
}

// ListRecent retrieves records ordered by timestamp DESC, bounded by limit.
func (s *BurnStore) ListRecent(_ context.Context, limit int) ([]*domain.BurnRecord, error) {
	if limit <= 0 || limit > storage.DefaultListLimit {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.BurnRecord, 0, len(s.data))
	for _, r := range s.data {
		copy := *r
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp > result[j].Timestamp
		}
		return result[i].TxHash > result[j].TxHash
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// FindLatest retrieves the most recent record. Returns ErrNotFound if empty.
func (s *BurnStore) FindLatest(ctx context.Context) (*domain.BurnRecord, error) {
	recent, err := s.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, storage.ErrNotFound
	}
	return recent[0], nil
}

// SumAmounts returns the total burned amount across the ledger.
func (s *BurnStore) SumAmounts(_ context.Context) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, r := range s.data {
		total += r.Amount
	}
	return total, nil
}
