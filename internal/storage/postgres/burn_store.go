package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"soba-backend/internal/domain"
	"soba-backend/internal/storage"
)

// BurnStore implements storage.BurnStore using PostgreSQL.
type BurnStore struct {
	pool *Pool
}

// NewBurnStore creates a new BurnStore.
func NewBurnStore(pool *Pool) *BurnStore {
	return &BurnStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BurnStore = (*BurnStore)(nil)

// Insert adds a new burn record. Returns ErrDuplicateKey if tx_hash exists.
func (s *BurnStore) Insert(ctx context.Context, r *domain.BurnRecord) error {
	if r == nil || r.TxHash == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO burn_records (tx_hash, amount, timestamp, sender, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	createdAt := r.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}

	_, err := s.pool.Exec(ctx, query,
		r.TxHash,
		r.Amount,
		r.Timestamp,
		r.Sender,
		createdAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert burn record: %w", err)
	}
	return nil
}

// ListRecent retrieves records ordered by timestamp DESC, bounded by limit.
func (s *BurnStore) ListRecent(ctx context.Context, limit int) ([]*domain.BurnRecord, error) {
	if limit <= 0 || limit > storage.DefaultListLimit {
		limit = storage.DefaultListLimit
	}

	query := `
		SELECT id, tx_hash, amount, timestamp, sender, created_at
		FROM burn_records
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent burn records: %w", err)
	}
	defer rows.Close()

	return scanBurnRecords(rows)
}

// FindLatest retrieves the most recent record. Returns ErrNotFound if empty.
func (s *BurnStore) FindLatest(ctx context.Context) (*domain.BurnRecord, error) {
	query := `
		SELECT id, tx_hash, amount, timestamp, sender, created_at
		FROM burn_records
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	var r domain.BurnRecord
	err := s.pool.QueryRow(ctx, query).Scan(
		&r.ID,
		&r.TxHash,
		&r.Amount,
		&r.Timestamp,
		&r.Sender,
		&r.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find latest burn record: %w", err)
	}

	return &r, nil
}

// SumAmounts returns the total burned amount across the ledger.
func (s *BurnStore) SumAmounts(ctx context.Context) (float64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM burn_records`

	var total float64
	if err := s.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum burn amounts: %w", err)
	}
	return total, nil
}

// scanBurnRecords scans multiple rows into a slice of BurnRecord.
func scanBurnRecords(rows pgx.Rows) ([]*domain.BurnRecord, error) {
	var records []*domain.BurnRecord

	for rows.Next() {
		var r domain.BurnRecord

		err := rows.Scan(
			&r.ID,
			&r.TxHash,
			&r.Amount,
			&r.Timestamp,
			&r.Sender,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan burn record row: %w", err)
		}

		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate burn record rows: %w", err)
	}

	return records, nil
}
