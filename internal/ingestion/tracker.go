// Package ingestion keeps the burn ledger synchronized with on-chain
// activity by polling the burn wallet's transaction history.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"soba-backend/internal/domain"
	"soba-backend/internal/observability"
	"soba-backend/internal/providers"
	"soba-backend/internal/storage"
)

// TransactionSource fetches pages of an account's transaction history,
// newest first. Implemented by providers.Solscan.
type TransactionSource interface {
	AccountTransactions(ctx context.Context, address string, limit int, before string) ([]providers.AccountTransaction, error)
}

// Tracker ingests burn transactions into the ledger. Ingestion is
// at-least-once and idempotent by transaction hash: repeated runs over the
// same history are safe no-ops.
type Tracker struct {
	source     TransactionSource
	store      storage.BurnStore
	burnWallet string
	mint       string
	pageSize   int
	pageDelay  time.Duration
	interval   time.Duration
	logger     *log.Logger

	mu      sync.Mutex
	running bool
}

// TrackerOptions contains configuration for creating a Tracker.
type TrackerOptions struct {
	Source     TransactionSource
	Store      storage.BurnStore
	BurnWallet string
	Mint       string
	PageSize   int           // Default: 50 transactions per page
	PageDelay  time.Duration // Default: 500ms courtesy delay between pages
	Interval   time.Duration // Default: 1h between scheduled runs
	Logger     *log.Logger
}

// NewTracker creates a new burn tracker.
func NewTracker(opts TrackerOptions) *Tracker {
	pageSize := opts.PageSize
	if pageSize == 0 {
		pageSize = 50
	}

	pageDelay := opts.PageDelay
	if pageDelay == 0 {
		pageDelay = 500 * time.Millisecond
	}

	interval := opts.Interval
	if interval == 0 {
		interval = 1 * time.Hour
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Tracker{
		source:     opts.Source,
		store:      opts.Store,
		burnWallet: opts.BurnWallet,
		mint:       opts.Mint,
		pageSize:   pageSize,
		pageDelay:  pageDelay,
		interval:   interval,
		logger:     logger,
	}
}

// TrackResult contains statistics from one ingestion run.
type TrackResult struct {
	New        int // burn records inserted
	Duplicates int // already-ingested transactions skipped
	Skipped    int // transactions with no matching transfer
	Pages      int // history pages fetched
	Duration   time.Duration
}

// TrackOnce runs a single ingestion pass. A provider error aborts the run;
// records inserted before the error stand, and the next run retries from
// scratch.
func (t *Tracker) TrackOnce(ctx context.Context) (*TrackResult, error) {
	start := time.Now()
	result := &TrackResult{}

	// Low-water mark: the newest burn already in the ledger. Zero means the
	// ledger is empty and full history is scanned.
	var lowWater int64
	latest, err := t.store.FindLatest(ctx)
	switch {
	case err == nil:
		lowWater = latest.Timestamp
	case errors.Is(err, storage.ErrNotFound):
		// first run, no lower bound
	default:
		return result, fmt.Errorf("find ledger low-water mark: %w", err)
	}

	before := ""
	for {
		txs, err := t.source.AccountTransactions(ctx, t.burnWallet, t.pageSize, before)
		if err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("fetch burn wallet transactions: %w", err)
		}
		if len(txs) == 0 {
			break
		}
		result.Pages++

		for i := range txs {
			t.processTransaction(ctx, &txs[i], result)
		}

		oldest := txs[len(txs)-1]

		// Everything on the next page is older than what the ledger already
		// holds. Dedup is hash-based, so stopping here is an optimization,
		// not a correctness requirement.
		if lowWater > 0 && oldest.BlockTime < lowWater {
			break
		}
		if len(txs) < t.pageSize {
			break
		}

		before = oldest.TxHash

		// Rate-limit courtesy delay before the next page.
		timer := time.NewTimer(t.pageDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			result.Duration = time.Since(start)
			return result, ctx.Err()
		case <-timer.C:
		}
	}

	result.Duration = time.Since(start)
	t.logger.Printf("Track run complete: %d new, %d duplicates, %d skipped, %d pages in %v",
		result.New, result.Duplicates, result.Skipped, result.Pages, result.Duration)
	return result, nil
}

// processTransaction filters one transaction for burn transfers and inserts
// a record when it matches. Transactions with no transfer of the tracked
// token out of the burn wallet are skipped.
func (t *Tracker) processTransaction(ctx context.Context, tx *providers.AccountTransaction, result *TrackResult) {
	if tx.TxHash == "" || tx.BlockTime == 0 {
		// Malformed provider record, discard without failing the run.
		result.Skipped++
		return
	}

	var amount float64
	sender := ""
	for _, tr := range tx.Transfers {
		if tr.Source != t.burnWallet || tr.Mint != t.mint || tr.Amount <= 0 {
			continue
		}
		amount += tr.Amount
		sender = tr.Source
	}

	if amount == 0 {
		result.Skipped++
		return
	}

	record := &domain.BurnRecord{
		TxHash:    tx.TxHash,
		Amount:    amount,
		Timestamp: tx.BlockTime,
		Sender:    sender,
	}

	if err := t.store.Insert(ctx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			result.Duplicates++
			return
		}
		// Insert failures other than duplicates are logged per record; the
		// run continues and the next pass retries the transaction.
		t.logger.Printf("Error storing burn record %s: %v", tx.TxHash, err)
		return
	}

	result.New++
}

// Run fires TrackOnce immediately and then on the configured interval,
// blocking until ctx is cancelled. A run that overlaps a manual trigger is
// skipped; overlapping runs would be harmless but wasteful.
func (t *Tracker) Run(ctx context.Context) error {
	t.logger.Printf("Starting burn tracker, interval: %v", t.interval)

	t.trackGuarded(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Println("Burn tracker stopping...")
			return ctx.Err()
		case <-ticker.C:
			t.trackGuarded(ctx)
		}
	}
}

// trackGuarded runs TrackOnce unless a run is already in progress.
func (t *Tracker) trackGuarded(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		t.logger.Println("Track run already in progress, skipping...")
		return
	}
	t.running = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
	}()

	result, err := t.TrackOnce(ctx)
	switch {
	case err == nil:
		observability.RecordTrackRun("success", result.Duration)
		observability.RecordBurnsIngested(result.New, result.Duplicates)
	case !errors.Is(err, context.Canceled):
		observability.RecordTrackRun("error", result.Duration)
		t.logger.Printf("Track run error: %v", err)
	}
}
