package domain

// BurnRecord represents one confirmed transfer of the tracked token out of
// the burn wallet. Corresponds to burn_records table in PostgreSQL.
type BurnRecord struct {
	ID        int64   // BIGSERIAL primary key
	TxHash    string  // Solana transaction signature, unique across the ledger
	Amount    float64 // token amount, decimal-adjusted
	Timestamp int64   // Unix timestamp in seconds (on-chain finalization time)
	Sender    string  // address that initiated the transfer
	CreatedAt int64   // record creation timestamp (seconds)
}
