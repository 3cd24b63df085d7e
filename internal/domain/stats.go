package domain

// TokenStats is a point-in-time snapshot of derived token statistics.
// Never persisted; recomputed per request and cached in-process.
type TokenStats struct {
	Price             float64
	TotalSupply       float64
	CirculatingSupply float64 // TotalSupply - BurnedTokens - FounderBalance
	BurnedTokens      float64 // authoritative from the burn ledger sum
	FounderBalance    float64
	Holders           int64
	MarketCap         float64 // CirculatingSupply * Price
	TotalValue        float64 // TotalSupply * Price
	BurnedValue       float64 // BurnedTokens * Price
	FounderValue      float64 // FounderBalance * Price
	LastUpdated       int64   // Unix timestamp in seconds
	Cached            bool    // true when served from the last good snapshot
	CacheAge          int64   // seconds since the cached snapshot was computed
}

// NextBurn is a computed projection of the upcoming scheduled burn.
// Burns happen on the 1st of each month at a fixed hour.
type NextBurn struct {
	NextBurnDate    int64   // Unix timestamp in seconds
	EstimatedAmount float64 // current burn wallet balance, pending burn
	LastBurnAmount  float64
	LastBurnDate    int64 // zero when the ledger is empty
}
