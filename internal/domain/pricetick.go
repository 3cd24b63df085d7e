package domain

// PriceTick is one fan-out price observation for a token.
// Corresponds to price_ticks table in ClickHouse.
type PriceTick struct {
	Mint           string
	Price          float64
	PriceChange24h float64 // percent
	Volume24h      float64 // USD
	Timestamp      int64   // Unix timestamp in seconds
}
