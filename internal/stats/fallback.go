package stats

import (
	"context"
	"log"

	"soba-backend/internal/providers"
)

// fallbackPrices chains two price sources: when the primary fails the
// secondary answers. Used to back Birdeye with the keyless Dexscreener quote.
type fallbackPrices struct {
	primary   PriceSource
	secondary PriceSource
	logger    *log.Logger
}

// NewFallbackPrices creates a PriceSource that falls back to secondary when
// primary fails.
func NewFallbackPrices(primary, secondary PriceSource, logger *log.Logger) PriceSource {
	if logger == nil {
		logger = log.Default()
	}
	return &fallbackPrices{primary: primary, secondary: secondary, logger: logger}
}

func (f *fallbackPrices) TokenPrice(ctx context.Context, mint string) (*providers.TokenPrice, error) {
	price, err := f.primary.TokenPrice(ctx, mint)
	if err == nil {
		return price, nil
	}
	f.logger.Printf("Primary price source failed, trying fallback: %v", err)
	return f.secondary.TokenPrice(ctx, mint)
}
