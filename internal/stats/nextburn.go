package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soba-backend/internal/domain"
	"soba-backend/internal/storage"
)

// NextBurn projects the upcoming scheduled burn: the 1st of the month after
// the last recorded burn, at the configured hour. The estimated amount is
// the burn wallet's current balance. With an empty ledger the projection is
// anchored on the current time instead.
func (a *Aggregator) NextBurn(ctx context.Context) (*domain.NextBurn, error) {
	projection := &domain.NextBurn{}

	anchor := a.now().In(a.burnLoc)
	latest, err := a.store.FindLatest(ctx)
	switch {
	case err == nil:
		anchor = time.Unix(latest.Timestamp, 0).In(a.burnLoc)
		projection.LastBurnAmount = latest.Amount
		projection.LastBurnDate = latest.Timestamp
	case errors.Is(err, storage.ErrNotFound):
		// no burns yet, project from now
	default:
		return nil, fmt.Errorf("find last burn: %w", err)
	}

	projection.NextBurnDate = nextBurnAfter(anchor, a.burnHour, a.burnLoc).Unix()

	estimated, err := a.balances.AccountTokenBalance(ctx, a.burnWallet, a.mint)
	if err != nil {
		// The date projection is still useful without the wallet balance.
		a.logger.Printf("Error reading burn wallet balance: %v", err)
	} else {
		projection.EstimatedAmount = estimated
	}

	return projection, nil
}

// nextBurnAfter returns the 1st of the month following t, at hour in loc.
// time.Date normalizes month overflow, so December rolls into January.
func nextBurnAfter(t time.Time, hour int, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month()+1, 1, hour, 0, 0, 0, loc)
}
