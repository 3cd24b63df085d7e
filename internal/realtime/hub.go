// Package realtime fans out live price updates to connected subscribers.
package realtime

import (
	"context"
	"log"
	"sync"
	"time"

	"soba-backend/internal/domain"
	"soba-backend/internal/observability"
	"soba-backend/internal/providers"
	"soba-backend/internal/storage"
)

// DefaultInterval is the default price broadcast interval.
const DefaultInterval = 10 * time.Second

// Subscriber receives price ticks. Send reports delivery failure so the
// hub can drop dead subscribers; Close releases the underlying transport.
type Subscriber interface {
	Send(tick *domain.PriceTick) error
	Close() error
}

// PriceSource quotes the current token price. Implemented by providers.Birdeye.
type PriceSource interface {
	TokenPrice(ctx context.Context, mint string) (*providers.TokenPrice, error)
}

// Hub maintains a registry of price stream subscribers keyed by mint and
// periodically broadcasts fresh prices to them. The price is fetched once
// per mint per tick regardless of subscriber count.
type Hub struct {
	prices   PriceSource
	ticks    storage.PriceTickStore
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time

	mu          sync.Mutex
	subscribers map[string]map[Subscriber]struct{}
}

// HubOptions contains configuration for creating a Hub.
type HubOptions struct {
	Prices   PriceSource
	Ticks    storage.PriceTickStore // optional, records broadcast history
	Interval time.Duration          // Default: DefaultInterval
	Logger   *log.Logger
	Now      func() time.Time // test hook, defaults to time.Now
}

// NewHub creates a new price fan-out hub.
func NewHub(opts HubOptions) *Hub {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Hub{
		prices:      opts.Prices,
		ticks:       opts.Ticks,
		interval:    interval,
		logger:      logger,
		now:         now,
		subscribers: make(map[string]map[Subscriber]struct{}),
	}
}

// Register adds a subscriber for a mint's price stream.
func (h *Hub) Register(mint string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subscribers[mint]
	if !ok {
		set = make(map[Subscriber]struct{})
		h.subscribers[mint] = set
	}
	if _, exists := set[sub]; exists {
		return
	}
	set[sub] = struct{}{}
	observability.RecordSubscriberChange(1)
}

// Unregister removes a subscriber and closes it. Unknown subscribers are
// ignored.
func (h *Hub) Unregister(mint string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(mint, sub)
}

// SubscriberCount reports the number of subscribers for a mint.
func (h *Hub) SubscriberCount(mint string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[mint])
}

func (h *Hub) removeLocked(mint string, sub Subscriber) {
	set, ok := h.subscribers[mint]
	if !ok {
		return
	}
	if _, exists := set[sub]; !exists {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subscribers, mint)
	}
	if err := sub.Close(); err != nil {
		h.logger.Printf("Error closing subscriber: %v", err)
	}
	observability.RecordSubscriberChange(-1)
}

// Run broadcasts prices on the configured interval until ctx is cancelled,
// then closes all remaining subscribers.
func (h *Hub) Run(ctx context.Context) error {
	h.logger.Printf("Starting price fan-out (interval: %v)", h.interval)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case <-ticker.C:
			h.broadcast(ctx)
		}
	}
}

// broadcast fetches the current price for every mint with at least one
// subscriber and delivers it. Subscribers whose Send fails are dropped.
func (h *Hub) broadcast(ctx context.Context) {
	h.mu.Lock()
	mints := make([]string, 0, len(h.subscribers))
	for mint := range h.subscribers {
		mints = append(mints, mint)
	}
	h.mu.Unlock()

	var recorded []*domain.PriceTick
	delivered := 0

	for _, mint := range mints {
		price, err := h.prices.TokenPrice(ctx, mint)
		if err != nil {
			h.logger.Printf("Error fetching price for %s: %v", mint, err)
			continue
		}

		tick := &domain.PriceTick{
			Mint:           mint,
			Price:          price.Value,
			PriceChange24h: price.PriceChange24h,
			Volume24h:      price.Volume24h,
			Timestamp:      h.now().Unix(),
		}
		recorded = append(recorded, tick)
		delivered += h.deliver(mint, tick)
	}

	if delivered > 0 {
		observability.RecordTicksBroadcast(delivered)
	}

	if h.ticks != nil && len(recorded) > 0 {
		if err := h.ticks.InsertBulk(ctx, recorded); err != nil {
			h.logger.Printf("Error recording price ticks: %v", err)
		}
	}
}

func (h *Hub) deliver(mint string, tick *domain.PriceTick) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	var failed []Subscriber
	delivered := 0
	for sub := range h.subscribers[mint] {
		if err := sub.Send(tick); err != nil {
			failed = append(failed, sub)
			continue
		}
		delivered++
	}
	for _, sub := range failed {
		h.logger.Printf("Dropping subscriber for %s: send failed", mint)
		h.removeLocked(mint, sub)
	}
	return delivered
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for mint, set := range h.subscribers {
		for sub := range set {
			h.removeLocked(mint, sub)
		}
	}
}
