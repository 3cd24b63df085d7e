// Package server exposes the HTTP and WebSocket API.
package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"soba-backend/internal/ingestion"
	"soba-backend/internal/observability"
	"soba-backend/internal/realtime"
	"soba-backend/internal/stats"
	"soba-backend/internal/storage"
)

// burnTracker runs a single burn ingestion pass. Implemented by
// ingestion.Tracker.
type burnTracker interface {
	TrackOnce(ctx context.Context) (*ingestion.TrackResult, error)
}

// Server routes API requests to the burn ledger, the stats aggregator and
// the realtime price hub.
type Server struct {
	burns      storage.BurnStore
	stats      *stats.Aggregator
	tracker    burnTracker
	hub        *realtime.Hub
	mint       string
	burnWallet string
	logger     *log.Logger
	now        func() time.Time
}

// Options contains configuration for creating a Server.
type Options struct {
	Burns      storage.BurnStore
	Stats      *stats.Aggregator
	Tracker    burnTracker
	Hub        *realtime.Hub
	Mint       string
	BurnWallet string
	Logger     *log.Logger
	Now        func() time.Time // test hook, defaults to time.Now
}

// New creates a new API server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Server{
		burns:      opts.Burns,
		stats:      opts.Stats,
		tracker:    opts.Tracker,
		hub:        opts.Hub,
		mint:       opts.Mint,
		burnWallet: opts.BurnWallet,
		logger:     logger,
		now:        now,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /api/tokens/{tokenAddress}/burns", s.handleBurns)
	mux.HandleFunc("GET /api/tokens/{tokenAddress}/burn-wallet", s.handleBurnWallet)
	mux.HandleFunc("GET /api/tokens/{tokenAddress}/next-burn", s.handleNextBurn)
	mux.HandleFunc("GET /api/tokens/{tokenAddress}/price/stream", s.handlePriceStream)
	mux.HandleFunc("POST /api/internal/track-burns", s.handleTrackBurns)
	mux.HandleFunc("GET /api/token-stats", s.handleTokenStats)
	mux.HandleFunc("GET /token-stats", s.handleTokenStats)
	mux.Handle("GET /metrics", observability.Handler())

	return mux
}

// ListenAndServe serves the API until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming endpoints manage their own deadlines
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting HTTP server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
