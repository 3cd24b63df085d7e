// Package main runs the full backend: burn ingestion (scheduled), the
// statistics aggregator, the realtime price fan-out, and the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soba-backend/internal/config"
	"soba-backend/internal/ingestion"
	"soba-backend/internal/providers"
	"soba-backend/internal/realtime"
	"soba-backend/internal/server"
	"soba-backend/internal/solana"
	"soba-backend/internal/stats"
	"soba-backend/internal/storage"
	chstore "soba-backend/internal/storage/clickhouse"
	"soba-backend/internal/storage/memory"
	"soba-backend/internal/storage/migrations"
	pgstore "soba-backend/internal/storage/postgres"
)

// appStores holds the storage implementations in use.
type appStores struct {
	burns storage.BurnStore
	ticks storage.PriceTickStore // nil when ClickHouse is not configured
}

func main() {
	cfg := config.Load()

	// Parse flags (env vars as defaults)
	burnWallet := flag.String("burn-wallet", cfg.BurnWallet, "Burn wallet address")
	tokenMint := flag.String("token-mint", cfg.TokenMint, "Tracked token mint address")
	founderWallet := flag.String("founder-wallet", cfg.FounderWallet, "Founder wallet address")
	totalSupply := flag.Float64("total-supply", cfg.TotalSupply, "Total token supply")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickHouseDSN, "ClickHouse connection string (optional, price history)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	trackInterval := flag.Duration("track-interval", cfg.TrackInterval, "Burn tracking interval")
	priceInterval := flag.Duration("price-interval", cfg.PriceInterval, "Price broadcast interval")
	listenAddr := flag.String("listen-addr", cfg.ListenAddr, "HTTP listen address")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	for name, addr := range map[string]string{
		"--burn-wallet":    *burnWallet,
		"--token-mint":     *tokenMint,
		"--founder-wallet": *founderWallet,
	} {
		if addr == "" {
			logger.Fatalf("%s is required", name)
		}
		if err := solana.ValidateAddress(addr); err != nil {
			logger.Fatalf("%s: invalid address %q: %v", name, addr, err)
		}
		if name != "--token-mint" && !solana.IsOnCurve(addr) {
			// Wallets are on-curve keys; a PDA here usually means a typo.
			logger.Printf("Warning: %s %s is off-curve (program-derived address?)", name, addr)
		}
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Provider clients
	solscan := providers.NewSolscan(cfg.SolscanAPIKey)
	birdeye := providers.NewBirdeye(cfg.BirdeyeAPIKey)
	solanaTracker := providers.NewSolanaTracker(cfg.SolanaTrackerAPIKey)
	dexscreener := providers.NewDexscreener()

	priceSource := stats.NewFallbackPrices(birdeye, dexscreener,
		log.New(os.Stdout, "[prices] ", log.LstdFlags))

	aggregator := stats.NewAggregator(stats.AggregatorOptions{
		Prices:        priceSource,
		Holders:       solanaTracker,
		Balances:      solscan,
		Store:         stores.burns,
		Mint:          *tokenMint,
		BurnWallet:    *burnWallet,
		FounderWallet: *founderWallet,
		TotalSupply:   *totalSupply,
		BurnHour:      cfg.NextBurnHour,
		BurnLocation:  cfg.BurnLocation(),
		Logger:        log.New(os.Stdout, "[stats] ", log.LstdFlags),
	})

	tracker := ingestion.NewTracker(ingestion.TrackerOptions{
		Source:     solscan,
		Store:      stores.burns,
		BurnWallet: *burnWallet,
		Mint:       *tokenMint,
		Interval:   *trackInterval,
		Logger:     log.New(os.Stdout, "[tracker] ", log.LstdFlags),
	})

	hub := realtime.NewHub(realtime.HubOptions{
		Prices:   priceSource,
		Ticks:    stores.ticks,
		Interval: *priceInterval,
		Logger:   log.New(os.Stdout, "[hub] ", log.LstdFlags),
	})

	api := server.New(server.Options{
		Burns:      stores.burns,
		Stats:      aggregator,
		Tracker:    tracker,
		Hub:        hub,
		Mint:       *tokenMint,
		BurnWallet: *burnWallet,
		Logger:     logger,
	})

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	errCh := make(chan error, 3)

	go func() {
		if err := tracker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("tracker: %w", err)
		}
	}()
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("hub: %w", err)
		}
	}()
	go func() {
		if err := api.ListenAndServe(ctx, *listenAddr); err != nil {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		cancel()
		close(done)
		logger.Fatalf("Server error: %v", err)
	case <-ctx.Done():
		close(done)
	}

	logger.Println("Shutdown complete")
}

// createStores creates the configured storage backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*appStores, func(), error) {
	if useMemory {
		stores := &appStores{
			burns: memory.NewBurnStore(),
			ticks: memory.NewPriceTickStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	stores := &appStores{burns: pgstore.NewBurnStore(pool)}
	cleanup := func() { pool.Close() }

	// ClickHouse is optional; without it price history is simply not kept.
	if clickhouseDSN != "" {
		var conn *chstore.Conn
		conn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		stores.ticks = chstore.NewPriceTickStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}
