// Package main runs a single burn tracking pass and exits. Useful for
// cron-style scheduling and backfills.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"soba-backend/internal/config"
	"soba-backend/internal/ingestion"
	"soba-backend/internal/providers"
	"soba-backend/internal/solana"
	"soba-backend/internal/storage/migrations"
	pgstore "soba-backend/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	burnWallet := flag.String("burn-wallet", cfg.BurnWallet, "Burn wallet address")
	tokenMint := flag.String("token-mint", cfg.TokenMint, "Tracked token mint address")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")

	flag.Parse()

	logger := log.New(os.Stdout, "[trackburns] ", log.LstdFlags)

	if *burnWallet == "" || *tokenMint == "" {
		logger.Fatal("--burn-wallet and --token-mint are required")
	}
	if err := solana.ValidateAddress(*burnWallet); err != nil {
		logger.Fatalf("--burn-wallet: invalid address: %v", err)
	}
	if err := solana.ValidateAddress(*tokenMint); err != nil {
		logger.Fatalf("--token-mint: invalid address: %v", err)
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Failed to migrate postgres: %v", err)
	}

	tracker := ingestion.NewTracker(ingestion.TrackerOptions{
		Source:     providers.NewSolscan(cfg.SolscanAPIKey),
		Store:      pgstore.NewBurnStore(pool),
		BurnWallet: *burnWallet,
		Mint:       *tokenMint,
		Logger:     logger,
	})

	result, err := tracker.TrackOnce(ctx)
	if err != nil {
		logger.Fatalf("Tracking failed: %v", err)
	}

	logger.Printf("Done: %d new, %d duplicates, %d skipped across %d pages in %v",
		result.New, result.Duplicates, result.Skipped, result.Pages, result.Duration)
}
