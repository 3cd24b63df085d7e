// Package config loads application settings from .env and the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from a .env file; existing variables are not overridden.
type Config struct {
	// Token identity
	BurnWallet    string
	TokenMint     string
	FounderWallet string
	TotalSupply   float64

	// Provider credentials
	SolscanAPIKey       string
	BirdeyeAPIKey       string
	SolanaTrackerAPIKey string

	// Storage
	PostgresDSN   string
	ClickHouseDSN string

	// Schedules
	TrackInterval time.Duration
	PriceInterval time.Duration
	NextBurnHour  int
	NextBurnTZ    string

	// HTTP
	ListenAddr string
}

// Load reads configuration from .env (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BurnWallet:    os.Getenv("BURN_WALLET_ADDRESS"),
		TokenMint:     os.Getenv("TOKEN_MINT_ADDRESS"),
		FounderWallet: os.Getenv("FOUNDER_WALLET_ADDRESS"),
		TotalSupply:   getEnvFloat("TOTAL_SUPPLY", 1_000_000_000),

		SolscanAPIKey:       os.Getenv("SOLSCAN_API_KEY"),
		BirdeyeAPIKey:       os.Getenv("BIRDEYE_API_KEY"),
		SolanaTrackerAPIKey: os.Getenv("SOLANATRACKER_API_KEY"),

		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),

		TrackInterval: getEnvDuration("TRACK_INTERVAL", time.Hour),
		PriceInterval: getEnvDuration("PRICE_INTERVAL", 10*time.Second),
		NextBurnHour:  getEnvInt("NEXT_BURN_HOUR", 12),
		NextBurnTZ:    getEnvString("NEXT_BURN_TZ", "UTC"),

		ListenAddr: getEnvString("LISTEN_ADDR", ":8080"),
	}
}

// BurnLocation resolves NextBurnTZ, falling back to UTC on a bad name.
func (c *Config) BurnLocation() *time.Location {
	loc, err := time.LoadLocation(c.NextBurnTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
