package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.TotalSupply != 1_000_000_000 {
		t.Errorf("TotalSupply = %f, want 1000000000", cfg.TotalSupply)
	}
	if cfg.TrackInterval != time.Hour {
		t.Errorf("TrackInterval = %v, want 1h", cfg.TrackInterval)
	}
	if cfg.PriceInterval != 10*time.Second {
		t.Errorf("PriceInterval = %v, want 10s", cfg.PriceInterval)
	}
	if cfg.NextBurnHour != 12 {
		t.Errorf("NextBurnHour = %d, want 12", cfg.NextBurnHour)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BURN_WALLET_ADDRESS", "burnWallet111")
	t.Setenv("TOTAL_SUPPLY", "500000000")
	t.Setenv("TRACK_INTERVAL", "30m")
	t.Setenv("NEXT_BURN_HOUR", "9")
	t.Setenv("NEXT_BURN_TZ", "America/New_York")

	cfg := Load()

	if cfg.BurnWallet != "burnWallet111" {
		t.Errorf("BurnWallet = %q", cfg.BurnWallet)
	}
	if cfg.TotalSupply != 500_000_000 {
		t.Errorf("TotalSupply = %f, want 500000000", cfg.TotalSupply)
	}
	if cfg.TrackInterval != 30*time.Minute {
		t.Errorf("TrackInterval = %v, want 30m", cfg.TrackInterval)
	}
	if cfg.NextBurnHour != 9 {
		t.Errorf("NextBurnHour = %d, want 9", cfg.NextBurnHour)
	}
	if cfg.BurnLocation().String() != "America/New_York" {
		t.Errorf("BurnLocation = %s", cfg.BurnLocation())
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("TOTAL_SUPPLY", "not-a-number")
	t.Setenv("TRACK_INTERVAL", "soon")
	t.Setenv("NEXT_BURN_TZ", "Mars/Olympus")

	cfg := Load()

	if cfg.TotalSupply != 1_000_000_000 {
		t.Errorf("TotalSupply = %f, want default", cfg.TotalSupply)
	}
	if cfg.TrackInterval != time.Hour {
		t.Errorf("TrackInterval = %v, want default", cfg.TrackInterval)
	}
	if cfg.BurnLocation() != time.UTC {
		t.Errorf("BurnLocation = %s, want UTC", cfg.BurnLocation())
	}
}
