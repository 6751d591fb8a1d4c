package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Planner.MaxItems != 4 || cfg.Planner.SlotSpacing != 2*time.Hour || cfg.Planner.HoursPerItem != 2 {
		t.Errorf("unexpected planner defaults %+v", cfg.Planner)
	}
	if cfg.Ranking.Strategy != "popularity" {
		t.Errorf("unexpected ranking strategy %q", cfg.Ranking.Strategy)
	}
	if cfg.Catalog.SyncInterval != 0 || len(cfg.Catalog.Cities) != 0 {
		t.Errorf("expected periodic sync off by default, got %+v", cfg.Catalog)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PLANNER_MAX_ITEMS", "6")
	t.Setenv("PLANNER_SLOT_SPACING", "90m")
	t.Setenv("CATALOG_CITIES", "Austin, Denver ,")
	t.Setenv("TICKETMASTER_ENABLED", "true")
	t.Setenv("TICKETMASTER_API_KEY", "secret")
	t.Setenv("SERVER_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Planner.MaxItems != 6 || cfg.Planner.SlotSpacing != 90*time.Minute {
		t.Errorf("unexpected planner config %+v", cfg.Planner)
	}
	if len(cfg.Catalog.Cities) != 2 || cfg.Catalog.Cities[1] != "Denver" {
		t.Errorf("unexpected cities %q", cfg.Catalog.Cities)
	}
	if !cfg.Catalog.Ticketmaster.Enabled || cfg.Catalog.Ticketmaster.APIKey != "secret" {
		t.Errorf("unexpected ticketmaster config %+v", cfg.Catalog.Ticketmaster)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected fallback port, got %d", cfg.Server.Port)
	}
}

func TestValidateRejectsOverlappingSlots(t *testing.T) {
	t.Setenv("PLANNER_SLOT_DURATION", "3h")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "overlap") {
		t.Fatalf("expected an overlap error, got %v", err)
	}
}

func TestValidateRequiresProviderKeyOutsideDevelopment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("EVENTBRITE_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected a missing API key error")
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Database: "lv", SSLMode: "disable", MaxOpenConns: 5}
	if got := c.DSN(); got != "postgres://u:p@db:5432/lv?sslmode=disable&pool_max_conns=5" {
		t.Errorf("unexpected dsn %q", got)
	}
}
