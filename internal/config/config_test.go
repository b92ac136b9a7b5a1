package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DEBTPLAN_DB_DSN", "")
	t.Setenv("DEBTPLAN_REDIS_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("Load = %+v, want defaults", cfg)
	}
	if Exists() {
		t.Error("Exists = true before Save")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DEBTPLAN_DB_DSN", "")
	t.Setenv("DEBTPLAN_REDIS_ADDR", "")

	cfg := DefaultConfig()
	cfg.General.DefaultStrategy = "snowball"
	cfg.General.ExtraPayment = 150
	cfg.Store.Driver = DriverPostgres
	cfg.Store.DSN = "postgres://localhost/debtplan?sslmode=disable"
	cfg.Appearance.Theme = "catppuccin-mocha"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists = false after Save")
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("DEBTPLAN_DB_DSN", "")
	t.Setenv("DEBTPLAN_REDIS_ADDR", "")

	path := filepath.Join(dir, "debtplan", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[general]\nextra_payment = 75.5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.ExtraPayment != 75.5 {
		t.Errorf("ExtraPayment = %v, want 75.5", cfg.General.ExtraPayment)
	}
	if cfg.General.MaxMonths != 1200 || cfg.Server.SnapshotCron != "@daily" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "debtplan", "config.toml")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("[general\n"), 0o600)

	if _, err := Load(); err == nil {
		t.Error("Load with broken TOML returned nil error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DEBTPLAN_DB_DSN", "postgres://db/plan")
	t.Setenv("DEBTPLAN_REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.DSN != "postgres://db/plan" {
		t.Errorf("DSN = %q", cfg.Store.DSN)
	}
	if cfg.Server.RedisAddr != "redis:6379" {
		t.Errorf("RedisAddr = %q", cfg.Server.RedisAddr)
	}
}

func TestStoreDSN(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := DefaultConfig()
	if got, want := StoreDSN(cfg), filepath.Join("/tmp/xdg-data", "debtplan", "debtplan.db"); got != want {
		t.Errorf("StoreDSN = %q, want %q", got, want)
	}
	cfg.Store.DSN = "file.db"
	if got := StoreDSN(cfg); got != "file.db" {
		t.Errorf("StoreDSN = %q, want file.db", got)
	}
}
