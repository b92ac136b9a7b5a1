package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all debtplan configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Store      StoreConfig      `toml:"store"`
	Server     ServerConfig     `toml:"server"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds planning defaults used when flags are not given.
type GeneralConfig struct {
	DefaultStrategy string  `toml:"default_strategy"`
	ExtraPayment    float64 `toml:"extra_payment"`
	ExtraStep       float64 `toml:"extra_step"`
	MaxMonths       int     `toml:"max_months"`
	DebtsFile       string  `toml:"debts_file,omitempty"`
}

// StoreConfig selects the database backing `debts` and `history`.
type StoreConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn,omitempty"`
}

// ServerConfig holds `debtplan serve` settings.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	SnapshotCron string `toml:"snapshot_cron"`
	RedisAddr    string `toml:"redis_addr,omitempty"`
	CacheTTLSec  int    `toml:"cache_ttl_sec"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultStrategy: "avalanche",
			ExtraStep:       50,
			MaxMonths:       1200,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8740",
			SnapshotCron: "@daily",
			CacheTTLSec:  300,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "debtplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "debtplan")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the SQLite database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "debtplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "debtplan")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied last.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

func applyEnv(cfg *Config) {
	if dsn := os.Getenv("DEBTPLAN_DB_DSN"); dsn != "" {
		cfg.Store.DSN = dsn
	}
	if addr := os.Getenv("DEBTPLAN_REDIS_ADDR"); addr != "" {
		cfg.Server.RedisAddr = addr
	}
}

// StoreDSN returns the configured DSN, defaulting to a SQLite file in DataDir.
func StoreDSN(cfg Config) string {
	if cfg.Store.DSN != "" {
		return cfg.Store.DSN
	}
	return filepath.Join(DataDir(), "debtplan.db")
}
