package cmd

import (
	"fmt"
	"net/url"

	"github.com/zoonmattau/budgeter-sub000/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default strategy: %s\n", cfg.General.DefaultStrategy)
	fmt.Printf("    Extra payment:    $%.2f\n", cfg.General.ExtraPayment)
	fmt.Printf("    Extra step:       $%.2f\n", cfg.General.ExtraStep)
	fmt.Printf("    Max months:       %d\n", cfg.General.MaxMonths)
	if cfg.General.DebtsFile != "" {
		fmt.Printf("    Debts file:       %s\n", cfg.General.DebtsFile)
	}
	fmt.Println()

	fmt.Println("  [Store]")
	fmt.Printf("    Driver: %s\n", cfg.Store.Driver)
	fmt.Printf("    DSN:    %s\n", maskDSN(config.StoreDSN(cfg)))
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Snapshot cron: %s\n", cfg.Server.SnapshotCron)
	if cfg.Server.RedisAddr != "" {
		fmt.Printf("    Redis cache:   %s (ttl %ds)\n", cfg.Server.RedisAddr, cfg.Server.CacheTTLSec)
	} else {
		fmt.Printf("    Cache:         in-memory (ttl %ds)\n", cfg.Server.CacheTTLSec)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `debtplan setup` to reconfigure.")
	return nil
}

// maskDSN hides the password in a URL-style DSN.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}
