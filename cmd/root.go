package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/csh0601/snapgrade/internal/config"
	"github.com/csh0601/snapgrade/internal/history"
	"github.com/csh0601/snapgrade/internal/i18n"
	"github.com/csh0601/snapgrade/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "snapgrade",
	Short: "Submit homework photos for grading",
	Long:  "Snapgrade uploads photographed homework pages to a grading server and keeps a local history of the results.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return i18n.Init(cfg.Language)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("server", "http://localhost:8000", "Grading server base URL")
	pf.StringSlice("fallback", nil, "Fallback server URLs probed before the first attempt")
	pf.String("db", "", "Path to SQLite database file (overrides SNAPGRADE_DB env var)")
	pf.String("lang", "en", "Message language (en, zh)")
	pf.Int("max-attempts", 3, "Upload attempts per submission")
	pf.Duration("timeout", 4*time.Minute, "Per-attempt upload timeout")
	pf.Duration("probe-timeout", 3*time.Second, "Per-endpoint liveness probe timeout")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the effective configuration from flags, the
// SNAPGRADE_ environment and defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	flags := cmd.Flags()
	bindings := map[string]string{
		"server_url":      "server",
		"fallback_urls":   "fallback",
		"db":              "db",
		"lang":            "lang",
		"max_attempts":    "max-attempts",
		"request_timeout": "timeout",
		"probe_timeout":   "probe-timeout",
	}
	for key, name := range bindings {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}
	return config.Load(v)
}

// resolveDBPath returns the database path using --db (highest
// priority), then SNAPGRADE_DB, then the default XDG path.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openHistory opens the backing store and wraps it in a history store.
// The returned func closes the database.
func openHistory(cfg *config.Config) (*history.Store, func(), error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	kv, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	h := history.New(kv, history.Options{
		Capacity: cfg.HistoryCapacity,
		CacheTTL: cfg.CacheTTL,
	})
	return h, func() { kv.Close() }, nil
}
