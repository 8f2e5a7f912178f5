package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/schieber/jasstat/internal/config"
	"github.com/schieber/jasstat/internal/logging"
	"github.com/schieber/jasstat/internal/storage"
)

var (
	cfg      *config.Config
	log      *slog.Logger
	dbFlag   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:               "jasstat",
	Short:             "Jass group rating and statistics tool",
	Long:              "Replay completed Jass sessions and tournament passes to rebuild player ratings, rating history, and cumulative statistics.",
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "path to SQLite database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(backfillRatingsCmd)
	rootCmd.AddCommand(backfillStatsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(dropCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log, err = logging.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}
	return nil
}

func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}
