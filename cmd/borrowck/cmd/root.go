// Package cmd provides CLI commands for borrowck.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mmynk/borrowchecker/internal/config"
	"github.com/mmynk/borrowchecker/internal/models"
	"github.com/mmynk/borrowchecker/internal/session"
	"github.com/mmynk/borrowchecker/internal/storage"
	"github.com/mmynk/borrowchecker/internal/storage/backend"
	"github.com/mmynk/borrowchecker/pkg/logging"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "borrowck",
	Short: "Inspect shared-expense ledgers",
	Long: `borrowck reads a group's ledgers from a git repository (or a SQLite
database) and reports balances and settlement proposals.

Example:
  borrowck ledgers
  borrowck balances 39C3 --user Araex
  borrowck settle 39C3
  borrowck import --db ./data/borrowchecker.db`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
		if debug {
			level = slog.LevelDebug
		}
		logging.SetupWithLevel(level)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(ledgersCmd)
	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(settleCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSession opens the configured repository and loads a session over it.
// The caller closes the returned repository.
func openSession(ctx context.Context) (*session.Session, storage.Repository, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	repo, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open repository: %w", err)
	}

	var opts []session.Option
	if cfg.UserID != uuid.Nil {
		opts = append(opts, session.WithUser(cfg.UserID))
	}
	sess := session.New(repo, opts...)
	if err := sess.Load(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	return sess, repo, nil
}

// findLedger resolves a ledger by ID or, failing that, by case-insensitive display name.
func findLedger(sess *session.Session, arg string) (models.Ledger, error) {
	if id, err := models.ParseID(arg); err == nil {
		return sess.Ledger(id)
	}
	for _, l := range sess.Ledgers() {
		if strings.EqualFold(l.DisplayName, arg) {
			return l, nil
		}
	}
	return models.Ledger{}, fmt.Errorf("%w: ledger %q", models.ErrNotFound, arg)
}

// findEntity resolves an entity by ID or, failing that, by case-insensitive display name.
func findEntity(group *models.Group, arg string) (models.Entity, error) {
	if id, err := models.ParseID(arg); err == nil {
		if e, ok := group.Entity(id); ok {
			return e, nil
		}
	}
	for _, e := range group.Entities {
		if strings.EqualFold(e.DisplayName, arg) {
			return e, nil
		}
	}
	return models.Entity{}, fmt.Errorf("%w: entity %q", models.ErrNotFound, arg)
}
