package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/borrowchecker/internal/config"
	"github.com/mmynk/borrowchecker/internal/storage"
	"github.com/mmynk/borrowchecker/internal/storage/backend"
	"github.com/mmynk/borrowchecker/internal/storage/sqlite"
)

var importDB string

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the git dataset into a SQLite database",
	Long: `Copy the group, ledgers and transactions of the configured git repository
into a SQLite database, keeping every ID. Records already in the database are skipped,
so the import can be repeated after new commits.

Example:
  borrowck import --db ./data/borrowchecker.db`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "", "target SQLite database (required)")
	_ = importCmd.MarkFlagRequired("db")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Backend = config.BackendGit
	if err := cfg.Validate(); err != nil {
		return err
	}

	src, err := backend.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}
	defer src.Close()

	dst, err := sqlite.New(importDB)
	if err != nil {
		return err
	}
	defer dst.Close()

	stats, err := storage.Copy(ctx, dst, src)
	if err != nil {
		return err
	}

	slog.Info("Import finished", "database", importDB, "ledgers", stats.Ledgers, "transactions", stats.Transactions)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entities, %d ledgers, %d transactions (%d ledgers and %d transactions already present)\n",
		stats.Entities, stats.Ledgers, stats.Transactions, stats.SkippedLedgers, stats.SkippedTransactions)
	return nil
}
