// Package backend opens the storage.Repository selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/borrowchecker/internal/config"
	"github.com/mmynk/borrowchecker/internal/storage"
	"github.com/mmynk/borrowchecker/internal/storage/gitrepo"
	"github.com/mmynk/borrowchecker/internal/storage/sqlite"
)

// Open opens the configured repository. The caller closes it.
func Open(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	switch cfg.Backend {
	case config.BackendGit:
		repo, err := gitrepo.Open(ctx, cfg.Git.RepoPath, gitrepo.Options{
			Ref:        cfg.Git.Ref,
			LedgersDir: cfg.Git.LedgersDir,
			GroupFile:  cfg.Git.GroupFile,
		})
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.SQLite.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "database", cfg.SQLite.DBPath)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
