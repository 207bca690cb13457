// Package config loads Borrow Checker configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/mmynk/borrowchecker/internal/models"
)

// Storage backends.
const (
	BackendGit    = "git"
	BackendSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	Backend string
	Git     GitConfig
	SQLite  SQLiteConfig

	// UserID preselects the viewing user; uuid.Nil leaves it unset.
	UserID   uuid.UUID
	Port     int
	LogLevel string
}

// GitConfig locates the dataset inside a git repository.
type GitConfig struct {
	RepoPath   string
	Ref        string
	LedgersDir string
	GroupFile  string
}

// SQLiteConfig represents SQLite storage configuration.
type SQLiteConfig struct {
	DBPath string
}

// Load loads configuration from environment variables.
// It loads .env from the current directory if available; a custom .env path may be given.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	port, err := parseIntEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}

	var userID uuid.UUID
	if raw := os.Getenv("BORROWCHECKER_USER_ID"); raw != "" {
		if userID, err = models.ParseID(raw); err != nil {
			return nil, fmt.Errorf("invalid BORROWCHECKER_USER_ID: %w", err)
		}
	}

	config := &Config{
		Backend: getEnvOrDefault("BORROWCHECKER_BACKEND", BackendGit),
		Git: GitConfig{
			RepoPath:   os.Getenv("BORROWCHECKER_REPO_PATH"),
			Ref:        getEnvOrDefault("BORROWCHECKER_REF", "refs/heads/main"),
			LedgersDir: getEnvOrDefault("BORROWCHECKER_LEDGERS_DIR", "ledgers"),
			GroupFile:  getEnvOrDefault("BORROWCHECKER_GROUP_FILE", "group.toml"),
		},
		SQLite: SQLiteConfig{
			DBPath: getEnvOrDefault("BORROWCHECKER_DB_PATH", "./data/borrowchecker.db"),
		},
		UserID:   userID,
		Port:     port,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	return config, nil
}

// Validate checks that the selected backend has everything it needs.
func (c *Config) Validate() error {
	var missing []string

	switch c.Backend {
	case BackendGit:
		if c.Git.RepoPath == "" {
			missing = append(missing, "BORROWCHECKER_REPO_PATH")
		}
	case BackendSQLite:
		if c.SQLite.DBPath == "" {
			missing = append(missing, "BORROWCHECKER_DB_PATH")
		}
	default:
		return fmt.Errorf("unknown BORROWCHECKER_BACKEND %q (expected %s or %s)", c.Backend, BackendGit, BackendSQLite)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}
	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}
