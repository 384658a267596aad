package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/level"
)

// Supported backends.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config selects and locates a backend.
type Config struct {
	Driver string

	// Path is the SQLite database file. Empty means DefaultDBPath.
	Path string

	MongoURI      string
	MongoDatabase string
}

// Store exposes the repositories of one backend.
type Store interface {
	Interviews() interview.Repository
	Levels() level.Repository
	Close(ctx context.Context) error
}

// Open connects to the backend named by cfg.Driver and prepares its
// schema. An empty driver means SQLite.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		path := cfg.Path
		if path == "" {
			p, err := DefaultDBPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return OpenSQLite(ctx, path)
	case DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// DefaultDBPath resolves the SQLite file path in priority order:
// 1. PREPWISE_DB environment variable
// 2. $XDG_DATA_HOME/prepwise/prepwise.db
// 3. ~/.local/share/prepwise/prepwise.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("PREPWISE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "prepwise", "prepwise.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
