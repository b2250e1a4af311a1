package store

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string // file, sqlite, redis, memory, none
	Dir           string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "sqlite":
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.Dir, "series_cache.db")
		}
		return NewSQLiteStore(path, logger)
	case "redis":
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case "memory":
		return NewMemoryStore(), nil
	case "none":
		return NewNoopStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
