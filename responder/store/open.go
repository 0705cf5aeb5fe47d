package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures a DocumentStore backend.
type Config struct {
	Backend string

	// Dir holds the JSON files for the file backend and the default sqlite database.
	Dir string

	SQLitePath string
	Redis      RedisStoreConfig
}

// Open builds the configured backend. An empty Backend selects the file store.
func Open(ctx context.Context, cfg Config) (DocumentStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Dir, "chatbot.db")
		}
		return NewSQLiteStore(ctx, path)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want file, sqlite or redis)", cfg.Backend)
	}
}
