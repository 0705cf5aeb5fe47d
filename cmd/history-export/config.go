package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theimaginaryfoundation/chat-o-bot/responder/store"
)

type Config struct {
	DataDir     string
	Store       string
	SQLitePath  string
	RedisAddr   string
	RedisDB     int
	RedisPrefix string

	OutDir    string
	IndexPath string
	MaxBytes  int
	Overwrite bool
	BotName   string
	UserName  string
}

func (c Config) Validate() error {
	switch c.Store {
	case store.BackendFile, store.BackendSQLite:
		if c.DataDir == "" {
			return errors.New("missing -data-dir")
		}
	case store.BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("missing -redis-addr")
		}
	default:
		return fmt.Errorf("store must be file, sqlite or redis (got %q)", c.Store)
	}
	if c.OutDir == "" {
		return errors.New("missing -out")
	}
	if c.MaxBytes <= 0 {
		return errors.New("max-bytes must be > 0")
	}
	return nil
}

func (c Config) storeConfig() store.Config {
	return store.Config{
		Backend:    c.Store,
		Dir:        c.DataDir,
		SQLitePath: c.SQLitePath,
		Redis: store.RedisStoreConfig{
			Addr:     c.RedisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
	}
}

func defaultConfig() Config {
	dataDir := "chatbot_data"
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dataDir = filepath.Join(home, "chatbot_data")
	}
	return Config{
		DataDir:     dataDir,
		Store:       store.BackendFile,
		RedisPrefix: store.DefaultRedisPrefix,
		OutDir:      filepath.FromSlash("transcripts"),
		MaxBytes:    100 * 1024,
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
