package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/theimaginaryfoundation/chat-o-bot/responder"
	"github.com/theimaginaryfoundation/chat-o-bot/responder/provider"
	"github.com/theimaginaryfoundation/chat-o-bot/responder/store"
)

// Sentiment engine modes.
const (
	sentimentKeyword = "keyword"
	sentimentOpenAI  = "openai"
	sentimentAuto    = "auto"
)

type Config struct {
	DataDir     string
	Store       string
	SQLitePath  string
	RedisAddr   string
	RedisDB     int
	RedisPrefix string

	Sentiment string
	Model     string
	APIKey    string
	Threshold float64

	PersonaPath string
	Seed        uint64
	AckLikes    bool

	LogLevel string
	LogFile  string
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
	switch c.Sentiment {
	case sentimentKeyword, sentimentOpenAI, sentimentAuto:
	default:
		return fmt.Errorf("sentiment must be keyword, openai or auto (got %q)", c.Sentiment)
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		return errors.New("threshold must be in (0, 1]")
	}
	if c.RedisDB < 0 {
		return errors.New("redis-db must be >= 0")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid -log-level: %w", err)
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
	return Config{
		DataDir:     defaultDataDir(),
		Store:       store.BackendFile,
		RedisPrefix: store.DefaultRedisPrefix,
		Sentiment:   sentimentAuto,
		Model:       provider.DefaultSentimentModel,
		Threshold:   responder.DefaultThreshold,
		LogLevel:    "warn",
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "chatbot_data"
	}
	return filepath.Join(home, "chatbot_data")
}

// expandHome resolves a leading "~/" against the user's home directory.
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
