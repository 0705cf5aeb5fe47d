package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/theimaginaryfoundation/chat-o-bot/responder"
	"github.com/theimaginaryfoundation/chat-o-bot/responder/store"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("chat-o-bot", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Store != store.BackendFile || cfg.Sentiment != sentimentAuto {
		t.Fatalf("Store=%q Sentiment=%q", cfg.Store, cfg.Sentiment)
	}
	if cfg.Threshold != responder.DefaultThreshold {
		t.Fatalf("Threshold=%v", cfg.Threshold)
	}
	if filepath.Base(cfg.DataDir) != "chatbot_data" {
		t.Fatalf("DataDir=%q", cfg.DataDir)
	}
	if cfg.LogLevel != "warn" || cfg.AckLikes || cfg.Seed != 0 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("chat-o-bot", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-data-dir", "tmp/../data",
		"-store", "SQLite",
		"-sqlite-path", "x.db",
		"-redis-addr", "localhost:6379",
		"-redis-prefix", "bot",
		"-sentiment", "Keyword",
		"-model", "m",
		"-threshold", "0.25",
		"-persona", "persona.yaml",
		"-seed", "42",
		"-ack-likes",
		"-log-level", "DEBUG",
		"-log-file", "logs/bot.log",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.DataDir != "data" || cfg.Store != store.BackendSQLite || cfg.SQLitePath != "x.db" {
		t.Fatalf("DataDir=%q Store=%q SQLitePath=%q", cfg.DataDir, cfg.Store, cfg.SQLitePath)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisPrefix != "bot" {
		t.Fatalf("redis=%q/%q", cfg.RedisAddr, cfg.RedisPrefix)
	}
	if cfg.Sentiment != sentimentKeyword || cfg.Model != "m" || cfg.Threshold != 0.25 {
		t.Fatalf("sentiment=%q model=%q threshold=%v", cfg.Sentiment, cfg.Model, cfg.Threshold)
	}
	if cfg.PersonaPath != "persona.yaml" || cfg.Seed != 42 || !cfg.AckLikes {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFile != filepath.FromSlash("logs/bot.log") {
		t.Fatalf("LogLevel=%q LogFile=%q", cfg.LogLevel, cfg.LogFile)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown store", func(c *Config) { c.Store = "mongo" }, false},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, false},
		{"redis without addr", func(c *Config) { c.Store = store.BackendRedis }, false},
		{"redis with addr", func(c *Config) { c.Store = store.BackendRedis; c.DataDir = ""; c.RedisAddr = "h:1" }, true},
		{"unknown sentiment", func(c *Config) { c.Sentiment = "vader" }, false},
		{"zero threshold", func(c *Config) { c.Threshold = 0 }, false},
		{"threshold above one", func(c *Config) { c.Threshold = 1.5 }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, false},
	}
	for _, tt := range tests {
		cfg := defaultConfig()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if (err == nil) != tt.ok {
			t.Fatalf("%s: Validate()=%v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

func TestBuildScorer(t *testing.T) {
	t.Parallel()

	if s, err := buildScorer(sentimentKeyword, "sk-test", ""); err != nil || s != nil {
		t.Fatalf("keyword: scorer=%v err=%v", s, err)
	}
	if s, err := buildScorer(sentimentAuto, "", ""); err != nil || s != nil {
		t.Fatalf("auto without key: scorer=%v err=%v", s, err)
	}
	if s, err := buildScorer(sentimentAuto, "sk-test", ""); err != nil || s == nil {
		t.Fatalf("auto with key: scorer=%v err=%v", s, err)
	}
	if _, err := buildScorer(sentimentOpenAI, "", ""); err == nil {
		t.Fatalf("expected error for openai without key")
	}
	if _, err := buildScorer("vader", "sk-test", ""); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestLoadPersona_FromFileThenStoreThenDefault(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	st, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	logger := zap.NewNop()

	if got := loadPersona(ctx, "", st, logger); got.BotName != responder.DefaultBotName {
		t.Fatalf("default BotName=%q", got.BotName)
	}

	if err := st.Save(ctx, responder.PersonalityDocument, responder.PersonaConfig{BotName: "Nova"}); err != nil {
		t.Fatalf("save persona: %v", err)
	}
	got := loadPersona(ctx, "", st, logger)
	if got.BotName != "Nova" || len(got.Traits) == 0 {
		t.Fatalf("store persona=%+v", got)
	}

	path := filepath.Join(dir, "persona.yaml")
	if err := os.WriteFile(path, []byte("bot_name: Pip\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := loadPersona(ctx, path, st, logger); got.BotName != "Pip" {
		t.Fatalf("file BotName=%q", got.BotName)
	}
	if got := loadPersona(ctx, filepath.Join(dir, "missing.yaml"), st, logger); got.BotName != responder.DefaultBotName {
		t.Fatalf("missing file BotName=%q", got.BotName)
	}
}

func TestNewLogger_WritesToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "bot.log")
	logger, err := newLogger("info", path)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("log file empty")
	}
	if _, err := newLogger("loud", ""); err == nil {
		t.Fatalf("expected error for bad level")
	}
}
