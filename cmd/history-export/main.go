package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/theimaginaryfoundation/chat-o-bot/responder"
	"github.com/theimaginaryfoundation/chat-o-bot/responder/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.storeConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("open store: %w", err).Error())
		os.Exit(1)
	}
	n, indexPath, err := export(ctx, st, cfg)
	_ = st.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		if errors.Is(err, store.ErrNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, "sessions_packed=%d out_dir=%s index=%s\n", n, cfg.OutDir, indexPath)
}

// export packs the stored history into shards and writes the index. It returns the
// number of sessions written and the index path.
func export(ctx context.Context, st store.DocumentStore, cfg Config) (int, string, error) {
	var history responder.HistoryLog
	if err := st.Load(ctx, responder.HistoryDocument, &history); err != nil {
		return 0, "", fmt.Errorf("load history: %w", err)
	}
	if len(history) == 0 {
		return 0, "", fmt.Errorf("load history: %w", store.ErrNotFound)
	}

	botName := cfg.BotName
	if botName == "" {
		persona := responder.DefaultPersona()
		_, _ = store.LoadOrDefault(ctx, st, responder.PersonalityDocument, &persona)
		botName = persona.Normalize().BotName
	}
	userName := cfg.UserName
	if userName == "" {
		var profile responder.UserProfile
		_, _ = store.LoadOrDefault(ctx, st, responder.UserDocument, &profile)
		userName = profile.DisplayName("")
	}

	index, err := responder.WriteTranscriptShards(history, responder.TranscriptPackOptions{
		OutDir:    cfg.OutDir,
		MaxBytes:  cfg.MaxBytes,
		Overwrite: cfg.Overwrite,
		BotName:   botName,
		UserName:  userName,
	})
	if err != nil {
		return 0, "", err
	}

	indexPath := cfg.IndexPath
	if indexPath == "" {
		indexPath = filepath.Join(cfg.OutDir, "transcript_index.jsonl")
	}
	if err := responder.WriteTranscriptIndex(indexPath, index, cfg.Overwrite); err != nil {
		return 0, "", err
	}
	return len(index), indexPath, nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Chatbot data directory (file store and default sqlite database)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Document store backend: file, sqlite or redis")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", "", "Path to the sqlite database (default: <data-dir>/chatbot.db)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address host:port (password from REDIS_PASSWORD)")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis logical database")
	fs.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "Redis key prefix")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Output directory for markdown shard files")
	fs.StringVar(&cfg.IndexPath, "index", "", "Optional path for transcript_index.jsonl (default: <out>/transcript_index.jsonl)")
	fs.IntVar(&cfg.MaxBytes, "max-bytes", cfg.MaxBytes, "Max UTF-8 bytes per markdown shard file (default ~100KB)")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite existing shard/index files")
	fs.StringVar(&cfg.BotName, "bot-name", "", "Label for bot lines (default: persona bot name)")
	fs.StringVar(&cfg.UserName, "user-name", "", "Label for user lines (default: stored user name)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.DataDir != "" {
		cfg.DataDir = filepath.Clean(expandHome(cfg.DataDir))
	}
	if cfg.SQLitePath != "" {
		cfg.SQLitePath = filepath.Clean(expandHome(cfg.SQLitePath))
	}
	cfg.OutDir = filepath.Clean(cfg.OutDir)
	if cfg.IndexPath != "" {
		cfg.IndexPath = filepath.Clean(cfg.IndexPath)
	}
	return cfg, nil
}
