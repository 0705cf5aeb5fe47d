package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theimaginaryfoundation/chat-o-bot/responder"
	"github.com/theimaginaryfoundation/chat-o-bot/responder/provider"
	"github.com/theimaginaryfoundation/chat-o-bot/responder/store"
)

func main() {
	// A missing .env is the normal case.
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

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	code := run(cfg, logger)
	_ = logger.Sync()
	os.Exit(code)
}

func run(cfg Config, logger *zap.Logger) int {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	scorer, err := buildScorer(cfg.Sentiment, apiKey, cfg.Model)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.storeConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("open store: %w", err).Error())
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	persona := loadPersona(ctx, cfg.PersonaPath, st, logger)
	logger.Info("persona loaded",
		zap.String("bot_name", persona.BotName),
		zap.Strings("traits", persona.TraitNames()),
		zap.Int("casual_templates", len(persona.CasualTemplates)))

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	classifier := responder.NewClassifier(responder.ClassifierOptions{
		Scorer:    scorer,
		Threshold: cfg.Threshold,
		Logger:    logger.Named("sentiment"),
	})
	dispatcher := responder.NewDispatcher(responder.DispatcherOptions{
		Rand:             rand.New(rand.NewPCG(seed, seed)),
		Persona:          persona,
		AcknowledgeLikes: cfg.AckLikes,
	})

	session, err := responder.NewSession(responder.SessionOptions{
		Store:      st,
		Classifier: classifier,
		Dispatcher: dispatcher,
		Persona:    persona,
		Logger:     logger.Named("session"),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	session.Load(ctx)
	logger.Info("session started",
		zap.String("session_id", session.SessionID()),
		zap.String("store", cfg.Store),
		zap.Bool("advanced_sentiment", scorer != nil))

	if err := session.Run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// buildScorer selects the advanced sentiment engine. A nil Scorer means keyword matching only.
func buildScorer(mode, apiKey, model string) (responder.Scorer, error) {
	switch mode {
	case sentimentKeyword:
		return nil, nil
	case sentimentAuto:
		if apiKey == "" {
			return nil, nil
		}
	case sentimentOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("missing OPENAI_API_KEY (or pass -api-key) for -sentiment %s", mode)
		}
	default:
		return nil, fmt.Errorf("unknown sentiment mode %q", mode)
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return provider.NewOpenAIScorer(&client, model), nil
}

// loadPersona prefers an explicit persona file, then the store's personality
// document, then the built-in default.
func loadPersona(ctx context.Context, path string, st store.DocumentStore, logger *zap.Logger) responder.PersonaConfig {
	if path != "" {
		p, err := responder.LoadPersonaFile(path)
		if err != nil {
			logger.Warn("persona file unreadable, using default", zap.String("path", path), zap.Error(err))
			return responder.DefaultPersona()
		}
		return p
	}
	p := responder.DefaultPersona()
	if _, err := store.LoadOrDefault(ctx, st, responder.PersonalityDocument, &p); err != nil {
		logger.Warn("personality document unreadable, using default", zap.Error(err))
	}
	return p.Normalize()
}

func newLogger(level, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("newLogger: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{"stderr"}
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("newLogger: mkdir: %w", err)
		}
		zcfg.OutputPaths = []string{file}
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("newLogger: %w", err)
	}
	return logger, nil
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for user.json/history.json (and the default sqlite database)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Document store backend: file, sqlite or redis")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", "", "Path to the sqlite database (default: <data-dir>/chatbot.db)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address host:port (password from REDIS_PASSWORD)")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis logical database")
	fs.StringVar(&cfg.RedisPrefix, "redis-prefix", cfg.RedisPrefix, "Redis key prefix")
	fs.StringVar(&cfg.Sentiment, "sentiment", cfg.Sentiment, "Sentiment engine: keyword, openai, or auto (openai when an API key is present)")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model used by the openai sentiment engine")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "Compound score cutoff for positive/negative")
	fs.StringVar(&cfg.PersonaPath, "persona", "", "Optional persona YAML/JSON file (default: the store's personality document)")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "Seed for fallback reply selection (0 = time-based)")
	fs.BoolVar(&cfg.AckLikes, "ack-likes", false, "Acknowledge \"I like ...\" statements in replies")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Write logs to this file instead of stderr")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.Sentiment = strings.ToLower(strings.TrimSpace(cfg.Sentiment))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.DataDir != "" {
		cfg.DataDir = filepath.Clean(expandHome(cfg.DataDir))
	}
	if cfg.SQLitePath != "" {
		cfg.SQLitePath = filepath.Clean(expandHome(cfg.SQLitePath))
	}
	if cfg.PersonaPath != "" {
		cfg.PersonaPath = filepath.Clean(expandHome(cfg.PersonaPath))
	}
	if cfg.LogFile != "" {
		cfg.LogFile = filepath.Clean(expandHome(cfg.LogFile))
	}
	return cfg, nil
}
