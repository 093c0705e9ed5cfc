package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/teramind-labs/theta/internal/alerts"
	"github.com/teramind-labs/theta/internal/api"
	"github.com/teramind-labs/theta/internal/brain"
	"github.com/teramind-labs/theta/internal/config"
	"github.com/teramind-labs/theta/internal/dispatch"
	"github.com/teramind-labs/theta/internal/facebook"
	"github.com/teramind-labs/theta/internal/resolver"
	"github.com/teramind-labs/theta/internal/router"
	"github.com/teramind-labs/theta/internal/store"
	"github.com/teramind-labs/theta/internal/tasks"
	"github.com/teramind-labs/theta/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Theta state data
	DefaultStateDir = "/var/lib/theta"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "theta.db"
)

// Gemini cascade model ids, in fall-through order. gemma rejects a separate
// system instruction and the search tool, so it carries neither capability.
const (
	modelGeminiFlash25 = "gemini-2.5-flash"
	modelGeminiFlash20 = "gemini-2.0-flash"
	modelGemmaLite     = "gemma-3-1b-it"
)

// Flags holds command line flag values
type Flags struct {
	stateDir      *string
	dbDSN         *string
	apiAddr       *string
	disableScrape *bool
}

func main() {
	initializeLogger()

	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}
	cfg := config.FromEnv()

	flags := parseCommandLineFlags(cfg)
	cfg.Addr = *flags.apiAddr
	cfg.DatabaseDSN = *flags.dbDSN

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	st, err := buildStore(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("Failed to initialize counter store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	fb, err := facebook.NewClient(
		facebook.WithBaseURL(cfg.GraphBaseURL),
		facebook.WithEmbedURL(cfg.EmbedBaseURL),
		facebook.WithAccessToken(cfg.PageAccessToken),
	)
	if err != nil {
		slog.Error("Failed to initialize Graph client", "error", err)
		os.Exit(1)
	}

	var embed resolver.EmbedFetcher = fb
	if *flags.disableScrape {
		slog.Info("Embed scrape fallback disabled by configuration")
		embed = nil
	}
	res := resolver.New(fb, embed)

	gen := buildGenerator(context.Background(), cfg)
	slog.Info("Generation cascade configured", "backends", gen.Backends())

	notifier := buildNotifier(cfg)
	rt := router.New(cfg.PageID, tasks.NewRunner(), res, gen, dispatch.New(fb), st, notifier)

	slog.Info("Bootstrapping Theta", "page_id_set", cfg.PageID != "", "addr", cfg.Addr)
	if err := api.NewServer(cfg, rt, st).Run(); err != nil {
		slog.Error("Theta failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Theta exited successfully")
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(cfg config.Config) Flags {
	defaultDSN := cfg.DatabaseDSN
	if defaultDSN == "" {
		defaultDSN = filepath.Join(DefaultStateDir, DefaultDBFileName)
	}

	flags := Flags{
		stateDir:      flag.String("state-dir", DefaultStateDir, "state directory for Theta data (overrides $THETA_STATE_DIR)"),
		dbDSN:         flag.String("db-dsn", defaultDSN, "database DSN for the counter store (overrides $DATABASE_URL)"),
		apiAddr:       flag.String("api-addr", cfg.Addr, "API server address (overrides $API_ADDR)"),
		disableScrape: flag.Bool("disable-scrape", util.ParseBoolEnv("THETA_DISABLE_SCRAPE", false), "disable the embed scrape fallback (overrides $THETA_DISABLE_SCRAPE)"),
	}
	flag.Parse()

	// Follow a relocated state directory when the DSN was left at its default.
	if *flags.dbDSN == filepath.Join(DefaultStateDir, DefaultDBFileName) && *flags.stateDir != DefaultStateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"disableScrape", *flags.disableScrape)
	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		return nil
	}
	dir := filepath.Dir(*flags.dbDSN)
	slog.Debug("Creating state directory for file-based database", "state_dir", dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("Failed to create state directory", "error", err, "state_dir", dir)
		return err
	}
	return nil
}

// buildStore selects the counter store backend from the DSN shape.
func buildStore(dsn string) (store.Store, error) {
	if strings.TrimSpace(dsn) == "" {
		slog.Warn("No database DSN provided, counters will not survive restarts")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", dsn)
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}

// buildGenerator assembles the generation cascade from the configured keys.
// An empty cascade still runs; it answers with the fixed fallback message.
func buildGenerator(ctx context.Context, cfg config.Config) *brain.Generator {
	var candidates []brain.Candidate

	if cfg.GeminiAPIKey != "" {
		client, err := brain.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			slog.Error("Failed to initialize Gemini client, skipping Gemini backends", "error", err)
		} else {
			candidates = append(candidates,
				brain.Candidate{Backend: brain.NewGeminiBackend(client, modelGeminiFlash25), SupportsSystemInstruction: true, SupportsToolUse: true},
				brain.Candidate{Backend: brain.NewGeminiBackend(client, modelGeminiFlash20), SupportsSystemInstruction: true, SupportsToolUse: true},
				brain.Candidate{Backend: brain.NewGeminiBackend(client, modelGemmaLite)},
			)
		}
	}
	if cfg.OpenAIKey != "" {
		backend, err := brain.NewOpenAIBackend(cfg.OpenAIKey, "")
		if err != nil {
			slog.Error("Failed to initialize OpenAI backend, skipping", "error", err)
		} else {
			candidates = append(candidates, brain.Candidate{Backend: backend, SupportsSystemInstruction: true})
		}
	}

	if len(candidates) == 0 {
		slog.Warn("No generation backends configured; every reply will use the fallback message")
	}
	return brain.NewGenerator(candidates...)
}

// buildNotifier creates the operator alert notifier, or nil when Twilio is
// not fully configured.
func buildNotifier(cfg config.Config) *alerts.Notifier {
	if !cfg.AlertsConfigured() {
		slog.Debug("Operator alerting not configured")
		return nil
	}
	notifier, err := alerts.NewNotifier(
		alerts.WithAccountSID(cfg.TwilioAccountSID),
		alerts.WithAuthToken(cfg.TwilioAuthToken),
		alerts.WithFrom(cfg.TwilioFrom),
		alerts.WithRecipient(cfg.AlertRecipient),
	)
	if err != nil {
		slog.Error("Failed to initialize operator alerting, continuing without it", "error", err)
		return nil
	}
	slog.Info("Operator alerting enabled")
	return notifier
}
