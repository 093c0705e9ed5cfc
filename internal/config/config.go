// Package config assembles process configuration for Theta.
//
// Configuration is loaded once at startup and passed into each component's
// constructor; core logic never reads the environment directly.
package config

import (
	"log/slog"
	"os"
)

// Default configuration values.
const (
	// DefaultGraphBaseURL is the Facebook Graph API base used for all
	// authenticated object fetches and reply posts.
	DefaultGraphBaseURL = "https://graph.facebook.com/v19.0"
	// DefaultEmbedBaseURL is the public post-embed endpoint used by the
	// unauthenticated scrape fallback.
	DefaultEmbedBaseURL = "https://www.facebook.com/plugins/post.php"
	// DefaultAddr is the default HTTP listen address.
	DefaultAddr = ":8000"
	// Version is reported by the liveness and stats endpoints.
	Version = "1.0.0"
)

// Config holds all settings and secrets for one Theta process.
type Config struct {
	// PageID is the Facebook Page identity the bot operates as. Events
	// originating from this id are suppressed to prevent self-reply loops.
	PageID string
	// PageAccessToken authenticates Graph API calls.
	PageAccessToken string
	// VerifyToken is matched against hub.verify_token during webhook setup.
	VerifyToken string

	GraphBaseURL string
	EmbedBaseURL string

	// GeminiAPIKey enables the Gemini generation backends.
	GeminiAPIKey string
	// OpenAIKey enables the last-resort OpenAI backend.
	OpenAIKey string

	// Twilio operator alerting; alerts are disabled when any field is empty.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string
	AlertRecipient   string

	// DatabaseDSN selects the counter store backend: a postgres:// URL or
	// key=value DSN uses Postgres, anything else is treated as a SQLite path.
	DatabaseDSN string

	Addr        string
	Environment string
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() Config {
	cfg := Config{
		PageID:           os.Getenv("PAGE_ID"),
		PageAccessToken:  os.Getenv("FB_PAGE_ACCESS_TOKEN"),
		VerifyToken:      os.Getenv("FB_VERIFY_TOKEN"),
		GraphBaseURL:     os.Getenv("FB_GRAPH_URL"),
		EmbedBaseURL:     os.Getenv("FB_EMBED_URL"),
		GeminiAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_FROM_NUMBER"),
		AlertRecipient:   os.Getenv("ALERT_RECIPIENT"),
		DatabaseDSN:      os.Getenv("DATABASE_URL"),
		Addr:             os.Getenv("API_ADDR"),
		Environment:      os.Getenv("ENVIRONMENT"),
	}

	if cfg.GraphBaseURL == "" {
		cfg.GraphBaseURL = DefaultGraphBaseURL
	}
	if cfg.EmbedBaseURL == "" {
		cfg.EmbedBaseURL = DefaultEmbedBaseURL
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	slog.Debug("config loaded from environment",
		"page_id_set", cfg.PageID != "",
		"fb_token_set", cfg.PageAccessToken != "",
		"verify_token_set", cfg.VerifyToken != "",
		"gemini_key_set", cfg.GeminiAPIKey != "",
		"openai_key_set", cfg.OpenAIKey != "",
		"twilio_configured", cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "",
		"database_dsn_set", cfg.DatabaseDSN != "",
		"addr", cfg.Addr,
		"environment", cfg.Environment)

	return cfg
}

// AlertsConfigured reports whether operator alerting can be enabled.
func (c Config) AlertsConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != "" && c.AlertRecipient != ""
}
