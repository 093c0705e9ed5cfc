package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	// t.Setenv clears nothing, so unset the variables this test cares about.
	for _, key := range []string{"FB_GRAPH_URL", "FB_EMBED_URL", "API_ADDR", "ENVIRONMENT"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.GraphBaseURL != DefaultGraphBaseURL {
		t.Errorf("expected default graph URL, got %q", cfg.GraphBaseURL)
	}
	if cfg.EmbedBaseURL != DefaultEmbedBaseURL {
		t.Errorf("expected default embed URL, got %q", cfg.EmbedBaseURL)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected development environment, got %q", cfg.Environment)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PAGE_ID", "123")
	t.Setenv("FB_PAGE_ACCESS_TOKEN", "tok")
	t.Setenv("FB_VERIFY_TOKEN", "verify")
	t.Setenv("FB_GRAPH_URL", "https://graph.example/v1")
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/theta")

	cfg := FromEnv()
	if cfg.PageID != "123" || cfg.PageAccessToken != "tok" || cfg.VerifyToken != "verify" {
		t.Errorf("unexpected identity config: %+v", cfg)
	}
	if cfg.GraphBaseURL != "https://graph.example/v1" {
		t.Errorf("expected graph URL override, got %q", cfg.GraphBaseURL)
	}
	if cfg.Addr != ":9000" || cfg.Environment != "production" {
		t.Errorf("unexpected server config: addr=%q env=%q", cfg.Addr, cfg.Environment)
	}
	if cfg.DatabaseDSN != "postgres://u:p@localhost/theta" {
		t.Errorf("unexpected DSN: %q", cfg.DatabaseDSN)
	}
}

func TestAlertsConfigured(t *testing.T) {
	full := Config{
		TwilioAccountSID: "AC1",
		TwilioAuthToken:  "secret",
		TwilioFrom:       "+10000000001",
		AlertRecipient:   "+10000000002",
	}
	if !full.AlertsConfigured() {
		t.Error("expected alerts configured with all fields set")
	}

	partial := full
	partial.AlertRecipient = ""
	if partial.AlertsConfigured() {
		t.Error("expected alerts disabled with a missing field")
	}

	if (Config{}).AlertsConfigured() {
		t.Error("expected alerts disabled for zero config")
	}
}
