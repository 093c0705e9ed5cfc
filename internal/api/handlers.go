// Package api provides HTTP handlers for Theta endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/teramind-labs/theta/internal/config"
	"github.com/teramind-labs/theta/internal/models"
)

// ModelLabel is the static model name reported by GET /stats.
const ModelLabel = "Theta-Gemini-Flash"

// homeHandler is the liveness and version probe (GET /).
func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{
		"status":  "Theta LLM Backend Online",
		"version": config.Version,
	})
}

// webhookHandler serves both halves of the Facebook webhook contract:
// GET is the subscription handshake, POST is event delivery.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.verifyWebhookHandler(w, r)
	case http.MethodPost:
		s.receiveWebhookHandler(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// verifyWebhookHandler answers the hub challenge during webhook setup.
func (s *Server) verifyWebhookHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && token == s.cfg.VerifyToken && s.cfg.VerifyToken != "" {
		slog.Info("Server.verifyWebhookHandler: webhook verified")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge)); err != nil {
			slog.Error("Server.verifyWebhookHandler: failed to write challenge", "error", err)
		}
		return
	}

	slog.Warn("Server.verifyWebhookHandler: verification failed", "mode", mode, "token_match", token == s.cfg.VerifyToken)
	http.Error(w, "Verification Failed", http.StatusForbidden)
}

// receiveWebhookHandler accepts one event delivery. It always acknowledges
// with 200: Facebook disables the subscription on repeated failures, so
// every internal problem degrades to a logged no-op.
func (s *Server) receiveWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Error("Server.receiveWebhookHandler: failed to decode payload", "error", err)
		writeJSONResponse(w, http.StatusOK, models.Received())
		return
	}

	scheduled := s.router.Route(payload)
	slog.Debug("Server.receiveWebhookHandler: delivery acknowledged", "scheduled", scheduled)
	writeJSONResponse(w, http.StatusOK, models.Received())
}

// statsHandler returns the interaction counters and static service metadata
// (GET /stats).
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	counters, err := s.st.Counters()
	if err != nil {
		slog.Error("Server.statsHandler: failed to fetch counters", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch stats"))
		return
	}

	snapshot := models.StatsSnapshot{
		CommentsAnalyzed: counters[models.CounterCommentsAnalyzed],
		DMsAnswered:      counters[models.CounterDMsAnswered],
		Model:            ModelLabel,
		Status:           "OPERATIONAL",
	}
	writeJSONResponse(w, http.StatusOK, snapshot)
}

// debugHandler shows configuration presence without secret values
// (GET /debug).
func (s *Server) debugHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	pageIDPreview := "NOT SET"
	if len(s.cfg.PageID) >= 6 {
		pageIDPreview = s.cfg.PageID[:6] + "..."
	} else if s.cfg.PageID != "" {
		pageIDPreview = s.cfg.PageID
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"page_id_configured":      s.cfg.PageID != "",
		"page_id_value":           pageIDPreview,
		"fb_token_configured":     s.cfg.PageAccessToken != "",
		"fb_token_length":         len(s.cfg.PageAccessToken),
		"verify_token_configured": s.cfg.VerifyToken != "",
		"gemini_key_configured":   s.cfg.GeminiAPIKey != "",
		"openai_key_configured":   s.cfg.OpenAIKey != "",
		"alerts_configured":       s.cfg.AlertsConfigured(),
		"environment":             s.cfg.Environment,
	})
}
