// Package api provides the HTTP surface of Theta.
//
// It exposes the Facebook webhook endpoints (verification handshake and
// event delivery), the public stats endpoint, and liveness/debug probes.
// The webhook POST handler answers immediately after classification; the
// reply pipeline runs in the background so Facebook's delivery timeout is
// always met.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/teramind-labs/theta/internal/config"
	"github.com/teramind-labs/theta/internal/models"
	"github.com/teramind-labs/theta/internal/store"
)

// Timeouts for the HTTP server. Webhook deliveries are small; anything slow
// is a client problem.
const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 15 * time.Second
)

// EventRouter is the classification and scheduling capability behind
// POST /webhook.
type EventRouter interface {
	Route(payload models.WebhookPayload) int
}

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server is the Theta HTTP server.
type Server struct {
	cfg    config.Config
	router EventRouter
	st     store.Store
	addr   string
}

// NewServer creates the HTTP server around the given collaborators.
func NewServer(cfg config.Config, router EventRouter, st store.Store, opts ...Option) *Server {
	o := Opts{Addr: cfg.Addr}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{cfg: cfg, router: router, st: st, addr: o.Addr}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.homeHandler)
	mux.HandleFunc("/webhook", s.webhookHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/debug", s.debugHandler)
	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	slog.Info("Server.Run: Theta API listening", "addr", s.addr, "environment", s.cfg.Environment)
	return srv.ListenAndServe()
}
