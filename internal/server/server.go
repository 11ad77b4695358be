// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/sasage-tui/internal/chatapi"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr matches the development base URL.
	DefaultAddr = "127.0.0.1:8000"

	// MaxRequestBodySize caps request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// Version is reported by /health.
	Version = "1.0.0"

	// TriggerError makes the chat handler answer HTTP 500.
	TriggerError = "/error"

	// TriggerEmpty makes the chat handler answer without a response field.
	TriggerEmpty = "/empty"
)

// ============================================================================
// CONFIG
// ============================================================================

// Config configures the mock server.
type Config struct {
	// Addr is the listen address.
	Addr string

	// AllowedOrigins lists browser origins permitted by CORS.
	AllowedOrigins []string

	// Delay is added before every chat reply, to exercise loading states.
	Delay time.Duration

	// RequestsPerSecond limits each client IP. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns a config for local development.
func DefaultConfig() Config {
	return Config{
		Addr:              DefaultAddr,
		AllowedOrigins:    []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// ============================================================================
// SERVER STATS
// ============================================================================

// Stats tracks request counters.
type Stats struct {
	ChatRequests atomic.Int64
	Failures     atomic.Int64
	StartTime    time.Time
}

// Uptime returns how long the server has been running.
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the mock chat HTTP server.
type Server struct {
	cfg     Config
	router  *chi.Mux
	logger  *zap.Logger
	stats   *Stats
	limiter *RateLimiter

	mu     sync.Mutex
	server *http.Server
}

// New creates a Server. A nil logger discards logs.
func New(cfg Config, logger *zap.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		logger: logger.Named("mock-server"),
		stats:  &Stats{StartTime: time.Now()},
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst)
	}

	s.setupRoutes()
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Stats returns the live counters.
func (s *Server) Stats() *Stats {
	return s.stats
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(LoggingMiddleware(s.logger))
	r.Use(SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	if s.limiter != nil {
		r.Use(RateLimitMiddleware(s.limiter))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(api chi.Router) {
		api.Post("/chat", s.handleChat)
	})
}

// ============================================================================
// CHAT HANDLER
// ============================================================================

// handleChat handles POST /api/v1/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.stats.ChatRequests.Add(1)

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	var req chatapi.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if s.cfg.Delay > 0 {
		select {
		case <-time.After(s.cfg.Delay):
		case <-r.Context().Done():
			return
		}
	}

	conversationID := "mock_" + uuid.NewString()
	if req.ConversationID != nil && *req.ConversationID != "" {
		conversationID = *req.ConversationID
	}

	switch message {
	case TriggerError:
		s.stats.Failures.Add(1)
		s.writeError(w, http.StatusInternalServerError, "simulated failure")
		return
	case TriggerEmpty:
		s.writeJSON(w, http.StatusOK, map[string]string{"conversation_id": conversationID})
		return
	}

	s.writeJSON(w, http.StatusOK, chatapi.ChatResponse{
		Response:       MockReply(message),
		ConversationID: conversationID,
	})
}

// MockReply is the canned reply for message.
func MockReply(message string) string {
	return fmt.Sprintf("Bạn vừa nói: %s", message)
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ChatRequests  int64  `json:"chat_requests"`
	Failures      int64  `json:"failures"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		UptimeSeconds: int64(s.stats.Uptime().Seconds()),
		ChatRequests:  s.stats.ChatRequests.Load(),
		Failures:      s.stats.Failures.Load(),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("server started", zap.String("addr", ln.Addr().String()), zap.String("version", Version))
	return srv.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.logger.Info("server shutting down",
		zap.Int64("chat_requests", s.stats.ChatRequests.Load()),
		zap.Int64("failures", s.stats.Failures.Load()),
	)
	return srv.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"code":    status,
		},
	})
}
