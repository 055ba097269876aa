// Package server assembles the HTTP + WebSocket API: routing, middleware
// chain, and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haneulsoft/caseledger/internal/domain"
	"github.com/haneulsoft/caseledger/internal/server/handler"
	"github.com/haneulsoft/caseledger/internal/server/middleware"
	"github.com/haneulsoft/caseledger/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port            int
	CORSOrigins     []string
	APIKey          string // if empty, authentication is disabled
	RateLimitPerMin int    // if zero, rate limiting is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health       *handler.HealthHandler
	Cases        *handler.CaseHandler
	Parties      *handler.PartyHandler
	Bonds        *handler.BondHandler
	Enforcements *handler.EnforcementHandler
	Tasks        *handler.TaskHandler
	Dashboard    *handler.DashboardHandler
	Attachments  *handler.AttachmentHandler
}

// Server is the headless HTTP + WebSocket API server for the case ledger.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (rate limiting, logging, CORS, auth) and attaches
// the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// --- Register routes ---

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Case endpoints.
	mux.HandleFunc("GET /api/cases", handlers.Cases.ListCases)
	mux.HandleFunc("POST /api/cases", handlers.Cases.CreateCase)
	mux.HandleFunc("GET /api/cases/{id}", handlers.Cases.GetCase)
	mux.HandleFunc("PUT /api/cases/{id}", handlers.Cases.UpdateCase)
	mux.HandleFunc("POST /api/cases/{id}/close", handlers.Cases.CloseCase)
	mux.HandleFunc("GET /api/cases/{id}/timeline", handlers.Cases.GetTimeline)

	// Party endpoints (masked output).
	mux.HandleFunc("GET /api/parties", handlers.Parties.ListParties)
	mux.HandleFunc("POST /api/parties", handlers.Parties.CreateParty)
	mux.HandleFunc("GET /api/parties/{id}", handlers.Parties.GetParty)
	mux.HandleFunc("PUT /api/parties/{id}", handlers.Parties.UpdateParty)

	// Bond endpoints.
	mux.HandleFunc("GET /api/cases/{id}/bond", handlers.Bonds.GetBond)
	mux.HandleFunc("PUT /api/cases/{id}/bond", handlers.Bonds.SaveBond)
	mux.HandleFunc("DELETE /api/cases/{id}/bond", handlers.Bonds.DeleteBond)

	// Enforcement endpoints.
	mux.HandleFunc("GET /api/cases/{id}/enforcements", handlers.Enforcements.ListEnforcements)
	mux.HandleFunc("POST /api/cases/{id}/enforcements", handlers.Enforcements.RecordEnforcement)

	// Task and deadline endpoints.
	mux.HandleFunc("GET /api/tasks", handlers.Tasks.ListTasks)
	mux.HandleFunc("POST /api/tasks", handlers.Tasks.CreateTask)
	mux.HandleFunc("GET /api/tasks/deadlines", handlers.Tasks.ListDeadlines)
	mux.HandleFunc("PUT /api/tasks/{id}", handlers.Tasks.UpdateTask)
	mux.HandleFunc("POST /api/tasks/{id}/complete", handlers.Tasks.CompleteTask)

	// Attachment endpoints.
	mux.HandleFunc("POST /api/cases/{id}/attachments", handlers.Attachments.Upload)
	mux.HandleFunc("GET /api/cases/{id}/attachments", handlers.Attachments.ListAttachments)
	mux.HandleFunc("GET /api/attachments/{id}", handlers.Attachments.Download)
	mux.HandleFunc("DELETE /api/attachments/{id}", handlers.Attachments.DeleteAttachment)

	// Dashboard endpoint.
	mux.HandleFunc("GET /api/dashboard", handlers.Dashboard.GetDashboard)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	// Apply auth middleware (skips if APIKey is empty).
	h = middleware.Auth(cfg.APIKey)(h)

	// Apply per-client rate limiting when configured.
	if limiter != nil && cfg.RateLimitPerMin > 0 {
		h = middleware.RateLimit(limiter, cfg.RateLimitPerMin, time.Minute)(h)
	}

	// Apply request logging middleware.
	h = middleware.Logging(logger)(h)

	// Apply CORS middleware.
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
