// Package api provides the HTTP server for Holdfast.
// It exposes the escrow REST API under /v1 plus health and metrics endpoints.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/holdfast-io/holdfast/internal/app/escrow"
	"github.com/holdfast-io/holdfast/internal/domain"
	"github.com/holdfast-io/holdfast/internal/health"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// actorHeader carries the caller principal. Authentication happens upstream
// (gateway or CLI); the engine treats the value as an opaque identity.
const actorHeader = "X-Holdfast-Actor"

// Server is the Holdfast HTTP API server.
type Server struct {
	svc            *escrow.Service
	checker        *health.Checker
	metricsEnabled bool
	version        string
}

// NewServer creates a new API server around the escrow service.
func NewServer(svc *escrow.Service) *Server {
	return &Server{svc: svc, version: "0.1.0"}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetChecker attaches the health checker so /health reports per-check status.
func (s *Server) SetChecker(c *health.Checker) { s.checker = c }

// SetVersion overrides the version string reported by /api/version.
func (s *Server) SetVersion(v string) { s.version = v }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	// Health check for load balancers and the CLI status command
	r.Get("/health", s.handleHealth)

	// API status endpoint
	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "Holdfast is running",
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": s.version,
		})
	})

	// Escrow endpoints
	r.Route("/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.handleCreateTask)
			r.Get("/", s.handleListTasks)
			r.Get("/{id}", s.handleGetTask)
			r.Post("/{id}/confirm", s.handleConfirmTask)
			r.Post("/{id}/cancel", s.handleCancelTask)
		})
		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", s.handleCreateReview)
			r.Get("/", s.handleListReviews)
			r.Get("/{id}", s.handleGetReview)
			r.Post("/{id}/complete", s.handleCompleteReview)
			r.Post("/{id}/cancel", s.handleCancelReview)
		})
		r.Post("/tips", s.handleSendTip)
		r.Route("/treasury", func(r chi.Router) {
			r.Get("/", s.handleTreasury)
			r.Post("/withdraw", s.handleWithdrawTreasury)
		})
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{principal}", s.handleAccountBalance)
			r.Post("/{principal}/deposit", s.handleAccountDeposit)
			r.Get("/{principal}/history", s.handleAccountHistory)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "Holdfast is running",
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
		return
	}

	status := "ok"
	code := http.StatusOK
	if !s.checker.IsHealthy() {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": s.checker.Statuses(),
	})
}

// actor extracts the caller principal from the request header.
func actor(r *http.Request) domain.Principal {
	return domain.Principal(r.Header.Get(actorHeader))
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps an engine error to its HTTP status and writes it.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

// statusForError maps the engine's sentinel errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidParticipant):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotTaskParticipant):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrReviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTaskAlreadyCompleted),
		errors.Is(err, domain.ErrReviewAlreadyCompleted),
		errors.Is(err, domain.ErrEscrowAlreadyReleased):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+actorHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
