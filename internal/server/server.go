// Package server provides the HTTP REST API for the assessment engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/itype-engine/internal/catalog"
	"github.com/jonathan/itype-engine/internal/db"
	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/questions"
	"github.com/jonathan/itype-engine/internal/server/ratelimit"
	"github.com/jonathan/itype-engine/internal/stability"
	"github.com/jonathan/itype-engine/internal/types"
)

// Server hosts the assessment engine over HTTP.
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	cat         *types.Catalog
	bank        *questions.Bank
	params      distance.Params
	stabOpts    stability.Options
	resultsCSV  string
	rateLimiter *ratelimit.Limiter
}

// Config holds server configuration
type Config struct {
	Port          int
	DatabaseURL   string
	CatalogPath   string
	QuestionsPath string
	ResultsCSV    string
	Params        distance.Params
	Stability     stability.Options
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load archetype catalog: %w", err)
	}

	bank, err := questions.Load(cfg.QuestionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	// The database is optional; assessment storage endpoints answer 503
	// without it, everything else works.
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	params := cfg.Params
	if params.Policy == "" {
		params.Policy = distance.PolicyWeighted
	}

	stabOpts := cfg.Stability
	if stabOpts.Trials == 0 {
		stabOpts.Trials = stability.DefaultTrials
	}
	if stabOpts.Noise == 0 {
		stabOpts.Noise = stability.DefaultNoise
	}
	if stabOpts.Workers == 0 {
		stabOpts.Workers = 1
	}

	s := &Server{
		db:          database,
		cat:         cat,
		bank:        bank,
		params:      params,
		stabOpts:    stabOpts,
		resultsCSV:  cfg.ResultsCSV,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Catalog and question bank
	mux.HandleFunc("GET /archetypes", s.handleListArchetypes)
	mux.HandleFunc("GET /archetypes/{name}", s.handleGetArchetype)
	mux.HandleFunc("GET /questions", s.handleListQuestions)

	// Engine operations
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("POST /simulate", s.handleSimulate)
	mux.HandleFunc("POST /diagnostics", s.handleDiagnostics)

	// Full assessment runs
	mux.HandleFunc("POST /assessments", s.handleCreateAssessment)
	mux.HandleFunc("POST /assessments/stream", s.handleAssessmentStream)

	// Stored assessment CRUD
	mux.HandleFunc("GET /assessments", s.handleListAssessments)
	mux.HandleFunc("GET /assessments/{id}", s.handleGetAssessment)
	mux.HandleFunc("DELETE /assessments/{id}", s.handleDeleteAssessment)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Long enough for streamed assessment runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start serves requests until SIGINT or SIGTERM, then drains in-flight
// requests before releasing the limiter and database.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.rateLimiter.Stop()
	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS answers preflight requests and stamps CORS headers on the rest.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects requests over the per-client budget with a 429.
// Limit headers go on every response, allowed or not.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientAddr(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes data as a JSON body with the given status.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// requireDB guards endpoints that need assessment storage. Returns false
// after writing the error response when no database is configured.
func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Database not configured")
		return false
	}
	return true
}

// clientAddr identifies the caller for rate limiting. The IP alone is
// enough; ports churn per connection.
// TODO: honor X-Forwarded-For once the deployment gains a trusted proxy.
func clientAddr(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit <= 0 {
		return
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
	h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
	h.Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
}

// rateLimitResponse answers a throttled request with 429 and retry hints.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	body := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if secs := int(info.RetryAfter.Seconds()); secs > 0 {
		body["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	log.Printf("[rate-limit] limit=%d remaining=%d reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, body)
}
