package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/jonathan/itype-engine/internal/diagnostics"
	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/matching"
	"github.com/jonathan/itype-engine/internal/pipeline"
	"github.com/jonathan/itype-engine/internal/scoring"
	"github.com/jonathan/itype-engine/internal/stability"
	"github.com/jonathan/itype-engine/internal/types"
)

// paramsFor returns the server distance parameters with an optional
// per-request policy override.
func (s *Server) paramsFor(policy string) (distance.Params, error) {
	if policy == "" {
		return s.params, nil
	}
	parsed, err := distance.ParsePolicy(policy)
	if err != nil {
		return distance.Params{}, err
	}
	return s.params.WithPolicy(parsed), nil
}

// handleListArchetypes returns the full catalog in document order
func (s *Server) handleListArchetypes(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"archetypes": s.cat.Archetypes,
		"count":      s.cat.Len(),
	})
}

// handleGetArchetype returns a single catalog entry by name
func (s *Server) handleGetArchetype(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "Archetype name is required")
		return
	}

	archetype, ok := s.cat.Get(name)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Archetype not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, archetype)
}

// handleListQuestions returns the configured question bank
func (s *Server) handleListQuestions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"questions": s.bank.Questions,
		"count":     s.bank.Len(),
	})
}

// handleScore normalizes raw answers into dimension scores
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req types.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	responses, err := s.bank.Resolve(req.Answers)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	scores := scoring.Normalize(responses)
	s.jsonResponse(w, http.StatusOK, map[string]any{"scores": scores})
}

// handleMatch classifies a score vector against the catalog
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req types.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	scores, err := types.ScoreVectorFromMap(req.Scores)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := s.paramsFor(req.Policy)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	match, ok := matching.Best(scores, s.cat, params)
	if !ok {
		s.errorResponse(w, http.StatusBadRequest, "No archetype shares dimensions with the provided scores")
		return
	}

	s.jsonResponse(w, http.StatusOK, match)
}

// handleSimulate runs the Monte Carlo stability simulation for a score vector
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req types.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	scores, err := types.ScoreVectorFromMap(req.Scores)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := s.paramsFor(req.Policy)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := s.stabOpts
	if req.Trials > 0 {
		opts.Trials = req.Trials
	}
	if req.Noise > 0 {
		opts.Noise = req.Noise
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.Workers > 0 {
		opts.Workers = req.Workers
	}
	opts.Params = params

	report, err := stability.Simulate(r.Context(), scores, s.cat, opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Simulation failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}

// handleDiagnostics returns per-archetype distances and energies
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	var req types.DiagnosticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	scores, err := types.ScoreVectorFromMap(req.Scores)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	diag := diagnostics.Report(scores, s.cat, s.params)
	s.jsonResponse(w, http.StatusOK, diag)
}

// assessmentRunOptions builds pipeline options for a full assessment request.
func (s *Server) assessmentRunOptions(req *types.AssessmentRequest, params distance.Params) pipeline.RunOptions {
	opts := s.stabOpts
	if req.Trials > 0 {
		opts.Trials = req.Trials
	}
	if req.Noise > 0 {
		opts.Noise = req.Noise
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}

	return pipeline.RunOptions{
		Catalog:    s.cat,
		Bank:       s.bank,
		Answers:    req.Answers,
		Params:     params,
		Stability:  opts,
		Consent:    req.Consent,
		ResultsCSV: s.resultsCSV,
		DB:         s.db,
		Out:        io.Discard,
	}
}

// handleCreateAssessment runs the full assessment pipeline synchronously
func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req types.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	params, err := s.paramsFor(req.Policy)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := pipeline.Run(r.Context(), s.assessmentRunOptions(&req, params))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Assessment failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleAssessmentStream runs an assessment and streams progress via SSE
func (s *Server) handleAssessmentStream(w http.ResponseWriter, r *http.Request) {
	var req types.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	params, err := s.paramsFor(req.Policy)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Setup SSE writer
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting streaming assessment run...")

	opts := s.assessmentRunOptions(&req, params)
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("step", event); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	}

	// Run pipeline synchronously (blocking until complete)
	result, err := pipeline.Run(r.Context(), opts)
	if err != nil {
		log.Printf("Assessment run failed: %v", err)
		sse.WriteError(err.Error())
		return
	}

	sse.WriteComplete(result.ID.String(), "completed")
	log.Printf("Streaming assessment run completed")
}
