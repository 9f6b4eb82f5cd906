package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/itype-engine/internal/db"
)

// parseQueryInt reads an integer query parameter. Missing, malformed, or
// negative values fall back to defaultValue; a positive maxValue caps the
// result.
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return defaultValue
	}
	if maxValue > 0 && n > maxValue {
		return maxValue
	}
	return n
}

// assessmentID parses the {id} path segment, writing a 400 response when it
// is not a UUID.
func (s *Server) assessmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid assessment ID")
		return uuid.Nil, false
	}
	return id, true
}

// handleListAssessments lists stored assessments, newest first.
func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	filters := db.AssessmentFilters{
		Archetype: r.URL.Query().Get("archetype"),
		Limit:     parseQueryInt(r, "limit", 50, 200),
	}

	assessments, err := s.db.ListAssessments(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"assessments": assessments,
		"count":       len(assessments),
		"limit":       filters.Limit,
	})
}

// handleGetAssessment retrieves a stored assessment by ID.
func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.assessmentID(w, r)
	if !ok || !s.requireDB(w) {
		return
	}

	record, err := s.db.GetAssessment(r.Context(), id)
	switch {
	case err != nil:
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
	case record == nil:
		s.errorResponse(w, http.StatusNotFound, "Assessment not found")
	default:
		s.jsonResponse(w, http.StatusOK, record)
	}
}

// handleDeleteAssessment deletes a stored assessment by ID.
func (s *Server) handleDeleteAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := s.assessmentID(w, r)
	if !ok || !s.requireDB(w) {
		return
	}

	err := s.db.DeleteAssessment(r.Context(), id)
	switch {
	case errors.Is(err, db.ErrAssessmentNotFound):
		s.errorResponse(w, http.StatusNotFound, "Assessment not found")
	case err != nil:
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
	default:
		s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
