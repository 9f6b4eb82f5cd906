// Package types provides type definitions for structured data used throughout the itype-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ScoreRequest represents a request to normalize raw answers into trait
// scores. Answers are keyed by question ID from the configured question bank.
type ScoreRequest struct {
	Answers map[string]int `json:"answers" validate:"required,min=1,dive,gte=1,lte=5"`
}

// MatchRequest represents a request to classify a score vector against the
// configured archetype catalog.
type MatchRequest struct {
	Scores map[string]float64 `json:"scores" validate:"required,min=1,dive,gte=0,lte=100"`
	Policy string             `json:"policy,omitempty" validate:"omitempty,oneof=plain weighted zscore energy"`
}

// SimulateRequest represents a request to run the Monte Carlo stability
// simulation for a score vector. Zero-valued options fall back to the server
// defaults.
type SimulateRequest struct {
	Scores  map[string]float64 `json:"scores" validate:"required,min=1,dive,gte=0,lte=100"`
	Trials  int                `json:"trials,omitempty" validate:"omitempty,gt=0,lte=1000000"`
	Noise   float64            `json:"noise,omitempty" validate:"omitempty,gt=0,lte=1"`
	Seed    int64              `json:"seed,omitempty"`
	Workers int                `json:"workers,omitempty" validate:"omitempty,gte=1,lte=256"`
	Policy  string             `json:"policy,omitempty" validate:"omitempty,oneof=plain weighted zscore energy"`
}

// DiagnosticsRequest represents a request for raw per-archetype distances and
// energies for a score vector.
type DiagnosticsRequest struct {
	Scores map[string]float64 `json:"scores" validate:"required,min=1,dive,gte=0,lte=100"`
}

// AssessmentRequest represents a full assessment submission: raw answers plus
// optional simulation overrides. Consent gates persistence; without it the
// result is returned but never stored.
type AssessmentRequest struct {
	Answers map[string]int `json:"answers" validate:"required,min=1,dive,gte=1,lte=5"`
	Trials  int            `json:"trials,omitempty" validate:"omitempty,gt=0,lte=1000000"`
	Noise   float64        `json:"noise,omitempty" validate:"omitempty,gt=0,lte=1"`
	Seed    int64          `json:"seed,omitempty"`
	Policy  string         `json:"policy,omitempty" validate:"omitempty,oneof=plain weighted zscore energy"`
	Consent bool           `json:"consent,omitempty"`
}

// Validate validates the ScoreRequest using the validator.
func (r *ScoreRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the MatchRequest using the validator.
func (r *MatchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SimulateRequest using the validator.
func (r *SimulateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the DiagnosticsRequest using the validator.
func (r *DiagnosticsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the AssessmentRequest using the validator.
func (r *AssessmentRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ScoreVectorFromMap converts wire-format scores into a ScoreVector,
// rejecting unknown dimension names and out-of-range values. Missing
// dimensions are permitted; mismatch computation works on the overlap.
func ScoreVectorFromMap(raw map[string]float64) (ScoreVector, error) {
	out := make(ScoreVector, len(raw))
	for name, val := range raw {
		d, ok := ParseDimension(name)
		if !ok {
			return nil, fmt.Errorf("unknown dimension %q", name)
		}
		if val < ScoreMin || val > ScoreMax {
			return nil, fmt.Errorf("score for %q out of range: %v", name, val)
		}
		out[d] = val
	}
	return out, nil
}
