// Package types provides type definitions for structured data used throughout the itype-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult represents the best-fit archetype for a score vector, with the
// mismatch value that won the selection.
type MatchResult struct {
	Name      string    `json:"name"`
	Archetype Archetype `json:"archetype"`
	Mismatch  float64   `json:"mismatch"`
}

// ShadowArchetype represents the runner-up classification under noise.
type ShadowArchetype struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// NoShadow is the sentinel shadow when fewer than two archetypes received votes.
var NoShadow = ShadowArchetype{Name: "None", Probability: 0}

// StabilityReport represents the outcome of a Monte Carlo stability run.
// Probabilities covers every catalog archetype (zero-vote entries at 0) and
// sums to ~100 for any run that classified at least one trial.
type StabilityReport struct {
	Probabilities map[string]float64 `json:"probabilities"`
	Primary       string             `json:"primary"`
	Stability     float64            `json:"stability"`
	Shadow        ShadowArchetype    `json:"shadow"`
	Trials        int                `json:"trials"`
}

// Empty reports whether the run classified nothing (zero trials or an
// empty/invalid catalog).
func (r *StabilityReport) Empty() bool {
	return len(r.Probabilities) == 0
}

// Diagnostics represents raw per-archetype mismatch values, keyed by
// archetype name: plain weighted distances and energy-model values as two
// parallel mappings.
type Diagnostics struct {
	Distances map[string]float64 `json:"distances"`
	Energies  map[string]float64 `json:"energies"`
}

// AssessmentResult bundles every artifact of a completed assessment run.
type AssessmentResult struct {
	ID          uuid.UUID       `json:"id"`
	Scores      ScoreVector     `json:"scores"`
	Match       MatchResult     `json:"match"`
	Report      StabilityReport `json:"report"`
	Diagnostics Diagnostics     `json:"diagnostics"`
	RawAnswers  map[string]int  `json:"raw_answers,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
