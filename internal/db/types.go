package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/itype-engine/internal/types"
)

// AssessmentRecord represents a persisted assessment row.
type AssessmentRecord struct {
	ID            uuid.UUID             `json:"id"`
	Primary       string                `json:"primary_archetype"`
	Stability     float64               `json:"stability"`
	Shadow        types.ShadowArchetype `json:"shadow"`
	Scores        types.ScoreVector     `json:"scores"`
	Probabilities map[string]float64    `json:"probabilities,omitempty"`
	Distances     map[string]float64    `json:"distances,omitempty"`
	Energies      map[string]float64    `json:"energies,omitempty"`
	RawAnswers    map[string]int        `json:"raw_answers,omitempty"`
	Trials        int                   `json:"trials"`
	Noise         float64               `json:"noise"`
	Policy        string                `json:"policy"`
	CreatedAt     time.Time             `json:"created_at"`
}

// AssessmentSummary is a lightweight view of an assessment for listing.
type AssessmentSummary struct {
	ID        uuid.UUID `json:"id"`
	Primary   string    `json:"primary_archetype"`
	Stability float64   `json:"stability"`
	Shadow    string    `json:"shadow_archetype"`
	CreatedAt time.Time `json:"created_at"`
}

// AssessmentFilters holds optional filters for listing assessments.
type AssessmentFilters struct {
	Archetype string
	Limit     int
}
