// Package types provides type definitions for structured data used throughout the itype-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Likert scale bounds for questionnaire answers.
const (
	LikertMin = 1
	LikertMax = 5

	// LikertNeutral is the midpoint answer substituted for unanswered questions.
	LikertNeutral = 3
)

// RawResponse represents a single questionnaire answer: a Likert value tagged
// with the dimension it measures and whether the question was reverse-coded.
type RawResponse struct {
	Dimension Dimension `json:"dimension"`
	Value     int       `json:"value"`
	Reverse   bool      `json:"reverse,omitempty"`
}

// ClampLikert forces v into the valid Likert range.
func ClampLikert(v int) int {
	if v < LikertMin {
		return LikertMin
	}
	if v > LikertMax {
		return LikertMax
	}
	return v
}
