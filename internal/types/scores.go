// Package types provides type definitions for structured data used throughout the itype-engine system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Score range produced by the normalizer.
const (
	ScoreMin = 0.0
	ScoreMax = 100.0

	// ScoreNeutral is the fallback score for a dimension with no responses.
	ScoreNeutral = 50.0
)

// ScoreVector maps every trait dimension to a normalized score in [0,100].
// Exactly one entry per dimension; the normalizer guarantees no missing keys.
type ScoreVector map[Dimension]float64

// Clone returns an independent copy of the vector.
func (v ScoreVector) Clone() ScoreVector {
	out := make(ScoreVector, len(v))
	for d, s := range v {
		out[d] = s
	}
	return out
}

// Complete reports whether the vector has an entry for every fixed dimension.
func (v ScoreVector) Complete() bool {
	for _, d := range Dimensions {
		if _, ok := v[d]; !ok {
			return false
		}
	}
	return true
}

// ClampScore forces s into the valid score range.
func ClampScore(s float64) float64 {
	if s < ScoreMin {
		return ScoreMin
	}
	if s > ScoreMax {
		return ScoreMax
	}
	return s
}

// NeutralScores returns a vector with every dimension at the 50.0 midpoint.
func NeutralScores() ScoreVector {
	out := make(ScoreVector, len(Dimensions))
	for _, d := range Dimensions {
		out[d] = ScoreNeutral
	}
	return out
}
