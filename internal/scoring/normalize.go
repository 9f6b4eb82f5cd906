// Package scoring normalizes raw Likert questionnaire responses into trait
// score vectors.
package scoring

import (
	"github.com/jonathan/itype-engine/internal/types"
)

// Scale constants for the Likert-to-score transform
const (
	reversePivot = types.LikertMin + types.LikertMax
	likertSpan   = float64(types.LikertMax - types.LikertMin)
)

// adjustedValue clamps a raw answer to the Likert scale and applies reverse
// coding when the question is negatively keyed.
func adjustedValue(r types.RawResponse) int {
	v := types.ClampLikert(r.Value)
	if r.Reverse {
		return reversePivot - v
	}
	return v
}

// Normalize converts raw responses into a score vector with one entry per
// trait dimension. Each dimension's score is the mean of its adjusted answers
// rescaled to [0,100]; a dimension with no responses scores exactly 50.
func Normalize(responses []types.RawResponse) types.ScoreVector {
	sums := make(map[types.Dimension]int, len(types.Dimensions))
	counts := make(map[types.Dimension]int, len(types.Dimensions))
	for _, r := range responses {
		if !r.Dimension.Valid() {
			continue
		}
		sums[r.Dimension] += adjustedValue(r)
		counts[r.Dimension]++
	}

	scores := make(types.ScoreVector, len(types.Dimensions))
	for _, d := range types.Dimensions {
		n := counts[d]
		if n == 0 {
			scores[d] = types.ScoreNeutral
			continue
		}
		mean := float64(sums[d]) / float64(n)
		scores[d] = (mean - float64(types.LikertMin)) / likertSpan * types.ScoreMax
	}
	return scores
}
