// Package matching selects the best-fit archetype for a trait score vector.
package matching

import (
	"math"

	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/types"
)

// Best returns the catalog entry with the lowest mismatch against scores
// under the given params. Ties keep the earliest catalog entry, so catalog
// document order decides deterministically. The boolean is false when no
// entry is valid or none shares a dimension with scores; callers treat that
// as a catalog configuration error, not a runtime failure.
func Best(scores types.ScoreVector, catalog *types.Catalog, params distance.Params) (types.MatchResult, bool) {
	best := types.MatchResult{Mismatch: math.Inf(1)}
	found := false

	for i := range catalog.Archetypes {
		a := &catalog.Archetypes[i]
		if !a.Valid() {
			continue
		}
		m := distance.Mismatch(scores, a.Signature, params)
		if math.IsInf(m, 1) {
			continue
		}
		if m < best.Mismatch {
			best = types.MatchResult{Name: a.Name, Archetype: *a, Mismatch: m}
			found = true
		}
	}

	return best, found
}
