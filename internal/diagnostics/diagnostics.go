// Package diagnostics exposes the raw per-archetype mismatch values behind a
// classification, for debugging and visualization.
package diagnostics

import (
	"math"

	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/types"
)

// Report returns parallel distance and energy mappings for every valid
// catalog archetype, keyed by name. The distance mapping uses the weighted
// Euclidean model and numerically matches what the matcher computes under
// that policy. Archetypes sharing no dimension with scores are omitted;
// their mismatch is infinite and infinity has no JSON encoding.
func Report(scores types.ScoreVector, catalog *types.Catalog, params distance.Params) types.Diagnostics {
	distances := make(map[string]float64, catalog.Len())
	energies := make(map[string]float64, catalog.Len())

	weighted := params.WithPolicy(distance.PolicyWeighted)
	energy := params.WithPolicy(distance.PolicyEnergy)

	for i := range catalog.Archetypes {
		a := &catalog.Archetypes[i]
		if !a.Valid() {
			continue
		}
		d := distance.Mismatch(scores, a.Signature, weighted)
		if math.IsInf(d, 1) {
			continue
		}
		distances[a.Name] = d
		energies[a.Name] = distance.Mismatch(scores, a.Signature, energy)
	}

	return types.Diagnostics{Distances: distances, Energies: energies}
}
