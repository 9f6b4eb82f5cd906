// Package distance implements the pluggable mismatch models that measure how
// far a trait score vector sits from an archetype signature.
package distance

import (
	"fmt"
	"math"

	"github.com/jonathan/itype-engine/internal/types"
)

// Policy selects which mismatch model to apply.
type Policy string

// Supported mismatch policies.
const (
	// PolicyPlain is unweighted Euclidean distance in raw score units.
	PolicyPlain Policy = "plain"
	// PolicyWeighted is weighted Euclidean distance over scale-normalized differences.
	PolicyWeighted Policy = "weighted"
	// PolicyZScore standardizes both vectors over their shared dimensions
	// before the weighted Euclidean step, comparing profile shape rather
	// than absolute level.
	PolicyZScore Policy = "zscore"
	// PolicyEnergy is the weighted distance plus a nonlinear curvature term
	// and an archetype rarity bias.
	PolicyEnergy Policy = "energy"
)

// Reference tunables for the energy landscape model
const (
	DefaultLambda = 0.6
	DefaultRho    = 0.25

	energyExponent = 1.5
)

// scaleNorm normalizes per-dimension differences so weights stay comparable
// across policies.
const scaleNorm = types.ScoreMax

// ParsePolicy returns the Policy named by name, defaulting to PolicyWeighted
// for an empty string.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case PolicyPlain, PolicyWeighted, PolicyZScore, PolicyEnergy:
		return Policy(name), nil
	case "":
		return PolicyWeighted, nil
	}
	return "", fmt.Errorf("unknown mismatch policy %q", name)
}

// Params configures mismatch computation. The zero value is not usable;
// start from DefaultParams.
type Params struct {
	Policy Policy

	// Weights maps dimensions to relative importance. A nil map or a
	// missing entry means weight 1.
	Weights map[types.Dimension]float64

	// Lambda scales the energy model's nonlinear curvature term.
	Lambda float64
	// Rho scales the energy model's rarity bias.
	Rho float64
}

// DefaultParams returns the standard configuration: weighted Euclidean with
// uniform weights and reference energy tunables.
func DefaultParams() Params {
	return Params{
		Policy: PolicyWeighted,
		Lambda: DefaultLambda,
		Rho:    DefaultRho,
	}
}

// WithPolicy returns a copy of p with the policy replaced.
func (p Params) WithPolicy(policy Policy) Params {
	p.Policy = policy
	return p
}

func (p Params) weight(d types.Dimension) float64 {
	if p.Weights == nil {
		return 1
	}
	if w, ok := p.Weights[d]; ok {
		return w
	}
	return 1
}

// sharedDims returns the trait dimensions present in both vectors, in
// canonical dimension order.
func sharedDims(scores types.ScoreVector, sig types.Signature) []types.Dimension {
	shared := make([]types.Dimension, 0, len(types.Dimensions))
	for _, d := range types.Dimensions {
		if _, ok := scores[d]; !ok {
			continue
		}
		if _, ok := sig[d]; !ok {
			continue
		}
		shared = append(shared, d)
	}
	return shared
}

// Mismatch returns a non-negative fit value for scores against sig under the
// configured policy; lower means a better fit. Vectors sharing no dimensions
// yield positive infinity so the archetype can never win a match.
func Mismatch(scores types.ScoreVector, sig types.Signature, p Params) float64 {
	shared := sharedDims(scores, sig)
	if len(shared) == 0 {
		return math.Inf(1)
	}

	switch p.Policy {
	case PolicyPlain:
		return plainDistance(scores, sig, shared)
	case PolicyZScore:
		return zscoreDistance(scores, sig, shared, p)
	case PolicyEnergy:
		return energyValue(scores, sig, shared, p)
	default:
		return weightedDistance(scores, sig, shared, p)
	}
}

// plainDistance is Euclidean distance in raw score units, the historical
// reference model.
func plainDistance(scores types.ScoreVector, sig types.Signature, shared []types.Dimension) float64 {
	sum := 0.0
	for _, d := range shared {
		delta := scores[d] - sig[d]
		sum += delta * delta
	}
	return math.Sqrt(sum)
}

func weightedDistance(scores types.ScoreVector, sig types.Signature, shared []types.Dimension, p Params) float64 {
	sum := 0.0
	for _, d := range shared {
		delta := (scores[d] - sig[d]) / scaleNorm
		sum += p.weight(d) * delta * delta
	}
	return math.Sqrt(sum)
}

// standardize maps each shared-dimension value to its z-score within the
// vector. A vector with zero variance across the shared dimensions
// standardizes to all zeros.
func standardize(values func(types.Dimension) float64, shared []types.Dimension) map[types.Dimension]float64 {
	n := float64(len(shared))
	mean := 0.0
	for _, d := range shared {
		mean += values(d)
	}
	mean /= n

	variance := 0.0
	for _, d := range shared {
		dev := values(d) - mean
		variance += dev * dev
	}
	variance /= n

	z := make(map[types.Dimension]float64, len(shared))
	if variance == 0 {
		for _, d := range shared {
			z[d] = 0
		}
		return z
	}
	std := math.Sqrt(variance)
	for _, d := range shared {
		z[d] = (values(d) - mean) / std
	}
	return z
}

func zscoreDistance(scores types.ScoreVector, sig types.Signature, shared []types.Dimension, p Params) float64 {
	zs := standardize(func(d types.Dimension) float64 { return scores[d] }, shared)
	zg := standardize(func(d types.Dimension) float64 { return sig[d] }, shared)

	sum := 0.0
	for _, d := range shared {
		delta := zs[d] - zg[d]
		sum += p.weight(d) * delta * delta
	}
	return math.Sqrt(sum)
}

// energyValue layers two terms on the weighted distance: a curvature term
// that punishes large per-dimension displacements superlinearly, and a
// rarity bias that makes high-signature archetypes harder to reach by
// chance. The bias depends only on the signature, so identical vectors
// still carry a positive energy floor.
func energyValue(scores types.ScoreVector, sig types.Signature, shared []types.Dimension, p Params) float64 {
	base := weightedDistance(scores, sig, shared, p)

	curvature := 0.0
	for _, d := range shared {
		delta := math.Abs(scores[d]-sig[d]) / scaleNorm
		curvature += p.weight(d) * math.Pow(delta, energyExponent)
	}

	sigMean := 0.0
	for d := range sig {
		sigMean += sig[d]
	}
	sigMean /= float64(len(sig))

	return base + p.Lambda*curvature + p.Rho*sigMean/scaleNorm
}
