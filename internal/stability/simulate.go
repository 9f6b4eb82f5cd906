// Package stability estimates classification robustness with a Monte Carlo
// perturbation simulation.
package stability

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/matching"
	"github.com/jonathan/itype-engine/internal/types"
)

// Simulation defaults
const (
	DefaultTrials = 5000
	DefaultNoise  = 0.07
)

// cancelCheckInterval is how many trials a worker runs between cancellation
// polls.
const cancelCheckInterval = 256

// Options configures a stability run.
type Options struct {
	// Trials is the number of perturbation rounds.
	Trials int
	// Noise is the perturbation standard deviation as a fraction of the
	// full score range.
	Noise float64
	// Seed fixes the random source for reproducible runs. Zero draws a
	// fresh seed from the clock.
	Seed int64
	// Workers fans trials out across a pool when greater than one. Each
	// worker owns an independent random source derived from Seed.
	Workers int
	// Params selects the mismatch model used to classify each trial.
	Params distance.Params
}

// DefaultOptions returns the standard single-worker configuration.
func DefaultOptions() Options {
	return Options{
		Trials:  DefaultTrials,
		Noise:   DefaultNoise,
		Workers: 1,
		Params:  distance.DefaultParams(),
	}
}

// Simulate perturbs the base scores Trials times with Gaussian noise,
// reclassifies each perturbed vector, and reports the resulting archetype
// distribution. A zero trial count or a catalog with no valid entries yields
// an empty report rather than an error.
func Simulate(ctx context.Context, scores types.ScoreVector, catalog *types.Catalog, opts Options) (types.StabilityReport, error) {
	if opts.Trials <= 0 || catalog.ValidCount() == 0 {
		return types.StabilityReport{}, nil
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > opts.Trials {
		workers = opts.Trials
	}

	if workers == 1 {
		counts, err := runTrials(ctx, rand.New(rand.NewSource(seed)), opts.Trials, scores, catalog, opts)
		if err != nil {
			return types.StabilityReport{}, err
		}
		return buildReport(counts, catalog, opts.Trials), nil
	}

	results := make([]map[string]int, workers)
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		share := opts.Trials / workers
		if i < opts.Trials%workers {
			share++
		}
		workerSeed := seed + int64(i)
		slot := i
		g.Go(func() error {
			counts, err := runTrials(gCtx, rand.New(rand.NewSource(workerSeed)), share, scores, catalog, opts)
			if err != nil {
				return err
			}
			results[slot] = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.StabilityReport{}, err
	}

	merged := make(map[string]int)
	for _, counts := range results {
		for name, c := range counts {
			merged[name] += c
		}
	}
	return buildReport(merged, catalog, opts.Trials), nil
}

// runTrials executes a batch of perturbation rounds with a private random
// source, tallying the winning archetype of each round. The perturbation
// buffer is reused across rounds to keep the hot loop allocation-free.
func runTrials(ctx context.Context, rng *rand.Rand, trials int, base types.ScoreVector, catalog *types.Catalog, opts Options) (map[string]int, error) {
	counts := make(map[string]int)
	perturbed := make(types.ScoreVector, len(base))
	sigma := opts.Noise * types.ScoreMax

	for i := 0; i < trials; i++ {
		if i%cancelCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		for _, d := range types.Dimensions {
			v, ok := base[d]
			if !ok {
				continue
			}
			perturbed[d] = types.ClampScore(v + rng.NormFloat64()*sigma)
		}

		if match, ok := matching.Best(perturbed, catalog, opts.Params); ok {
			counts[match.Name]++
		}
	}
	return counts, nil
}

// buildReport converts per-archetype tallies into the percentage
// distribution, primary, and shadow. Equal percentages rank in catalog
// order.
func buildReport(counts map[string]int, catalog *types.Catalog, trials int) types.StabilityReport {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return types.StabilityReport{}
	}

	type entry struct {
		name string
		pct  float64
	}
	ranked := make([]entry, 0, catalog.Len())
	probs := make(map[string]float64, catalog.Len())
	for i := range catalog.Archetypes {
		a := &catalog.Archetypes[i]
		if !a.Valid() {
			continue
		}
		pct := float64(counts[a.Name]) / float64(total) * 100
		probs[a.Name] = pct
		ranked = append(ranked, entry{name: a.Name, pct: pct})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].pct > ranked[j].pct })

	shadow := types.NoShadow
	if len(ranked) > 1 && ranked[1].pct > 0 {
		shadow = types.ShadowArchetype{Name: ranked[1].name, Probability: ranked[1].pct}
	}

	return types.StabilityReport{
		Probabilities: probs,
		Primary:       ranked[0].name,
		Stability:     ranked[0].pct,
		Shadow:        shadow,
		Trials:        trials,
	}
}
