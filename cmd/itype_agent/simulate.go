package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/observability"
	"github.com/jonathan/itype-engine/internal/stability"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the Monte Carlo stability simulation for a score vector",
	Long:  "Perturb a score vector with Gaussian noise over many trials, reclassify each perturbation, and report the archetype probability spectrum, stability percentage, and shadow archetype.",
	RunE:  runSimulate,
}

var (
	simAnswersFile   string
	simScoresFile    string
	simCatalogPath   string
	simQuestionsPath string
	simPolicy        string
	simTrials        int
	simNoise         float64
	simSeed          int64
	simWorkers       int
	simOutputFile    string
)

func init() {
	simulateCmd.Flags().StringVarP(&simAnswersFile, "answers", "a", "", "Path to answers JSON file (mutually exclusive with --scores)")
	simulateCmd.Flags().StringVarP(&simScoresFile, "scores", "s", "", "Path to scores JSON file (mutually exclusive with --answers)")
	simulateCmd.Flags().StringVarP(&simCatalogPath, "catalog", "c", "", "Path to archetype catalog (default data/archetypes.json)")
	simulateCmd.Flags().StringVarP(&simQuestionsPath, "questions", "q", "", "Path to question bank (default data/questions.json)")
	simulateCmd.Flags().StringVarP(&simPolicy, "policy", "p", "", "Mismatch policy: plain, weighted, zscore, or energy (default weighted)")
	simulateCmd.Flags().IntVar(&simTrials, "trials", 0, "Monte Carlo trial count (default 5000)")
	simulateCmd.Flags().Float64Var(&simNoise, "noise", 0, "Perturbation sigma as a fraction of the score range (default 0.07)")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 0, "Fixed random seed (0 = fresh seed per run)")
	simulateCmd.Flags().IntVar(&simWorkers, "workers", 0, "Simulation worker count")
	simulateCmd.Flags().StringVarP(&simOutputFile, "out", "o", "", "Path to output JSON file (optional)")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	scores, err := scoresFromFlags(simAnswersFile, simScoresFile, simQuestionsPath)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(simCatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load archetype catalog: %w", err)
	}

	opts := stability.DefaultOptions()
	if simPolicy != "" {
		policy, err := distance.ParsePolicy(simPolicy)
		if err != nil {
			return err
		}
		opts.Params = distance.DefaultParams().WithPolicy(policy)
	}
	if simTrials > 0 {
		opts.Trials = simTrials
	}
	if simNoise > 0 {
		opts.Noise = simNoise
	}
	opts.Seed = simSeed
	if simWorkers > 0 {
		opts.Workers = simWorkers
	}

	report, err := stability.Simulate(ctx, scores, cat, opts)
	if err != nil {
		return fmt.Errorf("stability simulation failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintSpectrum(&report)
	printer.PrintGrid(&report)

	if simOutputFile != "" {
		if err := writeJSONOutput(simOutputFile, report, ""); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", simOutputFile)
	}

	return nil
}
