package main

import (
	"fmt"
	"os"

	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/matching"
	"github.com/jonathan/itype-engine/internal/observability"
	"github.com/jonathan/itype-engine/internal/types"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Classify a score vector against the archetype catalog",
	Long:  "Classify raw answers or a precomputed score vector against the archetype catalog and report the best-fit archetype with its mismatch value.",
	RunE:  runMatch,
}

var (
	matchAnswersFile   string
	matchScoresFile    string
	matchCatalogPath   string
	matchQuestionsPath string
	matchPolicy        string
	matchOutputFile    string
)

func init() {
	matchCmd.Flags().StringVarP(&matchAnswersFile, "answers", "a", "", "Path to answers JSON file (mutually exclusive with --scores)")
	matchCmd.Flags().StringVarP(&matchScoresFile, "scores", "s", "", "Path to scores JSON file (mutually exclusive with --answers)")
	matchCmd.Flags().StringVarP(&matchCatalogPath, "catalog", "c", "", "Path to archetype catalog (default data/archetypes.json)")
	matchCmd.Flags().StringVarP(&matchQuestionsPath, "questions", "q", "", "Path to question bank (default data/questions.json)")
	matchCmd.Flags().StringVarP(&matchPolicy, "policy", "p", "", "Mismatch policy: plain, weighted, zscore, or energy (default weighted)")
	matchCmd.Flags().StringVarP(&matchOutputFile, "out", "o", "", "Path to output JSON file (optional)")

	rootCmd.AddCommand(matchCmd)
}

func runMatch(_ *cobra.Command, _ []string) error {
	scores, err := scoresFromFlags(matchAnswersFile, matchScoresFile, matchQuestionsPath)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(matchCatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load archetype catalog: %w", err)
	}

	params := distance.DefaultParams()
	if matchPolicy != "" {
		policy, err := distance.ParsePolicy(matchPolicy)
		if err != nil {
			return err
		}
		params = params.WithPolicy(policy)
	}

	match, ok := matching.Best(scores, cat, params)
	if !ok {
		return fmt.Errorf("no archetype shares dimensions with the score vector")
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintResult(&types.AssessmentResult{Scores: scores, Match: match})

	if matchOutputFile != "" {
		if err := writeJSONOutput(matchOutputFile, match, ""); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", matchOutputFile)
	}

	return nil
}
