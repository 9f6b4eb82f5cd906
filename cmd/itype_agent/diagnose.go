package main

import (
	"fmt"
	"os"

	"github.com/jonathan/itype-engine/internal/diagnostics"
	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/observability"
	"github.com/spf13/cobra"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Report raw per-archetype distances and energies",
	Long:  "Compute the raw mismatch diagnostics behind a classification: the weighted distance and energy-model value for every catalog archetype.",
	RunE:  runDiagnose,
}

var (
	diagAnswersFile   string
	diagScoresFile    string
	diagCatalogPath   string
	diagQuestionsPath string
	diagOutputFile    string
)

func init() {
	diagnoseCmd.Flags().StringVarP(&diagAnswersFile, "answers", "a", "", "Path to answers JSON file (mutually exclusive with --scores)")
	diagnoseCmd.Flags().StringVarP(&diagScoresFile, "scores", "s", "", "Path to scores JSON file (mutually exclusive with --answers)")
	diagnoseCmd.Flags().StringVarP(&diagCatalogPath, "catalog", "c", "", "Path to archetype catalog (default data/archetypes.json)")
	diagnoseCmd.Flags().StringVarP(&diagQuestionsPath, "questions", "q", "", "Path to question bank (default data/questions.json)")
	diagnoseCmd.Flags().StringVarP(&diagOutputFile, "out", "o", "", "Path to output JSON file (optional)")

	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(_ *cobra.Command, _ []string) error {
	scores, err := scoresFromFlags(diagAnswersFile, diagScoresFile, diagQuestionsPath)
	if err != nil {
		return err
	}

	cat, err := loadCatalog(diagCatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load archetype catalog: %w", err)
	}

	diag := diagnostics.Report(scores, cat, distance.DefaultParams())

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintDiagnostics(&diag, cat)

	if diagOutputFile != "" {
		if err := writeJSONOutput(diagOutputFile, diag, ""); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", diagOutputFile)
	}

	return nil
}
