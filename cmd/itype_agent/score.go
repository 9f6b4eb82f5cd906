package main

import (
	"fmt"
	"os"

	"github.com/jonathan/itype-engine/internal/observability"
	"github.com/jonathan/itype-engine/internal/scoring"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Normalize raw questionnaire answers into trait scores",
	Long:  "Normalize Likert answers from a JSON answer file into 0-100 trait scores, one per dimension. Reverse-keyed questions are inverted and unanswered questions fall back to the neutral midpoint.",
	RunE:  runScore,
}

var (
	scoreAnswersFile   string
	scoreQuestionsPath string
	scoreOutputFile    string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreAnswersFile, "answers", "a", "", "Path to answers JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreQuestionsPath, "questions", "q", "", "Path to question bank (default data/questions.json)")
	scoreCmd.Flags().StringVarP(&scoreOutputFile, "out", "o", "", "Path to output JSON file (optional)")
	_ = scoreCmd.MarkFlagRequired("answers")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(_ *cobra.Command, _ []string) error {
	af, err := loadAnswerFile(scoreAnswersFile)
	if err != nil {
		return err
	}

	bank, err := loadBank(scoreQuestionsPath)
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}

	responses, err := bank.Resolve(af.Answers)
	if err != nil {
		return err
	}
	scores := scoring.Normalize(responses)

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintScores(scores)

	if scoreOutputFile != "" {
		if err := writeJSONOutput(scoreOutputFile, map[string]any{"scores": scores}, ""); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", scoreOutputFile)
	}

	return nil
}
