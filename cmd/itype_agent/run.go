package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonathan/itype-engine/internal/config"
	"github.com/jonathan/itype-engine/internal/pipeline"
	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full assessment pipeline end-to-end",
	Long: `Orchestrates the entire assessment: answer resolution -> score normalization -> archetype matching -> stability simulation -> diagnostics -> persistence.

Configuration can be loaded from a JSON file using --config. Options carried in the answers file override config values, and command-line arguments override both.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath    string
	runAnswersFile   string
	runCatalogPath   string
	runQuestionsPath string
	runResultsCSV    string
	runPolicy        string
	runTrials        int
	runNoise         float64
	runSeed          int64
	runWorkers       int
	runConsent       bool
	runVerbose       bool
	runDatabaseURL   string
	runOutputFile    string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runAnswersFile, "answers", "a", "", "Path to answers JSON file (required)")
	runCommand.Flags().StringVarP(&runCatalogPath, "catalog", "c", "", "Path to archetype catalog")
	runCommand.Flags().StringVarP(&runQuestionsPath, "questions", "q", "", "Path to question bank")
	runCommand.Flags().StringVar(&runResultsCSV, "results-csv", "", "Path to the anonymous results log")
	runCommand.Flags().StringVarP(&runPolicy, "policy", "p", "", "Mismatch policy: plain, weighted, zscore, or energy")
	runCommand.Flags().IntVar(&runTrials, "trials", 0, "Monte Carlo trial count")
	runCommand.Flags().Float64Var(&runNoise, "noise", 0, "Perturbation sigma as a fraction of the score range")
	runCommand.Flags().Int64Var(&runSeed, "seed", 0, "Fixed random seed (0 = fresh seed per run)")
	runCommand.Flags().IntVar(&runWorkers, "workers", 0, "Simulation worker count")
	runCommand.Flags().BoolVar(&runConsent, "consent", false, "Consent to storing the anonymized result")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	runCommand.Flags().StringVarP(&runOutputFile, "out", "o", "", "Path to output result JSON file (optional)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Resolve the answers file (required)
	answersPath := runAnswersFile
	if answersPath == "" {
		return fmt.Errorf("--answers must be provided")
	}
	af, err := loadAnswerFile(answersPath)
	if err != nil {
		return err
	}

	// Step 3: Options carried in the answers file override config values
	if af.Policy != "" {
		cfg.Policy = af.Policy
	}
	if af.Trials > 0 {
		cfg.Trials = af.Trials
	}
	if af.Noise > 0 {
		cfg.Noise = af.Noise
	}
	if af.Seed != 0 {
		cfg.Seed = af.Seed
	}
	if af.Workers > 0 {
		cfg.Workers = af.Workers
	}

	// Step 4: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("catalog") {
		cfg.Catalog = runCatalogPath
	}
	if cmd.Flags().Changed("questions") {
		cfg.Questions = runQuestionsPath
	}
	if cmd.Flags().Changed("results-csv") {
		cfg.ResultsCSV = runResultsCSV
	}
	if cmd.Flags().Changed("policy") {
		cfg.Policy = runPolicy
	}
	if cmd.Flags().Changed("trials") {
		cfg.Trials = runTrials
	}
	if cmd.Flags().Changed("noise") {
		cfg.Noise = runNoise
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = runSeed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = runWorkers
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 5: Apply defaults for unset values and validate
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Consent comes from the answers file unless the flag was set explicitly
	consent := af.Consent
	if cmd.Flags().Changed("consent") {
		consent = runConsent
	}

	// Step 6: Database URL handling (optional; results are only stored with consent)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	params, err := cfg.DistanceParams()
	if err != nil {
		return err
	}
	stabOpts, err := cfg.StabilityOptions()
	if err != nil {
		return err
	}

	opts := pipeline.RunOptions{
		CatalogPath:   cfg.Catalog,
		QuestionsPath: cfg.Questions,
		Answers:       af.Answers,
		Params:        params,
		Stability:     stabOpts,
		Consent:       consent,
		ResultsCSV:    cfg.ResultsCSV,
		DatabaseURL:   cfg.DatabaseURL,
		Verbose:       cfg.Verbose,
		Out:           os.Stdout,
	}

	result, err := pipeline.Run(ctx, opts)
	if err != nil {
		return err
	}

	if runOutputFile != "" {
		if err := writeJSONOutput(runOutputFile, result, "schemas/assessment.schema.json"); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", runOutputFile)
	}

	return nil
}
