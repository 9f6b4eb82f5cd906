// Package pipeline provides the high-level orchestration for a full
// assessment run: resolve answers, score, match, simulate, diagnose, persist.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/itype-engine/internal/catalog"
	"github.com/jonathan/itype-engine/internal/db"
	"github.com/jonathan/itype-engine/internal/diagnostics"
	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/matching"
	"github.com/jonathan/itype-engine/internal/observability"
	"github.com/jonathan/itype-engine/internal/questions"
	"github.com/jonathan/itype-engine/internal/results"
	"github.com/jonathan/itype-engine/internal/scoring"
	"github.com/jonathan/itype-engine/internal/stability"
	"github.com/jonathan/itype-engine/internal/types"
)

// Pipeline step identifiers reported through the progress callback.
const (
	StepResolve     = "resolve_answers"
	StepScores      = "normalize_scores"
	StepMatch       = "match_archetype"
	StepSimulate    = "simulate_stability"
	StepDiagnostics = "compute_diagnostics"
	StepPersist     = "persist_result"
)

// Progress categories group steps for consumers that stream events.
const (
	CategoryScoring     = "scoring"
	CategoryMatching    = "matching"
	CategoryStability   = "stability"
	CategoryPersistence = "persistence"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the assessment pipeline
type RunOptions struct {
	CatalogPath   string
	QuestionsPath string
	Catalog       *types.Catalog  // Optional: direct injection, skips CatalogPath
	Bank          *questions.Bank // Optional: direct injection, skips QuestionsPath
	Answers       map[string]int
	Params        distance.Params
	Stability     stability.Options
	Consent       bool
	ResultsCSV    string
	DB            *db.DB // Optional: direct injection, skips DatabaseURL
	DatabaseURL   string
	Verbose       bool
	Out           io.Writer // defaults to os.Stdout
	OnProgress    ProgressCallback
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

// loadInputs resolves the catalog and question bank, preferring injected
// values over file paths.
func loadInputs(opts RunOptions) (*types.Catalog, *questions.Bank, error) {
	cat := opts.Catalog
	if cat == nil {
		loaded, err := catalog.Load(opts.CatalogPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading archetype catalog failed: %w", err)
		}
		cat = loaded
	}

	bank := opts.Bank
	if bank == nil {
		loaded, err := questions.Load(opts.QuestionsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading question bank failed: %w", err)
		}
		bank = loaded
	}

	return cat, bank, nil
}

// Run orchestrates the full assessment pipeline and returns the completed
// result. Persistence failures are reported as warnings, never as pipeline
// errors; the computed result always comes back to the caller.
func Run(ctx context.Context, opts RunOptions) (*types.AssessmentResult, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	printer := observability.NewPrinter(out)

	if opts.Params.Policy == "" {
		opts.Params.Policy = distance.PolicyWeighted
	}

	// Initialize database connection if configured. Injected connections
	// belong to the caller and are not closed here.
	database := opts.DB
	if database == nil && opts.DatabaseURL != "" {
		conn, err := db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Fprintf(out, "Warning: Failed to connect to database: %v\n", err)
			fmt.Fprintf(out, "Continuing without database persistence...\n")
		} else {
			defer conn.Close()
			database = conn
			if opts.Verbose {
				fmt.Fprintf(out, "[VERBOSE] Connected to database\n")
			}
		}
	}

	cat, bank, err := loadInputs(opts)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Step 1/5: Resolving %d answers against %d questions...\n", len(opts.Answers), bank.Len())
	responses, err := bank.Resolve(opts.Answers)
	if err != nil {
		return nil, fmt.Errorf("resolving answers failed: %w", err)
	}
	if defaulted := len(responses) - len(opts.Answers); defaulted > 0 && opts.Verbose {
		fmt.Fprintf(out, "[VERBOSE] %d unanswered questions defaulted to neutral\n", defaulted)
	}
	emitProgress(&opts, StepResolve, CategoryScoring,
		fmt.Sprintf("Resolved %d responses (%d answered, %d neutral)", len(responses), len(opts.Answers), len(responses)-len(opts.Answers)), nil)

	fmt.Fprintf(out, "Step 2/5: Normalizing dimension scores...\n")
	scores := scoring.Normalize(responses)
	if opts.Verbose {
		printer.PrintScores(scores)
	}
	emitProgress(&opts, StepScores, CategoryScoring, "Normalized responses onto the 0-100 scale", scores)

	fmt.Fprintf(out, "Step 3/5: Matching against %d archetypes...\n", cat.Len())
	match, ok := matching.Best(scores, cat, opts.Params)
	if !ok {
		return nil, fmt.Errorf("no archetype shares dimensions with the score vector")
	}
	emitProgress(&opts, StepMatch, CategoryMatching,
		fmt.Sprintf("Matched archetype %s (mismatch %.3f)", match.Name, match.Mismatch), match)

	stabOpts := opts.Stability
	if stabOpts.Trials == 0 {
		stabOpts = stability.DefaultOptions()
	}
	// A single distance configuration drives matching, simulation and
	// diagnostics within one run.
	stabOpts.Params = opts.Params

	fmt.Fprintf(out, "Step 4/5: Running %d stability trials (noise %.2f)...\n", stabOpts.Trials, stabOpts.Noise)
	report, err := stability.Simulate(ctx, scores, cat, stabOpts)
	if err != nil {
		return nil, fmt.Errorf("stability simulation failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintSpectrum(&report)
		printer.PrintGrid(&report)
	}
	emitProgress(&opts, StepSimulate, CategoryStability,
		fmt.Sprintf("Primary %s at %.1f%% stability", report.Primary, report.Stability), report)

	fmt.Fprintf(out, "Step 5/5: Computing mismatch diagnostics...\n")
	diag := diagnostics.Report(scores, cat, opts.Params)
	if opts.Verbose {
		printer.PrintDiagnostics(&diag, cat)
	}
	emitProgress(&opts, StepDiagnostics, CategoryStability, "Computed per-archetype distances and energies", diag)

	result := &types.AssessmentResult{
		ID:          uuid.New(),
		Scores:      scores,
		Match:       match,
		Report:      report,
		Diagnostics: diag,
		RawAnswers:  opts.Answers,
		CreatedAt:   time.Now().UTC(),
	}

	if opts.Verbose {
		printer.PrintResult(result)
	}

	persistResult(ctx, out, &opts, database, stabOpts, result)

	fmt.Fprintf(out, "Done! Archetype: %s (stability %.1f%%)\n", result.Match.Name, result.Report.Stability)
	return result, nil
}

// persistResult writes the result to the CSV log and the database when the
// respondent consented. Failures warn and continue.
func persistResult(ctx context.Context, out io.Writer, opts *RunOptions, database *db.DB, stabOpts stability.Options, result *types.AssessmentResult) {
	if !opts.Consent {
		if opts.Verbose {
			fmt.Fprintf(out, "[VERBOSE] Consent not given; skipping persistence\n")
		}
		return
	}

	if opts.ResultsCSV != "" {
		logger := results.NewLogger(opts.ResultsCSV)
		if err := logger.Append(result); err != nil {
			fmt.Fprintf(out, "Warning: Failed to append CSV result: %v\n", err)
		} else if opts.Verbose {
			fmt.Fprintf(out, "[VERBOSE] Appended result to %s\n", logger.Path())
		}
	}

	if database != nil {
		id, err := database.SaveAssessment(ctx, result, stabOpts.Noise, string(opts.Params.Policy))
		if err != nil {
			fmt.Fprintf(out, "Warning: Failed to save assessment: %v\n", err)
		} else {
			result.ID = id
			if opts.Verbose {
				fmt.Fprintf(out, "[VERBOSE] Saved assessment: %s\n", id)
			}
		}
	}

	emitProgress(opts, StepPersist, CategoryPersistence, "Persisted assessment result", nil)
}
