// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/itype-engine/internal/distance"
	"github.com/jonathan/itype-engine/internal/stability"
	"github.com/jonathan/itype-engine/internal/types"
)

// Default data file locations, relative to the working directory.
const (
	DefaultCatalogPath   = "data/archetypes.json"
	DefaultQuestionsPath = "data/questions.json"
	DefaultResultsCSV    = "data/responses.csv"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Catalog    string `json:"catalog,omitempty"`     // Path to archetype catalog (JSON or YAML)
	Questions  string `json:"questions,omitempty"`   // Path to question bank (JSON or YAML)
	ResultsCSV string `json:"results_csv,omitempty"` // Path to the anonymous results log

	// Mismatch model
	Policy  string             `json:"policy,omitempty"`  // plain, weighted, zscore, or energy
	Weights map[string]float64 `json:"weights,omitempty"` // Per-dimension weights (default 1)
	Lambda  float64            `json:"lambda,omitempty"`  // Energy curvature gain
	Rho     float64            `json:"rho,omitempty"`     // Energy rarity gain

	// Stability simulation
	Trials  int     `json:"trials,omitempty"`  // Monte Carlo trial count
	Noise   float64 `json:"noise,omitempty"`   // Perturbation sigma as a fraction of the score range
	Workers int     `json:"workers,omitempty"` // Simulation worker count
	Seed    int64   `json:"seed,omitempty"`    // Fixed random seed (0 = fresh seed per run)

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if _, err := distance.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for name, w := range c.Weights {
		if _, ok := types.ParseDimension(name); !ok {
			return fmt.Errorf("config error: 'weights' has unknown dimension %q", name)
		}
		if w < 0 {
			return fmt.Errorf("config error: weight for %q must be non-negative", name)
		}
	}

	if c.Lambda < 0 {
		return fmt.Errorf("config error: 'lambda' must be non-negative")
	}
	if c.Rho < 0 {
		return fmt.Errorf("config error: 'rho' must be non-negative")
	}
	if c.Trials < 0 {
		return fmt.Errorf("config error: 'trials' must be non-negative")
	}
	if c.Noise < 0 || c.Noise > 1 {
		return fmt.Errorf("config error: 'noise' must be in [0,1]")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.Catalog != "" {
		if _, err := os.Stat(c.Catalog); os.IsNotExist(err) {
			return fmt.Errorf("config error: catalog file not found: %s", c.Catalog)
		}
	}
	if c.Questions != "" {
		if _, err := os.Stat(c.Questions); os.IsNotExist(err) {
			return fmt.Errorf("config error: questions file not found: %s", c.Questions)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Catalog == "" {
		result.Catalog = defaults.Catalog
	}
	if result.Questions == "" {
		result.Questions = defaults.Questions
	}
	if result.ResultsCSV == "" {
		result.ResultsCSV = defaults.ResultsCSV
	}
	if result.Policy == "" {
		result.Policy = defaults.Policy
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.Weights == nil {
		result.Weights = defaults.Weights
	}

	// Numeric fields: use default if zero
	if result.Lambda == 0 {
		result.Lambda = defaults.Lambda
	}
	if result.Rho == 0 {
		result.Rho = defaults.Rho
	}
	if result.Trials == 0 {
		result.Trials = defaults.Trials
	}
	if result.Noise == 0 {
		result.Noise = defaults.Noise
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.Seed == 0 {
		result.Seed = defaults.Seed
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the standard configuration: default data paths, the
// weighted policy, and reference simulation settings.
func Defaults() Config {
	return Config{
		Catalog:    DefaultCatalogPath,
		Questions:  DefaultQuestionsPath,
		ResultsCSV: DefaultResultsCSV,
		Policy:     string(distance.PolicyWeighted),
		Lambda:     distance.DefaultLambda,
		Rho:        distance.DefaultRho,
		Trials:     stability.DefaultTrials,
		Noise:      stability.DefaultNoise,
		Workers:    1,
	}
}

// DistanceParams converts the configuration into mismatch parameters.
func (c *Config) DistanceParams() (distance.Params, error) {
	policy, err := distance.ParsePolicy(c.Policy)
	if err != nil {
		return distance.Params{}, err
	}

	params := distance.DefaultParams().WithPolicy(policy)
	if c.Lambda > 0 {
		params.Lambda = c.Lambda
	}
	if c.Rho > 0 {
		params.Rho = c.Rho
	}
	if len(c.Weights) > 0 {
		weights := make(map[types.Dimension]float64, len(c.Weights))
		for name, w := range c.Weights {
			d, ok := types.ParseDimension(name)
			if !ok {
				return distance.Params{}, fmt.Errorf("unknown dimension %q in weights", name)
			}
			weights[d] = w
		}
		params.Weights = weights
	}
	return params, nil
}

// StabilityOptions converts the configuration into simulation options.
func (c *Config) StabilityOptions() (stability.Options, error) {
	params, err := c.DistanceParams()
	if err != nil {
		return stability.Options{}, err
	}

	opts := stability.DefaultOptions()
	opts.Params = params
	if c.Trials > 0 {
		opts.Trials = c.Trials
	}
	if c.Noise > 0 {
		opts.Noise = c.Noise
	}
	if c.Workers > 0 {
		opts.Workers = c.Workers
	}
	opts.Seed = c.Seed
	return opts, nil
}
