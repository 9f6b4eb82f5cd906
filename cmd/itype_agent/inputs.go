package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/itype-engine/internal/catalog"
	"github.com/jonathan/itype-engine/internal/config"
	"github.com/jonathan/itype-engine/internal/questions"
	"github.com/jonathan/itype-engine/internal/schemas"
	"github.com/jonathan/itype-engine/internal/scoring"
	"github.com/jonathan/itype-engine/internal/types"
)

// answerFile mirrors the answers.schema.json document: submitted answers plus
// optional simulation overrides carried alongside them.
type answerFile struct {
	Answers map[string]int `json:"answers"`
	Trials  int            `json:"trials,omitempty"`
	Noise   float64        `json:"noise,omitempty"`
	Seed    int64          `json:"seed,omitempty"`
	Workers int            `json:"workers,omitempty"`
	Policy  string         `json:"policy,omitempty"`
	Consent bool           `json:"consent,omitempty"`
}

// loadAnswerFile reads an answer set from a JSON file and validates it against
// the answers schema. A document that fails validation is an error; a schema
// that cannot be located or loaded only produces a warning.
func loadAnswerFile(path string) (*answerFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}

	schemaPath := schemas.ResolveSchemaPath("schemas/answers.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, path); err != nil {
			var validationErr *schemas.ValidationError
			if errors.As(err, &validationErr) {
				return nil, fmt.Errorf("answers file does not validate against schema: %w", err)
			}
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate answers against schema: %v\n", err)
		}
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: answers schema not found, skipping validation\n")
	}

	var af answerFile
	if err := json.Unmarshal(content, &af); err != nil {
		return nil, fmt.Errorf("failed to parse answers JSON: %w", err)
	}
	if len(af.Answers) == 0 {
		return nil, fmt.Errorf("answers file has no answers")
	}
	return &af, nil
}

// loadScoreFile reads a score vector from a JSON file in the format the score
// command writes: an object with a "scores" mapping of dimension names.
func loadScoreFile(path string) (types.ScoreVector, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scores file: %w", err)
	}

	var doc struct {
		Scores map[string]float64 `json:"scores"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scores JSON: %w", err)
	}
	if len(doc.Scores) == 0 {
		return nil, fmt.Errorf("scores file has no \"scores\" object")
	}

	scores, err := types.ScoreVectorFromMap(doc.Scores)
	if err != nil {
		return nil, fmt.Errorf("invalid scores file: %w", err)
	}
	return scores, nil
}

// loadCatalog loads the archetype catalog, falling back to the default path.
func loadCatalog(path string) (*types.Catalog, error) {
	if path == "" {
		path = config.DefaultCatalogPath
	}
	return catalog.Load(path)
}

// loadBank loads the question bank, falling back to the default path.
func loadBank(path string) (*questions.Bank, error) {
	if path == "" {
		path = config.DefaultQuestionsPath
	}
	return questions.Load(path)
}

// scoresFromFlags resolves the score vector for a command that accepts either
// raw answers or a precomputed score file. Exactly one source must be given;
// answers are resolved through the question bank and normalized.
func scoresFromFlags(answersPath, scoresPath, questionsPath string) (types.ScoreVector, error) {
	if answersPath != "" && scoresPath != "" {
		return nil, fmt.Errorf("--answers and --scores are mutually exclusive; provide only one")
	}
	if answersPath == "" && scoresPath == "" {
		return nil, fmt.Errorf("either --answers or --scores must be provided")
	}

	if scoresPath != "" {
		return loadScoreFile(scoresPath)
	}

	af, err := loadAnswerFile(answersPath)
	if err != nil {
		return nil, err
	}
	bank, err := loadBank(questionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}
	responses, err := bank.Resolve(af.Answers)
	if err != nil {
		return nil, err
	}
	return scoring.Normalize(responses), nil
}

// writeJSONOutput marshals v with indentation and writes it to path. When
// schemaRel names a schema, the written file is validated against it; a
// validation failure is an error, a schema that cannot load only warns.
func writeJSONOutput(path string, v any, schemaRel string) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	if schemaRel == "" {
		return nil
	}
	schemaPath := schemas.ResolveSchemaPath(schemaRel)
	if schemaPath == "" {
		return nil
	}
	if err := schemas.ValidateJSON(schemaPath, path); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("generated JSON does not validate against schema: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate output against schema: %v\n", err)
	}
	return nil
}
