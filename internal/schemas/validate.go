// Package schemas provides JSON Schema validation for the engine's file
// artifacts: archetype catalogs, question banks, answer sets, and assessment
// results.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// maxAscent bounds how many parent directories ResolveSchemaPath climbs.
// Two levels reach the repo root from any package or command directory.
const maxAscent = 2

// ResolveSchemaPath locates a schema file given its path relative to the
// repo root. Commands and tests run from different working directories, so
// the lookup climbs parent directories until the file appears. Returns the
// absolute path, or "" when no candidate exists.
func ResolveSchemaPath(relativePath string) string {
	dir := "."
	for i := 0; i <= maxAscent; i++ {
		abs, err := filepath.Abs(filepath.Join(dir, relativePath))
		if err == nil {
			if _, err := os.Stat(abs); err == nil {
				return abs
			}
		}
		dir = filepath.Join(dir, "..")
	}
	return ""
}

// FieldError is a single schema violation at one field path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates every schema violation found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// ValidateJSON checks the JSON document at jsonPath against the schema at
// schemaPath. Violations come back as a *ValidationError; anything else
// (missing files, unparseable schema or document) is an ordinary error.
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbs, err := absExisting(schemaPath, "schema")
	if err != nil {
		return err
	}
	jsonAbs, err := absExisting(jsonPath, "JSON")
	if err != nil {
		return err
	}

	return runValidation(
		gojsonschema.NewReferenceLoader("file://"+schemaAbs),
		gojsonschema.NewReferenceLoader("file://"+jsonAbs),
		schemaAbs,
	)
}

// ValidateJSONString checks in-memory JSON content against an in-memory
// schema.
func ValidateJSONString(schemaContent, jsonContent string) error {
	return runValidation(
		gojsonschema.NewStringLoader(schemaContent),
		gojsonschema.NewStringLoader(jsonContent),
		"(inline schema)",
	)
}

func absExisting(path, label string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s path: %w", label, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%s file not found: %s", label, abs)
	}
	return abs, nil
}

func runValidation(schema, doc gojsonschema.JSONLoader, origin string) error {
	result, err := gojsonschema.Validate(schema, doc)
	if err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", origin, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
