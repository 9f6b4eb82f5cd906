package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A trimmed-down stability report schema for exercising the validator.
const reportSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["primary"],
	"properties": {
		"primary": {"type": "string"},
		"trials": {"type": "integer"}
	}
}`

func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateJSON(t *testing.T) {
	schemaPath := writeTempJSON(t, "report.schema.json", reportSchema)

	tests := []struct {
		name     string
		document string
		valid    bool
	}{
		{name: "conforming document", document: `{"primary": "Visionary", "trials": 5000}`, valid: true},
		{name: "missing required field", document: `{"trials": 5000}`},
		{name: "wrong field type", document: `{"primary": "Visionary", "trials": "many"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonPath := writeTempJSON(t, "report.json", tt.document)

			err := ValidateJSON(schemaPath, jsonPath)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidateJSON_MissingFiles(t *testing.T) {
	schemaPath := writeTempJSON(t, "report.schema.json", reportSchema)
	jsonPath := writeTempJSON(t, "report.json", `{"primary": "Visionary"}`)
	gone := filepath.Join(t.TempDir(), "gone.json")

	err := ValidateJSON(gone, jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(schemaPath, gone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedDocument(t *testing.T) {
	schemaPath := writeTempJSON(t, "report.schema.json", reportSchema)
	jsonPath := writeTempJSON(t, "broken.json", "{ not json }")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	// Load failures are plain errors, not schema violations.
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve), "malformed document should not produce a ValidationError")
}

func TestValidateJSON_ArchetypeCatalogSchema(t *testing.T) {
	schemaPath := ResolveSchemaPath("schemas/archetypes.schema.json")
	require.NotEmpty(t, schemaPath, "archetypes schema should be resolvable from the package directory")

	tests := []struct {
		name      string
		content   string
		wantError bool
	}{
		{
			name: "valid catalog",
			content: `{
				"archetypes": [
					{"name": "Visionary", "signature": {"thinking": 90, "risk": 80}}
				]
			}`,
			wantError: false,
		},
		{
			name:      "missing archetypes array",
			content:   `{"entries": []}`,
			wantError: true,
		},
		{
			name: "signature value above range",
			content: `{
				"archetypes": [
					{"name": "Visionary", "signature": {"thinking": 140}}
				]
			}`,
			wantError: true,
		},
		{
			name: "unknown signature dimension",
			content: `{
				"archetypes": [
					{"name": "Visionary", "signature": {"charisma": 50}}
				]
			}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonPath := writeTempJSON(t, "catalog.json", tt.content)

			err := ValidateJSON(schemaPath, jsonPath)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve, "got %T: %v", err, err)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(reportSchema, `{"primary": "Operator"}`))

	err := ValidateJSONString(reportSchema, `{"trials": 10}`)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "archetypes.0.name", Message: "is required"},
			{Field: "archetypes.0.signature", Message: "must be an object"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "archetypes.0.name")
	assert.Contains(t, msg, "archetypes.0.signature")
}

func TestResolveSchemaPath(t *testing.T) {
	// The answers schema sits two directories above this package.
	assert.NotEmpty(t, ResolveSchemaPath("schemas/answers.schema.json"))
	assert.Empty(t, ResolveSchemaPath("schemas/does_not_exist.schema.json"))
}
