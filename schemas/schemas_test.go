package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/itype-engine/internal/schemas"
)

var schemaFiles = []string{
	"archetypes.schema.json",
	"questions.schema.json",
	"answers.schema.json",
	"assessment.schema.json",
}

// Every schema in this directory must parse as JSON, declare draft-07,
// describe a strict top-level object, and name the document key it guards.
func TestSchemaFiles_WellFormed(t *testing.T) {
	for _, name := range schemaFiles {
		t.Run(name, func(t *testing.T) {
			data, err := os.ReadFile(name)
			require.NoError(t, err)

			var schema map[string]any
			require.NoError(t, json.Unmarshal(data, &schema), "schema must parse as JSON")

			assert.Equal(t, "http://json-schema.org/draft-07/schema#", schema["$schema"])
			assert.Equal(t, "object", schema["type"])
			assert.Equal(t, false, schema["additionalProperties"],
				"top-level objects reject unknown keys")
			assert.NotEmpty(t, schema["properties"])
		})
	}
}

func TestSchemaFiles_AcceptShippedDataFiles(t *testing.T) {
	tests := []struct {
		schema string
		data   string
	}{
		{schema: "archetypes.schema.json", data: filepath.Join("..", "data", "archetypes.json")},
		{schema: "questions.schema.json", data: filepath.Join("..", "data", "questions.json")},
	}

	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			err := schemas.ValidateJSON(tt.schema, tt.data)
			assert.NoError(t, err, "shipped data file should satisfy its schema")
		})
	}
}

func TestArchetypeSchema_RejectsBadSignature(t *testing.T) {
	doc := `{
		"archetypes": [
			{"name": "Visionary", "signature": {"thinking": "high"}}
		]
	}`

	data, err := os.ReadFile("archetypes.schema.json")
	require.NoError(t, err)

	err = schemas.ValidateJSONString(string(data), doc)
	require.Error(t, err)
}

func TestAnswersSchema_RejectsOutOfScaleValue(t *testing.T) {
	doc := `{"answers": {"q01": 9}}`

	data, err := os.ReadFile("answers.schema.json")
	require.NoError(t, err)

	err = schemas.ValidateJSONString(string(data), doc)
	require.Error(t, err)
}
