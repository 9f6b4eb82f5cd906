//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchetype_Valid(t *testing.T) {
	tests := []struct {
		name      string
		archetype Archetype
		want      bool
	}{
		{
			name: "name and signature",
			archetype: Archetype{
				Name:      "Visionary",
				Signature: Signature{DimThinking: 90},
			},
			want: true,
		},
		{
			name:      "missing name",
			archetype: Archetype{Signature: Signature{DimThinking: 90}},
			want:      false,
		},
		{
			name:      "empty signature",
			archetype: Archetype{Name: "Visionary", Signature: Signature{}},
			want:      false,
		},
		{
			name:      "nil signature",
			archetype: Archetype{Name: "Visionary"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.archetype.Valid())
		})
	}
}

func TestCatalog_PreservesDocumentOrder(t *testing.T) {
	raw := `{
		"archetypes": [
			{"name": "Visionary", "signature": {"thinking": 90}},
			{"name": "Strategist", "signature": {"thinking": 80}},
			{"name": "Operator", "signature": {"execution": 90}}
		]
	}`

	var catalog Catalog
	require.NoError(t, json.Unmarshal([]byte(raw), &catalog))

	assert.Equal(t, []string{"Visionary", "Strategist", "Operator"}, catalog.Names())
	assert.Equal(t, 3, catalog.Len())
}

func TestCatalog_Get(t *testing.T) {
	catalog := Catalog{Archetypes: []Archetype{
		{Name: "Visionary", Signature: Signature{DimThinking: 90}},
		{Name: "Operator", Signature: Signature{DimExecution: 90}},
	}}

	a, ok := catalog.Get("Operator")
	require.True(t, ok)
	assert.Equal(t, "Operator", a.Name)
	assert.Equal(t, 90.0, a.Signature[DimExecution])

	_, ok = catalog.Get("Ghost")
	assert.False(t, ok)
}

func TestCatalog_ValidCount(t *testing.T) {
	catalog := Catalog{Archetypes: []Archetype{
		{Name: "Visionary", Signature: Signature{DimThinking: 90}},
		{Name: "Broken"},
		{Signature: Signature{DimRisk: 10}},
	}}

	assert.Equal(t, 3, catalog.Len())
	assert.Equal(t, 1, catalog.ValidCount())
}
