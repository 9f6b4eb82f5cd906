package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/itype-engine/internal/schemas"
	"github.com/jonathan/itype-engine/internal/types"
)

// Load reads an archetype catalog from a JSON or YAML file, chosen by
// extension (.yaml/.yml parse as YAML, everything else as JSON), and
// validates it. JSON documents are additionally checked against the catalog
// schema when it can be resolved. Document order is preserved; it is the
// tie-break order for matching and stability ranking.
func Load(path string) (*types.Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("failed to read catalog file %s", path),
			Cause:   err,
		}
	}

	var catalog types.Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &catalog); err != nil {
			return nil, &ConfigurationError{
				Message: fmt.Sprintf("failed to parse YAML catalog %s", path),
				Cause:   err,
			}
		}
	default:
		if err := json.Unmarshal(content, &catalog); err != nil {
			return nil, &ConfigurationError{
				Message: fmt.Sprintf("failed to parse JSON catalog %s", path),
				Cause:   err,
			}
		}
		if err := validateSchema(path); err != nil {
			return nil, err
		}
	}

	if err := validate(&catalog, path); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// validateSchema checks a JSON catalog document against the catalog schema.
// A document violation is fatal; a schema that cannot be resolved or loaded
// only produces a warning.
func validateSchema(path string) error {
	schemaPath := schemas.ResolveSchemaPath("schemas/archetypes.schema.json")
	if schemaPath == "" {
		return nil
	}

	err := schemas.ValidateJSON(schemaPath, path)
	if err == nil {
		return nil
	}
	var validationErr *schemas.ValidationError
	if errors.As(err, &validationErr) {
		return &ConfigurationError{
			Message: fmt.Sprintf("catalog %s does not validate against schema", path),
			Cause:   err,
		}
	}
	_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate catalog against schema: %v\n", err)
	return nil
}

// validate rejects catalogs the matcher could not use: no entries, unnamed
// or duplicate archetypes, unknown dimensions, or signature values outside
// the score range. An entry with an empty signature loads but stays invalid
// and unselectable; a catalog with only such entries is an error.
func validate(c *types.Catalog, path string) error {
	if c.Len() == 0 {
		return &ConfigurationError{Message: fmt.Sprintf("catalog %s has no archetypes", path)}
	}

	seen := make(map[string]bool, c.Len())
	valid := 0
	for i := range c.Archetypes {
		a := &c.Archetypes[i]
		if a.Name == "" {
			return &ConfigurationError{Message: fmt.Sprintf("catalog %s: entry %d has no name", path, i)}
		}
		if seen[a.Name] {
			return &ConfigurationError{Message: fmt.Sprintf("catalog %s: duplicate archetype %q", path, a.Name)}
		}
		seen[a.Name] = true

		for d, v := range a.Signature {
			if !d.Valid() {
				return &ConfigurationError{Message: fmt.Sprintf("catalog %s: archetype %q has unknown dimension %q", path, a.Name, d)}
			}
			if v < types.ScoreMin || v > types.ScoreMax {
				return &ConfigurationError{Message: fmt.Sprintf("catalog %s: archetype %q dimension %q out of range: %v", path, a.Name, d, v)}
			}
		}
		if a.Valid() {
			valid++
		}
	}

	if valid == 0 {
		return &ConfigurationError{Message: fmt.Sprintf("catalog %s has no valid archetypes", path)}
	}
	return nil
}
