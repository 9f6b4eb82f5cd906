package questions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/itype-engine/internal/types"
)

// Question is one questionnaire item. Reverse marks negatively phrased
// questions whose answers are inverted before aggregation.
type Question struct {
	ID        string          `json:"id" yaml:"id"`
	Text      string          `json:"text" yaml:"text"`
	Dimension types.Dimension `json:"dimension" yaml:"dimension"`
	Reverse   bool            `json:"reverse,omitempty" yaml:"reverse,omitempty"`
}

// Bank is the ordered questionnaire. Question order is presentation order.
type Bank struct {
	Questions []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	return len(b.Questions)
}

// Load reads a question bank from a JSON or YAML file, chosen by extension,
// and validates every entry.
func Load(path string) (*Bank, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read question file %s", path),
			Cause:   err,
		}
	}

	var bank Bank
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &bank); err != nil {
			return nil, &LoadError{
				Message: fmt.Sprintf("failed to parse YAML question file %s", path),
				Cause:   err,
			}
		}
	default:
		if err := json.Unmarshal(content, &bank); err != nil {
			return nil, &LoadError{
				Message: fmt.Sprintf("failed to parse JSON question file %s", path),
				Cause:   err,
			}
		}
	}

	if err := validate(&bank, path); err != nil {
		return nil, err
	}
	return &bank, nil
}

func validate(b *Bank, path string) error {
	if b.Len() == 0 {
		return &LoadError{Message: fmt.Sprintf("question file %s has no questions", path)}
	}

	seen := make(map[string]bool, b.Len())
	for i := range b.Questions {
		q := &b.Questions[i]
		if q.ID == "" {
			return &LoadError{Message: fmt.Sprintf("question file %s: entry %d has no id", path, i)}
		}
		if seen[q.ID] {
			return &LoadError{Message: fmt.Sprintf("question file %s: duplicate question id %q", path, q.ID)}
		}
		seen[q.ID] = true

		if q.Text == "" {
			return &LoadError{Message: fmt.Sprintf("question file %s: question %q has no text", path, q.ID)}
		}
		if !q.Dimension.Valid() {
			return &LoadError{Message: fmt.Sprintf("question file %s: question %q has unknown dimension %q", path, q.ID, q.Dimension)}
		}
	}
	return nil
}

// Resolve pairs submitted answers with the bank's questions, in bank order.
// An unanswered question falls back to the neutral midpoint; answered values
// are clamped to the Likert scale; an answer whose id is not in the bank is
// an error.
func (b *Bank) Resolve(answers map[string]int) ([]types.RawResponse, error) {
	known := make(map[string]bool, b.Len())
	responses := make([]types.RawResponse, 0, b.Len())
	for i := range b.Questions {
		q := &b.Questions[i]
		known[q.ID] = true

		value, ok := answers[q.ID]
		if !ok {
			value = types.LikertNeutral
		} else {
			value = types.ClampLikert(value)
		}
		responses = append(responses, types.RawResponse{
			Dimension: q.Dimension,
			Value:     value,
			Reverse:   q.Reverse,
		})
	}

	var unknown []string
	for id := range answers {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown question ids: %s", strings.Join(unknown, ", "))
	}

	return responses, nil
}
