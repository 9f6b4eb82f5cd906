// Package results appends completed assessment outcomes to a durable CSV
// log. The log is anonymous: numeric scores and archetype names only.
package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/jonathan/itype-engine/internal/types"
)

// header is the persisted column contract. Downstream analysis reads these
// columns by name; do not reorder.
var header = []string{
	"timestamp",
	"final_archetype",
	"stability",
	"shadow_archetype",
	"thinking",
	"execution",
	"risk",
	"motivation",
	"team",
	"commercial",
	"raw_answers_json",
}

// Logger appends assessment rows to a CSV file, creating the file and its
// directory (with the header row) on first use. Safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string
}

// NewLogger returns a Logger writing to path.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Path returns the log file location.
func (l *Logger) Path() string {
	return l.path
}

// Append writes one assessment outcome. The row records the direct match as
// the final archetype alongside the simulation's stability and shadow.
func (l *Logger) Append(result *types.AssessmentResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	_, statErr := os.Stat(l.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open results log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write results header: %w", err)
		}
	}

	row, err := buildRow(result)
	if err != nil {
		return err
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write results row: %w", err)
	}

	w.Flush()
	return w.Error()
}

func buildRow(result *types.AssessmentResult) ([]string, error) {
	ts := result.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	rawAnswers, err := json.Marshal(result.RawAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode raw answers: %w", err)
	}

	row := []string{
		ts.UTC().Format(time.RFC3339),
		result.Match.Name,
		formatScore(round2(result.Report.Stability)),
		formatShadow(result.Report.Shadow),
		"", "", "", "", "", "",
		string(rawAnswers),
	}
	for i, d := range types.Dimensions {
		row[4+i] = formatScore(result.Scores[d])
	}
	return row, nil
}

func formatShadow(shadow types.ShadowArchetype) string {
	return fmt.Sprintf("%s (%v%%)", shadow.Name, round2(shadow.Probability))
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
