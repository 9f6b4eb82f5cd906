package results

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/itype-engine/internal/types"
)

func sampleResult() *types.AssessmentResult {
	return &types.AssessmentResult{
		Scores: types.ScoreVector{
			types.DimThinking:   81.25,
			types.DimExecution:  43.75,
			types.DimRisk:       62.5,
			types.DimMotivation: 50,
			types.DimTeam:       56.25,
			types.DimCommercial: 37.5,
		},
		Match: types.MatchResult{Name: "Visionary", Mismatch: 0.31},
		Report: types.StabilityReport{
			Primary:   "Visionary",
			Stability: 78.456,
			Shadow:    types.ShadowArchetype{Name: "Strategist", Probability: 15.044},
			Trials:    5000,
		},
		RawAnswers: map[string]int{"q01": 5, "q02": 2},
		CreatedAt:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "responses.csv")
	logger := NewLogger(path)

	require.NoError(t, logger.Append(sampleResult()))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, header, rows[0])
}

func TestAppend_RowContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	logger := NewLogger(path)

	require.NoError(t, logger.Append(sampleResult()))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	row := rows[1]

	assert.Equal(t, "2026-03-14T09:26:53Z", row[0])
	assert.Equal(t, "Visionary", row[1])
	assert.Equal(t, "78.46", row[2])
	assert.Equal(t, "Strategist (15.04%)", row[3])
	assert.Equal(t, "81.25", row[4])
	assert.Equal(t, "43.75", row[5])
	assert.Equal(t, "62.5", row[6])
	assert.Equal(t, "50", row[7])
	assert.Equal(t, "56.25", row[8])
	assert.Equal(t, "37.5", row[9])
	assert.JSONEq(t, `{"q01": 5, "q02": 2}`, row[10])
}

func TestAppend_AppendsWithoutDuplicatingHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	logger := NewLogger(path)

	require.NoError(t, logger.Append(sampleResult()))
	require.NoError(t, logger.Append(sampleResult()))
	require.NoError(t, logger.Append(sampleResult()))

	rows := readRows(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, header, rows[0])
	for _, row := range rows[1:] {
		assert.Equal(t, "Visionary", row[1])
	}
}

func TestAppend_NoneShadow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	logger := NewLogger(path)

	result := sampleResult()
	result.Report.Shadow = types.NoShadow
	require.NoError(t, logger.Append(result))

	rows := readRows(t, path)
	assert.Equal(t, "None (0%)", rows[1][3])
}

func TestAppend_ZeroTimestampUsesNow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	logger := NewLogger(path)

	result := sampleResult()
	result.CreatedAt = time.Time{}
	before := time.Now().UTC().Add(-time.Second)

	require.NoError(t, logger.Append(result))

	rows := readRows(t, path)
	stamped, err := time.Parse(time.RFC3339, rows[1][0])
	require.NoError(t, err)
	assert.True(t, stamped.After(before))
}

func TestAppend_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.csv")
	logger := NewLogger(path)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, logger.Append(sampleResult()))
		}()
	}
	wg.Wait()

	rows := readRows(t, path)
	require.Len(t, rows, 17)
	assert.Equal(t, header, rows[0])
}
