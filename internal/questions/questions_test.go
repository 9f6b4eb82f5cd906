package questions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/itype-engine/internal/types"
)

func writeBankFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleBank = `{
	"questions": [
		{"id": "q01", "text": "I generate ideas constantly.", "dimension": "thinking"},
		{"id": "q02", "text": "I struggle to finish what I start.", "dimension": "execution", "reverse": true},
		{"id": "q03", "text": "I am comfortable betting on uncertainty.", "dimension": "risk"}
	]
}`

func TestLoad_JSONBank(t *testing.T) {
	path := writeBankFile(t, "questions.json", sampleBank)

	bank, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, 3, bank.Len())
	assert.Equal(t, "q01", bank.Questions[0].ID)
	assert.Equal(t, types.DimExecution, bank.Questions[1].Dimension)
	assert.True(t, bank.Questions[1].Reverse)
	assert.False(t, bank.Questions[0].Reverse)
}

func TestLoad_YAMLBank(t *testing.T) {
	path := writeBankFile(t, "questions.yaml", `
questions:
  - id: q01
    text: I generate ideas constantly.
    dimension: thinking
  - id: q02
    text: I struggle to finish what I start.
    dimension: execution
    reverse: true
`)

	bank, err := Load(path)

	require.NoError(t, err)
	require.Equal(t, 2, bank.Len())
	assert.True(t, bank.Questions[1].Reverse)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Message, "failed to read question file")
}

func TestLoad_RejectsEmptyBank(t *testing.T) {
	path := writeBankFile(t, "empty.json", `{"questions": []}`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no questions")
}

func TestLoad_RejectsDuplicateIDs(t *testing.T) {
	path := writeBankFile(t, "dupes.json", `{
		"questions": [
			{"id": "q01", "text": "First.", "dimension": "thinking"},
			{"id": "q01", "text": "Second.", "dimension": "risk"}
		]
	}`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate question id "q01"`)
}

func TestLoad_RejectsUnknownDimension(t *testing.T) {
	path := writeBankFile(t, "unknown.json", `{
		"questions": [{"id": "q01", "text": "Hm.", "dimension": "charisma"}]
	}`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown dimension "charisma"`)
}

func TestLoad_RejectsMissingText(t *testing.T) {
	path := writeBankFile(t, "notext.json", `{
		"questions": [{"id": "q01", "text": "", "dimension": "thinking"}]
	}`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no text")
}

func TestResolve_PairsAnswersInBankOrder(t *testing.T) {
	path := writeBankFile(t, "questions.json", sampleBank)
	bank, err := Load(path)
	require.NoError(t, err)

	responses, err := bank.Resolve(map[string]int{"q01": 5, "q02": 2, "q03": 4})

	require.NoError(t, err)
	require.Len(t, responses, 3)
	assert.Equal(t, types.RawResponse{Dimension: types.DimThinking, Value: 5}, responses[0])
	assert.Equal(t, types.RawResponse{Dimension: types.DimExecution, Value: 2, Reverse: true}, responses[1])
	assert.Equal(t, types.RawResponse{Dimension: types.DimRisk, Value: 4}, responses[2])
}

func TestResolve_UnansweredDefaultsToNeutral(t *testing.T) {
	path := writeBankFile(t, "questions.json", sampleBank)
	bank, err := Load(path)
	require.NoError(t, err)

	responses, err := bank.Resolve(map[string]int{"q01": 5})

	require.NoError(t, err)
	require.Len(t, responses, 3)
	assert.Equal(t, types.LikertNeutral, responses[1].Value)
	assert.Equal(t, types.LikertNeutral, responses[2].Value)
}

func TestResolve_ClampsOutOfScaleAnswers(t *testing.T) {
	path := writeBankFile(t, "questions.json", sampleBank)
	bank, err := Load(path)
	require.NoError(t, err)

	responses, err := bank.Resolve(map[string]int{"q01": 9, "q02": 0, "q03": 3})

	require.NoError(t, err)
	require.Len(t, responses, 3)
	assert.Equal(t, types.LikertMax, responses[0].Value)
	assert.Equal(t, types.LikertMin, responses[1].Value)
	assert.Equal(t, 3, responses[2].Value)
}

func TestResolve_RejectsUnknownIDs(t *testing.T) {
	path := writeBankFile(t, "questions.json", sampleBank)
	bank, err := Load(path)
	require.NoError(t, err)

	_, err = bank.Resolve(map[string]int{"q99": 3, "q42": 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown question ids: q42, q99")
}

func TestResolve_EmptyAnswers(t *testing.T) {
	path := writeBankFile(t, "questions.json", sampleBank)
	bank, err := Load(path)
	require.NoError(t, err)

	responses, err := bank.Resolve(nil)

	require.NoError(t, err)
	require.Len(t, responses, 3)
	for _, r := range responses {
		assert.Equal(t, types.LikertNeutral, r.Value)
	}
}
