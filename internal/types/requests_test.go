//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkValidate asserts the outcome of a Validate call. An empty wantTag
// expects success; otherwise the error must name the failed validator tag.
func checkValidate(t *testing.T, err error, wantTag string) {
	t.Helper()
	if wantTag == "" {
		require.NoError(t, err)
		return
	}
	require.Error(t, err)
	assert.Contains(t, err.Error(), wantTag)
}

func TestScoreRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request ScoreRequest
		wantTag string
	}{
		{name: "valid answers", request: ScoreRequest{Answers: map[string]int{"q01": 4, "q02": 1}}},
		{name: "missing answers", request: ScoreRequest{}, wantTag: "required"},
		{name: "empty answers", request: ScoreRequest{Answers: map[string]int{}}, wantTag: "min"},
		{name: "value below scale", request: ScoreRequest{Answers: map[string]int{"q01": 0}}, wantTag: "gte"},
		{name: "value above scale", request: ScoreRequest{Answers: map[string]int{"q01": 6}}, wantTag: "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidate(t, tt.request.Validate(), tt.wantTag)
		})
	}
}

func TestMatchRequest_Validate(t *testing.T) {
	scores := map[string]float64{"thinking": 75}

	tests := []struct {
		name    string
		request MatchRequest
		wantTag string
	}{
		{name: "valid scores", request: MatchRequest{Scores: scores}},
		{name: "valid with policy", request: MatchRequest{Scores: scores, Policy: "energy"}},
		{name: "missing scores", request: MatchRequest{}, wantTag: "required"},
		{name: "score above range", request: MatchRequest{Scores: map[string]float64{"thinking": 101}}, wantTag: "lte"},
		{name: "unknown policy", request: MatchRequest{Scores: scores, Policy: "manhattan"}, wantTag: "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidate(t, tt.request.Validate(), tt.wantTag)
		})
	}
}

func TestSimulateRequest_Validate(t *testing.T) {
	scores := map[string]float64{"risk": 20}

	tests := []struct {
		name    string
		request SimulateRequest
		wantTag string
	}{
		{name: "scores only", request: SimulateRequest{Scores: scores}},
		{
			name: "full options",
			request: SimulateRequest{
				Scores:  scores,
				Trials:  2000,
				Noise:   0.05,
				Seed:    42,
				Workers: 4,
				Policy:  "weighted",
			},
		},
		{name: "negative trials", request: SimulateRequest{Scores: scores, Trials: -1}, wantTag: "gt"},
		{name: "trials above cap", request: SimulateRequest{Scores: scores, Trials: 2000000}, wantTag: "lte"},
		{name: "noise above one", request: SimulateRequest{Scores: scores, Noise: 1.5}, wantTag: "lte"},
		{name: "workers above cap", request: SimulateRequest{Scores: scores, Workers: 512}, wantTag: "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidate(t, tt.request.Validate(), tt.wantTag)
		})
	}
}

func TestAssessmentRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request AssessmentRequest
		wantTag string
	}{
		{name: "answers only", request: AssessmentRequest{Answers: map[string]int{"q01": 3}}},
		{
			name: "with overrides and consent",
			request: AssessmentRequest{
				Answers: map[string]int{"q01": 3},
				Trials:  500,
				Noise:   0.1,
				Policy:  "plain",
				Consent: true,
			},
		},
		{name: "missing answers", request: AssessmentRequest{Consent: true}, wantTag: "required"},
		{name: "answer out of scale", request: AssessmentRequest{Answers: map[string]int{"q01": 7}}, wantTag: "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidate(t, tt.request.Validate(), tt.wantTag)
		})
	}
}

func TestScoreVectorFromMap(t *testing.T) {
	t.Run("valid full vector", func(t *testing.T) {
		raw := map[string]float64{
			"thinking": 75, "execution": 40, "risk": 20,
			"motivation": 85, "team": 60, "commercial": 35,
		}

		v, err := ScoreVectorFromMap(raw)
		require.NoError(t, err)
		assert.True(t, v.Complete())
		assert.Equal(t, 75.0, v[DimThinking])
	})

	t.Run("partial vector allowed", func(t *testing.T) {
		v, err := ScoreVectorFromMap(map[string]float64{"risk": 12.5})
		require.NoError(t, err)
		assert.Len(t, v, 1)
		assert.False(t, v.Complete())
	})

	t.Run("unknown dimension rejected", func(t *testing.T) {
		_, err := ScoreVectorFromMap(map[string]float64{"charm": 50})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown dimension")
	})

	t.Run("out of range rejected", func(t *testing.T) {
		_, err := ScoreVectorFromMap(map[string]float64{"risk": 120})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})
}
