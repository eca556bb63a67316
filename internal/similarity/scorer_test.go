package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kim210603/accent-recognition/internal/prototype"
)

func newTable(t *testing.T, entries map[string][]float64) *prototype.Table {
	t.Helper()
	var list []prototype.Entry
	for label, centroid := range entries {
		list = append(list, prototype.Entry{Label: label, Centroid: centroid, Clips: 1})
	}
	table, err := prototype.NewTable(list)
	require.NoError(t, err)
	return table
}

func TestScoreExactMatchIsFullConfidence(t *testing.T) {
	table := newTable(t, map[string][]float64{
		"irish":     {1, 2, 3},
		"scottish":  {4, 0, -1},
		"yorkshire": {-2, 5, 0.5},
	})
	scorer, err := NewScorer(table)
	require.NoError(t, err)

	result, err := scorer.Score([]float64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, "irish", result.Best)
	assert.Equal(t, 100.0, result.Confidences["irish"])
	assert.Equal(t, 100.0, result.BestConfidence)
	assert.Equal(t, 0.0, result.Distances["irish"])
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.Empty)

	// The farthest label sits just above zero.
	farthest := result.Ranking[len(result.Ranking)-1]
	assert.InDelta(t, 0, farthest.Confidence, 1e-6)
	assert.GreaterOrEqual(t, farthest.Confidence, 0.0)
}

func TestScoreConfidencesInRangeAndRanked(t *testing.T) {
	table := newTable(t, map[string][]float64{
		"a": {0, 0},
		"b": {3, 4},
		"c": {6, 8},
		"d": {-1, 1},
	})
	scorer, err := NewScorer(table)
	require.NoError(t, err)

	for _, query := range [][]float64{{0.5, 0.5}, {10, 10}, {-100, 3}, {3, 4}} {
		result, err := scorer.Score(query)
		require.NoError(t, err)

		require.Len(t, result.Ranking, 4)
		for _, score := range result.Ranking {
			assert.GreaterOrEqual(t, score.Confidence, 0.0)
			assert.LessOrEqual(t, score.Confidence, 100.0)
		}
		for i := 1; i < len(result.Ranking); i++ {
			assert.GreaterOrEqual(t, result.Ranking[i-1].Confidence, result.Ranking[i].Confidence)
		}

		// Highest confidence is the minimum distance.
		minDistance := math.Inf(1)
		for _, d := range result.Distances {
			minDistance = math.Min(minDistance, d)
		}
		assert.Equal(t, minDistance, result.Distances[result.Best])
	}
}

func TestScoreDistanceFormula(t *testing.T) {
	table := newTable(t, map[string][]float64{
		"near": {3, 4},
		"far":  {6, 8},
	})
	scorer, err := NewScorer(table)
	require.NoError(t, err)

	result, err := scorer.Score([]float64{0, 0})
	require.NoError(t, err)

	assert.InDelta(t, 5, result.Distances["near"], 1e-12)
	assert.InDelta(t, 10, result.Distances["far"], 1e-12)
	assert.InDelta(t, 100*(1-5/(10+Epsilon)), result.Confidences["near"], 1e-9)
	assert.Equal(t, "near", result.Best)
}

func TestScoreTiesBreakLexically(t *testing.T) {
	table := newTable(t, map[string][]float64{
		"yorkshire": {1, 0},
		"irish":     {-1, 0},
		"scottish":  {0, 1},
	})
	scorer, err := NewScorer(table)
	require.NoError(t, err)

	result, err := scorer.Score([]float64{0, 0})
	require.NoError(t, err)

	assert.Equal(t, "irish", result.Best)
	assert.Equal(t, []string{"irish", "scottish", "yorkshire"}, rankedLabels(result))
}

func TestScoreSinglePrototype(t *testing.T) {
	scorer, err := NewScorer(newTable(t, map[string][]float64{"irish": {1, 1}}))
	require.NoError(t, err)

	result, err := scorer.Score([]float64{5, 5})
	require.NoError(t, err)

	// The only prototype is also the farthest one.
	assert.Equal(t, "irish", result.Best)
	assert.InDelta(t, 0, result.BestConfidence, 1e-6)
}

func TestScoreEmpty(t *testing.T) {
	scorer, err := NewScorer(newTable(t, map[string][]float64{
		"irish":    {1, 1},
		"scottish": {-3, 4},
	}))
	require.NoError(t, err)

	result, err := scorer.ScoreEmpty()
	require.NoError(t, err)
	assert.True(t, result.Empty)
	assert.Equal(t, "irish", result.Best)
}

func TestScoreRejectsBadQueries(t *testing.T) {
	scorer, err := NewScorer(newTable(t, map[string][]float64{"irish": {1, 1, 1}}))
	require.NoError(t, err)

	_, err = scorer.Score([]float64{1, 1})
	var dimErr *DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 3, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Actual)

	_, err = scorer.Score([]float64{1, math.NaN(), 1})
	assert.ErrorIs(t, err, ErrNonFiniteQuery)
}

func TestNewScorerRequiresPrototypes(t *testing.T) {
	_, err := NewScorer(nil)
	assert.True(t, prototype.IsMissingModel(err))

	empty, err := prototype.NewTable(nil)
	require.NoError(t, err)
	_, err = NewScorer(empty)
	assert.True(t, prototype.IsMissingModel(err))
}

func rankedLabels(result *Result) []string {
	labels := make([]string, len(result.Ranking))
	for i, score := range result.Ranking {
		labels[i] = score.Label
	}
	return labels
}
