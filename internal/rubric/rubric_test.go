package rubric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/model"
)

func kps(n int) []model.KnowledgePoint {
	out := make([]model.KnowledgePoint, 0, n)
	for i := range n {
		id := string(rune('A' + i))
		out = append(out, model.KnowledgePoint{ID: "KP" + id, Statement: "statement " + id, Difficulty: model.DifficultyMedium})
	}
	return out
}

func TestFromKnowledgePoints(t *testing.T) {
	tests := []struct {
		n      int
		weight float64
	}{
		{1, 1},
		{3, 0.33},
		{6, 0.17},
		{7, 0.14},
	}
	for _, tt := range tests {
		dims := FromKnowledgePoints(kps(tt.n))
		require.Len(t, dims, tt.n)
		for _, d := range dims {
			assert.InDelta(t, tt.weight, d.Weight, 1e-9)
			assert.Equal(t, 100, d.MaxScore)
			assert.Equal(t, "DIM_"+d.Name, d.ID)
			assert.Equal(t, []string{d.Name}, d.RelatedKnowledgeIDs)
			require.Len(t, d.Levels, 5)

			// Levels run L5..L1 and cover 0..100 without gaps.
			assert.Equal(t, 100, d.Levels[0].ScoreRange[1])
			assert.Equal(t, 0, d.Levels[4].ScoreRange[0])
			for i := 0; i < 4; i++ {
				assert.Equal(t, d.Levels[i].ScoreRange[0]-1, d.Levels[i+1].ScoreRange[1])
			}
			for _, l := range d.Levels {
				assert.Contains(t, l.Description, d.Description)
			}
		}
	}
	assert.Nil(t, FromKnowledgePoints(nil))
}

func TestLevelFor(t *testing.T) {
	dim := FromKnowledgePoints(kps(1))[0]
	tests := []struct {
		score int
		grade string
	}{
		{100, "L5"}, {90, "L5"}, {89, "L4"}, {75, "L4"}, {74, "L3"},
		{60, "L3"}, {59, "L2"}, {40, "L2"}, {39, "L1"}, {0, "L1"},
	}
	for _, tt := range tests {
		l, ok := LevelFor(dim, tt.score)
		require.True(t, ok, "score %d", tt.score)
		assert.Equal(t, tt.grade, l.Grade, "score %d", tt.score)
	}
	_, ok := LevelFor(dim, 101)
	assert.False(t, ok)

	scaled := dim
	scaled.MaxScore = 20
	l, ok := LevelFor(scaled, 18)
	require.True(t, ok)
	assert.Equal(t, "L5", l.Grade)
}

func TestWeightedScore(t *testing.T) {
	dims := FromKnowledgePoints(kps(3))
	assert.InDelta(t, 0.99, TotalWeight(dims), 1e-9)

	full := map[string]int{"DIM_KPA": 100, "DIM_KPB": 100, "DIM_KPC": 100}
	assert.Equal(t, 100, WeightedScore(dims, full))

	mixed := map[string]int{"DIM_KPA": 90, "DIM_KPB": 60}
	assert.Equal(t, 50, WeightedScore(dims, mixed))

	assert.Equal(t, 0, WeightedScore(nil, full))

	class := []model.AssessmentDimension{
		{ID: "a", MaxScore: 30, Weight: 0.3},
		{ID: "b", MaxScore: 70, Weight: 0.7},
	}
	assert.Equal(t, 71, WeightedScore(class, map[string]int{"a": 15, "b": 56}))
}

func TestSetLevelDescription(t *testing.T) {
	dims := FromKnowledgePoints(kps(2))
	require.NoError(t, SetLevelDescription(dims, "DIM_KPB", 2, "edited"))
	assert.Equal(t, "edited", dims[1].Levels[2].Description)
	assert.NotEqual(t, "edited", dims[0].Levels[2].Description)

	assert.Error(t, SetLevelDescription(dims, "DIM_KPB", 5, "x"))
	assert.Error(t, SetLevelDescription(dims, "DIM_NOPE", 0, "x"))
}
