package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/model"
)

var testKPs = []model.KnowledgePoint{
	{ID: "KP1", Statement: "definition", MasteryRate: 85, Difficulty: model.DifficultyMedium},
	{ID: "KP2", Statement: "calculation", MasteryRate: 92, Difficulty: model.DifficultyEasy},
}

func student(id, score int, kp map[string]int) model.StudentResult {
	return model.StudentResult{
		StudentMastery: model.StudentMastery{ID: id, MasteryScore: score, Status: StatusForScore(score)},
		KPMastery:      kp,
		PreClassScore:  score,
	}
}

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score int
		want  model.MasteryStatus
	}{
		{0, model.StatusAtRisk},
		{69, model.StatusAtRisk},
		{70, model.StatusPassing},
		{84, model.StatusPassing},
		{85, model.StatusMastered},
		{100, model.StatusMastered},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForScore(tt.score), "score %d", tt.score)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3))
	assert.Equal(t, 100, Clamp(104))
	assert.Equal(t, 42, Clamp(42))
}

func TestClassAverages(t *testing.T) {
	roster := []model.StudentResult{
		student(0, 80, map[string]int{"KP1": 80, "KP2": 91}),
		student(1, 70, map[string]int{"KP1": 71}),
	}
	avgs := ClassAverages(testKPs, roster)
	assert.Equal(t, 76, avgs["KP1"]) // 75.5 rounds up
	assert.Equal(t, 46, avgs["KP2"]) // missing value counts as zero

	empty := ClassAverages(testKPs, nil)
	assert.Equal(t, map[string]int{"KP1": 0, "KP2": 0}, empty)
}

func TestRadarShaping(t *testing.T) {
	avgs := map[string]int{"KP1": 60}

	pre := PreClassRadar(testKPs, avgs)
	require.Len(t, pre, 2)
	assert.Equal(t, model.RadarAxis{Subject: "KP1", FullText: "definition", A: 60, FullMark: 100}, pre[0])
	assert.Equal(t, 0, pre[1].A)

	in := InClassRadar(testKPs)
	assert.Equal(t, 85, in[0].A)
	assert.Equal(t, 92, in[1].A)

	s := student(3, 90, map[string]int{"KP1": 95})
	cmp := StudentCompare(testKPs, s, avgs)
	require.Len(t, cmp, 2)
	assert.Equal(t, 60, cmp[0].A)
	assert.Equal(t, 95, cmp[0].B)
	assert.Equal(t, DefaultClassAverage, cmp[1].A, "missing average falls back to default")
	assert.Equal(t, 0, cmp[1].B, "missing student value is zero")
}

func TestScoreDistribution(t *testing.T) {
	seats := []model.StudentMastery{
		{MasteryScore: 100}, {MasteryScore: 90}, {MasteryScore: 89},
		{MasteryScore: 75}, {MasteryScore: 74}, {MasteryScore: 60}, {MasteryScore: 59},
	}
	got := ScoreDistribution(seats)
	require.Len(t, got, 4)
	assert.Equal(t, []int{2, 2, 2, 1}, []int{got[0].Value, got[1].Value, got[2].Value, got[3].Value})
}

func TestStatusCounts(t *testing.T) {
	seats := []model.StudentMastery{
		{Status: model.StatusAtRisk}, {Status: model.StatusAtRisk}, {Status: model.StatusMastered},
	}
	c := StatusCounts(seats)
	assert.Equal(t, 2, c[model.StatusAtRisk])
	assert.Equal(t, 0, c[model.StatusPassing])
	assert.Equal(t, 1, c[model.StatusMastered])
	assert.Equal(t, 2, AtRiskCount(seats))

	chart := MasteryChart(seats)
	assert.Equal(t, ColorRed, chart[2].Color)
	assert.Equal(t, 2, chart[2].Value)
}

func TestPercentileRank(t *testing.T) {
	roster := []model.StudentResult{
		student(0, 60, nil), student(1, 70, nil), student(2, 80, nil), student(3, 80, nil), student(4, 95, nil),
	}
	assert.Equal(t, 0, PercentileRank(roster, roster[0]))
	assert.Equal(t, 50, PercentileRank(roster, roster[2]), "ties do not count as beaten")
	assert.Equal(t, 100, PercentileRank(roster, roster[4]))
	assert.Equal(t, 0, PercentileRank(roster[:1], roster[0]))
}

func TestColors(t *testing.T) {
	assert.Equal(t, ColorGreen, MasteryColor(81))
	assert.Equal(t, ColorYellow, MasteryColor(80))
	assert.Equal(t, ColorRed, MasteryColor(60))
	assert.Equal(t, ColorBlue, StatusColor(model.StatusPassing))

	assert.InDelta(t, 1.0, SeatOpacity(model.StudentMastery{Status: model.StatusAtRisk, MasteryScore: 40}), 1e-9)
	assert.InDelta(t, 0.8, SeatOpacity(model.StudentMastery{Status: model.StatusPassing, MasteryScore: 80}), 1e-9)
}
