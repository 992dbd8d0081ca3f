package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/analytics"
	"github.com/pavelanni/classboard/internal/model"
)

func TestParseDefault(t *testing.T) {
	b, err := Parse(Default())
	require.NoError(t, err)

	assert.Equal(t, "高二(3)班", b.Lesson.Class)
	require.Len(t, b.KnowledgePoints, 3)
	assert.Equal(t, "KP3", b.KnowledgePoints[2].ID)
	assert.Len(t, b.InClassQuestions, 3)
	assert.Len(t, b.HomeworkPool, 7)
	assert.Len(t, b.ClassDimensions, 4)
	assert.Len(t, b.AI.KnowledgePoints, 3)
	assert.Len(t, b.AI.Questions, 2)
	for _, q := range b.PreClassQuiz {
		assert.Equal(t, model.StagePre, q.Stage)
	}
}

func TestParseRejectsBadBundles(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"unknown field", `{"lesson":{"title":"x"},"knowledge_points":[{"id":"KP1","statement":"s","difficulty":"Easy"}],"bogus":1}`},
		{"no knowledge points", `{"lesson":{"title":"x"},"knowledge_points":[]}`},
		{"bad difficulty", `{"lesson":{"title":"x"},"knowledge_points":[{"id":"KP1","statement":"s","difficulty":"Trivial"}]}`},
		{"mastery out of range", `{"lesson":{"title":"x"},"knowledge_points":[{"id":"KP1","statement":"s","mastery_rate":101,"difficulty":"Easy"}]}`},
		{"duplicate ids", `{"lesson":{"title":"x"},"knowledge_points":[{"id":"KP1","statement":"s","difficulty":"Easy"},{"id":"KP1","statement":"t","difficulty":"Hard"}]}`},
		{"missing title", `{"lesson":{},"knowledge_points":[{"id":"KP1","statement":"s","difficulty":"Easy"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestRoster(t *testing.T) {
	b, err := Parse(Default())
	require.NoError(t, err)

	roster := Roster(NewRand(7), b.KnowledgePoints, 48)
	require.Len(t, roster, 48)
	for i, s := range roster {
		assert.Equal(t, i, s.ID)
		assert.GreaterOrEqual(t, s.MasteryScore, 60)
		assert.Less(t, s.MasteryScore, 100)
		assert.Equal(t, s.MasteryScore, s.PreClassScore)
		assert.Equal(t, analytics.StatusForScore(s.MasteryScore), s.Status)
		for _, kp := range b.KnowledgePoints {
			v, ok := s.KPMastery[kp.ID]
			require.True(t, ok)
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
		// KP3 is hard: never above the overall score.
		assert.LessOrEqual(t, s.KPMastery["KP3"], s.MasteryScore)
		// KP2 is easy: at most five below.
		assert.GreaterOrEqual(t, s.KPMastery["KP2"], s.MasteryScore-5)
	}

	again := Roster(NewRand(7), b.KnowledgePoints, 48)
	assert.Equal(t, roster, again, "same seed yields the same class")
}

func TestSeating(t *testing.T) {
	roster := []model.StudentResult{
		{StudentMastery: model.StudentMastery{ID: 0, Name: "a", MasteryScore: 98, Status: model.StatusMastered}},
		{StudentMastery: model.StudentMastery{ID: 1, Name: "b", MasteryScore: 65, Status: model.StatusAtRisk}},
		{StudentMastery: model.StudentMastery{ID: 2, Name: "c", MasteryScore: 75, Status: model.StatusPassing}},
	}
	seats := Seating(NewRand(1), roster)
	require.Len(t, seats, 3)
	assert.Equal(t, 100, seats[0].MasteryScore, "capped at 100")
	assert.Equal(t, 70, seats[1].MasteryScore)
	assert.Contains(t, []model.MasteryStatus{model.StatusAtRisk, model.StatusPassing}, seats[1].Status)
	assert.Equal(t, model.StatusPassing, seats[2].Status)
	assert.Equal(t, model.StatusMastered, seats[0].Status)
}
