package homework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/model"
)

var pool = []model.HomeworkQuestion{
	{ID: "B1", Difficulty: model.TierBasic},
	{ID: "B2", Difficulty: model.TierBasic},
	{ID: "B3", Difficulty: model.TierBasic},
	{ID: "B4", Difficulty: model.TierBasic},
	{ID: "I1", Difficulty: model.TierAdvanced},
	{ID: "I2", Difficulty: model.TierAdvanced},
	{ID: "I3", Difficulty: model.TierAdvanced},
	{ID: "A1", Difficulty: model.TierExtended},
	{ID: "A2", Difficulty: model.TierExtended},
}

func ids(qs []model.HomeworkQuestion) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func TestAssignByBand(t *testing.T) {
	tests := []struct {
		status  model.MasteryStatus
		want    []string
		comment string
		kind    string
	}{
		{model.StatusAtRisk, []string{"B1", "B2", "B3"}, CommentAtRisk, KindReinforcement},
		{model.StatusPassing, []string{"B1", "I1", "I2"}, CommentPassing, KindReinforcement},
		{model.StatusMastered, []string{"I1", "A1", "A2"}, CommentMastered, KindExtension},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			s := model.StudentMastery{ID: 7, Name: "学生 8", Status: tt.status}
			hw := Assign(s, pool)
			assert.Equal(t, 7, hw.StudentID)
			assert.Equal(t, "学生 8", hw.StudentName)
			assert.Equal(t, tt.want, ids(hw.Questions))
			assert.Equal(t, tt.comment, hw.Comment)
			assert.Equal(t, tt.kind, Kind(hw))
			assert.False(t, hw.Pushed)
		})
	}
}

func TestAssignShortPool(t *testing.T) {
	short := []model.HomeworkQuestion{{ID: "B1", Difficulty: model.TierBasic}}
	hw := Assign(model.StudentMastery{Status: model.StatusAtRisk}, short)
	require.Len(t, hw.Questions, 1)

	hw = Assign(model.StudentMastery{Status: model.StatusMastered}, short)
	assert.Empty(t, hw.Questions)
	assert.Equal(t, KindExtension, Kind(hw))
}
