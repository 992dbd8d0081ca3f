package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/model"
)

func TestBlank(t *testing.T) {
	a := Blank(model.StagePre)
	b := Blank(model.StagePre)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, model.StagePre, a.Stage)
	assert.Equal(t, model.ItemSingleChoice, a.Type)
	assert.Equal(t, []string{"选项A", "选项B", "选项C", "选项D"}, a.Options)
	assert.Equal(t, []int{0}, a.CorrectOptions)
	assert.Equal(t, 5, a.Score)
	require.NoError(t, Validate(a))

	a.Options[0] = "changed"
	assert.Equal(t, "选项A", Blank(model.StageIn).Options[0], "options are not shared")
}

func TestFromTimeline(t *testing.T) {
	calc := FromTimeline(model.QuizQuestion{ID: "Q1", Kind: model.KindCalculation, Content: "c", RelatedKnowledgeID: "KP2"})
	assert.Equal(t, "Q1", calc.ID)
	assert.Equal(t, model.ItemSubjective, calc.Type)
	assert.Equal(t, model.StageIn, calc.Stage)
	assert.Equal(t, []string{"A", "B", "C", "D"}, calc.Options)
	assert.Equal(t, []int{0}, calc.CorrectOptions)
	assert.Equal(t, 10, calc.Score)
	assert.Equal(t, "解析略", calc.Analysis)
	assert.Equal(t, []string{"KP2"}, calc.RelatedKnowledgeIDs)

	reason := FromTimeline(model.QuizQuestion{ID: "Q2", Kind: model.KindReasoning, Content: "r"})
	assert.Equal(t, model.ItemSingleChoice, reason.Type)
	assert.Empty(t, reason.RelatedKnowledgeIDs)
	require.NoError(t, Validate(reason))
}

func TestToggleCorrect(t *testing.T) {
	single := Blank(model.StageIn)
	require.NoError(t, ToggleCorrect(&single, 2))
	assert.Equal(t, []int{2}, single.CorrectOptions)
	require.NoError(t, ToggleCorrect(&single, 2))
	assert.Equal(t, []int{2}, single.CorrectOptions, "single choice keeps exactly one")

	multi := Blank(model.StageIn)
	ChangeType(&multi, model.ItemMultipleChoice)
	require.NoError(t, ToggleCorrect(&multi, 3))
	require.NoError(t, ToggleCorrect(&multi, 1))
	assert.Equal(t, []int{0, 1, 3}, multi.CorrectOptions)
	require.NoError(t, ToggleCorrect(&multi, 0))
	assert.Equal(t, []int{1, 3}, multi.CorrectOptions)

	assert.ErrorIs(t, ToggleCorrect(&multi, 4), ErrNoSuchOption)
	assert.ErrorIs(t, ToggleCorrect(&multi, -1), ErrNoSuchOption)

	subj := Blank(model.StageIn)
	ChangeType(&subj, model.ItemSubjective)
	assert.Error(t, ToggleCorrect(&subj, 0))
}

func TestChangeType(t *testing.T) {
	item := Blank(model.StagePre)
	ChangeType(&item, model.ItemMultipleChoice)
	require.NoError(t, ToggleCorrect(&item, 2))
	assert.Equal(t, []int{0, 2}, item.CorrectOptions)

	ChangeType(&item, model.ItemSingleChoice)
	assert.Equal(t, []int{0}, item.CorrectOptions)
	require.NoError(t, Validate(item))

	ChangeType(&item, model.ItemTrueFalse)
	assert.Nil(t, item.Options)
	assert.Nil(t, item.CorrectOptions)
	require.NotNil(t, item.CorrectBoolean)
	assert.True(t, *item.CorrectBoolean)
	require.NoError(t, SetTrueFalse(&item, false))
	assert.False(t, *item.CorrectBoolean)
	require.NoError(t, Validate(item))

	ChangeType(&item, model.ItemSubjective)
	assert.Nil(t, item.CorrectBoolean)
	require.NoError(t, Validate(item))
	assert.Error(t, SetTrueFalse(&item, true))

	ChangeType(&item, model.ItemSingleChoice)
	assert.Len(t, item.Options, 4)
	assert.Equal(t, []int{0}, item.CorrectOptions)
	require.NoError(t, Validate(item))
}

func TestToggleKnowledge(t *testing.T) {
	item := Blank(model.StagePre)
	ToggleKnowledge(&item, "KP1")
	ToggleKnowledge(&item, "KP3")
	assert.Equal(t, []string{"KP1", "KP3"}, item.RelatedKnowledgeIDs)
	ToggleKnowledge(&item, "KP1")
	assert.Equal(t, []string{"KP3"}, item.RelatedKnowledgeIDs)
}

func TestSetOption(t *testing.T) {
	item := Blank(model.StagePre)
	require.NoError(t, SetOption(&item, 1, "Ksp"))
	assert.Equal(t, "Ksp", item.Options[1])
	assert.ErrorIs(t, SetOption(&item, 9, "x"), ErrNoSuchOption)
}

func TestValidate(t *testing.T) {
	yes := true
	tests := []struct {
		name string
		item model.QuizItem
		ok   bool
	}{
		{"single ok", model.QuizItem{ID: "1", Type: model.ItemSingleChoice, Content: "c", Options: []string{"a", "b"}, CorrectOptions: []int{1}}, true},
		{"missing content", model.QuizItem{ID: "1", Type: model.ItemSingleChoice, Options: []string{"a", "b"}, CorrectOptions: []int{1}}, false},
		{"bad type", model.QuizItem{ID: "1", Type: "essay", Content: "c"}, false},
		{"one option", model.QuizItem{ID: "1", Type: model.ItemSingleChoice, Content: "c", Options: []string{"a"}, CorrectOptions: []int{0}}, false},
		{"two correct on single", model.QuizItem{ID: "1", Type: model.ItemSingleChoice, Content: "c", Options: []string{"a", "b"}, CorrectOptions: []int{0, 1}}, false},
		{"no correct", model.QuizItem{ID: "1", Type: model.ItemMultipleChoice, Content: "c", Options: []string{"a", "b"}}, false},
		{"correct out of range", model.QuizItem{ID: "1", Type: model.ItemMultipleChoice, Content: "c", Options: []string{"a", "b"}, CorrectOptions: []int{0, 2}}, false},
		{"true false without answer", model.QuizItem{ID: "1", Type: model.ItemTrueFalse, Content: "c"}, false},
		{"true false ok", model.QuizItem{ID: "1", Type: model.ItemTrueFalse, Content: "c", CorrectBoolean: &yes}, true},
		{"score too high", model.QuizItem{ID: "1", Type: model.ItemSubjective, Content: "c", Score: 101}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.item)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGenerated(t *testing.T) {
	canned := []model.QuizItem{
		{ID: "AI_Q1", Type: model.ItemSingleChoice, Content: "c1", Options: []string{"a", "b"}, CorrectOptions: []int{1}, Score: 5, RelatedKnowledgeIDs: []string{"KP4"}},
		{ID: "AI_Q2", Type: model.ItemMultipleChoice, Content: "c2", Options: []string{"a", "b", "c"}, CorrectOptions: []int{0, 1}, Score: 8},
	}
	first := Generated(model.StageIn, canned)
	second := Generated(model.StageIn, canned)
	require.Len(t, first, 2)
	for i := range first {
		assert.NotEqual(t, canned[i].ID, first[i].ID)
		assert.NotEqual(t, first[i].ID, second[i].ID)
		assert.Equal(t, model.StageIn, first[i].Stage)
		assert.Equal(t, canned[i].Content, first[i].Content)
		require.NoError(t, Validate(first[i]))
	}

	first[0].Options[0] = "mutated"
	first[0].RelatedKnowledgeIDs[0] = "KP9"
	assert.Equal(t, "a", canned[0].Options[0])
	assert.Equal(t, "KP4", canned[0].RelatedKnowledgeIDs[0])
}

func TestOptionLetter(t *testing.T) {
	assert.Equal(t, "A", OptionLetter(0))
	assert.Equal(t, "D", OptionLetter(3))
}
