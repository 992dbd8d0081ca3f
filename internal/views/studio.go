package views

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/pavelanni/classboard/internal/i18n"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/rubric"
	"github.com/pavelanni/classboard/internal/studio"
)

var stepLabels = map[studio.Step]string{
	studio.StepResources:    "StepResources",
	studio.StepKnowledge:    "StepKnowledge",
	studio.StepPreQuiz:      "StepPreQuiz",
	studio.StepInQuiz:       "StepInQuiz",
	studio.StepStudentModel: "StepStudentModel",
	studio.StepClassModel:   "StepClassModel",
}

func stepURL(step studio.Step) string {
	return "/prep?step=" + url.QueryEscape(string(step))
}

var knowledgeViews = []struct{ view, label string }{
	{studio.ViewList, "ListView"},
	{studio.ViewMindMap, "MindMapView"},
}

var itemTypes = []struct {
	t  model.ItemType
	id string
}{
	{model.ItemSingleChoice, "ItemSingleChoice"},
	{model.ItemMultipleChoice, "ItemMultipleChoice"},
	{model.ItemTrueFalse, "ItemTrueFalse"},
	{model.ItemSubjective, "ItemSubjective"},
}

func typeLabel(ctx context.Context, t model.ItemType) string {
	for _, it := range itemTypes {
		if it.t == t {
			return i18n.T(ctx, it.id)
		}
	}
	return string(t)
}

func quizPath(stage model.QuizStage, parts ...string) string {
	p := "/prep/quiz/" + string(stage)
	for _, s := range parts {
		p += "/" + url.PathEscape(s)
	}
	return p
}

func agentPath(id string) string {
	return "/prep/agents/" + url.PathEscape(id) + "/toggle"
}

func resourcePath(id string) string {
	return "/prep/resources/" + url.PathEscape(id) + "/delete"
}

func tagPath(i int) string {
	return fmt.Sprintf("/prep/tags/%d/delete", i)
}

func dimensionPath(id string) string {
	return "/prep/model/" + url.PathEscape(id) + "/select"
}

func levelPath(dimID string, level int) string {
	return fmt.Sprintf("/prep/model/%s/levels/%d", url.PathEscape(dimID), level)
}

func agentLabel(ctx context.Context, w *studio.Workspace, id string) string {
	if w.AgentSelected(id) {
		return i18n.T(ctx, "Detach")
	}
	return i18n.T(ctx, "Attach")
}

func isSelected(w *studio.Workspace, q model.QuizItem) bool {
	return w.Selected != nil && w.Selected.ID == q.ID
}

func isDimensionSelected(w *studio.Workspace, d model.AssessmentDimension) bool {
	return w.SelectedDimension != nil && w.SelectedDimension.ID == d.ID
}

func primaryIf(on bool) string {
	if on {
		return "primary"
	}
	return ""
}

func isCorrect(q model.QuizItem, i int) bool {
	return slices.Contains(q.CorrectOptions, i)
}

type trueFalseOption struct {
	value, label string
	on           bool
}

func trueFalseOptions(q model.QuizItem) []trueFalseOption {
	return []trueFalseOption{
		{"true", "True", q.CorrectBoolean != nil && *q.CorrectBoolean},
		{"false", "False", q.CorrectBoolean != nil && !*q.CorrectBoolean},
	}
}

func optionField(i int) string {
	return fmt.Sprintf("option%d", i)
}

func isChoice(t model.ItemType) bool {
	return t == model.ItemSingleChoice || t == model.ItemMultipleChoice
}

func totalWeight(ctx context.Context, dims []model.AssessmentDimension) string {
	return i18n.Td(ctx, "TotalWeight", map[string]any{"Weight": fmt.Sprintf("%.2f", rubric.TotalWeight(dims))})
}

func weightValue(ctx context.Context, w float64) string {
	return i18n.Td(ctx, "WeightValue", map[string]any{"Weight": fmt.Sprintf("%.2f", w)})
}

func scoreRange(l model.AssessmentLevel) string {
	return fmt.Sprintf("%d-%d", l.ScoreRange[0], l.ScoreRange[1])
}
