package studio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/lesson"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/quiz"
	"github.com/pavelanni/classboard/internal/store"
)

func newService(t *testing.T) (*Service, *store.Store, *jobs.Runner) {
	t.Helper()
	b, err := lesson.Parse(lesson.Default())
	require.NoError(t, err)
	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, Import(st, b, 7, 12))

	runner := jobs.NewRunner(context.Background())
	t.Cleanup(runner.Close)
	return New(st, b, runner, Delays{}), st, runner
}

func waitJob(t *testing.T, runner *jobs.Runner, key string) jobs.Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return runner.Wait(ctx, key)
}

func TestImport(t *testing.T) {
	_, st, _ := newService(t)

	n, err := st.StudentCount()
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	info, err := st.GetLessonInfo()
	require.NoError(t, err)
	assert.Equal(t, "王老师", info.Teacher)

	pre, err := st.ListQuizItems(model.StagePre)
	require.NoError(t, err)
	assert.Len(t, pre, 2)

	in, err := st.ListQuizItems(model.StageIn)
	require.NoError(t, err)
	require.Len(t, in, 3)
	assert.Equal(t, "Q1", in[0].ID)

	dims, err := st.ListDimensions(store.ScopeClass)
	require.NoError(t, err)
	assert.Len(t, dims, 4)

	res, err := st.ListResources()
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestParseStep(t *testing.T) {
	assert.Equal(t, StepKnowledge, ParseStep("knowledge"))
	assert.Equal(t, StepResources, ParseStep(""))
	assert.Equal(t, StepResources, ParseStep("bogus"))
}

func TestResourceStep(t *testing.T) {
	s, _, _ := newService(t)

	require.NoError(t, s.SetTheme("  新主题 "))
	require.NoError(t, s.SetMeta("高三年级", "物理"))
	require.NoError(t, s.AddTag("实验"))
	require.NoError(t, s.AddTag("实验"))
	require.NoError(t, s.AddTag("  "))
	require.NoError(t, s.RemoveTag(0))
	assert.ErrorIs(t, s.RemoveTag(10), ErrNotFound)

	require.NoError(t, s.ToggleAgent("agent_chem"))
	require.NoError(t, s.ToggleAgent("agent_calc"))
	assert.ErrorIs(t, s.ToggleAgent("nobody"), ErrNotFound)

	w, err := s.Workspace(StepResources)
	require.NoError(t, err)
	assert.Equal(t, "新主题", w.Theme)
	assert.Equal(t, "高三年级", w.Grade)
	assert.Equal(t, "物理", w.Subject)
	assert.Equal(t, []string{"选修四", "难溶电解质", "实验"}, w.Tags)
	assert.Equal(t, []string{"agent_calc"}, w.SelectedAgents)
	assert.True(t, w.AgentSelected("agent_calc"))
	assert.False(t, w.AgentSelected("agent_chem"))
}

func TestResources(t *testing.T) {
	s, _, _ := newService(t)

	r, err := s.AddResource("", 0, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultResourceName, r.Name)
	assert.Equal(t, "2.4 MB", r.Size)
	assert.Equal(t, model.ResourceDocument, r.Type)

	v, err := s.AddResource("lab.mp4", 5_000_000, "")
	require.NoError(t, err)
	assert.Equal(t, model.ResourceVideo, v.Type)

	w, err := s.Workspace(StepResources)
	require.NoError(t, err)
	require.Len(t, w.Resources, 4)
	assert.Equal(t, "lab.mp4", w.Resources[3].Name)

	require.NoError(t, s.DeleteResource(r.ID))
	assert.ErrorIs(t, s.DeleteResource(r.ID), ErrNotFound)
}

func TestResourceType(t *testing.T) {
	assert.Equal(t, model.ResourceImage, ResourceType("a.bin", "image/png"))
	assert.Equal(t, model.ResourceImage, ResourceType("photo.JPG", ""))
	assert.Equal(t, model.ResourceVideo, ResourceType("x", "video/mp4"))
	assert.Equal(t, model.ResourceDocument, ResourceType("notes.pptx", "application/octet-stream"))
}

func TestKnowledgeParse(t *testing.T) {
	s, _, runner := newService(t)

	require.NoError(t, s.SetKnowledgeView(ViewMindMap))
	assert.ErrorIs(t, s.SetKnowledgeView("grid"), ErrInvalid)

	s.StartParse()
	st := waitJob(t, runner, JobParse)
	require.Equal(t, jobs.StateDone, st.State)

	w, err := s.Workspace(StepKnowledge)
	require.NoError(t, err)
	assert.Equal(t, ViewMindMap, w.KnowledgeView)
	require.Len(t, w.KnowledgePoints, 6)
	assert.Len(t, w.MindMap, 6)

	// A second parse adds nothing new.
	s.StartParse()
	waitJob(t, runner, JobParse)
	w, err = s.Workspace(StepKnowledge)
	require.NoError(t, err)
	assert.Len(t, w.KnowledgePoints, 6)
}

func TestQuizEditing(t *testing.T) {
	s, _, _ := newService(t)

	item, err := s.AddBlank(model.StagePre)
	require.NoError(t, err)

	w, err := s.Workspace(StepPreQuiz)
	require.NoError(t, err)
	assert.Equal(t, model.StagePre, w.Stage)
	require.Len(t, w.Quiz, 3)
	require.NotNil(t, w.Selected)
	assert.Equal(t, item.ID, w.Selected.ID)

	_, err = s.Update(model.StagePre, item.ID, func(q *model.QuizItem) error {
		quiz.ChangeType(q, model.ItemMultipleChoice)
		return quiz.ToggleCorrect(q, 2)
	})
	require.NoError(t, err)

	_, err = s.Update(model.StagePre, item.ID, func(q *model.QuizItem) error {
		quiz.ToggleKnowledge(q, "KP2")
		return nil
	})
	require.NoError(t, err)

	w, err = s.Workspace(StepPreQuiz)
	require.NoError(t, err)
	require.NotNil(t, w.Selected)
	assert.Equal(t, model.ItemMultipleChoice, w.Selected.Type)
	assert.True(t, w.Linked("KP2"))
	assert.False(t, w.Linked("KP1"))

	_, err = s.Update(model.StagePre, item.ID, func(q *model.QuizItem) error {
		q.Content = ""
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Update(model.StagePre, item.ID, func(q *model.QuizItem) error {
		return quiz.SetOption(q, 9, "x")
	})
	assert.ErrorIs(t, err, ErrInvalid)

	// Items are scoped to their stage.
	assert.ErrorIs(t, s.Select(model.StageIn, item.ID), ErrNotFound)

	require.NoError(t, s.Delete(model.StagePre, item.ID))
	w, err = s.Workspace(StepPreQuiz)
	require.NoError(t, err)
	assert.Nil(t, w.Selected)
	assert.Len(t, w.Quiz, 2)
}

func TestDeleteKeepsOtherSelection(t *testing.T) {
	s, _, _ := newService(t)

	in, err := s.Workspace(StepInQuiz)
	require.NoError(t, err)
	require.NoError(t, s.Select(model.StageIn, "Q1"))
	require.NoError(t, s.Delete(model.StageIn, in.Quiz[1].ID))

	w, err := s.Workspace(StepInQuiz)
	require.NoError(t, err)
	require.NotNil(t, w.Selected)
	assert.Equal(t, "Q1", w.Selected.ID)
}

func TestGenerateQuestions(t *testing.T) {
	s, _, runner := newService(t)

	s.StartGenerate(model.StageIn)
	st := waitJob(t, runner, JobGenerateIn)
	require.Equal(t, jobs.StateDone, st.State)

	w, err := s.Workspace(StepInQuiz)
	require.NoError(t, err)
	require.Len(t, w.Quiz, 5)
	assert.NotEqual(t, "AI_Q1", w.Quiz[3].ID)
	assert.Equal(t, model.StageIn, w.Quiz[3].Stage)
	assert.Equal(t, jobs.StateDone, w.Generate.State)

	_, err = s.JobStatus("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStudentModel(t *testing.T) {
	s, _, _ := newService(t)

	w, err := s.Workspace(StepStudentModel)
	require.NoError(t, err)
	assert.Empty(t, w.StudentDimensions)
	assert.Nil(t, w.SelectedDimension)

	dims, err := s.GenerateStudentModel()
	require.NoError(t, err)
	require.Len(t, dims, 3)

	require.NoError(t, s.SelectDimension("DIM_KP2"))
	assert.ErrorIs(t, s.SelectDimension("DIM_X"), ErrNotFound)
	require.NoError(t, s.SetLevelDescription("DIM_KP2", 0, "全部正确"))
	assert.ErrorIs(t, s.SetLevelDescription("DIM_KP2", 9, "x"), ErrNotFound)

	w, err = s.Workspace(StepStudentModel)
	require.NoError(t, err)
	require.NotNil(t, w.SelectedDimension)
	assert.Equal(t, "DIM_KP2", w.SelectedDimension.ID)
	assert.Equal(t, "全部正确", w.SelectedDimension.Levels[0].Description)

	w, err = s.Workspace(StepClassModel)
	require.NoError(t, err)
	assert.Len(t, w.ClassDimensions, 4)
}
