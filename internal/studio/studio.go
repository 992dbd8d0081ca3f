// Package studio implements the preparation studio: the teacher's workspace
// for resources, knowledge points, quizzes and assessment models.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/pavelanni/classboard/internal/chart"
	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/quiz"
	"github.com/pavelanni/classboard/internal/rubric"
	"github.com/pavelanni/classboard/internal/store"
)

// Step is a page of the studio.
type Step string

const (
	StepResources    Step = "resources"
	StepKnowledge    Step = "knowledge"
	StepPreQuiz      Step = "pre_quiz"
	StepInQuiz       Step = "in_quiz"
	StepStudentModel Step = "student_model"
	StepClassModel   Step = "class_model"
)

// Steps lists the studio pages in order.
var Steps = []Step{StepResources, StepKnowledge, StepPreQuiz, StepInQuiz, StepStudentModel, StepClassModel}

// ParseStep returns the step named s, or the first step.
func ParseStep(s string) Step {
	if slices.Contains(Steps, Step(s)) {
		return Step(s)
	}
	return StepResources
}

// Knowledge views.
const (
	ViewList    = "list"
	ViewMindMap = "mindmap"
)

// Job keys.
const (
	JobParse       = "kp-parse"
	JobGeneratePre = "quiz-pre"
	JobGenerateIn  = "quiz-in"
)

// Default upload shown when a resource is added without a file.
const (
	DefaultResourceName = "新建教学资源.pdf"
	DefaultResourceSize = 2_400_000
)

var (
	// ErrNotFound is returned for unknown ids.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned for malformed input.
	ErrInvalid = errors.New("invalid input")
)

// Delays configures the placeholder generation timers.
type Delays struct {
	Parse    time.Duration
	Generate time.Duration
}

// DefaultDelays match the timings the studio has always used.
var DefaultDelays = Delays{Parse: 2 * time.Second, Generate: 1500 * time.Millisecond}

// Service runs studio operations against the store.
type Service struct {
	mu     sync.Mutex
	store  *store.Store
	bundle *model.Bundle
	runner *jobs.Runner
	delays Delays
}

// New creates a studio service. The bundle provides agents and the canned
// records revealed by the generation jobs.
func New(st *store.Store, b *model.Bundle, runner *jobs.Runner, delays Delays) *Service {
	return &Service{store: st, bundle: b, runner: runner, delays: delays}
}

// MindMapNode is a knowledge point placed on the mind map.
type MindMapNode struct {
	KnowledgePoint model.KnowledgePoint
	At             chart.Point
}

// Workspace is everything a studio page renders.
type Workspace struct {
	Step    Step
	Theme   string
	Grade   string
	Subject string
	Tags    []string

	Agents         []model.Agent
	SelectedAgents []string
	Resources      []model.ResourceItem

	KnowledgePoints []model.KnowledgePoint
	KnowledgeView   string
	MindMap         []MindMapNode
	Parse           jobs.Status

	Stage    model.QuizStage
	Quiz     []model.QuizItem
	Selected *model.QuizItem
	Generate jobs.Status

	StudentDimensions []model.AssessmentDimension
	SelectedDimension *model.AssessmentDimension
	ClassDimensions   []model.AssessmentDimension
}

// AgentSelected reports whether the agent is attached to the course.
func (w *Workspace) AgentSelected(id string) bool {
	return slices.Contains(w.SelectedAgents, id)
}

// Linked reports whether the selected question is tagged with kpID.
func (w *Workspace) Linked(kpID string) bool {
	return w.Selected != nil && slices.Contains(w.Selected.RelatedKnowledgeIDs, kpID)
}

// StageForStep maps a quiz step to its stage.
func StageForStep(step Step) (model.QuizStage, bool) {
	switch step {
	case StepPreQuiz:
		return model.StagePre, true
	case StepInQuiz:
		return model.StageIn, true
	}
	return "", false
}

// ParseStage validates a stage from a URL.
func ParseStage(s string) (model.QuizStage, error) {
	switch model.QuizStage(s) {
	case model.StagePre, model.StageIn:
		return model.QuizStage(s), nil
	}
	return "", fmt.Errorf("stage %q: %w", s, ErrInvalid)
}

// GenerateJob is the job key of the question generator for a stage.
func GenerateJob(stage model.QuizStage) string {
	if stage == model.StageIn {
		return JobGenerateIn
	}
	return JobGeneratePre
}

func selectedKey(stage model.QuizStage) string {
	if stage == model.StageIn {
		return store.KeySelectedIn
	}
	return store.KeySelectedPre
}

// Workspace loads the state of one studio page.
func (s *Service) Workspace(step Step) (*Workspace, error) {
	w := &Workspace{Step: step, Agents: s.bundle.Studio.Agents}

	var err error
	if w.Theme, err = s.store.GetMetadata(store.KeyTheme); err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	if w.Grade, err = s.store.GetMetadata(store.KeyGrade); err != nil {
		return nil, fmt.Errorf("grade: %w", err)
	}
	if w.Subject, err = s.store.GetMetadata(store.KeySubject); err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	if w.Tags, err = s.store.GetList(store.KeyTags); err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}
	if w.SelectedAgents, err = s.store.GetList(store.KeyAgents); err != nil {
		return nil, fmt.Errorf("agents: %w", err)
	}

	switch step {
	case StepResources:
		if w.Resources, err = s.store.ListResources(); err != nil {
			return nil, fmt.Errorf("list resources: %w", err)
		}
	case StepKnowledge:
		if err := s.loadKnowledge(w); err != nil {
			return nil, err
		}
	case StepPreQuiz, StepInQuiz:
		if err := s.loadQuiz(w); err != nil {
			return nil, err
		}
	case StepStudentModel:
		if err := s.loadStudentModel(w); err != nil {
			return nil, err
		}
	case StepClassModel:
		if w.ClassDimensions, err = s.store.ListDimensions(store.ScopeClass); err != nil {
			return nil, fmt.Errorf("list class dimensions: %w", err)
		}
	}
	return w, nil
}

func (s *Service) loadKnowledge(w *Workspace) error {
	var err error
	if w.KnowledgePoints, err = s.store.ListKnowledgePoints(); err != nil {
		return fmt.Errorf("list knowledge points: %w", err)
	}
	view, err := s.store.GetMetadata(store.KeyKnowledgeView)
	if err != nil {
		return fmt.Errorf("knowledge view: %w", err)
	}
	w.KnowledgeView = ViewList
	if view == ViewMindMap {
		w.KnowledgeView = ViewMindMap
	}
	w.MindMap = MindMap(w.KnowledgePoints)
	w.Parse = s.runner.Status(JobParse)
	return nil
}

func (s *Service) loadQuiz(w *Workspace) error {
	stage, _ := StageForStep(w.Step)
	w.Stage = stage

	var err error
	if w.Quiz, err = s.store.ListQuizItems(stage); err != nil {
		return fmt.Errorf("list quiz items: %w", err)
	}
	if w.KnowledgePoints, err = s.store.ListKnowledgePoints(); err != nil {
		return fmt.Errorf("list knowledge points: %w", err)
	}
	sel, err := s.store.GetMetadata(selectedKey(stage))
	if err != nil {
		return fmt.Errorf("selected question: %w", err)
	}
	for i := range w.Quiz {
		if w.Quiz[i].ID == sel {
			w.Selected = &w.Quiz[i]
			break
		}
	}
	w.Generate = s.runner.Status(GenerateJob(stage))
	return nil
}

func (s *Service) loadStudentModel(w *Workspace) error {
	var err error
	if w.StudentDimensions, err = s.store.ListDimensions(store.ScopeStudent); err != nil {
		return fmt.Errorf("list student dimensions: %w", err)
	}
	sel, err := s.store.GetMetadata(store.KeySelectedDim)
	if err != nil {
		return fmt.Errorf("selected dimension: %w", err)
	}
	for i := range w.StudentDimensions {
		if w.StudentDimensions[i].ID == sel {
			w.SelectedDimension = &w.StudentDimensions[i]
			break
		}
	}
	return nil
}

// MindMap places knowledge points on a circle around the lesson centre.
func MindMap(kps []model.KnowledgePoint) []MindMapNode {
	pts := chart.Radial(len(kps), 300, 200, 150)
	nodes := make([]MindMapNode, len(kps))
	for i, kp := range kps {
		nodes[i] = MindMapNode{KnowledgePoint: kp, At: pts[i]}
	}
	return nodes
}

// SetTheme sets the course theme.
func (s *Service) SetTheme(theme string) error {
	return s.store.SetMetadata(store.KeyTheme, strings.TrimSpace(theme))
}

// SetMeta sets grade and subject.
func (s *Service) SetMeta(grade, subject string) error {
	if err := s.store.SetMetadata(store.KeyGrade, strings.TrimSpace(grade)); err != nil {
		return err
	}
	return s.store.SetMetadata(store.KeySubject, strings.TrimSpace(subject))
}

// AddTag appends a tag. Blank and duplicate tags are ignored.
func (s *Service) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tags, err := s.store.GetList(store.KeyTags)
	if err != nil {
		return err
	}
	if slices.Contains(tags, tag) {
		return nil
	}
	return s.store.SetList(store.KeyTags, append(tags, tag))
}

// RemoveTag removes the tag at index i.
func (s *Service) RemoveTag(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags, err := s.store.GetList(store.KeyTags)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(tags) {
		return fmt.Errorf("tag %d: %w", i, ErrNotFound)
	}
	return s.store.SetList(store.KeyTags, slices.Delete(tags, i, i+1))
}

// ToggleAgent attaches or detaches an agent.
func (s *Service) ToggleAgent(id string) error {
	if !slices.ContainsFunc(s.bundle.Studio.Agents, func(a model.Agent) bool { return a.ID == id }) {
		return fmt.Errorf("agent %q: %w", id, ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := s.store.GetList(store.KeyAgents)
	if err != nil {
		return err
	}
	if i := slices.Index(sel, id); i >= 0 {
		sel = slices.Delete(sel, i, i+1)
	} else {
		sel = append(sel, id)
	}
	return s.store.SetList(store.KeyAgents, sel)
}

// ResourceType guesses the media type of an uploaded file.
func ResourceType(name, contentType string) model.ResourceType {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return model.ResourceVideo
	case strings.HasPrefix(contentType, "image/"):
		return model.ResourceImage
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4", ".mov", ".webm", ".avi":
		return model.ResourceVideo
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
		return model.ResourceImage
	}
	return model.ResourceDocument
}

// AddResource records an uploaded file. An empty name adds the default
// placeholder document.
func (s *Service) AddResource(name string, size int64, contentType string) (model.ResourceItem, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		name, size, contentType = DefaultResourceName, DefaultResourceSize, ""
	}
	r := model.ResourceItem{
		ID:     uuid.NewString(),
		Name:   name,
		Type:   ResourceType(name, contentType),
		Size:   humanize.Bytes(uint64(max(size, 0))),
		Status: "ready",
	}
	if err := s.store.AddResource(r); err != nil {
		return r, fmt.Errorf("add resource: %w", err)
	}
	slog.Info("resource added", "name", r.Name, "size", r.Size, "type", r.Type)
	return r, nil
}

// DeleteResource removes a resource.
func (s *Service) DeleteResource(id string) error {
	ok, err := s.store.DeleteResource(id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if !ok {
		return fmt.Errorf("resource %q: %w", id, ErrNotFound)
	}
	return nil
}

// SetKnowledgeView switches the knowledge page between list and mind map.
func (s *Service) SetKnowledgeView(view string) error {
	if view != ViewList && view != ViewMindMap {
		return fmt.Errorf("view %q: %w", view, ErrInvalid)
	}
	return s.store.SetMetadata(store.KeyKnowledgeView, view)
}

// StartParse starts the placeholder document analysis, which appends the
// canned knowledge points that are not already present.
func (s *Service) StartParse() {
	canned := slices.Clone(s.bundle.AI.KnowledgePoints)
	s.runner.After(JobParse, s.delays.Parse, func(ctx context.Context) error {
		n, err := s.store.AppendKnowledgePoints(canned)
		if err != nil {
			return fmt.Errorf("append knowledge points: %w", err)
		}
		slog.Info("knowledge points parsed", "added", n)
		return nil
	})
}

// StartGenerate starts the placeholder question generator for a stage.
func (s *Service) StartGenerate(stage model.QuizStage) {
	canned := slices.Clone(s.bundle.AI.Questions)
	s.runner.After(GenerateJob(stage), s.delays.Generate, func(ctx context.Context) error {
		items := quiz.Generated(stage, canned)
		if err := s.store.AddQuizItems(items...); err != nil {
			return fmt.Errorf("add generated questions: %w", err)
		}
		slog.Info("questions generated", "stage", stage, "count", len(items))
		return nil
	})
}

// JobStatus reports a studio job.
func (s *Service) JobStatus(key string) (jobs.Status, error) {
	switch key {
	case JobParse, JobGeneratePre, JobGenerateIn:
		return s.runner.Status(key), nil
	}
	return jobs.Status{}, fmt.Errorf("job %q: %w", key, ErrNotFound)
}

// AddBlank appends a blank question to a stage and selects it.
func (s *Service) AddBlank(stage model.QuizStage) (model.QuizItem, error) {
	item := quiz.Blank(stage)
	if err := s.store.AddQuizItems(item); err != nil {
		return item, fmt.Errorf("add question: %w", err)
	}
	if err := s.store.SetMetadata(selectedKey(stage), item.ID); err != nil {
		return item, fmt.Errorf("select question: %w", err)
	}
	return item, nil
}

func (s *Service) item(stage model.QuizStage, id string) (*model.QuizItem, error) {
	item, err := s.store.GetQuizItem(id)
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if item == nil || item.Stage != stage {
		return nil, fmt.Errorf("question %q: %w", id, ErrNotFound)
	}
	return item, nil
}

// Select makes a question the one shown in the editor.
func (s *Service) Select(stage model.QuizStage, id string) error {
	if _, err := s.item(stage, id); err != nil {
		return err
	}
	return s.store.SetMetadata(selectedKey(stage), id)
}

// Delete removes a question and clears the selection if it was selected.
func (s *Service) Delete(stage model.QuizStage, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.item(stage, id); err != nil {
		return err
	}
	if _, err := s.store.DeleteQuizItem(id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	sel, err := s.store.GetMetadata(selectedKey(stage))
	if err != nil {
		return err
	}
	if sel == id {
		return s.store.SetMetadata(selectedKey(stage), "")
	}
	return nil
}

// Update applies edit to a question and saves it if it still validates.
func (s *Service) Update(stage model.QuizStage, id string, edit func(*model.QuizItem) error) (model.QuizItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.item(stage, id)
	if err != nil {
		return model.QuizItem{}, err
	}
	if err := edit(item); err != nil {
		return *item, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := quiz.Validate(*item); err != nil {
		return *item, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := s.store.UpdateQuizItem(*item); err != nil {
		return *item, fmt.Errorf("update question: %w", err)
	}
	return *item, nil
}

// GenerateStudentModel rebuilds the student rubric from the current
// knowledge points and selects its first dimension.
func (s *Service) GenerateStudentModel() ([]model.AssessmentDimension, error) {
	kps, err := s.store.ListKnowledgePoints()
	if err != nil {
		return nil, fmt.Errorf("list knowledge points: %w", err)
	}
	dims := rubric.FromKnowledgePoints(kps)
	if err := s.store.ReplaceDimensions(store.ScopeStudent, dims); err != nil {
		return nil, fmt.Errorf("save dimensions: %w", err)
	}
	sel := ""
	if len(dims) > 0 {
		sel = dims[0].ID
	}
	if err := s.store.SetMetadata(store.KeySelectedDim, sel); err != nil {
		return nil, err
	}
	return dims, nil
}

// SelectDimension makes a dimension the one shown in the level editor.
func (s *Service) SelectDimension(id string) error {
	dims, err := s.store.ListDimensions(store.ScopeStudent)
	if err != nil {
		return fmt.Errorf("list dimensions: %w", err)
	}
	if !slices.ContainsFunc(dims, func(d model.AssessmentDimension) bool { return d.ID == id }) {
		return fmt.Errorf("dimension %q: %w", id, ErrNotFound)
	}
	return s.store.SetMetadata(store.KeySelectedDim, id)
}

// SetLevelDescription edits the description of one level of a dimension.
func (s *Service) SetLevelDescription(dimID string, level int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dims, err := s.store.ListDimensions(store.ScopeStudent)
	if err != nil {
		return fmt.Errorf("list dimensions: %w", err)
	}
	if err := rubric.SetLevelDescription(dims, dimID, level, text); err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return s.store.ReplaceDimensions(store.ScopeStudent, dims)
}
