package studio

import (
	"fmt"

	"github.com/pavelanni/classboard/internal/lesson"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/quiz"
	"github.com/pavelanni/classboard/internal/store"
)

// Import seeds an empty workspace from a lesson bundle: the lesson header,
// knowledge points, a generated class of size students, the default quizzes
// and dimensions, and the studio defaults.
func Import(st *store.Store, b *model.Bundle, seed uint64, size int) error {
	if err := st.SetLessonInfo(b.Lesson); err != nil {
		return fmt.Errorf("lesson info: %w", err)
	}
	if err := st.ReplaceKnowledgePoints(b.KnowledgePoints); err != nil {
		return fmt.Errorf("knowledge points: %w", err)
	}

	rng := lesson.NewRand(seed)
	roster := lesson.Roster(rng, b.KnowledgePoints, size)
	seats := lesson.Seating(rng, roster)
	if err := st.ReplaceClass(roster, seats); err != nil {
		return fmt.Errorf("class: %w", err)
	}
	if err := st.SetMetadata(store.KeySeed, fmt.Sprint(seed)); err != nil {
		return err
	}

	pre := make([]model.QuizItem, 0, len(b.PreClassQuiz))
	for _, q := range b.PreClassQuiz {
		q.Stage = model.StagePre
		if q.ID == "" {
			q.ID = quiz.NewID()
		}
		pre = append(pre, q)
	}
	if err := st.AddQuizItems(pre...); err != nil {
		return fmt.Errorf("pre-class quiz: %w", err)
	}
	in := make([]model.QuizItem, 0, len(b.InClassQuestions))
	for _, q := range b.InClassQuestions {
		in = append(in, quiz.FromTimeline(q))
	}
	if err := st.AddQuizItems(in...); err != nil {
		return fmt.Errorf("in-class quiz: %w", err)
	}
	if err := st.ReplaceDimensions(store.ScopeClass, b.ClassDimensions); err != nil {
		return fmt.Errorf("class dimensions: %w", err)
	}

	d := b.Studio
	for _, kv := range [][2]string{
		{store.KeyTheme, d.Theme},
		{store.KeyGrade, d.Grade},
		{store.KeySubject, d.Subject},
		{store.KeyKnowledgeView, ViewList},
	} {
		if err := st.SetMetadata(kv[0], kv[1]); err != nil {
			return err
		}
	}
	if err := st.SetList(store.KeyTags, d.Tags); err != nil {
		return err
	}
	if err := st.SetList(store.KeyAgents, d.Selected); err != nil {
		return err
	}
	for _, r := range d.Resources {
		if err := st.AddResource(r); err != nil {
			return fmt.Errorf("resource %s: %w", r.Name, err)
		}
	}
	return nil
}
