package store

import (
	"fmt"

	"github.com/pavelanni/classboard/internal/analytics"
	"github.com/pavelanni/classboard/internal/model"
)

// ExportStudents builds export-ready per-student results from the roster
// and the seating map.
func (s *Store) ExportStudents() ([]model.StudentReport, error) {
	students, err := s.ListStudents()
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	seats, err := s.ListSeats()
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	bySeat := make(map[int]model.StudentMastery, len(seats))
	for _, seat := range seats {
		bySeat[seat.ID] = seat
	}

	results := make([]model.StudentReport, 0, len(students))
	for _, st := range students {
		r := model.StudentReport{
			ID:            st.ID,
			Name:          st.Name,
			PreClassScore: st.PreClassScore,
			Status:        st.Status,
			KPMastery:     st.KPMastery,
		}
		if seat, ok := bySeat[st.ID]; ok {
			r.InClassScore = seat.MasteryScore
			r.Status = seat.Status
		}
		results = append(results, r)
	}
	return results, nil
}

// ExportLessonReport assembles the lesson report from the stored class and
// the static lesson content in b.
func (s *Store) ExportLessonReport(b *model.Bundle) (model.LessonReport, error) {
	var rep model.LessonReport

	info, err := s.GetLessonInfo()
	if err != nil {
		return rep, fmt.Errorf("lesson info: %w", err)
	}
	if info.Title == "" {
		info = b.Lesson
	}
	kps, err := s.ListKnowledgePoints()
	if err != nil {
		return rep, fmt.Errorf("list knowledge points: %w", err)
	}
	roster, err := s.ListStudents()
	if err != nil {
		return rep, fmt.Errorf("list students: %w", err)
	}
	seats, err := s.ListSeats()
	if err != nil {
		return rep, fmt.Errorf("list seats: %w", err)
	}
	students, err := s.ExportStudents()
	if err != nil {
		return rep, err
	}
	homework, err := s.ListHomework()
	if err != nil {
		return rep, fmt.Errorf("list homework: %w", err)
	}

	counts := make(map[string]int)
	for status, n := range analytics.StatusCounts(seats) {
		counts[string(status)] = n
	}

	return model.LessonReport{
		Lesson:           info,
		KnowledgePoints:  kps,
		ClassAverages:    analytics.ClassAverages(kps, roster),
		Distribution:     analytics.ScoreDistribution(seats),
		StatusCounts:     counts,
		InClassQuestions: b.InClassQuestions,
		Report:           b.Report,
		ClassroomScore:   b.Classroom.Score,
		Students:         students,
		Homework:         homework,
	}, nil
}
