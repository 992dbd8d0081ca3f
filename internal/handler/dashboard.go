package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pavelanni/classboard/internal/analytics"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/studio"
	"github.com/pavelanni/classboard/internal/views"
)

func (h *Handler) dashboardData() (views.DashboardData, error) {
	d := views.DashboardData{Bundle: h.bundle}
	var err error
	if d.Lesson, err = h.store.GetLessonInfo(); err != nil {
		return d, fmt.Errorf("lesson info: %w", err)
	}
	if d.Lesson.Title == "" {
		d.Lesson = h.bundle.Lesson
	}
	if d.KnowledgePoints, err = h.store.ListKnowledgePoints(); err != nil {
		return d, fmt.Errorf("list knowledge points: %w", err)
	}
	if d.Roster, err = h.store.ListStudents(); err != nil {
		return d, fmt.Errorf("list students: %w", err)
	}
	if d.Seats, err = h.store.ListSeats(); err != nil {
		return d, fmt.Errorf("list seats: %w", err)
	}
	d.Averages = analytics.ClassAverages(d.KnowledgePoints, d.Roster)
	return d, nil
}

// studentDetail builds the detail panel for id, or nil if there is no such
// student.
func (h *Handler) studentDetail(d views.DashboardData, id int) (*views.StudentDetail, error) {
	var student *model.StudentResult
	for i := range d.Roster {
		if d.Roster[i].ID == id {
			student = &d.Roster[i]
			break
		}
	}
	if student == nil {
		return nil, nil
	}
	detail := &views.StudentDetail{
		Student:         *student,
		Percentile:      analytics.PercentileRank(d.Roster, *student),
		Compare:         analytics.StudentCompare(d.KnowledgePoints, *student, d.Averages),
		KnowledgePoints: d.KnowledgePoints,
	}
	for i := range d.Seats {
		if d.Seats[i].ID == id {
			detail.Seat = &d.Seats[i]
			break
		}
	}
	hw, err := h.store.GetHomework(id)
	if err != nil {
		return nil, fmt.Errorf("get homework: %w", err)
	}
	detail.Homework = hw
	return detail, nil
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboardData()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if s := r.URL.Query().Get("student"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			http.Error(w, "invalid student ID", http.StatusBadRequest)
			return
		}
		if d.Student, err = h.studentDetail(d, id); err != nil {
			h.fail(w, r, err)
			return
		}
	}
	h.render(w, r, views.Page(d.Lesson.Title, views.NavDashboard, views.Dashboard(d)))
}

// handleStudent serves the detail panel alone, for htmx swaps.
func (h *Handler) handleStudent(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.dashboardData()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail, err := h.studentDetail(d, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if detail == nil {
		h.fail(w, r, fmt.Errorf("student %d: %w", id, studio.ErrNotFound))
		return
	}
	if r.Header.Get("HX-Request") == "true" {
		h.render(w, r, views.StudentPanel(*detail))
		return
	}
	h.render(w, r, views.Page(detail.Student.Name, views.NavDashboard, views.StudentPanel(*detail)))
}
