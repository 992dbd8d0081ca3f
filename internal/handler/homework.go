package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pavelanni/classboard/internal/i18n"
	"github.com/pavelanni/classboard/internal/studio"
	"github.com/pavelanni/classboard/internal/views"
)

func (h *Handler) homeworkData() (views.HomeworkData, error) {
	d := views.HomeworkData{Status: h.homework.Status()}
	plans, err := h.store.ListHomework()
	if err != nil {
		return d, fmt.Errorf("list homework: %w", err)
	}
	d.Plans = plans
	if d.Total, err = h.store.StudentCount(); err != nil {
		return d, fmt.Errorf("count students: %w", err)
	}
	return d, nil
}

func (h *Handler) handleHomework(w http.ResponseWriter, r *http.Request) {
	d, err := h.homeworkData()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, views.Page(i18n.T(r.Context(), "HomeworkTitle"), views.NavHomework, views.HomeworkPage(d)))
}

func (h *Handler) handleGenerateHomework(w http.ResponseWriter, r *http.Request) {
	seats, err := h.store.ListSeats()
	if err != nil {
		h.fail(w, r, fmt.Errorf("list seats: %w", err))
		return
	}
	if err := h.homework.Start(r.Context(), seats, h.bundle.HomeworkPool); err != nil {
		h.fail(w, r, err)
		return
	}
	slog.Info("homework generation started", "students", len(seats))
	h.redirect(w, r, "/homework")
}

func (h *Handler) handleHomeworkProgress(w http.ResponseWriter, r *http.Request) {
	d, err := h.homeworkData()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, views.HomeworkProgress(d))
}

func (h *Handler) handleHomeworkDetail(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "studentID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	hw, err := h.store.GetHomework(id)
	if err != nil {
		h.fail(w, r, fmt.Errorf("get homework: %w", err))
		return
	}
	if hw == nil {
		h.fail(w, r, fmt.Errorf("homework for student %d: %w", id, studio.ErrNotFound))
		return
	}
	h.render(w, r, views.Page(hw.StudentName, views.NavHomework, views.HomeworkDetail(*hw)))
}

func (h *Handler) handlePushHomework(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "studentID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok, err := h.store.MarkHomeworkPushed(id)
	if err != nil {
		h.fail(w, r, fmt.Errorf("push homework: %w", err))
		return
	}
	if !ok {
		h.fail(w, r, fmt.Errorf("homework for student %d: %w", id, studio.ErrNotFound))
		return
	}
	slog.Info("homework pushed", "student_id", id)
	h.redirect(w, r, fmt.Sprintf("/homework/%d", id))
}
