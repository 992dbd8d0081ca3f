package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/classboard/internal/analytics"
	"github.com/pavelanni/classboard/internal/i18n"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/studio"
	"github.com/pavelanni/classboard/internal/views"
)

const defaultPhotoName = "photo.jpg"

func uploadJob(courseID, kind string) string {
	return "upload-" + courseID + "-" + kind
}

func (h *Handler) course(id string) (model.StudentCourse, error) {
	for _, c := range h.bundle.Courses {
		if c.ID == id {
			return c, nil
		}
	}
	return model.StudentCourse{}, fmt.Errorf("course %q: %w", id, studio.ErrNotFound)
}

// me returns the student the center is rendered for.
func (h *Handler) me() (*model.StudentResult, error) {
	st, err := h.store.GetStudent(h.config.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("student %d: %w", h.config.StudentID, studio.ErrNotFound)
	}
	return st, nil
}

func (h *Handler) upload(courseID, kind, tab string) (views.Upload, error) {
	status, name, err := h.store.GetUpload(courseID, kind)
	if err != nil {
		return views.Upload{}, fmt.Errorf("get upload: %w", err)
	}
	if tab != views.TabAI {
		tab = views.TabStudent
	}
	return views.Upload{CourseID: courseID, Kind: kind, Status: status, FileName: name, Tab: tab}, nil
}

func (h *Handler) handleStudentHome(w http.ResponseWriter, r *http.Request) {
	st, err := h.me()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d := views.StudentHomeData{Name: st.Name, Courses: h.bundle.Courses}
	h.render(w, r, views.Page(i18n.T(r.Context(), "NavStudent"), views.NavStudent, views.StudentHome(d)))
}

func (h *Handler) handleCourse(w http.ResponseWriter, r *http.Request) {
	c, err := h.course(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	st, err := h.me()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	kps, err := h.store.ListKnowledgePoints()
	if err != nil {
		h.fail(w, r, fmt.Errorf("list knowledge points: %w", err))
		return
	}
	roster, err := h.store.ListStudents()
	if err != nil {
		h.fail(w, r, fmt.Errorf("list students: %w", err))
		return
	}

	d := views.CourseData{
		Course:    c,
		Student:   st.Name,
		Questions: h.bundle.PostClassQuestions,
		Radar:     analytics.StudentCompare(kps, *st, analytics.ClassAverages(kps, roster)),
	}
	tab := r.URL.Query().Get("tab")
	if d.Preview, err = h.upload(c.ID, views.UploadPreview, tab); err != nil {
		h.fail(w, r, err)
		return
	}
	if d.Post, err = h.upload(c.ID, views.UploadPost, tab); err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, views.Page(c.Title, views.NavStudent, views.CoursePage(d)))
}

func parseKind(kind string) (string, error) {
	if kind != views.UploadPreview && kind != views.UploadPost {
		return "", fmt.Errorf("upload kind %q: %w", kind, studio.ErrInvalid)
	}
	return kind, nil
}

// handleUploadStatus is polled by the upload card while a photo is being
// received.
func (h *Handler) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	c, err := h.course(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	kind, err := parseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.upload(c.ID, kind, r.URL.Query().Get("tab"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, views.UploadCard(u))
}

// handleUpload accepts a photo and marks it submitted after the configured
// delay. The photo itself is not kept.
func (h *Handler) handleUpload(kind string) http.HandlerFunc {
	delay := h.config.PreviewDelay
	if kind == views.UploadPost {
		delay = h.config.PostDelay
	}
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.course(chi.URLParam(r, "id"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		name := defaultPhotoName
		if f, hdr, err := r.FormFile("photo"); err == nil {
			f.Close()
			if hdr.Filename != "" {
				name = hdr.Filename
			}
		}
		if err := h.store.SetUpload(c.ID, kind, model.UploadUploading, name); err != nil {
			h.fail(w, r, fmt.Errorf("set upload: %w", err))
			return
		}
		slog.Info("photo upload started", "course", c.ID, "kind", kind, "file", name)
		h.runner.After(uploadJob(c.ID, kind), delay, func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return h.store.SetUpload(c.ID, kind, model.UploadSubmitted, name)
		})
		h.redirect(w, r, "/student/courses/"+c.ID)
	}
}

// handleUploadReset lets the student upload the homework photo again.
func (h *Handler) handleUploadReset(w http.ResponseWriter, r *http.Request) {
	c, err := h.course(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	key := uploadJob(c.ID, views.UploadPost)
	h.runner.Cancel(key)
	// A job already past its ctx check would mark the photo submitted again.
	h.runner.Wait(r.Context(), key)
	if err := h.store.SetUpload(c.ID, views.UploadPost, model.UploadPending, ""); err != nil {
		h.fail(w, r, fmt.Errorf("reset upload: %w", err))
		return
	}
	h.redirect(w, r, "/student/courses/"+c.ID)
}

// handleHomeworkText serves the post-class questions as a plain-text file.
func (h *Handler) handleHomeworkText(w http.ResponseWriter, r *http.Request) {
	c, err := h.course(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var b strings.Builder
	b.WriteString(i18n.Td(r.Context(), "HomeworkFileTitle", map[string]any{"Title": c.Title}))
	b.WriteString("\n\n")
	for i, q := range h.bundle.PostClassQuestions {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, q.Type, q.Content)
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="homework-%s.txt"`, c.ID))
	_, _ = w.Write([]byte(b.String()))
}
