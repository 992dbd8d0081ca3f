package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pavelanni/classboard/internal/homework"
	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/store"
	"github.com/pavelanni/classboard/internal/studio"
	"github.com/pavelanni/classboard/internal/views"
)

// MaxUploadBytes bounds request bodies, uploads included.
const MaxUploadBytes = 32 << 20

// Config holds the HTTP-facing settings.
type Config struct {
	BasePath      string // URL prefix for sub-path deployments (e.g. "/class3")
	SecureCookies bool
	StudentID     int // roster id of the student shown in the student center
	PreviewDelay  time.Duration
	PostDelay     time.Duration
}

// Default upload timings of the student center.
const (
	DefaultPreviewDelay = 1500 * time.Millisecond
	DefaultPostDelay    = 2 * time.Second
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	bundle   *model.Bundle
	studio   *studio.Service
	homework *homework.Generator
	runner   *jobs.Runner
	config   Config
}

// New creates a new Handler.
func New(s *store.Store, b *model.Bundle, st *studio.Service, g *homework.Generator, runner *jobs.Runner, cfg Config) (*Handler, error) {
	if s == nil || b == nil || st == nil || g == nil || runner == nil {
		return nil, errors.New("handler: missing dependency")
	}
	return &Handler{store: s, bundle: b, studio: st, homework: g, runner: runner, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestSize(MaxUploadBytes))
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleDashboard)
		r.Get("/students/{id}", h.handleStudent)
		r.Get("/report.json", h.handleReport)

		r.Get("/homework", h.handleHomework)
		r.Post("/homework/generate", h.handleGenerateHomework)
		r.Get("/homework/progress", h.handleHomeworkProgress)
		r.Get("/homework/{studentID}", h.handleHomeworkDetail)
		r.Post("/homework/{studentID}/push", h.handlePushHomework)

		r.Route("/prep", h.prepRoutes)

		r.Get("/student", h.handleStudentHome)
		r.Get("/student/courses/{id}", h.handleCourse)
		r.Get("/student/courses/{id}/uploads/{kind}", h.handleUploadStatus)
		r.Post("/student/courses/{id}/preview", h.handleUpload(views.UploadPreview))
		r.Post("/student/courses/{id}/post", h.handleUpload(views.UploadPost))
		r.Post("/student/courses/{id}/post/reset", h.handleUploadReset)
		r.Get("/student/courses/{id}/homework.txt", h.handleHomeworkText)
	})
}

// BasePathMiddleware stores the configured base path in the request context.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// path prefixes an application path with the base path.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, p string) {
	http.Redirect(w, r, h.path(p), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render error", "path", r.URL.Path, "error", err)
	}
}

// fail maps an error to a status code: 404 for unknown ids, 400 for bad
// input, 500 otherwise.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, studio.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, studio.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, chi.URLParam(r, name), studio.ErrInvalid)
	}
	return v, nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.SchemaVersion(); err != nil {
		slog.Error("health check failed", "error", err)
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.store.ExportLessonReport(h.bundle)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		h.fail(w, r, fmt.Errorf("marshal report: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(append(data, '\n'))
}
