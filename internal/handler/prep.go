package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/classboard/internal/i18n"
	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/quiz"
	"github.com/pavelanni/classboard/internal/studio"
	"github.com/pavelanni/classboard/internal/views"
)

func (h *Handler) prepRoutes(r chi.Router) {
	r.Get("/", h.handlePrep)
	r.Get("/jobs/{key}", h.handleJob)

	r.Post("/theme", h.handleSetTheme)
	r.Post("/meta", h.handleSetMeta)
	r.Post("/tags", h.handleAddTag)
	r.Post("/tags/{index}/delete", h.handleRemoveTag)
	r.Post("/agents/{id}/toggle", h.handleToggleAgent)
	r.Post("/resources", h.handleAddResource)
	r.Post("/resources/{id}/delete", h.handleDeleteResource)

	r.Post("/knowledge/view", h.handleKnowledgeView)
	r.Post("/knowledge/parse", h.handleParse)

	r.Post("/quiz/{stage}/add", h.handleAddQuestion)
	r.Post("/quiz/{stage}/generate", h.handleGenerateQuestions)
	r.Post("/quiz/{stage}/{id}", h.handleUpdateQuestion)
	r.Post("/quiz/{stage}/{id}/select", h.handleSelectQuestion)
	r.Post("/quiz/{stage}/{id}/delete", h.handleDeleteQuestion)
	r.Post("/quiz/{stage}/{id}/correct/{index}", h.handleToggleCorrect)
	r.Post("/quiz/{stage}/{id}/knowledge/{kp}", h.handleToggleKnowledge)
	r.Post("/quiz/{stage}/{id}/answer", h.handleTrueFalse)

	r.Post("/model/generate", h.handleGenerateModel)
	r.Post("/model/{dim}/select", h.handleSelectDimension)
	r.Post("/model/{dim}/levels/{level}", h.handleLevelDescription)
}

func (h *Handler) toStep(w http.ResponseWriter, r *http.Request, step studio.Step) {
	h.redirect(w, r, "/prep?step="+string(step))
}

// done redirects back to step on success.
func (h *Handler) done(w http.ResponseWriter, r *http.Request, step studio.Step, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.toStep(w, r, step)
}

func (h *Handler) handlePrep(w http.ResponseWriter, r *http.Request) {
	ws, err := h.studio.Workspace(studio.ParseStep(r.URL.Query().Get("step")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, views.Page(i18n.T(r.Context(), "StudioTitle"), views.NavPrep, views.Prep(ws)))
}

// handleJob is polled while a studio job runs. A finished job asks htmx to
// reload the page so the revealed records show up.
func (h *Handler) handleJob(w http.ResponseWriter, r *http.Request) {
	st, err := h.studio.JobStatus(chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if st.State != jobs.StateRunning && st.State != jobs.StateIdle {
		w.Header().Set("HX-Refresh", "true")
	}
	h.render(w, r, views.JobStatus(st))
}

func (h *Handler) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, studio.StepResources, h.studio.SetTheme(r.FormValue("theme")))
}

func (h *Handler) handleSetMeta(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, studio.StepResources, h.studio.SetMeta(r.FormValue("grade"), r.FormValue("subject")))
}

func (h *Handler) handleAddTag(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, studio.StepResources, h.studio.AddTag(r.FormValue("tag")))
}

func (h *Handler) handleRemoveTag(w http.ResponseWriter, r *http.Request) {
	i, err := intParam(r, "index")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.done(w, r, studio.StepResources, h.studio.RemoveTag(i))
}

func (h *Handler) handleToggleAgent(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, studio.StepResources, h.studio.ToggleAgent(chi.URLParam(r, "id")))
}

// handleAddResource records an uploaded file. A post without a file adds
// the placeholder document.
func (h *Handler) handleAddResource(w http.ResponseWriter, r *http.Request) {
	var name, contentType string
	var size int64
	f, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		f.Close()
		name, size, contentType = hdr.Filename, hdr.Size, hdr.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		h.fail(w, r, fmt.Errorf("read upload: %v: %w", err, studio.ErrInvalid))
		return
	}
	_, err = h.studio.AddResource(name, size, contentType)
	h.done(w, r, studio.StepResources, err)
}

func (h *Handler) handleDeleteResource(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, studio.StepResources, h.studio.DeleteResource(chi.URLParam(r, "id")))
}

func (h *Handler) handleKnowledgeView(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, studio.StepKnowledge, h.studio.SetKnowledgeView(r.FormValue("view")))
}

func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	h.studio.StartParse()
	h.toStep(w, r, studio.StepKnowledge)
}

func stageStep(stage model.QuizStage) studio.Step {
	if stage == model.StageIn {
		return studio.StepInQuiz
	}
	return studio.StepPreQuiz
}

// withStage parses the stage URL parameter before calling fn.
func (h *Handler) withStage(fn func(w http.ResponseWriter, r *http.Request, stage model.QuizStage)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stage, err := studio.ParseStage(chi.URLParam(r, "stage"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		fn(w, r, stage)
	}
}

func (h *Handler) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	h.withStage(func(w http.ResponseWriter, r *http.Request, stage model.QuizStage) {
		_, err := h.studio.AddBlank(stage)
		h.done(w, r, stageStep(stage), err)
	})(w, r)
}

func (h *Handler) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	h.withStage(func(w http.ResponseWriter, r *http.Request, stage model.QuizStage) {
		h.studio.StartGenerate(stage)
		h.toStep(w, r, stageStep(stage))
	})(w, r)
}

func (h *Handler) handleSelectQuestion(w http.ResponseWriter, r *http.Request) {
	h.withStage(func(w http.ResponseWriter, r *http.Request, stage model.QuizStage) {
		h.done(w, r, stageStep(stage), h.studio.Select(stage, chi.URLParam(r, "id")))
	})(w, r)
}

func (h *Handler) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	h.withStage(func(w http.ResponseWriter, r *http.Request, stage model.QuizStage) {
		h.done(w, r, stageStep(stage), h.studio.Delete(stage, chi.URLParam(r, "id")))
	})(w, r)
}

func (h *Handler) editQuestion(w http.ResponseWriter, r *http.Request, edit func(*model.QuizItem) error) {
	h.withStage(func(w http.ResponseWriter, r *http.Request, stage model.QuizStage) {
		_, err := h.studio.Update(stage, chi.URLParam(r, "id"), edit)
		h.done(w, r, stageStep(stage), err)
	})(w, r)
}

// handleUpdateQuestion saves the editor form. A type change resets the
// answer fields, so option edits posted with it are dropped.
func (h *Handler) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	h.editQuestion(w, r, func(q *model.QuizItem) error {
		if err := r.ParseForm(); err != nil {
			return err
		}
		if t := model.ItemType(r.PostFormValue("type")); t != "" && t != q.Type {
			quiz.ChangeType(q, t)
		} else {
			for i := range q.Options {
				if v, ok := r.PostForm[fmt.Sprintf("option%d", i)]; ok {
					if err := quiz.SetOption(q, i, strings.TrimSpace(v[0])); err != nil {
						return err
					}
				}
			}
		}
		if _, ok := r.PostForm["content"]; ok {
			q.Content = strings.TrimSpace(r.PostFormValue("content"))
		}
		if _, ok := r.PostForm["analysis"]; ok {
			q.Analysis = strings.TrimSpace(r.PostFormValue("analysis"))
		}
		if v := r.PostFormValue("score"); v != "" {
			score, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("score %q: %w", v, err)
			}
			q.Score = score
		}
		return nil
	})
}

func (h *Handler) handleToggleCorrect(w http.ResponseWriter, r *http.Request) {
	i, err := intParam(r, "index")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.editQuestion(w, r, func(q *model.QuizItem) error {
		return quiz.ToggleCorrect(q, i)
	})
}

func (h *Handler) handleToggleKnowledge(w http.ResponseWriter, r *http.Request) {
	kp := chi.URLParam(r, "kp")
	h.editQuestion(w, r, func(q *model.QuizItem) error {
		quiz.ToggleKnowledge(q, kp)
		return nil
	})
}

func (h *Handler) handleTrueFalse(w http.ResponseWriter, r *http.Request) {
	v, err := strconv.ParseBool(r.FormValue("value"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("answer %q: %w", r.FormValue("value"), studio.ErrInvalid))
		return
	}
	h.editQuestion(w, r, func(q *model.QuizItem) error {
		return quiz.SetTrueFalse(q, v)
	})
}

func (h *Handler) handleGenerateModel(w http.ResponseWriter, r *http.Request) {
	_, err := h.studio.GenerateStudentModel()
	h.done(w, r, studio.StepStudentModel, err)
}

func (h *Handler) handleSelectDimension(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, studio.StepStudentModel, h.studio.SelectDimension(chi.URLParam(r, "dim")))
}

func (h *Handler) handleLevelDescription(w http.ResponseWriter, r *http.Request) {
	level, err := intParam(r, "level")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	err = h.studio.SetLevelDescription(chi.URLParam(r, "dim"), level, strings.TrimSpace(r.FormValue("description")))
	h.done(w, r, studio.StepStudentModel, err)
}
