package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/homework"
	"github.com/pavelanni/classboard/internal/i18n"
	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/lesson"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/store"
	"github.com/pavelanni/classboard/internal/studio"
)

const testToken = "test-token"

type testApp struct {
	router http.Handler
	store  *store.Store
	bundle *model.Bundle
	runner *jobs.Runner
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWith(t, Config{StudentID: 8})
}

func newTestAppWith(t *testing.T, cfg Config) *testApp {
	t.Helper()
	require.NoError(t, i18n.Init("zh"))

	b, err := lesson.Parse(lesson.Default())
	require.NoError(t, err)
	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, studio.Import(st, b, 7, 12))

	runner := jobs.NewRunner(context.Background())
	t.Cleanup(runner.Close)

	h, err := New(st, b, studio.New(st, b, runner, studio.Delays{}),
		homework.NewGenerator(runner, st, 0), runner, cfg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(i18n.Middleware(cfg.BasePath))
	r.Use(h.BasePathMiddleware)
	h.Routes(r)
	return &testApp{router: r, store: st, bundle: b, runner: runner}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// post sends a form with a valid CSRF cookie and token.
func (a *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", testToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testToken})
	return a.do(req)
}

func (a *testApp) postFile(path, field, name string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("csrf_token", testToken)
	fw, _ := mw.CreateFormFile(field, name)
	_, _ = fw.Write([]byte("data"))
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testToken})
	return a.do(req)
}

func (a *testApp) wait(t *testing.T, key string) jobs.Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.runner.Wait(ctx, key)
}

func TestHealthz(t *testing.T) {
	a := newTestApp(t)
	rec := a.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestDashboard(t *testing.T) {
	a := newTestApp(t)

	rec := a.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), a.bundle.Lesson.Title)
	assert.NotContains(t, rec.Body.String(), `id="student-detail"`)

	rec = a.get("/?student=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="student-detail"`)
	assert.Contains(t, rec.Body.String(), "学生 4")

	rec = a.get("/?student=999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `id="student-detail"`)

	rec = a.get("/?student=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentPanel(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/students/2", nil)
	req.Header.Set("HX-Request", "true")
	rec := a.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<div id="student-detail"`))
	assert.Contains(t, rec.Body.String(), "学生 3")

	rec = a.get("/students/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")

	assert.Equal(t, http.StatusNotFound, a.get("/students/99").Code)
	assert.Equal(t, http.StatusBadRequest, a.get("/students/x").Code)
}

func TestLanguage(t *testing.T) {
	a := newTestApp(t)
	zh := a.get("/").Body.String()
	en := a.get("/?lang=en").Body.String()
	assert.NotEqual(t, zh, en)
	assert.Contains(t, en, `lang="en"`)
}

func TestCSRF(t *testing.T) {
	a := newTestApp(t)

	rec := a.get("/homework")
	var issued string
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfCookieName {
			issued = c.Value
		}
	}
	require.NotEmpty(t, issued)
	assert.Contains(t, rec.Body.String(), issued)

	form := url.Values{"theme": {"新主题"}}
	req := httptest.NewRequest(http.MethodPost, "/prep/theme", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusForbidden, a.do(req).Code, "no cookie")

	form.Set("csrf_token", "wrong")
	req = httptest.NewRequest(http.MethodPost, "/prep/theme", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testToken})
	assert.Equal(t, http.StatusForbidden, a.do(req).Code, "mismatch")

	rec = a.post("/prep/theme", url.Values{"theme": {"新主题"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rotated := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfCookieName && c.Value != testToken {
			rotated = true
		}
	}
	assert.True(t, rotated)

	theme, err := a.store.GetMetadata(store.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "新主题", theme)
}

func TestReport(t *testing.T) {
	a := newTestApp(t)
	rec := a.get("/report.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rep model.LessonReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, a.bundle.Lesson.Title, rep.Lesson.Title)
	assert.Len(t, rep.Students, 12)
	assert.Len(t, rep.KnowledgePoints, len(a.bundle.KnowledgePoints))
}

func TestHomeworkFlow(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusNotFound, a.get("/homework/0").Code)

	rec := a.post("/homework/generate", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/homework", rec.Header().Get("Location"))
	st := a.wait(t, homework.JobKey)
	require.Equal(t, jobs.StateDone, st.State)
	assert.Equal(t, 12, st.Done)

	rec = a.get("/homework")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/homework/11")

	rec = a.get("/homework/progress")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hx-trigger")

	rec = a.get("/homework/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "学生 1")

	rec = a.post("/homework/0/push", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/homework/0", rec.Header().Get("Location"))
	hw, err := a.store.GetHomework(0)
	require.NoError(t, err)
	assert.True(t, hw.Pushed)

	assert.Equal(t, http.StatusNotFound, a.post("/homework/99/push", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.post("/homework/x/push", nil).Code)
}

func TestPrepPages(t *testing.T) {
	a := newTestApp(t)
	for _, step := range studio.Steps {
		rec := a.get("/prep?step=" + string(step))
		assert.Equal(t, http.StatusOK, rec.Code, step)
	}
	assert.Equal(t, http.StatusOK, a.get("/prep?step=bogus").Code)
}

func TestPrepResources(t *testing.T) {
	a := newTestApp(t)

	rec := a.post("/prep/tags", url.Values{"tag": {" 新标签 "}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/prep?step=resources", rec.Header().Get("Location"))
	tags, err := a.store.GetList(store.KeyTags)
	require.NoError(t, err)
	assert.Contains(t, tags, "新标签")

	assert.Equal(t, http.StatusNotFound, a.post("/prep/tags/99/delete", nil).Code)
	assert.Equal(t, http.StatusSeeOther, a.post("/prep/tags/0/delete", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.post("/prep/agents/nope/toggle", nil).Code)

	before, err := a.store.ListResources()
	require.NoError(t, err)

	rec = a.postFile("/prep/resources", "file", "实验视频.mp4")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = a.post("/prep/resources", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	after, err := a.store.ListResources()
	require.NoError(t, err)
	require.Len(t, after, len(before)+2)
	var names []string
	for _, r := range after {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "实验视频.mp4")
	assert.Contains(t, names, studio.DefaultResourceName)

	assert.Equal(t, http.StatusNotFound, a.post("/prep/resources/nope/delete", nil).Code)
	assert.Equal(t, http.StatusSeeOther, a.post("/prep/resources/"+after[0].ID+"/delete", nil).Code)
}

func TestPrepKnowledge(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, http.StatusBadRequest, a.post("/prep/knowledge/view", url.Values{"view": {"grid"}}).Code)
	rec := a.post("/prep/knowledge/view", url.Values{"view": {string(studio.ViewMindMap)}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/prep?step=knowledge", rec.Header().Get("Location"))

	require.Equal(t, http.StatusSeeOther, a.post("/prep/knowledge/parse", nil).Code)
	st := a.wait(t, studio.JobParse)
	require.Equal(t, jobs.StateDone, st.State)

	rec = a.get("/prep/jobs/" + studio.JobParse)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))

	rec = a.get("/prep/jobs/" + studio.JobGeneratePre)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("HX-Refresh"))

	assert.Equal(t, http.StatusNotFound, a.get("/prep/jobs/nope").Code)
}

func TestPrepQuiz(t *testing.T) {
	a := newTestApp(t)

	rec := a.post("/prep/quiz/pre/add", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/prep?step=pre_quiz", rec.Header().Get("Location"))
	pre, err := a.store.ListQuizItems(model.StagePre)
	require.NoError(t, err)
	assert.Len(t, pre, 3)

	rec = a.post("/prep/quiz/in/Q1", url.Values{"content": {" 新题干 "}, "score": {"7"}, "analysis": {"解析"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/prep?step=in_quiz", rec.Header().Get("Location"))
	q, err := a.store.GetQuizItem("Q1")
	require.NoError(t, err)
	assert.Equal(t, "新题干", q.Content)
	assert.Equal(t, 7, q.Score)
	assert.Equal(t, "解析", q.Analysis)

	assert.Equal(t, http.StatusBadRequest, a.post("/prep/quiz/in/Q1", url.Values{"score": {"abc"}}).Code)
	assert.Equal(t, http.StatusBadRequest, a.post("/prep/quiz/later/add", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.post("/prep/quiz/in/nope/select", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.post("/prep/quiz/pre/Q1/select", nil).Code, "wrong stage")
	assert.Equal(t, http.StatusBadRequest, a.post("/prep/quiz/in/Q1/answer", url.Values{"value": {"maybe"}}).Code)

	require.Equal(t, http.StatusSeeOther, a.post("/prep/quiz/in/Q1/knowledge/KP3", nil).Code)
	q, err = a.store.GetQuizItem("Q1")
	require.NoError(t, err)
	assert.Contains(t, q.RelatedKnowledgeIDs, "KP3")

	require.Equal(t, http.StatusSeeOther, a.post("/prep/quiz/in/Q1/delete", nil).Code)
	q, err = a.store.GetQuizItem("Q1")
	require.NoError(t, err)
	assert.Nil(t, q)

	require.Equal(t, http.StatusSeeOther, a.post("/prep/quiz/in/generate", nil).Code)
	st := a.wait(t, studio.JobGenerateIn)
	assert.Equal(t, jobs.StateDone, st.State)
}

func TestPrepStudentModel(t *testing.T) {
	a := newTestApp(t)

	rec := a.post("/prep/model/generate", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/prep?step=student_model", rec.Header().Get("Location"))

	dims, err := a.store.ListDimensions(store.ScopeStudent)
	require.NoError(t, err)
	require.NotEmpty(t, dims)
	id := dims[0].ID

	require.Equal(t, http.StatusSeeOther, a.post("/prep/model/"+id+"/select", nil).Code)
	rec = a.post("/prep/model/"+id+"/levels/0", url.Values{"description": {" 完全掌握 "}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	dims, err = a.store.ListDimensions(store.ScopeStudent)
	require.NoError(t, err)
	assert.Equal(t, "完全掌握", dims[0].Levels[0].Description)

	assert.Equal(t, http.StatusNotFound, a.post("/prep/model/nope/select", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.post("/prep/model/"+id+"/levels/x", nil).Code)
}

func TestStudentCenter(t *testing.T) {
	a := newTestApp(t)

	rec := a.get("/student")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "学生 9")

	rec = a.get("/student/courses/c1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "第三章 函数与方程")
	assert.Equal(t, http.StatusNotFound, a.get("/student/courses/nope").Code)
	assert.Equal(t, http.StatusBadRequest, a.get("/student/courses/c1/uploads/other").Code)
}

func TestStudentUploads(t *testing.T) {
	a := newTestApp(t)

	rec := a.postFile("/student/courses/c1/preview", "photo", "预习.jpg")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/student/courses/c1", rec.Header().Get("Location"))
	a.wait(t, uploadJob("c1", "preview"))

	status, name, err := a.store.GetUpload("c1", "preview")
	require.NoError(t, err)
	assert.Equal(t, model.UploadSubmitted, status)
	assert.Equal(t, "预习.jpg", name)

	rec = a.get("/student/courses/c1/uploads/preview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hx-trigger")

	require.Equal(t, http.StatusSeeOther, a.post("/student/courses/c1/post", nil).Code)
	a.wait(t, uploadJob("c1", "post"))
	status, name, err = a.store.GetUpload("c1", "post")
	require.NoError(t, err)
	assert.Equal(t, model.UploadSubmitted, status)
	assert.Equal(t, defaultPhotoName, name)

	require.Equal(t, http.StatusSeeOther, a.post("/student/courses/c1/post/reset", nil).Code)
	status, _, err = a.store.GetUpload("c1", "post")
	require.NoError(t, err)
	assert.Equal(t, model.UploadPending, status)

	assert.Equal(t, http.StatusNotFound, a.post("/student/courses/nope/preview", nil).Code)
}

func TestUploadResetWhileUploading(t *testing.T) {
	a := newTestAppWith(t, Config{StudentID: 8, PostDelay: time.Hour})
	key := uploadJob("c1", "post")

	require.Equal(t, http.StatusSeeOther, a.post("/student/courses/c1/post", nil).Code)
	require.True(t, a.runner.Status(key).Running())

	require.Equal(t, http.StatusSeeOther, a.post("/student/courses/c1/post/reset", nil).Code)
	assert.Equal(t, jobs.StateCanceled, a.runner.Status(key).State)

	status, name, err := a.store.GetUpload("c1", "post")
	require.NoError(t, err)
	assert.Equal(t, model.UploadPending, status)
	assert.Empty(t, name)
}

func TestHomeworkText(t *testing.T) {
	a := newTestApp(t)

	rec := a.get("/student/courses/c2/homework.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "课后作业：沉淀溶解平衡原理及应用\n"))
	assert.Contains(t, body, "1. [选择题] 下列关于 Ksp 的说法正确的是？")
	assert.Contains(t, body, "3. [简答题]")

	assert.Equal(t, http.StatusNotFound, a.get("/student/courses/nope/homework.txt").Code)
}

func TestBasePath(t *testing.T) {
	require.NoError(t, i18n.Init("zh"))
	b, err := lesson.Parse(lesson.Default())
	require.NoError(t, err)
	st, err := store.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, studio.Import(st, b, 7, 12))
	runner := jobs.NewRunner(context.Background())
	t.Cleanup(runner.Close)

	h, err := New(st, b, studio.New(st, b, runner, studio.Delays{}),
		homework.NewGenerator(runner, st, 0), runner, Config{BasePath: "/class3", StudentID: 8})
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Use(i18n.Middleware("/class3"))
	r.Route("/class3", func(sub chi.Router) {
		sub.Use(h.BasePathMiddleware)
		h.Routes(sub)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/class3/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/class3/homework"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/class3/?lang=en", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var langCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == i18n.Cookie {
			langCookie = c
		}
	}
	require.NotNil(t, langCookie)
	assert.Equal(t, "/class3/", langCookie.Path)

	_, err = New(st, b, nil, nil, runner, Config{})
	assert.Error(t, err)
}
