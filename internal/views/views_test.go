package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/i18n"
	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	require.NoError(t, i18n.Init("en"))
	ctx := i18n.WithLanguage(context.Background(), "en")
	ctx = model.ContextWithBasePath(ctx, "/class3")
	ctx = model.ContextWithCSRFToken(ctx, "tok")
	var b strings.Builder
	require.NoError(t, c.Render(ctx, &b))
	return b.String()
}

func TestRadarChartTwoAxes(t *testing.T) {
	axes := []model.RadarAxis{
		{Subject: "KP1", A: 80, FullMark: 100},
		{Subject: "KP2", A: 40, FullMark: 100},
	}
	out := render(t, RadarChart(axes, 200, Series{Key: 'A', Color: "#00cd9c"}))

	assert.Contains(t, out, "<circle")
	assert.Contains(t, out, "KP1")
	assert.Contains(t, out, "KP2")
	assert.NotContains(t, out, `<polygon fill-opacity`)
	assert.Equal(t, 2+len(gridFractions), strings.Count(out, "<circle"))
}

func TestRadarChartOneAxis(t *testing.T) {
	out := render(t, RadarChart([]model.RadarAxis{{Subject: "KP1", A: 50, FullMark: 100}}, 200, Series{Key: 'A', Color: "#00cd9c"}))

	assert.Contains(t, out, "KP1")
	assert.NotContains(t, out, "<polygon")
}

func TestRadarChartPolygons(t *testing.T) {
	axes := []model.RadarAxis{
		{Subject: "KP1", A: 80, FullMark: 100},
		{Subject: "KP2", A: 40, FullMark: 100},
		{Subject: "KP3", A: 60, FullMark: 100, FullText: "Solubility product"},
	}
	out := render(t, RadarChart(axes, 200,
		Series{Key: 'A', Label: "Class", Color: "#00cd9c"},
		Series{Key: 'B', Label: "Student", Color: "#3b82f6"}))

	assert.Contains(t, out, `<polygon fill-opacity="0.25"`)
	assert.Contains(t, out, "<title>Solubility product</title>")
	assert.Contains(t, out, "Student")
}

func TestRadarChartEmpty(t *testing.T) {
	assert.Empty(t, render(t, RadarChart(nil, 200)))
}

func TestJobStatus(t *testing.T) {
	out := render(t, JobStatus(jobs.Status{Key: "parse", State: jobs.StateRunning}))
	assert.Contains(t, out, `id="job-parse"`)
	assert.Contains(t, out, `hx-get="/class3/prep/jobs/parse"`)
	assert.Contains(t, out, `hx-trigger="every 500ms"`)

	out = render(t, JobStatus(jobs.Status{Key: "parse", State: jobs.StateIdle}))
	assert.NotContains(t, out, "hx-trigger")

	out = render(t, JobStatus(jobs.Status{Key: "parse", State: jobs.StateFailed}))
	assert.Contains(t, out, "chip at-risk")
}

func TestUploadCard(t *testing.T) {
	out := render(t, UploadCard(Upload{CourseID: "c1", Kind: UploadPost, Status: model.UploadUploading}))
	assert.Contains(t, out, `id="upload-post"`)
	assert.Contains(t, out, `hx-get="/class3/student/courses/c1/uploads/post"`)

	out = render(t, UploadCard(Upload{CourseID: "c1", Kind: UploadPost, Status: model.UploadSubmitted, FileName: "hw.jpg"}))
	assert.Contains(t, out, "hw.jpg")
	assert.Contains(t, out, `action="/class3/student/courses/c1/post/reset"`)
	assert.NotContains(t, out, "hx-get")

	out = render(t, UploadCard(Upload{CourseID: "c1", Kind: UploadPreview, Status: model.UploadPending}))
	assert.Contains(t, out, `name="photo"`)
	assert.Contains(t, out, `value="tok"`)
}

func TestPage(t *testing.T) {
	out := render(t, Page("Title", NavHomework, templ.Raw("<p>body</p>")))

	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
	assert.Contains(t, out, `lang="en"`)
	assert.Contains(t, out, `href="/class3/homework" class="active"`)
	assert.Contains(t, out, "<p>body</p>")
}
