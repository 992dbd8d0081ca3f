package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/model"
)

func TestDonutRender(t *testing.T) {
	var buf bytes.Buffer
	err := Donut(&buf, []model.ChartSlice{
		{Name: "mastered", Value: 3, Color: "#00cd9c"},
		{Name: "skipped", Value: 0, Color: "#3b82f6"},
		{Name: "at_risk", Value: 1, Color: "#ef4444"},
	}, strings.ToUpper)
	require.NoError(t, err)
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"), out)
	assert.Contains(t, out, "MASTERED 3")
	assert.Contains(t, out, "AT_RISK 1")
	assert.NotContains(t, out, "SKIPPED")
}

func TestDonutRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Donut(&buf, []model.ChartSlice{{Name: "none", Value: 0}}, strings.ToUpper))
	assert.Contains(t, buf.String(), "<svg")
	assert.NotContains(t, buf.String(), "NONE")
}

func TestTrendRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Trend(&buf, nil, "Class", "Grade"))
	assert.Zero(t, buf.Len())

	points := []model.TrendPoint{
		{Name: "W1", ClassAvg: 70, GradeAvg: 65},
		{Name: "W2", ClassAvg: 78, GradeAvg: 66},
		{Name: "W3", ClassAvg: 84, GradeAvg: 68},
	}
	require.NoError(t, Trend(&buf, points, "Class", "Grade"))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	for _, want := range []string{"W1", "W3", "Class", "Grade"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, Trend(&buf, points[:1], "Class", "Grade"), "a single point still renders")
	assert.Contains(t, buf.String(), "W1")
}

func TestBarsRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Bars(&buf, nil))
	assert.Zero(t, buf.Len())

	err := Bars(&buf, []model.KnowledgePoint{
		{ID: "K1", MasteryRate: 92},
		{ID: "K2", MasteryRate: 45},
		{ID: "K3", MasteryRate: 130},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "K1")
	assert.Contains(t, out, "K3")
}
