package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/model"
)

func TestPolar(t *testing.T) {
	assert.Equal(t, Point{X: 100, Y: 50}, Polar(100, 100, 50, 0), "zero angle points up")
	right := Polar(100, 100, 50, 3.141592653589793/2)
	assert.Equal(t, Point{X: 150, Y: 100}, right)
}

func TestPoints(t *testing.T) {
	assert.Equal(t, "1,2 3.5,4", Points([]Point{{1, 2}, {3.5, 4}}))
	assert.Equal(t, "", Points(nil))
}

func TestRadarSeries(t *testing.T) {
	axes := []model.RadarAxis{
		{Subject: "KP1", A: 100, B: 50, FullMark: 100},
		{Subject: "KP2", A: 0, B: 100, FullMark: 100},
		{Subject: "KP3", A: 150, B: -5, FullMark: 100},
		{Subject: "KP4", A: 50, FullMark: 0},
	}
	r := NewRadar(200, axes)
	a := r.Series('A')
	require.Len(t, a, 4)
	assert.Equal(t, r.Spoke(0), a[0], "full mark reaches the spoke end")
	assert.Equal(t, Point{X: r.CX, Y: r.CY}, a[1], "zero sits at the centre")
	assert.Equal(t, r.Spoke(2), a[2], "values clamp to the full mark")
	assert.Equal(t, r.Ring(0.5)[3], a[3], "missing full mark means 100")

	b := r.Series('B')
	assert.Equal(t, r.Ring(0.5)[0], b[0])
	assert.Equal(t, Point{X: r.CX, Y: r.CY}, b[2])
}

func TestRadarFlat(t *testing.T) {
	two := NewRadar(200, []model.RadarAxis{{Subject: "KP1", A: 100}, {Subject: "KP2", A: 50}})
	assert.True(t, two.Flat())
	assert.Equal(t, Point{X: 100, Y: 32}, two.Spoke(0))
	assert.Equal(t, Point{X: 100, Y: 168}, two.Spoke(1), "second axis points down")
	assert.Len(t, two.Series('A'), 2)

	one := NewRadar(200, []model.RadarAxis{{Subject: "KP1", A: 50}})
	assert.True(t, one.Flat())
	assert.Equal(t, []Point{{X: 100, Y: 66}}, one.Series('A'))

	assert.False(t, NewRadar(200, make([]model.RadarAxis, 3)).Flat())
}

func TestRadial(t *testing.T) {
	pts := Radial(4, 100, 100, 50)
	require.Len(t, pts, 4)
	assert.Equal(t, Point{150, 100}, pts[0])
	assert.Equal(t, Point{100, 150}, pts[1])
	assert.Equal(t, Point{50, 100}, pts[2])
	assert.Equal(t, Point{100, 50}, pts[3])
	assert.Empty(t, Radial(0, 0, 0, 1))
}

func TestGrid(t *testing.T) {
	pts := Grid(5, 2, 60, 30, 4)
	require.Len(t, pts, 5)
	assert.Equal(t, Point{0, 0}, pts[0])
	assert.Equal(t, Point{64, 0}, pts[1])
	assert.Equal(t, Point{0, 34}, pts[2])
	assert.Equal(t, Point{0, 68}, pts[4])
	assert.Len(t, Grid(3, 0, 1, 1, 0), 3, "zero columns falls back to one")
}
