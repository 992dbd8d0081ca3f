// Package chart draws the dashboard charts. Radar and mind map geometry is
// computed here for hand-written SVG; donut, trend and bar charts are
// rendered with go-chart.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/pavelanni/classboard/internal/model"
)

// Point is a position in SVG user units.
type Point struct {
	X, Y float64
}

// Polar returns the point at angle (radians, 0 pointing up, clockwise) and
// distance r from the centre.
func Polar(cx, cy, r, angle float64) Point {
	return Point{
		X: round2(cx + r*math.Sin(angle)),
		Y: round2(cy - r*math.Cos(angle)),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Points formats points for a polygon or polyline points attribute.
func Points(pts []Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g,%g", p.X, p.Y)
	}
	return b.String()
}

// Radar is a radar chart laid out in a square viewport.
type Radar struct {
	CX, CY, R float64
	Axes      []model.RadarAxis
}

// NewRadar centres a radar chart in a size x size box, leaving room for labels.
func NewRadar(size float64, axes []model.RadarAxis) Radar {
	return Radar{CX: size / 2, CY: size / 2, R: size * 0.34, Axes: axes}
}

func (r Radar) angle(i int) float64 {
	return 2 * math.Pi * float64(i) / float64(len(r.Axes))
}

func (r Radar) point(i, value, fullMark int) Point {
	if fullMark <= 0 {
		fullMark = 100
	}
	v := min(max(value, 0), fullMark)
	return Polar(r.CX, r.CY, r.R*float64(v)/float64(fullMark), r.angle(i))
}

// Series returns the polygon of one series: 'A', 'B' or 'C'.
func (r Radar) Series(series byte) []Point {
	pts := make([]Point, 0, len(r.Axes))
	for i, a := range r.Axes {
		var v int
		switch series {
		case 'B':
			v = a.B
		case 'C':
			v = a.C
		default:
			v = a.A
		}
		pts = append(pts, r.point(i, v, a.FullMark))
	}
	return pts
}

// Ring returns the grid polygon at the given fraction of the radius.
func (r Radar) Ring(frac float64) []Point {
	pts := make([]Point, 0, len(r.Axes))
	for i := range r.Axes {
		pts = append(pts, Polar(r.CX, r.CY, r.R*frac, r.angle(i)))
	}
	return pts
}

// Flat reports whether the radar has too few axes to enclose an area. Its
// grid is drawn as circles and its series as dots.
func (r Radar) Flat() bool {
	return len(r.Axes) < 3
}

// Spoke returns the outer end of axis i.
func (r Radar) Spoke(i int) Point {
	return Polar(r.CX, r.CY, r.R, r.angle(i))
}

// Label returns the position of axis i's label.
func (r Radar) Label(i int) Point {
	return Polar(r.CX, r.CY, r.R+18, r.angle(i))
}

// Radial places n nodes evenly on a circle of radius r around the centre,
// starting at the right and going clockwise in screen space.
func Radial(n int, cx, cy, r float64) []Point {
	pts := make([]Point, 0, n)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, Point{X: round2(cx + r*math.Cos(a)), Y: round2(cy + r*math.Sin(a))})
	}
	return pts
}

// Grid lays out n cells of w x h in rows of cols, gap apart, and returns the
// top-left corner of each.
func Grid(n, cols int, w, h, gap float64) []Point {
	if cols <= 0 {
		cols = 1
	}
	pts := make([]Point, 0, n)
	for i := range n {
		pts = append(pts, Point{
			X: round2(float64(i%cols) * (w + gap)),
			Y: round2(float64(i/cols) * (h + gap)),
		})
	}
	return pts
}
