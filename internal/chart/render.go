package chart

import (
	"fmt"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pavelanni/classboard/internal/analytics"
	"github.com/pavelanni/classboard/internal/model"
)

var (
	gridColor  = drawing.ColorFromHex("e5e7eb")
	gradeColor = drawing.ColorFromHex("9ca3af")
)

// color parses a CSS hex colour, falling back to the grid grey.
func color(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if hex == "" {
		return gridColor
	}
	return drawing.ColorFromHex(hex)
}

// Donut writes slices as an SVG donut chart. Slices without a positive value
// are left out; with nothing left an empty grey ring is drawn.
func Donut(w io.Writer, slices []model.ChartSlice, label func(string) string) error {
	values := make([]gochart.Value, 0, len(slices))
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Value: float64(s.Value),
			Label: fmt.Sprintf("%s %d", label(s.Name), s.Value),
			Style: gochart.Style{
				FillColor:   color(s.Color),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	if len(values) == 0 {
		values = append(values, gochart.Value{Value: 1, Style: gochart.Style{FillColor: gridColor}})
	}
	d := gochart.DonutChart{
		Width:  240,
		Height: 240,
		Values: values,
	}
	if err := d.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render donut: %w", err)
	}
	return nil
}

// Trend writes the class average as a filled line against the dashed grade
// average, one tick per point. Nothing is written without points.
func Trend(w io.Writer, points []model.TrendPoint, classLabel, gradeLabel string) error {
	if len(points) == 0 {
		return nil
	}
	xs := make([]float64, len(points))
	class := make([]float64, len(points))
	grade := make([]float64, len(points))
	ticks := make([]gochart.Tick, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		class[i] = float64(analytics.Clamp(p.ClassAvg))
		grade[i] = float64(analytics.Clamp(p.GradeAvg))
		ticks[i] = gochart.Tick{Value: float64(i), Label: p.Name}
	}
	green := color(analytics.ColorGreen)

	graph := gochart.Chart{
		Width:  480,
		Height: 240,
		XAxis:  gochart.XAxis{Ticks: ticks},
		YAxis:  gochart.YAxis{Range: &gochart.ContinuousRange{Min: 0, Max: 100}},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    classLabel,
				XValues: xs,
				YValues: class,
				Style: gochart.Style{
					StrokeColor: green,
					StrokeWidth: 2,
					FillColor:   green.WithAlpha(40),
				},
			},
			gochart.ContinuousSeries{
				Name:    gradeLabel,
				XValues: xs,
				YValues: grade,
				Style: gochart.Style{
					StrokeColor:     gradeColor,
					StrokeWidth:     2,
					StrokeDashArray: []float64{4, 3},
				},
			},
		},
	}
	// A single point has no x extent of its own.
	if len(points) == 1 {
		graph.XAxis.Range = &gochart.ContinuousRange{Min: -1, Max: 1}
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	if err := graph.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render trend: %w", err)
	}
	return nil
}

// Bars writes one bar per knowledge point on a 0..100 scale, coloured by
// mastery. Nothing is written without knowledge points.
func Bars(w io.Writer, kps []model.KnowledgePoint) error {
	if len(kps) == 0 {
		return nil
	}
	bars := make([]gochart.Value, 0, len(kps))
	for _, kp := range kps {
		c := color(analytics.MasteryColor(kp.MasteryRate))
		bars = append(bars, gochart.Value{
			Value: float64(analytics.Clamp(kp.MasteryRate)),
			Label: kp.ID,
			Style: gochart.Style{FillColor: c, StrokeColor: c},
		})
	}
	bc := gochart.BarChart{
		Width:    480,
		Height:   240,
		BarWidth: 32,
		Bars:     bars,
		YAxis:    gochart.YAxis{Range: &gochart.ContinuousRange{Min: 0, Max: 100}},
	}
	if err := bc.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("render bars: %w", err)
	}
	return nil
}
