package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/pavelanni/classboard/internal/analytics"
	"github.com/pavelanni/classboard/internal/chart"
	"github.com/pavelanni/classboard/internal/model"
)

// Series is one polygon of a radar chart with its legend.
type Series struct {
	Key   byte
	Label string
	Color string
}

var gridFractions = []float64{0.25, 0.5, 0.75, 1}

func showLegend(series []Series) bool {
	return len(series) > 1 || (len(series) == 1 && series[0].Label != "")
}

func viewBox(w, h float64) string {
	return "0 0 " + ftoa(w) + " " + ftoa(h)
}

// DonutChart draws slices as a donut with a legend.
func DonutChart(slices []model.ChartSlice, label func(string) string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return chart.Donut(w, slices, label)
	})
}

// TrendChart draws class and grade averages over time.
func TrendChart(points []model.TrendPoint, classLabel, gradeLabel string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return chart.Trend(w, points, classLabel, gradeLabel)
	})
}

// MasteryBars draws one mastery bar per knowledge point.
func MasteryBars(kps []model.KnowledgePoint) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return chart.Bars(w, kps)
	})
}

const (
	seatCols = 8
	seatW    = 64
	seatH    = 36
	seatGap  = 6
)

type seatBox struct {
	Seat model.StudentMastery
	At   chart.Point
}

// seatLayout places seats in rows of eight and returns the map height.
func seatLayout(seats []model.StudentMastery) ([]seatBox, float64) {
	pts := chart.Grid(len(seats), seatCols, seatW, seatH, seatGap)
	boxes := make([]seatBox, len(seats))
	for i, s := range seats {
		boxes[i] = seatBox{Seat: s, At: pts[i]}
	}
	rows := (len(seats) + seatCols - 1) / seatCols
	return boxes, float64(max(rows*(seatH+seatGap)-seatGap, 0))
}

func seatTitle(s model.StudentMastery) string {
	return fmt.Sprintf("%s %d", s.Name, s.MasteryScore)
}

func seatOpacity(s model.StudentMastery) string {
	return ftoa(analytics.SeatOpacity(s))
}
