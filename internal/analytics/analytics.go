// Package analytics shapes class results into the figures the dashboard shows.
package analytics

import (
	"math"

	"github.com/pavelanni/classboard/internal/model"
)

// Score thresholds for the mastery bands.
const (
	PassingThreshold  = 70
	MasteredThreshold = 85
)

// DefaultClassAverage is used for a knowledge point that has no class average.
const DefaultClassAverage = 75

// Band colours shared by charts and legends.
const (
	ColorGreen  = "#00cd9c"
	ColorBlue   = "#3b82f6"
	ColorYellow = "#eab308"
	ColorRed    = "#ef4444"
)

// Clamp limits a score to 0..100.
func Clamp(score int) int {
	return max(0, min(100, score))
}

// StatusForScore buckets a mastery score.
func StatusForScore(score int) model.MasteryStatus {
	switch {
	case score < PassingThreshold:
		return model.StatusAtRisk
	case score < MasteredThreshold:
		return model.StatusPassing
	default:
		return model.StatusMastered
	}
}

// ClassAverages returns the rounded mean mastery per knowledge point.
// A student without a value for a point counts as zero.
func ClassAverages(kps []model.KnowledgePoint, roster []model.StudentResult) map[string]int {
	avgs := make(map[string]int, len(kps))
	for _, kp := range kps {
		if len(roster) == 0 {
			avgs[kp.ID] = 0
			continue
		}
		sum := 0
		for _, s := range roster {
			sum += s.KPMastery[kp.ID]
		}
		avgs[kp.ID] = int(math.Round(float64(sum) / float64(len(roster))))
	}
	return avgs
}

// PreClassRadar builds the aggregate pre-class radar from class averages.
func PreClassRadar(kps []model.KnowledgePoint, avgs map[string]int) []model.RadarAxis {
	axes := make([]model.RadarAxis, 0, len(kps))
	for _, kp := range kps {
		axes = append(axes, model.RadarAxis{
			Subject:  kp.ID,
			FullText: kp.Statement,
			A:        avgs[kp.ID],
			FullMark: 100,
		})
	}
	return axes
}

// InClassRadar builds the in-class radar from each point's mastery rate.
func InClassRadar(kps []model.KnowledgePoint) []model.RadarAxis {
	axes := make([]model.RadarAxis, 0, len(kps))
	for _, kp := range kps {
		axes = append(axes, model.RadarAxis{
			Subject:  kp.ID,
			FullText: kp.Statement,
			A:        kp.MasteryRate,
			FullMark: 100,
		})
	}
	return axes
}

// StudentCompare builds a two-series radar: A is the class average and B the
// student's own mastery.
func StudentCompare(kps []model.KnowledgePoint, student model.StudentResult, avgs map[string]int) []model.RadarAxis {
	axes := make([]model.RadarAxis, 0, len(kps))
	for _, kp := range kps {
		avg, ok := avgs[kp.ID]
		if !ok || avg == 0 {
			avg = DefaultClassAverage
		}
		axes = append(axes, model.RadarAxis{
			Subject:  kp.ID,
			FullText: kp.Statement,
			A:        avg,
			B:        student.KPMastery[kp.ID],
			FullMark: 100,
		})
	}
	return axes
}

// ScoreDistribution counts seats per score band.
func ScoreDistribution(seats []model.StudentMastery) []model.ChartSlice {
	bands := []model.ChartSlice{
		{Name: "[90-100]", Color: ColorGreen},
		{Name: "[75-89]", Color: ColorBlue},
		{Name: "[60-74]", Color: ColorYellow},
		{Name: "<60", Color: ColorRed},
	}
	for _, s := range seats {
		switch {
		case s.MasteryScore >= 90:
			bands[0].Value++
		case s.MasteryScore >= 75:
			bands[1].Value++
		case s.MasteryScore >= 60:
			bands[2].Value++
		default:
			bands[3].Value++
		}
	}
	return bands
}

// StatusCounts counts seats per mastery band.
func StatusCounts(seats []model.StudentMastery) map[model.MasteryStatus]int {
	counts := map[model.MasteryStatus]int{
		model.StatusMastered: 0,
		model.StatusPassing:  0,
		model.StatusAtRisk:   0,
	}
	for _, s := range seats {
		counts[s.Status]++
	}
	return counts
}

// AtRiskCount is the number of at-risk seats.
func AtRiskCount(seats []model.StudentMastery) int {
	return StatusCounts(seats)[model.StatusAtRisk]
}

// MasteryChart is the three-slice donut of mastery bands.
func MasteryChart(seats []model.StudentMastery) []model.ChartSlice {
	c := StatusCounts(seats)
	return []model.ChartSlice{
		{Name: string(model.StatusMastered), Value: c[model.StatusMastered], Color: ColorGreen},
		{Name: string(model.StatusPassing), Value: c[model.StatusPassing], Color: ColorBlue},
		{Name: string(model.StatusAtRisk), Value: c[model.StatusAtRisk], Color: ColorRed},
	}
}

// PercentileRank returns the share of classmates (0..100) with a strictly
// lower pre-class score than the given student.
func PercentileRank(roster []model.StudentResult, student model.StudentResult) int {
	if len(roster) <= 1 {
		return 0
	}
	lower := 0
	for _, s := range roster {
		if s.ID != student.ID && s.PreClassScore < student.PreClassScore {
			lower++
		}
	}
	return int(math.Round(float64(lower) * 100 / float64(len(roster)-1)))
}

// MasteryColor picks a bar colour for a mastery rate.
func MasteryColor(rate int) string {
	switch {
	case rate > 80:
		return ColorGreen
	case rate > 60:
		return ColorYellow
	default:
		return ColorRed
	}
}

// StatusColor is the legend colour of a mastery band.
func StatusColor(s model.MasteryStatus) string {
	switch s {
	case model.StatusMastered:
		return ColorGreen
	case model.StatusPassing:
		return ColorBlue
	default:
		return ColorRed
	}
}

// SeatOpacity is the heatmap opacity of a seat: at-risk seats are always
// opaque, others fade with lower scores.
func SeatOpacity(s model.StudentMastery) float64 {
	if s.Status == model.StatusAtRisk {
		return 1
	}
	return float64(Clamp(s.MasteryScore)) / 100
}
