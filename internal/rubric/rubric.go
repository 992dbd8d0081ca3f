// Package rubric builds assessment dimensions and scores against them.
package rubric

import (
	"fmt"
	"math"

	"github.com/pavelanni/classboard/internal/model"
)

// MaxScore is the ceiling of a generated dimension.
const MaxScore = 100

type levelTemplate struct {
	grade  string
	label  string
	format string
	low    int
	high   int
}

var levelTemplates = []levelTemplate{
	{"L5", "优秀", "能够深刻理解并灵活运用\"%s\"解决复杂的跨学科或实际情境问题。", 90, 100},
	{"L4", "理解", "能够准确理解\"%s\"的内涵，独立完成相关变式练习。", 75, 89},
	{"L3", "有概念", "基本记住\"%s\"的概念，但在复杂情境下运用会有卡顿。", 60, 74},
	{"L2", "差", "对\"%s\"仅有模糊印象，需要大量提示才能回忆。", 40, 59},
	{"L1", "完全不懂", "完全无法理解\"%s\"，存在严重认知断层。", 0, 39},
}

// DimensionID is the id of the dimension generated for a knowledge point.
func DimensionID(kpID string) string {
	return "DIM_" + kpID
}

// FromKnowledgePoints generates one dimension per knowledge point, with equal
// weights rounded to two decimals and a five-level scale.
func FromKnowledgePoints(kps []model.KnowledgePoint) []model.AssessmentDimension {
	if len(kps) == 0 {
		return nil
	}
	weight := math.Round(100/float64(len(kps))) / 100
	dims := make([]model.AssessmentDimension, 0, len(kps))
	for _, kp := range kps {
		levels := make([]model.AssessmentLevel, 0, len(levelTemplates))
		for _, lt := range levelTemplates {
			levels = append(levels, model.AssessmentLevel{
				Grade:       lt.grade,
				Label:       lt.label,
				Description: fmt.Sprintf(lt.format, kp.Statement),
				ScoreRange:  [2]int{lt.low, lt.high},
			})
		}
		dims = append(dims, model.AssessmentDimension{
			ID:                  DimensionID(kp.ID),
			Name:                kp.ID,
			MaxScore:            MaxScore,
			Weight:              weight,
			Description:         kp.Statement,
			RelatedKnowledgeIDs: []string{kp.ID},
			Levels:              levels,
		})
	}
	return dims
}

// LevelFor returns the level whose range contains score, scaled to 0..100
// against the dimension's max score. ok is false if no level matches.
func LevelFor(dim model.AssessmentDimension, score int) (model.AssessmentLevel, bool) {
	if dim.MaxScore > 0 && dim.MaxScore != MaxScore {
		score = int(math.Round(float64(score) * MaxScore / float64(dim.MaxScore)))
	}
	for _, l := range dim.Levels {
		if score >= l.ScoreRange[0] && score <= l.ScoreRange[1] {
			return l, true
		}
	}
	return model.AssessmentLevel{}, false
}

// TotalWeight sums the weights of dims.
func TotalWeight(dims []model.AssessmentDimension) float64 {
	var total float64
	for _, d := range dims {
		total += d.Weight
	}
	return total
}

// WeightedScore combines per-dimension scores, keyed by dimension id, into a
// 0..100 score. Each score is normalised by its dimension's max and the
// result is divided by the total weight, so rounded weights still yield a
// full 100. Dimensions without a score count as zero.
func WeightedScore(dims []model.AssessmentDimension, scores map[string]int) int {
	total := TotalWeight(dims)
	if total == 0 {
		return 0
	}
	var sum float64
	for _, d := range dims {
		if d.MaxScore <= 0 {
			continue
		}
		s := min(max(scores[d.ID], 0), d.MaxScore)
		sum += d.Weight * float64(s) / float64(d.MaxScore)
	}
	return int(math.Round(sum / total * 100))
}

// SetLevelDescription replaces the description of one level of a dimension.
func SetLevelDescription(dims []model.AssessmentDimension, dimID string, level int, text string) error {
	for i := range dims {
		if dims[i].ID != dimID {
			continue
		}
		if level < 0 || level >= len(dims[i].Levels) {
			return fmt.Errorf("dimension %s: level %d out of range", dimID, level)
		}
		dims[i].Levels[level].Description = text
		return nil
	}
	return fmt.Errorf("dimension %s not found", dimID)
}
