// Package homework assigns tiered homework to students by mastery band.
package homework

import (
	"github.com/pavelanni/classboard/internal/model"
)

// Diagnostic comments attached to each band's plan.
const (
	CommentAtRisk   = "检测到基础薄弱，重点加强沉淀溶解平衡定义的理解和基础 Ksp 表达式书写。"
	CommentPassing  = "基础较好，建议加强溶度积规则的应用计算，并尝试解释生活中的化学现象。"
	CommentMastered = "掌握情况优秀，推荐挑战沉淀转化与综合平衡移动的复杂计算题。"
)

// Plan kinds, derived from the first question of a plan.
const (
	KindReinforcement = "reinforcement"
	KindExtension     = "extension"
)

// Assign picks homework for one student from the pool:
//   - at-risk: the first three basic questions
//   - passing: one basic and two advanced
//   - mastered: one advanced and every extended question
func Assign(student model.StudentMastery, pool []model.HomeworkQuestion) model.StudentHomework {
	var questions []model.HomeworkQuestion
	var comment string
	switch student.Status {
	case model.StatusAtRisk:
		questions = take(pool, model.TierBasic, 3)
		comment = CommentAtRisk
	case model.StatusPassing:
		questions = append(take(pool, model.TierBasic, 1), take(pool, model.TierAdvanced, 2)...)
		comment = CommentPassing
	default:
		questions = append(take(pool, model.TierAdvanced, 1), take(pool, model.TierExtended, -1)...)
		comment = CommentMastered
	}
	return model.StudentHomework{
		StudentID:   student.ID,
		StudentName: student.Name,
		Questions:   questions,
		Comment:     comment,
	}
}

// Kind reports whether a plan reinforces basics or extends ability.
func Kind(hw model.StudentHomework) string {
	if len(hw.Questions) > 0 && hw.Questions[0].Difficulty == model.TierBasic {
		return KindReinforcement
	}
	return KindExtension
}

// take returns up to n questions of a tier in pool order; n < 0 means all.
func take(pool []model.HomeworkQuestion, tier model.HomeworkTier, n int) []model.HomeworkQuestion {
	var out []model.HomeworkQuestion
	for _, q := range pool {
		if n >= 0 && len(out) == n {
			break
		}
		if q.Difficulty == tier {
			out = append(out, q)
		}
	}
	return out
}
