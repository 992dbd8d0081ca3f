// Package views renders the HTML pages as templ components.
package views

import (
	"context"
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/pavelanni/classboard/internal/homework"
	"github.com/pavelanni/classboard/internal/i18n"
	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/model"
)

// Nav entries.
const (
	NavDashboard = "dashboard"
	NavHomework  = "homework"
	NavPrep      = "prep"
	NavStudent   = "student"
)

type navItem struct {
	key, path, label string
}

var navItems = []navItem{
	{NavDashboard, "/", "NavDashboard"},
	{NavHomework, "/homework", "NavHomework"},
	{NavPrep, "/prep", "NavPrep"},
	{NavStudent, "/student", "NavStudent"},
}

// link prefixes an application path with the base path.
func link(ctx context.Context, path string) templ.SafeURL {
	return templ.URL(model.BasePathFromContext(ctx) + path)
}

func langLink(lang string) templ.SafeURL {
	return templ.URL("?lang=" + lang)
}

// poll makes an element replace itself from path every 500ms while on.
func poll(ctx context.Context, path string, on bool) templ.Attributes {
	if !on {
		return templ.Attributes{}
	}
	return templ.Attributes{
		"hx-get":     string(link(ctx, path)),
		"hx-trigger": "every 500ms",
		"hx-swap":    "outerHTML",
	}
}

func t(ctx context.Context, id string) string {
	return i18n.T(ctx, id)
}

func td(ctx context.Context, id string, data map[string]any) string {
	return i18n.Td(ctx, id, data)
}

func itoa(i int) string { return strconv.Itoa(i) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func percent(i int) string { return strconv.Itoa(i) + "%" }

func numbered(n int, label string) string {
	return fmt.Sprintf("%d. %s", n, label)
}

// rateClass colours a correct or mastery rate like the dashboard legend.
func rateClass(rate int) string {
	switch {
	case rate > 80:
		return "rate-high"
	case rate > 60:
		return "rate-mid"
	default:
		return "rate-low"
	}
}

func statusLabel(ctx context.Context, s model.MasteryStatus) string {
	switch s {
	case model.StatusMastered:
		return i18n.T(ctx, "StatusMastered")
	case model.StatusPassing:
		return i18n.T(ctx, "StatusPassing")
	case model.StatusAtRisk:
		return i18n.T(ctx, "StatusAtRisk")
	}
	return string(s)
}

var statuses = []model.MasteryStatus{model.StatusMastered, model.StatusPassing, model.StatusAtRisk}

func kindLabel(ctx context.Context, k model.QuestionKind) string {
	switch k {
	case model.KindCalculation:
		return i18n.T(ctx, "KindCalculation")
	case model.KindReasoning:
		return i18n.T(ctx, "KindReasoning")
	case model.KindApplication:
		return i18n.T(ctx, "KindApplication")
	}
	return string(k)
}

var tiers = []model.HomeworkTier{model.TierBasic, model.TierAdvanced, model.TierExtended}

func tierLabel(ctx context.Context, tier model.HomeworkTier) string {
	switch tier {
	case model.TierBasic:
		return i18n.T(ctx, "TierBasic")
	case model.TierAdvanced:
		return i18n.T(ctx, "TierAdvanced")
	case model.TierExtended:
		return i18n.T(ctx, "TierExtended")
	}
	return string(tier)
}

// tierQuestions returns the questions of p at one difficulty tier.
func tierQuestions(p model.StudentHomework, tier model.HomeworkTier) []model.HomeworkQuestion {
	var qs []model.HomeworkQuestion
	for _, q := range p.Questions {
		if q.Difficulty == tier {
			qs = append(qs, q)
		}
	}
	return qs
}

func planKindLabel(ctx context.Context, hw model.StudentHomework) string {
	if homework.Kind(hw) == homework.KindReinforcement {
		return i18n.T(ctx, "PlanReinforcement")
	}
	return i18n.T(ctx, "PlanExtension")
}

func homeworkState(ctx context.Context, d HomeworkData) string {
	switch d.Status.State {
	case jobs.StateIdle:
		return i18n.T(ctx, "HomeworkIdle")
	case jobs.StateRunning:
		return i18n.Td(ctx, "HomeworkRunning", map[string]any{"Done": len(d.Plans), "Total": d.Total})
	case jobs.StateFailed:
		return i18n.T(ctx, "JobFailed")
	}
	return i18n.Tp(ctx, "HomeworkDone", len(d.Plans))
}

func courseStatusLabel(ctx context.Context, s model.CourseStatus) string {
	switch s {
	case model.CourseOngoing:
		return i18n.T(ctx, "CourseOngoing")
	case model.CourseCompleted:
		return i18n.T(ctx, "CourseCompleted")
	default:
		return i18n.T(ctx, "CourseUpcoming")
	}
}
