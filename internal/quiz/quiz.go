// Package quiz edits the questions authored in the preparation studio.
// Every edit leaves the item's answer fields consistent with its type.
package quiz

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pavelanni/classboard/internal/model"
)

// Defaults for new and imported items.
const (
	BlankContent     = "新题目..."
	BlankScore       = 5
	TimelineScore    = 10
	TimelineAnalysis = "解析略"
)

var (
	blankOptions    = []string{"选项A", "选项B", "选项C", "选项D"}
	timelineOptions = []string{"A", "B", "C", "D"}
)

var validate = validator.New()

// ErrNoSuchOption is returned when an option index is out of range.
var ErrNoSuchOption = errors.New("no such option")

// NewID returns a fresh item id.
func NewID() string {
	return uuid.NewString()
}

// Blank returns a new single-choice item with four placeholder options.
func Blank(stage model.QuizStage) model.QuizItem {
	return model.QuizItem{
		ID:                  NewID(),
		Stage:               stage,
		Type:                model.ItemSingleChoice,
		Content:             BlankContent,
		Options:             slices.Clone(blankOptions),
		CorrectOptions:      []int{0},
		Score:               BlankScore,
		RelatedKnowledgeIDs: []string{},
	}
}

// FromTimeline maps an in-class timeline question to an editable item.
// Calculation questions become subjective, the rest single choice.
func FromTimeline(q model.QuizQuestion) model.QuizItem {
	item := model.QuizItem{
		ID:                  q.ID,
		Stage:               model.StageIn,
		Type:                model.ItemSingleChoice,
		Content:             q.Content,
		Options:             slices.Clone(timelineOptions),
		CorrectOptions:      []int{0},
		Score:               TimelineScore,
		RelatedKnowledgeIDs: []string{},
		Analysis:            TimelineAnalysis,
	}
	if q.Kind == model.KindCalculation {
		item.Type = model.ItemSubjective
	}
	if q.RelatedKnowledgeID != "" {
		item.RelatedKnowledgeIDs = []string{q.RelatedKnowledgeID}
	}
	return item
}

// Generated copies the canned questions for a stage, giving each a fresh id.
func Generated(stage model.QuizStage, canned []model.QuizItem) []model.QuizItem {
	out := make([]model.QuizItem, 0, len(canned))
	for _, c := range canned {
		item := c
		item.ID = NewID()
		item.Stage = stage
		item.Options = slices.Clone(c.Options)
		item.CorrectOptions = slices.Clone(c.CorrectOptions)
		item.RelatedKnowledgeIDs = slices.Clone(c.RelatedKnowledgeIDs)
		if c.CorrectBoolean != nil {
			b := *c.CorrectBoolean
			item.CorrectBoolean = &b
		}
		out = append(out, item)
	}
	return out
}

func isChoice(t model.ItemType) bool {
	return t == model.ItemSingleChoice || t == model.ItemMultipleChoice
}

// ToggleCorrect marks option i as correct. A single-choice item replaces its
// answer; a multiple-choice item toggles i in or out.
func ToggleCorrect(item *model.QuizItem, i int) error {
	if !isChoice(item.Type) {
		return fmt.Errorf("toggle correct on %s item", item.Type)
	}
	if i < 0 || i >= len(item.Options) {
		return fmt.Errorf("option %d: %w", i, ErrNoSuchOption)
	}
	if item.Type == model.ItemSingleChoice {
		item.CorrectOptions = []int{i}
		return nil
	}
	if idx := slices.Index(item.CorrectOptions, i); idx >= 0 {
		item.CorrectOptions = slices.Delete(item.CorrectOptions, idx, idx+1)
		return nil
	}
	item.CorrectOptions = append(item.CorrectOptions, i)
	slices.Sort(item.CorrectOptions)
	return nil
}

// SetOption replaces the text of option i.
func SetOption(item *model.QuizItem, i int, text string) error {
	if i < 0 || i >= len(item.Options) {
		return fmt.Errorf("option %d: %w", i, ErrNoSuchOption)
	}
	item.Options[i] = text
	return nil
}

// SetTrueFalse sets the answer of a true/false item.
func SetTrueFalse(item *model.QuizItem, v bool) error {
	if item.Type != model.ItemTrueFalse {
		return fmt.Errorf("set boolean answer on %s item", item.Type)
	}
	item.CorrectBoolean = &v
	return nil
}

// ToggleKnowledge links or unlinks a knowledge point.
func ToggleKnowledge(item *model.QuizItem, kpID string) {
	if idx := slices.Index(item.RelatedKnowledgeIDs, kpID); idx >= 0 {
		item.RelatedKnowledgeIDs = slices.Delete(item.RelatedKnowledgeIDs, idx, idx+1)
		return
	}
	item.RelatedKnowledgeIDs = append(item.RelatedKnowledgeIDs, kpID)
}

// ChangeType switches the answer format and resets the answer fields that
// the new format does not use.
func ChangeType(item *model.QuizItem, t model.ItemType) {
	if item.Type == t {
		return
	}
	prev := item.Type
	item.Type = t
	switch t {
	case model.ItemSingleChoice, model.ItemMultipleChoice:
		item.CorrectBoolean = nil
		if !isChoice(prev) || len(item.Options) < 2 {
			item.Options = slices.Clone(blankOptions)
			item.CorrectOptions = []int{0}
			return
		}
		if t == model.ItemSingleChoice && len(item.CorrectOptions) != 1 {
			first := 0
			if len(item.CorrectOptions) > 0 {
				first = item.CorrectOptions[0]
			}
			item.CorrectOptions = []int{first}
		}
	case model.ItemTrueFalse:
		item.Options = nil
		item.CorrectOptions = nil
		v := true
		item.CorrectBoolean = &v
	default:
		item.Options = nil
		item.CorrectOptions = nil
		item.CorrectBoolean = nil
	}
}

// Validate checks struct tags and the rules that tie answers to the type.
func Validate(item model.QuizItem) error {
	if err := validate.Struct(item); err != nil {
		return fmt.Errorf("validate item %s: %w", item.ID, err)
	}
	switch item.Type {
	case model.ItemSingleChoice, model.ItemMultipleChoice:
		if len(item.Options) < 2 {
			return fmt.Errorf("item %s: choice needs at least two options", item.ID)
		}
		if len(item.CorrectOptions) == 0 {
			return fmt.Errorf("item %s: no correct option", item.ID)
		}
		if item.Type == model.ItemSingleChoice && len(item.CorrectOptions) != 1 {
			return fmt.Errorf("item %s: single choice needs exactly one correct option", item.ID)
		}
		for _, c := range item.CorrectOptions {
			if c < 0 || c >= len(item.Options) {
				return fmt.Errorf("item %s: correct option %d: %w", item.ID, c, ErrNoSuchOption)
			}
		}
	case model.ItemTrueFalse:
		if item.CorrectBoolean == nil {
			return fmt.Errorf("item %s: true/false needs an answer", item.ID)
		}
	}
	return nil
}

// OptionLetter returns A, B, C... for option index i.
func OptionLetter(i int) string {
	return string(rune('A' + i))
}
