// Package lesson loads lesson bundles and generates the mocked class roster.
package lesson

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/classboard/internal/analytics"
	"github.com/pavelanni/classboard/internal/model"
)

//go:embed data/precipitation.json
var defaultBundle []byte

// DefaultName is the import key used for the embedded bundle.
const DefaultName = "embedded:precipitation.json"

var validate = validator.New()

// Default returns the raw bytes of the embedded lesson bundle.
func Default() []byte {
	return defaultBundle
}

// Parse decodes and validates a lesson bundle.
func Parse(data []byte) (*model.Bundle, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var b model.Bundle
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("decode lesson: %w", err)
	}
	if err := validate.Struct(&b); err != nil {
		return nil, fmt.Errorf("validate lesson: %w", err)
	}
	seen := make(map[string]bool, len(b.KnowledgePoints))
	for _, kp := range b.KnowledgePoints {
		if seen[kp.ID] {
			return nil, fmt.Errorf("validate lesson: duplicate knowledge point %q", kp.ID)
		}
		seen[kp.ID] = true
	}
	for i := range b.PreClassQuiz {
		b.PreClassQuiz[i].Stage = model.StagePre
	}
	return &b, nil
}

// NewRand returns a deterministic random source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Roster generates the pre-class results of a class of the given size.
// Overall scores fall in 60..99; per knowledge point mastery is the overall
// score skewed by the point's difficulty.
func Roster(rng *rand.Rand, kps []model.KnowledgePoint, size int) []model.StudentResult {
	roster := make([]model.StudentResult, 0, size)
	for i := range size {
		score := 60 + rng.IntN(40)
		kpm := make(map[string]int, len(kps))
		for _, kp := range kps {
			var delta int
			switch kp.Difficulty {
			case model.DifficultyEasy:
				delta = rng.IntN(20) - 5
			case model.DifficultyHard:
				delta = -rng.IntN(20)
			default:
				delta = rng.IntN(20) - 10
			}
			kpm[kp.ID] = analytics.Clamp(score + delta)
		}
		roster = append(roster, model.StudentResult{
			StudentMastery: model.StudentMastery{
				ID:           i,
				Name:         fmt.Sprintf("学生 %d", i+1),
				MasteryScore: score,
				Status:       analytics.StatusForScore(score),
			},
			KPMastery:     kpm,
			PreClassScore: score,
		})
	}
	return roster
}

// Seating derives the in-class seating map from the pre-class roster:
// everyone gains five points and half of the at-risk students move up a band.
func Seating(rng *rand.Rand, roster []model.StudentResult) []model.StudentMastery {
	seats := make([]model.StudentMastery, 0, len(roster))
	for _, s := range roster {
		status := s.Status
		if status == model.StatusAtRisk && rng.Float64() > 0.5 {
			status = model.StatusPassing
		}
		seats = append(seats, model.StudentMastery{
			ID:           s.ID,
			Name:         s.Name,
			MasteryScore: min(100, s.MasteryScore+5),
			Status:       status,
		})
	}
	return seats
}
