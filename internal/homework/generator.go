package homework

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/model"
)

// JobKey is the runner key of the generation job.
const JobKey = "homework"

// DefaultInterval is the delay between two revealed plans.
const DefaultInterval = 50 * time.Millisecond

// Store persists generated plans.
type Store interface {
	ClearHomework() error
	SaveHomework(model.StudentHomework) error
}

// Generator reveals homework plans one student per tick.
type Generator struct {
	runner   *jobs.Runner
	store    Store
	interval time.Duration
}

// NewGenerator creates a generator that saves plans to store.
func NewGenerator(runner *jobs.Runner, store Store, interval time.Duration) *Generator {
	return &Generator{runner: runner, store: store, interval: interval}
}

// Start drops the previous plans and generates a plan for every seat in
// order. A generation that is still running is canceled first.
func (g *Generator) Start(ctx context.Context, seats []model.StudentMastery, pool []model.HomeworkQuestion) error {
	g.runner.Cancel(JobKey)
	g.runner.Wait(ctx, JobKey)
	if err := g.store.ClearHomework(); err != nil {
		return fmt.Errorf("clear homework: %w", err)
	}
	seats = slices.Clone(seats)
	pool = slices.Clone(pool)
	g.runner.Steps(JobKey, len(seats), g.interval, func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return g.store.SaveHomework(Assign(seats[i], pool))
	})
	return nil
}

// Status reports the progress of the current or last generation.
func (g *Generator) Status() jobs.Status {
	return g.runner.Status(JobKey)
}
