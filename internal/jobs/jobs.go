// Package jobs runs the delayed and stepwise reveals behind the placeholder
// generation flows.
package jobs

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// State is the lifecycle of a job.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDone     State = "done"
	StateFailed   State = "failed"
	StateCanceled State = "canceled"
)

// Status is a snapshot of a job.
type Status struct {
	Key      string
	State    State
	Done     int
	Total    int
	Err      error
	Started  time.Time
	Finished time.Time
}

// Percent is the rounded share of finished steps.
func (s Status) Percent() int {
	if s.Total == 0 {
		if s.State == StateDone {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(s.Done) * 100 / float64(s.Total)))
}

// Running reports whether the job is still in progress.
func (s Status) Running() bool {
	return s.State == StateRunning
}

type job struct {
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// Runner tracks jobs by key. Starting a job under a key that is already
// running cancels the previous one.
type Runner struct {
	ctx    context.Context
	mu     sync.Mutex
	jobs   map[string]*job
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewRunner creates a runner whose jobs are canceled when ctx is done or
// Close is called.
func NewRunner(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{ctx: ctx, cancel: cancel, jobs: make(map[string]*job)}
}

// After runs fn once after delay.
func (r *Runner) After(key string, delay time.Duration, fn func(ctx context.Context) error) {
	r.Steps(key, 1, delay, func(ctx context.Context, _ int) error { return fn(ctx) })
}

// Steps runs fn n times, waiting interval before each call, and records
// progress after every step. A failing step stops the job.
func (r *Runner) Steps(key string, n int, interval time.Duration, fn func(ctx context.Context, i int) error) {
	r.mu.Lock()
	if prev, ok := r.jobs[key]; ok && prev.cancel != nil {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(r.ctx)
	j := &job{
		status: Status{Key: key, State: StateRunning, Total: n, Started: time.Now()},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.jobs[key] = j
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(j.done)
		defer cancel()
		r.run(ctx, j, n, interval, fn)
	}()
}

func (r *Runner) run(ctx context.Context, j *job, n int, interval time.Duration, fn func(ctx context.Context, i int) error) {
	timer := time.NewTimer(interval)
	defer timer.Stop()
	for i := range n {
		if i > 0 {
			timer.Reset(interval)
		}
		select {
		case <-ctx.Done():
			r.finish(j, StateCanceled, ctx.Err())
			return
		case <-timer.C:
		}
		if err := fn(ctx, i); err != nil {
			slog.Error("job step failed", "key", j.status.Key, "step", i, "error", err)
			r.finish(j, StateFailed, err)
			return
		}
		r.mu.Lock()
		j.status.Done = i + 1
		r.mu.Unlock()
	}
	r.finish(j, StateDone, nil)
}

func (r *Runner) finish(j *job, state State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.status.State = state
	j.status.Err = err
	j.status.Finished = time.Now()
	slog.Debug("job finished", "key", j.status.Key, "state", state, "done", j.status.Done, "total", j.status.Total)
}

// Status returns a snapshot of the job under key, or an idle status.
func (r *Runner) Status(key string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[key]
	if !ok {
		return Status{Key: key, State: StateIdle}
	}
	return j.status
}

// Cancel stops the job under key if it is running.
func (r *Runner) Cancel(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[key]; ok && j.cancel != nil {
		j.cancel()
	}
}

// Wait blocks until the job under key has stopped or ctx is done.
func (r *Runner) Wait(ctx context.Context, key string) Status {
	r.mu.Lock()
	j, ok := r.jobs[key]
	r.mu.Unlock()
	if !ok {
		return r.Status(key)
	}
	select {
	case <-j.done:
	case <-ctx.Done():
	}
	return r.Status(key)
}

// Close cancels every job and waits for them to stop.
func (r *Runner) Close() {
	r.cancel()
	r.wg.Wait()
}
