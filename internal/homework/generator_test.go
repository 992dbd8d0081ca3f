package homework

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/model"
)

type memStore struct {
	mu    sync.Mutex
	plans map[int]model.StudentHomework
	order []int
}

func newMemStore() *memStore {
	return &memStore{plans: make(map[int]model.StudentHomework)}
}

func (m *memStore) ClearHomework() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = make(map[int]model.StudentHomework)
	m.order = nil
	return nil
}

func (m *memStore) SaveHomework(hw model.StudentHomework) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[hw.StudentID] = hw
	m.order = append(m.order, hw.StudentID)
	return nil
}

func seats() []model.StudentMastery {
	return []model.StudentMastery{
		{ID: 0, Name: "a", MasteryScore: 95, Status: model.StatusMastered},
		{ID: 1, Name: "b", MasteryScore: 72, Status: model.StatusPassing},
		{ID: 2, Name: "c", MasteryScore: 61, Status: model.StatusAtRisk},
	}
}

func TestGenerator(t *testing.T) {
	runner := jobs.NewRunner(context.Background())
	t.Cleanup(runner.Close)
	store := newMemStore()
	g := NewGenerator(runner, store, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, g.Start(ctx, seats(), pool))
	st := runner.Wait(ctx, JobKey)
	require.Equal(t, jobs.StateDone, st.State)
	assert.Equal(t, 100, g.Status().Percent())

	require.Len(t, store.plans, 3)
	assert.Equal(t, []int{0, 1, 2}, store.order, "one plan per seat in seat order")
	assert.Equal(t, CommentMastered, store.plans[0].Comment)
	assert.Equal(t, CommentPassing, store.plans[1].Comment)
	assert.Equal(t, CommentAtRisk, store.plans[2].Comment)

	// Restarting clears the previous run.
	require.NoError(t, g.Start(ctx, seats()[:1], pool))
	runner.Wait(ctx, JobKey)
	assert.Len(t, store.plans, 1)
}

func TestGeneratorEmptyClass(t *testing.T) {
	runner := jobs.NewRunner(context.Background())
	t.Cleanup(runner.Close)
	g := NewGenerator(runner, newMemStore(), time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, g.Start(ctx, nil, pool))
	st := runner.Wait(ctx, JobKey)
	assert.Equal(t, jobs.StateDone, st.State)
	assert.Equal(t, 100, st.Percent())
}

func TestGeneratorRestartCancels(t *testing.T) {
	runner := jobs.NewRunner(context.Background())
	t.Cleanup(runner.Close)
	store := newMemStore()
	g := NewGenerator(runner, store, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, g.Start(ctx, seats(), pool))
	assert.True(t, g.Status().Running())
	assert.Equal(t, 0, g.Status().Percent())

	g.interval = 0
	require.NoError(t, g.Start(ctx, seats(), pool))
	st := runner.Wait(ctx, JobKey)
	assert.Equal(t, jobs.StateDone, st.State)
	assert.Len(t, store.plans, 3)
}
