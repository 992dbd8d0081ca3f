package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	r := NewRunner(context.Background())
	t.Cleanup(r.Close)
	return r
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStatusIdle(t *testing.T) {
	r := newRunner(t)
	st := r.Status("missing")
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 0, st.Percent())
	assert.False(t, st.Running())
}

func TestStepsCompletes(t *testing.T) {
	r := newRunner(t)
	var seen []int
	r.Steps("hw", 4, time.Millisecond, func(_ context.Context, i int) error {
		seen = append(seen, i)
		return nil
	})
	st := r.Wait(waitCtx(t), "hw")
	require.Equal(t, StateDone, st.State)
	assert.Equal(t, []int{0, 1, 2, 3}, seen)
	assert.Equal(t, 4, st.Done)
	assert.Equal(t, 100, st.Percent())
	assert.NoError(t, st.Err)
}

func TestAfterRunsOnce(t *testing.T) {
	r := newRunner(t)
	var calls atomic.Int32
	r.After("parse", 0, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	st := r.Wait(waitCtx(t), "parse")
	assert.Equal(t, StateDone, st.State)
	assert.Equal(t, int32(1), calls.Load())
}

func TestStepFailureStops(t *testing.T) {
	r := newRunner(t)
	boom := errors.New("boom")
	r.Steps("fail", 5, 0, func(_ context.Context, i int) error {
		if i == 2 {
			return boom
		}
		return nil
	})
	st := r.Wait(waitCtx(t), "fail")
	assert.Equal(t, StateFailed, st.State)
	assert.ErrorIs(t, st.Err, boom)
	assert.Equal(t, 2, st.Done)
	assert.Equal(t, 40, st.Percent())
}

func TestCancel(t *testing.T) {
	r := newRunner(t)
	r.After("slow", time.Hour, func(context.Context) error {
		t.Error("should not run")
		return nil
	})
	assert.True(t, r.Status("slow").Running())
	r.Cancel("slow")
	st := r.Wait(waitCtx(t), "slow")
	assert.Equal(t, StateCanceled, st.State)
}

func TestRestartCancelsPrevious(t *testing.T) {
	r := newRunner(t)
	var first atomic.Bool
	r.After("job", time.Hour, func(context.Context) error {
		first.Store(true)
		return nil
	})
	r.After("job", 0, func(context.Context) error { return nil })
	st := r.Wait(waitCtx(t), "job")
	assert.Equal(t, StateDone, st.State)
	assert.False(t, first.Load())
}

func TestCloseCancelsAll(t *testing.T) {
	r := NewRunner(context.Background())
	r.After("a", time.Hour, func(context.Context) error { return nil })
	r.After("b", time.Hour, func(context.Context) error { return nil })
	r.Close()
	assert.Equal(t, StateCanceled, r.Status("a").State)
	assert.Equal(t, StateCanceled, r.Status("b").State)
}
