package control

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerStopsAfterMaxCycles(t *testing.T) {
	r := NewRunner(newSession(t, newConfig(t, "normal", "random")), 0, 50)
	records, cancel := r.Subscribe(100)
	defer cancel()

	require.NoError(t, r.Run(context.Background()))

	status := r.Snapshot()
	assert.False(t, status.Running)
	assert.Equal(t, 49, status.Record.Cycle)
	assert.Equal(t, 50, status.Summary.TotalCycles)
	assert.Equal(t, "random", status.Scenario)
	assert.Len(t, records, 50)

	first := <-records
	assert.Equal(t, 0, first.Cycle)
}

func TestRunnerDropsForSlowObservers(t *testing.T) {
	r := NewRunner(newSession(t, newConfig(t, "normal", "empty")), 0, 20)
	_, cancel := r.Subscribe(0)
	defer cancel()

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint64(20), r.Snapshot().Dropped)
}

func TestRunnerCommandsRequireLoop(t *testing.T) {
	r := NewRunner(newSession(t, newConfig(t, "normal", "empty")), 0, 0)
	assert.ErrorIs(t, r.Pause(context.Background()), ErrRunnerStopped)
	assert.Equal(t, -1, r.Snapshot().Record.Cycle)
}

func TestRunnerPauseResumeReset(t *testing.T) {
	r := NewRunner(newSession(t, newConfig(t, "normal", "dense")), time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool {
		s := r.Snapshot()
		return s.Running && s.Record.Cycle > 5
	}, time.Second, time.Millisecond)

	require.NoError(t, r.Pause(ctx))
	paused := r.Snapshot()
	assert.True(t, paused.Paused)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, paused.Record.Cycle, r.Snapshot().Record.Cycle)

	require.NoError(t, r.Resume(ctx))
	assert.Eventually(t, func() bool {
		return r.Snapshot().Record.Cycle > paused.Record.Cycle
	}, time.Second, time.Millisecond)

	require.NoError(t, r.Reset(ctx, newConfig(t, "cautious", "corridor")))
	status := r.Snapshot()
	assert.Equal(t, "cautious", status.Mode)
	assert.Equal(t, "corridor", status.Scenario)

	bad := newConfig(t, "aggressive", "corridor")
	bad.Mode.WarningThreshold = bad.Mode.DangerThreshold
	assert.Error(t, r.Reset(ctx, bad))
	assert.Equal(t, "cautious", r.Snapshot().Mode)

	require.NoError(t, r.Restart(ctx))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	assert.False(t, r.Snapshot().Running)
}

func TestRunnerRejectsSecondRun(t *testing.T) {
	r := NewRunner(newSession(t, newConfig(t, "normal", "empty")), time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	assert.Eventually(t, func() bool { return r.Snapshot().Running }, time.Second, time.Millisecond)

	assert.Error(t, r.Run(ctx))
	cancel()
	assert.NoError(t, <-done)
}
