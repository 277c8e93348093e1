package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerStartRunsFirstTickImmediately(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1000, 1)
	s := NewScheduler(h.engine, time.Hour, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.Running())

	snap := h.engine.Snapshot()
	assert.NotEmpty(t, snap.StockMarket.Stocks, "market is seeded on start")
	assert.Len(t, snap.Depot.StockValueDevelopment, 1, "first tick runs before any delay")
}

func TestSchedulerStartTwiceIsNoop(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1000, 1)
	s := NewScheduler(h.engine, time.Hour, nil)

	require.NoError(t, s.Start())
	defer s.Stop()
	require.NoError(t, s.Start())

	assert.Len(t, h.engine.Snapshot().Depot.StockValueDevelopment, 1)
}

func TestSchedulerStop(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 1000, 1)
	s := NewScheduler(h.engine, time.Hour, nil)

	require.NoError(t, s.Start())
	s.Stop()
	assert.False(t, s.Running())

	// Stopping again is harmless.
	s.Stop()
	assert.False(t, s.Running())
}
