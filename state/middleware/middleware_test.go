package middleware

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmarket/persist"
	"stockmarket/state"
	"stockmarket/state/actions"
	"stockmarket/state/data"
)

func TestSaveOnCommitPersistsEveryCommit(t *testing.T) {
	t.Parallel()

	fileStore := persist.NewStore(filepath.Join(t.TempDir(), "state.json"))
	p := &Persister{Store: fileStore}
	b, err := state.New(data.Initial(1000), p.SaveOnCommit)
	require.NoError(t, err)

	// Perform waits for the middleware, so the write is on disk when it
	// returns.
	require.NoError(t, b.Perform(actions.ChangeAccountValue(-250)))

	loaded, found, err := fileStore.Load(data.Initial(0))
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 750.0, loaded.Depot.AccountValue, 1e-9)

	require.NoError(t, b.Perform(actions.ChangeAccountValue(100)))
	loaded, _, err = fileStore.Load(data.Initial(0))
	require.NoError(t, err)
	assert.InDelta(t, 850.0, loaded.Depot.AccountValue, 1e-9)
}

func TestSaveOnCommitZeroChangePerformReturns(t *testing.T) {
	t.Parallel()

	fileStore := persist.NewStore(filepath.Join(t.TempDir(), "state.json"))
	p := &Persister{Store: fileStore}
	b, err := state.New(data.Initial(1000), p.SaveOnCommit)
	require.NoError(t, err)

	// Replacing the tree with an identical copy changes no fields, so the
	// store skips the commit and never signals Committed. The middleware
	// must not leave Perform waiting on it.
	done := make(chan error, 1)
	go func() { done <- b.Perform(actions.ReplaceState(state.Current(b))) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Perform never returned for a zero-change action")
	}

	// The store still accepts real changes afterwards.
	require.NoError(t, b.Perform(actions.ChangeAccountValue(-1)))
	loaded, found, err := fileStore.Load(data.Initial(0))
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 999.0, loaded.Depot.AccountValue, 1e-9)
}
