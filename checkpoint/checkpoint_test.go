package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedsim/schedsim/scheduler"
	"github.com/schedsim/schedsim/swarm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checkpoint.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLastEpochEmptyStore(t *testing.T) {
	store := openTestStore(t)
	_, found, err := store.LastEpoch()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveAndLoadEpoch(t *testing.T) {
	store := openTestStore(t)
	rec := Record{
		Epoch:      3,
		BestConfig: scheduler.DefaultConfig(),
		BestCost:   0.42,
		EpochCost:  swarm.EpochCost{Epoch: 3, Min: 0.4, Max: 0.5, Mean: 0.45, Std: 0.02},
	}
	require.NoError(t, store.SaveEpoch(rec))

	got, found, err := store.LastEpoch()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec, got)
}

func TestLastEpochReturnsHighestNumberedEpoch(t *testing.T) {
	store := openTestStore(t)
	for _, epoch := range []int{0, 1, 2, 9, 10, 11} {
		rec := Record{Epoch: epoch, BestConfig: scheduler.DefaultConfig(), BestCost: float64(epoch)}
		require.NoError(t, store.SaveEpoch(rec))
	}

	got, found, err := store.LastEpoch()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 11, got.Epoch)
}
