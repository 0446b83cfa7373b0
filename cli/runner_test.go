package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedsim/schedsim/config"
	"github.com/schedsim/schedsim/scheduler"
)

func TestSeedDirLayout(t *testing.T) {
	assert.Equal(t, "results/swarm_training/seed_7", seedDir("results", "swarm_training", 7))
}

func TestFixedConfigAlwaysReturnsSameConfig(t *testing.T) {
	c := scheduler.DefaultConfig()
	f := fixedConfig(c)

	got, err := f(config.RunConfig{Seed: 99})
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestRandomConfigIsDeterministicPerSeed(t *testing.T) {
	a, err := randomConfig(config.RunConfig{Seed: 5})
	require.NoError(t, err)
	b, err := randomConfig(config.RunConfig{Seed: 5})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

type warnRecorder struct{ warned bool }

func (w *warnRecorder) Warnf(string, ...interface{}) { w.warned = true }

func TestSwarmBestConfigFallsBackWhenNoTrainingRunExists(t *testing.T) {
	log := &warnRecorder{}
	f := swarmBestConfig(t.TempDir(), log)

	got, err := f(config.RunConfig{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, scheduler.DefaultConfig(), got)
	assert.True(t, log.warned)
}
