package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
swarm:
  SEED: 2
benchmarks:
  SEED: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Swarm.Seed)
	assert.Equal(t, 10, cfg.Swarm.ServerCount)
	assert.Equal(t, 10, cfg.Swarm.ExptsCount)
	assert.Equal(t, 8, cfg.Swarm.ParticleCount)
	assert.Equal(t, 5, cfg.Swarm.EpochCount)
	assert.Equal(t, 3, cfg.Benchmarks.Seed)
}

func TestLoadRespectsExplicitValues(t *testing.T) {
	path := writeTempConfig(t, `
swarm:
  SEED: 1
  SERVER_COUNT: 20
  EXPTS_COUNT: 4
  PARTICULE_COUNT: 16
  EPOCH_COUNT: 10
  draw_graph: true
benchmarks:
  SEED: 1
  SERVER_COUNT: 12
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Swarm.ServerCount)
	assert.Equal(t, 4, cfg.Swarm.ExptsCount)
	assert.Equal(t, 16, cfg.Swarm.ParticleCount)
	assert.Equal(t, 10, cfg.Swarm.EpochCount)
	assert.True(t, cfg.Swarm.DrawGraph)
	assert.Equal(t, 12, cfg.Benchmarks.ServerCount)
}

func TestLoadRejectsTooSmallServerCount(t *testing.T) {
	path := writeTempConfig(t, `
swarm:
  SEED: 1
  SERVER_COUNT: 1
benchmarks:
  SEED: 1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeTempConfig(t, "swarm: [this is not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}
