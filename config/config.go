// Package config loads config.yml, the YAML file driving both CLI run
// modes.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RunConfig is one mode's parameters, shared shape for both the "swarm" and
// "benchmarks" top-level sections.
type RunConfig struct {
	Seed          int    `yaml:"SEED"`
	ServerCount   int    `yaml:"SERVER_COUNT"`
	ExptsCount    int    `yaml:"EXPTS_COUNT"`
	ParticleCount int    `yaml:"PARTICULE_COUNT"` // only meaningful for swarm
	EpochCount    int    `yaml:"EPOCH_COUNT"`     // only meaningful for swarm
	DrawGantt     bool   `yaml:"draw_gantt"`
	DrawGraph     bool   `yaml:"draw_graph"`
	CostFormula   string `yaml:"cost_formula"` // optional expr override of scheduler.DefaultCostExpr
}

// Config is the top-level config.yml document.
type Config struct {
	Swarm      RunConfig `yaml:"swarm"`
	Benchmarks RunConfig `yaml:"benchmarks"`
}

// Load reads and parses config.yml at path, applying defaults and
// validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	cfg.Swarm.setDefaults()
	cfg.Benchmarks.setDefaults()

	if err := cfg.Swarm.validate(); err != nil {
		return nil, errors.Wrap(err, "swarm config")
	}
	if err := cfg.Benchmarks.validate(); err != nil {
		return nil, errors.Wrap(err, "benchmarks config")
	}
	return &cfg, nil
}

// setDefaults fills in zero-valued fields with sensible defaults.
func (r *RunConfig) setDefaults() {
	if r.ServerCount == 0 {
		r.ServerCount = 10
	}
	if r.ExptsCount == 0 {
		r.ExptsCount = 10
	}
	if r.ParticleCount == 0 {
		r.ParticleCount = 8
	}
	if r.EpochCount == 0 {
		r.EpochCount = 5
	}
}

// validate checks the invariants a RunConfig must satisfy to drive a run.
func (r RunConfig) validate() error {
	if r.ServerCount < 2 {
		return errors.Errorf("SERVER_COUNT must be >= 2, got %d", r.ServerCount)
	}
	if r.ExptsCount < 1 {
		return errors.Errorf("EXPTS_COUNT must be >= 1, got %d", r.ExptsCount)
	}
	return nil
}
