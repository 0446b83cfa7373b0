package scheduler

import (
	"fmt"
	"math/rand"
)

// Config holds the scheduler's eight tunable continuous decision
// parameters. Field order is significant: it is the vector layout the PSO
// swarm uses for position/velocity arithmetic (ToSlice/ConfigFromSlice) and
// the column order of the SchedulerConfig CSV (Fields).
type Config struct {
	ReconfigScale     float64 // [0,1]
	ReconfigWeight    float64 // [0,1]
	AlphaWeight       float64 // [0,1]
	ShutdownScale     float64 // [0,1]
	ShutdownWeight    float64 // [0,1]
	ShutdownTimeShort float64 // [260, 1e5]
	ShutdownTimeLong  float64 // [260, 1e5]
	ShutdownTimeProb  float64 // [0,1]
}

// Bound is the legal closed interval for one Config field, in declaration
// order. Bounds are applied in this order by the swarm's reflection step so
// that later parameters (none of which here actually depend on an earlier
// one's value, but the ordering is kept explicit per spec) reflect
// predictably.
type Bound struct {
	Lo, Hi float64
}

// Bounds returns the eight legal intervals in Config's declaration order.
func Bounds() [8]Bound {
	return [8]Bound{
		{0, 1},
		{0, 1},
		{0, 1},
		{0, 1},
		{0, 1},
		{260, 1e5},
		{260, 1e5},
		{0, 1},
	}
}

// DefaultConfig returns the scheduler's baseline decision parameters.
func DefaultConfig() Config {
	return Config{
		ReconfigScale:     0.331,
		ReconfigWeight:    0.175,
		AlphaWeight:       0.742,
		ShutdownScale:     0.760,
		ShutdownWeight:    0.455,
		ShutdownTimeShort: 899,
		ShutdownTimeLong:  1406,
		ShutdownTimeProb:  0.717,
	}
}

// RandomConfig draws each parameter uniformly from a fixed sub-range of its
// legal interval (for example [370, 1200] for ShutdownTimeShort and
// [370, 4000] for ShutdownTimeLong), using the given PRNG so callers control
// determinism.
func RandomConfig(rng *rand.Rand) Config {
	return Config{
		ReconfigScale:     uniform(rng, 0.001, 1.0),
		ReconfigWeight:    uniform(rng, 0.01, 1.0),
		AlphaWeight:       uniform(rng, 0.001, 1.0),
		ShutdownScale:     uniform(rng, 0.001, 1.0),
		ShutdownWeight:    uniform(rng, 0.01, 1.0),
		ShutdownTimeShort: uniform(rng, 370, 1200),
		ShutdownTimeLong:  uniform(rng, 370, 4000),
		ShutdownTimeProb:  uniform(rng, 0.0001, 1.0),
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// ToSlice returns the eight parameters as an ordered vector, for PSO
// position/velocity arithmetic.
func (c Config) ToSlice() [8]float64 {
	return [8]float64{
		c.ReconfigScale,
		c.ReconfigWeight,
		c.AlphaWeight,
		c.ShutdownScale,
		c.ShutdownWeight,
		c.ShutdownTimeShort,
		c.ShutdownTimeLong,
		c.ShutdownTimeProb,
	}
}

// ConfigFromSlice reconstructs a Config from an ordered vector produced by
// ToSlice.
func ConfigFromSlice(v [8]float64) Config {
	return Config{
		ReconfigScale:     v[0],
		ReconfigWeight:    v[1],
		AlphaWeight:       v[2],
		ShutdownScale:     v[3],
		ShutdownWeight:    v[4],
		ShutdownTimeShort: v[5],
		ShutdownTimeLong:  v[6],
		ShutdownTimeProb:  v[7],
	}
}

// ToMap returns the parameters as a key->value record keyed by the names in
// Fields, for CSV serialization. The map itself is unordered; Fields gives
// the declaration order.
func (c Config) ToMap() map[string]float64 {
	return map[string]float64{
		"reconfig_scale":      c.ReconfigScale,
		"reconfig_weight":     c.ReconfigWeight,
		"alpha_weight":        c.AlphaWeight,
		"shutdown_scale":      c.ShutdownScale,
		"shutdown_weight":     c.ShutdownWeight,
		"shutdown_time_short": c.ShutdownTimeShort,
		"shutdown_time_long":  c.ShutdownTimeLong,
		"shutdown_time_prob":  c.ShutdownTimeProb,
	}
}

// Fields lists the CSV column names in declaration order.
var Fields = [8]string{
	"reconfig_scale",
	"reconfig_weight",
	"alpha_weight",
	"shutdown_scale",
	"shutdown_weight",
	"shutdown_time_short",
	"shutdown_time_long",
	"shutdown_time_prob",
}

// ConfigFromMap reconstructs a Config from a key->value record, failing if
// any required field is missing.
func ConfigFromMap(m map[string]float64) (Config, error) {
	var v [8]float64
	for i, name := range Fields {
		val, ok := m[name]
		if !ok {
			return Config{}, fmt.Errorf("scheduler config: missing field %q", name)
		}
		v[i] = val
	}
	return ConfigFromSlice(v), nil
}
