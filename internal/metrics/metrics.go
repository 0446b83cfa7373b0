// Package metrics exposes expvar counters for a long-running swarm training
// or benchmarking session, published through expvar. expvar serves them at
// /debug/vars on http.DefaultServeMux; schedsim itself starts no HTTP
// server.
package metrics

import (
	"expvar"
	"strconv"
	"sync"
	"time"
)

// Metrics holds the process-wide counters for one schedsim run.
type Metrics struct {
	ExperimentsRun     *expvar.Int
	Reconfigurations   *expvar.Int
	PowerOffs          *expvar.Int
	EpochsRun          *expvar.Int
	ParticlesEvaluated *expvar.Int
	EpochCosts         *expvar.Map

	startTime time.Time
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process's singleton Metrics instance, publishing its
// counters under expvar on first call.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			ExperimentsRun:     expvar.NewInt("schedsim_experiments_run_total"),
			Reconfigurations:   expvar.NewInt("schedsim_reconfigurations_total"),
			PowerOffs:          expvar.NewInt("schedsim_power_offs_total"),
			EpochsRun:          expvar.NewInt("schedsim_epochs_run_total"),
			ParticlesEvaluated: expvar.NewInt("schedsim_particles_evaluated_total"),
			EpochCosts:         expvar.NewMap("schedsim_epoch_mean_cost"),
			startTime:          time.Now(),
		}
		expvar.Publish("schedsim_uptime_seconds", expvar.Func(func() any {
			return int64(time.Since(instance.startTime).Seconds())
		}))
	})
	return instance
}

// RecordExperiment tallies one completed Experiments run and the
// reconfigurations and power-offs it produced.
func (m *Metrics) RecordExperiment(reconfigs, powerOffs int) {
	m.ExperimentsRun.Add(1)
	m.Reconfigurations.Add(int64(reconfigs))
	m.PowerOffs.Add(int64(powerOffs))
}

// RecordEpoch tallies one completed swarm epoch, how many particles it
// evaluated, and the epoch's mean cost keyed by epoch number.
func (m *Metrics) RecordEpoch(epoch, particleCount int, meanCost float64) {
	m.EpochsRun.Add(1)
	m.ParticlesEvaluated.Add(int64(particleCount))
	m.EpochCosts.AddFloat(epochKey(epoch), meanCost)
}

func epochKey(epoch int) string {
	return "epoch_" + strconv.Itoa(epoch)
}
