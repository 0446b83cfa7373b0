package swarm

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"github.com/schedsim/schedsim/experiments"
	"github.com/schedsim/schedsim/scheduler"
)

// EpochCost summarises the costs every particle in the swarm scored during
// one epoch.
type EpochCost struct {
	Epoch int
	Min   float64
	Max   float64
	Mean  float64
	Std   float64
}

func epochCostFromCosts(epoch int, costs []float64) EpochCost {
	minC, maxC := costs[0], costs[0]
	var sum float64
	for _, c := range costs {
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
		sum += c
	}
	mean := sum / float64(len(costs))

	std := 0.0
	if len(costs) >= 2 {
		var sumSq float64
		for _, c := range costs {
			d := c - mean
			sumSq += d * d
		}
		std = math.Sqrt(sumSq / float64(len(costs)-1))
	}

	return EpochCost{Epoch: epoch, Min: minC, Max: maxC, Mean: mean, Std: std}
}

// StatHandler is invoked, once per particle per epoch, with that particle's
// raw experiment stats, for callers that want to persist or plot per-
// particle runs (e.g. a checkpoint writer or CSV dump).
type StatHandler func(epoch, particleIdx int, stats []scheduler.Stats)

// Swarm is a population of Particles evolving by PSO over repeated batches
// of scheduling experiments.
type Swarm struct {
	seed       int
	population []*Particle
	numServers int
	numExp     int

	bestParticle *Particle
	bestCost     float64
	experiment   *experiments.Experiments
	log          scheduler.Logger
	rng          *rand.Rand
	poolSize     int
}

// New creates a Swarm of numParticles Particles, each starting at a random
// Config drawn from seedNum, ready to evaluate batches of numExp
// experiments over a numServers-server cluster.
func New(seedNum, numParticles, numServers, numExp int, log scheduler.Logger) (*Swarm, error) {
	if numParticles <= 1 {
		return nil, fmt.Errorf("swarm: particle count must be greater than 1, got %d", numParticles)
	}
	rng := rand.New(rand.NewSource(int64(seedNum)))
	population := make([]*Particle, numParticles)
	for i := range population {
		population[i] = NewParticle(scheduler.RandomConfig(rng))
	}
	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}
	return &Swarm{
		seed:         seedNum,
		population:   population,
		numServers:   numServers,
		numExp:       numExp,
		experiment:   experiments.New(true, true, true),
		log:          log,
		rng:          rng,
		poolSize:     poolSize,
		bestParticle: population[0],
		bestCost:     math.Inf(1),
	}, nil
}

// BestConfig returns the Config with the lowest cost any particle has found
// so far across every epoch run.
func (sw *Swarm) BestConfig() scheduler.Config {
	return sw.bestParticle.BestConfig
}

// BestCost returns the cost BestConfig scored when it was found.
func (sw *Swarm) BestCost() float64 {
	return sw.bestCost
}

// SetCostExpr overrides the cost formula every experiment this swarm runs
// is scored with, in place of scheduler.DefaultCostExpr.
func (sw *Swarm) SetCostExpr(c *scheduler.CostExpr) {
	sw.experiment.CostExpr = c
}

// SeedBest installs cfg/cost as the swarm's current global best, for
// resuming a training run from a checkpoint: RunEpochsFrom compares every
// subsequent epoch's particles against this cost rather than starting from
// scratch.
func (sw *Swarm) SeedBest(cfg scheduler.Config, cost float64) {
	p := NewParticle(cfg)
	p.BestCost = cost
	sw.bestParticle = p
	sw.bestCost = cost
}

// RunEpochs runs numEpochs training rounds starting at epoch 0, returning
// one EpochCost per round. statHandler may be nil.
func (sw *Swarm) RunEpochs(numEpochs int, statHandler StatHandler) ([]EpochCost, error) {
	return sw.RunEpochsFrom(0, numEpochs, statHandler)
}

// RunEpochsFrom runs every epoch in [startEpoch, numEpochs), letting a
// session resumed from a checkpoint skip the epochs it already completed.
// statHandler may be nil.
func (sw *Swarm) RunEpochsFrom(startEpoch, numEpochs int, statHandler StatHandler) ([]EpochCost, error) {
	if startEpoch >= numEpochs {
		return nil, nil
	}
	costs := make([]EpochCost, 0, numEpochs-startEpoch)
	for i := startEpoch; i < numEpochs; i++ {
		sw.log.Infof("running epoch %d/%d", i+1, numEpochs)
		ec, err := sw.runEpoch(i, statHandler)
		if err != nil {
			return nil, fmt.Errorf("epoch %d: %w", i, err)
		}
		costs = append(costs, ec)
	}
	return costs, nil
}

// runEpoch evaluates every particle's current Config concurrently (bounded
// by a worker pool sized to the host's CPU count), serialises the resulting
// global-best update behind a mutex, then — once every particle has
// finished, as a hard barrier — moves every particle toward the swarm-wide
// best configuration found so far.
func (sw *Swarm) runEpoch(epoch int, statHandler StatHandler) (EpochCost, error) {
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, sw.poolSize)

	costs := make([]float64, len(sw.population))
	errs := make([]error, len(sw.population))

	for i, p := range sw.population {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p *Particle) {
			defer wg.Done()
			defer func() { <-sem }()

			stats, err := sw.experiment.RunExpts(p.Config, sw.numServers, sw.numExp, epoch, sw.log)
			if err != nil {
				errs[i] = err
				return
			}
			cost := meanCost(stats)

			mu.Lock()
			if statHandler != nil {
				statHandler(epoch, i, stats)
			}
			costs[i] = cost
			if cost < sw.bestCost {
				sw.bestCost = cost
				sw.bestParticle = p
			}
			mu.Unlock()

			p.UpdateCost(cost)
		}(i, p)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return EpochCost{}, fmt.Errorf("particle %d: %w", i, err)
		}
	}

	for _, p := range sw.population {
		p.UpdatePosition(sw.BestConfig(), sw.rng)
	}

	return epochCostFromCosts(epoch, costs), nil
}

func meanCost(stats []scheduler.Stats) float64 {
	var sum float64
	for _, s := range stats {
		sum += s.Cost
	}
	return sum / float64(len(stats))
}
