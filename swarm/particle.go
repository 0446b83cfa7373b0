// Package swarm implements particle swarm optimisation over Scheduler
// Config, searching for parameters that minimise the cost of a batch of
// experiments.
package swarm

import (
	"math"
	"math/rand"

	"github.com/schedsim/schedsim/scheduler"
)

// Particle is one candidate Config in the swarm, tracking its own best find
// and velocity across the eight-dimensional parameter space.
type Particle struct {
	Config     scheduler.Config
	BestConfig scheduler.Config
	BestCost   float64
	Velocity   [8]float64

	c1, c2 float64
}

// NewParticle creates a Particle starting at config, with no velocity and an
// unset (infinite) best cost.
func NewParticle(config scheduler.Config) *Particle {
	return &Particle{
		Config:     config,
		BestConfig: config,
		BestCost:   math.Inf(1),
		c1:         2,
		c2:         2,
	}
}

// UpdateCost records cost as the particle's personal best if it improves on
// the current one. Must be called with the Config the cost was measured
// against, before UpdatePosition moves the particle.
func (p *Particle) UpdateCost(cost float64) {
	if cost < p.BestCost {
		p.BestCost = cost
		p.BestConfig = p.Config
	}
}

// UpdatePosition moves the particle toward a blend of its own best find and
// the swarm's best find, damped by 0.1, then reflects any dimension that
// left its legal bound back into range. r1 and r2 are drawn once each and
// applied across all eight dimensions, matching the scalar (not per-
// dimension) random draw of the formula this implements.
func (p *Particle) UpdatePosition(groupBest scheduler.Config, rng *rand.Rand) {
	pos := p.Config.ToSlice()
	bestPos := p.BestConfig.ToSlice()
	groupBestPos := groupBest.ToSlice()

	r1 := rng.Float64()
	r2 := rng.Float64()

	var next [8]float64
	for i := range pos {
		p.Velocity[i] = 0.1 * (p.Velocity[i] +
			p.c1*r1*(bestPos[i]-pos[i]) +
			p.c2*r2*(groupBestPos[i]-pos[i]))
		next[i] = pos[i] + p.Velocity[i]
	}

	config := scheduler.ConfigFromSlice(next)
	p.Config = reflectBounds(config)
}

// reflectBounds folds each out-of-range field back across the bound it
// crossed, so a particle that overshoots bounces rather than escapes.
func reflectBounds(config scheduler.Config) scheduler.Config {
	v := config.ToSlice()
	bounds := scheduler.Bounds()
	for i, b := range bounds {
		v[i] = reflect(v[i], b.Lo, b.Hi)
	}
	return scheduler.ConfigFromSlice(v)
}

func reflect(v, lo, hi float64) float64 {
	switch {
	case v > hi:
		return hi - (v - hi)
	case v < lo:
		return lo + (lo - v)
	default:
		return v
	}
}
