// Package experiments drives the simulation loop: generating synthetic job
// traces and running a Scheduler over them to completion.
package experiments

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/schedsim/schedsim/job"
	"github.com/schedsim/schedsim/scheduler"
)

// GeneratedJobsCount is the default trace length.
const GeneratedJobsCount = 50

const (
	tickInterval  = 10
	traceDynamism = 500
	traceMass     = 1700
	traceDispar   = 3.8
)

// Experiments configures which scheduling behaviours a run exercises.
type Experiments struct {
	ReconfigEnabled bool
	PowerOffEnabled bool
	ParamEnabled    bool

	// CostExpr overrides the scheduler's composite cost formula for every
	// run this driver starts; nil keeps scheduler.DefaultCostExpr.
	CostExpr *scheduler.CostExpr
}

// New constructs an Experiments driver with the given feature flags.
func New(reconfigEnabled, powerOffEnabled, paramEnabled bool) *Experiments {
	return &Experiments{
		ReconfigEnabled: reconfigEnabled,
		PowerOffEnabled: powerOffEnabled,
		ParamEnabled:    paramEnabled,
	}
}

// RunExpts runs numExpts independent experiments, each seeded from
// seedNum+i, and returns one Stats per experiment.
func (e *Experiments) RunExpts(conf scheduler.Config, numServers, numExpts, seedNum int, log scheduler.Logger) ([]scheduler.Stats, error) {
	stats := make([]scheduler.Stats, 0, numExpts)
	for i := 0; i < numExpts; i++ {
		st, err := e.runExpt(conf, numServers, seedNum+i, log)
		if err != nil {
			return nil, fmt.Errorf("experiment %d: %w", i, err)
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// runExpt generates a trace, drives it through a fresh Scheduler one tick at
// a time, and returns the resulting Stats with stretch and energy weighted
// equally.
func (e *Experiments) runExpt(conf scheduler.Config, numServers, seedNum int, log scheduler.Logger) (scheduler.Stats, error) {
	sched, err := e.runExptScheduler(conf, numServers, seedNum, log)
	if err != nil {
		return scheduler.Stats{}, err
	}
	return sched.Stats(1, 1)
}

// RunExptWithJobs runs a single experiment exactly like one iteration of
// RunExpts, additionally returning the scheduler's completed-job fragments
// for a caller that wants to render a Gantt chart of that one run.
func (e *Experiments) RunExptWithJobs(conf scheduler.Config, numServers, seedNum int, log scheduler.Logger) (scheduler.Stats, map[string][]*job.Job, error) {
	sched, err := e.runExptScheduler(conf, numServers, seedNum, log)
	if err != nil {
		return scheduler.Stats{}, nil, err
	}
	stats, err := sched.Stats(1, 1)
	if err != nil {
		return scheduler.Stats{}, nil, err
	}
	return stats, sched.CompleteJobs(), nil
}

// runExptScheduler generates a trace and drives it through a fresh
// Scheduler, one tick at a time, until every job has completed.
func (e *Experiments) runExptScheduler(conf scheduler.Config, numServers, seedNum int, log scheduler.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(numServers, conf, e.ReconfigEnabled, e.PowerOffEnabled, e.ParamEnabled, rand.New(rand.NewSource(int64(seedNum))), log)
	if e.CostExpr != nil {
		sched.SetCostExpr(e.CostExpr)
	}

	jobs := generateJobs(GeneratedJobsCount, numServers, seedNum)

	var t float64
	for len(jobs) > 0 || sched.IsWorking() {
		for len(jobs) > 0 && jobs[0].SubTime <= t {
			if err := sched.Schedule(jobs[0]); err != nil {
				return nil, err
			}
			jobs = jobs[1:]
		}
		sched.UpdateSchedule(t)
		t += tickInterval
	}

	sched.Stop(t)
	return sched, nil
}

// generateJobs produces a job_count-long trace of requests, each submitted
// no earlier than the previous one, over a cluster of serverCount servers.
func generateJobs(jobCount, serverCount, seedNum int) []job.Request {
	jobs := make([]job.Request, 0, jobCount)
	var prevSubTime float64
	for i := 0; i < jobCount; i++ {
		req := generateJob(prevSubTime, serverCount, i, seedNum)
		jobs = append(jobs, req)
		prevSubTime = req.SubTime
	}
	return jobs
}

// generateJob draws one request. Each job gets its own PRNG, reseeded from
// seedNum+num, so a given (seedNum, num) pair always yields the same job
// regardless of how many jobs were generated before it.
func generateJob(prevSubTime float64, serverCount, num, seedNum int) job.Request {
	rng := rand.New(rand.NewSource(int64(seedNum + num)))

	subTime, mass := nextTask(rng, prevSubTime, traceDynamism, traceMass, traceDispar)
	alpha := uniformF(rng, 0.5, 1)
	data := uniformF(rng, 10, 500)
	minServers := int(math.Ceil((alpha / 3) * float64(serverCount-1)))
	if minServers < 1 {
		minServers = 1
	}
	maxServers := minServers + rng.Intn(serverCount-minServers)

	return job.Request{
		ID:            fmt.Sprintf("job%d", num),
		SubTime:       subTime,
		Alpha:         alpha,
		Data:          data,
		Mass:          mass,
		MinNumServers: minServers,
		MaxNumServers: maxServers,
	}
}

// nextTask draws a job's submission time, as an inter-arrival gap sampled
// from a shifted Pareto distribution added to the previous submission time,
// and its mass from makespan.
func nextTask(rng *rand.Rand, prevSubTime, dynamism, mass, disparity float64) (subTime, makespan float64) {
	arrival := pareto(rng, 4) * 3 * dynamism
	return prevSubTime + arrival, makespan_(rng, mass, disparity)
}

// pareto draws from a standard Pareto(shape) distribution shifted left by 1,
// matching scipy.stats.pareto.rvs(shape, loc=-1): X = U^(-1/shape) - 1.
func pareto(rng *rand.Rand, shape float64) float64 {
	u := rng.Float64()
	for u == 0 {
		u = rng.Float64()
	}
	return math.Pow(u, -1/shape) - 1
}

// makespan_ draws a job's total mass from a log-normal distribution whose
// parameters are derived from the trace's target mass and disparity, the
// same way scipy.stats.lognorm is parameterised: scale=exp(mu),
// shape=sigma.
func makespan_(rng *rand.Rand, mass, disparity float64) float64 {
	mu := math.Log(mass / disparity)
	sigma := math.Sqrt(2 * (math.Log(mass) - mu))
	return (mass / disparity) * math.Exp(sigma*rng.NormFloat64())
}

func uniformF(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
