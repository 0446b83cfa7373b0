// Package scheduler implements the moldable-parallel-job scheduling engine:
// admission, reconfiguration, and power-off decisions driven by a tunable
// Config, plus the cost function used to score a run.
package scheduler

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/schedsim/schedsim/job"
	"github.com/schedsim/schedsim/server"
)

// Logger is the subset of logrus's *Entry this package needs. Accepting the
// interface rather than a concrete type keeps the engine testable without a
// real logging backend.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// Scheduler owns the cluster's servers and every job's lifecycle: queued
// requests, active jobs, and completed fragments keyed by originating
// request id.
type Scheduler struct {
	servers []*server.Server
	conf    Config
	cost    *CostExpr
	rng     *rand.Rand
	log     Logger

	reconfigEnabled bool
	powerOffEnabled bool
	paramEnabled    bool

	reqQueue     []job.Request          // sorted descending by SubTime; admit from the tail
	reqByID      map[string]job.Request // every request ever submitted
	activeJobs   []*job.Job
	completeJobs map[string][]*job.Job // keyed by request id (POWER_OFF for shutdowns)
}

// New creates a Scheduler over serverCount homogeneous servers. rng drives
// every random decision (which idle servers to allocate or add on
// reconfiguration, and which power-off window to use); passing the same seed
// makes a run reproducible. log may be nil,
// in which case the scheduler logs nothing.
func New(serverCount int, conf Config, reconfigEnabled, powerOffEnabled, paramEnabled bool, rng *rand.Rand, log Logger) *Scheduler {
	if log == nil {
		log = nopLogger{}
	}
	servers := make([]*server.Server, serverCount)
	for i := range servers {
		servers[i] = server.New(i)
	}
	return &Scheduler{
		servers:         servers,
		conf:            conf,
		cost:            DefaultCostExpr(),
		rng:             rng,
		log:             log,
		reconfigEnabled: reconfigEnabled,
		powerOffEnabled: powerOffEnabled,
		paramEnabled:    paramEnabled,
		reqByID:         make(map[string]job.Request),
		completeJobs:    make(map[string][]*job.Job),
	}
}

// Schedule enqueues a request for later admission. It is inserted in
// descending-SubTime order so UpdateSchedule can always admit from the
// queue's tail.
func (s *Scheduler) Schedule(req job.Request) error {
	if err := req.Validate(len(s.servers)); err != nil {
		return err
	}
	if _, exists := s.reqByID[req.ID]; exists {
		return fmt.Errorf("scheduler: duplicate request id %q", req.ID)
	}
	s.reqByID[req.ID] = req
	idx := sort.Search(len(s.reqQueue), func(i int) bool {
		return s.reqQueue[i].SubTime <= req.SubTime
	})
	s.reqQueue = append(s.reqQueue, job.Request{})
	copy(s.reqQueue[idx+1:], s.reqQueue[idx:])
	s.reqQueue[idx] = req
	return nil
}

// IsWorking reports whether the scheduler still has queued requests or any
// active job that isn't a power-off: a simulation kept alive only by
// servers shutting down has nothing left to schedule.
func (s *Scheduler) IsWorking() bool {
	if len(s.reqQueue) > 0 {
		return true
	}
	for _, j := range s.activeJobs {
		if !j.IsPowerOff() {
			return true
		}
	}
	return false
}

// UpdateSchedule advances the engine to t, running its four phases in order:
// retire completed jobs, admit queued requests onto idle servers, reconfigure
// eligible running jobs onto newly available servers, and finally power off
// servers left idle with nothing queued that could use them.
func (s *Scheduler) UpdateSchedule(t float64) {
	s.completeFinishedJobs(t)
	s.admitQueuedRequests(t)
	if s.reconfigEnabled {
		s.reconfigureJobs(t)
	}
	if s.powerOffEnabled {
		s.powerOffIdleServers(t)
	}
}

// Stop force-completes every still-running job at t, for callers that need a
// final Stats() without waiting out the tail of a trace.
func (s *Scheduler) Stop(t float64) {
	for _, j := range s.activeJobs {
		if !j.IsComplete(t) {
			j.Interrupt(t)
		}
		s.retireJob(j)
	}
	s.activeJobs = nil
}

// Stats summarises every completed job into timing, counts, and a cost
// computed with the given stretch/energy weights.
func (s *Scheduler) Stats(stretchWeight, energyWeight float64) (Stats, error) {
	return statsOf(s.servers, s.completeJobs, s.reqByID, s.cost, stretchWeight, energyWeight)
}

// SetCostExpr overrides the compiled cost formula Stats uses, in place of
// DefaultCostExpr. c must not be nil.
func (s *Scheduler) SetCostExpr(c *CostExpr) {
	s.cost = c
}

// CompleteJobs returns every completed job fragment, keyed by originating
// request id (job.PowerOffSentinelID for shutdown pseudo-jobs), for callers
// that want to render a Gantt chart of this run.
func (s *Scheduler) CompleteJobs() map[string][]*job.Job {
	return s.completeJobs
}

func (s *Scheduler) completeFinishedJobs(t float64) {
	var stillActive []*job.Job
	for _, j := range s.activeJobs {
		if j.IsComplete(t) {
			s.retireJob(j)
			continue
		}
		stillActive = append(stillActive, j)
	}
	s.activeJobs = stillActive
}

// retireJob detaches a finished job from its servers and files it under its
// request id (POWER_OFF for shutdown pseudo-jobs).
func (s *Scheduler) retireJob(j *job.Job) {
	for _, srv := range j.Servers {
		srv.RemoveJob(j)
	}
	s.completeJobs[j.ID] = append(s.completeJobs[j.ID], j)
}

// availableServers returns the servers with no running job at t.
func (s *Scheduler) availableServers(t float64) []*server.Server {
	var av []*server.Server
	for _, srv := range s.servers {
		if !srv.IsBusy(t) {
			av = append(av, srv)
		}
	}
	return av
}

// admitQueuedRequests admits requests from the tail of reqQueue (oldest
// submission first) while enough idle servers remain for the request's
// minimum server count. The first request that cannot be satisfied halts
// admission for this tick: later, younger requests are not allowed to jump
// the queue ahead of an older one still waiting for capacity.
func (s *Scheduler) admitQueuedRequests(t float64) {
	av := s.availableServers(t)
	for len(s.reqQueue) > 0 {
		req := s.reqQueue[len(s.reqQueue)-1]
		if req.SubTime > t {
			break
		}
		if len(av) < req.MinNumServers {
			break
		}
		serverCount := req.MaxNumServers
		if serverCount > len(av) {
			serverCount = len(av)
		}
		chosen := s.sampleServers(av, serverCount)
		av = removeServers(av, chosen)

		j := job.FromRequest(req, chosen, t)
		s.startJob(j)
		s.reqQueue = s.reqQueue[:len(s.reqQueue)-1]
		s.log.Infof("admitted request %s on %d servers at t=%g", req.ID, serverCount, t)
	}
}

// reconfigureJobs offers newly available servers to running, reconfigurable
// jobs, smallest-remaining-mass first, gated only by shouldReconfigure's
// decision formula; no reserve of idle servers is held back for queued
// requests.
func (s *Scheduler) reconfigureJobs(t float64) {
	av := s.availableServers(t)
	if len(av) == 0 {
		return
	}
	candidates := sortByRemainingMass(s.reconfigurableJobs(), t)

	for _, j := range candidates {
		if len(av) == 0 {
			break
		}
		extraCount := j.MaxServerCount - len(j.Servers)
		if extraCount > len(av) {
			extraCount = len(av)
		}
		if !s.shouldReconfigure(j, extraCount) {
			continue
		}
		extra := s.sampleServers(av, extraCount)
		av = removeServers(av, extra)

		newServers := append(append([]*server.Server{}, j.Servers...), extra...)
		reconfig, followOn := j.Reconfigure(newServers, t)

		j.Interrupt(t)
		s.detachJob(j)
		s.retireJob(j)
		s.startJob(reconfig)
		s.startJob(followOn)
		s.log.Infof("reconfigured request %s from %d to %d servers at t=%g", j.ID, len(j.Servers), len(newServers), t)
	}
}

func (s *Scheduler) reconfigurableJobs() []*job.Job {
	var out []*job.Job
	for _, j := range s.activeJobs {
		if j.IsReconfigurable() {
			out = append(out, j)
		}
	}
	return out
}

// shouldReconfigure implements the reconfiguration decision formula: offer a
// job extraCount more servers only when its post-reconfiguration share of
// its server cap, scaled by ReconfigScale and the speedup exponent, clears
// 0.5 (or, with param decisions disabled, whenever there is anything to
// offer at all).
func (s *Scheduler) shouldReconfigure(j *job.Job, extraCount int) bool {
	if !s.paramEnabled {
		return extraCount > 0
	}
	share := float64(len(j.Servers)+extraCount) / float64(j.MaxServerCount)
	score := s.conf.ReconfigScale * math.Pow(share, s.conf.ReconfigWeight) * math.Pow(j.Alpha, s.conf.AlphaWeight)
	return score > 0.5
}

// powerOffIdleServers considers each idle server in turn for shutdown: the
// global guard may halt consideration entirely once queued demand would no
// longer fit in the servers left idle, and shouldPowerOff decides each
// remaining candidate independently.
func (s *Scheduler) powerOffIdleServers(t float64) {
	av := s.availableServers(t)
	for len(av) > 0 {
		if len(s.reqQueue) > 0 && len(av) <= s.queuedMinServers() {
			break
		}
		srv := av[0]
		if s.shouldPowerOff(len(av)) {
			duration := s.powerOffDuration()
			j := job.MakePowerOff([]*server.Server{srv}, t, duration)
			s.startJob(j)
			s.log.Infof("powering off server %d at t=%g for %g seconds", srv.Index, t, duration)
		}
		av = av[1:]
	}
}

// queuedMinServers sums every still-queued request's minimum server count:
// the floor below which power-off must never push total idle capacity.
func (s *Scheduler) queuedMinServers() int {
	total := 0
	for _, req := range s.reqQueue {
		total += req.MinNumServers
	}
	return total
}

// shouldPowerOff implements the shutdown-permission formula: consent is
// granted once the fraction of the cluster sitting idle, scaled by
// ShutdownScale, clears 0.5 (or, with param decisions disabled, always
// granted).
func (s *Scheduler) shouldPowerOff(available int) bool {
	if !s.paramEnabled {
		return true
	}
	fraction := float64(available) / float64(len(s.servers))
	score := s.conf.ShutdownScale * math.Pow(fraction, s.conf.ShutdownWeight)
	return score > 0.5
}

// powerOffDuration draws the shutdown window length: short with probability
// ShutdownTimeProb, long otherwise. With param decisions disabled it is
// always the short window.
func (s *Scheduler) powerOffDuration() float64 {
	if !s.paramEnabled {
		return s.conf.ShutdownTimeShort
	}
	if s.rng.Float64() < s.conf.ShutdownTimeProb {
		return s.conf.ShutdownTimeShort
	}
	return s.conf.ShutdownTimeLong
}

// startJob attaches a job to its servers and tracks it as active. It panics
// if any target server already has a running job, since that would violate
// the one-active-job-per-server invariant.
func (s *Scheduler) startJob(j *job.Job) {
	for _, srv := range j.Servers {
		if srv.IsBusy(j.StartTime) {
			panic(fmt.Sprintf("scheduler: server %d already busy at t=%g, cannot start job %s", srv.Index, j.StartTime, j.ID))
		}
	}
	for _, srv := range j.Servers {
		srv.AddJob(j)
	}
	s.activeJobs = append(s.activeJobs, j)
}

// detachJob removes j from activeJobs without retiring it.
func (s *Scheduler) detachJob(j *job.Job) {
	for i, active := range s.activeJobs {
		if active == j {
			s.activeJobs = append(s.activeJobs[:i], s.activeJobs[i+1:]...)
			return
		}
	}
}

// sampleServers draws count servers from pool without replacement, using
// the scheduler's PRNG, via a partial Fisher-Yates shuffle. pool is left
// untouched; count is assumed <= len(pool).
func (s *Scheduler) sampleServers(pool []*server.Server, count int) []*server.Server {
	cp := append([]*server.Server{}, pool...)
	for i := 0; i < count; i++ {
		j := i + s.rng.Intn(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:count]
}

func removeServers(pool, remove []*server.Server) []*server.Server {
	if len(remove) == 0 {
		return pool
	}
	gone := make(map[*server.Server]bool, len(remove))
	for _, srv := range remove {
		gone[srv] = true
	}
	out := make([]*server.Server, 0, len(pool)-len(remove))
	for _, srv := range pool {
		if !gone[srv] {
			out = append(out, srv)
		}
	}
	return out
}
