package job

import (
	"math"

	"github.com/schedsim/schedsim/server"
)

// Kind distinguishes the three Job variants. It is derived from a Job's
// fields (mass and id) rather than stored, matching the invariants spec'd
// for each variant; Kind is exposed as a convenience for callers that want
// to switch on it without re-deriving the predicate each time.
type Kind int

const (
	KindNormal Kind = iota
	KindReconfiguration
	KindPowerOff
)

// Job is a tagged record for one of the three scheduled-unit variants.
// Once created, a Job's identity (StartTime, Alpha, Servers) is fixed
// except for EndTime, which Interrupt may lower exactly once.
type Job struct {
	ID             string
	Alpha          float64
	Data           float64
	Mass           float64
	MaxServerCount int
	Servers        []*server.Server
	StartTime      float64
	EndTime        float64

	interrupted bool
}

// FromRequest creates a Normal Job from a JobRequest's attributes, the
// servers it is assigned to, and its start time.
func FromRequest(req Request, servers []*server.Server, startTime float64) *Job {
	j := &Job{
		ID:             req.ID,
		Alpha:          req.Alpha,
		Data:           req.Data,
		Mass:           req.Mass,
		MaxServerCount: req.MaxNumServers,
		Servers:        servers,
		StartTime:      startTime,
	}
	j.EndTime = startTime + execTime(j.Mass, len(servers), j.Alpha)
	return j
}

// MakePowerOff creates a Power-off Job shutting down servers in parallel
// for the given duration.
func MakePowerOff(servers []*server.Server, startTime, duration float64) *Job {
	return &Job{
		ID:        PowerOffSentinelID,
		Servers:   servers,
		StartTime: startTime,
		EndTime:   startTime + duration,
	}
}

// execTime estimates a Normal job's makespan from its mass, server count,
// and speedup exponent.
func execTime(mass float64, serverCount int, alpha float64) float64 {
	return mass / math.Pow(float64(serverCount), alpha)
}

// Kind reports which of the three variants a Job is.
func (j *Job) Kind() Kind {
	switch {
	case j.IsPowerOff():
		return KindPowerOff
	case j.IsReconfiguration():
		return KindReconfiguration
	default:
		return KindNormal
	}
}

// Duration is the job's wall-clock span.
func (j *Job) Duration() float64 {
	return j.EndTime - j.StartTime
}

// Interrupt lowers a running job's end time to t. The scheduler calls it at
// most once per job: when a reconfiguration splits the job, or when Stop
// truncates a job still running at the end of a simulation.
func (j *Job) Interrupt(t float64) {
	j.EndTime = t
	j.interrupted = true
}

// Reconfigure splits a running job into an interstitial Reconfiguration job
// (moving data between the old and new server sets) and a follow-on Normal
// job carrying the remaining mass on the new server set. The receiver
// itself is unchanged; callers are expected to retire it and install the
// two returned fragments.
func (j *Job) Reconfigure(newServers []*server.Server, t float64) (reconfig *Job, followOn *Job) {
	reconfigDuration := j.ReconfigurationTime(len(newServers))
	reconfig = &Job{
		ID:        j.ID,
		Servers:   newServers,
		StartTime: t,
		EndTime:   t + reconfigDuration,
	}
	followOn = &Job{
		ID:             j.ID,
		Alpha:          j.Alpha,
		Data:           j.Data,
		Mass:           j.RemainingMass(t),
		MaxServerCount: j.MaxServerCount,
		Servers:        newServers,
		StartTime:      t + reconfigDuration,
	}
	followOn.EndTime = followOn.StartTime + execTime(followOn.Mass, len(newServers), followOn.Alpha)
	return reconfig, followOn
}

// ReconfigurationTime computes the data-movement time of a reconfiguration
// moving this job from its current server count to newServerCount.
func (j *Job) ReconfigurationTime(newServerCount int) float64 {
	maxi := math.Max(float64(len(j.Servers)), float64(newServerCount))
	mini := math.Min(float64(len(j.Servers)), float64(newServerCount))
	return j.Data / maxi * math.Floor(maxi/mini)
}

// ExecutedMass computes the mass executed so far as of t, clamped to the
// job's running span.
func (j *Job) ExecutedMass(t float64) float64 {
	clamped := math.Min(math.Max(t, j.StartTime), j.EndTime)
	return (clamped - j.StartTime) * math.Pow(float64(len(j.Servers)), j.Alpha)
}

// RemainingMass computes the mass left to execute as of t.
func (j *Job) RemainingMass(t float64) float64 {
	return j.Mass - j.ExecutedMass(t)
}

// RemainingTime computes the time left until completion as of t.
func (j *Job) RemainingTime(t float64) float64 {
	return j.EndTime - t
}

// IsRunning reports whether the job is executing at t. It also satisfies
// server.Runner.
func (j *Job) IsRunning(t float64) bool {
	return j.StartTime <= t && t < j.EndTime
}

// IsComplete reports whether the job has finished as of t.
func (j *Job) IsComplete(t float64) bool {
	return t >= j.EndTime
}

// IsReconfigurable reports whether the job is eligible for reconfiguration:
// it must be a Normal job (positive mass) not already at its server cap.
func (j *Job) IsReconfigurable() bool {
	return j.Mass > 0 && len(j.Servers) < j.MaxServerCount
}

// IsReconfiguration reports whether the job is a reconfiguration fragment.
func (j *Job) IsReconfiguration() bool {
	return j.Mass == 0 && j.ID != PowerOffSentinelID
}

// IsPowerOff reports whether the job is a power-off pseudo-job.
func (j *Job) IsPowerOff() bool {
	return j.Mass == 0 && j.ID == PowerOffSentinelID
}
