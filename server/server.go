// Package server models the cluster's homogeneous compute nodes.
package server

// Consumption is the power draw of a server in a given state, in Watts.
type Consumption int

const (
	ConsumptionOff      Consumption = 10  // power draw while fully off
	ConsumptionIdle     Consumption = 95  // power draw while idle, no job running
	ConsumptionBoot     Consumption = 101 // power draw while booting back up
	ConsumptionActive   Consumption = 191 // power draw while computing
	ConsumptionShutdown Consumption = 125 // power draw while shutting down
)

// Duration is a fixed phase length, in simulated seconds, of a server's
// power-off/reboot cycle.
type Duration int

const (
	DurationBoot     Duration = 151
	DurationShutdown Duration = 6
)

// Idle returns the energy, in Watt-seconds, consumed by a server sitting
// idle for the given span.
func Idle(span float64) float64 {
	return float64(ConsumptionIdle) * span
}

// Active returns the energy consumed by a server computing for the given
// span.
func Active(span float64) float64 {
	return float64(ConsumptionActive) * span
}

// Reboot returns the energy consumed by a server over one shutdown-then-boot
// cycle of the given total duration: a fixed shutdown phase, an off phase
// filling the remainder, then a fixed boot phase.
func Reboot(span float64) float64 {
	offSpan := span - float64(DurationShutdown) - float64(DurationBoot)
	return float64(DurationShutdown)*float64(ConsumptionShutdown) +
		offSpan*float64(ConsumptionOff) +
		float64(DurationBoot)*float64(ConsumptionBoot)
}

// Runner is the subset of job.Job a Server needs in order to decide whether
// it is busy at a given instant. It exists so this package never imports
// job, avoiding a cycle between the two history-holding types.
type Runner interface {
	IsRunning(t float64) bool
}

// Server tracks every job, past and present, ever assigned to it. Busy
// state at any instant is derived from that history rather than kept as
// separate mutable state.
type Server struct {
	Index int
	Jobs  []Runner
}

// New creates a Server identified by index within the cluster.
func New(index int) *Server {
	return &Server{Index: index}
}

// AddJob appends a job to the server's history.
func (s *Server) AddJob(j Runner) {
	s.Jobs = append(s.Jobs, j)
}

// RemoveJob drops a job from the server's history. It is a no-op if the job
// isn't present.
func (s *Server) RemoveJob(j Runner) {
	for i, existing := range s.Jobs {
		if existing == j {
			s.Jobs = append(s.Jobs[:i], s.Jobs[i+1:]...)
			return
		}
	}
}

// IsBusy reports whether any job assigned to the server is running at t.
func (s *Server) IsBusy(t float64) bool {
	for _, j := range s.Jobs {
		if j.IsRunning(t) {
			return true
		}
	}
	return false
}
