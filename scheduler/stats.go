package scheduler

import (
	"fmt"
	"math"
	"sort"

	"github.com/schedsim/schedsim/job"
	"github.com/schedsim/schedsim/server"
)

// Stats is the result of summarising one scheduler run: timing, counts, and
// the composite cost.
type Stats struct {
	StartTime        float64
	EndTime          float64
	WorkDuration     float64
	ReconfigCount    int
	PowerOffCount    int
	MinStretchTime   float64
	MaxStretchTime   float64
	MeanStretchTime  float64
	StdevStretchTime float64
	AveragePowerNorm float64
	Cost             float64
}

// statsOf computes Stats for the given scheduler state. costExpr is the
// compiled cost formula; stretchWeight/energyWeight are its tunable
// exponents (both 1 for a plain experiment run, per spec.md §4.3).
func statsOf(
	servers []*server.Server,
	completeJobs map[string][]*job.Job,
	reqByID map[string]job.Request,
	costExpr *CostExpr,
	stretchWeight, energyWeight float64,
) (Stats, error) {
	allJobs := flattenJobs(completeJobs)
	if len(allJobs) == 0 {
		return Stats{}, fmt.Errorf("scheduler stats: no completed jobs to summarise")
	}

	startTime, endTime := workSpan(allJobs)
	workDuration := endTime - startTime

	stretchTimes, err := stretchTimes(completeJobs, reqByID)
	if err != nil {
		return Stats{}, err
	}
	if len(stretchTimes) == 0 {
		return Stats{}, fmt.Errorf("scheduler stats: no requests to compute stretch times from")
	}

	minS, maxS, meanS := minMaxMean(stretchTimes)
	stdevS := 0.0
	if len(stretchTimes) >= 2 {
		stdevS = stdev(stretchTimes, meanS)
	}

	powerNorm := normalizedAveragePower(allJobs, len(servers), workDuration)

	cost, err := costExpr.Eval(meanS, powerNorm, stretchWeight, energyWeight)
	if err != nil {
		return Stats{}, fmt.Errorf("scheduler stats: cost formula: %w", err)
	}

	return Stats{
		StartTime:        startTime,
		EndTime:          endTime,
		WorkDuration:     workDuration,
		ReconfigCount:    countReconfigurations(completeJobs),
		PowerOffCount:    len(completeJobs[job.PowerOffSentinelID]),
		MinStretchTime:   minS,
		MaxStretchTime:   maxS,
		MeanStretchTime:  meanS,
		StdevStretchTime: stdevS,
		AveragePowerNorm: powerNorm,
		Cost:             cost,
	}, nil
}

func flattenJobs(completeJobs map[string][]*job.Job) []*job.Job {
	var all []*job.Job
	for _, jobs := range completeJobs {
		all = append(all, jobs...)
	}
	return all
}

func workSpan(jobs []*job.Job) (start, end float64) {
	start = math.Inf(1)
	end = math.Inf(-1)
	for _, j := range jobs {
		if j.StartTime < start {
			start = j.StartTime
		}
		if j.EndTime > end {
			end = j.EndTime
		}
	}
	return start, end
}

// stretchTimes computes, for each original request, the stretch time of its
// last completed fragment: (last fragment's end time - submission time) /
// original mass.
func stretchTimes(completeJobs map[string][]*job.Job, reqByID map[string]job.Request) ([]float64, error) {
	out := make([]float64, 0, len(reqByID))
	for id, req := range reqByID {
		fragments := completeJobs[id]
		if len(fragments) == 0 {
			return nil, fmt.Errorf("scheduler stats: request %s has no completed fragment", id)
		}
		last := fragments[len(fragments)-1]
		out = append(out, (last.EndTime-req.SubTime)/req.Mass)
	}
	return out, nil
}

func minMaxMean(values []float64) (min, max, mean float64) {
	min, max = values[0], values[0]
	sum := 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(len(values))
}

func stdev(values []float64, mean float64) float64 {
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func countReconfigurations(completeJobs map[string][]*job.Job) int {
	count := 0
	for _, jobs := range completeJobs {
		for _, j := range jobs {
			if j.IsReconfiguration() {
				count++
			}
		}
	}
	return count
}

// normalizedAveragePower computes total energy (active/reconfig jobs at
// ACTIVE power, power-offs via the reboot cycle formula, plus idle energy
// for the remainder of server-seconds) divided by the energy an idle
// cluster would draw over the same span.
func normalizedAveragePower(jobs []*job.Job, serverCount int, workDuration float64) float64 {
	var totalEnergy, busyServerSeconds float64
	for _, j := range jobs {
		srvCount := float64(len(j.Servers))
		if j.IsPowerOff() {
			totalEnergy += server.Reboot(j.Duration()) * srvCount
		} else {
			totalEnergy += server.Active(j.Duration()) * srvCount
		}
		busyServerSeconds += j.Duration() * srvCount
	}
	idleServerSeconds := workDuration*float64(serverCount) - busyServerSeconds
	totalEnergy += server.Idle(idleServerSeconds)

	idleBaseline := server.Idle(workDuration) * float64(serverCount)
	return totalEnergy / idleBaseline
}

// sortByRemainingMass returns a stable-sorted copy of jobs in ascending
// order of remaining mass at t.
func sortByRemainingMass(jobs []*job.Job, t float64) []*job.Job {
	out := make([]*job.Job, len(jobs))
	copy(out, jobs)
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].RemainingMass(t) < out[k].RemainingMass(t)
	})
	return out
}
