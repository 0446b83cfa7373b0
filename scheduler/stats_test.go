package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedsim/schedsim/job"
	"github.com/schedsim/schedsim/server"
)

func TestStatsOfScenarioSingleJob(t *testing.T) {
	servers := []*server.Server{server.New(0), server.New(1), server.New(2), server.New(3)}
	req := job.Request{ID: "A", SubTime: 0, Alpha: 1, Mass: 100, MinNumServers: 2, MaxNumServers: 4}
	a := job.FromRequest(req, servers, 0)

	completeJobs := map[string][]*job.Job{"A": {a}}
	reqByID := map[string]job.Request{"A": req}

	stats, err := statsOf(servers, completeJobs, reqByID, DefaultCostExpr(), 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 0.0, stats.StartTime)
	assert.Equal(t, 25.0, stats.EndTime)
	assert.Equal(t, 25.0, stats.WorkDuration)
	assert.InDelta(t, 0.25, stats.MeanStretchTime, 1e-9)
	assert.Equal(t, 0, stats.ReconfigCount)
	assert.Equal(t, 0, stats.PowerOffCount)
	assert.GreaterOrEqual(t, stats.AveragePowerNorm, 10.0/95.0)
}

func TestMassConservationAcrossFragments(t *testing.T) {
	servers := []*server.Server{server.New(0)}
	req := job.Request{ID: "A", SubTime: 0, Data: 5, Alpha: 1, Mass: 100, MinNumServers: 1, MaxNumServers: 2}
	original := job.FromRequest(req, servers, 0)

	newServers := []*server.Server{server.New(0), server.New(1)}
	reconfig, followOn := original.Reconfigure(newServers, 10)

	executedBeforeReconfig := original.ExecutedMass(10)
	executedAfterFollowOn := followOn.ExecutedMass(followOn.EndTime)
	assert.InDelta(t, req.Mass, executedBeforeReconfig+executedAfterFollowOn, 1e-9)
	assert.True(t, reconfig.IsReconfiguration())
}

func TestEnergyLowerBoundApproachedByPowerOffHeavySchedule(t *testing.T) {
	servers := []*server.Server{server.New(0)}
	// A brief active burst followed by a long power-off window: average
	// power should sit near, but never below, P_OFF/P_IDLE.
	active := job.FromRequest(job.Request{ID: "A", Alpha: 1, Mass: 1, MinNumServers: 1, MaxNumServers: 1}, servers, 0)
	off := job.MakePowerOff(servers, active.EndTime, 100000)

	completeJobs := map[string][]*job.Job{"A": {active}, job.PowerOffSentinelID: {off}}
	reqByID := map[string]job.Request{"A": {ID: "A", SubTime: 0, Mass: 1}}

	stats, err := statsOf(servers, completeJobs, reqByID, DefaultCostExpr(), 1, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.AveragePowerNorm, 10.0/95.0)
	assert.InDelta(t, 10.0/95.0, stats.AveragePowerNorm, 0.05)
}

func TestStatsOfErrorsOnNoCompletedJobs(t *testing.T) {
	_, err := statsOf(nil, map[string][]*job.Job{}, map[string]job.Request{}, DefaultCostExpr(), 1, 1)
	assert.Error(t, err)
}

func TestSortByRemainingMassAscending(t *testing.T) {
	servers := []*server.Server{server.New(0)}
	small := job.FromRequest(job.Request{ID: "small", Alpha: 1, Mass: 10, MinNumServers: 1, MaxNumServers: 1}, servers, 0)
	big := job.FromRequest(job.Request{ID: "big", Alpha: 1, Mass: 1000, MinNumServers: 1, MaxNumServers: 1}, servers, 0)

	sorted := sortByRemainingMass([]*job.Job{big, small}, 0)
	require.Len(t, sorted, 2)
	assert.Equal(t, "small", sorted[0].ID)
	assert.Equal(t, "big", sorted[1].ID)
}
