package experiments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedsim/schedsim/scheduler"
)

func TestGenerateJobsNonDecreasingSubTime(t *testing.T) {
	jobs := generateJobs(GeneratedJobsCount, 10, 2)
	require.Len(t, jobs, GeneratedJobsCount)
	for i := 1; i < len(jobs); i++ {
		assert.GreaterOrEqual(t, jobs[i].SubTime, jobs[i-1].SubTime)
	}
}

func TestGenerateJobDeterministicPerSeedAndIndex(t *testing.T) {
	a := generateJob(0, 10, 5, 2)
	b := generateJob(0, 10, 5, 2)
	assert.Equal(t, a, b)
}

func TestGenerateJobIndependentOfPriorTraceLength(t *testing.T) {
	// A given (seed, index) pair must yield the same job regardless of how
	// many jobs were generated before it, since each job reseeds its own
	// PRNG from seedNum+index.
	direct := generateJob(999, 10, 7, 2)
	fromTrace := generateJobs(8, 10, 2)[7]
	assert.Equal(t, direct.Alpha, fromTrace.Alpha)
	assert.Equal(t, direct.Data, fromTrace.Data)
	assert.Equal(t, direct.Mass, fromTrace.Mass)
	assert.Equal(t, direct.MinNumServers, fromTrace.MinNumServers)
	assert.Equal(t, direct.MaxNumServers, fromTrace.MaxNumServers)
}

func TestRunExptsIsDeterministic(t *testing.T) {
	exp := New(true, true, true)
	conf := scheduler.DefaultConfig()

	a, err := exp.RunExpts(conf, 6, 2, 2, nil)
	require.NoError(t, err)
	b, err := exp.RunExpts(conf, 6, 2, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRunExptsProducesOneStatsPerExperiment(t *testing.T) {
	exp := New(false, false, false)
	conf := scheduler.DefaultConfig()

	stats, err := exp.RunExpts(conf, 4, 3, 1, nil)
	require.NoError(t, err)
	assert.Len(t, stats, 3)
	for _, s := range stats {
		assert.GreaterOrEqual(t, s.AveragePowerNorm, 10.0/95.0)
	}
}

func TestRunExptWithJobsReturnsCompletedFragments(t *testing.T) {
	exp := New(true, true, true)
	conf := scheduler.DefaultConfig()

	stats, jobs, err := exp.RunExptWithJobs(conf, 6, 2, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, jobs)

	var total int
	for _, fragments := range jobs {
		total += len(fragments)
	}
	assert.Positive(t, total)
	assert.Positive(t, stats.Cost)
}

func TestRunExptHonoursCostExprOverride(t *testing.T) {
	flat, err := scheduler.CompileCostExpr("7.0")
	require.NoError(t, err)

	exp := New(false, false, false)
	exp.CostExpr = flat
	conf := scheduler.DefaultConfig()

	stats, err := exp.RunExpts(conf, 4, 1, 1, nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 7.0, stats[0].Cost)
}
