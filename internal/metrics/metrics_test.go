package metrics

import (
	"expvar"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReturnsSameSingletonInstance(t *testing.T) {
	a := Get()
	b := Get()
	assert.Same(t, a, b)
}

func TestRecordExperimentAccumulates(t *testing.T) {
	m := Get()
	before := m.ExperimentsRun.Value()

	m.RecordExperiment(1, 2)

	assert.Equal(t, before+1, m.ExperimentsRun.Value())
	assert.Equal(t, int64(1), m.Reconfigurations.Value())
	assert.Equal(t, int64(2), m.PowerOffs.Value())
}

func TestRecordEpochKeysCostsByEpochNumber(t *testing.T) {
	m := Get()
	m.RecordEpoch(3, 8, 0.5)

	found := false
	m.EpochCosts.Do(func(kv expvar.KeyValue) {
		if kv.Key == "epoch_3" {
			found = true
		}
	})
	assert.True(t, found)
}
