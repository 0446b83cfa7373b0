package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedsim/schedsim/scheduler"
)

func TestStatsRoundTrip(t *testing.T) {
	stats := []scheduler.Stats{
		{StartTime: 0, EndTime: 25, WorkDuration: 25, ReconfigCount: 1, PowerOffCount: 2,
			MinStretchTime: 0.1, MaxStretchTime: 0.9, MeanStretchTime: 0.5, StdevStretchTime: 0.2,
			AveragePowerNorm: 1.5, Cost: 0.75},
		{StartTime: 10, EndTime: 60, WorkDuration: 50},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStats(&buf, stats))

	got, err := ReadStats(&buf)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestReadStatsRejectsEmptyFile(t *testing.T) {
	_, err := ReadStats(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadStatsRejectsWrongColumnCount(t *testing.T) {
	_, err := ReadStats(strings.NewReader("a,b,c\n1,2,3\n"))
	assert.Error(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	c := scheduler.DefaultConfig()

	var buf bytes.Buffer
	require.NoError(t, WriteConfig(&buf, c))

	got, err := ReadConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestReadConfigRejectsMalformedFile(t *testing.T) {
	_, err := ReadConfig(strings.NewReader("only_one_row_without_header\n"))
	assert.Error(t, err)
}
