package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTagsComponentField(t *testing.T) {
	log := New("swarm", "info")
	entry, ok := log.(*logrus.Entry)
	require.True(t, ok, "New must return a *logrus.Entry")
	assert.Equal(t, "swarm", entry.Data["component"])
	assert.Equal(t, logrus.InfoLevel, entry.Logger.Level)
}

func TestNewFallsBackToInfoOnInvalidLevel(t *testing.T) {
	log := New("benchmarks", "not-a-real-level")
	entry := log.(*logrus.Entry)
	assert.Equal(t, logrus.InfoLevel, entry.Logger.Level)
}

func TestNewRespectsValidLevel(t *testing.T) {
	log := New("swarm", "warn")
	entry := log.(*logrus.Entry)
	assert.Equal(t, logrus.WarnLevel, entry.Logger.Level)
}
