package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSliceRoundTrip(t *testing.T) {
	c := DefaultConfig()
	got := ConfigFromSlice(c.ToSlice())
	assert.Equal(t, c, got)
}

func TestConfigMapRoundTrip(t *testing.T) {
	c := DefaultConfig()
	got, err := ConfigFromMap(c.ToMap())
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestConfigFromMapMissingField(t *testing.T) {
	m := DefaultConfig().ToMap()
	delete(m, "alpha_weight")
	_, err := ConfigFromMap(m)
	assert.Error(t, err)
}

func TestRandomConfigWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bounds := Bounds()
	for i := 0; i < 50; i++ {
		c := RandomConfig(rng)
		v := c.ToSlice()
		for j, b := range bounds {
			assert.GreaterOrEqual(t, v[j], b.Lo)
			assert.LessOrEqual(t, v[j], b.Hi)
		}
	}
}

func TestRandomConfigDeterministicPerSeed(t *testing.T) {
	a := RandomConfig(rand.New(rand.NewSource(42)))
	b := RandomConfig(rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}
