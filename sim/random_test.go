package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalBoxMuller(t *testing.T) {
	assert.InDelta(t, -1.0, normal(script(math.Exp(-0.5), 0.5)), 1e-12)
	assert.InDelta(t, -1.0, normal(script(math.Exp(-0.5), 0, 0.5)), 1e-12, "v=0 is skipped and redrawn")
	assert.InDelta(t, 0.0, normal(script(math.Exp(-0.5), 0.25)), 1e-12)
}

func TestNormalSkipsZeroDraws(t *testing.T) {
	a := normal(script(0, 0, 0.3, 0, 0.7))
	b := normal(script(0.3, 0.7))
	assert.Equal(t, b, a)
}

func TestNormalMoments(t *testing.T) {
	src := NewRandSource(2024)
	const n = 20000

	var sum, sq float64
	for i := 0; i < n; i++ {
		x := normal(src)
		sum += x
		sq += x * x
	}
	mean := sum / n
	variance := sq/n - mean*mean

	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, variance, 0.05)
}

func TestSeedFromString(t *testing.T) {
	assert.Equal(t, SeedFromString("session-1"), SeedFromString("session-1"))
	assert.NotEqual(t, SeedFromString("session-1"), SeedFromString("session-2"))

	a := NewRandSource(SeedFromString("x"))
	b := NewRandSource(SeedFromString("x"))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}
