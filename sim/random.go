package sim

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
)

// Source supplies uniform draws in [0, 1). Every random decision the engine
// makes goes through it, so a scripted Source replays exact outcomes.
type Source interface {
	Float64() float64
}

// NewRandSource returns a math/rand backed Source.
func NewRandSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// SeedFromString hashes s into a seed so a session can be replayed from a
// human readable key.
func SeedFromString(s string) int64 {
	hash := sha256.Sum256([]byte(s))
	return int64(binary.BigEndian.Uint64(hash[:8]))
}

// normal draws from N(0, 1) with the Box-Muller transform over two non-zero
// uniforms.
func normal(src Source) float64 {
	u, v := 0.0, 0.0
	for u == 0 {
		u = src.Float64()
	}
	for v == 0 {
		v = src.Float64()
	}
	return math.Sqrt(-2.0*math.Log(u)) * math.Cos(2.0*math.Pi*v)
}
