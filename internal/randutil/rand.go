package randutil

import (
	rand "math/rand/v2"
	"time"
)

// New returns a *rand.Rand seeded deterministically from the provided
// int64. rand/v2's PCG wants two 64-bit seeds; both are derived from the
// input via splitmix64 so every call site gets reproducible sequences.
func New(seed int64) *rand.Rand {
	first := splitmix64(uint64(seed))
	return rand.New(rand.NewPCG(first, splitmix64(first)))
}

// NewFromTime returns a *rand.Rand seeded from the current time, for
// production use where reproducibility is not needed.
func NewFromTime() *rand.Rand {
	return New(time.Now().UnixNano())
}

// splitmix64 is the finaliser step of the splitmix64 generator, used here
// purely as a seed scrambler.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
