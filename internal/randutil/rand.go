// Package randutil derives reproducible math/rand/v2 sources from a single
// game seed so the dealer and every bot draw from independent streams.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed.
func New(seed int64) *rand.Rand {
	return Stream(seed, 0)
}

// Stream returns the n-th independent generator for seed. Stream(seed, 0)
// is the same sequence as New(seed).
func Stream(seed int64, n uint64) *rand.Rand {
	u := mix(uint64(seed) + n*goldenRatio64)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed unchanged unless it is zero, in which case a seed is
// taken from the wall clock. The second value reports whether the seed was
// generated.
func Seed(seed int64) (int64, bool) {
	if seed != 0 {
		return seed, false
	}
	return time.Now().UnixNano(), true
}

// splitmix64 finaliser.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
