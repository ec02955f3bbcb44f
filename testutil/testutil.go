package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/spatialq/tree"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// UniformPoints returns n points uniformly distributed in the unit cube.
func (r *RNG) UniformPoints(n int) []tree.Point {
	points := make([]tree.Point, n)
	for i := range points {
		points[i] = tree.Point{X: r.Float32(), Y: r.Float32(), Z: r.Float32()}
	}
	return points
}

// BoxOverlap reports whether the boxes [lo1,hi1] and [lo2,hi2] intersect.
func BoxOverlap(lo1, hi1, lo2, hi2 tree.Point) bool {
	return lo1.X <= hi2.X && lo2.X <= hi1.X &&
		lo1.Y <= hi2.Y && lo2.Y <= hi1.Y &&
		lo1.Z <= hi2.Z && lo2.Z <= hi1.Z
}

// BoxContains reports whether p lies inside the box [lo,hi].
func BoxContains(lo, hi, p tree.Point) bool {
	return lo.X <= p.X && p.X <= hi.X &&
		lo.Y <= p.Y && p.Y <= hi.Y &&
		lo.Z <= p.Z && p.Z <= hi.Z
}
