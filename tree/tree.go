package tree

import (
	"errors"
	"slices"

	"github.com/hupe1980/spatialq/bintree"
	"github.com/hupe1980/spatialq/query"
)

// ErrNoParticles is returned when Build is called with no particles; a tree
// over zero particles is undefined.
var ErrNoParticles = errors.New("tree requires at least one particle")

// Compile-time check that Static satisfies the engines' tree contract.
var _ query.Tree[Point, Point] = (*Static)(nil)

// Point is a particle position. It doubles as the node aggregate type: the
// first node value array holds bounding-box min corners, the second max
// corners.
type Point struct {
	X, Y, Z float32
}

func minPoint(a, b Point) Point {
	return Point{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}

func maxPoint(a, b Point) Point {
	return Point{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
}

// Options contains configuration options for Build.
type Options struct {
	// Presorted skips the Morton sort. The input order is then taken as the
	// spatial order; use this when particles are already curve-sorted.
	Presorted bool
}

// DefaultOptions contains the default configuration options for Build.
var DefaultOptions = Options{}

// Static is an immutable in-memory particle tree.
type Static struct {
	particles []Point
	minCorner []Point // indexed by node array index
	maxCorner []Point

	boundsMin Point
	boundsMax Point

	numParticles uint64
	effParticles uint64
	levels       uint32
}

// Build constructs a Static tree from the given particles. The input slice is
// not modified.
func Build(particles []Point, optFns ...func(o *Options)) (*Static, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if len(particles) == 0 {
		return nil, ErrNoParticles
	}

	sorted := slices.Clone(particles)
	lo, hi := bounds(sorted)

	if !opts.Presorted {
		keys := make([]uint32, len(sorted))
		for i, p := range sorted {
			keys[i] = mortonKey(
				bucket(p.X, lo.X, hi.X),
				bucket(p.Y, lo.Y, hi.Y),
				bucket(p.Z, lo.Z, hi.Z),
			)
		}

		order := make([]int, len(sorted))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			if keys[a] != keys[b] {
				if keys[a] < keys[b] {
					return -1
				}
				return 1
			}
			return a - b
		})

		permuted := make([]Point, len(sorted))
		for i, j := range order {
			permuted[i] = sorted[j]
		}
		sorted = permuted
	}

	t := &Static{
		particles:    sorted,
		boundsMin:    lo,
		boundsMax:    hi,
		numParticles: uint64(len(sorted)),
		effParticles: bintree.EffectiveNumParticles(uint64(len(sorted))),
		levels:       bintree.EffectiveNumLevels(uint64(len(sorted))),
	}
	t.buildAggregates()

	return t, nil
}

func bounds(particles []Point) (lo, hi Point) {
	lo, hi = particles[0], particles[0]
	for _, p := range particles[1:] {
		lo = minPoint(lo, p)
		hi = maxPoint(hi, p)
	}
	return lo, hi
}

// buildAggregates fills the corner arrays bottom-up. Aggregates of virtual
// nodes stay zero; a conforming engine never reads them.
func (t *Static) buildAggregates() {
	t.minCorner = make([]Point, t.effParticles-1)
	t.maxCorner = make([]Point, t.effParticles-1)

	if t.levels < 2 {
		return
	}

	for level := int(t.levels) - 2; level >= 0; level-- {
		for localID := uint64(0); localID < bintree.NumNodes(uint32(level)); localID++ {
			k := bintree.Key{Level: uint32(level), LocalID: localID}
			if !bintree.IsNodeUsed(k, t.levels, t.numParticles) {
				// Unused nodes only appear to the right of used ones.
				break
			}

			left := bintree.ChildrenBegin(k)
			right := bintree.ChildrenLast(k)

			var lo, hi Point
			if left.Level == t.levels-1 {
				// Children are particles.
				lo = t.particles[left.LocalID]
				hi = lo
				if right.LocalID < t.numParticles {
					lo = minPoint(lo, t.particles[right.LocalID])
					hi = maxPoint(hi, t.particles[right.LocalID])
				}
			} else {
				li := bintree.EncodeGlobalID(left, t.levels) - t.effParticles
				lo = t.minCorner[li]
				hi = t.maxCorner[li]
				if bintree.IsNodeUsed(right, t.levels, t.numParticles) {
					ri := bintree.EncodeGlobalID(right, t.levels) - t.effParticles
					lo = minPoint(lo, t.minCorner[ri])
					hi = maxPoint(hi, t.maxCorner[ri])
				}
			}

			idx := bintree.EncodeGlobalID(k, t.levels) - t.effParticles
			t.minCorner[idx] = lo
			t.maxCorner[idx] = hi
		}
	}
}

// Particles implements query.Tree.
func (t *Static) Particles() []Point { return t.particles }

// NodeValues0 implements query.Tree; it returns the bounding-box min corners.
func (t *Static) NodeValues0() []Point { return t.minCorner }

// NodeValues1 implements query.Tree; it returns the bounding-box max corners.
func (t *Static) NodeValues1() []Point { return t.maxCorner }

// NumParticles implements query.Tree.
func (t *Static) NumParticles() uint64 { return t.numParticles }

// EffectiveNumParticles implements query.Tree.
func (t *Static) EffectiveNumParticles() uint64 { return t.effParticles }

// EffectiveNumLevels implements query.Tree.
func (t *Static) EffectiveNumLevels() uint32 { return t.levels }

// Bounds returns the bounding box of all particles.
func (t *Static) Bounds() (lo, hi Point) { return t.boundsMin, t.boundsMax }
