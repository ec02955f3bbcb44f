package tree

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/spatialq/bintree"
)

// snapshot is the gob payload of a serialized tree. The corner arrays are
// persisted rather than rebuilt so a snapshot load is a plain copy.
type snapshot struct {
	Particles []Point
	MinCorner []Point
	MaxCorner []Point
	BoundsMin Point
	BoundsMax Point
}

// WriteSnapshot serializes the tree as a zstd-compressed gob stream.
func (t *Static) WriteSnapshot(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	enc := gob.NewEncoder(zw)
	if err := enc.Encode(snapshot{
		Particles: t.particles,
		MinCorner: t.minCorner,
		MaxCorner: t.maxCorner,
		BoundsMin: t.boundsMin,
		BoundsMax: t.boundsMax,
	}); err != nil {
		zw.Close()
		return fmt.Errorf("snapshot: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	return nil
}

// ReadSnapshot deserializes a tree written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Static, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer zr.Close()

	var s snapshot
	if err := gob.NewDecoder(zr).Decode(&s); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	if len(s.Particles) == 0 {
		return nil, ErrNoParticles
	}

	// gob decodes empty slices as nil.
	if s.MinCorner == nil {
		s.MinCorner = []Point{}
	}
	if s.MaxCorner == nil {
		s.MaxCorner = []Point{}
	}

	n := uint64(len(s.Particles))
	t := &Static{
		particles:    s.Particles,
		minCorner:    s.MinCorner,
		maxCorner:    s.MaxCorner,
		boundsMin:    s.BoundsMin,
		boundsMax:    s.BoundsMax,
		numParticles: n,
		effParticles: bintree.EffectiveNumParticles(n),
		levels:       bintree.EffectiveNumLevels(n),
	}

	if uint64(len(s.MinCorner)) != t.effParticles-1 || uint64(len(s.MaxCorner)) != t.effParticles-1 {
		return nil, fmt.Errorf("snapshot: corner arrays sized %d/%d, want %d", len(s.MinCorner), len(s.MaxCorner), t.effParticles-1)
	}

	return t, nil
}
