package engine

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrStartNotInTopology = errors.New("start coordinate not in topology")
	ErrEmptyTopology      = errors.New("topology has no legal coordinates")
)

// Topology decides which coordinates a walker may occupy
type Topology interface {
	IsLegal(c Coordinate) bool
}

// Unbounded accepts every coordinate
type Unbounded struct{}

// IsLegal always returns true
func (Unbounded) IsLegal(Coordinate) bool { return true }

// BoundedSet accepts only the coordinates it was built from.
// The start coordinate is guaranteed to be a member.
type BoundedSet struct {
	legal map[Coordinate]struct{}
	start Coordinate
}

// NewBoundedSet builds a bounded topology. It fails when legal is empty or
// start is not one of its members.
func NewBoundedSet(legal []Coordinate, start Coordinate) (*BoundedSet, error) {
	if len(legal) == 0 {
		// No start can be a member of an empty set
		return nil, fmt.Errorf("%w: %w: %v", ErrStartNotInTopology, ErrEmptyTopology, start)
	}

	set := make(map[Coordinate]struct{}, len(legal))
	for _, c := range legal {
		set[c] = struct{}{}
	}

	if _, ok := set[start]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrStartNotInTopology, start)
	}

	return &BoundedSet{legal: set, start: start}, nil
}

// IsLegal reports whether c is a member of the set
func (b *BoundedSet) IsLegal(c Coordinate) bool {
	_, ok := b.legal[c]
	return ok
}

// Start returns the seed coordinate for walks over this topology
func (b *BoundedSet) Start() Coordinate {
	return b.start
}

// Len returns the number of legal coordinates
func (b *BoundedSet) Len() int {
	return len(b.legal)
}

// Coordinates returns the legal coordinates in row-major order
func (b *BoundedSet) Coordinates() []Coordinate {
	out := make([]Coordinate, 0, len(b.legal))
	for c := range b.legal {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
