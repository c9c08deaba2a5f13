package engine

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

var ErrMissingLabel = errors.New("coordinate has no label")

// Manhattan returns the taxicab distance of c from the origin
func Manhattan(c Coordinate) int {
	return abs(c.X) + abs(c.Y)
}

// ManhattanDistance returns the taxicab distance between two coordinates
func ManhattanDistance(from, to Coordinate) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// FirstDuplicate pulls from trace until a coordinate repeats and returns it.
// The boolean is false when the trace ends without a repeat.
func FirstDuplicate(trace iter.Seq[Coordinate]) (Coordinate, bool) {
	seen := make(map[Coordinate]struct{})
	for c := range trace {
		if _, ok := seen[c]; ok {
			return c, true
		}
		seen[c] = struct{}{}
	}
	return Coordinate{}, false
}

// Render concatenates the label of every coordinate in trace
func Render(trace []Coordinate, labels map[Coordinate]string) (string, error) {
	var b strings.Builder
	for i, c := range trace {
		label, ok := labels[c]
		if !ok {
			return "", fmt.Errorf("%w: %v at index %d", ErrMissingLabel, c, i)
		}
		b.WriteString(label)
	}
	return b.String(), nil
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
