package engine

import (
	"errors"
	"fmt"
)

var ErrIllegalMove = errors.New("illegal move")

// IllegalMoveError describes a step rejected by a Reject policy
type IllegalMoveError struct {
	From   Coordinate
	Target Coordinate
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move from %v to %v", e.From, e.Target)
}

// Is lets errors.Is match ErrIllegalMove
func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}

// Step moves pos by v when the target is legal in topo, otherwise it
// returns pos unchanged.
func Step(pos Coordinate, v Vector, topo Topology) Coordinate {
	candidate := pos.Add(v)
	if topo.IsLegal(candidate) {
		return candidate
	}
	return pos
}

// Stepper applies Step under an explicit policy for illegal targets
type Stepper struct {
	Topology Topology
	Policy   MovePolicy
}

// NewStepper creates a stepper. A nil topology means Unbounded.
func NewStepper(topo Topology, policy MovePolicy) Stepper {
	if topo == nil {
		topo = Unbounded{}
	}
	return Stepper{Topology: topo, Policy: policy}
}

// Step returns the next position. Under Reject an illegal target yields the
// unchanged position together with an *IllegalMoveError.
func (s Stepper) Step(pos Coordinate, v Vector) (Coordinate, error) {
	next := Step(pos, v, s.Topology)
	if next == pos && s.Policy == Reject && v != (Vector{}) {
		return pos, &IllegalMoveError{From: pos, Target: pos.Add(v)}
	}
	return next, nil
}

// CanStep reports whether a step by v from pos lands on a legal coordinate
func (s Stepper) CanStep(pos Coordinate, v Vector) bool {
	return s.Topology.IsLegal(pos.Add(v))
}
