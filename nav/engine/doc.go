// Package engine provides grid navigation primitives shared by the turtle
// and keypad walkers.
//
// The engine package implements:
//   - Topologies deciding which coordinates are legal (Unbounded, BoundedSet)
//   - Heading rotation and the two direction vector tables
//   - A Stepper that absorbs or rejects illegal moves
//   - Walkers producing final states and lazy visit traces
//   - Analyses over traces (Manhattan distance, first revisit, rendering)
//
// Core Types:
//
// Coordinate is a comparable (x, y) pair. A Turtle turns relative to its
// Heading and walks on a plane where North increases y. A KeypadWalker steps
// in absolute directions where Up decreases y; the two conventions are
// independent. Keypad pairs a BoundedSet with a label per button.
//
// Usage:
//
//	final, trace := engine.WalkRelative([]engine.RelativeInstruction{
//		{Rotation: engine.Right, Distance: 8},
//		{Rotation: engine.Right, Distance: 4},
//	})
//	fmt.Println(engine.Manhattan(final))
//
//	if c, ok := engine.FirstDuplicate(trace); ok {
//		fmt.Println(c)
//	}
//
//	code, err := engine.StandardKeypad().Code(instructions)
//
// Illegal Moves:
//
// A step toward an illegal coordinate is absorbed by default: the walker
// stays where it is and carries on. Walkers built with the Reject policy stop
// and report ErrIllegalMove instead. Configuration problems such as a start
// coordinate outside the topology are reported once, at construction.
package engine
