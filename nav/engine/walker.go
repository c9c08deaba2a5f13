package engine

import "iter"

// Turtle walks relative instructions: turn, then step forward unit by unit.
type Turtle struct {
	stepper Stepper
	start   TurtleState
}

// TurtleOption configures a Turtle
type TurtleOption func(*Turtle)

// WithTopology constrains the turtle to topo
func WithTopology(topo Topology) TurtleOption {
	return func(t *Turtle) { t.stepper.Topology = topo }
}

// WithPolicy sets how illegal steps are handled
func WithPolicy(policy MovePolicy) TurtleOption {
	return func(t *Turtle) { t.stepper.Policy = policy }
}

// WithStart overrides the default origin/North seed
func WithStart(state TurtleState) TurtleOption {
	return func(t *Turtle) { t.start = state }
}

// NewTurtle creates a turtle at the origin facing North on an unbounded plane
func NewTurtle(options ...TurtleOption) *Turtle {
	t := &Turtle{
		stepper: NewStepper(Unbounded{}, Absorb),
		start:   TurtleState{Position: Origin, Heading: North},
	}
	for _, option := range options {
		option(t)
	}
	if t.stepper.Topology == nil {
		t.stepper.Topology = Unbounded{}
	}
	return t
}

// Start returns the state the turtle begins every walk from
func (t *Turtle) Start() TurtleState {
	return t.start
}

// Apply executes a single instruction from state. visit, when non-nil, is
// called with the coordinate after every unit step; returning false stops
// the instruction early.
func (t *Turtle) Apply(state TurtleState, in RelativeInstruction, visit func(Coordinate) bool) (TurtleState, bool, error) {
	state.Heading = Rotate(state.Heading, in.Rotation)
	v := state.Heading.UnitVector()

	for i := 0; i < in.Distance; i++ {
		next, err := t.stepper.Step(state.Position, v)
		if err != nil {
			return state, false, err
		}
		state.Position = next
		if visit != nil && !visit(next) {
			return state, false, nil
		}
	}
	return state, true, nil
}

func (t *Turtle) run(instructions []RelativeInstruction, visit func(Coordinate) bool) (TurtleState, error) {
	state := t.start
	if visit != nil && !visit(state.Position) {
		return state, nil
	}

	for _, in := range instructions {
		var (
			more bool
			err  error
		)
		state, more, err = t.Apply(state, in, visit)
		if err != nil || !more {
			return state, err
		}
	}
	return state, nil
}

// Final returns the terminal state after all instructions
func (t *Turtle) Final(instructions []RelativeInstruction) (TurtleState, error) {
	return t.run(instructions, nil)
}

// Trace lazily yields the start coordinate and then the coordinate after
// every unit step. Under Reject the sequence ends at the first illegal step.
func (t *Turtle) Trace(instructions []RelativeInstruction) iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		t.run(instructions, yield)
	}
}

// Walk returns the terminal state and a fresh lazy trace of the same walk
func (t *Turtle) Walk(instructions []RelativeInstruction) (TurtleState, iter.Seq[Coordinate], error) {
	final, err := t.Final(instructions)
	return final, t.Trace(instructions), err
}

// WalkRelative walks instructions with the default turtle and returns the
// final coordinate with a lazy trace.
func WalkRelative(instructions []RelativeInstruction) (Coordinate, iter.Seq[Coordinate]) {
	final, trace, _ := NewTurtle().Walk(instructions)
	return final.Position, trace
}

// KeypadWalker steps absolute instructions across a bounded topology
type KeypadWalker struct {
	topo    *BoundedSet
	stepper Stepper
}

// NewKeypadWalker creates a walker seeded at topo.Start()
func NewKeypadWalker(topo *BoundedSet, policy MovePolicy) *KeypadWalker {
	return &KeypadWalker{topo: topo, stepper: NewStepper(topo, policy)}
}

// Start returns the seed coordinate
func (w *KeypadWalker) Start() Coordinate {
	return w.topo.Start()
}

// Next threads pos through every token of in and returns where it ends
func (w *KeypadWalker) Next(pos Coordinate, in AbsoluteInstruction) (Coordinate, error) {
	for _, d := range in {
		next, err := w.stepper.Step(pos, d.Vector())
		if err != nil {
			return pos, err
		}
		pos = next
	}
	return pos, nil
}

// CanMove reports whether a single step in d from pos stays on the topology
func (w *KeypadWalker) CanMove(pos Coordinate, d RawDirection) bool {
	return w.stepper.CanStep(pos, d.Vector())
}

// Trace lazily yields one terminal coordinate per instruction
func (w *KeypadWalker) Trace(instructions []AbsoluteInstruction) iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		w.walk(instructions, yield)
	}
}

// Walk returns one terminal coordinate per instruction
func (w *KeypadWalker) Walk(instructions []AbsoluteInstruction) ([]Coordinate, error) {
	out := make([]Coordinate, 0, len(instructions))
	err := w.walk(instructions, func(c Coordinate) bool {
		out = append(out, c)
		return true
	})
	return out, err
}

func (w *KeypadWalker) walk(instructions []AbsoluteInstruction, emit func(Coordinate) bool) error {
	pos := w.topo.Start()
	for _, in := range instructions {
		next, err := w.Next(pos, in)
		if err != nil {
			return err
		}
		pos = next
		if !emit(pos) {
			return nil
		}
	}
	return nil
}

// WalkBounded walks instructions over topo, absorbing illegal moves, and
// returns one coordinate per instruction.
func WalkBounded(topo *BoundedSet, instructions []AbsoluteInstruction) []Coordinate {
	out, _ := NewKeypadWalker(topo, Absorb).Walk(instructions)
	return out
}

// BoundedTrace is the lazy form of WalkBounded
func BoundedTrace(topo *BoundedSet, instructions []AbsoluteInstruction) iter.Seq[Coordinate] {
	return NewKeypadWalker(topo, Absorb).Trace(instructions)
}
