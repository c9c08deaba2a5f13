package engine

import "fmt"

// Coordinate is a position on the plane. It is comparable and used as a map key.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the coordinate translated by v
func (c Coordinate) Add(v Vector) Coordinate {
	return Coordinate{X: c.X + v.DX, Y: c.Y + v.DY}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Origin is the turtle's default starting point
var Origin = Coordinate{}

// Vector is a displacement applied by a single unit step
type Vector struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// Heading is the direction a turtle faces
type Heading int

const (
	North Heading = iota
	East
	South
	West
)

// Rotation is a turn applied to a heading
type Rotation int

const (
	Left Rotation = iota
	Right
)

// RawDirection is an absolute keypad movement token
type RawDirection int

const (
	DirUp RawDirection = iota
	DirDown
	DirLeft
	DirRight
)

// RelativeInstruction turns the turtle and then walks Distance unit steps
type RelativeInstruction struct {
	Rotation Rotation `json:"rotation"`
	Distance int      `json:"distance"`
}

// AbsoluteInstruction is one keypad line; each token is a single step
type AbsoluteInstruction []RawDirection

// TurtleState is the position and heading of a turtle walker
type TurtleState struct {
	Position Coordinate `json:"position"`
	Heading  Heading    `json:"heading"`
}

// MovePolicy decides what happens when a step targets an illegal coordinate
type MovePolicy int

const (
	// Absorb keeps the current position and carries on
	Absorb MovePolicy = iota
	// Reject keeps the current position and reports ErrIllegalMove
	Reject
)

func (p MovePolicy) String() string {
	switch p {
	case Absorb:
		return "absorb"
	case Reject:
		return "reject"
	}
	return fmt.Sprintf("MovePolicy(%d)", int(p))
}
