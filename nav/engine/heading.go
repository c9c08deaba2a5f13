package engine

import "fmt"

// Rotate turns h by r. Right cycles North, East, South, West; Left is the inverse.
func Rotate(h Heading, r Rotation) Heading {
	switch r {
	case Right:
		switch h {
		case North:
			return East
		case East:
			return South
		case South:
			return West
		case West:
			return North
		}
	case Left:
		switch h {
		case North:
			return West
		case West:
			return South
		case South:
			return East
		case East:
			return North
		}
	}
	panic(fmt.Sprintf("engine: rotate %v by %v", h, r))
}

// UnitVector returns the step taken when facing h. Y grows to the north.
func (h Heading) UnitVector() Vector {
	switch h {
	case North:
		return Vector{DX: 0, DY: 1}
	case East:
		return Vector{DX: 1, DY: 0}
	case South:
		return Vector{DX: 0, DY: -1}
	case West:
		return Vector{DX: -1, DY: 0}
	}
	panic(fmt.Sprintf("engine: unknown heading %d", int(h)))
}

func (h Heading) String() string {
	switch h {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	}
	return fmt.Sprintf("Heading(%d)", int(h))
}

// MarshalText encodes the heading as its single-letter name
func (h Heading) MarshalText() ([]byte, error) {
	switch h {
	case North, East, South, West:
		return []byte(h.String()), nil
	}
	return nil, fmt.Errorf("engine: unknown heading %d", int(h))
}

// UnmarshalText decodes a single-letter heading name
func (h *Heading) UnmarshalText(text []byte) error {
	switch string(text) {
	case "N":
		*h = North
	case "E":
		*h = East
	case "S":
		*h = South
	case "W":
		*h = West
	default:
		return fmt.Errorf("engine: unknown heading %q", text)
	}
	return nil
}

func (r Rotation) String() string {
	switch r {
	case Left:
		return "L"
	case Right:
		return "R"
	}
	return fmt.Sprintf("Rotation(%d)", int(r))
}

// MarshalText encodes the rotation as "L" or "R"
func (r Rotation) MarshalText() ([]byte, error) {
	switch r {
	case Left, Right:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("engine: unknown rotation %d", int(r))
}

// UnmarshalText decodes "L" or "R"
func (r *Rotation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "L":
		*r = Left
	case "R":
		*r = Right
	default:
		return fmt.Errorf("engine: unknown rotation %q", text)
	}
	return nil
}

// Vector returns the keypad step for d. Up decreases Y, unlike Heading North.
func (d RawDirection) Vector() Vector {
	switch d {
	case DirUp:
		return Vector{DX: 0, DY: -1}
	case DirDown:
		return Vector{DX: 0, DY: 1}
	case DirLeft:
		return Vector{DX: -1, DY: 0}
	case DirRight:
		return Vector{DX: 1, DY: 0}
	}
	panic(fmt.Sprintf("engine: unknown direction %d", int(d)))
}

func (d RawDirection) String() string {
	switch d {
	case DirUp:
		return "U"
	case DirDown:
		return "D"
	case DirLeft:
		return "L"
	case DirRight:
		return "R"
	}
	return fmt.Sprintf("RawDirection(%d)", int(d))
}

// AllDirections lists every keypad direction in U, D, L, R order
func AllDirections() []RawDirection {
	return []RawDirection{DirUp, DirDown, DirLeft, DirRight}
}

func (in AbsoluteInstruction) String() string {
	b := make([]byte, 0, len(in))
	for _, d := range in {
		b = append(b, d.String()...)
	}
	return string(b)
}
