package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultBlank marks a layout cell without a button
	DefaultBlank = "."

	MaxLayoutRows    = 50
	MaxLayoutColumns = 50
)

var ErrDuplicateLabel = errors.New("duplicate button label")

// KeypadConfig is the JSON description of a keypad layout. Each rune of a
// layout row is a button label; blank cells and spaces have no button.
type KeypadConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Layout      []string `json:"layout"`
	Start       string   `json:"start"`
	Blank       string   `json:"blank,omitempty"`
}

// Keypad is a bounded topology whose every legal coordinate carries a label
type Keypad struct {
	name      string
	layout    []string
	topo      *BoundedSet
	labels    map[Coordinate]string
	positions map[string]Coordinate
}

// ValidateKeypadConfig checks a layout for shape and label problems and
// confirms the start button exists.
func ValidateKeypadConfig(config *KeypadConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if len(config.Layout) == 0 {
		return fmt.Errorf("config validation: layout must have at least one row")
	}
	if len(config.Layout) > MaxLayoutRows {
		return fmt.Errorf("config validation: layout must have at most %d rows, got %d", MaxLayoutRows, len(config.Layout))
	}
	for i, row := range config.Layout {
		if n := utf8.RuneCountInString(row); n > MaxLayoutColumns {
			return fmt.Errorf("config validation: row %d must have at most %d columns, got %d", i+1, MaxLayoutColumns, n)
		}
	}
	if utf8.RuneCountInString(config.Start) != 1 {
		return fmt.Errorf("config validation: start must be a single button label, got %q", config.Start)
	}
	if config.Blank != "" && utf8.RuneCountInString(config.Blank) != 1 {
		return fmt.Errorf("config validation: blank must be a single character, got %q", config.Blank)
	}

	_, err := NewKeypad(config)
	return err
}

// NewKeypad builds a keypad from its layout. The start label must name a button.
func NewKeypad(config *KeypadConfig) (*Keypad, error) {
	blank := config.Blank
	if blank == "" {
		blank = DefaultBlank
	}

	k := &Keypad{
		name:      config.Name,
		layout:    append([]string(nil), config.Layout...),
		labels:    make(map[Coordinate]string),
		positions: make(map[string]Coordinate),
	}

	var legal []Coordinate
	for y, row := range config.Layout {
		x := 0
		for _, r := range row {
			label := string(r)
			if label != blank && r != ' ' {
				c := Coordinate{X: x, Y: y}
				if prev, dup := k.positions[label]; dup {
					return nil, fmt.Errorf("config validation: %w %q at %v and %v", ErrDuplicateLabel, label, prev, c)
				}
				k.labels[c] = label
				k.positions[label] = c
				legal = append(legal, c)
			}
			x++
		}
	}

	start, ok := k.positions[config.Start]
	if !ok {
		// Fall back to an off-grid coordinate so NewBoundedSet reports it.
		start = Coordinate{X: -1, Y: -1}
	}

	topo, err := NewBoundedSet(legal, start)
	if err != nil {
		return nil, fmt.Errorf("config validation: keypad %q start %q: %w", config.Name, config.Start, err)
	}
	k.topo = topo
	return k, nil
}

// Name returns the keypad name
func (k *Keypad) Name() string {
	return k.name
}

// Layout returns a copy of the layout rows
func (k *Keypad) Layout() []string {
	return append([]string(nil), k.layout...)
}

// Topology returns the bounded set of button coordinates
func (k *Keypad) Topology() *BoundedSet {
	return k.topo
}

// Label returns the button at c
func (k *Keypad) Label(c Coordinate) (string, bool) {
	label, ok := k.labels[c]
	return label, ok
}

// Position returns the coordinate of the button labelled label
func (k *Keypad) Position(label string) (Coordinate, bool) {
	c, ok := k.positions[label]
	return c, ok
}

// StartLabel returns the label of the start button
func (k *Keypad) StartLabel() string {
	return k.labels[k.topo.Start()]
}

// Buttons returns the labels in row-major order
func (k *Keypad) Buttons() []string {
	coords := k.topo.Coordinates()
	out := make([]string, len(coords))
	for i, c := range coords {
		out[i] = k.labels[c]
	}
	return out
}

// Render maps every coordinate of trace to its button label
func (k *Keypad) Render(trace []Coordinate) (string, error) {
	return Render(trace, k.labels)
}

// Walker returns a walker over this keypad with the given policy
func (k *Keypad) Walker(policy MovePolicy) *KeypadWalker {
	return NewKeypadWalker(k.topo, policy)
}

// Code walks instructions from the start button and renders the buttons pressed
func (k *Keypad) Code(instructions []AbsoluteInstruction) (string, error) {
	return k.Render(WalkBounded(k.topo, instructions))
}

func (k *Keypad) String() string {
	return strings.Join(k.layout, "\n")
}

// StandardKeypadConfig is the 3x3 numeric keypad starting on 5
func StandardKeypadConfig() *KeypadConfig {
	return &KeypadConfig{
		Name:        "standard",
		Description: "3x3 numeric keypad",
		Layout: []string{
			"123",
			"456",
			"789",
		},
		Start: "5",
	}
}

// DiamondKeypadConfig is the diamond keypad with buttons 1-9 and A-D, starting on 5
func DiamondKeypadConfig() *KeypadConfig {
	return &KeypadConfig{
		Name:        "diamond",
		Description: "Diamond keypad with buttons 1-9 and A-D",
		Layout: []string{
			"..1..",
			".234.",
			"56789",
			".ABC.",
			"..D..",
		},
		Start: "5",
	}
}

// StandardKeypad returns the built-in 3x3 keypad
func StandardKeypad() *Keypad {
	return mustKeypad(StandardKeypadConfig())
}

// DiamondKeypad returns the built-in diamond keypad
func DiamondKeypad() *Keypad {
	return mustKeypad(DiamondKeypadConfig())
}

// BuiltinKeypadConfigs returns the layouts available without a config directory
func BuiltinKeypadConfigs() []*KeypadConfig {
	return []*KeypadConfig{StandardKeypadConfig(), DiamondKeypadConfig()}
}

func mustKeypad(config *KeypadConfig) *Keypad {
	k, err := NewKeypad(config)
	if err != nil {
		panic(err)
	}
	return k
}
