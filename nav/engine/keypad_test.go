package engine

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func keypadLines(lines ...string) []AbsoluteInstruction {
	tokens := map[rune]RawDirection{'U': DirUp, 'D': DirDown, 'L': DirLeft, 'R': DirRight}
	out := make([]AbsoluteInstruction, 0, len(lines))
	for _, line := range lines {
		var in AbsoluteInstruction
		for _, r := range line {
			in = append(in, tokens[r])
		}
		out = append(out, in)
	}
	return out
}

func TestNewBoundedSet(t *testing.T) {
	topo, err := NewBoundedSet([]Coordinate{{0, 0}, {1, 1}, {1, 1}}, Coordinate{1, 1})
	if err != nil {
		t.Fatalf("NewBoundedSet failed: %v", err)
	}
	if topo.Len() != 2 {
		t.Errorf("duplicates collapse: expected 2 members, got %d", topo.Len())
	}
	if topo.Start() != (Coordinate{1, 1}) {
		t.Errorf("expected start (1,1), got %v", topo.Start())
	}
	if !topo.IsLegal(Coordinate{0, 0}) || topo.IsLegal(Coordinate{0, 1}) {
		t.Error("IsLegal must reflect set membership")
	}
}

func TestNewBoundedSet_StartNotInTopology(t *testing.T) {
	_, err := NewBoundedSet([]Coordinate{{0, 0}}, Coordinate{1, 1})
	if !errors.Is(err, ErrStartNotInTopology) {
		t.Errorf("expected ErrStartNotInTopology, got %v", err)
	}
}

func TestNewBoundedSet_Empty(t *testing.T) {
	for _, start := range []Coordinate{Origin, {1, 1}} {
		_, err := NewBoundedSet(nil, start)
		if !errors.Is(err, ErrStartNotInTopology) {
			t.Errorf("start %v: expected ErrStartNotInTopology, got %v", start, err)
		}
		if !errors.Is(err, ErrEmptyTopology) {
			t.Errorf("start %v: expected ErrEmptyTopology, got %v", start, err)
		}
	}

	if _, err := NewBoundedSet([]Coordinate{}, Origin); !errors.Is(err, ErrStartNotInTopology) {
		t.Errorf("empty slice: expected ErrStartNotInTopology, got %v", err)
	}
}

func TestBoundedSetCoordinates_RowMajor(t *testing.T) {
	topo, err := NewBoundedSet([]Coordinate{{2, 1}, {0, 1}, {5, 0}}, Coordinate{0, 1})
	if err != nil {
		t.Fatalf("NewBoundedSet failed: %v", err)
	}
	expected := []Coordinate{{5, 0}, {0, 1}, {2, 1}}
	if got := topo.Coordinates(); !slices.Equal(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestUnboundedIsLegal(t *testing.T) {
	for _, c := range []Coordinate{{0, 0}, {-1 << 30, 1 << 30}} {
		if !(Unbounded{}).IsLegal(c) {
			t.Errorf("Unbounded rejected %v", c)
		}
	}
}

func TestStandardKeypadLayout(t *testing.T) {
	keypad := StandardKeypad()

	if keypad.StartLabel() != "5" {
		t.Errorf("expected start label 5, got %s", keypad.StartLabel())
	}
	if pos, _ := keypad.Position("1"); pos != (Coordinate{0, 0}) {
		t.Errorf("expected button 1 at (0,0), got %v", pos)
	}
	if pos, _ := keypad.Position("9"); pos != (Coordinate{2, 2}) {
		t.Errorf("expected button 9 at (2,2), got %v", pos)
	}
	if got := strings.Join(keypad.Buttons(), ""); got != "123456789" {
		t.Errorf("expected buttons 123456789, got %s", got)
	}
}

func TestKeypadCode(t *testing.T) {
	sample := []string{"ULL", "RRDDD", "LURDL", "UUUUD"}

	tests := []struct {
		name     string
		keypad   *Keypad
		lines    []string
		expected string
	}{
		{"standard first two lines", StandardKeypad(), sample[:2], "19"},
		{"standard sample", StandardKeypad(), sample, "1985"},
		{"diamond sample", DiamondKeypad(), sample, "5DB3"},
		{"no instructions", StandardKeypad(), nil, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := test.keypad.Code(keypadLines(test.lines...))
			if err != nil {
				t.Fatalf("Code failed: %v", err)
			}
			if got != test.expected {
				t.Errorf("expected %q, got %q", test.expected, got)
			}
		})
	}
}

func TestDiamondKeypad_CornersAbsorb(t *testing.T) {
	keypad := DiamondKeypad()
	// From 5 on the west tip, up and down are both off-grid.
	got, err := keypad.Code(keypadLines("U", "D", "L"))
	if err != nil {
		t.Fatalf("Code failed: %v", err)
	}
	if got != "555" {
		t.Errorf("expected 555, got %s", got)
	}
}

func TestNewKeypad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		config *KeypadConfig
		target error
	}{
		{
			name:   "start missing",
			config: &KeypadConfig{Name: "x", Layout: []string{"12", "34"}, Start: "9"},
			target: ErrStartNotInTopology,
		},
		{
			name:   "duplicate label",
			config: &KeypadConfig{Name: "x", Layout: []string{"11"}, Start: "1"},
			target: ErrDuplicateLabel,
		},
		{
			name:   "all blank",
			config: &KeypadConfig{Name: "x", Layout: []string{"..", " ."}, Start: "1"},
			target: ErrEmptyTopology,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewKeypad(test.config)
			if !errors.Is(err, test.target) {
				t.Errorf("expected %v, got %v", test.target, err)
			}
		})
	}
}

func TestNewKeypad_CustomBlank(t *testing.T) {
	keypad, err := NewKeypad(&KeypadConfig{Name: "x", Layout: []string{"#A#", "BCD"}, Start: "C", Blank: "#"})
	if err != nil {
		t.Fatalf("NewKeypad failed: %v", err)
	}
	if keypad.Topology().Len() != 4 {
		t.Errorf("expected 4 buttons, got %d", keypad.Topology().Len())
	}
	if _, ok := keypad.Position("."); ok {
		t.Error("custom blank must not make '.' special")
	}
}

func TestValidateKeypadConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *KeypadConfig
		wantErr string
	}{
		{"valid standard", StandardKeypadConfig(), ""},
		{"valid diamond", DiamondKeypadConfig(), ""},
		{"nil", nil, "config is nil"},
		{"missing name", &KeypadConfig{Layout: []string{"1"}, Start: "1"}, "name is required"},
		{"no rows", &KeypadConfig{Name: "x", Start: "1"}, "at least one row"},
		{"long start", &KeypadConfig{Name: "x", Layout: []string{"12"}, Start: "12"}, "single button label"},
		{"long blank", &KeypadConfig{Name: "x", Layout: []string{"12"}, Start: "1", Blank: "ab"}, "single character"},
		{"start off grid", &KeypadConfig{Name: "x", Layout: []string{"12"}, Start: "3"}, "start coordinate not in topology"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateKeypadConfig(test.config)
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("expected error containing %q, got %v", test.wantErr, err)
			}
		})
	}
}

func TestRender(t *testing.T) {
	labels := map[Coordinate]string{{0, 0}: "A", {1, 0}: "B"}

	got, err := Render([]Coordinate{{1, 0}, {0, 0}, {1, 0}}, labels)
	if err != nil || got != "BAB" {
		t.Errorf("expected BAB, got %q (%v)", got, err)
	}

	_, err = Render([]Coordinate{{0, 0}, {7, 7}}, labels)
	if !errors.Is(err, ErrMissingLabel) {
		t.Errorf("expected ErrMissingLabel, got %v", err)
	}
}

func TestManhattan(t *testing.T) {
	tests := []struct {
		c        Coordinate
		expected int
	}{
		{Coordinate{0, 0}, 0},
		{Coordinate{2, 0}, 2},
		{Coordinate{-3, 4}, 7},
		{Coordinate{-5, -5}, 10},
	}

	for _, test := range tests {
		first := Manhattan(test.c)
		second := Manhattan(test.c)
		if first != test.expected {
			t.Errorf("Manhattan(%v): expected %d, got %d", test.c, test.expected, first)
		}
		if first != second {
			t.Errorf("Manhattan(%v) not stable: %d then %d", test.c, first, second)
		}
	}
}

func TestManhattanDistance(t *testing.T) {
	if got := ManhattanDistance(Coordinate{1, 1}, Coordinate{-2, 5}); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}
