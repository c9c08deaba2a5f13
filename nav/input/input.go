// Package input turns puzzle text into engine instructions.
//
// Turn lists look like "R2, L3, R10". Keypad input is one line of U/D/L/R
// tokens per button press.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
)

var ErrInvalidInstruction = errors.New("invalid instruction")

// ParseTurn parses a single token such as "R8" or "L12"
func ParseTurn(token string) (engine.RelativeInstruction, error) {
	token = strings.TrimSpace(token)
	if len(token) < 2 {
		return engine.RelativeInstruction{}, fmt.Errorf("%w: %q", ErrInvalidInstruction, token)
	}

	var rotation engine.Rotation
	if err := rotation.UnmarshalText([]byte(token[:1])); err != nil {
		return engine.RelativeInstruction{}, fmt.Errorf("%w: %q: rotation must be L or R", ErrInvalidInstruction, token)
	}

	digits := token[1:]
	if strings.TrimLeft(digits, "0123456789") != "" {
		return engine.RelativeInstruction{}, fmt.Errorf("%w: %q: distance must be a non-negative integer", ErrInvalidInstruction, token)
	}
	distance, err := strconv.Atoi(digits)
	if err != nil {
		return engine.RelativeInstruction{}, fmt.Errorf("%w: %q: distance must be a non-negative integer", ErrInvalidInstruction, token)
	}

	return engine.RelativeInstruction{Rotation: rotation, Distance: distance}, nil
}

// ParseTurns parses a comma separated turn list. Blank input yields no instructions.
func ParseTurns(text string) ([]engine.RelativeInstruction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	fields := strings.Split(text, ",")
	out := make([]engine.RelativeInstruction, 0, len(fields))
	for i, field := range fields {
		in, err := ParseTurn(field)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i+1, err)
		}
		out = append(out, in)
	}
	return out, nil
}

// ParseDirection parses one of U, D, L, R
func ParseDirection(r rune) (engine.RawDirection, error) {
	switch r {
	case 'U':
		return engine.DirUp, nil
	case 'D':
		return engine.DirDown, nil
	case 'L':
		return engine.DirLeft, nil
	case 'R':
		return engine.DirRight, nil
	}
	return 0, fmt.Errorf("%w: direction %q must be one of U, D, L, R", ErrInvalidInstruction, r)
}

// ParseDirections parses a single keypad line such as "ULL"
func ParseDirections(line string) (engine.AbsoluteInstruction, error) {
	line = strings.TrimSpace(line)
	out := make(engine.AbsoluteInstruction, 0, len(line))
	column := 0
	for _, r := range line {
		column++
		d, err := ParseDirection(r)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", column, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// ParseKeypadLines parses newline separated keypad lines, skipping blank ones
func ParseKeypadLines(text string) ([]engine.AbsoluteInstruction, error) {
	var out []engine.AbsoluteInstruction
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		in, err := ParseDirections(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, in)
	}
	return out, nil
}

// ParseDirectionWord accepts the API vocabulary (up, down, left, right) as
// well as the single-letter tokens.
func ParseDirectionWord(word string) (engine.RawDirection, error) {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "u", "up":
		return engine.DirUp, nil
	case "d", "down":
		return engine.DirDown, nil
	case "l", "left":
		return engine.DirLeft, nil
	case "r", "right":
		return engine.DirRight, nil
	}
	return 0, fmt.Errorf("%w: unknown direction %q", ErrInvalidInstruction, word)
}
