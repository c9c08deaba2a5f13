package service

import (
	"time"

	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
)

const (
	// MaxApplyDistance bounds a single turtle instruction applied to a session
	MaxApplyDistance = 100000
	// MaxTraceSteps bounds the total steps of a one-shot turtle walk
	MaxTraceSteps = 1000000
	// MaxSessionSteps bounds the steps a session accumulates over its lifetime
	MaxSessionSteps = 1000000
)

// TurtleResult is the outcome of a one-shot turtle walk
type TurtleResult struct {
	Instructions    int                `json:"instructions"`
	Steps           int                `json:"steps"`
	Final           engine.TurtleState `json:"final"`
	Distance        int                `json:"distance"`
	FirstRevisit    *engine.Coordinate `json:"first_revisit,omitempty"`
	RevisitDistance *int               `json:"revisit_distance,omitempty"`
}

// KeypadResult is the outcome of a one-shot keypad walk
type KeypadResult struct {
	Keypad  string        `json:"keypad"`
	Code    string        `json:"code"`
	Presses []ButtonPress `json:"presses"`
}

// ButtonPress records where one keypad line ended
type ButtonPress struct {
	Index       int               `json:"index"`
	Instruction string            `json:"instruction"`
	Position    engine.Coordinate `json:"position"`
	Label       string            `json:"label"`
}

// SessionInfo provides information about a walk session
type SessionInfo struct {
	ID             string            `json:"id"`
	Kind           SessionKind       `json:"kind"`
	Keypad         string            `json:"keypad,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Position       engine.Coordinate `json:"position"`
	Heading        *engine.Heading   `json:"heading,omitempty"`
	Label          string            `json:"label,omitempty"`
	Code           string            `json:"code,omitempty"`
	Instructions   int               `json:"instructions"`
	Steps          int               `json:"steps"`
	Distance       int               `json:"distance"`

	FirstRevisit    *engine.Coordinate `json:"first_revisit,omitempty"`
	RevisitDistance *int               `json:"revisit_distance,omitempty"`
}

// ApplyResult contains the result of applying one instruction to a session
type ApplyResult struct {
	SessionID   string              `json:"session_id"`
	Instruction string              `json:"instruction"`
	From        engine.Coordinate   `json:"from"`
	To          engine.Coordinate   `json:"to"`
	Heading     *engine.Heading     `json:"heading,omitempty"`
	Visited     []engine.Coordinate `json:"visited"`
	Absorbed    int                 `json:"absorbed,omitempty"`
	Label       string              `json:"label,omitempty"`
	Session     *SessionInfo        `json:"session"`
}

// KeypadInfo provides information about a keypad layout
type KeypadInfo struct {
	Filename    string   `json:"filename,omitempty"`
	KeypadID    string   `json:"keypad_id"` // The identifier to use for solving and sessions
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Layout      []string `json:"layout"`
	Start       string   `json:"start"`
	Buttons     int      `json:"buttons"`
	Builtin     bool     `json:"builtin,omitempty"`
}
