package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
)

// NavService defines all navigation operations exposed to transports
type NavService interface {
	// One-shot solves
	WalkTurtle(ctx context.Context, instructions string) (*TurtleResult, error)
	KeypadCode(ctx context.Context, keypadName, instructions string) (*KeypadResult, error)

	// Session Management
	CreateSession(ctx context.Context, kind SessionKind, keypadName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Incremental walking
	Apply(ctx context.Context, sessionID, instruction string) (*ApplyResult, error)

	// Keypad layouts
	ListKeypads(ctx context.Context) ([]*KeypadInfo, error)
	GetKeypad(ctx context.Context, name string) (*KeypadInfo, error)
	SaveKeypad(ctx context.Context, name string, config *engine.KeypadConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, kind SessionKind, keypad *engine.Keypad) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles keypad layout loading
type ConfigManager interface {
	LoadKeypad(name string) (*engine.Keypad, error)
	LoadKeypadConfig(name string) (*engine.KeypadConfig, error)
	ListKeypads() ([]*KeypadInfo, error)
	GetDefault() *engine.Keypad
	SaveKeypad(name string, config *engine.KeypadConfig) error
}

// SessionKind selects the movement semantics of a session
type SessionKind string

const (
	KindTurtle SessionKind = "turtle"
	KindKeypad SessionKind = "keypad"
)

// Session is a live walk driven one instruction at a time.
// Fields below mu are guarded by it.
type Session struct {
	ID             string
	Kind           SessionKind
	Keypad         *engine.Keypad
	CreatedAt      time.Time
	LastAccessedAt time.Time

	turtle *engine.Turtle
	walker *engine.KeypadWalker

	mu           sync.Mutex
	turtleState  engine.TurtleState
	position     engine.Coordinate
	instructions int
	steps        int
	seen         map[engine.Coordinate]struct{}
	firstRevisit *engine.Coordinate
	presses      []string
}

// NewSession seeds a session at the start of its topology. keypad is
// required for keypad sessions and ignored for turtle sessions.
func NewSession(id string, kind SessionKind, keypad *engine.Keypad) *Session {
	now := time.Now()
	s := &Session{
		ID:             id,
		Kind:           kind,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	switch kind {
	case KindKeypad:
		s.Keypad = keypad
		s.walker = keypad.Walker(engine.Absorb)
		s.position = s.walker.Start()
	default:
		s.Kind = KindTurtle
		s.turtle = engine.NewTurtle()
		s.turtleState = s.turtle.Start()
		s.position = s.turtleState.Position
		s.seen = map[engine.Coordinate]struct{}{s.position: {}}
	}
	return s
}
