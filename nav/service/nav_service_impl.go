package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
	"github.com/wricardo/mcp-training/gridwalk/nav/input"
)

var (
	ErrKeypadNotFound  = errors.New("keypad not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownKind     = errors.New("unknown session kind")
	ErrWalkTooLong     = errors.New("walk too long")
)

// navServiceImpl implements the NavService interface
type navServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewNavService creates a new navigation service instance
func NewNavService(sessions SessionManager, configs ConfigManager) NavService {
	return &navServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// WalkTurtle parses a turn list, walks it from the origin and reports the
// final distance and the first revisited coordinate.
func (s *navServiceImpl) WalkTurtle(ctx context.Context, instructions string) (*TurtleResult, error) {
	parsed, err := input.ParseTurns(instructions)
	if err != nil {
		return nil, err
	}

	steps := 0
	for _, in := range parsed {
		// Compare against the remaining budget so the sum cannot overflow
		if in.Distance > MaxTraceSteps-steps {
			return nil, fmt.Errorf("%w: more than %d steps", ErrWalkTooLong, MaxTraceSteps)
		}
		steps += in.Distance
	}

	final, trace, err := engine.NewTurtle().Walk(parsed)
	if err != nil {
		return nil, err
	}

	result := &TurtleResult{
		Instructions: len(parsed),
		Steps:        steps,
		Final:        final,
		Distance:     engine.Manhattan(final.Position),
	}

	if revisit, ok := engine.FirstDuplicate(trace); ok {
		distance := engine.Manhattan(revisit)
		result.FirstRevisit = &revisit
		result.RevisitDistance = &distance
	}

	return result, nil
}

// KeypadCode walks keypad lines over the named layout and renders the code
func (s *navServiceImpl) KeypadCode(ctx context.Context, keypadName, instructions string) (*KeypadResult, error) {
	keypad, err := s.loadKeypad(keypadName)
	if err != nil {
		return nil, err
	}

	lines, err := input.ParseKeypadLines(instructions)
	if err != nil {
		return nil, err
	}

	trace := engine.WalkBounded(keypad.Topology(), lines)
	code, err := keypad.Render(trace)
	if err != nil {
		return nil, fmt.Errorf("failed to render code: %w", err)
	}

	presses := make([]ButtonPress, len(trace))
	for i, c := range trace {
		label, _ := keypad.Label(c)
		presses[i] = ButtonPress{
			Index:       i + 1,
			Instruction: lines[i].String(),
			Position:    c,
			Label:       label,
		}
	}

	return &KeypadResult{
		Keypad:  keypad.Name(),
		Code:    code,
		Presses: presses,
	}, nil
}

// CreateSession creates a new walk session
func (s *navServiceImpl) CreateSession(ctx context.Context, kind SessionKind, keypadName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == "" {
		kind = KindTurtle
	}

	var keypad *engine.Keypad
	switch kind {
	case KindTurtle:
	case KindKeypad:
		var err error
		keypad, err = s.loadKeypad(keypadName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q (use %q or %q)", ErrUnknownKind, kind, KindTurtle, KindKeypad)
	}

	// Let session manager generate the ID
	session, err := s.sessions.Create("", kind, keypad)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session.Info(), nil
}

// GetSession retrieves session information
func (s *navServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return session.Info(), nil
}

// ListSessions returns all active sessions
func (s *navServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, session.Info())
	}
	return infos, nil
}

// DeleteSession removes a session
func (s *navServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// Apply advances a session by one instruction. Turtle sessions take a turn
// token such as "R4"; keypad sessions take a line such as "ULL" or a list of
// direction words such as "up, left, left".
func (s *navServiceImpl) Apply(ctx context.Context, sessionID, instruction string) (*ApplyResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	switch session.Kind {
	case KindKeypad:
		line, err := parseKeypadInstruction(instruction)
		if err != nil {
			return nil, err
		}
		return session.ApplyKeypad(line)

	default:
		turn, err := input.ParseTurn(instruction)
		if err != nil {
			return nil, err
		}
		if turn.Distance > MaxApplyDistance {
			return nil, fmt.Errorf("%w: distance %d exceeds %d", ErrWalkTooLong, turn.Distance, MaxApplyDistance)
		}
		return session.ApplyTurtle(turn)
	}
}

// ListKeypads returns all available keypad layouts
func (s *navServiceImpl) ListKeypads(ctx context.Context) ([]*KeypadInfo, error) {
	return s.configs.ListKeypads()
}

// GetKeypad returns a single keypad layout
func (s *navServiceImpl) GetKeypad(ctx context.Context, name string) (*KeypadInfo, error) {
	config, err := s.configs.LoadKeypadConfig(name)
	if err != nil {
		return nil, err
	}
	keypad, err := s.configs.LoadKeypad(name)
	if err != nil {
		return nil, err
	}
	return NewKeypadInfo(name, config, keypad), nil
}

// SaveKeypad stores a keypad layout under name
func (s *navServiceImpl) SaveKeypad(ctx context.Context, name string, config *engine.KeypadConfig) error {
	if name == "" {
		return fmt.Errorf("keypad name is required")
	}
	return s.configs.SaveKeypad(name, config)
}

// loadKeypad resolves a keypad by name, falling back to the default layout
func (s *navServiceImpl) loadKeypad(name string) (*engine.Keypad, error) {
	if name == "" {
		return s.configs.GetDefault(), nil
	}

	keypad, err := s.configs.LoadKeypad(name)
	if err != nil {
		if errors.Is(err, ErrKeypadNotFound) {
			if available, listErr := s.configs.ListKeypads(); listErr == nil && len(available) > 0 {
				var ids []string
				for _, info := range available {
					ids = append(ids, info.KeypadID)
				}
				return nil, fmt.Errorf("keypad '%s': %w. Available keypads: %v", name, err, ids)
			}
		}
		return nil, fmt.Errorf("failed to load keypad %s: %w", name, err)
	}
	return keypad, nil
}

// NewKeypadInfo summarizes a keypad layout for listings
func NewKeypadInfo(id string, config *engine.KeypadConfig, keypad *engine.Keypad) *KeypadInfo {
	return &KeypadInfo{
		KeypadID:    id,
		Name:        config.Name,
		Description: config.Description,
		Layout:      keypad.Layout(),
		Start:       keypad.StartLabel(),
		Buttons:     keypad.Topology().Len(),
	}
}

func parseKeypadInstruction(instruction string) (engine.AbsoluteInstruction, error) {
	fields := strings.FieldsFunc(instruction, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(fields) <= 1 && strings.Trim(instruction, "UDLR \t") == "" {
		return input.ParseDirections(instruction)
	}

	line := make(engine.AbsoluteInstruction, 0, len(fields))
	for _, field := range fields {
		d, err := input.ParseDirectionWord(field)
		if err != nil {
			return nil, err
		}
		line = append(line, d)
	}
	return line, nil
}
