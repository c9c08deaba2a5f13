package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/gridwalk/nav/engine"
)

// ApplyTurtle advances a turtle session by one instruction
func (s *Session) ApplyTurtle(in engine.RelativeInstruction) (*ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkBudget(in.Distance); err != nil {
		return nil, err
	}

	from := s.turtleState.Position
	visited := make([]engine.Coordinate, 0, in.Distance)

	state, _, err := s.turtle.Apply(s.turtleState, in, func(c engine.Coordinate) bool {
		visited = append(visited, c)
		if _, ok := s.seen[c]; ok && s.firstRevisit == nil {
			revisit := c
			s.firstRevisit = &revisit
		}
		s.seen[c] = struct{}{}
		return true
	})
	if err != nil {
		return nil, err
	}

	s.turtleState = state
	s.position = state.Position
	s.instructions++
	s.steps += len(visited)

	return &ApplyResult{
		SessionID:   s.ID,
		Instruction: in.Rotation.String() + strconv.Itoa(in.Distance),
		From:        from,
		To:          state.Position,
		Heading:     headingPtr(state.Heading),
		Visited:     visited,
		Session:     s.infoLocked(),
	}, nil
}

// ApplyKeypad advances a keypad session by one line of directions
func (s *Session) ApplyKeypad(in engine.AbsoluteInstruction) (*ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkBudget(len(in)); err != nil {
		return nil, err
	}

	from := s.position
	pos := from
	visited := make([]engine.Coordinate, 0, len(in))
	absorbed := 0

	for _, d := range in {
		if !s.walker.CanMove(pos, d) {
			absorbed++
		}
		next, err := s.walker.Next(pos, engine.AbsoluteInstruction{d})
		if err != nil {
			return nil, err
		}
		pos = next
		visited = append(visited, pos)
	}

	label, _ := s.Keypad.Label(pos)
	s.position = pos
	s.instructions++
	s.steps += len(in)
	s.presses = append(s.presses, label)

	return &ApplyResult{
		SessionID:   s.ID,
		Instruction: in.String(),
		From:        from,
		To:          pos,
		Visited:     visited,
		Absorbed:    absorbed,
		Label:       label,
		Session:     s.infoLocked(),
	}, nil
}

// checkBudget rejects an instruction that would take the session past
// MaxSessionSteps. Callers hold mu.
func (s *Session) checkBudget(steps int) error {
	if steps > MaxSessionSteps-s.steps {
		return fmt.Errorf("%w: session %s has walked %d of %d steps", ErrWalkTooLong, s.ID, s.steps, MaxSessionSteps)
	}
	return nil
}

// Info returns a snapshot of the session
func (s *Session) Info() *SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked()
}

func (s *Session) infoLocked() *SessionInfo {
	info := &SessionInfo{
		ID:             s.ID,
		Kind:           s.Kind,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
		Position:       s.position,
		Instructions:   s.instructions,
		Steps:          s.steps,
		Distance:       engine.Manhattan(s.position),
	}

	switch s.Kind {
	case KindKeypad:
		info.Keypad = s.Keypad.Name()
		info.Label, _ = s.Keypad.Label(s.position)
		info.Code = strings.Join(s.presses, "")
	default:
		info.Heading = headingPtr(s.turtleState.Heading)
		if s.firstRevisit != nil {
			revisit := *s.firstRevisit
			distance := engine.Manhattan(revisit)
			info.FirstRevisit = &revisit
			info.RevisitDistance = &distance
		}
	}
	return info
}

func headingPtr(h engine.Heading) *engine.Heading {
	return &h
}

// Touch records an access at t
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastAccessedAt = t
}

// LastAccessed returns the time of the most recent access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastAccessedAt
}
