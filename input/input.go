package input

// Action names a logical button the controller reads.
type Action string

const (
	ActionLeft  Action = "left"
	ActionRight Action = "right"
	ActionJump  Action = "jump"
	ActionDown  Action = "down"
)

// Source reports the state of actions for the current frame.
type Source interface {
	Pressed(a Action) bool
	JustPressed(a Action) bool
	JustReleased(a Action) bool
}

// Snapshot is a Source built from the held set of this frame and the previous one.
type Snapshot struct {
	held map[Action]bool
	prev map[Action]bool
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{held: map[Action]bool{}, prev: map[Action]bool{}}
}

// Advance moves to the next frame with held as the pressed set.
func (s *Snapshot) Advance(held ...Action) {
	if s == nil {
		return
	}
	s.prev, s.held = s.held, s.prev
	for k := range s.held {
		delete(s.held, k)
	}
	for _, a := range held {
		s.held[a] = true
	}
}

func (s *Snapshot) Pressed(a Action) bool {
	if s == nil {
		return false
	}
	return s.held[a]
}

func (s *Snapshot) JustPressed(a Action) bool {
	if s == nil {
		return false
	}
	return s.held[a] && !s.prev[a]
}

func (s *Snapshot) JustReleased(a Action) bool {
	if s == nil {
		return false
	}
	return !s.held[a] && s.prev[a]
}

// Held returns the actions pressed this frame.
func (s *Snapshot) Held() []Action {
	if s == nil {
		return nil
	}
	out := make([]Action, 0, len(s.held))
	for a := range s.held {
		out = append(out, a)
	}
	return out
}
