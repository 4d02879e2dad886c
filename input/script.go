package input

import "sort"

// Step holds a set of actions from frame From (inclusive) to To (exclusive).
type Step struct {
	From    int      `yaml:"from"`
	To      int      `yaml:"to"`
	Actions []Action `yaml:"actions"`
}

// Script replays a timeline of held actions, one frame per Next call.
type Script struct {
	*Snapshot
	steps []Step
	frame int
}

// NewScript returns a Script over steps.
func NewScript(steps []Step) *Script {
	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })
	return &Script{Snapshot: NewSnapshot(), steps: sorted}
}

// Next advances one frame.
func (s *Script) Next() {
	if s == nil {
		return
	}
	var held []Action
	for _, st := range s.steps {
		if s.frame >= st.From && s.frame < st.To {
			held = append(held, st.Actions...)
		}
	}
	s.Advance(held...)
	s.frame++
}

// Frame returns how many frames have been played.
func (s *Script) Frame() int {
	if s == nil {
		return 0
	}
	return s.frame
}

// Done reports whether every step has finished.
func (s *Script) Done() bool {
	if s == nil {
		return true
	}
	for _, st := range s.steps {
		if s.frame < st.To {
			return false
		}
	}
	return true
}
