package gsm

import (
	"log"

	"github.com/google/uuid"
)

type behaviorKind uint8

const (
	kindSingle behaviorKind = iota
	kindSequence
	kindRepeat
	kindChoice
)

func (k behaviorKind) String() string {
	switch k {
	case kindSingle:
		return "single"
	case kindSequence:
		return "sequence"
	case kindRepeat:
		return "repeat"
	case kindChoice:
		return "choice"
	}
	return "unknown"
}

// Step is one leaf state of a behavior with the predicate that finishes it.
// A nil IsDone never finishes.
type Step struct {
	Descriptor *Descriptor
	State      State
	IsDone     func() bool
}

func (s Step) done() bool {
	return s.IsDone != nil && s.IsDone()
}

// Case is one entry of a Choice: while State is current, Next picks the
// state to run. A nil result finishes the choice.
type Case struct {
	State      State
	Descriptor *Descriptor
	Next       func() State
}

type transition struct {
	cond func() bool
	flow *Flow
}

// Behavior selects which leaf state runs while it is active. Build one with
// Single, Sequence, Repeat or Choice. Wait and To return copies that keep
// the identity of the original.
type Behavior struct {
	id   uuid.UUID
	kind behaviorKind
	name string

	steps          []Step
	repeat         int
	restartOnEnter bool
	cases          map[State]Case
	defaultCase    State

	wait        bool
	transitions []transition

	cursor int
}

// Single runs state until isDone reports true.
func Single(desc *Descriptor, state State, isDone func() bool) *Behavior {
	if state == nil {
		log.Printf("GSM: single behavior built with nil state")
	}
	return &Behavior{
		id:    uuid.New(),
		kind:  kindSingle,
		steps: []Step{{Descriptor: desc, State: state, IsDone: isDone}},
	}
}

// Sequence runs steps in order, moving on whenever the current one is done.
// With restartOnEnter the sequence starts over each time it becomes active;
// otherwise it resumes unless it had already finished.
func Sequence(restartOnEnter bool, steps ...Step) *Behavior {
	for i, s := range steps {
		if s.State == nil {
			log.Printf("GSM: sequence step %d has nil state", i)
		}
	}
	own := make([]Step, len(steps))
	copy(own, steps)
	return &Behavior{
		id:             uuid.New(),
		kind:           kindSequence,
		steps:          own,
		restartOnEnter: restartOnEnter,
	}
}

// Repeat runs state count times, each run ending when isDone reports true.
func Repeat(restartOnEnter bool, count int, desc *Descriptor, state State, isDone func() bool) *Behavior {
	if state == nil {
		log.Printf("GSM: repeat behavior built with nil state")
	}
	if count < 0 {
		count = 0
	}
	return &Behavior{
		id:             uuid.New(),
		kind:           kindRepeat,
		steps:          []Step{{Descriptor: desc, State: state, IsDone: isDone}},
		repeat:         count,
		restartOnEnter: restartOnEnter,
	}
}

// Choice asks the case of the current state for the next one, falling back to
// def when the current state has no case.
func Choice(def Case, cases ...Case) *Behavior {
	b := &Behavior{
		id:    uuid.New(),
		kind:  kindChoice,
		cases: make(map[State]Case, len(cases)+1),
	}
	if def.State == nil {
		log.Printf("GSM: choice behavior built with nil default state")
		return b
	}
	b.defaultCase = def.State
	b.cases[def.State] = def
	for i, c := range cases {
		if c.State == nil {
			log.Printf("GSM: choice case %d has nil state", i)
			continue
		}
		if _, ok := b.cases[c.State]; ok {
			continue
		}
		b.cases[c.State] = c
	}
	return b
}

// Named returns a copy of b labelled name, for logs and traces.
func (b *Behavior) Named(name string) *Behavior {
	if b == nil {
		return nil
	}
	out := b.clone()
	out.name = name
	return out
}

// Wait returns a copy of b that, once active, only yields to force nodes
// until it is done.
func (b *Behavior) Wait() *Behavior {
	if b == nil {
		return nil
	}
	out := b.clone()
	out.wait = true
	return out
}

// To returns a copy of b that moves to flow when it is done and cond holds.
func (b *Behavior) To(cond func() bool, flow *Flow) *Behavior {
	if b == nil {
		return nil
	}
	if flow == nil {
		log.Printf("GSM: behavior %s transition to nil flow", b.Name())
	}
	out := b.clone()
	out.transitions = append(out.transitions, transition{cond: cond, flow: flow})
	return out
}

func (b *Behavior) ID() uuid.UUID {
	if b == nil {
		return uuid.Nil
	}
	return b.id
}

func (b *Behavior) Name() string {
	if b == nil {
		return "<nil>"
	}
	if b.name != "" {
		return b.name
	}
	return b.kind.String()
}

func (b *Behavior) IsWait() bool {
	return b != nil && b.wait
}

// Same reports whether b and other were built from the same constructor call.
func (b *Behavior) Same(other *Behavior) bool {
	if b == nil || other == nil {
		return b == nil && other == nil
	}
	return b.id == other.id
}

func (b *Behavior) clone() *Behavior {
	out := *b
	out.steps = append([]Step(nil), b.steps...)
	out.transitions = append([]transition(nil), b.transitions...)
	return &out
}

// enter runs when b becomes the active behavior.
func (b *Behavior) enter() {
	switch b.kind {
	case kindSequence:
		if b.restartOnEnter || b.cursor >= len(b.steps) {
			b.cursor = 0
		}
	case kindRepeat:
		if b.restartOnEnter || b.cursor >= b.repeat {
			b.cursor = 0
		}
	}
}

// current returns the descriptor and state b wants to run, or false when b is done.
func (b *Behavior) current(cur State) (*Descriptor, State, bool) {
	switch b.kind {
	case kindSingle:
		if len(b.steps) == 0 || b.steps[0].done() {
			return nil, nil, false
		}
		return b.steps[0].Descriptor, b.steps[0].State, true
	case kindSequence:
		for b.cursor < len(b.steps) {
			s := b.steps[b.cursor]
			if !s.done() {
				return s.Descriptor, s.State, true
			}
			b.cursor++
		}
		return nil, nil, false
	case kindRepeat:
		if len(b.steps) == 0 {
			return nil, nil, false
		}
		s := b.steps[0]
		for b.cursor < b.repeat {
			if !s.done() {
				return s.Descriptor, s.State, true
			}
			b.cursor++
		}
		return nil, nil, false
	case kindChoice:
		c, ok := b.cases[cur]
		if !ok {
			c, ok = b.cases[b.defaultCase]
		}
		if !ok || c.Next == nil {
			return nil, nil, false
		}
		next := c.Next()
		if next == nil {
			return nil, nil, false
		}
		return b.cases[next].Descriptor, next, true
	}
	return nil, nil, false
}
