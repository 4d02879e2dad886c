package gsm

import "fmt"

// State is a leaf of the machine. Implementations must be comparable,
// usually pointers, since the machine tracks states by identity.
type State interface {
	Enter(scope *Scope)
	Exit()
}

type LateEnterer interface {
	LateEnter()
}

type Updater interface {
	Update()
}

type LateUpdater interface {
	LateUpdate()
}

type FixedUpdater interface {
	FixedUpdate()
}

type Namer interface {
	Name() string
}

// StateName returns a printable name for s.
func StateName(s State) string {
	if s == nil {
		return "<nil>"
	}
	if n, ok := s.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}

// Scope collects cleanups registered while a state is active. They run in
// reverse order right after the state's Exit.
type Scope struct {
	cleanups []func()
}

// Defer registers fn to run when the state exits.
func (s *Scope) Defer(fn func()) {
	if s == nil || fn == nil {
		return
	}
	s.cleanups = append(s.cleanups, fn)
}

// Len returns the number of pending cleanups.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cleanups)
}

func (s *Scope) unwind() {
	if s == nil {
		return
	}
	for len(s.cleanups) > 0 {
		last := len(s.cleanups) - 1
		fn := s.cleanups[last]
		s.cleanups = s.cleanups[:last]
		fn()
	}
}

// Hooks are the optional callbacks of a FuncState.
type Hooks struct {
	Enter       func(scope *Scope)
	Exit        func()
	LateEnter   func()
	Update      func()
	LateUpdate  func()
	FixedUpdate func()
}

// FuncState is a State assembled from closures.
type FuncState struct {
	name  string
	hooks Hooks
}

func NewState(name string, hooks Hooks) *FuncState {
	return &FuncState{name: name, hooks: hooks}
}

func (s *FuncState) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

func (s *FuncState) Enter(scope *Scope) {
	if s != nil && s.hooks.Enter != nil {
		s.hooks.Enter(scope)
	}
}

func (s *FuncState) Exit() {
	if s != nil && s.hooks.Exit != nil {
		s.hooks.Exit()
	}
}

func (s *FuncState) LateEnter() {
	if s != nil && s.hooks.LateEnter != nil {
		s.hooks.LateEnter()
	}
}

func (s *FuncState) Update() {
	if s != nil && s.hooks.Update != nil {
		s.hooks.Update()
	}
}

func (s *FuncState) LateUpdate() {
	if s != nil && s.hooks.LateUpdate != nil {
		s.hooks.LateUpdate()
	}
}

func (s *FuncState) FixedUpdate() {
	if s != nil && s.hooks.FixedUpdate != nil {
		s.hooks.FixedUpdate()
	}
}
