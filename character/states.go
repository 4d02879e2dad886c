package character

import (
	"github.com/milk9111/platformkit/gsm"
)

// Leaf state names the flow graphs refer to.
const (
	StateIdle    = "idle"
	StateRun     = "run"
	StateLand    = "land"
	StateJump    = "jump"
	StateAirJump = "air_jump"
	StateFall    = "fall"
	StateSlide   = "slide"
)

type idleState struct{ c *Character }

type runState struct{ c *Character }

type landState struct{ c *Character }

type jumpState struct{ c *Character }

type airJumpState struct{ c *Character }

type fallState struct{ c *Character }

type slideState struct{ c *Character }

func (s idleState) Name() string { return StateIdle }
func (s idleState) Enter(scope *gsm.Scope) { s.c.entered() }
func (s idleState) Exit() {}
func (s idleState) FixedUpdate() { s.c.groundMove() }

func (s runState) Name() string { return StateRun }
func (s runState) Enter(scope *gsm.Scope) { s.c.entered() }
func (s runState) Exit() {}
func (s runState) FixedUpdate() { s.c.groundMove() }

func (s landState) Name() string { return StateLand }

// Enter locks walking until the landing settles.
func (s landState) Enter(scope *gsm.Scope) {
	s.c.entered()
	s.c.Walk.CanWalk.Set(false)
	scope.Defer(func() { s.c.Walk.CanWalk.Set(true) })
}
func (s landState) Exit() {}
func (s landState) FixedUpdate() { s.c.groundMove() }

func (s jumpState) Name() string { return StateJump }
func (s jumpState) Enter(scope *gsm.Scope) {
	s.c.entered()
	s.c.Jump.StartJump()
	s.c.events.Push(Event{Kind: EventJumped})
}
func (s jumpState) Exit() {}
func (s jumpState) Update() {
	s.c.cutJump()
}
func (s jumpState) FixedUpdate() { s.c.jumpMove() }

func (s airJumpState) Name() string { return StateAirJump }
func (s airJumpState) Enter(scope *gsm.Scope) {
	s.c.entered()
	s.c.Jump.StartAirJump()
	s.c.events.Push(Event{Kind: EventAirJumped})
}
func (s airJumpState) Exit() {}
func (s airJumpState) Update() {
	s.c.cutJump()
}
func (s airJumpState) FixedUpdate() { s.c.jumpMove() }

func (s fallState) Name() string { return StateFall }
func (s fallState) Enter(scope *gsm.Scope) { s.c.entered() }
func (s fallState) Exit() {}
func (s fallState) FixedUpdate() { s.c.airMove() }

func (s slideState) Name() string { return StateSlide }

// Enter blocks jumping for as long as the slide runs.
func (s slideState) Enter(scope *gsm.Scope) {
	s.c.entered()
	s.c.Jump.CanJump.Set(false)
	scope.Defer(func() { s.c.Jump.CanJump.Set(true) })
}
func (s slideState) Exit() {}
func (s slideState) FixedUpdate() { s.c.slideMove() }

func (c *Character) buildStates() map[string]gsm.State {
	return map[string]gsm.State{
		StateIdle:    idleState{c},
		StateRun:     runState{c},
		StateLand:    landState{c},
		StateJump:    jumpState{c},
		StateAirJump: airJumpState{c},
		StateFall:    fallState{c},
		StateSlide:   slideState{c},
	}
}

func (c *Character) buildDescriptors() map[string]*gsm.Descriptor {
	return map[string]*gsm.Descriptor{
		"grounded": {
			OnEnter: func() { c.Jump.ResetAirJumpCount() },
		},
		"sliding": {
			OnEnter: func() { c.Walk.CanWalk.Set(false) },
			OnExit:  func() { c.Walk.CanWalk.Set(true) },
		},
	}
}
