package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/platformkit/input"
)

// Binding maps an action to keys and standard gamepad buttons.
type Binding struct {
	Keys    []ebiten.Key
	Buttons []ebiten.StandardGamepadButton
}

func DefaultBindings() map[input.Action]Binding {
	return map[input.Action]Binding{
		input.ActionLeft: {
			Keys:    []ebiten.Key{ebiten.KeyA, ebiten.KeyArrowLeft},
			Buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonLeftLeft},
		},
		input.ActionRight: {
			Keys:    []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight},
			Buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonLeftRight},
		},
		input.ActionJump: {
			Keys:    []ebiten.Key{ebiten.KeySpace, ebiten.KeyW, ebiten.KeyArrowUp},
			Buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonRightBottom},
		},
		input.ActionDown: {
			Keys:    []ebiten.Key{ebiten.KeyS, ebiten.KeyArrowDown},
			Buttons: []ebiten.StandardGamepadButton{ebiten.StandardGamepadButtonLeftBottom},
		},
	}
}

// EbitenSource is an input.Source reading the keyboard and the first gamepad.
type EbitenSource struct {
	bindings map[input.Action]Binding
}

func NewEbitenSource(bindings map[input.Action]Binding) *EbitenSource {
	return &EbitenSource{bindings: bindings}
}

func (s *EbitenSource) Pressed(a input.Action) bool {
	b := s.bindings[a]
	for _, k := range b.Keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	if id, ok := gamepad(); ok {
		for _, btn := range b.Buttons {
			if ebiten.IsStandardGamepadButtonPressed(id, btn) {
				return true
			}
		}
	}
	return false
}

func (s *EbitenSource) JustPressed(a input.Action) bool {
	b := s.bindings[a]
	for _, k := range b.Keys {
		if inpututil.IsKeyJustPressed(k) {
			return true
		}
	}
	if id, ok := gamepad(); ok {
		for _, btn := range b.Buttons {
			if inpututil.IsStandardGamepadButtonJustPressed(id, btn) {
				return true
			}
		}
	}
	return false
}

// JustReleased only reports a release once no other binding of a is held.
func (s *EbitenSource) JustReleased(a input.Action) bool {
	if s.Pressed(a) {
		return false
	}
	b := s.bindings[a]
	for _, k := range b.Keys {
		if inpututil.IsKeyJustReleased(k) {
			return true
		}
	}
	if id, ok := gamepad(); ok {
		for _, btn := range b.Buttons {
			if inpututil.IsStandardGamepadButtonJustReleased(id, btn) {
				return true
			}
		}
	}
	return false
}

func gamepad() (ebiten.GamepadID, bool) {
	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 || !ebiten.IsStandardGamepadLayoutAvailable(ids[0]) {
		return 0, false
	}
	return ids[0], true
}
