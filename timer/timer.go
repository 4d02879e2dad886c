package timer

import "math"

// Mode selects which queue of a Manager ticks a timer.
type Mode uint8

const (
	ModeUpdate Mode = iota
	ModeLateUpdate
	ModeFixedUpdate
	// ModeManual timers are ticked by their owner.
	ModeManual
)

func (m Mode) String() string {
	switch m {
	case ModeUpdate:
		return "update"
	case ModeLateUpdate:
		return "late_update"
	case ModeFixedUpdate:
		return "fixed_update"
	case ModeManual:
		return "manual"
	}
	return "unknown"
}

// Timer counts up to EndTime, firing its callbacks as it goes.
type Timer struct {
	EndTime float64

	manager *Manager
	mode    Mode
	cur     float64
	active  bool
	ended   bool
	loop    bool

	onStart func()
	onTick  func()
	onEnd   func()
}

// NewTimer returns an active timer that its owner ticks by hand.
func NewTimer(endTime float64) *Timer {
	return &Timer{mode: ModeManual, EndTime: endTime, active: true}
}

func (t *Timer) OnStart(fn func()) *Timer {
	if t != nil {
		t.onStart = fn
	}
	return t
}

func (t *Timer) OnTick(fn func()) *Timer {
	if t != nil {
		t.onTick = fn
	}
	return t
}

func (t *Timer) OnEnd(fn func()) *Timer {
	if t != nil {
		t.onEnd = fn
	}
	return t
}

// Loop makes the timer restart from zero after it ends.
func (t *Timer) Loop(loop bool) *Timer {
	if t != nil {
		t.loop = loop
	}
	return t
}

func (t *Timer) Mode() Mode {
	if t == nil {
		return ModeManual
	}
	return t.mode
}

// SetMode moves the timer to another queue.
func (t *Timer) SetMode(mode Mode) *Timer {
	if t == nil {
		return nil
	}
	if t.active {
		t.manager.remove(t, t.mode)
		t.manager.add(t, mode)
	}
	t.mode = mode
	return t
}

// SetActive pauses or resumes the timer.
func (t *Timer) SetActive(active bool) *Timer {
	if t == nil {
		return nil
	}
	t.active = active
	if active {
		t.manager.add(t, t.mode)
	} else {
		t.manager.remove(t, t.mode)
	}
	return t
}

// Release takes the timer off its queue for good.
func (t *Timer) Release() {
	if t == nil {
		return
	}
	t.active = false
	t.manager.remove(t, t.mode)
}

func (t *Timer) IsActive() bool { return t != nil && t.active }
func (t *Timer) IsEnded() bool { return t != nil && t.ended }
func (t *Timer) IsZero() bool { return t != nil && t.cur == 0 }

func (t *Timer) CurTime() float64 {
	if t == nil {
		return 0
	}
	return t.cur
}

// SetCurTime moves the clock, clamped to [0, EndTime].
func (t *Timer) SetCurTime(v float64) *Timer {
	if t == nil {
		return nil
	}
	t.cur = math.Max(0, math.Min(v, t.EndTime))
	t.ended = t.cur >= t.EndTime
	return t
}

func (t *Timer) Reset() *Timer {
	if t == nil {
		return nil
	}
	t.cur = 0
	t.ended = false
	return t
}

func (t *Timer) ToEnd() *Timer {
	if t == nil {
		return nil
	}
	t.cur = t.EndTime
	t.ended = true
	return t
}

// Tick advances the clock by dt.
func (t *Timer) Tick(dt float64) {
	if t == nil || !t.active || t.ended {
		return
	}
	if t.cur == 0 && t.onStart != nil {
		t.onStart()
	}
	t.cur += dt
	if t.onTick != nil {
		t.onTick()
	}
	if t.cur < t.EndTime {
		return
	}
	t.cur = t.EndTime
	t.ended = true
	if t.onEnd != nil {
		t.onEnd()
	}
	if t.loop && t.ended {
		t.Reset()
	}
}
