package timer

// Manager owns the update, late update and fixed update queues. The host
// loop ticks each queue in its own phase.
type Manager struct {
	queues [3][]*Timer
	buf    []*Timer
}

func NewManager() *Manager {
	return &Manager{}
}

// New creates an active timer on the queue for mode.
func (m *Manager) New(mode Mode, endTime float64) *Timer {
	t := &Timer{manager: m, mode: mode, EndTime: endTime, active: true}
	m.add(t, mode)
	return t
}

func (m *Manager) Update(dt float64) { m.tick(ModeUpdate, dt) }
func (m *Manager) LateUpdate(dt float64) { m.tick(ModeLateUpdate, dt) }
func (m *Manager) FixedUpdate(dt float64) { m.tick(ModeFixedUpdate, dt) }

// Len returns the number of timers queued for mode.
func (m *Manager) Len(mode Mode) int {
	if m == nil || mode >= ModeManual {
		return 0
	}
	return len(m.queues[mode])
}

func (m *Manager) tick(mode Mode, dt float64) {
	if m == nil || len(m.queues[mode]) == 0 {
		return
	}
	// callbacks may add or remove timers
	m.buf = append(m.buf[:0], m.queues[mode]...)
	for _, t := range m.buf {
		t.Tick(dt)
	}
	clear(m.buf)
}

func (m *Manager) add(t *Timer, mode Mode) {
	if m == nil || t == nil || mode >= ModeManual {
		return
	}
	for _, other := range m.queues[mode] {
		if other == t {
			return
		}
	}
	m.queues[mode] = append(m.queues[mode], t)
}

func (m *Manager) remove(t *Timer, mode Mode) {
	if m == nil || t == nil || mode >= ModeManual {
		return
	}
	q := m.queues[mode]
	for i, other := range q {
		if other == t {
			m.queues[mode] = append(q[:i], q[i+1:]...)
			return
		}
	}
}
