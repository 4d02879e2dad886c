package gsm

import (
	"errors"
	"fmt"
	"log"
)

// DefaultMaxFlowHops bounds the flow transitions taken in one Resolve.
const DefaultMaxFlowHops = 16

// ErrFlowCycle is returned by Resolve when a transition led back to a flow
// already visited this tick, or when the hop limit was reached.
var ErrFlowCycle = errors.New("flow cycle")

// Machine resolves flows into a current behavior, descriptor and leaf state
// once per tick and forwards the lifecycle hooks to them.
type Machine struct {
	// Begin is checked before the current flow every tick.
	Begin *Flow

	// MaxFlowHops limits flow transitions per tick. Zero means DefaultMaxFlowHops.
	MaxFlowHops int

	defaultDesc  *Descriptor
	defaultState State

	curFlow, prevFlow   *Flow
	curBvr, prevBvr     *Behavior
	curDesc, prevDesc   *Descriptor
	curState, prevState State

	scope         *Scope
	lateEnterDone bool

	visited map[*Flow]struct{}
	hops    int
	aborted bool
	err     error
}

// NewMachine returns an initialised machine.
func NewMachine(start *Flow, defaultDesc *Descriptor, defaultState State) *Machine {
	m := &Machine{}
	m.Init(start, defaultDesc, defaultState)
	return m
}

// Init sets the starting flow and the fallback descriptor and state. The
// fallback becomes current immediately; Start enters it.
func (m *Machine) Init(start *Flow, defaultDesc *Descriptor, defaultState State) {
	if m == nil {
		return
	}
	if start == nil {
		log.Printf("GSM: machine initialised without a starting flow")
	}
	if defaultState == nil {
		log.Printf("GSM: machine initialised without a default state")
	}
	if m.Begin == nil {
		m.Begin = NewFlow("begin")
	}
	m.curFlow = start
	m.defaultDesc, m.curDesc = defaultDesc, defaultDesc
	m.defaultState, m.curState = defaultState, defaultState
	m.scope = &Scope{}
	m.visited = make(map[*Flow]struct{})
}

func (m *Machine) CurrentFlow() *Flow {
	if m == nil {
		return nil
	}
	return m.curFlow
}

func (m *Machine) PreviousFlow() *Flow {
	if m == nil {
		return nil
	}
	return m.prevFlow
}

func (m *Machine) CurrentBehavior() *Behavior {
	if m == nil {
		return nil
	}
	return m.curBvr
}

func (m *Machine) PreviousBehavior() *Behavior {
	if m == nil {
		return nil
	}
	return m.prevBvr
}

func (m *Machine) CurrentDescriptor() *Descriptor {
	if m == nil {
		return nil
	}
	return m.curDesc
}

func (m *Machine) PreviousDescriptor() *Descriptor {
	if m == nil {
		return nil
	}
	return m.prevDesc
}

func (m *Machine) CurrentState() State {
	if m == nil {
		return nil
	}
	return m.curState
}

func (m *Machine) PreviousState() State {
	if m == nil {
		return nil
	}
	return m.prevState
}

// Hops returns the number of flow transitions taken by the last Resolve.
func (m *Machine) Hops() int {
	if m == nil {
		return 0
	}
	return m.hops
}

// Start enters the default descriptor and state.
func (m *Machine) Start() {
	if m == nil {
		return
	}
	m.curDesc.enter()
	m.enterState(m.curState)
}

// Update resolves the flows and runs the per-frame hooks.
func (m *Machine) Update() error {
	if m == nil {
		return nil
	}
	err := m.Resolve()
	m.curDesc.update()
	if u, ok := m.curState.(Updater); ok {
		u.Update()
	}
	return err
}

// LateUpdate fires the late enter hook of a newly entered state once, then
// the late update hooks.
func (m *Machine) LateUpdate() {
	if m == nil {
		return
	}
	if !m.lateEnterDone {
		m.lateEnterDone = true
		if le, ok := m.curState.(LateEnterer); ok {
			le.LateEnter()
		}
	}
	m.curDesc.lateUpdate()
	if u, ok := m.curState.(LateUpdater); ok {
		u.LateUpdate()
	}
}

func (m *Machine) FixedUpdate() {
	if m == nil {
		return
	}
	m.curDesc.fixedUpdate()
	if u, ok := m.curState.(FixedUpdater); ok {
		u.FixedUpdate()
	}
}

// Resolve picks this tick's behavior and state: the begin flow first, then
// the current flow, then the default state. A finished waiting behavior only
// leaves through its transitions when the current flow selects it again. Every flow is visited at most once per tick. A
// transition back to a visited flow is skipped and reported as ErrFlowCycle;
// exceeding MaxFlowHops stops resolution and keeps the current state.
func (m *Machine) Resolve() error {
	if m == nil {
		return nil
	}
	if m.visited == nil {
		m.visited = make(map[*Flow]struct{})
	}
	clear(m.visited)
	if m.curFlow != nil {
		m.visited[m.curFlow] = struct{}{}
	}
	m.hops = 0
	m.aborted = false
	m.err = nil

	if m.processFlow(m.Begin) {
		return m.err
	}
	if m.processFlow(m.curFlow) {
		return m.err
	}
	if m.aborted {
		return m.err
	}
	m.changeState(m.defaultDesc, m.defaultState)
	return m.err
}

func (m *Machine) maxHops() int {
	if m.MaxFlowHops <= 0 {
		return DefaultMaxFlowHops
	}
	return m.MaxFlowHops
}

func (m *Machine) processFlow(f *Flow) bool {
	if f == nil || m.aborted {
		return false
	}
	n, waiting := m.selectNode(f)
	if waiting {
		return m.processBehavior(m.curBvr)
	}
	if n == nil {
		return false
	}
	if n.bvr != nil {
		m.changeBehavior(n.bvr)
		return m.processBehavior(m.curBvr)
	}
	return m.changeFlow(n.flow)
}

// selectNode returns the first eligible rule of f whose condition holds.
// waiting is true when the active behavior holds the machine and no force
// rule fired.
func (m *Machine) selectNode(f *Flow) (n *node, waiting bool) {
	holding := m.curBvr != nil && m.curBvr.wait && m.isRunning(m.curBvr)
	for i := range f.nodes {
		n := &f.nodes[i]
		if holding && !n.force {
			continue
		}
		if !n.check() {
			continue
		}
		if n.flow != nil && m.seen(n.flow) {
			m.blocked(f, n.flow)
			continue
		}
		return n, false
	}
	return nil, holding
}

func (m *Machine) isRunning(b *Behavior) bool {
	_, _, ok := b.current(m.curState)
	return ok
}

func (m *Machine) processBehavior(b *Behavior) bool {
	if b == nil {
		return false
	}
	desc, state, ok := b.current(m.curState)
	if ok {
		m.changeState(desc, state)
		return true
	}
	_, resolved := m.leave(b)
	return resolved
}

// leave follows the first transition of the finished behavior b whose
// condition holds.
func (m *Machine) leave(b *Behavior) (took, resolved bool) {
	for _, t := range b.transitions {
		if t.flow == nil || !(t.cond == nil || t.cond()) {
			continue
		}
		if m.seen(t.flow) {
			m.blocked(m.curFlow, t.flow)
			continue
		}
		return true, m.changeFlow(t.flow)
	}
	return false, false
}

func (m *Machine) changeBehavior(b *Behavior) {
	if m.curBvr.Same(b) {
		return
	}
	m.prevBvr, m.curBvr = m.curBvr, b
	b.enter()
}

func (m *Machine) changeFlow(f *Flow) bool {
	if m.hops >= m.maxHops() {
		m.aborted = true
		m.fail(fmt.Errorf("gsm: more than %d flow hops, stopped at %s: %w", m.maxHops(), m.curFlow.Name(), ErrFlowCycle))
		return false
	}
	m.hops++
	m.visited[f] = struct{}{}
	m.prevFlow, m.curFlow = m.curFlow, f
	return m.processFlow(f)
}

func (m *Machine) seen(f *Flow) bool {
	_, ok := m.visited[f]
	return ok
}

func (m *Machine) blocked(from, to *Flow) {
	m.fail(fmt.Errorf("gsm: flow %s back to %s: %w", from.Name(), to.Name(), ErrFlowCycle))
}

func (m *Machine) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *Machine) changeState(desc *Descriptor, state State) {
	oldDesc := m.curDesc
	descChanged := desc != oldDesc
	if descChanged {
		m.prevDesc, m.curDesc = oldDesc, desc
		oldDesc.exit()
		desc.enter()
	}

	restart := descChanged && !desc.resume()
	if state == m.curState && !restart {
		return
	}
	m.lateEnterDone = false
	m.prevState, m.curState = m.curState, state
	m.exitState(m.prevState)
	m.enterState(state)
}

func (m *Machine) enterState(s State) {
	if s == nil {
		return
	}
	s.Enter(m.scope)
}

func (m *Machine) exitState(s State) {
	if s == nil {
		return
	}
	s.Exit()
	m.scope.unwind()
}
