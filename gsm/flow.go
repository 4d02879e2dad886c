package gsm

import "log"

// Always is a condition that always holds.
func Always() bool { return true }

type node struct {
	cond  func() bool
	force bool
	bvr   *Behavior
	flow  *Flow
}

func (n *node) check() bool {
	return n.cond == nil || n.cond()
}

// Flow is an ordered list of rules picking the next behavior or flow. The
// first rule whose condition holds wins. Flows may point at each other.
type Flow struct {
	name  string
	nodes []node
}

func NewFlow(name string) *Flow {
	return &Flow{name: name}
}

func (f *Flow) Name() string {
	if f == nil {
		return "<nil>"
	}
	return f.name
}

// Len returns the number of rules.
func (f *Flow) Len() int {
	if f == nil {
		return 0
	}
	return len(f.nodes)
}

// Do activates bvr when cond holds.
func (f *Flow) Do(cond func() bool, bvr *Behavior) *Flow {
	return f.add(node{cond: cond, bvr: bvr})
}

// ForceDo is Do, also checked while a waiting behavior is running.
func (f *Flow) ForceDo(cond func() bool, bvr *Behavior) *Flow {
	return f.add(node{cond: cond, force: true, bvr: bvr})
}

// To moves to flow when cond holds.
func (f *Flow) To(cond func() bool, flow *Flow) *Flow {
	return f.add(node{cond: cond, flow: flow})
}

// ForceTo is To, also checked while a waiting behavior is running.
func (f *Flow) ForceTo(cond func() bool, flow *Flow) *Flow {
	return f.add(node{cond: cond, force: true, flow: flow})
}

func (f *Flow) add(n node) *Flow {
	if f == nil {
		return nil
	}
	if n.bvr == nil && n.flow == nil {
		log.Printf("GSM: flow %s rule %d has no target", f.name, len(f.nodes))
		return f
	}
	f.nodes = append(f.nodes, n)
	return f
}
