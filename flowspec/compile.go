package flowspec

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"

	"github.com/milk9111/platformkit/gsm"
	"github.com/milk9111/platformkit/prefabs"
)

var (
	ErrUnknownState      = errors.New("unknown state")
	ErrUnknownFlow       = errors.New("unknown flow")
	ErrUnknownBehavior   = errors.New("unknown behavior")
	ErrUnknownDescriptor = errors.New("unknown descriptor")
)

// Registry supplies the Go side of a flow graph: leaf states and descriptor
// hooks by name, and the values conditions may read.
type Registry struct {
	States      map[string]gsm.State
	Descriptors map[string]*gsm.Descriptor
	Env         *Env
}

// Graph is a compiled flow graph.
type Graph struct {
	Name              string
	Start             *gsm.Flow
	Begin             *gsm.Flow
	DefaultState      gsm.State
	DefaultDescriptor *gsm.Descriptor
	MaxFlowHops       int

	Flows       map[string]*gsm.Flow
	Behaviors   map[string]*gsm.Behavior
	Descriptors map[string]*gsm.Descriptor

	conditions int
}

// Load reads a flow graph spec through prefabs and compiles it.
func Load(filename string, reg Registry) (*Graph, error) {
	spec, err := prefabs.LoadFlowGraphSpec(filename)
	if err != nil {
		return nil, err
	}
	g, err := Compile(spec, reg)
	if err != nil {
		return nil, fmt.Errorf("flowspec: compile %s: %w", filename, err)
	}
	return g, nil
}

// Conditions returns the number of compiled condition scripts.
func (g *Graph) Conditions() int {
	if g == nil {
		return 0
	}
	return g.conditions
}

// Machine returns a machine starting in the graph's start flow.
func (g *Graph) Machine() *gsm.Machine {
	if g == nil {
		return nil
	}
	m := &gsm.Machine{Begin: g.Begin, MaxFlowHops: g.MaxFlowHops}
	m.Init(g.Start, g.DefaultDescriptor, g.DefaultState)
	return m
}

type compiler struct {
	spec    *prefabs.FlowGraphSpec
	reg     Registry
	helpers string
	g       *Graph
}

// Compile turns spec into flows and behaviors over the states of reg.
func Compile(spec *prefabs.FlowGraphSpec, reg Registry) (*Graph, error) {
	if spec == nil {
		return nil, fmt.Errorf("flowspec: nil spec")
	}
	if reg.Env == nil {
		reg.Env = NewEnv()
	}
	c := &compiler{
		spec: spec,
		reg:  reg,
		g: &Graph{
			Name:        spec.Name,
			MaxFlowHops: spec.MaxFlowHops,
			Flows:       map[string]*gsm.Flow{},
			Behaviors:   map[string]*gsm.Behavior{},
			Descriptors: map[string]*gsm.Descriptor{},
		},
	}
	if spec.Helpers != "" {
		src, err := prefabs.LoadScript(spec.Helpers)
		if err != nil {
			return nil, fmt.Errorf("flowspec: helpers %s: %w", spec.Helpers, err)
		}
		c.helpers = string(src)
	}

	for _, name := range slices.Sorted(maps.Keys(spec.Flows)) {
		c.g.Flows[name] = gsm.NewFlow(name)
	}
	c.g.Begin = gsm.NewFlow("begin")

	for _, name := range slices.Sorted(maps.Keys(spec.Descriptors)) {
		c.g.Descriptors[name] = c.descriptor(name, spec.Descriptors[name])
	}
	for _, name := range slices.Sorted(maps.Keys(spec.Behaviors)) {
		b, err := c.behavior(name, spec.Behaviors[name])
		if err != nil {
			return nil, fmt.Errorf("behavior %s: %w", name, err)
		}
		c.g.Behaviors[name] = b
	}

	if err := c.rules(c.g.Begin, spec.Begin); err != nil {
		return nil, err
	}
	for _, name := range slices.Sorted(maps.Keys(spec.Flows)) {
		if err := c.rules(c.g.Flows[name], spec.Flows[name]); err != nil {
			return nil, err
		}
	}

	start, ok := c.g.Flows[spec.Start]
	if !ok {
		return nil, fmt.Errorf("start flow %q: %w", spec.Start, ErrUnknownFlow)
	}
	c.g.Start = start

	state, err := c.state(spec.DefaultState)
	if err != nil {
		return nil, fmt.Errorf("default state: %w", err)
	}
	c.g.DefaultState = state
	if spec.DefaultDescriptor != "" {
		desc, err := c.lookupDescriptor(spec.DefaultDescriptor)
		if err != nil {
			return nil, fmt.Errorf("default descriptor: %w", err)
		}
		c.g.DefaultDescriptor = desc
	}

	log.Printf("Flowspec: compiled %q with %d flows, %d behaviors and %d conditions",
		spec.Name, len(c.g.Flows), len(c.g.Behaviors), c.g.conditions)
	return c.g, nil
}

// descriptor copies the registry hooks for name and applies the spec flags.
func (c *compiler) descriptor(name string, spec prefabs.DescriptorSpec) *gsm.Descriptor {
	d := &gsm.Descriptor{Name: name}
	if hooks, ok := c.reg.Descriptors[name]; ok && hooks != nil {
		*d = *hooks
		d.Name = name
	}
	d.Restart = spec.Restart
	return d
}

func (c *compiler) lookupDescriptor(name string) (*gsm.Descriptor, error) {
	if name == "" {
		return nil, nil
	}
	if d, ok := c.g.Descriptors[name]; ok {
		return d, nil
	}
	hooks, ok := c.reg.Descriptors[name]
	if !ok || hooks == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownDescriptor)
	}
	d := c.descriptor(name, prefabs.DescriptorSpec{Restart: hooks.Restart})
	c.g.Descriptors[name] = d
	return d, nil
}

func (c *compiler) state(name string) (gsm.State, error) {
	s, ok := c.reg.States[name]
	if !ok || s == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownState)
	}
	return s, nil
}

// predicate compiles expr into a flow condition; an empty expr always holds.
func (c *compiler) predicate(expr string) (func() bool, error) {
	if expr == "" {
		return nil, nil
	}
	cond, err := c.compile(expr)
	if err != nil {
		return nil, err
	}
	return cond.Func(), nil
}

func (c *compiler) compile(expr string) (*Condition, error) {
	cond, err := CompileCondition(c.helpers, expr, c.reg.Env)
	if err != nil {
		return nil, err
	}
	c.g.conditions++
	return cond, nil
}

func (c *compiler) step(s prefabs.StepSpec) (gsm.Step, error) {
	state, err := c.state(s.State)
	if err != nil {
		return gsm.Step{}, err
	}
	desc, err := c.lookupDescriptor(s.Descriptor)
	if err != nil {
		return gsm.Step{}, err
	}
	done, err := c.predicate(s.Done)
	if err != nil {
		return gsm.Step{}, err
	}
	return gsm.Step{Descriptor: desc, State: state, IsDone: done}, nil
}

func (c *compiler) behavior(name string, spec prefabs.BehaviorSpec) (*gsm.Behavior, error) {
	var b *gsm.Behavior
	switch spec.Kind {
	case "", "single", "repeat":
		if len(spec.Steps) != 1 {
			return nil, fmt.Errorf("%s behavior needs exactly one step, got %d", kindOr(spec.Kind), len(spec.Steps))
		}
		s, err := c.step(spec.Steps[0])
		if err != nil {
			return nil, err
		}
		if spec.Kind == "repeat" {
			b = gsm.Repeat(spec.RestartOnEnter, spec.Count, s.Descriptor, s.State, s.IsDone)
		} else {
			b = gsm.Single(s.Descriptor, s.State, s.IsDone)
		}
	case "sequence":
		steps := make([]gsm.Step, 0, len(spec.Steps))
		for i, raw := range spec.Steps {
			s, err := c.step(raw)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			steps = append(steps, s)
		}
		b = gsm.Sequence(spec.RestartOnEnter, steps...)
	case "choice":
		if len(spec.Cases) == 0 {
			return nil, fmt.Errorf("choice behavior needs at least one case")
		}
		cases := make([]gsm.Case, 0, len(spec.Cases))
		for i, raw := range spec.Cases {
			cs, err := c.choiceCase(raw)
			if err != nil {
				return nil, fmt.Errorf("case %d: %w", i, err)
			}
			cases = append(cases, cs)
		}
		b = gsm.Choice(cases[0], cases[1:]...)
	default:
		return nil, fmt.Errorf("unknown behavior kind %q", spec.Kind)
	}

	b = b.Named(name)
	if spec.Wait {
		b = b.Wait()
	}
	for _, t := range spec.To {
		flow, ok := c.g.Flows[t.Flow]
		if !ok {
			return nil, fmt.Errorf("transition to %q: %w", t.Flow, ErrUnknownFlow)
		}
		cond, err := c.predicate(t.When)
		if err != nil {
			return nil, err
		}
		b = b.To(cond, flow)
	}
	return b, nil
}

// choiceCase builds a case whose Next expression yields a state name.
func (c *compiler) choiceCase(spec prefabs.CaseSpec) (gsm.Case, error) {
	state, err := c.state(spec.State)
	if err != nil {
		return gsm.Case{}, err
	}
	desc, err := c.lookupDescriptor(spec.Descriptor)
	if err != nil {
		return gsm.Case{}, err
	}
	cs := gsm.Case{State: state, Descriptor: desc}
	if spec.Next == "" {
		return cs, nil
	}
	next, err := c.compile(spec.Next)
	if err != nil {
		return gsm.Case{}, err
	}
	states := c.reg.States
	cs.Next = func() gsm.State {
		name := next.Text()
		if name == "" {
			return nil
		}
		s, ok := states[name]
		if !ok {
			log.Printf("Flowspec: choice picked unknown state %q", name)
			return nil
		}
		return s
	}
	return cs, nil
}

func (c *compiler) rules(f *gsm.Flow, nodes []prefabs.NodeSpec) error {
	for i, n := range nodes {
		cond, err := c.predicate(n.When)
		if err != nil {
			return fmt.Errorf("flow %s rule %d: %w", f.Name(), i, err)
		}

		targets := 0
		for _, t := range []string{n.Do, n.ForceDo, n.To, n.ForceTo} {
			if t != "" {
				targets++
			}
		}
		if targets != 1 {
			return fmt.Errorf("flow %s rule %d: want exactly one target, got %d", f.Name(), i, targets)
		}

		switch {
		case n.Do != "" || n.ForceDo != "":
			name := n.Do + n.ForceDo
			b, ok := c.g.Behaviors[name]
			if !ok {
				return fmt.Errorf("flow %s rule %d: %q: %w", f.Name(), i, name, ErrUnknownBehavior)
			}
			if n.ForceDo != "" {
				f.ForceDo(cond, b)
			} else {
				f.Do(cond, b)
			}
		default:
			name := n.To + n.ForceTo
			target, ok := c.g.Flows[name]
			if !ok {
				return fmt.Errorf("flow %s rule %d: %q: %w", f.Name(), i, name, ErrUnknownFlow)
			}
			if n.ForceTo != "" {
				f.ForceTo(cond, target)
			} else {
				f.To(cond, target)
			}
		}
	}
	return nil
}

func kindOr(kind string) string {
	if kind == "" {
		return "single"
	}
	return kind
}
