package flowspec

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const resultVar = "__result"

// Env exposes named values to condition scripts. Getters run on every
// evaluation and must return a value tengo can convert: bool, int, float64
// or string.
type Env struct {
	names []string
	get   map[string]func() any
}

func NewEnv() *Env {
	return &Env{get: map[string]func() any{}}
}

// Bind registers name, replacing an earlier getter with the same name.
func (e *Env) Bind(name string, get func() any) *Env {
	if e == nil {
		return nil
	}
	if _, ok := e.get[name]; !ok {
		e.names = append(e.names, name)
	}
	e.get[name] = get
	return e
}

func (e *Env) Names() []string {
	if e == nil {
		return nil
	}
	return e.names
}

// Condition is a tengo expression compiled once and evaluated against an Env.
type Condition struct {
	Source string

	compiled *tengo.Compiled
	env      *Env
	failed   bool
}

// CompileCondition compiles expr with helpers prepended. Every Env name is a
// global of the script.
func CompileCondition(helpers, expr string, env *Env) (*Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("flowspec: empty condition")
	}
	src := helpers + "\n" + resultVar + " := (" + expr + ")\n"
	script := tengo.NewScript([]byte(src))
	for _, name := range env.Names() {
		if err := script.Add(name, env.get[name]()); err != nil {
			return nil, fmt.Errorf("flowspec: bind %s: %w", name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("flowspec: compile %q: %w", expr, err)
	}
	return &Condition{Source: expr, compiled: compiled, env: env}, nil
}

func (c *Condition) run() bool {
	if c == nil || c.compiled == nil {
		return false
	}
	for _, name := range c.env.Names() {
		if err := c.compiled.Set(name, c.env.get[name]()); err != nil {
			c.report(err)
			return false
		}
	}
	if err := c.compiled.Run(); err != nil {
		c.report(err)
		return false
	}
	return true
}

// Eval runs the expression and reports whether the result is truthy. A
// failing expression is logged once and evaluates to false.
func (c *Condition) Eval() bool {
	if !c.run() {
		return false
	}
	return !c.compiled.Get(resultVar).Object().IsFalsy()
}

// Text runs the expression and returns its result as a string. Undefined
// results come back empty.
func (c *Condition) Text() string {
	if !c.run() {
		return ""
	}
	switch v := c.compiled.Get(resultVar).Object().(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Undefined:
		return ""
	default:
		return strings.Trim(v.String(), "\"")
	}
}

// Func returns Eval as a flow predicate.
func (c *Condition) Func() func() bool {
	if c == nil {
		return nil
	}
	return c.Eval
}

func (c *Condition) report(err error) {
	if c.failed {
		return
	}
	c.failed = true
	log.Printf("Flowspec: condition %q failed: %v", c.Source, err)
}
