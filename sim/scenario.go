package sim

import (
	"fmt"

	"github.com/milk9111/platformkit/character"
	"github.com/milk9111/platformkit/input"
	"github.com/milk9111/platformkit/prefabs"
)

// Scenario is a simulation with one character replaying scripted input.
type Scenario struct {
	Name      string
	Sim       *Simulation
	Character *character.Character
	Script    *input.Script
	Ticks     int
}

// LoadScenario builds the level and character a scenario spec names.
func LoadScenario(filename string) (*Scenario, error) {
	spec, err := prefabs.LoadScenarioSpec(filename)
	if err != nil {
		return nil, err
	}
	charSpec, err := prefabs.LoadCharacterSpec(spec.Character)
	if err != nil {
		return nil, err
	}

	s := New(charSpec.Detection.FixedDelta)
	if _, err := s.LoadLevel(spec.Level); err != nil {
		return nil, fmt.Errorf("sim: scenario %s: %w", spec.Name, err)
	}
	c, err := s.Spawn(charSpec)
	if err != nil {
		return nil, fmt.Errorf("sim: scenario %s: %w", spec.Name, err)
	}
	script := input.NewScript(spec.Input)
	c.SetInput(script)

	return &Scenario{
		Name:      spec.Name,
		Sim:       s,
		Character: c,
		Script:    script,
		Ticks:     spec.Ticks,
	}, nil
}

// Run plays the scenario one fixed step per frame and returns how many
// frames reported a flow cycle.
func (sc *Scenario) Run() int {
	if sc == nil {
		return 0
	}
	cycles := 0
	for i := 0; i < sc.Ticks; i++ {
		sc.Script.Next()
		if err := sc.Sim.Frame(sc.Sim.FixedDelta); err != nil {
			cycles++
		}
	}
	return cycles
}
