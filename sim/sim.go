package sim

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/platformkit/character"
	"github.com/milk9111/platformkit/common"
	"github.com/milk9111/platformkit/level"
	"github.com/milk9111/platformkit/physics"
	"github.com/milk9111/platformkit/prefabs"
	"github.com/milk9111/platformkit/timer"
)

// DefaultMaxSteps bounds the physics ticks run for one frame.
const DefaultMaxSteps = 8

// Observer is told about every physics tick and every character event.
type Observer interface {
	Tick(s *Simulation)
	Event(c *character.Character, evt character.Event)
}

// Simulation owns the world, the timer queues and the characters, and runs
// them on a fixed physics step.
type Simulation struct {
	World      *physics.World
	Timers     *timer.Manager
	Level      *level.Level
	Characters []*character.Character

	FixedDelta float64
	MaxSteps   int

	observers   []Observer
	accumulator float64
	frames      int
	ticks       int
	dropped     int
}

func New(fixedDelta float64) *Simulation {
	if fixedDelta <= 0 {
		fixedDelta = common.FixedDelta
	}
	return &Simulation{
		World:      physics.NewWorld(),
		Timers:     timer.NewManager(),
		FixedDelta: fixedDelta,
		MaxSteps:   DefaultMaxSteps,
	}
}

// Observe adds observers.
func (s *Simulation) Observe(o ...Observer) {
	if s == nil {
		return
	}
	s.observers = append(s.observers, o...)
}

// LoadLevel replaces the current level with the one in filename.
func (s *Simulation) LoadLevel(filename string) (*level.Level, error) {
	lvl, err := level.Load(filename)
	if err != nil {
		return nil, err
	}
	s.SetLevel(lvl)
	return lvl, nil
}

func (s *Simulation) SetLevel(lvl *level.Level) {
	if s == nil {
		return
	}
	s.Level.Remove()
	s.Level = lvl
	lvl.Build(s.World)
}

// Spawn creates a character at the level spawn point.
func (s *Simulation) Spawn(spec *prefabs.CharacterSpec) (*character.Character, error) {
	if s == nil {
		return nil, fmt.Errorf("sim: nil simulation")
	}
	if spec != nil && spec.Detection.FixedDelta != s.FixedDelta {
		tuned := *spec
		tuned.Detection.FixedDelta = s.FixedDelta
		spec = &tuned
	}
	c, err := character.New(s.World, s.Timers, spec, s.Level.Spawn())
	if err != nil {
		return nil, err
	}
	s.Characters = append(s.Characters, c)
	return c, nil
}

// Remove takes c out of the simulation.
func (s *Simulation) Remove(c *character.Character) {
	if s == nil || c == nil {
		return
	}
	for i, other := range s.Characters {
		if other == c {
			s.Characters = append(s.Characters[:i], s.Characters[i+1:]...)
			break
		}
	}
	c.Remove()
}

func (s *Simulation) Frames() int {
	if s == nil {
		return 0
	}
	return s.frames
}

// Ticks returns the number of physics ticks run so far.
func (s *Simulation) Ticks() int {
	if s == nil {
		return 0
	}
	return s.ticks
}

// Dropped returns the physics ticks skipped because a frame ran too long.
func (s *Simulation) Dropped() int {
	if s == nil {
		return 0
	}
	return s.dropped
}

// Frame advances the simulation by dt: the frame tick of every character,
// as many fixed physics ticks as dt covers, then the late update. Flow cycle
// errors of all characters are joined and returned; they do not stop the
// frame.
func (s *Simulation) Frame(dt float64) error {
	if s == nil || dt < 0 {
		return nil
	}
	s.frames++
	s.Timers.Update(dt)

	var errs []error
	for _, c := range s.Characters {
		if err := c.Update(dt); err != nil {
			errs = append(errs, fmt.Errorf("sim: %s: %w", c.Name, err))
		}
	}

	s.accumulator += dt
	steps := 0
	for s.accumulator >= s.FixedDelta {
		if s.MaxSteps > 0 && steps >= s.MaxSteps {
			skipped := int(s.accumulator / s.FixedDelta)
			s.dropped += skipped
			s.accumulator -= float64(skipped) * s.FixedDelta
			log.Printf("Sim: frame too long, dropped %d physics ticks", skipped)
			break
		}
		s.Step()
		s.accumulator -= s.FixedDelta
		steps++
	}

	for _, c := range s.Characters {
		c.LateUpdate()
	}
	s.Timers.LateUpdate(dt)
	s.dispatch()
	return errors.Join(errs...)
}

// Step runs one physics tick.
func (s *Simulation) Step() {
	if s == nil {
		return
	}
	for _, c := range s.Characters {
		c.FixedUpdate()
	}
	s.Timers.FixedUpdate(s.FixedDelta)
	s.World.Step(s.FixedDelta)
	for _, c := range s.Characters {
		c.LateFixedUpdate()
	}
	s.ticks++
	for _, o := range s.observers {
		o.Tick(s)
	}
}

func (s *Simulation) dispatch() {
	for _, c := range s.Characters {
		for _, evt := range c.Events().Drain() {
			for _, o := range s.observers {
				o.Event(c, evt)
			}
		}
	}
}
