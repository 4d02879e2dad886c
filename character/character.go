package character

import (
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/common"
	"github.com/milk9111/platformkit/flowspec"
	"github.com/milk9111/platformkit/gsm"
	"github.com/milk9111/platformkit/input"
	"github.com/milk9111/platformkit/motion"
	"github.com/milk9111/platformkit/physics"
	"github.com/milk9111/platformkit/prefabs"
	"github.com/milk9111/platformkit/timer"
)

var defaultColor = color.NRGBA{R: 0x3c, G: 0x78, B: 0xff, A: 0xff}

// Character is a box body driven by the movement modules, with a flow graph
// choosing which movement runs.
type Character struct {
	Name  string
	Color color.Color

	Body    *physics.Body
	Ground  *motion.GroundDetector
	Gravity *motion.Gravity
	Walk    *motion.Walk
	Jump    *motion.Jump

	Machine *gsm.Machine
	Graph   *flowspec.Graph

	input  input.Source
	dt     float64
	clock  *timer.Timer
	events EventQueue
	probe  []physics.Hit

	inputX      int
	wasGrounded bool
	justLanded  bool
	lastState   string
	cycleLogged bool
}

// New spawns a character from spec with the bottom centre of its box at
// spawn. timers may be nil, in which case the state clock is ticked by
// Update.
func New(w *physics.World, timers *timer.Manager, spec *prefabs.CharacterSpec, spawn cp.Vector) (*Character, error) {
	if w == nil {
		return nil, fmt.Errorf("character: nil world")
	}
	if spec == nil {
		def := prefabs.DefaultCharacterSpec()
		spec = &def
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("character: %s: invalid size %.2fx%.2f", spec.Name, spec.Width, spec.Height)
	}

	c := &Character{
		Name:  spec.Name,
		Color: spec.Color.Or(defaultColor),
		probe: make([]physics.Hit, 1),
	}
	center := spawn.Add(cp.Vector{Y: spec.Height / 2})
	c.Body = physics.NewBody(w, center, cp.Vector{X: spec.Width, Y: spec.Height}, c)
	c.Ground = motion.NewGroundDetector(c.Body, spec.Detection)
	c.dt = c.Ground.Config().FixedDelta
	c.Gravity = motion.NewGravity(spec.Gravity, c.Body, c.dt)
	c.Walk = motion.NewWalk(spec.Walk, c.dt)
	c.Jump = motion.NewJump(spec.Jump, c.Body, c.dt)

	if timers != nil {
		c.clock = timers.New(timer.ModeUpdate, math.Inf(1))
	} else {
		c.clock = timer.NewTimer(math.Inf(1))
	}

	graph, err := flowspec.Load(spec.Flow, flowspec.Registry{
		States:      c.buildStates(),
		Descriptors: c.buildDescriptors(),
		Env:         c.env(),
	})
	if err != nil {
		c.Body.Remove()
		return nil, fmt.Errorf("character: %s: %w", spec.Name, err)
	}
	c.Graph = graph
	c.Machine = graph.Machine()
	c.Machine.Start()
	c.lastState = gsm.StateName(c.Machine.CurrentState())

	log.Printf("Character: spawned %q at (%.2f, %.2f)", c.Name, center.X, center.Y)
	return c, nil
}

// Load reads a character spec through prefabs and spawns it.
func Load(w *physics.World, timers *timer.Manager, filename string, spawn cp.Vector) (*Character, error) {
	spec, err := prefabs.LoadCharacterSpec(filename)
	if err != nil {
		return nil, err
	}
	return New(w, timers, spec, spawn)
}

// env exposes the values flow conditions read.
func (c *Character) env() *flowspec.Env {
	return flowspec.NewEnv().
		Bind("on_ground", func() any { return c.Ground.OnGround() }).
		Bind("steep", func() any { return c.Ground.OnSteepSlope() }).
		Bind("jumping", func() any { return c.Jump.IsJumping() }).
		Bind("jump_pressed", func() any { return c.Jump.InputPressed() }).
		Bind("can_air_jump", func() any { return c.Jump.CanAirJump() }).
		Bind("just_landed", func() any { return c.justLanded }).
		Bind("fall_through", func() any { return c.Ground.FallThroughRequested() }).
		Bind("input_x", func() any { return c.inputX }).
		Bind("vx", func() any { return c.Body.Velocity().X }).
		Bind("vy", func() any { return c.Body.Velocity().Y }).
		Bind("state", func() any { return gsm.StateName(c.Machine.CurrentState()) }).
		Bind("state_time", func() any { return c.clock.CurTime() })
}

// SetInput sets the source read on every Update.
func (c *Character) SetInput(src input.Source) {
	if c == nil {
		return
	}
	c.input = src
}

// Reconfigure applies new movement tuning without respawning. Detection and
// flow changes need a respawn.
func (c *Character) Reconfigure(spec *prefabs.CharacterSpec) {
	if c == nil || spec == nil {
		return
	}
	c.Gravity.GravityConfig = spec.Gravity
	c.Walk.WalkConfig = spec.Walk
	c.Walk.ChangeDirPreserveSpeed = common.Clamp(c.Walk.ChangeDirPreserveSpeed, 0, 1)
	c.Jump.Configure(spec.Jump)
	c.Color = spec.Color.Or(defaultColor)
	log.Printf("Character: %q retuned", c.Name)
}

func (c *Character) State() string {
	if c == nil {
		return ""
	}
	return c.lastState
}

func (c *Character) Flow() string {
	if c == nil {
		return ""
	}
	return c.Machine.CurrentFlow().Name()
}

// StateTime returns the frame time spent in the current state.
func (c *Character) StateTime() float64 {
	if c == nil {
		return 0
	}
	return c.clock.CurTime()
}

func (c *Character) InputX() int {
	if c == nil {
		return 0
	}
	return c.inputX
}

// Events returns the queue the character reports to.
func (c *Character) Events() *EventQueue {
	if c == nil {
		return nil
	}
	return &c.events
}

// Update is the frame tick: read input, resolve the flow graph, then run the
// state's update hook.
func (c *Character) Update(dt float64) error {
	if c == nil {
		return nil
	}
	if c.clock.Mode() == timer.ModeManual {
		c.clock.Tick(dt)
	}
	c.readInput()

	grounded := c.Ground.OnGround()
	c.justLanded = grounded && !c.wasGrounded
	c.wasGrounded = grounded

	err := c.Machine.Update()
	if err != nil {
		c.events.Push(Event{Kind: EventFlowCycle, From: c.Flow(), Err: err})
		if !c.cycleLogged {
			c.cycleLogged = true
			log.Printf("Character: %q: %v", c.Name, err)
		}
	}
	if name := gsm.StateName(c.Machine.CurrentState()); name != c.lastState {
		c.events.Push(Event{Kind: EventStateChanged, From: c.lastState, To: name})
		c.lastState = name
	}
	return err
}

// LateUpdate runs after every character has updated.
func (c *Character) LateUpdate() {
	if c == nil {
		return
	}
	c.Machine.LateUpdate()
}

// FixedUpdate is the first half of a physics tick: the active state computes
// and assigns the body velocity.
func (c *Character) FixedUpdate() {
	if c == nil {
		return
	}
	c.Machine.FixedUpdate()
}

// LateFixedUpdate is the second half of a physics tick, after the space has
// stepped: restore or drop one-way platforms, then detect and snap to ground.
func (c *Character) LateFixedUpdate() {
	if c == nil {
		return
	}
	before := c.Ground.IgnoredCount()
	requested := c.Ground.FallThroughRequested()
	c.Ground.FallThrough()
	if requested && c.Ground.IgnoredCount() > before {
		c.events.Push(Event{Kind: EventFellThrough})
	}

	grounded := c.Ground.OnGround()
	c.Ground.DetectGround(!c.Jump.IsJumping(), c.Gravity.Accel, c.Gravity.MaxFallSpeed)
	switch {
	case c.Ground.OnGround() && !grounded:
		v := c.Body.Velocity()
		c.Body.SetVelocity(cp.Vector{X: v.X})
		c.events.Push(Event{Kind: EventLanded})
	case !c.Ground.OnGround() && grounded:
		c.events.Push(Event{Kind: EventLeftGround})
	}
}

// Remove takes the character's body out of its world.
func (c *Character) Remove() {
	if c == nil {
		return
	}
	c.clock.Release()
	c.Body.Remove()
}

func (c *Character) readInput() {
	src := c.input
	c.Jump.ResetInput()
	if src == nil {
		c.inputX = 0
		c.Walk.ResetInput()
		return
	}
	c.inputX = 0
	if src.Pressed(input.ActionRight) {
		c.inputX++
	}
	if src.Pressed(input.ActionLeft) {
		c.inputX--
	}
	c.Walk.GetInput(src, input.ActionRight, input.ActionLeft)
	c.Jump.GetInput(src, input.ActionJump)
	c.Ground.GetInputFallThrough(src, input.ActionDown)
}

// entered restarts the state clock. Every leaf state calls it from Enter.
func (c *Character) entered() {
	c.clock.Reset()
}

func (c *Character) groundMove() {
	if !c.Ground.OnGround() {
		c.airMove()
		return
	}
	c.Walk.CalcWalkVector(c.Ground.GroundContact())
	c.Body.SetVelocity(c.Walk.WalkVector())
}

func (c *Character) airMove() {
	c.Walk.CalcWalkVector(motion.GroundContact{})
	v := cp.Vector{X: c.Walk.WalkVector().X}
	if !c.Ground.OnGround() && c.Gravity.UseGravity.Value() {
		c.Gravity.CalcGravity()
		v.Y = c.Gravity.Value
	}
	c.Body.SetVelocity(v)
}

func (c *Character) jumpMove() {
	if c.hitCeiling() {
		c.Jump.EndJump()
	}
	c.Jump.CalcJumpVelocity()
	vy, ok := c.Jump.Velocity()
	if !c.Jump.IsJumping() || !ok {
		c.airMove()
		return
	}
	c.Walk.CalcWalkVector(motion.GroundContact{})
	c.Body.SetVelocity(cp.Vector{X: c.Walk.WalkVector().X, Y: vy})
}

func (c *Character) slideMove() {
	if !c.Ground.OnSteepSlope() {
		c.airMove()
		return
	}
	c.Body.SetVelocity(c.Ground.SlideVector())
}

func (c *Character) cutJump() {
	if c.Jump.CutOnRelease && c.Jump.Released() {
		c.Jump.EndJump()
	}
}

// hitCeiling probes above the box with a circle for solid ceilings the jump
// would run into this tick.
func (c *Character) hitCeiling() bool {
	v := c.Body.Velocity()
	if v.Y <= 0 {
		return false
	}
	w := c.Body.World()
	half := c.Body.HalfExtents()
	radius := half.X * 0.5
	origin := c.Body.Position().Add(cp.Vector{Y: half.Y - radius})
	return w.CircleCast(origin, radius, common.Up, v.Y*c.dt+w.Skin, physics.LayerSolid, c.probe) > 0
}
