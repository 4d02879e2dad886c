package motion

import (
	"github.com/milk9111/platformkit/common"
	"github.com/milk9111/platformkit/input"
	"github.com/milk9111/platformkit/physics"
)

type JumpConfig struct {
	Curve        Curve `yaml:"curve"`
	AirJumpCount int   `yaml:"air_jump_count"`

	// CutOnRelease ends the rise as soon as the jump action is released.
	CutOnRelease bool `yaml:"cut_on_release"`
}

// Jump drives vertical velocity along a height-over-time curve.
type Jump struct {
	CanJump         common.CountedBool
	AirJumpCount    int
	CutOnRelease    bool
	CurAirJumpCount int

	curve Curve
	body  *physics.Body
	dt    float64

	inputPressed bool
	released     bool
	isJumping    bool
	startY       float64
	velocity     float64
	hasVelocity  bool
}

func NewJump(cfg JumpConfig, body *physics.Body, dt float64) *Jump {
	j := &Jump{}
	j.Configure(cfg)
	j.Init(body, dt, true)
	return j
}

// Configure replaces the tuning without touching the jump in progress.
func (j *Jump) Configure(cfg JumpConfig) {
	if j == nil {
		return
	}
	keys := make([]Keyframe, len(cfg.Curve.Keys))
	copy(keys, cfg.Curve.Keys)
	j.curve.Keys = keys
	j.curve.Sort()
	j.AirJumpCount = cfg.AirJumpCount
	if j.AirJumpCount < 0 {
		j.AirJumpCount = 0
	}
	j.CutOnRelease = cfg.CutOnRelease
}

func (j *Jump) Init(body *physics.Body, dt float64, canJump bool) {
	if j == nil {
		return
	}
	if dt <= 0 {
		dt = common.FixedDelta
	}
	j.body = body
	j.dt = dt
	j.CanJump.Reset()
	if canJump {
		j.CanJump.Set(true)
	}
}

func (j *Jump) IsJumping() bool {
	return j != nil && j.isJumping
}

func (j *Jump) InputPressed() bool {
	return j != nil && j.inputPressed
}

// Released reports whether the jump action went up since the last ResetInput.
func (j *Jump) Released() bool {
	return j != nil && j.released
}

func (j *Jump) CanAirJump() bool {
	return j != nil && j.CurAirJumpCount < j.AirJumpCount
}

// Curve returns the jump curve with its running clock.
func (j *Jump) Curve() *Curve {
	if j == nil {
		return nil
	}
	return &j.curve
}

// Velocity returns the vertical velocity computed by the last CalcJumpVelocity.
func (j *Jump) Velocity() (float64, bool) {
	if j == nil {
		return 0, false
	}
	return j.velocity, j.hasVelocity
}

func (j *Jump) GetInput(src input.Source, key input.Action) {
	if j == nil || src == nil {
		return
	}
	if src.JustReleased(key) {
		j.released = true
	}
	if !j.CanJump.Value() {
		j.inputPressed = false
		return
	}
	if src.JustPressed(key) {
		j.inputPressed = true
	}
}

func (j *Jump) ResetInput() {
	if j == nil {
		return
	}
	j.inputPressed = false
	j.released = false
}

func (j *Jump) EndJump() {
	if j == nil {
		return
	}
	j.isJumping = false
	j.curve.Time = 0
	j.startY = 0
	j.velocity = 0
	j.hasVelocity = false
}

func (j *Jump) StartJump() {
	if j == nil {
		return
	}
	j.EndJump()
	j.isJumping = true
	j.startY = j.body.Position().Y
}

func (j *Jump) StartAirJump() {
	if j == nil {
		return
	}
	j.StartJump()
	j.CurAirJumpCount++
}

func (j *Jump) ResetAirJumpCount() {
	if j == nil {
		return
	}
	j.CurAirJumpCount = 0
}

// CalcJumpVelocity advances the curve one tick and sets the velocity that
// carries the body to the curve height. It ends the jump once the curve is
// over or the body stopped rising.
func (j *Jump) CalcJumpVelocity() {
	if j == nil || !j.isJumping {
		return
	}
	if j.curve.IsEnded() || (j.curve.Time > 0 && j.body.Velocity().Y <= 0) {
		j.EndJump()
		return
	}
	j.curve.Time += j.dt
	j.velocity = (j.startY + j.curve.Value() - j.body.Position().Y) / j.dt
	j.hasVelocity = true
}
