package motion

import (
	"math"

	"github.com/milk9111/platformkit/common"
	"github.com/milk9111/platformkit/physics"
)

type GravityConfig struct {
	Accel        float64 `yaml:"accel"`
	MaxFallSpeed float64 `yaml:"max_fall_speed"`
}

// Gravity integrates the vertical velocity of a body while airborne.
type Gravity struct {
	GravityConfig

	UseGravity common.CountedBool
	Value      float64

	body *physics.Body
	dt   float64
}

func NewGravity(cfg GravityConfig, body *physics.Body, dt float64) *Gravity {
	g := &Gravity{GravityConfig: cfg}
	g.Init(body, dt, true)
	return g
}

func (g *Gravity) Init(body *physics.Body, dt float64, useGravity bool) {
	if g == nil {
		return
	}
	if dt <= 0 {
		dt = common.FixedDelta
	}
	g.body = body
	g.dt = dt
	g.UseGravity.Reset()
	if useGravity {
		g.UseGravity.Set(true)
	}
}

// CalcGravity sets Value to the body's vertical velocity after one tick of
// acceleration, limited by MaxFallSpeed.
func (g *Gravity) CalcGravity() {
	if g == nil {
		return
	}
	g.Value = math.Max(g.body.Velocity().Y+g.Accel*g.dt, g.MaxFallSpeed)
}
