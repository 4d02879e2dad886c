package motion

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/common"
	"github.com/milk9111/platformkit/input"
	"github.com/milk9111/platformkit/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGravityClampsToMaxFall(t *testing.T) {
	w := physics.NewWorld()
	b := physics.NewBody(w, cp.Vector{}, unitBox, nil)
	g := NewGravity(GravityConfig{Accel: -40, MaxFallSpeed: -30}, b, 1.0/60)

	g.CalcGravity()
	assert.InDelta(t, -40.0/60, g.Value, 1e-12)

	b.SetVelocity(cp.Vector{Y: -29.9})
	g.CalcGravity()
	assert.Equal(t, -30.0, g.Value)
	assert.True(t, g.UseGravity.Value())
}

func TestWalkInputEdges(t *testing.T) {
	cases := []struct {
		name   string
		frames [][]input.Action
		want   []int
	}{
		{
			name:   "press_right",
			frames: [][]input.Action{{input.ActionRight}, {input.ActionRight}, {}},
			want:   []int{1, 1, 0},
		},
		{
			name:   "newest_press_wins",
			frames: [][]input.Action{{input.ActionRight}, {input.ActionRight, input.ActionLeft}},
			want:   []int{1, -1},
		},
		{
			name: "release_hands_over",
			frames: [][]input.Action{
				{input.ActionRight},
				{input.ActionRight, input.ActionLeft},
				{input.ActionRight},
			},
			want: []int{1, -1, 1},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			walk := NewWalk(WalkConfig{MaxSpeed: 10}, 1.0/60)
			keys := input.NewSnapshot()
			for i, held := range c.frames {
				keys.Advance(held...)
				walk.GetInput(keys, input.ActionRight, input.ActionLeft)
				assert.Equal(t, c.want[i], walk.InputDir(), "frame %d", i)
			}
		})
	}
}

func TestWalkDisabledIgnoresInput(t *testing.T) {
	walk := NewWalk(WalkConfig{MaxSpeed: 10}, 1.0/60)
	walk.CanWalk.Set(false)
	keys := input.NewSnapshot()
	keys.Advance(input.ActionRight)

	walk.GetInput(keys, input.ActionRight, input.ActionLeft)
	assert.Zero(t, walk.InputDir())
}

func TestWalkReversalPreservesSpeed(t *testing.T) {
	walk := NewWalk(WalkConfig{MaxSpeed: 20, ChangeDirPreserveSpeed: 0.5}, 1.0/60)
	keys := input.NewSnapshot()

	keys.Advance(input.ActionRight)
	walk.GetInput(keys, input.ActionRight, input.ActionLeft)
	walk.CalcWalkVector(GroundContact{})
	walk.CurWalkSpeed = 10

	keys.Advance(input.ActionLeft)
	walk.GetInput(keys, input.ActionRight, input.ActionLeft)
	walk.CalcWalkVector(GroundContact{})

	assert.Equal(t, -1, walk.MoveDir())
	assert.Equal(t, 5.0, walk.CurWalkSpeed)
	assert.Equal(t, cp.Vector{X: -5, Y: 0}, walk.WalkVector())
}

func TestWalkAccelAndDecel(t *testing.T) {
	walk := NewWalk(WalkConfig{MaxSpeed: 2, MinSpeed: 0.5, Accel: 60, Decel: 30}, 1.0/60)
	keys := input.NewSnapshot()

	keys.Advance(input.ActionRight)
	walk.GetInput(keys, input.ActionRight, input.ActionLeft)
	walk.CalcWalkVector(GroundContact{})
	assert.InDelta(t, 1, walk.CurWalkSpeed, 1e-12)

	for i := 0; i < 5; i++ {
		walk.CalcWalkVector(GroundContact{})
	}
	assert.Equal(t, 2.0, walk.CurWalkSpeed)

	keys.Advance()
	walk.GetInput(keys, input.ActionRight, input.ActionLeft)
	walk.CalcWalkVector(GroundContact{})
	assert.InDelta(t, 1.5, walk.CurWalkSpeed, 1e-12)
	for i := 0; i < 10; i++ {
		walk.CalcWalkVector(GroundContact{})
	}
	assert.Zero(t, walk.CurWalkSpeed)
	assert.Equal(t, 1, walk.MoveDir())
}

func TestWalkFollowsSlope(t *testing.T) {
	n := cp.Vector{X: -1, Y: 1}.Normalize()
	ground := GroundContact{Shape: &cp.Shape{}, Normal: n}
	cases := []struct {
		name   string
		action input.Action
		want   cp.Vector
	}{
		{"uphill_right", input.ActionRight, cp.Vector{X: 1, Y: 1}.Normalize()},
		{"downhill_left", input.ActionLeft, cp.Vector{X: -1, Y: -1}.Normalize()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			walk := NewWalk(WalkConfig{MaxSpeed: 5}, 1.0/60)
			keys := input.NewSnapshot()
			keys.Advance(c.action)
			walk.GetInput(keys, input.ActionRight, input.ActionLeft)
			walk.CalcWalkVector(ground)

			assert.InDelta(t, c.want.X, walk.WalkDir().X, 1e-9)
			assert.InDelta(t, c.want.Y, walk.WalkDir().Y, 1e-9)
		})
	}

	flat := NewWalk(WalkConfig{MaxSpeed: 5}, 1.0/60)
	keys := input.NewSnapshot()
	keys.Advance(input.ActionLeft)
	flat.GetInput(keys, input.ActionRight, input.ActionLeft)
	flat.CalcWalkVector(GroundContact{Shape: &cp.Shape{}, Normal: common.Up})
	assert.Equal(t, cp.Vector{X: -1, Y: 0}, flat.WalkDir())
}

func TestCurveEvaluate(t *testing.T) {
	c := LinearCurve([2]float64{0, 0}, [2]float64{0.5, 2}, [2]float64{1, 2})

	assert.InDelta(t, 0, c.Evaluate(-1), 1e-12)
	assert.InDelta(t, 1, c.Evaluate(0.25), 1e-12)
	assert.InDelta(t, 2, c.Evaluate(0.75), 1e-12)
	assert.InDelta(t, 2, c.Evaluate(3), 1e-12)
	assert.Equal(t, 1.0, c.EndTime())

	c.Time = 0.5
	assert.False(t, c.IsEnded())
	c.Time = 1
	assert.True(t, c.IsEnded())

	var empty Curve
	assert.True(t, empty.IsEnded())
	assert.Zero(t, empty.Value())
}

func TestCurveHermiteEndpoints(t *testing.T) {
	c := Curve{Keys: []Keyframe{
		{Time: 0, Value: 0, OutTangent: 8},
		{Time: 0.5, Value: 2, InTangent: 0},
	}}
	assert.InDelta(t, 0, c.Evaluate(0), 1e-12)
	assert.InDelta(t, 2, c.Evaluate(0.5), 1e-12)
	mid := c.Evaluate(0.25)
	assert.Greater(t, mid, 1.0)
	assert.Less(t, mid, 2.0)
}

func TestJumpFollowsCurve(t *testing.T) {
	w := physics.NewWorld()
	b := physics.NewBody(w, cp.Vector{Y: 1}, unitBox, nil)
	dt := 1.0 / 60
	j := NewJump(JumpConfig{Curve: LinearCurve([2]float64{0, 0}, [2]float64{0.5, 3})}, b, dt)

	keys := input.NewSnapshot()
	keys.Advance(input.ActionJump)
	j.GetInput(keys, input.ActionJump)
	require.True(t, j.InputPressed())

	j.StartJump()
	require.True(t, j.IsJumping())

	j.CalcJumpVelocity()
	v, ok := j.Velocity()
	require.True(t, ok)
	assert.InDelta(t, 6, v, 1e-9)

	// the body follows the curve exactly
	ticks := 1
	for j.IsJumping() && ticks < 100 {
		b.SetVelocity(cp.Vector{Y: v})
		b.SetPosition(b.Position().Add(cp.Vector{Y: v * dt}))
		j.CalcJumpVelocity()
		v, _ = j.Velocity()
		ticks++
	}
	assert.False(t, j.IsJumping())
	assert.InDelta(t, 4, b.Position().Y, 1e-9)
	assert.InDelta(t, 31, ticks, 1)
}

func TestJumpEndsWhenStopped(t *testing.T) {
	w := physics.NewWorld()
	b := physics.NewBody(w, cp.Vector{}, unitBox, nil)
	j := NewJump(JumpConfig{Curve: LinearCurve([2]float64{0, 0}, [2]float64{1, 5})}, b, 1.0/60)

	j.StartJump()
	j.CalcJumpVelocity()
	require.True(t, j.IsJumping())

	// bumped a ceiling
	b.SetVelocity(cp.Vector{})
	j.CalcJumpVelocity()
	assert.False(t, j.IsJumping())
	_, ok := j.Velocity()
	assert.False(t, ok)
	assert.Zero(t, j.Curve().Time)
}

func TestJumpAirJumpsAndInputGate(t *testing.T) {
	w := physics.NewWorld()
	b := physics.NewBody(w, cp.Vector{}, unitBox, nil)
	j := NewJump(JumpConfig{AirJumpCount: 2, Curve: LinearCurve([2]float64{0, 0}, [2]float64{1, 1})}, b, 1.0/60)

	assert.True(t, j.CanAirJump())
	j.StartAirJump()
	j.StartAirJump()
	assert.False(t, j.CanAirJump())
	assert.Equal(t, 2, j.CurAirJumpCount)
	j.ResetAirJumpCount()
	assert.True(t, j.CanAirJump())

	keys := input.NewSnapshot()
	j.CanJump.Set(false)
	keys.Advance(input.ActionJump)
	j.GetInput(keys, input.ActionJump)
	assert.False(t, j.InputPressed())

	keys.Advance()
	j.GetInput(keys, input.ActionJump)
	assert.True(t, j.Released())
	j.ResetInput()
	assert.False(t, j.Released())
}
