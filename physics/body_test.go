package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyInnerGap(t *testing.T) {
	w := NewWorld()
	b := NewBody(w, cp.Vector{X: 0, Y: 5}, cp.Vector{X: 1, Y: 2}, nil)
	require.NotNil(t, b)

	b.SetInnerGap(0.2)
	assert.InDelta(t, 0.2, b.InnerGap(), 1e-12)
	assert.InDelta(t, 1.8, b.ColliderSize().Y, 1e-12)
	assert.InDelta(t, 5.1, b.ColliderCenter().Y, 1e-12)
	assert.InDelta(t, 1, b.HalfExtents().Y, 1e-12)

	for _, shape := range []*cp.Shape{b.Solid(), b.OneWay()} {
		bb := shape.BB()
		assert.InDelta(t, 4.2, bb.B, 1e-9)
		assert.InDelta(t, 6, bb.T, 1e-9)
	}

	b.SetInnerGap(0)
	assert.InDelta(t, 4, b.Solid().BB().B, 1e-9)

	b.SetInnerGap(-3)
	assert.Zero(t, b.InnerGap())
}

func TestBodyNilSafe(t *testing.T) {
	var b *Body
	assert.Equal(t, cp.Vector{}, b.Position())
	assert.Equal(t, cp.Vector{}, b.Velocity())
	assert.Nil(t, b.World())
	b.SetPosition(cp.Vector{X: 1})
	b.SetVelocity(cp.Vector{X: 1})
	b.SetInnerGap(1)
	b.Remove()
}

func TestStepSweepStopsAtSkin(t *testing.T) {
	w, _ := flatWorld(t)
	b := NewBody(w, cp.Vector{X: 0, Y: 1}, cp.Vector{X: 1, Y: 1}, nil)
	b.SetVelocity(cp.Vector{Y: -100})

	w.Step(1.0 / 60)

	bottom := b.Position().Y - b.HalfExtents().Y
	assert.InDelta(t, w.Skin, bottom, 1e-6)
	assert.InDelta(t, -(0.5-w.Skin)*60, b.Velocity().Y, 1e-6)
}

func TestStepSweepSlidesAlongSlope(t *testing.T) {
	w := NewWorld()
	w.AddStaticPoly([]cp.Vector{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, LayerSolid, nil)
	b := NewBody(w, cp.Vector{X: -0.6, Y: 0.5 + w.Skin}, cp.Vector{X: 1, Y: 1}, nil)
	b.SetVelocity(cp.Vector{X: 30})

	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60)
	}

	p := b.Position()
	assert.Greater(t, p.Y, 0.5)
	// bottom right corner stays on or above the 45 degree face
	assert.GreaterOrEqual(t, p.Y-0.5-(p.X+0.5), -1e-3)
}

func TestOneWayPlatform(t *testing.T) {
	cases := []struct {
		name      string
		start     float64
		velocity  float64
		ignore    bool
		wantAbove bool
	}{
		{"lands_from_above", 2, -10, false, true},
		{"passes_from_below", -2, 10, false, true},
		{"falls_through_when_ignored", 2, -10, true, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			platform := w.AddStaticBox(cp.BB{L: -5, B: -0.25, R: 5, T: 0}, LayerOneWay, nil)
			b := NewBody(w, cp.Vector{Y: c.start}, cp.Vector{X: 1, Y: 1}, nil)
			if c.ignore {
				w.IgnoreCollision(b.OneWay(), platform, true)
			}
			for i := 0; i < 40; i++ {
				b.SetVelocity(cp.Vector{Y: c.velocity})
				w.Step(1.0 / 60)
			}
			bottom := b.Position().Y - 0.5
			if c.wantAbove {
				assert.GreaterOrEqual(t, bottom, -1e-3)
			} else {
				assert.Less(t, bottom, -1.0)
			}
		})
	}
}
