package physics

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var down = cp.Vector{Y: -1}

func flatWorld(t *testing.T) (*World, *cp.Shape) {
	t.Helper()
	w := NewWorld()
	ground := w.AddStaticBox(cp.BB{L: -10, B: -1, R: 10, T: 0}, LayerSolid, "ground")
	require.NotNil(t, ground)
	return w, ground
}

func TestBoxCastFlatGround(t *testing.T) {
	w, ground := flatWorld(t)
	out := make([]Hit, 4)

	n := w.BoxCast(cp.Vector{X: 0, Y: 2}, cp.Vector{X: 1, Y: 1}, down, 5, LayerSolid, out)
	require.Equal(t, 1, n)

	hit := out[0]
	assert.Same(t, ground, hit.Shape)
	assert.Equal(t, "ground", hit.Owner())
	assert.InDelta(t, 1.5, hit.Distance, 1e-9)
	assert.InDelta(t, 0, hit.Normal.X, 1e-9)
	assert.InDelta(t, 1, hit.Normal.Y, 1e-9)
	assert.InDelta(t, 0, hit.Point.Y, 1e-9)
	assert.InDelta(t, 0, hit.Point.X, 1e-9)
	assert.False(t, hit.StartedInside())
}

func TestBoxCastOutOfRange(t *testing.T) {
	w, _ := flatWorld(t)
	out := make([]Hit, 4)

	assert.Zero(t, w.BoxCast(cp.Vector{X: 0, Y: 2}, cp.Vector{X: 1, Y: 1}, down, 1, LayerSolid, out))
	assert.Zero(t, w.BoxCast(cp.Vector{X: 0, Y: 2}, cp.Vector{X: 1, Y: 1}, cp.Vector{Y: 1}, 5, LayerSolid, out))
	assert.Zero(t, w.BoxCast(cp.Vector{X: 0, Y: 2}, cp.Vector{X: 1, Y: 1}, down, 5, LayerSolid, nil))
}

func TestBoxCastSlope(t *testing.T) {
	w := NewWorld()
	// hypotenuse x + y = 4, facing up and right
	w.AddStaticPoly([]cp.Vector{{X: 0, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 0}}, LayerSolid, nil)
	out := make([]Hit, 2)

	n := w.BoxCast(cp.Vector{X: 2, Y: 5}, cp.Vector{X: 1, Y: 1}, down, 10, LayerSolid, out)
	require.Equal(t, 1, n)

	hit := out[0]
	assert.InDelta(t, 2, hit.Distance, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, hit.Normal.X, 1e-9)
	assert.InDelta(t, math.Sqrt2/2, hit.Normal.Y, 1e-9)
	assert.InDelta(t, 1.5, hit.Point.X, 1e-9)
	assert.InDelta(t, 2.5, hit.Point.Y, 1e-9)
}

func TestBoxCastStartInside(t *testing.T) {
	w, _ := flatWorld(t)
	out := make([]Hit, 1)

	n := w.BoxCast(cp.Vector{X: 0, Y: 0.2}, cp.Vector{X: 1, Y: 1}, down, 1, LayerSolid, out)
	require.Equal(t, 1, n)
	assert.True(t, out[0].StartedInside())
	assert.Zero(t, out[0].Distance)
	assert.InDelta(t, 1, out[0].Normal.Y, 1e-9)
	assert.InDelta(t, 0, out[0].Point.Y, 1e-9)
}

func TestBoxCastMaskAndCapacity(t *testing.T) {
	w, ground := flatWorld(t)
	platform := w.AddStaticBox(cp.BB{L: -2, B: 1, R: 2, T: 1.25}, LayerOneWay, nil)
	center := cp.Vector{X: 0, Y: 3}
	size := cp.Vector{X: 1, Y: 1}

	cases := []struct {
		name  string
		mask  Layer
		cap   int
		first *cp.Shape
		count int
	}{
		{"solid_only", LayerSolid, 4, ground, 1},
		{"one_way_only", LayerOneWay, 4, platform, 1},
		{"both_nearest_first", LayerSolid | LayerOneWay, 4, platform, 2},
		{"capacity_one", LayerSolid | LayerOneWay, 1, platform, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := make([]Hit, c.cap)
			n := w.BoxCast(center, size, down, 10, c.mask, out)
			require.Equal(t, c.count, n)
			assert.Same(t, c.first, out[0].Shape)
		})
	}
}

func TestCircleCastAndRaycast(t *testing.T) {
	w, ground := flatWorld(t)
	out := make([]Hit, 2)

	n := w.CircleCast(cp.Vector{X: 0, Y: 2}, 0.5, down, 5, LayerSolid, out)
	require.Equal(t, 1, n)
	assert.Same(t, ground, out[0].Shape)
	assert.InDelta(t, 1.5, out[0].Distance, 1e-6)

	hit, ok := w.Raycast(cp.Vector{X: 3, Y: 2}, down, 5, LayerSolid)
	require.True(t, ok)
	assert.Same(t, ground, hit.Shape)
	assert.InDelta(t, 2, hit.Distance, 1e-6)
	assert.InDelta(t, 1, hit.Normal.Y, 1e-6)

	_, ok = w.Raycast(cp.Vector{X: 3, Y: 2}, down, 1, LayerSolid)
	assert.False(t, ok)
	_, ok = w.Raycast(cp.Vector{X: 3, Y: 2}, down, 5, LayerOneWay)
	assert.False(t, ok)
}

func TestOverlapBoxIncludesTouching(t *testing.T) {
	w, ground := flatWorld(t)

	touching := w.OverlapBox(cp.Vector{X: 0, Y: 0.5}, cp.Vector{X: 1, Y: 1}, LayerSolid, nil)
	require.Len(t, touching, 1)
	assert.Same(t, ground, touching[0])

	assert.Empty(t, w.OverlapBox(cp.Vector{X: 0, Y: 0.6}, cp.Vector{X: 1, Y: 1}, LayerSolid, nil))
}

func TestIgnoreCollision(t *testing.T) {
	w, ground := flatWorld(t)
	other := w.AddStaticBox(cp.BB{L: 20, B: 0, R: 21, T: 1}, LayerOneWay, nil)

	assert.False(t, w.IsIgnored(ground, other))
	w.IgnoreCollision(other, ground, true)
	assert.True(t, w.IsIgnored(ground, other))
	assert.True(t, w.IsIgnored(other, ground))
	w.IgnoreCollision(ground, other, false)
	assert.False(t, w.IsIgnored(other, ground))

	w.IgnoreCollision(ground, other, true)
	w.RemoveShape(other)
	assert.False(t, w.IsIgnored(ground, other))
}
