package motion

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/input"
	"github.com/milk9111/platformkit/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitBox = cp.Vector{X: 1, Y: 1}

func groundWorld(t *testing.T) (*physics.World, *cp.Shape) {
	t.Helper()
	w := physics.NewWorld()
	ground := w.AddStaticBox(cp.BB{L: -20, B: -1, R: 20, T: 0}, physics.LayerSolid, "ground")
	require.NotNil(t, ground)
	return w, ground
}

func TestDetectGroundInactiveIsIdempotent(t *testing.T) {
	w, _ := groundWorld(t)
	b := physics.NewBody(w, cp.Vector{Y: 0.55}, unitBox, nil)
	d := NewGroundDetector(b, DefaultDetectionConfig())

	d.DetectGround(true, -40, -30)
	require.True(t, d.OnGround())

	for i := 0; i < 2; i++ {
		d.DetectGround(false, -40, -30)
		assert.False(t, d.OnGround())
		assert.False(t, d.OnSteepSlope())
		assert.False(t, d.GroundContact().Valid())
		assert.Equal(t, cp.Vector{}, d.SlideVector())
	}
	assert.InDelta(t, d.Config().InnerGap, b.InnerGap(), 1e-12)
}

func TestDetectGroundSnapsOntoFlatGround(t *testing.T) {
	cfg := DefaultDetectionConfig()
	cases := []struct {
		name string
		fall float64
	}{
		{"no_motion", 0},
		{"small_fall", 0.03},
		{"fall_of_snap_length", cfg.SnapLength},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, ground := groundWorld(t)
			start := 0.5 + cfg.SnapLength
			b := physics.NewBody(w, cp.Vector{X: 1, Y: start}, unitBox, nil)
			d := NewGroundDetector(b, cfg)

			b.SetPosition(cp.Vector{X: 1, Y: start - c.fall})
			b.SetVelocity(cp.Vector{Y: -c.fall * 60})
			d.DetectGround(true, -40, -30)

			require.True(t, d.OnGround())
			assert.Equal(t, 0.5, b.Position().Y)
			assert.Equal(t, 1.0, b.Position().X)
			assert.Same(t, ground, d.GroundContact().Shape)
			assert.Equal(t, "ground", d.GroundContact().Owner)
			assert.InDelta(t, 1, d.GroundContact().Normal.Y, 1e-9)
			assert.False(t, d.OnSteepSlope())
		})
	}
}

func TestDetectGroundAirborne(t *testing.T) {
	w, _ := groundWorld(t)
	b := physics.NewBody(w, cp.Vector{Y: 3}, unitBox, nil)
	d := NewGroundDetector(b, DefaultDetectionConfig())

	d.DetectGround(true, -40, -30)
	assert.False(t, d.OnGround())
	assert.Equal(t, 3.0, b.Position().Y)
}

// steepWorld builds a wedge whose face descends to the right at deg degrees
// and places a unit body just above the face.
func steepWorld(t *testing.T, deg float64) (*physics.Body, *GroundDetector) {
	t.Helper()
	w := physics.NewWorld()
	tan := math.Tan(deg * math.Pi / 180)
	w.AddStaticPoly([]cp.Vector{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2 * tan}}, physics.LayerSolid, nil)

	cfg := DefaultDetectionConfig()
	leftEdge := 1 - 0.5 - cfg.ContactOffset/2
	faceY := (2 - leftEdge) * tan
	y := faceY + 0.5 + cfg.ContactOffset/2 - cfg.InnerGap + 0.05

	b := physics.NewBody(w, cp.Vector{X: 1, Y: y}, unitBox, nil)
	return b, NewGroundDetector(b, cfg)
}

func TestSteepSlopeBoundary(t *testing.T) {
	cases := []struct {
		name  string
		angle float64
		steep bool
	}{
		{"walkable", 45, false},
		{"at_limit", 70, false},
		{"past_limit", 70.01, true},
		{"much_steeper", 80, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, d := steepWorld(t, c.angle)
			d.DetectGround(true, -40, -30)

			require.True(t, d.OnGround())
			n := d.GroundContact().Normal
			assert.Greater(t, n.X, 0.0)
			assert.Equal(t, c.steep, d.OnSteepSlope())
			if !c.steep {
				assert.Equal(t, cp.Vector{}, d.SlideVector())
				return
			}
			slide := d.SlideVector()
			assert.Greater(t, slide.X, 0.0)
			assert.Less(t, slide.Y, 0.0)
			assert.InDelta(t, 40.0/60, slide.Length(), 1e-9)
			assert.InDelta(t, 0, slide.Dot(n), 1e-9)
		})
	}
}

func TestSteepSlideSpeedIsLimited(t *testing.T) {
	b, d := steepWorld(t, 80)
	b.SetVelocity(cp.Vector{Y: -50})
	d.DetectGround(true, -40, -30)

	require.True(t, d.OnSteepSlope())
	assert.InDelta(t, 30, d.SlideVector().Length(), 1e-9)
}

func TestDetectGroundValleyIsFlat(t *testing.T) {
	w := physics.NewWorld()
	// two 45 degree ramps meeting at x = 0
	w.AddStaticPoly([]cp.Vector{{X: -3, Y: 0}, {X: 0, Y: 0}, {X: -3, Y: 3}}, physics.LayerSolid, nil)
	w.AddStaticPoly([]cp.Vector{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}}, physics.LayerSolid, nil)
	b := physics.NewBody(w, cp.Vector{X: 0, Y: 0.93}, unitBox, nil)
	d := NewGroundDetector(b, DefaultDetectionConfig())

	d.DetectGround(true, -40, -30)

	require.True(t, d.OnGround())
	assert.Equal(t, cp.Vector{X: 0, Y: 1}, d.GroundContact().Normal)
	assert.False(t, d.OnSteepSlope())
}

func TestOneWayAcceptance(t *testing.T) {
	cases := []struct {
		name       string
		y          float64
		vy         float64
		wantGround bool
		wantIgnore bool
	}{
		{"lands_from_above", 0.55, -1, true, false},
		{"rising_through", -0.3, 5, false, true},
		{"overlapping_above_threshold", 0.3, 0, false, true},
		{"rising_above_platform", 0.55, 1, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := physics.NewWorld()
			platform := w.AddStaticBox(cp.BB{L: -5, B: -0.25, R: 5, T: 0}, physics.LayerOneWay, nil)
			b := physics.NewBody(w, cp.Vector{Y: c.y}, unitBox, nil)
			d := NewGroundDetector(b, DefaultDetectionConfig())
			b.SetVelocity(cp.Vector{Y: c.vy})

			d.DetectGround(true, -40, -30)

			assert.Equal(t, c.wantGround, d.OnGround())
			assert.Equal(t, c.wantIgnore, d.IsIgnoring(platform))
			assert.Equal(t, c.wantIgnore, w.IsIgnored(b.OneWay(), platform))
			if c.wantGround {
				assert.Equal(t, 0.5, b.Position().Y)
			}
		})
	}
}

func TestOneWayNotIgnoredWhileGrounded(t *testing.T) {
	w := physics.NewWorld()
	w.AddStaticBox(cp.BB{L: -20, B: -1, R: 20, T: 0}, physics.LayerSolid, nil)
	b := physics.NewBody(w, cp.Vector{Y: 0.5}, unitBox, nil)
	d := NewGroundDetector(b, DefaultDetectionConfig())

	d.DetectGround(true, -40, -30)
	require.True(t, d.OnGround())

	// a platform now cuts through the body above its feet
	platform := w.AddStaticBox(cp.BB{L: -5, B: 0.2, R: 5, T: 0.3}, physics.LayerOneWay, nil)
	d.DetectGround(true, -40, -30)
	assert.True(t, d.OnGround())
	assert.False(t, d.IsIgnoring(platform))
}

func TestFallThroughLatch(t *testing.T) {
	cases := []struct {
		name        string
		platformTop float64
		layer       physics.Layer
		grounded    bool
		wantIgnored int
	}{
		{"grounded_on_platform", 0, physics.LayerOneWay, true, 1},
		{"grounded_on_solid", 0, physics.LayerSolid, true, 0},
		{"airborne", -3, physics.LayerOneWay, false, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := physics.NewWorld()
			w.AddStaticBox(cp.BB{L: -5, B: c.platformTop - 0.25, R: 5, T: c.platformTop}, c.layer, nil)
			b := physics.NewBody(w, cp.Vector{Y: 0.5}, unitBox, nil)
			d := NewGroundDetector(b, DefaultDetectionConfig())
			d.DetectGround(true, -40, -30)
			require.Equal(t, c.grounded, d.OnGround())

			keys := input.NewSnapshot()
			keys.Advance(input.ActionDown)
			d.GetInputFallThrough(keys, input.ActionDown)
			require.True(t, d.FallThroughRequested())

			d.FallThrough()
			assert.False(t, d.FallThroughRequested())
			assert.Equal(t, c.wantIgnored, d.IgnoredCount())

			keys.Advance(input.ActionDown)
			d.GetInputFallThrough(keys, input.ActionDown)
			d.FallThrough()
			assert.False(t, d.FallThroughRequested())
			assert.Equal(t, c.wantIgnored, d.IgnoredCount())
		})
	}
}

func TestFallThroughRestoresLeftPlatforms(t *testing.T) {
	w := physics.NewWorld()
	platform := w.AddStaticBox(cp.BB{L: -5, B: -0.25, R: 5, T: 0}, physics.LayerOneWay, nil)
	b := physics.NewBody(w, cp.Vector{Y: 0.5}, unitBox, nil)
	d := NewGroundDetector(b, DefaultDetectionConfig())
	d.DetectGround(true, -40, -30)

	keys := input.NewSnapshot()
	keys.Advance(input.ActionDown)
	d.GetInputFallThrough(keys, input.ActionDown)
	d.FallThrough()
	require.True(t, w.IsIgnored(b.OneWay(), platform))

	b.SetPosition(cp.Vector{Y: -2})
	d.FallThrough()
	assert.False(t, d.IsIgnoring(platform))
	assert.False(t, w.IsIgnored(b.OneWay(), platform))
}

func TestDetectionConfigClamped(t *testing.T) {
	cfg := DetectionConfig{
		MaxDetectCount: -3,
		MaxWalkAngle:   120,
		SnapLength:     -1,
		InnerGap:       -1,
		ContactOffset:  -1,
	}.Clamped()

	assert.Zero(t, cfg.MaxDetectCount)
	assert.Equal(t, 89.0, cfg.MaxWalkAngle)
	assert.Zero(t, cfg.SnapLength)
	assert.Zero(t, cfg.InnerGap)
	assert.Zero(t, cfg.ContactOffset)
	assert.Greater(t, cfg.FixedDelta, 0.0)

	assert.Equal(t, 1.0, DetectionConfig{MaxWalkAngle: 0}.Clamped().MaxWalkAngle)
}
