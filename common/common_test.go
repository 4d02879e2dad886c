package common

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
)

func TestCountedBool(t *testing.T) {
	b := NewCountedBool(true)
	assert.True(t, b.Value())

	b.Set(false)
	assert.False(t, b.Value())

	b.Set(false)
	b.Set(true)
	assert.False(t, b.Value(), "one disable still outstanding")
	b.Set(true)
	assert.True(t, b.Value())

	b.Reset()
	assert.False(t, b.Value())

	var nilBool *CountedBool
	nilBool.Set(true)
	assert.False(t, nilBool.Value())
}

func TestSurfaceAngle(t *testing.T) {
	cases := []struct {
		name   string
		normal cp.Vector
		want   float64
	}{
		{"flat", Up, 0},
		{"wall", Right, 90},
		{"rising_left_30", NormalForAngle(30), 30},
		{"rising_right_45", NormalForAngle(-45), 45},
		{"zero", cp.Vector{}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, SurfaceAngle(c.normal), 1e-9)
		})
	}
}

func TestApproximately(t *testing.T) {
	assert.True(t, Approximately(0.45, 0.1+0.35))
	assert.True(t, Approximately(50, 50.0000001))
	assert.False(t, Approximately(50, 50.01))
	assert.Equal(t, -1.0, Sign(-3))
	assert.Zero(t, Sign(0))
	assert.Equal(t, 2.0, Clamp(5, 0, 2))
}
