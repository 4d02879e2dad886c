package common

import (
	"math"

	"github.com/jakecoffman/cp"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// FixedDelta is the default physics tick length in seconds.
	FixedDelta = 1.0 / 60.0

	// Tolerance is the absolute and relative slack used by Approximately.
	Tolerance = 1e-5
)

var (
	Up    = cp.Vector{X: 0, Y: 1}
	Down  = cp.Vector{X: 0, Y: -1}
	Right = cp.Vector{X: 1, Y: 0}
	Left  = cp.Vector{X: -1, Y: 0}
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Approximately reports whether a and b are equal within Tolerance.
func Approximately(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, Tolerance, Tolerance)
}

// CrossForward is the xy part of cross((0,0,1), n).
func CrossForward(n cp.Vector) cp.Vector {
	return cp.Vector{X: -n.Y, Y: n.X}
}

// CrossBack is the xy part of cross((0,0,-1), n).
func CrossBack(n cp.Vector) cp.Vector {
	return cp.Vector{X: n.Y, Y: -n.X}
}

// SurfaceAngle returns the angle in degrees between the world right axis and
// the surface described by normal n, folded into [0, 90].
func SurfaceAngle(n cp.Vector) float64 {
	t := CrossForward(n)
	l := t.Length()
	if l == 0 {
		return 0
	}
	deg := math.Acos(Clamp(t.X/l, -1, 1)) * 180 / math.Pi
	if deg > 90 {
		deg = 180 - deg
	}
	return deg
}

// NormalForAngle returns the upward unit normal of a surface rising at deg
// degrees toward -x (deg > 0) or +x (deg < 0).
func NormalForAngle(deg float64) cp.Vector {
	rad := deg * math.Pi / 180
	return cp.Vector{X: math.Sin(rad), Y: math.Cos(rad)}
}

func IsZero(v cp.Vector) bool {
	return v.X == 0 && v.Y == 0
}
