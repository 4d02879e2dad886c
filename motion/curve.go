package motion

import (
	"sort"

	"github.com/milk9111/platformkit/common"
)

// Keyframe is one control point of a Curve.
type Keyframe struct {
	Time       float64 `yaml:"time"`
	Value      float64 `yaml:"value"`
	InTangent  float64 `yaml:"in_tangent"`
	OutTangent float64 `yaml:"out_tangent"`
}

// Curve is a cubic Hermite curve over keyframes, sampled at its own clock.
type Curve struct {
	Keys []Keyframe `yaml:"keys"`
	Time float64    `yaml:"-"`
}

// LinearCurve returns a curve through points joined by straight lines.
func LinearCurve(points ...[2]float64) Curve {
	keys := make([]Keyframe, len(points))
	for i, p := range points {
		keys[i] = Keyframe{Time: p[0], Value: p[1]}
	}
	for i := 0; i+1 < len(keys); i++ {
		span := keys[i+1].Time - keys[i].Time
		if span <= 0 {
			continue
		}
		slope := (keys[i+1].Value - keys[i].Value) / span
		keys[i].OutTangent = slope
		keys[i+1].InTangent = slope
	}
	return Curve{Keys: keys}
}

// Sort orders the keys by time.
func (c *Curve) Sort() {
	if c == nil {
		return
	}
	sort.SliceStable(c.Keys, func(i, j int) bool { return c.Keys[i].Time < c.Keys[j].Time })
}

// Evaluate samples the curve at t, holding the end values outside the key range.
func (c *Curve) Evaluate(t float64) float64 {
	if c == nil || len(c.Keys) == 0 {
		return 0
	}
	first, last := c.Keys[0], c.Keys[len(c.Keys)-1]
	if t <= first.Time {
		return first.Value
	}
	if t >= last.Time {
		return last.Value
	}
	i := sort.Search(len(c.Keys), func(i int) bool { return c.Keys[i].Time > t }) - 1
	k0, k1 := c.Keys[i], c.Keys[i+1]
	span := k1.Time - k0.Time
	if span <= 0 {
		return k1.Value
	}
	s := (t - k0.Time) / span
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	return h00*k0.Value + h10*span*k0.OutTangent + h01*k1.Value + h11*span*k1.InTangent
}

// Value samples the curve at its clock.
func (c *Curve) Value() float64 {
	if c == nil {
		return 0
	}
	return c.Evaluate(c.Time)
}

func (c *Curve) EndTime() float64 {
	if c == nil || len(c.Keys) == 0 {
		return 0
	}
	return c.Keys[len(c.Keys)-1].Time
}

// IsEnded reports whether the clock reached the last key. An empty curve is always ended.
func (c *Curve) IsEnded() bool {
	if c == nil || len(c.Keys) == 0 {
		return true
	}
	end := c.EndTime()
	return c.Time >= end || common.Approximately(c.Time, end)
}
