package physics

import (
	"math"
	"sort"

	"github.com/jakecoffman/cp"
)

const (
	circleSegments = 16
	featureEpsilon = 1e-7
)

// Hit is one result of a shape cast.
type Hit struct {
	Shape    *cp.Shape
	Normal   cp.Vector
	Point    cp.Vector
	Distance float64

	inside bool
}

// Owner returns the object the hit shape was registered with.
func (h Hit) Owner() any {
	if h.Shape == nil {
		return nil
	}
	return h.Shape.UserData
}

// StartedInside reports whether the cast began overlapping the shape. Such
// hits have zero distance and a normal opposite to the cast direction.
func (h Hit) StartedInside() bool {
	return h.inside
}

// Queryer is the set of queries the ground detector issues.
type Queryer interface {
	BoxCast(center, size, dir cp.Vector, dist float64, mask Layer, out []Hit) int
	CircleCast(center cp.Vector, radius float64, dir cp.Vector, dist float64, mask Layer, out []Hit) int
	Raycast(origin, dir cp.Vector, dist float64, mask Layer) (Hit, bool)
	OverlapBox(center, size cp.Vector, mask Layer, out []*cp.Shape) []*cp.Shape
	IgnoreCollision(a, b *cp.Shape, ignore bool)
	IsIgnored(a, b *cp.Shape) bool
}

var _ Queryer = (*World)(nil)

// BoxCast sweeps an axis aligned box of full extents size from center along
// dir for dist and writes up to len(out) hits, nearest first.
func (w *World) BoxCast(center, size, dir cp.Vector, dist float64, mask Layer, out []Hit) int {
	if w == nil || w.space == nil || len(out) == 0 || dist < 0 {
		return 0
	}
	if dir.LengthSq() == 0 {
		return 0
	}
	dir = dir.Normalize()
	half := cp.Vector{X: math.Abs(size.X) / 2, Y: math.Abs(size.Y) / 2}

	start := cp.NewBBForExtents(center, half.X, half.Y)
	end := cp.NewBBForExtents(center.Add(dir.Mult(dist)), half.X, half.Y)
	swept := start.Merge(end)

	var candidates []*cp.Shape
	w.space.BBQuery(swept, queryFilter(mask), func(shape *cp.Shape, data interface{}) {
		if shape.Sensor() {
			return
		}
		candidates = append(candidates, shape)
	}, nil)

	hits := make([]Hit, 0, len(candidates))
	for _, shape := range candidates {
		w.verts = outline(shape, w.verts[:0])
		if hit, ok := sweepBox(w.verts, center, half, dir, dist); ok {
			hit.Shape = shape
			hits = append(hits, hit)
		}
	}
	return copyNearest(hits, out)
}

// CircleCast sweeps a circle from center along dir for dist.
func (w *World) CircleCast(center cp.Vector, radius float64, dir cp.Vector, dist float64, mask Layer, out []Hit) int {
	if w == nil || w.space == nil || len(out) == 0 || dist <= 0 || dir.LengthSq() == 0 {
		return 0
	}
	dir = dir.Normalize()
	endPoint := center.Add(dir.Mult(dist))

	var hits []Hit
	w.space.SegmentQuery(center, endPoint, radius, queryFilter(mask), func(shape *cp.Shape, point, normal cp.Vector, alpha float64, data interface{}) {
		if shape.Sensor() {
			return
		}
		hits = append(hits, Hit{Shape: shape, Point: point, Normal: normal, Distance: alpha * dist})
	}, nil)
	return copyNearest(hits, out)
}

// Raycast returns the nearest hit along a ray.
func (w *World) Raycast(origin, dir cp.Vector, dist float64, mask Layer) (Hit, bool) {
	if w == nil || w.space == nil || dist <= 0 || dir.LengthSq() == 0 {
		return Hit{}, false
	}
	dir = dir.Normalize()
	info := w.space.SegmentQueryFirst(origin, origin.Add(dir.Mult(dist)), 0, queryFilter(mask))
	if info.Shape == nil {
		return Hit{}, false
	}
	return Hit{Shape: info.Shape, Point: info.Point, Normal: info.Normal, Distance: info.Alpha * dist}, true
}

// OverlapBox appends every shape touching or overlapping the box to out.
func (w *World) OverlapBox(center, size cp.Vector, mask Layer, out []*cp.Shape) []*cp.Shape {
	if w == nil || w.space == nil {
		return out
	}
	half := cp.Vector{X: math.Abs(size.X) / 2, Y: math.Abs(size.Y) / 2}
	bb := cp.NewBBForExtents(center, half.X, half.Y)

	var candidates []*cp.Shape
	w.space.BBQuery(bb, queryFilter(mask), func(shape *cp.Shape, data interface{}) {
		if shape.Sensor() {
			return
		}
		candidates = append(candidates, shape)
	}, nil)

	for _, shape := range candidates {
		w.verts = outline(shape, w.verts[:0])
		if boxTouches(w.verts, center, half) {
			out = append(out, shape)
		}
	}
	return out
}

func copyNearest(hits []Hit, out []Hit) int {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return copy(out, hits)
}

// outline appends the world space outline of shape in counter-clockwise order.
func outline(shape *cp.Shape, buf []cp.Vector) []cp.Vector {
	switch c := shape.Class.(type) {
	case *cp.PolyShape:
		start := len(buf)
		for i := 0; i < c.Count(); i++ {
			buf = append(buf, c.TransformVert(i))
		}
		if signedArea(buf[start:]) < 0 {
			poly := buf[start:]
			for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
				poly[i], poly[j] = poly[j], poly[i]
			}
		}
	case *cp.Segment:
		a, b := c.TransformA(), c.TransformB()
		r := c.Radius()
		if r <= 0 {
			return append(buf, a, b)
		}
		n := b.Sub(a).Perp().Normalize().Mult(r)
		buf = append(buf, a.Sub(n), b.Sub(n), b.Add(n), a.Add(n))
	case *cp.Circle:
		center, r := c.TransformC(), c.Radius()
		for i := 0; i < circleSegments; i++ {
			t := 2 * math.Pi * float64(i) / circleSegments
			buf = append(buf, cp.Vector{X: center.X + math.Cos(t)*r, Y: center.Y + math.Sin(t)*r})
		}
	}
	return buf
}

// halfPlane is one supporting line of the Minkowski sum of a polygon and the
// cast box: dot(n, x) <= h.
type halfPlane struct {
	n cp.Vector
	h float64
}

var boxNormals = [4]cp.Vector{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}}

func support(verts []cp.Vector, n cp.Vector) float64 {
	best := math.Inf(-1)
	for _, v := range verts {
		if d := n.Dot(v); d > best {
			best = d
		}
	}
	return best
}

// minkowskiPlanes returns the supporting half planes of verts grown by a box
// of half extents half. Degenerate outlines (segments) contribute both faces.
func minkowskiPlanes(verts []cp.Vector, half cp.Vector) []halfPlane {
	planes := make([]halfPlane, 0, len(verts)+4)
	add := func(n cp.Vector) {
		h := support(verts, n) + half.X*math.Abs(n.X) + half.Y*math.Abs(n.Y)
		planes = append(planes, halfPlane{n: n, h: h})
	}
	count := len(verts)
	for i := 0; i < count; i++ {
		e := verts[(i+1)%count].Sub(verts[i])
		if e.LengthSq() == 0 {
			continue
		}
		add(e.ReversePerp().Normalize())
	}
	if count == 2 {
		e := verts[1].Sub(verts[0])
		// end caps of a thin segment
		add(e.Normalize())
		add(e.Normalize().Neg())
	}
	for _, n := range boxNormals {
		add(n)
	}
	return planes
}

// sweepBox casts a box along dir against one convex outline using
// Cyrus-Beck clipping against the Minkowski sum.
func sweepBox(verts []cp.Vector, center, half, dir cp.Vector, dist float64) (Hit, bool) {
	if len(verts) < 2 {
		return Hit{}, false
	}
	planes := minkowskiPlanes(verts, half)

	tEnter, tLeave := math.Inf(-1), math.Inf(1)
	enter := -1
	for i, p := range planes {
		num := p.h - p.n.Dot(center)
		den := p.n.Dot(dir)
		if den == 0 {
			if num < 0 {
				return Hit{}, false
			}
			continue
		}
		t := num / den
		if den < 0 {
			if t > tEnter {
				tEnter, enter = t, i
			}
		} else if t < tLeave {
			tLeave = t
		}
	}
	if enter < 0 || tEnter > tLeave || tEnter > dist || tLeave < 0 {
		return Hit{}, false
	}

	if tEnter < -featureEpsilon {
		// started inside: report the nearest face to leave through
		best := planes[0]
		bestDepth := math.Inf(1)
		for _, p := range planes {
			if depth := p.h - p.n.Dot(center); depth < bestDepth {
				best, bestDepth = p, depth
			}
		}
		return Hit{
			Normal: dir.Neg(),
			Point:  contactPoint(verts, center.Add(best.n.Mult(bestDepth)), half, best.n),
			inside: true,
		}, true
	}
	if tEnter < 0 {
		tEnter = 0
	}

	n := planes[enter].n
	at := center.Add(dir.Mult(tEnter))
	return Hit{
		Normal:   n,
		Point:    contactPoint(verts, at, half, n),
		Distance: tEnter,
	}, true
}

// contactPoint returns the middle of the shared feature between the outline
// (its face along n) and the box centred at at (its face along -n).
func contactPoint(verts []cp.Vector, at, half, n cp.Vector) cp.Vector {
	tangent := n.Perp()
	top := support(verts, n)

	polyMin, polyMax := math.Inf(1), math.Inf(-1)
	for _, v := range verts {
		if n.Dot(v) < top-featureEpsilon*(1+math.Abs(top)) {
			continue
		}
		s := tangent.Dot(v)
		polyMin = math.Min(polyMin, s)
		polyMax = math.Max(polyMax, s)
	}

	corners := [4]cp.Vector{
		{X: at.X + half.X, Y: at.Y - half.Y},
		{X: at.X + half.X, Y: at.Y + half.Y},
		{X: at.X - half.X, Y: at.Y + half.Y},
		{X: at.X - half.X, Y: at.Y - half.Y},
	}
	low := math.Inf(1)
	for _, c := range corners {
		low = math.Min(low, n.Dot(c))
	}
	boxMin, boxMax := math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		if n.Dot(c) > low+featureEpsilon*(1+math.Abs(low)) {
			continue
		}
		s := tangent.Dot(c)
		boxMin = math.Min(boxMin, s)
		boxMax = math.Max(boxMax, s)
	}

	lo, hi := math.Max(polyMin, boxMin), math.Min(polyMax, boxMax)
	if lo > hi {
		// features miss each other: take the polygon end nearest the box
		if polyMax < boxMin {
			lo, hi = polyMax, polyMax
		} else {
			lo, hi = polyMin, polyMin
		}
	}
	mid := (lo + hi) / 2
	return tangent.Mult(mid).Add(n.Mult(top))
}

// boxTouches reports whether the box centred at center touches the outline.
func boxTouches(verts []cp.Vector, center, half cp.Vector) bool {
	if len(verts) < 2 {
		return false
	}
	for _, p := range minkowskiPlanes(verts, half) {
		if p.n.Dot(center) > p.h+featureEpsilon {
			return false
		}
	}
	return true
}
