package motion

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/common"
	"github.com/milk9111/platformkit/input"
	"github.com/milk9111/platformkit/physics"
)

// thresholdSlack absorbs rounding when comparing a contact point to the
// bottom of the collider.
const thresholdSlack = 1e-6

// GroundContact is the surface a GroundDetector is standing on.
type GroundContact struct {
	Shape  *cp.Shape
	Owner  any
	Normal cp.Vector
	Point  cp.Vector
}

// Valid reports whether the contact refers to a collider.
func (g GroundContact) Valid() bool {
	return g.Shape != nil
}

type boxCast struct {
	center cp.Vector
	size   cp.Vector
	dir    cp.Vector
	dist   float64
}

// GroundDetector classifies the contact between a box body and the terrain
// below it, snaps the body onto walkable ground and tracks one-way platforms
// the body is passing through.
type GroundDetector struct {
	body *physics.Body
	q    physics.Queryer
	cfg  DetectionConfig

	prevPos  cp.Vector
	hits     []physics.Hit
	overlaps []*cp.Shape
	ignored  map[*cp.Shape]struct{}

	contact     GroundContact
	onGround    bool
	onSteep     bool
	slide       cp.Vector
	fallThrough bool
}

// NewGroundDetector returns a detector already initialised for body.
func NewGroundDetector(body *physics.Body, cfg DetectionConfig) *GroundDetector {
	d := &GroundDetector{}
	d.Init(body, cfg)
	return d
}

// Init clamps cfg, allocates the hit buffer and applies the inner gap to body.
func (d *GroundDetector) Init(body *physics.Body, cfg DetectionConfig) {
	if d == nil {
		return
	}
	d.body = body
	d.q = body.World()
	d.cfg = cfg.Clamped()
	d.hits = make([]physics.Hit, d.cfg.MaxDetectCount)
	d.overlaps = d.overlaps[:0]
	d.ignored = make(map[*cp.Shape]struct{})
	d.fallThrough = false
	d.prevPos = body.Position()
	body.SetInnerGap(d.cfg.InnerGap)
	d.ResetData()
}

// Config returns the clamped configuration in use.
func (d *GroundDetector) Config() DetectionConfig {
	if d == nil {
		return DetectionConfig{}
	}
	return d.cfg
}

func (d *GroundDetector) Body() *physics.Body {
	if d == nil {
		return nil
	}
	return d.body
}

func (d *GroundDetector) OnGround() bool {
	return d != nil && d.onGround
}

func (d *GroundDetector) OnSteepSlope() bool {
	return d != nil && d.onSteep
}

func (d *GroundDetector) GroundContact() GroundContact {
	if d == nil {
		return GroundContact{}
	}
	return d.contact
}

func (d *GroundDetector) SlideVector() cp.Vector {
	if d == nil {
		return cp.Vector{}
	}
	return d.slide
}

// FallThroughRequested reports whether a fall-through is latched for the next FallThrough call.
func (d *GroundDetector) FallThroughRequested() bool {
	return d != nil && d.fallThrough
}

// IsIgnoring reports whether shape is in the pass-through set.
func (d *GroundDetector) IsIgnoring(shape *cp.Shape) bool {
	if d == nil {
		return false
	}
	_, ok := d.ignored[shape]
	return ok
}

// IgnoredCount returns the size of the pass-through set.
func (d *GroundDetector) IgnoredCount() int {
	if d == nil {
		return 0
	}
	return len(d.ignored)
}

// ResetData drops the ground contact. The inner gap stays applied.
func (d *GroundDetector) ResetData() {
	if d == nil {
		return
	}
	d.contact = GroundContact{}
	d.onGround = false
	d.onSteep = false
	d.slide = cp.Vector{}
	for i := range d.hits {
		d.hits[i] = physics.Hit{}
	}
	d.prevPos = d.body.Position()
}

// GetInputFallThrough latches a fall-through when key goes down this frame.
func (d *GroundDetector) GetInputFallThrough(src input.Source, key input.Action) {
	if d == nil || src == nil {
		return
	}
	if src.JustPressed(key) {
		d.fallThrough = true
	}
}

// FallThrough restores collision with ignored one-way platforms the body has
// left and consumes a latched fall-through request.
func (d *GroundDetector) FallThrough() {
	if d == nil || d.body == nil {
		return
	}
	d.overlaps = d.q.OverlapBox(d.body.Position(), d.body.Size(), d.cfg.OneWayMask, d.overlaps[:0])

	for shape := range d.ignored {
		if !containsShape(d.overlaps, shape) {
			d.setIgnored(shape, false)
		}
	}

	if !d.fallThrough {
		return
	}
	d.fallThrough = false
	if !d.onGround {
		return
	}
	for _, shape := range d.overlaps {
		d.setIgnored(shape, true)
	}
}

// DetectGround runs one detection pass. With active false it only resets.
// gravityAccel and maxFallSpeed feed the slide vector on steep slopes.
func (d *GroundDetector) DetectGround(active bool, gravityAccel, maxFallSpeed float64) {
	if d == nil || d.body == nil {
		return
	}
	if !active {
		d.ResetData()
		return
	}

	offset := d.cfg.ContactOffset
	pos := d.body.Position()
	vel := d.body.Velocity()
	size := d.body.Size().Add(cp.Vector{X: offset, Y: offset})
	half := size.Mult(0.5)
	bodyHalf := d.body.HalfExtents()

	delta := pos.Sub(d.prevPos)
	distX, distY := math.Abs(delta.X), math.Abs(delta.Y)
	back := cp.Vector{X: -common.Sign(delta.X)}
	threshold := pos.Y - half.Y + d.cfg.InnerGap + thresholdSlack

	var best physics.Hit
	found := false

	if distX != 0 {
		// box stretched below the body and swept back along the path, for
		// slopes dropping away faster than the body moved down
		downDist := math.Max(math.Abs(vel.Y*d.cfg.FixedDelta), offset)
		d.castHighest(boxCast{
			center: cp.Vector{X: pos.X, Y: pos.Y - downDist/2},
			size:   cp.Vector{X: size.X, Y: size.Y + downDist},
			dir:    back,
			dist:   distX + offset,
		}, threshold, vel, &best, &found)
	}

	straight := d.cfg.InnerGap + d.cfg.SnapLength
	if d.onGround {
		if delta.Y > 0 {
			straight += distY
		}
	} else if delta.Y < 0 {
		straight += distY
	}
	d.castHighest(boxCast{
		center: cp.Vector{X: pos.X, Y: pos.Y + d.cfg.InnerGap},
		size:   size,
		dir:    common.Down,
		dist:   straight,
	}, threshold, vel, &best, &found)

	if d.onGround && !found && delta.Y > 0 && distX != 0 {
		// crossed a crest: sweep back from the previous height
		d.castHighest(boxCast{
			center: cp.Vector{X: pos.X, Y: d.prevPos.Y},
			size:   size,
			dir:    back,
			dist:   distX,
		}, threshold, vel, &best, &found)
	}

	if !found {
		d.ResetData()
		return
	}

	normal := best.Normal
	if normal.X != 0 && normal.Y > 0 && d.inValley(pos, half) {
		normal = common.Up
	}

	d.contact = GroundContact{
		Shape:  best.Shape,
		Owner:  best.Owner(),
		Normal: normal,
		Point:  best.Point,
	}
	d.onGround = true

	snapped := cp.Vector{X: pos.X, Y: best.Point.Y + bodyHalf.Y}
	if distX != 0 && normal.X != 0 {
		snapped.X = best.Point.X + bodyHalf.X*common.Sign(normal.X)
	}
	d.body.SetPosition(snapped)

	d.onSteep = false
	d.slide = cp.Vector{}
	if normal.X != 0 {
		angle := common.SurfaceAngle(normal)
		if angle > d.cfg.MaxWalkAngle && !common.Approximately(angle, d.cfg.MaxWalkAngle) {
			d.onSteep = true
			var along cp.Vector
			if normal.X > 0 {
				along = common.CrossForward(normal)
			} else {
				along = common.CrossBack(normal)
			}
			speed := math.Max(vel.Y+gravityAccel*d.cfg.FixedDelta, maxFallSpeed)
			d.slide = along.Normalize().Mult(speed)
		}
	}

	d.prevPos = d.body.Position()
}

// castHighest runs c and keeps the highest qualifying hit in best.
func (d *GroundDetector) castHighest(c boxCast, threshold float64, vel cp.Vector, best *physics.Hit, found *bool) {
	n := d.q.BoxCast(c.center, c.size, c.dir, c.dist, d.cfg.GroundMask(), d.hits)
	for _, hit := range d.hits[:n] {
		if d.IsIgnoring(hit.Shape) {
			continue
		}
		if hit.Normal.Y <= 0 {
			continue
		}
		if physics.LayerOf(hit.Shape)&d.cfg.OneWayMask != 0 {
			if hit.Point.Y > threshold {
				if !d.onGround {
					d.setIgnored(hit.Shape, true)
				}
				continue
			}
			if vel.Y > 0 {
				continue
			}
		} else if hit.Point.Y > threshold {
			continue
		}
		if !*found || hit.Point.Y >= best.Point.Y {
			*best = hit
			*found = true
		}
	}
}

// inValley reports whether both bottom corners rest on ground, which happens
// when the body straddles two slopes facing each other.
func (d *GroundDetector) inValley(pos, half cp.Vector) bool {
	mask := d.cfg.GroundMask()
	for _, side := range [2]float64{-1, 1} {
		origin := cp.Vector{X: pos.X + half.X*side, Y: pos.Y}
		hit, ok := d.q.Raycast(origin, common.Down, half.Y, mask)
		if !ok || d.IsIgnoring(hit.Shape) {
			return false
		}
	}
	return true
}

func (d *GroundDetector) setIgnored(shape *cp.Shape, ignore bool) {
	if shape == nil {
		return
	}
	if ignore {
		if _, ok := d.ignored[shape]; ok {
			return
		}
		d.ignored[shape] = struct{}{}
	} else {
		delete(d.ignored, shape)
	}
	d.q.IgnoreCollision(d.body.OneWay(), shape, ignore)
}

func containsShape(shapes []*cp.Shape, shape *cp.Shape) bool {
	for _, s := range shapes {
		if s == shape {
			return true
		}
	}
	return false
}
