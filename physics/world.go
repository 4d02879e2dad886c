package physics

import (
	"log"

	"github.com/jakecoffman/cp"
)

const (
	// DefaultSkin is the gap left between a swept character and the surface it stops at.
	DefaultSkin = 0.01

	oneWayNormalLimit = 0.5
	sweepBufferSize   = 8
)

type shapePair struct {
	a, b *cp.Shape
}

func makePair(a, b *cp.Shape) shapePair {
	if a.HashId() > b.HashId() {
		a, b = b, a
	}
	return shapePair{a: a, b: b}
}

// World owns the Chipmunk space, the static terrain shapes and the character
// bodies living in it.
type World struct {
	space         *cp.Space
	handlersReady bool

	bodies  []*Body
	ignored map[shapePair]struct{}

	// Skin is kept between a swept body and the first surface on its path.
	Skin float64

	sweepHits []Hit
	verts     []cp.Vector
}

// NewWorld creates an empty world with zero gravity; characters drive their
// own velocity every physics tick.
func NewWorld() *World {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	space.SetCollisionSlop(0.001)

	w := &World{
		space:     space,
		ignored:   make(map[shapePair]struct{}),
		Skin:      DefaultSkin,
		sweepHits: make([]Hit, sweepBufferSize),
	}
	w.setupHandlers()
	return w
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

// AddStaticBox adds an axis aligned terrain box on layer.
func (w *World) AddStaticBox(bb cp.BB, layer Layer, owner any) *cp.Shape {
	if w == nil || w.space == nil {
		return nil
	}
	return w.addStatic(cp.NewBox2(w.space.StaticBody, bb, 0), layer, owner)
}

// AddStaticPoly adds a convex terrain polygon on layer. verts may be in either
// winding order.
func (w *World) AddStaticPoly(verts []cp.Vector, layer Layer, owner any) *cp.Shape {
	if w == nil || w.space == nil || len(verts) < 3 {
		return nil
	}
	ccw := make([]cp.Vector, len(verts))
	copy(ccw, verts)
	if signedArea(ccw) < 0 {
		for i, j := 0, len(ccw)-1; i < j; i, j = i+1, j-1 {
			ccw[i], ccw[j] = ccw[j], ccw[i]
		}
	}
	return w.addStatic(cp.NewPolyShapeRaw(w.space.StaticBody, len(ccw), ccw, 0), layer, owner)
}

// AddStaticSegment adds a terrain segment with the given thickness radius.
func (w *World) AddStaticSegment(a, b cp.Vector, radius float64, layer Layer, owner any) *cp.Shape {
	if w == nil || w.space == nil {
		return nil
	}
	return w.addStatic(cp.NewSegment(w.space.StaticBody, a, b, radius), layer, owner)
}

func (w *World) addStatic(shape *cp.Shape, layer Layer, owner any) *cp.Shape {
	shape.SetFriction(0)
	shape.Filter = staticFilter(layer)
	if layer.Has(LayerOneWay) {
		shape.SetCollisionType(collisionTypeOneWay)
	} else {
		shape.SetCollisionType(collisionTypeSolid)
	}
	shape.UserData = owner
	w.space.AddShape(shape)
	return shape
}

// RemoveShape removes a static shape and forgets every ignored pair it was part of.
func (w *World) RemoveShape(shape *cp.Shape) {
	if w == nil || w.space == nil || shape == nil {
		return
	}
	for pair := range w.ignored {
		if pair.a == shape || pair.b == shape {
			delete(w.ignored, pair)
		}
	}
	w.space.RemoveShape(shape)
}

// IgnoreCollision toggles contact between a and b.
func (w *World) IgnoreCollision(a, b *cp.Shape, ignore bool) {
	if w == nil || a == nil || b == nil || a == b {
		return
	}
	key := makePair(a, b)
	if ignore {
		w.ignored[key] = struct{}{}
		return
	}
	delete(w.ignored, key)
}

// IsIgnored reports whether contact between a and b is switched off.
func (w *World) IsIgnored(a, b *cp.Shape) bool {
	if w == nil || a == nil || b == nil {
		return false
	}
	_, ok := w.ignored[makePair(a, b)]
	return ok
}

// Bodies returns the bodies added to the world.
func (w *World) Bodies() []*Body {
	if w == nil {
		return nil
	}
	return w.bodies
}

// Step clips swept bodies against the terrain and advances the space.
func (w *World) Step(dt float64) {
	if w == nil || w.space == nil || dt <= 0 {
		return
	}
	for _, b := range w.bodies {
		if b.Sweep {
			w.clipVelocity(b, dt)
		}
	}
	w.space.Step(dt)
}

// Draw renders the space through a Chipmunk debug drawer.
func (w *World) Draw(drawer cp.Drawer) {
	if w == nil || w.space == nil || drawer == nil {
		return
	}
	cp.DrawSpace(w.space, drawer)
}

// clipVelocity removes the part of b's velocity that would carry its collider
// through the first surface on its path this tick.
func (w *World) clipVelocity(b *Body, dt float64) {
	v := b.Velocity()
	move := v.Mult(dt)
	length := move.Length()
	if length < 1e-9 {
		return
	}
	dir := move.Mult(1 / length)

	n := w.BoxCast(b.ColliderCenter(), b.ColliderSize(), dir, length+w.Skin, LayerSolid|LayerOneWay, w.sweepHits)
	for i := 0; i < n; i++ {
		hit := w.sweepHits[i]
		if hit.inside || hit.Normal.Dot(dir) >= 0 {
			continue
		}
		if LayerOf(hit.Shape).Has(LayerOneWay) {
			if hit.Normal.Y < oneWayNormalLimit || w.IsIgnored(b.oneWay, hit.Shape) {
				continue
			}
		}

		allowed := hit.Distance - w.Skin
		if allowed < 0 {
			allowed = 0
		}
		approach := -dir.Dot(hit.Normal)
		vn := v.Dot(hit.Normal)
		limit := -allowed * approach / dt
		if vn < limit {
			b.SetVelocity(v.Add(hit.Normal.Mult(limit - vn)))
		}
		return
	}
}

func (w *World) setupHandlers() {
	if w == nil || w.handlersReady || w.space == nil {
		return
	}

	oneWay := w.space.NewCollisionHandler(collisionTypeCharacterOneWay, collisionTypeOneWay)
	oneWay.UserData = w
	oneWay.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return true
		}
		a, b := arb.Shapes()
		if world.IsIgnored(a, b) {
			return arb.Ignore()
		}
		// the normal points from the character to the platform, so a
		// platform underneath yields a downward normal
		if arb.Normal().Y > -oneWayNormalLimit {
			return arb.Ignore()
		}
		return true
	}

	w.handlersReady = true
	log.Printf("World: collision handlers ready")
}

func signedArea(verts []cp.Vector) float64 {
	area := 0.0
	for i := range verts {
		a := verts[i]
		b := verts[(i+1)%len(verts)]
		area += a.Cross(b)
	}
	return area / 2
}
