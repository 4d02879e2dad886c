package physics

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
)

// Body is a box character: one dynamic Chipmunk body carrying a solid shape
// that collides with terrain and a one-way shape with the same outline that
// collides with one-way platforms.
type Body struct {
	world  *World
	body   *cp.Body
	solid  *cp.Shape
	oneWay *cp.Shape

	size     cp.Vector
	innerGap float64

	// Sweep clips the body's velocity against terrain before each step.
	Sweep bool
}

// NewBody adds a box of full extents size centred at center to w.
func NewBody(w *World, center, size cp.Vector, owner any) *Body {
	if w == nil || w.space == nil {
		return nil
	}
	size = cp.Vector{X: math.Abs(size.X), Y: math.Abs(size.Y)}

	cpBody := cp.NewBody(1, math.Inf(1))
	cpBody.SetPosition(center)
	cpBody.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
		cp.BodyUpdateVelocity(body, cp.Vector{}, 1, dt)
	})

	solid := cp.NewBox(cpBody, size.X, size.Y, 0)
	solid.SetFriction(0)
	solid.SetCollisionType(collisionTypeCharacter)
	solid.Filter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: uint(LayerCharacter), Mask: uint(LayerSolid)}
	solid.UserData = owner

	oneWay := cp.NewBox(cpBody, size.X, size.Y, 0)
	oneWay.SetFriction(0)
	oneWay.SetCollisionType(collisionTypeCharacterOneWay)
	oneWay.Filter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: uint(LayerCharacter), Mask: uint(LayerOneWay)}
	oneWay.UserData = owner

	w.space.AddBody(cpBody)
	w.space.AddShape(solid)
	w.space.AddShape(oneWay)

	b := &Body{
		world:  w,
		body:   cpBody,
		solid:  solid,
		oneWay: oneWay,
		size:   size,
		Sweep:  true,
	}
	w.bodies = append(w.bodies, b)
	return b
}

// Remove takes the body out of its world.
func (b *Body) Remove() {
	if b == nil || b.world == nil || b.world.space == nil {
		return
	}
	w := b.world
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	for pair := range w.ignored {
		if pair.a == b.oneWay || pair.b == b.oneWay || pair.a == b.solid || pair.b == b.solid {
			delete(w.ignored, pair)
		}
	}
	w.space.RemoveShape(b.solid)
	w.space.RemoveShape(b.oneWay)
	w.space.RemoveBody(b.body)
	b.world = nil
}

func (b *Body) World() *World {
	if b == nil {
		return nil
	}
	return b.world
}

// CP returns the underlying Chipmunk body.
func (b *Body) CP() *cp.Body {
	if b == nil {
		return nil
	}
	return b.body
}

func (b *Body) Solid() *cp.Shape {
	if b == nil {
		return nil
	}
	return b.solid
}

func (b *Body) OneWay() *cp.Shape {
	if b == nil {
		return nil
	}
	return b.oneWay
}

func (b *Body) Position() cp.Vector {
	if b == nil || b.body == nil {
		return cp.Vector{}
	}
	return b.body.Position()
}

func (b *Body) SetPosition(p cp.Vector) {
	if b == nil || b.body == nil {
		return
	}
	b.body.SetPosition(p)
	b.solid.CacheBB()
	b.oneWay.CacheBB()
}

func (b *Body) Velocity() cp.Vector {
	if b == nil || b.body == nil {
		return cp.Vector{}
	}
	return b.body.Velocity()
}

func (b *Body) SetVelocity(v cp.Vector) {
	if b == nil || b.body == nil {
		return
	}
	b.body.SetVelocityVector(v)
}

// Size returns the full, unshrunk extents of the box.
func (b *Body) Size() cp.Vector {
	if b == nil {
		return cp.Vector{}
	}
	return b.size
}

// HalfExtents returns half of Size.
func (b *Body) HalfExtents() cp.Vector {
	return b.Size().Mult(0.5)
}

func (b *Body) InnerGap() float64 {
	if b == nil {
		return 0
	}
	return b.innerGap
}

// ColliderSize returns the extents of the shapes after the inner gap shrink.
func (b *Body) ColliderSize() cp.Vector {
	if b == nil {
		return cp.Vector{}
	}
	return cp.Vector{X: b.size.X, Y: b.size.Y - b.innerGap}
}

// ColliderCenter returns the world centre of the shrunk shapes.
func (b *Body) ColliderCenter() cp.Vector {
	return b.Position().Add(cp.Vector{Y: b.InnerGap() / 2})
}

// SetInnerGap shrinks both shapes by gap along local up, raising the bottom
// edge and keeping the top edge in place. A gap of zero restores the box.
func (b *Body) SetInnerGap(gap float64) {
	if b == nil || b.body == nil {
		return
	}
	if gap < 0 {
		gap = 0
	}
	if gap > b.size.Y {
		log.Printf("Body: inner gap %.3f exceeds height %.3f, clamping", gap, b.size.Y)
		gap = b.size.Y
	}
	b.innerGap = gap

	hw := b.size.X / 2
	hh := b.size.Y / 2
	bb := cp.BB{L: -hw, B: -hh + gap, R: hw, T: hh}
	verts := []cp.Vector{
		{X: bb.R, Y: bb.B},
		{X: bb.R, Y: bb.T},
		{X: bb.L, Y: bb.T},
		{X: bb.L, Y: bb.B},
	}
	for _, shape := range []*cp.Shape{b.solid, b.oneWay} {
		poly, ok := shape.Class.(*cp.PolyShape)
		if !ok {
			continue
		}
		poly.SetVertsRaw(len(verts), verts)
		shape.CacheBB()
	}
}
