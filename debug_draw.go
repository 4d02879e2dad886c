package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/physics"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 0.15
)

// spaceDrawer renders a cp space in world units with y up, centred on camera.
type spaceDrawer struct {
	screen *ebiten.Image
	camera cp.Vector
	zoom   float64
}

func newSpaceDrawer(screen *ebiten.Image, camera cp.Vector, zoom float64) *spaceDrawer {
	return &spaceDrawer{screen: screen, camera: camera, zoom: zoom}
}

func (d *spaceDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.polygon(circlePoints(pos, radius), toNRGBA(outline))
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.line(pos, end, toNRGBA(outline))
}

func (d *spaceDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, toNRGBA(fill))
}

func (d *spaceDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, toNRGBA(outline))
	if radius > 0 {
		d.polygon(circlePoints(a, radius), toNRGBA(outline))
		d.polygon(circlePoints(b, radius), toNRGBA(outline))
	}
}

func (d *spaceDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.polygon(verts[:count], toNRGBA(fill))
}

func (d *spaceDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	d.dot(pos, toNRGBA(fill))
}

func (d *spaceDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *spaceDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

// ShapeColor tells terrain layers apart.
func (d *spaceDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	switch physics.LayerOf(shape) {
	case physics.LayerOneWay:
		return cp.FColor{R: 0.3, G: 0.8, B: 1, A: 1}
	case physics.LayerCharacter:
		return cp.FColor{R: 1, G: 1, B: 1, A: 0.6}
	default:
		return cp.FColor{R: 0.55, G: 0.55, B: 0.6, A: 1}
	}
}

func (d *spaceDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *spaceDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *spaceDrawer) Data() interface{} {
	return nil
}

func (d *spaceDrawer) toScreen(v cp.Vector) (float64, float64) {
	return (v.X-d.camera.X)*d.zoom + baseWidth/2, baseHeight/2 - (v.Y-d.camera.Y)*d.zoom
}

func (d *spaceDrawer) line(a, b cp.Vector, clr color.Color) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, clr, true)
}

func (d *spaceDrawer) polygon(verts []cp.Vector, clr color.Color) {
	for i := range verts {
		d.line(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *spaceDrawer) dot(pos cp.Vector, clr color.Color) {
	half := debugDotSize / 2
	d.line(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, clr)
	d.line(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, clr)
}

func circlePoints(center cp.Vector, radius float64) []cp.Vector {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	return points
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
