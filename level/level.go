package level

import (
	"errors"
	"fmt"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/physics"
	"github.com/milk9111/platformkit/prefabs"
)

var ErrEmptyLevel = errors.New("empty level")

type Tile byte

const (
	TileEmpty Tile = iota
	TileSolid
	TileOneWay
	// TileSlopeUp rises to the right, TileSlopeDown rises to the left.
	TileSlopeUp
	TileSlopeDown
)

// OneWayThickness is the height of a one-way platform as a fraction of a tile.
const OneWayThickness = 0.25

func (t Tile) String() string {
	switch t {
	case TileSolid:
		return "solid"
	case TileOneWay:
		return "one_way"
	case TileSlopeUp:
		return "slope_up"
	case TileSlopeDown:
		return "slope_down"
	default:
		return "empty"
	}
}

// Block is the owner attached to every shape a level adds to a world.
type Block struct {
	Tile   Tile
	Bounds cp.BB
}

// Level is a tile grid read from ASCII rows. Row 0 is the top of the map and
// world y grows upward.
type Level struct {
	Name     string
	Width    int
	Height   int
	TileSize float64

	tiles    []Tile
	spawn    cp.Vector
	hasSpawn bool

	world  *physics.World
	shapes []*cp.Shape
}

// Load reads a level spec through prefabs and parses it.
func Load(filename string) (*Level, error) {
	spec, err := prefabs.LoadLevelSpec(filename)
	if err != nil {
		return nil, err
	}
	lvl, err := Parse(spec.Rows, spec.TileSize)
	if err != nil {
		return nil, fmt.Errorf("level: parse %s: %w", filename, err)
	}
	lvl.Name = spec.Name
	return lvl, nil
}

// Parse builds a level from rows of glyphs:
//
//	#  solid      =  one-way     /  slope rising right
//	\  slope rising left         P  spawn     . or space  empty
func Parse(rows []string, tileSize float64) (*Level, error) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if len(rows) == 0 || width == 0 {
		return nil, ErrEmptyLevel
	}
	if tileSize <= 0 {
		tileSize = 1
	}

	l := &Level{
		Width:    width,
		Height:   len(rows),
		TileSize: tileSize,
		tiles:    make([]Tile, width*len(rows)),
	}
	for y, row := range rows {
		for x, glyph := range []byte(row) {
			switch glyph {
			case '.', ' ':
			case '#':
				l.tiles[y*width+x] = TileSolid
			case '=':
				l.tiles[y*width+x] = TileOneWay
			case '/':
				l.tiles[y*width+x] = TileSlopeUp
			case '\\':
				l.tiles[y*width+x] = TileSlopeDown
			case 'P':
				if l.hasSpawn {
					log.Printf("Level: duplicate spawn at %d,%d ignored", x, y)
					continue
				}
				l.spawn = cp.Vector{X: (float64(x) + 0.5) * tileSize, Y: float64(len(rows)-1-y) * tileSize}
				l.hasSpawn = true
			default:
				return nil, fmt.Errorf("unknown tile %q at %d,%d", glyph, x, y)
			}
		}
	}
	return l, nil
}

// TileAt returns the tile in column x and row y, or TileEmpty out of bounds.
func (l *Level) TileAt(x, y int) Tile {
	if l == nil || x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return TileEmpty
	}
	return l.tiles[y*l.Width+x]
}

// Spawn returns the bottom centre of the spawn cell, or the top centre of the
// map when no spawn glyph is present.
func (l *Level) Spawn() cp.Vector {
	if l == nil {
		return cp.Vector{}
	}
	if l.hasSpawn {
		return l.spawn
	}
	return cp.Vector{X: float64(l.Width) * l.TileSize / 2, Y: float64(l.Height) * l.TileSize}
}

func (l *Level) Bounds() cp.BB {
	if l == nil {
		return cp.BB{}
	}
	return cp.BB{L: 0, B: 0, R: float64(l.Width) * l.TileSize, T: float64(l.Height) * l.TileSize}
}

// TileBB returns the world box of the cell in column x and row y.
func (l *Level) TileBB(x, y int) cp.BB {
	ts := l.TileSize
	bottom := float64(l.Height-1-y) * ts
	return cp.BB{L: float64(x) * ts, B: bottom, R: float64(x+1) * ts, T: bottom + ts}
}

// Shapes returns the shapes added by the last Build.
func (l *Level) Shapes() []*cp.Shape {
	if l == nil {
		return nil
	}
	return l.shapes
}

// Build adds the level's terrain to w, replacing anything a previous Build
// added. Solid and one-way runs are merged into as few boxes as possible.
func (l *Level) Build(w *physics.World) []*cp.Shape {
	if l == nil || w == nil {
		return nil
	}
	l.Remove()
	l.world = w

	for _, bb := range l.mergeRuns(TileSolid) {
		l.add(w.AddStaticBox(bb, physics.LayerSolid, &Block{Tile: TileSolid, Bounds: bb}))
	}
	for _, bb := range l.mergeRuns(TileOneWay) {
		bb.B = bb.T - l.TileSize*OneWayThickness
		l.add(w.AddStaticBox(bb, physics.LayerOneWay, &Block{Tile: TileOneWay, Bounds: bb}))
	}
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			tile := l.TileAt(x, y)
			if tile != TileSlopeUp && tile != TileSlopeDown {
				continue
			}
			bb := l.TileBB(x, y)
			verts := []cp.Vector{{X: bb.L, Y: bb.B}, {X: bb.R, Y: bb.B}, {X: bb.R, Y: bb.T}}
			if tile == TileSlopeDown {
				verts[2] = cp.Vector{X: bb.L, Y: bb.T}
			}
			l.add(w.AddStaticPoly(verts, physics.LayerSolid, &Block{Tile: tile, Bounds: bb}))
		}
	}
	log.Printf("Level: built %q with %d shapes", l.Name, len(l.shapes))
	return l.shapes
}

// Remove takes every shape added by Build out of its world.
func (l *Level) Remove() {
	if l == nil {
		return
	}
	for _, shape := range l.shapes {
		l.world.RemoveShape(shape)
	}
	l.shapes = nil
	l.world = nil
}

func (l *Level) add(shape *cp.Shape) {
	if shape != nil {
		l.shapes = append(l.shapes, shape)
	}
}

// mergeRuns joins horizontal runs of tile, then stacks runs with the same
// span in consecutive rows into a single box.
func (l *Level) mergeRuns(tile Tile) []cp.BB {
	type span struct{ from, to int }
	open := map[span]int{}
	var out []cp.BB

	for y := 0; y < l.Height; y++ {
		next := map[span]int{}
		for x := 0; x < l.Width; {
			if l.TileAt(x, y) != tile {
				x++
				continue
			}
			start := x
			for x < l.Width && l.TileAt(x, y) == tile {
				x++
			}
			s := span{from: start, to: x - 1}
			bottom := l.TileBB(start, y).B
			// one-way platforms never stack
			if i, ok := open[s]; ok && tile != TileOneWay {
				out[i].B = bottom
				next[s] = i
				continue
			}
			out = append(out, cp.BB{L: float64(start) * l.TileSize, B: bottom, R: float64(x) * l.TileSize, T: bottom + l.TileSize})
			next[s] = len(out) - 1
		}
		open = next
	}
	return out
}
