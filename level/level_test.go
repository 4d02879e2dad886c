package level

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		rows []string
	}{
		{"no_rows", nil},
		{"blank_rows", []string{"", ""}},
		{"unknown_glyph", []string{"..x.", "####"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse(c.rows, 1)
			require.Error(t, err)
			if c.name != "unknown_glyph" {
				assert.ErrorIs(t, err, ErrEmptyLevel)
			}
		})
	}
}

func TestParseTilesAndSpawn(t *testing.T) {
	lvl, err := Parse([]string{
		"......",
		"..==..",
		"P.....",
		"######",
		"####",
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, 6, lvl.Width)
	assert.Equal(t, 5, lvl.Height)
	assert.Equal(t, TileOneWay, lvl.TileAt(2, 1))
	assert.Equal(t, TileSolid, lvl.TileAt(0, 4))
	assert.Equal(t, TileEmpty, lvl.TileAt(5, 4))
	assert.Equal(t, TileEmpty, lvl.TileAt(-1, 0))
	assert.Equal(t, cp.Vector{X: 0.5, Y: 2}, lvl.Spawn())
	assert.Equal(t, cp.BB{L: 2, B: 3, R: 3, T: 4}, lvl.TileBB(2, 1))
}

func TestBuildMergesRuns(t *testing.T) {
	lvl, err := Parse([]string{
		"......",
		"..==..",
		"......",
		"######",
		"######",
	}, 1)
	require.NoError(t, err)

	w := physics.NewWorld()
	shapes := lvl.Build(w)
	require.Len(t, shapes, 2)

	solid := shapes[0].UserData.(*Block)
	assert.Equal(t, TileSolid, solid.Tile)
	assert.Equal(t, cp.BB{L: 0, B: 0, R: 6, T: 2}, solid.Bounds)
	assert.Equal(t, physics.LayerSolid, physics.LayerOf(shapes[0]))

	platform := shapes[1].UserData.(*Block)
	assert.Equal(t, TileOneWay, platform.Tile)
	assert.InDelta(t, 4, platform.Bounds.T, 1e-12)
	assert.InDelta(t, 3.75, platform.Bounds.B, 1e-12)
	assert.Equal(t, physics.LayerOneWay, physics.LayerOf(shapes[1]))

	hit, ok := w.Raycast(cp.Vector{X: 3, Y: 10}, cp.Vector{Y: -1}, 20, physics.LayerSolid|physics.LayerOneWay)
	require.True(t, ok)
	assert.InDelta(t, 4, hit.Point.Y, 1e-6)
}

func TestBuildSlopes(t *testing.T) {
	lvl, err := Parse([]string{
		"./\\.",
		"####",
	}, 1)
	require.NoError(t, err)

	w := physics.NewWorld()
	require.Len(t, lvl.Build(w), 3)

	cases := []struct {
		name string
		x    float64
		want float64
	}{
		{"rising_right", 1.75, 1.75},
		{"rising_left", 2.25, 1.75},
		{"flat", 0.5, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			hit, ok := w.Raycast(cp.Vector{X: c.x, Y: 5}, cp.Vector{Y: -1}, 10, physics.LayerSolid)
			require.True(t, ok)
			assert.InDelta(t, c.want, hit.Point.Y, 1e-6)
		})
	}
}

func TestRebuildReplacesShapes(t *testing.T) {
	lvl, err := Parse([]string{"=..", "###"}, 2)
	require.NoError(t, err)

	w := physics.NewWorld()
	first := lvl.Build(w)
	second := lvl.Build(w)
	assert.Len(t, second, len(first))

	hits := w.OverlapBox(cp.Vector{X: 1, Y: 3.75}, cp.Vector{X: 1, Y: 0.5}, physics.LayerOneWay, nil)
	assert.Len(t, hits, 1)

	lvl.Remove()
	assert.Empty(t, lvl.Shapes())
	_, ok := w.Raycast(cp.Vector{X: 1, Y: 10}, cp.Vector{Y: -1}, 20, physics.LayerAll)
	assert.False(t, ok)
}
