package main

import (
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformkit/character"
	"github.com/milk9111/platformkit/prefabs"
	"github.com/milk9111/platformkit/sim"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	pixelsPerUnit = 32
	eventLogSize  = 6
)

type Game struct {
	frames int

	sim    *sim.Simulation
	player *character.Character
	input  *EbitenSource

	levelFile     string
	characterFile string
	watcher       *prefabs.Watcher

	debug   bool
	paused  bool
	pauseUI *ebitenui.UI

	camera  cp.Vector
	lastErr error
	log     []string
}

func NewGame(levelFile, characterFile string, debug bool) (*Game, error) {
	g := &Game{
		sim:           sim.New(0),
		input:         NewEbitenSource(DefaultBindings()),
		levelFile:     levelFile,
		characterFile: characterFile,
		debug:         debug,
	}
	g.sim.Observe(g)
	if _, err := g.sim.LoadLevel(levelFile); err != nil {
		return nil, fmt.Errorf("game: load level %s: %w", levelFile, err)
	}
	if err := g.spawn(); err != nil {
		return nil, err
	}
	g.pauseUI = NewPauseUI(g)
	return g, nil
}

// Watch starts hot reload of the files under dir.
func (g *Game) Watch(dir string) {
	w, err := prefabs.NewWatcher(dir)
	if err != nil {
		log.Printf("Game: hot reload disabled: %v", err)
		return
	}
	g.watcher = w
}

func (g *Game) Close() {
	if g.watcher != nil {
		g.watcher.Close()
	}
}

func (g *Game) spawn() error {
	spec, err := prefabs.LoadCharacterSpec(g.characterFile)
	if err != nil {
		return fmt.Errorf("game: load character %s: %w", g.characterFile, err)
	}
	c, err := g.sim.Spawn(spec)
	if err != nil {
		return fmt.Errorf("game: spawn: %w", err)
	}
	if g.player != nil {
		g.sim.Remove(g.player)
	}
	c.SetInput(g.input)
	g.player = c
	g.camera = c.Body.Position()
	return nil
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
	}
	g.reload()

	g.lastErr = g.sim.Frame(1 / float64(ebiten.TPS()))

	target := g.player.Body.Position()
	g.camera = g.camera.Lerp(target, 0.15)
	return nil
}

func (g *Game) restart() {
	if err := g.spawn(); err != nil {
		log.Printf("Game: %v", err)
	}
}

// reload applies file changes reported by the watcher.
func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	respawn := false
	for _, change := range g.watcher.Drain() {
		switch {
		case change.Kind == prefabs.ChangeScript:
			respawn = true
		case change.Name == g.characterFile:
			spec, err := prefabs.LoadCharacterSpec(g.characterFile)
			if err != nil {
				log.Printf("Game: reload %s: %v", change.Name, err)
				continue
			}
			g.player.Reconfigure(spec)
		case change.Name == g.levelFile:
			if _, err := g.sim.LoadLevel(g.levelFile); err != nil {
				log.Printf("Game: reload %s: %v", change.Name, err)
				continue
			}
			respawn = true
		case strings.HasPrefix(change.Name, "flow_"):
			respawn = true
		}
	}
	if respawn {
		g.restart()
	}
}

func (g *Game) Tick(s *sim.Simulation) {}

// Event keeps a short log of the player's events for the HUD.
func (g *Game) Event(c *character.Character, evt character.Event) {
	if c != g.player {
		return
	}
	var line string
	switch evt.Kind {
	case character.EventStateChanged:
		line = fmt.Sprintf("%d %s -> %s", g.frames, evt.From, evt.To)
	case character.EventFlowCycle:
		line = fmt.Sprintf("%d %s: %v", g.frames, evt.Kind, evt.Err)
	default:
		line = fmt.Sprintf("%d %s", g.frames, evt.Kind)
	}
	g.log = append(g.log, line)
	if len(g.log) > eventLogSize {
		g.log = g.log[len(g.log)-eventLogSize:]
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	drawer := newSpaceDrawer(screen, g.camera, pixelsPerUnit)
	cp.DrawSpace(g.sim.World.Space(), drawer)
	g.drawPlayer(screen, drawer)

	ebitenutil.DebugPrint(screen, g.hud())

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) drawPlayer(screen *ebiten.Image, d *spaceDrawer) {
	c := g.player
	pos := c.Body.Position()
	half := c.Body.HalfExtents()
	x, y := d.toScreen(cp.Vector{X: pos.X - half.X, Y: pos.Y + half.Y})
	w, h := float32(half.X*2*d.zoom), float32(half.Y*2*d.zoom)
	vector.FillRect(screen, float32(x), float32(y), w, h, c.Color, false)

	if !g.debug {
		return
	}
	if gc := c.Ground.GroundContact(); gc.Valid() {
		d.line(gc.Point, gc.Point.Add(gc.Normal), colornames.Yellow)
		d.dot(gc.Point, colornames.Red)
	}
	if c.Ground.OnSteepSlope() {
		d.line(pos, pos.Add(c.Ground.SlideVector().Mult(0.1)), colornames.Orange)
	}
	d.line(pos, pos.Add(c.Body.Velocity().Mult(0.1)), color.White)
}

func (g *Game) hud() string {
	c := g.player
	pos, vel := c.Body.Position(), c.Body.Velocity()
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.2f  ticks: %d  dropped: %d\n", ebiten.ActualFPS(), g.sim.Ticks(), g.sim.Dropped())
	fmt.Fprintf(&b, "flow: %s  state: %s (%.2fs)\n", c.Flow(), c.State(), c.StateTime())
	fmt.Fprintf(&b, "pos: (%.2f, %.2f)  vel: (%.2f, %.2f)\n", pos.X, pos.Y, vel.X, vel.Y)
	fmt.Fprintf(&b, "on_ground: %t  steep: %t  ignoring: %d  air jumps: %d/%d\n",
		c.Ground.OnGround(), c.Ground.OnSteepSlope(), c.Ground.IgnoredCount(), c.Jump.CurAirJumpCount, c.Jump.AirJumpCount)
	if g.lastErr != nil {
		fmt.Fprintf(&b, "error: %v\n", g.lastErr)
	}
	if g.debug {
		b.WriteString("\n")
		b.WriteString(strings.Join(g.log, "\n"))
	}
	return b.String()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return baseWidth, baseHeight
}
