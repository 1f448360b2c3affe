//go:build ebiten

package app

import (
	"image/color"
	"log/slog"

	"lifegrid/internal/render"
	"lifegrid/internal/ui"
	pcore "lifegrid/pkg/core"
	"lifegrid/pkg/sims/life"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// HUDWidth is the width of the parameter panel in pixels.
const HUDWidth = 240

var helpLines = []string{
	"Space run/pause  N step",
	"R reset  1-4 rule",
	"G glider  U gun  F f-pent",
	"X random fill",
	"Arrows pan  +/- zoom",
	"S save  L load  Q quit",
	"O grid  C cursor",
}

// Game adapts a Controller to the ebiten.Game interface.
type Game struct {
	ctrl    *Controller
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	vp      *render.Viewport

	cells    []uint8
	onColor  color.Color
	offColor color.Color
	savePath string
	logger   *slog.Logger
}

// New constructs a Game around ctrl with the display settings from cfg.
func New(ctrl *Controller, cfg *Config, logger *slog.Logger) (*Game, error) {
	on, err := render.ParseColor(cfg.AliveColor)
	if err != nil {
		return nil, err
	}
	off, err := render.ParseColor(cfg.DeadColor)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	size := ctrl.Sim().Size()
	return &Game{
		ctrl:     ctrl,
		painter:  render.NewGridPainter(),
		hud:      ui.NewHUD(ctrl, HUDWidth, "Life Controls", helpLines),
		overlay:  ui.NewOverlay(),
		vp:       render.NewViewport(size.W*cfg.CellSize, size.H*cfg.CellSize, cfg.CellSize),
		onColor:  on,
		offColor: off,
		savePath: cfg.SavePath,
		logger:   logger,
	}, nil
}

// WindowSize suggests an initial window size that fits the grid, capped to
// maxW×maxH.
func (g *Game) WindowSize(maxW, maxH int) (int, int) {
	w := min(g.vp.Width, maxW) + g.hud.Width()
	h := min(g.vp.Height, maxH)
	return w, h
}

// Update handles input for one frame. The simulation itself advances on the
// controller's scheduler, not here.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	grid := g.ctrl.Sim().Size()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.ctrl.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.ctrl.StepOnce()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.ctrl.Reset()
	}
	for i, key := range []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4} {
		if inpututil.IsKeyJustPressed(key) {
			g.ctrl.SelectRule(i)
		}
	}
	for key, kind := range map[ebiten.Key]life.Structure{
		ebiten.KeyG: life.Glider,
		ebiten.KeyU: life.GliderGun,
		ebiten.KeyF: life.FPentomino,
	} {
		if inpututil.IsKeyJustPressed(key) {
			if at, ok := g.cursorCell(); ok {
				g.ctrl.Stamp(kind, at)
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.ctrl.Randomize(g.vp.Offset, g.vp.Extent())
	}

	g.handleViewportKeys(grid)

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.ctrl.SaveFile(g.savePath); err != nil {
			g.logger.Error("Save failed.", "path", g.savePath, "error", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		if _, err := g.ctrl.LoadFile(g.savePath); err != nil {
			g.logger.Error("Load failed.", "path", g.savePath, "error", err)
		}
	}

	g.overlay.Update()
	consumed := g.hud.Update(g.vp.Width)
	if !consumed && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if at, ok := g.cursorCell(); ok {
			g.ctrl.ToggleCell(at)
		}
	}
	return nil
}

func (g *Game) handleViewportKeys(grid pcore.Size) {
	step := max(1, g.vp.Cols()/8)
	pans := map[ebiten.Key]pcore.Coord{
		ebiten.KeyArrowLeft:  {X: -step},
		ebiten.KeyArrowRight: {X: step},
		ebiten.KeyArrowUp:    {Y: -step},
		ebiten.KeyArrowDown:  {Y: step},
	}
	for key, d := range pans {
		if inpututil.IsKeyJustPressed(key) || inpututil.KeyPressDuration(key) > 20 {
			g.vp.Pan(d.X, d.Y, grid)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.vp.Zoom(1, grid)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.vp.Zoom(-1, grid)
	}
	if _, wy := ebiten.Wheel(); wy > 0 {
		g.vp.Zoom(1, grid)
	} else if wy < 0 {
		g.vp.Zoom(-1, grid)
	}
}

func (g *Game) cursorCell() (pcore.Coord, bool) {
	mx, my := ebiten.CursorPosition()
	return g.vp.ScreenToGrid(mx, my)
}

// Draw renders the visible window of the grid, the overlay, and the HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	sim := g.ctrl.Sim()
	g.cells = sim.Snapshot(g.cells)
	g.painter.Blit(screen, g.cells, sim.Size(), g.vp, g.onColor, g.offColor)
	g.overlay.Draw(screen, g.vp)
	g.hud.Draw(screen, g.vp.Width)
}

// Layout gives the grid view everything left of the HUD panel.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.vp.Resize(max(outsideWidth-g.hud.Width(), 1), outsideHeight, g.ctrl.Sim().Size())
	return outsideWidth, outsideHeight
}
