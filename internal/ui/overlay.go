//go:build ebiten

package ui

import (
	"image/color"

	"lifegrid/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// minGridLineCell is the smallest cell size at which grid lines are drawn.
const minGridLineCell = 6

// Overlay draws optional visuals on top of the grid: cell grid lines and a
// highlight under the cursor.
type Overlay struct {
	showGrid   bool
	showCursor bool
	pixel      *ebiten.Image
}

// NewOverlay constructs an overlay with the cursor highlight enabled.
func NewOverlay() *Overlay {
	o := &Overlay{showCursor: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles grid lines (O) and the cursor highlight (C).
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		o.showGrid = !o.showGrid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		o.showCursor = !o.showCursor
	}
}

// Draw renders the enabled visuals for the window vp shows.
func (o *Overlay) Draw(screen *ebiten.Image, vp *render.Viewport) {
	if o.showGrid && vp.CellSize >= minGridLineCell {
		o.drawGridLines(screen, vp)
	}
	if o.showCursor {
		mx, my := ebiten.CursorPosition()
		if _, ok := vp.ScreenToGrid(mx, my); ok {
			cs := vp.CellSize
			x, y := (mx/cs)*cs, (my/cs)*cs
			o.fillRect(screen, float64(x), float64(y), float64(cs), float64(cs), color.RGBA{R: 80, G: 160, B: 255, A: 96})
		}
	}
}

func (o *Overlay) drawGridLines(screen *ebiten.Image, vp *render.Viewport) {
	line := color.RGBA{R: 48, G: 48, B: 56, A: 255}
	cs := vp.CellSize
	for c := 0; c <= vp.Cols(); c++ {
		o.fillRect(screen, float64(c*cs), 0, 1, float64(vp.Height), line)
	}
	for r := 0; r <= vp.Rows(); r++ {
		o.fillRect(screen, 0, float64(r*cs), float64(vp.Width), 1, line)
	}
}

func (o *Overlay) fillRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}
