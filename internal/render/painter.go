//go:build ebiten

package render

import (
	"image/color"

	"lifegrid/pkg/core"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter draws the visible window of a grid through a one-pixel-per-cell
// image scaled up to the viewport cell size.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter returns an empty painter; buffers are sized on first Blit.
func NewGridPainter() *GridPainter { return &GridPainter{} }

func (gp *GridPainter) ensure(w, h int) {
	if gp.img != nil && gp.w == w && gp.h == h {
		return
	}
	if gp.img != nil {
		gp.img.Dispose()
	}
	gp.w, gp.h = w, h
	gp.buf = make([]byte, 4*w*h)
	gp.img = ebiten.NewImage(w, h)
}

// Blit uploads the visible cells into the painter image and draws it.
func (gp *GridPainter) Blit(dst *ebiten.Image, cells []uint8, grid core.Size, vp *Viewport, alive, dead color.Color) {
	if len(cells) != grid.W*grid.H {
		return
	}
	cols, rows := vp.Cols(), vp.Rows()
	if cols <= 0 || rows <= 0 {
		return
	}
	gp.ensure(cols, rows)
	fillViewportRGBA(gp.buf, cells, grid, vp, alive, dead)
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(vp.CellSize), float64(vp.CellSize))
	dst.DrawImage(gp.img, op)
}
