package render

import "lifegrid/pkg/core"

// Cell size bounds in pixels.
const (
	MinCellSize = 1
	MaxCellSize = 32
)

// Viewport maps a window of the fixed grid onto the screen. Offset is the grid
// cell drawn at the top-left corner; each cell covers CellSize×CellSize pixels.
type Viewport struct {
	Offset   core.Coord
	CellSize int
	Width    int // screen pixels
	Height   int // screen pixels
}

// NewViewport returns a viewport anchored at the grid origin.
func NewViewport(width, height, cellSize int) *Viewport {
	return &Viewport{Width: width, Height: height, CellSize: clampCell(cellSize)}
}

func clampCell(size int) int {
	if size < MinCellSize {
		return MinCellSize
	}
	if size > MaxCellSize {
		return MaxCellSize
	}
	return size
}

// Cols returns the number of grid columns touched by the screen, counting a
// partially visible one.
func (v *Viewport) Cols() int { return (v.Width + v.CellSize - 1) / v.CellSize }

// Rows returns the number of grid rows touched by the screen.
func (v *Viewport) Rows() int { return (v.Height + v.CellSize - 1) / v.CellSize }

// Extent returns the visible region size in cells.
func (v *Viewport) Extent() core.Size { return core.Size{W: v.Cols(), H: v.Rows()} }

// ScreenToGrid converts a screen pixel to the grid coordinate under it. It
// reports false for pixels outside the viewport. The coordinate may still lie
// outside the grid; the engine ignores such writes.
func (v *Viewport) ScreenToGrid(px, py int) (core.Coord, bool) {
	if px < 0 || py < 0 || px >= v.Width || py >= v.Height {
		return core.Coord{}, false
	}
	return v.Offset.Add(core.Coord{X: px / v.CellSize, Y: py / v.CellSize}), true
}

// Pan moves the viewport by (dx, dy) cells, keeping it inside the grid.
func (v *Viewport) Pan(dx, dy int, grid core.Size) {
	v.Offset = v.Offset.Add(core.Coord{X: dx, Y: dy})
	v.clamp(grid)
}

// Zoom changes the cell size by delta pixels around the viewport center.
func (v *Viewport) Zoom(delta int, grid core.Size) {
	next := clampCell(v.CellSize + delta)
	if next == v.CellSize {
		return
	}
	center := v.Offset.Add(core.Coord{X: v.Cols() / 2, Y: v.Rows() / 2})
	v.CellSize = next
	v.Offset = core.Coord{X: center.X - v.Cols()/2, Y: center.Y - v.Rows()/2}
	v.clamp(grid)
}

// Resize updates the screen dimensions.
func (v *Viewport) Resize(width, height int, grid core.Size) {
	v.Width, v.Height = width, height
	v.clamp(grid)
}

func (v *Viewport) clamp(grid core.Size) {
	maxX := grid.W - v.Width/v.CellSize
	maxY := grid.H - v.Height/v.CellSize
	if v.Offset.X > maxX {
		v.Offset.X = maxX
	}
	if v.Offset.Y > maxY {
		v.Offset.Y = maxY
	}
	if v.Offset.X < 0 {
		v.Offset.X = 0
	}
	if v.Offset.Y < 0 {
		v.Offset.Y = 0
	}
}
