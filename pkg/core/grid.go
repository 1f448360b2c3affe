package core

// Coord addresses a single cell. X grows to the right, Y grows downwards.
type Coord struct {
	X, Y int
}

// Add returns the component-wise sum of c and o.
func (c Coord) Add(o Coord) Coord { return Coord{X: c.X + o.X, Y: c.Y + o.Y} }

// Size describes the dimensions of a grid or a region of one.
type Size struct {
	W int
	H int
}

// Contains reports whether c lies inside [0,W)x[0,H).
func (s Size) Contains(c Coord) bool {
	return c.X >= 0 && c.X < s.W && c.Y >= 0 && c.Y < s.H
}

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// In reports whether (x, y) addresses a cell of the grid.
func (g *ByteGrid) In(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}
