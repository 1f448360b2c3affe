package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"lifegrid/pkg/core"
)

// fillViewportRGBA converts the visible window of binary cell data (0/1) into
// RGBA pixels in buf, one pixel per cell. buf must hold 4*Cols*Rows bytes.
// Cells outside the grid are painted dead.
func fillViewportRGBA(buf []byte, cells []uint8, grid core.Size, vp *Viewport, alive, dead color.Color) {
	rOn, gOn, bOn, aOn := alive.RGBA()
	rOff, gOff, bOff, aOff := dead.RGBA()
	cols, rows := vp.Cols(), vp.Rows()
	for r := 0; r < rows; r++ {
		gy := vp.Offset.Y + r
		for c := 0; c < cols; c++ {
			gx := vp.Offset.X + c
			base := (r*cols + c) * 4
			on := grid.Contains(core.Coord{X: gx, Y: gy}) && cells[gy*grid.W+gx] != 0
			if on {
				buf[base+0] = uint8(rOn >> 8)
				buf[base+1] = uint8(gOn >> 8)
				buf[base+2] = uint8(bOn >> 8)
				buf[base+3] = uint8(aOn >> 8)
				continue
			}
			buf[base+0] = uint8(rOff >> 8)
			buf[base+1] = uint8(gOff >> 8)
			buf[base+2] = uint8(bOff >> 8)
			buf[base+3] = uint8(aOff >> 8)
		}
	}
}

// ParseColor decodes "#rrggbb" or "#rgb" (the leading '#' is optional) into
// an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
