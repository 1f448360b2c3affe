package life

import (
	"fmt"
	"strings"

	"lifegrid/pkg/core"
)

// Structure identifies a preset pattern that can be stamped into the grid.
type Structure int

const (
	Glider Structure = iota
	GliderGun
	FPentomino
)

var structureNames = map[Structure]string{
	Glider:     "glider",
	GliderGun:  "glider-gun",
	FPentomino: "f-pentomino",
}

func (s Structure) String() string {
	if name, ok := structureNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Structure(%d)", int(s))
}

// Structures lists the presets in menu order.
func Structures() []Structure { return []Structure{Glider, GliderGun, FPentomino} }

// ParseStructure resolves a structure by name.
func ParseStructure(name string) (Structure, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range structureNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown structure %q", name)
}

// Offsets returns the live cells of the pattern relative to its top-left corner.
func (s Structure) Offsets() []core.Coord {
	src, ok := structureCells[s]
	if !ok {
		return nil
	}
	return append([]core.Coord(nil), src...)
}

// The glider travels one cell towards +X and +Y every four generations.
var structureCells = map[Structure][]core.Coord{
	Glider: {
		{X: 1, Y: 0},
		{X: 2, Y: 1},
		{X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2},
	},
	// Gosper glider gun, period 30.
	GliderGun: {
		{X: 24, Y: 0},
		{X: 22, Y: 1}, {X: 24, Y: 1},
		{X: 12, Y: 2}, {X: 13, Y: 2}, {X: 20, Y: 2}, {X: 21, Y: 2}, {X: 34, Y: 2}, {X: 35, Y: 2},
		{X: 11, Y: 3}, {X: 15, Y: 3}, {X: 20, Y: 3}, {X: 21, Y: 3}, {X: 34, Y: 3}, {X: 35, Y: 3},
		{X: 0, Y: 4}, {X: 1, Y: 4}, {X: 10, Y: 4}, {X: 16, Y: 4}, {X: 20, Y: 4}, {X: 21, Y: 4},
		{X: 0, Y: 5}, {X: 1, Y: 5}, {X: 10, Y: 5}, {X: 14, Y: 5}, {X: 16, Y: 5}, {X: 17, Y: 5}, {X: 22, Y: 5}, {X: 24, Y: 5},
		{X: 10, Y: 6}, {X: 16, Y: 6}, {X: 24, Y: 6},
		{X: 11, Y: 7}, {X: 15, Y: 7},
		{X: 12, Y: 8}, {X: 13, Y: 8},
	},
	FPentomino: {
		{X: 1, Y: 0}, {X: 2, Y: 0},
		{X: 0, Y: 1}, {X: 1, Y: 1},
		{X: 1, Y: 2},
	},
}
