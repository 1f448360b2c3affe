package life

import (
	"sync"

	"lifegrid/pkg/core"
)

// State is the value of a single cell.
type State uint8

const (
	Dead State = iota
	Alive
)

func (s State) String() string {
	if s == Alive {
		return "alive"
	}
	return "dead"
}

// Cell is the value returned for a coordinate query.
type Cell struct {
	State State
}

// Alive reports whether the cell is alive.
func (c Cell) Alive() bool { return c.State == Alive }

// Life is a bounded life-like automaton with a selectable rule. Cells outside
// the grid are permanently dead. All methods are safe for concurrent use: a
// single lock serializes writers, and Step commits a whole generation at once.
type Life struct {
	mu sync.RWMutex

	w, h int
	cur  *core.ByteGrid
	nxt  *core.ByteGrid

	rules      []Rule
	rule       int
	generation uint64

	rng *core.RNG
}

// New returns a Life simulation with the provided dimensions using defaults.
func New(w, h int) *Life {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns a Life simulation configured from the provided options.
// An empty rule table falls back to the presets and an out-of-range rule index
// selects the first rule.
func NewWithConfig(cfg Config) *Life {
	rules := append([]Rule(nil), cfg.Rules...)
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	rule := cfg.Rule
	if rule < 0 || rule >= len(rules) {
		rule = 0
	}
	cur := core.NewByteGrid(cfg.Width, cfg.Height)
	return &Life{
		w:     cur.W,
		h:     cur.H,
		cur:   cur,
		nxt:   core.NewByteGrid(cur.W, cur.H),
		rules: rules,
		rule:  rule,
		rng:   core.NewRNG(cfg.Seed),
	}
}

// Name returns the simulation identifier.
func (l *Life) Name() string { return "life" }

// Size returns the grid dimensions.
func (l *Life) Size() core.Size { return core.Size{W: l.w, H: l.h} }

// cellAt is the only place the boundary policy is decided: anything outside
// the grid reads as dead.
func cellAt(g *core.ByteGrid, x, y int) uint8 {
	if !g.In(x, y) {
		return 0
	}
	return g.Cells()[g.Index(x, y)]
}

// Get returns the cell at c. Coordinates outside the grid are dead.
func (l *Life) Get(c core.Coord) Cell {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Cell{State: State(cellAt(l.cur, c.X, c.Y))}
}

// Set writes a single cell. Coordinates outside the grid are ignored.
func (l *Life) Set(c core.Coord, s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setLocked(c, s)
}

func (l *Life) setLocked(c core.Coord, s State) {
	if !l.cur.In(c.X, c.Y) {
		return
	}
	v := uint8(0)
	if s == Alive {
		v = 1
	}
	l.cur.Cells()[l.cur.Index(c.X, c.Y)] = v
}

// Toggle flips the cell at c and returns its new state. Coordinates outside
// the grid are left alone and report Dead.
func (l *Life) Toggle(c core.Coord) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.cur.In(c.X, c.Y) {
		return Dead
	}
	idx := l.cur.Index(c.X, c.Y)
	cells := l.cur.Cells()
	cells[idx] ^= 1
	return State(cells[idx])
}

// Step advances the simulation by one generation under the active rule.
func (l *Life) Step() {
	l.mu.Lock()
	defer l.mu.Unlock()

	rule := l.rules[l.rule]
	w, h := l.w, l.h
	cur := l.cur.Cells()
	nxt := l.nxt.Cells()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					neighbors += int(cellAt(l.cur, x+dx, y+dy))
				}
			}
			idx := y*w + x
			nxt[idx] = 0
			if rule.Next(cur[idx] == 1, neighbors) {
				nxt[idx] = 1
			}
		}
	}
	l.cur, l.nxt = l.nxt, l.cur
	l.generation++
}

// Reset kills every cell. The dimensions and the active rule are kept.
func (l *Life) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cur.Clear()
	l.generation = 0
}

// Initialize kills every cell and then revives the listed coordinates.
// Coordinates outside the grid are dropped.
func (l *Life) Initialize(coords []core.Coord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cur.Clear()
	l.generation = 0
	for _, c := range coords {
		l.setLocked(c, Alive)
	}
}

// AddStructure stamps a preset pattern with its top-left corner at origin.
// Cells that fall outside the grid are dropped.
func (l *Life) AddStructure(kind Structure, origin core.Coord) {
	offsets := structureCells[kind]
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, off := range offsets {
		l.setLocked(origin.Add(off), Alive)
	}
}

// DefaultDensity is the fill probability used by Randomize for invalid input.
const DefaultDensity = 0.5

// Randomize fills the region starting at origin with independent coin flips:
// each cell is alive with probability p. A p outside (0, 1] uses
// DefaultDensity. Parts of the region outside the grid are ignored.
func (l *Life) Randomize(origin core.Coord, size core.Size, p float64) {
	if p <= 0 || p > 1 {
		p = DefaultDensity
	}
	x0, x1 := clipSpan(origin.X, size.W, l.w)
	y0, y1 := clipSpan(origin.Y, size.H, l.h)
	l.mu.Lock()
	defer l.mu.Unlock()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s := Dead
			if l.rng.Chance(p) {
				s = Alive
			}
			l.setLocked(core.Coord{X: x, Y: y}, s)
		}
	}
}

// clipSpan intersects [start, start+n) with [0, limit) without overflowing.
func clipSpan(start, n, limit int) (int, int) {
	if n <= 0 || start >= limit {
		return 0, 0
	}
	if start < 0 {
		if uint(n) <= uint(-start) {
			return 0, 0
		}
		n += start
		start = 0
	}
	if n < limit-start {
		return start, start + n
	}
	return start, limit
}

// SetRule selects the rule used by subsequent steps. It reports false and
// leaves the rule unchanged when index is out of range.
func (l *Life) SetRule(index int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.rules) {
		return false
	}
	l.rule = index
	return true
}

// Rule returns the index of the active rule.
func (l *Life) Rule() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rule
}

// ActiveRule returns the active rule.
func (l *Life) ActiveRule() Rule {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rules[l.rule]
}

// Rules returns a copy of the rule table.
func (l *Life) Rules() []Rule {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Rule(nil), l.rules...)
}

// Generation returns the number of steps since the last Reset or Initialize.
func (l *Life) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generation
}

// Population counts the live cells.
func (l *Life) Population() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, v := range l.cur.Cells() {
		n += int(v)
	}
	return n
}

// Snapshot copies the current generation into dst, growing it if needed, and
// returns it. Values are 1 for live cells and 0 for dead ones, row-major.
func (l *Life) Snapshot(dst []uint8) []uint8 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cells := l.cur.Cells()
	if cap(dst) < len(cells) {
		dst = make([]uint8, len(cells))
	}
	dst = dst[:len(cells)]
	copy(dst, cells)
	return dst
}

// Cells returns a copy of the current generation.
func (l *Life) Cells() []uint8 { return l.Snapshot(nil) }
