package life

import (
	"math/rand/v2"
	"math"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lifegrid/pkg/core"
)

func liveSet(l *Life) []core.Coord {
	size := l.Size()
	var out []core.Coord
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			c := core.Coord{X: x, Y: y}
			if l.Get(c).Alive() {
				out = append(out, c)
			}
		}
	}
	return out
}

func sortCoords(cs []core.Coord) []core.Coord {
	out := slices.Clone(cs)
	slices.SortFunc(out, func(a, b core.Coord) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
	return slices.Compact(out)
}

func translate(cs []core.Coord, by core.Coord) []core.Coord {
	out := make([]core.Coord, len(cs))
	for i, c := range cs {
		out[i] = c.Add(by)
	}
	return out
}

func TestBlinkerOscillation(t *testing.T) {
	life := New(5, 5)
	set := func(x, y int) { life.Set(core.Coord{X: x, Y: y}, Alive) }
	set(2, 1)
	set(2, 2)
	set(2, 3)

	life.Step()

	expects := map[[2]int]bool{
		{1, 2}: true,
		{2, 2}: true,
		{3, 2}: true,
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			alive := life.Get(core.Coord{X: x, Y: y}).Alive()
			_, shouldBeAlive := expects[[2]int{x, y}]
			if shouldBeAlive != alive {
				t.Fatalf("cell (%d,%d) alive=%v, expected %v", x, y, alive, shouldBeAlive)
			}
		}
	}

	life.Step()

	expects = map[[2]int]bool{
		{2, 1}: true,
		{2, 2}: true,
		{2, 3}: true,
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			alive := life.Get(core.Coord{X: x, Y: y}).Alive()
			_, shouldBeAlive := expects[[2]int{x, y}]
			if shouldBeAlive != alive {
				t.Fatalf("after second step cell (%d,%d) alive=%v, expected %v", x, y, alive, shouldBeAlive)
			}
		}
	}
	if got := life.Generation(); got != 2 {
		t.Fatalf("generation = %d, want 2", got)
	}
}

func TestBorderIsDead(t *testing.T) {
	life := New(5, 5)
	life.Initialize([]core.Coord{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}})

	life.Step()

	// A wrapping grid would also revive (4,1).
	want := []core.Coord{{X: 0, Y: 1}, {X: 1, Y: 1}}
	if diff := cmp.Diff(want, liveSet(life)); diff != "" {
		t.Fatalf("live cells mismatch (-want +got):\n%s", diff)
	}
}

func TestOutOfRangeAccess(t *testing.T) {
	life := New(8, 6)
	life.AddStructure(FPentomino, core.Coord{X: 2, Y: 2})
	before := life.Cells()

	outside := []core.Coord{
		{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 8, Y: 0}, {X: 0, Y: 6},
		{X: 100, Y: 100}, {X: -50, Y: 3},
	}
	for _, c := range outside {
		if life.Get(c).Alive() {
			t.Fatalf("Get(%v) reported alive outside the grid", c)
		}
		life.Set(c, Alive)
		if s := life.Toggle(c); s != Dead {
			t.Fatalf("Toggle(%v) = %v outside the grid", c, s)
		}
	}
	if !slices.Equal(before, life.Cells()) {
		t.Fatal("out-of-range writes changed the grid")
	}
}

func TestEmptyGridStaysEmptyUnderEveryRule(t *testing.T) {
	life := New(32, 32)
	for i := range life.Rules() {
		if !life.SetRule(i) {
			t.Fatalf("SetRule(%d) rejected", i)
		}
		life.Step()
		if n := life.Population(); n != 0 {
			t.Fatalf("rule %d produced %d cells from nothing", i, n)
		}
	}
}

func TestBlockIsStillLife(t *testing.T) {
	life := New(20, 20)
	block := []core.Coord{{X: 9, Y: 9}, {X: 10, Y: 9}, {X: 9, Y: 10}, {X: 10, Y: 10}}
	life.Initialize(block)

	for i := 0; i < 3; i++ {
		life.Step()
		if diff := cmp.Diff(block, liveSet(life)); diff != "" {
			t.Fatalf("block changed after step %d (-want +got):\n%s", i+1, diff)
		}
	}
}

func TestGliderTranslatesDiagonally(t *testing.T) {
	life := New(500, 500)
	origin := core.Coord{X: 10, Y: 10}
	life.AddStructure(Glider, origin)
	start := sortCoords(translate(Glider.Offsets(), origin))

	for i := 0; i < 4; i++ {
		life.Step()
	}

	want := sortCoords(translate(start, core.Coord{X: 1, Y: 1}))
	if diff := cmp.Diff(want, liveSet(life)); diff != "" {
		t.Fatalf("glider after 4 steps (-want +got):\n%s", diff)
	}
}

func TestRuleChangeAppliesToNextStep(t *testing.T) {
	life := New(5, 5)
	blinker := []core.Coord{{X: 2, Y: 1}, {X: 2, Y: 2}, {X: 2, Y: 3}}
	life.Initialize(blinker)

	if !life.SetRule(1) {
		t.Fatal("SetRule(1) rejected")
	}
	if diff := cmp.Diff(blinker, liveSet(life)); diff != "" {
		t.Fatalf("SetRule changed the grid (-want +got):\n%s", diff)
	}
	if got := life.ActiveRule().Name; got != "3/3" {
		t.Fatalf("active rule = %q, want 3/3", got)
	}

	life.Step()

	// Survival {3} kills the whole column; only the two side births remain.
	want := []core.Coord{{X: 1, Y: 2}, {X: 3, Y: 2}}
	if diff := cmp.Diff(want, liveSet(life)); diff != "" {
		t.Fatalf("3/3 step mismatch (-want +got):\n%s", diff)
	}

	if life.SetRule(len(life.Rules())) || life.SetRule(-1) {
		t.Fatal("out-of-range rule index accepted")
	}
	if got := life.Rule(); got != 1 {
		t.Fatalf("rule index = %d after rejected SetRule, want 1", got)
	}
}

func TestResetKeepsRuleAndSize(t *testing.T) {
	life := New(40, 30)
	life.SetRule(2)
	life.AddStructure(GliderGun, core.Coord{X: 1, Y: 1})
	life.Step()

	life.Reset()

	if n := life.Population(); n != 0 {
		t.Fatalf("population after reset = %d", n)
	}
	if life.Rule() != 2 {
		t.Fatalf("reset changed the rule to %d", life.Rule())
	}
	if got := life.Size(); got != (core.Size{W: 40, H: 30}) {
		t.Fatalf("reset changed the size to %+v", got)
	}
	if life.Generation() != 0 {
		t.Fatalf("generation after reset = %d", life.Generation())
	}
}

func TestInitializeEmptyEqualsReset(t *testing.T) {
	life := New(16, 16)
	life.Randomize(core.Coord{}, core.Size{W: 16, H: 16}, 0.5)
	life.Initialize(nil)

	for _, v := range life.Cells() {
		if v != 0 {
			t.Fatal("Initialize(nil) left live cells")
		}
	}
}

func TestInitializeDropsOutOfRange(t *testing.T) {
	life := New(10, 10)
	life.Initialize([]core.Coord{{X: 1, Y: 1}, {X: 10, Y: 1}, {X: -1, Y: 4}, {X: 9, Y: 9}})

	want := []core.Coord{{X: 1, Y: 1}, {X: 9, Y: 9}}
	if diff := cmp.Diff(want, liveSet(life)); diff != "" {
		t.Fatalf("live cells mismatch (-want +got):\n%s", diff)
	}
}

func TestStructuresStampAndClip(t *testing.T) {
	life := New(100, 100)
	life.AddStructure(GliderGun, core.Coord{X: 5, Y: 5})
	if n := life.Population(); n != 36 {
		t.Fatalf("glider gun population = %d, want 36", n)
	}

	life.Reset()
	life.AddStructure(FPentomino, core.Coord{X: 98, Y: 98})
	// (100,98) and (99,100) fall off the edge.
	want := []core.Coord{{X: 99, Y: 98}, {X: 98, Y: 99}, {X: 99, Y: 99}}
	if diff := cmp.Diff(want, liveSet(life)); diff != "" {
		t.Fatalf("clipped stamp mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStructure(t *testing.T) {
	for _, s := range Structures() {
		got, err := ParseStructure(s.String())
		if err != nil {
			t.Fatalf("ParseStructure(%q): %v", s, err)
		}
		if got != s {
			t.Fatalf("ParseStructure(%q) = %v", s, got)
		}
	}
	if _, err := ParseStructure("spaceship"); err == nil {
		t.Fatal("expected error for unknown structure")
	}
}

func TestRandomizeStaysInRegion(t *testing.T) {
	life := New(50, 50)
	life.Randomize(core.Coord{X: 10, Y: 10}, core.Size{W: 20, H: 20}, 1)
	if n := life.Population(); n != 400 {
		t.Fatalf("p=1 region population = %d, want 400", n)
	}

	life.Reset()
	life.Randomize(core.Coord{X: 40, Y: 40}, core.Size{W: 20, H: 20}, 0.5)
	for _, c := range liveSet(life) {
		if c.X < 40 || c.Y < 40 {
			t.Fatalf("cell %v outside the randomized region", c)
		}
	}
	n := life.Population()
	if n == 0 || n == 100 {
		t.Fatalf("coin flips over 100 cells produced %d live cells", n)
	}
}

func TestRandomizeIsSeeded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height, cfg.Seed = 30, 30, 7
	a, b := NewWithConfig(cfg), NewWithConfig(cfg)
	a.Randomize(core.Coord{}, a.Size(), 0.3)
	b.Randomize(core.Coord{}, b.Size(), 0.3)
	if !slices.Equal(a.Cells(), b.Cells()) {
		t.Fatal("equal seeds produced different fills")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	life := New(4, 4)
	life.Set(core.Coord{X: 1, Y: 1}, Alive)

	buf := life.Snapshot(nil)
	buf[0] = 1
	if life.Get(core.Coord{}).Alive() {
		t.Fatal("writing to the snapshot mutated the grid")
	}

	reused := life.Snapshot(buf)
	if &reused[0] != &buf[0] {
		t.Fatal("Snapshot did not reuse a large enough buffer")
	}
	if reused[0] != 0 || reused[5] != 1 {
		t.Fatalf("snapshot contents wrong: %v", reused)
	}
}

func TestConcurrentStepAndToggle(t *testing.T) {
	// Every live cell survives and nothing is born, so Step leaves the grid
	// unchanged and the final column depends only on the toggles applied.
	frozen, err := ParseRule("frozen", "012345678/")
	if err != nil {
		t.Fatal(err)
	}
	life := NewWithConfig(Config{Width: 64, Height: 64, Rules: []Rule{frozen}})
	life.AddStructure(GliderGun, core.Coord{X: 2, Y: 2})
	gun := life.Population()

	const (
		steps   = 50
		toggles = 200
	)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < steps; i++ {
			life.Step()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < toggles; i++ {
			life.Toggle(core.Coord{X: 60, Y: i % 64})
		}
	}()
	go func() {
		defer wg.Done()
		var buf []uint8
		for i := 0; i < 100; i++ {
			buf = life.Snapshot(buf)
			_ = life.Get(core.Coord{X: i % 64, Y: 3})
		}
	}()
	wg.Wait()

	if got := life.Generation(); got != steps {
		t.Fatalf("generation = %d, want %d", got, steps)
	}
	alive := 0
	for y := 0; y < 64; y++ {
		flips := toggles / 64
		if y < toggles%64 {
			flips++
		}
		want := flips%2 == 1
		if got := life.Get(core.Coord{X: 60, Y: y}).Alive(); got != want {
			t.Fatalf("cell (60,%d) alive = %v after %d toggles", y, got, flips)
		}
		if want {
			alive++
		}
	}
	if got := life.Population(); got != gun+alive {
		t.Fatalf("population = %d, want %d", got, gun+alive)
	}
}

func TestRandomizeClipsHugeRegions(t *testing.T) {
	life := New(8, 8)

	life.Randomize(core.Coord{X: -5, Y: -5}, core.Size{W: math.MaxInt, H: math.MaxInt}, 1)
	if got := life.Population(); got != 64 {
		t.Fatalf("population = %d, want 64", got)
	}

	life.Reset()
	life.Randomize(core.Coord{X: math.MaxInt - 1, Y: 0}, core.Size{W: math.MaxInt, H: 4}, 1)
	life.Randomize(core.Coord{X: math.MinInt, Y: math.MinInt}, core.Size{W: math.MaxInt, H: math.MaxInt}, 1)
	if got := life.Population(); got != 0 {
		t.Fatalf("population = %d, want 0", got)
	}

	life.Randomize(core.Coord{X: math.MinInt, Y: 6}, core.Size{W: math.MaxInt, H: 1}, 1)
	if got := life.Population(); got != 0 {
		t.Fatalf("population = %d, want 0", got)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	var coords []core.Coord
	for i := 0; i < 2000; i++ {
		coords = append(coords, core.Coord{X: r.IntN(500), Y: r.IntN(500)})
	}

	src := New(500, 500)
	src.Initialize(coords)
	text := src.Serialize()

	parsed, err := Deserialize(text)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if diff := cmp.Diff(sortCoords(coords), sortCoords(parsed)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	dst := New(500, 500)
	if err := dst.Load(text); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(src.Cells(), dst.Cells()) {
		t.Fatal("loaded grid differs from the saved one")
	}
}

func TestSerializeRowMajor(t *testing.T) {
	life := New(10, 10)
	life.Initialize([]core.Coord{{X: 5, Y: 2}, {X: 1, Y: 7}, {X: 3, Y: 2}})

	want := "3,2\n5,2\n1,7\n"
	if got := string(life.Serialize()); got != want {
		t.Fatalf("Serialize = %q, want %q", got, want)
	}
	if got := New(3, 3).Serialize(); len(got) != 0 {
		t.Fatalf("empty grid serialized to %q", got)
	}
}

func TestDeserializeSkipsMalformedLines(t *testing.T) {
	text := []byte("1,2\nfoo\n3,x\n\n 4 , 5 \r\n7;8\n6,7,8\n9,10")

	coords, err := Deserialize(text)

	want := []core.Coord{{X: 1, Y: 2}, {X: 4, Y: 5}, {X: 9, Y: 10}}
	if diff := cmp.Diff(want, coords); diff != "" {
		t.Fatalf("parsed coords (-want +got):\n%s", diff)
	}
	if err == nil {
		t.Fatal("expected a report for malformed lines")
	}
	var lines []int
	for _, le := range LineErrors(err) {
		lines = append(lines, le.Line)
	}
	if diff := cmp.Diff([]int{2, 3, 6, 7}, lines); diff != "" {
		t.Fatalf("reported lines (-want +got):\n%s", diff)
	}
}

func TestDeserializeKeepsGoingAfterHugeLine(t *testing.T) {
	huge := strings.Repeat("x", 2<<20)
	text := []byte("1,1\n" + huge + "\n2,2\n3,3\n")

	coords, err := Deserialize(text)

	want := []core.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}
	if diff := cmp.Diff(want, coords); diff != "" {
		t.Fatalf("parsed coords (-want +got):\n%s", diff)
	}
	reports := LineErrors(err)
	if len(reports) != 1 || reports[0].Line != 2 {
		t.Fatalf("reports = %v, want one for line 2", reports)
	}
	if len(reports[0].Text) > maxExcerpt+3 {
		t.Fatalf("report kept %d bytes of the line", len(reports[0].Text))
	}

	life := New(10, 10)
	life.Load(text)
	if got := life.Population(); got != 3 {
		t.Fatalf("population after load = %d, want 3", got)
	}
}

func TestLoadReportsButKeepsGoodLines(t *testing.T) {
	life := New(10, 10)
	life.Set(core.Coord{X: 0, Y: 0}, Alive)

	err := life.Load([]byte("2,2\nbad\n600,1\n3,3\n"))
	if got := len(LineErrors(err)); got != 1 {
		t.Fatalf("reported %d malformed lines, want 1 (err=%v)", got, err)
	}
	want := []core.Coord{{X: 2, Y: 2}, {X: 3, Y: 3}}
	if diff := cmp.Diff(want, liveSet(life)); diff != "" {
		t.Fatalf("loaded cells (-want +got):\n%s", diff)
	}
}

func TestFromMap(t *testing.T) {
	cfg := FromMap(map[string]string{"w": "64", "h": "48", "rule": "34/3", "seed": "9"})
	if cfg.Width != 64 || cfg.Height != 48 || cfg.Seed != 9 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Rule != 3 {
		t.Fatalf("rule = %d, want 3", cfg.Rule)
	}

	cfg = FromMap(map[string]string{"w": "-1", "rule": "2"})
	if cfg.Width != 500 {
		t.Fatalf("invalid width accepted: %d", cfg.Width)
	}
	if cfg.Rule != 2 {
		t.Fatalf("rule = %d, want 2", cfg.Rule)
	}

	if got := FromMap(nil); got.Width != 500 || got.Height != 500 || got.Rule != 0 {
		t.Fatalf("FromMap(nil) = %+v", got)
	}
}
