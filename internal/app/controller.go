package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"lifegrid/internal/config"
	"lifegrid/internal/core"
	pcore "lifegrid/pkg/core"
	"lifegrid/pkg/sims/life"
)

// RunState gates whether the scheduler is stepping the simulation.
type RunState int

const (
	Paused RunState = iota
	Running
)

func (s RunState) String() string {
	if s == Running {
		return "running"
	}
	return "paused"
}

// Controller owns the run state of a simulation and the scheduler that steps
// it. It is the single entry point front-ends use to drive the engine.
type Controller struct {
	mu         sync.Mutex
	sim        *life.Life
	sched      *core.Scheduler
	state      RunState
	intervalMs int
	density    float64
	logger     *slog.Logger
}

// NewController wires a paused controller around sim. intervalMs is clamped
// into the accepted range. A nil logger uses slog.Default().
func NewController(sim *life.Life, intervalMs int, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		sim:     sim,
		sched:   core.NewScheduler(logger),
		density: life.DefaultDensity,
		logger:  logger,
	}
	c.intervalMs = clampInterval(intervalMs)
	c.sched.SetInterval(c.interval())
	return c
}

func clampInterval(ms int) int {
	if ms < config.MinIntervalMs {
		return config.MinIntervalMs
	}
	if ms > config.MaxIntervalMs {
		return config.MaxIntervalMs
	}
	return ms
}

func (c *Controller) interval() time.Duration {
	return time.Duration(c.intervalMs) * time.Millisecond
}

// Sim exposes the controlled simulation for read access.
func (c *Controller) Sim() *life.Life { return c.sim }

// State returns the current run state.
func (c *Controller) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IntervalMs returns the tick period in milliseconds.
func (c *Controller) IntervalMs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intervalMs
}

// Run starts stepping the simulation. It is a no-op while running.
func (c *Controller) Run() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		return
	}
	c.state = Running
	c.sched.Start(c.interval(), c.tick)
	c.logger.Info("Simulation running.", "interval_ms", c.intervalMs, "rule", c.sim.ActiveRule().Name)
}

// Pause stops stepping the simulation. It is a no-op while paused.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
}

func (c *Controller) pauseLocked() {
	if c.state == Paused {
		return
	}
	c.sched.Stop()
	c.state = Paused
	c.logger.Info("Simulation paused.", "generation", c.sim.Generation())
}

// TogglePause flips between running and paused and returns the new state.
func (c *Controller) TogglePause() RunState {
	if c.State() == Running {
		c.Pause()
		return Paused
	}
	c.Run()
	return Running
}

func (c *Controller) tick() error {
	c.sim.Step()
	return nil
}

// StepOnce advances a paused simulation by one generation. It reports false
// and does nothing while running.
func (c *Controller) StepOnce() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		return false
	}
	c.sim.Step()
	return true
}

// Reset pauses the simulation and kills every cell.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
	c.sim.Reset()
	c.logger.Info("Grid reset.")
}

// SelectRule pauses the simulation and activates the rule at index.
func (c *Controller) SelectRule(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pauseLocked()
	if !c.sim.SetRule(index) {
		c.logger.Warn("Ignoring unknown rule.", "index", index)
		return false
	}
	c.logger.Info("Rule selected.", "index", index, "rule", c.sim.ActiveRule().Name)
	return true
}

// SetInterval changes the tick period, clamped into the accepted range, and
// returns the value in effect. A running simulation keeps running.
func (c *Controller) SetInterval(ms int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intervalMs = clampInterval(ms)
	c.sched.SetInterval(c.interval())
	c.logger.Debug("Interval changed.", "interval_ms", c.intervalMs)
	return c.intervalMs
}

// SetDensity sets the fill probability used by Randomize.
func (c *Controller) SetDensity(p float64) bool {
	if p <= 0 || p > 1 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.density = p
	return true
}

// ToggleCell flips one cell and returns its new state.
func (c *Controller) ToggleCell(at pcore.Coord) life.State {
	return c.sim.Toggle(at)
}

// Stamp writes a preset structure with its top-left corner at origin.
func (c *Controller) Stamp(kind life.Structure, origin pcore.Coord) {
	c.sim.AddStructure(kind, origin)
	c.logger.Debug("Structure stamped.", "structure", kind, "x", origin.X, "y", origin.Y)
}

// Randomize fills a region with coin flips at the configured density.
func (c *Controller) Randomize(origin pcore.Coord, size pcore.Size) {
	c.mu.Lock()
	p := c.density
	c.mu.Unlock()
	c.sim.Randomize(origin, size, p)
}

// Save writes the live cells to w in the save-file format.
func (c *Controller) Save(w io.Writer) error {
	if _, err := w.Write(c.sim.Serialize()); err != nil {
		return fmt.Errorf("write pattern: %w", err)
	}
	return nil
}

// Load replaces the live cells with the pattern read from r. Malformed lines
// are logged and skipped; their count is returned. Only read failures are
// returned as errors.
func (c *Controller) Load(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read pattern: %w", err)
	}
	skipped := life.LineErrors(c.sim.Load(data))
	for _, le := range skipped {
		c.logger.Warn("Skipping malformed line.", "line", le.Line, "text", le.Text, "error", le.Err)
	}
	c.logger.Info("Pattern loaded.", "population", c.sim.Population(), "skipped", len(skipped))
	return len(skipped), nil
}

// SaveFile writes the live cells to the file at path.
func (c *Controller) SaveFile(path string) error {
	if err := os.WriteFile(path, c.sim.Serialize(), 0o644); err != nil {
		return fmt.Errorf("save pattern: %w", err)
	}
	c.logger.Info("Pattern saved.", "path", path, "population", c.sim.Population())
	return nil
}

// LoadFile reads a pattern from the file at path. See Load.
func (c *Controller) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("load pattern: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}

// Close stops the scheduler.
func (c *Controller) Close() {
	c.Pause()
}

// Parameter keys exposed to the HUD.
const (
	ParamRule     = "rule"
	ParamInterval = "interval_ms"
	ParamDensity  = "density"
)

// Parameters reports the HUD-visible state of the simulation.
func (c *Controller) Parameters() core.ParameterSnapshot {
	c.mu.Lock()
	state, interval, density := c.state, c.intervalMs, c.density
	c.mu.Unlock()
	rule := c.sim.ActiveRule()
	size := c.sim.Size()

	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Simulation",
			Params: []core.Parameter{
				intParam(ParamRule, "Rule", c.sim.Rule()),
				intParam(ParamInterval, "Interval (ms)", interval),
				floatParam(ParamDensity, "Random fill", density),
			},
		},
		{
			Name: "Status",
			Params: []core.Parameter{
				textParam("rule_name", "Rule", rule.Name+" ("+rule.Notation()+")"),
				{Key: "running", Label: "Running", Type: core.ParamTypeBool, Value: strconv.FormatBool(state == Running)},
				textParam("generation", "Generation", strconv.FormatUint(c.sim.Generation(), 10)),
				intParam("population", "Population", c.sim.Population()),
				textParam("size", "Grid", fmt.Sprintf("%dx%d", size.W, size.H)),
			},
		},
	}}
}

// ParameterControls lists the HUD-adjustable parameters.
func (c *Controller) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: ParamRule, Label: "Rule", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: float64(len(c.sim.Rules()) - 1), HasMin: true, HasMax: true},
		{Key: ParamInterval, Label: "Interval (ms)", Type: core.ParamTypeInt, Step: 10, Min: config.MinIntervalMs, Max: config.MaxIntervalMs, HasMin: true, HasMax: true},
		{Key: ParamDensity, Label: "Random fill", Type: core.ParamTypeFloat, Step: 0.05, Min: 0.05, Max: 1, HasMin: true, HasMax: true},
	}
}

// SetIntParameter applies a HUD change to an integer parameter.
func (c *Controller) SetIntParameter(key string, value int) bool {
	switch key {
	case ParamRule:
		return c.SelectRule(value)
	case ParamInterval:
		return c.SetInterval(value) == value
	}
	return false
}

// SetFloatParameter applies a HUD change to a floating point parameter.
func (c *Controller) SetFloatParameter(key string, value float64) bool {
	if key == ParamDensity {
		return c.SetDensity(value)
	}
	return false
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func textParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeText,
		Value: value,
	}
}
