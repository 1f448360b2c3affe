package app

import (
	"flag"
	"fmt"
	"strconv"

	"lifegrid/internal/config"
	"lifegrid/pkg/sims/life"
)

// Config represents the command-line parameters for the application.
type Config struct {
	ConfigPath string

	Width      int
	Height     int
	Rule       string
	IntervalMs int
	Seed       int64

	CellSize   int
	AliveColor string
	DeadColor  string

	Pattern  string
	SavePath string

	LogLevel  string
	LogFormat string

	// Rules replaces the preset rule table when non-empty. It is only set
	// from a configuration file.
	Rules []life.Rule
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	def := life.DefaultConfig()
	return &Config{
		Width:      def.Width,
		Height:     def.Height,
		Rule:       "Conway",
		IntervalMs: 100,
		Seed:       def.Seed,
		CellSize:   4,
		AliveColor: "#ffffff",
		DeadColor:  "#000000",
		SavePath:   "life.txt",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "optional HCL configuration file")
	fs.IntVar(&c.Width, "w", c.Width, "grid width in cells")
	fs.IntVar(&c.Height, "h", c.Height, "grid height in cells")
	fs.StringVar(&c.Rule, "rule", c.Rule, "rule name or index")
	fs.IntVar(&c.IntervalMs, "interval", c.IntervalMs, "milliseconds between generations (10-1000)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for random fills")
	fs.IntVar(&c.CellSize, "cell", c.CellSize, "initial cell size in pixels")
	fs.StringVar(&c.AliveColor, "alive-color", c.AliveColor, "color of live cells (#rrggbb)")
	fs.StringVar(&c.DeadColor, "dead-color", c.DeadColor, "color of dead cells (#rrggbb)")
	fs.StringVar(&c.Pattern, "pattern", c.Pattern, "pattern file to load at startup")
	fs.StringVar(&c.SavePath, "save", c.SavePath, "file used by save and load")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")
}

// Resolve merges the configuration file named by -config, if any. Values set
// explicitly on the command line take precedence over the file.
func (c *Config) Resolve(fs *flag.FlagSet) error {
	if c.ConfigPath == "" {
		return nil
	}
	f, err := config.Load(c.ConfigPath)
	if err != nil {
		return err
	}
	explicit := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { explicit[fl.Name] = true })
	return c.ApplyFile(f, explicit)
}

// ApplyFile copies the values present in f into c, skipping those whose flag
// name is marked in explicit.
func (c *Config) ApplyFile(f *config.File, explicit map[string]bool) error {
	if g := f.Grid; g != nil {
		if g.Width > 0 && !explicit["w"] {
			c.Width = g.Width
		}
		if g.Height > 0 && !explicit["h"] {
			c.Height = g.Height
		}
	}
	if s := f.Simulation; s != nil {
		if s.Rule != "" && !explicit["rule"] {
			c.Rule = s.Rule
		}
		if s.IntervalMs != 0 && !explicit["interval"] {
			c.IntervalMs = s.IntervalMs
		}
		if s.Seed != nil && !explicit["seed"] {
			c.Seed = *s.Seed
		}
		if s.Pattern != "" && !explicit["pattern"] {
			c.Pattern = s.Pattern
		}
	}
	if l := f.Log; l != nil {
		if l.Level != "" && !explicit["log-level"] {
			c.LogLevel = l.Level
		}
		if l.Format != "" && !explicit["log-format"] {
			c.LogFormat = l.Format
		}
	}
	rules, err := f.RuleTable()
	if err != nil {
		return err
	}
	if len(rules) > 0 {
		c.Rules = rules
	}
	return nil
}

// LifeConfig builds the engine configuration, resolving the rule by name or
// by index into the active rule table.
func (c *Config) LifeConfig() (life.Config, error) {
	lc := life.DefaultConfig()
	if c.Width <= 0 || c.Height <= 0 {
		return lc, fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	lc.Width, lc.Height, lc.Seed = c.Width, c.Height, c.Seed
	if len(c.Rules) > 0 {
		lc.Rules = append([]life.Rule(nil), c.Rules...)
	}
	lc.Rule = -1
	if c.Rule == "" {
		lc.Rule = 0
	} else if idx := life.RuleIndex(lc.Rules, c.Rule); idx >= 0 {
		lc.Rule = idx
	} else if idx, err := strconv.Atoi(c.Rule); err == nil && idx >= 0 && idx < len(lc.Rules) {
		lc.Rule = idx
	}
	if lc.Rule < 0 {
		return lc, fmt.Errorf("unknown rule %q", c.Rule)
	}
	return lc, nil
}
