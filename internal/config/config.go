// Package config decodes the optional HCL configuration file. A file may set
// the grid dimensions, the starting rule, tick interval and seed, the log
// settings, and may replace the rule table with its own "rule" blocks:
//
//	grid { width = 500  height = 500 }
//	simulation { rule = "Conway"  interval_ms = 100  seed = 42 }
//	log { level = "debug"  format = "json" }
//	rule "Conway" { notation = "23/3" }
//	rule "HighLife" { notation = "B36/S23" }
//	rule "Maze" { notation = preset["34/3"] }
//
// Every block and attribute is optional. Expressions may read the preset
// notations through the preset map, keyed by lower-case rule name.
package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"lifegrid/pkg/sims/life"
)

// Interval bounds in milliseconds, matching the run controls.
const (
	MinIntervalMs = 10
	MaxIntervalMs = 1000
)

// File is the decoded configuration file.
type File struct {
	Grid       *GridBlock       `hcl:"grid,block"`
	Simulation *SimulationBlock `hcl:"simulation,block"`
	Log        *LogBlock        `hcl:"log,block"`
	Rules      []*RuleBlock     `hcl:"rule,block"`
}

// GridBlock sets the fixed grid dimensions.
type GridBlock struct {
	Width  int `hcl:"width,optional"`
	Height int `hcl:"height,optional"`
}

// SimulationBlock sets the starting simulation parameters.
type SimulationBlock struct {
	Rule       string `hcl:"rule,optional"`
	IntervalMs int    `hcl:"interval_ms,optional"`
	Seed       *int64 `hcl:"seed,optional"`
	Pattern    string `hcl:"pattern,optional"`
}

// LogBlock sets the logger level and output format.
type LogBlock struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// RuleBlock defines one entry of the rule table.
type RuleBlock struct {
	Name     string `hcl:"name,label"`
	Notation string `hcl:"notation"`
}

// Load parses and decodes the configuration file at path.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(file.Body, path)
}

// Parse decodes configuration from src. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(file.Body, filename)
}

// evalContext exposes the preset rule notations to expressions.
func evalContext() *hcl.EvalContext {
	presets := make(map[string]cty.Value, len(life.DefaultRuleDefs))
	for _, def := range life.DefaultRuleDefs {
		presets[strings.ToLower(def.Name)] = cty.StringVal(def.Notation)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"preset": cty.MapVal(presets)},
	}
}

func decode(body hcl.Body, filename string) (*File, error) {
	var f File
	if diags := gohcl.DecodeBody(body, evalContext(), &f); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", filename, err)
	}
	return &f, nil
}

func (f *File) validate() error {
	if g := f.Grid; g != nil {
		if g.Width < 0 || g.Height < 0 {
			return fmt.Errorf("grid dimensions must be positive, got %dx%d", g.Width, g.Height)
		}
	}
	if s := f.Simulation; s != nil && s.IntervalMs != 0 {
		if s.IntervalMs < MinIntervalMs || s.IntervalMs > MaxIntervalMs {
			return fmt.Errorf("interval_ms %d outside [%d, %d]", s.IntervalMs, MinIntervalMs, MaxIntervalMs)
		}
	}
	if l := f.Log; l != nil {
		switch l.Format {
		case "", "text", "json":
		default:
			return fmt.Errorf("unknown log format %q", l.Format)
		}
	}
	seen := make(map[string]bool, len(f.Rules))
	for _, r := range f.Rules {
		if seen[r.Name] {
			return fmt.Errorf("rule %q defined twice", r.Name)
		}
		seen[r.Name] = true
	}
	if _, err := f.RuleTable(); err != nil {
		return err
	}
	return nil
}

// RuleTable builds the rule table declared by the file's rule blocks, in
// declaration order. It returns nil when the file declares no rules.
func (f *File) RuleTable() ([]life.Rule, error) {
	if len(f.Rules) == 0 {
		return nil, nil
	}
	defs := make([]life.RuleDef, 0, len(f.Rules))
	for _, r := range f.Rules {
		defs = append(defs, life.RuleDef{Name: r.Name, Notation: r.Notation})
	}
	return life.BuildRules(defs)
}
