package life

import "strconv"

// Config controls the grid dimensions, the rule table and the RNG seed.
type Config struct {
	Width  int
	Height int

	// Rule is the index of the active rule in Rules.
	Rule  int
	Rules []Rule

	Seed int64
}

// DefaultConfig returns the standard configuration: a 500x500 grid under Conway.
func DefaultConfig() Config {
	return Config{
		Width:  500,
		Height: 500,
		Rule:   0,
		Rules:  DefaultRules(),
		Seed:   42,
	}
}

// FromMap populates a Config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["rule"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 && parsed < len(c.Rules) {
			c.Rule = parsed
		} else if idx := RuleIndex(c.Rules, v); idx >= 0 {
			c.Rule = idx
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	return c
}
