package life

import (
	"fmt"
	"strings"
)

// NeighborSet is a bitmask of live-neighbor counts in [0, 8].
type NeighborSet uint16

// NewNeighborSet builds a set from the given counts. Counts outside [0, 8] are ignored.
func NewNeighborSet(counts ...int) NeighborSet {
	var s NeighborSet
	for _, n := range counts {
		if n >= 0 && n <= 8 {
			s |= 1 << n
		}
	}
	return s
}

// Has reports whether n is a member of the set.
func (s NeighborSet) Has(n int) bool {
	if n < 0 || n > 8 {
		return false
	}
	return s&(1<<n) != 0
}

// String renders the set as ascending digits, e.g. "23".
func (s NeighborSet) String() string {
	var b strings.Builder
	for n := 0; n <= 8; n++ {
		if s.Has(n) {
			b.WriteByte(byte('0' + n))
		}
	}
	return b.String()
}

// Rule is a life-like birth/survival rule.
type Rule struct {
	Name     string
	Birth    NeighborSet
	Survival NeighborSet
}

// Next returns whether a cell with the given state and live neighbor count is
// alive in the following generation.
func (r Rule) Next(alive bool, neighbors int) bool {
	if alive {
		return r.Survival.Has(neighbors)
	}
	return r.Birth.Has(neighbors)
}

// Notation renders the rule in survival/birth form, e.g. "23/3".
func (r Rule) Notation() string {
	return r.Survival.String() + "/" + r.Birth.String()
}

func (r Rule) String() string {
	if r.Name == "" {
		return r.Notation()
	}
	return r.Name
}

// ParseRule decodes a rule notation. Two forms are accepted: the plain
// survival/birth digit form ("23/3" is Conway) and the explicit form with
// B and S prefixes in either order ("B3/S23", "S23/B3").
func ParseRule(name, notation string) (Rule, error) {
	parts := strings.Split(strings.TrimSpace(notation), "/")
	if len(parts) != 2 {
		return Rule{}, fmt.Errorf("rule %q: notation %q must have exactly one '/'", name, notation)
	}
	survival, birth := parts[0], parts[1]
	prefixed := func(p string) bool {
		return strings.HasPrefix(p, "B") || strings.HasPrefix(p, "b") ||
			strings.HasPrefix(p, "S") || strings.HasPrefix(p, "s")
	}
	if prefixed(parts[0]) || prefixed(parts[1]) {
		var okB, okS bool
		for _, p := range parts {
			if p == "" {
				return Rule{}, fmt.Errorf("rule %q: empty section in %q", name, notation)
			}
			switch p[0] {
			case 'B', 'b':
				birth, okB = p[1:], true
			case 'S', 's':
				survival, okS = p[1:], true
			default:
				return Rule{}, fmt.Errorf("rule %q: section %q must start with B or S", name, p)
			}
		}
		if !okB || !okS {
			return Rule{}, fmt.Errorf("rule %q: notation %q needs one B and one S section", name, notation)
		}
	}
	b, err := parseDigits(birth)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: birth: %w", name, err)
	}
	s, err := parseDigits(survival)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: survival: %w", name, err)
	}
	return Rule{Name: name, Birth: b, Survival: s}, nil
}

func parseDigits(digits string) (NeighborSet, error) {
	var s NeighborSet
	for _, r := range digits {
		if r < '0' || r > '8' {
			return 0, fmt.Errorf("invalid neighbor count %q", r)
		}
		s |= 1 << (r - '0')
	}
	return s, nil
}

// RuleDef names a rule and its notation.
type RuleDef struct {
	Name     string
	Notation string
}

// DefaultRuleDefs is the preset table in menu order. Digits before the slash
// are survival counts, digits after it are birth counts.
var DefaultRuleDefs = []RuleDef{
	{Name: "Conway", Notation: "23/3"},
	{Name: "3/3", Notation: "3/3"},
	{Name: "13/3", Notation: "13/3"},
	{Name: "34/3", Notation: "34/3"},
}

// BuildRules parses a rule table.
func BuildRules(defs []RuleDef) ([]Rule, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("rule table is empty")
	}
	rules := make([]Rule, 0, len(defs))
	for _, d := range defs {
		r, err := ParseRule(d.Name, d.Notation)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// DefaultRules returns a fresh copy of the preset rule table.
func DefaultRules() []Rule {
	rules, err := BuildRules(DefaultRuleDefs)
	if err != nil {
		panic(err)
	}
	return rules
}

// RuleIndex returns the index of the rule called name, or -1.
func RuleIndex(rules []Rule, name string) int {
	for i, r := range rules {
		if strings.EqualFold(r.Name, name) {
			return i
		}
	}
	return -1
}
