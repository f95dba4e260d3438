package trie

import (
	"strings"

	"github.com/peco/graphmaster/unit"
)

// Kind classifies a pattern unit.
type Kind int

const (
	KindLiteral Kind = iota
	KindOneOrMore
	KindZeroOrMore
)

func (k Kind) String() string {
	switch k {
	case KindOneOrMore:
		return "one-or-more"
	case KindZeroOrMore:
		return "zero-or-more"
	default:
		return "literal"
	}
}

// Unit is one element of a compiled pattern. Key is only meaningful for
// literal units.
type Unit struct {
	Kind Kind
	Key  string
}

// Pattern is a pattern string compiled against a context's syntax.
type Pattern struct {
	text  string
	sep   string
	units []Unit
}

// Compile splits pattern into units, recognizing the wildcard markers of
// syn. In word granularity a marker must be a whole word; in character
// granularity every marker character is a wildcard.
func Compile(pattern string, syn unit.Syntax) Pattern {
	if syn.OneOrMore == "" {
		syn.OneOrMore = unit.DefaultOneOrMore
	}
	if syn.ZeroOrMore == "" {
		syn.ZeroOrMore = unit.DefaultZeroOrMore
	}

	u := unit.Split(pattern, syn)
	p := Pattern{text: pattern, sep: syn.Separator(), units: make([]Unit, u.Len())}
	for i := range u.Len() {
		switch u.Raw(i) {
		case syn.OneOrMore:
			p.units[i] = Unit{Kind: KindOneOrMore}
		case syn.ZeroOrMore:
			p.units[i] = Unit{Kind: KindZeroOrMore}
		default:
			p.units[i] = Unit{Kind: KindLiteral, Key: u.Key(i)}
		}
	}
	return p
}

// literalPattern builds a wildcard-free pattern straight from unit keys.
func literalPattern(keys []string, sep string) Pattern {
	p := Pattern{sep: sep, units: make([]Unit, len(keys))}
	for i, k := range keys {
		p.units[i] = Unit{Kind: KindLiteral, Key: k}
	}
	p.text = strings.Join(keys, sep)
	return p
}

// Len returns the number of units.
func (p Pattern) Len() int {
	return len(p.units)
}

// At returns unit i.
func (p Pattern) At(i int) Unit {
	return p.units[i]
}

func (p Pattern) String() string {
	return p.text
}

// HasWildcard reports whether any unit from depth on is a wildcard.
func (p Pattern) HasWildcard(depth int) bool {
	for _, u := range p.units[depth:] {
		if u.Kind != KindLiteral {
			return true
		}
	}
	return false
}

// literalRun returns the index of the first wildcard at or after depth,
// or Len() if there is none.
func (p Pattern) literalRun(depth int) int {
	for i := depth; i < len(p.units); i++ {
		if p.units[i].Kind != KindLiteral {
			return i
		}
	}
	return len(p.units)
}

func (p Pattern) keys(from, to int) []string {
	keys := make([]string, 0, to-from)
	for _, u := range p.units[from:to] {
		keys = append(keys, u.Key)
	}
	return keys
}

// suffixKey joins the keys of units [depth, Len()).
func (p Pattern) suffixKey(depth int) string {
	return strings.Join(p.keys(depth, len(p.units)), p.sep)
}
