// Package unit splits context values and pattern strings into the units
// that wildcards consume: whitespace-delimited words or single characters.
package unit

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Granularity selects what a single wildcard step consumes.
type Granularity int

const (
	Word Granularity = iota
	Char
)

// Default wildcard markers.
const (
	DefaultOneOrMore  = "_"
	DefaultZeroOrMore = "*"
)

func (g Granularity) String() string {
	switch g {
	case Word:
		return "word"
	case Char:
		return "char"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// ParseGranularity converts "word" or "char" (empty means "word") into
// a Granularity.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "", "word":
		return Word, nil
	case "char", "character":
		return Char, nil
	default:
		return Word, fmt.Errorf("invalid granularity %q: must be %q or %q", s, Word, Char)
	}
}

// Syntax describes how a context's patterns and values are read.
type Syntax struct {
	Granularity Granularity
	// OneOrMore is the marker for a wildcard that consumes at least one unit.
	OneOrMore string
	// ZeroOrMore is the marker for a wildcard that may consume nothing.
	ZeroOrMore string
	// FoldCase makes literal comparison case-insensitive.
	FoldCase bool
}

// DefaultSyntax returns word granularity with the default markers and
// case folding enabled.
func DefaultSyntax() Syntax {
	return Syntax{
		Granularity: Word,
		OneOrMore:   DefaultOneOrMore,
		ZeroOrMore:  DefaultZeroOrMore,
		FoldCase:    true,
	}
}

// Separator returns the string placed between unit keys when they are
// joined into a single key.
func (s Syntax) Separator() string {
	if s.Granularity == Word {
		return " "
	}
	return ""
}

// Span is a byte range into the original text.
type Span struct {
	Start int
	End   int
}

// Units is an immutable view of a string split into units. The original
// text is kept so that substrings can be recovered without copying until
// they are asked for.
type Units struct {
	text  string
	sep   string
	spans []Span
	keys  []string
}

// Split breaks text into units according to syn.
func Split(text string, syn Syntax) Units {
	u := Units{text: text, sep: syn.Separator()}
	switch syn.Granularity {
	case Char:
		u.spans = make([]Span, 0, utf8.RuneCountInString(text))
		for i, r := range text {
			u.spans = append(u.spans, Span{Start: i, End: i + utf8.RuneLen(r)})
		}
	default:
		start := -1
		for i, r := range text {
			if unicode.IsSpace(r) {
				if start >= 0 {
					u.spans = append(u.spans, Span{Start: start, End: i})
					start = -1
				}
				continue
			}
			if start < 0 {
				start = i
			}
		}
		if start >= 0 {
			u.spans = append(u.spans, Span{Start: start, End: len(text)})
		}
	}

	u.keys = make([]string, len(u.spans))
	var folder cases.Caser
	if syn.FoldCase {
		// Casers carry state, so each Split gets its own
		folder = cases.Fold()
	}
	for i, sp := range u.spans {
		k := text[sp.Start:sp.End]
		if syn.FoldCase {
			k = folder.String(k)
		}
		u.keys[i] = k
	}
	return u
}

// Len returns the number of units.
func (u Units) Len() int {
	return len(u.spans)
}

// Text returns the original text.
func (u Units) Text() string {
	return u.text
}

// Raw returns the original text of unit i.
func (u Units) Raw(i int) string {
	sp := u.spans[i]
	return u.text[sp.Start:sp.End]
}

// Key returns the comparison key of unit i.
func (u Units) Key(i int) string {
	return u.keys[i]
}

// Keys returns the comparison keys of units [from, Len()).
func (u Units) Keys(from int) []string {
	return u.keys[from:]
}

// Join returns the comparison keys of units [from, Len()) joined by the
// unit separator.
func (u Units) Join(from int) string {
	if from >= len(u.keys) {
		return ""
	}
	return strings.Join(u.keys[from:], u.sep)
}

// Slice returns the original substring covering units [begin, end).
// An empty range yields "".
func (u Units) Slice(begin, end int) string {
	if begin >= end || begin < 0 || end > len(u.spans) {
		return ""
	}
	return u.text[u.spans[begin].Start:u.spans[end-1].End]
}
