package trie

import (
	"slices"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/graphmaster/match"
)

// Literal is a run of units that must appear verbatim, followed by next.
// The run is the longest prefix shared by every pattern inserted through
// this node; a diverging pattern splits it.
type Literal struct {
	units []string
	next  Node
}

// Units returns the keys of the run.
func (l *Literal) Units() []string {
	return l.units
}

// Next returns the node following the run.
func (l *Literal) Next() Node {
	return l.next
}

func (l *Literal) insert(f *Factory, p Pattern, depth int) (Node, *End, int) {
	if len(l.units) == 0 {
		// fresh node: take every literal unit up to the next wildcard
		end := p.literalRun(depth)
		if end == depth {
			panic("trie: literal node created for a non-literal position")
		}
		l.units = p.keys(depth, end)
		next, leaf, d := f.create(p, end).insert(f, p, end)
		l.next = next
		return l, leaf, d
	}

	i := 0
	for i < len(l.units) && depth+i < p.Len() {
		u := p.At(depth + i)
		if u.Kind != KindLiteral || u.Key != l.units[i] {
			break
		}
		i++
	}

	switch {
	case i == len(l.units):
		next, leaf, d := l.next.insert(f, p, depth+i)
		l.next = next
		return l, leaf, d
	case i == 0:
		return l.promote(f, p, depth)
	default:
		if pdebug.Enabled {
			pdebug.Printf("Literal.insert: splitting %q at %d for %q", l.units, i, p)
		}
		tail := &Literal{units: slices.Clone(l.units[i:]), next: l.next}
		l.units = slices.Clone(l.units[:i])
		next, leaf, d := tail.insert(f, p, depth+i)
		l.next = next
		return l, leaf, d
	}
}

// promote replaces l with a node able to hold both l and a pattern that
// shares nothing with it at this position.
func (l *Literal) promote(f *Factory, p Pattern, depth int) (Node, *End, int) {
	if depth >= p.Len() {
		return endHere(l, depth)
	}
	if p.At(depth).Kind != KindLiteral {
		if pdebug.Enabled {
			pdebug.Printf("Literal.insert: promoting %q to a branch for %s", l.units, p.At(depth).Kind)
		}
		b := &Branch{literal: l}
		return b.insert(f, p, depth)
	}
	fo := newFanout()
	fo.alts[l.units[0]] = l
	return fo.insert(f, p, depth)
}

func (l *Literal) match(s *match.State) bool {
	start := s.Depth()
	if s.Remaining() < len(l.units) {
		return false
	}
	u := s.Units()
	for i, k := range l.units {
		if u.Key(start+i) != k {
			return false
		}
	}
	s.SetDepth(start + len(l.units))
	if l.next.match(s) {
		return true
	}
	s.SetDepth(start)
	return false
}

func (l *Literal) children() []Node {
	return []Node{l.next}
}
