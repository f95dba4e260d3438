package trie

import "github.com/peco/graphmaster/match"

// End marks that a pattern may terminate at this position. Once the
// whole context has been consumed, matching hands over to the bound
// continuation. Longer patterns sharing the position continue in next.
type End struct {
	cont match.Continuation
	next Node
}

// Continuation returns what this terminal hands over to.
func (e *End) Continuation() match.Continuation {
	return e.cont
}

// SetContinuation binds what this terminal hands over to.
func (e *End) SetContinuation(c match.Continuation) {
	e.cont = c
}

// Next returns the node continuing longer patterns, if any.
func (e *End) Next() Node {
	return e.next
}

func (e *End) insert(f *Factory, p Pattern, depth int) (Node, *End, int) {
	if depth >= p.Len() {
		return e, e, depth
	}
	next := e.next
	if next == nil {
		next = f.create(p, depth)
	}
	next, leaf, d := next.insert(f, p, depth)
	e.next = next
	return e, leaf, d
}

func (e *End) match(s *match.State) bool {
	if e.cont != nil && s.Remaining() == 0 {
		if e.cont.Match(s) {
			return true
		}
	}
	if e.next == nil {
		return false
	}
	return e.next.match(s)
}

func (e *End) children() []Node {
	if e.next == nil {
		return nil
	}
	return []Node{e.next}
}

// bare reports whether nothing follows this terminal.
func (e *End) bare() bool {
	return e.next == nil
}
