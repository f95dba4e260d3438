package trie

import "github.com/peco/graphmaster/match"

// Wildcard is a reluctant wildcard: it tries the shortest span first and
// only grows it while what follows fails to match. A one-or-more
// wildcard needs at least one unit, a zero-or-more wildcard may bind
// nothing.
type Wildcard struct {
	kind Kind
	next Node
}

// Kind returns KindOneOrMore or KindZeroOrMore.
func (w *Wildcard) Kind() Kind {
	return w.kind
}

// Next returns the node following the wildcard.
func (w *Wildcard) Next() Node {
	return w.next
}

// Trailing reports whether the wildcard is the last unit of every
// pattern through it, in which case it simply takes the rest of the input.
func (w *Wildcard) Trailing() bool {
	e, ok := w.next.(*End)
	return ok && e.bare()
}

func (w *Wildcard) insert(f *Factory, p Pattern, depth int) (Node, *End, int) {
	if depth >= p.Len() {
		return endHere(w, depth)
	}
	if p.At(depth).Kind != w.kind {
		b := &Branch{}
		b.set(w.kind, w)
		return b.insert(f, p, depth)
	}

	next := w.next
	if next == nil {
		next = f.create(p, depth+1)
	}
	next, leaf, d := next.insert(f, p, depth+1)
	w.next = next
	return w, leaf, d
}

func (w *Wildcard) match(s *match.State) bool {
	start := s.Depth()
	total := s.Units().Len()
	first := start
	if w.kind == KindOneOrMore {
		first++
	}
	if first > total {
		return false
	}

	s.OpenCapture(start)
	if w.Trailing() {
		s.ExtendCapture(total)
		s.SetDepth(total)
		if w.next.match(s) {
			return true
		}
	} else {
		for end := first; end <= total; end++ {
			if !s.Step() {
				break
			}
			s.ExtendCapture(end)
			s.SetDepth(end)
			if w.next.match(s) {
				return true
			}
		}
	}
	s.DropCapture()
	s.SetDepth(start)
	return false
}

func (w *Wildcard) children() []Node {
	if w.next == nil {
		return nil
	}
	return []Node{w.next}
}
