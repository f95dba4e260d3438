package trie

import (
	"maps"
	"slices"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/graphmaster/match"
)

type lookupEntry struct {
	keys []string
	end  *End
}

// Lookup indexes wildcard-free pattern suffixes by their whole remaining
// key. It only matches when the rest of the input equals a stored suffix.
type Lookup struct {
	sep     string
	entries map[string]*lookupEntry
}

// Keys returns the stored suffix keys, sorted.
func (lk *Lookup) Keys() []string {
	return slices.Sorted(maps.Keys(lk.entries))
}

// Len returns the number of stored suffixes.
func (lk *Lookup) Len() int {
	return len(lk.entries)
}

func (lk *Lookup) insert(f *Factory, p Pattern, depth int) (Node, *End, int) {
	if depth >= p.Len() {
		return endHere(lk, depth)
	}
	if p.At(depth).Kind != KindLiteral {
		b := &Branch{literal: lk}
		return b.insert(f, p, depth)
	}
	if p.HasWildcard(depth) {
		return lk.rebuild(f).insert(f, p, depth)
	}

	key := p.suffixKey(depth)
	ent, ok := lk.entries[key]
	if !ok {
		ent = &lookupEntry{keys: p.keys(depth, p.Len()), end: &End{}}
		lk.entries[key] = ent
	}
	return lk, ent.end, p.Len()
}

// rebuild turns the stored suffixes into an equivalent trie so that a
// suffix containing a wildcard can be added next to them. Terminals are
// rebound to the continuations of the entries they replace.
func (lk *Lookup) rebuild(f *Factory) Node {
	if pdebug.Enabled {
		pdebug.Printf("Lookup.rebuild: %d entries", len(lk.entries))
	}
	nf := f.without(CreatorLookup)
	var root Node
	for _, key := range lk.Keys() {
		ent := lk.entries[key]
		p := literalPattern(ent.keys, lk.sep)
		if root == nil {
			root = nf.create(p, 0)
		}
		var leaf *End
		root, leaf, _ = root.insert(nf, p, 0)
		leaf.cont = ent.end.cont
	}
	return root
}

func (lk *Lookup) match(s *match.State) bool {
	start := s.Depth()
	if s.Remaining() == 0 {
		return false
	}
	u := s.Units()
	ent, ok := lk.entries[u.Join(start)]
	if !ok {
		return false
	}
	s.SetDepth(u.Len())
	if ent.end.match(s) {
		return true
	}
	s.SetDepth(start)
	return false
}

func (lk *Lookup) children() []Node {
	nodes := make([]Node, 0, len(lk.entries))
	for _, k := range lk.Keys() {
		nodes = append(nodes, lk.entries[k].end)
	}
	return nodes
}
