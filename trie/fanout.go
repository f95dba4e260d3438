package trie

import (
	"maps"
	"slices"

	"github.com/peco/graphmaster/match"
)

// Fanout holds literal alternatives at one position, keyed by their
// first unit. At most one alternative can apply to a given input.
type Fanout struct {
	alts map[string]Node
}

func newFanout() *Fanout {
	return &Fanout{alts: make(map[string]Node)}
}

// Keys returns the first units of the alternatives, sorted.
func (fo *Fanout) Keys() []string {
	return slices.Sorted(maps.Keys(fo.alts))
}

// Child returns the alternative starting with key.
func (fo *Fanout) Child(key string) Node {
	return fo.alts[key]
}

func (fo *Fanout) insert(f *Factory, p Pattern, depth int) (Node, *End, int) {
	if depth >= p.Len() {
		return endHere(fo, depth)
	}
	u := p.At(depth)
	if u.Kind != KindLiteral {
		b := &Branch{literal: fo}
		return b.insert(f, p, depth)
	}
	child, ok := fo.alts[u.Key]
	if !ok {
		child = f.create(p, depth)
	}
	child, leaf, d := child.insert(f, p, depth)
	fo.alts[u.Key] = child
	return fo, leaf, d
}

func (fo *Fanout) match(s *match.State) bool {
	if s.Remaining() == 0 {
		return false
	}
	child, ok := fo.alts[s.Units().Key(s.Depth())]
	if !ok {
		return false
	}
	return child.match(s)
}

func (fo *Fanout) children() []Node {
	nodes := make([]Node, 0, len(fo.alts))
	for _, k := range fo.Keys() {
		nodes = append(nodes, fo.alts[k])
	}
	return nodes
}
