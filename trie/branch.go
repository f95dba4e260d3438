package trie

import "github.com/peco/graphmaster/match"

// Branch holds the alternatives at one position, at most one of each
// kind. Matching tries them from the most to the least specific: literal,
// one-or-more wildcard, zero-or-more wildcard. The first success wins.
type Branch struct {
	underscore Node
	literal    Node
	star       Node
}

// Underscore returns the one-or-more wildcard alternative.
func (b *Branch) Underscore() Node {
	return b.underscore
}

// Literal returns the literal alternative.
func (b *Branch) Literal() Node {
	return b.literal
}

// Star returns the zero-or-more wildcard alternative.
func (b *Branch) Star() Node {
	return b.star
}

func (b *Branch) slot(k Kind) *Node {
	switch k {
	case KindOneOrMore:
		return &b.underscore
	case KindZeroOrMore:
		return &b.star
	default:
		return &b.literal
	}
}

func (b *Branch) set(k Kind, n Node) {
	*b.slot(k) = n
}

func (b *Branch) insert(f *Factory, p Pattern, depth int) (Node, *End, int) {
	if depth >= p.Len() {
		return endHere(b, depth)
	}
	slot := b.slot(p.At(depth).Kind)
	child := *slot
	if child == nil {
		child = f.create(p, depth)
	}
	child, leaf, d := child.insert(f, p, depth)
	*slot = child
	return b, leaf, d
}

func (b *Branch) match(s *match.State) bool {
	for _, c := range [...]Node{b.literal, b.underscore, b.star} {
		if c == nil {
			continue
		}
		if !s.Step() {
			return false
		}
		if c.match(s) {
			return true
		}
	}
	return false
}

func (b *Branch) children() []Node {
	var nodes []Node
	for _, c := range [...]Node{b.literal, b.underscore, b.star} {
		if c != nil {
			nodes = append(nodes, c)
		}
	}
	return nodes
}
