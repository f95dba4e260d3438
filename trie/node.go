// Package trie implements the per-context pattern index: literal runs,
// reluctant wildcards, branches ordered by specificity and pattern
// terminals, together with incremental insertion and backtracking match.
package trie

import (
	"errors"
	"fmt"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/graphmaster/match"
)

// ErrIncompleteInsert is the panic value raised when an insertion stops
// before consuming its whole pattern.
var ErrIncompleteInsert = errors.New("trie insertion did not consume the whole pattern")

// Node is one position of a pattern trie. The set of implementations is
// closed: *Literal, *Fanout, *Lookup, *Wildcard, *Branch and *End.
type Node interface {
	// insert adds the units of p from depth on below this node. It
	// returns the node that replaces this one in its parent, the
	// terminal reached by the pattern, and the depth it advanced to.
	insert(f *Factory, p Pattern, depth int) (Node, *End, int)
	// match tries to consume the active context from the state's depth.
	// On failure depth and captures are exactly as they were on entry.
	match(s *match.State) bool
	children() []Node
}

// Insert adds p to the trie rooted at root, creating the root if it is
// nil. It returns the (possibly replaced) root and the terminal the
// pattern ends at, which the caller binds to what follows.
func Insert(root Node, f *Factory, p Pattern) (Node, *End) {
	if pdebug.Enabled {
		g := pdebug.Marker("trie.Insert %q (factory=%s)", p, f.Name())
		defer g.End()
	}

	if root == nil {
		root = f.create(p, 0)
	}
	root, leaf, depth := root.insert(f, p, 0)
	if depth != p.Len() || leaf == nil {
		panic(fmt.Errorf("%w: %q stopped at %d of %d", ErrIncompleteInsert, p, depth, p.Len()))
	}
	return root, leaf
}

// Match runs the trie rooted at root against the active context of s.
func Match(root Node, s *match.State) bool {
	if root == nil {
		return false
	}
	return root.match(s)
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the node it was called for.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.children() {
		Walk(c, fn)
	}
}

// Count returns the number of nodes reachable from n.
func Count(n Node) int {
	count := 0
	Walk(n, func(Node) bool {
		count++
		return true
	})
	return count
}

// Terminals returns the number of pattern terminals reachable from n.
func Terminals(n Node) int {
	count := 0
	Walk(n, func(n Node) bool {
		if _, ok := n.(*End); ok {
			count++
		}
		return true
	})
	return count
}

// endHere handles a pattern that ends at the position occupied by n:
// a terminal is put in front of n, which stays reachable through it.
func endHere(n Node, depth int) (Node, *End, int) {
	e := &End{next: n}
	return e, e, depth
}
