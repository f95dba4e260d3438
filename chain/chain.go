// Package chain links the per-context tries into one index. Each Node
// constrains a single context; the terminals of its trie continue into
// the nodes of higher-ranked contexts, and finally into a Leaf holding
// the category's value. A node's fallback covers categories that skip
// its context.
package chain

import (
	"errors"
	"fmt"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/graphmaster/match"
	"github.com/peco/graphmaster/registry"
	"github.com/peco/graphmaster/sequence"
	"github.com/peco/graphmaster/trie"
)

// ErrDuplicatePath is returned when the exact same sequence has already
// been inserted.
var ErrDuplicatePath = errors.New("pattern path already exists")

// Element is a *Node or a *Leaf.
type Element interface {
	match.Continuation
	// Rank orders elements; a Leaf sorts after every context.
	Rank() int
	element()
}

// Node constrains one context with a trie. Alternatives for contexts of
// a higher rank, tried when this node fails, hang off next.
type Node struct {
	ctx  *registry.Context
	trie trie.Node
	next Element
}

// Leaf terminates a fully matched sequence.
type Leaf struct {
	value any
}

func (*Node) element() {}
func (*Leaf) element() {}

// Context returns the context this node constrains.
func (n *Node) Context() *registry.Context {
	return n.ctx
}

// Rank returns the rank of the node's context.
func (n *Node) Rank() int {
	return n.ctx.Rank()
}

// Trie returns the root of the node's pattern trie.
func (n *Node) Trie() trie.Node {
	return n.trie
}

// Next returns the fallback element.
func (n *Node) Next() Element {
	return n.next
}

// Rank returns registry.LeafRank.
func (l *Leaf) Rank() int {
	return registry.LeafRank
}

// Value returns the value stored in the leaf.
func (l *Leaf) Value() any {
	return l.value
}

// Match accepts the leaf's value.
func (l *Leaf) Match(s *match.State) bool {
	s.Accept(l.value)
	return true
}

// Match runs the node's trie against its context and falls back to next
// when the trie, or anything it continues into, fails.
func (n *Node) Match(s *match.State) bool {
	if n.trie == nil {
		panic(fmt.Sprintf("chain: node for %s has no trie", n.ctx))
	}

	s.Enter(n.ctx.Rank())
	if trie.Match(n.trie, s) {
		s.Commit()
		return true
	}
	s.Leave()

	if n.next == nil || !s.Step() {
		return false
	}
	return n.next.Match(s)
}

// Insert adds entries, which must be in ascending rank order, below e
// and binds value at the end of the path. It returns the element that
// replaces e.
func Insert(e Element, entries []sequence.Entry, value any) (Element, error) {
	if e == nil {
		return build(entries, value), nil
	}

	rank := registry.LeafRank
	if len(entries) > 0 {
		rank = entries[0].Context.Rank()
	}

	switch {
	case rank > e.Rank():
		n := e.(*Node) // nothing ranks above a leaf
		next, err := Insert(n.next, entries, value)
		if err != nil {
			return e, err
		}
		n.next = next
		return n, nil
	case rank < e.Rank():
		if pdebug.Enabled {
			pdebug.Printf("chain.Insert: splicing %s in front of rank %d", entries[0].Context, e.Rank())
		}
		fresh := build(entries, value).(*Node)
		fresh.next = e
		return fresh, nil
	}

	switch v := e.(type) {
	case *Leaf:
		return e, ErrDuplicatePath
	case *Node:
		if err := v.insert(entries, value); err != nil {
			return e, err
		}
		return v, nil
	default:
		panic(fmt.Sprintf("chain: unknown element %T", e))
	}
}

func build(entries []sequence.Entry, value any) Element {
	if len(entries) == 0 {
		return &Leaf{value: value}
	}
	n := &Node{ctx: entries[0].Context}
	if err := n.insert(entries, value); err != nil {
		// a fresh node has nothing to collide with
		panic(err)
	}
	return n
}

func (n *Node) insert(entries []sequence.Entry, value any) error {
	ent := entries[0]
	if ent.Context != n.ctx {
		panic(fmt.Sprintf("chain: entry for %s inserted into node for %s", ent.Context, n.ctx))
	}

	b := n.ctx.Behaviour()
	root, leaf := trie.Insert(n.trie, b.TrieFactory(), trie.Compile(ent.Pattern, b.Syntax))
	n.trie = root

	var cont Element
	if c := leaf.Continuation(); c != nil {
		cont = c.(Element)
	}
	cont, err := Insert(cont, entries[1:], value)
	if err != nil {
		return err
	}
	leaf.SetContinuation(cont)
	return nil
}

// Walk visits e and every element reachable from it: fallbacks and the
// continuations bound to trie terminals.
func Walk(e Element, fn func(Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	n, ok := e.(*Node)
	if !ok {
		return
	}
	trie.Walk(n.trie, func(tn trie.Node) bool {
		if end, ok := tn.(*trie.End); ok {
			if c, ok := end.Continuation().(Element); ok {
				Walk(c, fn)
			}
		}
		return true
	})
	Walk(n.next, fn)
}

// Leaves counts the leaves reachable from e.
func Leaves(e Element) int {
	count := 0
	Walk(e, func(e Element) bool {
		if _, ok := e.(*Leaf); ok {
			count++
		}
		return true
	})
	return count
}
