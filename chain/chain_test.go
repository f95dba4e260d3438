package chain

import (
	"context"
	"testing"

	"github.com/peco/graphmaster/match"
	"github.com/peco/graphmaster/registry"
	"github.com/peco/graphmaster/sequence"
	"github.com/peco/graphmaster/unit"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	reg   *registry.Registry
	input *registry.Context
	that  *registry.Context
	topic *registry.Context
}

func newFixture() *fixture {
	reg := registry.New()
	return &fixture{
		reg:   reg,
		input: reg.MustRegister("input", registry.WordBehaviour()),
		that:  reg.MustRegister("that", registry.WordBehaviour()),
		topic: reg.MustRegister("topic", registry.ExactBehaviour()),
	}
}

func (f *fixture) entries(pairs ...any) []sequence.Entry {
	var list []sequence.Entry
	for i := 0; i < len(pairs); i += 2 {
		list = append(list, sequence.Entry{
			Context: pairs[i].(*registry.Context),
			Pattern: pairs[i+1].(string),
		})
	}
	return list
}

func (f *fixture) state(values ...string) *match.State {
	inputs := make([]unit.Units, f.reg.Len())
	for i, c := range f.reg.Contexts() {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		inputs[i] = unit.Split(v, c.Behaviour().Syntax)
	}
	return match.New(context.Background(), inputs)
}

func mustInsert(t *testing.T, root Element, entries []sequence.Entry, value any) Element {
	t.Helper()
	root, err := Insert(root, entries, value)
	require.NoError(t, err)
	return root
}

func matchValue(t *testing.T, root Element, s *match.State) (any, bool) {
	t.Helper()
	if !root.Match(s) {
		require.True(t, s.Clean(), "failed match left state behind")
		return nil, false
	}
	return s.Value()
}

func TestInsertSplicesByRank(t *testing.T) {
	f := newFixture()

	root := mustInsert(t, nil, f.entries(f.that, "HI"), "that only")
	require.Equal(t, "that", root.(*Node).Context().Name())

	root = mustInsert(t, root, f.entries(f.input, "HELLO"), "input only")
	n, ok := root.(*Node)
	require.True(t, ok)
	require.Equal(t, "input", n.Context().Name(), "a lower rank is spliced in front")
	require.Equal(t, "that", n.Next().(*Node).Context().Name())

	root = mustInsert(t, root, f.entries(f.topic, "WEATHER"), "topic only")
	require.Equal(t, "topic", root.(*Node).Next().(*Node).Next().(*Node).Context().Name(),
		"a higher rank is appended after the fallbacks")
	require.Equal(t, 3, Leaves(root))

	v, ok := matchValue(t, root, f.state("HELLO", "", ""))
	require.True(t, ok)
	require.Equal(t, "input only", v)

	v, ok = matchValue(t, root, f.state("BYE", "HI", ""))
	require.True(t, ok)
	require.Equal(t, "that only", v)

	v, ok = matchValue(t, root, f.state("BYE", "NO", "weather"))
	require.True(t, ok)
	require.Equal(t, "topic only", v)

	_, ok = matchValue(t, root, f.state("BYE", "NO", "SPORTS"))
	require.False(t, ok)
}

func TestDuplicatePath(t *testing.T) {
	f := newFixture()

	root := mustInsert(t, nil, f.entries(f.input, "HELLO *", f.that, "*"), "first")
	root2, err := Insert(root, f.entries(f.input, "hello *", f.that, "*"), "second")
	require.ErrorIs(t, err, ErrDuplicatePath, "patterns differing only in case collide")
	require.Same(t, root, root2)

	v, ok := matchValue(t, root, f.state("hello world", "x"))
	require.True(t, ok)
	require.Equal(t, "first", v, "the original binding survives")

	// a strict prefix is a different path
	root = mustInsert(t, root, f.entries(f.input, "HELLO *"), "prefix")
	require.Equal(t, 2, Leaves(root))
}

func TestFallbackForSkippedContext(t *testing.T) {
	f := newFixture()

	var root Element
	root = mustInsert(t, root, f.entries(f.input, "HELLO", f.that, "HI"), "with that")
	root = mustInsert(t, root, f.entries(f.input, "HELLO"), "without that")

	v, ok := matchValue(t, root, f.state("HELLO", "HI"))
	require.True(t, ok)
	require.Equal(t, "with that", v)

	s := f.state("HELLO", "BYE")
	v, ok = matchValue(t, root, s)
	require.True(t, ok)
	require.Equal(t, "without that", v)
	require.True(t, s.Entered(f.input.Rank()))
	require.False(t, s.Entered(f.that.Rank()), "the skipped context was not constrained")

	w, err := s.Wildcard(f.that.Rank(), 1)
	require.NoError(t, err)
	require.Equal(t, "BYE", w, "an unconstrained context answers with its whole value")
}

func TestBacktrackAcrossContexts(t *testing.T) {
	f := newFixture()

	var root Element
	root = mustInsert(t, root, f.entries(f.input, "HELLO *", f.that, "HI"), "specific")
	root = mustInsert(t, root, f.entries(f.input, "*", f.that, "*"), "general")

	s := f.state("HELLO THERE FRIEND", "GOODBYE")
	v, ok := matchValue(t, root, s)
	require.True(t, ok)
	require.Equal(t, "general", v, "a failure in a later context backtracks into an earlier one")

	w, err := s.Wildcard(f.input.Rank(), 1)
	require.NoError(t, err)
	require.Equal(t, "HELLO THERE FRIEND", w, "captures of the abandoned path are gone")
	_, err = s.Wildcard(f.input.Rank(), 2)
	require.ErrorIs(t, err, match.ErrInvalidWildcard)

	w, err = s.Wildcard(f.that.Rank(), 1)
	require.NoError(t, err)
	require.Equal(t, "GOODBYE", w)

	s = f.state("HELLO THERE FRIEND", "HI")
	v, ok = matchValue(t, root, s)
	require.True(t, ok)
	require.Equal(t, "specific", v)
	w, err = s.Wildcard(f.input.Rank(), 1)
	require.NoError(t, err)
	require.Equal(t, "THERE FRIEND", w)
}

func TestLeafOnlyChain(t *testing.T) {
	root := mustInsert(t, nil, nil, "anything")
	_, ok := root.(*Leaf)
	require.True(t, ok)
	require.Equal(t, registry.LeafRank, root.Rank())

	_, err := Insert(root, nil, "again")
	require.ErrorIs(t, err, ErrDuplicatePath)

	f := newFixture()
	root = mustInsert(t, root, f.entries(f.input, "HELLO"), "hello")
	require.Equal(t, "input", root.(*Node).Context().Name())

	v, ok := matchValue(t, root, f.state("GOODBYE"))
	require.True(t, ok)
	require.Equal(t, "anything", v)
}

func TestStepLimitStopsFallbacks(t *testing.T) {
	f := newFixture()

	var root Element
	root = mustInsert(t, root, f.entries(f.input, "A _ B"), "a")
	root = mustInsert(t, root, f.entries(f.that, "X"), "x")

	s := f.state("A C C C C C C C C C", "X")
	s.SetMaxSteps(3)
	_, ok := matchValue(t, root, s)
	require.False(t, ok)
	require.ErrorIs(t, s.Err(), match.ErrStepLimit)
}

func TestNodeWithoutTriePanics(t *testing.T) {
	f := newFixture()
	n := &Node{ctx: f.input}
	require.Panics(t, func() { n.Match(f.state("HELLO")) })
}

func TestWalk(t *testing.T) {
	f := newFixture()

	var root Element
	root = mustInsert(t, root, f.entries(f.input, "HELLO", f.that, "HI"), 1)
	root = mustInsert(t, root, f.entries(f.input, "HELLO", f.topic, "T"), 2)
	root = mustInsert(t, root, f.entries(f.that, "BYE"), 3)

	var kinds []string
	Walk(root, func(e Element) bool {
		switch v := e.(type) {
		case *Node:
			kinds = append(kinds, v.Context().Name())
		case *Leaf:
			kinds = append(kinds, "leaf")
		}
		return true
	})
	require.Equal(t, []string{"input", "that", "leaf", "topic", "leaf", "that", "leaf"}, kinds)
}
