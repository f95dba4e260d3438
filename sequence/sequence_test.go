package sequence

import (
	"testing"

	"github.com/peco/graphmaster/registry"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) (*registry.Registry, *registry.Context, *registry.Context, *registry.Context) {
	t.Helper()
	r := registry.New()
	input := r.MustRegister("input", registry.WordBehaviour())
	that := r.MustRegister("that", registry.WordBehaviour())
	noDefault := registry.WordBehaviour()
	noDefault.HasDefault = false
	topic := r.MustRegister("topic", noDefault)
	return r, input, that, topic
}

func TestInsertKeepsRankOrder(t *testing.T) {
	_, input, that, topic := newRegistry(t)

	s := New()
	require.NoError(t, s.Insert(topic, "WEATHER"))
	require.NoError(t, s.Insert(input, "HELLO *"))
	require.NoError(t, s.Insert(that, "HI"))
	require.Equal(t, 3, s.Len())
	require.Equal(t, "[input=HELLO *, that=HI, topic=WEATHER]", s.String())

	err := s.Insert(that, "BYE")
	require.ErrorIs(t, err, ErrDuplicateContext)
	p, ok := s.Get(that)
	require.True(t, ok)
	require.Equal(t, "HI", p, "rejected insert keeps the original entry")

	require.ErrorIs(t, s.Insert(nil, "X"), ErrNilContext)
}

func TestEachStopsEarly(t *testing.T) {
	_, input, that, _ := newRegistry(t)
	s := New()
	require.NoError(t, s.Insert(input, "A"))
	require.NoError(t, s.Insert(that, "B"))

	var seen []string
	s.Each(func(e Entry) bool {
		seen = append(seen, e.Pattern)
		return false
	})
	require.Equal(t, []string{"A"}, seen)
}

func TestSaveRestore(t *testing.T) {
	_, input, that, topic := newRegistry(t)

	s := New()
	require.ErrorIs(t, s.Restore(), ErrEmptyHistory)

	require.NoError(t, s.Insert(input, "HELLO"))
	s.Save()
	require.NoError(t, s.Insert(that, "HI"))
	s.Save()
	require.NoError(t, s.Insert(topic, "X"))
	require.Equal(t, 3, s.Len())

	require.NoError(t, s.Restore())
	require.Equal(t, "[input=HELLO, that=HI]", s.String())

	require.NoError(t, s.Restore())
	require.Equal(t, "[input=HELLO]", s.String())

	require.ErrorIs(t, s.Restore(), ErrEmptyHistory)
	require.Equal(t, 1, s.Len())
}

func TestClone(t *testing.T) {
	_, input, that, _ := newRegistry(t)
	s := New()
	require.NoError(t, s.Insert(input, "A"))

	c := s.Clone()
	require.NoError(t, c.Insert(that, "B"))
	require.Equal(t, 1, s.Len())
	require.Equal(t, 2, c.Len())
}

func TestWithDefaults(t *testing.T) {
	r, _, that, _ := newRegistry(t)

	s := New()
	require.NoError(t, s.Insert(that, "HI THERE"))

	var got []Entry
	it := s.WithDefaults(r)
	for it.Next() {
		got = append(got, it.Entry())
	}
	require.Len(t, got, 2, "topic has no default and is skipped")
	require.Equal(t, "input=*", got[0].String())
	require.Equal(t, "that=HI THERE", got[1].String())

	require.False(t, it.Next(), "iterator is exhausted for good")
	require.Equal(t, Entry{}, it.Entry())
}
