// Package sequence holds the (context, pattern) constraints of one
// category, ordered by context rank.
package sequence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/btree"
	"github.com/peco/graphmaster/registry"
)

var (
	// ErrDuplicateContext is returned when a sequence already has an
	// entry for the context.
	ErrDuplicateContext = errors.New("context already present in sequence")
	// ErrEmptyHistory is returned by Restore when nothing was saved.
	ErrEmptyHistory = errors.New("no saved sequence to restore")
	// ErrNilContext is returned when inserting an entry without a context.
	ErrNilContext = errors.New("nil context")
)

const degree = 8

// Entry constrains one context with one pattern.
type Entry struct {
	Context *registry.Context
	Pattern string
}

func (e Entry) String() string {
	return e.Context.Name() + "=" + e.Pattern
}

func lessEntry(a, b Entry) bool {
	return a.Context.Rank() < b.Context.Rank()
}

// Sequence is an ordered collection of entries, unique per context.
// It is not safe for concurrent use.
type Sequence struct {
	tree    *btree.BTreeG[Entry]
	history []*btree.BTreeG[Entry]
}

// New creates an empty Sequence.
func New() *Sequence {
	return &Sequence{tree: btree.NewG[Entry](degree, lessEntry)}
}

// Insert adds an entry for ctx, keeping rank order.
func (s *Sequence) Insert(ctx *registry.Context, pattern string) error {
	if ctx == nil {
		return ErrNilContext
	}
	e := Entry{Context: ctx, Pattern: pattern}
	if s.tree.Has(e) {
		return fmt.Errorf("%w: %s", ErrDuplicateContext, ctx.Name())
	}
	s.tree.ReplaceOrInsert(e)
	return nil
}

// Get returns the pattern recorded for ctx.
func (s *Sequence) Get(ctx *registry.Context) (string, bool) {
	e, ok := s.tree.Get(Entry{Context: ctx})
	return e.Pattern, ok
}

// Len returns the number of entries.
func (s *Sequence) Len() int {
	return s.tree.Len()
}

// Each calls fn for every entry in rank order until fn returns false.
func (s *Sequence) Each(fn func(Entry) bool) {
	s.tree.Ascend(btree.ItemIteratorG[Entry](fn))
}

// Entries returns the entries in rank order.
func (s *Sequence) Entries() []Entry {
	list := make([]Entry, 0, s.tree.Len())
	s.Each(func(e Entry) bool {
		list = append(list, e)
		return true
	})
	return list
}

// Clone returns an independent copy of s without its saved history.
func (s *Sequence) Clone() *Sequence {
	return &Sequence{tree: s.tree.Clone()}
}

// Save pushes a snapshot of the current entries.
func (s *Sequence) Save() {
	s.history = append(s.history, s.tree.Clone())
}

// Restore pops the most recent snapshot taken by Save, discarding every
// change made since.
func (s *Sequence) Restore() error {
	last := len(s.history) - 1
	if last < 0 {
		return ErrEmptyHistory
	}
	s.tree = s.history[last]
	s.history[last] = nil
	s.history = s.history[:last]
	return nil
}

func (s *Sequence) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	s.Each(func(e Entry) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(e.String())
		return true
	})
	sb.WriteByte(']')
	return sb.String()
}

// WithDefaults returns an iterator over every context of reg in rank
// order, yielding the sequence's own pattern where there is one and the
// context's default pattern otherwise. Contexts with neither are skipped.
func (s *Sequence) WithDefaults(reg *registry.Registry) *Iterator {
	return &Iterator{seq: s, contexts: reg.Contexts()}
}

// Iterator walks a sequence with defaults filled in. It cannot be
// restarted.
type Iterator struct {
	seq      *Sequence
	contexts []*registry.Context
	pos      int
	cur      Entry
}

// Next advances the iterator, reporting whether an entry is available.
func (it *Iterator) Next() bool {
	for it.pos < len(it.contexts) {
		c := it.contexts[it.pos]
		it.pos++
		if pattern, ok := it.seq.Get(c); ok {
			it.cur = Entry{Context: c, Pattern: pattern}
			return true
		}
		if b := c.Behaviour(); b.HasDefault {
			it.cur = Entry{Context: c, Pattern: b.DefaultPattern}
			return true
		}
	}
	it.cur = Entry{}
	return false
}

// Entry returns the current entry.
func (it *Iterator) Entry() Entry {
	return it.cur
}
