// Package graphmaster implements a multi-context pattern classifier.
//
// Contexts are registered in priority order in a registry.Registry.
// Categories are inserted as a sequence of (context, pattern) entries
// plus an opaque value. Matching takes the current value of every
// context and returns the value of the single best category along with
// the text bound to each of its wildcards.
//
// Patterns are made of literal units and two wildcards: "_" binds one or
// more units and is preferred over literals, "*" binds zero or more units
// and is tried last. Wildcards are reluctant and consume as little as
// possible. Contexts are matched in rank order; a failure in a later
// context backtracks into the earlier ones.
package graphmaster

import (
	"context"
	"time"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/graphmaster/chain"
	"github.com/peco/graphmaster/match"
	"github.com/peco/graphmaster/registry"
	"github.com/peco/graphmaster/sequence"
	"github.com/peco/graphmaster/unit"
	"github.com/pkg/errors"
)

// New creates an empty Classifier over the contexts of reg.
func New(reg *registry.Registry, options ...Option) *Classifier {
	c := &Classifier{
		reg:        reg,
		generation: reg.Generation(),
		observer:   nopObserver{},
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Registry returns the registry the classifier indexes.
func (c *Classifier) Registry() *registry.Registry {
	return c.reg
}

// NewSequence starts an empty pattern sequence for Insert.
func (c *Classifier) NewSequence() *sequence.Sequence {
	return sequence.New()
}

// Len returns the number of categories inserted since the last Reset.
func (c *Classifier) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.count
}

// Root returns the first element of the context chain, or nil when
// nothing was inserted.
func (c *Classifier) Root() chain.Element {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.root
}

// Reset drops every category and adopts the registry's current
// generation. Reset the registry first when the contexts change.
func (c *Classifier) Reset() {
	c.mutex.Lock()
	c.root = nil
	c.count = 0
	c.generation = c.reg.Generation()
	gen := c.generation
	c.mutex.Unlock()

	if pdebug.Enabled {
		pdebug.Printf("Classifier.Reset: generation %d", gen)
	}
	c.observer.ObserveReset()
}

// Insert adds the category described by seq with the given value.
// Contexts seq does not mention take their default pattern, or stay
// unconstrained if they have none.
func (c *Classifier) Insert(seq *sequence.Sequence, value any) (err error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Classifier.Insert %s", seq).BindError(&err)
		defer g.End()
	}

	c.mutex.Lock()
	defer func() {
		size := c.count
		c.mutex.Unlock()
		c.observer.ObserveInsert(size, err)
	}()

	if c.reg.Len() == 0 {
		return ErrNoContexts
	}
	if c.generation != c.reg.Generation() {
		return ErrStaleIndex
	}

	for _, e := range seq.Entries() {
		if !c.reg.Contains(e.Context) {
			return errors.Wrapf(registry.ErrUnknownContext, "context %s is not part of the registry", e.Context)
		}
	}

	var entries []sequence.Entry
	for it := seq.WithDefaults(c.reg); it.Next(); {
		entries = append(entries, it.Entry())
	}
	if len(entries) == 0 {
		return ErrIncompleteContexts
	}

	root, err := chain.Insert(c.root, entries, value)
	if err != nil {
		return errors.Wrapf(err, "failed to insert %s", seq)
	}
	c.root = root
	c.count++
	return nil
}

// Match finds the best category for the context values supplied by vp.
// It returns ErrNoMatch when no category applies, and ErrStepLimit or
// the context's error when the search was abandoned.
func (c *Classifier) Match(ctx context.Context, vp ValueProvider) (res *Result, err error) {
	if pdebug.Enabled {
		g := pdebug.Marker("Classifier.Match").BindError(&err)
		defer g.End()
	}

	start := time.Now()
	steps := 0
	defer func() {
		c.observer.ObserveMatch(steps, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contexts := c.reg.Contexts()
	inputs := make([]unit.Units, len(contexts))
	for i, rc := range contexts {
		v, _ := vp.ContextValue(rc.Name())
		inputs[i] = unit.Split(v, rc.Behaviour().Syntax)
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.generation != c.reg.Generation() {
		return nil, ErrStaleIndex
	}
	if c.root == nil {
		return nil, ErrNoMatch
	}

	s := match.New(ctx, inputs)
	s.SetMaxSteps(c.maxSteps)
	ok := c.root.Match(s)
	steps = s.Steps()
	if err := s.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoMatch
	}

	value, _ := s.Value()
	return &Result{value: value, contexts: contexts, state: s}, nil
}
