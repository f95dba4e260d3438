// Package registry keeps the ordered table of contexts. The rank a
// context receives on registration is its global match priority.
package registry

import (
	"errors"
	"fmt"
	"math"
	"sync"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/graphmaster/trie"
	"github.com/peco/graphmaster/unit"
)

var (
	// ErrDuplicateContext is returned when a context name is registered twice.
	ErrDuplicateContext = errors.New("context already registered")
	// ErrUnknownContext is returned when looking up a name that was never registered.
	ErrUnknownContext = errors.New("unknown context")
)

// LeafRank sorts after every real context. Only chain leaves use it.
const LeafRank = math.MaxInt

// Behaviour describes how a context's patterns are read and indexed.
type Behaviour struct {
	Syntax unit.Syntax
	// DefaultPattern stands in for the context in sequences that do not
	// mention it, when HasDefault is set.
	DefaultPattern string
	HasDefault     bool
	// Factory picks trie node types. Nil means trie.TrieFactory().
	Factory *trie.Factory
}

// WordBehaviour matches whitespace-delimited words, case-insensitively,
// and treats an unmentioned context as "*".
func WordBehaviour() Behaviour {
	return Behaviour{
		Syntax:         unit.DefaultSyntax(),
		DefaultPattern: unit.DefaultZeroOrMore,
		HasDefault:     true,
		Factory:        trie.TrieFactory(),
	}
}

// CharBehaviour matches single characters with a compact character trie.
func CharBehaviour() Behaviour {
	syn := unit.DefaultSyntax()
	syn.Granularity = unit.Char
	return Behaviour{
		Syntax:         syn,
		DefaultPattern: unit.DefaultZeroOrMore,
		HasDefault:     true,
		Factory:        trie.TrieFactory(),
	}
}

// ExactBehaviour matches words like WordBehaviour, but indexes
// wildcard-free pattern remainders as whole keys.
func ExactBehaviour() Behaviour {
	b := WordBehaviour()
	b.Factory = trie.LookupFactory()
	return b
}

// TrieFactory returns the factory used to build this context's tries.
func (b Behaviour) TrieFactory() *trie.Factory {
	if b.Factory == nil {
		return trie.TrieFactory()
	}
	return b.Factory
}

// Context is a registered, ranked input variable.
type Context struct {
	name       string
	rank       int
	behaviour  Behaviour
	generation uint64
}

// Name returns the context name.
func (c *Context) Name() string {
	return c.name
}

// Rank returns the match priority of the context; lower ranks are
// matched first.
func (c *Context) Rank() int {
	return c.rank
}

// Behaviour returns how the context is matched.
func (c *Context) Behaviour() Behaviour {
	return c.behaviour
}

// Generation returns the registry generation the context was created in.
func (c *Context) Generation() uint64 {
	return c.generation
}

func (c *Context) String() string {
	return fmt.Sprintf("%s(%d)", c.name, c.rank)
}

// Registry is an append-only, order-preserving table of contexts.
type Registry struct {
	mutex      sync.RWMutex
	contexts   []*Context
	byName     map[string]*Context
	generation uint64
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*Context)}
}

// Register adds a context with the next free rank.
func (r *Registry) Register(name string, b Behaviour) (*Context, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateContext, name)
	}
	c := &Context{
		name:       name,
		rank:       len(r.contexts),
		behaviour:  b,
		generation: r.generation,
	}
	r.contexts = append(r.contexts, c)
	r.byName[name] = c
	if pdebug.Enabled {
		pdebug.Printf("Registry.Register: %s (generation=%d)", c, r.generation)
	}
	return c, nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, b Behaviour) *Context {
	c, err := r.Register(name, b)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the context registered under name.
func (r *Registry) Lookup(name string) (*Context, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContext, name)
	}
	return c, nil
}

// Contains reports whether c belongs to the current generation of r.
func (r *Registry) Contains(c *Context) bool {
	if c == nil {
		return false
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return c.rank < len(r.contexts) && r.contexts[c.rank] == c
}

// At returns the context with the given rank, or nil.
func (r *Registry) At(rank int) *Context {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if rank < 0 || rank >= len(r.contexts) {
		return nil
	}
	return r.contexts[rank]
}

// Contexts returns every context in rank order.
func (r *Registry) Contexts() []*Context {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	list := make([]*Context, len(r.contexts))
	copy(list, r.contexts)
	return list
}

// Len returns the number of registered contexts.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.contexts)
}

// Generation counts resets. Anything built against an older generation
// is stale.
func (r *Registry) Generation() uint64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.generation
}

// Reset removes every context. Indexes built on the previous contexts
// must be rebuilt.
func (r *Registry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.contexts = nil
	r.byName = make(map[string]*Context)
	r.generation++
	if pdebug.Enabled {
		pdebug.Printf("Registry.Reset: now at generation %d", r.generation)
	}
}
