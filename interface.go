package graphmaster

import (
	"errors"
	"sync"
	"time"

	"github.com/peco/graphmaster/chain"
	"github.com/peco/graphmaster/match"
	"github.com/peco/graphmaster/registry"
)

var (
	// ErrNoContexts is returned when inserting before any context was
	// registered.
	ErrNoContexts = errors.New("no contexts registered")
	// ErrStaleIndex is returned when the registry was reset after the
	// index was built. Call Reset on the classifier before reusing it.
	ErrStaleIndex = errors.New("index was built for a previous registry generation")
	// ErrIncompleteContexts is returned when a sequence, with defaults
	// filled in, constrains no context at all.
	ErrIncompleteContexts = errors.New("sequence constrains no context")
	// ErrNoMatch is returned when no category matches the given values.
	ErrNoMatch = errors.New("no matching category")

	// ErrDuplicatePath is returned when the same sequence is inserted twice.
	ErrDuplicatePath = chain.ErrDuplicatePath
	// ErrInvalidWildcard is returned by Result for wildcard references
	// that do not name a capture.
	ErrInvalidWildcard = match.ErrInvalidWildcard
	// ErrStepLimit is returned by Match when the step budget ran out.
	ErrStepLimit = match.ErrStepLimit
)

// ValueProvider supplies the current value of a context by name. A
// context without a value matches as the empty string.
type ValueProvider interface {
	ContextValue(name string) (string, bool)
}

// ValueFunc adapts a function to ValueProvider.
type ValueFunc func(name string) (string, bool)

// ContextValue calls f.
func (f ValueFunc) ContextValue(name string) (string, bool) {
	return f(name)
}

// ValueMap is a fixed set of context values.
type ValueMap map[string]string

// ContextValue returns m[name].
func (m ValueMap) ContextValue(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Values holds a stack of values per context. Pushing a value shadows
// the current one until it is popped, which lets a recursive match run
// against a substituted value and then restore the original.
type Values struct {
	mutex  sync.Mutex
	stacks map[string][]string
}

// Observer is notified about classifier activity. Implementations must
// be safe for concurrent use, since matches may run in parallel.
type Observer interface {
	// ObserveInsert is called after every insertion with the resulting
	// number of categories and the insertion error, if any.
	ObserveInsert(size int, err error)
	// ObserveMatch is called after every match.
	ObserveMatch(steps int, elapsed time.Duration, err error)
	// ObserveReset is called when the index is cleared.
	ObserveReset()
}

type nopObserver struct{}

func (nopObserver) ObserveInsert(int, error) {}
func (nopObserver) ObserveMatch(int, time.Duration, error) {}
func (nopObserver) ObserveReset() {}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMaxSteps bounds the backtracking branch points a single match may
// try. Zero or less means unbounded.
func WithMaxSteps(n int) Option {
	return func(c *Classifier) {
		c.maxSteps = n
	}
}

// WithObserver registers o to be notified about inserts, matches and
// resets.
func WithObserver(o Observer) Option {
	return func(c *Classifier) {
		if o == nil {
			o = nopObserver{}
		}
		c.observer = o
	}
}

// Classifier indexes pattern sequences over the contexts of a registry
// and finds the best match for a set of context values.
//
// Inserts and resets are serialized with matches; matches may run
// concurrently with each other.
type Classifier struct {
	mutex      sync.RWMutex
	reg        *registry.Registry
	root       chain.Element
	count      int
	generation uint64
	maxSteps   int
	observer   Observer
}
