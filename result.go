package graphmaster

import (
	"github.com/peco/graphmaster/match"
	"github.com/peco/graphmaster/registry"
	"github.com/pkg/errors"
)

// Result is the outcome of a successful match.
type Result struct {
	value    any
	contexts []*registry.Context
	state    *match.State
}

// Value returns the value bound to the matched category.
func (r *Result) Value() any {
	return r.value
}

// Steps returns the number of backtracking branch points the match tried.
func (r *Result) Steps() int {
	return r.state.Steps()
}

func (r *Result) rank(name string) (int, error) {
	for _, c := range r.contexts {
		if c.Name() == name {
			return c.Rank(), nil
		}
	}
	return -1, errors.Wrapf(ErrInvalidWildcard, "unknown context %q", name)
}

// Wildcard returns the text bound to the index-th (1-based) wildcard of
// the named context. For a context the matched category did not
// constrain, index 1 returns the context's whole value.
func (r *Result) Wildcard(name string, index int) (string, error) {
	rank, err := r.rank(name)
	if err != nil {
		return "", err
	}
	s, err := r.state.Wildcard(rank, index)
	if err != nil {
		return "", errors.Wrapf(err, "wildcard %d of %q", index, name)
	}
	return s, nil
}

// Wildcards returns every capture of the named context in pattern order.
func (r *Result) Wildcards(name string) []string {
	rank, err := r.rank(name)
	if err != nil {
		return nil
	}
	caps := r.state.Captures(rank)
	if len(caps) == 0 {
		if r.state.Entered(rank) {
			return nil
		}
		return []string{r.state.Input(rank).Text()}
	}
	list := make([]string, len(caps))
	for i, c := range caps {
		list[i] = r.state.Input(rank).Slice(c.Begin, c.End)
	}
	return list
}
