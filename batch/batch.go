// Package batch matches many sets of context values against one
// classifier concurrently. The classifier must not be modified while a
// batch is running.
package batch

import (
	"context"
	"errors"
	"runtime"

	pdebug "github.com/lestrrat-go/pdebug"
	"github.com/peco/graphmaster"
	"golang.org/x/sync/errgroup"
)

// Matcher is the part of *graphmaster.Classifier a batch needs.
type Matcher interface {
	Match(context.Context, graphmaster.ValueProvider) (*graphmaster.Result, error)
}

// Outcome is the result of matching one input. Err holds failures that
// only concern this input, such as graphmaster.ErrNoMatch or
// graphmaster.ErrStepLimit.
type Outcome struct {
	Index  int
	Result *graphmaster.Result
	Err    error
}

// Matched reports whether the input matched a category.
func (o Outcome) Matched() bool {
	return o.Err == nil && o.Result != nil
}

// Run matches every input using at most workers goroutines, or one per
// CPU when workers is not positive. Outcomes are returned in input
// order. Cancelling ctx stops the run and returns the context's error;
// inputs that were not matched by then carry it as their Err.
func Run(ctx context.Context, m Matcher, inputs []graphmaster.ValueProvider, workers int) (outcomes []Outcome, err error) {
	if pdebug.Enabled {
		g := pdebug.Marker("batch.Run (%d inputs, %d workers)", len(inputs), workers).BindError(&err)
		defer g.End()
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes = make([]Outcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := m.Match(gctx, in)
			if err != nil && isAbort(err) {
				return err
			}
			outcomes[i] = Outcome{Index: i, Result: res, Err: err}
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		for i := range outcomes {
			if outcomes[i].Result == nil && outcomes[i].Err == nil {
				outcomes[i] = Outcome{Index: i, Err: err}
			}
		}
		return outcomes, err
	}
	return outcomes, nil
}

func isAbort(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
