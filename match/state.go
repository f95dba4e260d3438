// Package match holds the cursor that is threaded through one match
// attempt: the frozen context values, the active context and depth, the
// checkpoints used to unwind across context boundaries, and the open
// wildcard captures.
package match

import (
	"context"
	"errors"

	"github.com/peco/graphmaster/unit"
)

var (
	// ErrInvalidWildcard is returned when a wildcard reference does not
	// name a capture of the matched category.
	ErrInvalidWildcard = errors.New("invalid wildcard reference")
	// ErrStepLimit is reported when a match attempt exceeds its step budget.
	ErrStepLimit = errors.New("match step limit exceeded")
)

// cancelCheckInterval is how many steps pass between context checks.
const cancelCheckInterval = 1000

// Continuation is whatever a pattern terminal hands control to once its
// own context has been fully consumed: the next context level, or a leaf.
type Continuation interface {
	Match(*State) bool
}

// Capture is the span of units a wildcard bound, as unit indices into
// the snapshot of its context.
type Capture struct {
	Begin int
	End   int
}

type checkpoint struct {
	rank  int
	depth int
}

// State is scoped to a single match attempt and must not be shared
// between goroutines.
type State struct {
	ctx         context.Context
	inputs      []unit.Units
	rank        int
	depth       int
	checkpoints []checkpoint
	captures    [][]Capture
	entered     []bool
	value       any
	accepted    bool
	steps       int
	maxSteps    int
	err         error
}

// New creates a State over inputs, indexed by context rank. The inputs
// are never modified during the attempt.
func New(ctx context.Context, inputs []unit.Units) *State {
	if ctx == nil {
		ctx = context.Background()
	}
	return &State{
		ctx:      ctx,
		inputs:   inputs,
		rank:     -1,
		captures: make([][]Capture, len(inputs)),
		entered:  make([]bool, len(inputs)),
	}
}

// SetMaxSteps bounds the number of backtracking branch points tried.
// Zero or less means unbounded.
func (s *State) SetMaxSteps(n int) {
	s.maxSteps = n
}

// Rank returns the rank of the active context, or -1 outside any context.
func (s *State) Rank() int {
	return s.rank
}

// Depth returns the unit offset into the active context's value.
func (s *State) Depth() int {
	return s.depth
}

// SetDepth moves the cursor within the active context.
func (s *State) SetDepth(d int) {
	s.depth = d
}

// Units returns the snapshot of the active context.
func (s *State) Units() unit.Units {
	return s.inputs[s.rank]
}

// Input returns the snapshot taken for the context with the given rank.
func (s *State) Input(rank int) unit.Units {
	return s.inputs[rank]
}

// Remaining returns how many units of the active context are left to consume.
func (s *State) Remaining() int {
	return s.inputs[s.rank].Len() - s.depth
}

// Enter saves the cursor and starts matching the context with the given
// rank from its beginning.
func (s *State) Enter(rank int) {
	s.checkpoints = append(s.checkpoints, checkpoint{rank: s.rank, depth: s.depth})
	s.rank = rank
	s.depth = 0
	s.entered[rank] = true
}

// Leave abandons the active context after a failed attempt and puts the
// cursor back where Enter found it.
func (s *State) Leave() {
	s.entered[s.rank] = false
	s.restore()
}

// Commit puts the cursor back where Enter found it, keeping the context
// marked as matched along with its captures.
func (s *State) Commit() {
	s.restore()
}

func (s *State) restore() {
	last := len(s.checkpoints) - 1
	if last < 0 {
		panic("match: unbalanced context checkpoint")
	}
	cp := s.checkpoints[last]
	s.checkpoints = s.checkpoints[:last]
	s.rank = cp.rank
	s.depth = cp.depth
}

// OpenCapture pushes an empty capture starting at begin onto the active
// context's capture stack.
func (s *State) OpenCapture(begin int) {
	s.captures[s.rank] = append(s.captures[s.rank], Capture{Begin: begin, End: begin})
}

// ExtendCapture moves the end of the most recently opened capture.
func (s *State) ExtendCapture(end int) {
	caps := s.captures[s.rank]
	caps[len(caps)-1].End = end
}

// DropCapture discards the most recently opened capture.
func (s *State) DropCapture() {
	caps := s.captures[s.rank]
	s.captures[s.rank] = caps[:len(caps)-1]
}

// Captures returns the captures recorded for the context with the given rank.
func (s *State) Captures(rank int) []Capture {
	return s.captures[rank]
}

// Entered reports whether the matched path constrained the context.
func (s *State) Entered(rank int) bool {
	return s.entered[rank]
}

// Wildcard returns the text bound to the index-th (1-based) wildcard of
// the context with the given rank. A context the matched category never
// constrained answers index 1 with its whole value.
func (s *State) Wildcard(rank, index int) (string, error) {
	if rank < 0 || rank >= len(s.inputs) || index < 1 {
		return "", ErrInvalidWildcard
	}
	caps := s.captures[rank]
	if index <= len(caps) {
		c := caps[index-1]
		return s.inputs[rank].Slice(c.Begin, c.End), nil
	}
	if index == 1 && len(caps) == 0 && !s.entered[rank] {
		return s.inputs[rank].Text(), nil
	}
	return "", ErrInvalidWildcard
}

// Accept records the value of the matched category.
func (s *State) Accept(v any) {
	s.value = v
	s.accepted = true
}

// Value returns the accepted value, if any.
func (s *State) Value() (any, bool) {
	return s.value, s.accepted
}

// Step accounts for one backtracking branch point. It returns false once
// the attempt has to be abandoned; from then on every call fails so the
// search unwinds without trying further alternatives.
func (s *State) Step() bool {
	if s.err != nil {
		return false
	}
	s.steps++
	if s.maxSteps > 0 && s.steps > s.maxSteps {
		s.err = ErrStepLimit
		return false
	}
	if s.steps%cancelCheckInterval == 0 {
		select {
		case <-s.ctx.Done():
			s.err = s.ctx.Err()
			return false
		default:
		}
	}
	return true
}

// Steps returns the number of branch points tried so far.
func (s *State) Steps() int {
	return s.steps
}

// Err reports why the attempt was abandoned, if it was.
func (s *State) Err() error {
	return s.err
}

// Clean reports whether the cursor, checkpoints and capture stacks are
// back at their initial state.
func (s *State) Clean() bool {
	if s.rank != -1 || s.depth != 0 || len(s.checkpoints) != 0 {
		return false
	}
	for i := range s.captures {
		if len(s.captures[i]) != 0 || s.entered[i] {
			return false
		}
	}
	return true
}
