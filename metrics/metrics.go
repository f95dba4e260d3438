// Package metrics exports classifier activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/peco/graphmaster"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "graphmaster"

// Insert and match outcomes, used as the "result" label.
const (
	ResultInserted  = "inserted"
	ResultDuplicate = "duplicate"
	ResultMatched   = "matched"
	ResultNoMatch   = "no_match"
	ResultStepLimit = "step_limit"
	ResultCanceled  = "canceled"
	ResultError     = "error"
)

// Collector implements graphmaster.Observer on top of Prometheus
// metrics.
type Collector struct {
	Inserts       *prometheus.CounterVec
	Categories    prometheus.Gauge
	Matches       *prometheus.CounterVec
	MatchSteps    prometheus.Histogram
	MatchDuration prometheus.Histogram
	Resets        prometheus.Counter
}

var _ graphmaster.Observer = (*Collector)(nil)

// New creates a Collector whose metrics are registered with reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		Inserts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inserts_total",
				Help:      "Total number of category insertions by result",
			},
			[]string{"result"},
		),
		Categories: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "categories",
				Help:      "Number of categories in the index",
			},
		),
		Matches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "matches_total",
				Help:      "Total number of match attempts by result",
			},
			[]string{"result"},
		),
		MatchSteps: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "match_steps",
				Help:      "Backtracking branch points tried per match",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		MatchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "match_duration_seconds",
				Help:      "Match duration in seconds",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		Resets: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resets_total",
				Help:      "Total number of index resets",
			},
		),
	}
}

// ObserveInsert records an insertion.
func (c *Collector) ObserveInsert(size int, err error) {
	c.Inserts.WithLabelValues(insertResult(err)).Inc()
	c.Categories.Set(float64(size))
}

// ObserveMatch records a match attempt.
func (c *Collector) ObserveMatch(steps int, elapsed time.Duration, err error) {
	c.Matches.WithLabelValues(matchResult(err)).Inc()
	c.MatchSteps.Observe(float64(steps))
	c.MatchDuration.Observe(elapsed.Seconds())
}

// ObserveReset records an index reset.
func (c *Collector) ObserveReset() {
	c.Resets.Inc()
	c.Categories.Set(0)
}

func insertResult(err error) string {
	switch {
	case err == nil:
		return ResultInserted
	case errors.Is(err, graphmaster.ErrDuplicatePath):
		return ResultDuplicate
	default:
		return ResultError
	}
}

func matchResult(err error) string {
	switch {
	case err == nil:
		return ResultMatched
	case errors.Is(err, graphmaster.ErrNoMatch):
		return ResultNoMatch
	case errors.Is(err, graphmaster.ErrStepLimit):
		return ResultStepLimit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	default:
		return ResultError
	}
}
