// Package metrics exposes Prometheus collectors describing solver runs.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eugenenazirov/knapsack-solver/internal/knapsack"
)

// Outcome labels.
const (
	OutcomeOptimal     = "optimal"
	OutcomeInfeasible  = "infeasible"
	OutcomeInterrupted = "interrupted"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// Collector records solver runs.
type Collector struct {
	registry     *prometheus.Registry
	solveLatency *prometheus.HistogramVec
	solves       *prometheus.CounterVec
	nodesVisited prometheus.Counter
	nodesPruned  prometheus.Counter
	itemCount    prometheus.Histogram
}

// New creates a Collector registered on a dedicated registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		solveLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "knapsack_solve_duration_seconds",
			Help:    "Latency of branch-and-bound runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "knapsack_solves_total",
			Help: "Total solve requests by outcome",
		}, []string{"outcome"}),
		nodesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knapsack_nodes_visited_total",
			Help: "Decision tree nodes visited",
		}),
		nodesPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "knapsack_nodes_pruned_total",
			Help: "Decision tree nodes discarded by the weight or bound check",
		}),
		itemCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "knapsack_instance_items",
			Help:    "Number of items per solved instance",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	c.registry.MustRegister(
		c.solveLatency,
		c.solves,
		c.nodesVisited,
		c.nodesPruned,
		c.itemCount,
	)
	return c
}

// ObserveSolve records a finished run.
func (c *Collector) ObserveSolve(items int, result knapsack.Result, duration time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := Outcome(result, err)

	c.solves.WithLabelValues(outcome).Inc()
	c.solveLatency.WithLabelValues(outcome).Observe(duration.Seconds())
	c.itemCount.Observe(float64(items))
	c.nodesVisited.Add(float64(result.Stats.NodesVisited))
	c.nodesPruned.Add(float64(result.Stats.NodesPruned))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Outcome classifies a run for the outcome label.
func Outcome(result knapsack.Result, err error) string {
	switch {
	case errors.Is(err, knapsack.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, knapsack.ErrSearchInterrupted):
		return OutcomeInterrupted
	case err != nil:
		return OutcomeError
	case !result.Feasible:
		return OutcomeInfeasible
	default:
		return OutcomeOptimal
	}
}
