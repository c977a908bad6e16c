package knapsack

import (
	"context"
	"fmt"
)

// deadlineCheckMask makes the search poll its context once every 4096 nodes.
const deadlineCheckMask = 4095

// Engine runs the branch-and-bound search for one capacity over one catalog.
// Solve may be called repeatedly; every call starts from a fresh search state.
type Engine struct {
	capacity int
	catalog  *Catalog
	settings settings
}

// NewEngine prepares a search over a catalog produced by BuildCatalog.
func NewEngine(capacity int, catalog *Catalog, opts ...Option) *Engine {
	return &Engine{
		capacity: capacity,
		catalog:  catalog,
		settings: applyOptions(opts),
	}
}

// Solve explores the decision tree and returns the best feasible selection.
// A negative capacity yields a Result with Feasible == false and no error.
// When ctx ends first the incumbent is returned together with an error
// wrapping ErrSearchInterrupted and the context error.
func (e *Engine) Solve(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrSearchInterrupted, err)
	}
	if e.settings.workers > 1 {
		return e.solveParallel(ctx)
	}

	s := e.newSearch(ctx, &localBest{})
	s.visit(decisionNode{})

	result := s.result()
	if s.interrupted != nil {
		return result, fmt.Errorf("%w: %w", ErrSearchInterrupted, s.interrupted)
	}
	return result, nil
}

// decisionNode is one partial assignment. The included catalog indexes live
// on the owning search's path stack; weight and value are their running sums.
type decisionNode struct {
	level  int
	weight int
	value  int
}

// bestValue is the best-profit-so-far cell shared by every node of a run.
type bestValue interface {
	load() int
	raise(v int)
}

type localBest struct {
	v int
}

func (b *localBest) load() int { return b.v }

func (b *localBest) raise(v int) {
	if v > b.v {
		b.v = v
	}
}

// search holds the state of one depth-first walk.
type search struct {
	ctx      context.Context
	capacity int
	catalog  *Catalog
	n        int
	prune    bool
	hook     func(NodeVisit)
	best     bestValue

	path        []int
	steps       int
	interrupted error

	leafFound  bool
	leafValue  int
	leafWeight int
	leafPath   []int

	stats Stats
}

func (e *Engine) newSearch(ctx context.Context, best bestValue) *search {
	n := e.catalog.Len()
	return &search{
		ctx:      ctx,
		capacity: e.capacity,
		catalog:  e.catalog,
		n:        n,
		prune:    e.settings.prune,
		hook:     e.settings.nodeHook,
		best:     best,
		path:     make([]int, 0, n),
	}
}

func (s *search) deadlineCheck() bool {
	s.steps++
	if s.steps&deadlineCheckMask != 0 {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.interrupted = err
		return true
	}
	return false
}

// upperBound fills the remaining capacity with a fraction of the next item.
// Past the last item the next density is zero and the bound is the node value.
func (s *search) upperBound(node decisionNode) float64 {
	density := 0.0
	if node.level < s.n {
		density = s.catalog.items[node.level+1].Density
	}
	return float64(node.value) + float64(s.capacity-node.weight)*density
}

func (s *search) visit(node decisionNode) {
	if s.interrupted != nil || s.deadlineCheck() {
		return
	}
	s.stats.NodesVisited++

	if node.weight > s.capacity {
		s.stats.NodesPruned++
		return
	}
	bound := s.upperBound(node)
	if s.prune && bound < float64(s.best.load()) {
		s.stats.NodesPruned++
		return
	}

	s.best.raise(node.value)
	if s.hook != nil {
		s.hook(NodeVisit{
			Level:  node.level,
			Value:  node.value,
			Weight: node.weight,
			Bound:  bound,
			Best:   s.best.load(),
		})
	}

	if node.level == s.n {
		s.recordLeaf(node)
		return
	}

	// node.weight <= capacity here, so the remaining room cannot overflow.

	next := s.catalog.items[node.level+1]
	if next.Weight > s.capacity-node.weight {
		s.stats.NodesVisited++
		s.stats.NodesPruned++
	} else {
		s.path = append(s.path, node.level+1)
		s.visit(decisionNode{
			level:  node.level + 1,
			weight: node.weight + next.Weight,
			value:  node.value + next.Value,
		})
		s.path = s.path[:len(s.path)-1]
	}

	s.visit(decisionNode{
		level:  node.level + 1,
		weight: node.weight,
		value:  node.value,
	})
}

// recordLeaf keeps the first leaf with the highest value.
func (s *search) recordLeaf(node decisionNode) {
	s.stats.Leaves++
	if s.leafFound && node.value <= s.leafValue {
		return
	}
	s.leafFound = true
	s.leafValue = node.value
	s.leafWeight = node.weight
	s.leafPath = append(s.leafPath[:0], s.path...)
}

func (s *search) result() Result {
	r := Result{
		Optimal: s.interrupted == nil,
		Stats:   s.stats,
	}
	if !s.leafFound {
		return r
	}
	r.Feasible = true
	r.Value = s.leafValue
	r.Weight = s.leafWeight
	r.Selected = s.catalog.positions(s.leafPath)
	return r
}
