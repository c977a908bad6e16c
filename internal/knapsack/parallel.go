package knapsack

import (
	"context"
	"fmt"
	"math/bits"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// sharedBest is a monotonic maximum updated with compare-and-swap. Readers may
// observe a stale value; that only costs pruning opportunities.
type sharedBest struct {
	v atomic.Int64
}

func (b *sharedBest) load() int { return int(b.v.Load()) }

func (b *sharedBest) raise(v int) {
	for {
		cur := b.v.Load()
		if int64(v) <= cur {
			return
		}
		if b.v.CompareAndSwap(cur, int64(v)) {
			return
		}
	}
}

// frontierNode is the root of a subtree handed to one worker.
type frontierNode struct {
	node     decisionNode
	included []int
}

// frontierDepth splits the tree into roughly 4x more subtrees than workers.
func frontierDepth(n, workers int) int {
	depth := bits.Len(uint(workers)) + 2
	if depth > n {
		depth = n
	}
	return depth
}

// frontier expands the tree down to depth in include-first order. Only the
// weight check is applied here; bound pruning starts inside the workers.
func (e *Engine) frontier(depth int, stats *Stats) []frontierNode {
	var (
		out      []frontierNode
		included []int
		walk     func(node decisionNode)
	)
	walk = func(node decisionNode) {
		if node.weight > e.capacity {
			stats.NodesVisited++
			stats.NodesPruned++
			return
		}
		if node.level == depth {
			out = append(out, frontierNode{node: node, included: slices.Clone(included)})
			return
		}
		stats.NodesVisited++

		next := e.catalog.items[node.level+1]
		if next.Weight > e.capacity-node.weight {
			stats.NodesVisited++
			stats.NodesPruned++
		} else {
			included = append(included, node.level+1)
			walk(decisionNode{level: node.level + 1, weight: node.weight + next.Weight, value: node.value + next.Value})
			included = included[:len(included)-1]
		}
		walk(decisionNode{level: node.level + 1, weight: node.weight, value: node.value})
	}
	walk(decisionNode{})
	return out
}

func (e *Engine) solveParallel(ctx context.Context) (Result, error) {
	var stats Stats
	roots := e.frontier(frontierDepth(e.catalog.Len(), e.settings.workers), &stats)

	best := &sharedBest{}
	searches := make([]*search, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.settings.workers)
	for i, root := range roots {
		s := e.newSearch(gctx, best)
		s.hook = nil
		s.path = append(s.path, root.included...)
		searches[i] = s

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				s.interrupted = err
				return err
			}
			s.visit(root.node)
			return s.interrupted
		})
	}
	waitErr := g.Wait()

	merged := Result{Optimal: waitErr == nil}
	var winner *search
	for _, s := range searches {
		stats.add(s.stats)
		if !s.leafFound {
			continue
		}
		if winner == nil || s.leafValue > winner.leafValue {
			winner = s
		}
	}
	merged.Stats = stats
	if winner != nil {
		merged.Feasible = true
		merged.Value = winner.leafValue
		merged.Weight = winner.leafWeight
		merged.Selected = e.catalog.positions(winner.leafPath)
	}

	if waitErr != nil {
		return merged, fmt.Errorf("%w: %w", ErrSearchInterrupted, waitErr)
	}
	return merged, nil
}
