// Package knapsack solves the 0/1 knapsack problem exactly with a depth-first
// branch-and-bound search.
//
// Items are arranged in a Catalog sorted by value density (value/weight,
// highest first) with a zero sentinel at index 0, so the depth of a node in the
// decision tree equals the catalog index of the last item decided on. At every
// node the Engine computes the fractional relaxation bound
//
//	value + (capacity - weight) * density(next item)
//
// and abandons the branch when the node is overweight or when the bound is
// strictly below the best total value seen so far. Ties are still explored.
//
// The search can optionally run on several goroutines (WithWorkers), observe
// every surviving node (WithNodeHook) or skip bound pruning entirely
// (WithoutPruning). Context cancellation is honoured on a sparse schedule and
// returns the incumbent found so far.
package knapsack
