package knapsack

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// bruteForce enumerates every subset and returns the best value, or -1 when
// nothing fits.
func bruteForce(capacity int, items []Item) int {
	if capacity < 0 {
		return -1
	}
	best := 0
	for mask := 0; mask < 1<<len(items); mask++ {
		weight, value := 0, 0
		for i, item := range items {
			if mask&(1<<i) != 0 {
				weight += item.Weight
				value += item.Value
			}
		}
		if weight <= capacity && value > best {
			best = value
		}
	}
	return best
}

func randomProblem(rng *rand.Rand, n int) Problem {
	items := make([]Item, n)
	total := 0
	for i := range items {
		items[i] = Item{
			Value:  rng.IntN(100),
			Weight: 1 + rng.IntN(40),
		}
		total += items[i].Weight
	}
	return Problem{
		Capacity: rng.IntN(total + 1),
		Items:    items,
	}
}

func mustEngine(t testing.TB, problem Problem, opts ...Option) *Engine {
	t.Helper()

	catalog, err := BuildCatalog(problem.Items)
	require.NoError(t, err)
	return NewEngine(problem.Capacity, catalog, opts...)
}

// selectionTotals recomputes weight and value from the selected positions.
func selectionTotals(items []Item, selected []int) (weight, value int) {
	for _, pos := range selected {
		weight += items[pos].Weight
		value += items[pos].Value
	}
	return weight, value
}
