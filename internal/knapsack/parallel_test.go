package knapsack

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(21, 8))
	for i := 0; i < 40; i++ {
		problem := randomProblem(rng, rng.IntN(20))

		sequential, err := mustEngine(t, problem).Solve(context.Background())
		require.NoError(t, err)
		parallel, err := mustEngine(t, problem, WithWorkers(4)).Solve(context.Background())
		require.NoError(t, err)

		require.Equal(t, sequential.Value, parallel.Value, "problem %+v", problem)
		require.True(t, parallel.Optimal)
		require.True(t, parallel.Feasible)

		weight, value := selectionTotals(problem.Items, parallel.Selected)
		require.Equal(t, parallel.Value, value)
		require.Equal(t, parallel.Weight, weight)
		require.LessOrEqual(t, weight, problem.Capacity)
	}
}

func TestParallelBoundaries(t *testing.T) {
	t.Parallel()

	got, err := mustEngine(t, Problem{Capacity: -1, Items: []Item{{Value: 3, Weight: 1}}}, WithWorkers(8)).Solve(context.Background())
	require.NoError(t, err)
	require.False(t, got.Feasible)

	got, err = mustEngine(t, Problem{Capacity: 10}, WithWorkers(8)).Solve(context.Background())
	require.NoError(t, err)
	require.True(t, got.Feasible)
	require.Zero(t, got.Value)

	got, err = mustEngine(t, Problem{Capacity: 50, Items: []Item{
		{Value: 60, Weight: 10},
		{Value: 100, Weight: 20},
		{Value: 120, Weight: 30},
	}}, WithWorkers(2)).Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 220, got.Value)
	require.Equal(t, []int{1, 2}, got.Selected)

	got, err = mustEngine(t, Problem{Capacity: math.MaxInt, Items: []Item{
		{Value: 1, Weight: math.MaxInt},
		{Value: 1, Weight: math.MaxInt},
	}}, WithWorkers(2)).Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, got.Value)
	require.Equal(t, math.MaxInt, got.Weight)
	require.Len(t, got.Selected, 1)
}

func TestParallelReturnsIncumbentOnDeadline(t *testing.T) {
	t.Parallel()

	items := make([]Item, 40)
	for i := range items {
		items[i] = Item{Value: 2*i + 1, Weight: 1}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := mustEngine(t, Problem{Capacity: 40, Items: items}, WithoutPruning(), WithWorkers(4)).Solve(ctx)
	require.ErrorIs(t, err, ErrSearchInterrupted)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, got.Optimal)
}

func TestSharedBestRaiseIsMonotonic(t *testing.T) {
	t.Parallel()

	var (
		best sharedBest
		wg   sync.WaitGroup
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			best.raise(v)
			best.raise(v / 2)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 63, best.load())
}

func TestFrontierDepth(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, frontierDepth(0, 4))
	require.Equal(t, 3, frontierDepth(3, 4))
	require.Equal(t, 5, frontierDepth(30, 4))
	require.Equal(t, 6, frontierDepth(30, 8))
}

func BenchmarkEngineSolveParallel50(b *testing.B) {
	problem := randomProblem(rand.New(rand.NewPCG(42, 50)), 50)
	engine := mustEngine(b, problem, WithWorkers(4))
	for i := 0; i < b.N; i++ {
		if _, err := engine.Solve(context.Background()); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
