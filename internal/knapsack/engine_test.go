package knapsack

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSolveScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		problem      Problem
		wantValue    int
		wantFeasible bool
		wantSelected []int
	}{
		{
			name: "ClassicThreeItems",
			problem: Problem{Capacity: 50, Items: []Item{
				{Value: 60, Weight: 10},
				{Value: 100, Weight: 20},
				{Value: 120, Weight: 30},
			}},
			wantValue:    220,
			wantFeasible: true,
			wantSelected: []int{1, 2},
		},
		{
			name: "NothingFits",
			problem: Problem{Capacity: 1, Items: []Item{
				{Value: 10, Weight: 2},
				{Value: 20, Weight: 3},
			}},
			wantValue:    0,
			wantFeasible: true,
			wantSelected: []int{},
		},
		{
			name: "ZeroCapacity",
			problem: Problem{Capacity: 0, Items: []Item{
				{Value: 10, Weight: 1},
				{Value: 7, Weight: 4},
			}},
			wantValue:    0,
			wantFeasible: true,
			wantSelected: []int{},
		},
		{
			name:         "EmptyCatalog",
			problem:      Problem{Capacity: 25},
			wantValue:    0,
			wantFeasible: true,
			wantSelected: []int{},
		},
		{
			name: "NegativeCapacity",
			problem: Problem{Capacity: -1, Items: []Item{
				{Value: 10, Weight: 1},
			}},
			wantFeasible: false,
		},
		{
			name: "EverythingFits",
			problem: Problem{Capacity: 100, Items: []Item{
				{Value: 3, Weight: 5},
				{Value: 4, Weight: 6},
				{Value: 1, Weight: 1},
			}},
			wantValue:    8,
			wantFeasible: true,
			wantSelected: []int{0, 1, 2},
		},
		{
			name: "DensityGreedyIsNotOptimal",
			problem: Problem{Capacity: 10, Items: []Item{
				{Value: 7, Weight: 6},
				{Value: 5, Weight: 5},
				{Value: 5, Weight: 5},
			}},
			wantValue:    10,
			wantFeasible: true,
			wantSelected: []int{1, 2},
		},
		{
			name: "WeightsNearIntLimit",
			problem: Problem{Capacity: math.MaxInt, Items: []Item{
				{Value: 1, Weight: math.MaxInt},
				{Value: 1, Weight: math.MaxInt},
			}},
			wantValue:    1,
			wantFeasible: true,
			wantSelected: []int{0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := mustEngine(t, tc.problem).Solve(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.wantFeasible, got.Feasible)
			require.True(t, got.Optimal)
			if !tc.wantFeasible {
				require.Zero(t, got.Value)
				require.Empty(t, got.Selected)
				return
			}
			require.Equal(t, tc.wantValue, got.Value)
			require.Equal(t, tc.wantSelected, got.Selected)

			weight, value := selectionTotals(tc.problem.Items, got.Selected)
			require.Equal(t, got.Value, value)
			require.Equal(t, got.Weight, weight)
		})
	}
}

func TestSolveMatchesBruteForce(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		problem := randomProblem(rng, 1+rng.IntN(12))

		got, err := mustEngine(t, problem).Solve(context.Background())
		require.NoError(t, err)
		require.True(t, got.Feasible)
		require.Equal(t, bruteForce(problem.Capacity, problem.Items), got.Value, "problem %+v", problem)

		weight, value := selectionTotals(problem.Items, got.Selected)
		require.Equal(t, got.Value, value)
		require.LessOrEqual(t, weight, problem.Capacity)
	}
}

func TestPruningDoesNotChangeOptimum(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 50; i++ {
		problem := randomProblem(rng, 14)

		pruned, err := mustEngine(t, problem).Solve(context.Background())
		require.NoError(t, err)
		exhaustive, err := mustEngine(t, problem, WithoutPruning()).Solve(context.Background())
		require.NoError(t, err)

		require.Equal(t, exhaustive.Value, pruned.Value)
		require.LessOrEqual(t, pruned.Stats.NodesVisited, exhaustive.Stats.NodesVisited)
	}
}

func TestBestProfitIsMonotonic(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	problem := randomProblem(rng, 16)

	var visits []NodeVisit
	got, err := mustEngine(t, problem, WithNodeHook(func(v NodeVisit) {
		visits = append(visits, v)
	})).Solve(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, visits)

	for i, v := range visits {
		require.GreaterOrEqual(t, v.Best, v.Value)
		require.GreaterOrEqual(t, v.Bound, float64(v.Value))
		require.LessOrEqual(t, v.Weight, problem.Capacity)
		if i > 0 {
			require.GreaterOrEqual(t, v.Best, visits[i-1].Best)
		}
	}
	require.Equal(t, got.Value, visits[len(visits)-1].Best)
	require.Equal(t, 0, visits[0].Level)
}

func TestSolveIsIdempotent(t *testing.T) {
	t.Parallel()

	problem := randomProblem(rand.New(rand.NewPCG(9, 9)), 18)
	items := append([]Item(nil), problem.Items...)
	engine := mustEngine(t, problem)

	first, err := engine.Solve(context.Background())
	require.NoError(t, err)
	second, err := engine.Solve(context.Background())
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, items, problem.Items)
}

func TestSolveReportsStats(t *testing.T) {
	t.Parallel()

	got, err := mustEngine(t, Problem{Capacity: -5, Items: []Item{{Value: 1, Weight: 1}}}).Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, Stats{NodesVisited: 1, NodesPruned: 1}, got.Stats)

	got, err = mustEngine(t, Problem{Capacity: 3}).Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, Stats{NodesVisited: 1, Leaves: 1}, got.Stats)
}

func TestSolveHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mustEngine(t, Problem{Capacity: 1, Items: []Item{{Value: 1, Weight: 1}}}).Solve(ctx)
	require.ErrorIs(t, err, ErrSearchInterrupted)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSolveReturnsIncumbentOnDeadline(t *testing.T) {
	t.Parallel()

	items := make([]Item, 40)
	for i := range items {
		items[i] = Item{Value: i + 1, Weight: 1}
	}
	problem := Problem{Capacity: len(items), Items: items}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := mustEngine(t, problem, WithoutPruning()).Solve(ctx)
	if !errors.Is(err, ErrSearchInterrupted) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected interrupted search, got %v", err)
	}
	require.False(t, got.Optimal)
	require.True(t, got.Feasible)
	require.Positive(t, got.Value)
}

func BenchmarkEngineSolve30(b *testing.B) {
	problem := randomProblem(rand.New(rand.NewPCG(42, 42)), 30)
	engine := mustEngine(b, problem)
	for i := 0; i < b.N; i++ {
		if _, err := engine.Solve(context.Background()); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

func BenchmarkEngineSolve50(b *testing.B) {
	problem := randomProblem(rand.New(rand.NewPCG(42, 50)), 50)
	engine := mustEngine(b, problem)
	for i := 0; i < b.N; i++ {
		if _, err := engine.Solve(context.Background()); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
