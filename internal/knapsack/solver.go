package knapsack

import "context"

// Solver describes the behaviour required from a knapsack solver.
type Solver interface {
	Solve(ctx context.Context, problem Problem) (Result, error)
}

type bnbSolver struct {
	opts []Option
}

// New creates a Solver based on branch and bound.
func New(opts ...Option) Solver {
	return &bnbSolver{opts: opts}
}

func (s *bnbSolver) Solve(ctx context.Context, problem Problem) (Result, error) {
	catalog, err := BuildCatalog(problem.Items)
	if err != nil {
		return Result{}, err
	}
	return NewEngine(problem.Capacity, catalog, s.opts...).Solve(ctx)
}
