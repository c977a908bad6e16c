package knapsack

// Option configures an Engine or Solver.
type Option func(*settings)

type settings struct {
	prune    bool
	workers  int
	nodeHook func(NodeVisit)
}

func defaultSettings() settings {
	return settings{
		prune:   true,
		workers: 1,
	}
}

func applyOptions(opts []Option) settings {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithoutPruning disables the relaxation bound check. Overweight nodes are
// still discarded. The result is unchanged; only the amount of work grows.
func WithoutPruning() Option {
	return func(s *settings) {
		s.prune = false
	}
}

// WithWorkers runs the search on up to n goroutines. Values below 2 keep the
// sequential search.
func WithWorkers(n int) Option {
	return func(s *settings) {
		if n < 1 {
			n = 1
		}
		s.workers = n
	}
}

// WithNodeHook registers a callback invoked for every node that survives
// pruning, after the best value has been updated. Sequential search only.
func WithNodeHook(hook func(NodeVisit)) Option {
	return func(s *settings) {
		s.nodeHook = hook
	}
}
