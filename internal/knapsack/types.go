package knapsack

import "slices"

// Item is a raw (value, weight) pair as supplied by callers.
type Item struct {
	Value  int `json:"value"`
	Weight int `json:"weight"`
}

// Problem is a complete knapsack instance.
type Problem struct {
	Capacity int    `json:"capacity"`
	Items    []Item `json:"items"`
}

// Clone returns a deep copy of the problem.
func (p Problem) Clone() Problem {
	return Problem{
		Capacity: p.Capacity,
		Items:    slices.Clone(p.Items),
	}
}

// Result summarises a search run.
// Feasible is false only when no selection fits, which happens for a negative
// capacity. Optimal is false when the run was interrupted and Value is merely
// the best selection found before the interruption.
type Result struct {
	Value    int
	Weight   int
	Feasible bool
	Optimal  bool
	// Selected holds the input positions of the chosen items in ascending order.
	Selected []int
	Stats    Stats
}

// Stats counts the work done by a search run.
type Stats struct {
	NodesVisited int64
	NodesPruned  int64
	Leaves       int64
}

func (s *Stats) add(other Stats) {
	s.NodesVisited += other.NodesVisited
	s.NodesPruned += other.NodesPruned
	s.Leaves += other.Leaves
}

// NodeVisit describes a node that survived the feasibility and bound checks.
type NodeVisit struct {
	Level  int
	Value  int
	Weight int
	Bound  float64
	Best   int
}
