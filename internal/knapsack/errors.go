package knapsack

import "errors"

var (
	// ErrInvalidInput is returned when an item has a non-positive weight or a negative value.
	ErrInvalidInput = errors.New("items must have a positive weight and a non-negative value")
	// ErrSearchInterrupted is returned when the context ends before the search space is exhausted.
	ErrSearchInterrupted = errors.New("search interrupted before optimality was proven")
)
