package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/eugenenazirov/knapsack-solver/internal/knapsack"
)

var (
	// ErrNotFound indicates no instance is stored under the requested name.
	ErrNotFound = errors.New("instance not found")
	// ErrInvalidName indicates the instance name is empty or contains a slash.
	ErrInvalidName = errors.New("instance name must be non-empty and must not contain '/'")
)

// Storage provides access to the named knapsack instances served by the API.
type Storage interface {
	GetInstance(name string) (knapsack.Problem, error)
	PutInstance(name string, problem knapsack.Problem) error
	DeleteInstance(name string) error
	ListInstances() ([]string, error)
}

// MemoryStorage keeps instances in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu        sync.RWMutex
	instances map[string]knapsack.Problem
}

// NewMemoryStorage initialises an empty store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		instances: make(map[string]knapsack.Problem),
	}
}

// GetInstance returns a defensive copy of the named instance.
func (s *MemoryStorage) GetInstance(name string) (knapsack.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	problem, ok := s.instances[name]
	if !ok {
		return knapsack.Problem{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return problem.Clone(), nil
}

// PutInstance stores a copy of problem, replacing any previous instance of the same name.
func (s *MemoryStorage) PutInstance(name string, problem knapsack.Problem) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	s.instances[name] = problem.Clone()
	s.mu.Unlock()

	return nil
}

// DeleteInstance removes the named instance.
func (s *MemoryStorage) DeleteInstance(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.instances[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.instances, name)
	return nil
}

// ListInstances returns the stored instance names in sorted order.
func (s *MemoryStorage) ListInstances() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.instances))
	for name := range s.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		return ErrInvalidName
	}
	return nil
}
