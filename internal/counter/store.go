// SPDX-License-Identifier: MPL-2.0

package counter

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultStep is the increment used by counters created without parameters.
const DefaultStep int64 = 1

var (
	// ErrNotFound is returned when a counter does not exist.
	ErrNotFound = errors.New("counter not found")
	// ErrInvalidName is returned for an empty counter name.
	ErrInvalidName = errors.New("invalid counter name")
)

type (
	// Counter is a named integer with the start value and step it was created with.
	Counter struct {
		Name  string
		Value int64
		Start int64
		Step  int64
	}

	// Store persists counters. Implementations need not be safe for
	// concurrent use beyond what a single run requires.
	Store interface {
		// Create stores c unless a counter with the same name exists, and
		// returns the stored counter.
		Create(ctx context.Context, c Counter) (Counter, error)
		// Get returns the named counter or ErrNotFound.
		Get(ctx context.Context, name string) (Counter, error)
		// SetValue overwrites the current value of an existing counter.
		SetValue(ctx context.Context, name string, value int64) error
		// Close releases the store.
		Close() error
	}

	// MemoryStore keeps counters for the lifetime of the process.
	MemoryStore struct {
		mu       sync.Mutex
		counters map[string]Counter
	}
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]Counter)}
}

// Create stores c unless it already exists.
func (s *MemoryStore) Create(_ context.Context, c Counter) (Counter, error) {
	if c.Name == "" {
		return Counter{}, ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.counters[c.Name]; ok {
		return existing, nil
	}
	s.counters[c.Name] = c
	return c, nil
}

// Get returns the named counter.
func (s *MemoryStore) Get(_ context.Context, name string) (Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[name]
	if !ok {
		return Counter{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return c, nil
}

// SetValue overwrites the value of an existing counter.
func (s *MemoryStore) SetValue(_ context.Context, name string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	c.Value = value
	s.counters[name] = c
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }
