// SPDX-License-Identifier: MPL-2.0

package counter

import (
	"context"
	"sync"
)

// ServiceName is the key under which the counter Service is published by
// the service provider.
const ServiceName = "counters"

// Service implements counter operations on top of a Store. It is safe for
// concurrent use: read-modify-write operations are serialized.
type Service struct {
	mu    sync.Mutex
	store Store
}

// NewService creates a Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store returns the backing store.
func (s *Service) Store() Store {
	return s.store
}

// Create creates a counter starting at 0 with DefaultStep.
func (s *Service) Create(ctx context.Context, name string) (int64, error) {
	return s.CreateWithParams(ctx, name, 0, DefaultStep)
}

// CreateWithParams creates a counter with an explicit start value and step.
// An existing counter is left untouched and its current value returned.
func (s *Service) CreateWithParams(ctx context.Context, name string, start, step int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.store.Create(ctx, Counter{Name: name, Value: start, Start: start, Step: step})
	if err != nil {
		return 0, err
	}
	return c.Value, nil
}

// Increment adds the counter's step and returns the new value.
func (s *Service) Increment(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.store.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	return s.set(ctx, name, c.Value+c.Step)
}

// IncrementBy adds delta and returns the new value.
func (s *Service) IncrementBy(ctx context.Context, name string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.store.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	return s.set(ctx, name, c.Value+delta)
}

// Get returns the current value.
func (s *Service) Get(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.store.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	return c.Value, nil
}

// Reset restores the start value and returns it.
func (s *Service) Reset(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.store.Get(ctx, name)
	if err != nil {
		return 0, err
	}
	return s.set(ctx, name, c.Start)
}

func (s *Service) set(ctx context.Context, name string, value int64) (int64, error) {
	if err := s.store.SetValue(ctx, name, value); err != nil {
		return 0, err
	}
	return value, nil
}
