// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// ReadInput copies the content of the input variable name into w. The stream
// is opened and closed within the call.
func ReadInput(t *Table, name string, w io.Writer) (err error) {
	src, err := t.Source(name)
	if err != nil {
		return err
	}
	r := src.OpenInput()
	if r == nil {
		return fmt.Errorf("%w: input %s", ErrStreamUnavailable, name)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close input %s: %w", name, cerr)
		}
	}()
	if _, err = io.Copy(w, r); err != nil {
		return fmt.Errorf("read input %s: %w", name, err)
	}
	return nil
}

// OutputStreams opens output streams lazily, once per run, and closes all of
// them together when the run ends. It is safe for concurrent use.
type OutputStreams struct {
	mu     sync.Mutex
	table  *Table
	opened map[string]io.WriteCloser
	order  []string
}

// NewOutputStreams creates a stream set over the sinks bound in t.
func NewOutputStreams(t *Table) *OutputStreams {
	return &OutputStreams{table: t, opened: make(map[string]io.WriteCloser)}
}

// Writer returns the stream of the output variable name, opening it on first
// use. Writes through the returned writer are serialized with every other
// write to the set.
func (s *OutputStreams) Writer(name string) (io.Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.opened[name]; ok {
		return lockedWriter{s: s, name: name}, nil
	}
	sink, err := s.table.Sink(name)
	if err != nil {
		return nil, err
	}
	w := sink.OpenOutput()
	if w == nil {
		return nil, fmt.Errorf("%w: output %s", ErrStreamUnavailable, name)
	}
	s.opened[name] = w
	s.order = append(s.order, name)
	return lockedWriter{s: s, name: name}, nil
}

type lockedWriter struct {
	s    *OutputStreams
	name string
}

func (w lockedWriter) Write(p []byte) (int, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	out, ok := w.s.opened[w.name]
	if !ok {
		return 0, fmt.Errorf("%w: output %s is closed", ErrStreamUnavailable, w.name)
	}
	return out.Write(p)
}

// Write appends p to the output variable name.
func (s *OutputStreams) Write(name string, p []byte) error {
	w, err := s.Writer(name)
	if err != nil {
		return err
	}
	if _, err := w.Write(p); err != nil {
		return fmt.Errorf("write output %s: %w", name, err)
	}
	return nil
}

// Close closes every opened stream in open order and returns the aggregated
// failures. The set is empty afterwards.
func (s *OutputStreams) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result *multierror.Error
	for _, name := range s.order {
		if err := s.opened[name].Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close output %s: %w", name, err))
		}
	}
	s.opened = make(map[string]io.WriteCloser)
	s.order = nil
	return result.ErrorOrNil()
}

// JoinRunError combines the error of a run with the error of closing its
// streams, keeping both visible to errors.Is.
func JoinRunError(runErr, closeErr error) error {
	switch {
	case closeErr == nil:
		return runErr
	case runErr == nil:
		return closeErr
	default:
		return errors.Join(runErr, closeErr)
	}
}
