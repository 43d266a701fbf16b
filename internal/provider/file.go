// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"io"
	"os"

	"github.com/te2run/te2run/internal/logging"
)

type (
	// FileInput is a read-only provider over a single file. No handle is
	// cached: every OpenInput call opens the file again.
	FileInput struct {
		propertyBag
		path    string
		logger  logging.Logger
		lastErr error
	}

	// FileOutput is a writable provider over a single file. It also satisfies
	// Source; reading back through an output provider is atypical but part of
	// the capability set engines may rely on.
	FileOutput struct {
		propertyBag
		path    string
		logger  logging.Logger
		lastErr error
	}
)

var (
	_ Source = (*FileInput)(nil)
	_ Sink   = (*FileOutput)(nil)
	_ Source = (*FileOutput)(nil)
)

// NewFileInput creates an input provider for path. The file is not opened
// until OpenInput is called.
func NewFileInput(path string, logger logging.Logger) *FileInput {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FileInput{propertyBag: newPropertyBag(), path: path, logger: logger}
}

// NewFileOutput creates an output provider for path. The file is not created
// until OpenOutput is called.
func NewFileOutput(path string, logger logging.Logger) *FileOutput {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FileOutput{propertyBag: newPropertyBag(), path: path, logger: logger}
}

// Path returns the file path backing the provider.
func (p *FileInput) Path() string { return p.path }

// Err returns the failure of the most recent open, if any.
func (p *FileInput) Err() error { return p.lastErr }

// OpenInput opens the file for reading. Failures are logged and yield nil.
func (p *FileInput) OpenInput() io.ReadCloser {
	r, err := openRead(p.path, p.logger)
	p.lastErr = err
	return r
}

// Close is a no-op; streams are released by whoever opened them.
func (p *FileInput) Close() error { return nil }

// Path returns the file path backing the provider.
func (p *FileOutput) Path() string { return p.path }

// Err returns the failure of the most recent open, if any.
func (p *FileOutput) Err() error { return p.lastErr }

// OpenOutput creates or truncates the file. Failures are logged and yield nil.
func (p *FileOutput) OpenOutput() io.WriteCloser {
	f, err := os.Create(p.path)
	p.lastErr = err
	if err != nil {
		logging.Logf(p.logger, logging.LevelError, "cannot open output %q: %v", p.path, err)
		return nil
	}
	logging.Logf(p.logger, logging.LevelTrace, "opened output %q", p.path)
	return f
}

// OpenInput opens the same file for reading.
func (p *FileOutput) OpenInput() io.ReadCloser {
	r, err := openRead(p.path, p.logger)
	p.lastErr = err
	return r
}

// Close is a no-op; streams are released by whoever opened them.
func (p *FileOutput) Close() error { return nil }

func openRead(path string, logger logging.Logger) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		logging.Logf(logger, logging.LevelError, "cannot open input %q: %v", path, err)
		return nil, err
	}
	logging.Logf(logger, logging.LevelTrace, "opened input %q", path)
	return f, nil
}
