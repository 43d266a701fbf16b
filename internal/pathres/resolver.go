// SPDX-License-Identifier: MPL-2.0

package pathres

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	schemeFile   = "file:"
	schemeHTTP   = "http:"
	schemeHTTPS  = "https:"
	schemeShared = "shared:"
)

var (
	// ErrUnsupportedScheme is returned for the shared: scheme.
	ErrUnsupportedScheme = errors.New("unsupported path scheme")
	// ErrInvalidURI is returned when a file: path cannot be parsed as a URI.
	ErrInvalidURI = errors.New("invalid URI")
)

type (
	// Resolver turns a possibly relative script path into a usable path.
	Resolver interface {
		// GetPath resolves path without a current directory.
		GetPath(path string) (string, error)
		// Resolve resolves path against currentDir. An empty currentDir means none.
		Resolve(path, currentDir string) (string, error)
	}

	// FileResolver implements the compiler's path rules. WorkingDir plays the
	// role of the process working directory for root-relative paths.
	FileResolver struct {
		WorkingDir string
	}
)

// NewResolver creates a FileResolver rooted at workingDir.
func NewResolver(workingDir string) *FileResolver {
	return &FileResolver{WorkingDir: workingDir}
}

// NewDefaultResolver creates a FileResolver rooted at the process working directory.
func NewDefaultResolver() (*FileResolver, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}
	return NewResolver(wd), nil
}

// ForWorkingDir returns a resolver rooted at workingDir, or at the process
// working directory when workingDir is empty.
func ForWorkingDir(workingDir string) (*FileResolver, error) {
	if workingDir == "" {
		return NewDefaultResolver()
	}
	return NewResolver(workingDir), nil
}

// GetPath resolves path with no current directory.
func (r *FileResolver) GetPath(path string) (string, error) {
	return r.Resolve(path, "")
}

// Resolve applies the rules in order:
//  1. a current directory and a path that is not root-relative and has no
//     file:, http: or https: scheme are concatenated as-is (no separator)
//  2. shared: fails
//  3. http: and https: are returned unchanged
//  4. file: returns the path component of the URI
//  5. a root-relative path is prefixed with WorkingDir
//  6. anything else is returned unchanged
func (r *FileResolver) Resolve(path, currentDir string) (string, error) {
	if currentDir != "" && !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, schemeFile) &&
		!strings.HasPrefix(path, schemeHTTP) && !strings.HasPrefix(path, schemeHTTPS) {
		return currentDir + path, nil
	}

	if strings.HasPrefix(path, schemeShared) {
		return "", fmt.Errorf("%w: path %q uses %q", ErrUnsupportedScheme, path, schemeShared)
	}

	if strings.HasPrefix(path, schemeHTTP) || strings.HasPrefix(path, schemeHTTPS) {
		return path, nil
	}

	if strings.HasPrefix(path, schemeFile) {
		u, err := url.Parse(path)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInvalidURI, path, err)
		}
		if u.Opaque != "" {
			return "", fmt.Errorf("%w: %s: opaque URI has no path", ErrInvalidURI, path)
		}
		return u.Path, nil
	}

	if strings.HasPrefix(path, "/") {
		return r.WorkingDir + path, nil
	}

	return path, nil
}

// IsRemote reports whether path uses an http: or https: scheme.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, schemeHTTP) || strings.HasPrefix(path, schemeHTTPS)
}
