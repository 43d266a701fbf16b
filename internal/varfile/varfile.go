// SPDX-License-Identifier: MPL-2.0

package varfile

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
)

// Supported formats, selected by file extension.
const (
	FormatEnv  Format = "env"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
	FormatCUE  Format = "cue"
)

var (
	// ErrUnsupportedFormat is returned for an unknown file extension.
	ErrUnsupportedFormat = errors.New("unsupported variable file format")
	// ErrNotScalar is returned when a structured file nests maps or lists.
	ErrNotScalar = errors.New("variable value must be a scalar")
)

// Format identifies a variable file syntax.
type Format string

var extensions = map[string]Format{
	".env":  FormatEnv,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".hcl":  FormatHCL,
	".cue":  FormatCUE,
}

// FormatOf returns the format implied by the extension of path. A file named
// exactly ".env" is a dotenv file.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	if filepath.Base(path) == ".env" {
		return FormatEnv, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Parse decodes content of the given format into name/value pairs.
func Parse(format Format, content []byte, filename string) (map[string]string, error) {
	switch format {
	case FormatEnv:
		return parseEnv(content, filename)
	case FormatYAML:
		return parseYAML(content, filename)
	case FormatTOML:
		return parseTOML(content, filename)
	case FormatHCL:
		return parseHCL(content, filename)
	case FormatCUE:
		return parseCUE(content, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Load reads the file at path and merges its values into values, replacing
// existing names. A path ending in '?' is optional: a missing file is
// silently skipped.
func Load(values map[string]string, path string) error {
	path, optional := strings.CutSuffix(path, "?")

	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read variable file '%s': %w", path, err)
	}
	parsed, err := Parse(format, content, path)
	if err != nil {
		return err
	}
	maps.Copy(values, parsed)
	return nil
}
