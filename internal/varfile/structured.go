// SPDX-License-Identifier: MPL-2.0

package varfile

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/te2run/te2run/internal/cueutil"
)

func parseYAML(content []byte, filename string) (map[string]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return scalars(raw, filename)
}

func parseTOML(content []byte, filename string) (map[string]string, error) {
	var raw map[string]any
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return scalars(raw, filename)
}

func parseCUE(content []byte, filename string) (map[string]string, error) {
	var raw map[string]any
	if err := cueutil.Decode("", "", content, &raw, cueutil.WithFilename(filename)); err != nil {
		return nil, err
	}
	return scalars(raw, filename)
}

// scalars flattens a decoded top-level mapping into strings. Nested maps and
// lists are rejected.
func scalars(raw map[string]any, filename string) (map[string]string, error) {
	values := make(map[string]string, len(raw))
	for name, v := range raw {
		s, err := scalarString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", filename, name, err)
		}
		values[name] = s
	}
	return values, nil
}

func scalarString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case *big.Int:
		return x.String(), nil
	case *big.Float:
		return x.Text('f', -1), nil
	case map[string]any, []any:
		return "", fmt.Errorf("%w, got %T", ErrNotScalar, v)
	default:
		return fmt.Sprint(v), nil
	}
}
