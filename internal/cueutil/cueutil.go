// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// Decode compiles data, unifies it with the definition def of schema when
// schema is non-empty, validates the result and decodes it into out.
func Decode(schema, def string, data []byte, out any, opts ...Option) error {
	o := newOptions(opts)
	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return err
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(o.filename))
	if value.Err() != nil {
		return FormatError(value.Err(), o.filename)
	}

	if schema != "" {
		schemaValue := ctx.CompileString(schema)
		if schemaValue.Err() != nil {
			return fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
		}
		root := schemaValue.LookupPath(cue.ParsePath(def))
		if root.Err() != nil {
			return fmt.Errorf("internal error: schema definition %s not found: %w", def, root.Err())
		}
		value = root.Unify(value)
	}

	if err := value.Validate(cue.Concrete(o.concrete)); err != nil {
		return FormatError(err, o.filename)
	}
	if err := value.Decode(out); err != nil {
		return FormatError(err, o.filename)
	}
	return nil
}

// FormatError renders CUE errors as "<file>: <path>: <message>" lines, with
// list indices written as [n].
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		path := formatPath(cueerrors.Path(e))
		msg := e.Error()
		if path != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filename, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filename, strings.Join(lines, "\n  "))
}

func formatPath(parts []string) string {
	var sb strings.Builder
	for i, part := range parts {
		switch {
		case i > 0 && isIndex(part):
			sb.WriteString("[" + part + "]")
		case i > 0:
			sb.WriteString("." + part)
		default:
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns an error when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", filename, len(data), maxSize)
	}
	return nil
}
