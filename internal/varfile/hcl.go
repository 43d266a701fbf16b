// SPDX-License-Identifier: MPL-2.0

package varfile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// parseHCL reads top-level attributes (name = value). Blocks are not allowed
// and expressions are evaluated without variables or functions.
func parseHCL(content []byte, filename string) (map[string]string, error) {
	file, diags := hclparse.NewParser().ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to read HCL attributes: %s", diags.Error())
	}

	values := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: %s", name, diags.Error())
		}
		s, err := ctyString(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", filename, name, err)
		}
		values[name] = s
	}
	return values, nil
}

func ctyString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", nil
	}
	if !val.Type().IsPrimitiveType() {
		return "", fmt.Errorf("%w, got %s", ErrNotScalar, val.Type().FriendlyName())
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", err
	}
	return str.AsString(), nil
}
