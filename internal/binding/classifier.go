// SPDX-License-Identifier: MPL-2.0

package binding

import (
	"fmt"

	"github.com/te2run/te2run/pkg/extvar"
)

// Strategies, one per declared kind plus the fallback for unknown kinds.
const (
	StrategyUnsupported Strategy = iota
	StrategyBindValue
	StrategyBindInput
	StrategyBindOutput
	// StrategySkipInputArray leaves input arrays unbound. Array variables have
	// no provider implementation yet; binding them is a no-op, not a failure.
	StrategySkipInputArray
	// StrategySkipOutputArray leaves output arrays unbound for the same reason.
	StrategySkipOutputArray
)

// Strategy is the binding action chosen for a variable kind.
type Strategy int

var strategyNames = [...]string{
	StrategyUnsupported:     "unsupported",
	StrategyBindValue:       "bind-value",
	StrategyBindInput:       "bind-input",
	StrategyBindOutput:      "bind-output",
	StrategySkipInputArray:  "skip-input-array",
	StrategySkipOutputArray: "skip-output-array",
}

// Classify selects exactly one strategy for kind. Every declared kind has its
// own arm; anything else maps to StrategyUnsupported.
func Classify(kind extvar.Kind) Strategy {
	switch kind {
	case extvar.KindPrimitive:
		return StrategyBindValue
	case extvar.KindInput:
		return StrategyBindInput
	case extvar.KindOutput:
		return StrategyBindOutput
	case extvar.KindInputArray:
		return StrategySkipInputArray
	case extvar.KindOutputArray:
		return StrategySkipOutputArray
	default:
		return StrategyUnsupported
	}
}

// String returns the strategy name.
func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Binds reports whether the strategy attaches anything to the unit.
func (s Strategy) Binds() bool {
	return s == StrategyBindValue || s == StrategyBindInput || s == StrategyBindOutput
}
