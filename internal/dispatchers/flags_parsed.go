package dispatchers

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/footprint-tools/storyteller/internal/usage"
)

// ParsedFlags holds the flags of one invocation, normalized to "--name"
// for switches and "--name=value" for valued flags.
type ParsedFlags struct {
	raw []string
}

func NewParsedFlags(flags []string) *ParsedFlags {
	return &ParsedFlags{raw: flags}
}

// Raw returns the flags as given. A nil receiver has none.
func (f *ParsedFlags) Raw() []string {
	if f == nil {
		return nil
	}
	return f.raw
}

// Has reports whether the switch name was given. "--json=true" does not
// count as "--json".
func (f *ParsedFlags) Has(name string) bool {
	return slices.Contains(f.Raw(), name)
}

// Lookup returns the value of the first name=value flag.
func (f *ParsedFlags) Lookup(name string) (string, bool) {
	prefix := name + "="
	for _, flag := range f.Raw() {
		if v, ok := strings.CutPrefix(flag, prefix); ok {
			return v, true
		}
	}
	return "", false
}

// String returns the value of name, or def when it was not given.
func (f *ParsedFlags) String(name, def string) string {
	if v, ok := f.Lookup(name); ok {
		return v
	}
	return def
}

// IntBetween returns the integer value of name, def when it was not given,
// and an invalid value error when it is not a number in [lo, hi].
// Use math.MaxInt for an open upper bound.
func (f *ParsedFlags) IntBetween(name string, def, lo, hi int) (int, error) {
	v, ok := f.Lookup(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, usage.InvalidValue(name, v, rangeReason(lo, hi))
	}
	return n, nil
}

func rangeReason(lo, hi int) string {
	switch {
	case hi != math.MaxInt:
		return fmt.Sprintf("must be between %d and %d", lo, hi)
	case lo == 0:
		return "must be a non-negative number"
	case lo == 1:
		return "must be a positive number"
	default:
		return fmt.Sprintf("must be a number of at least %d", lo)
	}
}
