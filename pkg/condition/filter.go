package condition

import (
	"fmt"
	"slices"
	"strings"
)

// Filter is the ordered list of ids a matcher accepts.
// The zero value accepts any id.
type Filter struct {
	tokens []string
}

// ParseFilter splits a comma separated filter expression.
// Tokens are kept verbatim: surrounding whitespace is significant.
// An empty expression yields the match-any filter.
func ParseFilter(expr string) (Filter, error) {
	if expr == "" {
		return Filter{}, nil
	}

	tokens := strings.Split(expr, ",")
	for i, tok := range tokens {
		if tok == "" {
			return Filter{}, fmt.Errorf("%w at position %d in %q", ErrEmptyFilterToken, i, expr)
		}
	}
	return Filter{tokens: tokens}, nil
}

// MustParseFilter is like ParseFilter but panics on error.
func MustParseFilter(expr string) Filter {
	f, err := ParseFilter(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// Any reports whether the filter accepts every id.
func (f Filter) Any() bool {
	return len(f.tokens) == 0
}

// Accepts reports whether id exactly matches one of the tokens, or the filter is empty.
func (f Filter) Accepts(id string) bool {
	if f.Any() {
		return true
	}
	return slices.Contains(f.tokens, id)
}

// Tokens returns a copy of the filter tokens.
func (f Filter) Tokens() []string {
	return slices.Clone(f.tokens)
}

// String returns the filter expression.
func (f Filter) String() string {
	return strings.Join(f.tokens, ",")
}
