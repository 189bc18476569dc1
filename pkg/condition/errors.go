package condition

import "errors"

var (
	// ErrEmptyFilterToken is returned when a non-empty filter expression contains an empty token,
	// e.g. "fred,,tom" or "fred,".
	ErrEmptyFilterToken = errors.New("filter contains an empty token")

	// ErrUnknownMatcher is returned for a matcher kind with no implementation.
	ErrUnknownMatcher = errors.New("unknown matcher")
)
