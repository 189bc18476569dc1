package condition

import "github.com/aretw0/runcondition/pkg/domain"

// Evaluate decides whether causes satisfy matcher m with filter f.
//
// When exclusive is set the whole cause list must consist of a single relevant,
// matching cause. Otherwise one relevant, matching cause anywhere in the list is enough.
func Evaluate(causes []domain.Cause, m Matcher, f Filter, exclusive bool) bool {
	if exclusive {
		return len(causes) == 1 && accepts(m, causes[0], f)
	}

	for _, c := range causes {
		if accepts(m, c, f) {
			return true
		}
	}
	return false
}

func accepts(m Matcher, c domain.Cause, f Filter) bool {
	return m.Relevant(c) && m.Matches(c, f)
}
