package condition

import (
	"fmt"

	"github.com/aretw0/runcondition/pkg/domain"
)

// Matcher recognises one kind of cause and tests it against a filter.
type Matcher interface {
	// Kind identifies the matcher in configuration.
	Kind() domain.MatcherKind
	// Relevant reports whether the cause is of the kind this matcher inspects.
	Relevant(c domain.Cause) bool
	// Matches reports whether a relevant cause is accepted by the filter.
	Matches(c domain.Cause, f Filter) bool
}

// UserMatcher inspects causes started by a user.
type UserMatcher struct{}

func (UserMatcher) Kind() domain.MatcherKind { return domain.MatcherUser }

func (UserMatcher) Relevant(c domain.Cause) bool { return c.Kind == domain.CauseUser }

func (UserMatcher) Matches(c domain.Cause, f Filter) bool { return f.Accepts(c.UserID) }

// UpstreamMatcher inspects causes triggered by an upstream project build.
type UpstreamMatcher struct{}

func (UpstreamMatcher) Kind() domain.MatcherKind { return domain.MatcherUpstream }

func (UpstreamMatcher) Relevant(c domain.Cause) bool { return c.Kind == domain.CauseUpstream }

func (UpstreamMatcher) Matches(c domain.Cause, f Filter) bool { return f.Accepts(c.UpstreamProject) }

var matchers = map[domain.MatcherKind]Matcher{
	domain.MatcherUser:     UserMatcher{},
	domain.MatcherUpstream: UpstreamMatcher{},
}

// MatcherFor returns the matcher registered for kind.
func MatcherFor(kind domain.MatcherKind) (Matcher, error) {
	m, ok := matchers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMatcher, kind)
	}
	return m, nil
}
