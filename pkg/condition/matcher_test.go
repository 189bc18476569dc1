package condition

import (
	"testing"

	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherFor(t *testing.T) {
	m, err := MatcherFor(domain.MatcherUser)
	require.NoError(t, err)
	assert.Equal(t, domain.MatcherUser, m.Kind())

	m, err = MatcherFor(domain.MatcherUpstream)
	require.NoError(t, err)
	assert.Equal(t, domain.MatcherUpstream, m.Kind())

	_, err = MatcherFor("remote")
	assert.ErrorIs(t, err, ErrUnknownMatcher)
}

func TestMatchers_Relevance(t *testing.T) {
	all := []domain.Cause{fred, legacy, remote, timer, upFirst, unknownKind, {}}

	var userRelevant, upstreamRelevant []domain.CauseKind
	for _, c := range all {
		if (UserMatcher{}).Relevant(c) {
			userRelevant = append(userRelevant, c.Kind)
		}
		if (UpstreamMatcher{}).Relevant(c) {
			upstreamRelevant = append(upstreamRelevant, c.Kind)
		}
	}

	assert.Equal(t, []domain.CauseKind{domain.CauseUser}, userRelevant)
	assert.Equal(t, []domain.CauseKind{domain.CauseUpstream}, upstreamRelevant)
}

func TestUpstreamMatcher_Identity(t *testing.T) {
	f := MustParseFilter("firstProject")
	assert.True(t, UpstreamMatcher{}.Matches(upFirst, f))
	assert.False(t, UpstreamMatcher{}.Matches(upOther, f))
	assert.True(t, UpstreamMatcher{}.Matches(upOther, Filter{}))
}
