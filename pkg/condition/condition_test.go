package condition

import (
	"sync"
	"testing"

	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fred        = domain.UserCause("fred")
	tom         = domain.UserCause("tom")
	harry       = domain.UserCause("harry")
	evil        = domain.UserCause("eviloverlord")
	legacy      = domain.LegacyCause()
	remote      = domain.RemoteCause("dummy_host", "dummynote")
	timer       = domain.TimerCause()
	upFirst     = domain.UpstreamCause("firstProject", 1)
	upOther     = domain.UpstreamCause("not_exist_proj", 1)
	unknownKind = domain.OtherCause("scm")
)

type evalCase struct {
	name   string
	causes []domain.Cause
	want   bool
}

func runCases(t *testing.T, cfg domain.Condition, cases []evalCase) {
	t.Helper()
	cond, err := New(cfg)
	require.NoError(t, err)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cond.Evaluate(tc.causes))
			assert.Equal(t, tc.want, cond.Explain(tc.causes).Result)
		})
	}
}

func TestUserCondition_AnyUser(t *testing.T) {
	runCases(t, domain.UserCondition("", false), []evalCase{
		{"started by SYSTEM user", []domain.Cause{domain.SystemUserCause()}, true},
		{"started by user", []domain.Cause{fred}, true},
		{"started by a different cause", []domain.Cause{legacy}, false},
		{"user amidst other causes", []domain.Cause{legacy, remote, harry}, true},
		{"only non-user causes", []domain.Cause{legacy, remote, timer, upFirst, unknownKind}, false},
		{"no causes", []domain.Cause{}, false},
		{"nil causes", nil, false},
	})
}

func TestUserCondition_SingleUser(t *testing.T) {
	runCases(t, domain.UserCondition("fred", false), []evalCase{
		{"correct user", []domain.Cause{fred}, true},
		{"different user", []domain.Cause{evil}, false},
		{"several users including requested", []domain.Cause{tom, fred, harry}, true},
		{"several users not requested", []domain.Cause{tom, harry, evil}, false},
		{"different cause", []domain.Cause{legacy}, false},
		{"multiple different causes", []domain.Cause{legacy, remote}, false},
		{"case-sensitive", []domain.Cause{domain.UserCause("Fred")}, false},
	})
}

func TestUserCondition_MultipleUsers(t *testing.T) {
	runCases(t, domain.UserCondition("fred,tom", false), []evalCase{
		{"first user", []domain.Cause{fred}, true},
		{"second user", []domain.Cause{tom}, true},
		{"different user", []domain.Cause{evil}, false},
		{"harry alone", []domain.Cause{harry}, false},
		{"harry amidst unrelated causes", []domain.Cause{legacy, harry, remote, timer}, false},
		{"tom amidst unrelated causes", []domain.Cause{legacy, harry, remote, tom}, true},
	})
}

func TestUserCondition_Exclusive(t *testing.T) {
	runCases(t, domain.UserCondition("fred", true), []evalCase{
		{"correct user", []domain.Cause{fred}, true},
		{"wrong single user", []domain.Cause{evil}, false},
		{"correct user and remote", []domain.Cause{fred, remote}, false},
		{"several users", []domain.Cause{evil, fred}, false},
		{"duplicate matching users", []domain.Cause{fred, fred}, false},
		{"several causes", []domain.Cause{evil, fred, legacy, remote, timer}, false},
		{"unknown kind counts toward cardinality", []domain.Cause{fred, unknownKind}, false},
		{"no causes", []domain.Cause{}, false},
	})
}

func TestUpstreamCondition(t *testing.T) {
	mixed := []domain.Cause{legacy, domain.UserCause("remote"), upFirst, remote}

	runCases(t, domain.UpstreamCondition("", false), []evalCase{
		{"upstream only", []domain.Cause{upFirst}, true},
		{"remote only", []domain.Cause{remote}, false},
		{"mixed without upstream", []domain.Cause{legacy, domain.UserCause("remote"), remote}, false},
		{"mixed with upstream", mixed, true},
	})

	runCases(t, domain.UpstreamCondition("firstProject", false), []evalCase{
		{"mixed with matching upstream", mixed, true},
		{"other upstream project", []domain.Cause{upOther}, false},
	})

	runCases(t, domain.UpstreamCondition("not_exist_proj", false), []evalCase{
		{"mixed with non-matching upstream", mixed, false},
		{"matching project", []domain.Cause{upOther}, true},
	})

	runCases(t, domain.UpstreamCondition("", true), []evalCase{
		{"exclusive rejects four causes", mixed, false},
		{"exclusive accepts a single upstream", []domain.Cause{upFirst}, true},
	})
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name   string
		cfg    domain.Condition
		causes []domain.Cause
		want   bool
	}{
		{"A: any user", domain.UserCondition("", false), []domain.Cause{fred}, true},
		{"B: named user against legacy", domain.UserCondition("fred", false), []domain.Cause{legacy}, false},
		{"C: exclusive upstream among four", domain.UpstreamCondition("", true), []domain.Cause{legacy, domain.UserCause("remote"), upFirst, remote}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustNew(tt.cfg).Evaluate(tt.causes))
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(domain.Condition{Matcher: "timer"})
	assert.ErrorIs(t, err, ErrUnknownMatcher)

	_, err = New(domain.UserCondition("fred,,tom", false))
	assert.ErrorIs(t, err, ErrEmptyFilterToken)

	assert.Panics(t, func() { MustNew(domain.UpstreamCondition("a,", false)) })
}

func TestCondition_Config(t *testing.T) {
	cfg := domain.Condition{ID: "only-fred", Matcher: domain.MatcherUser, Filter: "fred", Exclusive: true}
	assert.Equal(t, cfg, MustNew(cfg).Config())
}

func TestCondition_Explain(t *testing.T) {
	cond := MustNew(domain.UserCondition("fred", false))

	d := cond.Explain([]domain.Cause{legacy, evil, fred})
	assert.True(t, d.Result)
	assert.Equal(t, "matched", d.Reason)
	require.Len(t, d.Verdicts, 3)
	assert.Equal(t, Verdict{Index: 0, Cause: legacy}, d.Verdicts[0])
	assert.Equal(t, Verdict{Index: 1, Cause: evil, Relevant: true}, d.Verdicts[1])
	assert.Equal(t, Verdict{Index: 2, Cause: fred, Relevant: true, Matched: true}, d.Verdicts[2])

	d = cond.Explain([]domain.Cause{evil})
	assert.False(t, d.Result)
	assert.Equal(t, "no matching cause", d.Reason)

	d = MustNew(domain.UserCondition("fred", true)).Explain([]domain.Cause{fred, remote})
	assert.False(t, d.Result)
	assert.Equal(t, "exclusive: 2 causes", d.Reason)
	assert.True(t, d.Verdicts[0].Matched)
}

func TestCondition_ConcurrentEvaluate(t *testing.T) {
	cond := MustNew(domain.UserCondition("fred,tom", false))
	lists := [][]domain.Cause{
		{fred},
		{harry},
		{legacy, tom},
		{remote, timer},
	}
	want := []bool{true, false, true, false}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for j := range lists {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				assert.Equal(t, want[j], cond.Evaluate(lists[j]))
			}(j)
		}
	}
	wg.Wait()
}
