package condition

import (
	"fmt"

	"github.com/aretw0/runcondition/pkg/domain"
)

// Condition is a compiled, immutable cause condition.
type Condition struct {
	config    domain.Condition
	matcher   Matcher
	filter    Filter
	exclusive bool
}

// New compiles a persisted configuration.
func New(cfg domain.Condition) (*Condition, error) {
	m, err := MatcherFor(cfg.Matcher)
	if err != nil {
		return nil, err
	}

	f, err := ParseFilter(cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter for %s condition: %w", cfg.Matcher, err)
	}

	return &Condition{
		config:    cfg,
		matcher:   m,
		filter:    f,
		exclusive: cfg.Exclusive,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg domain.Condition) *Condition {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns the configuration the condition was compiled from.
func (c *Condition) Config() domain.Condition {
	return c.config
}

// Evaluate decides whether the build causes satisfy the condition.
func (c *Condition) Evaluate(causes []domain.Cause) bool {
	return Evaluate(causes, c.matcher, c.filter, c.exclusive)
}

// Verdict reports how the matcher saw a single cause.
type Verdict struct {
	Index    int          `json:"index"`
	Cause    domain.Cause `json:"cause"`
	Relevant bool         `json:"relevant"`
	Matched  bool         `json:"matched"`
}

// Decision is the result of an evaluation with per-cause detail.
type Decision struct {
	Result   bool      `json:"result"`
	Reason   string    `json:"reason"`
	Verdicts []Verdict `json:"verdicts"`
}

// Explain evaluates causes and records the verdict for each one.
// Decision.Result always equals Evaluate(causes).
func (c *Condition) Explain(causes []domain.Cause) Decision {
	d := Decision{
		Result:   c.Evaluate(causes),
		Verdicts: make([]Verdict, 0, len(causes)),
	}

	matched := 0
	for i, cause := range causes {
		v := Verdict{Index: i, Cause: cause, Relevant: c.matcher.Relevant(cause)}
		if v.Relevant {
			v.Matched = c.matcher.Matches(cause, c.filter)
		}
		if v.Matched {
			matched++
		}
		d.Verdicts = append(d.Verdicts, v)
	}

	switch {
	case c.exclusive && len(causes) != 1:
		d.Reason = fmt.Sprintf("exclusive: %d causes", len(causes))
	case matched == 0:
		d.Reason = "no matching cause"
	default:
		d.Reason = "matched"
	}
	return d
}
