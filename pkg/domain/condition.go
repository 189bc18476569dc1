package domain

// MatcherKind selects which cause kind a condition inspects.
type MatcherKind string

const (
	MatcherUser     MatcherKind = "user"
	MatcherUpstream MatcherKind = "upstream"
)

// Condition is the persisted configuration of a cause condition.
type Condition struct {
	ID string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`

	Matcher MatcherKind `json:"matcher" yaml:"matcher" mapstructure:"matcher"`

	// Filter is a comma separated list of user or upstream project ids.
	// An empty filter matches any cause of the matcher's kind.
	Filter string `json:"filter" yaml:"filter" mapstructure:"filter"`

	// Exclusive requires the build to have exactly one cause, and that it matches.
	Exclusive bool `json:"exclusive" yaml:"exclusive" mapstructure:"exclusive"`
}

// UserCondition is shorthand for a user matcher condition.
func UserCondition(filter string, exclusive bool) Condition {
	return Condition{Matcher: MatcherUser, Filter: filter, Exclusive: exclusive}
}

// UpstreamCondition is shorthand for an upstream matcher condition.
func UpstreamCondition(filter string, exclusive bool) Condition {
	return Condition{Matcher: MatcherUpstream, Filter: filter, Exclusive: exclusive}
}
