package loam

import (
	"github.com/aretw0/runcondition/pkg/domain"
)

// ConditionMetadata represents the frontmatter of a condition document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
//
//	---
//	id: deploy-on-fred
//	matcher: user
//	filter: fred,tom
//	exclusive: true
//	---
//	Free text describing what the condition gates.
type ConditionMetadata struct {
	ID        string `json:"id" mapstructure:"id"`
	Matcher   string `json:"matcher" mapstructure:"matcher"`
	Filter    string `json:"filter" mapstructure:"filter"`
	Exclusive bool   `json:"exclusive" mapstructure:"exclusive"`
}

// Condition maps the metadata to the domain configuration.
func (m ConditionMetadata) Condition(id string) domain.Condition {
	return domain.Condition{
		ID:        id,
		Matcher:   domain.MatcherKind(m.Matcher),
		Filter:    m.Filter,
		Exclusive: m.Exclusive,
	}
}
