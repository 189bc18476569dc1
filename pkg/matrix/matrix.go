// Package matrix derives the sub-invocations of a multi-axis build.
//
// Every run of a matrix build is evaluated with the cause list captured when the
// parent was triggered. Propagate is the only place runs are created, so each one
// receives an identical copy of that list.
package matrix

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/runcondition/pkg/domain"
)

// Axis is a named dimension of a matrix build.
type Axis struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// TextAxis creates an axis from literal values.
func TextAxis(name string, values ...string) Axis {
	return Axis{Name: name, Values: values}
}

// ParseAxis parses the "name=v1,v2" form used on the command line.
func ParseAxis(s string) (Axis, error) {
	name, values, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return Axis{}, fmt.Errorf("axis %q: expected name=value[,value...]", s)
	}
	vals := strings.Split(values, ",")
	for _, v := range vals {
		if v == "" {
			return Axis{}, fmt.Errorf("axis %q: empty value", s)
		}
	}
	return TextAxis(name, vals...), nil
}

// AxisList is an ordered set of axes.
type AxisList []Axis

// Validate rejects unnamed, duplicate or empty axes.
func (l AxisList) Validate() error {
	seen := make(map[string]bool, len(l))
	for _, a := range l {
		if a.Name == "" {
			return fmt.Errorf("axis without a name")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate axis %q", a.Name)
		}
		if len(a.Values) == 0 {
			return fmt.Errorf("axis %q has no values", a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}

// Combination is one point in the cross-product of the axes.
type Combination map[string]string

// String renders the combination as "name=value" pairs sorted by axis name.
func (c Combination) String() string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + c[name]
	}
	return strings.Join(parts, ",")
}

// Combinations returns the cross-product of the axes. The first axis varies slowest.
func (l AxisList) Combinations() []Combination {
	if len(l) == 0 {
		return nil
	}

	combos := []Combination{{}}
	for _, axis := range l {
		next := make([]Combination, 0, len(combos)*len(axis.Values))
		for _, base := range combos {
			for _, v := range axis.Values {
				c := make(Combination, len(base)+1)
				for k, bv := range base {
					c[k] = bv
				}
				c[axis.Name] = v
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}

// Propagate creates one run per combination. Each run carries a copy of the
// parent's causes in the same order.
func Propagate(parent *domain.Build, axes AxisList) ([]*domain.Build, error) {
	if err := axes.Validate(); err != nil {
		return nil, fmt.Errorf("invalid axes for %s: %w", parent.ID, err)
	}

	combos := axes.Combinations()
	runs := make([]*domain.Build, 0, len(combos))
	for _, combo := range combos {
		runs = append(runs, &domain.Build{
			ID:          parent.ID + "/" + combo.String(),
			Project:     parent.Project,
			Number:      parent.Number,
			Causes:      parent.CauseList(),
			ParentID:    parent.ID,
			Combination: combo,
		})
	}
	return runs, nil
}
