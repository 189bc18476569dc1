package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/runcondition/pkg/condition"
	"github.com/aretw0/runcondition/pkg/domain"
)

// Loader implements ports.ConditionLoader using an in-memory map.
type Loader struct {
	conditions map[string]domain.Condition
}

// NewLoader creates a Loader from condition values.
// Every condition must have an ID and must compile.
func NewLoader(conditions ...domain.Condition) (*Loader, error) {
	data := make(map[string]domain.Condition, len(conditions))
	for _, c := range conditions {
		if c.ID == "" {
			return nil, fmt.Errorf("condition missing ID")
		}
		if _, dup := data[c.ID]; dup {
			return nil, fmt.Errorf("duplicate condition ID %q", c.ID)
		}
		if _, err := condition.New(c); err != nil {
			return nil, fmt.Errorf("condition %s: %w", c.ID, err)
		}
		data[c.ID] = c
	}
	return &Loader{conditions: data}, nil
}

// GetCondition retrieves a condition by ID.
func (l *Loader) GetCondition(ctx context.Context, id string) (domain.Condition, error) {
	c, ok := l.conditions[id]
	if !ok {
		return domain.Condition{}, fmt.Errorf("%w: %s", domain.ErrConditionNotFound, id)
	}
	return c, nil
}

// ListConditions returns all condition IDs.
func (l *Loader) ListConditions(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.conditions))
	for k := range l.conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
