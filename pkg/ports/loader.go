package ports

import (
	"context"

	"github.com/aretw0/runcondition/pkg/domain"
)

// ConditionLoader retrieves persisted condition configuration.
// This allows the storage layer (Loam, Memory) to be decoupled.
type ConditionLoader interface {
	// GetCondition returns the condition with the given ID.
	// Returns domain.ErrConditionNotFound if there is none.
	GetCondition(ctx context.Context, id string) (domain.Condition, error)

	// ListConditions returns the IDs of all known conditions.
	ListConditions(ctx context.Context) ([]string, error)
}
