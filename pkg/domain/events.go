package domain

import (
	"context"
	"time"
)

// DecisionEvent describes one completed evaluation.
type DecisionEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	BuildID   string      `json:"build_id,omitempty"`
	Condition Condition   `json:"condition"`
	Causes    []CauseKind `json:"causes"`
	Result    bool        `json:"result"`
}

// Hooks defines callbacks for decision observability.
type Hooks struct {
	OnDecision func(context.Context, *DecisionEvent)
}

// Merge returns hooks that call h and then other.
func (h Hooks) Merge(other Hooks) Hooks {
	if h.OnDecision == nil {
		return other
	}
	if other.OnDecision == nil {
		return h
	}
	first, second := h.OnDecision, other.OnDecision
	return Hooks{
		OnDecision: func(ctx context.Context, e *DecisionEvent) {
			first(ctx, e)
			second(ctx, e)
		},
	}
}
