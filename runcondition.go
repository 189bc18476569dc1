package runcondition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/runcondition/internal/logging"
	"github.com/aretw0/runcondition/pkg/condition"
	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/aretw0/runcondition/pkg/matrix"
	"github.com/aretw0/runcondition/pkg/ports"
)

// Gate is the high-level entry point for hosts.
// It looks up build causes, evaluates conditions against them and reports the decision.
type Gate struct {
	source     ports.CauseSource
	conditions ports.ConditionLoader
	hooks      domain.Hooks
	logger     *slog.Logger
	now        func() time.Time
}

// Option defines a functional option for configuring the Gate.
type Option func(*Gate)

// WithSource sets where build causes are read from.
func WithSource(src ports.CauseSource) Option {
	return func(g *Gate) {
		g.source = src
	}
}

// WithConditions sets the loader used by EvaluateNamed.
func WithConditions(l ports.ConditionLoader) Option {
	return func(g *Gate) {
		g.conditions = l
	}
}

// WithHooks registers observability hooks. Repeated calls are merged.
func WithHooks(hooks domain.Hooks) Option {
	return func(g *Gate) {
		g.hooks = g.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// New creates a Gate.
func New(opts ...Option) *Gate {
	g := &Gate{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.NewNop()
	}
	return g
}

// RunDecision is the decision for one matrix run.
type RunDecision struct {
	BuildID     string            `json:"build_id"`
	Combination map[string]string `json:"combination"`
	Result      bool              `json:"result"`
}

// Evaluate decides whether causes satisfy cond.
// The only error is an invalid condition configuration.
func (g *Gate) Evaluate(ctx context.Context, cond domain.Condition, causes []domain.Cause) (bool, error) {
	compiled, err := condition.New(cond)
	if err != nil {
		return false, err
	}
	return g.decide(ctx, "", compiled, causes), nil
}

// EvaluateBuild decides whether the causes of a stored build satisfy cond.
func (g *Gate) EvaluateBuild(ctx context.Context, cond domain.Condition, buildID string) (bool, error) {
	compiled, err := condition.New(cond)
	if err != nil {
		return false, err
	}
	causes, err := g.causes(ctx, buildID)
	if err != nil {
		return false, err
	}
	return g.decide(ctx, buildID, compiled, causes), nil
}

// EvaluateNamed loads a condition by ID and evaluates it against a stored build.
func (g *Gate) EvaluateNamed(ctx context.Context, conditionID, buildID string) (bool, error) {
	if g.conditions == nil {
		return false, fmt.Errorf("no condition loader configured")
	}
	cond, err := g.conditions.GetCondition(ctx, conditionID)
	if err != nil {
		return false, fmt.Errorf("failed to load condition %s: %w", conditionID, err)
	}
	return g.EvaluateBuild(ctx, cond, buildID)
}

// EvaluateMatrix evaluates cond for every run of a matrix build.
// All runs carry the parent's cause list, so they share the same result.
func (g *Gate) EvaluateMatrix(ctx context.Context, cond domain.Condition, parent *domain.Build, axes matrix.AxisList) ([]RunDecision, error) {
	compiled, err := condition.New(cond)
	if err != nil {
		return nil, err
	}

	runs, err := matrix.Propagate(parent, axes)
	if err != nil {
		return nil, err
	}

	decisions := make([]RunDecision, 0, len(runs))
	for _, run := range runs {
		decisions = append(decisions, RunDecision{
			BuildID:     run.ID,
			Combination: run.Combination,
			Result:      g.decide(ctx, run.ID, compiled, run.CauseList()),
		})
	}
	return decisions, nil
}

// Explain evaluates cond and returns the per-cause verdicts.
func (g *Gate) Explain(ctx context.Context, cond domain.Condition, causes []domain.Cause) (condition.Decision, error) {
	compiled, err := condition.New(cond)
	if err != nil {
		return condition.Decision{}, err
	}
	d := compiled.Explain(causes)
	g.report(ctx, "", compiled.Config(), causes, d.Result)
	return d, nil
}

func (g *Gate) causes(ctx context.Context, buildID string) ([]domain.Cause, error) {
	if g.source == nil {
		return nil, fmt.Errorf("no cause source configured")
	}
	causes, err := g.source.Causes(ctx, buildID)
	if err != nil {
		return nil, fmt.Errorf("failed to read causes of %s: %w", buildID, err)
	}
	return causes, nil
}

func (g *Gate) decide(ctx context.Context, buildID string, c *condition.Condition, causes []domain.Cause) bool {
	result := c.Evaluate(causes)
	g.report(ctx, buildID, c.Config(), causes, result)
	return result
}

func (g *Gate) report(ctx context.Context, buildID string, cfg domain.Condition, causes []domain.Cause, result bool) {
	kinds := make([]domain.CauseKind, len(causes))
	for i, c := range causes {
		kinds[i] = c.Kind
		g.logger.DebugContext(ctx, "cause", "build", buildID, "index", i, "desc", c.ShortDescription())
	}

	g.logger.InfoContext(ctx, "condition evaluated",
		"build", buildID,
		"matcher", cfg.Matcher,
		"filter", cfg.Filter,
		"exclusive", cfg.Exclusive,
		"causes", len(causes),
		"result", result,
	)

	if g.hooks.OnDecision != nil {
		g.hooks.OnDecision(ctx, &domain.DecisionEvent{
			Timestamp: g.now(),
			BuildID:   buildID,
			Condition: cfg,
			Causes:    kinds,
			Result:    result,
		})
	}
}
