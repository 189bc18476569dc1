package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/runcondition/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records decisions as Prometheus counters.
type Metrics struct {
	Decisions *prometheus.CounterVec
	Causes    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runcondition_decisions_total",
				Help: "Total number of condition evaluations by matcher and result",
			},
			[]string{"matcher", "exclusive", "result"},
		),
		Causes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runcondition_causes_evaluated_total",
				Help: "Total number of causes inspected by kind",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.Decisions, m.Causes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnDecision: m.observe,
	}
}

func (m *Metrics) observe(_ context.Context, e *domain.DecisionEvent) {
	m.Decisions.WithLabelValues(
		string(e.Condition.Matcher),
		strconv.FormatBool(e.Condition.Exclusive),
		strconv.FormatBool(e.Result),
	).Inc()

	for _, k := range e.Causes {
		// Unknown kinds are counted as other.
		m.Causes.WithLabelValues(string(k.Normalize())).Inc()
	}
}
