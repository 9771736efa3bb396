package observability

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dialog counters.
type Metrics struct {
	Resets      prometheus.Counter
	Transitions *prometheus.CounterVec
	Dangling    *prometheus.CounterVec
	Unmatched   *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_dialog_resets_total",
			Help: "Total number of dialogs seeded or reset to the root",
		}),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_node_visits_total",
				Help: "Total number of transitions into a node",
			},
			[]string{"node"},
		),
		Dangling: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_dangling_references_total",
				Help: "Options selected whose target node does not exist",
			},
			[]string{"from", "target"},
		),
		Unmatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_unmatched_inputs_total",
				Help: "Submitted inputs that matched no option",
			},
			[]string{"node"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Resets, m.Transitions, m.Dangling, m.Unmatched)
	}
	return m
}

// Hooks returns dialog hooks that record into the counters.
func (m *Metrics) Hooks() domain.DialogHooks {
	return domain.DialogHooks{
		OnReset: func(e *domain.DialogEvent) {
			m.Resets.Inc()
		},
		OnTransition: func(e *domain.DialogEvent) {
			m.Transitions.WithLabelValues(string(e.To)).Inc()
		},
		OnDangling: func(e *domain.DialogEvent) {
			m.Dangling.WithLabelValues(nodeLabel(e.From), string(e.To)).Inc()
		},
		OnUnmatched: func(e *domain.DialogEvent) {
			m.Unmatched.WithLabelValues(nodeLabel(e.From)).Inc()
		},
	}
}

// nodeLabel keeps the root visible in label values.
func nodeLabel(key domain.NodeKey) string {
	if key == domain.RootKey {
		return "root"
	}
	return string(key)
}
