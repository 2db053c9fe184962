package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var statusTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "offboarding",
		Name:      "status_transitions_total",
		Help:      "Committed workflow status transitions by entity.",
	},
	[]string{"entity", "from", "to"},
)

var rejectedTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "offboarding",
		Name:      "rejected_transitions_total",
		Help:      "Workflow transitions refused because the current status does not allow them.",
	},
	[]string{"entity", "from", "to"},
)

// RecordTransition is called after the transaction that changed the status committed.
func RecordTransition(entity, from, to string) {
	statusTransitions.WithLabelValues(entity, from, to).Inc()
}

func RecordRejected(entity, from, to string) {
	rejectedTransitions.WithLabelValues(entity, from, to).Inc()
}
