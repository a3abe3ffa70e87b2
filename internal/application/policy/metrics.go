package policy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/garyjia/tkdn-compliance/internal/domain/entity"
)

var accessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tkdn",
	Subsystem: "policy",
	Name:      "decisions_total",
	Help:      "Access decisions broken down by operation, role and result.",
}, []string{"operation", "role", "result"})

func recordDecision(op Operation, role entity.Role, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	accessDecisions.WithLabelValues(string(op), string(role), result).Inc()
}
