package resilience

import "github.com/prometheus/client_golang/prometheus"

// Breaker collectors, labelled by the guarded target (e.g. "razorpay").
var (
	BreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Current breaker state: 0=closed, 1=open, 2=half-open.",
	}, []string{"target"})
	BreakerTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "breaker",
		Name:      "transitions_total",
		Help:      "Breaker state transitions by from/to state.",
	}, []string{"target", "from", "to"})
	BreakerOpenedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "breaker",
		Name:      "opened_total",
		Help:      "Times the breaker tripped open.",
	}, []string{"target"})
)

func init() {
	prometheus.MustRegister(BreakerState, BreakerTransitions, BreakerOpenedTotal)
}
