package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentOrderTotal counts order creation attempts by outcome.
	PaymentOrderTotal *prometheus.CounterVec
	// PaymentOrderLatency records gateway order creation latency in milliseconds.
	PaymentOrderLatency *prometheus.HistogramVec
	// PaymentVerifyTotal counts signature verification verdicts.
	PaymentVerifyTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentOrderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_order_total",
			Help:      "Count of gateway order creation outcomes.",
		}, []string{"currency", "result"})
		PaymentOrderLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_order_duration_ms",
			Help:      "Latency of gateway order creation calls in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"result"})
		PaymentVerifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_verify_total",
			Help:      "Count of payment signature verification verdicts.",
		}, []string{"result"})

		PaymentOrderTotal = registerOrReuse(reg, PaymentOrderTotal)
		PaymentOrderLatency = registerOrReuse(reg, PaymentOrderLatency)
		PaymentVerifyTotal = registerOrReuse(reg, PaymentVerifyTotal)
	})
}

// ObserveOrder records an order creation outcome. Safe to call before registration.
func ObserveOrder(currency, result string, millis float64) {
	if PaymentOrderTotal != nil {
		PaymentOrderTotal.WithLabelValues(currency, result).Inc()
	}
	if PaymentOrderLatency != nil {
		PaymentOrderLatency.WithLabelValues(result).Observe(millis)
	}
}

// ObserveVerify records a verification verdict. Safe to call before registration.
func ObserveVerify(result string) {
	if PaymentVerifyTotal != nil {
		PaymentVerifyTotal.WithLabelValues(result).Inc()
	}
}
