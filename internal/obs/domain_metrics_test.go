package obs_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/obs"
)

func TestDomainMetricsObserve(t *testing.T) {
	obs.MustRegisterDomainMetrics("hub", prometheus.NewRegistry())

	before := testutil.ToFloat64(obs.PaymentVerifyTotal.WithLabelValues("invalid"))
	obs.ObserveVerify("invalid")
	require.Equal(t, before+1, testutil.ToFloat64(obs.PaymentVerifyTotal.WithLabelValues("invalid")))

	orders := testutil.ToFloat64(obs.PaymentOrderTotal.WithLabelValues("INR", "success"))
	obs.ObserveOrder("INR", "success", 12)
	require.Equal(t, orders+1, testutil.ToFloat64(obs.PaymentOrderTotal.WithLabelValues("INR", "success")))
}
