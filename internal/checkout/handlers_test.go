package checkout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/checkout"
	"github.com/skillspark/hub-api/internal/config"
)

func TestConfigNeverExposesSecret(t *testing.T) {
	h := checkout.Handler{
		Gateway:         &config.Gateway{KeyID: "rzp_test_key", KeySecret: "top-secret"},
		Checkout:        config.Checkout{ScriptURL: "https://checkout.razorpay.com/v1/checkout.js", BrandName: "Skillspark Hub"},
		DefaultCurrency: "INR",
	}
	rr := httptest.NewRecorder()
	h.Config(rr, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/config", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"keyId":"rzp_test_key","scriptUrl":"https://checkout.razorpay.com/v1/checkout.js","brandName":"Skillspark Hub","themeColor":"#0B63FF","currency":"INR"}`, rr.Body.String())
	require.NotContains(t, rr.Body.String(), "top-secret")
}

func TestConfigUnavailableWithoutKey(t *testing.T) {
	rr := httptest.NewRecorder()
	checkout.Handler{Gateway: &config.Gateway{}}.Config(rr, httptest.NewRequest(http.MethodGet, "/api/v1/checkout/config", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
