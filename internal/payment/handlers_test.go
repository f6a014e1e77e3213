package payment_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/common"
	"github.com/skillspark/hub-api/internal/config"
	"github.com/skillspark/hub-api/internal/payment"
)

func newRouter(cfg *config.Gateway, ledger payment.Ledger) http.Handler {
	h := &payment.Handler{
		Svc: &payment.Service{
			Gateway:         payment.NewRazorpay(cfg, nil),
			Verifier:        payment.Verifier{Gateway: cfg},
			Ledger:          ledger,
			DefaultCurrency: "INR",
		},
		Validate: common.NewValidator(),
	}
	r := chi.NewRouter()
	r.Post("/create-order", h.CreateOrder)
	r.Post("/verify-payment", h.Verify)
	r.Get("/payments/{orderId}/status", h.Status)
	return r
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateOrderReturnsGatewayOrderVerbatim(t *testing.T) {
	fg := newFakeGateway(t, http.StatusOK, sampleOrder)
	router := newRouter(fg.config(), payment.Ledger{})

	rr := post(t, router, "/create-order", `{"amount":500,"currency":"INR","receipt":"receipt_order_42"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, sampleOrder, rr.Body.String())

	sent := fg.LastBody()
	require.EqualValues(t, 50000, sent["amount"])
	require.Equal(t, "INR", sent["currency"])
	require.Equal(t, "receipt_order_42", sent["receipt"])
}

func TestCreateOrderDefaultsCurrencyAndReceipt(t *testing.T) {
	fg := newFakeGateway(t, http.StatusOK, sampleOrder)
	router := newRouter(fg.config(), payment.Ledger{})

	rr := post(t, router, "/create-order", `{"course_id":42,"amount":"199.99"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	sent := fg.LastBody()
	require.Equal(t, "INR", sent["currency"])
	require.Equal(t, "receipt_order_42", sent["receipt"])
	require.EqualValues(t, 19999, sent["amount"])

	rr = post(t, router, "/create-order", `{"course_id":"cloud-engineering","amount":199}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "receipt_order_cloud-engineering", fg.LastBody()["receipt"])
}

func TestCreateOrderGatewayFailureIsNever200(t *testing.T) {
	errBody := `{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		fg := newFakeGateway(t, status, errBody)
		router := newRouter(fg.config(), payment.Ledger{})

		rr := post(t, router, "/create-order", `{"amount":500,"receipt":"receipt_order_42"}`)
		require.Equal(t, http.StatusInternalServerError, rr.Code)

		var resp struct {
			Error struct {
				Code    string          `json:"code"`
				Message string          `json:"message"`
				Details json.RawMessage `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Equal(t, "GATEWAY_UNAVAILABLE", resp.Error.Code)
		require.Equal(t, "Authentication failed", resp.Error.Message)
		require.JSONEq(t, errBody, string(resp.Error.Details))
		require.Equal(t, int32(1), fg.Hits())
	}
}

func TestCreateOrderUnconfiguredGateway(t *testing.T) {
	fg := newFakeGateway(t, http.StatusOK, sampleOrder)
	cfg := fg.config()
	cfg.KeyID = ""
	rr := post(t, newRouter(cfg, payment.Ledger{}), "/create-order", `{"amount":500,"receipt":"r"}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "GATEWAY_NOT_CONFIGURED")
	require.Zero(t, fg.Hits())
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	fg := newFakeGateway(t, http.StatusOK, sampleOrder)
	router := newRouter(fg.config(), payment.Ledger{})

	cases := map[string]string{
		"malformed":       `{"amount":`,
		"missing amount":  `{"receipt":"r"}`,
		"zero":            `{"amount":0,"receipt":"r"}`,
		"negative":        `{"amount":-5,"receipt":"r"}`,
		"sub-paise":       `{"amount":1.005,"receipt":"r"}`,
		"no receipt":      `{"amount":500}`,
		"bad currency":    `{"amount":500,"receipt":"r","currency":"RUPEES"}`,
		"receipt too big": `{"amount":500,"receipt":"` + strings.Repeat("x", 41) + `"}`,
		"huge exponent":   `{"amount":1e300000000,"receipt":"r"}`,
		"tiny exponent":   `{"amount":1e-300000000,"receipt":"r"}`,
		"long course id":  `{"amount":500,"course_id":"` + strings.Repeat("c", 27) + `"}`,
	}
	for name, body := range cases {
		rr := post(t, router, "/create-order", body)
		require.Equal(t, http.StatusBadRequest, rr.Code, name)
	}
	require.Zero(t, fg.Hits())

	rr := post(t, router, "/create-order", `{"amount":500,"course_id":"`+strings.Repeat("c", 26)+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "order_")
	rr = post(t, router, "/create-order", `{"amount":500,"course_id":"`+strings.Repeat("c", 27)+`"}`)
	require.Contains(t, rr.Body.String(), "INVALID_RECEIPT")
}

func TestVerifyPayment(t *testing.T) {
	cfg := &config.Gateway{KeyID: "rzp_test_key", KeySecret: "S"}
	router := newRouter(cfg, payment.Ledger{})
	sig := expectedSignature("S", "order_1|pay_1")

	rr := post(t, router, "/verify-payment", `{"order_id":"order_1","payment_id":"pay_1","signature":"`+sig+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = post(t, router, "/verify-payment", `{"order_id":"order_1","payment_id":"pay_1","signature":"deadbeef"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"success":false}`, rr.Body.String())

	rr = post(t, router, "/verify-payment", `not json`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"success":false}`, rr.Body.String())
}

func TestVerifyPaymentEmptySecretNeverSucceeds(t *testing.T) {
	router := newRouter(&config.Gateway{KeyID: "rzp_test_key"}, payment.Ledger{})
	sig := expectedSignature("", "order_1|pay_1")
	rr := post(t, router, "/verify-payment", `{"order_id":"order_1","payment_id":"pay_1","signature":"`+sig+`"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"success":false}`, rr.Body.String())
}

func TestVerifyPaymentReplayAndStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Gateway{KeyID: "rzp_test_key", KeySecret: "S"}
	router := newRouter(cfg, payment.Ledger{R: client, TTL: time.Hour})
	body := `{"order_id":"order_1","payment_id":"pay_1","signature":"` + expectedSignature("S", "order_1|pay_1") + `"}`

	req := httptest.NewRequest(http.MethodGet, "/payments/order_1/status", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"orderId":"order_1","status":"UNKNOWN"}`, rr.Body.String())

	rr = post(t, router, "/verify-payment", body)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = post(t, router, "/verify-payment", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"success":false,"reason":"replayed"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payments/order_1/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"orderId":"order_1","status":"VERIFIED","paymentId":"pay_1"}`, rr.Body.String())

	mr.FastForward(2 * time.Hour)
	rr = post(t, router, "/verify-payment", body)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestVerifyPaymentLedgerDownFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	cfg := &config.Gateway{KeyID: "rzp_test_key", KeySecret: "S"}
	router := newRouter(cfg, payment.Ledger{R: client, TTL: time.Hour})
	rr := post(t, router, "/verify-payment", `{"order_id":"order_1","payment_id":"pay_1","signature":"`+expectedSignature("S", "order_1|pay_1")+`"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"success":false,"reason":"ledger_unavailable"}`, rr.Body.String())
}

func TestVerifyPaymentRetryAfterLedgerError(t *testing.T) {
	cfg := &config.Gateway{KeyID: "rzp_test_key", KeySecret: "S"}
	router := newRouter(cfg, payment.Ledger{R: newFlakyRedis(t), TTL: time.Hour})
	body := `{"order_id":"order_1","payment_id":"pay_1","signature":"` + expectedSignature("S", "order_1|pay_1") + `"}`

	rr := post(t, router, "/verify-payment", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.JSONEq(t, `{"success":false,"reason":"ledger_unavailable"}`, rr.Body.String())

	rr = post(t, router, "/verify-payment", body)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"success":true}`, rr.Body.String())
}

func TestStatusWithoutLedger(t *testing.T) {
	router := newRouter(&config.Gateway{}, payment.Ledger{})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payments/order_1/status", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
