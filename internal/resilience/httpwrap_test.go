package resilience_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/resilience"
)

func TestHTTPClientBodyReadableAfterDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"order_1"}`)
	}))
	t.Cleanup(srv.Close)

	cl := resilience.HTTPClient{Client: srv.Client(), Timeout: time.Second}
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{}`))
	require.NoError(t, err)
	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"order_1"}`, string(body))
}

func TestHTTPClientSingleAttemptReturnsUpstreamError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":{"code":"SERVER_ERROR"}}`)
	}))
	t.Cleanup(srv.Close)

	cl := resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1}
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{}`))
	require.NoError(t, err)
	resp, err := cl.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPClientOpenBreakerShortCircuits(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	t.Cleanup(srv.Close)

	breaker := resilience.NewBreaker(1, 0.5, time.Minute)
	breaker.Report(context.Background(), false)
	require.Equal(t, resilience.Open, breaker.State())

	cl := resilience.HTTPClient{Client: srv.Client(), Breaker: breaker}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	_, err = cl.Do(context.Background(), req)
	require.True(t, errors.Is(err, resilience.ErrOpenCircuit))
	require.Zero(t, atomic.LoadInt32(&hits))
}
