package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/skillspark/hub-api/internal/config"
	"github.com/skillspark/hub-api/internal/resilience"
)

const maxGatewayBody = 1 << 20

// Razorpay talks to the Razorpay Orders API.
type Razorpay struct {
	Config *config.Gateway
	HTTP   resilience.HTTPClient
}

// NewRazorpay wires a single-attempt, traced HTTP client behind the breaker.
func NewRazorpay(cfg *config.Gateway, breaker *resilience.Breaker) Razorpay {
	return Razorpay{
		Config: cfg,
		HTTP: resilience.HTTPClient{
			Client:      &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
			Breaker:     breaker,
			MaxAttempts: 1,
			Timeout:     cfg.Timeout,
		},
	}
}

// CreateOrder posts the order to /v1/orders using basic auth. Any transport
// error, non-2xx status or undecodable body becomes a *GatewayError.
func (r Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if !r.Config.Configured() {
		return Order{}, ErrGatewayNotConfigured
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return Order{}, fmt.Errorf("encode order request: %w", err)
	}
	endpoint := strings.TrimRight(r.Config.BaseURL, "/") + "/v1/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Order{}, &GatewayError{Err: err}
	}
	httpReq.SetBasicAuth(r.Config.KeyID, r.Config.KeySecret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.HTTP.Do(ctx, httpReq)
	if err != nil {
		return Order{}, &GatewayError{Message: "order creation request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayBody))
	if err != nil {
		return Order{}, &GatewayError{StatusCode: resp.StatusCode, Message: "read gateway response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Order{}, &GatewayError{
			StatusCode: resp.StatusCode,
			Message:    gatewayMessage(body, resp.Status),
			Payload:    asJSON(body),
		}
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return Order{}, &GatewayError{StatusCode: resp.StatusCode, Message: "decode gateway order", Payload: asJSON(body), Err: err}
	}
	if order.ID == "" {
		return Order{}, &GatewayError{StatusCode: resp.StatusCode, Message: "gateway order missing id", Payload: asJSON(body)}
	}
	order.Raw = body
	return order, nil
}

// gatewayMessage pulls error.description out of a Razorpay error document.
func gatewayMessage(body []byte, fallback string) string {
	var doc struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &doc); err == nil {
		if d := strings.TrimSpace(doc.Error.Description); d != "" {
			return d
		}
		if c := strings.TrimSpace(doc.Error.Code); c != "" {
			return c
		}
	}
	return fallback
}

func asJSON(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return quoted
}
