package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var defaultClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

// APIClient is the Backend implementation that talks to this service's own
// payment endpoints. A nil HTTP client falls back to one that propagates the
// caller's trace context.
type APIClient struct {
	BaseURL string
	HTTP    *http.Client
}

type verifyReq struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

type verifyResp struct {
	Success bool `json:"success"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateOrder posts to /api/v1/payments/orders.
func (c APIClient) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	var order Order
	resp, err := c.post(ctx, "/api/v1/payments/orders", req)
	if err != nil {
		return order, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return order, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Error.Code != "" {
			return order, fmt.Errorf("create order: %s: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return order, fmt.Errorf("create order: unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &order); err != nil {
		return order, fmt.Errorf("create order: decode: %w", err)
	}
	if order.ID == "" {
		return order, fmt.Errorf("create order: response missing id")
	}
	return order, nil
}

// VerifyPayment posts the gateway callback to /api/v1/payments/verify. A 400
// verdict is a normal false, not an error.
func (c APIClient) VerifyPayment(ctx context.Context, pr PaymentResponse) (bool, error) {
	resp, err := c.post(ctx, "/api/v1/payments/verify", verifyReq{
		OrderID:   pr.OrderID,
		PaymentID: pr.PaymentID,
		Signature: pr.Signature,
	})
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return false, fmt.Errorf("verify payment: unexpected status %d", resp.StatusCode)
	}
	var out verifyResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("verify payment: decode: %w", err)
	}
	return resp.StatusCode == http.StatusOK && out.Success, nil
}

func (c APIClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	client := c.HTTP
	if client == nil {
		client = defaultClient
	}
	return client.Do(req)
}
