package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnavailable marks any failure to obtain an order from the gateway.
	ErrGatewayUnavailable = errors.New("payment: gateway unavailable")
	// ErrGatewayNotConfigured is returned when the key id or secret is missing.
	ErrGatewayNotConfigured = errors.New("payment: gateway credentials not configured")
)

// OrderRequest is the order-create payload sent to the gateway. Amount is in
// the minor currency unit.
type OrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway-owned order record. Raw holds the gateway response
// exactly as received and is what callers get back.
type Order struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Amount     int64           `json:"amount"`
	AmountPaid int64           `json:"amount_paid"`
	AmountDue  int64           `json:"amount_due"`
	Currency   string          `json:"currency"`
	Receipt    string          `json:"receipt"`
	Status     string          `json:"status"`
	Attempts   int             `json:"attempts"`
	Notes      json.RawMessage `json:"notes,omitempty"`
	CreatedAt  int64           `json:"created_at"`

	Raw json.RawMessage `json:"-"`
}

// Gateway creates orders with the upstream payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
}

// GatewayError carries the upstream status and error payload of a failed
// order-create call. It matches ErrGatewayUnavailable with errors.Is.
type GatewayError struct {
	StatusCode int
	Message    string
	Payload    json.RawMessage
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("payment: gateway error: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("payment: gateway status %d: %s", e.StatusCode, e.Message)
	default:
		return "payment: gateway error: " + e.Message
	}
}

func (e *GatewayError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGatewayUnavailable, e.Err}
	}
	return []error{ErrGatewayUnavailable}
}
