// Package checkout drives the client side of a purchase: it makes sure the
// gateway checkout script is available, creates an order through the API,
// opens the hosted payment dialog and routes the user to a success or
// failure view depending on the server's verification verdict.
package checkout

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrScriptLoad is returned when the checkout script could not be loaded.
var ErrScriptLoad = errors.New("checkout: unable to load payment gateway script")

// Failure reasons surfaced to the failure view.
const (
	ReasonUserCancelled      = "user_cancelled"
	ReasonPaymentFailed      = "payment_failed"
	ReasonPaymentDeclined    = "payment_declined"
	ReasonInsufficientFunds  = "insufficient_funds"
	ReasonNetworkError       = "network_error"
	ReasonOrderFailed        = "order_failed"
	ReasonVerificationFailed = "verification_failed"
)

const (
	defaultCurrency   = "INR"
	defaultThemeColor = "#0B63FF"
)

// Purchase describes what the user is buying. Amount is in major units.
type Purchase struct {
	CourseID    string
	Name        string
	Description string
	Amount      decimal.Decimal
	Currency    string
	Receipt     string
	Prefill     Prefill
	Notes       map[string]string
}

// Prefill seeds the payer details in the hosted dialog.
type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Theme controls the dialog accent colour.
type Theme struct {
	Color string `json:"color,omitempty"`
}

// Options is the configuration handed to the hosted checkout.
type Options struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	OrderID     string            `json:"order_id"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes,omitempty"`
	Theme       Theme             `json:"theme"`
}

// PaymentResponse is what the gateway hands back after a completed payment.
type PaymentResponse struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// GatewayFailure is the payload of the gateway's payment.failed event.
type GatewayFailure struct {
	Reason      string
	Description string
	Metadata    map[string]string
}

// Callbacks are invoked by the Gateway. Exactly one of them is expected to
// fire per Open; later calls are ignored.
type Callbacks struct {
	OnSuccess func(PaymentResponse)
	OnDismiss func()
	OnFailure func(GatewayFailure)
}

// Failure is routed to the failure view.
type Failure struct {
	Reason   string
	Message  string
	OrderID  string
	Metadata map[string]string
}

// Notice is a user-visible toast.
type Notice struct {
	Title       string
	Description string
	Destructive bool
}

// Order is the subset of the created order the checkout needs.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// OrderRequest is posted to the order endpoint.
type OrderRequest struct {
	CourseID string            `json:"course_id,omitempty"`
	Receipt  string            `json:"receipt,omitempty"`
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// ScriptLoader makes the checkout script available. Load is only called when
// Loaded reports false.
type ScriptLoader interface {
	Loaded() bool
	Load(ctx context.Context) error
}

// Gateway opens the hosted payment dialog.
type Gateway interface {
	Open(ctx context.Context, opts Options, cb Callbacks) error
}

// Backend is the server API used during checkout.
type Backend interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	VerifyPayment(ctx context.Context, resp PaymentResponse) (bool, error)
}

// Navigator moves the user to the outcome views.
type Navigator interface {
	Success(orderID string)
	Failure(f Failure)
}

// Notifier shows toasts.
type Notifier interface {
	Notify(n Notice)
}
