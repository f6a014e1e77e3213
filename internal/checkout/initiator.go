package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Outcome summarises how a checkout ended.
type Outcome struct {
	Success   bool
	OrderID   string
	PaymentID string
	Reason    string
}

// Initiator runs one checkout per Start call. It is the single entry point for
// every "buy" button in the storefront.
type Initiator struct {
	Loader    ScriptLoader
	Gateway   Gateway
	Backend   Backend
	Navigator Navigator
	Notifier  Notifier

	KeyID      string
	BrandName  string
	ThemeColor string
	Logger     zerolog.Logger
}

type gatewayResult struct {
	success *PaymentResponse
	failure *Failure
}

// Start loads the script, creates the order, opens the dialog and waits for
// the gateway to report back. A script load failure aborts before any API
// call and returns ErrScriptLoad. Failures reported by the gateway never
// reach the verification endpoint.
func (in *Initiator) Start(ctx context.Context, p Purchase) (Outcome, error) {
	if err := in.ensureScript(ctx); err != nil {
		in.notify(Notice{Title: "Payment Failed", Description: "Unable to load payment gateway. Please try again.", Destructive: true})
		return Outcome{}, err
	}

	order, err := in.Backend.CreateOrder(ctx, OrderRequest{
		CourseID: p.CourseID,
		Receipt:  p.Receipt,
		Amount:   p.Amount,
		Currency: p.Currency,
		Notes:    p.Notes,
	})
	if err != nil {
		in.Logger.Warn().Err(err).Str("course_id", p.CourseID).Msg("checkout_order_failed")
		in.notify(Notice{Title: "Payment Failed", Description: "Unable to create order. Please try again.", Destructive: true})
		return in.fail(Failure{Reason: ReasonOrderFailed, Message: FailureMessage(ReasonOrderFailed)}), nil
	}

	results := make(chan gatewayResult, 1)
	var once sync.Once
	deliver := func(r gatewayResult) {
		once.Do(func() { results <- r })
	}
	cb := Callbacks{
		OnSuccess: func(resp PaymentResponse) {
			deliver(gatewayResult{success: &resp})
		},
		OnDismiss: func() {
			deliver(gatewayResult{failure: &Failure{
				Reason:  ReasonUserCancelled,
				Message: "Payment was cancelled by user",
				OrderID: order.ID,
			}})
		},
		OnFailure: func(gf GatewayFailure) {
			reason := strings.TrimSpace(gf.Reason)
			if reason == "" {
				reason = ReasonPaymentFailed
			}
			message := strings.TrimSpace(gf.Description)
			if message == "" {
				message = "Payment failed"
			}
			deliver(gatewayResult{failure: &Failure{Reason: reason, Message: message, OrderID: order.ID, Metadata: gf.Metadata}})
		},
	}

	if err := in.Gateway.Open(ctx, in.options(p, order), cb); err != nil {
		in.Logger.Warn().Err(err).Str("order_id", order.ID).Msg("checkout_open_failed")
		return in.fail(Failure{Reason: ReasonPaymentFailed, Message: "Payment failed", OrderID: order.ID}), nil
	}

	var res gatewayResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return Outcome{OrderID: order.ID}, fmt.Errorf("checkout: %w", ctx.Err())
	}

	if res.failure != nil {
		return in.fail(*res.failure), nil
	}

	resp := *res.success
	if resp.OrderID == "" {
		resp.OrderID = order.ID
	}
	ok, err := in.Backend.VerifyPayment(ctx, resp)
	if err != nil {
		in.Logger.Warn().Err(err).Str("order_id", resp.OrderID).Msg("checkout_verify_failed")
	}
	if err != nil || !ok {
		return in.fail(Failure{
			Reason:  ReasonVerificationFailed,
			Message: FailureMessage(ReasonVerificationFailed),
			OrderID: resp.OrderID,
		}), nil
	}
	if in.Navigator != nil {
		in.Navigator.Success(resp.OrderID)
	}
	return Outcome{Success: true, OrderID: resp.OrderID, PaymentID: resp.PaymentID}, nil
}

func (in *Initiator) ensureScript(ctx context.Context) error {
	if in.Loader == nil || in.Loader.Loaded() {
		return nil
	}
	if err := in.Loader.Load(ctx); err != nil {
		in.Logger.Warn().Err(err).Msg("checkout_script_load_failed")
		return fmt.Errorf("%w: %v", ErrScriptLoad, err)
	}
	return nil
}

func (in *Initiator) options(p Purchase, order Order) Options {
	currency := order.Currency
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	}
	if currency == "" {
		currency = defaultCurrency
	}
	name := p.Name
	if name == "" {
		name = in.BrandName
	}
	color := in.ThemeColor
	if color == "" {
		color = defaultThemeColor
	}
	return Options{
		Key:         in.KeyID,
		Amount:      order.Amount,
		Currency:    currency,
		Name:        name,
		Description: p.Description,
		OrderID:     order.ID,
		Prefill:     p.Prefill,
		Notes:       p.Notes,
		Theme:       Theme{Color: color},
	}
}

func (in *Initiator) fail(f Failure) Outcome {
	if in.Navigator != nil {
		in.Navigator.Failure(f)
	}
	return Outcome{OrderID: f.OrderID, Reason: f.Reason}
}

func (in *Initiator) notify(n Notice) {
	if in.Notifier != nil {
		in.Notifier.Notify(n)
	}
}
