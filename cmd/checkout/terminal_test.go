package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/checkout"
)

type recorded struct {
	success   *checkout.PaymentResponse
	dismissed bool
	failure   *checkout.GatewayFailure
}

func (r *recorded) callbacks() checkout.Callbacks {
	return checkout.Callbacks{
		OnSuccess: func(p checkout.PaymentResponse) { r.success = &p },
		OnDismiss: func() { r.dismissed = true },
		OnFailure: func(f checkout.GatewayFailure) { r.failure = &f },
	}
}

func openWith(t *testing.T, input string) (*recorded, string, error) {
	t.Helper()
	var out bytes.Buffer
	rec := &recorded{}
	g := terminalGateway{in: strings.NewReader(input), out: &out}
	err := g.Open(context.Background(), checkout.Options{OrderID: "order_T1", Amount: 19900, Currency: "INR"}, rec.callbacks())
	return rec, out.String(), err
}

func TestTerminalGatewaySuccess(t *testing.T) {
	rec, out, err := openWith(t, "pay_T1 abc123\n")
	require.NoError(t, err)
	require.Contains(t, out, "₹199.00")
	require.Contains(t, out, `"order_id": "order_T1"`)
	require.Equal(t, &checkout.PaymentResponse{OrderID: "order_T1", PaymentID: "pay_T1", Signature: "abc123"}, rec.success)
}

func TestTerminalGatewayCancelAndFailure(t *testing.T) {
	rec, _, err := openWith(t, "cancel\n")
	require.NoError(t, err)
	require.True(t, rec.dismissed)

	rec, _, err = openWith(t, "")
	require.NoError(t, err)
	require.True(t, rec.dismissed)

	rec, _, err = openWith(t, "fail payment_declined card was declined\n")
	require.NoError(t, err)
	require.Equal(t, "payment_declined", rec.failure.Reason)
	require.Equal(t, "card was declined", rec.failure.Description)

	_, _, err = openWith(t, "one two three\n")
	require.Error(t, err)
}

func TestConsoleNavigatorUsesFailureCopy(t *testing.T) {
	var out bytes.Buffer
	consoleNavigator{out: &out}.Failure(checkout.Failure{Reason: checkout.ReasonInsufficientFunds, OrderID: "order_T1"})
	require.Contains(t, out.String(), "Insufficient funds")
	require.Contains(t, out.String(), "order_T1")
}

func TestNewPurchaseFromCatalog(t *testing.T) {
	p, err := newPurchase("full-stack-java", "", "inr")
	require.NoError(t, err)
	require.Equal(t, "Full Stack Java Development", p.Description)
	require.True(t, decimal.RequireFromString("179").Equal(p.Amount))
	require.Equal(t, "INR", p.Currency)

	p, err = newPurchase("full-stack-java", "499.50", "")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("499.5").Equal(p.Amount))

	_, err = newPurchase("missing", "", "")
	require.Error(t, err)
	_, err = newPurchase("full-stack-java", "lots", "")
	require.Error(t, err)
}
