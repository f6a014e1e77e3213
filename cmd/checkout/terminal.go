package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skillspark/hub-api/internal/checkout"
)

// terminalGateway stands in for the hosted dialog: it prints the checkout
// options and reads the outcome of the payment from in. Accepted lines:
//
//	<payment_id> <signature>   payment completed
//	cancel                     dialog dismissed
//	fail <reason> [message]    gateway reported payment.failed
type terminalGateway struct {
	in  io.Reader
	out io.Writer
}

func (g terminalGateway) Open(_ context.Context, opts checkout.Options, cb checkout.Callbacks) error {
	enc := json.NewEncoder(g.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(opts); err != nil {
		return err
	}
	fmt.Fprintf(g.out, "pay %s for order %s, then enter \"<payment_id> <signature>\", \"cancel\" or \"fail <reason>\":\n",
		checkout.FormatMinor(opts.Amount, true), opts.OrderID)

	line, err := bufio.NewReader(g.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	fields := strings.Fields(line)
	switch {
	case len(fields) == 0, strings.EqualFold(fields[0], "cancel"):
		cb.OnDismiss()
	case strings.EqualFold(fields[0], "fail"):
		gf := checkout.GatewayFailure{}
		if len(fields) > 1 {
			gf.Reason = fields[1]
		}
		if len(fields) > 2 {
			gf.Description = strings.Join(fields[2:], " ")
		}
		cb.OnFailure(gf)
	case len(fields) == 2:
		cb.OnSuccess(checkout.PaymentResponse{OrderID: opts.OrderID, PaymentID: fields[0], Signature: fields[1]})
	default:
		return fmt.Errorf("unrecognised input %q", strings.TrimSpace(line))
	}
	return nil
}

type consoleNavigator struct {
	out io.Writer
}

func (n consoleNavigator) Success(orderID string) {
	fmt.Fprintf(n.out, "payment successful: order %s\n", orderID)
}

func (n consoleNavigator) Failure(f checkout.Failure) {
	message := f.Message
	if message == "" {
		message = checkout.FailureMessage(f.Reason)
	}
	fmt.Fprintf(n.out, "payment failed (%s): %s\n", f.Reason, message)
	if f.OrderID != "" {
		fmt.Fprintf(n.out, "order id: %s\n", f.OrderID)
	}
}

type logNotifier struct {
	logger zerolog.Logger
}

func (n logNotifier) Notify(notice checkout.Notice) {
	evt := n.logger.Info()
	if notice.Destructive {
		evt = n.logger.Warn()
	}
	evt.Str("title", notice.Title).Msg(notice.Description)
}
