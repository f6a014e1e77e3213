package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/skillspark/hub-api/internal/common"
	"github.com/skillspark/hub-api/internal/obs"
)

// MaxReceiptLen is the gateway's limit on the receipt field.
const MaxReceiptLen = 40

// CreateOrderInput is the purchase intent accepted from the client. Amount is
// in major units.
type CreateOrderInput struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	CourseID string
	Notes    map[string]string
}

// Service creates gateway orders and verifies checkout callbacks.
type Service struct {
	Gateway         Gateway
	Verifier        Verifier
	Ledger          Ledger
	DefaultCurrency string
}

// CreateOrder converts the amount to minor units, applies defaults and asks
// the gateway for an order. There are no retries: a gateway failure is
// returned as an *common.AppError with status 500.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (Order, error) {
	if s == nil || s.Gateway == nil {
		return Order{}, common.NewAppError("PAYMENT_NOT_CONFIGURED", "payment service unavailable", http.StatusInternalServerError, ErrGatewayNotConfigured)
	}
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.CreateOrder")
	defer span.End()

	minor, err := ToMinor(in.Amount)
	if err != nil {
		return Order{}, common.NewAppError("INVALID_AMOUNT", err.Error(), http.StatusBadRequest, err)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency()
	}
	receipt := strings.TrimSpace(in.Receipt)
	if receipt == "" {
		courseID := strings.TrimSpace(in.CourseID)
		if courseID == "" {
			return Order{}, common.BadRequest("INVALID_RECEIPT", "receipt or course_id is required")
		}
		receipt = "receipt_order_" + courseID
	}
	if utf8.RuneCountInString(receipt) > MaxReceiptLen {
		return Order{}, common.BadRequest("INVALID_RECEIPT", fmt.Sprintf("receipt must be at most %d characters", MaxReceiptLen))
	}

	req := OrderRequest{Amount: minor, Currency: currency, Receipt: receipt, Notes: in.Notes}
	span.SetAttributes(
		attribute.Int64("payment.amount_minor", minor),
		attribute.String("payment.currency", currency),
		attribute.String("payment.receipt", receipt),
	)

	start := time.Now()
	result := "error"
	defer func() {
		span.SetAttributes(attribute.String("payment.order.result", result))
		obs.ObserveOrder(currency, result, obs.DurationMillis(time.Since(start)))
	}()

	order, err := s.Gateway.CreateOrder(ctx, req)
	if err != nil {
		span.RecordError(err)
		zerolog.Ctx(ctx).Error().Err(err).Str("receipt", receipt).Int64("amount", minor).Msg("gateway_order_failed")
		return Order{}, gatewayAppError(err)
	}
	result = "success"
	span.SetAttributes(attribute.String("payment.order_id", order.ID))
	return order, nil
}

func (s *Service) defaultCurrency() string {
	if s.DefaultCurrency == "" {
		return "INR"
	}
	return s.DefaultCurrency
}

func gatewayAppError(err error) *common.AppError {
	if errors.Is(err, ErrGatewayNotConfigured) {
		return common.NewAppError("GATEWAY_NOT_CONFIGURED", "payment gateway is not configured", http.StatusInternalServerError, err)
	}
	appErr := common.NewAppError("GATEWAY_UNAVAILABLE", "unable to create payment order", http.StatusInternalServerError, err)
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.Message != "" {
			appErr.Message = gwErr.Message
		}
		if len(gwErr.Payload) > 0 {
			appErr.WithDetails(gwErr.Payload)
		}
	}
	return appErr
}

// Verify checks the signature and, when a ledger is configured, rejects pairs
// that were already verified. Ledger failures are returned as errors; the
// caller decides the response.
func (s *Service) Verify(ctx context.Context, req VerificationRequest) (VerificationResult, error) {
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.Verify")
	defer span.End()
	span.SetAttributes(attribute.String("payment.order_id", req.OrderID))

	if !s.Verifier.Verify(req) {
		obs.ObserveVerify("invalid")
		return VerificationResult{Success: false}, nil
	}
	first, err := s.Ledger.Record(ctx, req.OrderID, req.PaymentID)
	if err != nil {
		span.RecordError(err)
		obs.ObserveVerify("error")
		return VerificationResult{Success: false}, fmt.Errorf("record verification: %w", err)
	}
	if !first {
		obs.ObserveVerify("replayed")
		return VerificationResult{Success: false, Reason: "replayed"}, nil
	}
	obs.ObserveVerify("verified")
	return VerificationResult{Success: true}, nil
}
