package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillspark/hub-api/internal/common"
)

// SignatureHeader carries the webhook body signature.
const SignatureHeader = "X-Razorpay-Signature"

// Webhook receives Razorpay event callbacks. Captured payments and paid
// orders are recorded in the ledger so the status endpoint reflects payments
// the browser never reported back.
type Webhook struct {
	Secret    string
	Ledger    Ledger
	Replay    *redis.Client
	ReplayTTL time.Duration
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// Handle verifies and applies a webhook event.
func (h Webhook) Handle(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(h.Secret) == "" {
		common.JSONError(w, http.StatusServiceUnavailable, "WEBHOOK_NOT_CONFIGURED", "webhook unavailable", nil)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "unable to read payload", nil)
		return
	}
	if !VerifyBody(h.Secret, body, strings.TrimSpace(r.Header.Get(SignatureHeader))) {
		common.JSONError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed", nil)
		return
	}
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	// release drops the dedupe claim so a redelivery is processed again.
	release := func() {}
	if h.Replay != nil && h.ReplayTTL > 0 {
		key := fmt.Sprintf("wh:razorpay:%s", common.Sha256Hex(string(body)))
		ok, err := h.Replay.SetNX(ctx, key, "1", h.ReplayTTL).Result()
		if err != nil {
			common.JSONError(w, http.StatusInternalServerError, "REPLAY_STORE_ERROR", "replay store unavailable", nil)
			return
		}
		if !ok {
			logger.Info().Msg("webhook_duplicate")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		release = func() {
			if err := h.Replay.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
				logger.Warn().Err(err).Msg("webhook_release_failed")
			}
		}
	}
	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		release()
		common.JSONError(w, http.StatusBadRequest, "WEBHOOK_INVALID", "malformed event", nil)
		return
	}

	orderID, paymentID := "", ""
	switch evt.Event {
	case "payment.captured":
		orderID = evt.Payload.Payment.Entity.OrderID
		paymentID = evt.Payload.Payment.Entity.ID
	case "order.paid":
		orderID = evt.Payload.Order.Entity.ID
		if orderID == "" {
			orderID = evt.Payload.Payment.Entity.OrderID
		}
		paymentID = evt.Payload.Payment.Entity.ID
	}
	if orderID != "" && paymentID != "" {
		if err := h.Ledger.MarkOrder(ctx, orderID, paymentID); err != nil {
			logger.Error().Err(err).Str("order_id", orderID).Msg("webhook_ledger_failed")
			release()
			common.JSONError(w, http.StatusInternalServerError, "LEDGER_ERROR", "unable to record payment", nil)
			return
		}
	}
	logger.Info().Str("event", evt.Event).Str("order_id", orderID).Msg("webhook_processed")
	w.WriteHeader(http.StatusNoContent)
}
