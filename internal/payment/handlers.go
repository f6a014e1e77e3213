package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/skillspark/hub-api/internal/common"
)

// Handler exposes the order, verification and status endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createOrderReq struct {
	CourseID courseRef         `json:"course_id"`
	Receipt  string            `json:"receipt" validate:"omitempty,max=40"`
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency" validate:"omitempty,iso4217"`
	Notes    map[string]string `json:"notes" validate:"omitempty,max=15,dive,keys,max=256,endkeys,max=256"`
}

// courseRef accepts a course id sent either as a JSON string or a number.
type courseRef string

func (c *courseRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = courseRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*c = courseRef(n.String())
	return nil
}

// CreateOrder handles POST /create-order. On success the gateway order is
// written back verbatim.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid order request", common.ValidationDetails(err))
			return
		}
	}
	order, err := h.Svc.CreateOrder(r.Context(), CreateOrderInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		CourseID: string(req.CourseID),
		Notes:    req.Notes,
	})
	if err != nil {
		common.WriteError(w, err, http.StatusInternalServerError)
		return
	}
	if len(order.Raw) > 0 {
		common.RawJSON(w, http.StatusOK, order.Raw)
		return
	}
	common.JSON(w, http.StatusOK, order)
}

// Verify handles POST /verify-payment. Every outcome other than a valid,
// first-seen signature is a 400 with success=false.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSON(w, http.StatusBadRequest, VerificationResult{Success: false})
		return
	}
	var req VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSON(w, http.StatusBadRequest, VerificationResult{Success: false})
		return
	}
	res, err := h.Svc.Verify(r.Context(), req)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("order_id", req.OrderID).Msg("verification_ledger_failed")
		common.JSON(w, http.StatusBadRequest, VerificationResult{Success: false, Reason: "ledger_unavailable"})
		return
	}
	if !res.Success {
		zerolog.Ctx(r.Context()).Warn().Str("order_id", req.OrderID).Str("reason", res.Reason).Msg("payment_verification_rejected")
		common.JSON(w, http.StatusBadRequest, res)
		return
	}
	common.JSON(w, http.StatusOK, res)
}

// Status handles GET /payments/{orderId}/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "orderId is required", nil)
		return
	}
	status, paymentID, err := h.Svc.Ledger.Status(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrLedgerDisabled) {
			common.JSONError(w, http.StatusServiceUnavailable, "STATUS_UNAVAILABLE", "payment status tracking is disabled", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "STATUS_ERROR", "unable to read payment status", nil)
		return
	}
	resp := map[string]string{"orderId": orderID, "status": status}
	if paymentID != "" {
		resp["paymentId"] = paymentID
	}
	common.JSON(w, http.StatusOK, resp)
}
