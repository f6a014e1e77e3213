package payment

import (
	"strings"

	"github.com/skillspark/hub-api/internal/common"
	"github.com/skillspark/hub-api/internal/config"
)

// VerificationRequest is the checkout callback forwarded by the client.
type VerificationRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// VerificationResult is the verdict returned to the client.
type VerificationResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Sign returns hex(HMAC-SHA256(secret, orderID|paymentID)).
func Sign(secret, orderID, paymentID string) string {
	return common.HMACSHA256Hex(secret, []byte(orderID+"|"+paymentID))
}

// Verifier checks checkout signatures against the configured key secret.
type Verifier struct {
	Gateway *config.Gateway
}

// Verify reports whether req carries the signature the gateway would have
// produced. A missing secret or any empty field rejects.
func (v Verifier) Verify(req VerificationRequest) bool {
	if v.Gateway == nil || strings.TrimSpace(v.Gateway.KeySecret) == "" {
		return false
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return false
	}
	return common.EqualHex(Sign(v.Gateway.KeySecret, req.OrderID, req.PaymentID), req.Signature)
}

// VerifyBody checks a webhook body against its X-Razorpay-Signature header.
func VerifyBody(secret string, body []byte, signature string) bool {
	if strings.TrimSpace(secret) == "" || signature == "" {
		return false
	}
	return common.EqualHex(common.HMACSHA256Hex(secret, body), signature)
}
