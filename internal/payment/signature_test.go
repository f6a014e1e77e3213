package payment_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillspark/hub-api/internal/config"
	"github.com/skillspark/hub-api/internal/payment"
)

func expectedSignature(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignKnownVector(t *testing.T) {
	require.Equal(t, expectedSignature("S", "order_1|pay_1"), payment.Sign("S", "order_1", "pay_1"))
}

func TestVerifierAcceptsOnlyExactSignature(t *testing.T) {
	v := payment.Verifier{Gateway: &config.Gateway{KeyID: "rzp_test", KeySecret: "S"}}
	sig := expectedSignature("S", "order_1|pay_1")

	require.True(t, v.Verify(payment.VerificationRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: sig}))

	for i := range sig {
		flipped := []byte(sig)
		if flipped[i] == 'a' {
			flipped[i] = 'b'
		} else {
			flipped[i] = 'a'
		}
		require.False(t, v.Verify(payment.VerificationRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: string(flipped)}), "flip at %d", i)
	}

	for _, bad := range []string{
		"",
		sig[:len(sig)-1],
		sig + "0",
		strings.ToUpper(sig),
		" " + sig,
		"not-a-signature",
	} {
		require.False(t, v.Verify(payment.VerificationRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: bad}), bad)
	}

	// signature bound to the pair
	require.False(t, v.Verify(payment.VerificationRequest{OrderID: "order_2", PaymentID: "pay_1", Signature: sig}))
	require.False(t, v.Verify(payment.VerificationRequest{OrderID: "order_1", PaymentID: "pay_2", Signature: sig}))
}

func TestVerifierFailsClosedWithoutSecret(t *testing.T) {
	for _, gw := range []*config.Gateway{nil, {KeyID: "rzp_test"}, {KeyID: "rzp_test", KeySecret: "   "}} {
		v := payment.Verifier{Gateway: gw}
		for _, secret := range []string{"", "S", " "} {
			sig := expectedSignature(secret, "order_1|pay_1")
			require.False(t, v.Verify(payment.VerificationRequest{OrderID: "order_1", PaymentID: "pay_1", Signature: sig}))
		}
	}
}

func TestVerifierRejectsEmptyIdentifiers(t *testing.T) {
	v := payment.Verifier{Gateway: &config.Gateway{KeySecret: "S"}}
	require.False(t, v.Verify(payment.VerificationRequest{OrderID: "", PaymentID: "pay_1", Signature: expectedSignature("S", "|pay_1")}))
	require.False(t, v.Verify(payment.VerificationRequest{OrderID: "order_1", PaymentID: "", Signature: expectedSignature("S", "order_1|")}))
}

func TestVerifyBody(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	sig := expectedSignature("whsec", string(body))
	require.True(t, payment.VerifyBody("whsec", body, sig))
	require.False(t, payment.VerifyBody("whsec", append(body, ' '), sig))
	require.False(t, payment.VerifyBody("", body, expectedSignature("", string(body))))
}
