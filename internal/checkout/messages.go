package checkout

import (
	"github.com/shopspring/decimal"
)

// FailureMessage returns the copy shown on the failure view for reason.
func FailureMessage(reason string) string {
	switch reason {
	case ReasonUserCancelled:
		return "You cancelled the payment. No charges were made to your account."
	case ReasonPaymentDeclined:
		return "Your payment was declined by your bank. Please try a different payment method."
	case ReasonInsufficientFunds:
		return "Insufficient funds in your account. Please try a different payment method."
	case ReasonNetworkError:
		return "Network error occurred during payment. Please check your connection and try again."
	default:
		return "Something went wrong during the payment process. Please try again."
	}
}

// FormatMinor renders a paise amount as rupees, e.g. 19999 -> "₹199.99", or
// "₹200" when showDecimals is false.
func FormatMinor(amount int64, showDecimals bool) string {
	major := decimal.New(amount, -2)
	if showDecimals {
		return "₹" + major.StringFixed(2)
	}
	return "₹" + major.Round(0).String()
}
