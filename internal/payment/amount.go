package payment

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for non-positive amounts or amounts that do
// not convert to a whole number of minor units.
var ErrInvalidAmount = errors.New("payment: invalid amount")

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// Exponent bounds checked before any arithmetic. Comparing a decimal
// rescales it, so 1e300000000 would otherwise expand into a huge big.Int.
const (
	maxExponent = 18
	minExponent = -18
)

// ToMinor converts a major-unit amount (rupees) into minor units (paise).
// The conversion is exact: 500 becomes 50000 and 19.99 becomes 1999.
func ToMinor(amount decimal.Decimal) (int64, error) {
	if amount.Sign() <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if amount.Exponent() > maxExponent {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	if amount.Exponent() < minExponent {
		return 0, fmt.Errorf("%w: at most two decimal places allowed", ErrInvalidAmount)
	}
	minor := amount.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: at most two decimal places allowed", ErrInvalidAmount)
	}
	if minor.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return minor.IntPart(), nil
}
