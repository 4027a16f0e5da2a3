package actor

import (
	"errors"
	"math"
	"math/big"
	"strings"
)

var (
	errAmountNotFinite   = errors.New("amount must be finite")
	errAmountNegative    = errors.New("amount must not be negative")
	errAmountFractional  = errors.New("amount must be a whole number")
	errAmountUnparseable = errors.New("amount is not a decimal integer")
)

// ToNat converts a monetary amount to the arbitrary-precision natural number the
// remote payment interface expects. Negative, fractional and non-finite values
// are rejected rather than truncated.
func ToNat(amount float64) (*big.Int, error) {
	switch {
	case math.IsNaN(amount) || math.IsInf(amount, 0):
		return nil, errAmountNotFinite
	case amount < 0:
		return nil, errAmountNegative
	case math.Trunc(amount) != amount:
		return nil, errAmountFractional
	}
	n, accuracy := big.NewFloat(amount).Int(nil)
	if accuracy != big.Exact {
		return nil, errAmountFractional
	}
	return n, nil
}

// ParseNat parses a base 10 amount of any size.
func ParseNat(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	n, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		if r, ok := new(big.Rat).SetString(amount); ok && !r.IsInt() {
			return nil, errAmountFractional
		}
		return nil, errAmountUnparseable
	}
	if n.Sign() < 0 {
		return nil, errAmountNegative
	}
	return n, nil
}
