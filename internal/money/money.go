// Package money implements integer paisa arithmetic and rupee
// formatting. Every operation is closed over int64 minor units; a
// fractional paisa can never appear once an amount has been converted
// from user input.
package money

import (
	"math"
	"strconv"
)

// PaisePerRupee is the minor-unit scale (100 paisa = 1 rupee).
const PaisePerRupee = 100

// CurrencySymbol is prepended by Format.
const CurrencySymbol = "₹"

// ToMinorUnits converts a rupee amount to paisa, rounding half up.
// Negative and non-finite inputs clamp to 0, amounts too large for
// int64 saturate at MaxInt64; the result can never go negative.
func ToMinorUnits(major float64) int64 {
	if math.IsNaN(major) || math.IsInf(major, 0) || major <= 0 {
		return 0
	}
	scaled := math.Floor(major*PaisePerRupee + 0.5)
	if scaled >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(scaled)
}

// ToMajorUnits converts paisa back to rupees.
func ToMajorUnits(minor int64) float64 {
	return float64(minor) / PaisePerRupee
}

// Add sums two paisa amounts.
func Add(a, b int64) int64 {
	return a + b
}

// MultiplyByQuantity scales a unit price by an integer quantity.
// Non-positive quantities yield 0.
func MultiplyByQuantity(amount int64, quantity int) int64 {
	if quantity <= 0 {
		return 0
	}
	return amount * int64(quantity)
}

// SubtractClamped subtracts b from a, flooring at 0 so balances never
// go negative. A large positive a minus a large negative b saturates
// at MaxInt64 instead of wrapping around.
func SubtractClamped(a, b int64) int64 {
	if b >= a {
		return 0
	}
	if b < 0 && a > math.MaxInt64+b {
		return math.MaxInt64
	}
	return a - b
}

// Format renders a paisa amount as whole rupees with Indian digit
// grouping, e.g. 150000 paisa -> "₹1,500" and 123456700 -> "₹12,34,567".
// Paisa precision is tracked internally but the storefront prices in
// whole rupees, so the fractional part is rounded away here.
func Format(minor int64) string {
	if minor < 0 {
		minor = 0
	}
	if minor > math.MaxInt64-PaisePerRupee/2 {
		minor = math.MaxInt64 - PaisePerRupee/2
	}
	rupees := (minor + PaisePerRupee/2) / PaisePerRupee
	return CurrencySymbol + groupIndian(strconv.FormatInt(rupees, 10))
}

// groupIndian inserts separators in the Indian numbering style: the
// last three digits form one group, every two digits after that form
// another (12,34,567).
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	out := make([]byte, 0, n+n/2)
	head := digits[:n-3]
	for i := 0; i < len(head); i++ {
		if i > 0 && (len(head)-i)%2 == 0 {
			out = append(out, ',')
		}
		out = append(out, head[i])
	}
	out = append(out, ',')
	out = append(out, digits[n-3:]...)
	return string(out)
}
