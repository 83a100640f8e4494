package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR formats an amount as a rupee string like "₹1,23,456.50".
// Uses the Indian grouping: last three digits, then pairs.
func FormatINR(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.Grow(len(fixed) + len(intPart)/2 + 4)
	if neg {
		b.WriteString("-")
	}
	b.WriteString("₹")

	if len(intPart) <= 3 {
		b.WriteString(intPart)
	} else {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]

		// Pairs from the left of head.
		rem := len(head) % 2
		if rem == 1 {
			b.WriteString(head[:1])
		}
		for i := rem; i < len(head); i += 2 {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(head[i : i+2])
		}
		b.WriteByte(',')
		b.WriteString(tail)
	}

	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Amount2 renders an amount with exactly two decimals and no symbol.
func Amount2(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
