package pricing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"restaurant-pos/models"
)

// Line is anything that carries a unit price and a quantity.
type Line interface {
	UnitPrice() decimal.Decimal
	Qty() int
}

// LineTotal returns price times quantity.
func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Total sums every line with a positive quantity.
func Total[L Line](lines []L) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Qty() <= 0 {
			continue
		}
		total = total.Add(LineTotal(l.UnitPrice(), l.Qty()))
	}
	return total
}

// OrderTotal sums an order line snapshot.
func OrderTotal(lines []models.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// ValidatePrice rejects negative unit prices.
func ValidatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.Wrap(models.ErrValidation, "price must not be negative")
	}
	return nil
}

// ParseAmount accepts a JSON number, a numeric string or a decimal and returns
// a positive amount. Anything else fails with models.ErrInvalidAmount.
func ParseAmount(v any) (decimal.Decimal, error) {
	var amount decimal.Decimal

	switch t := v.(type) {
	case decimal.Decimal:
		amount = t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, models.ErrInvalidAmount
		}
		amount = decimal.NewFromFloat(t)
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, models.ErrInvalidAmount
		}
		amount = d
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero, models.ErrInvalidAmount
		}
		amount = d
	case int:
		amount = decimal.NewFromInt(int64(t))
	case int64:
		amount = decimal.NewFromInt(t)
	default:
		return decimal.Zero, models.ErrInvalidAmount
	}

	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}
	return amount.Round(2), nil
}
