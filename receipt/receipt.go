// Package receipt renders orders for the thermal printer and for PDF export.
package receipt

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"restaurant-pos/models"
	"restaurant-pos/utils"
)

const (
	NameWidth  = 15
	QtyWidth   = 4
	TotalWidth = 11
	Width      = NameWidth + QtyWidth + TotalWidth

	// HeaderRows is how many leading rows of Format are the order header.
	HeaderRows = 3
)

// Divider separates the body from the total.
var Divider = strings.Repeat("-", Width)

// Format returns the fixed-width rows of an order receipt.
func Format(order *models.Order) []string {
	rows := Header(order.ID, order.CreatedAt)
	rows = append(rows, "", fmt.Sprintf("%-*s%*s%*s", NameWidth, "Item", QtyWidth, "Qty", TotalWidth, "Amount"), Divider)
	for _, l := range order.Lines {
		rows = append(rows, Row(l.Name, l.Quantity, l.LineTotal()))
	}
	rows = append(rows, Divider, TotalRow(order.Total))
	return rows
}

// Header returns the order number, date and time rows.
func Header(orderID int64, at time.Time) []string {
	return []string{
		fmt.Sprintf("Order No: %d", orderID),
		"Date: " + at.Format("02/01/2006"),
		"Time: " + at.Format("03:04:05 PM"),
	}
}

// Row lays out one line: name padded or cut to 15, qty right in 4, amount right in 11.
func Row(name string, qty int, lineTotal decimal.Decimal) string {
	return fmt.Sprintf("%-*s%*d%*s", NameWidth, clip(name, NameWidth), QtyWidth, qty, TotalWidth, utils.Amount2(lineTotal))
}

// TotalRow right-aligns the grand total under the amount column.
func TotalRow(total decimal.Decimal) string {
	return fmt.Sprintf("%-*s%*s", NameWidth+QtyWidth, "Total", TotalWidth, utils.Amount2(total))
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
