// Package cart holds the per-session cart aggregate.
package cart

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"restaurant-pos/models"
	"restaurant-pos/pricing"
)

var (
	ErrLineNotFound     = errors.New("cart line not found")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrEmptyCart        = errors.New("cart is empty")
)

// Line is a cart entry with a snapshot of the item it was added from.
type Line struct {
	ItemID   int64           `json:"itemId"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Quantity int             `json:"quantity"`
}

func (l Line) UnitPrice() decimal.Decimal { return l.Price }
func (l Line) Qty() int                   { return l.Quantity }

// LineTotal returns price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return pricing.LineTotal(l.Price, l.Quantity)
}

// Cart is an ordered set of lines keyed by item id. It is not safe for
// concurrent use; callers serialize access.
type Cart struct {
	lines []Line
	index map[int64]int
	total decimal.Decimal
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{
		index: make(map[int64]int),
		total: decimal.Zero,
	}
}

// AddItem increments the item's line or inserts it with quantity 1.
func (c *Cart) AddItem(item models.Item) {
	if i, ok := c.index[item.ID]; ok {
		c.lines[i].Quantity++
	} else {
		c.index[item.ID] = len(c.lines)
		c.lines = append(c.lines, Line{
			ItemID:   item.ID,
			Name:     item.Name,
			Price:    item.Price,
			ImageURL: item.ImageURL,
			Quantity: 1,
		})
	}
	c.recalculateTotal()
}

// RemoveItem decrements the item's line and drops it at zero.
// Removing an item that is not in the cart does nothing.
func (c *Cart) RemoveItem(itemID int64) {
	i, ok := c.index[itemID]
	if !ok {
		return
	}
	c.lines[i].Quantity--
	if c.lines[i].Quantity <= 0 {
		c.drop(i)
	}
	c.recalculateTotal()
}

// SetQuantity sets the line quantity directly; zero removes the line.
func (c *Cart) SetQuantity(itemID int64, qty int) error {
	if qty < 0 {
		return ErrNegativeQuantity
	}
	i, ok := c.index[itemID]
	if !ok {
		return ErrLineNotFound
	}
	if qty == 0 {
		c.drop(i)
	} else {
		c.lines[i].Quantity = qty
	}
	c.recalculateTotal()
	return nil
}

// Increment adds one to an existing line.
func (c *Cart) Increment(itemID int64) error {
	i, ok := c.index[itemID]
	if !ok {
		return ErrLineNotFound
	}
	c.lines[i].Quantity++
	c.recalculateTotal()
	return nil
}

// Decrement subtracts one from an existing line, flooring at zero.
// A line that reaches zero is removed.
func (c *Cart) Decrement(itemID int64) error {
	i, ok := c.index[itemID]
	if !ok {
		return ErrLineNotFound
	}
	c.lines[i].Quantity = max(0, c.lines[i].Quantity-1)
	if c.lines[i].Quantity == 0 {
		c.drop(i)
	}
	c.recalculateTotal()
	return nil
}

// Reset empties the cart.
func (c *Cart) Reset() {
	c.lines = nil
	c.index = make(map[int64]int)
	c.total = decimal.Zero
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Quantity returns the quantity held for itemID, or zero.
func (c *Cart) Quantity(itemID int64) int {
	if i, ok := c.index[itemID]; ok {
		return c.lines[i].Quantity
	}
	return 0
}

// Total returns the sum of price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	return c.total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// OrderLines snapshots the cart for an order.
func (c *Cart) OrderLines() []models.OrderLine {
	out := make([]models.OrderLine, 0, len(c.lines))
	for i, l := range c.lines {
		out = append(out, models.OrderLine{
			LineNo:   i + 1,
			ItemID:   l.ItemID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
			ImageURL: l.ImageURL,
		})
	}
	return out
}

func (c *Cart) drop(i int) {
	delete(c.index, c.lines[i].ItemID)
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ItemID] = j
	}
}

func (c *Cart) recalculateTotal() {
	c.total = pricing.Total(c.lines)
}
