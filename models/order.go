package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusRefund    OrderStatus = "refund"
)

// transitions holds every legal move; anything absent is rejected.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusReceived:  {OrderStatusPending, OrderStatusCanceled},
	OrderStatusPending:   {OrderStatusCompleted, OrderStatusCanceled},
	OrderStatusCompleted: {OrderStatusRefund},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusPending, OrderStatusCompleted, OrderStatusCanceled, OrderStatusRefund:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Billable reports whether an order in this status counts toward a party's total.
func (s OrderStatus) Billable() bool {
	return s != OrderStatusCanceled && s != OrderStatusRefund
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentMethod is how an order is settled at checkout.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCredit PaymentMethod = "credit"
)

// Order represents an order with its line snapshot.
// Total is fixed at creation and never recomputed from catalog prices.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	Status        OrderStatus     `json:"status" db:"status"`
	Total         decimal.Decimal `json:"total" db:"total"`
	PartyID       *string         `json:"partyId,omitempty" db:"party_id"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
	Lines         []OrderLine     `json:"lines"`
}

// OrderLine is a snapshot of one cart line at checkout.
type OrderLine struct {
	OrderID   int64           `json:"-" db:"order_id"`
	LineNo    int             `json:"lineNo" db:"line_no"`
	ItemID    int64           `json:"itemId" db:"item_id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty" db:"image_url"`
	Completed bool            `json:"completed" db:"completed"`
}

// LineTotal returns price times quantity.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// StockDelta is a change to an item's on-hand quantity.
type StockDelta struct {
	ItemID int64
	Delta  int
}

// TransitionTo moves the order to the given status or fails with ErrIllegalTransition.
func (o *Order) TransitionTo(to OrderStatus) error {
	if !CanTransition(o.Status, to) {
		return IllegalTransition(o.Status, to)
	}
	o.Status = to
	if to == OrderStatusCompleted {
		for i := range o.Lines {
			o.Lines[i].Completed = true
		}
	}
	return nil
}

// CompleteLine marks the line for itemID completed on a pending order.
// It reports whether this completed the whole order.
func (o *Order) CompleteLine(itemID int64) (bool, error) {
	if o.Status != OrderStatusPending {
		return false, IllegalTransition(o.Status, OrderStatusCompleted)
	}

	found := false
	for i := range o.Lines {
		if o.Lines[i].ItemID == itemID {
			o.Lines[i].Completed = true
			found = true
		}
	}
	if !found {
		return false, ErrOrderLineNotFound
	}

	if !o.AllLinesCompleted() {
		return false, nil
	}
	o.Status = OrderStatusCompleted
	return true, nil
}

// AllLinesCompleted reports whether every line has been prepared.
func (o *Order) AllLinesCompleted() bool {
	for _, l := range o.Lines {
		if !l.Completed {
			return false
		}
	}
	return true
}

// RestockDeltas returns the stock changes that undo this order's decrement.
func (o *Order) RestockDeltas() []StockDelta {
	deltas := make([]StockDelta, 0, len(o.Lines))
	for _, l := range o.Lines {
		deltas = append(deltas, StockDelta{ItemID: l.ItemID, Delta: l.Quantity})
	}
	return deltas
}

// NewOrder is what a repository needs to persist a freshly checked-out order.
type NewOrder struct {
	ID            int64
	Lines         []OrderLine
	Total         decimal.Decimal
	PartyID       *string
	PaymentMethod PaymentMethod
}

// CheckoutRequest represents the request body for checking out a session cart
// Example: {"paymentMethod": "credit", "partyId": "0d4f0c7e-6b1a-4f7e-9a55-0c3c5d2f2b11"}
type CheckoutRequest struct {
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash credit"`
	PartyID       string        `json:"partyId,omitempty" validate:"omitempty,uuid"`
}

// CheckoutResponse is returned after a checkout.
// Example response:
// {
//   "order": {"id": 482913, "status": "received", "total": "250", ...},
//   "printed": true
// }
type CheckoutResponse struct {
	Order        *Order `json:"order"`
	Printed      bool   `json:"printed"`
	PrintWarning string `json:"printWarning,omitempty"`
}
