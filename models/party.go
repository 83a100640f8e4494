package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party is a credit customer whose orders accrue against a due balance.
type Party struct {
	ID           string          `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Address      string          `json:"address" db:"address"`
	PhoneNumber  string          `json:"phoneNumber" db:"phone_number"`
	TaxID        string          `json:"taxId" db:"tax_id"`
	CreditAmount decimal.Decimal `json:"creditAmount" db:"credit_amount"`
	DueAmount    decimal.Decimal `json:"dueAmount" db:"due_amount"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// ComputeDue returns max(0, total - credit).
func ComputeDue(totalOrderAmount, creditAmount decimal.Decimal) decimal.Decimal {
	due := totalOrderAmount.Sub(creditAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// Reconcile recomputes the party's due amount against the given order total.
func (p *Party) Reconcile(totalOrderAmount decimal.Decimal) {
	p.DueAmount = ComputeDue(totalOrderAmount, p.CreditAmount)
}

// ApplyPayment credits amount to the party and recomputes the due amount.
func (p *Party) ApplyPayment(amount, totalOrderAmount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	p.CreditAmount = p.CreditAmount.Add(amount)
	p.Reconcile(totalOrderAmount)
	return nil
}

// PartyPayment is an audit row for a recorded payment.
type PartyPayment struct {
	ID        int64           `json:"id" db:"id"`
	PartyID   string          `json:"partyId" db:"party_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// CreatePartyRequest represents the request body for creating a party.
// Every field is required.
// Example: {"name": "Sharma Caterers", "address": "12 MG Road", "phoneNumber": "9876543210", "taxId": "29ABCDE1234F1Z5"}
type CreatePartyRequest struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	TaxID       string `json:"taxId" validate:"required"`
}

// RecordPaymentRequest carries a payment amount as a JSON string or number.
// Example: {"amount": "300.00"}
type RecordPaymentRequest struct {
	Amount any `json:"amount"`
}

// LedgerEntryKind distinguishes order lines from payments in a party view.
type LedgerEntryKind string

const (
	LedgerEntryOrder   LedgerEntryKind = "order"
	LedgerEntryPayment LedgerEntryKind = "payment"
)

// LedgerEntry is one row of a party's statement.
type LedgerEntry struct {
	Kind        LedgerEntryKind `json:"kind"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Status      OrderStatus     `json:"status,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PartyView is the reconciled ledger of a party.
// Example response:
// {
//   "party": {"id": "…", "name": "Sharma Caterers", "creditAmount": "200", "dueAmount": "300", ...},
//   "totalOrderAmount": "500",
//   "orders": [...],
//   "entries": [{"kind": "payment", "description": "Payment received", "amount": "200", ...}]
// }
type PartyView struct {
	Party            *Party          `json:"party"`
	TotalOrderAmount decimal.Decimal `json:"totalOrderAmount"`
	Orders           []Order         `json:"orders"`
	Entries          []LedgerEntry   `json:"entries"`
}
