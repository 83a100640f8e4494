package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/db"
	"restaurant-pos/models"
)

const partyColumns = `id, name, address, phone_number, tax_id, credit_amount, due_amount, created_at, updated_at`

// PartyRepository handles database operations for credit customers and their payments
type PartyRepository struct{}

// NewPartyRepository creates a new PartyRepository
func NewPartyRepository() *PartyRepository {
	return &PartyRepository{}
}

// Ensure PartyRepository implements PartyRepositoryInterface
var _ PartyRepositoryInterface = (*PartyRepository)(nil)

// Create inserts a party with zero credit and zero due
func (r *PartyRepository) Create(ctx context.Context, req *models.CreatePartyRequest) (*models.Party, error) {
	log.Printf("👥 CreateParty: name=%s", req.Name)

	var party models.Party
	err := db.DB.GetContext(ctx, &party, `
		INSERT INTO parties (name, address, phone_number, tax_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+partyColumns,
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Address),
		strings.TrimSpace(req.PhoneNumber),
		strings.TrimSpace(req.TaxID),
	)
	if err != nil {
		log.Printf("❌ CreateParty: Error inserting party: %v", err)
		return nil, errors.Wrap(err, "failed to create party")
	}

	log.Printf("✅ CreateParty: Successfully created party id=%s", party.ID)
	return &party, nil
}

// Get returns a party as stored, without reconciling it
func (r *PartyRepository) Get(ctx context.Context, id string) (*models.Party, error) {
	var party models.Party
	if err := db.DB.GetContext(ctx, &party, `SELECT `+partyColumns+` FROM parties WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPartyNotFound
		}
		return nil, errors.Wrap(err, "failed to get party")
	}
	return &party, nil
}

// List returns every party ordered by name
func (r *PartyRepository) List(ctx context.Context) ([]models.Party, error) {
	parties := []models.Party{}
	if err := db.DB.SelectContext(ctx, &parties, `SELECT `+partyColumns+` FROM parties ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "failed to list parties")
	}
	return parties, nil
}

// ListPayments returns a party's recorded payments, newest first
func (r *PartyRepository) ListPayments(ctx context.Context, partyID string) ([]models.PartyPayment, error) {
	payments := []models.PartyPayment{}
	if err := db.DB.SelectContext(ctx, &payments,
		`SELECT id, party_id, amount, created_at FROM party_payments WHERE party_id = $1 ORDER BY created_at DESC, id DESC`,
		partyID); err != nil {
		return nil, errors.Wrap(err, "failed to list party payments")
	}
	return payments, nil
}

// Reconcile locks the party row, sums its billable credit orders and hands both to
// mutate. Credit, due and any payment row are written in the same transaction.
func (r *PartyRepository) Reconcile(ctx context.Context, partyID string, mutate LedgerMutation) (*LedgerResult, error) {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		log.Printf("❌ Reconcile: Error starting transaction: %v", err)
		return nil, errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	var party models.Party
	if err := tx.GetContext(ctx, &party, `SELECT `+partyColumns+` FROM parties WHERE id = $1 FOR UPDATE`, partyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPartyNotFound
		}
		return nil, errors.Wrap(err, "failed to lock party")
	}

	var total decimal.Decimal
	if err := tx.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE party_id = $1 AND payment_method = $2 AND status NOT IN ($3, $4)`,
		partyID, models.PaymentCredit, models.OrderStatusCanceled, models.OrderStatusRefund); err != nil {
		return nil, errors.Wrap(err, "failed to sum party orders")
	}

	amount, err := mutate(&party, total)
	if err != nil {
		return nil, err
	}

	if err := tx.GetContext(ctx, &party.UpdatedAt, `
		UPDATE parties SET credit_amount = $2, due_amount = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		party.ID, party.CreditAmount, party.DueAmount); err != nil {
		return nil, errors.Wrap(err, "failed to update party ledger")
	}

	result := &LedgerResult{Party: &party, TotalOrderAmount: total}
	if amount != nil {
		var payment models.PartyPayment
		if err := tx.GetContext(ctx, &payment, `
			INSERT INTO party_payments (party_id, amount)
			VALUES ($1, $2)
			RETURNING id, party_id, amount, created_at`,
			party.ID, *amount); err != nil {
			return nil, errors.Wrap(err, "failed to record party payment")
		}
		result.Payment = &payment
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ Reconcile: Error committing transaction: %v", err)
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	log.WithFields(log.Fields{
		"party_id": party.ID,
		"total":    total.String(),
		"credit":   party.CreditAmount.String(),
		"due":      party.DueAmount.String(),
		"payment":  amount != nil,
	}).Info("💰 Reconcile: ledger committed")
	return result, nil
}
