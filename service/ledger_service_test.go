package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/models"
	"restaurant-pos/repository/repotest"
)

func setupLedger(t *testing.T) (*LedgerService, *repotest.OrderRepository, *repotest.PartyRepository) {
	t.Helper()
	orders := repotest.NewOrderRepository()
	parties := repotest.NewPartyRepository(orders)
	return NewLedgerService(parties, orders), orders, parties
}

func seedPartyOrder(repo *repotest.OrderRepository, id int64, partyID string, total int64, status models.OrderStatus) {
	pid := partyID
	repo.SeedOrder(&models.Order{
		ID:            id,
		Status:        status,
		Total:         decimal.NewFromInt(total),
		PartyID:       &pid,
		PaymentMethod: models.PaymentCredit,
	})
}

func TestLedgerReconciliation(t *testing.T) {
	ctx := context.Background()
	svc, orders, parties := setupLedger(t)

	party := parties.SeedParty("Sharma Caterers", 200)
	seedPartyOrder(orders, 100001, party.ID, 300, models.OrderStatusCompleted)
	seedPartyOrder(orders, 100002, party.ID, 200, models.OrderStatusReceived)
	seedPartyOrder(orders, 100003, party.ID, 1000, models.OrderStatusCanceled)
	seedPartyOrder(orders, 100004, party.ID, 400, models.OrderStatusRefund)

	view, err := svc.LoadPartyView(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, "500", view.TotalOrderAmount.String())
	assert.Equal(t, "300", view.Party.DueAmount.String())
	assert.Len(t, view.Orders, 4)

	view, err = svc.RecordPayment(ctx, party.ID, "300")
	require.NoError(t, err)
	assert.Equal(t, "500", view.Party.CreditAmount.String())
	assert.Equal(t, "0", view.Party.DueAmount.String())

	view, err = svc.RecordPayment(ctx, party.ID, 50.0)
	require.NoError(t, err)
	assert.Equal(t, "550", view.Party.CreditAmount.String())
	assert.True(t, view.Party.DueAmount.IsZero(), "due never goes negative")

	t.Run("statement lists payments and orders newest first", func(t *testing.T) {
		require.Len(t, view.Entries, 6)
		assert.Equal(t, models.LedgerEntryPayment, view.Entries[0].Kind)
		assert.Equal(t, "50", view.Entries[0].Amount.String())
		assert.Equal(t, PaymentReceived, view.Entries[0].Description)
		assert.Equal(t, "300", view.Entries[1].Amount.String())
		for i := 1; i < len(view.Entries); i++ {
			assert.False(t, view.Entries[i].CreatedAt.After(view.Entries[i-1].CreatedAt))
		}
	})

	t.Run("new orders raise the due again", func(t *testing.T) {
		seedPartyOrder(orders, 100005, party.ID, 100, models.OrderStatusPending)
		view, err := svc.LoadPartyView(ctx, party.ID)
		require.NoError(t, err)
		assert.Equal(t, "600", view.TotalOrderAmount.String())
		assert.Equal(t, "50", view.Party.DueAmount.String())
	})
}

func TestLedgerIgnoresCashOrders(t *testing.T) {
	ctx := context.Background()
	svc, orders, parties := setupLedger(t)
	party := parties.SeedParty("Sharma Caterers", 0)
	seedPartyOrder(orders, 100001, party.ID, 300, models.OrderStatusCompleted)

	pid := party.ID
	orders.SeedOrder(&models.Order{
		ID:            100002,
		Status:        models.OrderStatusCompleted,
		Total:         decimal.NewFromInt(100),
		PartyID:       &pid,
		PaymentMethod: models.PaymentCash,
	})

	view, err := svc.LoadPartyView(ctx, party.ID)
	require.NoError(t, err)
	assert.Equal(t, "300", view.TotalOrderAmount.String())
	assert.Equal(t, "300", view.Party.DueAmount.String())
}

func TestRecordPaymentRejectsInvalidAmounts(t *testing.T) {
	ctx := context.Background()
	svc, orders, parties := setupLedger(t)
	party := parties.SeedParty("Hotel Annapurna", 0)
	seedPartyOrder(orders, 100001, party.ID, 500, models.OrderStatusCompleted)

	for _, amount := range []any{"", "abc", "-10", 0, -5.5, "0.00", nil} {
		writes := parties.Writes
		_, err := svc.RecordPayment(ctx, party.ID, amount)
		assert.ErrorIs(t, err, models.ErrInvalidAmount, "amount %v", amount)
		assert.Equal(t, writes, parties.Writes, "amount %v must not touch the ledger", amount)
	}

	stored, err := svc.GetParty(ctx, party.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreditAmount.IsZero())
	assert.Empty(t, parties.Payments)
}

func TestRecordPaymentUnknownParty(t *testing.T) {
	svc, _, _ := setupLedger(t)
	_, err := svc.RecordPayment(context.Background(), "00000000-0000-0000-0000-000000000000", "10")
	assert.ErrorIs(t, err, models.ErrPartyNotFound)
}

func TestCreateParty(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupLedger(t)

	t.Run("all fields are required", func(t *testing.T) {
		_, err := svc.CreateParty(ctx, &models.CreatePartyRequest{Name: "Sharma Caterers", Address: " "})
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "please fill all fields")
	})

	t.Run("starts with a clean balance", func(t *testing.T) {
		p, err := svc.CreateParty(ctx, &models.CreatePartyRequest{
			Name: "Sharma Caterers", Address: "12 MG Road", PhoneNumber: "9876543210", TaxID: "29ABCDE1234F1Z5",
		})
		require.NoError(t, err)
		assert.True(t, p.CreditAmount.IsZero())
		assert.True(t, p.DueAmount.IsZero())

		all, err := svc.ListParties(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
