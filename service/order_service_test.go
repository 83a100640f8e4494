package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/cart"
	"restaurant-pos/models"
	"restaurant-pos/repository/repotest"
)

func setupOrders(t *testing.T, opts OrderOptions) (*OrderService, *repotest.OrderRepository, *repotest.PartyRepository) {
	t.Helper()
	orders := repotest.NewOrderRepository()
	orders.Stock[1] = 10
	orders.Stock[2] = 5
	parties := repotest.NewPartyRepository(orders)
	return NewOrderService(orders, parties, opts), orders, parties
}

func sampleLines() []models.OrderLine {
	return []models.OrderLine{
		{ItemID: 1, Name: "Paneer Tikka", Price: decimal.NewFromInt(100), Quantity: 2},
		{ItemID: 2, Name: "Lassi", Price: decimal.NewFromInt(50), Quantity: 1},
	}
}

func sampleTotal() decimal.Decimal {
	return decimal.NewFromInt(250)
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshots lines and decrements stock", func(t *testing.T) {
		svc, repo, _ := setupOrders(t, OrderOptions{NextID: repotest.SequenceIDs(482913)})

		order, err := svc.CreateOrder(ctx, sampleLines(), nil, models.PaymentCash)
		require.NoError(t, err)

		assert.Equal(t, int64(482913), order.ID)
		assert.Equal(t, models.OrderStatusReceived, order.Status)
		assert.Equal(t, "250", order.Total.String())
		assert.Len(t, order.Lines, 2)
		for _, l := range order.Lines {
			assert.False(t, l.Completed)
		}
		assert.Equal(t, 8, repo.StockOf(1))
		assert.Equal(t, 4, repo.StockOf(2))
	})

	t.Run("retries until an unused id is drawn", func(t *testing.T) {
		svc, repo, _ := setupOrders(t, OrderOptions{NextID: repotest.SequenceIDs(111111, 222222, 333333)})
		repo.SeedOrder(&models.Order{ID: 111111, Status: models.OrderStatusReceived})
		repo.SeedOrder(&models.Order{ID: 222222, Status: models.OrderStatusCompleted})

		order, err := svc.CreateOrder(ctx, sampleLines(), nil, models.PaymentCash)
		require.NoError(t, err)
		assert.Equal(t, int64(333333), order.ID)
	})

	t.Run("retries when the insert loses a race", func(t *testing.T) {
		svc, repo, _ := setupOrders(t, OrderOptions{NextID: repotest.SequenceIDs(444444, 555555)})
		repo.RaceIDs[444444] = true

		order, err := svc.CreateOrder(ctx, sampleLines(), nil, models.PaymentCash)
		require.NoError(t, err)
		assert.Equal(t, int64(555555), order.ID)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		svc, repo, _ := setupOrders(t, OrderOptions{MaxIDAttempts: 3, NextID: repotest.SequenceIDs(123456)})
		repo.SeedOrder(&models.Order{ID: 123456, Status: models.OrderStatusReceived})

		_, err := svc.CreateOrder(ctx, sampleLines(), nil, models.PaymentCash)
		assert.ErrorIs(t, err, ErrOrderIDExhausted)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		svc, _, _ := setupOrders(t, OrderOptions{})
		_, err := svc.CreateOrder(ctx, nil, nil, models.PaymentCash)
		assert.ErrorIs(t, err, cart.ErrEmptyCart)
	})

	t.Run("credit needs an existing party", func(t *testing.T) {
		svc, _, parties := setupOrders(t, OrderOptions{NextID: repotest.SequenceIDs(600000)})

		_, err := svc.CreateOrder(ctx, sampleLines(), nil, models.PaymentCredit)
		assert.ErrorIs(t, err, ErrPartyRequired)

		missing := "00000000-0000-0000-0000-000000000000"
		_, err = svc.CreateOrder(ctx, sampleLines(), &missing, models.PaymentCredit)
		assert.ErrorIs(t, err, models.ErrPartyNotFound)

		p := parties.SeedParty("Sharma Caterers", 0)
		order, err := svc.CreateOrder(ctx, sampleLines(), &p.ID, models.PaymentCredit)
		require.NoError(t, err)
		require.NotNil(t, order.PartyID)
		assert.Equal(t, p.ID, *order.PartyID)
	})

	t.Run("cash cannot be charged to a party", func(t *testing.T) {
		svc, repo, parties := setupOrders(t, OrderOptions{NextID: repotest.SequenceIDs(650000)})
		p := parties.SeedParty("Hotel Annapurna", 0)

		_, err := svc.CreateOrder(ctx, sampleLines(), &p.ID, models.PaymentCash)
		assert.ErrorIs(t, err, models.ErrValidation)
		exists, _ := repo.Exists(ctx, 650000)
		assert.False(t, exists)
		assert.Equal(t, 10, repo.StockOf(1))

		ledger := NewLedgerService(parties, repo)
		view, err := ledger.LoadPartyView(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, view.Party.DueAmount.IsZero())
		assert.True(t, view.TotalOrderAmount.IsZero())
	})

	t.Run("unknown item aborts without touching stock", func(t *testing.T) {
		svc, repo, _ := setupOrders(t, OrderOptions{NextID: repotest.SequenceIDs(700000)})
		lines := append(sampleLines(), models.OrderLine{ItemID: 99, Name: "Ghost", Price: decimal.NewFromInt(1), Quantity: 1})

		_, err := svc.CreateOrder(ctx, lines, nil, models.PaymentCash)
		assert.ErrorIs(t, err, models.ErrItemNotFound)
		assert.Equal(t, 10, repo.StockOf(1))
		exists, _ := repo.Exists(ctx, 700000)
		assert.False(t, exists)
	})
}

func TestRandomOrderIDIsSixDigits(t *testing.T) {
	for i := 0; i < 1000; i++ {
		id := RandomOrderID()
		require.GreaterOrEqual(t, id, int64(100000))
		require.LessOrEqual(t, id, int64(999999))
	}
}

func TestOrderTransitions(t *testing.T) {
	ctx := context.Background()

	type step struct {
		name string
		run  func(svc *OrderService, ctx context.Context, id int64) (*models.Order, error)
	}
	accept := step{"accept", (*OrderService).AcceptOrder}
	cancel := step{"cancel", (*OrderService).CancelOrder}
	complete := step{"complete", (*OrderService).CompleteOrder}
	refund := step{"refund", (*OrderService).RefundOrder}

	cases := []struct {
		from  models.OrderStatus
		step  step
		want  models.OrderStatus
		legal bool
	}{
		{models.OrderStatusReceived, accept, models.OrderStatusPending, true},
		{models.OrderStatusReceived, cancel, models.OrderStatusCanceled, true},
		{models.OrderStatusReceived, complete, "", false},
		{models.OrderStatusReceived, refund, "", false},
		{models.OrderStatusPending, complete, models.OrderStatusCompleted, true},
		{models.OrderStatusPending, cancel, models.OrderStatusCanceled, true},
		{models.OrderStatusPending, accept, "", false},
		{models.OrderStatusPending, refund, "", false},
		{models.OrderStatusCompleted, refund, models.OrderStatusRefund, true},
		{models.OrderStatusCompleted, cancel, "", false},
		{models.OrderStatusCompleted, accept, "", false},
		{models.OrderStatusCanceled, accept, "", false},
		{models.OrderStatusCanceled, refund, "", false},
		{models.OrderStatusRefund, complete, "", false},
		{models.OrderStatusRefund, cancel, "", false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"/"+tc.step.name, func(t *testing.T) {
			svc, repo, _ := setupOrders(t, OrderOptions{})
			repo.SeedOrder(&models.Order{ID: 100001, Status: tc.from, Lines: sampleLines()})

			order, err := tc.step.run(svc, ctx, 100001)
			stored, _ := repo.Get(ctx, 100001)
			if tc.legal {
				require.NoError(t, err)
				assert.Equal(t, tc.want, order.Status)
				assert.Equal(t, tc.want, stored.Status)
			} else {
				assert.ErrorIs(t, err, models.ErrIllegalTransition)
				assert.Equal(t, tc.from, stored.Status)
			}
		})
	}

	t.Run("missing order", func(t *testing.T) {
		svc, _, _ := setupOrders(t, OrderOptions{})
		_, err := svc.AcceptOrder(ctx, 999998)
		assert.ErrorIs(t, err, models.ErrOrderNotFound)
	})
}

func TestCancelRestock(t *testing.T) {
	ctx := context.Background()

	for _, restock := range []bool{false, true} {
		svc, repo, _ := setupOrders(t, OrderOptions{RestockOnCancel: restock, NextID: repotest.SequenceIDs(200000)})
		order, err := svc.CreateOrder(ctx, sampleLines(), nil, models.PaymentCash)
		require.NoError(t, err)

		_, err = svc.CancelOrder(ctx, order.ID)
		require.NoError(t, err)

		if restock {
			assert.Equal(t, 10, repo.StockOf(1))
			assert.Equal(t, 5, repo.StockOf(2))
		} else {
			assert.Equal(t, 8, repo.StockOf(1))
			assert.Equal(t, 4, repo.StockOf(2))
		}
	}
}

func TestCompleteItem(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupOrders(t, OrderOptions{})
	repo.SeedOrder(&models.Order{ID: 300000, Status: models.OrderStatusPending, Lines: sampleLines()})

	order, err := svc.CompleteItem(ctx, 300000, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, order.Lines[0].Completed)
	assert.False(t, order.Lines[1].Completed)

	_, err = svc.CompleteItem(ctx, 300000, 42)
	assert.ErrorIs(t, err, models.ErrOrderLineNotFound)

	order, err = svc.CompleteItem(ctx, 300000, 2)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	_, err = svc.CompleteItem(ctx, 300000, 2)
	assert.ErrorIs(t, err, models.ErrIllegalTransition)

	t.Run("not on received orders", func(t *testing.T) {
		repo.SeedOrder(&models.Order{ID: 300001, Status: models.OrderStatusReceived, Lines: sampleLines()})
		_, err := svc.CompleteItem(ctx, 300001, 1)
		assert.ErrorIs(t, err, models.ErrIllegalTransition)
		stored, _ := repo.Get(ctx, 300001)
		assert.False(t, stored.Lines[0].Completed)
	})
}

func TestCompleteOrderMarksAllLines(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupOrders(t, OrderOptions{})
	repo.SeedOrder(&models.Order{ID: 400000, Status: models.OrderStatusPending, Lines: sampleLines()})

	order, err := svc.CompleteOrder(ctx, 400000)
	require.NoError(t, err)
	assert.True(t, order.AllLinesCompleted())
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setupOrders(t, OrderOptions{})
	repo.SeedOrder(&models.Order{ID: 100001, Status: models.OrderStatusReceived})
	repo.SeedOrder(&models.Order{ID: 100002, Status: models.OrderStatusPending})
	repo.SeedOrder(&models.Order{ID: 100003, Status: models.OrderStatusReceived})

	received := models.OrderStatusReceived
	orders, err := svc.ListOrders(ctx, &received)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, int64(100003), orders[0].ID)

	all, err := svc.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bogus := models.OrderStatus("shipped")
	_, err = svc.ListOrders(ctx, &bogus)
	assert.ErrorIs(t, err, models.ErrValidation)
}
