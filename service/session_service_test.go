package service

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos/cart"
	"restaurant-pos/models"
	"restaurant-pos/receipt"
	"restaurant-pos/repository/repotest"
	"restaurant-pos/session"
)

type fakePrinter struct {
	mu         sync.Mutex
	connected  bool
	err        error
	rows       []string
	headerRows int
	calls      int
}

func (p *fakePrinter) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *fakePrinter) PrintReceipt(ctx context.Context, rows []string, headerRows int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	p.rows = rows
	p.headerRows = headerRows
	return nil
}

func menu() []models.Item {
	return []models.Item{
		{ID: 1, Name: "Paneer Tikka", Price: decimal.NewFromInt(100), Quantity: 10, Category: "Veg"},
		{ID: 2, Name: "Sweet Lassi", Price: decimal.NewFromInt(50), Quantity: 5, Category: "Drinks"},
		{ID: 3, Name: "Tomato Soup", Price: decimal.NewFromInt(80), Quantity: 3, Category: "Soup"},
	}
}

type sessionFixture struct {
	svc     *SessionService
	items   *repotest.ItemRepository
	orders  *repotest.OrderRepository
	parties *repotest.PartyRepository
	printer *fakePrinter
}

func setupSessions(t *testing.T) sessionFixture {
	t.Helper()
	items := repotest.NewItemRepository(menu()...)
	orders := repotest.NewOrderRepository()
	for _, it := range menu() {
		orders.Stock[it.ID] = it.Quantity
	}
	parties := repotest.NewPartyRepository(orders)
	printer := &fakePrinter{}
	orderSvc := NewOrderService(orders, parties, OrderOptions{NextID: repotest.SequenceIDs(654321, 765432)})
	return sessionFixture{
		svc:     NewSessionService(session.NewStore(), items, orderSvc, printer),
		items:   items,
		orders:  orders,
		parties: parties,
		printer: printer,
	}
}

func TestSessionCartFlow(t *testing.T) {
	ctx := context.Background()
	f := setupSessions(t)

	sess, err := f.svc.Open(ctx)
	require.NoError(t, err)

	visible, err := f.svc.SetQuery(sess.ID, "LASSI")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, int64(2), visible[0].ID)

	soups, err := f.svc.Catalog(sess.ID, "Soup")
	require.NoError(t, err)
	assert.Empty(t, soups, "category narrows the searched subset")

	_, err = f.svc.AddItem(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, sess.ID, 1)
	require.NoError(t, err)
	snap, err := f.svc.AddItem(ctx, sess.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "250", snap.Total.String())

	snap, err = f.svc.Decrement(sess.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "150", snap.Total.String())

	snap, err = f.svc.RemoveItem(sess.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "100", snap.Total.String())

	_, err = f.svc.SetQuantity(sess.ID, 1, -1)
	assert.ErrorIs(t, err, cart.ErrNegativeQuantity)

	_, err = f.svc.Increment(sess.ID, 3)
	assert.ErrorIs(t, err, cart.ErrLineNotFound)

	_, err = f.svc.AddItem(ctx, sess.ID, 42)
	assert.ErrorIs(t, err, models.ErrItemNotFound)

	snap, err = f.svc.ResetCart(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
	assert.True(t, snap.Total.IsZero())

	require.NoError(t, f.svc.Close(sess.ID))
	_, err = f.svc.Get(sess.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSessionAddItemFallsBackToRepository(t *testing.T) {
	ctx := context.Background()
	f := setupSessions(t)
	sess, err := f.svc.Open(ctx)
	require.NoError(t, err)

	created, err := f.items.Create(ctx, &models.CreateItemRequest{Name: "Veg Thali", Price: decimal.NewFromInt(180), Quantity: 4, Category: "Thali"})
	require.NoError(t, err)

	snap, err := f.svc.AddItem(ctx, sess.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "180", snap.Total.String())

	reloaded, err := f.svc.ReloadCatalog(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded, 4)
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("cash prints and empties the cart", func(t *testing.T) {
		f := setupSessions(t)
		f.printer.connected = true
		sess, err := f.svc.Open(ctx)
		require.NoError(t, err)
		_, _ = f.svc.AddItem(ctx, sess.ID, 1)
		_, _ = f.svc.AddItem(ctx, sess.ID, 2)

		resp, err := f.svc.Checkout(ctx, sess.ID, &models.CheckoutRequest{PaymentMethod: models.PaymentCash})
		require.NoError(t, err)
		assert.True(t, resp.Printed)
		assert.Empty(t, resp.PrintWarning)
		assert.Equal(t, int64(654321), resp.Order.ID)
		assert.Equal(t, "150", resp.Order.Total.String())
		assert.Equal(t, receipt.Format(resp.Order), f.printer.rows)
		assert.Equal(t, receipt.HeaderRows, f.printer.headerRows)

		assert.Equal(t, 9, f.orders.StockOf(1))
		assert.True(t, sess.Snapshot().Total.IsZero())
	})

	t.Run("print failure keeps the order", func(t *testing.T) {
		f := setupSessions(t)
		f.printer.connected = true
		f.printer.err = errors.New("paper out")
		sess, _ := f.svc.Open(ctx)
		_, _ = f.svc.AddItem(ctx, sess.ID, 3)

		resp, err := f.svc.Checkout(ctx, sess.ID, &models.CheckoutRequest{PaymentMethod: models.PaymentCash})
		require.NoError(t, err)
		assert.False(t, resp.Printed)
		assert.Equal(t, "paper out", resp.PrintWarning)

		stored, err := f.orders.Get(ctx, resp.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusReceived, stored.Status)
	})

	t.Run("credit goes to the party and prints", func(t *testing.T) {
		f := setupSessions(t)
		f.printer.connected = true
		party := f.parties.SeedParty("Sharma Caterers", 0)
		sess, _ := f.svc.Open(ctx)
		_, _ = f.svc.AddItem(ctx, sess.ID, 1)

		resp, err := f.svc.Checkout(ctx, sess.ID, &models.CheckoutRequest{PaymentMethod: models.PaymentCredit, PartyID: party.ID})
		require.NoError(t, err)
		assert.True(t, resp.Printed)
		assert.Equal(t, 1, f.printer.calls)
		assert.Equal(t, receipt.Format(resp.Order), f.printer.rows)
		require.NotNil(t, resp.Order.PartyID)
		assert.Equal(t, party.ID, *resp.Order.PartyID)
	})

	t.Run("cash with a party is refused", func(t *testing.T) {
		f := setupSessions(t)
		f.printer.connected = true
		party := f.parties.SeedParty("Sharma Caterers", 0)
		sess, _ := f.svc.Open(ctx)
		_, _ = f.svc.AddItem(ctx, sess.ID, 1)

		_, err := f.svc.Checkout(ctx, sess.ID, &models.CheckoutRequest{PaymentMethod: models.PaymentCash, PartyID: party.ID})
		assert.ErrorIs(t, err, models.ErrValidation)
		assert.Zero(t, f.printer.calls)
		assert.Equal(t, "100", sess.Snapshot().Total.String())
	})

	t.Run("failed checkout keeps the cart", func(t *testing.T) {
		f := setupSessions(t)
		sess, _ := f.svc.Open(ctx)
		_, _ = f.svc.AddItem(ctx, sess.ID, 1)

		_, err := f.svc.Checkout(ctx, sess.ID, &models.CheckoutRequest{PaymentMethod: models.PaymentCredit})
		assert.ErrorIs(t, err, ErrPartyRequired)
		assert.Equal(t, "100", sess.Snapshot().Total.String())
	})

	t.Run("empty cart", func(t *testing.T) {
		f := setupSessions(t)
		sess, _ := f.svc.Open(ctx)
		_, err := f.svc.Checkout(ctx, sess.ID, &models.CheckoutRequest{PaymentMethod: models.PaymentCash})
		assert.ErrorIs(t, err, cart.ErrEmptyCart)
	})
}
