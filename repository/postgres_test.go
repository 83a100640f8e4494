package repository

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"restaurant-pos/config"
	"restaurant-pos/db"
	"restaurant-pos/models"
)

// setupPostgres connects to TEST_DATABASE_URL, migrates and empties every table.
// Tests that need it are skipped when the variable is unset.
func setupPostgres(t *testing.T) context.Context {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	require.NoError(t, db.InitDB(ctx, config.Database{URL: url, MaxOpenConns: 8}))
	t.Cleanup(func() { _ = db.CloseDB() })
	require.NoError(t, db.Migrate("up"))

	_, err := db.DB.ExecContext(ctx,
		`TRUNCATE order_lines, orders, party_payments, parties, items, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return ctx
}

func seedItem(t *testing.T, ctx context.Context, name string, price int64, qty int) *models.Item {
	t.Helper()
	item, err := NewItemRepository().Create(ctx, &models.CreateItemRequest{
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Quantity: qty,
	})
	require.NoError(t, err)
	return item
}

func newOrder(id int64, method models.PaymentMethod, partyID *string, lines ...models.OrderLine) *models.NewOrder {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return &models.NewOrder{ID: id, Lines: lines, Total: total, PartyID: partyID, PaymentMethod: method}
}

func TestOrderRepositoryPostgres(t *testing.T) {
	ctx := setupPostgres(t)
	repo := NewOrderRepository()
	items := NewItemRepository()

	tikka := seedItem(t, ctx, "Paneer Tikka", 100, 10)
	lassi := seedItem(t, ctx, "Sweet Lassi", 50, 5)

	t.Run("create writes lines and decrements stock", func(t *testing.T) {
		order, err := repo.Create(ctx, newOrder(482913, models.PaymentCash, nil,
			models.OrderLine{ItemID: tikka.ID, Name: tikka.Name, Price: tikka.Price, Quantity: 2},
			models.OrderLine{ItemID: lassi.ID, Name: lassi.Name, Price: lassi.Price, Quantity: 1},
		))
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusReceived, order.Status)
		assert.Equal(t, "250", order.Total.String())

		stored, err := repo.Get(ctx, 482913)
		require.NoError(t, err)
		require.Len(t, stored.Lines, 2)
		assert.Equal(t, 1, stored.Lines[0].LineNo)
		assert.Equal(t, tikka.ID, stored.Lines[0].ItemID)

		got, err := items.Get(ctx, tikka.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Quantity)
		got, err = items.Get(ctx, lassi.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Quantity)
	})

	t.Run("taken id is reported as a duplicate", func(t *testing.T) {
		_, err := repo.Create(ctx, newOrder(482913, models.PaymentCash, nil,
			models.OrderLine{ItemID: tikka.ID, Name: tikka.Name, Price: tikka.Price, Quantity: 1},
		))
		assert.ErrorIs(t, err, models.ErrDuplicateOrderID)

		got, err := items.Get(ctx, tikka.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Quantity)
	})

	t.Run("missing item rolls back the whole order", func(t *testing.T) {
		_, err := repo.Create(ctx, newOrder(500001, models.PaymentCash, nil,
			models.OrderLine{ItemID: tikka.ID, Name: tikka.Name, Price: tikka.Price, Quantity: 1},
			models.OrderLine{ItemID: 9999, Name: "Ghost", Price: decimal.NewFromInt(1), Quantity: 1},
		))
		assert.ErrorIs(t, err, models.ErrItemNotFound)

		exists, err := repo.Exists(ctx, 500001)
		require.NoError(t, err)
		assert.False(t, exists)
		got, err := items.Get(ctx, tikka.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, got.Quantity)
	})

	t.Run("update persists status, line flags and restock", func(t *testing.T) {
		updated, err := repo.Update(ctx, 482913, func(o *models.Order) ([]models.StockDelta, error) {
			if err := o.TransitionTo(models.OrderStatusCanceled); err != nil {
				return nil, err
			}
			return o.RestockDeltas(), nil
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCanceled, updated.Status)

		got, err := items.Get(ctx, tikka.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, got.Quantity)

		_, err = repo.Update(ctx, 482913, func(o *models.Order) ([]models.StockDelta, error) {
			return nil, o.TransitionTo(models.OrderStatusPending)
		})
		assert.ErrorIs(t, err, models.ErrIllegalTransition)
	})

	t.Run("list attaches lines to every order", func(t *testing.T) {
		for _, id := range []int64{600001, 600002} {
			_, err := repo.Create(ctx, newOrder(id, models.PaymentCash, nil,
				models.OrderLine{ItemID: tikka.ID, Name: tikka.Name, Price: tikka.Price, Quantity: 1},
				models.OrderLine{ItemID: lassi.ID, Name: lassi.Name, Price: lassi.Price, Quantity: 1},
			))
			require.NoError(t, err)
		}

		received := models.OrderStatusReceived
		orders, err := repo.List(ctx, &received)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		for _, o := range orders {
			assert.Len(t, o.Lines, 2, "order %d", o.ID)
		}

		all, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestPartyRepositoryPostgres(t *testing.T) {
	ctx := setupPostgres(t)
	parties := NewPartyRepository()
	orders := NewOrderRepository()
	item := seedItem(t, ctx, "Veg Thali", 100, 100)

	party, err := parties.Create(ctx, &models.CreatePartyRequest{
		Name: "Sharma Caterers", Address: "12 MG Road", PhoneNumber: "9876543210", TaxID: "29ABCDE1234F1Z5",
	})
	require.NoError(t, err)

	line := func(qty int) models.OrderLine {
		return models.OrderLine{ItemID: item.ID, Name: item.Name, Price: item.Price, Quantity: qty}
	}
	_, err = orders.Create(ctx, newOrder(700001, models.PaymentCredit, &party.ID, line(3)))
	require.NoError(t, err)
	_, err = orders.Create(ctx, newOrder(700002, models.PaymentCredit, &party.ID, line(2)))
	require.NoError(t, err)
	_, err = orders.Update(ctx, 700002, func(o *models.Order) ([]models.StockDelta, error) {
		return nil, o.TransitionTo(models.OrderStatusCanceled)
	})
	require.NoError(t, err)
	// Cash rows never count, even when a party is attached.
	_, err = orders.Create(ctx, newOrder(700003, models.PaymentCash, &party.ID, line(4)))
	require.NoError(t, err)

	reconcile := func(p *models.Party, total decimal.Decimal) (*decimal.Decimal, error) {
		p.Reconcile(total)
		return nil, nil
	}

	t.Run("reconcile sums billable credit orders", func(t *testing.T) {
		result, err := parties.Reconcile(ctx, party.ID, reconcile)
		require.NoError(t, err)
		assert.Equal(t, "300", result.TotalOrderAmount.String())
		assert.Equal(t, "300", result.Party.DueAmount.String())
		assert.Nil(t, result.Payment)

		stored, err := parties.Get(ctx, party.ID)
		require.NoError(t, err)
		assert.Equal(t, "300", stored.DueAmount.String())
	})

	t.Run("concurrent payments serialize on the party row", func(t *testing.T) {
		var g errgroup.Group
		for i := 0; i < 10; i++ {
			g.Go(func() error {
				amount := decimal.NewFromInt(20)
				_, err := parties.Reconcile(ctx, party.ID, func(p *models.Party, total decimal.Decimal) (*decimal.Decimal, error) {
					if err := p.ApplyPayment(amount, total); err != nil {
						return nil, err
					}
					return &amount, nil
				})
				return err
			})
		}
		require.NoError(t, g.Wait())

		stored, err := parties.Get(ctx, party.ID)
		require.NoError(t, err)
		assert.Equal(t, "200", stored.CreditAmount.String())
		assert.Equal(t, "100", stored.DueAmount.String())

		payments, err := parties.ListPayments(ctx, party.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 10)
	})

	t.Run("failed mutation writes nothing", func(t *testing.T) {
		_, err := parties.Reconcile(ctx, party.ID, func(p *models.Party, total decimal.Decimal) (*decimal.Decimal, error) {
			return nil, p.ApplyPayment(decimal.Zero, total)
		})
		assert.ErrorIs(t, err, models.ErrInvalidAmount)

		payments, err := parties.ListPayments(ctx, party.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 10)
	})

	t.Run("unknown party", func(t *testing.T) {
		_, err := parties.Reconcile(ctx, "00000000-0000-0000-0000-000000000000", reconcile)
		assert.ErrorIs(t, err, models.ErrPartyNotFound)
	})
}
