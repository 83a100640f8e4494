package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/db"
	"restaurant-pos/models"
)

const (
	orderColumns = `id, status, total, party_id, payment_method, created_at, updated_at`
	lineColumns  = `order_id, line_no, item_id, name, price, quantity, image_url, completed`
)

// OrderRepository handles database operations for orders and their lines
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Ensure OrderRepository implements OrderRepositoryInterface
var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// Exists reports whether an order id is already taken
func (r *OrderRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := db.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id); err != nil {
		return false, errors.Wrap(err, "failed to check order id")
	}
	return exists, nil
}

// Create writes the order, its lines and the stock decrement in one transaction
func (r *OrderRepository) Create(ctx context.Context, in *models.NewOrder) (*models.Order, error) {
	log.Printf("📦 CreateOrder: id=%d, lines=%d, total=%s", in.ID, len(in.Lines), in.Total)

	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		log.Printf("❌ CreateOrder: Error starting transaction: %v", err)
		return nil, errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order, `
		INSERT INTO orders (id, status, total, party_id, payment_method)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns,
		in.ID, models.OrderStatusReceived, in.Total, in.PartyID, in.PaymentMethod,
	)
	if err != nil {
		if isUniqueViolation(err) {
			log.Printf("⚠️  CreateOrder: id=%d taken concurrently", in.ID)
			return nil, models.ErrDuplicateOrderID
		}
		log.Printf("❌ CreateOrder: Error inserting order: %v", err)
		return nil, errors.Wrap(err, "failed to insert order")
	}

	for i, line := range in.Lines {
		line.OrderID = order.ID
		line.LineNo = i + 1
		line.Completed = false

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO order_lines (`+lineColumns+`)
			VALUES (:order_id, :line_no, :item_id, :name, :price, :quantity, :image_url, :completed)`, line)
		if err != nil {
			log.Printf("❌ CreateOrder: Error inserting line item_id=%d: %v", line.ItemID, err)
			return nil, errors.Wrap(err, "failed to insert order line")
		}

		remaining, err := applyStockDelta(ctx, tx, models.StockDelta{ItemID: line.ItemID, Delta: -line.Quantity})
		if err != nil {
			return nil, err
		}
		if remaining < 0 {
			log.WithFields(log.Fields{"item_id": line.ItemID, "quantity": remaining}).
				Warn("⚠️  CreateOrder: item stock went negative")
		}

		order.Lines = append(order.Lines, line)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ CreateOrder: Error committing transaction: %v", err)
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	log.Printf("✅ CreateOrder: Successfully created order id=%d", order.ID)
	return &order, nil
}

// Get returns an order with its lines
func (r *OrderRepository) Get(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := db.DB.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to get order")
	}

	lines := []models.OrderLine{}
	if err := db.DB.SelectContext(ctx, &lines,
		`SELECT `+lineColumns+` FROM order_lines WHERE order_id = $1 ORDER BY line_no`, id); err != nil {
		return nil, errors.Wrap(err, "failed to get order lines")
	}
	order.Lines = lines
	return &order, nil
}

// List returns orders newest first, optionally with one status only
func (r *OrderRepository) List(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	return r.selectWithLines(ctx, query, args...)
}

// ListByParty returns every order charged to a party, newest first
func (r *OrderRepository) ListByParty(ctx context.Context, partyID string) ([]models.Order, error) {
	return r.selectWithLines(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE party_id = $1 ORDER BY created_at DESC, id DESC`, partyID)
}

// Update locks the order, lets mutate change it and persists status, line
// flags and any stock deltas together
func (r *OrderRepository) Update(ctx context.Context, id int64, mutate OrderMutation) (*models.Order, error) {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		log.Printf("❌ UpdateOrder: Error starting transaction: %v", err)
		return nil, errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	var order models.Order
	if err := tx.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to lock order")
	}
	lines := []models.OrderLine{}
	if err := tx.SelectContext(ctx, &lines,
		`SELECT `+lineColumns+` FROM order_lines WHERE order_id = $1 ORDER BY line_no`, id); err != nil {
		return nil, errors.Wrap(err, "failed to get order lines")
	}
	order.Lines = lines
	previous := order.Status

	deltas, err := mutate(&order)
	if err != nil {
		return nil, err
	}

	if err := tx.GetContext(ctx, &order.UpdatedAt,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`,
		order.ID, order.Status); err != nil {
		return nil, errors.Wrap(err, "failed to update order status")
	}

	for _, line := range order.Lines {
		if _, err := tx.ExecContext(ctx,
			`UPDATE order_lines SET completed = $3 WHERE order_id = $1 AND line_no = $2`,
			order.ID, line.LineNo, line.Completed); err != nil {
			return nil, errors.Wrap(err, "failed to update order line")
		}
	}

	for _, d := range deltas {
		if _, err := applyStockDelta(ctx, tx, d); err != nil {
			// A deleted menu item cannot be restocked; the order still moves.
			if errors.Is(err, models.ErrItemNotFound) {
				log.Printf("⚠️  UpdateOrder: skipping stock delta for missing item_id=%d", d.ItemID)
				continue
			}
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ UpdateOrder: Error committing transaction: %v", err)
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"from":     previous,
		"to":       order.Status,
		"restock":  len(deltas) > 0,
	}).Info("✅ UpdateOrder: order updated")
	return &order, nil
}

func (r *OrderRepository) selectWithLines(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	orders := []models.Order{}
	if err := db.DB.SelectContext(ctx, &orders, query, args...); err != nil {
		log.Printf("❌ ListOrders: Error fetching orders: %v", err)
		return nil, errors.Wrap(err, "failed to list orders")
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	byID := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = i
		orders[i].Lines = []models.OrderLine{}
	}

	inQuery, inArgs, err := sqlx.In(`SELECT `+lineColumns+` FROM order_lines WHERE order_id IN (?) ORDER BY order_id, line_no`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build order lines query")
	}
	var lines []models.OrderLine
	if err := db.DB.SelectContext(ctx, &lines, db.DB.Rebind(inQuery), inArgs...); err != nil {
		return nil, errors.Wrap(err, "failed to list order lines")
	}
	for _, l := range lines {
		i := byID[l.OrderID]
		orders[i].Lines = append(orders[i].Lines, l)
	}
	return orders, nil
}

// applyStockDelta adjusts an item's on-hand quantity and returns what is left
func applyStockDelta(ctx context.Context, tx *sqlx.Tx, d models.StockDelta) (int, error) {
	var remaining int
	err := tx.GetContext(ctx, &remaining,
		`UPDATE items SET quantity = quantity + $2, updated_at = NOW() WHERE id = $1 RETURNING quantity`,
		d.ItemID, d.Delta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("❌ StockDelta: Item not found: id=%d", d.ItemID)
			return 0, errors.Wrapf(models.ErrItemNotFound, "item %d", d.ItemID)
		}
		return 0, errors.Wrap(err, "failed to update item stock")
	}
	return remaining, nil
}
