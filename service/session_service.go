package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"restaurant-pos/cart"
	"restaurant-pos/models"
	"restaurant-pos/receipt"
	"restaurant-pos/repository"
	"restaurant-pos/session"
)

// ReceiptPrinter is the part of the printer the checkout needs.
type ReceiptPrinter interface {
	Connected() bool
	PrintReceipt(ctx context.Context, rows []string, headerRows int) error
}

// SessionService runs catalog and cart operations against a session
type SessionService struct {
	store   *session.Store
	items   repository.ItemRepositoryInterface
	orders  *OrderService
	printer ReceiptPrinter
}

// NewSessionService creates a new SessionService
func NewSessionService(store *session.Store, items repository.ItemRepositoryInterface, orders *OrderService, printer ReceiptPrinter) *SessionService {
	return &SessionService{store: store, items: items, orders: orders, printer: printer}
}

// Open starts a session with the catalog loaded
func (s *SessionService) Open(ctx context.Context) (*session.Session, error) {
	items, err := s.items.List(ctx, models.ItemFilter{})
	if err != nil {
		return nil, err
	}
	sess := s.store.Create()
	_ = sess.With(func(st *session.State) error {
		st.Catalog.Load(items)
		return nil
	})
	return sess, nil
}

// Get returns a live session
func (s *SessionService) Get(id string) (*session.Session, error) {
	return s.store.Get(id)
}

// Close discards a session
func (s *SessionService) Close(id string) error {
	return s.store.Delete(id)
}

// ReloadCatalog refetches items into the session's catalog
func (s *SessionService) ReloadCatalog(ctx context.Context, id string) ([]models.Item, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx, models.ItemFilter{})
	if err != nil {
		return nil, err
	}
	var visible []models.Item
	_ = sess.With(func(st *session.State) error {
		st.Catalog.Load(items)
		visible = st.Catalog.Visible()
		return nil
	})
	return visible, nil
}

// SetQuery updates the session's search text and returns the visible items
func (s *SessionService) SetQuery(id, query string) ([]models.Item, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	var visible []models.Item
	_ = sess.With(func(st *session.State) error {
		st.Catalog.SetQuery(query)
		visible = st.Catalog.Visible()
		return nil
	})
	return visible, nil
}

// Catalog returns the visible items, narrowed to category when given
func (s *SessionService) Catalog(id, category string) ([]models.Item, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	var items []models.Item
	_ = sess.With(func(st *session.State) error {
		items = st.Catalog.ByCategory(category)
		return nil
	})
	return items, nil
}

// AddItem adds one of itemID to the cart, looking it up in the cached
// catalog first and the repository second
func (s *SessionService) AddItem(ctx context.Context, id string, itemID int64) (session.Snapshot, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}

	var cached bool
	var item models.Item
	_ = sess.With(func(st *session.State) error {
		item, cached = st.Catalog.Find(itemID)
		return nil
	})
	if !cached {
		fetched, err := s.items.Get(ctx, itemID)
		if err != nil {
			return session.Snapshot{}, err
		}
		item = *fetched
	}

	_ = sess.With(func(st *session.State) error {
		st.Cart.AddItem(item)
		return nil
	})
	return sess.Snapshot(), nil
}

// RemoveItem takes one of itemID out of the cart
func (s *SessionService) RemoveItem(id string, itemID int64) (session.Snapshot, error) {
	return s.mutateCart(id, func(c *cart.Cart) error {
		c.RemoveItem(itemID)
		return nil
	})
}

// SetQuantity sets a cart line's quantity
func (s *SessionService) SetQuantity(id string, itemID int64, qty int) (session.Snapshot, error) {
	return s.mutateCart(id, func(c *cart.Cart) error {
		return c.SetQuantity(itemID, qty)
	})
}

// Increment adds one to a cart line
func (s *SessionService) Increment(id string, itemID int64) (session.Snapshot, error) {
	return s.mutateCart(id, func(c *cart.Cart) error {
		return c.Increment(itemID)
	})
}

// Decrement removes one from a cart line, never going below zero
func (s *SessionService) Decrement(id string, itemID int64) (session.Snapshot, error) {
	return s.mutateCart(id, func(c *cart.Cart) error {
		return c.Decrement(itemID)
	})
}

// ResetCart empties the cart
func (s *SessionService) ResetCart(id string) (session.Snapshot, error) {
	return s.mutateCart(id, func(c *cart.Cart) error {
		c.Reset()
		return nil
	})
}

// Checkout turns the session cart into an order and empties the cart.
// The receipt is printed whenever a printer is attached, for cash and credit
// alike; a failed print is reported but does not undo the order.
func (s *SessionService) Checkout(ctx context.Context, id string, req *models.CheckoutRequest) (*models.CheckoutResponse, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	var partyID *string
	if req.PartyID != "" {
		partyID = &req.PartyID
	}

	var order *models.Order
	err = sess.With(func(st *session.State) error {
		if st.Cart.Empty() {
			return cart.ErrEmptyCart
		}
		created, err := s.orders.CreateOrder(ctx, st.Cart.OrderLines(), partyID, req.PaymentMethod)
		if err != nil {
			return err
		}
		order = created
		st.Cart.Reset()
		return nil
	})
	if err != nil {
		log.Printf("❌ Checkout: session=%s: %v", id, err)
		return nil, err
	}

	resp := &models.CheckoutResponse{Order: order}
	if s.printer != nil && s.printer.Connected() {
		rows := receipt.Format(order)
		if err := s.printer.PrintReceipt(ctx, rows, receipt.HeaderRows); err != nil {
			log.Printf("⚠️  Checkout: order=%d created but receipt not printed: %v", order.ID, err)
			resp.PrintWarning = err.Error()
		} else {
			resp.Printed = true
		}
	}

	log.Printf("✅ Checkout: session=%s order=%d method=%s", id, order.ID, order.PaymentMethod)
	return resp, nil
}

func (s *SessionService) mutateCart(id string, fn func(c *cart.Cart) error) (session.Snapshot, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	if err := sess.With(func(st *session.State) error { return fn(st.Cart) }); err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}
