package service

import (
	"context"
	"math/rand/v2"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/cart"
	"restaurant-pos/models"
	"restaurant-pos/pricing"
	"restaurant-pos/repository"
)

var (
	ErrOrderIDExhausted = errors.New("could not find a free order id")
	ErrPartyRequired    = errors.New("credit orders need a party")
)

const (
	minOrderID = 100000
	maxOrderID = 999999
)

// RandomOrderID returns a uniformly random 6-digit order id.
func RandomOrderID() int64 {
	return minOrderID + rand.Int64N(maxOrderID-minOrderID+1)
}

// OrderOptions tunes order creation and cancellation.
type OrderOptions struct {
	MaxIDAttempts   int
	RestockOnCancel bool
	NextID          func() int64
}

// OrderService drives orders through their lifecycle
type OrderService struct {
	orders  repository.OrderRepositoryInterface
	parties repository.PartyRepositoryInterface
	opts    OrderOptions
}

// NewOrderService creates a new OrderService
func NewOrderService(orders repository.OrderRepositoryInterface, parties repository.PartyRepositoryInterface, opts OrderOptions) *OrderService {
	if opts.MaxIDAttempts <= 0 {
		opts.MaxIDAttempts = 32
	}
	if opts.NextID == nil {
		opts.NextID = RandomOrderID
	}
	return &OrderService{orders: orders, parties: parties, opts: opts}
}

// CreateOrder snapshots lines into a received order with a fresh 6-digit id.
// Stock is decremented in the same transaction as the insert.
func (s *OrderService) CreateOrder(ctx context.Context, lines []models.OrderLine, partyID *string, method models.PaymentMethod) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, cart.ErrEmptyCart
	}
	if method == "" {
		method = models.PaymentCash
	}
	if method != models.PaymentCash && method != models.PaymentCredit {
		return nil, errors.Wrapf(models.ErrValidation, "unknown payment method %q", method)
	}
	if method == models.PaymentCredit && (partyID == nil || *partyID == "") {
		return nil, ErrPartyRequired
	}
	// Cash is settled at the till and must never reach a party ledger.
	if method == models.PaymentCash && partyID != nil && *partyID != "" {
		return nil, errors.Wrap(models.ErrValidation, "cash orders cannot name a party")
	}
	if partyID != nil && *partyID != "" {
		if _, err := s.parties.Get(ctx, *partyID); err != nil {
			return nil, err
		}
	} else {
		partyID = nil
	}

	in := &models.NewOrder{
		Lines:         lines,
		Total:         pricing.OrderTotal(lines),
		PartyID:       partyID,
		PaymentMethod: method,
	}

	for attempt := 1; attempt <= s.opts.MaxIDAttempts; attempt++ {
		id := s.opts.NextID()
		exists, err := s.orders.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			log.Printf("🔁 CreateOrder: id=%d taken, retrying (attempt %d)", id, attempt)
			continue
		}

		in.ID = id
		order, err := s.orders.Create(ctx, in)
		if errors.Is(err, models.ErrDuplicateOrderID) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to create order")
		}

		log.WithFields(log.Fields{
			"order_id": order.ID,
			"total":    order.Total.String(),
			"method":   order.PaymentMethod,
			"attempts": attempt,
		}).Info("🧾 CreateOrder: order received")
		return order, nil
	}

	log.Printf("❌ CreateOrder: no free id after %d attempts", s.opts.MaxIDAttempts)
	return nil, ErrOrderIDExhausted
}

// GetOrder returns one order
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.orders.Get(ctx, id)
}

// ListOrders returns orders newest first, optionally filtered by status
func (s *OrderService) ListOrders(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	if status != nil && !status.Valid() {
		return nil, errors.Wrapf(models.ErrValidation, "unknown status %q", *status)
	}
	return s.orders.List(ctx, status)
}

// AcceptOrder moves a received order to pending
func (s *OrderService) AcceptOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderStatusPending, false)
}

// CancelOrder cancels a received or pending order, restocking if configured
func (s *OrderService) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderStatusCanceled, s.opts.RestockOnCancel)
}

// CompleteOrder completes a pending order and marks every line done
func (s *OrderService) CompleteOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderStatusCompleted, false)
}

// RefundOrder refunds a completed order. The party ledger picks this up on
// its next reconciliation.
func (s *OrderService) RefundOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderStatusRefund, false)
}

// CompleteItem marks one line of a pending order prepared. When it was the
// last open line the order becomes completed in the same write.
func (s *OrderService) CompleteItem(ctx context.Context, id, itemID int64) (*models.Order, error) {
	var autoCompleted bool
	order, err := s.orders.Update(ctx, id, func(o *models.Order) ([]models.StockDelta, error) {
		done, err := o.CompleteLine(itemID)
		autoCompleted = done
		return nil, err
	})
	if err != nil {
		log.Printf("❌ CompleteItem: order=%d item=%d: %v", id, itemID, err)
		return nil, err
	}
	if autoCompleted {
		log.Printf("✅ CompleteItem: order=%d fully prepared, now completed", id)
	}
	return order, nil
}

func (s *OrderService) transition(ctx context.Context, id int64, to models.OrderStatus, restock bool) (*models.Order, error) {
	order, err := s.orders.Update(ctx, id, func(o *models.Order) ([]models.StockDelta, error) {
		if err := o.TransitionTo(to); err != nil {
			return nil, err
		}
		if restock {
			return o.RestockDeltas(), nil
		}
		return nil, nil
	})
	if err != nil {
		log.Printf("❌ Transition: order=%d -> %s: %v", id, to, err)
		return nil, err
	}
	return order, nil
}
