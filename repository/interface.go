package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"restaurant-pos/models"
)

// ItemRepositoryInterface defines the contract for menu item persistence
type ItemRepositoryInterface interface {
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	Get(ctx context.Context, id int64) (*models.Item, error)
	Create(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error)
	Update(ctx context.Context, id int64, req *models.UpdateItemRequest) (*models.Item, error)
	Delete(ctx context.Context, id int64) error
	SetImageURL(ctx context.Context, id int64, url string) (*models.Item, error)
}

// OrderMutation changes a locked order in memory. The returned deltas are
// applied to item stock in the same transaction.
type OrderMutation func(order *models.Order) ([]models.StockDelta, error)

// OrderRepositoryInterface defines the contract for order persistence
type OrderRepositoryInterface interface {
	Exists(ctx context.Context, id int64) (bool, error)
	// Create inserts the order and its lines and decrements stock atomically.
	// It returns models.ErrDuplicateOrderID when the id was taken concurrently.
	Create(ctx context.Context, order *models.NewOrder) (*models.Order, error)
	Get(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, status *models.OrderStatus) ([]models.Order, error)
	ListByParty(ctx context.Context, partyID string) ([]models.Order, error)
	Update(ctx context.Context, id int64, mutate OrderMutation) (*models.Order, error)
}

// LedgerMutation changes a locked party given its reconciled order total.
// A non-nil payment is appended to party_payments in the same transaction.
type LedgerMutation func(party *models.Party, totalOrderAmount decimal.Decimal) (payment *decimal.Decimal, err error)

// LedgerResult is what a ledger transaction committed.
type LedgerResult struct {
	Party            *models.Party
	TotalOrderAmount decimal.Decimal
	Payment          *models.PartyPayment
}

// PartyRepositoryInterface defines the contract for party persistence
type PartyRepositoryInterface interface {
	Create(ctx context.Context, req *models.CreatePartyRequest) (*models.Party, error)
	Get(ctx context.Context, id string) (*models.Party, error)
	List(ctx context.Context) ([]models.Party, error)
	ListPayments(ctx context.Context, partyID string) ([]models.PartyPayment, error)
	Reconcile(ctx context.Context, partyID string, mutate LedgerMutation) (*LedgerResult, error)
}

// UserRepositoryInterface defines the contract for account persistence
type UserRepositoryInterface interface {
	Create(ctx context.Context, email, passwordHash string, role models.Role) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
}
