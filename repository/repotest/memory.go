// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-pos/models"
	"restaurant-pos/repository"
)

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	c.Lines = append([]models.OrderLine(nil), o.Lines...)
	return &c
}

type OrderRepository struct {
	mu      sync.Mutex
	orders  map[int64]*models.Order
	Stock   map[int64]int
	clock   time.Time
	RaceIDs map[int64]bool // ids that pass Exists but collide on insert
}

// NewOrderRepository keeps orders and per-item stock in maps.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:  make(map[int64]*models.Order),
		Stock:   make(map[int64]int),
		clock:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		RaceIDs: make(map[int64]bool),
	}
}

var _ repository.OrderRepositoryInterface = (*OrderRepository)(nil)

func (r *OrderRepository) Exists(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.orders[id]
	return ok, nil
}

func (r *OrderRepository) Create(ctx context.Context, in *models.NewOrder) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.RaceIDs[in.ID] {
		delete(r.RaceIDs, in.ID)
		return nil, models.ErrDuplicateOrderID
	}
	if _, ok := r.orders[in.ID]; ok {
		return nil, models.ErrDuplicateOrderID
	}
	for _, l := range in.Lines {
		if _, ok := r.Stock[l.ItemID]; !ok {
			return nil, models.ErrItemNotFound
		}
	}
	for _, l := range in.Lines {
		r.Stock[l.ItemID] -= l.Quantity
	}

	r.clock = r.clock.Add(time.Minute)
	o := &models.Order{
		ID:            in.ID,
		Status:        models.OrderStatusReceived,
		Total:         in.Total,
		PartyID:       in.PartyID,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     r.clock,
		UpdatedAt:     r.clock,
	}
	for i, l := range in.Lines {
		l.OrderID = in.ID
		l.LineNo = i + 1
		l.Completed = false
		o.Lines = append(o.Lines, l)
	}
	r.orders[o.ID] = o
	return cloneOrder(o), nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) List(ctx context.Context, status *models.OrderStatus) ([]models.Order, error) {
	return r.filter(func(o *models.Order) bool { return status == nil || o.Status == *status }), nil
}

func (r *OrderRepository) ListByParty(ctx context.Context, partyID string) ([]models.Order, error) {
	return r.filter(func(o *models.Order) bool { return o.PartyID != nil && *o.PartyID == partyID }), nil
}

func (r *OrderRepository) filter(keep func(o *models.Order) bool) []models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Order{}
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *OrderRepository) Update(ctx context.Context, id int64, mutate repository.OrderMutation) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	working := cloneOrder(stored)
	deltas, err := mutate(working)
	if err != nil {
		return nil, err
	}
	for _, d := range deltas {
		if _, ok := r.Stock[d.ItemID]; ok {
			r.Stock[d.ItemID] += d.Delta
		}
	}
	r.orders[id] = working
	return cloneOrder(working), nil
}

// SeedOrder stores an order directly, bypassing creation.
func (r *OrderRepository) SeedOrder(o *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Minute)
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.clock
	}
	r.orders[o.ID] = cloneOrder(o)
}

// StockOf returns the current stock of an item.
func (r *OrderRepository) StockOf(itemID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Stock[itemID]
}

type PartyRepository struct {
	mu       sync.Mutex
	parties  map[string]*models.Party
	Payments []models.PartyPayment
	orders   *OrderRepository
	Writes   int
}

// NewPartyRepository sums billable orders from orders when reconciling.
func NewPartyRepository(orders *OrderRepository) *PartyRepository {
	return &PartyRepository{parties: make(map[string]*models.Party), orders: orders}
}

var _ repository.PartyRepositoryInterface = (*PartyRepository)(nil)

func (r *PartyRepository) Create(ctx context.Context, req *models.CreatePartyRequest) (*models.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &models.Party{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Address:      req.Address,
		PhoneNumber:  req.PhoneNumber,
		TaxID:        req.TaxID,
		CreditAmount: decimal.Zero,
		DueAmount:    decimal.Zero,
	}
	r.parties[p.ID] = p
	c := *p
	return &c, nil
}

func (r *PartyRepository) Get(ctx context.Context, id string) (*models.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parties[id]
	if !ok {
		return nil, models.ErrPartyNotFound
	}
	c := *p
	return &c, nil
}

func (r *PartyRepository) List(ctx context.Context) ([]models.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Party{}
	for _, p := range r.parties {
		out = append(out, *p)
	}
	return out, nil
}

func (r *PartyRepository) ListPayments(ctx context.Context, partyID string) ([]models.PartyPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.PartyPayment{}
	for i := len(r.Payments) - 1; i >= 0; i-- {
		if r.Payments[i].PartyID == partyID {
			out = append(out, r.Payments[i])
		}
	}
	return out, nil
}

func (r *PartyRepository) Reconcile(ctx context.Context, partyID string, mutate repository.LedgerMutation) (*repository.LedgerResult, error) {
	orders, _ := r.orders.ListByParty(ctx, partyID)
	total := decimal.Zero
	for _, o := range orders {
		if o.PaymentMethod == models.PaymentCredit && o.Status.Billable() {
			total = total.Add(o.Total)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.parties[partyID]
	if !ok {
		return nil, models.ErrPartyNotFound
	}
	working := *stored
	amount, err := mutate(&working, total)
	if err != nil {
		return nil, err
	}
	r.parties[partyID] = &working
	r.Writes++

	result := &repository.LedgerResult{Party: &working, TotalOrderAmount: total}
	if amount != nil {
		p := models.PartyPayment{
			ID:        int64(len(r.Payments) + 1),
			PartyID:   partyID,
			Amount:    *amount,
			CreatedAt: time.Date(2026, 2, 1, 0, 0, len(r.Payments), 0, time.UTC),
		}
		r.Payments = append(r.Payments, p)
		result.Payment = &p
	}
	c := working
	result.Party = &c
	return result, nil
}

// SeedParty stores a party with a given credit.
func (r *PartyRepository) SeedParty(name string, credit int64) *models.Party {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &models.Party{
		ID:           uuid.NewString(),
		Name:         name,
		CreditAmount: decimal.NewFromInt(credit),
		DueAmount:    decimal.Zero,
	}
	r.parties[p.ID] = p
	c := *p
	return &c
}

type ItemRepository struct {
	mu    sync.Mutex
	items map[int64]*models.Item
	next  int64
}

func NewItemRepository(items ...models.Item) *ItemRepository {
	r := &ItemRepository{items: make(map[int64]*models.Item)}
	for _, it := range items {
		it := it
		r.items[it.ID] = &it
		if it.ID > r.next {
			r.next = it.ID
		}
	}
	return r
}

var _ repository.ItemRepositoryInterface = (*ItemRepository)(nil)

func (r *ItemRepository) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Item{}
	for _, it := range r.items {
		if filter.Category == "" || it.Category == filter.Category {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ItemRepository) Get(ctx context.Context, id int64) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	c := *it
	return &c, nil
}

func (r *ItemRepository) Create(ctx context.Context, req *models.CreateItemRequest) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	it := &models.Item{ID: r.next, Name: req.Name, Price: req.Price, Quantity: req.Quantity, Category: req.Category}
	r.items[it.ID] = it
	c := *it
	return &c, nil
}

func (r *ItemRepository) Update(ctx context.Context, id int64, req *models.UpdateItemRequest) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	if req.Name != nil {
		it.Name = *req.Name
	}
	if req.Price != nil {
		it.Price = *req.Price
	}
	if req.Quantity != nil {
		it.Quantity = *req.Quantity
	}
	c := *it
	return &c, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return models.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ItemRepository) SetImageURL(ctx context.Context, id int64, url string) (*models.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	it.ImageURL = url
	c := *it
	return &c, nil
}

type UserRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*models.User)}
}

var _ repository.UserRepositoryInterface = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, email, hash string, role models.Role) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return nil, models.ErrEmailInUse
	}
	u := &models.User{ID: uuid.NewString(), Email: email, PasswordHash: hash, Role: role}
	r.users[email] = u
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

// SequenceIDs returns a generator that yields ids in order and then repeats the last one.
func SequenceIDs(ids ...int64) func() int64 {
	var mu sync.Mutex
	i := 0
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		id := ids[min(i, len(ids)-1)]
		i++
		return id
	}
}
