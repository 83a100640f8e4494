package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"restaurant-pos/models"
	"restaurant-pos/pricing"
	"restaurant-pos/repository"
)

// PaymentReceived labels payment rows in a party statement.
const PaymentReceived = "Payment received"

// LedgerService keeps party balances reconciled with their orders
type LedgerService struct {
	parties repository.PartyRepositoryInterface
	orders  repository.OrderRepositoryInterface
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(parties repository.PartyRepositoryInterface, orders repository.OrderRepositoryInterface) *LedgerService {
	return &LedgerService{parties: parties, orders: orders}
}

// CreateParty registers a credit customer. Every field is required.
func (s *LedgerService) CreateParty(ctx context.Context, req *models.CreatePartyRequest) (*models.Party, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Address) == "" ||
		strings.TrimSpace(req.PhoneNumber) == "" || strings.TrimSpace(req.TaxID) == "" {
		return nil, errors.Wrap(models.ErrValidation, "please fill all fields")
	}
	return s.parties.Create(ctx, req)
}

// ListParties returns all parties
func (s *LedgerService) ListParties(ctx context.Context) ([]models.Party, error) {
	return s.parties.List(ctx)
}

// LoadPartyView reconciles the party and gathers its orders and payments concurrently
func (s *LedgerService) LoadPartyView(ctx context.Context, partyID string) (*models.PartyView, error) {
	log.Printf("📒 LoadPartyView: party=%s", partyID)

	var (
		result   *repository.LedgerResult
		orders   []models.Order
		payments []models.PartyPayment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result, err = s.parties.Reconcile(gctx, partyID, func(p *models.Party, total decimal.Decimal) (*decimal.Decimal, error) {
			p.Reconcile(total)
			return nil, nil
		})
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.orders.ListByParty(gctx, partyID)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = s.parties.ListPayments(gctx, partyID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("❌ LoadPartyView: party=%s: %v", partyID, err)
		return nil, err
	}

	return buildView(result, orders, payments), nil
}

// RecordPayment credits a validated amount to the party and recomputes its due
// inside one locked transaction. Invalid amounts leave the ledger untouched.
func (s *LedgerService) RecordPayment(ctx context.Context, partyID string, rawAmount any) (*models.PartyView, error) {
	amount, err := pricing.ParseAmount(rawAmount)
	if err != nil {
		log.Printf("❌ RecordPayment: party=%s invalid amount %v", partyID, rawAmount)
		return nil, err
	}

	result, err := s.parties.Reconcile(ctx, partyID, func(p *models.Party, total decimal.Decimal) (*decimal.Decimal, error) {
		if err := p.ApplyPayment(amount, total); err != nil {
			return nil, err
		}
		return &amount, nil
	})
	if err != nil {
		log.Printf("❌ RecordPayment: party=%s: %v", partyID, err)
		return nil, err
	}

	orders, err := s.orders.ListByParty(ctx, partyID)
	if err != nil {
		return nil, err
	}
	payments, err := s.parties.ListPayments(ctx, partyID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ RecordPayment: party=%s amount=%s due=%s", partyID, amount, result.Party.DueAmount)
	return buildView(result, orders, payments), nil
}

func buildView(result *repository.LedgerResult, orders []models.Order, payments []models.PartyPayment) *models.PartyView {
	if orders == nil {
		orders = []models.Order{}
	}

	// The payment just recorded may not be visible to a read that raced it.
	if result.Payment != nil && !containsPayment(payments, result.Payment.ID) {
		payments = append([]models.PartyPayment{*result.Payment}, payments...)
	}

	entries := make([]models.LedgerEntry, 0, len(orders)+len(payments))
	for _, o := range orders {
		entries = append(entries, models.LedgerEntry{
			Kind:        models.LedgerEntryOrder,
			Reference:   fmt.Sprintf("%d", o.ID),
			Description: fmt.Sprintf("Order #%d", o.ID),
			Amount:      o.Total,
			Status:      o.Status,
			CreatedAt:   o.CreatedAt,
		})
	}
	for _, p := range payments {
		entries = append(entries, models.LedgerEntry{
			Kind:        models.LedgerEntryPayment,
			Reference:   fmt.Sprintf("payment-%d", p.ID),
			Description: PaymentReceived,
			Amount:      p.Amount,
			CreatedAt:   p.CreatedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return &models.PartyView{
		Party:            result.Party,
		TotalOrderAmount: result.TotalOrderAmount,
		Orders:           orders,
		Entries:          entries,
	}
}

func containsPayment(payments []models.PartyPayment, id int64) bool {
	for _, p := range payments {
		if p.ID == id {
			return true
		}
	}
	return false
}

// GetParty returns a party as stored
func (s *LedgerService) GetParty(ctx context.Context, id string) (*models.Party, error) {
	return s.parties.Get(ctx, id)
}
