package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type CartLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
	// SalePrice overrides the list price for this line; nil keeps the list price.
	SalePrice *decimal.Decimal `json:"sale_price" validate:"omitempty,gte=0,money"`
}

type CheckoutRequest struct {
	Items []CartLine `json:"items" validate:"required,min=1,dive"`
	Notes *string    `json:"notes" validate:"omitempty,max=1000"`
}

type DayCloseLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
	// SalePrice of nil or zero falls back to the list price.
	SalePrice *decimal.Decimal `json:"sale_price" validate:"omitempty,gte=0,money"`
}

type DayCloseRequest struct {
	SaleDate model.Date     `json:"sale_date" validate:"omitempty,isodate"`
	Lines    []DayCloseLine `json:"lines" validate:"dive"`
	Notes    *string        `json:"notes" validate:"omitempty,max=1000"`
}

// CheckoutResult reports the persisted sale and what happened to each
// follow-up write.
type CheckoutResult struct {
	Sale     *model.Sale         `json:"sale"`
	Movement *model.CashMovement `json:"movement,omitempty"`
	Steps    []StepOutcome       `json:"steps"`
	Warnings []string            `json:"warnings,omitempty"`
}

type SalesService interface {
	ListSales(ctx context.Context, workspaceID uuid.UUID, period repository.Period) ([]model.Sale, error)
	Checkout(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *CheckoutRequest) (*CheckoutResult, error)
	CloseDay(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *DayCloseRequest) (*CheckoutResult, error)
}

type salesService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	cashRepo    repository.CashRepository
	hub         Publisher
	cal         Calendar
}

func NewSalesService(sRepo repository.SaleRepository, pRepo repository.ProductRepository, cRepo repository.CashRepository, hub Publisher, cal Calendar) SalesService {
	return &salesService{
		saleRepo:    sRepo,
		productRepo: pRepo,
		cashRepo:    cRepo,
		hub:         orNop(hub),
		cal:         cal,
	}
}

func (s *salesService) ListSales(ctx context.Context, workspaceID uuid.UUID, period repository.Period) ([]model.Sale, error) {
	return s.saleRepo.FindByPeriod(ctx, workspaceID, period)
}

// Checkout records an individual sale dated today.
func (s *salesService) Checkout(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *CheckoutRequest) (*CheckoutResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(req.Items))
	items := make([]model.SaleItem, 0, len(req.Items))
	names := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if seen[line.ProductID] {
			return nil, invalid("items", "duplicate product in cart")
		}
		seen[line.ProductID] = true

		p, err := s.productRepo.FindByID(ctx, workspaceID, line.ProductID)
		if err != nil {
			return nil, notFound(err, ErrProductNotFound)
		}
		price := p.SalePrice
		if line.SalePrice != nil {
			price = *line.SalePrice
		}
		items = append(items, snapshot(p, line.Quantity, price))
		names = append(names, p.Name)
	}

	today := s.cal.Today()
	return s.record(ctx, workspaceID, actor, model.SaleIndividual, today, items, req.Notes,
		"Venta: "+strings.Join(names, ", "), today)
}

// CloseDay records a bulk_daily sale for req.SaleDate (default today). Rows
// with zero quantity are dropped; at least one must remain.
func (s *salesService) CloseDay(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *DayCloseRequest) (*CheckoutResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	date := req.SaleDate
	if date == "" {
		date = s.cal.Today()
	}

	seen := make(map[uuid.UUID]bool, len(req.Lines))
	var items []model.SaleItem
	for _, line := range req.Lines {
		if line.Quantity == 0 {
			continue
		}
		if seen[line.ProductID] {
			return nil, invalid("lines", "duplicate product in day close")
		}
		seen[line.ProductID] = true

		p, err := s.productRepo.FindByID(ctx, workspaceID, line.ProductID)
		if err != nil {
			return nil, notFound(err, ErrProductNotFound)
		}
		price := p.SalePrice
		if line.SalePrice != nil && line.SalePrice.IsPositive() {
			price = *line.SalePrice
		}
		items = append(items, snapshot(p, line.Quantity, price))
	}
	if len(items) == 0 {
		return nil, invalid("lines", "Ingresa al menos una cantidad")
	}

	return s.record(ctx, workspaceID, actor, model.SaleBulkDaily, date, items, req.Notes,
		fmt.Sprintf("Cierre del día: %d productos", len(items)), date)
}

// record runs the three writes in order: sale (gate), concurrent stock
// decrements, cash movement. Nothing is rolled back after the gate.
func (s *salesService) record(ctx context.Context, workspaceID uuid.UUID, actor Actor, saleType model.SaleType, saleDate model.Date, items []model.SaleItem, notes *string, description string, movementDate model.Date) (*CheckoutResult, error) {
	flow := "checkout"
	if saleType == model.SaleBulkDaily {
		flow = "day_close"
	}
	steps := newSteps(flow)

	if notes != nil && strings.TrimSpace(*notes) == "" {
		notes = nil
	}
	sale := model.NewSale(workspaceID, saleType, saleDate, items, notes)
	sale.CreatedBy = actor.audit()
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		metrics.OrchestrationStepFailures.WithLabelValues(flow, "sale").Inc()
		return nil, fmt.Errorf("create sale: %w", err)
	}
	steps.record("sale", nil)
	metrics.SalesRecorded.WithLabelValues(string(saleType)).Inc()
	metrics.SalesRevenue.WithLabelValues(string(saleType)).Add(sale.TotalRevenue.InexactFloat64())

	for i, err := range s.decrementStock(ctx, workspaceID, actor, items) {
		steps.record("stock:"+items[i].ProductName, err)
	}

	mv := &model.CashMovement{
		WorkspaceID:   workspaceID,
		Type:          model.MovementSale,
		Amount:        sale.TotalRevenue,
		Description:   description,
		Category:      model.CategorySales,
		MovementDate:  movementDate,
		RelatedSaleID: &sale.ID,
	}
	mv.CreatedBy = actor.audit()

	result := &CheckoutResult{Sale: sale}
	if !mv.Amount.IsPositive() {
		// a sale made entirely of zero-priced lines has nothing to book
		steps.skip("cash_movement")
	} else if err := s.cashRepo.Create(ctx, mv); err != nil {
		steps.record("cash_movement", err)
	} else {
		steps.record("cash_movement", nil)
		metrics.CashMovements.WithLabelValues(string(mv.Type)).Inc()
		result.Movement = mv
	}

	result.Steps = steps.Outcomes
	result.Warnings = steps.Warnings()
	return result, nil
}

// decrementStock issues one read-modify-write per line in parallel and waits
// for all of them. errs[i] is the outcome of items[i].
func (s *salesService) decrementStock(ctx context.Context, workspaceID uuid.UUID, actor Actor, items []model.SaleItem) []error {
	errs := make([]error, len(items))
	var mu sync.Mutex
	var changes []ws.StockChange

	var g errgroup.Group
	for i, it := range items {
		i, it := i, it
		g.Go(func() error {
			p, err := s.productRepo.FindByID(ctx, workspaceID, it.ProductID)
			if err != nil {
				errs[i] = notFound(err, ErrProductNotFound)
				return nil
			}
			next := model.ClampStock(p.Stock, -it.Quantity)
			if err := s.productRepo.UpdateStock(ctx, workspaceID, p.ID, next, actor.audit()); err != nil {
				errs[i] = err
				return nil
			}
			mu.Lock()
			changes = append(changes, ws.StockChange{ID: p.ID, Name: p.Name, OldStock: p.Stock, NewStock: next})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for i := range changes {
		change := changes[i]
		s.hub.Publish(workspaceID, ws.Event{
			Type:    ws.EventStockUpdate,
			Action:  "sale",
			Product: &change,
			User:    actor.event(),
		})
	}
	return errs
}

func snapshot(p *model.Product, qty int, price decimal.Decimal) model.SaleItem {
	return model.SaleItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    qty,
		SalePrice:   price,
		CostPrice:   p.CostPrice,
	}
}
