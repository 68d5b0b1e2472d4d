package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/barcode"
	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BarcodeLookup resolves scanned codes; *barcode.Client implements it.
type BarcodeLookup interface {
	Lookup(ctx context.Context, code string) barcode.Result
}

type ProductRequest struct {
	Name      string          `json:"name" validate:"required,max=255"`
	SKU       *string         `json:"sku" validate:"omitempty,max=64"`
	Category  string          `json:"category" validate:"max=100"`
	CostPrice decimal.Decimal `json:"cost_price" validate:"gte=0,money"`
	SalePrice decimal.Decimal `json:"sale_price" validate:"gte=0,money"`
	Stock     int             `json:"stock" validate:"gte=0"`
	MinStock  *int            `json:"min_stock" validate:"omitempty,gte=0"`
}

type RestockRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
	// UnitCost overrides the product cost for this ledger entry only; zero or
	// absent falls back to the stored cost_price.
	UnitCost *decimal.Decimal `json:"unit_cost" validate:"omitempty,gte=0,money"`
}

type AdjustRequest struct {
	Delta int `json:"delta" validate:"ne=0"`
}

type ScanRequest struct {
	Code      string          `json:"code" validate:"required,max=64"`
	Name      string          `json:"name" validate:"max=255"`
	Category  string          `json:"category" validate:"max=100"`
	CostPrice decimal.Decimal `json:"cost_price" validate:"gte=0,money"`
	SalePrice decimal.Decimal `json:"sale_price" validate:"gte=0,money"`
}

type RestockResult struct {
	Product  *model.Product      `json:"product"`
	Movement *model.CashMovement `json:"movement,omitempty"`
	Steps    []StepOutcome       `json:"steps"`
	Warnings []string            `json:"warnings,omitempty"`
}

type ScanResult struct {
	Product *model.Product `json:"product"`
	Created bool           `json:"created"`
	Lookup  barcode.Result `json:"lookup"`
}

type InventoryService interface {
	ListProducts(ctx context.Context, workspaceID uuid.UUID) ([]model.Product, error)
	GetProduct(ctx context.Context, workspaceID, id uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, workspaceID, id uuid.UUID, actor Actor, req *ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, workspaceID, id uuid.UUID) error
	AdjustStock(ctx context.Context, workspaceID, id uuid.UUID, actor Actor, delta int) (*model.Product, error)
	Restock(ctx context.Context, workspaceID, id uuid.UUID, actor Actor, req *RestockRequest) (*RestockResult, error)
	ScanProduct(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *ScanRequest) (*ScanResult, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	cashRepo    repository.CashRepository
	lookup      BarcodeLookup
	hub         Publisher
	cal         Calendar
}

func NewInventoryService(pRepo repository.ProductRepository, cRepo repository.CashRepository, lookup BarcodeLookup, hub Publisher, cal Calendar) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		cashRepo:    cRepo,
		lookup:      lookup,
		hub:         orNop(hub),
		cal:         cal,
	}
}

func (s *inventoryService) ListProducts(ctx context.Context, workspaceID uuid.UUID) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx, workspaceID)
}

func (s *inventoryService) GetProduct(ctx context.Context, workspaceID, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, workspaceID, id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return p, nil
}

func (s *inventoryService) CreateProduct(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *ProductRequest) (*model.Product, error) {
	normalizeProduct(req)
	if err := validate(req); err != nil {
		return nil, err
	}

	p := &model.Product{
		WorkspaceID: workspaceID,
		Name:        req.Name,
		SKU:         req.SKU,
		Category:    req.Category,
		CostPrice:   req.CostPrice,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
		MinStock:    model.DefaultMinStock,
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	p.CreatedBy = actor.audit()
	p.UpdatedBy = actor.audit()

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.publishStock(workspaceID, actor, "product_created", p, 0)
	return p, nil
}

// UpdateProduct edits catalog fields. Stock is changed only through
// AdjustStock and Restock, so req.Stock is ignored here.
func (s *inventoryService) UpdateProduct(ctx context.Context, workspaceID, id uuid.UUID, actor Actor, req *ProductRequest) (*model.Product, error) {
	normalizeProduct(req)
	if err := validate(req); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.SKU = req.SKU
	p.Category = req.Category
	p.CostPrice = req.CostPrice
	p.SalePrice = req.SalePrice
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}
	p.UpdatedBy = actor.audit()

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, workspaceID, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, workspaceID, id); err != nil {
		return notFound(err, ErrProductNotFound)
	}
	return nil
}

// AdjustStock applies delta with a floor of zero. The read and the write are
// separate statements; a concurrent writer in between is overwritten.
func (s *inventoryService) AdjustStock(ctx context.Context, workspaceID, id uuid.UUID, actor Actor, delta int) (*model.Product, error) {
	if err := validate(&AdjustRequest{Delta: delta}); err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	old := p.Stock
	p.Stock = model.ClampStock(p.Stock, delta)
	if err := s.productRepo.UpdateStock(ctx, workspaceID, id, p.Stock, actor.audit()); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	p.UpdatedBy = actor.audit()

	s.publishStock(workspaceID, actor, "stock_adjusted", p, old)
	return p, nil
}

// Restock adds stock, then records the restock outflow. A ledger failure
// leaves the stock increase in place and is reported as a warning.
func (s *inventoryService) Restock(ctx context.Context, workspaceID, id uuid.UUID, actor Actor, req *RestockRequest) (*RestockResult, error) {
	if err := validate(req); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) && ve.Field == "Quantity" {
			return nil, invalid("quantity", "Cantidad inválida")
		}
		return nil, err
	}

	steps := newSteps("restock")
	p, err := s.AdjustStock(ctx, workspaceID, id, actor, req.Quantity)
	if err != nil {
		return nil, err
	}
	steps.record("stock", nil)

	unitCost := p.CostPrice
	if req.UnitCost != nil && req.UnitCost.IsPositive() {
		unitCost = *req.UnitCost
	}
	mv := &model.CashMovement{
		WorkspaceID:  workspaceID,
		Type:         model.MovementRestock,
		Amount:       unitCost.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Description:  fmt.Sprintf("Restock: %s (%d uds)", p.Name, req.Quantity),
		Category:     model.CategoryInventory,
		MovementDate: s.cal.Today(),
	}
	mv.CreatedBy = actor.audit()

	result := &RestockResult{Product: p}
	if err := s.cashRepo.Create(ctx, mv); err != nil {
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

// ScanProduct returns the product already carrying code as SKU, or creates
// one with stock 0 named after the barcode lookup (or req.Name when given).
func (s *inventoryService) ScanProduct(ctx context.Context, workspaceID uuid.UUID, actor Actor, req *ScanRequest) (*ScanResult, error) {
	req.Code = strings.TrimSpace(req.Code)
	if err := validate(req); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.FindBySKU(ctx, workspaceID, req.Code)
	if err == nil {
		return &ScanResult{Product: existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var info barcode.Result
	if s.lookup != nil {
		info = s.lookup.Lookup(ctx, req.Code)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" && info.Name != nil {
		name = *info.Name
	}
	if name == "" {
		return nil, invalid("name", "SKU asignado, producto no encontrado en línea: captura el nombre")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" && info.Category != nil {
		category = *info.Category
	}

	code := req.Code
	p, err := s.CreateProduct(ctx, workspaceID, actor, &ProductRequest{
		Name:      name,
		SKU:       &code,
		Category:  category,
		CostPrice: req.CostPrice,
		SalePrice: req.SalePrice,
	})
	if err != nil {
		return nil, err
	}
	return &ScanResult{Product: p, Created: true, Lookup: info}, nil
}

func (s *inventoryService) publishStock(workspaceID uuid.UUID, actor Actor, action string, p *model.Product, oldStock int) {
	s.hub.Publish(workspaceID, ws.Event{
		Type:   ws.EventStockUpdate,
		Action: action,
		Product: &ws.StockChange{
			ID:       p.ID,
			Name:     p.Name,
			OldStock: oldStock,
			NewStock: p.Stock,
		},
		User:    actor.event(),
		Message: fmt.Sprintf("%s: %s (%d → %d)", actor.Name, p.Name, oldStock, p.Stock),
	})
}

func normalizeProduct(req *ProductRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		req.Category = model.DefaultCategory
	}
	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku == "" {
			req.SKU = nil
		} else {
			req.SKU = &sku
		}
	}
}

// notFound maps gorm's missing-row error onto target and wraps anything else.
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	log.Error().Err(err).Msg("repository failure")
	return err
}
