package store

import (
	"context"
	"sort"
	"sync"

	"go-pos-ws/internal/calc"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryBackend interface {
	Products(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, req service.ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req service.ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error)
	Restock(ctx context.Context, id uuid.UUID, quantity int, unitCost *decimal.Decimal) (*service.RestockResult, error)
}

// Inventory caches the catalog sorted by name.
type Inventory struct {
	backend InventoryBackend
	// cash, when set, receives the restock movements written through this store.
	cash    *Cash

	mu       sync.RWMutex
	products []model.Product
}

func NewInventory(backend InventoryBackend, cash *Cash) *Inventory {
	return &Inventory{backend: backend, cash: cash}
}

func (s *Inventory) Fetch(ctx context.Context) error {
	products, err := s.backend.Products(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.products = products
	s.sortLocked()
	s.mu.Unlock()
	return nil
}

func (s *Inventory) Add(ctx context.Context, req service.ProductRequest) (*model.Product, error) {
	p, err := s.backend.CreateProduct(ctx, req)
	if err != nil {
		return nil, err
	}
	s.put(*p)
	return p, nil
}

func (s *Inventory) Update(ctx context.Context, id uuid.UUID, req service.ProductRequest) (*model.Product, error) {
	p, err := s.backend.UpdateProduct(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.put(*p)
	return p, nil
}

func (s *Inventory) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			break
		}
	}
	return nil
}

// AdjustStock applies delta to a cached product; the server clamps at zero.
func (s *Inventory) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	if _, ok := s.Get(id); !ok {
		return nil, ErrNotCached
	}
	p, err := s.backend.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.put(*p)
	return p, nil
}

// Restock rejects a non-positive quantity before any request. The restock
// movement, if written, lands in the cash store too.
func (s *Inventory) Restock(ctx context.Context, id uuid.UUID, quantity int, unitCost *decimal.Decimal) (*service.RestockResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	res, err := s.backend.Restock(ctx, id, quantity, unitCost)
	if err != nil {
		return nil, err
	}
	if res.Product != nil {
		s.put(*res.Product)
	}
	if res.Movement != nil && s.cash != nil {
		s.cash.Apply(*res.Movement)
	}
	return res, nil
}

// ApplyEvent folds a realtime stock_update into the cache.
func (s *Inventory) ApplyEvent(e ws.Event) {
	if e.Type != ws.EventStockUpdate || e.Product == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == e.Product.ID {
			s.products[i].Stock = e.Product.NewStock
			return
		}
	}
}

func (s *Inventory) Get(id uuid.UUID) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

func (s *Inventory) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Product(nil), s.products...)
}

// LowStock lists products at or under their threshold, out of stock first.
func (s *Inventory) LowStock() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Product
	for _, p := range s.products {
		if calc.Status(p.Stock, p.MinStock) != calc.StockOK {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out
}

// Value is the money tied up in the cached stock at cost.
func (s *Inventory) Value() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, p := range s.products {
		total = total.Add(calc.StockValue(p.CostPrice, p.Stock))
	}
	return total
}

func (s *Inventory) put(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			s.sortLocked()
			return
		}
	}
	s.products = append(s.products, p)
	s.sortLocked()
}

func (s *Inventory) sortLocked() {
	sort.SliceStable(s.products, func(i, j int) bool { return s.products[i].Name < s.products[j].Name })
}
