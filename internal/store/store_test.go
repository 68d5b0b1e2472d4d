package store

import (
	"context"
	"errors"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/posclient"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ CashBackend      = (*posclient.Client)(nil)
	_ InventoryBackend = (*posclient.Client)(nil)
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func movement(t model.MovementType, amount string, date model.Date) model.CashMovement {
	return model.CashMovement{BaseModel: model.BaseModel{ID: uuid.New()}, Type: t, Amount: dec(amount), MovementDate: date}
}

type fakeCash struct {
	ledger   *service.Ledger
	err      error
	requests int
}

func (f *fakeCash) Ledger(context.Context, repository.Period) (*service.Ledger, error) {
	f.requests++
	if f.err != nil {
		return nil, f.err
	}
	return f.ledger, nil
}

func (f *fakeCash) AddMovement(_ context.Context, req service.MovementRequest) (*model.CashMovement, error) {
	f.requests++
	m := movement(req.Type, req.Amount.String(), "2026-10-16")
	m.Description = req.Description
	return &m, nil
}

func TestCash_FetchFoldsBalance(t *testing.T) {
	backend := &fakeCash{ledger: &service.Ledger{
		Movements: []model.CashMovement{
			movement(model.MovementSale, "40", "2026-10-16"),
			movement(model.MovementRestock, "150", "2026-10-15"),
			movement(model.MovementIncome, "100", "2026-10-14"),
			movement(model.MovementExpense, "30", "2026-10-13"),
		},
		// a stale server figure is not trusted
		Balance: dec("999"),
	}}
	s := NewCash(backend)

	require.NoError(t, s.Fetch(context.Background(), repository.Period{From: "2026-10-01", To: "2026-10-31"}))
	assert.True(t, dec("-40").Equal(s.Balance()), s.Balance().String())
	assert.Len(t, s.Movements(), 4)

	backend.err = errors.New("offline")
	assert.Error(t, s.Fetch(context.Background(), repository.Period{}))
	assert.Len(t, s.Movements(), 4, "cache kept on failure")
}

func TestCash_AddPrependsAndMovesBalance(t *testing.T) {
	backend := &fakeCash{ledger: &service.Ledger{Movements: []model.CashMovement{movement(model.MovementIncome, "100", "2026-10-15")}}}
	s := NewCash(backend)
	require.NoError(t, s.Fetch(context.Background(), repository.Period{From: "2026-10-01", To: "2026-10-31"}))

	m, err := s.Add(context.Background(), service.MovementRequest{Type: model.MovementExpense, Amount: dec("25.50"), Description: "Luz"})
	require.NoError(t, err)
	assert.Equal(t, m.ID, s.Movements()[0].ID)
	assert.True(t, dec("74.5").Equal(s.Balance()))

	// outside the cached period
	s.Apply(movement(model.MovementIncome, "10", "2026-09-30"))
	assert.Len(t, s.Movements(), 2)
}

func TestCash_AddValidatesLocally(t *testing.T) {
	backend := &fakeCash{}
	s := NewCash(backend)

	_, err := s.Add(context.Background(), service.MovementRequest{Type: model.MovementIncome, Amount: decimal.Zero, Description: "x"})
	assert.ErrorIs(t, err, ErrMissingAmount)
	_, err = s.Add(context.Background(), service.MovementRequest{Type: model.MovementIncome, Amount: dec("5")})
	assert.ErrorIs(t, err, ErrMissingAmount)
	assert.Zero(t, backend.requests)
}

type fakeInventory struct {
	products map[uuid.UUID]model.Product
	calls    int
}

func newFakeInventory(ps ...model.Product) *fakeInventory {
	f := &fakeInventory{products: map[uuid.UUID]model.Product{}}
	for _, p := range ps {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeInventory) Products(context.Context) ([]model.Product, error) {
	f.calls++
	out := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeInventory) CreateProduct(_ context.Context, req service.ProductRequest) (*model.Product, error) {
	f.calls++
	p := model.Product{BaseModel: model.BaseModel{ID: uuid.New()}, Name: req.Name, CostPrice: req.CostPrice, SalePrice: req.SalePrice, Stock: req.Stock, MinStock: 5}
	f.products[p.ID] = p
	return &p, nil
}

func (f *fakeInventory) UpdateProduct(_ context.Context, id uuid.UUID, req service.ProductRequest) (*model.Product, error) {
	f.calls++
	p, ok := f.products[id]
	if !ok {
		return nil, &posclient.APIError{Status: 404, Message: "Product not found"}
	}
	p.Name = req.Name
	f.products[id] = p
	return &p, nil
}

func (f *fakeInventory) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.calls++
	delete(f.products, id)
	return nil
}

func (f *fakeInventory) AdjustStock(_ context.Context, id uuid.UUID, delta int) (*model.Product, error) {
	f.calls++
	p := f.products[id]
	p.Stock = model.ClampStock(p.Stock, delta)
	f.products[id] = p
	return &p, nil
}

func (f *fakeInventory) Restock(_ context.Context, id uuid.UUID, quantity int, unitCost *decimal.Decimal) (*service.RestockResult, error) {
	f.calls++
	p := f.products[id]
	p.Stock += quantity
	cost := p.CostPrice
	if unitCost != nil {
		cost = *unitCost
		p.CostPrice = cost
	}
	f.products[id] = p
	m := movement(model.MovementRestock, cost.Mul(decimal.NewFromInt(int64(quantity))).String(), "2026-10-16")
	return &service.RestockResult{Product: &p, Movement: &m}, nil
}

func product(name string, stock, minStock int, cost string) model.Product {
	return model.Product{BaseModel: model.BaseModel{ID: uuid.New()}, Name: name, Stock: stock, MinStock: minStock, CostPrice: dec(cost)}
}

func TestInventory_SortedCacheAndAggregates(t *testing.T) {
	pilas := product("Pilas", 0, 3, "12")
	agua := product("Agua", 20, 5, "6")
	galletas := product("Galletas", 4, 5, "8")
	s := NewInventory(newFakeInventory(pilas, agua, galletas), nil)
	require.NoError(t, s.Fetch(context.Background()))

	names := func() []string {
		var out []string
		for _, p := range s.Products() {
			out = append(out, p.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Agua", "Galletas", "Pilas"}, names())
	assert.True(t, dec("152").Equal(s.Value()), s.Value().String())

	low := s.LowStock()
	require.Len(t, low, 2)
	assert.Equal(t, "Pilas", low[0].Name)
	assert.Equal(t, "Galletas", low[1].Name)

	_, err := s.Add(context.Background(), service.ProductRequest{Name: "Café", CostPrice: dec("50"), Stock: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Agua", "Café", "Galletas", "Pilas"}, names())

	_, err = s.Update(context.Background(), agua.ID, service.ProductRequest{Name: "Zumo"})
	require.NoError(t, err)
	assert.Equal(t, "Zumo", names()[3])

	require.NoError(t, s.Remove(context.Background(), pilas.ID))
	_, ok := s.Get(pilas.ID)
	assert.False(t, ok)
}

func TestInventory_AdjustStockRequiresCachedProduct(t *testing.T) {
	p := product("Agua", 3, 5, "6")
	backend := newFakeInventory(p)
	s := NewInventory(backend, nil)

	_, err := s.AdjustStock(context.Background(), p.ID, -1)
	assert.ErrorIs(t, err, ErrNotCached)
	assert.Zero(t, backend.calls)

	require.NoError(t, s.Fetch(context.Background()))
	got, err := s.AdjustStock(context.Background(), p.ID, -10)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	cached, _ := s.Get(p.ID)
	assert.Equal(t, 0, cached.Stock)
}

func TestInventory_RestockFeedsCash(t *testing.T) {
	p := product("Agua", 2, 5, "6")
	backend := newFakeInventory(p)
	cash := NewCash(&fakeCash{ledger: &service.Ledger{}})
	require.NoError(t, cash.Fetch(context.Background(), repository.Period{From: "2026-10-16", To: "2026-10-16"}))
	s := NewInventory(backend, cash)
	require.NoError(t, s.Fetch(context.Background()))

	_, err := s.Restock(context.Background(), p.ID, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	cost := dec("15")
	res, err := s.Restock(context.Background(), p.ID, 10, &cost)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Product.Stock)
	cached, _ := s.Get(p.ID)
	assert.Equal(t, 12, cached.Stock)
	assert.True(t, dec("-150").Equal(cash.Balance()), cash.Balance().String())
}

func TestInventory_ApplyEvent(t *testing.T) {
	p := product("Agua", 10, 5, "6")
	s := NewInventory(newFakeInventory(p), nil)
	require.NoError(t, s.Fetch(context.Background()))

	s.ApplyEvent(ws.Event{Type: ws.EventMembershipUpdate})
	s.ApplyEvent(ws.Event{Type: ws.EventStockUpdate, Product: &ws.StockChange{ID: uuid.New(), NewStock: 1}})
	s.ApplyEvent(ws.Event{Type: ws.EventStockUpdate, Product: &ws.StockChange{ID: p.ID, OldStock: 10, NewStock: 7}})

	cached, _ := s.Get(p.ID)
	assert.Equal(t, 7, cached.Stock)
}
