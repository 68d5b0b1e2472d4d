package service

import (
	"context"

	"go-pos-ws/internal/calc"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type LowStockItem struct {
	ID       uuid.UUID        `json:"id"`
	Name     string           `json:"name"`
	Stock    int              `json:"stock"`
	MinStock int              `json:"min_stock"`
	Status   calc.StockStatus `json:"status"`
}

type DashboardStats struct {
	// Balance covers the last 30 days of the ledger.
	Balance        decimal.Decimal `json:"balance"`
	InventoryValue decimal.Decimal `json:"inventory_value"`
	TodayRevenue   decimal.Decimal `json:"today_revenue"`
	TodayProfit    decimal.Decimal `json:"today_profit"`
	ProductCount   int             `json:"product_count"`
	LowStock       []LowStockItem  `json:"low_stock"`
	Series         []DayPoint      `json:"series"`
}

type DashboardService interface {
	GetDashboardStats(ctx context.Context, workspaceID uuid.UUID) (*DashboardStats, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	cashRepo    repository.CashRepository
	cal         Calendar
}

func NewDashboardService(pRepo repository.ProductRepository, sRepo repository.SaleRepository, cRepo repository.CashRepository, cal Calendar) DashboardService {
	return &dashboardService{productRepo: pRepo, saleRepo: sRepo, cashRepo: cRepo, cal: cal}
}

func (s *dashboardService) GetDashboardStats(ctx context.Context, workspaceID uuid.UUID) (*DashboardStats, error) {
	today := s.cal.Today()
	var (
		products  []model.Product
		sales     []model.Sale
		movements []model.CashMovement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.productRepo.FindAll(gctx, workspaceID)
		return err
	})
	g.Go(func() (err error) {
		sales, err = s.saleRepo.FindByPeriod(gctx, workspaceID, repository.Period{From: s.cal.DaysAgo(7), To: today})
		return err
	})
	g.Go(func() (err error) {
		movements, err = s.cashRepo.FindByPeriod(gctx, workspaceID, repository.Period{From: s.cal.DaysAgo(30), To: today})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Balance:        model.Balance(movements),
		InventoryValue: decimal.Zero,
		TodayRevenue:   decimal.Zero,
		TodayProfit:    decimal.Zero,
		ProductCount:   len(products),
		LowStock:       []LowStockItem{},
		Series:         RevenueSeries(sales, s.cal, 7),
	}
	for _, p := range products {
		stats.InventoryValue = stats.InventoryValue.Add(calc.StockValue(p.CostPrice, p.Stock))
		if st := calc.Status(p.Stock, p.MinStock); st != calc.StockOK {
			stats.LowStock = append(stats.LowStock, LowStockItem{
				ID: p.ID, Name: p.Name, Stock: p.Stock, MinStock: p.MinStock, Status: st,
			})
		}
	}
	for _, sale := range sales {
		if sale.SaleDate == today {
			stats.TodayRevenue = stats.TodayRevenue.Add(sale.TotalRevenue)
			stats.TodayProfit = stats.TodayProfit.Add(sale.TotalProfit)
		}
	}
	return stats, nil
}
