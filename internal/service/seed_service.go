package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sampleProduct struct {
	name, sku, category string
	cost, price         int64
	stock, minStock     int
}

var sampleProducts = []sampleProduct{
	{"Coca Cola 600ml", "BEB-001", "Bebidas", 12, 20, 24, 6},
	{"Agua Natural 1L", "BEB-002", "Bebidas", 6, 12, 30, 10},
	{"Sabritas Original", "SNK-001", "Snacks", 10, 18, 15, 5},
	{"Galletas Marinela", "SNK-002", "Snacks", 14, 22, 4, 5},
	{"Jabón Zote", "LIM-001", "Limpieza", 18, 28, 8, 3},
	{"Detergente Roma 500g", "LIM-002", "Limpieza", 22, 35, 2, 3},
	{"Chicles Trident", "VAR-001", "Varios", 5, 10, 20, 8},
	{"Pilas AA (pack)", "VAR-002", "Varios", 30, 50, 0, 2},
}

// Seeder fills a demo account with a sample catalog, a week of day-close
// sales and two restock entries.
type Seeder struct {
	users    repository.UserRepository
	members  MembershipService
	products repository.ProductRepository
	sales    repository.SaleRepository
	cash     repository.CashRepository
	cal      Calendar
	rnd      *rand.Rand
}

func NewSeeder(users repository.UserRepository, members MembershipService, products repository.ProductRepository, sales repository.SaleRepository, cash repository.CashRepository, cal Calendar) *Seeder {
	return &Seeder{
		users:    users,
		members:  members,
		products: products,
		sales:    sales,
		cash:     cash,
		cal:      cal,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed creates (or reuses) the demo user and seeds its workspace once: a
// workspace that already has products is left untouched.
func (s *Seeder) Seed(ctx context.Context, email, password string) (*model.WorkspaceMember, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{Email: email, FullName: "Demo", TokenVersion: uuid.New().String()}
		if err := user.SetPassword(password); err != nil {
			return nil, err
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("seed user: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	member, err := s.members.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	existing, err := s.products.FindAll(ctx, member.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return member, nil
	}

	wsID := member.WorkspaceID
	audit := user.ID.String()
	products := make([]*model.Product, 0, len(sampleProducts))
	for _, sp := range sampleProducts {
		sku := sp.sku
		p := &model.Product{
			WorkspaceID: wsID,
			Name:        sp.name,
			SKU:         &sku,
			Category:    sp.category,
			CostPrice:   decimal.NewFromInt(sp.cost),
			SalePrice:   decimal.NewFromInt(sp.price),
			Stock:       sp.stock,
			MinStock:    sp.minStock,
		}
		p.CreatedBy = audit
		if err := s.products.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("seed product %s: %w", sp.name, err)
		}
		products = append(products, p)
	}

	for d := 6; d >= 0; d-- {
		date := s.cal.DaysAgo(d)
		s.rnd.Shuffle(len(products), func(i, j int) { products[i], products[j] = products[j], products[i] })
		picked := products[:3+s.rnd.Intn(3)]

		items := make([]model.SaleItem, 0, len(picked))
		for _, p := range picked {
			items = append(items, snapshot(p, 1+s.rnd.Intn(4), p.SalePrice))
		}
		sale := model.NewSale(wsID, model.SaleBulkDaily, date, items, nil)
		sale.CreatedBy = audit
		if err := s.sales.Create(ctx, sale); err != nil {
			return nil, fmt.Errorf("seed sale %s: %w", date, err)
		}
		if err := s.cash.Create(ctx, &model.CashMovement{
			WorkspaceID:   wsID,
			Type:          model.MovementSale,
			Amount:        sale.TotalRevenue,
			Description:   "Cierre del día (ejemplo)",
			Category:      model.CategorySales,
			MovementDate:  date,
			RelatedSaleID: &sale.ID,
		}); err != nil {
			return nil, fmt.Errorf("seed movement %s: %w", date, err)
		}
	}

	today := s.cal.Today()
	for _, r := range []struct {
		amount int64
		desc   string
	}{
		{350, "Restock inicial bebidas"},
		{220, "Restock snacks y limpieza"},
	} {
		if err := s.cash.Create(ctx, &model.CashMovement{
			WorkspaceID:  wsID,
			Type:         model.MovementRestock,
			Amount:       decimal.NewFromInt(r.amount),
			Description:  r.desc,
			Category:     model.CategoryInventory,
			MovementDate: today,
		}); err != nil {
			return nil, fmt.Errorf("seed restock: %w", err)
		}
	}

	log.Info().Str("workspace_id", wsID.String()).Str("email", email).Msg("demo data seeded")
	return member, nil
}
